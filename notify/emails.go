package notify

import (
	"fmt"
	"time"
)

const dateFormat = "January 2, 2006"

func plural(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

func BorrowedConfirmation(studentName, bookTitle string, borrowDate, dueDate time.Time) Message {
	return Message{
		Subject: "Book Borrowed Successfully!",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYou borrowed %q on %s. It is due back on %s. Enjoy your reading!",
			studentName, bookTitle, borrowDate.Format(dateFormat), dueDate.Format(dateFormat)),
	}
}

func DueReminder(studentName, bookTitle string, daysLeft int, dueDate time.Time) Message {
	return Message{
		Subject: fmt.Sprintf("Reminder: %d day(s) left to return your book", daysLeft),
		Body: fmt.Sprintf(
			"Hi %s,\n\n%q is due on %s. You have %d %s left to return or renew it.",
			studentName, bookTitle, dueDate.Format(dateFormat), daysLeft, plural(daysLeft)),
	}
}

func Overdue(studentName, bookTitle string, overdueDays int) Message {
	return Message{
		Subject: "Your book is overdue!",
		Body: fmt.Sprintf(
			"Hi %s,\n\n%q is %d %s overdue. Please return it as soon as possible to avoid cancellation fees.",
			studentName, bookTitle, overdueDays, plural(overdueDays)),
	}
}

func BorrowCancelled(studentName, bookTitle string, overdueDays, totalFee int) Message {
	return Message{
		Subject: "Your borrow request has been cancelled",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour loan of %q was cancelled after being %d %s overdue. A fee of %d is due. Your account needs to be re-approved before borrowing again.",
			studentName, bookTitle, overdueDays, plural(overdueDays), totalFee),
	}
}

func ReturnConfirmation(studentName, bookTitle string, wasOverdue bool) Message {
	body := fmt.Sprintf("Hi %s,\n\nThanks for returning %q. See you at the library!", studentName, bookTitle)
	if wasOverdue {
		body = fmt.Sprintf("Hi %s,\n\n%q was returned past its due date. Late fees may apply to your account.", studentName, bookTitle)
	}
	return Message{Subject: "Book Return Confirmed", Body: body}
}

func AccountApproved(studentName string) Message {
	return Message{
		Subject: "Your BookWise account has been approved",
		Body:    fmt.Sprintf("Hi %s,\n\nYour account was approved. You can now browse and borrow books.", studentName),
	}
}

func Welcome(studentName string) Message {
	return Message{
		Subject: "Welcome to BookWise Library",
		Body:    fmt.Sprintf("Hi %s,\n\nWelcome aboard! Your account is waiting for approval; we will let you know as soon as it is ready.", studentName),
	}
}

func WelcomeBack(studentName string) Message {
	return Message{
		Subject: "Welcome back!",
		Body:    fmt.Sprintf("Hi %s,\n\nGood to see you around the library again.", studentName),
	}
}

func InactivityReminder(studentName string) Message {
	return Message{
		Subject: "Are you still there?",
		Body:    fmt.Sprintf("Hi %s,\n\nWe have not seen you in a while. New books arrive every week - come take a look.", studentName),
	}
}

func Goodbye(studentName string) Message {
	return Message{
		Subject: "We might say goodbye soon...",
		Body: fmt.Sprintf(
			"Hey %s, we haven't seen you in a while! If you still want to use BookWise, log in soon, or we might deactivate your account.",
			studentName),
	}
}
