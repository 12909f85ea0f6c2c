package workflow

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"bookwise/models"
	"bookwise/notify"
)

const KindBorrowing = "borrowing"

// BorrowingSeed is captured once when a request is approved and never
// changes afterwards; the live state of the request is re-read at every
// checkpoint instead.
type BorrowingSeed struct {
	RequestID   string    `json:"requestId"`
	Email       string    `json:"email"`
	StudentName string    `json:"studentName"`
	BookID      string    `json:"bookId"`
	BookTitle   string    `json:"bookTitle"`
	BorrowDate  time.Time `json:"borrowDate"`
	DueDate     time.Time `json:"dueDate"`
}

// NewBorrowingRun builds the run row the approval transaction persists
// alongside the status change. The run wakes immediately; its first step
// re-checks state and sends the borrowed confirmation.
func NewBorrowingRun(seed BorrowingSeed, wakeAt time.Time) (*Run, error) {
	b, err := jsoniter.ConfigFastest.Marshal(seed)
	if err != nil {
		return nil, err
	}
	return &Run{
		ID:     uuid.NewString(),
		Kind:   KindBorrowing,
		Seed:   b,
		Status: RunRunning,
		WakeAt: wakeAt,
	}, nil
}

// BorrowStore is what the borrowing workflow needs from authoritative
// storage at its checkpoints.
type BorrowStore interface {
	// FindBorrowRecord returns (nil, nil) when the record does not exist.
	FindBorrowRecord(ctx context.Context, requestID string) (*models.BorrowRecord, error)
	// CancelOverdueRecord forces the request to CANCELLED. It must be a
	// conditional write so that re-running the final step cancels once.
	CancelOverdueRecord(ctx context.Context, requestID string) error
	// DemoteUserByEmail revokes the user's approval (status back to PENDING).
	DemoteUserByEmail(ctx context.Context, email string) error
}

// Step layout. Reminders count down from 3 days left to 1.
const (
	reminderLeadDays = 3
)

const (
	borrowStepConfirm      = 0
	borrowStepReminder3    = 1
	borrowStepReminder2    = 2
	borrowStepReminder1    = 3
	borrowStepOverdueCheck = 4
	borrowStepFinal        = 5
)

// Borrowing drives the notification sequence for one approved loan:
// confirmation, three daily reminders close to the due date, an overdue
// notice, and after a 7-day grace window the forced cancellation with a fee.
type Borrowing struct {
	store  BorrowStore
	sender notify.Sender
}

func NewBorrowing(store BorrowStore, sender notify.Sender) *Borrowing {
	return &Borrowing{store: store, sender: sender}
}

func (b *Borrowing) Kind() string { return KindBorrowing }

func (b *Borrowing) Step(ctx context.Context, raw []byte, step int, now time.Time) (Outcome, error) {
	var seed BorrowingSeed
	if err := jsoniter.ConfigFastest.Unmarshal(raw, &seed); err != nil {
		return Outcome{}, err
	}

	switch step {
	case borrowStepConfirm:
		state, err := b.state(ctx, seed.RequestID, now)
		if err != nil {
			return Outcome{}, err
		}
		if state != models.StateBorrowed {
			return Outcome{Done: true}, nil
		}
		b.send(ctx, seed.Email, notify.BorrowedConfirmation(seed.StudentName, seed.BookTitle, seed.BorrowDate, seed.DueDate))
		return Outcome{Next: borrowStepReminder3, Delay: untilReminderWindow(seed.DueDate, now)}, nil

	case borrowStepReminder3, borrowStepReminder2, borrowStepReminder1:
		state, err := b.state(ctx, seed.RequestID, now)
		if err != nil {
			return Outcome{}, err
		}
		if state != models.StateBorrowed {
			return Outcome{Done: true}, nil
		}
		daysLeft := borrowStepOverdueCheck - step
		b.send(ctx, seed.Email, notify.DueReminder(seed.StudentName, seed.BookTitle, daysLeft, seed.DueDate))
		return Outcome{Next: step + 1, Delay: 24 * time.Hour}, nil

	case borrowStepOverdueCheck:
		state, err := b.state(ctx, seed.RequestID, now)
		if err != nil {
			return Outcome{}, err
		}
		if state != models.StateOverdue {
			// Returned, cancelled, or still borrowed: fall through to the
			// final check without waiting.
			return Outcome{Next: borrowStepFinal}, nil
		}
		overdueDays := models.OverdueDays(seed.DueDate, now)
		b.send(ctx, seed.Email, notify.Overdue(seed.StudentName, seed.BookTitle, overdueDays))
		return Outcome{Next: borrowStepFinal, Delay: 7 * 24 * time.Hour}, nil

	case borrowStepFinal:
		state, err := b.state(ctx, seed.RequestID, now)
		if err != nil {
			return Outcome{}, err
		}
		if state != models.StateOverdue {
			return Outcome{Done: true}, nil
		}
		overdueDays := models.OverdueDays(seed.DueDate, now)
		totalFee := models.FinePerOverdueDay * overdueDays
		if err := b.store.CancelOverdueRecord(ctx, seed.RequestID); err != nil {
			return Outcome{}, err
		}
		if err := b.store.DemoteUserByEmail(ctx, seed.Email); err != nil {
			return Outcome{}, err
		}
		b.send(ctx, seed.Email, notify.BorrowCancelled(seed.StudentName, seed.BookTitle, overdueDays, totalFee))
		return Outcome{Done: true}, nil

	default:
		return Outcome{Done: true}, nil
	}
}

func (b *Borrowing) state(ctx context.Context, requestID string, now time.Time) (models.BorrowState, error) {
	rec, err := b.store.FindBorrowRecord(ctx, requestID)
	if err != nil {
		return "", err
	}
	return models.ClassifyBorrowState(rec, now), nil
}

// send is best effort: a delivery failure never stops the workflow.
func (b *Borrowing) send(ctx context.Context, to string, msg notify.Message) {
	if err := b.sender.Send(ctx, to, msg.Subject, msg.Body); err != nil {
		log.Printf("borrowing workflow: send %q to %s failed: %v", msg.Subject, to, err)
	}
}

// untilReminderWindow is the sleep before the first reminder: 3 days ahead
// of the due date, or nothing if that instant already passed.
func untilReminderWindow(dueDate, now time.Time) time.Duration {
	d := dueDate.Add(-reminderLeadDays * 24 * time.Hour).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
