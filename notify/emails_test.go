package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bookwise/notify"
)

func TestDueReminderCountdown(t *testing.T) {
	due := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)

	msg := notify.DueReminder("Dana", "Dune", 3, due)
	assert.Equal(t, "Reminder: 3 day(s) left to return your book", msg.Subject)
	assert.Contains(t, msg.Body, "March 17, 2025")
	assert.Contains(t, msg.Body, "3 days")

	msg = notify.DueReminder("Dana", "Dune", 1, due)
	assert.Contains(t, msg.Body, "1 day left")
}

func TestBorrowCancelledIncludesFee(t *testing.T) {
	msg := notify.BorrowCancelled("Dana", "Dune", 9, 180)
	assert.Contains(t, msg.Body, "9 days overdue")
	assert.Contains(t, msg.Body, "A fee of 180 is due")
	assert.Contains(t, msg.Body, "re-approved")
}

func TestReturnConfirmationVariants(t *testing.T) {
	onTime := notify.ReturnConfirmation("Dana", "Dune", false)
	assert.Contains(t, onTime.Body, "Thanks for returning")

	late := notify.ReturnConfirmation("Dana", "Dune", true)
	assert.Equal(t, onTime.Subject, late.Subject)
	assert.Contains(t, late.Body, "past its due date")
}
