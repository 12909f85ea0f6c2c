package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bookwise/models"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{models.BorrowPending, models.BorrowBorrowed, true},
		{models.BorrowPending, models.BorrowCancelled, true},
		{models.BorrowPending, models.BorrowReturned, false},
		{models.BorrowPending, models.BorrowPending, false},
		{models.BorrowBorrowed, models.BorrowReturned, true},
		{models.BorrowBorrowed, models.BorrowPending, true},
		{models.BorrowBorrowed, models.BorrowCancelled, false},
		{models.BorrowReturned, models.BorrowBorrowed, false},
		{models.BorrowReturned, models.BorrowPending, false},
		{models.BorrowCancelled, models.BorrowPending, false},
		{models.BorrowCancelled, models.BorrowBorrowed, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.ok, models.ValidTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanCancel(t *testing.T) {
	rec := &models.BorrowRecord{Status: models.BorrowPending, BorrowDate: baseTime}

	assert.True(t, rec.CanCancel(baseTime.Add(1*time.Hour)))
	assert.True(t, rec.CanCancel(baseTime.Add(24*time.Hour)), "24h mark is still inside the window")
	assert.False(t, rec.CanCancel(baseTime.Add(24*time.Hour+time.Second)))

	rec.Status = models.BorrowBorrowed
	assert.False(t, rec.CanCancel(baseTime.Add(1*time.Hour)), "only pending requests can be cancelled by the user")
}

func TestCanReturn(t *testing.T) {
	rec := &models.BorrowRecord{Status: models.BorrowBorrowed, UpdatedAt: baseTime}

	assert.False(t, rec.CanReturn(baseTime.Add(23*time.Hour)), "fresh approvals hold for a day")
	assert.True(t, rec.CanReturn(baseTime.Add(24*time.Hour)))
	assert.True(t, rec.CanReturn(baseTime.Add(72*time.Hour)))

	rec.Status = models.BorrowPending
	assert.False(t, rec.CanReturn(baseTime.Add(48*time.Hour)))
}

func TestCanRenew(t *testing.T) {
	due := baseTime.Add(7 * 24 * time.Hour)
	rec := &models.BorrowRecord{Status: models.BorrowBorrowed, DueDate: ptr(due)}

	assert.False(t, rec.CanRenew(baseTime), "a week out is too early")
	assert.True(t, rec.CanRenew(due.Add(-3*24*time.Hour)), "exactly three days out")
	assert.True(t, rec.CanRenew(due.Add(-time.Hour)))
	assert.False(t, rec.CanRenew(due), "due moment itself is no longer renewable")
	assert.False(t, rec.CanRenew(due.Add(time.Hour)), "overdue loans cannot renew")

	rec.Status = models.BorrowPending
	assert.False(t, rec.CanRenew(due.Add(-time.Hour)))

	rec.Status = models.BorrowBorrowed
	rec.DueDate = nil
	assert.False(t, rec.CanRenew(baseTime))
}

func TestClassifyBorrowState(t *testing.T) {
	due := baseTime.Add(7 * 24 * time.Hour)

	tests := []struct {
		name string
		rec  *models.BorrowRecord
		now  time.Time
		want models.BorrowState
	}{
		{name: "missing_record_is_pending", rec: nil, now: baseTime, want: models.StatePending},
		{
			name: "borrowed_status_wins",
			rec:  &models.BorrowRecord{Status: models.BorrowBorrowed, DueDate: ptr(due)},
			now:  baseTime,
			want: models.StateBorrowed,
		},
		{
			name: "borrowed_past_due_still_reads_borrowed",
			rec:  &models.BorrowRecord{Status: models.BorrowBorrowed, DueDate: ptr(due)},
			now:  due.Add(48 * time.Hour),
			want: models.StateBorrowed,
		},
		{
			name: "no_due_date_is_pending",
			rec:  &models.BorrowRecord{Status: models.BorrowPending},
			now:  baseTime,
			want: models.StatePending,
		},
		{
			name: "terminal_past_due_is_overdue",
			rec:  &models.BorrowRecord{Status: models.BorrowPending, DueDate: ptr(due)},
			now:  due.Add(time.Minute),
			want: models.StateOverdue,
		},
		{
			name: "returned_before_due_collapses_to_cancelled",
			rec:  &models.BorrowRecord{Status: models.BorrowReturned, DueDate: ptr(due), ReturnDate: ptr(baseTime)},
			now:  baseTime,
			want: models.StateCancelled,
		},
		{
			name: "cancelled_before_due",
			rec:  &models.BorrowRecord{Status: models.BorrowCancelled, DueDate: ptr(due)},
			now:  baseTime,
			want: models.StateCancelled,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, models.ClassifyBorrowState(tc.rec, tc.now))
		})
	}
}

func TestOverdueDays(t *testing.T) {
	due := baseTime

	assert.Equal(t, 0, models.OverdueDays(due, due))
	assert.Equal(t, 0, models.OverdueDays(due, due.Add(-time.Hour)))
	assert.Equal(t, 1, models.OverdueDays(due, due.Add(time.Minute)), "partial days round up")
	assert.Equal(t, 1, models.OverdueDays(due, due.Add(24*time.Hour)))
	assert.Equal(t, 2, models.OverdueDays(due, due.Add(24*time.Hour+time.Second)))
	assert.Equal(t, 7, models.OverdueDays(due, due.Add(7*24*time.Hour)))
}
