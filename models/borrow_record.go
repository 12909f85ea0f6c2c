package models

import "time"

const BorrowRecordTable = "borrow_records"

// Borrow request statuses.
const (
	BorrowPending   = "PENDING"
	BorrowBorrowed  = "BORROWED"
	BorrowReturned  = "RETURNED"
	BorrowCancelled = "CANCELLED"
)

const (
	// LoanDays is the due-date offset applied when a request is approved.
	LoanDays = 7
	// RenewWindowDays is how close to the due date a renewal is allowed.
	RenewWindowDays = 3
	// CancelWindow is how long after creation a user may cancel their own request.
	CancelWindow = 24 * time.Hour
	// ReturnHold blocks the user-facing return path right after approval.
	ReturnHold = 24 * time.Hour
	// FinePerOverdueDay is charged when an overdue loan is force-cancelled.
	FinePerOverdueDay = 20
)

// BorrowRecord is the authoritative record of one user's attempt to borrow
// one copy of one book. Rows are never deleted.
type BorrowRecord struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"userId"`
	BookID string `gorm:"type:uuid;index;not null" json:"bookId"`

	BorrowDate time.Time  `gorm:"not null" json:"borrowDate"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`

	Status string `gorm:"size:20;not null;default:'PENDING'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BorrowRecord) TableName() string { return BorrowRecordTable }

// Open reports whether the request still blocks a new one for the same pair.
func (r *BorrowRecord) Open() bool {
	return r.Status == BorrowPending || r.Status == BorrowBorrowed
}

// CanCancel: user-initiated cancellation is only allowed within 24 hours of
// creation, and only while the request is still waiting for approval.
func (r *BorrowRecord) CanCancel(now time.Time) bool {
	return r.Status == BorrowPending && now.Sub(r.BorrowDate) <= CancelWindow
}

// CanReturn gates the user-facing return path: a freshly approved loan holds
// for 24 hours so it cannot race the approval action.
func (r *BorrowRecord) CanReturn(now time.Time) bool {
	return r.Status == BorrowBorrowed && now.Sub(r.UpdatedAt) >= ReturnHold
}

// CanRenew: only a BORROWED loan due within the next 3 days may re-enter the
// approval queue. An already overdue loan cannot be renewed through this path.
func (r *BorrowRecord) CanRenew(now time.Time) bool {
	if r.Status != BorrowBorrowed || r.DueDate == nil {
		return false
	}
	left := r.DueDate.Sub(now)
	return left > 0 && left <= RenewWindowDays*24*time.Hour
}

// ValidTransition is the legal status graph. RETURNED and CANCELLED are
// terminal; renewal is the BORROWED -> PENDING edge.
func ValidTransition(from, to string) bool {
	switch from {
	case BorrowPending:
		return to == BorrowBorrowed || to == BorrowCancelled
	case BorrowBorrowed:
		return to == BorrowReturned || to == BorrowPending
	default:
		return false
	}
}

// BorrowState is the notification workflow's view of a request.
type BorrowState string

const (
	StatePending   BorrowState = "pending"
	StateBorrowed  BorrowState = "borrowed"
	StateCancelled BorrowState = "cancelled"
	StateOverdue   BorrowState = "overdue"
)

// ClassifyBorrowState re-derives the workflow state from a raw (status,
// dueDate) read. A missing record counts as pending. Note that RETURNED and
// CANCELLED collapse into the same bucket here: the workflow only cares that
// the loan stopped being borrowed, not why.
func ClassifyBorrowState(rec *BorrowRecord, now time.Time) BorrowState {
	if rec == nil {
		return StatePending
	}
	if rec.Status == BorrowBorrowed {
		return StateBorrowed
	}
	if rec.DueDate == nil {
		return StatePending
	}
	if now.After(*rec.DueDate) {
		return StateOverdue
	}
	return StateCancelled
}

// OverdueDays counts whole days past due, rounding any partial day up.
func OverdueDays(dueDate, now time.Time) int {
	elapsed := now.Sub(dueDate)
	if elapsed <= 0 {
		return 0
	}
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) > 0 {
		days++
	}
	return days
}
