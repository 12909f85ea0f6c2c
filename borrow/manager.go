// Package borrow owns the borrow-request state machine: it validates every
// transition against the legal graph and keeps the book's available-copy
// count consistent with approvals.
package borrow

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"bookwise/models"
	"bookwise/notify"
	"bookwise/workflow"
)

// Store is the persistence the manager needs. Multi-write methods
// (ApproveRequest, CancelOpenForUser) must be atomic: either every write in
// them lands or none does.
type Store interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindBook(ctx context.Context, id string) (*models.Book, error)
	FindRequest(ctx context.Context, id string) (*models.BorrowRecord, error)
	// FindOpenRequest returns the unique PENDING/BORROWED record for the
	// pair, or (nil, nil) when there is none.
	FindOpenRequest(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error)

	InsertRequest(ctx context.Context, rec *models.BorrowRecord) error
	// ApproveRequest sets the request BORROWED with the given due date,
	// decrements the book's available copies (re-checking availability in
	// the same transaction) and persists the notification workflow run.
	ApproveRequest(ctx context.Context, requestID string, dueDate time.Time, run *workflow.Run) error
	MarkReturned(ctx context.Context, requestID string, returnedAt time.Time) error
	MarkCancelled(ctx context.Context, requestID string) error
	ResetToPending(ctx context.Context, requestID string) error
	// CancelOpenForUser cancels every open request of one user and reports
	// how many were affected.
	CancelOpenForUser(ctx context.Context, userID string) (int64, error)
}

// Manager executes lifecycle operations as short, request-scoped units of
// work. The notification workflow it starts on approval runs on its own
// schedule afterwards.
type Manager struct {
	store  Store
	sender notify.Sender
	now    func() time.Time
}

func NewManager(store Store, sender notify.Sender) *Manager {
	return &Manager{store: store, sender: sender, now: time.Now}
}

// WithClock overrides the manager's clock.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// CreateRequest opens a PENDING request for (user, book). The partial
// unique index on open requests backs the duplicate check under races.
func (m *Manager) CreateRequest(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	user, err := m.store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !user.IsApproved() {
		return nil, ErrNotAvailable
	}

	book, err := m.store.FindBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrNotFound
	}
	if book.AvailableCopies <= 0 {
		return nil, ErrNotAvailable
	}

	open, err := m.store.FindOpenRequest(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrAlreadyOpen
	}

	rec := &models.BorrowRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: m.now(),
		Status:     models.BorrowPending,
	}
	if err := m.store.InsertRequest(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SetStatus validates the transition and applies its side effects:
// approval computes the due date, takes a copy and starts the notification
// workflow in the same transaction; return stamps the return date and sends
// the confirmation. overdueFlag only matters for RETURNED.
func (m *Manager) SetStatus(ctx context.Context, requestID, newStatus string, overdueFlag bool) error {
	rec, err := m.store.FindRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	if !models.ValidTransition(rec.Status, newStatus) {
		return ErrInvalidTransition
	}

	switch newStatus {
	case models.BorrowBorrowed:
		return m.approve(ctx, rec)
	case models.BorrowReturned:
		if err := m.store.MarkReturned(ctx, requestID, m.now()); err != nil {
			return err
		}
		m.sendReturnConfirmation(ctx, rec, overdueFlag)
		return nil
	case models.BorrowCancelled:
		return m.store.MarkCancelled(ctx, requestID)
	case models.BorrowPending:
		return m.store.ResetToPending(ctx, requestID)
	default:
		return ErrInvalidTransition
	}
}

func (m *Manager) approve(ctx context.Context, rec *models.BorrowRecord) error {
	user, err := m.store.FindUser(ctx, rec.UserID)
	if err != nil {
		return err
	}
	book, err := m.store.FindBook(ctx, rec.BookID)
	if err != nil {
		return err
	}
	if user == nil || book == nil {
		return ErrNotFound
	}

	dueDate := m.now().Add(models.LoanDays * 24 * time.Hour)
	run, err := workflow.NewBorrowingRun(workflow.BorrowingSeed{
		RequestID:   rec.ID,
		Email:       user.Email,
		StudentName: user.FullName,
		BookID:      book.ID,
		BookTitle:   book.Title,
		BorrowDate:  rec.BorrowDate,
		DueDate:     dueDate,
	}, m.now())
	if err != nil {
		return err
	}
	return m.store.ApproveRequest(ctx, rec.ID, dueDate, run)
}

// Cancel handles user- and admin-initiated cancellation of a PENDING
// request. Users only get a 24-hour window after creating the request;
// admins are unrestricted.
func (m *Manager) Cancel(ctx context.Context, requestID, actorID string, byAdmin bool) error {
	rec, err := m.store.FindRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	if !byAdmin {
		if rec.UserID != actorID {
			return ErrNotFound
		}
		if !rec.CanCancel(m.now()) {
			return ErrNotEligible
		}
	}
	if !models.ValidTransition(rec.Status, models.BorrowCancelled) {
		return ErrInvalidTransition
	}
	return m.store.MarkCancelled(ctx, requestID)
}

// Renew resets the user's BORROWED loan for the book back to PENDING so it
// re-enters the approval queue. Only allowed when the due date is between 0
// and 3 days away.
func (m *Manager) Renew(ctx context.Context, bookID, userID string) error {
	rec, err := m.store.FindOpenRequest(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if rec == nil || !rec.CanRenew(m.now()) {
		return ErrNotEligible
	}
	return m.store.ResetToPending(ctx, rec.ID)
}

// ReturnByUser is the self-service return path. It carries an extra
// 24-hour hold after approval so it cannot race the approval action.
func (m *Manager) ReturnByUser(ctx context.Context, requestID, userID string) error {
	rec, err := m.store.FindRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if rec == nil || rec.UserID != userID {
		return ErrNotFound
	}
	if !rec.CanReturn(m.now()) {
		return ErrNotEligible
	}
	now := m.now()
	if err := m.store.MarkReturned(ctx, requestID, now); err != nil {
		return err
	}
	wasOverdue := rec.DueDate != nil && now.After(*rec.DueDate)
	m.sendReturnConfirmation(ctx, rec, wasOverdue)
	return nil
}

// RejectUserRequests cascades an account rejection: every open request of
// the user is forced to CANCELLED.
func (m *Manager) RejectUserRequests(ctx context.Context, userID string) (int64, error) {
	return m.store.CancelOpenForUser(ctx, userID)
}

func (m *Manager) sendReturnConfirmation(ctx context.Context, rec *models.BorrowRecord, wasOverdue bool) {
	user, err := m.store.FindUser(ctx, rec.UserID)
	if err != nil || user == nil {
		log.Printf("borrow: return confirmation for %s: user lookup failed: %v", rec.ID, err)
		return
	}
	book, err := m.store.FindBook(ctx, rec.BookID)
	if err != nil || book == nil {
		log.Printf("borrow: return confirmation for %s: book lookup failed: %v", rec.ID, err)
		return
	}
	msg := notify.ReturnConfirmation(user.FullName, book.Title, wasOverdue)
	if err := m.sender.Send(ctx, user.Email, msg.Subject, msg.Body); err != nil {
		log.Printf("borrow: return confirmation to %s failed: %v", user.Email, err)
	}
}
