package borrow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookwise/borrow"
	"bookwise/models"
	"bookwise/workflow"
)

// memStore is an in-memory Store with the same observable behavior as the
// Postgres repository, including the conditional copy decrement on approval.
// now stands in for the database's write timestamps.
type memStore struct {
	users    map[string]*models.User
	books    map[string]*models.Book
	requests map[string]*models.BorrowRecord
	runs     []*workflow.Run
	now      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		books:    map[string]*models.Book{},
		requests: map[string]*models.BorrowRecord{},
	}
}

func (s *memStore) FindUser(_ context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

func (s *memStore) FindBook(_ context.Context, id string) (*models.Book, error) {
	return s.books[id], nil
}

func (s *memStore) FindRequest(_ context.Context, id string) (*models.BorrowRecord, error) {
	rec := s.requests[id]
	if rec == nil {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *memStore) FindOpenRequest(_ context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	for _, rec := range s.requests {
		if rec.UserID == userID && rec.BookID == bookID && rec.Open() {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertRequest(_ context.Context, rec *models.BorrowRecord) error {
	open, _ := s.FindOpenRequest(context.Background(), rec.UserID, rec.BookID)
	if open != nil {
		return borrow.ErrAlreadyOpen
	}
	cp := *rec
	s.requests[rec.ID] = &cp
	return nil
}

func (s *memStore) ApproveRequest(_ context.Context, requestID string, dueDate time.Time, run *workflow.Run) error {
	rec := s.requests[requestID]
	if rec == nil {
		return borrow.ErrNotFound
	}
	if rec.Status != models.BorrowPending {
		return borrow.ErrInvalidTransition
	}
	book := s.books[rec.BookID]
	if book == nil || book.AvailableCopies <= 0 {
		return borrow.ErrNotAvailable
	}
	book.AvailableCopies--
	rec.Status = models.BorrowBorrowed
	rec.DueDate = &dueDate
	rec.UpdatedAt = s.now
	s.runs = append(s.runs, run)
	return nil
}

func (s *memStore) setStatus(requestID, status string) error {
	rec := s.requests[requestID]
	if rec == nil {
		return borrow.ErrNotFound
	}
	rec.Status = status
	return nil
}

func (s *memStore) MarkReturned(_ context.Context, requestID string, returnedAt time.Time) error {
	if err := s.setStatus(requestID, models.BorrowReturned); err != nil {
		return err
	}
	s.requests[requestID].ReturnDate = &returnedAt
	return nil
}

func (s *memStore) MarkCancelled(_ context.Context, requestID string) error {
	return s.setStatus(requestID, models.BorrowCancelled)
}

func (s *memStore) ResetToPending(_ context.Context, requestID string) error {
	return s.setStatus(requestID, models.BorrowPending)
}

func (s *memStore) CancelOpenForUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, rec := range s.requests {
		if rec.UserID == userID && rec.Open() {
			rec.Status = models.BorrowCancelled
			n++
		}
	}
	return n, nil
}

type nopSender struct{ sent []string }

func (s *nopSender) Send(_ context.Context, _, subject, _ string) error {
	s.sent = append(s.sent, subject)
	return nil
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func seedStore() *memStore {
	s := newMemStore()
	s.now = testNow
	s.users["u1"] = &models.User{ID: "u1", FullName: "Dana", Email: "dana@uni.edu", Status: models.UserApproved}
	s.users["u2"] = &models.User{ID: "u2", FullName: "Sam", Email: "sam@uni.edu", Status: models.UserApproved}
	s.users["u3"] = &models.User{ID: "u3", FullName: "Kim", Email: "kim@uni.edu", Status: models.UserPending}
	s.books["b1"] = &models.Book{ID: "b1", Title: "The Go Programming Language", TotalCopies: 1, AvailableCopies: 1}
	return s
}

func newManager(s *memStore, sender *nopSender, now time.Time) *borrow.Manager {
	return borrow.NewManager(s, sender).WithClock(fixedClock(now))
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()
	s := seedStore()
	m := newManager(s, &nopSender{}, testNow)

	rec, err := m.CreateRequest(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BorrowPending, rec.Status)
	assert.Equal(t, testNow, rec.BorrowDate)
	assert.Nil(t, rec.DueDate)

	// The same pair cannot open a second request while one is unresolved.
	_, err = m.CreateRequest(ctx, "u1", "b1")
	assert.ErrorIs(t, err, borrow.ErrAlreadyOpen)

	// A pending request does not take the copy, so another user may still
	// request the same book.
	assert.Equal(t, 1, s.books["b1"].AvailableCopies)
	_, err = m.CreateRequest(ctx, "u2", "b1")
	require.NoError(t, err)

	_, err = m.CreateRequest(ctx, "u3", "b1")
	assert.ErrorIs(t, err, borrow.ErrNotAvailable, "unapproved accounts cannot borrow")

	_, err = m.CreateRequest(ctx, "nobody", "b1")
	assert.ErrorIs(t, err, borrow.ErrNotFound)
	_, err = m.CreateRequest(ctx, "u1", "no-book")
	assert.ErrorIs(t, err, borrow.ErrNotFound)
}

func TestApproval_TakesLastCopy(t *testing.T) {
	ctx := context.Background()
	s := seedStore()
	m := newManager(s, &nopSender{}, testNow)

	r1, err := m.CreateRequest(ctx, "u1", "b1")
	require.NoError(t, err)
	r2, err := m.CreateRequest(ctx, "u2", "b1")
	require.NoError(t, err)

	require.NoError(t, m.SetStatus(ctx, r1.ID, models.BorrowBorrowed, false))
	assert.Equal(t, 0, s.books["b1"].AvailableCopies)

	got := s.requests[r1.ID]
	assert.Equal(t, models.BorrowBorrowed, got.Status)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, testNow.Add(7*24*time.Hour), *got.DueDate)

	// Approval persisted exactly one workflow run for the loan.
	require.Len(t, s.runs, 1)
	assert.Equal(t, workflow.KindBorrowing, s.runs[0].Kind)
	assert.Equal(t, workflow.RunRunning, s.runs[0].Status)

	// The second request cannot be approved once the copy is gone.
	err = m.SetStatus(ctx, r2.ID, models.BorrowBorrowed, false)
	assert.ErrorIs(t, err, borrow.ErrNotAvailable)
	assert.Equal(t, models.BorrowPending, s.requests[r2.ID].Status)

	// New requests are refused outright while no copies remain.
	_, err = m.CreateRequest(ctx, "u3", "b1")
	assert.ErrorIs(t, err, borrow.ErrNotAvailable)
}

func TestSetStatus_TransitionGraph(t *testing.T) {
	ctx := context.Background()
	s := seedStore()
	sender := &nopSender{}
	m := newManager(s, sender, testNow)

	rec, err := m.CreateRequest(ctx, "u1", "b1")
	require.NoError(t, err)

	assert.ErrorIs(t, m.SetStatus(ctx, rec.ID, models.BorrowReturned, false), borrow.ErrInvalidTransition)
	assert.ErrorIs(t, m.SetStatus(ctx, "no-such", models.BorrowBorrowed, false), borrow.ErrNotFound)

	require.NoError(t, m.SetStatus(ctx, rec.ID, models.BorrowBorrowed, false))
	assert.ErrorIs(t, m.SetStatus(ctx, rec.ID, models.BorrowCancelled, false), borrow.ErrInvalidTransition)

	require.NoError(t, m.SetStatus(ctx, rec.ID, models.BorrowReturned, false))
	assert.Equal(t, []string{"Book Return Confirmed"}, sender.sent)
	require.NotNil(t, s.requests[rec.ID].ReturnDate)

	// Terminal states allow nothing further.
	assert.ErrorIs(t, m.SetStatus(ctx, rec.ID, models.BorrowBorrowed, false), borrow.ErrInvalidTransition)
	assert.ErrorIs(t, m.SetStatus(ctx, rec.ID, models.BorrowPending, false), borrow.ErrInvalidTransition)

	// The copy taken at approval is not restocked by the return.
	assert.Equal(t, 0, s.books["b1"].AvailableCopies)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	s := seedStore()
	m := newManager(s, &nopSender{}, testNow)

	rec, err := m.CreateRequest(ctx, "u1", "b1")
	require.NoError(t, err)

	// Another user cannot see or cancel it.
	assert.ErrorIs(t, m.Cancel(ctx, rec.ID, "u2", false), borrow.ErrNotFound)

	// Inside the 24-hour window the owner may cancel.
	late := newManager(s, &nopSender{}, testNow.Add(25*time.Hour))
	assert.ErrorIs(t, late.Cancel(ctx, rec.ID, "u1", false), borrow.ErrNotEligible)

	require.NoError(t, m.Cancel(ctx, rec.ID, "u1", false))
	assert.Equal(t, models.BorrowCancelled, s.requests[rec.ID].Status)

	// Admins skip the window but not the graph.
	rec2, err := m.CreateRequest(ctx, "u1", "b1")
	require.NoError(t, err)
	rec3, err := m.CreateRequest(ctx, "u2", "b1")
	require.NoError(t, err)

	require.NoError(t, m.SetStatus(ctx, rec2.ID, models.BorrowBorrowed, false))
	assert.ErrorIs(t, late.Cancel(ctx, rec2.ID, "admin", true), borrow.ErrInvalidTransition)
	require.NoError(t, late.Cancel(ctx, rec3.ID, "admin", true))
}

func TestRenew(t *testing.T) {
	ctx := context.Background()
	s := seedStore()
	m := newManager(s, &nopSender{}, testNow)

	rec, err := m.CreateRequest(ctx, "u1", "b1")
	require.NoError(t, err)

	// Pending requests cannot renew.
	assert.ErrorIs(t, m.Renew(ctx, "b1", "u1"), borrow.ErrNotEligible)

	require.NoError(t, m.SetStatus(ctx, rec.ID, models.BorrowBorrowed, false))
	due := *s.requests[rec.ID].DueDate

	tooEarly := newManager(s, &nopSender{}, due.Add(-5*24*time.Hour))
	assert.ErrorIs(t, tooEarly.Renew(ctx, "b1", "u1"), borrow.ErrNotEligible)

	tooLate := newManager(s, &nopSender{}, due.Add(time.Hour))
	assert.ErrorIs(t, tooLate.Renew(ctx, "b1", "u1"), borrow.ErrNotEligible)

	inWindow := newManager(s, &nopSender{}, due.Add(-2*24*time.Hour))
	require.NoError(t, inWindow.Renew(ctx, "b1", "u1"))
	assert.Equal(t, models.BorrowPending, s.requests[rec.ID].Status, "renewal re-enters the approval queue")

	assert.ErrorIs(t, m.Renew(ctx, "b1", "u2"), borrow.ErrNotEligible, "no open loan for this user")
}

func TestReturnByUser(t *testing.T) {
	ctx := context.Background()
	s := seedStore()
	sender := &nopSender{}
	m := newManager(s, sender, testNow)

	rec, err := m.CreateRequest(ctx, "u1", "b1")
	require.NoError(t, err)
	require.NoError(t, m.SetStatus(ctx, rec.ID, models.BorrowBorrowed, false))

	assert.ErrorIs(t, m.ReturnByUser(ctx, rec.ID, "u2"), borrow.ErrNotFound)

	// Fresh approvals hold for a day before the user can return.
	assert.ErrorIs(t, m.ReturnByUser(ctx, rec.ID, "u1"), borrow.ErrNotEligible)

	later := newManager(s, sender, testNow.Add(36*time.Hour))
	require.NoError(t, later.ReturnByUser(ctx, rec.ID, "u1"))
	assert.Equal(t, models.BorrowReturned, s.requests[rec.ID].Status)
	assert.Equal(t, []string{"Book Return Confirmed"}, sender.sent)
}

func TestRejectUserRequests(t *testing.T) {
	ctx := context.Background()
	s := seedStore()
	s.books["b2"] = &models.Book{ID: "b2", Title: "Learning SQL", TotalCopies: 2, AvailableCopies: 2}
	m := newManager(s, &nopSender{}, testNow)

	r1, err := m.CreateRequest(ctx, "u1", "b1")
	require.NoError(t, err)
	r2, err := m.CreateRequest(ctx, "u1", "b2")
	require.NoError(t, err)
	require.NoError(t, m.SetStatus(ctx, r2.ID, models.BorrowBorrowed, false))

	_, err = m.CreateRequest(ctx, "u1", "b1")
	assert.ErrorIs(t, err, borrow.ErrAlreadyOpen)

	n, err := m.RejectUserRequests(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, models.BorrowCancelled, s.requests[r1.ID].Status)
	assert.Equal(t, models.BorrowCancelled, s.requests[r2.ID].Status)
}
