package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookwise/borrow"
	"bookwise/models"
	"bookwise/workflow"
)

// Borrow requests. Repo satisfies both borrow.Store and workflow.BorrowStore.

func (r *Repo) InsertRequest(ctx context.Context, rec *models.BorrowRecord) error {
	err := r.DB.WithContext(ctx).Create(rec).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Partial unique index: one open request per (user, book).
		return borrow.ErrAlreadyOpen
	}
	return err
}

// FindRequest returns (nil, nil) when the request does not exist.
func (r *Repo) FindRequest(ctx context.Context, id string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := r.DB.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindBorrowRecord is the workflow-checkpoint read of the same row.
func (r *Repo) FindBorrowRecord(ctx context.Context, requestID string) (*models.BorrowRecord, error) {
	return r.FindRequest(ctx, requestID)
}

func (r *Repo) FindOpenRequest(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND status IN ?",
			userID, bookID, []string{models.BorrowPending, models.BorrowBorrowed}).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ApproveRequest is the PENDING -> BORROWED transition as one atomic unit:
// lock the request, take a copy only if one is left, stamp the due date and
// persist the workflow run. Availability is re-checked inside the
// transaction so two concurrent approvals cannot decrement past zero.
func (r *Repo) ApproveRequest(ctx context.Context, requestID string, dueDate time.Time, run *workflow.Run) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.BorrowRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rec, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return borrow.ErrNotFound
			}
			return err
		}
		if rec.Status != models.BorrowPending {
			return borrow.ErrInvalidTransition
		}

		res := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies > 0", rec.BookID).
			Update("available_copies", gorm.Expr("available_copies - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return borrow.ErrNotAvailable
		}

		if err := tx.Model(&rec).Updates(map[string]any{
			"status":   models.BorrowBorrowed,
			"due_date": dueDate,
		}).Error; err != nil {
			return err
		}

		return tx.Create(run).Error
	})
}

func (r *Repo) MarkReturned(ctx context.Context, requestID string, returnedAt time.Time) error {
	return r.setRequestStatus(ctx, requestID, map[string]any{
		"status":      models.BorrowReturned,
		"return_date": returnedAt,
	})
}

func (r *Repo) MarkCancelled(ctx context.Context, requestID string) error {
	return r.setRequestStatus(ctx, requestID, map[string]any{
		"status": models.BorrowCancelled,
	})
}

// ResetToPending is the renewal edge; the stale due date stays in place
// until the next approval recomputes it.
func (r *Repo) ResetToPending(ctx context.Context, requestID string) error {
	return r.setRequestStatus(ctx, requestID, map[string]any{
		"status": models.BorrowPending,
	})
}

func (r *Repo) setRequestStatus(ctx context.Context, requestID string, updates map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("id = ?", requestID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return borrow.ErrNotFound
	}
	return nil
}

// CancelOverdueRecord is the workflow's end-of-life write. Conditional so a
// re-executed final step cancels exactly once.
func (r *Repo) CancelOverdueRecord(ctx context.Context, requestID string) error {
	return r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("id = ? AND status <> ?", requestID, models.BorrowCancelled).
		Update("status", models.BorrowCancelled).Error
}

// CancelOpenForUser cascades an account rejection.
func (r *Repo) CancelOpenForUser(ctx context.Context, userID string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("user_id = ? AND status IN ?",
			userID, []string{models.BorrowPending, models.BorrowBorrowed}).
		Update("status", models.BorrowCancelled)
	return res.RowsAffected, res.Error
}

// Listing

// BorrowRequestRow is the admin table shape: request plus who and what.
type BorrowRequestRow struct {
	RequestID  string     `json:"requestId"`
	UserID     string     `json:"userId"`
	FullName   string     `json:"fullName"`
	Email      string     `json:"email"`
	BookID     string     `json:"bookId"`
	BookTitle  string     `json:"bookTitle"`
	CoverURL   string     `json:"coverUrl"`
	CoverColor string     `json:"coverColor"`
	BorrowDate time.Time  `json:"borrowDate"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Status     string     `json:"status"`
}

func (r *Repo) ListRequests(ctx context.Context, status string, limit int) ([]BorrowRequestRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	q := r.DB.WithContext(ctx).
		Table(models.BorrowRecordTable+" AS br").
		Select(`br.id AS request_id, br.user_id, u.full_name, u.email,
			br.book_id, b.title AS book_title, b.cover_url, b.cover_color,
			br.borrow_date, br.due_date, br.return_date, br.status`).
		Joins("INNER JOIN " + models.UserTable + " u ON u.id = br.user_id").
		Joins("INNER JOIN " + models.BookTable + " b ON b.id = br.book_id").
		Order("br.updated_at DESC").
		Limit(limit)
	if status != "" {
		q = q.Where("br.status = ?", status)
	}

	var rows []BorrowRequestRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// BorrowedBookRow backs the profile page: one request with its book.
type BorrowedBookRow struct {
	Request models.BorrowRecord `json:"request"`
	Book    models.Book         `json:"book"`
}

func (r *Repo) ListUserRequests(ctx context.Context, userID string) ([]BorrowedBookRow, error) {
	var recs []models.BorrowRecord
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}

	rows := make([]BorrowedBookRow, 0, len(recs))
	for _, rec := range recs {
		book, err := r.FindBook(ctx, rec.BookID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			continue
		}
		rows = append(rows, BorrowedBookRow{Request: rec, Book: *book})
	}
	return rows, nil
}
