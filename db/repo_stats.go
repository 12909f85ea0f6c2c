package db

import (
	"context"
	"time"

	"bookwise/models"
)

// DashboardStats are the admin landing-page counters, current and as of one
// week ago so the cards can show a trend.
type DashboardStats struct {
	TotalBooks    int64 `json:"totalBooks"`
	TotalUsers    int64 `json:"totalUsers"`
	TotalBorrowed int64 `json:"totalBorrowed"`

	TotalBooksLastWeek    int64 `json:"totalBooksLastWeek"`
	TotalUsersLastWeek    int64 `json:"totalUsersLastWeek"`
	TotalBorrowedLastWeek int64 `json:"totalBorrowedLastWeek"`
}

func (r *Repo) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	weekAgo := time.Now().Add(-7 * 24 * time.Hour)

	q := r.DB.WithContext(ctx)
	if err := q.Model(&models.Book{}).Count(&s.TotalBooks).Error; err != nil {
		return nil, err
	}
	if err := q.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := q.Model(&models.BorrowRecord{}).
		Where("status = ?", models.BorrowBorrowed).
		Count(&s.TotalBorrowed).Error; err != nil {
		return nil, err
	}

	if err := q.Model(&models.Book{}).
		Where("created_at < ?", weekAgo).
		Count(&s.TotalBooksLastWeek).Error; err != nil {
		return nil, err
	}
	if err := q.Model(&models.User{}).
		Where("created_at < ?", weekAgo).
		Count(&s.TotalUsersLastWeek).Error; err != nil {
		return nil, err
	}
	if err := q.Model(&models.BorrowRecord{}).
		Where("status = ? AND created_at < ?", models.BorrowBorrowed, weekAgo).
		Count(&s.TotalBorrowedLastWeek).Error; err != nil {
		return nil, err
	}

	return &s, nil
}
