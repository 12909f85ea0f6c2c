package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bookwise/models"
)

// Books

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

// FindBook returns (nil, nil) when the book does not exist.
func (r *Repo) FindBook(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) UpdateBook(ctx context.Context, b *models.Book) error {
	res := r.DB.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"title":            b.Title,
			"author":           b.Author,
			"genre":            b.Genre,
			"rating":           b.Rating,
			"total_copies":     b.TotalCopies,
			"available_copies": b.AvailableCopies,
			"description":      b.Description,
			"cover_color":      b.CoverColor,
			"cover_url":        b.CoverURL,
			"video_url":        b.VideoURL,
			"summary":          b.Summary,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) DeleteBook(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&models.Book{}, "id = ?", id).Error
}

type ListBooksResult struct {
	Books []models.Book `json:"books"`
	Total int64         `json:"total"`
}

// ListBooks supports the browsing page: pagination plus the
// newest/oldest/highest_rated orderings.
func (r *Repo) ListBooks(ctx context.Context, filter string, page, size int) (ListBooksResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 12
	}

	tx := r.DB.WithContext(ctx).Model(&models.Book{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListBooksResult{}, err
	}

	switch filter {
	case "oldest":
		tx = tx.Order("created_at ASC")
	case "highest_rated":
		tx = tx.Order("rating DESC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var books []models.Book
	if err := tx.
		Offset((page - 1) * size).
		Limit(size).
		Find(&books).Error; err != nil {
		return ListBooksResult{}, err
	}
	return ListBooksResult{Books: books, Total: total}, nil
}
