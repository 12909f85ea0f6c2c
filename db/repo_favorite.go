package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookwise/models"
)

// Favorites

// ToggleFavorite adds the book to the user's favorites, or removes it if it
// is already there. Returns true when the book ends up favorited.
func (r *Repo) ToggleFavorite(ctx context.Context, userID, bookID string) (bool, error) {
	favorited := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fav models.FavoriteBook
		err := tx.Where("user_id = ? AND book_id = ?", userID, bookID).First(&fav).Error
		if err == nil {
			return tx.Delete(&fav).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		favorited = true
		return tx.Create(&models.FavoriteBook{
			ID:     uuid.NewString(),
			UserID: userID,
			BookID: bookID,
		}).Error
	})
	return favorited, err
}

func (r *Repo) ListFavoriteBooks(ctx context.Context, userID string) ([]models.Book, error) {
	var books []models.Book
	err := r.DB.WithContext(ctx).
		Model(&models.Book{}).
		Joins("INNER JOIN "+models.FavoriteTable+" f ON f.book_id = books.id").
		Where("f.user_id = ?", userID).
		Order("f.created_at DESC").
		Find(&books).Error
	return books, err
}
