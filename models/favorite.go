package models

import "time"

const FavoriteTable = "favorite_books"

// FavoriteBook marks one book as a favorite of one user, at most once.
type FavoriteBook struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;index:idx_fav_user_book,unique;not null" json:"userId"`
	BookID string `gorm:"type:uuid;index:idx_fav_user_book,unique;not null" json:"bookId"`

	CreatedAt time.Time `json:"createdAt"`
}

func (FavoriteBook) TableName() string { return FavoriteTable }
