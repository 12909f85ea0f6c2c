package models

import "time"

const BookTable = "books"

type Book struct {
	ID     string  `gorm:"type:uuid;primaryKey" json:"id"`
	Title  string  `gorm:"size:255;not null" json:"title"`
	Author string  `gorm:"size:255;not null" json:"author"`
	Genre  string  `gorm:"not null" json:"genre"`
	Rating float64 `gorm:"not null" json:"rating"`

	TotalCopies     int `gorm:"not null;default:1" json:"totalCopies"`
	AvailableCopies int `gorm:"not null;default:0" json:"availableCopies"`

	Description string `gorm:"not null" json:"description"`
	CoverColor  string `gorm:"size:7;not null" json:"coverColor"`
	CoverURL    string `gorm:"not null" json:"coverUrl"`
	VideoURL    string `json:"videoUrl"`
	Summary     string `json:"summary"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return BookTable }
