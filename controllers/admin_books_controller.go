package controllers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookwise/app"
	"bookwise/models"
)

type AdminBookController struct{ *Srv }

func NewAdminBookController(s *Srv) *AdminBookController {
	return &AdminBookController{Srv: s}
}

type bookInput struct {
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author" binding:"required"`
	Genre           string  `json:"genre" binding:"required"`
	Rating          float64 `json:"rating"`
	TotalCopies     int     `json:"totalCopies" binding:"required,min=1"`
	AvailableCopies *int    `json:"availableCopies"`
	Description     string  `json:"description"`
	CoverColor      string  `json:"coverColor"`
	CoverURL        string  `json:"coverUrl"`
	VideoURL        string  `json:"videoUrl"`
	Summary         string  `json:"summary"`
}

func (in *bookInput) toModel(id string) *models.Book {
	available := in.TotalCopies
	if in.AvailableCopies != nil {
		available = *in.AvailableCopies
	}
	if available > in.TotalCopies {
		available = in.TotalCopies
	}
	if available < 0 {
		available = 0
	}
	return &models.Book{
		ID:              id,
		Title:           in.Title,
		Author:          in.Author,
		Genre:           in.Genre,
		Rating:          in.Rating,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: available,
		Description:     in.Description,
		CoverColor:      in.CoverColor,
		CoverURL:        in.CoverURL,
		VideoURL:        in.VideoURL,
		Summary:         in.Summary,
	}
}

func (ab *AdminBookController) CreateBook(c *app.Ctx) {
	var in bookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	b := in.toModel(uuid.NewString())
	if err := ab.Repo.CreateBook(c.Request.Context(), b); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	ab.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusCreated, b)
}

func (ab *AdminBookController) UpdateBook(c *app.Ctx) {
	var in bookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	b := in.toModel(c.Param("id"))
	if err := ab.Repo.UpdateBook(c.Request.Context(), b); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (ab *AdminBookController) DeleteBook(c *app.Ctx) {
	if err := ab.Repo.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	ab.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"ok": true})
}
