package controllers

import (
	"net/http"
	"strconv"

	"bookwise/app"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

// ListBooks backs the browsing page. ?page=&size=&filter=newest|oldest|highest_rated
func (bc *BookController) ListBooks(c *app.Ctx) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "12"))
	filter := c.Query("filter")

	res, err := bc.Repo.ListBooks(c.Request.Context(), filter, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"books": res.Books, "total": res.Total})
}

// GetBook returns the book plus the caller's open request for it, if any,
// so the page can decide between borrow / renew / view.
func (bc *BookController) GetBook(c *app.Ctx) {
	id := c.Param("id")
	book, err := bc.Repo.FindBook(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, app.H{"error": "book not found"})
		return
	}

	out := app.H{"book": book}
	if uid, ok := currentUserID(c); ok {
		rec, err := bc.Repo.FindOpenRequest(c.Request.Context(), uid, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		if rec != nil {
			out["myRequest"] = rec
		}
	}
	c.JSON(http.StatusOK, out)
}

func (bc *BookController) ToggleFavorite(c *app.Ctx) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	bookID := c.Param("id")

	book, err := bc.Repo.FindBook(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, app.H{"error": "book not found"})
		return
	}

	favorited, err := bc.Repo.ToggleFavorite(c.Request.Context(), uid, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"favorited": favorited})
}

func (bc *BookController) ListFavorites(c *app.Ctx) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	books, err := bc.Repo.ListFavoriteBooks(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"books": books})
}
