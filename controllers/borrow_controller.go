package controllers

import (
	"net/http"

	"bookwise/app"
)

type BorrowController struct{ *Srv }

func NewBorrowController(s *Srv) *BorrowController { return &BorrowController{Srv: s} }

// CreateRequest opens a PENDING borrow request for the caller.
func (bc *BorrowController) CreateRequest(c *app.Ctx) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	bookID := c.Param("id")

	rec, err := bc.Manager.CreateRequest(c.Request.Context(), uid, bookID)
	if err != nil {
		c.JSON(borrowStatus(err), app.H{"error": err.Error()})
		return
	}
	bc.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusCreated, rec)
}

// Cancel withdraws the caller's own PENDING request, within 24 hours of
// creating it.
func (bc *BorrowController) Cancel(c *app.Ctx) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	requestID := c.Param("requestId")

	if err := bc.Manager.Cancel(c.Request.Context(), requestID, uid, false); err != nil {
		c.JSON(borrowStatus(err), app.H{"error": err.Error()})
		return
	}
	bc.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// Renew pushes a loan close to its due date back into the approval queue.
func (bc *BorrowController) Renew(c *app.Ctx) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	bookID := c.Param("id")

	if err := bc.Manager.Renew(c.Request.Context(), bookID, uid); err != nil {
		c.JSON(borrowStatus(err), app.H{"error": err.Error()})
		return
	}
	bc.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// Return is the self-service return path (24h hold after approval).
func (bc *BorrowController) Return(c *app.Ctx) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	requestID := c.Param("requestId")

	if err := bc.Manager.ReturnByUser(c.Request.Context(), requestID, uid); err != nil {
		c.JSON(borrowStatus(err), app.H{"error": err.Error()})
		return
	}
	bc.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ListMine is the profile page: all of the caller's requests with books.
func (bc *BorrowController) ListMine(c *app.Ctx) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	rows, err := bc.Repo.ListUserRequests(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": rows})
}
