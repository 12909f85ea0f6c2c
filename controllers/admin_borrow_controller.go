package controllers

import (
	"net/http"
	"strconv"

	"bookwise/app"
	"bookwise/models"
)

type AdminBorrowController struct{ *Srv }

func NewAdminBorrowController(s *Srv) *AdminBorrowController {
	return &AdminBorrowController{Srv: s}
}

// ListRequests feeds the admin requests table. ?status=&limit=
func (ab *AdminBorrowController) ListRequests(c *app.Ctx) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rows, err := ab.Repo.ListRequests(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": rows})
}

// SetStatus applies an admin transition: approve (BORROWED), confirm return
// (RETURNED, with the overdue flag for the confirmation message) or cancel.
func (ab *AdminBorrowController) SetStatus(c *app.Ctx) {
	requestID := c.Param("requestId")

	var in struct {
		Status    string `json:"status" binding:"required"`
		IsOverdue bool   `json:"isOverdue"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	switch in.Status {
	case models.BorrowBorrowed, models.BorrowReturned, models.BorrowCancelled, models.BorrowPending:
	default:
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown status"})
		return
	}

	if err := ab.Manager.SetStatus(c.Request.Context(), requestID, in.Status, in.IsOverdue); err != nil {
		c.JSON(borrowStatus(err), app.H{"error": err.Error()})
		return
	}
	ab.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"ok": true})
}
