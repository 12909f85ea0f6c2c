package controllers

import (
	"log"
	"net/http"
	"strconv"

	"bookwise/app"
	"bookwise/models"
	"bookwise/notify"
)

type AdminUserController struct{ *Srv }

func NewAdminUserController(s *Srv) *AdminUserController {
	return &AdminUserController{Srv: s}
}

// ListUsers: ?q=&status=&page=&size=
func (au *AdminUserController) ListUsers(c *app.Ctx) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := au.Repo.ListUsers(c.Request.Context(), c.Query("q"), c.Query("status"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// SetStatus approves or rejects an account. Approval notifies the user;
// rejection cancels every open borrow request and revokes live sessions.
func (au *AdminUserController) SetStatus(c *app.Ctx) {
	userID := c.Param("id")

	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Status != models.UserApproved && in.Status != models.UserRejected {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown status"})
		return
	}

	u, err := au.Repo.SetUserStatus(c.Request.Context(), userID, in.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}

	switch in.Status {
	case models.UserRejected:
		n, err := au.Manager.RejectUserRequests(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		_ = au.AppSess.RevokeAllForUser(c.Request.Context(), userID)
		log.Printf("rejected user %s, cancelled %d open requests", userID, n)
	case models.UserApproved:
		msg := notify.AccountApproved(u.FullName)
		if err := au.sendMail(c, u.Email, msg); err != nil {
			log.Printf("approval mail to %s failed: %v", u.Email, err)
		}
	}

	au.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusOK, u)
}

func (au *AdminUserController) sendMail(c *app.Ctx, to string, msg notify.Message) error {
	return au.Mailer.Send(c.Request.Context(), to, msg.Subject, msg.Body)
}
