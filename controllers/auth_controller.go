package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bookwise/app"
	"bookwise/models"
	"bookwise/workflow"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// Register creates a PENDING account, starts the onboarding workflow and
// signs the new user in. Borrowing stays locked until an admin approves.
func (ac *AuthController) Register(c *app.Ctx) {
	var in struct {
		FullName     string `json:"fullName" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		UniversityID int64  `json:"universityId" binding:"required"`
		Password     string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := ac.Repo.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, app.H{"error": "user already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	u := &models.User{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		Email:        email,
		UniversityID: in.UniversityID,
		Password:     string(hash),
		Status:       models.UserPending,
		Role:         models.RoleUser,
	}
	if err := ac.Repo.CreateUser(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	if _, err := ac.Engine.Enqueue(ac.Repo.DB.WithContext(c.Request.Context()), workflow.KindOnboarding, workflow.OnboardingSeed{
		Email:    u.Email,
		FullName: u.FullName,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	ac.InvalidateStats(c.Request.Context())

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (ac *AuthController) Login(c *app.Ctx) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := ac.Repo.FindUserByEmail(c.Request.Context(), in.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}
	if u.Status == models.UserRejected {
		c.JSON(http.StatusForbidden, app.H{"error": "account rejected"})
		return
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (ac *AuthController) Logout(c *app.Ctx) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	ac.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (ac *AuthController) WhoAmI(c *app.Ctx) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	u, err := ac.Repo.FindUser(c.Request.Context(), uid)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, u)
}
