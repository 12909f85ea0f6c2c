package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bookwise/app"
	"bookwise/borrow"
	"bookwise/db"
	"bookwise/notify"
	"bookwise/session"
	"bookwise/workflow"
)

const statsCacheKey = "dashboard_stats"

type Srv struct {
	Repo    *db.Repo
	AppSess *session.AppSessionStore
	RDB     *redis.Client
	Engine  *workflow.Engine
	Manager *borrow.Manager
	Mailer  notify.Sender

	WebOrigin  string
	SessionTTL time.Duration
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:       a.Repo,
		AppSess:    a.AppSessions(),
		RDB:        a.RDB,
		Engine:     a.Engine,
		Manager:    borrow.NewManager(a.Repo, a.Mailer),
		Mailer:     a.Mailer,
		WebOrigin:  a.Config.WebOrigin,
		SessionTTL: a.Config.SessionTTL,
	}
}

// --- helpers ---

func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) clearAppCookie(w http.ResponseWriter) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID string) error {
	_ = s.Repo.TouchUserLogin(ctx, userID) // bookkeeping, never blocks login
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.SessionTTL)
	return nil
}

func currentUserID(c *app.Ctx) (string, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return "", false
	}
	uid, _ := v.(string)
	return uid, uid != ""
}

// InvalidateStats drops the cached dashboard counters; called after any
// write that changes them.
func (s *Srv) InvalidateStats(ctx context.Context) {
	_ = s.RDB.Del(ctx, statsCacheKey).Err()
}

// borrowStatus maps the lifecycle taxonomy onto HTTP codes.
func borrowStatus(err error) int {
	switch {
	case errors.Is(err, borrow.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, borrow.ErrAlreadyOpen):
		return http.StatusConflict
	case errors.Is(err, borrow.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, borrow.ErrNotAvailable),
		errors.Is(err, borrow.ErrNotEligible):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
