package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookwise/db"
	"bookwise/models"
	"bookwise/session"
)

const AppSessionCookie = "app_session"

// AuthRequired resolves the session cookie to a live user and stashes the
// identity in the request context.
func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		u, err := repo.FindUser(c.Request.Context(), as.UserID)
		if err != nil || u == nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		c.Set("userID", u.ID)
		c.Set("userStatus", u.Status)
		c.Set("isAdmin", u.IsAdmin())
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Get("isAdmin"); !ok || v != true {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// ApprovedOnly gates borrowing actions on account approval.
func ApprovedOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Get("userStatus"); !ok || v != models.UserApproved {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "account not approved"})
			return
		}
		c.Next()
	}
}
