package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"bookwise/db"
)

// TouchLastActivity refreshes the user's last-activity date, throttled per
// user so it does not write on every request. The onboarding workflow reads
// this date at its checkpoints.
func TouchLastActivity(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("userID")
		if !ok {
			c.Next()
			return
		}
		uid, _ := v.(string)
		if uid == "" {
			c.Next()
			return
		}

		key := "bw:lastactivity:" + uid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = repo.TouchUserActivity(c, uid) // ignore errors, never block the request
		}
		c.Next()
	}
}
