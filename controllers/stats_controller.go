package controllers

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"bookwise/app"
	"bookwise/db"
)

type StatsController struct{ *Srv }

func NewStatsController(s *Srv) *StatsController { return &StatsController{Srv: s} }

const statsCacheTTL = time.Hour

// Dashboard serves the admin counters from Redis when possible; writes that
// change the numbers drop the cache key.
func (sc *StatsController) Dashboard(c *app.Ctx) {
	ctx := c.Request.Context()

	if b, err := sc.RDB.Get(ctx, statsCacheKey).Bytes(); err == nil {
		var cached db.DashboardStats
		if jsoniter.ConfigFastest.Unmarshal(b, &cached) == nil {
			c.JSON(http.StatusOK, app.H{"stats": cached, "cached": true})
			return
		}
	}

	stats, err := sc.Repo.DashboardStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	if b, err := jsoniter.ConfigFastest.Marshal(stats); err == nil {
		_ = sc.RDB.Set(ctx, statsCacheKey, b, statsCacheTTL).Err()
	}
	c.JSON(http.StatusOK, app.H{"stats": stats, "cached": false})
}
