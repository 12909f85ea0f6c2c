package app

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bookwise/config"
	"bookwise/db"
	"bookwise/notify"
	"bookwise/session"
	"bookwise/workflow"
)

// Aliases so handlers read a little shorter.
type Ctx = gin.Context
type H = gin.H

// App aggregates every process-wide dependency; nothing here is a package
// singleton besides the gorm handle the db package keeps for convenience.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Repo   *db.Repo
	Engine *workflow.Engine
	Mailer notify.Sender
	Config config.Config

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func MustNew(cfg config.Config) *App {
	dbConn := db.ConnectDB(cfg)
	repo := db.NewRepo(dbConn)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	var mailer notify.Sender = notify.LogSender{}
	if cfg.SNSTopicARN != "" {
		sns, err := notify.NewSNSSender(ctx, cfg.AWSRegion, cfg.SNSTopicARN)
		if err != nil {
			log.Fatalf("sns: %v", err)
		}
		mailer = sns
	}

	engine := workflow.NewEngine(dbConn, cfg.PollInterval)
	engine.Register(workflow.NewBorrowing(repo, mailer))
	engine.Register(workflow.NewOnboarding(repo, mailer))

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:  r,
		DB:      dbConn,
		RDB:     rdb,
		Repo:    repo,
		Engine:  engine,
		Mailer:  mailer,
		Config:  cfg,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
}

func (a *App) Close() {
	a.Engine.Close()
	_ = a.RDB.Close()
}
