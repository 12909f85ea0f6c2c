package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup and passed around explicitly.
type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr string
	RedisPwd  string

	WebOrigin  string
	SessionTTL time.Duration

	// SNS topic that fans out transactional mail. Empty means log-only delivery.
	SNSTopicARN string
	AWSRegion   string

	// How often the workflow engine polls for due runs.
	PollInterval time.Duration
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
}

func Load() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	ttl := 24 * time.Hour
	if d, err := time.ParseDuration(get("SESSION_TTL_SECONDS", "86400") + "s"); err == nil {
		ttl = d
	}

	poll := 30 * time.Second
	if d, err := time.ParseDuration(get("WORKFLOW_POLL_SECONDS", "30") + "s"); err == nil {
		poll = d
	}

	return Config{
		DBHost:     get("DB_HOST", "127.0.0.1"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     get("DB_NAME", "bookwise"),
		DBPort:     get("DB_PORT", "5432"),

		RedisAddr: get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),

		WebOrigin:  strings.TrimSpace(get("WEB_ORIGIN", "http://localhost:3000")),
		SessionTTL: ttl,

		SNSTopicARN: os.Getenv("SNS_TOPIC_ARN"),
		AWSRegion:   get("AWS_REGION", "us-east-1"),

		PollInterval: poll,
	}
}
