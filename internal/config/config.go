package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	DatabaseURL     string
	RedisURL        string
	MetaAccessToken string
	MetaAdAccountID string
	MetaBaseURL     string
	CronSecret      string
	HTTPTimeout     time.Duration
	SyncInterval    time.Duration
	LogLevel        slog.Level
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	interval := time.Hour
	if v := os.Getenv("SYNC_INTERVAL_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			interval = time.Duration(m) * time.Minute
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		Port:            envOr("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		MetaAccessToken: os.Getenv("META_ACCESS_TOKEN"),
		MetaAdAccountID: os.Getenv("META_AD_ACCOUNT_ID"),
		MetaBaseURL:     os.Getenv("META_API_BASE_URL"),
		CronSecret:      os.Getenv("CRON_SECRET"),
		HTTPTimeout:     to,
		SyncInterval:    interval,
		LogLevel:        lvl,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
