package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/Moneymanners/meta-ads-bot2/internal/cache"
	"github.com/Moneymanners/meta-ads-bot2/internal/config"
	"github.com/Moneymanners/meta-ads-bot2/internal/httpx"
	"github.com/Moneymanners/meta-ads-bot2/internal/meta"
	"github.com/Moneymanners/meta-ads-bot2/internal/store"
	metasync "github.com/Moneymanners/meta-ads-bot2/internal/sync"
	"github.com/Moneymanners/meta-ads-bot2/internal/worker"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	if err := db.Ping(); err != nil {
		logger.Error("ping database", slog.String("err", err.Error()))
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("parse redis url", slog.String("err", err.Error()))
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
	}
	c := cache.New(rdb)

	st := store.New(db)
	metaClient := meta.NewClient(meta.NewHTTPClient(cfg.HTTPTimeout), cfg.MetaBaseURL, cfg.MetaAccessToken, cfg.MetaAdAccountID)
	syncSvc := metasync.NewService(metaClient, st, c, logger)

	w := worker.New(syncSvc, st, metaClient, logger, cfg.SyncInterval)
	if metaClient.Configured() {
		if err := w.Start(); err != nil {
			logger.Error("start worker", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer w.Stop()
	} else {
		logger.Warn("meta credentials missing, worker disabled")
	}

	r := httpx.NewRouter(httpx.Deps{
		Log:        logger,
		Store:      st,
		Meta:       metaClient,
		Sync:       syncSvc,
		Cache:      c,
		CronSecret: cfg.CronSecret,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", slog.String("err", err.Error()))
	}
}
