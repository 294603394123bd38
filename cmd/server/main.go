package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"backoffice-api/internal/config"
	"backoffice-api/internal/handler"
	"backoffice-api/internal/logger"
	"backoffice-api/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	// database
	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		zl.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(context.Background()); err != nil {
		zl.Fatal("db ping", zap.Error(err))
	}
	zl.Info("connected to postgres")

	// run migrations
	if migration, err := os.ReadFile("db/migrations/001_init.sql"); err != nil {
		zl.Warn("migration file not found, skipping", zap.Error(err))
	} else if _, err := pool.Exec(context.Background(), string(migration)); err != nil {
		zl.Warn("migration", zap.Error(err))
	} else {
		zl.Info("migration applied")
	}

	st := postgres.New(pool)
	router := handler.NewRouter(cfg, st, zl)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		zl.Info("listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Error("http", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	zl.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
