package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/app"
	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/logger"
	"github.com/shelfwise/shelfwise-backend/src/routes"
	"go.uber.org/zap"
)

func main() {
	log := logger.Must(os.Getenv("ENV"))
	defer func() { _ = log.Sync() }()

	cfg := config.Load(log)
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection and migrations
	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("database setup failed", zap.Error(err))
	}
	defer a.Close()

	if cfg.Seed {
		if err := a.Seeder.Admin(ctx, os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")); err != nil {
			log.Warn("admin user not seeded", zap.Error(err))
		}
		if _, err := a.Seeder.Sample(ctx); err != nil {
			log.Error("sample data not seeded", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              cfg.Host,
		Handler:           routes.Router(cfg, a.Services(), log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Host))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
