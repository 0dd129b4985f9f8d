// Package main is the entry point for the fifostock API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"fifostock/internal/app"
	"fifostock/internal/core/idempotency"
	v1 "fifostock/internal/infrastructure/http/v1"
	"fifostock/internal/infrastructure/http/v1/handlers"
	"fifostock/internal/infrastructure/storage/postgres"
	"fifostock/pkg/logger"
)

const version = "0.1.0"

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting fifostock server")

	a, err := app.New(ctx, app.Config{
		DatabaseURL:    mustEnv("DATABASE_URL"),
		MaxConns:       int32(getEnvInt("DB_MAX_CONNS", 25)),
		Migrate:        getEnv("DB_MIGRATE", "true") == "true",
		LockTimeout:    getEnvDuration("LOCK_TIMEOUT", 5*time.Second),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		NumberRange:    int64(getEnvInt("NUMBER_RANGE", 1)),
	})
	if err != nil {
		log.Fatalw("failed to start", "error", err)
	}
	defer a.Close()

	var idem idempotency.Store
	if getEnv("IDEMPOTENCY_ENABLED", "false") == "true" {
		idem = a.Idempotency
	}

	checks := map[string]handlers.Pinger{"database": a.Pool}
	if a.Redis != nil {
		checks["redis"] = redisPinger{a}
	}

	if getEnv("APP_ENV", "development") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := v1.NewRouter(v1.RouterConfig{
		Logger:      log,
		Items:       a.Items,
		Purchases:   a.Purchases,
		Sales:       a.Sales,
		Reports:     a.Reports,
		Idempotency: idem,
		Health:      checks,
		Version:     version,
		Compress:    getEnv("HTTP_GZIP", "true") == "true",
	})

	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go func() {
		ticker := time.NewTicker(getEnvDuration("POOL_STATS_INTERVAL", 5*time.Minute))
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				postgres.LogPoolStats(statsCtx, a.Pool)
			}
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

type redisPinger struct{ a *app.App }

func (p redisPinger) Ping(ctx context.Context) error {
	return p.a.Redis.Ping(ctx).Err()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
