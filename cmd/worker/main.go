// Package main is the entry point for the fifostock background worker.
// It audits item ledgers against their lots and purges expired idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fifostock/internal/app"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/infrastructure/storage/postgres"
	"fifostock/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting fifostock worker")

	a, err := app.New(ctx, app.Config{
		DatabaseURL: mustEnv("DATABASE_URL"),
		MaxConns:    int32(getEnvInt("DB_MAX_CONNS", 4)),
	})
	if err != nil {
		log.Fatalw("failed to start", "error", err)
	}
	defer a.Close()

	worker := NewWorker(a.Checker, a.PgIdempotency, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx,
			getEnvDuration("AUDIT_INTERVAL", 10*time.Minute),
			getEnvDuration("IDEMPOTENCY_CLEANUP_INTERVAL", time.Hour),
		)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic jobs.
type Worker struct {
	checker     *inventory.Checker
	idempotency *postgres.IdempotencyStore
	log         *logger.Logger
}

func NewWorker(checker *inventory.Checker, idem *postgres.IdempotencyStore, log *logger.Logger) *Worker {
	return &Worker{
		checker:     checker,
		idempotency: idem,
		log:         log.WithComponent("worker"),
	}
}

// Run audits once at start, then on every tick until ctx is done.
func (w *Worker) Run(ctx context.Context, auditInterval, cleanupInterval time.Duration) {
	auditTicker := time.NewTicker(auditInterval)
	defer auditTicker.Stop()
	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	w.audit(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-auditTicker.C:
			w.audit(ctx)
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		}
	}
}

func (w *Worker) audit(ctx context.Context) {
	start := time.Now()
	report, err := w.checker.CheckAll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Errorw("ledger audit failed", "error", err, "checked", report.Checked)
		}
		return
	}

	if len(report.Faults) > 0 {
		w.log.Errorw("ledger audit found faults",
			"severity", "consistency",
			"checked", report.Checked,
			"faults", len(report.Faults),
		)
		return
	}
	w.log.Infow("ledger audit passed",
		"checked", report.Checked,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	n, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Warnw("idempotency cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}
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
