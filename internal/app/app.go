// Package app wires the Postgres-backed services shared by the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fifostock/internal/core/idempotency"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/documents/sale"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/domain/reports"
	"fifostock/internal/infrastructure/cache"
	"fifostock/internal/infrastructure/numerator"
	"fifostock/internal/infrastructure/storage/postgres"
	"fifostock/internal/infrastructure/storage/postgres/catalog_repo"
	"fifostock/internal/infrastructure/storage/postgres/document_repo"
	"fifostock/internal/infrastructure/storage/postgres/inventory_repo"
	"fifostock/internal/infrastructure/storage/postgres/report_repo"
	"fifostock/pkg/logger"
)

// Config selects the backing services.
type Config struct {
	DatabaseURL string
	MaxConns    int32

	// Migrate applies the embedded schema on start
	Migrate bool

	LockTimeout time.Duration

	// RedisAddr, when set, adds the cross-instance item lock and keeps
	// idempotency keys in Redis
	RedisAddr string

	IdempotencyTTL time.Duration

	// NumberRange > 1 reserves document numbers in batches
	NumberRange int64
}

// App holds the wired services.
type App struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Redis     *redis.Client

	ItemRepo  *catalog_repo.ItemRepo
	Items     *item.Service
	Purchases *purchase.Service
	Sales     *sale.Service
	Reports   *reports.Service
	Recorder  *inventory.Recorder
	Checker   *inventory.Checker
	Audit     *postgres.AuditLog

	// Idempotency is Redis-backed when Redis is configured
	Idempotency   idempotency.Store
	PgIdempotency *postgres.IdempotencyStore
}

// New connects and wires everything.
func New(ctx context.Context, cfg Config) (*App, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	a := &App{Pool: pool}

	if cfg.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.RedisAddr != "" {
		if a.Redis, err = cache.NewClient(ctx, cfg.RedisAddr); err != nil {
			a.Close()
			return nil, err
		}
	}

	txm := postgres.NewTxManager(pool)
	a.TxManager = txm
	if a.Audit, err = postgres.NewAuditLog(txm); err != nil {
		a.Close()
		return nil, fmt.Errorf("audit log: %w", err)
	}

	a.ItemRepo = catalog_repo.NewItemRepo(txm)
	store := inventory_repo.NewStore(txm, a.ItemRepo)

	opts := []inventory.Option{inventory.WithAudit(a.Audit)}
	if cfg.LockTimeout > 0 {
		opts = append(opts, inventory.WithLockTimeout(cfg.LockTimeout))
	}
	if a.Redis != nil {
		opts = append(opts, inventory.WithLocker(cache.NewItemLocker(a.Redis, 0)))
	}
	a.Recorder = inventory.NewRecorder(store, txm, opts...)

	gen := numerator.New(pool, numerator.WithRangeSize(cfg.NumberRange))
	a.Items = item.NewService(a.ItemRepo, txm)
	purchaseRepo, saleRepo := document_repo.NewPurchaseRepo(txm), document_repo.NewSaleRepo(txm)
	purchaseRepo.SetLockTimeout(cfg.LockTimeout)
	saleRepo.SetLockTimeout(cfg.LockTimeout)
	a.Purchases = purchase.NewService(purchaseRepo, txm, gen, a.Recorder)
	a.Sales = sale.NewService(saleRepo, txm, gen, a.Recorder)
	a.Reports = reports.NewService(a.ItemRepo, report_repo.NewHistoryRepo(txm), txm)
	a.Checker = inventory.NewChecker(a.ItemRepo, store, txm)

	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	a.PgIdempotency = postgres.NewIdempotencyStore(txm, ttl)
	a.Idempotency = a.PgIdempotency
	if a.Redis != nil {
		a.Idempotency = cache.NewIdempotencyStore(a.Redis, ttl)
	}

	logger.Info(ctx, "services wired",
		"redis", a.Redis != nil,
		"lock_timeout", cfg.LockTimeout.String(),
	)
	return a, nil
}

// Close releases connections.
func (a *App) Close() {
	if a.Audit != nil {
		a.Audit.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	a.Pool.Close()
}
