package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"fifostock/pkg/logger"
)

//go:embed schema.sql
var schema string

// Migrate creates the schema if it does not exist yet. It is idempotent.
func Migrate(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "database schema is up to date")
	return nil
}
