// Package tx defines the transaction boundary used by domain services.
// Implementations live in infrastructure/storage (postgres, memory).
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
//
// If fn returns an error every mutation made through ctx is discarded;
// otherwise all of them become visible together. Nested calls reuse the
// transaction already carried by ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SnapshotManager extends Manager with consistent read-only views.
type SnapshotManager interface {
	Manager

	// Snapshot runs fn against a point-in-time view: nothing committed
	// after the view was taken is visible inside fn.
	Snapshot(ctx context.Context, fn func(ctx context.Context) error) error
}
