package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain/inventory"
	"fifostock/pkg/logger"
)

const (
	lockKeyPrefix = "fifostock:lock:item:"

	// DefaultLease bounds how long a crashed holder keeps an item.
	DefaultLease = 30 * time.Second

	retryMin = 5 * time.Millisecond
	retryMax = 100 * time.Millisecond
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

var _ inventory.Locker = (*ItemLocker)(nil)

// ItemLocker serializes writers of one item across service instances.
type ItemLocker struct {
	client *redis.Client
	lease  time.Duration
}

// NewItemLocker creates a locker. A zero lease means DefaultLease.
func NewItemLocker(client *redis.Client, lease time.Duration) *ItemLocker {
	if lease <= 0 {
		lease = DefaultLease
	}
	return &ItemLocker{client: client, lease: lease}
}

// Lock implements inventory.Locker.
func (l *ItemLocker) Lock(ctx context.Context, itemCode string) (func(), error) {
	key := lockKeyPrefix + itemCode
	token := uuid.NewString()
	wait := retryMin

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, contention(ctx, itemCode)
			}
			return nil, apperror.NewInternal(err).WithDetail("component", "item_lock")
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, contention(ctx, itemCode)
		case <-time.After(wait):
		}
		wait = min(wait*2, retryMax)
	}
}

func (l *ItemLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		logger.Warn(ctx, "release item lock", "key", key, "error", err)
	}
}

func contention(ctx context.Context, itemCode string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.NewContentionTimeout(itemCode)
	}
	return ctx.Err()
}
