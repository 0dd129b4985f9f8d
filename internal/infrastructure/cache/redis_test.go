package cache

import (
	"context"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/core/apperror"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := NewClient(context.Background(), addr)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestItemLocker_Exclusive(t *testing.T) {
	client := getRedisClient(t)
	locker := NewItemLocker(client, time.Second)
	item := "ITEM-" + uuid.NewString()

	var (
		inside  atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			unlock, err := locker.Lock(ctx, item)
			if !assert.NoError(t, err) {
				return
			}
			if inside.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(5 * time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load())
}

func TestItemLocker_Timeout(t *testing.T) {
	client := getRedisClient(t)
	locker := NewItemLocker(client, 5*time.Second)
	item := "ITEM-" + uuid.NewString()

	unlock, err := locker.Lock(context.Background(), item)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, item)

	assert.True(t, apperror.IsContentionTimeout(err))
	assert.True(t, apperror.Retryable(err))
}

func TestIdempotencyStore_Replay(t *testing.T) {
	client := getRedisClient(t)
	store := NewIdempotencyStore(client, time.Minute)
	ctx := context.Background()
	key := uuid.NewString()

	replay, err := store.AcquireKey(ctx, key, "POST /api/v1/sales", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)

	_, err = store.AcquireKey(ctx, key, "POST /api/v1/sales", "h1")
	require.Error(t, err, "in flight")

	require.NoError(t, store.CompleteKey(ctx, key, http.StatusCreated, "application/json", map[string]string{"code": "SAL-1"}))

	replay, err = store.AcquireKey(ctx, key, "POST /api/v1/sales", "h1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, http.StatusCreated, replay.StatusCode)
	assert.JSONEq(t, `{"code":"SAL-1"}`, string(replay.Body))

	_, err = store.AcquireKey(ctx, key, "POST /api/v1/sales", "other")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Idempotency key mismatch", appErr.Message)
}
