package idempotency

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/core/apperror"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	replay, err := s.AcquireKey(ctx, "k1", "POST /sales", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)

	_, err = s.AcquireKey(ctx, "k1", "POST /sales", "h1")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "pending key is held")
	assert.Equal(t, "Operation already in progress", appErr.Message)

	require.NoError(t, s.CompleteKey(ctx, "k1", http.StatusCreated, "", map[string]string{"code": "SAL-1"}))

	replay, err = s.AcquireKey(ctx, "k1", "POST /sales", "h1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, http.StatusCreated, replay.StatusCode)
	assert.Equal(t, "application/json", replay.ContentType)
	assert.JSONEq(t, `{"code":"SAL-1"}`, string(replay.Body))
}

func TestMemoryStore_Mismatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.AcquireKey(ctx, "k1", "POST /sales", "h1")
	require.NoError(t, err)

	_, err = s.AcquireKey(ctx, "k1", "POST /sales", "h2")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeIdempotency, appErr.Code)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Millisecond)

	_, err := s.AcquireKey(ctx, "k1", "POST /sales", "h1")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	replay, err := s.AcquireKey(ctx, "k1", "POST /purchases", "h9")
	require.NoError(t, err)
	assert.Nil(t, replay)
}

func TestMemoryStore_Release(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.AcquireKey(ctx, "k1", "POST /sales", "h1")
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "k1"))

	replay, err := s.AcquireKey(ctx, "k1", "POST /sales", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)
}
