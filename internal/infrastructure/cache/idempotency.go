package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/idempotency"
)

const idempotencyKeyPrefix = "fifostock:idem:"

var _ idempotency.Store = (*IdempotencyStore)(nil)

// idempotencyEntry is the JSON value stored under a key.
type idempotencyEntry struct {
	Operation   string `json:"operation"`
	RequestHash string `json:"request_hash"`
	Done        bool   `json:"done"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore keeps idempotency keys in Redis; expiry is Redis TTL.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a Redis idempotency store.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// AcquireKey implements idempotency.Store.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, operation, requestHash string) (*idempotency.Replay, error) {
	pending, err := json.Marshal(idempotencyEntry{Operation: operation, RequestHash: requestHash})
	if err != nil {
		return nil, err
	}

	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, pending, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			// expired between SETNX and GET
			return nil, apperror.NewIdempotencyConflict(key)
		}
		return nil, fmt.Errorf("read idempotency key: %w", err)
	}

	var e idempotencyEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode idempotency key: %w", err)
	}
	if e.Operation != operation || e.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", e.Operation).
			WithDetail("request_operation", operation)
	}
	if !e.Done {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return &idempotency.Replay{
		StatusCode:  idempotency.NormalizeStatus(e.StatusCode),
		ContentType: idempotency.NormalizeContentType(e.ContentType),
		Body:        e.Body,
	}, nil
}

// CompleteKey implements idempotency.Store.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, statusCode, contentType, response)
}

// FailKey implements idempotency.Store.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, statusCode, contentType, response)
}

// releaseIdempotencyScript deletes a key that is still pending.
var releaseIdempotencyScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v and cjson.decode(v)['done'] ~= true then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Release implements idempotency.Store.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return releaseIdempotencyScript.Run(ctx, s.client, []string{idempotencyKeyPrefix + key}).Err()
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	raw, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		return fmt.Errorf("read idempotency key: %w", err)
	}
	var e idempotencyEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return fmt.Errorf("decode idempotency key: %w", err)
	}

	if response != nil {
		if e.Body, err = json.Marshal(response); err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
	}
	e.Done = true
	e.StatusCode = statusCode
	e.ContentType = contentType

	done, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyKeyPrefix+key, done, redis.KeepTTL).Err()
}
