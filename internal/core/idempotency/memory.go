package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fifostock/internal/core/apperror"
)

type memoryEntry struct {
	operation   string
	requestHash string
	done        bool
	replay      Replay
	expiresAt   time.Time
}

// MemoryStore keeps keys in process memory. It serves tests and
// single-instance deployments without Postgres or Redis.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]*memoryEntry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store keeping keys for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, keys: make(map[string]*memoryEntry)}
}

// AcquireKey implements Store.
func (s *MemoryStore) AcquireKey(_ context.Context, key, operation, requestHash string) (*Replay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.keys[key]
	if !ok || now.After(e.expiresAt) {
		s.keys[key] = &memoryEntry{
			operation:   operation,
			requestHash: requestHash,
			expiresAt:   now.Add(s.ttl),
		}
		return nil, nil
	}

	if e.operation != operation || e.requestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", e.operation).
			WithDetail("request_operation", operation)
	}
	if !e.done {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	replay := e.replay
	return &replay, nil
}

// CompleteKey implements Store.
func (s *MemoryStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	var body []byte
	if response != nil {
		var err error
		if body, err = json.Marshal(response); err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
	}
	s.finish(key, statusCode, contentType, body)
	return nil
}

// FailKey implements Store.
func (s *MemoryStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.CompleteKey(ctx, key, statusCode, contentType, response)
}

// Release implements Store.
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.keys[key]; ok && !e.done {
		delete(s.keys, key)
	}
	return nil
}

func (s *MemoryStore) finish(key string, statusCode int, contentType string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.keys[key]; ok {
		e.done = true
		e.replay = Replay{
			StatusCode:  NormalizeStatus(statusCode),
			ContentType: NormalizeContentType(contentType),
			Body:        body,
		}
	}
}
