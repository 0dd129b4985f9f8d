// Package numerator provides the PostgreSQL implementation of document auto-numbering.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "fifostock/internal/core/numerator"
)

// Querier runs the sequence statements.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type cachedRange struct {
	current int64
	max     int64
}

// Service hands out codes from sys_sequences.
//
// With RangeSize 1 every code is one UPSERT. A larger range reserves that many
// numbers at once and serves them from memory; numbers left in a range when
// the process stops are never used.
type Service struct {
	querier   Querier
	rangeSize int64

	// cacheMu protects ranges
	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

var _ corenumerator.Generator = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithRangeSize reserves n numbers per round trip.
func WithRangeSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.rangeSize = n
		}
	}
}

// New creates a numerator over querier, usually the pool so numbers are
// drawn outside business transactions.
func New(querier Querier, opts ...Option) *Service {
	s := &Service{
		querier:   querier,
		rangeSize: 1,
		ranges:    make(map[string]*cachedRange),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next implements numerator.Generator.
func (s *Service) Next(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	key := cfg.Key(period)

	var (
		num int64
		err error
	)
	if s.rangeSize > 1 {
		num, err = s.nextCached(ctx, key)
	} else {
		num, err = s.reserve(ctx, key, 1)
	}
	if err != nil {
		return "", err
	}
	return cfg.Format(period, num), nil
}

// reserve moves the counter of key forward by n and returns its new value.
func (s *Service) reserve(ctx context.Context, key string, n int64) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
		RETURNING current_val
	`, key, n).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("reserve %s: %w", key, err)
	}
	return num, nil
}

func (s *Service) nextCached(ctx context.Context, key string) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, ok := s.ranges[key]
	if !ok {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		newMax, err := s.reserve(ctx, key, s.rangeSize)
		if err != nil {
			return 0, err
		}
		// range is (newMax - size, newMax]
		rng.current = newMax - s.rangeSize
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNext makes value the last number handed out for cfg in period.
func (s *Service) SetNext(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	key := cfg.Key(period)

	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)

	s.cacheMu.Lock()
	delete(s.ranges, key)
	s.cacheMu.Unlock()

	return err
}
