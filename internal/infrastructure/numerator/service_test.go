package numerator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "fifostock/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = m.val
	}
	return nil
}

// mockQuerier keeps one counter per key like sys_sequences does.
type mockQuerier struct {
	mu    sync.Mutex
	vals  map[string]int64
	calls int
	err   error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{vals: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := args[0].(string)
	n := args[1].(int64)
	if strings.Contains(sql, "current_val + $2") {
		m.vals[key] += n
	} else {
		m.vals[key] = n
	}
	return &mockRow{val: m.vals[key]}
}

var period = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestNext_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	cfg := corenumerator.DefaultConfig("PUR")

	first, err := svc.Next(context.Background(), cfg, period)
	require.NoError(t, err)
	second, err := svc.Next(context.Background(), cfg, period)
	require.NoError(t, err)

	assert.Equal(t, "PUR-2024-00001", first)
	assert.Equal(t, "PUR-2024-00002", second)
	assert.Equal(t, 2, q.calls)
}

func TestNext_YearsAreSeparate(t *testing.T) {
	svc := New(newMockQuerier())
	cfg := corenumerator.DefaultConfig("SAL")

	_, err := svc.Next(context.Background(), cfg, period)
	require.NoError(t, err)
	next, err := svc.Next(context.Background(), cfg, period.AddDate(1, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, "SAL-2025-00001", next)
}

func TestNext_CachedRange(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, WithRangeSize(10))
	cfg := corenumerator.DefaultConfig("PUR")

	var codes []string
	for range 12 {
		code, err := svc.Next(context.Background(), cfg, period)
		require.NoError(t, err)
		codes = append(codes, code)
	}

	assert.Equal(t, "PUR-2024-00001", codes[0])
	assert.Equal(t, "PUR-2024-00012", codes[11])
	assert.Equal(t, 2, q.calls, "one reservation per ten codes")
}

func TestNext_CachedConcurrentUnique(t *testing.T) {
	svc := New(newMockQuerier(), WithRangeSize(5))
	cfg := corenumerator.DefaultConfig("SAL")

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := svc.Next(context.Background(), cfg, period)
			assert.NoError(t, err)
			mu.Lock()
			seen[code] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 40)
}

func TestSetNext_ResetsCache(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, WithRangeSize(10))
	cfg := corenumerator.DefaultConfig("PUR")

	_, err := svc.Next(context.Background(), cfg, period)
	require.NoError(t, err)
	require.NoError(t, svc.SetNext(context.Background(), cfg, period, 100))

	code, err := svc.Next(context.Background(), cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "PUR-2024-00101", code)
}

func TestNext_Error(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")

	_, err := New(q).Next(context.Background(), corenumerator.DefaultConfig("PUR"), period)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUR_2024")
}
