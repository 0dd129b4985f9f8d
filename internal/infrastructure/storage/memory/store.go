// Package memory is an in-process implementation of every storage port:
// items, document headers, lots, consumptions, numbering and audit.
//
// It backs the service and HTTP tests. Writes take effect immediately and
// are undone if their transaction fails; a Snapshot sees committed data only.
// Per-item and per-header locks are weighted semaphores held until the
// transaction ends: a shared holder takes one unit, an exclusive holder all.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/id"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/documents/sale"
	"fifostock/internal/domain/inventory"
)

// DefaultLockTimeout bounds header locks taken by GetForUpdate and GetForShare.
const DefaultLockTimeout = 5 * time.Second

const (
	lockShared    int64 = 1
	lockExclusive int64 = 1 << 30
)

// ErrReadOnly is returned by writes attempted inside a Snapshot.
var ErrReadOnly = errors.New("memory: write inside a read-only snapshot")

type auditRecord struct {
	seq   int64
	entry inventory.AuditEntry
}

type state struct {
	items        map[string]*item.Item
	purchases    map[string]*purchase.Purchase
	sales        map[string]*sale.Sale
	lots         map[id.ID]*inventory.Lot
	consumptions map[id.ID]*inventory.Consumption
	audit        []auditRecord
}

func newState() *state {
	return &state{
		items:        make(map[string]*item.Item),
		purchases:    make(map[string]*purchase.Purchase),
		sales:        make(map[string]*sale.Sale),
		lots:         make(map[id.ID]*inventory.Lot),
		consumptions: make(map[id.ID]*inventory.Consumption),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.items {
		c.items[k] = cloneItem(v)
	}
	for k, v := range st.purchases {
		c.purchases[k] = clonePurchase(v)
	}
	for k, v := range st.sales {
		c.sales[k] = cloneSale(v)
	}
	for k, v := range st.lots {
		lot := *v
		c.lots[k] = &lot
	}
	for k, v := range st.consumptions {
		cons := *v
		c.consumptions[k] = &cons
	}
	c.audit = append([]auditRecord(nil), st.audit...)
	return c
}

// Store holds all state in memory. The zero value is not usable; call New.
type Store struct {
	// mu guards st and sequences for the span of one operation.
	mu        sync.RWMutex
	st        *state
	sequences map[string]int64
	auditSeq  int64

	// commit is held shared by every open transaction and exclusively
	// while a snapshot is cloned.
	commit sync.RWMutex

	locksMu sync.Mutex
	locks   map[string]*semaphore.Weighted

	lockTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout sets how long GetForUpdate and GetForShare wait for a header.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		st:          newState(),
		sequences:   make(map[string]int64),
		locks:       make(map[string]*semaphore.Weighted),
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type txKey struct{}
type snapshotKey struct{}

type heldLock struct {
	key    string
	weight int64
}

type txState struct {
	undo []func(*state)
	held []heldLock
}

func (t *txState) onRollback(fn func(*state)) {
	t.undo = append(t.undo, fn)
}

func txFrom(ctx context.Context) *txState {
	t, _ := ctx.Value(txKey{}).(*txState)
	return t
}

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	if ctx.Value(snapshotKey{}) != nil {
		return ErrReadOnly
	}

	s.commit.RLock()
	defer s.commit.RUnlock()

	t := &txState{}
	defer s.release(t)
	defer func() {
		if p := recover(); p != nil {
			s.rollback(t)
			panic(p)
		}
		if err != nil {
			s.rollback(t)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, t))
}

// Snapshot implements tx.SnapshotManager.
func (s *Store) Snapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(snapshotKey{}) != nil || txFrom(ctx) != nil {
		return fn(ctx)
	}

	s.commit.Lock()
	s.mu.RLock()
	view := s.st.clone()
	s.mu.RUnlock()
	s.commit.Unlock()

	return fn(context.WithValue(ctx, snapshotKey{}, view))
}

func (s *Store) rollback(t *txState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i](s.st)
	}
	t.undo = nil
}

// read runs fn against the snapshot carried by ctx, or the live state.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if view, ok := ctx.Value(snapshotKey{}).(*state); ok {
		return fn(view)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// write runs fn inside the transaction of ctx, opening one if needed.
func (s *Store) write(ctx context.Context, fn func(st *state, t *txState) error) error {
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		t := txFrom(ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.st, t)
	})
}

// acquire takes weight units of the semaphore of key for the rest of the
// transaction. A key already held with at least weight is a no-op; a shared
// holder asking for exclusive waits for the other units.
func (s *Store) acquire(ctx context.Context, key string, weight int64, timeout time.Duration) error {
	t := txFrom(ctx)
	if t == nil {
		return fmt.Errorf("memory: lock %s outside a transaction", key)
	}
	var held *heldLock
	for i := range t.held {
		if t.held[i].key == key {
			held = &t.held[i]
			break
		}
	}
	need := weight
	if held != nil {
		need -= held.weight
	}
	if need <= 0 {
		return nil
	}

	s.locksMu.Lock()
	sem, ok := s.locks[key]
	if !ok {
		sem = semaphore.NewWeighted(lockExclusive)
		s.locks[key] = sem
	}
	s.locksMu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sem.Acquire(waitCtx, need); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errTimeout
	}
	if held != nil {
		held.weight += need
	} else {
		t.held = append(t.held, heldLock{key: key, weight: need})
	}
	return nil
}

var errTimeout = errors.New("memory: lock wait timeout")

func (s *Store) release(t *txState) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	for _, h := range t.held {
		s.locks[h.key].Release(h.weight)
	}
	t.held = nil
}

func contention(err error, itemCode string) error {
	if errors.Is(err, errTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewContentionTimeout(itemCode).WithCause(err)
	}
	return err
}
