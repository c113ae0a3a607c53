// Package memory keeps the ledger in process memory. Mutations are staged on
// a private copy of the state and swapped in on commit, so a failed operation
// leaves no trace.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/usecase"
)

// ErrTxClosed is returned when a finished transaction is used again.
var ErrTxClosed = errors.New("memory: transaction already closed")

type funderEntry struct {
	address   domain.Address
	createdAt time.Time
}

type state struct {
	ledger        *domain.Ledger
	amounts       map[domain.Address]decimal.Decimal
	funders       []funderEntry
	contributions []*domain.Contribution
	withdrawals   []*domain.Withdrawal
	outbox        []*domain.OutboxEvent
}

func newState() *state {
	return &state{amounts: make(map[domain.Address]decimal.Decimal)}
}

func (s *state) clone() *state {
	c := &state{
		amounts:       make(map[domain.Address]decimal.Decimal, len(s.amounts)),
		funders:       append([]funderEntry(nil), s.funders...),
		contributions: append([]*domain.Contribution(nil), s.contributions...),
		withdrawals:   append([]*domain.Withdrawal(nil), s.withdrawals...),
		outbox:        append([]*domain.OutboxEvent(nil), s.outbox...),
	}

	if s.ledger != nil {
		l := *s.ledger
		c.ledger = &l
	}

	for k, v := range s.amounts {
		c.amounts[k] = v
	}

	return c
}

// Store holds the committed state and serializes writers.
type Store struct {
	mu        sync.RWMutex
	committed *state
	writer    chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		committed: newState(),
		writer:    make(chan struct{}, 1),
	}
}

// Begin starts a transaction. Only one transaction is open at a time; Begin
// blocks until the previous one finishes or ctx is done.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.RLock()
	staged := s.committed.clone()
	s.mu.RUnlock()

	return &Tx{store: s, staged: staged}, nil
}

// Ping reports the store as always reachable.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// exclusive waits for the writer slot and locks the committed state, for
// changes made outside a transaction.
func (s *Store) exclusive(ctx context.Context) error {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	return nil
}

func (s *Store) release() {
	s.mu.Unlock()
	<-s.writer
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.committed)
}

// Tx is a staged transaction.
type Tx struct {
	mu     sync.Mutex
	store  *Store
	staged *state
	done   bool
}

// Commit publishes the staged state.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTxClosed
	}

	t.store.mu.Lock()
	t.store.committed = t.staged
	t.store.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards the staged state. Rolling back a committed transaction
// is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}

	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.staged = nil
	<-t.store.writer
}

func stagedState(tx usecase.Transaction) (*state, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt == nil {
		return nil, errors.New("memory: foreign transaction")
	}
	if mt.done {
		return nil, ErrTxClosed
	}
	return mt.staged, nil
}
