// Package memory is an in-process ports.Store, optionally seeded from JSON
// files. Nothing is written back to disk.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/ports"
)

type table[T any] struct {
	rows  []T
	next  int64
	id    func(T) int64
	setID func(T, int64) T
}

func newTable[T any](rows []T, id func(T) int64, setID func(T, int64) T) *table[T] {
	t := &table[T]{rows: append([]T(nil), rows...), next: 1, id: id, setID: setID}
	for _, r := range rows {
		if id(r) >= t.next {
			t.next = id(r) + 1
		}
	}
	return t
}

func (t *table[T]) list() []T {
	return append([]T(nil), t.rows...)
}

func (t *table[T]) save(r T) (T, error) {
	if t.id(r) == 0 {
		r = t.setID(r, t.next)
		t.next++
		t.rows = append(t.rows, r)
		return r, nil
	}
	for i := range t.rows {
		if t.id(t.rows[i]) == t.id(r) {
			t.rows[i] = r
			return r, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("id %d: %w", t.id(r), ports.ErrNotFound)
}

func (t *table[T]) delete(id int64) error {
	for i := range t.rows {
		if t.id(t.rows[i]) == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("id %d: %w", id, ports.ErrNotFound)
}

// Store keeps categories, transactions and budgets in memory.
type Store struct {
	mu           sync.Mutex
	categories   *table[core.Category]
	transactions *table[core.Transaction]
	budgets      *table[core.Budget]
	now          func() time.Time
}

var _ ports.Store = (*Store)(nil)

// New returns a store holding copies of the given records. Ids already
// present are kept; new records get ids above the highest one seen.
func New(cats []core.Category, txs []core.Transaction, budgets []core.Budget) *Store {
	return &Store{
		categories: newTable(cats,
			func(c core.Category) int64 { return c.ID },
			func(c core.Category, id int64) core.Category { c.ID = id; return c }),
		transactions: newTable(txs,
			func(tx core.Transaction) int64 { return tx.ID },
			func(tx core.Transaction, id int64) core.Transaction { tx.ID = id; return tx }),
		budgets: newTable(budgets,
			func(b core.Budget) int64 { return b.ID },
			func(b core.Budget, id int64) core.Budget { b.ID = id; return b }),
		now: time.Now,
	}
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.list(), nil
}

func (s *Store) SaveCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.save(c)
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.delete(id)
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions.list(), nil
}

// SaveTransaction stamps CreatedAt on transactions that have none.
func (s *Store) SaveTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now().UTC()
	}
	return s.transactions.save(tx)
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions.delete(id)
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.list(), nil
}

func (s *Store) SaveBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.save(b)
}

func (s *Store) DeleteBudget(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.delete(id)
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
