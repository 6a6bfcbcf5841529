// Package adapters wraps persistence collaborators with cross-cutting behavior.
package adapters

import (
	"context"
	"log/slog"
	"time"

	"ledger/internal/core"
	"ledger/internal/metrics"
	"ledger/internal/ports"
)

// InstrumentedStore times every call to the wrapped store and logs failures.
type InstrumentedStore struct {
	next    ports.Store
	metrics metrics.Collector
	logger  *slog.Logger
}

var _ ports.Store = (*InstrumentedStore)(nil)

func NewInstrumentedStore(next ports.Store, collector metrics.Collector, logger *slog.Logger) *InstrumentedStore {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InstrumentedStore{next: next, metrics: collector, logger: logger}
}

func (s *InstrumentedStore) observe(ctx context.Context, op string, start time.Time, err error) {
	s.metrics.RecordStoreCall(op, err == nil, time.Since(start))
	if err != nil {
		s.logger.WarnContext(ctx, "Store call failed", "operation", op, "error", err)
	}
}

func (s *InstrumentedStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	start := time.Now()
	out, err := s.next.ListCategories(ctx)
	s.observe(ctx, "list_categories", start, err)
	return out, err
}

func (s *InstrumentedStore) SaveCategory(ctx context.Context, c core.Category) (core.Category, error) {
	start := time.Now()
	out, err := s.next.SaveCategory(ctx, c)
	s.observe(ctx, "save_category", start, err)
	return out, err
}

func (s *InstrumentedStore) DeleteCategory(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.next.DeleteCategory(ctx, id)
	s.observe(ctx, "delete_category", start, err)
	return err
}

func (s *InstrumentedStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	start := time.Now()
	out, err := s.next.ListTransactions(ctx)
	s.observe(ctx, "list_transactions", start, err)
	return out, err
}

func (s *InstrumentedStore) SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	start := time.Now()
	out, err := s.next.SaveTransaction(ctx, tx)
	s.observe(ctx, "save_transaction", start, err)
	return out, err
}

func (s *InstrumentedStore) DeleteTransaction(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.next.DeleteTransaction(ctx, id)
	s.observe(ctx, "delete_transaction", start, err)
	return err
}

func (s *InstrumentedStore) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	start := time.Now()
	out, err := s.next.ListBudgets(ctx)
	s.observe(ctx, "list_budgets", start, err)
	return out, err
}

func (s *InstrumentedStore) SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	start := time.Now()
	out, err := s.next.SaveBudget(ctx, b)
	s.observe(ctx, "save_budget", start, err)
	return out, err
}

func (s *InstrumentedStore) DeleteBudget(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.next.DeleteBudget(ctx, id)
	s.observe(ctx, "delete_budget", start, err)
	return err
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}
