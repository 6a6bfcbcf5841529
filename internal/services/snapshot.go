package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/budget"
	"ledger/internal/category"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/ports"
	"ledger/internal/report"
)

// Snapshot is one consistent, read-only view of the ledger. A new snapshot
// is published after every write; readers holding an older one keep a
// coherent picture.
type Snapshot struct {
	Version    int64
	LoadedAt   time.Time
	Categories *category.Index
	Ledger     *ledger.Index
	Budgets    []core.Budget

	evaluator *budget.Evaluator
}

// Evaluator returns the budget evaluator bound to this snapshot's categories.
func (s *Snapshot) Evaluator() *budget.Evaluator {
	return s.evaluator
}

// Reports returns a report generator over this snapshot.
func (s *Snapshot) Reports() *report.Generator {
	return report.New(s.Ledger, s.Budgets, s.evaluator)
}

// Budget returns the budget with the given id.
func (s *Snapshot) Budget(id int64) (core.Budget, bool) {
	for _, b := range s.Budgets {
		if b.ID == id {
			return b, true
		}
	}
	return core.Budget{}, false
}

type records struct {
	categories   []core.Category
	transactions []core.Transaction
	budgets      []core.Budget
}

// load reads all three record sets from store concurrently.
func load(ctx context.Context, store ports.Store) (records, error) {
	var r records
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cats, err := store.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		r.categories = cats
		return nil
	})
	g.Go(func() error {
		txs, err := store.ListTransactions(ctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		r.transactions = txs
		return nil
	})
	g.Go(func() error {
		budgets, err := store.ListBudgets(ctx)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		r.budgets = budgets
		return nil
	})

	if err := g.Wait(); err != nil {
		return records{}, err
	}
	return r, nil
}

func (s *LedgerService) build(r records, version int64) *Snapshot {
	cats := category.New(r.categories)
	return &Snapshot{
		Version:    version,
		LoadedAt:   time.Now(),
		Categories: cats,
		Ledger:     ledger.New(r.transactions).WithNamer(cats),
		Budgets:    r.budgets,
		evaluator: &budget.Evaluator{
			Today:            s.opts.Today,
			NearLimitPercent: s.opts.NearLimitPercent,
			Categories:       cats,
			Rollup:           s.opts.Rollup,
		},
	}
}
