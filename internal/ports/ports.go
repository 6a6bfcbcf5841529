// Package ports declares the persistence collaborator the ledger service is
// assembled from. Implementations live in internal/memory and
// internal/storage.
package ports

import (
	"context"
	"errors"

	"ledger/internal/core"
)

// ErrNotFound is returned by stores when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Outbound persistence ports. Save inserts when the record id is zero and
// replaces the stored record otherwise; it returns the record as stored,
// with its id assigned.
type (
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		SaveCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, id int64) error
	}

	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, id int64) error
	}

	// Store is the full persistence collaborator.
	Store interface {
		CategoryStore
		TransactionStore
		BudgetStore
		Close() error
	}
)
