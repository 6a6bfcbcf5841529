package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/budget"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/metrics"
	"ledger/internal/ports"
)

var (
	ErrNotFound      = ports.ErrNotFound
	ErrBudgetOverlap = budget.ErrBudgetOverlap
	ErrCategoryInUse = errors.New("category is in use")
	ErrCategoryCycle = errors.New("category cannot be moved under its own subtree")
)

// EventPublisher announces ledger changes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishLedgerChanged(ctx context.Context, entity, op string, recordID, version int64) error
}

// Options tune a LedgerService. Zero values select defaults.
type Options struct {
	Publisher        EventPublisher
	Metrics          metrics.Collector
	Logger           *log.Logger
	ReportCache      cache.Cache[any]
	NearLimitPercent float64
	Rollup           bool
	Today            func() core.Date
}

// LedgerService owns the persistence collaborator and the published
// snapshot. Writes go through the store, then the snapshot is rebuilt from
// scratch and swapped in; reads never see a half-applied change.
type LedgerService struct {
	store ports.Store
	opts  Options

	writeMu sync.Mutex // serializes write + rebuild
	mu      sync.RWMutex
	current *Snapshot
}

// NewLedgerService loads the first snapshot from store.
func NewLedgerService(ctx context.Context, store ports.Store, opts Options) (*LedgerService, error) {
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoOpCollector{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default(log.ComponentLedger)
	}
	if opts.ReportCache == nil {
		opts.ReportCache = cache.NewLRUCache[any](128, 5*time.Minute)
	}
	s := &LedgerService{store: store, opts: opts}
	if _, err := s.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}
	return s, nil
}

// Snapshot returns the current snapshot.
func (s *LedgerService) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh reloads everything from the store and publishes a new snapshot.
func (s *LedgerService) Refresh(ctx context.Context) (*Snapshot, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.refresh(ctx)
}

func (s *LedgerService) refresh(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	r, err := load(ctx, s.store)
	if err != nil {
		s.opts.Metrics.RecordRebuild(false, time.Since(start))
		return nil, err
	}

	var version int64 = 1
	if prev := s.Snapshot(); prev != nil {
		version = prev.Version + 1
	}
	snap := s.build(r, version)

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	s.opts.ReportCache.Purge()

	elapsed := time.Since(start)
	s.opts.Metrics.RecordRebuild(true, elapsed)
	s.opts.Metrics.RecordSnapshot(version, snap.Categories.Len(), snap.Ledger.Len(), len(snap.Budgets))
	s.opts.Logger.DebugContext(ctx, "Snapshot rebuilt",
		log.FieldVersion, version,
		log.FieldCount, snap.Ledger.Len(),
		log.FieldDuration, elapsed.Milliseconds())

	if mismatches := snap.Categories.TypeMismatches(); len(mismatches) > 0 {
		s.opts.Logger.WarnContext(ctx, "Categories typed differently from their parent",
			log.FieldCount, len(mismatches))
	}
	return snap, nil
}

// mutate runs write under the write lock, rebuilds the snapshot and
// publishes a change event for the record id write returns.
func (s *LedgerService) mutate(ctx context.Context, entity, op string, write func(*Snapshot) (int64, error)) (*Snapshot, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id, err := write(s.Snapshot())
	s.opts.Metrics.RecordMutation(entity, op, err == nil)
	if err != nil {
		return nil, err
	}

	snap, err := s.refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s %s saved but snapshot rebuild failed: %w", entity, op, err)
	}

	s.opts.Logger.InfoContext(ctx, "Ledger changed",
		log.FieldEntity, entity,
		log.FieldOperation, op,
		log.FieldRecordID, id,
		log.FieldVersion, snap.Version)

	if err := s.publish(ctx, entity, op, id, snap.Version); err != nil {
		// the write is committed; the event is best effort
		s.opts.Logger.ErrorContext(ctx, "Failed to publish ledger change",
			log.FieldEntity, entity,
			log.FieldRecordID, id,
			log.FieldError, err)
	}
	return snap, nil
}

func (s *LedgerService) publish(ctx context.Context, entity, op string, id, version int64) error {
	if s.opts.Publisher == nil {
		return nil
	}
	err := s.opts.Publisher.PublishLedgerChanged(ctx, entity, op, id, version)
	s.opts.Metrics.RecordEventPublish(err == nil)
	return err
}

// AddCategory stores a new category. A parent, when given, must exist.
func (s *LedgerService) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = 0
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	var saved core.Category
	_, err := s.mutate(ctx, amqp.EntityCategory, amqp.OpCreated, func(snap *Snapshot) (int64, error) {
		if c.ParentID != nil {
			if _, ok := snap.Categories.ByID(*c.ParentID); !ok {
				return 0, fmt.Errorf("parent category %d: %w", *c.ParentID, ErrNotFound)
			}
		}
		var err error
		saved, err = s.store.SaveCategory(ctx, c)
		return saved.ID, err
	})
	return saved, err
}

// UpdateCategory replaces a category. Moving it below one of its own
// descendants is refused.
func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	var saved core.Category
	_, err := s.mutate(ctx, amqp.EntityCategory, amqp.OpUpdated, func(snap *Snapshot) (int64, error) {
		if _, ok := snap.Categories.ByID(c.ID); !ok {
			return 0, fmt.Errorf("category %d: %w", c.ID, ErrNotFound)
		}
		if c.ParentID != nil {
			if _, ok := snap.Categories.ByID(*c.ParentID); !ok {
				return 0, fmt.Errorf("parent category %d: %w", *c.ParentID, ErrNotFound)
			}
			if snap.Categories.IsAncestor(c.ID, *c.ParentID) {
				return 0, fmt.Errorf("category %d under %d: %w", c.ID, *c.ParentID, ErrCategoryCycle)
			}
		}
		var err error
		saved, err = s.store.SaveCategory(ctx, c)
		return saved.ID, err
	})
	return saved, err
}

// DeleteCategory removes a category that has no subcategories, transactions
// or budgets.
func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, amqp.EntityCategory, amqp.OpDeleted, func(snap *Snapshot) (int64, error) {
		v, ok := snap.Categories.ByID(id)
		if !ok {
			return 0, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		if v.HasChildren {
			return 0, fmt.Errorf("category %d has %d subcategories: %w", id, len(v.ChildIDs), ErrCategoryInUse)
		}
		if err := inUse(snap, id); err != nil {
			return 0, err
		}
		return id, s.store.DeleteCategory(ctx, id)
	})
	return err
}

// DeleteCategoryTree removes a category and all of its descendants, deepest
// first. Nothing is removed when any of them is still referenced.
func (s *LedgerService) DeleteCategoryTree(ctx context.Context, id int64) (int, error) {
	var removed int
	_, err := s.mutate(ctx, amqp.EntityCategory, amqp.OpDeleted, func(snap *Snapshot) (int64, error) {
		ids := snap.Categories.Subtree(id)
		if ids == nil {
			return 0, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		for _, c := range ids {
			if err := inUse(snap, c); err != nil {
				return 0, err
			}
		}
		for i := len(ids) - 1; i >= 0; i-- {
			if err := s.store.DeleteCategory(ctx, ids[i]); err != nil {
				return 0, fmt.Errorf("delete category %d of tree %d: %w", ids[i], id, err)
			}
			removed++
		}
		return id, nil
	})
	if err != nil && removed > 0 {
		// a partial delete still changed the store
		if _, rerr := s.Refresh(ctx); rerr != nil {
			s.opts.Logger.ErrorContext(ctx, "Snapshot rebuild after partial delete failed", log.FieldError, rerr)
		}
	}
	return removed, err
}

func inUse(snap *Snapshot, id int64) error {
	if n := len(snap.Ledger.ByCategory(id)); n > 0 {
		return fmt.Errorf("category %d has %d transactions: %w", id, n, ErrCategoryInUse)
	}
	for _, b := range snap.Budgets {
		if b.CategoryID == id {
			return fmt.Errorf("category %d has budget %d: %w", id, b.ID, ErrCategoryInUse)
		}
	}
	return nil
}

// AddTransaction stores a new transaction for an existing category.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = 0
	return s.saveTransaction(ctx, tx, amqp.OpCreated)
}

// UpdateTransaction replaces an existing transaction.
func (s *LedgerService) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == 0 {
		return core.Transaction{}, fmt.Errorf("transaction without id: %w", ErrNotFound)
	}
	return s.saveTransaction(ctx, tx, amqp.OpUpdated)
}

func (s *LedgerService) saveTransaction(ctx context.Context, tx core.Transaction, op string) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	var saved core.Transaction
	_, err := s.mutate(ctx, amqp.EntityTransaction, op, func(snap *Snapshot) (int64, error) {
		cat, ok := snap.Categories.ByID(tx.CategoryID)
		if !ok {
			return 0, fmt.Errorf("category %d: %w", tx.CategoryID, ErrNotFound)
		}
		if tx.ID != 0 {
			old, ok := snap.Ledger.ByID(tx.ID)
			if !ok {
				return 0, fmt.Errorf("transaction %d: %w", tx.ID, ErrNotFound)
			}
			tx.CreatedAt = old.CreatedAt
		}
		if string(cat.Type) != string(tx.Type) {
			s.opts.Logger.WarnContext(ctx, "Transaction type differs from its category",
				log.NewFields().WithTransaction(tx.ID, tx.Amount.Cents, string(tx.Type), tx.CategoryID).ToSlice()...)
		}
		var err error
		saved, err = s.store.SaveTransaction(ctx, tx)
		return saved.ID, err
	})
	return saved, err
}

// RemoveTransaction deletes a transaction by id.
func (s *LedgerService) RemoveTransaction(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, amqp.EntityTransaction, amqp.OpDeleted, func(snap *Snapshot) (int64, error) {
		if _, ok := snap.Ledger.ByID(id); !ok {
			return 0, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
		}
		return id, s.store.DeleteTransaction(ctx, id)
	})
	return err
}

// AddBudget stores a new budget. Its category must exist and its window must
// not overlap another budget of the same category.
func (s *LedgerService) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = 0
	return s.saveBudget(ctx, b, amqp.OpCreated)
}

// AdjustBudget changes the amount of an existing budget.
func (s *LedgerService) AdjustBudget(ctx context.Context, id int64, amount core.Money) (core.Budget, error) {
	b, ok := s.Snapshot().Budget(id)
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, ErrNotFound)
	}
	b.Amount = amount
	return s.saveBudget(ctx, b, amqp.OpUpdated)
}

// CopyBudgetToNextPeriod stores a copy of budget id moved to the following
// period.
func (s *LedgerService) CopyBudgetToNextPeriod(ctx context.Context, id int64) (core.Budget, error) {
	b, ok := s.Snapshot().Budget(id)
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, ErrNotFound)
	}
	next, err := budget.NextPeriod(b)
	if err != nil {
		return core.Budget{}, err
	}
	return s.saveBudget(ctx, next, amqp.OpCreated)
}

func (s *LedgerService) saveBudget(ctx context.Context, b core.Budget, op string) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	var saved core.Budget
	_, err := s.mutate(ctx, amqp.EntityBudget, op, func(snap *Snapshot) (int64, error) {
		if _, ok := snap.Categories.ByID(b.CategoryID); !ok {
			return 0, fmt.Errorf("category %d: %w", b.CategoryID, ErrNotFound)
		}
		if b.ID != 0 {
			if _, ok := snap.Budget(b.ID); !ok {
				return 0, fmt.Errorf("budget %d: %w", b.ID, ErrNotFound)
			}
		}
		if err := budget.CheckOverlap(b, snap.Budgets); err != nil {
			return 0, err
		}
		var err error
		saved, err = s.store.SaveBudget(ctx, b)
		return saved.ID, err
	})
	return saved, err
}

// RemoveBudget deletes a budget by id.
func (s *LedgerService) RemoveBudget(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, amqp.EntityBudget, amqp.OpDeleted, func(snap *Snapshot) (int64, error) {
		if _, ok := snap.Budget(id); !ok {
			return 0, fmt.Errorf("budget %d: %w", id, ErrNotFound)
		}
		return id, s.store.DeleteBudget(ctx, id)
	})
	return err
}

// Transactions returns the transactions matching f in the current snapshot.
func (s *LedgerService) Transactions(f *ledger.Filter) []core.Transaction {
	return s.Snapshot().Ledger.Filter(f)
}

// Close closes the store and, when it has one, the event publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.opts.Publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
