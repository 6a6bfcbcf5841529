// Package storage persists categories, transactions and budgets in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"
	"ledger/internal/ports"

	_ "modernc.org/sqlite"
)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListCategories returns every category in id order.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, parent_id, type FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c      core.Category
			parent sql.NullInt64
			typ    string
		)
		if err := rows.Scan(&c.ID, &c.Name, &parent, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if parent.Valid {
			p := parent.Int64
			c.ParentID = &p
		}
		c.Type = core.CategoryType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	var parent sql.NullInt64
	if c.ParentID != nil {
		parent = sql.NullInt64{Int64: *c.ParentID, Valid: true}
	}

	if c.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO categories (name, parent_id, type) VALUES (?, ?, ?)`,
			c.Name, parent, string(c.Type))
		if err != nil {
			return core.Category{}, fmt.Errorf("create category: %w", err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return core.Category{}, fmt.Errorf("category id: %w", err)
		}
		slog.InfoContext(ctx, "Category saved to SQLite", "id", c.ID, "name", c.Name)
		return c, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, parent_id = ?, type = ? WHERE id = ?`,
		c.Name, parent, string(c.Type), c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, mustAffect(res, "category", c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "categories", "category", id)
}

// ListTransactions returns every transaction in insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, tx_date, category_id, type, created_at
		 FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx            core.Transaction
			date, created string
			typ           string
		)
		if err := rows.Scan(&tx.ID, &tx.Description, &tx.Amount.Cents, &date, &tx.CategoryID, &typ, &created); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %d date %q: %w", tx.ID, date, err)
		}
		if tx.CreatedAt, err = time.Parse(timestampLayout, created); err != nil {
			return nil, fmt.Errorf("transaction %d created_at %q: %w", tx.ID, created, err)
		}
		tx.Type = core.TransactionType(typ)
		out = append(out, tx)
	}
	return out, rows.Err()
}

// SaveTransaction stamps CreatedAt on transactions that have none.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = r.now().UTC()
	}

	if tx.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO transactions (description, amount_cents, tx_date, category_id, type, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			tx.Description, tx.Amount.Cents, tx.Date.String(), tx.CategoryID, string(tx.Type),
			tx.CreatedAt.Format(timestampLayout))
		if err != nil {
			return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
		}
		if tx.ID, err = res.LastInsertId(); err != nil {
			return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
		}
		slog.InfoContext(ctx, "Transaction saved to SQLite",
			"id", tx.ID,
			"description", tx.Description,
			"amount_cents", tx.Amount.Cents,
			"date", tx.Date.String())
		return tx, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?, amount_cents = ?, tx_date = ?, category_id = ?, type = ?, created_at = ?
		 WHERE id = ?`,
		tx.Description, tx.Amount.Cents, tx.Date.String(), tx.CategoryID, string(tx.Type),
		tx.CreatedAt.Format(timestampLayout), tx.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return tx, mustAffect(res, "transaction", tx.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "transactions", "transaction", id)
}

// ListBudgets returns every budget in id order.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, amount_cents, period, start_date, end_date FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b                  core.Budget
			period, start, end string
		)
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.Amount.Cents, &period, &start, &end); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.StartDate, err = core.ParseDate(start); err != nil {
			return nil, fmt.Errorf("budget %d start date %q: %w", b.ID, start, err)
		}
		if b.EndDate, err = core.ParseDate(end); err != nil {
			return nil, fmt.Errorf("budget %d end date %q: %w", b.ID, end, err)
		}
		b.Period = core.BudgetPeriod(period)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if b.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO budgets (category_id, amount_cents, period, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
			b.CategoryID, b.Amount.Cents, string(b.Period), b.StartDate.String(), b.EndDate.String())
		if err != nil {
			return core.Budget{}, fmt.Errorf("create budget: %w", err)
		}
		if b.ID, err = res.LastInsertId(); err != nil {
			return core.Budget{}, fmt.Errorf("budget id: %w", err)
		}
		slog.InfoContext(ctx, "Budget saved to SQLite",
			"id", b.ID,
			"category_id", b.CategoryID,
			"amount_cents", b.Amount.Cents)
		return b, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET category_id = ?, amount_cents = ?, period = ?, start_date = ?, end_date = ? WHERE id = ?`,
		b.CategoryID, b.Amount.Cents, string(b.Period), b.StartDate.String(), b.EndDate.String(), b.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return b, mustAffect(res, "budget", b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "budgets", "budget", id)
}

// deleteByID removes one row. table is always a constant from this file.
func (r *SQLiteRepository) deleteByID(ctx context.Context, table, kind string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if err := mustAffect(res, kind, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Deleted from SQLite", "kind", kind, "id", id)
	return nil
}

func mustAffect(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ports.ErrNotFound)
	}
	return nil
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ports.ErrNotFound)
}
