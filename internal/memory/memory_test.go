package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/ports"
)

func TestStoreSaveAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := New(defaultCategories(), nil, nil)

	c, err := s.SaveCategory(ctx, core.Category{Name: "Travel", Type: core.ExpenseCategory})
	if err != nil || c.ID != 7 {
		t.Fatalf("SaveCategory = %+v, %v", c, err)
	}

	tx, err := s.SaveTransaction(ctx, core.Transaction{
		Description: "Train",
		Amount:      core.Cents(1250),
		Date:        core.NewDate(2024, 4, 2),
		CategoryID:  c.ID,
		Type:        core.Expense,
	})
	if err != nil || tx.ID != 1 || tx.CreatedAt.IsZero() {
		t.Fatalf("SaveTransaction = %+v, %v", tx, err)
	}

	tx.Description = "Train back"
	if _, err := s.SaveTransaction(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}
	txs, _ := s.ListTransactions(ctx)
	if len(txs) != 1 || txs[0].Description != "Train back" {
		t.Errorf("after update = %+v", txs)
	}

	tx.ID = 42
	if _, err := s.SaveTransaction(ctx, tx); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("update of unknown id: %v", err)
	}
	if err := s.DeleteTransaction(ctx, 1); err != nil {
		t.Errorf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, 1); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestStoreRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)
	if _, err := s.SaveCategory(ctx, core.Category{Name: " ", Type: core.ExpenseCategory}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("empty name: %v", err)
	}
	if _, err := s.SaveTransaction(ctx, core.Transaction{Description: "x", Date: core.NewDate(2024, 1, 1), CategoryID: 1, Type: core.Expense}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount: %v", err)
	}
	b := core.Budget{CategoryID: 1, Amount: core.Units(1), Period: core.Monthly, StartDate: core.NewDate(2024, 2, 1), EndDate: core.NewDate(2024, 1, 1)}
	if _, err := s.SaveBudget(ctx, b); !errors.Is(err, core.ErrInvalidDateRange) {
		t.Errorf("inverted window: %v", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := New(defaultCategories(), nil, nil)
	cats, _ := s.ListCategories(context.Background())
	cats[0].Name = "changed"
	again, _ := s.ListCategories(context.Background())
	if again[0].Name != "Food" {
		t.Errorf("List exposed internal state")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("empty dir: %v", err)
	}
	cats, _ := s.ListCategories(context.Background())
	if len(cats) != len(defaultCategories()) {
		t.Fatalf("expected defaults when files missing, got %d", len(cats))
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite(CategoriesFile, `[{"id":10,"name":"Food","type":"EXPENSE"},{"id":11,"name":"Groceries","parent_id":10,"type":"EXPENSE"}]`)
	mustWrite(TransactionsFile, `[{"id":3,"description":"Market","amount":"12,50","date":"2024-01-05","category_id":11,"type":"EXPENSE","created_at":"2024-01-05T10:00:00Z"}]`)
	mustWrite(BudgetsFile, `[{"id":1,"category_id":10,"amount":"200","period":"MONTHLY","start_date":"2024-01-01","end_date":"2024-01-31"}]`)

	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("NewFromFiles: %v", err)
	}
	ctx := context.Background()
	cats, _ = s.ListCategories(ctx)
	if len(cats) != 2 || cats[1].ParentID == nil || *cats[1].ParentID != 10 {
		t.Errorf("categories = %+v", cats)
	}
	txs, _ := s.ListTransactions(ctx)
	if len(txs) != 1 || txs[0].Amount != core.Cents(1250) || !txs[0].CreatedAt.Equal(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("transactions = %+v", txs)
	}
	budgets, _ := s.ListBudgets(ctx)
	if len(budgets) != 1 || budgets[0].EndDate.String() != "2024-01-31" {
		t.Errorf("budgets = %+v", budgets)
	}

	next, err := s.SaveCategory(ctx, core.Category{Name: "Fuel", Type: core.ExpenseCategory})
	if err != nil || next.ID != 12 {
		t.Errorf("id after seeded ids = %d, %v", next.ID, err)
	}
}

func TestNewFromFilesRejectsBadData(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"malformed json", CategoriesFile, `{`},
		{"bad amount", TransactionsFile, `[{"description":"x","amount":"-1","date":"2024-01-01","category_id":1,"type":"EXPENSE"}]`},
		{"bad date", BudgetsFile, `[{"category_id":1,"amount":"1","period":"MONTHLY","start_date":"01/01/2024","end_date":"2024-01-31"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewFromFiles(dir); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}
