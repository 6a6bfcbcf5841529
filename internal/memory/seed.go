package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"
)

// Seed file names inside the data directory.
const (
	CategoriesFile   = "categories.json"
	TransactionsFile = "transactions.json"
	BudgetsFile      = "budgets.json"
)

type categoryRecord struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Type     string `json:"type"`
}

type transactionRecord struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	CategoryID  int64     `json:"category_id"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type budgetRecord struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Amount     string `json:"amount"`
	Period     string `json:"period"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func defaultCategories() []core.Category {
	food, housing := int64(1), int64(4)
	return []core.Category{
		{ID: 1, Name: "Food", Type: core.ExpenseCategory},
		{ID: 2, Name: "Groceries", ParentID: &food, Type: core.ExpenseCategory},
		{ID: 3, Name: "Restaurants", ParentID: &food, Type: core.ExpenseCategory},
		{ID: 4, Name: "Housing", Type: core.ExpenseCategory},
		{ID: 5, Name: "Rent", ParentID: &housing, Type: core.ExpenseCategory},
		{ID: 6, Name: "Salary", Type: core.IncomeCategory},
	}
}

// NewFromFiles seeds a store from the JSON files in base. A missing file
// is not an error; without a categories file a small default set is used.
// Malformed files and invalid records are.
func NewFromFiles(base string) (*Store, error) {
	var cr []categoryRecord
	found, err := readJSON(filepath.Join(base, CategoriesFile), &cr)
	if err != nil {
		return nil, err
	}
	cats := defaultCategories()
	if found {
		cats = make([]core.Category, 0, len(cr))
		for _, r := range cr {
			cats = append(cats, core.Category{ID: r.ID, Name: r.Name, ParentID: r.ParentID, Type: core.CategoryType(r.Type)})
		}
	}

	var tr []transactionRecord
	if _, err := readJSON(filepath.Join(base, TransactionsFile), &tr); err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, 0, len(tr))
	for i, r := range tr {
		tx, err := r.toCore()
		if err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", TransactionsFile, i, err)
		}
		txs = append(txs, tx)
	}

	var br []budgetRecord
	if _, err := readJSON(filepath.Join(base, BudgetsFile), &br); err != nil {
		return nil, err
	}
	budgets := make([]core.Budget, 0, len(br))
	for i, r := range br {
		b, err := r.toCore()
		if err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", BudgetsFile, i, err)
		}
		budgets = append(budgets, b)
	}

	return New(cats, txs, budgets), nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

func (r transactionRecord) toCore() (core.Transaction, error) {
	amount, err := core.ParseMoney(r.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", r.Amount, err)
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", r.Date, err)
	}
	tx := core.Transaction{
		ID:          r.ID,
		Description: r.Description,
		Amount:      amount,
		Date:        date,
		CategoryID:  r.CategoryID,
		Type:        core.TransactionType(r.Type),
		CreatedAt:   r.CreatedAt,
	}
	return tx, tx.Validate()
}

func (r budgetRecord) toCore() (core.Budget, error) {
	amount, err := core.ParseMoney(r.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("amount %q: %w", r.Amount, err)
	}
	start, err := core.ParseDate(r.StartDate)
	if err != nil {
		return core.Budget{}, fmt.Errorf("start date %q: %w", r.StartDate, err)
	}
	end, err := core.ParseDate(r.EndDate)
	if err != nil {
		return core.Budget{}, fmt.Errorf("end date %q: %w", r.EndDate, err)
	}
	b := core.Budget{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Amount:     amount,
		Period:     core.BudgetPeriod(r.Period),
		StartDate:  start,
		EndDate:    end,
	}
	return b, b.Validate()
}
