// Package ledger holds the in-memory working set of transactions and answers
// filtered and aggregated queries over it.
//
// Sums are integer cent additions, so totals do not depend on input order.
// An Index is owned by a single session; it performs no locking.
package ledger

import (
	"sort"

	"ledger/internal/core"
)

// CategoryNamer resolves a category id to its display name.
// category.Index satisfies it.
type CategoryNamer interface {
	Name(id int64) string
}

// DailyTotal is the sum of all amounts booked on one day.
type DailyTotal struct {
	Date   core.Date
	Amount core.Money
}

// Index is an append-ordered transaction set with an id lookup.
type Index struct {
	txs   []core.Transaction
	byID  map[int64]int
	namer CategoryNamer
}

// New returns an index holding txs in the given order.
func New(txs []core.Transaction) *Index {
	x := &Index{byID: make(map[int64]int, len(txs))}
	x.AddAll(txs)
	return x
}

// WithNamer attaches a category name resolver and returns x.
func (x *Index) WithNamer(n CategoryNamer) *Index {
	x.namer = n
	return x
}

// CategoryName resolves tx's category name at read time; "" when unknown.
func (x *Index) CategoryName(tx core.Transaction) string {
	if x.namer == nil {
		return ""
	}
	return x.namer.Name(tx.CategoryID)
}

// Namer returns the attached name resolver, possibly nil.
func (x *Index) Namer() CategoryNamer { return x.namer }

// Add appends tx. Transactions without an id are kept but not indexed.
func (x *Index) Add(tx core.Transaction) {
	if x.byID == nil {
		x.byID = make(map[int64]int)
	}
	x.txs = append(x.txs, tx)
	if tx.ID != 0 {
		x.byID[tx.ID] = len(x.txs) - 1
	}
}

// AddAll appends txs in order.
func (x *Index) AddAll(txs []core.Transaction) {
	for _, tx := range txs {
		x.Add(tx)
	}
}

// Remove deletes the first transaction equal to tx (by id when tx has one)
// and re-indexes. It reports whether anything was removed.
func (x *Index) Remove(tx core.Transaction) bool {
	pos := -1
	if tx.ID != 0 {
		if i, ok := x.byID[tx.ID]; ok {
			pos = i
		}
	} else {
		for i, t := range x.txs {
			if t == tx {
				pos = i
				break
			}
		}
	}
	if pos < 0 {
		return false
	}
	x.txs = append(x.txs[:pos], x.txs[pos+1:]...)
	x.reindex()
	return true
}

// RemoveByID deletes the transaction with id.
func (x *Index) RemoveByID(id int64) bool {
	if id == 0 {
		return false
	}
	return x.Remove(core.Transaction{ID: id})
}

func (x *Index) reindex() {
	x.byID = make(map[int64]int, len(x.txs))
	for i, t := range x.txs {
		if t.ID != 0 {
			x.byID[t.ID] = i
		}
	}
}

// Clear drops every transaction.
func (x *Index) Clear() {
	x.txs = nil
	x.byID = make(map[int64]int)
}

func (x *Index) Len() int      { return len(x.txs) }
func (x *Index) IsEmpty() bool { return len(x.txs) == 0 }

// At returns the transaction at position i in insertion order.
func (x *Index) At(i int) core.Transaction { return x.txs[i] }

// All returns a copy of the transactions in insertion order.
func (x *Index) All() []core.Transaction {
	return append([]core.Transaction(nil), x.txs...)
}

// ByID looks up a transaction by id.
func (x *Index) ByID(id int64) (core.Transaction, bool) {
	i, ok := x.byID[id]
	if !ok {
		return core.Transaction{}, false
	}
	return x.txs[i], true
}

// Filter returns the transactions matching f, in insertion order.
func (x *Index) Filter(f *Filter) []core.Transaction {
	var out []core.Transaction
	for _, tx := range x.txs {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Where is Filter wrapped in a new Index sharing x's namer, so that
// aggregates can be chained: x.Where(f).TotalAmount().
func (x *Index) Where(f *Filter) *Index {
	return New(x.Filter(f)).WithNamer(x.namer)
}

func (x *Index) ByCategory(id int64) []core.Transaction {
	return x.Filter(NewFilter().Category(id))
}

func (x *Index) ByType(t core.TransactionType) []core.Transaction {
	return x.Filter(NewFilter().Type(t))
}

// ByDateRange returns transactions dated within [from, to].
func (x *Index) ByDateRange(from, to core.Date) []core.Transaction {
	return x.Filter(NewFilter().DateRange(from, to))
}

// ByAmountRange returns transactions with min <= amount <= max.
func (x *Index) ByAmountRange(min, max core.Money) []core.Transaction {
	return x.Filter(NewFilter().AmountRange(min, max))
}

// SearchDescription matches a case-insensitive description substring.
func (x *Index) SearchDescription(keyword string) []core.Transaction {
	return x.Filter(NewFilter().Description(keyword))
}

func (x *Index) TotalAmount() core.Money {
	var total core.Money
	for _, tx := range x.txs {
		total = total.Add(tx.Amount)
	}
	return total
}

func (x *Index) TotalIncome() core.Money {
	return x.totalOf(core.Income)
}

func (x *Index) TotalExpense() core.Money {
	return x.totalOf(core.Expense)
}

// NetAmount is income minus expense.
func (x *Index) NetAmount() core.Money {
	return x.TotalIncome().Sub(x.TotalExpense())
}

func (x *Index) totalOf(t core.TransactionType) core.Money {
	var total core.Money
	for _, tx := range x.txs {
		if tx.Type == t {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CountByType returns how many transactions carry each type.
func (x *Index) CountByType() map[core.TransactionType]int {
	out := make(map[core.TransactionType]int, 2)
	for _, tx := range x.txs {
		out[tx.Type]++
	}
	return out
}

// AmountByCategory sums amounts per category id regardless of type.
func (x *Index) AmountByCategory() map[int64]core.Money {
	out := make(map[int64]core.Money)
	for _, tx := range x.txs {
		out[tx.CategoryID] = out[tx.CategoryID].Add(tx.Amount)
	}
	return out
}

// DailyTotals sums amounts per day, ordered by date.
func (x *Index) DailyTotals() []DailyTotal {
	pos := make(map[string]int)
	var out []DailyTotal
	for _, tx := range x.txs {
		key := tx.Date.String()
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, DailyTotal{Date: tx.Date})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Recent returns the n most recently dated transactions, newest first.
// Transactions on the same day keep their insertion order.
func (x *Index) Recent(n int) []core.Transaction {
	if n <= 0 {
		return nil
	}
	out := x.All()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Largest returns the transaction with the highest amount; the first one
// wins ties. ok is false for an empty index.
func (x *Index) Largest() (core.Transaction, bool) {
	return x.pick(func(a, b core.Money) bool { return a.Cmp(b) > 0 })
}

// Smallest returns the transaction with the lowest amount.
func (x *Index) Smallest() (core.Transaction, bool) {
	return x.pick(func(a, b core.Money) bool { return a.Cmp(b) < 0 })
}

func (x *Index) pick(better func(a, b core.Money) bool) (core.Transaction, bool) {
	if len(x.txs) == 0 {
		return core.Transaction{}, false
	}
	best := x.txs[0]
	for _, tx := range x.txs[1:] {
		if better(tx.Amount, best.Amount) {
			best = tx
		}
	}
	return best, true
}
