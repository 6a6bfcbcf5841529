// Package report builds read-only financial reports over a ledger snapshot.
package report

import (
	"fmt"
	"slices"
	"sort"

	"ledger/internal/budget"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/sorter"
)

// Generator produces reports from one consistent set of transactions and
// budgets. It never modifies its inputs.
type Generator struct {
	ledger    *ledger.Index
	budgets   []core.Budget
	evaluator *budget.Evaluator
	sorter    *sorter.Sorter
}

// New returns a Generator. Category names are taken from idx's namer.
func New(idx *ledger.Index, budgets []core.Budget, ev *budget.Evaluator) *Generator {
	if ev == nil {
		ev = budget.New()
	}
	return &Generator{
		ledger:    idx,
		budgets:   budgets,
		evaluator: ev,
		sorter:    sorter.New(idx.Namer()),
	}
}

// Summary is the income and expense picture of a period.
type Summary struct {
	Label string
	core.PeriodTotals
	Categories   []core.CategoryAmount // largest first
	IncomeCount  int
	ExpenseCount int
	Count        int
}

// CategoryShare is one category's part of the money moved in a period.
type CategoryShare struct {
	CategoryID int64
	Name       string
	Type       core.TransactionType
	Amount     core.Money
	Count      int
	Percentage float64
}

// CategoryAnalysis breaks a period down by category.
type CategoryAnalysis struct {
	From, To   core.Date
	Total      core.Money
	Categories []CategoryShare // largest first
}

// MonthTotals is one calendar month of a trend.
type MonthTotals struct {
	Year    int
	Month   int
	Income  core.Money
	Expense core.Money
	Net     core.Money
}

func (m MonthTotals) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// BudgetAnalysis lists active budgets by usage, highest first.
type BudgetAnalysis struct {
	Budgets []budget.Evaluation
	budget.Totals
}

// CategoryCount is how often a category was used.
type CategoryCount struct {
	CategoryID int64
	Name       string
	Count      int
}

// Top holds the largest transactions of a period.
type Top struct {
	From, To   core.Date
	Expenses   []core.Transaction
	Income     []core.Transaction
	Categories []CategoryCount // most frequent first
}

func (g *Generator) window(from, to core.Date) *ledger.Index {
	return g.ledger.Where(ledger.NewFilter().DateRange(from, to))
}

func (g *Generator) name(id int64) string {
	if n := g.ledger.CategoryName(core.Transaction{CategoryID: id}); n != "" {
		return n
	}
	return fmt.Sprintf("category %d", id)
}

// MonthlySummary summarizes one calendar month.
func (g *Generator) MonthlySummary(year, month int) Summary {
	from, to := core.MonthBounds(year, month)
	return g.summary("Monthly", from, to)
}

// YearlySummary summarizes one calendar year.
func (g *Generator) YearlySummary(year int) Summary {
	from, to := core.YearBounds(year)
	return g.summary("Yearly", from, to)
}

// Summary summarizes the inclusive window [from, to].
func (g *Generator) Summary(from, to core.Date) Summary {
	return g.summary("Custom Period", from, to)
}

func (g *Generator) summary(label string, from, to core.Date) Summary {
	w := g.window(from, to)
	counts := w.CountByType()
	s := Summary{
		Label: label,
		PeriodTotals: core.PeriodTotals{
			From:    from,
			To:      to,
			Income:  w.TotalIncome(),
			Expense: w.TotalExpense(),
			Net:     w.NetAmount(),
		},
		IncomeCount:  counts[core.Income],
		ExpenseCount: counts[core.Expense],
		Count:        w.Len(),
	}
	for _, c := range g.groupByCategory(w) {
		s.Categories = append(s.Categories, core.CategoryAmount{CategoryID: c.CategoryID, Name: c.Name, Amount: c.Amount})
	}
	return s
}

// groupByCategory groups w by category id in order of first appearance and
// then sorts the groups by amount, largest first. Ties keep that order.
func (g *Generator) groupByCategory(w *ledger.Index) []CategoryShare {
	pos := make(map[int64]int)
	var out []CategoryShare
	for _, tx := range w.All() {
		i, ok := pos[tx.CategoryID]
		if !ok {
			i = len(out)
			pos[tx.CategoryID] = i
			out = append(out, CategoryShare{CategoryID: tx.CategoryID, Name: g.name(tx.CategoryID), Type: tx.Type})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.Cmp(out[j].Amount) > 0 })
	return out
}

// CategoryAnalysis reports each category's share of all money moved in
// [from, to]. Percentages are zero when nothing moved.
func (g *Generator) CategoryAnalysis(from, to core.Date) CategoryAnalysis {
	w := g.window(from, to)
	a := CategoryAnalysis{From: from, To: to, Total: w.TotalAmount(), Categories: g.groupByCategory(w)}
	for i := range a.Categories {
		a.Categories[i].Percentage = a.Categories[i].Amount.Percent(a.Total)
	}
	return a
}

// Trend returns one row per calendar month touched by [from, to], months
// without transactions included.
func (g *Generator) Trend(from, to core.Date) []MonthTotals {
	w := g.window(from, to)
	var out []MonthTotals
	for m := core.NewDate(from.Year(), from.Month(), 1); !m.After(to); m = m.AddMonths(1) {
		start, end := core.MonthBounds(m.Year(), m.Month())
		month := w.Where(ledger.NewFilter().DateRange(start, end))
		out = append(out, MonthTotals{
			Year:    m.Year(),
			Month:   m.Month(),
			Income:  month.TotalIncome(),
			Expense: month.TotalExpense(),
			Net:     month.NetAmount(),
		})
	}
	return out
}

// Budgets evaluates the active budgets, highest usage first.
func (g *Generator) Budgets() BudgetAnalysis {
	evals := g.evaluator.Active(g.budgets, g.ledger)
	sort.SliceStable(evals, func(i, j int) bool { return evals[i].UsagePercentage > evals[j].UsagePercentage })
	return BudgetAnalysis{Budgets: evals, Totals: budget.Summarize(evals)}
}

// TopTransactions returns up to n of the largest expenses, the largest
// income entries and the most used categories in [from, to].
func (g *Generator) TopTransactions(from, to core.Date, n int) Top {
	w := g.window(from, to)
	top := Top{
		From:     from,
		To:       to,
		Expenses: head(g.sorter.SortByAmountDesc(w.ByType(core.Expense)), n),
		Income:   head(g.sorter.SortByAmountDesc(w.ByType(core.Income)), n),
	}
	groups := g.groupByCategory(w)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	for i, c := range groups {
		if i >= n {
			break
		}
		top.Categories = append(top.Categories, CategoryCount{CategoryID: c.CategoryID, Name: c.Name, Count: c.Count})
	}
	return top
}

func head(txs []core.Transaction, n int) []core.Transaction {
	if n < 0 {
		n = 0
	}
	if n < len(txs) {
		return txs[:n]
	}
	return txs
}

// Clone returns a copy that shares no slices with s.
func (s Summary) Clone() Summary {
	s.Categories = slices.Clone(s.Categories)
	return s
}

// Clone returns a copy that shares no slices with a.
func (a CategoryAnalysis) Clone() CategoryAnalysis {
	a.Categories = slices.Clone(a.Categories)
	return a
}

// Clone returns a copy that shares no slices with t.
func (t Top) Clone() Top {
	t.Expenses = slices.Clone(t.Expenses)
	t.Income = slices.Clone(t.Income)
	t.Categories = slices.Clone(t.Categories)
	return t
}
