// Package budget derives spending figures, status and portfolio health for
// budgets from the current transaction set.
//
// Nothing here is stored: spent, remaining and usage are recomputed on every
// call from the ledger.Index passed in.
package budget

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"ledger/internal/category"
	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Status is the four-tier usage classification of a budget.
type Status string

const (
	OverBudget  Status = "OVER_BUDGET"
	NearLimit   Status = "NEAR_LIMIT"
	OnTrack     Status = "ON_TRACK"
	UnderBudget Status = "UNDER_BUDGET"
)

const (
	DefaultNearLimitPercent = 90.0
	onTrackPercent          = 75.0
)

// Evaluation is a budget together with its derived fields.
type Evaluation struct {
	Budget          core.Budget
	Spent           core.Money
	Remaining       core.Money
	UsagePercentage float64
	Status          Status
	OverBudget      bool
	Active          bool
}

// Evaluator computes budget evaluations. The zero value uses the real clock,
// the default near-limit threshold and exact-category spending.
type Evaluator struct {
	// Today returns the current day. nil means core.Today.
	Today func() core.Date

	// NearLimitPercent is the usage at which a budget becomes NEAR_LIMIT.
	// Zero means DefaultNearLimitPercent.
	NearLimitPercent float64

	// Categories enables Rollup when set.
	Categories *category.Index

	// Rollup counts spending of every subcategory against a budget. It needs
	// Categories; without it only the budget's own category counts.
	Rollup bool
}

// New returns an Evaluator with default settings.
func New() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) today() core.Date {
	if e.Today != nil {
		return e.Today()
	}
	return core.Today()
}

func (e *Evaluator) nearLimit() float64 {
	if e.NearLimitPercent > 0 {
		return e.NearLimitPercent
	}
	return DefaultNearLimitPercent
}

// Spent sums every transaction of the budget's category (any type) dated
// inside the budget window.
func (e *Evaluator) Spent(b core.Budget, idx *ledger.Index) core.Money {
	ids := []int64{b.CategoryID}
	if e.Rollup && e.Categories != nil {
		if sub := e.Categories.Subtree(b.CategoryID); len(sub) > 0 {
			ids = sub
		}
	}
	f := ledger.NewFilter().Categories(ids...).DateRange(b.StartDate, b.EndDate)
	return idx.Where(f).TotalAmount()
}

// Evaluate derives spent, remaining, usage and status for b.
func (e *Evaluator) Evaluate(b core.Budget, idx *ledger.Index) Evaluation {
	spent := e.Spent(b, idx)
	ev := Evaluation{
		Budget:          b,
		Spent:           spent,
		Remaining:       b.Amount.Sub(spent),
		UsagePercentage: spent.Percent(b.Amount),
		OverBudget:      spent.Cmp(b.Amount) > 0,
		Active:          b.Covers(e.today()),
	}
	ev.Status = e.classify(ev)
	return ev
}

func (e *Evaluator) classify(ev Evaluation) Status {
	switch {
	case ev.OverBudget:
		return OverBudget
	case ev.UsagePercentage >= e.nearLimit():
		return NearLimit
	case ev.UsagePercentage >= onTrackPercent:
		return OnTrack
	}
	return UnderBudget
}

// EvaluateAll evaluates budgets in order.
func (e *Evaluator) EvaluateAll(budgets []core.Budget, idx *ledger.Index) []Evaluation {
	out := make([]Evaluation, len(budgets))
	for i, b := range budgets {
		out[i] = e.Evaluate(b, idx)
	}
	return out
}

// Active evaluates only the budgets whose window contains today.
func (e *Evaluator) Active(budgets []core.Budget, idx *ledger.Index) []Evaluation {
	var out []Evaluation
	for _, ev := range e.EvaluateAll(budgets, idx) {
		if ev.Active {
			out = append(out, ev)
		}
	}
	return out
}

// Alerts returns one message per active budget that is over budget or at
// the near-limit threshold. Category names come from the ledger's namer.
func (e *Evaluator) Alerts(budgets []core.Budget, idx *ledger.Index) []string {
	var alerts []string
	for _, ev := range e.Active(budgets, idx) {
		name := categoryName(idx, ev.Budget.CategoryID)
		switch ev.Status {
		case OverBudget:
			alerts = append(alerts, fmt.Sprintf("OVER BUDGET: %s is %s over the limit",
				name, ev.Remaining.Neg()))
		case NearLimit:
			alerts = append(alerts, fmt.Sprintf("NEAR LIMIT: %s has used %.1f%% of budget",
				name, ev.UsagePercentage))
		}
	}
	return alerts
}

func categoryName(idx *ledger.Index, id int64) string {
	if name := idx.CategoryName(core.Transaction{CategoryID: id}); name != "" {
		return name
	}
	return fmt.Sprintf("category %d", id)
}

// PerformanceScore rates a usage percentage. Usage between 50% and 80% is
// ideal; very low usage and usage close to the limit score lower, and
// anything over 100% scores zero.
func PerformanceScore(usage float64) float64 {
	switch {
	case usage > 100:
		return 0
	case usage >= 50 && usage <= 80:
		return 100
	case usage >= 30 && usage < 50:
		return 80
	case usage > 80 && usage <= 95:
		return 60
	case usage > 95:
		return 20
	}
	return 40
}

// TopPerforming returns up to n evaluations with the best score first.
// Equal scores keep their input order.
func TopPerforming(evals []Evaluation, n int) []Evaluation {
	out := append([]Evaluation(nil), evals...)
	sort.SliceStable(out, func(i, j int) bool {
		return PerformanceScore(out[i].UsagePercentage) > PerformanceScore(out[j].UsagePercentage)
	})
	return limit(out, n)
}

// WorstPerforming returns up to n evaluations, over-budget ones first and
// then by usage, highest first.
func WorstPerforming(evals []Evaluation, n int) []Evaluation {
	out := append([]Evaluation(nil), evals...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OverBudget != out[j].OverBudget {
			return out[i].OverBudget
		}
		return out[i].UsagePercentage > out[j].UsagePercentage
	})
	return limit(out, n)
}

func limit(evals []Evaluation, n int) []Evaluation {
	if n < 0 {
		n = 0
	}
	if n < len(evals) {
		return evals[:n]
	}
	return evals
}

// HealthScore is the mean performance score of evals, 100 when empty.
func HealthScore(evals []Evaluation) float64 {
	if len(evals) == 0 {
		return 100
	}
	var total float64
	for _, ev := range evals {
		total += PerformanceScore(ev.UsagePercentage)
	}
	return total / float64(len(evals))
}

// HealthDescription turns a health score into a short verdict.
func HealthDescription(score float64) string {
	switch {
	case score >= 90:
		return "Excellent - Your budgets are well-managed and on track"
	case score >= 70:
		return "Good - Most budgets are performing well with room for minor improvements"
	case score >= 50:
		return "Fair - Some budgets need attention to avoid overspending"
	case score >= 30:
		return "Poor - Multiple budgets are at risk or already exceeded"
	}
	return "Critical - Immediate budget review and spending cuts needed"
}

// Forecast projects spending for b up to target. A target after the budget
// window yields zero and a target in the past yields the actual spending.
// Otherwise the daily rate so far (rounded to cents) is extended linearly;
// with no elapsed days the forecast is zero.
func (e *Evaluator) Forecast(b core.Budget, idx *ledger.Index, target core.Date) core.Money {
	if target.After(b.EndDate) {
		return core.Zero
	}
	today := e.today()
	spent := e.Spent(b, idx)
	if target.Before(today) {
		return spent
	}
	elapsed := b.StartDate.DaysUntil(today)
	if elapsed <= 0 {
		return core.Zero
	}
	return spent.DivInt(int64(elapsed)).MulInt(int64(b.StartDate.DaysUntil(target)))
}

// DaysRemaining counts days from today to the end of b; zero once it ended.
func (e *Evaluator) DaysRemaining(b core.Budget) int {
	today := e.today()
	if today.After(b.EndDate) {
		return 0
	}
	return today.DaysUntil(b.EndDate)
}

// Totals summarizes a set of evaluations.
type Totals struct {
	Budgeted  core.Money
	Spent     core.Money
	Remaining core.Money
	Over      int
	Count     int
}

// Summarize adds up evals.
func Summarize(evals []Evaluation) Totals {
	var t Totals
	for _, ev := range evals {
		t.Budgeted = t.Budgeted.Add(ev.Budget.Amount)
		t.Spent = t.Spent.Add(ev.Spent)
		if ev.OverBudget {
			t.Over++
		}
	}
	t.Remaining = t.Budgeted.Sub(t.Spent)
	t.Count = len(evals)
	return t
}

// OverallUsage is total spent as a percentage of total budgeted.
func OverallUsage(evals []Evaluation) float64 {
	t := Summarize(evals)
	return t.Spent.Percent(t.Budgeted)
}

// SuggestAmount proposes a new cap of spent times factor. A proposal below
// what was already spent is replaced by spent plus ten percent.
func SuggestAmount(ev Evaluation, factor float64) core.Money {
	spent := ev.Spent.Decimal()
	suggested := spent.Mul(decimal.NewFromFloat(factor))
	if suggested.LessThan(spent) {
		suggested = spent.Mul(decimal.RequireFromString("1.1"))
	}
	return core.FromDecimal(suggested)
}
