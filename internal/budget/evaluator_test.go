package budget

import (
	"errors"
	"testing"

	"ledger/internal/category"
	"ledger/internal/core"
	"ledger/internal/ledger"
)

type names map[int64]string

func (n names) Name(id int64) string { return n[id] }

func fixedDay(y, m, d int) func() core.Date {
	return func() core.Date { return core.NewDate(y, m, d) }
}

func spend(id, cat int64, cents int64, date core.Date) core.Transaction {
	return core.Transaction{ID: id, CategoryID: cat, Amount: core.Cents(cents), Date: date, Type: core.Expense, Description: "x"}
}

func january(cat int64, units int64) core.Budget {
	return NewMonthly(cat, core.Units(units), 2024, 1)
}

func TestEvaluateOverBudgetScenario(t *testing.T) {
	idx := ledger.New([]core.Transaction{
		spend(1, 1, 15000, core.NewDate(2024, 1, 3)),
		spend(2, 1, 10000, core.NewDate(2024, 1, 20)),
		spend(3, 1, 99900, core.NewDate(2024, 2, 1)), // outside the window
		spend(4, 2, 5000, core.NewDate(2024, 1, 5)),  // other category
	})
	e := &Evaluator{Today: fixedDay(2024, 1, 15)}
	ev := e.Evaluate(january(1, 200), idx)

	if ev.Spent.String() != "250.00" {
		t.Fatalf("Spent = %s", ev.Spent)
	}
	if ev.Remaining.String() != "-50.00" {
		t.Errorf("Remaining = %s", ev.Remaining)
	}
	if !ev.OverBudget || ev.Status != OverBudget {
		t.Errorf("status = %s over=%v", ev.Status, ev.OverBudget)
	}
	if ev.UsagePercentage != 125 {
		t.Errorf("UsagePercentage = %v", ev.UsagePercentage)
	}
	if !ev.Active {
		t.Errorf("budget should be active on 2024-01-15")
	}
}

func TestEvaluateZeroAmount(t *testing.T) {
	e := &Evaluator{Today: fixedDay(2024, 1, 15)}

	ev := e.Evaluate(january(1, 0), ledger.New(nil))
	if ev.UsagePercentage != 0 || ev.Status != UnderBudget {
		t.Errorf("empty: usage %v status %s", ev.UsagePercentage, ev.Status)
	}

	ev = e.Evaluate(january(1, 0), ledger.New([]core.Transaction{spend(1, 1, 100, core.NewDate(2024, 1, 2))}))
	if ev.UsagePercentage != 0 {
		t.Errorf("usage with zero amount = %v", ev.UsagePercentage)
	}
	if ev.Status != OverBudget {
		t.Errorf("spending against a zero budget should be over, got %s", ev.Status)
	}
}

func TestStatusTiers(t *testing.T) {
	tests := []struct {
		spentCents int64
		want       Status
	}{
		{0, UnderBudget},
		{7499, UnderBudget},
		{7500, OnTrack},
		{8999, OnTrack},
		{9000, NearLimit},
		{10000, NearLimit},
		{10001, OverBudget},
	}
	e := &Evaluator{Today: fixedDay(2024, 1, 15)}
	for _, tt := range tests {
		idx := ledger.New([]core.Transaction{spend(1, 1, tt.spentCents, core.NewDate(2024, 1, 10))})
		ev := e.Evaluate(january(1, 100), idx)
		if ev.Status != tt.want {
			t.Errorf("spent %d cents: status %s, want %s", tt.spentCents, ev.Status, tt.want)
		}
		if ev.Remaining != ev.Budget.Amount.Sub(ev.Spent) {
			t.Errorf("remaining != amount - spent")
		}
		if ev.OverBudget != (ev.Spent.Cmp(ev.Budget.Amount) > 0) {
			t.Errorf("OverBudget inconsistent with spent > amount")
		}
	}

	custom := &Evaluator{Today: fixedDay(2024, 1, 15), NearLimitPercent: 80}
	idx := ledger.New([]core.Transaction{spend(1, 1, 8500, core.NewDate(2024, 1, 10))})
	if got := custom.Evaluate(january(1, 100), idx).Status; got != NearLimit {
		t.Errorf("custom threshold: status %s", got)
	}
}

func TestSpentCountsEveryType(t *testing.T) {
	refund := spend(2, 1, 1000, core.NewDate(2024, 1, 9))
	refund.Type = core.Income
	idx := ledger.New([]core.Transaction{spend(1, 1, 2000, core.NewDate(2024, 1, 8)), refund})
	if got := New().Spent(january(1, 100), idx); got != core.Cents(3000) {
		t.Errorf("Spent = %s", got)
	}
}

func TestRollup(t *testing.T) {
	food := int64(1)
	cats := category.New([]core.Category{
		{ID: 1, Name: "Food", Type: core.ExpenseCategory},
		{ID: 2, Name: "Groceries", ParentID: &food, Type: core.ExpenseCategory},
		{ID: 3, Name: "Rent", Type: core.ExpenseCategory},
	})
	idx := ledger.New([]core.Transaction{
		spend(1, 1, 1000, core.NewDate(2024, 1, 2)),
		spend(2, 2, 4000, core.NewDate(2024, 1, 3)),
		spend(3, 3, 9000, core.NewDate(2024, 1, 4)),
	})
	b := january(1, 100)

	if got := (&Evaluator{Categories: cats}).Spent(b, idx); got != core.Cents(1000) {
		t.Errorf("without rollup: %s", got)
	}
	if got := (&Evaluator{Categories: cats, Rollup: true}).Spent(b, idx); got != core.Cents(5000) {
		t.Errorf("with rollup: %s", got)
	}
	if got := (&Evaluator{Rollup: true}).Spent(b, idx); got != core.Cents(1000) {
		t.Errorf("rollup without categories: %s", got)
	}
}

func TestAlerts(t *testing.T) {
	idx := ledger.New([]core.Transaction{
		spend(1, 1, 25000, core.NewDate(2024, 1, 3)),
		spend(2, 2, 9250, core.NewDate(2024, 1, 4)),
		spend(3, 3, 1000, core.NewDate(2024, 1, 4)),
		spend(4, 4, 90000, core.NewDate(2024, 2, 4)),
	}).WithNamer(names{1: "Food", 2: "Rent"})
	budgets := []core.Budget{
		january(1, 200),
		january(2, 100),
		january(3, 100),                        // under, no alert
		NewMonthly(4, core.Units(10), 2024, 2), // over but not active
	}
	e := &Evaluator{Today: fixedDay(2024, 1, 15)}
	got := e.Alerts(budgets, idx)
	want := []string{
		"OVER BUDGET: Food is 50.00 over the limit",
		"NEAR LIMIT: Rent has used 92.5% of budget",
	}
	if len(got) != len(want) {
		t.Fatalf("Alerts = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("alert %d = %q, want %q", i, got[i], want[i])
		}
	}

	unnamed := ledger.New([]core.Transaction{spend(1, 7, 5000, core.NewDate(2024, 1, 3))})
	if a := e.Alerts([]core.Budget{january(7, 10)}, unnamed); len(a) != 1 || a[0] != "OVER BUDGET: category 7 is 40.00 over the limit" {
		t.Errorf("unnamed alert = %q", a)
	}
}

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		usage float64
		want  float64
	}{
		{0, 40},
		{29.9, 40},
		{30, 80},
		{49.99, 80},
		{50, 100},
		{80, 100},
		{80.01, 60},
		{95, 60},
		{95.5, 20},
		{100, 20},
		{100.01, 0},
		{250, 0},
	}
	for _, tt := range tests {
		if got := PerformanceScore(tt.usage); got != tt.want {
			t.Errorf("PerformanceScore(%v) = %v, want %v", tt.usage, got, tt.want)
		}
	}
}

func evals(usages ...float64) []Evaluation {
	out := make([]Evaluation, len(usages))
	for i, u := range usages {
		out[i] = Evaluation{Budget: core.Budget{ID: int64(i + 1)}, UsagePercentage: u, OverBudget: u > 100}
	}
	return out
}

func budgetIDs(evs []Evaluation) []int64 {
	out := make([]int64, len(evs))
	for i, ev := range evs {
		out[i] = ev.Budget.ID
	}
	return out
}

func TestRanking(t *testing.T) {
	in := evals(10, 60, 120, 97, 70, 40, 101)

	top := budgetIDs(TopPerforming(in, 3))
	if len(top) != 3 || top[0] != 2 || top[1] != 5 || top[2] != 6 {
		t.Errorf("TopPerforming = %v", top)
	}

	worst := budgetIDs(WorstPerforming(in, 4))
	if len(worst) != 4 || worst[0] != 3 || worst[1] != 7 || worst[2] != 4 || worst[3] != 5 {
		t.Errorf("WorstPerforming = %v", worst)
	}

	if len(TopPerforming(in, 100)) != len(in) || len(WorstPerforming(in, -1)) != 0 {
		t.Errorf("limit not applied")
	}
	if in[0].Budget.ID != 1 {
		t.Errorf("ranking mutated input")
	}
}

func TestHealth(t *testing.T) {
	if HealthScore(nil) != 100 {
		t.Errorf("empty health should be 100")
	}
	if got := HealthScore(evals(60, 10, 120)); got != (100.0+40+0)/3 {
		t.Errorf("HealthScore = %v", got)
	}
	tests := []struct {
		score  float64
		prefix string
	}{
		{100, "Excellent"},
		{90, "Excellent"},
		{70, "Good"},
		{50, "Fair"},
		{30, "Poor"},
		{29.9, "Critical"},
	}
	for _, tt := range tests {
		got := HealthDescription(tt.score)
		if len(got) < len(tt.prefix) || got[:len(tt.prefix)] != tt.prefix {
			t.Errorf("HealthDescription(%v) = %q", tt.score, got)
		}
	}
}

func TestForecast(t *testing.T) {
	idx := ledger.New([]core.Transaction{spend(1, 1, 10000, core.NewDate(2024, 1, 5))})
	b := january(1, 500)
	e := &Evaluator{Today: fixedDay(2024, 1, 15)}

	tests := []struct {
		name   string
		target core.Date
		want   string
	}{
		{"after window", core.NewDate(2024, 2, 1), "0.00"},
		{"in the past", core.NewDate(2024, 1, 10), "100.00"},
		// 100.00 / 14 days = 7.14 per day, times 30 days
		{"end of window", core.NewDate(2024, 1, 31), "214.20"},
		{"today", core.NewDate(2024, 1, 15), "99.96"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Forecast(b, idx, tt.target).String(); got != tt.want {
				t.Errorf("Forecast = %s, want %s", got, tt.want)
			}
		})
	}

	first := &Evaluator{Today: fixedDay(2024, 1, 1)}
	if got := first.Forecast(b, idx, core.NewDate(2024, 1, 20)); !got.IsZero() {
		t.Errorf("no elapsed days should forecast zero, got %s", got)
	}
}

func TestDaysRemaining(t *testing.T) {
	b := january(1, 100)
	if got := (&Evaluator{Today: fixedDay(2024, 1, 15)}).DaysRemaining(b); got != 16 {
		t.Errorf("DaysRemaining = %d", got)
	}
	if got := (&Evaluator{Today: fixedDay(2024, 2, 1)}).DaysRemaining(b); got != 0 {
		t.Errorf("ended budget: DaysRemaining = %d", got)
	}
}

func TestSummarizeAndUsage(t *testing.T) {
	in := []Evaluation{
		{Budget: core.Budget{Amount: core.Units(100)}, Spent: core.Units(50)},
		{Budget: core.Budget{Amount: core.Units(100)}, Spent: core.Units(150), OverBudget: true},
	}
	s := Summarize(in)
	if s.Budgeted != core.Units(200) || s.Spent != core.Units(200) || !s.Remaining.IsZero() || s.Over != 1 || s.Count != 2 {
		t.Errorf("Summarize = %+v", s)
	}
	if got := OverallUsage(in); got != 100 {
		t.Errorf("OverallUsage = %v", got)
	}
	if got := OverallUsage(nil); got != 0 {
		t.Errorf("OverallUsage(nil) = %v", got)
	}
}

func TestSuggestAmount(t *testing.T) {
	ev := Evaluation{Spent: core.Units(100)}
	if got := SuggestAmount(ev, 1.2).String(); got != "120.00" {
		t.Errorf("factor 1.2: %s", got)
	}
	if got := SuggestAmount(ev, 0.5).String(); got != "110.00" {
		t.Errorf("factor 0.5 should fall back to a 10%% buffer: %s", got)
	}
}

func TestOverlap(t *testing.T) {
	jan := january(1, 100)
	tests := []struct {
		name string
		b    core.Budget
		want bool
	}{
		{"same window", january(1, 50), true},
		{"touching end day", core.Budget{CategoryID: 1, StartDate: core.NewDate(2024, 1, 31), EndDate: core.NewDate(2024, 2, 29)}, true},
		{"adjacent", NewMonthly(1, core.Units(1), 2024, 2), false},
		{"inside", core.Budget{CategoryID: 1, StartDate: core.NewDate(2024, 1, 10), EndDate: core.NewDate(2024, 1, 12)}, true},
		{"enclosing", NewYearly(1, core.Units(1), 2024), true},
		{"other category", january(2, 100), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Overlaps(jan, tt.b) != tt.want || Overlaps(tt.b, jan) != tt.want {
				t.Errorf("Overlaps = %v, want %v (both directions)", !tt.want, tt.want)
			}
		})
	}

	jan.ID = 7
	if err := CheckOverlap(january(1, 10), []core.Budget{jan}); !errors.Is(err, ErrBudgetOverlap) {
		t.Errorf("CheckOverlap err = %v", err)
	}
	if err := CheckOverlap(jan, []core.Budget{jan}); err != nil {
		t.Errorf("a budget should not conflict with itself: %v", err)
	}
	if err := CheckOverlap(NewMonthly(1, core.Units(1), 2024, 3), []core.Budget{jan}); err != nil {
		t.Errorf("unexpected overlap: %v", err)
	}
}

func TestNextPeriod(t *testing.T) {
	tests := []struct {
		name       string
		in         core.Budget
		start, end string
	}{
		{"january to leap february", january(1, 1), "2024-02-01", "2024-02-29"},
		{"february to march", NewMonthly(1, core.Units(1), 2024, 2), "2024-03-01", "2024-03-31"},
		{"mid-month window", core.Budget{Period: core.Monthly, StartDate: core.NewDate(2024, 1, 10), EndDate: core.NewDate(2024, 2, 9)}, "2024-02-10", "2024-03-09"},
		{"year", NewYearly(1, core.Units(1), 2024), "2025-01-01", "2025-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.ID = 9
			got, err := NextPeriod(tt.in)
			if err != nil {
				t.Fatalf("NextPeriod: %v", err)
			}
			if got.StartDate.String() != tt.start || got.EndDate.String() != tt.end {
				t.Errorf("got %s..%s, want %s..%s", got.StartDate, got.EndDate, tt.start, tt.end)
			}
			if got.ID != 0 || got.Amount != tt.in.Amount || got.Period != tt.in.Period {
				t.Errorf("copy fields changed: %+v", got)
			}
		})
	}
	if _, err := NextPeriod(core.Budget{Period: "WEEKLY"}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("unknown period err = %v", err)
	}
}

func TestNewMonthlyYearly(t *testing.T) {
	m := NewMonthly(3, core.Units(10), 2023, 2)
	if m.StartDate.String() != "2023-02-01" || m.EndDate.String() != "2023-02-28" || m.Period != core.Monthly {
		t.Errorf("NewMonthly = %+v", m)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("NewMonthly budget invalid: %v", err)
	}
	y := NewYearly(3, core.Units(10), 2023)
	if y.StartDate.String() != "2023-01-01" || y.EndDate.String() != "2023-12-31" || y.Period != core.Yearly {
		t.Errorf("NewYearly = %+v", y)
	}
}
