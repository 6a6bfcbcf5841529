package report

import (
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// Health is a 0..100 rating of the finances in a period.
type Health struct {
	Score          int
	Level          string
	Recommendation string
	Factors        []string
}

type band struct {
	bound  float64
	points int
	factor string
}

var (
	expenseBands = []band{
		{0.5, 40, "Excellent expense control (≤50% of income)"},
		{0.7, 30, "Good expense control (≤70% of income)"},
		{0.9, 20, "Moderate expense control (≤90% of income)"},
		{1.0, 10, "Living paycheck to paycheck"},
	}
	adherenceBands = []band{
		{0.9, 30, "Excellent budget adherence (90%+ on track)"},
		{0.7, 20, "Good budget adherence (70%+ on track)"},
		{0.5, 10, "Fair budget adherence (50%+ on track)"},
	}
	savingsBands = []band{
		{0.2, 20, "Excellent savings rate (≥20%)"},
		{0.1, 15, "Good savings rate (≥10%)"},
		{0.05, 10, "Fair savings rate (≥5%)"},
	}
)

const (
	onTrackUsageLimit = 90.0
	steadyTracking    = 30
	someTracking      = 15
)

// FinancialHealth scores [from, to] out of 100: expense to income ratio
// (40), active budget adherence (30), savings rate (20) and how many
// transactions were recorded (10). Parts without data score nothing and
// add no factor.
func (g *Generator) FinancialHealth(from, to core.Date) Health {
	s := g.Summary(from, to)
	var h Health

	if s.Income.Cents > 0 {
		ratio := ratioOf(s.Expense, s.Income)
		if b, ok := atMost(expenseBands, ratio); ok {
			h.add(b.points, b.factor)
		} else {
			h.add(0, "Spending exceeds income - immediate attention needed")
		}
	}

	if evals := g.Budgets().Budgets; len(evals) > 0 {
		onTrack := 0
		for _, ev := range evals {
			if !ev.OverBudget && ev.UsagePercentage <= onTrackUsageLimit {
				onTrack++
			}
		}
		adherence := float64(onTrack) / float64(len(evals))
		if b, ok := atLeast(adherenceBands, adherence); ok {
			h.add(b.points, b.factor)
		} else {
			h.add(0, "Poor budget adherence - review spending habits")
		}
	}

	if s.Income.Cents > 0 {
		rate := ratioOf(s.Net, s.Income)
		if b, ok := atLeast(savingsBands, rate); ok {
			h.add(b.points, b.factor)
		} else if rate > 0 {
			h.add(5, "Low savings rate (<5%)")
		} else {
			h.add(0, "No savings - consider reducing expenses")
		}
	}

	switch {
	case s.Count >= steadyTracking:
		h.add(10, "Good transaction tracking consistency")
	case s.Count >= someTracking:
		h.add(5, "Moderate transaction tracking")
	default:
		h.add(0, "Consider tracking more transactions for better insights")
	}

	h.Level, h.Recommendation = level(h.Score)
	return h
}

func (h *Health) add(points int, factor string) {
	h.Score += points
	h.Factors = append(h.Factors, factor)
}

func ratioOf(a, b core.Money) float64 {
	f, _ := a.Ratio(b).Float64()
	return f
}

// atMost returns the first band whose bound is not below v.
func atMost(bands []band, v float64) (band, bool) {
	for _, b := range bands {
		if v <= b.bound {
			return b, true
		}
	}
	return band{}, false
}

// atLeast returns the first band whose bound v reaches.
func atLeast(bands []band, v float64) (band, bool) {
	for _, b := range bands {
		if v >= b.bound {
			return b, true
		}
	}
	return band{}, false
}

func level(score int) (string, string) {
	switch {
	case score >= 80:
		return "Excellent", "Your financial health is excellent! Keep up the good work and consider investment opportunities."
	case score >= 60:
		return "Good", "Your financial health is good. Focus on areas for improvement to reach excellent status."
	case score >= 40:
		return "Fair", "Your financial health needs attention. Review your spending and budget adherence."
	}
	return "Poor", "Your financial health requires immediate attention. Consider consulting a financial advisor."
}

// SavingsRate is net over income for [from, to], rounded to four places.
// It is zero without income.
func (g *Generator) SavingsRate(from, to core.Date) decimal.Decimal {
	s := g.Summary(from, to)
	if s.Income.Cents <= 0 {
		return decimal.Zero
	}
	return s.Net.Ratio(s.Income)
}
