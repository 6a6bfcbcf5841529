package budget

import (
	"errors"
	"fmt"

	"ledger/internal/core"
)

// ErrBudgetOverlap is returned when a budget would share days with another
// budget of the same category.
var ErrBudgetOverlap = errors.New("budget overlaps an existing budget for the same category")

// PeriodStrategy knows how to lay out and advance one kind of budget window.
// Each BudgetPeriod has its own implementation.
type PeriodStrategy interface {
	// Window returns the window that contains day.
	Window(day core.Date) (core.Date, core.Date)
	// Next returns the window following [start, end].
	Next(start, end core.Date) (core.Date, core.Date)
}

// MonthlyPeriod implements PeriodStrategy for calendar months.
type MonthlyPeriod struct{}

func (MonthlyPeriod) Window(day core.Date) (core.Date, core.Date) {
	return core.MonthBounds(day.Year(), day.Month())
}

// Next shifts both ends by one month. An end on the last day of its month
// stays on the last day of the following month.
func (MonthlyPeriod) Next(start, end core.Date) (core.Date, core.Date) {
	nextEnd := end.AddMonths(1)
	if _, last := core.MonthBounds(end.Year(), end.Month()); end.Equal(last) {
		_, nextEnd = core.MonthBounds(nextEnd.Year(), nextEnd.Month())
	}
	return start.AddMonths(1), nextEnd
}

// YearlyPeriod implements PeriodStrategy for calendar years.
type YearlyPeriod struct{}

func (YearlyPeriod) Window(day core.Date) (core.Date, core.Date) {
	return core.YearBounds(day.Year())
}

func (YearlyPeriod) Next(start, end core.Date) (core.Date, core.Date) {
	return start.AddYears(1), end.AddYears(1)
}

var strategies = map[core.BudgetPeriod]PeriodStrategy{
	core.Monthly: MonthlyPeriod{},
	core.Yearly:  YearlyPeriod{},
}

// StrategyFor returns the strategy for p.
func StrategyFor(p core.BudgetPeriod) (PeriodStrategy, error) {
	s, ok := strategies[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidPeriod, p)
	}
	return s, nil
}

// NewMonthly returns a budget covering the whole of the given month.
func NewMonthly(categoryID int64, amount core.Money, year, month int) core.Budget {
	start, end := core.MonthBounds(year, month)
	return core.Budget{CategoryID: categoryID, Amount: amount, Period: core.Monthly, StartDate: start, EndDate: end}
}

// NewYearly returns a budget covering the whole of the given year.
func NewYearly(categoryID int64, amount core.Money, year int) core.Budget {
	start, end := core.YearBounds(year)
	return core.Budget{CategoryID: categoryID, Amount: amount, Period: core.Yearly, StartDate: start, EndDate: end}
}

// NextPeriod returns a copy of b moved to the following period. The copy
// has no id.
func NextPeriod(b core.Budget) (core.Budget, error) {
	s, err := StrategyFor(b.Period)
	if err != nil {
		return core.Budget{}, err
	}
	b.ID = 0
	b.StartDate, b.EndDate = s.Next(b.StartDate, b.EndDate)
	return b, nil
}

// Overlaps reports whether a and b are for the same category and their
// inclusive windows share at least one day.
func Overlaps(a, b core.Budget) bool {
	if a.CategoryID != b.CategoryID {
		return false
	}
	return !a.StartDate.After(b.EndDate) && !b.StartDate.After(a.EndDate)
}

// CheckOverlap returns ErrBudgetOverlap for the first existing budget that
// overlaps candidate. A budget never conflicts with itself (same non-zero id).
func CheckOverlap(candidate core.Budget, existing []core.Budget) error {
	for _, b := range existing {
		if candidate.ID != 0 && b.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate, b) {
			return fmt.Errorf("%w: budget %d (%s to %s)", ErrBudgetOverlap, b.ID, b.StartDate, b.EndDate)
		}
	}
	return nil
}
