package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	CategoryID int64
	Name       string
	Amount     Money
}

// PeriodTotals is a compact income/expense summary for a date window.
type PeriodTotals struct {
	From    Date
	To      Date
	Income  Money
	Expense Money
	Net     Money
}
