package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"

	IncomeCategory  CategoryType = "INCOME"
	ExpenseCategory CategoryType = "EXPENSE"

	Monthly BudgetPeriod = "MONTHLY"
	Yearly  BudgetPeriod = "YEARLY"
)

const dateLayout = "2006-01-02"

type (
	TransactionType string
	CategoryType    string
	BudgetPeriod    string

	// Date is a calendar day. The time part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Category is a flat category record as handed over by persistence.
	Category struct {
		ID       int64
		Name     string
		ParentID *int64 // nil for root categories
		Type     CategoryType
	}

	// Transaction is a single income or expense entry. Amount is never
	// negative; the direction of the cash flow is carried by Type.
	Transaction struct {
		ID          int64 // 0 until persistence assigns one
		Description string
		Amount      Money
		Date        Date
		CategoryID  int64
		Type        TransactionType
		CreatedAt   time.Time
	}

	// Budget is a spending cap for one category over an inclusive date window.
	// Spent and remaining are never stored; see budget.Evaluator.
	Budget struct {
		ID         int64
		CategoryID int64
		Amount     Money
		Period     BudgetPeriod
		StartDate  Date
		EndDate    Date
	}
)

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidType        = errors.New("invalid type")
	ErrInvalidPeriod      = errors.New("invalid budget period")
	ErrInvalidDateRange   = errors.New("start date must not be after end date")
	ErrMissingCategory    = errors.New("missing category")
	ErrSelfParentCategory = errors.New("category cannot be its own parent")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping t's calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current calendar day in local time.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is a later day than o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int { return d.Time.Compare(o.Time) }

// Between reports whether d lies in [from, to], both ends inclusive.
func (d Date) Between(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

// DaysUntil returns the number of whole days from d to o (negative if o is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.Sub(d.Time).Hours() / 24)
}

// AddDays returns the day n days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths adds n calendar months, clamping to the last day of the target month.
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Year(), time.Month(d.Month())+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > last {
		day = last
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// AddYears adds n years, clamping Feb 29 to Feb 28 on non-leap years.
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

// MonthBounds returns the first and last day of the given month.
func MonthBounds(year, month int) (Date, Date) {
	start := NewDate(year, month, 1)
	return start, Date{Time: start.AddDate(0, 1, -1)}
}

// YearBounds returns January 1st and December 31st of year.
func YearBounds(year int) (Date, Date) {
	return NewDate(year, 1, 1), NewDate(year, 12, 31)
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (t CategoryType) IsValid() bool {
	return t == IncomeCategory || t == ExpenseCategory
}

func (p BudgetPeriod) IsValid() bool {
	return p == Monthly || p == Yearly
}

// IsRoot reports whether the record declares no parent.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}

// WithParent returns a copy of c attached to parent.
func (c Category) WithParent(parent int64) Category {
	c.ParentID = &parent
	return c
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Type.IsValid() {
		return ErrInvalidType
	}
	if c.ParentID != nil && c.ID != 0 && *c.ParentID == c.ID {
		return ErrSelfParentCategory
	}
	return nil
}

func (t Transaction) IsIncome() bool  { return t.Type == Income }
func (t Transaction) IsExpense() bool { return t.Type == Expense }

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 255 {
		return errors.New("description too long (max 255 characters)")
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if t.CategoryID == 0 {
		return ErrMissingCategory
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID == 0 {
		return ErrMissingCategory
	}
	if b.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !b.Period.IsValid() {
		return ErrInvalidPeriod
	}
	if err := b.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if err := b.EndDate.Validate(); err != nil {
		return errors.New("invalid end date: " + err.Error())
	}
	if b.StartDate.After(b.EndDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// Covers reports whether day falls inside the budget window.
func (b Budget) Covers(day Date) bool {
	return day.Between(b.StartDate, b.EndDate)
}
