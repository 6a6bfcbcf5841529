// Package core provides money parsing and handling utilities.
//
// Money is stored as integer cents. Divisions and percentages go through
// shopspring/decimal so no float ever touches a stored amount.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact amount with two fractional digits.
type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// Zero is the zero amount.
var Zero = Money{}

// Cents builds a Money from a cent count.
func Cents(c int64) Money { return Money{Cents: c} }

// Units builds a Money from whole currency units.
func Units(u int64) Money { return Money{Cents: u * 100} }

// FromDecimal rounds d half-up to two places.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Mul(hundred).Round(0).IntPart()}
}

// ParseMoney parses a decimal string such as "12.34" or "12,34".
func ParseMoney(s string) (Money, error) {
	c, err := ParseDecimalToCents(s)
	if err != nil {
		return Zero, err
	}
	return Money{Cents: c}, nil
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Negative values are rejected;
// zero is accepted (budgets may be zero).
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv >= maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }
func (m Money) MulInt(n int64) Money {
	return Money{Cents: m.Cents * n}
}

// DivInt divides by n rounding half-up. Division by zero yields zero.
func (m Money) DivInt(n int64) Money {
	if n == 0 {
		return Zero
	}
	return FromDecimal(m.Decimal().Div(decimal.NewFromInt(n)))
}

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int {
	switch {
	case m.Cents < o.Cents:
		return -1
	case m.Cents > o.Cents:
		return 1
	}
	return 0
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Decimal returns the exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String always renders two fractional digits, e.g. "-50.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Ratio returns m/of rounded half-up to four places; zero when of is zero.
func (m Money) Ratio(of Money) decimal.Decimal {
	if of.IsZero() {
		return decimal.Zero
	}
	return m.Decimal().Div(of.Decimal()).Round(4)
}

// Percent returns m as a percentage of of (0 when of is zero).
func (m Money) Percent(of Money) float64 {
	f, _ := m.Ratio(of).Mul(hundred).Float64()
	return f
}

// Sum adds amounts in any order; integer addition keeps it exact.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
