package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1.٣", 0, false},
		{"1.٣٣", 0, false},
		{"١", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %d (err=%v)", tc.in, got, err)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{Cents(0), "0.00"},
		{Cents(5), "0.05"},
		{Units(100), "100.00"},
		{Cents(-5000), "-50.00"},
		{Cents(123456), "1234.56"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tc.m.Cents, got, tc.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a, b := Units(200), Units(250)
	if got := a.Sub(b); got != Cents(-5000) {
		t.Fatalf("Sub = %v", got)
	}
	if got := Sum(Cents(1), Cents(2), Cents(3)); got != Cents(6) {
		t.Fatalf("Sum = %v", got)
	}
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Fatalf("Cmp ordering broken")
	}
	if got := Cents(1000).DivInt(3); got != Cents(333) {
		t.Fatalf("DivInt = %v, want 3.33", got)
	}
	if got := Cents(1000).DivInt(0); !got.IsZero() {
		t.Fatalf("DivInt by zero = %v, want 0", got)
	}
	if got := Cents(5).DivInt(2); got != Cents(3) {
		t.Fatalf("DivInt half-up = %v, want 0.03", got)
	}
}

func TestMoneyPercent(t *testing.T) {
	cases := []struct {
		spent, amount Money
		want          float64
	}{
		{Units(250), Units(200), 125},
		{Units(90), Units(100), 90},
		{Units(1), Units(3), 33.33},
		{Units(50), Zero, 0},
		{Zero, Units(100), 0},
	}
	for _, tc := range cases {
		if got := tc.spent.Percent(tc.amount); got != tc.want {
			t.Errorf("%v of %v = %v, want %v", tc.spent, tc.amount, got, tc.want)
		}
	}
}

func TestFromDecimal(t *testing.T) {
	if got := FromDecimal(decimal.RequireFromString("12.345")); got != Cents(1235) {
		t.Fatalf("FromDecimal half-up = %v", got)
	}
	if got := FromDecimal(decimal.RequireFromString("12.344")); got != Cents(1234) {
		t.Fatalf("FromDecimal = %v", got)
	}
}
