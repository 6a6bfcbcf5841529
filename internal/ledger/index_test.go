package ledger

import (
	"testing"

	"ledger/internal/core"
)

type names map[int64]string

func (n names) Name(id int64) string { return n[id] }

func tx(id int64, cents int64, typ core.TransactionType, cat int64, date core.Date, desc string) core.Transaction {
	return core.Transaction{ID: id, Amount: core.Cents(cents), Type: typ, CategoryID: cat, Date: date, Description: desc}
}

func fixture() *Index {
	return New([]core.Transaction{
		tx(1, 10000, core.Expense, 1, core.NewDate(2024, 1, 5), "Weekly groceries"),
		tx(2, 5000, core.Income, 2, core.NewDate(2024, 1, 10), "Refund"),
		tx(3, 2550, core.Expense, 1, core.NewDate(2024, 1, 5), "Bakery"),
		tx(4, 120000, core.Income, 3, core.NewDate(2024, 2, 1), "Salary February"),
		tx(5, 899, core.Expense, 4, core.NewDate(2024, 1, 20), "Streaming GROCERIES ad"),
	})
}

func TestScenarioTotals(t *testing.T) {
	x := New([]core.Transaction{
		tx(1, 10000, core.Expense, 1, core.NewDate(2024, 1, 5), "a"),
		tx(2, 5000, core.Income, 2, core.NewDate(2024, 1, 10), "b"),
	})
	if got := x.TotalExpense().String(); got != "100.00" {
		t.Errorf("TotalExpense = %s", got)
	}
	if got := x.TotalIncome().String(); got != "50.00" {
		t.Errorf("TotalIncome = %s", got)
	}
	if got := x.NetAmount().String(); got != "-50.00" {
		t.Errorf("NetAmount = %s", got)
	}
}

func TestAggregateInvariants(t *testing.T) {
	for name, x := range map[string]*Index{
		"empty":   New(nil),
		"fixture": fixture(),
	} {
		t.Run(name, func(t *testing.T) {
			if x.TotalIncome().Sub(x.TotalExpense()) != x.NetAmount() {
				t.Errorf("income - expense != net")
			}
			var sum core.Money
			for _, m := range x.AmountByCategory() {
				sum = sum.Add(m)
			}
			if sum != x.TotalAmount() {
				t.Errorf("category sums %v != total %v", sum, x.TotalAmount())
			}
			var daily core.Money
			for _, d := range x.DailyTotals() {
				daily = daily.Add(d.Amount)
			}
			if daily != x.TotalAmount() {
				t.Errorf("daily sums %v != total %v", daily, x.TotalAmount())
			}
		})
	}
}

func TestTotalsIndependentOfOrder(t *testing.T) {
	a := fixture().All()
	rev := make([]core.Transaction, len(a))
	for i := range a {
		rev[len(a)-1-i] = a[i]
	}
	x, y := New(a), New(rev)
	if x.NetAmount() != y.NetAmount() || x.TotalAmount() != y.TotalAmount() {
		t.Fatalf("totals depend on order")
	}
	ax, ay := x.AmountByCategory(), y.AmountByCategory()
	for k, v := range ax {
		if ay[k] != v {
			t.Fatalf("category %d differs: %v vs %v", k, v, ay[k])
		}
	}
}

func TestFilterConjunction(t *testing.T) {
	x := fixture()
	tests := []struct {
		name string
		f    *Filter
		want []int64
	}{
		{"no constraints", NewFilter(), []int64{1, 2, 3, 4, 5}},
		{"nil filter", nil, []int64{1, 2, 3, 4, 5}},
		{"type", NewFilter().Type(core.Income), []int64{2, 4}},
		{"category", NewFilter().Category(1), []int64{1, 3}},
		{"categories", NewFilter().Categories(1, 4), []int64{1, 3, 5}},
		{"date inclusive", NewFilter().DateRange(core.NewDate(2024, 1, 5), core.NewDate(2024, 1, 10)), []int64{1, 2, 3}},
		{"inverted range", NewFilter().DateRange(core.NewDate(2024, 2, 1), core.NewDate(2024, 1, 1)), nil},
		{"amount inclusive", NewFilter().AmountRange(core.Cents(2550), core.Cents(10000)), []int64{1, 2, 3}},
		{"description", NewFilter().Description("groceries"), []int64{1, 5}},
		{"combined", NewFilter().Type(core.Expense).Description("GROCER").MaxAmount(core.Cents(1000)), []int64{5}},
		{"from only", NewFilter().From(core.NewDate(2024, 1, 20)), []int64{4, 5}},
		{"to and min", NewFilter().To(core.NewDate(2024, 1, 5)).MinAmount(core.Cents(5000)), []int64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := x.Filter(tt.f)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("result %d: id %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestConvenienceWrappers(t *testing.T) {
	x := fixture()
	if len(x.ByCategory(1)) != 2 || len(x.ByType(core.Expense)) != 3 {
		t.Errorf("ByCategory/ByType mismatch")
	}
	if len(x.ByDateRange(core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))) != 4 {
		t.Errorf("ByDateRange mismatch")
	}
	if len(x.ByAmountRange(core.Cents(0), core.Cents(1000))) != 1 {
		t.Errorf("ByAmountRange mismatch")
	}
	if len(x.SearchDescription("SALARY")) != 1 {
		t.Errorf("SearchDescription mismatch")
	}
	if got := x.Where(NewFilter().Category(1)).TotalAmount(); got != core.Cents(12550) {
		t.Errorf("Where().TotalAmount = %v", got)
	}
}

func TestAddRemoveReindex(t *testing.T) {
	x := fixture()
	if !x.Remove(core.Transaction{ID: 2}) {
		t.Fatalf("Remove by id failed")
	}
	if _, ok := x.ByID(2); ok {
		t.Errorf("removed id still indexed")
	}
	for _, id := range []int64{1, 3, 4, 5} {
		got, ok := x.ByID(id)
		if !ok || got.ID != id {
			t.Errorf("ByID(%d) broken after reindex", id)
		}
	}
	if x.Remove(core.Transaction{ID: 99}) {
		t.Errorf("Remove of unknown id reported success")
	}

	anon := tx(0, 100, core.Expense, 1, core.NewDate(2024, 3, 1), "cash")
	x.Add(anon)
	if x.Len() != 5 {
		t.Fatalf("Len = %d", x.Len())
	}
	if !x.Remove(anon) {
		t.Errorf("Remove by equality failed")
	}
	if x.RemoveByID(0) {
		t.Errorf("RemoveByID(0) should be a no-op")
	}
	x.Clear()
	if !x.IsEmpty() {
		t.Errorf("Clear left data")
	}
}

func TestRecentDoesNotMutate(t *testing.T) {
	x := fixture()
	got := x.Recent(3)
	want := []int64{4, 5, 2}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("Recent[%d] = %d, want %d", i, got[i].ID, id)
		}
	}
	// ties on 2024-01-05 keep insertion order
	all := x.Recent(10)
	if len(all) != 5 || all[3].ID != 1 || all[4].ID != 3 {
		t.Fatalf("tie order broken: %v", all)
	}
	if x.At(0).ID != 1 {
		t.Errorf("Recent mutated the underlying order")
	}
	if x.Recent(0) != nil {
		t.Errorf("Recent(0) should be empty")
	}
}

func TestLargestSmallest(t *testing.T) {
	if _, ok := New(nil).Largest(); ok {
		t.Errorf("Largest on empty should report no result")
	}
	if _, ok := New(nil).Smallest(); ok {
		t.Errorf("Smallest on empty should report no result")
	}
	x := fixture()
	if l, _ := x.Largest(); l.ID != 4 {
		t.Errorf("Largest = %d", l.ID)
	}
	if s, _ := x.Smallest(); s.ID != 5 {
		t.Errorf("Smallest = %d", s.ID)
	}
}

func TestDailyTotalsOrdered(t *testing.T) {
	d := fixture().DailyTotals()
	if len(d) != 4 {
		t.Fatalf("DailyTotals len = %d", len(d))
	}
	if !d[0].Date.Equal(core.NewDate(2024, 1, 5)) || d[0].Amount != core.Cents(12550) {
		t.Errorf("first day = %+v", d[0])
	}
	for i := 1; i < len(d); i++ {
		if !d[i-1].Date.Before(d[i].Date) {
			t.Fatalf("not ordered: %v", d)
		}
	}
}

func TestCategoryNameResolvedAtReadTime(t *testing.T) {
	n := names{1: "Food"}
	x := fixture().WithNamer(n)
	first := x.At(0)
	if x.CategoryName(first) != "Food" {
		t.Errorf("CategoryName = %q", x.CategoryName(first))
	}
	n[1] = "Groceries"
	if x.CategoryName(first) != "Groceries" {
		t.Errorf("name not resolved at read time")
	}
	if x.CategoryName(x.At(1)) != "" {
		t.Errorf("unknown category should yield empty name")
	}
}
