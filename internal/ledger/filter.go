package ledger

import (
	"strings"

	"ledger/internal/core"
)

// Filter is a conjunction of optional constraints. A zero Filter matches
// every transaction. Date and amount bounds are inclusive.
type Filter struct {
	typ         *core.TransactionType
	categoryIDs map[int64]struct{}
	from, to    *core.Date
	min, max    *core.Money
	keyword     string
}

// NewFilter returns an empty filter.
func NewFilter() *Filter { return &Filter{} }

func (f *Filter) Type(t core.TransactionType) *Filter {
	f.typ = &t
	return f
}

// Category restricts to a single category id.
func (f *Filter) Category(id int64) *Filter {
	return f.Categories(id)
}

// Categories restricts to any of ids, e.g. a category subtree.
func (f *Filter) Categories(ids ...int64) *Filter {
	f.categoryIDs = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		f.categoryIDs[id] = struct{}{}
	}
	return f
}

// DateRange sets both date bounds. The caller guarantees from <= to; an
// inverted range simply matches nothing.
func (f *Filter) DateRange(from, to core.Date) *Filter {
	f.from, f.to = &from, &to
	return f
}

func (f *Filter) From(d core.Date) *Filter {
	f.from = &d
	return f
}

func (f *Filter) To(d core.Date) *Filter {
	f.to = &d
	return f
}

func (f *Filter) AmountRange(min, max core.Money) *Filter {
	f.min, f.max = &min, &max
	return f
}

func (f *Filter) MinAmount(m core.Money) *Filter {
	f.min = &m
	return f
}

func (f *Filter) MaxAmount(m core.Money) *Filter {
	f.max = &m
	return f
}

// Description matches a case-insensitive substring of the description.
func (f *Filter) Description(keyword string) *Filter {
	f.keyword = strings.ToLower(keyword)
	return f
}

// Matches reports whether tx satisfies every set constraint.
func (f *Filter) Matches(tx core.Transaction) bool {
	if f == nil {
		return true
	}
	if f.typ != nil && tx.Type != *f.typ {
		return false
	}
	if f.categoryIDs != nil {
		if _, ok := f.categoryIDs[tx.CategoryID]; !ok {
			return false
		}
	}
	if f.from != nil && tx.Date.Before(*f.from) {
		return false
	}
	if f.to != nil && tx.Date.After(*f.to) {
		return false
	}
	if f.min != nil && tx.Amount.Cmp(*f.min) < 0 {
		return false
	}
	if f.max != nil && tx.Amount.Cmp(*f.max) > 0 {
		return false
	}
	if f.keyword != "" && !strings.Contains(strings.ToLower(tx.Description), f.keyword) {
		return false
	}
	return true
}
