package sorter

import "ledger/internal/core"

// Common criteria combinations.
var (
	DateAmountDesc = []Criterion{
		{Key: ByDate, Order: Descending},
		{Key: ByAmount, Order: Descending},
	}
	CategoryDateDesc = []Criterion{
		{Key: ByCategory, Order: Ascending},
		{Key: ByDate, Order: Descending},
	}
	TypeAmountDesc = []Criterion{
		{Key: ByType, Order: Ascending},
		{Key: ByAmount, Order: Descending},
	}
)

func (s *Sorter) SortByDateDesc(txs []core.Transaction) []core.Transaction {
	return s.Sort(txs, ByDate, Descending)
}

func (s *Sorter) SortByAmountDesc(txs []core.Transaction) []core.Transaction {
	return s.Sort(txs, ByAmount, Descending)
}

func (s *Sorter) SortByCategory(txs []core.Transaction) []core.Transaction {
	return s.Sort(txs, ByCategory, Ascending)
}
