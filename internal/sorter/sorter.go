// Package sorter orders transaction sequences by one or more keys.
//
// Sort and SortBy use a top-down merge sort and are stable: transactions that
// compare equal keep their input order. QuickSort exists only for timing
// comparisons; it is not stable and must not be used where tie order matters.
package sorter

import (
	"strings"
	"time"

	"ledger/internal/core"
)

type (
	Key   int
	Order int
)

const (
	ByDate Key = iota
	ByAmount
	ByDescription
	ByCategory
	ByType
	ByCreatedAt
)

const (
	Ascending Order = iota
	Descending
)

func (k Key) String() string {
	switch k {
	case ByDate:
		return "date"
	case ByAmount:
		return "amount"
	case ByDescription:
		return "description"
	case ByCategory:
		return "category"
	case ByType:
		return "type"
	case ByCreatedAt:
		return "created_at"
	}
	return "unknown"
}

// ParseKey maps a key name (as returned by Key.String) back to a Key.
func ParseKey(s string) (Key, bool) {
	for k := ByDate; k <= ByCreatedAt; k++ {
		if k.String() == strings.ToLower(strings.TrimSpace(s)) {
			return k, true
		}
	}
	return ByDate, false
}

// Criterion is one (key, direction) pair of a multi-key sort.
type Criterion struct {
	Key   Key
	Order Order
}

// Namer resolves category names for ByCategory.
type Namer interface {
	Name(id int64) string
}

// Compare returns <0, 0 or >0.
type Compare func(a, b core.Transaction) int

// Sorter sorts transactions. The zero value works for every key except
// ByCategory, which compares empty names until a Namer is set.
type Sorter struct {
	Namer Namer
}

// New returns a Sorter resolving category names through n (may be nil).
func New(n Namer) *Sorter {
	return &Sorter{Namer: n}
}

// Comparator returns the total order for a single key and direction.
func (s *Sorter) Comparator(k Key, o Order) Compare {
	var cmp Compare
	switch k {
	case ByAmount:
		cmp = func(a, b core.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case ByDescription:
		cmp = func(a, b core.Transaction) int { return foldCompare(a.Description, b.Description) }
	case ByCategory:
		cmp = func(a, b core.Transaction) int { return foldCompare(s.name(a.CategoryID), s.name(b.CategoryID)) }
	case ByType:
		cmp = func(a, b core.Transaction) int { return strings.Compare(string(a.Type), string(b.Type)) }
	case ByCreatedAt:
		cmp = func(a, b core.Transaction) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		cmp = func(a, b core.Transaction) int { return a.Date.Compare(b.Date) }
	}
	if o == Descending {
		return func(a, b core.Transaction) int { return cmp(b, a) }
	}
	return cmp
}

// Chain combines criteria lexicographically: the first is primary, later
// ones only break ties.
func (s *Sorter) Chain(criteria ...Criterion) Compare {
	cmps := make([]Compare, len(criteria))
	for i, c := range criteria {
		cmps[i] = s.Comparator(c.Key, c.Order)
	}
	return func(a, b core.Transaction) int {
		for _, cmp := range cmps {
			if r := cmp(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Sort returns a stably sorted copy of txs.
func (s *Sorter) Sort(txs []core.Transaction, k Key, o Order) []core.Transaction {
	return MergeSort(txs, s.Comparator(k, o))
}

// SortBy returns a stably sorted copy of txs ordered by criteria. With no
// criteria it returns an unchanged copy.
func (s *Sorter) SortBy(txs []core.Transaction, criteria ...Criterion) []core.Transaction {
	if len(criteria) == 0 {
		return append([]core.Transaction(nil), txs...)
	}
	return MergeSort(txs, s.Chain(criteria...))
}

// QuickSort returns a sorted copy using an unstable Lomuto partition.
func (s *Sorter) QuickSort(txs []core.Transaction, k Key, o Order) []core.Transaction {
	out := append([]core.Transaction(nil), txs...)
	quickSort(out, 0, len(out)-1, s.Comparator(k, o))
	return out
}

// BinarySearch looks for an element comparing equal to target under (k, o).
// sorted must already be ordered by the same key and direction; otherwise the
// result is meaningless. It returns the index of a match and true, or the
// insertion point and false.
func (s *Sorter) BinarySearch(sorted []core.Transaction, target core.Transaction, k Key, o Order) (int, bool) {
	cmp := s.Comparator(k, o)
	lo, hi := 0, len(sorted)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		switch r := cmp(sorted[mid], target); {
		case r < 0:
			lo = mid + 1
		case r > 0:
			hi = mid - 1
		default:
			return mid, true
		}
	}
	return lo, false
}

// Measure reports how long a stable sort of a copy of txs takes.
func (s *Sorter) Measure(txs []core.Transaction, k Key, o Order) time.Duration {
	start := time.Now()
	s.Sort(txs, k, o)
	return time.Since(start)
}

func (s *Sorter) name(id int64) string {
	if s == nil || s.Namer == nil {
		return ""
	}
	return s.Namer.Name(id)
}

// MergeSort returns a sorted copy of txs. Equal elements keep their order.
func MergeSort(txs []core.Transaction, cmp Compare) []core.Transaction {
	out := append([]core.Transaction(nil), txs...)
	if len(out) < 2 {
		return out
	}
	tmp := make([]core.Transaction, len(out))
	mergeSort(out, tmp, 0, len(out)-1, cmp)
	return out
}

func mergeSort(a, tmp []core.Transaction, left, right int, cmp Compare) {
	if left >= right {
		return
	}
	mid := left + (right-left)/2
	mergeSort(a, tmp, left, mid, cmp)
	mergeSort(a, tmp, mid+1, right, cmp)
	merge(a, tmp, left, mid, right, cmp)
}

func merge(a, tmp []core.Transaction, left, mid, right int, cmp Compare) {
	copy(tmp[left:right+1], a[left:right+1])
	i, j, k := left, mid+1, left
	for i <= mid && j <= right {
		// <= takes from the left run on ties, which is what keeps it stable
		if cmp(tmp[i], tmp[j]) <= 0 {
			a[k] = tmp[i]
			i++
		} else {
			a[k] = tmp[j]
			j++
		}
		k++
	}
	k += copy(a[k:], tmp[i:mid+1])
	copy(a[k:], tmp[j:right+1])
}

func quickSort(a []core.Transaction, low, high int, cmp Compare) {
	if low < high {
		p := partition(a, low, high, cmp)
		quickSort(a, low, p-1, cmp)
		quickSort(a, p+1, high, cmp)
	}
}

func partition(a []core.Transaction, low, high int, cmp Compare) int {
	pivot := a[high]
	i := low - 1
	for j := low; j < high; j++ {
		if cmp(a[j], pivot) <= 0 {
			i++
			a[i], a[j] = a[j], a[i]
		}
	}
	a[i+1], a[high] = a[high], a[i+1]
	return i + 1
}

func foldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
