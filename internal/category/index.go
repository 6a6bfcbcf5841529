// Package category builds a navigable hierarchy out of flat category records.
//
// The hierarchy is an arena addressed by id: nodes keep their parent and
// children as ids, never as pointers to each other, so a rebuild simply drops
// the old arena. A second structure, an unbalanced binary search tree ordered
// by case-insensitive name, serves name lookups and alphabetical traversal.
// Input that arrives already sorted degrades that tree to a list; category
// counts are expected to stay in the tens to low hundreds, so it is not
// rebalanced.
//
// An Index is not safe for concurrent use. Callers that share one must
// serialize Rebuild against reads.
package category

import (
	"strings"

	"ledger/internal/core"
)

const pathSeparator = " > "

type node struct {
	rec      core.Category
	parent   int64
	linked   bool // parent resolved
	children []int64
	orphaned bool // declared a parent that does not resolve
}

type nameNode struct {
	key         string
	id          int64
	left, right *nameNode
}

// View is a category enriched with its position in the hierarchy.
type View struct {
	core.Category
	FullPath    string
	Level       int
	IsRoot      bool
	HasChildren bool
	ChildIDs    []int64
	Orphaned    bool
}

// Index resolves a flat category snapshot into a tree.
type Index struct {
	nodes map[int64]*node
	names *nameNode
}

// New returns an index built from records.
func New(records []core.Category) *Index {
	idx := &Index{}
	idx.Rebuild(records)
	return idx
}

// Rebuild discards the current hierarchy and builds a new one from records.
// Parent ids that do not resolve leave the record parentless; a record naming
// itself as parent is treated the same way.
func (x *Index) Rebuild(records []core.Category) {
	x.nodes = make(map[int64]*node, len(records))
	x.names = nil

	for _, rec := range records {
		if prev, ok := x.nodes[rec.ID]; ok {
			// duplicate id: the later record replaces the earlier one
			x.names = deleteName(x.names, nameKey(prev.rec.Name), prev.rec.ID)
		}
		x.nodes[rec.ID] = &node{rec: rec}
		x.names = insertName(x.names, nameKey(rec.Name), rec.ID)
	}

	seen := make(map[int64]bool, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		n := x.nodes[rec.ID]
		if seen[rec.ID] || rec.ParentID == nil {
			seen[rec.ID] = true
			continue
		}
		seen[rec.ID] = true
		pid := *rec.ParentID
		parent, ok := x.nodes[pid]
		if !ok || pid == rec.ID {
			n.orphaned = true
			continue
		}
		n.parent, n.linked = pid, true
		parent.children = append(parent.children, rec.ID)
	}
	for _, n := range x.nodes {
		reverse(n.children)
	}
}

func reverse(ids []int64) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// Clear drops every category.
func (x *Index) Clear() {
	x.nodes = nil
	x.names = nil
}

// Len returns the number of categories.
func (x *Index) Len() int { return len(x.nodes) }

// IsEmpty reports whether the index holds no categories.
func (x *Index) IsEmpty() bool { return len(x.nodes) == 0 }

// ByID looks up a category by id.
func (x *Index) ByID(id int64) (View, bool) {
	if _, ok := x.nodes[id]; !ok {
		return View{}, false
	}
	return x.view(id), true
}

// ByName finds a category by exact, case-insensitive name. With duplicate
// names the one with the lowest id wins.
func (x *Index) ByName(name string) (View, bool) {
	key := nameKey(name)
	n := x.names
	var found *nameNode
	for n != nil {
		switch c := strings.Compare(key, n.key); {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			// equal names sort by id; keep walking left for the smallest
			found = n
			n = n.left
		}
	}
	if found == nil {
		return View{}, false
	}
	return x.view(found.id), true
}

// Name returns the category's name, or "" when id is unknown.
func (x *Index) Name(id int64) string {
	if n, ok := x.nodes[id]; ok {
		return n.rec.Name
	}
	return ""
}

// SearchByPattern returns categories whose name contains pattern,
// case-insensitively, in alphabetical order.
func (x *Index) SearchByPattern(pattern string) []View {
	p := strings.ToLower(pattern)
	return x.collect(func(n *node) bool {
		return strings.Contains(strings.ToLower(n.rec.Name), p)
	})
}

// InOrder returns every category alphabetically.
func (x *Index) InOrder() []View {
	return x.collect(nil)
}

// ByType returns categories of type t alphabetically.
func (x *Index) ByType(t core.CategoryType) []View {
	return x.collect(func(n *node) bool { return n.rec.Type == t })
}

// Roots returns parentless categories (orphans included) alphabetically.
func (x *Index) Roots() []View {
	return x.collect(func(n *node) bool { return !n.linked })
}

// Orphans returns categories whose declared parent does not resolve.
func (x *Index) Orphans() []View {
	return x.collect(func(n *node) bool { return n.orphaned })
}

// Children returns the direct subcategories of id alphabetically.
func (x *Index) Children(id int64) []View {
	if _, ok := x.nodes[id]; !ok {
		return nil
	}
	return x.collect(func(n *node) bool { return n.linked && n.parent == id })
}

// IsAncestor reports whether ancestor appears on descendant's parent chain.
func (x *Index) IsAncestor(ancestor, descendant int64) bool {
	found := false
	x.walkUp(descendant, func(id int64) bool {
		if id == ancestor {
			found = true
			return false
		}
		return true
	})
	return found
}

// Subtree returns id followed by all of its descendants, breadth first.
// Unknown ids yield nil.
func (x *Index) Subtree(id int64) []int64 {
	if _, ok := x.nodes[id]; !ok {
		return nil
	}
	seen := map[int64]bool{id: true}
	out := []int64{id}
	for i := 0; i < len(out); i++ {
		for _, c := range x.nodes[out[i]].children {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// TypeMismatch describes a child whose type differs from its parent's.
type TypeMismatch struct {
	Child  View
	Parent View
}

// TypeMismatches reports children typed differently from their parent.
// Such data is accepted as is; this only surfaces it.
func (x *Index) TypeMismatches() []TypeMismatch {
	var out []TypeMismatch
	for _, v := range x.InOrder() {
		if v.IsRoot {
			continue
		}
		p := x.nodes[x.nodes[v.ID].parent]
		if p.rec.Type != v.Type {
			out = append(out, TypeMismatch{Child: v, Parent: x.view(p.rec.ID)})
		}
	}
	return out
}

func (x *Index) view(id int64) View {
	n := x.nodes[id]
	v := View{
		Category:    n.rec,
		IsRoot:      !n.linked,
		HasChildren: len(n.children) > 0,
		ChildIDs:    append([]int64(nil), n.children...),
		Orphaned:    n.orphaned,
	}
	path := []string{n.rec.Name}
	x.walkUp(id, func(pid int64) bool {
		path = append(path, x.nodes[pid].rec.Name)
		v.Level++
		return true
	})
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	v.FullPath = strings.Join(path, pathSeparator)
	return v
}

// walkUp calls fn for each ancestor of id, nearest first, until fn returns
// false. The walk is bounded by the index size so corrupt cyclic data ends.
func (x *Index) walkUp(id int64, fn func(int64) bool) {
	n, ok := x.nodes[id]
	for steps := 0; ok && n.linked && steps < len(x.nodes); steps++ {
		if !fn(n.parent) {
			return
		}
		n, ok = x.nodes[n.parent]
	}
}

func (x *Index) collect(keep func(*node) bool) []View {
	var out []View
	var walk func(*nameNode)
	walk = func(t *nameNode) {
		if t == nil {
			return
		}
		walk(t.left)
		if n := x.nodes[t.id]; keep == nil || keep(n) {
			out = append(out, x.view(t.id))
		}
		walk(t.right)
	}
	walk(x.names)
	return out
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

func less(key string, id int64, n *nameNode) bool {
	if c := strings.Compare(key, n.key); c != 0 {
		return c < 0
	}
	return id < n.id
}

func insertName(t *nameNode, key string, id int64) *nameNode {
	if t == nil {
		return &nameNode{key: key, id: id}
	}
	if key == t.key && id == t.id {
		return t
	}
	if less(key, id, t) {
		t.left = insertName(t.left, key, id)
	} else {
		t.right = insertName(t.right, key, id)
	}
	return t
}

func deleteName(t *nameNode, key string, id int64) *nameNode {
	if t == nil {
		return nil
	}
	if key == t.key && id == t.id {
		switch {
		case t.left == nil:
			return t.right
		case t.right == nil:
			return t.left
		}
		succ := t.right
		for succ.left != nil {
			succ = succ.left
		}
		t.key, t.id = succ.key, succ.id
		t.right = deleteName(t.right, succ.key, succ.id)
		return t
	}
	if less(key, id, t) {
		t.left = deleteName(t.left, key, id)
	} else {
		t.right = deleteName(t.right, key, id)
	}
	return t
}
