// Package gcheap implements Europa's tracing, non-moving, stop-the-world
// mark-and-sweep collector (spec.md §4.1). It never imports the packages
// that define tables, ports, closures, prototypes or continuations —
// every interaction with a heap object goes through value.HeapObject and
// the optional value.Markable / value.Finalizer interfaces, which those
// packages implement by embedding value.Object.
//
// Go's own garbage collector already reclaims memory; gcheap is a shadow
// bookkeeping layer on top of it that reproduces the C original's
// reachability and finalization-ordering semantics (root list, generation
// list, white/grey/black sweep) so that ports get closed and tables get
// their node arrays dropped in the same pass a C build would free them,
// rather than whenever Go's runtime GC happens to notice they're garbage.
package gcheap

import "europa/internal/value"

// Heap owns the generation list (every live heap object) and the root
// list (objects pinned during incremental construction, §4.1's "roots
// during reader/compiler work"). An object is threaded onto exactly one
// of the two lists at a time through its own Object.next/prev fields —
// AddRoot/RemoveRoot move it between them the same way the C collector's
// move_to_root/move_off_root do.
type Heap struct {
	gen  *value.Object // head of the generation list
	root *value.Object // head of the root list

	allocCount int
	// Threshold is the number of allocations between automatic
	// collections. 0 disables automatic triggering; Collect can always be
	// called explicitly.
	Threshold int

	Stats Stats
}

// Stats tracks cumulative collector activity, exposed to the (gc-stats)
// built-in (SPEC_FULL.md §B.4).
type Stats struct {
	Collections int
	Freed       int
	Live        int
}

func New() *Heap {
	return &Heap{Threshold: 0}
}

func push(head **value.Object, hdr *value.Object) {
	hdr.SetPrev(nil)
	hdr.SetNext(*head)
	if *head != nil {
		(*head).SetPrev(hdr)
	}
	*head = hdr
}

func unlink(head **value.Object, hdr *value.Object) {
	if p := hdr.Prev(); p != nil {
		p.SetNext(hdr.Next())
	} else {
		*head = hdr.Next()
	}
	if n := hdr.Next(); n != nil {
		n.SetPrev(hdr.Prev())
	}
	hdr.SetPrev(nil)
	hdr.SetNext(nil)
}

// Track attaches a freshly constructed heap object (already initialized
// via its own New* constructor, which calls Object.Init) to the
// generation list, matching eugc_new_object's bookkeeping: the allocation
// itself is ordinary Go construction, and Track is the "join the GC's
// world" step every package's allocator calls immediately afterwards.
func (h *Heap) Track(obj value.HeapObject) {
	push(&h.gen, obj.Header())
	h.allocCount++
}

// AddRoot pins obj so it survives collection regardless of reachability
// from the normal root set. Used while the reader/compiler builds a pair
// or vector incrementally: the partially built structure isn't yet
// reachable from any state's accumulator, but must survive an allocation
// that happens to trigger a collection mid-construction.
func (h *Heap) AddRoot(obj value.HeapObject) {
	hdr := obj.Header()
	unlink(&h.gen, hdr)
	push(&h.root, hdr)
}

// RemoveRoot un-pins obj and migrates it back onto the generation list,
// where its fate is decided by ordinary reachability on the next cycle.
func (h *Heap) RemoveRoot(obj value.HeapObject) {
	hdr := obj.Header()
	unlink(&h.root, hdr)
	push(&h.gen, hdr)
}

// MoveToRoot and MoveOffRoot are the spec's names (§4.1) for AddRoot/
// RemoveRoot in the context of a growable buffer whose backing array is
// about to be reallocated: spec.md requires removing the object from
// whichever list it was on before the swap, then re-attaching it
// afterwards. Kept as distinctly named aliases for call-site clarity.
func (h *Heap) MoveToRoot(obj value.HeapObject)  { h.AddRoot(obj) }
func (h *Heap) MoveOffRoot(obj value.HeapObject) { h.RemoveRoot(obj) }

// MaybeCollect triggers a collection if Threshold is set and has been
// exceeded since the last cycle.
func (h *Heap) MaybeCollect(extraRoots []value.Value) {
	if h.Threshold <= 0 || h.allocCount < h.Threshold {
		return
	}
	h.Collect(extraRoots)
}

// Collect performs one full mark-and-sweep cycle. extraRoots are the live
// Values reachable right now from the owning Global and every State
// (accumulator, environment, rib, continuation chain, current closure,
// error) — see vm.State.RootSet, which builds this slice.
func (h *Heap) Collect(extraRoots []value.Value) {
	h.mark(extraRoots)
	freed := h.sweep()
	h.allocCount = 0
	h.Stats.Collections++
	h.Stats.Freed += freed
	h.Stats.Live = h.countLive()
}

func (h *Heap) mark(extraRoots []value.Value) {
	var grey []*value.Object

	greyObj := func(hdr *value.Object) {
		if hdr.Color() == value.White {
			hdr.SetColor(value.Grey)
			grey = append(grey, hdr)
		}
	}

	for hdr := h.root; hdr != nil; hdr = hdr.Next() {
		greyObj(hdr)
	}
	for _, v := range extraRoots {
		if v.IsCollectable() {
			obj, _ := v.Object()
			greyObj(obj.Header())
		}
	}

	markValue := func(v value.Value) {
		if !v.IsCollectable() {
			return
		}
		obj, _ := v.Object()
		greyObj(obj.Header())
	}

	for len(grey) > 0 {
		hdr := grey[len(grey)-1]
		grey = grey[:len(grey)-1]

		if m, ok := hdr.Owner().(value.Markable); ok {
			m.MarkChildren(markValue)
		}
		hdr.SetColor(value.Black)
	}
}

// sweep frees white objects on the generation list only: objects on the
// root list are, by construction, still under incremental construction
// and are never candidates for collection until RemoveRoot migrates them
// back. Root-list objects are only recolored white, so the next cycle
// scans them and their children again.
func (h *Heap) sweep() int {
	for hdr := h.root; hdr != nil; hdr = hdr.Next() {
		hdr.SetColor(value.White)
	}
	freed := 0
	hdr := h.gen
	for hdr != nil {
		next := hdr.Next()
		switch hdr.Color() {
		case value.Black:
			hdr.SetColor(value.White)
		case value.White:
			unlink(&h.gen, hdr)
			if f, ok := hdr.Owner().(value.Finalizer); ok {
				f.Finalize()
			}
			freed++
		default:
			// A grey object surviving to sweep means the mark phase never
			// finished processing it; this is a bug in MarkChildren, not a
			// runtime condition to recover from.
			panic("gcheap: grey object found during sweep")
		}
		hdr = next
	}
	return freed
}

func (h *Heap) countLive() int {
	n := 0
	for hdr := h.gen; hdr != nil; hdr = hdr.Next() {
		n++
	}
	for hdr := h.root; hdr != nil; hdr = hdr.Next() {
		n++
	}
	return n
}

// Live returns the number of objects currently tracked by the heap
// (generation list and root list), without triggering a collection.
func (h *Heap) Live() int { return h.countLive() }
