package vm

import (
	"europa/internal/gcheap"
	"europa/internal/table"
	"europa/internal/value"
)

// Continuation is a heap-allocated snapshot of everything FRAME/CONTI
// need to restore wholesale: the historic "register-plus-list
// architecture" spec.md §9 calls out specifically because it makes a
// first-class continuation a single struct with no stack to copy.
type Continuation struct {
	value.Object

	PC       int
	Env      *table.Table
	Rib      value.Value
	Closure  *Closure
	Previous *Continuation
}

// NewContinuation captures the state at the point FRAME or CONTI was
// executed.
func NewContinuation(h *gcheap.Heap, pc int, env *table.Table, rib value.Value, closure *Closure, previous *Continuation) *Continuation {
	k := &Continuation{PC: pc, Env: env, Rib: rib, Closure: closure, Previous: previous}
	k.Init(k, value.KindContinuation)
	h.Track(k)
	return k
}

func (k *Continuation) MarkChildren(mark func(value.Value)) {
	mark(k.Rib)
	if k.Env != nil {
		mark(value.FromObject(k.Env))
	}
	if k.Closure != nil {
		mark(value.FromObject(k.Closure))
	}
	if k.Previous != nil {
		mark(value.FromObject(k.Previous))
	}
}
