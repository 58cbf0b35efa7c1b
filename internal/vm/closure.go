// Package vm implements Europa's fetch-decode-execute loop over
// bytecode.Prototype (spec.md §4.5): the accumulator/rib/env/closure/PC
// state record, heap-allocated continuations, and the APPLY dispatch
// across closures, continuations and callable tables. Grounded on
// original_source/src/vm.c's opcode switch, translated into direct Go
// control flow per spec.md §9's guidance to drop the C-stack-shaped
// CONTINUE status code in favor of structured recursion for native
// callbacks that call back into the interpreter.
package vm

import (
	"europa/internal/bytecode"
	"europa/internal/gcheap"
	"europa/internal/table"
	"europa/internal/value"
)

// NativeFunc is a built-in procedure's Go implementation: it reads its
// arguments from rib (a proper list) and returns a result value, or an
// error that propagates exactly like any Scheme-raised condition. A
// native that needs to invoke a Scheme procedure (map, for-each, apply)
// calls Call directly — an
// ordinary, structured Go call, not a trampoline.
type NativeFunc func(s *State, rib value.Value) (value.Value, error)

// Closure pairs a prototype with the environment it was created in
// (CLOSE's "new closure over proto.subprotos[idx] and current env"), or
// wraps a native Go function standing in for a prototype. Exactly one of
// Proto or Native is set.
type Closure struct {
	value.Object

	Proto *bytecode.Prototype
	Env   *table.Table

	Native NativeFunc
	// Name records the name a native built-in was registered under; it is
	// empty for closures created from a lambda.
	Name string
}

// NewClosure instantiates proto in env (the environment captured at the
// CLOSE site).
func NewClosure(h *gcheap.Heap, proto *bytecode.Prototype, env *table.Table) *Closure {
	c := &Closure{Proto: proto, Env: env}
	c.Init(c, value.KindClosure)
	h.Track(c)
	return c
}

// NewNativeClosure wraps a built-in procedure as a callable closure with
// no captured environment.
func NewNativeClosure(h *gcheap.Heap, name string, fn NativeFunc) *Closure {
	c := &Closure{Native: fn, Name: name}
	c.Init(c, value.KindClosure)
	h.Track(c)
	return c
}

func (c *Closure) MarkChildren(mark func(value.Value)) {
	if c.Proto != nil {
		mark(value.FromObject(c.Proto))
	}
	if c.Env != nil {
		mark(value.FromObject(c.Env))
	}
}
