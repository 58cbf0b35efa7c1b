package vm

import (
	"europa/internal/gcheap"
	"europa/internal/table"
	"europa/internal/value"
)

// State is the interpreter state record spec.md §3/§4.5 describes: the
// accumulator, the current environment and rib, the closure currently
// executing and its PC, and the continuation chain. One State runs at a
// time (spec.md §5's single-threaded cooperative model); Call opens a
// fresh, independent State for a native-to-Scheme reentrant call.
type State struct {
	Heap *gcheap.Heap

	Accumulator value.Value
	Env         *table.Table
	Rib         value.Value
	Closure     *Closure
	PC          int
	Previous    *Continuation

	// Halted is set once this State's outermost frame has returned (by
	// RETURN when Previous is nil, or by HALT), meaning Run should stop
	// and hand the accumulator back to its caller.
	Halted bool
}

// NewState starts a fresh state with an empty rib and no continuation
// chain, ready to have its Closure/Env/PC set by the caller (runtime's
// do_string/do_file) or by a call into Apply (package-internal Call).
func NewState(h *gcheap.Heap) *State {
	return &State{Heap: h, Accumulator: value.Null, Rib: value.Null}
}

// RootSet returns every Value this State holds live right now, for
// gcheap.Collect's extraRoots: the accumulator, rib, environment,
// current closure, and the head of the continuation chain (whose own
// MarkChildren follows Previous transitively).
func (s *State) RootSet() []value.Value {
	roots := make([]value.Value, 0, 4)
	roots = append(roots, s.Accumulator, s.Rib)
	if s.Env != nil {
		roots = append(roots, value.FromObject(s.Env))
	}
	if s.Closure != nil {
		roots = append(roots, value.FromObject(s.Closure))
	}
	if s.Previous != nil {
		roots = append(roots, value.FromObject(s.Previous))
	}
	return roots
}

// bindFormals binds a closure's formals against a fully-assembled rib of
// argument values, mirroring the three shapes spec.md §4.4/§4.5 define:
// a bare symbol (binds the whole rib as a list), a proper list (fixed
// arity, rib must be exhausted exactly), or an improper list (fixed
// arguments then a rest-symbol bound to whatever remains).
func bindFormals(h *gcheap.Heap, env *table.Table, formals, rib value.Value) error {
	if formals.IsSymbol() {
		env.Set(formals, rib)
		return nil
	}

	cur := formals
	for cur.IsPair() {
		fp := cur.AsPair()
		if !rib.IsPair() {
			return arityErrorForFormals(formals, rib)
		}
		rp := rib.AsPair()
		env.Set(fp.Head, rp.Head)
		cur = fp.Tail
		rib = rp.Tail
	}

	if cur.IsSymbol() {
		env.Set(cur, rib)
		return nil
	}
	if !cur.IsNull() {
		return typeError("malformed formals list")
	}
	if !rib.IsNull() {
		return arityErrorForFormals(formals, rib)
	}
	return nil
}

func arityErrorForFormals(formals, rib value.Value) *RuntimeError {
	want := value.ListLength(formals)
	got := value.ListLength(rib)
	if want < 0 {
		want = -1 // improper formals: message still useful without a fixed arity
	}
	return arityError("procedure", want, got)
}
