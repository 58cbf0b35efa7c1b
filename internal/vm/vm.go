package vm

import (
	"europa/internal/bytecode"
	"europa/internal/gcheap"
	"europa/internal/table"
	"europa/internal/value"
)

const callCallSymbolText = "@@call"

// Run drives the fetch-decode-execute loop until s.Halted: either an
// explicit HALT (top-level programs, which CompileProgram terminates
// with HALT rather than RETURN) or a RETURN/native-return/continuation
// return executed with no Previous frame left to restore (the natural
// end of a Call-opened nested invocation).
func Run(s *State) (value.Value, error) {
	for !s.Halted {
		if err := step(s); err != nil {
			return value.Null, err
		}
		s.Heap.MaybeCollect(s.RootSet())
	}
	return s.Accumulator, nil
}

// Call opens a fresh, independent invocation of proc with args and runs
// it to completion, returning its result synchronously. This is how a
// native built-in (map, apply, for-each)
// calls back into Scheme code: an ordinary nested Go call, matching
// spec.md §9's guidance to replace the C original's CONTINUE-and-resume
// pattern with structured recursion.
func Call(h *gcheap.Heap, proc value.Value, args []value.Value) (value.Value, error) {
	s := NewState(h)
	s.Accumulator = proc
	s.Rib = value.SliceToList(args)
	if err := apply(s); err != nil {
		return value.Null, err
	}
	if s.Halted {
		return s.Accumulator, nil
	}
	return Run(s)
}

func step(s *State) error {
	if s.Closure == nil || s.Closure.Proto == nil {
		return typeError("no executable code in current frame")
	}
	code := s.Closure.Proto.Code
	if s.PC < 0 || s.PC >= len(code) {
		return typeError("program counter out of range")
	}
	instr := code[s.PC]
	s.PC++

	switch instr.Op() {
	case bytecode.NOP:
		return nil

	case bytecode.REFER:
		sym := s.Closure.Proto.Constants[instr.Index()]
		v, ok := s.Env.RGet(sym)
		if !ok {
			return unboundError(symbolText(sym))
		}
		s.Accumulator = v
		return nil

	case bytecode.CONST:
		s.Accumulator = s.Closure.Proto.Constants[instr.Index()]
		return nil

	case bytecode.CLOSE:
		sub := s.Closure.Proto.SubProtos[instr.Index()]
		s.Accumulator = value.FromObject(NewClosure(s.Heap, sub, s.Env))
		return nil

	case bytecode.TEST:
		if s.Accumulator.IsFalse() {
			s.PC = s.PC - 1 + instr.Offset()
		}
		return nil

	case bytecode.JUMP:
		s.PC = s.PC - 1 + instr.Offset()
		return nil

	case bytecode.ASSIGN:
		sym := s.Closure.Proto.Constants[instr.Index()]
		owner := tableBinding(s.Env, sym)
		if owner == nil {
			return unboundError(symbolText(sym))
		}
		owner.Set(sym, s.Accumulator)
		return nil

	case bytecode.DEFINE:
		sym := s.Closure.Proto.Constants[instr.Index()]
		owner := tableBinding(s.Env, sym)
		if owner == nil {
			owner = s.Env
		}
		owner.Set(sym, s.Accumulator)
		return nil

	case bytecode.ARGUMENT:
		s.Rib = appendRib(s.Heap, s.Rib, s.Accumulator)
		return nil

	case bytecode.FRAME:
		target := s.PC - 1 + instr.Offset()
		s.Previous = NewContinuation(s.Heap, target, s.Env, s.Rib, s.Closure, s.Previous)
		s.Rib = value.Null
		return nil

	case bytecode.CONTI:
		target := s.PC - 1 + instr.Offset()
		k := NewContinuation(s.Heap, target, s.Env, s.Rib, s.Closure, s.Previous)
		s.Accumulator = value.FromObject(k)
		return nil

	case bytecode.APPLY:
		return apply(s)

	case bytecode.RETURN:
		return doReturn(s)

	case bytecode.HALT:
		s.Halted = true
		return nil

	default:
		return typeError("unknown opcode %v", instr.Op())
	}
}

// apply implements the APPLY dispatch of spec.md §4.5: table → @@call
// with the table prepended to rib; closure → either a synchronous
// native call (ordinary return) or a fresh environment and PC reset;
// continuation → wholesale state restoration.
func apply(s *State) error {
	switch {
	case s.Accumulator.IsTable():
		t := asTable(s.Accumulator)
		callSym, ok := t.RGetSymbol(callCallSymbolText)
		if !ok {
			return typeError("table is not callable: missing %s", callCallSymbolText)
		}
		s.Rib = value.FromObject(consTracked(s.Heap, s.Accumulator, s.Rib))
		s.Accumulator = callSym
		return apply(s)

	case s.Accumulator.IsClosure():
		cl := asClosure(s.Accumulator)
		if cl.Native != nil {
			result, err := cl.Native(s, s.Rib)
			if err != nil {
				return err
			}
			s.Accumulator = result
			return doReturn(s)
		}
		env := table.New(s.Heap, 0)
		env.Index = cl.Env
		if err := bindFormals(s.Heap, env, cl.Proto.Formals, s.Rib); err != nil {
			return err
		}
		s.Env = env
		s.Closure = cl
		s.PC = 0
		s.Rib = value.Null
		return nil

	case s.Accumulator.IsContinuation():
		k := asContinuation(s.Accumulator)
		argRib := s.Rib
		s.PC = k.PC
		s.Env = k.Env
		s.Rib = k.Rib
		s.Closure = k.Closure
		s.Previous = k.Previous
		if argRib.IsPair() && argRib.AsPair().Tail.IsNull() {
			s.Accumulator = argRib.AsPair().Head
		} else {
			s.Accumulator = argRib
		}
		return nil

	default:
		return typeError("cannot apply a non-procedure value")
	}
}

// doReturn restores the previous continuation (RETURN's effect, and the
// shared "ordinary return" path every native call and every RETURN
// instruction funnels through): if no frame is left to restore, this
// State's outermost call has completed and Run should stop.
func doReturn(s *State) error {
	if s.Previous == nil {
		s.Halted = true
		return nil
	}
	k := s.Previous
	s.PC = k.PC
	s.Env = k.Env
	s.Rib = k.Rib
	s.Closure = k.Closure
	s.Previous = k.Previous
	return nil
}

// appendRib conses v onto the end of rib's list (ARGUMENT's "append to
// the tail of the rib"), preserving left-to-right argument order without
// needing a separate tail pointer: ribs are built one argument at a
// time and are rarely more than a handful of elements long.
func appendRib(h *gcheap.Heap, rib, v value.Value) value.Value {
	if rib.IsNull() {
		return value.FromObject(consTracked(h, v, value.Null))
	}
	p := rib.AsPair()
	for p.Tail.IsPair() {
		p = p.Tail.AsPair()
	}
	p.Tail = value.FromObject(consTracked(h, v, value.Null))
	return rib
}

// consTracked builds a pair and registers it with the heap in one step,
// the pattern every allocation site outside package value itself follows.
func consTracked(h *gcheap.Heap, head, tail value.Value) *value.Pair {
	p := value.NewPair(head, tail)
	h.Track(p)
	return p
}

func symbolText(sym value.Value) string {
	if sym.IsSymbol() {
		return sym.AsSymbol().Text
	}
	return "?"
}

// asTable/asClosure/asContinuation type-assert a Value's heap object
// against the concrete struct, the way value.Value.AsPair et al. do for
// kinds defined inside package value itself — Table, Closure and
// Continuation live in packages value cannot import (table, vm), so the
// cast happens here instead, through the Kind-tagged HeapObject.
func asTable(v value.Value) *table.Table {
	obj, _ := v.Object()
	return obj.(*table.Table)
}

func asClosure(v value.Value) *Closure {
	obj, _ := v.Object()
	return obj.(*Closure)
}

func asContinuation(v value.Value) *Continuation {
	obj, _ := v.Object()
	return obj.(*Continuation)
}

// tableBinding returns the table in env's Index chain that actually
// holds key, or nil if no table in the chain does — ASSIGN and DEFINE
// both perform this rget-style search (DEFINE falls back to creating the
// binding locally when the search comes up empty), matching the
// original's eutable_rget-then-maybe-create sequence.
func tableBinding(env *table.Table, key value.Value) *table.Table {
	for t := env; t != nil; t = t.Index {
		if _, ok := t.Get(key); ok {
			return t
		}
	}
	return nil
}
