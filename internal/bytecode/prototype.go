package bytecode

import (
	"europa/internal/gcheap"
	"europa/internal/value"
)

// Prototype is compiled code for one lambda: its formals, a deduplicated
// constant pool, its nested lambdas' prototypes, the instruction buffer,
// and (for error messages and introspection) the source datum it was
// compiled from. A Prototype is paired with a captured environment to
// produce a callable closure (see package vm). The instruction buffer is
// append-only while the compiler is working on it and immutable
// thereafter (§3 invariant).
type Prototype struct {
	value.Object

	// Formals is a symbol (variadic), a proper list of symbols (fixed
	// arity), or an improper list of symbols (fixed-plus-rest), matching
	// the three shapes spec.md §4.4's lambda validation accepts.
	Formals value.Value

	Constants []value.Value
	SubProtos []*Prototype
	Code      []Instruction

	// Source is the datum this prototype was compiled from, kept for
	// error reporting.
	Source value.Value
}

// NewPrototype allocates an empty prototype tracked by h; the compiler
// appends constants/subprotos/instructions to it as it emits code.
func NewPrototype(h *gcheap.Heap, formals, source value.Value) *Prototype {
	p := &Prototype{Formals: formals, Source: source}
	p.Init(p, value.KindPrototype)
	h.Track(p)
	return p
}

// AddConstant deduplicates by equal? (spec.md §4.4's constant pool
// contract) and returns the existing index if an equal constant is
// already present, otherwise appends and returns the new index.
func (p *Prototype) AddConstant(v value.Value) int {
	for i, c := range p.Constants {
		if value.Equal(c, v) {
			return i
		}
	}
	p.Constants = append(p.Constants, v)
	return len(p.Constants) - 1
}

// AddSubProto appends a nested prototype and returns its index.
func (p *Prototype) AddSubProto(sub *Prototype) int {
	p.SubProtos = append(p.SubProtos, sub)
	return len(p.SubProtos) - 1
}

// Emit appends an instruction and returns its offset, for callers (the
// compiler's back-patching of TEST/JUMP/FRAME/CONTI) that need to revisit
// it once the jump target is known.
func (p *Prototype) Emit(i Instruction) int {
	p.Code = append(p.Code, i)
	return len(p.Code) - 1
}

// Patch overwrites the instruction at offset, used to back-patch a
// placeholder TEST/JUMP/FRAME/CONTI once its target is known.
func (p *Prototype) Patch(offset int, i Instruction) {
	p.Code[offset] = i
}

// Here returns the offset the next Emit will land at, i.e. the current
// end of the instruction buffer — the natural "jump target is here" value
// used when computing a back-patch's relative offset.
func (p *Prototype) Here() int { return len(p.Code) }

func (p *Prototype) MarkChildren(mark func(value.Value)) {
	mark(p.Formals)
	for _, c := range p.Constants {
		mark(c)
	}
	for _, sub := range p.SubProtos {
		mark(value.FromObject(sub))
	}
	mark(p.Source)
}
