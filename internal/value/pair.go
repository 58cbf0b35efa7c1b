package value

// Pair is the cons cell. The empty-list terminator is the Null singleton,
// never an empty pair (§3 invariant).
type Pair struct {
	Object
	Head, Tail Value
}

func NewPair(head, tail Value) *Pair {
	p := &Pair{Head: head, Tail: tail}
	p.Init(p, KindPair)
	return p
}

func (p *Pair) MarkChildren(mark func(Value)) {
	mark(p.Head)
	mark(p.Tail)
}

// Vector is a fixed-length, mutable array of values.
type Vector struct {
	Object
	Data []Value
}

func NewVector(data []Value) *Vector {
	v := &Vector{Data: data}
	v.Init(v, KindVector)
	return v
}

func (v *Vector) MarkChildren(mark func(Value)) {
	for _, e := range v.Data {
		mark(e)
	}
}

// Bytevector is a fixed-length, mutable array of bytes. It references no
// other heap objects.
type Bytevector struct {
	Object
	Data []byte
}

func NewBytevector(data []byte) *Bytevector {
	b := &Bytevector{Data: data}
	b.Init(b, KindBytevector)
	return b
}

// Error is the heap representation of a raised condition: a message
// string plus an optional nested cause, matching §7's error payload.
type Error struct {
	Object
	Message *String
	Nested  *Error
	Flags   ErrorFlag
}

// ErrorFlag is the taxonomy from spec.md §7.
type ErrorFlag uint8

const (
	ErrNone ErrorFlag = iota
	ErrRead
	ErrWrite
	ErrBadArgument
	ErrNullArgument
	ErrBadResource
	ErrInvalid
	ErrBadAlloc
)

func NewError(message *String, nested *Error, flags ErrorFlag) *Error {
	e := &Error{Message: message, Nested: nested, Flags: flags}
	e.Init(e, KindError)
	return e
}

func (e *Error) MarkChildren(mark func(Value)) {
	if e.Message != nil {
		mark(FromObject(e.Message))
	}
	if e.Nested != nil {
		mark(FromObject(e.Nested))
	}
}

// ListToSlice converts a proper list to a Go slice; ok is false if the
// list is improper (does not end in Null).
func ListToSlice(v Value) (out []Value, ok bool) {
	for !v.IsNull() {
		if !v.IsPair() {
			return nil, false
		}
		p := v.AsPair()
		out = append(out, p.Head)
		v = p.Tail
	}
	return out, true
}

// SliceToList builds a proper list from a Go slice, tail-first.
func SliceToList(items []Value) Value {
	out := Null
	for i := len(items) - 1; i >= 0; i-- {
		out = FromObject(NewPair(items[i], out))
	}
	return out
}

// ListLength returns the length of a proper list, or -1 for an improper
// or circular one (§8's testable property: length fails on improper
// lists).
func ListLength(v Value) int {
	n := 0
	slow := v
	for !v.IsNull() {
		if !v.IsPair() {
			return -1
		}
		n++
		v = v.AsPair().Tail
		if n%2 == 0 {
			slow = slow.AsPair().Tail
			if v.IsPair() && Eq(v, slow) {
				return -1
			}
		}
	}
	return n
}
