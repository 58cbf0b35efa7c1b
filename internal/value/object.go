// Package value implements Europa's tagged value representation and the
// heap-object header shared by every garbage-collected variant (symbol,
// string, error, pair, vector, bytevector; table, port, prototype, closure
// and continuation live in their own packages but embed Object the same
// way).
package value

// Color is the tri-color mark used by the tracing collector in package
// gcheap. White objects are candidates for collection, grey objects are
// on the mark worklist, black objects have been fully scanned.
type Color uint8

const (
	White Color = iota
	Grey
	Black
)

// Kind identifies the concrete heap-object variant an Object's owner was
// allocated as. It is distinct from Value's Tag: Tag says "this Value
// refers to the heap"; Kind says "and this is what kind of object".
type Kind uint8

const (
	KindSymbol Kind = iota
	KindString
	KindError
	KindPair
	KindVector
	KindBytevector
	KindTable
	KindPort
	KindPrototype
	KindClosure
	KindContinuation
)

// Object is the fixed-layout header every heap-allocated value embeds as
// its first field. The previous/next pair forms the intrusive doubly
// linked generation list the collector walks during sweep; mark/finalize
// dispatch is driven by Kind and the Markable/Finalizer interfaces below,
// not by a type switch over concrete Go types, so that package gcheap
// never needs to import the packages that define tables, ports, closures
// or continuations.
type Object struct {
	prev, next *Object
	color      Color
	kind       Kind
	owner      HeapObject
}

// Header satisfies HeapObject; embedding Object promotes it to every
// heap-object struct automatically.
func (o *Object) Header() *Object { return o }

func (o *Object) Kind() Kind   { return o.kind }
func (o *Object) Color() Color { return o.color }
func (o *Object) SetColor(c Color) { o.color = c }

// Owner returns the concrete heap-object struct (Symbol, Pair, Table,
// Port, ...) that embeds this Object, so package gcheap can type-assert
// it against Markable/Finalizer without importing the package that
// defines it.
func (o *Object) Owner() HeapObject { return o.owner }

// Next/Prev/SetNext/SetPrev expose the intrusive doubly linked list
// pointers to package gcheap. An object is on exactly one list at a time
// (the generation list, or the root list while under construction by the
// reader/compiler) — moving it between lists is a matter of unlinking
// from one and relinking into the other using these same two fields, the
// same trick the original C collector uses for move_to_root/move_off_root.
func (o *Object) Next() *Object     { return o.next }
func (o *Object) Prev() *Object     { return o.prev }
func (o *Object) SetNext(n *Object) { o.next = n }
func (o *Object) SetPrev(p *Object) { o.prev = p }

// Init records the owning struct and the object's kind, and resets color
// to white. Every constructor calls it as `x.Init(x, KindFoo)` right
// after allocating x, passing itself so Owner() has something to return.
func (o *Object) Init(owner HeapObject, k Kind) {
	o.owner = owner
	o.kind = k
	o.color = White
}

// HeapObject is implemented by every collectable variant via embedding
// Object. gcheap.Heap only ever talks to values through this interface
// (and the optional Markable/Finalizer interfaces below), never through
// concrete struct types.
type HeapObject interface {
	Header() *Object
}

// Markable is implemented by heap objects that may reference other heap
// objects (pair, vector, error's nested cause, table, closure,
// continuation, prototype). mark is called once per referenced Value;
// gcheap decides whether to grey it.
type Markable interface {
	MarkChildren(mark func(Value))
}

// Finalizer is implemented by heap objects that own non-heap resources
// that must be released when the object is swept (file handles, native
// buffers). Symbols, strings, bytevectors and pairs never need it.
type Finalizer interface {
	Finalize()
}
