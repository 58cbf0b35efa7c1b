// Package runtime provides the embedding surface spec.md §6 describes in
// the abstract (new/terminate/do_string/do_file/set_error/recover/
// register_standard_library/set_standard_ports), grounded on
// original_source/src/europa.c's euglobal_init/europa_new split between a
// process-wide Global and a per-call State. Go needs neither a realloc
// callback nor a panic hook to manage memory, so New takes none; a State's
// protected call is a recover()-guarded Go function instead of the
// original's setjmp/longjmp jump list (original_source/src/runtime.c).
package runtime

import (
	"europa/internal/gcheap"
	"europa/internal/port"
	"europa/internal/table"
	"europa/internal/value"
)

// Global holds everything spec.md §9's "intern table placement" note says
// belongs above any individual state: the heap, the process-wide symbol
// and string intern tables, and the top-level environment every State's
// lookups eventually chain to.
type Global struct {
	Heap *gcheap.Heap

	Symbols *table.Table
	Strings *table.Table
	Env     *table.Table

	Stdin  *port.Port
	Stdout *port.Port
	Stderr *port.Port
}

// New allocates a Global and its intern tables. Callers get a State from
// NewState before running anything.
func New() *Global {
	h := gcheap.New()
	g := &Global{
		Heap:    h,
		Symbols: table.New(h, 0),
		Strings: table.New(h, 0),
		Env:     table.New(h, 0),
	}
	g.Heap.AddRoot(g.Symbols)
	g.Heap.AddRoot(g.Strings)
	g.Heap.AddRoot(g.Env)
	return g
}

// Terminate releases the global's roots, letting a subsequent collection
// reclaim everything reachable only through this Global. It does not stop
// any State still mid-run; the caller must not touch the Global again.
func (g *Global) Terminate() {
	g.Heap.RemoveRoot(g.Symbols)
	g.Heap.RemoveRoot(g.Strings)
	g.Heap.RemoveRoot(g.Env)
}

// InternSymbol deduplicates text against the global symbol table, the
// same table reader.Reader chains its own local table to, so a built-in
// bound here under "car" and a reader encountering the text "car" in
// source always resolve to the same heap Symbol (spec.md §8's pointer-
// equality invariant).
func (g *Global) InternSymbol(text string) value.Value {
	if v, ok := g.Symbols.GetSymbol(text); ok {
		return v
	}
	sym := value.NewSymbol(text, value.FNV1a(text))
	g.Heap.Track(sym)
	v := value.FromObject(sym)
	g.Symbols.Set(v, v)
	return v
}

// InternString is InternSymbol's string-table counterpart: it
// canonicalizes identical text against the global string table, the same
// table the reader installs its string literals in.
func (g *Global) InternString(text string) value.Value {
	if v, ok := g.Strings.GetString(text); ok {
		return v
	}
	str := value.NewString(text, value.FNV1a(text))
	g.Heap.Track(str)
	v := value.FromObject(str)
	g.Strings.Set(v, v)
	return v
}

// Bind installs name = val directly in the top-level environment, the
// primitive register_standard_library's native-closure bindings and
// set_standard_ports's port bindings both build on.
func (g *Global) Bind(name string, val value.Value) {
	g.Env.Set(g.InternSymbol(name), val)
}
