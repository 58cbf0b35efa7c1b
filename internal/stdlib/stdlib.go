// Package stdlib implements register_standard_library (spec.md §6): the
// pair/list/number/boolean/string/symbol/vector/table/port/control
// built-ins bound into the global environment as native closures,
// grounded on original_source/src/eu_list.c, src/number.c, src/write.c
// and the teacher's internal/stdlib package (function-per-builtin native
// closures registered by name into a single environment table).
package stdlib

import (
	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// builtin is the shape every registration function below has: given a
// Global, intern its name and bind a native closure implementing it.
type builtin struct {
	name string
	fn   vm.NativeFunc
}

// Register installs every built-in this package knows about into g's top
// level environment; runtime.State.RegisterStandardLibrary calls this so
// an embedder only has to import both packages, not wire each builtin by
// hand.
func Register(g *runtime.Global) {
	for _, b := range pairBuiltins(g) {
		bind(g, b)
	}
	for _, b := range numberBuiltins(g) {
		bind(g, b)
	}
	for _, b := range booleanBuiltins(g) {
		bind(g, b)
	}
	for _, b := range stringBuiltins(g) {
		bind(g, b)
	}
	for _, b := range symbolBuiltins(g) {
		bind(g, b)
	}
	for _, b := range controlBuiltins(g) {
		bind(g, b)
	}
	for _, b := range portBuiltins(g) {
		bind(g, b)
	}
	for _, b := range vectorBuiltins(g) {
		bind(g, b)
	}
	for _, b := range tableBuiltins(g) {
		bind(g, b)
	}
	for _, b := range diagnosticsBuiltins(g) {
		bind(g, b)
	}
	for _, b := range netportBuiltins(g) {
		bind(g, b)
	}
}

func bind(g *runtime.Global, b builtin) {
	cl := vm.NewNativeClosure(g.Heap, b.name, b.fn)
	g.Bind(b.name, value.FromObject(cl))
}

// args unpacks a rib into a slice, which every builtin below needs
// before it can check arity; application.go/vm.go always hand the
// builtin a proper list (ARGUMENT only ever conses one more element on).
func args(rib value.Value) []value.Value {
	items, _ := value.ListToSlice(rib)
	return items
}

