package stdlib

import (
	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// booleanBuiltins implements the boolean component: the three-tier
// equivalence predicates (SPEC_FULL.md §C) and the type predicates the
// rest of the library's arity checks lean on.
func booleanBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"not", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("not", 1, len(a))
			}
			return value.Boolean(a[0].IsFalse()), nil
		}},
		{"boolean?", predicate(func(v value.Value) bool { return v.IsBoolean() })},
		{"eq?", eqBuiltin("eq?", value.Eq)},
		{"eqv?", eqBuiltin("eqv?", value.Eqv)},
		{"equal?", eqBuiltin("equal?", value.Equal)},
		{"procedure?", predicate(func(v value.Value) bool { return v.IsProcedure() })},
		{"symbol?", predicate(func(v value.Value) bool { return v.IsSymbol() })},
		{"string?", predicate(func(v value.Value) bool { return v.IsString() })},
		{"vector?", predicate(func(v value.Value) bool { return v.IsVector() })},
		{"char?", predicate(func(v value.Value) bool { return v.IsCharacter() })},
		{"eof-object?", predicate(func(v value.Value) bool { return v.IsEOF() })},
	}
}

func eqBuiltin(name string, eq func(value.Value, value.Value) bool) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		if len(a) != 2 {
			return value.Null, arityErr(name, 2, len(a))
		}
		return value.Boolean(eq(a[0], a[1])), nil
	}
}
