package stdlib

import (
	"github.com/google/uuid"

	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// symbolBuiltins implements the symbol component plus gensym, the one
// built-in the original C source never needed (it can just bump a
// process-wide counter) but that a hosted Go build benefits from getting
// right via a real generator when multiple independently-loaded modules
// must not collide on an uninterned name (SPEC_FULL.md §B.3).
func symbolBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"symbol=?", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 || !a[0].IsSymbol() || !a[1].IsSymbol() {
				return value.Null, typeErr("symbol=?", "symbol", firstOr(a))
			}
			return value.Boolean(value.Eq(a[0], a[1])), nil
		}},
		{"gensym", func(s *vm.State, rib value.Value) (value.Value, error) {
			text := "g$" + uuid.New().String()
			sym := value.NewSymbol(text, value.FNV1a(text))
			s.Heap.Track(sym)
			return value.FromObject(sym), nil
		}},
		{"generate-uninterned-symbol", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			prefix := "g"
			if len(a) == 1 && a[0].IsString() {
				prefix = a[0].AsString().Text
			}
			text := prefix + uuid.New().String()
			sym := value.NewSymbol(text, value.FNV1a(text))
			s.Heap.Track(sym)
			return value.FromObject(sym), nil
		}},
	}
}
