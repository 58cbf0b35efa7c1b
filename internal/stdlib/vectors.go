package stdlib

import (
	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// vectorBuiltins implements the vector component of register_standard_
// library (spec.md §3's vector variant: inlined length + contiguous
// values), grounded on original_source/src/eu_vector.c's make/ref/set/
// fill family and value.Vector's Data slice representation.
func vectorBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"vector", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			data := make([]value.Value, len(a))
			copy(data, a)
			return trackVector(s, data), nil
		}},
		{"make-vector", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) < 1 || len(a) > 2 || !a[0].IsFixnum() {
				return value.Null, arityErr("make-vector", 1, len(a))
			}
			n := a[0].AsFixnum()
			if n < 0 {
				return value.Null, typeErr("make-vector", "non-negative fixnum", a[0])
			}
			fill := value.Boolean(false)
			if len(a) == 2 {
				fill = a[1]
			}
			data := make([]value.Value, n)
			for i := range data {
				data[i] = fill
			}
			return trackVector(s, data), nil
		}},
		{"vector?", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("vector?", 1, len(a))
			}
			return value.Boolean(a[0].IsVector()), nil
		}},
		{"vector-length", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsVector() {
				return value.Null, typeErr("vector-length", "vector", firstOr(a))
			}
			return value.Fixnum(int64(len(a[0].AsVector().Data))), nil
		}},
		{"vector-ref", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 || !a[0].IsVector() || !a[1].IsFixnum() {
				return value.Null, arityErr("vector-ref", 2, len(a))
			}
			data := a[0].AsVector().Data
			i := a[1].AsFixnum()
			if i < 0 || i >= int64(len(data)) {
				return value.Null, badResource("vector-ref", "index out of range")
			}
			return data[i], nil
		}},
		{"vector-set!", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 3 || !a[0].IsVector() || !a[1].IsFixnum() {
				return value.Null, arityErr("vector-set!", 3, len(a))
			}
			data := a[0].AsVector().Data
			i := a[1].AsFixnum()
			if i < 0 || i >= int64(len(data)) {
				return value.Null, badResource("vector-set!", "index out of range")
			}
			data[i] = a[2]
			return value.Null, nil
		}},
		{"vector-fill!", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 || !a[0].IsVector() {
				return value.Null, arityErr("vector-fill!", 2, len(a))
			}
			data := a[0].AsVector().Data
			for i := range data {
				data[i] = a[1]
			}
			return value.Null, nil
		}},
		{"vector->list", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsVector() {
				return value.Null, typeErr("vector->list", "vector", firstOr(a))
			}
			return trackList(s, a[0].AsVector().Data), nil
		}},
		{"list->vector", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("list->vector", 1, len(a))
			}
			items, ok := value.ListToSlice(a[0])
			if !ok {
				return value.Null, typeErr("list->vector", "proper list", a[0])
			}
			return trackVector(s, items), nil
		}},
		{"vector-copy", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsVector() {
				return value.Null, typeErr("vector-copy", "vector", firstOr(a))
			}
			src := a[0].AsVector().Data
			data := make([]value.Value, len(src))
			copy(data, src)
			return trackVector(s, data), nil
		}},
	}
}

func trackVector(s *vm.State, data []value.Value) value.Value {
	v := value.NewVector(data)
	s.Heap.Track(v)
	return value.FromObject(v)
}
