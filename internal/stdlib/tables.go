package stdlib

import (
	"europa/internal/runtime"
	"europa/internal/table"
	"europa/internal/value"
	"europa/internal/vm"
)

// tableBuiltins exposes spec.md §4.2's table as a first-class Scheme
// value — get/rget/create_key/set/count given script-facing names —
// grounded on original_source/src/table.c and on how the compiler/vm
// already use *table.Table as the environment representation.
func tableBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"make-table", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			hint := 0
			if len(a) == 1 {
				if !a[0].IsFixnum() {
					return value.Null, typeErr("make-table", "fixnum", a[0])
				}
				hint = int(a[0].AsFixnum())
			} else if len(a) != 0 {
				return value.Null, arityErr("make-table", 0, len(a))
			}
			t := table.New(s.Heap, hint)
			return value.FromObject(t), nil
		}},
		{"table?", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("table?", 1, len(a))
			}
			return value.Boolean(a[0].IsTable()), nil
		}},
		{"table-ref", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) < 2 || len(a) > 3 || !a[0].IsTable() {
				return value.Null, arityErr("table-ref", 2, len(a))
			}
			t := asTable(a[0])
			if v, ok := t.Get(a[1]); ok {
				return v, nil
			}
			if len(a) == 3 {
				return a[2], nil
			}
			return value.Boolean(false), nil
		}},
		{"table-rget", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) < 2 || len(a) > 3 || !a[0].IsTable() {
				return value.Null, arityErr("table-rget", 2, len(a))
			}
			t := asTable(a[0])
			if v, ok := t.RGet(a[1]); ok {
				return v, nil
			}
			if len(a) == 3 {
				return a[2], nil
			}
			return value.Boolean(false), nil
		}},
		{"table-set!", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 3 || !a[0].IsTable() {
				return value.Null, arityErr("table-set!", 3, len(a))
			}
			asTable(a[0]).Set(a[1], a[2])
			return value.Null, nil
		}},
		{"table-count", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsTable() {
				return value.Null, typeErr("table-count", "table", firstOr(a))
			}
			return value.Fixnum(int64(asTable(a[0]).Count())), nil
		}},
		{"table-index", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsTable() {
				return value.Null, typeErr("table-index", "table", firstOr(a))
			}
			parent := asTable(a[0]).Index
			if parent == nil {
				return value.Boolean(false), nil
			}
			return value.FromObject(parent), nil
		}},
		{"table-set-index!", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 || !a[0].IsTable() {
				return value.Null, arityErr("table-set-index!", 2, len(a))
			}
			if a[1].IsFalse() {
				asTable(a[0]).Index = nil
				return value.Null, nil
			}
			if !a[1].IsTable() {
				return value.Null, typeErr("table-set-index!", "table or #f", a[1])
			}
			asTable(a[0]).Index = asTable(a[1])
			return value.Null, nil
		}},
	}
}

func asTable(v value.Value) *table.Table {
	obj, _ := v.Object()
	return obj.(*table.Table)
}
