package stdlib

import (
	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// controlBuiltins implements the control component (apply, map,
// for-each) and is where spec.md §9's dropped-CONTINUE design shows up
// concretely: each of these needs to call back into Scheme code from a
// native built-in, and does so with an ordinary nested vm.Call rather
// than a status code the VM loop has to notice and resume.
func controlBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"apply", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) < 2 {
				return value.Null, arityErr("apply", 2, len(a))
			}
			proc := a[0]
			callArgs := append([]value.Value{}, a[1:len(a)-1]...)
			tail, ok := value.ListToSlice(a[len(a)-1])
			if !ok {
				return value.Null, typeErr("apply", "proper list", a[len(a)-1])
			}
			callArgs = append(callArgs, tail...)
			return vm.Call(s.Heap, proc, callArgs)
		}},
		{"map", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) < 2 {
				return value.Null, arityErr("map", 2, len(a))
			}
			proc := a[0]
			lists := make([][]value.Value, len(a)-1)
			n := -1
			for i, l := range a[1:] {
				items, ok := value.ListToSlice(l)
				if !ok {
					return value.Null, typeErr("map", "proper list", l)
				}
				lists[i] = items
				if n < 0 || len(items) < n {
					n = len(items)
				}
			}
			out := make([]value.Value, n)
			for i := 0; i < n; i++ {
				callArgs := make([]value.Value, len(lists))
				for j, l := range lists {
					callArgs[j] = l[i]
				}
				r, err := vm.Call(s.Heap, proc, callArgs)
				if err != nil {
					return value.Null, err
				}
				out[i] = r
			}
			return trackList(s, out), nil
		}},
		{"for-each", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) < 2 {
				return value.Null, arityErr("for-each", 2, len(a))
			}
			proc := a[0]
			lists := make([][]value.Value, len(a)-1)
			n := -1
			for i, l := range a[1:] {
				items, ok := value.ListToSlice(l)
				if !ok {
					return value.Null, typeErr("for-each", "proper list", l)
				}
				lists[i] = items
				if n < 0 || len(items) < n {
					n = len(items)
				}
			}
			for i := 0; i < n; i++ {
				callArgs := make([]value.Value, len(lists))
				for j, l := range lists {
					callArgs[j] = l[i]
				}
				if _, err := vm.Call(s.Heap, proc, callArgs); err != nil {
					return value.Null, err
				}
			}
			return value.Null, nil
		}},
		{"error", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) == 0 || !a[0].IsString() {
				return value.Null, arityErr("error", 1, len(a))
			}
			return value.Null, &vm.RuntimeError{Flag: value.ErrNone, Msg: a[0].AsString().Text}
		}},
		{"raise", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("raise", 1, len(a))
			}
			if a[0].IsError() {
				e := a[0].AsError()
				return value.Null, &vm.RuntimeError{Flag: e.Flags, Msg: e.Message.Text}
			}
			return value.Null, &vm.RuntimeError{Flag: value.ErrNone, Msg: kindName(a[0]) + " raised"}
		}},
		{"error?", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("error?", 1, len(a))
			}
			return value.Boolean(a[0].IsError()), nil
		}},
		{"error-object-message", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsError() {
				return value.Null, typeErr("error-object-message", "error", firstOr(a))
			}
			return value.FromObject(a[0].AsError().Message), nil
		}},
	}
}
