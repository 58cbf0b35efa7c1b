package stdlib

import (
	"europa/internal/port"
	"europa/internal/reader"
	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// portBuiltins implements write/display/write-simple (spec.md §4.6,
// escaping rules per SPEC_FULL.md §C) plus the minimal port-object
// operations a script needs to reach string ports and the current
// output port without the reader/compiler's help.
func portBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"display", writer(g, "display", func(p *port.Port, v value.Value) error { return p.Display(v) })},
		{"write", writer(g, "write", func(p *port.Port, v value.Value) error { return p.Write(v) })},
		{"write-simple", writer(g, "write-simple", func(p *port.Port, v value.Value) error { return p.WriteSimple(v) })},
		{"newline", func(s *vm.State, rib value.Value) (value.Value, error) {
			p, err := outputPortOrDefault(g, args(rib), 0, "newline")
			if err != nil {
				return value.Null, err
			}
			return value.Null, p.WriteChar('\n')
		}},
		{"current-output-port", func(s *vm.State, rib value.Value) (value.Value, error) {
			return value.FromObject(g.Stdout), nil
		}},
		{"current-input-port", func(s *vm.State, rib value.Value) (value.Value, error) {
			return value.FromObject(g.Stdin), nil
		}},
		{"open-input-string", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsString() {
				return value.Null, typeErr("open-input-string", "string", firstOr(a))
			}
			p := port.New(s.Heap, port.Input|port.Textual, port.NewMemoryBackend([]byte(a[0].AsString().Text)))
			return value.FromObject(p), nil
		}},
		{"open-output-string", func(s *vm.State, rib value.Value) (value.Value, error) {
			p := port.New(s.Heap, port.Output|port.Textual, port.NewMemoryBackend(nil))
			return value.FromObject(p), nil
		}},
		{"get-output-string", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsPort() {
				return value.Null, typeErr("get-output-string", "port", firstOr(a))
			}
			p := asPort(a[0])
			mem, ok := port.AsMemoryBackend(p.Backend)
			if !ok {
				return value.Null, badResource("get-output-string", "not a memory port")
			}
			return internString(s, string(mem.Bytes())), nil
		}},
		{"close-port", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsPort() {
				return value.Null, typeErr("close-port", "port", firstOr(a))
			}
			return value.Null, asPort(a[0]).Close()
		}},
		{"port?", predicate(func(v value.Value) bool { return v.IsPort() })},
		{"read", func(s *vm.State, rib value.Value) (value.Value, error) {
			p, err := inputPortOrDefault(g, args(rib), 0, "read")
			if err != nil {
				return value.Null, err
			}
			r := reader.New(s.Heap, p, g.Symbols, g.Strings)
			return r.Read()
		}},
	}
}

// asPort type-asserts a Value's heap object to *port.Port, the way
// vm.go's asTable/asClosure/asContinuation do for kinds defined outside
// package value.
func asPort(v value.Value) *port.Port {
	obj, _ := v.Object()
	return obj.(*port.Port)
}

func writer(g *runtime.Global, name string, emit func(*port.Port, value.Value) error) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		if len(a) == 0 {
			return value.Null, arityErr(name, 1, 0)
		}
		p, err := outputPortOrDefault(g, a, 1, name)
		if err != nil {
			return value.Null, err
		}
		return value.Null, emit(p, a[0])
	}
}

// outputPortOrDefault returns a[idx] as a port if present, else the
// global's current-output-port, the way display/write/newline's
// optional trailing port argument works in R7RS.
func outputPortOrDefault(g *runtime.Global, a []value.Value, idx int, name string) (*port.Port, error) {
	if len(a) > idx {
		if !a[idx].IsPort() {
			return nil, typeErr(name, "port", a[idx])
		}
		return asPort(a[idx]), nil
	}
	if g.Stdout == nil {
		return nil, badResource(name, "no default output port set")
	}
	return g.Stdout, nil
}

func inputPortOrDefault(g *runtime.Global, a []value.Value, idx int, name string) (*port.Port, error) {
	if len(a) > idx {
		if !a[idx].IsPort() {
			return nil, typeErr(name, "port", a[idx])
		}
		return asPort(a[idx]), nil
	}
	if g.Stdin == nil {
		return nil, badResource(name, "no default input port set")
	}
	return g.Stdin, nil
}
