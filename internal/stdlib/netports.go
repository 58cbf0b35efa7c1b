package stdlib

import (
	"fmt"
	"time"

	"europa/internal/netport"
	"europa/internal/port"
	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// dialTimeout bounds (open-*-port 'tcp ...)/(open-*-port 'ws ...) the way
// the teacher's network tools never block a script forever on a dead
// host.
const dialTimeout = 10 * time.Second

// netportBuiltins implements (open-output-port tag ...)/(open-input-port
// tag ...), dispatching a symbol tag ('tcp or 'ws) to netport.DialTCP or
// netport.DialWebSocket and wrapping the resulting port.Backend with
// port.New, the same way callers wrap the backends returned by
// port.OpenInputFile/port.NewMemoryBackend (SPEC_FULL.md §B.1).
func netportBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"open-output-port", openNetPort(port.Output)},
		{"open-input-port", openNetPort(port.Input)},
	}
}

func openNetPort(flags port.Flags) vm.NativeFunc {
	name := "open-output-port"
	if flags.Has(port.Input) {
		name = "open-input-port"
	}
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		if len(a) < 2 || !a[0].IsSymbol() || !a[1].IsString() {
			return value.Null, typeErr(name, "tag (symbol) and address (string)", firstOr(a))
		}
		backend, err := dialBackend(a[0].AsSymbol().Text, a[1].AsString().Text)
		if err != nil {
			return value.Null, badResource(name, err.Error())
		}
		p := port.New(s.Heap, flags|port.Textual, backend)
		return value.FromObject(p), nil
	}
}

// dialBackend resolves the 'tcp/'ws tag to the matching netport dialer;
// any other tag is a bad-resource error rather than a silent fallback.
func dialBackend(tag, address string) (port.Backend, error) {
	switch tag {
	case "tcp":
		return netport.DialTCP(address, dialTimeout)
	case "ws":
		return netport.DialWebSocket(address, dialTimeout)
	default:
		return nil, fmt.Errorf("unknown port backend tag %q", tag)
	}
}
