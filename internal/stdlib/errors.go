package stdlib

import (
	"fmt"

	"europa/internal/value"
	"europa/internal/vm"
)

// arityErr and typeErr build the same *vm.RuntimeError the VM itself
// raises for ASSIGN/APPLY failures, so a builtin's error is
// indistinguishable from a VM-raised one once it reaches recover.
func arityErr(name string, want, got int) error {
	return &vm.RuntimeError{Flag: value.ErrBadArgument, Msg: fmt.Sprintf("%s: expected %d argument(s), got %d", name, want, got)}
}

func typeErr(name, expected string, got value.Value) error {
	return &vm.RuntimeError{Flag: value.ErrBadArgument, Msg: fmt.Sprintf("%s: expected %s, got %s", name, expected, kindName(got))}
}

func badResource(name, msg string) error {
	return &vm.RuntimeError{Flag: value.ErrBadResource, Msg: fmt.Sprintf("%s: %s", name, msg)}
}

func kindName(v value.Value) string {
	switch {
	case v.IsNull():
		return "()"
	case v.IsBoolean():
		return "boolean"
	case v.IsFixnum():
		return "fixnum"
	case v.IsReal():
		return "real"
	case v.IsCharacter():
		return "character"
	case v.IsEOF():
		return "eof"
	case v.IsPair():
		return "pair"
	case v.IsSymbol():
		return "symbol"
	case v.IsString():
		return "string"
	case v.IsVector():
		return "vector"
	case v.IsBytevector():
		return "bytevector"
	case v.IsTable():
		return "table"
	case v.IsPort():
		return "port"
	case v.IsClosure():
		return "procedure"
	case v.IsContinuation():
		return "continuation"
	case v.IsError():
		return "error"
	default:
		return "value"
	}
}
