// Package compiler lowers a datum (as produced by package reader) into a
// bytecode.Prototype, following the single-pass scheme described in
// spec.md §4.4: compile/compile_application dispatch on datum shape,
// special forms are recognized by head symbol text, and everything else
// is an application. Grounded on original_source/src/code.c's structure
// (one compile function per form, explicit tail-position threading,
// back-patched jump offsets) translated into idiomatic Go control flow.
package compiler

import (
	"fmt"

	"europa/internal/bytecode"
	"europa/internal/gcheap"
	"europa/internal/value"
)

// CompileError reports a failure to lower a form, carrying the offending
// datum for a caller that wants to print it back (display/write).
type CompileError struct {
	Datum value.Value
	Msg   string
}

func (e *CompileError) Error() string { return e.Msg }

func errf(format string, args ...interface{}) error {
	return &CompileError{Msg: fmt.Sprintf(format, args...)}
}

func errOn(datum value.Value, format string, args ...interface{}) error {
	return &CompileError{Datum: datum, Msg: fmt.Sprintf(format, args...)}
}

// compiler carries the heap prototypes are tracked on; it holds no other
// mutable state; the recursion itself carries prototype and tail-ness.
type compiler struct {
	heap *gcheap.Heap
}

// CompileProgram compiles a sequence of top-level forms (as read one at a
// time by do_string/do_file) into a single prototype whose body is an
// implicit begin, terminated by HALT rather than RETURN since nothing
// called it from within the VM (spec.md §6's outermost frame).
func CompileProgram(h *gcheap.Heap, forms []value.Value) (*bytecode.Prototype, error) {
	c := &compiler{heap: h}
	proto := bytecode.NewPrototype(h, value.Null, value.SliceToList(forms))
	if len(forms) == 0 {
		proto.Emit(bytecode.Encode(bytecode.HALT, 0))
		return proto, nil
	}
	for i, form := range forms {
		tail := i == len(forms)-1
		if err := c.compile(proto, form, tail); err != nil {
			return nil, err
		}
	}
	proto.Emit(bytecode.Encode(bytecode.HALT, 0))
	return proto, nil
}

// compile lowers one datum, dispatching on its shape: self-evaluating
// literals emit CONST, symbols emit REFER, and pairs are either a
// recognized special form or an application.
func (c *compiler) compile(proto *bytecode.Prototype, datum value.Value, tail bool) error {
	switch {
	case datum.IsSymbol():
		idx := proto.AddConstant(datum)
		proto.Emit(bytecode.Encode(bytecode.REFER, idx))
		return nil
	case datum.IsPair():
		return c.compilePair(proto, datum, tail)
	case datum.IsNull():
		return errOn(datum, "cannot evaluate (): the empty list is not self-evaluating")
	default:
		idx := proto.AddConstant(datum)
		proto.Emit(bytecode.Encode(bytecode.CONST, idx))
		return nil
	}
}

func (c *compiler) compilePair(proto *bytecode.Prototype, datum value.Value, tail bool) error {
	pr := datum.AsPair()
	if pr.Head.IsSymbol() {
		switch pr.Head.AsSymbol().Text {
		case "quote":
			return c.compileQuote(proto, datum, pr.Tail)
		case "lambda":
			return c.compileLambda(proto, datum, pr.Tail)
		case "if":
			return c.compileIf(proto, datum, pr.Tail, tail)
		case "set!":
			return c.compileSet(proto, datum, pr.Tail)
		case "define":
			return c.compileDefine(proto, datum, pr.Tail)
		case "begin":
			return c.compileBegin(proto, datum, pr.Tail, tail)
		case "call/cc", "call-with-current-continuation":
			return c.compileCallCC(proto, datum, pr.Tail, tail)
		}
	}
	return c.compileApplication(proto, datum, tail)
}

// listArgs returns the proper-list elements of v, erroring if v is not a
// proper list (every special form's argument list must be proper).
func listArgs(datum, v value.Value, context string) ([]value.Value, error) {
	items, ok := value.ListToSlice(v)
	if !ok {
		return nil, errOn(datum, "%s: expected a proper list of arguments", context)
	}
	return items, nil
}
