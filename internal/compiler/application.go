package compiler

import (
	"europa/internal/bytecode"
	"europa/internal/value"
)

// compileApplication implements procedure application (op arg...): if
// not in tail position a FRAME is pushed first so the call returns here;
// each argument is compiled left to right and appended to the rib via
// ARGUMENT, then the operator is compiled and APPLY dispatches on its
// runtime kind (closure, continuation, or table).
func (c *compiler) compileApplication(proto *bytecode.Prototype, datum value.Value, tail bool) error {
	pr := datum.AsPair()
	args, ok := value.ListToSlice(pr.Tail)
	if !ok {
		return errOn(datum, "application: expected a proper list")
	}

	var frameAt int
	if !tail {
		frameAt = proto.Emit(bytecode.EncodeOffset(bytecode.FRAME, 0))
	}

	for _, arg := range args {
		if err := c.compile(proto, arg, false); err != nil {
			return err
		}
		proto.Emit(bytecode.Encode(bytecode.ARGUMENT, 0))
	}

	if err := c.compile(proto, pr.Head, false); err != nil {
		return err
	}

	proto.Emit(bytecode.Encode(bytecode.APPLY, len(args)))

	if !tail {
		proto.Patch(frameAt, bytecode.EncodeOffset(bytecode.FRAME, proto.Here()-frameAt))
	}
	return nil
}
