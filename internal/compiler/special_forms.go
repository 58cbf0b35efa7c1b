package compiler

import (
	"europa/internal/bytecode"
	"europa/internal/value"
)

// compileQuote implements (quote datum): the argument is never evaluated,
// only added to the constant pool verbatim.
func (c *compiler) compileQuote(proto *bytecode.Prototype, datum, args value.Value) error {
	items, err := listArgs(datum, args, "quote")
	if err != nil {
		return err
	}
	if len(items) != 1 {
		return errOn(datum, "quote expects exactly 1 argument, got %d", len(items))
	}
	idx := proto.AddConstant(items[0])
	proto.Emit(bytecode.Encode(bytecode.CONST, idx))
	return nil
}

// validateFormals accepts the three shapes spec.md §4.4 requires: a bare
// symbol (fully variadic), a proper list of symbols (fixed arity), or an
// improper list of symbols (fixed-plus-rest).
func validateFormals(datum, formals value.Value) error {
	if formals.IsSymbol() {
		return nil
	}
	cur := formals
	for cur.IsPair() {
		if !cur.AsPair().Head.IsSymbol() {
			return errOn(datum, "lambda formals must be symbols")
		}
		cur = cur.AsPair().Tail
	}
	if !cur.IsNull() && !cur.IsSymbol() {
		return errOn(datum, "lambda formals must end in a symbol or the empty list")
	}
	return nil
}

// compileLambda implements (lambda formals body+): wraps body in an
// implicit begin, compiles it into a fresh sub-prototype ending in
// RETURN, and emits CLOSE over it.
func (c *compiler) compileLambda(proto *bytecode.Prototype, datum, args value.Value) error {
	items, err := listArgs(datum, args, "lambda")
	if err != nil {
		return err
	}
	if len(items) < 2 {
		return errOn(datum, "lambda expects formals and at least one body expression")
	}
	formals, body := items[0], items[1:]
	if err := validateFormals(datum, formals); err != nil {
		return err
	}

	sub := bytecode.NewPrototype(c.heap, formals, datum)
	if err := c.compileBody(sub, body, true); err != nil {
		return err
	}
	sub.Emit(bytecode.Encode(bytecode.RETURN, 0))

	idx := proto.AddSubProto(sub)
	proto.Emit(bytecode.Encode(bytecode.CLOSE, idx))
	return nil
}

// compileBody compiles a sequence of body expressions, only the last of
// which inherits tail, exactly as begin does — lambda bodies and begin
// share this logic (an implicit begin, per spec.md §4.4).
func (c *compiler) compileBody(proto *bytecode.Prototype, body []value.Value, tail bool) error {
	for i, form := range body {
		isLast := i == len(body)-1
		if err := c.compile(proto, form, isLast && tail); err != nil {
			return err
		}
	}
	return nil
}

// compileIf implements (if test then [else]), back-patching the TEST
// (and, if an else branch is present, the JUMP past it) once the target
// offsets are known.
func (c *compiler) compileIf(proto *bytecode.Prototype, datum, args value.Value, tail bool) error {
	items, err := listArgs(datum, args, "if")
	if err != nil {
		return err
	}
	if len(items) != 2 && len(items) != 3 {
		return errOn(datum, "if expects 2 or 3 arguments, got %d", len(items))
	}

	if err := c.compile(proto, items[0], false); err != nil {
		return err
	}

	testAt := proto.Emit(bytecode.EncodeOffset(bytecode.TEST, 0))

	if err := c.compile(proto, items[1], tail); err != nil {
		return err
	}

	if len(items) == 2 {
		proto.Patch(testAt, bytecode.EncodeOffset(bytecode.TEST, proto.Here()-testAt))
		return nil
	}

	jumpAt := proto.Emit(bytecode.EncodeOffset(bytecode.JUMP, 0))
	proto.Patch(testAt, bytecode.EncodeOffset(bytecode.TEST, proto.Here()-testAt))

	if err := c.compile(proto, items[2], tail); err != nil {
		return err
	}
	proto.Patch(jumpAt, bytecode.EncodeOffset(bytecode.JUMP, proto.Here()-jumpAt))
	return nil
}

// compileSet implements (set! symbol value).
func (c *compiler) compileSet(proto *bytecode.Prototype, datum, args value.Value) error {
	items, err := listArgs(datum, args, "set!")
	if err != nil {
		return err
	}
	if len(items) != 2 {
		return errOn(datum, "set! expects exactly 2 arguments, got %d", len(items))
	}
	if !items[0].IsSymbol() {
		return errOn(datum, "set! expects a symbol as its first argument")
	}
	if err := c.compile(proto, items[1], false); err != nil {
		return err
	}
	idx := proto.AddConstant(items[0])
	proto.Emit(bytecode.Encode(bytecode.ASSIGN, idx))
	return nil
}

// compileDefine implements both (define name expr) and the procedure
// shorthand (define (name args...) body...), which it rewrites to
// (define name (lambda (args...) body...)) before compiling.
func (c *compiler) compileDefine(proto *bytecode.Prototype, datum, args value.Value) error {
	items, err := listArgs(datum, args, "define")
	if err != nil {
		return err
	}
	if len(items) < 1 {
		return errOn(datum, "define expects at least a name")
	}

	if items[0].IsPair() {
		head := items[0].AsPair()
		if !head.Head.IsSymbol() {
			return errOn(datum, "define: procedure name must be a symbol")
		}
		name := head.Head
		formals := head.Tail
		body := items[1:]
		if len(body) == 0 {
			return errOn(datum, "define: procedure shorthand requires at least one body expression")
		}
		lambdaArgs := makeLambdaArgs(formals, body)
		idx := proto.AddConstant(name)
		if err := c.compileLambda(proto, datum, lambdaArgs); err != nil {
			return err
		}
		proto.Emit(bytecode.Encode(bytecode.DEFINE, idx))
		return nil
	}

	if !items[0].IsSymbol() {
		return errOn(datum, "define: name must be a symbol")
	}
	if len(items) != 2 {
		return errOn(datum, "define expects exactly a name and a value expression")
	}
	if err := c.compile(proto, items[1], false); err != nil {
		return err
	}
	idx := proto.AddConstant(items[0])
	proto.Emit(bytecode.Encode(bytecode.DEFINE, idx))
	return nil
}

// makeLambdaArgs assembles the (formals body...) list compileLambda
// expects as its args parameter, used by the define-shorthand rewrite:
// (define (name . formals) body...) => (define name (lambda formals body...)).
func makeLambdaArgs(formals value.Value, body []value.Value) value.Value {
	bodyList := value.SliceToList(body)
	pr := value.NewPair(formals, bodyList)
	return value.FromObject(pr)
}

// compileBegin implements (begin expr+): only the last expression
// inherits the enclosing tail-ness.
func (c *compiler) compileBegin(proto *bytecode.Prototype, datum, args value.Value, tail bool) error {
	items, err := listArgs(datum, args, "begin")
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errOn(datum, "begin expects at least one expression")
	}
	return c.compileBody(proto, items, tail)
}

// compileCallCC implements (call/cc proc) / (call-with-current-continuation
// proc). The FRAME is emitted after CONTI (not before) so that invoking
// the reified continuation later does not also restore the stale frame
// that was about to be pushed for this call (spec.md §4.4's explicit
// ordering requirement).
func (c *compiler) compileCallCC(proto *bytecode.Prototype, datum, args value.Value, tail bool) error {
	items, err := listArgs(datum, args, "call/cc")
	if err != nil {
		return err
	}
	if len(items) != 1 {
		return errOn(datum, "call/cc expects exactly 1 argument, got %d", len(items))
	}

	contiAt := proto.Emit(bytecode.EncodeOffset(bytecode.CONTI, 0))

	var frameAt int
	if !tail {
		frameAt = proto.Emit(bytecode.EncodeOffset(bytecode.FRAME, 0))
	}

	proto.Emit(bytecode.Encode(bytecode.ARGUMENT, 0))

	if err := c.compile(proto, items[0], false); err != nil {
		return err
	}

	proto.Emit(bytecode.Encode(bytecode.APPLY, 0))

	if !tail {
		proto.Patch(frameAt, bytecode.EncodeOffset(bytecode.FRAME, proto.Here()-frameAt))
	}
	proto.Patch(contiAt, bytecode.EncodeOffset(bytecode.CONTI, proto.Here()-contiAt))
	return nil
}
