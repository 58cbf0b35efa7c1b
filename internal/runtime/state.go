package runtime

import (
	"fmt"

	"europa/internal/compiler"
	"europa/internal/port"
	"europa/internal/reader"
	"europa/internal/value"
	"europa/internal/vm"
)

// State is one europa_new-style handle: a Global plus the pending error
// (or lack of one) that recover reports. Unlike the original, a State
// does not carry its own jump list — Protected's recover() already
// unwinds back to wherever it was called from, and every entry point
// below (DoString, DoFile) runs its body through Protected itself.
type State struct {
	Global *Global

	pending *vm.RuntimeError
}

// NewState opens a fresh handle onto g; spec.md treats "new" as
// allocating both a Global and its main state together, but nothing
// here prevents opening more than one State against the same Global
// (so long as callers respect §5's single-runner-at-a-time rule).
func (g *Global) NewState() *State {
	return &State{Global: g}
}

// Terminate finalizes the state's global, per spec.md §6. A State has no
// resources of its own beyond its Global.
func (s *State) Terminate() { s.Global.Terminate() }

// Protected runs fn and converts any panic escaping it into a bad-alloc
// RuntimeError, mirroring original_source/src/runtime.c's
// europa_runtime_run_protected: the jump list there exists so a deeply
// nested eu_error/longjmp can unwind to the nearest protected frame
// without every intermediate caller checking a status code by hand. Go's
// error return already does that unwinding; Protected's only remaining
// job is to catch the failure modes Go itself signals by panicking
// (index out of range, nil dereference) so they surface as a recoverable
// error instead of crashing the embedding host.
func Protected(fn func() (value.Value, error)) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = value.Null
			err = &vm.RuntimeError{Flag: value.ErrBadAlloc, Msg: fmt.Sprintf("fatal: %v", r)}
		}
	}()
	return fn()
}

// DoString reads every datum out of text, compiles them as one program,
// and runs it to completion, returning the last form's value — spec.md
// §4.7's "read -> compile -> VM under the protected-call wrapper", and
// §6's do_string.
func (s *State) DoString(text string) (value.Value, error) {
	out, err := Protected(func() (value.Value, error) {
		p := port.New(s.Global.Heap, port.Input|port.Textual, port.NewMemoryBackend([]byte(text)))
		return s.runPort(p)
	})
	return out, s.record(err)
}

// DoFile is DoString over a file's contents instead of an in-memory
// buffer (spec.md §6's do_file).
func (s *State) DoFile(path string) (value.Value, error) {
	out, err := Protected(func() (value.Value, error) {
		backend, err := port.OpenInputFile(path)
		if err != nil {
			return value.Null, &vm.RuntimeError{Flag: value.ErrBadResource, Msg: err.Error()}
		}
		p := port.New(s.Global.Heap, port.Input|port.Textual, backend)
		defer p.Close()
		return s.runPort(p)
	})
	return out, s.record(err)
}

// record stashes err as the pending error Recover later reports, the way
// an unrecovered do_string/do_file leaves the state in an error status
// per spec.md §7. A nil err clears nothing — callers see the previous
// pending error (if any) until they explicitly Recover it, matching "the
// REPL prints the message and clears the error to continue" rather than
// a successful call silently erasing history of an earlier failure.
func (s *State) record(err error) error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*vm.RuntimeError); ok {
		s.pending = re
	} else {
		s.pending = &vm.RuntimeError{Flag: value.ErrNone, Msg: err.Error()}
	}
	return err
}

// SetError raises an error on the state directly, for native built-ins
// and embedding hosts that want to report a failure without going
// through DoString/DoFile (spec.md §6's set_error).
func (s *State) SetError(flag value.ErrorFlag, nested *vm.RuntimeError, text string) {
	s.pending = &vm.RuntimeError{Flag: flag, Msg: text, Nested: nested}
}

// SetErrorf is SetError with Printf-style formatting.
func (s *State) SetErrorf(flag value.ErrorFlag, format string, args ...interface{}) {
	s.SetError(flag, nil, fmt.Sprintf(format, args...))
}

// Recover pops the pending error (if any) and returns its heap
// representation, clearing it so the state can continue — spec.md §6's
// recover and §7's "the REPL prints the message and clears the error to
// continue".
func (s *State) Recover() (*value.Error, bool) {
	if s.pending == nil {
		return nil, false
	}
	re := s.pending
	s.pending = nil
	return re.ToValue(s.Global.Heap), true
}

func (s *State) runPort(p *port.Port) (value.Value, error) {
	r := reader.New(s.Global.Heap, p, s.Global.Symbols, s.Global.Strings)

	var forms []value.Value
	for {
		v, err := r.Read()
		if err != nil {
			if se, ok := err.(*reader.SyntaxError); ok {
				return value.Null, s.fromReaderError(se)
			}
			return value.Null, err
		}
		if v.IsEOF() {
			break
		}
		forms = append(forms, v)
	}

	proto, err := compiler.CompileProgram(s.Global.Heap, forms)
	if err != nil {
		return value.Null, &vm.RuntimeError{Flag: value.ErrRead, Msg: err.Error()}
	}

	cl := vm.NewClosure(s.Global.Heap, proto, s.Global.Env)
	vs := vm.NewState(s.Global.Heap)
	vs.Closure = cl
	vs.Env = s.Global.Env
	vs.PC = 0
	return vm.Run(vs)
}

func (s *State) fromReaderError(se *reader.SyntaxError) *vm.RuntimeError {
	return &vm.RuntimeError{Flag: value.ErrRead, Msg: se.Error()}
}

// RegisterStandardLibrary binds every built-in (pair, list, number,
// boolean, string, symbol, port, control) into the global environment —
// spec.md §6's register_standard_library. The registration functions
// themselves live in package stdlib to keep this package focused on
// state/lifecycle plumbing; callers import both.
func (s *State) RegisterStandardLibrary(register func(*Global)) {
	register(s.Global)
}

// SetStandardPorts binds stdin/stdout/stderr file ports wrapping the
// embedding process's own standard streams (spec.md §6's
// set_standard_ports) and records them on the Global so native built-ins
// (current-output-port and friends) can find them without another
// environment lookup.
func (s *State) SetStandardPorts(stdin, stdout, stderr *port.Port) {
	s.Global.Stdin, s.Global.Stdout, s.Global.Stderr = stdin, stdout, stderr
	s.Global.Bind("@@stdin", value.FromObject(stdin))
	s.Global.Bind("@@stdout", value.FromObject(stdout))
	s.Global.Bind("@@stderr", value.FromObject(stderr))
}
