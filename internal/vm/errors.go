package vm

import (
	"fmt"

	"europa/internal/gcheap"
	"europa/internal/value"
)

// RuntimeError is a VM-raised condition: a status-code flag from §7's
// taxonomy plus a message and an optional nested cause, mirroring the
// error payload eu_set_error attaches to the state.
type RuntimeError struct {
	Flag   value.ErrorFlag
	Msg    string
	Nested *RuntimeError
}

func (e *RuntimeError) Error() string { return e.Msg }

// ToValue allocates the heap representation of this error (for
// (recover), (error-object-message), (raise)), recursing through any
// nested cause.
func (e *RuntimeError) ToValue(h *gcheap.Heap) *value.Error {
	msg := value.NewString(e.Msg, value.FNV1a(e.Msg))
	h.Track(msg)
	var nested *value.Error
	if e.Nested != nil {
		nested = e.Nested.ToValue(h)
	}
	ev := value.NewError(msg, nested, e.Flag)
	h.Track(ev)
	return ev
}

func errf(flag value.ErrorFlag, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Flag: flag, Msg: fmt.Sprintf(format, args...)}
}

func typeError(format string, args ...interface{}) *RuntimeError {
	return errf(value.ErrBadArgument, format, args...)
}

func unboundError(name string) *RuntimeError {
	return errf(value.ErrInvalid, "unbound variable: %s", name)
}

func arityError(name string, want, got int) *RuntimeError {
	return errf(value.ErrBadArgument, "%s: expected %d argument(s), got %d", name, want, got)
}
