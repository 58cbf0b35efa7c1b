package runtime

import (
	"testing"

	"europa/internal/value"
)

func TestDoStringEvaluatesLastForm(t *testing.T) {
	g := New()
	s := g.NewState()
	v, err := s.DoString("(begin (define x 40) (set! x (if x (lambda (y) y) 0)) (x 2))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsFixnum() || v.AsFixnum() != 2 {
		t.Fatalf("got %+v", v)
	}
}

func TestDoStringMultipleTopLevelFormsReturnsLast(t *testing.T) {
	g := New()
	s := g.NewState()
	v, err := s.DoString("1 2 3")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsFixnum() || v.AsFixnum() != 3 {
		t.Fatalf("got %+v", v)
	}
}

func TestDoStringSyntaxErrorIsRecoverable(t *testing.T) {
	g := New()
	s := g.NewState()
	_, err := s.DoString("(1 2")
	if err == nil {
		t.Fatal("expected an error for an unterminated list")
	}
	ev, ok := s.Recover()
	if !ok {
		t.Fatal("expected a pending error to recover")
	}
	if ev.Flags != value.ErrRead {
		t.Fatalf("got flag %v, want ErrRead", ev.Flags)
	}
	if _, ok := s.Recover(); ok {
		t.Fatal("Recover should clear the pending error")
	}
}

func TestDoStringUnboundVariableIsRecoverable(t *testing.T) {
	g := New()
	s := g.NewState()
	_, err := s.DoString("never-bound")
	if err == nil {
		t.Fatal("expected an unbound-variable error")
	}
	if _, ok := s.Recover(); !ok {
		t.Fatal("expected a pending error")
	}
}

func TestBindMakesDefineVisibleInDoString(t *testing.T) {
	g := New()
	g.Bind("answer", value.Fixnum(42))
	s := g.NewState()
	v, err := s.DoString("answer")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsFixnum() || v.AsFixnum() != 42 {
		t.Fatalf("got %+v", v)
	}
}

func TestInternSymbolIsStableAcrossCallsAndDoString(t *testing.T) {
	g := New()
	a := g.InternSymbol("car")
	b := g.InternSymbol("car")
	if a.AsSymbol() != b.AsSymbol() {
		t.Fatal("InternSymbol should return the same heap object for the same text")
	}
}
