package stdlib

import (
	"testing"

	"europa/internal/runtime"
	"europa/internal/value"
)

func evalWithStdlib(t *testing.T, src string) value.Value {
	t.Helper()
	g := runtime.New()
	Register(g)
	s := g.NewState()
	v, err := s.DoString(src)
	if err != nil {
		t.Fatalf("%q: %v", src, err)
	}
	return v
}

func TestArithmeticBuiltins(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"(+ 1 2 3)", 6},
		{"(* 2 3 4)", 24},
		{"(- 10 3 2)", 5},
		{"(quotient 17 5)", 3},
		{"(remainder 17 5)", 2},
		{"(modulo -7 3)", 2},
	}
	for _, c := range cases {
		v := evalWithStdlib(t, c.src)
		if !v.IsFixnum() || v.AsFixnum() != c.want {
			t.Fatalf("%s: got %+v, want %d", c.src, v, c.want)
		}
	}
}

func TestComparisonBuiltins(t *testing.T) {
	v := evalWithStdlib(t, "(< 1 2 3)")
	if v.IsFalse() {
		t.Fatal("expected #t")
	}
	v = evalWithStdlib(t, "(< 1 3 2)")
	if !v.IsFalse() {
		t.Fatal("expected #f")
	}
}

func TestListBuiltins(t *testing.T) {
	v := evalWithStdlib(t, "(car (cdr (list 1 2 3)))")
	if !v.IsFixnum() || v.AsFixnum() != 2 {
		t.Fatalf("got %+v", v)
	}
	v = evalWithStdlib(t, "(length (append (list 1 2) (list 3 4 5)))")
	if !v.IsFixnum() || v.AsFixnum() != 5 {
		t.Fatalf("got %+v", v)
	}
}

func TestMapAndForEachCallBackIntoScheme(t *testing.T) {
	v := evalWithStdlib(t, "(car (map (lambda (x) (* x x)) (list 1 2 3)))")
	if !v.IsFixnum() || v.AsFixnum() != 1 {
		t.Fatalf("got %+v", v)
	}
	v = evalWithStdlib(t, "(car (cdr (map (lambda (x) (* x x)) (list 1 2 3))))")
	if !v.IsFixnum() || v.AsFixnum() != 4 {
		t.Fatalf("got %+v", v)
	}
}

func TestApplyBuiltin(t *testing.T) {
	v := evalWithStdlib(t, "(apply + 1 2 (list 3 4))")
	if !v.IsFixnum() || v.AsFixnum() != 10 {
		t.Fatalf("got %+v", v)
	}
}

func TestStringBuiltins(t *testing.T) {
	v := evalWithStdlib(t, `(string-append "foo" "bar")`)
	if !v.IsString() || v.AsString().Text != "foobar" {
		t.Fatalf("got %+v", v)
	}
	v = evalWithStdlib(t, `(string->number "42")`)
	if !v.IsFixnum() || v.AsFixnum() != 42 {
		t.Fatalf("got %+v", v)
	}
}

func TestEquivalencePredicates(t *testing.T) {
	v := evalWithStdlib(t, "(equal? (list 1 2) (list 1 2))")
	if v.IsFalse() {
		t.Fatal("expected #t for structurally equal lists")
	}
	v = evalWithStdlib(t, "(eq? (list 1 2) (list 1 2))")
	if !v.IsFalse() {
		t.Fatal("expected #f: distinct pairs are not eq?")
	}
}

func TestGensymProducesDistinctSymbols(t *testing.T) {
	v := evalWithStdlib(t, "(eq? (gensym) (gensym))")
	if !v.IsFalse() {
		t.Fatal("expected #f: two gensym calls must not collide")
	}
}

func TestVectorBuiltins(t *testing.T) {
	v := evalWithStdlib(t, "(vector-ref (vector 10 20 30) 1)")
	if !v.IsFixnum() || v.AsFixnum() != 20 {
		t.Fatalf("got %+v", v)
	}
	v = evalWithStdlib(t, `
		(begin
		  (define v (make-vector 3 0))
		  (vector-set! v 1 99)
		  (vector-ref v 1))`)
	if !v.IsFixnum() || v.AsFixnum() != 99 {
		t.Fatalf("got %+v", v)
	}
	v = evalWithStdlib(t, "(vector-length (list->vector (list 1 2 3 4)))")
	if !v.IsFixnum() || v.AsFixnum() != 4 {
		t.Fatalf("got %+v", v)
	}
}

func TestTableBuiltins(t *testing.T) {
	v := evalWithStdlib(t, `
		(begin
		  (define t (make-table))
		  (table-set! t 'x 42)
		  (table-ref t 'x))`)
	if !v.IsFixnum() || v.AsFixnum() != 42 {
		t.Fatalf("got %+v", v)
	}
	v = evalWithStdlib(t, "(table-ref (make-table) 'missing 'fallback)")
	if !v.IsSymbol() || v.AsSymbol().Text != "fallback" {
		t.Fatalf("got %+v", v)
	}
}

func TestErrorRaisesRecoverableMessage(t *testing.T) {
	g := runtime.New()
	Register(g)
	s := g.NewState()
	_, err := s.DoString(`(error "boom")`)
	if err == nil {
		t.Fatal("expected (error \"boom\") to raise")
	}
	ev, ok := s.Recover()
	if !ok {
		t.Fatal("expected a recoverable error")
	}
	if ev.Message.Text != "boom" {
		t.Fatalf("got message %q", ev.Message.Text)
	}
}

func TestOpenOutputPortRejectsUnknownTag(t *testing.T) {
	g := runtime.New()
	Register(g)
	s := g.NewState()
	_, err := s.DoString(`(open-output-port 'carrier-pigeon "nowhere")`)
	if err == nil {
		t.Fatal("expected an unknown port backend tag to raise")
	}
}

func TestOutputStringPortCapturesDisplay(t *testing.T) {
	v := evalWithStdlib(t, `(begin (define p (open-output-string)) (display 42 p) (get-output-string p))`)
	if !v.IsString() || v.AsString().Text != "42" {
		t.Fatalf("got %+v", v)
	}
}

// TestCollectGarbageKeepsRunningStateAlive guards against collect-garbage
// sweeping the calling State's own live environment. f's local binding of
// x is reachable only through the running State's Env at the point
// (collect-garbage) runs, not through anything g.Env roots; a collector
// call that forgets to pass the State's root set would finalize that
// environment's table mid-call and x would come back wrong (or panic).
func TestCollectGarbageKeepsRunningStateAlive(t *testing.T) {
	v := evalWithStdlib(t, `
		(begin
		  (define (f x)
		    (collect-garbage)
		    x)
		  (f 42))`)
	if !v.IsFixnum() || v.AsFixnum() != 42 {
		t.Fatalf("got %+v, want 42 (collect-garbage corrupted the local binding)", v)
	}
}
