package reader

import (
	"testing"

	"europa/internal/gcheap"
	"europa/internal/port"
	"europa/internal/table"
	"europa/internal/value"
)

func newTestReader(t *testing.T, src string) *Reader {
	t.Helper()
	h := gcheap.New()
	p := port.New(h, port.Input|port.Textual, port.NewMemoryBackend([]byte(src)))
	globalSymbols := table.New(h, 0)
	globalStrings := table.New(h, 0)
	return New(h, p, globalSymbols, globalStrings)
}

func TestReadSimpleList(t *testing.T) {
	r := newTestReader(t, "(1 2 3)")
	v, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	items, ok := value.ListToSlice(v)
	if !ok || len(items) != 3 {
		t.Fatalf("got %+v, ok=%v", items, ok)
	}
	for i, want := range []int64{1, 2, 3} {
		if items[i].AsFixnum() != want {
			t.Fatalf("items[%d] = %d, want %d", i, items[i].AsFixnum(), want)
		}
	}
}

func TestReadDottedPair(t *testing.T) {
	r := newTestReader(t, "(1 . 2)")
	v, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsPair() {
		t.Fatal("expected pair")
	}
	pr := v.AsPair()
	if pr.Head.AsFixnum() != 1 || pr.Tail.AsFixnum() != 2 {
		t.Fatalf("got (%v . %v)", pr.Head, pr.Tail)
	}
}

func TestReadBinaryExactInteger(t *testing.T) {
	r := newTestReader(t, "#b-1001")
	v, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsFixnum() || v.AsFixnum() != -9 {
		t.Fatalf("got %+v", v)
	}
}

func TestReadBinaryInexactReal(t *testing.T) {
	r := newTestReader(t, "#b#i1001.1")
	v, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsReal() || v.AsReal() != 9.5 {
		t.Fatalf("got %+v", v)
	}
}

func TestReadStringWithHexEscape(t *testing.T) {
	r := newTestReader(t, `"escaped \x35;\n"`)
	v, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsString() || v.AsString().Text != "escaped 5\n" {
		t.Fatalf("got %q", v.AsString().Text)
	}
}

func TestReadSymbolInterningIsCanonical(t *testing.T) {
	h := gcheap.New()
	globalSymbols := table.New(h, 0)
	globalStrings := table.New(h, 0)

	p1 := port.New(h, port.Input|port.Textual, port.NewMemoryBackend([]byte("foo")))
	r1 := New(h, p1, globalSymbols, globalStrings)
	v1, err := r1.Read()
	if err != nil {
		t.Fatal(err)
	}

	p2 := port.New(h, port.Input|port.Textual, port.NewMemoryBackend([]byte("foo")))
	r2 := New(h, p2, globalSymbols, globalStrings)
	v2, err := r2.Read()
	if err != nil {
		t.Fatal(err)
	}

	if !value.Eq(v1, v2) {
		t.Fatal("expected identical symbol objects across readers")
	}
}

func TestReadQuoteAbbreviation(t *testing.T) {
	r := newTestReader(t, "'(a b)")
	v, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	items, ok := value.ListToSlice(v)
	if !ok || len(items) != 2 {
		t.Fatalf("got %+v", items)
	}
	if !items[0].IsSymbol() || items[0].AsSymbol().Text != "quote" {
		t.Fatalf("got %+v", items[0])
	}
}

func TestReadVectorAndBytevector(t *testing.T) {
	r := newTestReader(t, "#(1 2 3)")
	v, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsVector() || len(v.AsVector().Data) != 3 {
		t.Fatalf("got %+v", v)
	}

	r2 := newTestReader(t, "#u8(0 255 128)")
	v2, err := r2.Read()
	if err != nil {
		t.Fatal(err)
	}
	bv := v2.AsBytevector()
	if len(bv.Data) != 3 || bv.Data[1] != 255 {
		t.Fatalf("got %+v", bv.Data)
	}
}

func TestReadCharacterNames(t *testing.T) {
	r := newTestReader(t, `#\space #\newline #\a`)
	want := []rune{' ', '\n', 'a'}
	for _, w := range want {
		v, err := r.Read()
		if err != nil {
			t.Fatal(err)
		}
		if !v.IsCharacter() || v.AsCharacter() != w {
			t.Fatalf("got %+v, want %q", v, w)
		}
	}
}

func TestSkipCommentsThenReadDatum(t *testing.T) {
	r := newTestReader(t, "; line comment\n#| nested #| comment |# still |# #;(ignored datum) 42")
	v, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsFixnum() || v.AsFixnum() != 42 {
		t.Fatalf("got %+v", v)
	}
}

func TestReadReturnsEOFAtEndOfStream(t *testing.T) {
	r := newTestReader(t, "   ")
	v, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsEOF() {
		t.Fatalf("got %+v, want eof", v)
	}
}

func TestReadUnterminatedListIsSyntaxError(t *testing.T) {
	r := newTestReader(t, "(1 2")
	_, err := r.Read()
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("got %v, want *SyntaxError", err)
	}
}
