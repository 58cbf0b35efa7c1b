package port

import (
	"testing"

	"europa/internal/gcheap"
	"europa/internal/value"
)

func newMemPort(h *gcheap.Heap, flags Flags, initial string) *Port {
	return New(h, flags, NewMemoryBackend([]byte(initial)))
}

func TestReadCharDecodesUTF8(t *testing.T) {
	h := gcheap.New()
	p := newMemPort(h, Input|Textual, "aé中")
	want := []rune{'a', 'é', '中'}
	for _, w := range want {
		r, ok, err := p.ReadChar()
		if err != nil || !ok {
			t.Fatalf("ReadChar() = %q, %v, %v", r, ok, err)
		}
		if r != w {
			t.Fatalf("ReadChar() = %q, want %q", r, w)
		}
	}
	if _, ok, _ := p.ReadChar(); ok {
		t.Fatal("expected EOF")
	}
}

func TestPeekCharDoesNotConsume(t *testing.T) {
	h := gcheap.New()
	p := newMemPort(h, Input|Textual, "xy")
	r1, _, _ := p.PeekChar()
	r2, _, _ := p.ReadChar()
	if r1 != r2 || r1 != 'x' {
		t.Fatalf("peek/read mismatch: %q %q", r1, r2)
	}
	r3, _, _ := p.ReadChar()
	if r3 != 'y' {
		t.Fatalf("ReadChar() = %q, want y", r3)
	}
}

func TestReadLineStopsAtNewline(t *testing.T) {
	h := gcheap.New()
	p := newMemPort(h, Input|Textual, "first\nsecond")
	line, ok, err := p.ReadLine()
	if err != nil || !ok || line != "first" {
		t.Fatalf("ReadLine() = %q, %v, %v", line, ok, err)
	}
	line, ok, err = p.ReadLine()
	if err != nil || !ok || line != "second" {
		t.Fatalf("ReadLine() = %q, %v, %v", line, ok, err)
	}
	_, ok, _ = p.ReadLine()
	if ok {
		t.Fatal("expected EOF on final ReadLine")
	}
}

func TestWriteStringThenReadBack(t *testing.T) {
	h := gcheap.New()
	backend := NewMemoryBackend(nil)
	out := New(h, Output|Textual, backend)
	if err := out.WriteString("hello 世界"); err != nil {
		t.Fatal(err)
	}
	mb, ok := AsMemoryBackend(backend)
	if !ok {
		t.Fatal("expected memory backend")
	}
	in := New(h, Input|Textual, NewMemoryBackend(mb.Bytes()))
	got, _, _ := in.ReadString(100)
	if got != "hello 世界" {
		t.Fatalf("got %q", got)
	}
}

func TestCloseIsIdempotentAndFinalizeSkipsClosed(t *testing.T) {
	h := gcheap.New()
	p := newMemPort(h, Input, "")
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	p.Finalize()
	if !p.Closed() {
		t.Fatal("expected port to remain closed")
	}
}

func TestDisplayVsWriteString(t *testing.T) {
	h := gcheap.New()
	s := value.NewString("a\"b", value.FNV1a("a\"b"))
	v := value.FromObject(s)

	backend := NewMemoryBackend(nil)
	out := New(h, Output|Textual, backend)
	out.Display(v)
	mb, _ := AsMemoryBackend(backend)
	if got := string(mb.Bytes()); got != "a\"b" {
		t.Fatalf("Display: got %q", got)
	}

	backend2 := NewMemoryBackend(nil)
	out2 := New(h, Output|Textual, backend2)
	out2.Write(v)
	mb2, _ := AsMemoryBackend(backend2)
	if got := string(mb2.Bytes()); got != `"a\"b"` {
		t.Fatalf("Write: got %q", got)
	}
}

func TestWriteCircularPairDoesNotHang(t *testing.T) {
	h := gcheap.New()
	p1 := value.NewPair(value.Fixnum(1), value.Null)
	p1.Tail = value.FromObject(p1)

	backend := NewMemoryBackend(nil)
	out := New(h, Output|Textual, backend)
	if err := out.Write(value.FromObject(p1)); err != nil {
		t.Fatal(err)
	}
	mb, _ := AsMemoryBackend(backend)
	got := string(mb.Bytes())
	if got == "" {
		t.Fatal("expected some output")
	}
}

func TestRenderCharacterNames(t *testing.T) {
	cases := map[rune]string{
		'\n': "#\\newline",
		' ':  "#\\space",
		'a':  "#\\a",
	}
	for r, want := range cases {
		if got := renderCharacter(r); got != want {
			t.Fatalf("renderCharacter(%q) = %q, want %q", r, got, want)
		}
	}
}
