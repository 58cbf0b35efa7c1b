// Package reader implements Europa's streaming S-expression parser over
// a port.Port (spec.md §4.3), grounded on original_source/src/read.c's
// recursive-descent parser. It carries its own intern tables for symbols
// and strings, chained (via table.Table.Index) to the caller-supplied
// global tables, so a lookup checks both. New symbols and strings are
// installed directly in the global tables, so every reader sharing them
// sees another reader's entries at once; readers are not isolated.
package reader

import (
	"fmt"

	"europa/internal/gcheap"
	"europa/internal/port"
	"europa/internal/table"
	"europa/internal/value"
)

// SyntaxError reports a read failure with the position it occurred at,
// mirroring the original parser's line/col-tagged error object.
type SyntaxError struct {
	Line, Col int
	Msg       string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// ToValue builds the heap error object the original source's euport_read
// leaves behind on the state when a read fails (spec.md §4.3's "the
// reader builds an error object with line/column and a descriptive
// message").
func (e *SyntaxError) ToValue(h *gcheap.Heap) *value.Error {
	msg := fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
	s := value.NewString(msg, value.FNV1a(msg))
	h.Track(s)
	ev := value.NewError(s, nil, value.ErrRead)
	h.Track(ev)
	return ev
}

// Reader holds the two-character lookahead (current, peek) the grammar's
// decision points need (e.g. distinguishing a sign token from a signed
// number by looking at what follows it).
type Reader struct {
	heap *gcheap.Heap
	port *port.Port

	symbols *table.Table
	strings *table.Table

	globalSymbols *table.Table
	globalStrings *table.Table

	current   rune
	currentOK bool
	peek      rune
	peekOK    bool

	line, col int
}

// New creates a reader over p. globalSymbols/globalStrings are the
// process-wide intern tables (owned by the Global, per spec.md §4.1);
// the reader's own tables chain to them via Index so a lookup checks the
// local table first and falls through to the shared one.
func New(h *gcheap.Heap, p *port.Port, globalSymbols, globalStrings *table.Table) *Reader {
	r := &Reader{
		heap:          h,
		port:          p,
		globalSymbols: globalSymbols,
		globalStrings: globalStrings,
		line:          1,
		col:           0,
	}
	r.symbols = table.New(h, 0)
	r.symbols.Index = globalSymbols
	r.strings = table.New(h, 0)
	r.strings.Index = globalStrings

	r.current, r.currentOK, _ = p.ReadChar()
	r.peek, r.peekOK, _ = p.ReadChar()
	return r
}

func (r *Reader) advance() error {
	if r.current == '\n' {
		r.line++
		r.col = 0
	} else {
		r.col++
	}
	r.current, r.currentOK = r.peek, r.peekOK
	next, ok, err := r.port.ReadChar()
	if err != nil {
		return err
	}
	r.peek, r.peekOK = next, ok
	return nil
}

func (r *Reader) errf(format string, args ...interface{}) error {
	return &SyntaxError{Line: r.line, Col: r.col, Msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) match(c rune) error {
	if !r.currentOK || r.current != c {
		got := "EOF"
		if r.currentOK {
			got = string(r.current)
		}
		return r.errf("expected '%c', got %s", c, got)
	}
	return nil
}

// Read parses exactly one datum from the port, returning value.EOF (with
// a nil error) when the stream has no more data — matching R7RS `read`'s
// eof-object result and the original source's EU_RESULT_OK-with-eof
// contract.
func (r *Reader) Read() (value.Value, error) {
	if err := r.skipItSpace(); err != nil {
		return value.Null, err
	}
	if !r.currentOK {
		return value.EOF, nil
	}
	return r.readDatum()
}

func (r *Reader) readDatum() (value.Value, error) {
	if err := r.skipItSpace(); err != nil {
		return value.Null, err
	}
	if !r.currentOK {
		return value.EOF, nil
	}

	switch {
	case r.current == '#':
		return r.readHash()
	case isDecimalDigit(r.current),
		isSign(r.current) && r.peekOK && isDecimalDigit(r.peek),
		isDot(r.current) && r.peekOK && isDecimalDigit(r.peek):
		return r.readNumber()
	case r.current == '"':
		return r.readString()
	case isIdentifierStart(r.current),
		isSign(r.current) && isDelimiter(r.peek, r.peekOK),
		isSign(r.current) && r.peekOK && isSignSubsequent(r.peek),
		isSign(r.current) && r.peekOK && isDot(r.peek),
		isDot(r.current) && r.peekOK && isDotSubsequent(r.peek):
		return r.readSymbol()
	case isLPar(r.current):
		return r.readList()
	case isAbbrevPrefix(r.current):
		return r.readAbbreviation()
	}
	return value.Null, r.errf("unexpected character '%c'", r.current)
}

// internSymbol deduplicates text against the reader's local table (which
// chains to the global one) and creates a canonical Symbol on first
// sight, installing it in the global table so every reader observes the
// same object for the same text (spec.md §8 scenario: "two symbols with
// identical text returned by the reader are the same heap object").
func (r *Reader) internSymbol(text string) value.Value {
	if v, ok := r.symbols.RGetSymbol(text); ok {
		return v
	}
	sym := value.NewSymbol(text, value.FNV1a(text))
	r.heap.Track(sym)
	v := value.FromObject(sym)
	r.globalSymbols.Set(v, v)
	return v
}

func (r *Reader) internString(text string) value.Value {
	if v, ok := r.strings.RGetString(text); ok {
		return v
	}
	str := value.NewString(text, value.FNV1a(text))
	r.heap.Track(str)
	v := value.FromObject(str)
	r.globalStrings.Set(v, v)
	return v
}
