// Package port implements Europa's abstract textual/binary byte-stream
// port (spec.md §4.6), with file and memory backends. Every port shares
// one Go-level API regardless of backend; the reader, writer and
// built-in library only ever see the Port type, never *os.File or the
// memory buffer directly.
package port

import (
	"europa/internal/gcheap"
	"europa/internal/value"
)

// Flags records the input/output x textual/binary combination a port was
// opened with.
type Flags uint8

const (
	Input Flags = 1 << iota
	Output
	Textual
	Binary
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Backend is the byte-level contract a concrete transport (file, memory,
// or the network backends in package netport) must satisfy. Port builds
// UTF-8 character decoding, line/string reads and display/write encoding
// on top of these primitives so every backend gets them for free.
type Backend interface {
	// ReadByte returns the next byte, ok=false at end of stream (not an
	// error), or an error for a genuine I/O failure.
	ReadByte() (b byte, ok bool, err error)
	// PeekByte looks at the next byte without consuming it.
	PeekByte() (b byte, ok bool, err error)
	WriteByte(b byte) error
	Flush() error
	Close() error
	// Ready reports whether a read would return immediately without
	// blocking. Europa's synchronous backends (file, memory) are always
	// ready; network backends may not be.
	Ready() bool
	// Name identifies the backend kind for display purposes (e.g. in
	// error messages naming "memory port" / "file port").
	Name() string
}

// Port is the heap object wrapping a Backend with its open-mode flags.
type Port struct {
	value.Object
	Flags   Flags
	Backend Backend

	// pendingChar/hasPendingChar hold back a rune peeked by PeekChar so a
	// subsequent ReadChar doesn't have to re-decode it.
	pendingChar    rune
	pendingSize    int
	hasPendingChar bool

	closed bool
}

// New wraps backend with the given flags and tracks it with h.
func New(h *gcheap.Heap, flags Flags, backend Backend) *Port {
	p := &Port{Flags: flags, Backend: backend}
	p.Init(p, value.KindPort)
	h.Track(p)
	return p
}

func (p *Port) IsInput() bool  { return p.Flags.Has(Input) }
func (p *Port) IsOutput() bool { return p.Flags.Has(Output) }
func (p *Port) IsTextual() bool { return p.Flags.Has(Textual) }
func (p *Port) IsBinary() bool  { return p.Flags.Has(Binary) }

// Close finalizes the port early, the way the explicit close-port
// built-in does; further operations on it are errors.
func (p *Port) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.Backend.Close()
}

func (p *Port) Closed() bool { return p.closed }

// Finalize lets the collector close the underlying resource during sweep
// if the embedding host never called Close explicitly (spec.md §4.1: "per
// type destructor releases non-heap resources — close files for
// file-ports, free buffers for memory-ports").
func (p *Port) Finalize() {
	if !p.closed {
		p.Close()
	}
}

// Port has no heap-object children to mark: its Backend holds only
// non-collectable resources (an *os.File, a []byte buffer, a net.Conn).
