package port

import (
	"bufio"
	"io"
	"os"
)

// fileBackend wraps an *os.File with a small buffered reader so PeekByte
// doesn't require manual seeking.
type fileBackend struct {
	f  *os.File
	br *bufio.Reader
	bw *bufio.Writer
}

// OpenInputFile opens path for reading and wraps it as a Backend.
func OpenInputFile(path string) (Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileBackend{f: f, br: bufio.NewReader(f)}, nil
}

// OpenOutputFile creates (or truncates) path for writing.
func OpenOutputFile(path string) (Backend, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &fileBackend{f: f, bw: bufio.NewWriter(f)}, nil
}

// WrapFile adapts an already-open *os.File (e.g. stdin/stdout/stderr) as a
// Backend without taking ownership of closing the underlying fd set
// semantics beyond what Close naturally does.
func WrapFile(f *os.File, readable, writable bool) Backend {
	fb := &fileBackend{f: f}
	if readable {
		fb.br = bufio.NewReader(f)
	}
	if writable {
		fb.bw = bufio.NewWriter(f)
	}
	return fb
}

func (b *fileBackend) ReadByte() (byte, bool, error) {
	c, err := b.br.ReadByte()
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return c, true, nil
}

func (b *fileBackend) PeekByte() (byte, bool, error) {
	peek, err := b.br.Peek(1)
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return peek[0], true, nil
}

func (b *fileBackend) WriteByte(c byte) error {
	return b.bw.WriteByte(c)
}

func (b *fileBackend) Flush() error {
	if b.bw == nil {
		return nil
	}
	return b.bw.Flush()
}

func (b *fileBackend) Close() error {
	b.Flush()
	return b.f.Close()
}

func (b *fileBackend) Ready() bool { return true }
func (b *fileBackend) Name() string { return "file port" }
