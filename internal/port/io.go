package port

import (
	"errors"
	"unicode/utf8"
)

var ErrClosed = errors.New("port: operation on closed port")

// ReadChar decodes and consumes one UTF-8 character, returning ok=false
// at end of file.
func (p *Port) ReadChar() (rune, bool, error) {
	if p.closed {
		return 0, false, ErrClosed
	}
	if p.hasPendingChar {
		r := p.pendingChar
		p.hasPendingChar = false
		return r, true, nil
	}
	return p.decodeRune(true)
}

// PeekChar decodes the next character without consuming it.
func (p *Port) PeekChar() (rune, bool, error) {
	if p.closed {
		return 0, false, ErrClosed
	}
	if p.hasPendingChar {
		return p.pendingChar, true, nil
	}
	r, ok, err := p.decodeRune(false)
	if err != nil || !ok {
		return r, ok, err
	}
	p.pendingChar = r
	p.hasPendingChar = true
	return r, true, nil
}

// decodeRune reads enough bytes from Backend to decode one UTF-8 rune. If
// consume is false the bytes are still read via ReadByte, since Backend
// only exposes a one-byte PeekByte, not a multi-byte peek; an ASCII rune
// is stashed in pendingChar here, and a multi-byte one by the caller
// (PeekChar).
func (p *Port) decodeRune(consume bool) (rune, bool, error) {
	first, ok, err := p.Backend.ReadByte()
	if err != nil || !ok {
		return 0, false, err
	}
	if first < utf8.RuneSelf {
		if !consume {
			p.hasPendingChar = true
			p.pendingChar = rune(first)
		}
		return rune(first), true, nil
	}
	n := utf8SeqLen(first)
	buf := make([]byte, 0, n)
	buf = append(buf, first)
	for len(buf) < n {
		b, ok, err := p.Backend.ReadByte()
		if err != nil {
			return 0, false, err
		}
		if !ok {
			break
		}
		buf = append(buf, b)
	}
	r, _ := utf8.DecodeRune(buf)
	return r, true, nil
}

func utf8SeqLen(first byte) int {
	switch {
	case first&0xE0 == 0xC0:
		return 2
	case first&0xF0 == 0xE0:
		return 3
	case first&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// ReadLine consumes characters up to (and excluding) the next newline, or
// to end of file. ok is false only when no characters at all were read
// before EOF, matching read-line's eof-object result on an empty stream.
func (p *Port) ReadLine() (string, bool, error) {
	var sb []rune
	any := false
	for {
		r, ok, err := p.ReadChar()
		if err != nil {
			return "", any, err
		}
		if !ok {
			break
		}
		any = true
		if r == '\n' {
			break
		}
		sb = append(sb, r)
	}
	return string(sb), any, nil
}

// ReadString reads up to k characters, stopping early at EOF. ok is false
// only when zero characters were available.
func (p *Port) ReadString(k int) (string, bool, error) {
	var sb []rune
	for len(sb) < k {
		r, ok, err := p.ReadChar()
		if err != nil {
			return "", len(sb) > 0, err
		}
		if !ok {
			break
		}
		sb = append(sb, r)
	}
	return string(sb), len(sb) > 0, nil
}

// ReadByteValue and PeekByteValue expose the raw Backend byte operations
// for binary ports (read-u8 / peek-u8).
func (p *Port) ReadByteValue() (byte, bool, error) {
	if p.closed {
		return 0, false, ErrClosed
	}
	return p.Backend.ReadByte()
}

func (p *Port) PeekByteValue() (byte, bool, error) {
	if p.closed {
		return 0, false, ErrClosed
	}
	return p.Backend.PeekByte()
}

// CharReady reports whether a read would return without blocking.
func (p *Port) CharReady() bool {
	if p.closed {
		return true
	}
	return p.Backend.Ready()
}

// WriteChar encodes and writes one character.
func (p *Port) WriteChar(r rune) error {
	if p.closed {
		return ErrClosed
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	for i := 0; i < n; i++ {
		if err := p.Backend.WriteByte(buf[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteString writes every character of s.
func (p *Port) WriteString(s string) error {
	for _, r := range s {
		if err := p.WriteChar(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteByteValue writes one raw byte (write-u8).
func (p *Port) WriteByteValue(b byte) error {
	if p.closed {
		return ErrClosed
	}
	return p.Backend.WriteByte(b)
}

// Flush pushes any buffered output to the backend's destination.
func (p *Port) Flush() error {
	if p.closed {
		return nil
	}
	return p.Backend.Flush()
}
