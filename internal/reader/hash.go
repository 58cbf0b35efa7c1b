package reader

import (
	"strings"

	"europa/internal/value"
)

// readHash dispatches a token starting with '#' by inspecting the
// character that follows it, without consuming the '#' itself — each
// sub-reader (readBoolean, readNumber, readCharacter, readBytevector,
// readVector) matches and consumes its own leading '#', mirroring
// pread_hash's pmatch-without-advance followed by delegated parsing.
func (r *Reader) readHash() (value.Value, error) {
	if err := r.match('#'); err != nil {
		return value.Null, err
	}

	switch {
	case isBoolStart(r.peek):
		return r.readBoolean()
	case isRadixChar(r.peek) || isExactness(r.peek):
		return r.readNumber()
	case r.peek == '\\':
		return r.readCharacter()
	case r.peek == 'u':
		return r.readBytevector()
	case isLPar(r.peek):
		return r.readVector()
	}
	return value.Null, r.errf("expected a boolean, number, character, vector or bytevector after '#'")
}

func (r *Reader) readBoolean() (value.Value, error) {
	if err := r.match('#'); err != nil {
		return value.Null, err
	}
	if err := r.advance(); err != nil {
		return value.Null, err
	}

	switch r.current {
	case 't', 'T':
		if !isDelimiter(r.peek, r.peekOK) {
			if err := r.matchWord("true"); err != nil {
				return value.Null, err
			}
		} else if err := r.advance(); err != nil {
			return value.Null, err
		}
		return value.True, nil
	case 'f', 'F':
		if !isDelimiter(r.peek, r.peekOK) {
			if err := r.matchWord("false"); err != nil {
				return value.Null, err
			}
		} else if err := r.advance(); err != nil {
			return value.Null, err
		}
		return value.False, nil
	}
	return value.Null, r.errf("invalid boolean literal")
}

// matchWord consumes the remaining letters of a case-insensitive keyword
// (e.g. "true"/"false" following the already-consumed first letter),
// erroring if what follows isn't a delimiter once exhausted.
func (r *Reader) matchWord(word string) error {
	rest := strings.ToLower(word)[1:]
	for _, want := range rest {
		if err := r.advance(); err != nil {
			return err
		}
		if !r.currentOK || lower(r.current) != want {
			return r.errf("invalid token, expected '%s'", word)
		}
	}
	if err := r.advance(); err != nil {
		return err
	}
	if !isDelimiter(r.current, r.currentOK) {
		return r.errf("invalid token, expected '%s'", word)
	}
	return nil
}

func (r *Reader) readCharacter() (value.Value, error) {
	if err := r.match('#'); err != nil {
		return value.Null, err
	}
	if err := r.advance(); err != nil {
		return value.Null, err
	}
	if err := r.match('\\'); err != nil {
		return value.Null, err
	}
	if err := r.advance(); err != nil {
		return value.Null, err
	}

	if isDelimiter(r.peek, r.peekOK) {
		c := r.current
		if err := r.advance(); err != nil {
			return value.Null, err
		}
		return value.Character(c), nil
	}

	if r.current == 'x' || r.current == 'X' {
		if err := r.advance(); err != nil {
			return value.Null, err
		}
		var code rune
		for !isDelimiter(r.current, r.currentOK) {
			if !isHexDigit(r.current) {
				return value.Null, r.errf("invalid hex digit '%c' in character literal", r.current)
			}
			code = code<<4 | rune(digitValue(r.current))
			if err := r.advance(); err != nil {
				return value.Null, err
			}
		}
		return value.Character(code), nil
	}

	var name []rune
	for !isDelimiter(r.current, r.currentOK) {
		name = append(name, r.current)
		if err := r.advance(); err != nil {
			return value.Null, err
		}
	}
	text := string(name)
	if c, ok := charNames[text]; ok {
		return value.Character(c), nil
	}
	return value.Null, r.errf("unknown character literal name '%s'", text)
}

func (r *Reader) readBytevector() (value.Value, error) {
	if err := r.matchLiteral("#u8("); err != nil {
		return value.Null, err
	}

	var data []byte
	for !isRPar(r.current) && r.currentOK {
		if err := r.skipItSpace(); err != nil {
			return value.Null, err
		}
		if isRPar(r.current) {
			break
		}
		v, err := r.readDatum()
		if err != nil {
			return value.Null, err
		}
		if !v.IsFixnum() {
			return value.Null, r.errf("bytevector element must be an exact integer")
		}
		n := v.AsFixnum()
		if n < 0 || n > 255 {
			return value.Null, r.errf("bytevector element %d out of range [0,255]", n)
		}
		data = append(data, byte(n))
	}
	if !r.currentOK {
		return value.Null, r.errf("unterminated bytevector literal")
	}
	if err := r.advance(); err != nil {
		return value.Null, err
	}
	bv := value.NewBytevector(data)
	r.heap.Track(bv)
	return value.FromObject(bv), nil
}

func (r *Reader) readVector() (value.Value, error) {
	if err := r.match('#'); err != nil {
		return value.Null, err
	}
	if err := r.advance(); err != nil {
		return value.Null, err
	}
	if err := r.advance(); err != nil { // consume '('
		return value.Null, err
	}
	var items []value.Value
	for !isRPar(r.current) && r.currentOK {
		if err := r.skipItSpace(); err != nil {
			return value.Null, err
		}
		if isRPar(r.current) {
			break
		}
		v, err := r.readDatum()
		if err != nil {
			return value.Null, err
		}
		items = append(items, v)
	}
	if !r.currentOK {
		return value.Null, r.errf("unterminated vector literal")
	}
	if err := r.advance(); err != nil {
		return value.Null, err
	}
	vec := value.NewVector(items)
	r.heap.Track(vec)
	return value.FromObject(vec), nil
}

// matchLiteral consumes a fixed literal from the current position
// character by character (used for the "#u8(" bytevector opener).
func (r *Reader) matchLiteral(lit string) error {
	for _, want := range lit {
		if !r.currentOK || r.current != want {
			return r.errf("expected '%s'", lit)
		}
		if err := r.advance(); err != nil {
			return err
		}
	}
	return nil
}
