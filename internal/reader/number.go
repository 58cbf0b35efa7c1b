package reader

import (
	"fmt"

	"europa/internal/value"
)

// readNumber implements the <number> grammar of original_source/src/
// read.c's pread_number: an optional #<radix>#<exactness> or
// #<exactness>#<radix> prefix (in either order), an optional sign, then
// digits of the selected radix with at most one '.'. A literal containing
// '.' is always inexact (a real); otherwise it is exact unless #i forced
// inexactness, matching spec.md §4.3's stated rule exactly.
func (r *Reader) readNumber() (value.Value, error) {
	exactness := rune(0)
	radix := 'd'

	if r.current == '#' {
		if isExactness(r.peek) {
			if err := r.advance(); err != nil {
				return value.Null, err
			}
			exactness = lower(r.current)
			if r.peek == '#' {
				if err := r.advance(); err != nil {
					return value.Null, err
				}
				if !isRadixChar(r.peek) {
					return value.Null, r.errf("expected radix for number literal")
				}
				if err := r.advance(); err != nil {
					return value.Null, err
				}
				radix = lower(r.current)
			}
		} else if isRadixChar(r.peek) {
			if err := r.advance(); err != nil {
				return value.Null, err
			}
			radix = lower(r.current)
			if r.peek == '#' {
				if err := r.advance(); err != nil {
					return value.Null, err
				}
				if !isExactness(r.peek) {
					return value.Null, r.errf("expected exactness for number literal")
				}
				if err := r.advance(); err != nil {
					return value.Null, err
				}
				exactness = lower(r.current)
			}
		} else {
			return value.Null, r.errf("unexpected character '%c' parsing a number prefix", r.peek)
		}
		if err := r.advance(); err != nil {
			return value.Null, err
		}
	}

	sign := int64(1)
	if isSign(r.current) {
		if r.current == '-' {
			sign = -1
		}
		if err := r.advance(); err != nil {
			return value.Null, err
		}
	}

	radixValue, err := radixOf(radix)
	if err != nil {
		return value.Null, r.errf("%s", err.Error())
	}

	var ipart int64
	var rpart float64
	var divideBy float64

	for {
		if isDot(r.current) {
			if divideBy != 0 {
				return value.Null, r.errf("unexpected '.' in number literal")
			}
			if err := r.advance(); err != nil {
				return value.Null, err
			}
			rpart = float64(ipart)
			ipart = 0
			divideBy = 1
			if isDelimiter(r.current, r.currentOK) {
				break
			}
			continue
		}

		if !digitValidForRadix(r.current, radixValue) {
			return value.Null, r.errf("unexpected digit '%c' for radix base %d", r.current, radixValue)
		}

		ipart = ipart*int64(radixValue) + int64(digitValue(r.current))
		divideBy *= float64(radixValue)

		if err := r.advance(); err != nil {
			return value.Null, err
		}
		if isDelimiter(r.current, r.currentOK) {
			break
		}
	}

	if divideBy != 0 {
		real := float64(sign) * (rpart + float64(ipart)/divideBy)
		return value.Real(real), nil
	}
	if exactness == 'i' {
		return value.Real(float64(sign * ipart)), nil
	}
	return value.Fixnum(sign * ipart), nil
}

func lower(c rune) rune {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

func radixOf(r rune) (int, error) {
	switch r {
	case 'd':
		return 10, nil
	case 'b':
		return 2, nil
	case 'o':
		return 8, nil
	case 'x':
		return 16, nil
	}
	return 0, fmt.Errorf("invalid number radix '%c'", r)
}

func digitValidForRadix(c rune, radix int) bool {
	switch radix {
	case 2:
		return isBinaryDigit(c)
	case 8:
		return isOctalDigit(c)
	case 10:
		return isDecimalDigit(c)
	case 16:
		return isHexDigit(c)
	}
	return false
}

func digitValue(c rune) int {
	lc := lower(c)
	if lc >= 'a' && lc <= 'f' {
		return int(lc-'a') + 10
	}
	return int(c - '0')
}
