package reader

import "europa/internal/value"

// readList reads a <list> := ( <datum>* ) | ( <datum>+ . <datum> ),
// grounded on pread_list. Square and curly brackets are accepted as
// alternate list delimiters (isLPar/isRPar), matching the original
// grammar's bracket-agnostic list reading; this implementation does not
// enforce that the closing bracket matches the opening one, the same
// leniency the original parser shows (it only tests isrpar generically).
func (r *Reader) readList() (value.Value, error) {
	if err := r.advance(); err != nil { // consume the opening paren
		return value.Null, err
	}
	if err := r.skipItSpace(); err != nil {
		return value.Null, err
	}
	if isRPar(r.current) {
		if err := r.advance(); err != nil {
			return value.Null, err
		}
		return value.Null, nil
	}

	var items []value.Value
	hasDot := false
	var tail value.Value = value.Null

	for !isRPar(r.current) && r.currentOK {
		if isDot(r.current) && isItSpace(r.peek) {
			if len(items) == 0 {
				return value.Null, r.errf("dot in list must follow at least one datum")
			}
			if hasDot {
				return value.Null, r.errf("only a single dot is permitted in a dotted list")
			}
			hasDot = true
			if err := r.advance(); err != nil {
				return value.Null, err
			}
			if err := r.skipItSpace(); err != nil {
				return value.Null, err
			}
			continue
		}

		v, err := r.readDatum()
		if err != nil {
			return value.Null, err
		}

		if hasDot {
			tail = v
			if err := r.skipItSpace(); err != nil {
				return value.Null, err
			}
			break
		}

		items = append(items, v)
		if err := r.skipItSpace(); err != nil {
			return value.Null, err
		}
	}

	if !isRPar(r.current) {
		if !r.currentOK {
			return value.Null, r.errf("unexpected incomplete list, expected a datum")
		}
		if hasDot {
			return value.Null, r.errf("expected end of dotted list after the final datum")
		}
		return value.Null, r.errf("expected end of list, got '%c'", r.current)
	}
	if err := r.advance(); err != nil {
		return value.Null, err
	}

	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		p := value.NewPair(items[i], result)
		r.heap.Track(p)
		result = value.FromObject(p)
	}
	return result, nil
}

// readAbbreviation expands '<datum>, `<datum>, ,<datum> and ,@<datum>
// into (quote <datum>), (quasiquote <datum>), (unquote <datum>) and
// (unquote-splicing <datum>) respectively (pread_abbreviation).
func (r *Reader) readAbbreviation() (value.Value, error) {
	var name string
	switch r.current {
	case '\'':
		name = "quote"
	case '`':
		name = "quasiquote"
	case ',':
		name = "unquote"
		if r.peek == '@' {
			name = "unquote-splicing"
			if err := r.advance(); err != nil {
				return value.Null, err
			}
		}
	default:
		return value.Null, r.errf("invalid abbreviation prefix '%c'", r.current)
	}
	if err := r.advance(); err != nil {
		return value.Null, err
	}

	datum, err := r.readDatum()
	if err != nil {
		return value.Null, err
	}

	sym := r.internSymbol(name)
	inner := value.NewPair(datum, value.Null)
	r.heap.Track(inner)
	outer := value.NewPair(sym, value.FromObject(inner))
	r.heap.Track(outer)
	return value.FromObject(outer), nil
}
