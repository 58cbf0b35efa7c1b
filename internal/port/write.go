package port

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"europa/internal/value"
)

// objAddr gives a stable identity for cycle detection while writing pairs
// and vectors; it never escapes rendered output, only a transient set kept
// for the duration of one Write call.
func objAddr(obj *value.Object) uintptr {
	return uintptr(unsafe.Pointer(obj))
}

// charNames is the reverse of the reader's named-character table (spec.md
// §4.3), used by Write to print characters in their #\name form when one
// exists.
var charNames = map[rune]string{
	0x07: "alarm",
	0x08: "backspace",
	0x7F: "delete",
	0x1B: "escape",
	0x0A: "newline",
	0x0D: "return",
	0x20: "space",
	0x09: "tab",
	0x00: "null",
}

// Display writes v the human-readable way: strings and characters are
// emitted literally, with no quoting or escaping.
func (p *Port) Display(v value.Value) error {
	return p.WriteString(render(v, false, nil))
}

// Write writes v in a round-trippable representation (strings quoted and
// escaped, characters as #\name or #\x<hex>), guarding against cyclic
// structure by printing "#[circular]" rather than looping forever.
func (p *Port) Write(v value.Value) error {
	return p.WriteString(render(v, true, make(map[uintptr]bool)))
}

// WriteSimple is Write without the cycle guard: spec.md §7 describes it as
// the non-shared, may-not-terminate-on-cycles variant, matching R7RS
// write-simple.
func (p *Port) WriteSimple(v value.Value) error {
	return p.WriteString(render(v, true, nil))
}

func render(v value.Value, quoted bool, seen map[uintptr]bool) string {
	switch {
	case v.IsNull():
		return "()"
	case v.IsBoolean():
		if v.AsBoolean() {
			return "#t"
		}
		return "#f"
	case v.IsEOF():
		return "#<eof>"
	case v.IsFixnum():
		return strconv.FormatInt(v.AsFixnum(), 10)
	case v.IsReal():
		return formatReal(v.AsReal())
	case v.IsCharacter():
		if !quoted {
			return string(v.AsCharacter())
		}
		return renderCharacter(v.AsCharacter())
	case v.IsSymbol():
		return v.AsSymbol().Text
	case v.IsString():
		if !quoted {
			return v.AsString().Text
		}
		return renderString(v.AsString().Text)
	case v.IsPair():
		return renderPair(v, quoted, seen)
	case v.IsVector():
		return renderVector(v, quoted, seen)
	case v.IsBytevector():
		return renderBytevector(v)
	case v.IsError():
		return fmt.Sprintf("#<error %s>", v.AsError().Message.Text)
	case v.IsProcedure():
		return "#<procedure>"
	case v.IsTable():
		return "#<table>"
	case v.IsPort():
		return "#<port>"
	default:
		return "#<unknown>"
	}
}

func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "inf") && !strings.Contains(s, "nan") {
		s += "."
	}
	return s
}

func renderCharacter(r rune) string {
	if name, ok := charNames[r]; ok {
		return "#\\" + name
	}
	if r < 0x20 || r == 0x7F {
		return fmt.Sprintf("#\\x%x", r)
	}
	return "#\\" + string(r)
}

func renderString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func renderPair(v value.Value, quoted bool, seen map[uintptr]bool) string {
	var marked []uintptr
	if seen != nil {
		obj, _ := v.Object()
		addr := objAddr(obj.Header())
		if seen[addr] {
			return "#[circular]"
		}
		seen[addr] = true
		marked = append(marked, addr)
		defer func() {
			for _, a := range marked {
				delete(seen, a)
			}
		}()
	}
	var b strings.Builder
	b.WriteByte('(')
	first := true
	cur := v
	for cur.IsPair() {
		pr := cur.AsPair()
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(render(pr.Head, quoted, seen))
		cur = pr.Tail
		if cur.IsPair() && seen != nil {
			obj, _ := cur.Object()
			addr := objAddr(obj.Header())
			if seen[addr] {
				b.WriteString(" . #[circular]")
				cur = value.Null
				break
			}
			seen[addr] = true
			marked = append(marked, addr)
		}
	}
	if !cur.IsNull() {
		b.WriteString(" . ")
		b.WriteString(render(cur, quoted, seen))
	}
	b.WriteByte(')')
	return b.String()
}

func renderVector(v value.Value, quoted bool, seen map[uintptr]bool) string {
	if seen != nil {
		obj, _ := v.Object()
		addr := objAddr(obj.Header())
		if seen[addr] {
			return "#[circular]"
		}
		seen[addr] = true
		defer delete(seen, addr)
	}
	vec := v.AsVector()
	var b strings.Builder
	b.WriteString("#(")
	for i, item := range vec.Data {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(render(item, quoted, seen))
	}
	b.WriteByte(')')
	return b.String()
}

func renderBytevector(v value.Value) string {
	bv := v.AsBytevector()
	var b strings.Builder
	b.WriteString("#u8(")
	for i, by := range bv.Data {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(int(by)))
	}
	b.WriteByte(')')
	return b.String()
}
