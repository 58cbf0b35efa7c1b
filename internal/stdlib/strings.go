package stdlib

import (
	"strconv"
	"strings"

	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// stringBuiltins implements the string component, grounded on
// original_source/src/eu_string.c. value.String is immutable once
// interned (see symbol.go's doc comment), so every operation here builds
// a fresh string rather than mutating in place.
func stringBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"string-length", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsString() {
				return value.Null, typeErr("string-length", "string", firstOr(a))
			}
			return value.Fixnum(int64(len([]rune(a[0].AsString().Text)))), nil
		}},
		{"string-ref", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 || !a[0].IsString() || !a[1].IsFixnum() {
				return value.Null, typeErr("string-ref", "string and index", firstOr(a))
			}
			runes := []rune(a[0].AsString().Text)
			i := a[1].AsFixnum()
			if i < 0 || int(i) >= len(runes) {
				return value.Null, badResource("string-ref", "index out of range")
			}
			return value.Character(runes[i]), nil
		}},
		{"substring", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 3 || !a[0].IsString() || !a[1].IsFixnum() || !a[2].IsFixnum() {
				return value.Null, typeErr("substring", "string and two indices", firstOr(a))
			}
			runes := []rune(a[0].AsString().Text)
			start, end := a[1].AsFixnum(), a[2].AsFixnum()
			if start < 0 || end > int64(len(runes)) || start > end {
				return value.Null, badResource("substring", "index out of range")
			}
			return internString(s, string(runes[start:end])), nil
		}},
		{"string-append", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			var b strings.Builder
			for _, v := range a {
				if !v.IsString() {
					return value.Null, typeErr("string-append", "string", v)
				}
				b.WriteString(v.AsString().Text)
			}
			return internString(s, b.String()), nil
		}},
		{"string-copy", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsString() {
				return value.Null, typeErr("string-copy", "string", firstOr(a))
			}
			return internString(s, a[0].AsString().Text), nil
		}},
		{"string=?", stringCompare("string=?", func(a, b string) bool { return a == b })},
		{"string<?", stringCompare("string<?", func(a, b string) bool { return a < b })},
		{"string>?", stringCompare("string>?", func(a, b string) bool { return a > b })},
		{"string->symbol", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsString() {
				return value.Null, typeErr("string->symbol", "string", firstOr(a))
			}
			return g.InternSymbol(a[0].AsString().Text), nil
		}},
		{"symbol->string", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsSymbol() {
				return value.Null, typeErr("symbol->string", "symbol", firstOr(a))
			}
			return internString(s, a[0].AsSymbol().Text), nil
		}},
		{"string->list", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsString() {
				return value.Null, typeErr("string->list", "string", firstOr(a))
			}
			runes := []rune(a[0].AsString().Text)
			items := make([]value.Value, len(runes))
			for i, r := range runes {
				items[i] = value.Character(r)
			}
			return trackList(s, items), nil
		}},
		{"list->string", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("list->string", 1, len(a))
			}
			items, ok := value.ListToSlice(a[0])
			if !ok {
				return value.Null, typeErr("list->string", "proper list", a[0])
			}
			var b strings.Builder
			for _, it := range items {
				if !it.IsCharacter() {
					return value.Null, typeErr("list->string", "character", it)
				}
				b.WriteRune(it.AsCharacter())
			}
			return internString(s, b.String()), nil
		}},
		{"number->string", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsNumber() {
				return value.Null, typeErr("number->string", "number", firstOr(a))
			}
			if a[0].IsFixnum() {
				return internString(s, strconv.FormatInt(a[0].AsFixnum(), 10)), nil
			}
			return internString(s, strconv.FormatFloat(a[0].AsReal(), 'g', -1, 64)), nil
		}},
		{"string->number", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 || !a[0].IsString() {
				return value.Null, typeErr("string->number", "string", firstOr(a))
			}
			text := a[0].AsString().Text
			if i, err := strconv.ParseInt(text, 10, 64); err == nil {
				return value.Fixnum(i), nil
			}
			if f, err := strconv.ParseFloat(text, 64); err == nil {
				return value.Real(f), nil
			}
			return value.Boolean(false), nil
		}},
	}
}

func stringCompare(name string, test func(a, b string) bool) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		if len(a) < 2 {
			return value.Null, arityErr(name, 2, len(a))
		}
		for i := 0; i+1 < len(a); i++ {
			if !a[i].IsString() || !a[i+1].IsString() {
				return value.Null, typeErr(name, "string", a[i])
			}
			if !test(a[i].AsString().Text, a[i+1].AsString().Text) {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	}
}

// internString allocates a fresh, untracked-by-the-global-table string
// for results that needn't be deduplicated against the reader's literal
// pool (e.g. substring's output) — only the global table's InternString
// guarantees canonical sharing, which is a correctness requirement for
// reader literals (spec.md §8) but not for computed strings.
func internString(s *vm.State, text string) value.Value {
	str := value.NewString(text, value.FNV1a(text))
	s.Heap.Track(str)
	return value.FromObject(str)
}
