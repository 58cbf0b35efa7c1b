package stdlib

import (
	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// pairBuiltins implements the pair/list component of register_standard_
// library (spec.md §6), grounded on original_source/src/eu_list.c's
// cons/car/cdr/list family.
func pairBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"cons", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 {
				return value.Null, arityErr("cons", 2, len(a))
			}
			p := value.NewPair(a[0], a[1])
			s.Heap.Track(p)
			return value.FromObject(p), nil
		}},
		{"car", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("car", 1, len(a))
			}
			if !a[0].IsPair() {
				return value.Null, typeErr("car", "pair", a[0])
			}
			return a[0].AsPair().Head, nil
		}},
		{"cdr", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("cdr", 1, len(a))
			}
			if !a[0].IsPair() {
				return value.Null, typeErr("cdr", "pair", a[0])
			}
			return a[0].AsPair().Tail, nil
		}},
		{"set-car!", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 {
				return value.Null, arityErr("set-car!", 2, len(a))
			}
			if !a[0].IsPair() {
				return value.Null, typeErr("set-car!", "pair", a[0])
			}
			a[0].AsPair().Head = a[1]
			return value.Null, nil
		}},
		{"set-cdr!", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 {
				return value.Null, arityErr("set-cdr!", 2, len(a))
			}
			if !a[0].IsPair() {
				return value.Null, typeErr("set-cdr!", "pair", a[0])
			}
			a[0].AsPair().Tail = a[1]
			return value.Null, nil
		}},
		{"pair?", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("pair?", 1, len(a))
			}
			return value.Boolean(a[0].IsPair()), nil
		}},
		{"null?", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("null?", 1, len(a))
			}
			return value.Boolean(a[0].IsNull()), nil
		}},
		{"list", func(s *vm.State, rib value.Value) (value.Value, error) {
			return trackList(s, args(rib)), nil
		}},
		{"list?", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("list?", 1, len(a))
			}
			_, ok := value.ListToSlice(a[0])
			return value.Boolean(ok), nil
		}},
		{"length", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("length", 1, len(a))
			}
			n := value.ListLength(a[0])
			if n < 0 {
				return value.Null, typeErr("length", "proper list", a[0])
			}
			return value.Fixnum(int64(n)), nil
		}},
		{"append", func(s *vm.State, rib value.Value) (value.Value, error) {
			lists := args(rib)
			if len(lists) == 0 {
				return value.Null, nil
			}
			var out []value.Value
			for _, l := range lists[:len(lists)-1] {
				items, ok := value.ListToSlice(l)
				if !ok {
					return value.Null, typeErr("append", "proper list", l)
				}
				out = append(out, items...)
			}
			tail := lists[len(lists)-1]
			result := tail
			for i := len(out) - 1; i >= 0; i-- {
				p := value.NewPair(out[i], result)
				s.Heap.Track(p)
				result = value.FromObject(p)
			}
			return result, nil
		}},
		{"reverse", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("reverse", 1, len(a))
			}
			items, ok := value.ListToSlice(a[0])
			if !ok {
				return value.Null, typeErr("reverse", "proper list", a[0])
			}
			out := value.Null
			for _, item := range items {
				p := value.NewPair(item, out)
				s.Heap.Track(p)
				out = value.FromObject(p)
			}
			return out, nil
		}},
		{"list-tail", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 || !a[1].IsFixnum() {
				return value.Null, arityErr("list-tail", 2, len(a))
			}
			cur := a[0]
			for k := a[1].AsFixnum(); k > 0; k-- {
				if !cur.IsPair() {
					return value.Null, typeErr("list-tail", "longer list", a[0])
				}
				cur = cur.AsPair().Tail
			}
			return cur, nil
		}},
		{"list-ref", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 2 || !a[1].IsFixnum() {
				return value.Null, arityErr("list-ref", 2, len(a))
			}
			cur := a[0]
			for k := a[1].AsFixnum(); k > 0; k-- {
				if !cur.IsPair() {
					return value.Null, typeErr("list-ref", "longer list", a[0])
				}
				cur = cur.AsPair().Tail
			}
			if !cur.IsPair() {
				return value.Null, typeErr("list-ref", "longer list", a[0])
			}
			return cur.AsPair().Head, nil
		}},
		{"memq", func(s *vm.State, rib value.Value) (value.Value, error) { return memberBy(args(rib), "memq", value.Eq) }},
		{"memv", func(s *vm.State, rib value.Value) (value.Value, error) { return memberBy(args(rib), "memv", value.Eqv) }},
		{"member", func(s *vm.State, rib value.Value) (value.Value, error) { return memberBy(args(rib), "member", value.Equal) }},
		{"assq", func(s *vm.State, rib value.Value) (value.Value, error) { return assocBy(args(rib), "assq", value.Eq) }},
		{"assv", func(s *vm.State, rib value.Value) (value.Value, error) { return assocBy(args(rib), "assv", value.Eqv) }},
		{"assoc", func(s *vm.State, rib value.Value) (value.Value, error) { return assocBy(args(rib), "assoc", value.Equal) }},
	}
}

func trackList(s *vm.State, items []value.Value) value.Value {
	out := value.Null
	for i := len(items) - 1; i >= 0; i-- {
		p := value.NewPair(items[i], out)
		s.Heap.Track(p)
		out = value.FromObject(p)
	}
	return out
}

func memberBy(a []value.Value, name string, eq func(value.Value, value.Value) bool) (value.Value, error) {
	if len(a) != 2 {
		return value.Null, arityErr(name, 2, len(a))
	}
	cur := a[1]
	for cur.IsPair() {
		p := cur.AsPair()
		if eq(a[0], p.Head) {
			return cur, nil
		}
		cur = p.Tail
	}
	return value.Boolean(false), nil
}

func assocBy(a []value.Value, name string, eq func(value.Value, value.Value) bool) (value.Value, error) {
	if len(a) != 2 {
		return value.Null, arityErr(name, 2, len(a))
	}
	cur := a[1]
	for cur.IsPair() {
		p := cur.AsPair()
		if p.Head.IsPair() && eq(a[0], p.Head.AsPair().Head) {
			return p.Head, nil
		}
		cur = p.Tail
	}
	return value.Boolean(false), nil
}
