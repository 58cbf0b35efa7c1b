package stdlib

import (
	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// numberBuiltins implements the number component of register_standard_
// library, grounded on original_source/src/number.c's fixnum/real
// arithmetic and comparison routines. Arithmetic promotes to real the
// moment any argument is real, matching the original's exactness rules;
// / always returns a real, even for exact arguments.
func numberBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"+", arith("+", 0, func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b })},
		{"*", arith("*", 1, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b })},
		{"-", func(s *vm.State, rib value.Value) (value.Value, error) { return subtract(args(rib)) }},
		{"/", func(s *vm.State, rib value.Value) (value.Value, error) { return divide(args(rib)) }},
		{"=", compare("=", func(c int) bool { return c == 0 })},
		{"<", compare("<", func(c int) bool { return c < 0 })},
		{">", compare(">", func(c int) bool { return c > 0 })},
		{"<=", compare("<=", func(c int) bool { return c <= 0 })},
		{">=", compare(">=", func(c int) bool { return c >= 0 })},
		{"number?", predicate(func(v value.Value) bool { return v.IsNumber() })},
		{"integer?", predicate(func(v value.Value) bool {
			return v.IsFixnum() || (v.IsReal() && v.AsReal() == float64(int64(v.AsReal())))
		})},
		{"exact?", predicate(func(v value.Value) bool { return v.IsFixnum() })},
		{"inexact?", predicate(func(v value.Value) bool { return v.IsReal() })},
		{"zero?", numPredicate("zero?", func(f float64) bool { return f == 0 })},
		{"positive?", numPredicate("positive?", func(f float64) bool { return f > 0 })},
		{"negative?", numPredicate("negative?", func(f float64) bool { return f < 0 })},
		{"odd?", intPredicate("odd?", func(i int64) bool { return i%2 != 0 })},
		{"even?", intPredicate("even?", func(i int64) bool { return i%2 == 0 })},
		{"abs", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("abs", 1, len(a))
			}
			if a[0].IsFixnum() {
				n := a[0].AsFixnum()
				if n < 0 {
					n = -n
				}
				return value.Fixnum(n), nil
			}
			if a[0].IsReal() {
				f := a[0].AsReal()
				if f < 0 {
					f = -f
				}
				return value.Real(f), nil
			}
			return value.Null, typeErr("abs", "number", a[0])
		}},
		{"quotient", intBinOp("quotient", func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, badResource("quotient", "division by zero")
			}
			return a / b, nil
		})},
		{"remainder", intBinOp("remainder", func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, badResource("remainder", "division by zero")
			}
			return a % b, nil
		})},
		{"modulo", intBinOp("modulo", func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, badResource("modulo", "division by zero")
			}
			m := a % b
			if m != 0 && (m < 0) != (b < 0) {
				m += b
			}
			return m, nil
		})},
		{"exact->inexact", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("exact->inexact", 1, len(a))
			}
			return value.Real(toFloat(a[0])), nil
		}},
		{"inexact->exact", func(s *vm.State, rib value.Value) (value.Value, error) {
			a := args(rib)
			if len(a) != 1 {
				return value.Null, arityErr("inexact->exact", 1, len(a))
			}
			return value.Fixnum(int64(toFloat(a[0]))), nil
		}},
	}
}

func toFloat(v value.Value) float64 {
	if v.IsFixnum() {
		return float64(v.AsFixnum())
	}
	return v.AsReal()
}

func arith(name string, identity int64, freal func(a, b float64) float64, fint func(a, b int64) int64) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		inexact := false
		for _, v := range a {
			if !v.IsNumber() {
				return value.Null, typeErr(name, "number", v)
			}
			if v.IsReal() {
				inexact = true
			}
		}
		if inexact {
			acc := float64(identity)
			for _, v := range a {
				acc = freal(acc, toFloat(v))
			}
			return value.Real(acc), nil
		}
		acc := identity
		for _, v := range a {
			acc = fint(acc, v.AsFixnum())
		}
		return value.Fixnum(acc), nil
	}
}

func subtract(a []value.Value) (value.Value, error) {
	if len(a) == 0 {
		return value.Null, arityErr("-", 1, 0)
	}
	for _, v := range a {
		if !v.IsNumber() {
			return value.Null, typeErr("-", "number", v)
		}
	}
	if len(a) == 1 {
		if a[0].IsFixnum() {
			return value.Fixnum(-a[0].AsFixnum()), nil
		}
		return value.Real(-a[0].AsReal()), nil
	}
	inexact := anyReal(a)
	if inexact {
		acc := toFloat(a[0])
		for _, v := range a[1:] {
			acc -= toFloat(v)
		}
		return value.Real(acc), nil
	}
	acc := a[0].AsFixnum()
	for _, v := range a[1:] {
		acc -= v.AsFixnum()
	}
	return value.Fixnum(acc), nil
}

func divide(a []value.Value) (value.Value, error) {
	if len(a) == 0 {
		return value.Null, arityErr("/", 1, 0)
	}
	for _, v := range a {
		if !v.IsNumber() {
			return value.Null, typeErr("/", "number", v)
		}
	}
	if len(a) == 1 {
		if toFloat(a[0]) == 0 {
			return value.Null, badResource("/", "division by zero")
		}
		return value.Real(1 / toFloat(a[0])), nil
	}
	acc := toFloat(a[0])
	for _, v := range a[1:] {
		f := toFloat(v)
		if f == 0 {
			return value.Null, badResource("/", "division by zero")
		}
		acc /= f
	}
	return value.Real(acc), nil
}

func anyReal(a []value.Value) bool {
	for _, v := range a {
		if v.IsReal() {
			return true
		}
	}
	return false
}

func compare(name string, test func(int) bool) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		if len(a) < 2 {
			return value.Null, arityErr(name, 2, len(a))
		}
		for i := 0; i+1 < len(a); i++ {
			if !a[i].IsNumber() || !a[i+1].IsNumber() {
				return value.Null, typeErr(name, "number", a[i])
			}
			x, y := toFloat(a[i]), toFloat(a[i+1])
			c := 0
			switch {
			case x < y:
				c = -1
			case x > y:
				c = 1
			}
			if !test(c) {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	}
}

func predicate(test func(value.Value) bool) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		if len(a) != 1 {
			return value.Null, arityErr("predicate", 1, len(a))
		}
		return value.Boolean(test(a[0])), nil
	}
}

func numPredicate(name string, test func(float64) bool) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		if len(a) != 1 || !a[0].IsNumber() {
			return value.Null, typeErr(name, "number", firstOr(a))
		}
		return value.Boolean(test(toFloat(a[0]))), nil
	}
}

func intPredicate(name string, test func(int64) bool) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		if len(a) != 1 || !a[0].IsFixnum() {
			return value.Null, typeErr(name, "integer", firstOr(a))
		}
		return value.Boolean(test(a[0].AsFixnum())), nil
	}
}

func intBinOp(name string, op func(a, b int64) (int64, error)) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := args(rib)
		if len(a) != 2 || !a[0].IsFixnum() || !a[1].IsFixnum() {
			return value.Null, typeErr(name, "integer", firstOr(a))
		}
		r, err := op(a[0].AsFixnum(), a[1].AsFixnum())
		if err != nil {
			return value.Null, err
		}
		return value.Fixnum(r), nil
	}
}

func firstOr(a []value.Value) value.Value {
	if len(a) == 0 {
		return value.Null
	}
	return a[0]
}
