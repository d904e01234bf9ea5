package lang

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Built-in infix precedence tiers. Higher binds tighter. Setters occupy
// the loosest tier so that every calculating operator completes before
// an assignment folds.
const (
	setterPrec  = 20
	orPrec      = 40
	andPrec     = 50
	comparePrec = 60
	bitOrPrec   = 70
	bitXorPrec  = 80
	bitAndPrec  = 90
	shiftPrec   = 100
	addPrec     = 110
	mulPrec     = 120
	wordPrec    = 200
)

// installOperators populates a fresh Registry with the built-in prefix,
// infix, and postfix operator tables.
func (r *Registry) installOperators() {
	r.RegisterSetter("=", func(_, rhs Value) (Value, error) { return rhs, nil })

	r.RegisterSetter("+=", numericInfix(addDec))
	r.RegisterSetter("-=", numericInfix(subDec))
	r.RegisterSetter("*=", numericInfix(mulDec))
	r.RegisterSetter("/=", numericInfix(divDec))
	r.RegisterSetter("%=", numericInfix(modDec))

	r.RegisterSetter("<<=", integerInfix(shlInt))
	r.RegisterSetter(">>=", integerInfix(shrInt))
	r.RegisterSetter("&=", integerInfix(andInt))
	r.RegisterSetter("^=", integerInfix(xorInt))
	r.RegisterSetter("|=", integerInfix(orInt))

	r.RegisterInfix("||", orPrec, AssocLeft, booleanInfix(func(a, b bool) bool { return a || b }))
	r.RegisterInfix("&&", andPrec, AssocLeft, booleanInfix(func(a, b bool) bool { return a && b }))

	r.RegisterInfix("<", comparePrec, AssocLeft, compareInfix(decimal.Decimal.LessThan))
	r.RegisterInfix("<=", comparePrec, AssocLeft, compareInfix(decimal.Decimal.LessThanOrEqual))
	r.RegisterInfix(">", comparePrec, AssocLeft, compareInfix(decimal.Decimal.GreaterThan))
	r.RegisterInfix(">=", comparePrec, AssocLeft, compareInfix(decimal.Decimal.GreaterThanOrEqual))

	// Equality is structural and accepts operands of any kind.
	r.RegisterInfix("==", comparePrec, AssocLeft, func(lhs, rhs Value) (Value, error) {
		return Bool(lhs.Equal(rhs)), nil
	})
	r.RegisterInfix("!=", comparePrec, AssocLeft, func(lhs, rhs Value) (Value, error) {
		return Bool(!lhs.Equal(rhs)), nil
	})

	r.RegisterInfix("|", bitOrPrec, AssocLeft, integerInfix(orInt))
	r.RegisterInfix("^", bitXorPrec, AssocLeft, integerInfix(xorInt))
	r.RegisterInfix("&", bitAndPrec, AssocLeft, integerInfix(andInt))
	r.RegisterInfix("<<", shiftPrec, AssocLeft, integerInfix(shlInt))
	r.RegisterInfix(">>", shiftPrec, AssocLeft, integerInfix(shrInt))

	r.RegisterInfix("+", addPrec, AssocLeft, numericInfix(addDec))
	r.RegisterInfix("-", addPrec, AssocLeft, numericInfix(subDec))
	r.RegisterInfix("*", mulPrec, AssocLeft, numericInfix(mulDec))
	r.RegisterInfix("/", mulPrec, AssocLeft, numericInfix(divDec))
	r.RegisterInfix("%", mulPrec, AssocLeft, numericInfix(modDec))

	r.RegisterInfix("beginWith", wordPrec, AssocLeft, stringInfix(strings.HasPrefix))
	r.RegisterInfix("endWith", wordPrec, AssocLeft, stringInfix(strings.HasSuffix))

	// Membership scans the right operand, which must be a list, for an
	// element structurally equal to the left operand.
	r.RegisterInfix("in", wordPrec, AssocLeft, func(lhs, rhs Value) (Value, error) {
		items, err := rhs.Items()
		if err != nil {
			return None(), err
		}

		for _, item := range items {
			if lhs.Equal(item) {
				return Bool(true), nil
			}
		}

		return Bool(false), nil
	})

	r.RegisterPrefix("-", numericPrefix(decimal.Decimal.Neg))
	r.RegisterPrefix("+", numericPrefix(func(d decimal.Decimal) decimal.Decimal { return d }))
	r.RegisterPrefix("!", booleanPrefix(func(b bool) bool { return !b }))
	r.RegisterPrefix("not", booleanPrefix(func(b bool) bool { return !b }))

	// AND and OR fold a list of booleans, short-circuiting on the first
	// deciding element. The empty list folds to the identity.
	r.RegisterPrefix("AND", func(operand Value) (Value, error) {
		items, err := operand.Items()
		if err != nil {
			return None(), err
		}

		for _, item := range items {
			b, err := item.Bool()
			if err != nil {
				return None(), err
			}

			if !b {
				return Bool(false), nil
			}
		}

		return Bool(true), nil
	})
	r.RegisterPrefix("OR", func(operand Value) (Value, error) {
		items, err := operand.Items()
		if err != nil {
			return None(), err
		}

		for _, item := range items {
			b, err := item.Bool()
			if err != nil {
				return None(), err
			}

			if b {
				return Bool(true), nil
			}
		}

		return Bool(false), nil
	})

	one := decimal.NewFromInt(1)

	r.RegisterPostfix("++", func(operand Value) (Value, error) {
		n, err := operand.Decimal()
		if err != nil {
			return None(), err
		}

		return Number(n.Add(one)), nil
	})
	r.RegisterPostfix("--", func(operand Value) (Value, error) {
		n, err := operand.Decimal()
		if err != nil {
			return None(), err
		}

		return Number(n.Sub(one)), nil
	})
}

// numericInfix adapts a decimal operation into an InfixFunc that
// requires numeric operands.
func numericInfix(fn func(a, b decimal.Decimal) (decimal.Decimal, error)) InfixFunc {
	return func(lhs, rhs Value) (Value, error) {
		a, err := lhs.Decimal()
		if err != nil {
			return None(), err
		}

		b, err := rhs.Decimal()
		if err != nil {
			return None(), err
		}

		n, err := fn(a, b)
		if err != nil {
			return None(), err
		}

		return Number(n), nil
	}
}

// compareInfix adapts a decimal predicate into an InfixFunc that
// requires numeric operands.
func compareInfix(fn func(a, b decimal.Decimal) bool) InfixFunc {
	return func(lhs, rhs Value) (Value, error) {
		a, err := lhs.Decimal()
		if err != nil {
			return None(), err
		}

		b, err := rhs.Decimal()
		if err != nil {
			return None(), err
		}

		return Bool(fn(a, b)), nil
	}
}

// integerInfix adapts an int64 operation into an InfixFunc that requires
// integral numeric operands.
func integerInfix(fn func(a, b int64) (int64, error)) InfixFunc {
	return func(lhs, rhs Value) (Value, error) {
		a, err := lhs.Int64()
		if err != nil {
			return None(), err
		}

		b, err := rhs.Int64()
		if err != nil {
			return None(), err
		}

		n, err := fn(a, b)
		if err != nil {
			return None(), err
		}

		return Int(n), nil
	}
}

// booleanInfix adapts a boolean operation into an InfixFunc that
// requires boolean operands. Both operands are already evaluated by the
// time the handler runs, so built-in && and || do not short-circuit.
func booleanInfix(fn func(a, b bool) bool) InfixFunc {
	return func(lhs, rhs Value) (Value, error) {
		a, err := lhs.Bool()
		if err != nil {
			return None(), err
		}

		b, err := rhs.Bool()
		if err != nil {
			return None(), err
		}

		return Bool(fn(a, b)), nil
	}
}

// stringInfix adapts a string predicate into an InfixFunc that requires
// string operands.
func stringInfix(fn func(a, b string) bool) InfixFunc {
	return func(lhs, rhs Value) (Value, error) {
		a, err := lhs.Text()
		if err != nil {
			return None(), err
		}

		b, err := rhs.Text()
		if err != nil {
			return None(), err
		}

		return Bool(fn(a, b)), nil
	}
}

// numericPrefix adapts a decimal operation into a PrefixFunc that
// requires a numeric operand.
func numericPrefix(fn func(d decimal.Decimal) decimal.Decimal) PrefixFunc {
	return func(operand Value) (Value, error) {
		n, err := operand.Decimal()
		if err != nil {
			return None(), err
		}

		return Number(fn(n)), nil
	}
}

// booleanPrefix adapts a boolean operation into a PrefixFunc that
// requires a boolean operand.
func booleanPrefix(fn func(b bool) bool) PrefixFunc {
	return func(operand Value) (Value, error) {
		b, err := operand.Bool()
		if err != nil {
			return None(), err
		}

		return Bool(fn(b)), nil
	}
}

func addDec(a, b decimal.Decimal) (decimal.Decimal, error) { return a.Add(b), nil }
func subDec(a, b decimal.Decimal) (decimal.Decimal, error) { return a.Sub(b), nil }
func mulDec(a, b decimal.Decimal) (decimal.Decimal, error) { return a.Mul(b), nil }

func divDec(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Decimal{}, ErrDivisionByZero
	}

	return a.Div(b), nil
}

func modDec(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Decimal{}, ErrModuloByZero
	}

	return a.Mod(b), nil
}

func andInt(a, b int64) (int64, error) { return a & b, nil }
func orInt(a, b int64) (int64, error)  { return a | b, nil }
func xorInt(a, b int64) (int64, error) { return a ^ b, nil }

// shlInt and shrInt bound the shift count to the width of int64, since
// Go panics on negative shift counts at runtime.
func shlInt(a, b int64) (int64, error) {
	if b < 0 || b > 63 {
		return 0, ErrShiftCount
	}

	return a << uint(b), nil
}

func shrInt(a, b int64) (int64, error) {
	if b < 0 || b > 63 {
		return 0, ErrShiftCount
	}

	return a >> uint(b), nil
}
