package lang

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// installFunctions populates a fresh Registry with the built-in numeric
// functions. All of them accept any number of numeric arguments.
func (r *Registry) installFunctions() {
	r.RegisterFunction("min", pickNumeric("min", func(acc, n decimal.Decimal) decimal.Decimal {
		return decimal.Min(acc, n)
	}))
	r.RegisterFunction("max", pickNumeric("max", func(acc, n decimal.Decimal) decimal.Decimal {
		return decimal.Max(acc, n)
	}))
	r.RegisterFunction("sum", foldNumeric(decimal.Zero, decimal.Decimal.Add))
	r.RegisterFunction("mul", foldNumeric(decimal.NewFromInt(1), decimal.Decimal.Mul))
}

// pickNumeric folds fn over at least one numeric argument, seeded with
// the first. Zero arguments is an error since no element can be picked.
func pickNumeric(name string, fn func(acc, n decimal.Decimal) decimal.Decimal) Function {
	return func(args ...Value) (Value, error) {
		if len(args) == 0 {
			return None(), ErrParamCountMismatch.With(slog.String("function", name))
		}

		acc, err := args[0].Decimal()
		if err != nil {
			return None(), err
		}

		for _, arg := range args[1:] {
			n, err := arg.Decimal()
			if err != nil {
				return None(), err
			}

			acc = fn(acc, n)
		}

		return Number(acc), nil
	}
}

// foldNumeric folds fn over any number of numeric arguments, seeded with
// the fold identity, so zero arguments yields the seed itself.
func foldNumeric(seed decimal.Decimal, fn func(acc, n decimal.Decimal) decimal.Decimal) Function {
	return func(args ...Value) (Value, error) {
		acc := seed

		for _, arg := range args {
			n, err := arg.Decimal()
			if err != nil {
				return None(), err
			}

			acc = fn(acc, n)
		}

		return Number(acc), nil
	}
}
