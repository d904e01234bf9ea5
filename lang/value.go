package lang

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies the dynamic type of a [Value].
type Kind uint8

// Value kinds, in order of the zero value first.
const (
	KindNone Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Pair is a single key-value entry of a map [Value].
// Map entries preserve insertion order and do not deduplicate keys.
type Pair struct {
	Key Value
	Val Value
}

// Value is the dynamic result type of expression evaluation.
//
// A Value holds exactly one of: nothing (None), a boolean, an
// arbitrary-precision decimal number, a string, a list of values, or an
// ordered list of key-value pairs. The zero value is None.
//
// Values contain slices and must be compared with [Value.Equal], not ==.
type Value struct {
	num   decimal.Decimal
	str   string
	list  []Value
	pairs []Pair
	boo   bool
	kind  Kind
}

// None returns the absent value.
func None() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, boo: b} }

// Number returns a numeric Value.
func Number(num decimal.Decimal) Value { return Value{kind: KindNumber, num: num} }

// Int returns a numeric Value from an integer.
func Int(num int64) Value { return Number(decimal.NewFromInt(num)) }

// Float returns a numeric Value from a float.
func Float(num float64) Value { return Number(decimal.NewFromFloat(num)) }

// String returns a string Value.
func String(str string) Value { return Value{kind: KindString, str: str} }

// List returns a list Value holding the given items.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map returns a map Value holding the given entries in order.
func Map(pairs ...Pair) Value { return Value{kind: KindMap, pairs: pairs} }

// ParseNumber returns a numeric Value parsed from decimal notation,
// including scientific notation such as "1.5e3".
func ParseNumber(str string) (Value, error) {
	num, err := decimal.NewFromString(str)
	if err != nil {
		return None(), ErrInvalidNumber.Wrap(err)
	}

	return Number(num), nil
}

// Kind returns the dynamic type of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether the value is None.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Decimal returns the numeric value, or ErrInvalidNumber for other kinds.
func (v Value) Decimal() (decimal.Decimal, error) {
	if v.kind != KindNumber {
		return decimal.Decimal{}, ErrInvalidNumber
	}

	return v.num, nil
}

// Bool returns the boolean value, or ErrInvalidBoolean for other kinds.
func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, ErrInvalidBoolean
	}

	return v.boo, nil
}

// Text returns the string value, or ErrInvalidString for other kinds.
func (v Value) Text() (string, error) {
	if v.kind != KindString {
		return "", ErrInvalidString
	}

	return v.str, nil
}

// Int64 returns the numeric value as an integer.
// It returns ErrInvalidInteger unless the value is a number with no
// fractional part that fits in an int64.
func (v Value) Int64() (int64, error) {
	if v.kind != KindNumber || !v.num.IsInteger() || !v.num.BigInt().IsInt64() {
		return 0, ErrInvalidInteger
	}

	return v.num.IntPart(), nil
}

// Float64 returns the nearest float64 to the numeric value,
// or ErrInvalidNumber for other kinds.
func (v Value) Float64() (float64, error) {
	if v.kind != KindNumber {
		return 0, ErrInvalidNumber
	}

	return v.num.InexactFloat64(), nil
}

// Items returns the list elements, or ErrInvalidList for other kinds.
func (v Value) Items() ([]Value, error) {
	if v.kind != KindList {
		return nil, ErrInvalidList
	}

	return v.list, nil
}

// Pairs returns the map entries in order, or ErrInvalidMap for other kinds.
func (v Value) Pairs() ([]Pair, error) {
	if v.kind != KindMap {
		return nil, ErrInvalidMap
	}

	return v.pairs, nil
}

// Equal reports structural equality.
//
// Numbers compare by magnitude, ignoring scale, so 1.5 equals 1.50.
// Lists compare elementwise. Maps compare entries pairwise in order,
// so maps with the same entries in a different order are not equal.
// Values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNone:
		return true
	case KindBool:
		return v.boo == o.boo
	case KindNumber:
		return v.num.Equal(o.num)
	case KindString:
		return v.str == o.str
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}

		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}

		return true
	case KindMap:
		if len(v.pairs) != len(o.pairs) {
			return false
		}

		for i := range v.pairs {
			if !v.pairs[i].Key.Equal(o.pairs[i].Key) ||
				!v.pairs[i].Val.Equal(o.pairs[i].Val) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// String returns a human-readable form of the value.
//
// Strings are quoted the same way [Expr.Render] quotes string literals,
// None renders as "None", and lists and maps render elementwise.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.boo)
	case KindNumber:
		return v.num.String()
	case KindString:
		return quoteString(v.str)
	case KindList:
		item := make([]string, len(v.list))
		for i, e := range v.list {
			item[i] = e.String()
		}

		return "[" + strings.Join(item, ",") + "]"
	case KindMap:
		item := make([]string, len(v.pairs))
		for i, p := range v.pairs {
			item[i] = p.Key.String() + ":" + p.Val.String()
		}

		return "{" + strings.Join(item, ",") + "}"
	default:
		return "None"
	}
}

// quoteString wraps s in double quotes, or single quotes when s itself
// contains a double quote. String literals have no escape sequences, so
// a string containing both quote characters cannot be round-tripped.
func quoteString(s string) string {
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}

	return `"` + s + `"`
}
