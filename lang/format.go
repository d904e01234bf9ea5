package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Render returns the canonical text of the expression.
//
// The text is whitespace-normalized and quote-normalized, so it may
// differ from the source the tree was parsed from, but parsing it again
// yields a tree that evaluates identically. Subexpressions are
// parenthesized only where the parse would otherwise regroup them:
// a tighter-binding parent around a looser child, an operand of a prefix
// or postfix operator that is itself compound, and same-precedence
// nesting against the fold direction, as in "2 - (3 - 4)".
func (e *Expr) Render() string {
	switch e.kind {
	case exprLiteral:
		return e.val.String()

	case exprReference:
		return e.op

	case exprFunction:
		return e.op + "(" + renderJoin(e.list, ",") + ")"

	case exprUnary:
		return e.op + " " + renderTerm(e.rhs)

	case exprPostfix:
		return renderTerm(e.lhs) + " " + e.op

	case exprBinary:
		return e.renderOperand(e.lhs, false) + " " + e.op + " " + e.renderOperand(e.rhs, true)

	case exprTernary:
		cond := e.cond.Render()
		if e.cond.kind == exprTernary {
			cond = "(" + cond + ")"
		}

		return cond + " ? " + e.lhs.Render() + " : " + e.rhs.Render()

	case exprList:
		return "[" + renderJoin(e.list, ",") + "]"

	case exprMap:
		item := make([]string, len(e.pairs))
		for i, p := range e.pairs {
			item[i] = p.key.Render() + ":" + p.val.Render()
		}

		return "{" + strings.Join(item, ",") + "}"

	default:
		return renderJoin(e.list, ";")
	}
}

func renderJoin(exprs []*Expr, sep string) string {
	item := make([]string, len(exprs))
	for i, e := range exprs {
		item[i] = e.Render()
	}

	return strings.Join(item, sep)
}

// renderTerm renders a prefix or postfix operand, parenthesized when it
// is compound enough for the operator to otherwise capture only part of
// it.
func renderTerm(e *Expr) string {
	s := e.Render()
	if e.kind == exprBinary || e.kind == exprTernary {
		return "(" + s + ")"
	}

	return s
}

// renderOperand renders one side of a binary node, parenthesized when
// reparsing the flat text would regroup it.
func (e *Expr) renderOperand(child *Expr, rightSide bool) string {
	s := child.Render()
	if e.operandNeedsParens(child, rightSide) {
		return "(" + s + ")"
	}

	return s
}

func (e *Expr) operandNeedsParens(child *Expr, rightSide bool) bool {
	switch child.kind {
	case exprTernary:
		return true

	case exprBinary:
		pp := e.reg.infixPrec(e.op)

		cp := e.reg.infixPrec(child.op)
		if cp < pp {
			return true
		}

		if cp > pp {
			return false
		}

		// Equal precedence regroups when the nesting runs against the
		// fold direction.
		ent, ok := e.reg.infixFn(e.op)
		if !ok {
			return false
		}

		if ent.assoc == AssocRight {
			return !rightSide
		}

		return rightSide

	default:
		return false
	}
}

// Format writes the value in expression literal syntax, ending with a
// newline. With indent zero everything stays on one line; otherwise
// lists and maps break across lines at the given indent width.
func (v Value) Format(_ context.Context, w io.Writer, indent int) error {
	if err := writeValue(w, v, indent, 0); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w)

	return err
}

func writeValue(w io.Writer, v Value, indent, depth int) error {
	if indent <= 0 || (v.kind != KindList && v.kind != KindMap) {
		_, err := fmt.Fprint(w, v.String())

		return err
	}

	opener, closer := "[", "]"
	if v.kind == KindMap {
		opener, closer = "{", "}"
	}

	if _, err := fmt.Fprintln(w, opener); err != nil {
		return err
	}

	pad := strings.Repeat(" ", (depth+1)*indent)

	write := func(prefix string, item Value) error {
		if _, err := fmt.Fprint(w, pad, prefix); err != nil {
			return err
		}

		if err := writeValue(w, item, indent, depth+1); err != nil {
			return err
		}

		// Trailing comma on every entry for easier editing
		_, err := fmt.Fprintln(w, ",")

		return err
	}

	switch v.kind {
	case KindList:
		for _, item := range v.list {
			if err := write("", item); err != nil {
				return err
			}
		}
	case KindMap:
		for _, p := range v.pairs {
			if err := write(p.Key.String()+": ", p.Val); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprint(w, strings.Repeat(" ", depth*indent), closer)

	return err
}

// FormatJSON writes the value as JSON, ending with a newline. Numbers
// keep their exact decimal digits, map entries keep their order, and
// non-string map keys are stringified, so {3:false} becomes {"3":false}.
func (v Value) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	data := v.appendJSON(nil)

	if indent > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", strings.Repeat(" ", indent)); err != nil {
			return err
		}

		data = buf.Bytes()
	}

	_, err := fmt.Fprintln(w, string(data))

	return err
}

func (v Value) appendJSON(dst []byte) []byte {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(dst, v.boo)

	case KindNumber:
		return append(dst, v.num.String()...)

	case KindString:
		return appendJSONString(dst, v.str)

	case KindList:
		dst = append(dst, '[')
		for i, item := range v.list {
			if i > 0 {
				dst = append(dst, ',')
			}

			dst = item.appendJSON(dst)
		}

		return append(dst, ']')

	case KindMap:
		dst = append(dst, '{')
		for i, p := range v.pairs {
			if i > 0 {
				dst = append(dst, ',')
			}

			dst = appendJSONString(dst, jsonKey(p.Key))
			dst = append(dst, ':')
			dst = p.Val.appendJSON(dst)
		}

		return append(dst, '}')

	default:
		return append(dst, "null"...)
	}
}

func appendJSONString(dst []byte, s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshaling a string never fails.
		return append(dst, `""`...)
	}

	return append(dst, b...)
}

// jsonKey flattens a map key to the string JSON requires.
func jsonKey(k Value) string {
	if k.kind == KindString {
		return k.str
	}

	return k.String()
}

// FormatYAML writes the value as YAML. With indent zero the value is
// written in flow style on one line; otherwise in block style at the
// given indent width. Map entries keep their order.
func (v Value) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v.toAny(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// toAny converts the value for YAML marshaling. Integral numbers that
// fit an int64 convert exactly; other numbers round to the nearest
// float64.
func (v Value) toAny() any {
	switch v.kind {
	case KindBool:
		return v.boo

	case KindNumber:
		if v.num.IsInteger() && v.num.BigInt().IsInt64() {
			return v.num.IntPart()
		}

		return v.num.InexactFloat64()

	case KindString:
		return v.str

	case KindList:
		items := make([]any, len(v.list))
		for i, item := range v.list {
			items[i] = item.toAny()
		}

		return items

	case KindMap:
		items := make(yaml.MapSlice, len(v.pairs))
		for i, p := range v.pairs {
			items[i] = yaml.MapItem{Key: p.Key.toAny(), Value: p.Val.toAny()}
		}

		return items

	default:
		return nil
	}
}
