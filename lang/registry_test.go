package lang

import (
	"cmp"
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
)

func findInfix(t *testing.T, ops []InfixOp, op string) InfixOp {
	t.Helper()

	for _, ent := range ops {
		if ent.Op == op {
			return ent
		}
	}

	t.Fatalf("operator %q not found in %v", op, ops)

	return InfixOp{}
}

func TestRegistry_Builtins(t *testing.T) {
	reg := New()

	prefix := reg.PrefixOperators()
	for _, op := range []string{"!", "+", "-", "AND", "OR", "not"} {
		if !slices.Contains(prefix, op) {
			t.Errorf("prefix operator %q not registered", op)
		}
	}

	if !slices.IsSorted(prefix) {
		t.Errorf("prefix operators not sorted: %v", prefix)
	}

	postfix := reg.PostfixOperators()
	if want := []string{"++", "--"}; !slices.Equal(postfix, want) {
		t.Errorf("expected %v, got %v", want, postfix)
	}

	funcs := reg.Functions()
	if want := []string{"max", "min", "mul", "sum"}; !slices.Equal(funcs, want) {
		t.Errorf("expected %v, got %v", want, funcs)
	}
}

func TestRegistry_InfixTable(t *testing.T) {
	ops := New().InfixOperators()

	sorted := slices.IsSortedFunc(ops, func(a, b InfixOp) int {
		if c := cmp.Compare(a.Prec, b.Prec); c != 0 {
			return c
		}

		return cmp.Compare(a.Op, b.Op)
	})
	if !sorted {
		t.Errorf("infix operators not sorted by precedence then symbol: %v", ops)
	}

	assign := findInfix(t, ops, "=")
	if !assign.Setter || assign.Assoc != AssocRight {
		t.Errorf("expected right-associative setter, got %+v", assign)
	}

	if compound := findInfix(t, ops, "+="); compound.Prec != assign.Prec || !compound.Setter {
		t.Errorf("expected setter at %d, got %+v", assign.Prec, compound)
	}

	add := findInfix(t, ops, "+")
	if add.Setter || add.Assoc != AssocLeft {
		t.Errorf("expected left-associative calculator, got %+v", add)
	}

	// Built-in precedence tiers, loosest to tightest.
	tiers := []string{"=", "||", "&&", "==", "|", "^", "&", "<<", "+", "*"}
	for i := 1; i < len(tiers); i++ {
		lo := findInfix(t, ops, tiers[i-1])
		hi := findInfix(t, ops, tiers[i])

		if lo.Prec >= hi.Prec {
			t.Errorf("expected %q to bind looser than %q, got %d >= %d",
				lo.Op, hi.Op, lo.Prec, hi.Prec)
		}
	}

	// Word operators share the comparison tier.
	for _, op := range []string{"in", "beginWith", "endWith"} {
		if ent := findInfix(t, ops, op); ent.Prec != findInfix(t, ops, "==").Prec {
			t.Errorf("expected %q on the comparison tier, got %+v", op, ent)
		}
	}
}

func TestRegistry_Isolation(t *testing.T) {
	reg1 := New()
	reg2 := New()

	reg1.RegisterFunction("isolated", func(...Value) (Value, error) {
		return num("1"), nil
	})

	if slices.Contains(reg2.Functions(), "isolated") {
		t.Error("registration leaked into a sibling registry")
	}

	if slices.Contains(Default().Functions(), "isolated") {
		t.Error("registration leaked into the default registry")
	}

	got := evalString(t, nil, "isolated()", WithRegistry(reg1))
	if !got.Equal(num("1")) {
		t.Errorf("expected 1, got %v", got)
	}

	ast, err := Parse("isolated()", WithRegistry(reg2))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if _, err := ast.Exec(nil); !errors.Is(err, ErrFunctionNotRegistered) {
		t.Errorf("expected ErrFunctionNotRegistered, got %v", err)
	}
}

func TestRegistry_RedirectInfix(t *testing.T) {
	reg := New()

	if err := reg.RedirectInfix("plus", "+"); err != nil {
		t.Fatalf("redirect error: %v", err)
	}

	got := evalString(t, nil, "1 plus 2 * 3", WithRegistry(reg))
	if !got.Equal(num("7")) {
		t.Errorf("expected 7, got %v", got)
	}

	// The redirect copied the handler. Replacing the target afterwards
	// must not follow.
	reg.RegisterInfix("+", 110, AssocLeft, func(lhs, rhs Value) (Value, error) {
		return None(), nil
	})

	got = evalString(t, nil, "1 plus 2", WithRegistry(reg))
	if !got.Equal(num("3")) {
		t.Errorf("expected 3 from copied handler, got %v", got)
	}
}

func TestRegistry_RedirectSetterClass(t *testing.T) {
	reg := New()

	if err := reg.RedirectInfix("<<<", "="); err != nil {
		t.Fatalf("redirect error: %v", err)
	}

	ent := findInfix(t, reg.InfixOperators(), "<<<")
	if !ent.Setter || ent.Assoc != AssocRight {
		t.Errorf("expected setter copy, got %+v", ent)
	}

	ctx := NewContext()

	got := evalString(t, ctx, "a <<< 5;a", WithRegistry(reg))
	if !got.Equal(num("5")) {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestRegistry_RedirectPrefixPostfixFunction(t *testing.T) {
	reg := New()

	if err := reg.RedirectPrefix("neg", "-"); err != nil {
		t.Fatalf("redirect error: %v", err)
	}

	if err := reg.RedirectPostfix("incr", "++"); err != nil {
		t.Fatalf("redirect error: %v", err)
	}

	if err := reg.RedirectFunction("smallest", "min"); err != nil {
		t.Fatalf("redirect error: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{name: "prefix copy", input: "neg 5", want: num("-5")},
		{name: "postfix copy", input: "5 incr", want: num("6")},
		{name: "function copy", input: "smallest(3, 1, 2)", want: num("1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalString(t, nil, tt.input, WithRegistry(reg))
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRegistry_RedirectMissingTarget(t *testing.T) {
	reg := New()

	tests := []struct {
		name string
		err  error
	}{
		{name: "prefix", err: reg.RedirectPrefix("x", "nosuch")},
		{name: "infix", err: reg.RedirectInfix("x", "nosuch")},
		{name: "postfix", err: reg.RedirectPostfix("x", "nosuch")},
		{name: "function", err: reg.RedirectFunction("x", "nosuch")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrRedirectTarget) {
				t.Errorf("expected ErrRedirectTarget, got %v", tt.err)
			}
		})
	}

	if reg.isOperator("x") {
		t.Error("failed redirect registered the operator anyway")
	}
}

func TestRegistry_Remove(t *testing.T) {
	reg := New()

	reg.RemoveFunction("min")

	if slices.Contains(reg.Functions(), "min") {
		t.Error("removed function still enumerated")
	}

	if !slices.Contains(Default().Functions(), "min") {
		t.Error("removal leaked into the default registry")
	}

	ast, err := Parse("min(1)", WithRegistry(reg))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if _, err := ast.Exec(nil); !errors.Is(err, ErrFunctionNotRegistered) {
		t.Errorf("expected ErrFunctionNotRegistered, got %v", err)
	}

	// Removing an unknown name is a no-op.
	reg.RemoveFunction("nosuch")
	reg.RemovePrefix("nosuch")
	reg.RemoveInfix("nosuch")
	reg.RemovePostfix("nosuch")
}

func TestRegistry_PackageLevel(t *testing.T) {
	RegisterFunction("registryTestTriple", func(args ...Value) (Value, error) {
		d, err := args[0].Decimal()
		if err != nil {
			return None(), err
		}

		return Number(d.Mul(decimal.NewFromInt(3))), nil
	})
	defer Default().RemoveFunction("registryTestTriple")

	got, err := Execute("registryTestTriple(7)", NewContext())
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}

	if !got.Equal(num("21")) {
		t.Errorf("expected 21, got %v", got)
	}
}
