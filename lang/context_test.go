package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestContext_Bindings(t *testing.T) {
	ctx := NewContext()
	ctx.SetVariable("d", num("3"))
	ctx.SetFunction("two", func(...Value) (Value, error) { return num("2"), nil })

	if v, ok := ctx.Variable("d"); !ok || !v.Equal(num("3")) {
		t.Errorf("expected 3, got %v (%v)", v, ok)
	}

	if _, ok := ctx.Variable("two"); ok {
		t.Error("function binding reported as variable")
	}

	if _, ok := ctx.Function("d"); ok {
		t.Error("variable binding reported as function")
	}

	if fn, ok := ctx.Function("two"); !ok {
		t.Error("function binding not found")
	} else if v, err := fn(); err != nil || !v.Equal(num("2")) {
		t.Errorf("expected 2, got %v (%v)", v, err)
	}

	if _, ok := ctx.Variable("unbound"); ok {
		t.Error("unbound name reported as variable")
	}
}

func TestContext_RebindReplacesKind(t *testing.T) {
	ctx := NewContext()

	ctx.SetVariable("x", num("1"))
	ctx.SetFunction("x", func(...Value) (Value, error) { return num("2"), nil })

	if _, ok := ctx.Variable("x"); ok {
		t.Error("variable binding survived function rebind")
	}

	ctx.SetVariable("x", num("3"))

	if _, ok := ctx.Function("x"); ok {
		t.Error("function binding survived variable rebind")
	}

	if v, ok := ctx.Variable("x"); !ok || !v.Equal(num("3")) {
		t.Errorf("expected 3, got %v (%v)", v, ok)
	}
}

func TestContext_Resolve(t *testing.T) {
	ctx := NewContext()
	ctx.SetVariable("d", num("3"))
	ctx.SetFunction("two", func(...Value) (Value, error) { return num("2"), nil })

	failure := NewError("lookup failed")
	ctx.SetFunction("bad", func(...Value) (Value, error) { return None(), failure })

	tests := []struct {
		name    string
		ref     string
		want    Value
		wantErr error
	}{
		{name: "unbound resolves to none", ref: "ghost", want: None()},
		{name: "variable", ref: "d", want: num("3")},
		{name: "function is called", ref: "two", want: num("2")},
		{name: "function error propagates", ref: "bad", wantErr: failure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ctx.Resolve(tt.ref)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("resolve error: %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestContext_ZeroValue(t *testing.T) {
	var ctx Context

	if v, err := ctx.Resolve("anything"); err != nil || !v.IsNone() {
		t.Errorf("expected None, got %v (%v)", v, err)
	}

	ctx.SetVariable("a", num("1"))

	if v, ok := ctx.Variable("a"); !ok || !v.Equal(num("1")) {
		t.Errorf("expected 1, got %v (%v)", v, ok)
	}

	var fnCtx Context

	fnCtx.SetFunction("f", func(...Value) (Value, error) { return None(), nil })

	if _, ok := fnCtx.Function("f"); !ok {
		t.Error("function binding not found on zero-value context")
	}
}

func TestContext_Names(t *testing.T) {
	ctx := NewContext()

	if names := ctx.Names(); len(names) != 0 {
		t.Errorf("expected no names, got %v", names)
	}

	ctx.SetVariable("charlie", None())
	ctx.SetVariable("alpha", None())
	ctx.SetFunction("bravo", func(...Value) (Value, error) { return None(), nil })

	want := []string{"alpha", "bravo", "charlie"}
	if got := ctx.Names(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
