package repl

import (
	"errors"
	"testing"

	"github.com/ardnew/reckon/lang"
	"github.com/ardnew/reckon/log"
)

// TestEnvSource verifies the editable rendering of context bindings:
// one setter statement per variable, sorted by name, functions omitted.
func TestEnvSource(t *testing.T) {
	env := lang.NewContext()
	env.SetVariable("x", lang.Int(5))
	env.SetVariable("label", lang.String("total"))
	env.SetVariable("parts", lang.List(lang.Int(1), lang.Int(2)))
	env.SetFunction("stamp", func(args ...lang.Value) (lang.Value, error) {
		return lang.None(), nil
	})

	want := "label = \"total\";\nparts = [1,2];\nx = 5;\n"
	if got := envSource(env); got != want {
		t.Errorf("envSource() = %q, want %q", got, want)
	}
}

// TestEnvSourceEmpty verifies an empty context renders as no statements.
func TestEnvSourceEmpty(t *testing.T) {
	if got := envSource(lang.NewContext()); got != "" {
		t.Errorf("envSource(empty) = %q, want empty", got)
	}
}

// TestEnvSourceRoundTrip verifies the rendered source re-evaluates to the
// same variable bindings.
func TestEnvSourceRoundTrip(t *testing.T) {
	env := lang.NewContext()
	env.SetVariable("rate", lang.Float(0.5))
	env.SetVariable("label", lang.String("a b"))
	env.SetVariable("flags", lang.Map(
		lang.Pair{Key: lang.String("on"), Val: lang.Bool(true)},
	))

	ast, err := lang.Parse(envSource(env))
	if err != nil {
		t.Fatalf("Parse(envSource) failed: %v", err)
	}

	fresh := lang.NewContext()
	if _, err := ast.Exec(fresh); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}

	for _, name := range env.Names() {
		want, _ := env.Variable(name)

		got, ok := fresh.Variable(name)
		if !ok || !got.Equal(want) {
			t.Errorf("round-trip %s = %v (bound %v), want %v", name, got, ok, want)
		}
	}
}

// TestEditApply verifies evaluating edited source into a fresh context
// that retains the original function bindings.
func TestEditApply(t *testing.T) {
	orig := lang.NewContext()
	orig.SetVariable("old", lang.Int(1))
	orig.SetFunction("stamp", func(args ...lang.Value) (lang.Value, error) {
		return lang.String("now"), nil
	})

	c := &editEnvCommand{env: orig, logger: log.Default()}

	env, err := c.apply("x = 10;\ny = x * 2;\n")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	x, ok := env.Variable("x")
	if !ok || !x.Equal(lang.Int(10)) {
		t.Errorf("x = %v (bound %v), want 10", x, ok)
	}

	y, ok := env.Variable("y")
	if !ok || !y.Equal(lang.Int(20)) {
		t.Errorf("y = %v (bound %v), want 20", y, ok)
	}

	// Deleted variables stay deleted, but functions carry over.
	if _, ok := env.Variable("old"); ok {
		t.Errorf("old still bound after edit removed it")
	}

	if _, ok := env.Function("stamp"); !ok {
		t.Errorf("function binding lost during apply")
	}
}

// TestEditApplyEmptySource verifies clearing every statement yields an
// empty context aside from carried-over functions.
func TestEditApplyEmptySource(t *testing.T) {
	orig := lang.NewContext()
	orig.SetVariable("x", lang.Int(1))
	orig.SetFunction("stamp", func(args ...lang.Value) (lang.Value, error) {
		return lang.None(), nil
	})

	c := &editEnvCommand{env: orig, logger: log.Default()}

	env, err := c.apply("")
	if err != nil {
		t.Fatalf("apply(\"\") failed: %v", err)
	}

	if _, ok := env.Variable("x"); ok {
		t.Errorf("x still bound after clearing the source")
	}

	if _, ok := env.Function("stamp"); !ok {
		t.Errorf("function binding lost on empty source")
	}
}

// TestEditApplyParseError verifies malformed source is rejected before
// touching the context.
func TestEditApplyParseError(t *testing.T) {
	c := &editEnvCommand{env: lang.NewContext(), logger: log.Default()}

	if _, err := c.apply("x = ;"); err == nil {
		t.Fatal("apply(malformed) succeeded, want error")
	}
}

// TestEditApplyEvalError verifies evaluation failures surface to the
// retry prompt.
func TestEditApplyEvalError(t *testing.T) {
	c := &editEnvCommand{env: lang.NewContext(), logger: log.Default()}

	_, err := c.apply("x = 1 / 0;")
	if !errors.Is(err, lang.ErrDivisionByZero) {
		t.Fatalf("apply(div by zero) error = %v, want ErrDivisionByZero", err)
	}
}
