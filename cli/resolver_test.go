package cli

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/reckon/lang"
)

// loadConfig runs the resolver's loader over the given config text.
func loadConfig(t *testing.T, text string) kong.Resolver {
	t.Helper()

	loader := resolve(context.Background())

	resolver, err := loader(strings.NewReader(text))
	if err != nil {
		t.Fatalf("loader failed: %v", err)
	}

	return resolver
}

// resolveFlag resolves the named flag against the resolver.
func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	flag := &kong.Flag{Value: &kong.Value{Name: name}}

	val, err := r.Resolve(nil, nil, flag)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", name, err)
	}

	return val
}

func TestResolve_SetterChain(t *testing.T) {
	config := `
log_level = 'debug';
log_format = 'text';
log_pretty = true;
`

	resolver := loadConfig(t, config)

	if val := resolveFlag(t, resolver, "log_level"); val != "debug" {
		t.Errorf("expected log_level=debug, got %v", val)
	}

	if val := resolveFlag(t, resolver, "log_format"); val != "text" {
		t.Errorf("expected log_format=text, got %v", val)
	}

	if val := resolveFlag(t, resolver, "log_pretty"); val != true {
		t.Errorf("expected log_pretty=true, got %v", val)
	}
}

func TestResolve_UnderscoreHyphenMapping(t *testing.T) {
	resolver := loadConfig(t, `log_level = 'debug';`)

	// Underscore form, as written in the config.
	if val := resolveFlag(t, resolver, "log_level"); val != "debug" {
		t.Errorf("expected log_level=debug, got %v", val)
	}

	// Hyphen form, as Kong names the flag.
	if val := resolveFlag(t, resolver, "log-level"); val != "debug" {
		t.Errorf("expected log-level=debug, got %v", val)
	}
}

func TestResolve_MissingFlag(t *testing.T) {
	resolver := loadConfig(t, `log_level = 'debug';`)

	if val := resolveFlag(t, resolver, "log-format"); val != nil {
		t.Errorf("expected nil for unbound flag, got %v", val)
	}
}

func TestResolve_LaterBindingsSeeEarlier(t *testing.T) {
	config := `
base = 10;
scaled = base * 3;
`

	resolver := loadConfig(t, config)

	if val := resolveFlag(t, resolver, "scaled"); val != "30" {
		t.Errorf("expected scaled=30, got %v", val)
	}
}

func TestResolve_ParseErrorTolerated(t *testing.T) {
	// A file that does not parse is treated as absent, not fatal, so Kong
	// falls back to flag defaults.
	resolver := loadConfig(t, `this is ( ( ( not a chain`)

	if val := resolveFlag(t, resolver, "log-level"); val != nil {
		t.Errorf("expected nil from unparsable config, got %v", val)
	}
}

func TestResolve_EvalErrorTolerated(t *testing.T) {
	resolver := loadConfig(t, `log_level = 1 / 0;`)

	if val := resolveFlag(t, resolver, "log-level"); val != nil {
		t.Errorf("expected nil from failing config, got %v", val)
	}
}

func TestResolve_Validate(t *testing.T) {
	resolver := loadConfig(t, `log_level = 'debug';`)

	if err := resolver.Validate(nil); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestFlagValue_Conversions(t *testing.T) {
	tests := []struct {
		name string
		val  lang.Value
		want any
	}{
		{name: "bool", val: lang.Bool(true), want: true},
		{name: "integer", val: lang.Int(42), want: "42"},
		{name: "decimal keeps precision", val: num(t, "0.1"), want: "0.1"},
		{name: "string", val: lang.String("text"), want: "text"},
		{name: "none", val: lang.None(), want: nil},
		{
			name: "list",
			val:  lang.List(lang.String("a"), lang.Int(2)),
			want: []any{"a", "2"},
		},
		{
			name: "map",
			val: lang.Map(
				lang.Pair{Key: lang.String("k"), Val: lang.Int(1)},
			),
			want: map[string]any{"k": "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flagValue(tt.val)
			if tt.want == nil {
				if got != nil {
					t.Errorf("flagValue(%s) = %v, want nil", tt.name, got)
				}

				return
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("flagValue(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func num(t *testing.T, s string) lang.Value {
	t.Helper()

	val, err := lang.ParseNumber(s)
	if err != nil {
		t.Fatalf("ParseNumber(%q) failed: %v", s, err)
	}

	return val
}

// BenchmarkResolve measures loading a typical config file.
func BenchmarkResolve(b *testing.B) {
	config := "log_level = 'debug';\nlog_format = 'text';\nlog_pretty = true;\n"
	loader := resolve(context.Background())

	for b.Loop() {
		if _, err := loader(strings.NewReader(config)); err != nil {
			b.Fatal(err)
		}
	}
}
