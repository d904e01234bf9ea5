package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/ardnew/reckon/lang"
)

// TestWordBounds verifies word extraction around the cursor. Dots join
// words because dotted references are single flat names, and hyphens
// split words because they parse as subtraction.
func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dotted_reference", "bar.baz", 7, "bar.baz", 0, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "min(fo", 6, "fo", 4, 6},
		{"after_comma", "min(a, fo", 9, "fo", 7, 9},
		{"after_comparison", "a > fo", 6, "fo", 4, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"hyphen_splits", "log-pretty", 10, "pretty", 4, 10},
		{"hyphen_left_side", "log-pretty", 3, "log", 0, 3},
		{"underscore_joins", "log_pretty", 10, "log_pretty", 0, 10},
		{"trailing_dot_included", "config.", 7, "config.", 0, 7},
		{"cursor_clamped", "abc", 9, "abc", 0, 3},
		{"empty_input", "", 0, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

// TestIsWordBoundary spot-checks the rune classification backing
// wordBounds.
func TestIsWordBoundary(t *testing.T) {
	for _, r := range "azAZ09._" {
		if isWordBoundary(r) {
			t.Errorf("isWordBoundary(%q) = true, want false", r)
		}
	}

	for _, r := range " -+*/(),=<>!&|;'\"" {
		if !isWordBoundary(r) {
			t.Errorf("isWordBoundary(%q) = false, want true", r)
		}
	}
}

// TestIsWordOp verifies which operator spellings are offered as
// completion candidates.
func TestIsWordOp(t *testing.T) {
	tests := []struct {
		op   string
		want bool
	}{
		{"in", true},
		{"not", true},
		{"AND", true},
		{"OR", true},
		{"beginWith", true},
		{"endWith", true},
		{"+", false},
		{"<=", false},
		{"++", false},
		{"<=>", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isWordOp(tt.op); got != tt.want {
			t.Errorf("isWordOp(%q) = %v, want %v", tt.op, got, tt.want)
		}
	}
}

// TestEvalCandidates verifies that the candidate list merges context
// names, registered functions, and word-shaped operators, sorted and
// deduplicated, while omitting symbolic operators.
func TestEvalCandidates(t *testing.T) {
	env := lang.NewContext()
	env.SetVariable("alpha", lang.Int(1))
	env.SetFunction("beta", func(args ...lang.Value) (lang.Value, error) {
		return lang.None(), nil
	})

	m := model{env: env, reg: lang.Default()}
	got := m.evalCandidates()

	for _, want := range []string{"alpha", "beta", "min", "max", "in", "not", "AND"} {
		if !slices.Contains(got, want) {
			t.Errorf("evalCandidates() missing %q", want)
		}
	}

	for _, reject := range []string{"+", "=", "++", "<="} {
		if slices.Contains(got, reject) {
			t.Errorf("evalCandidates() contains symbolic operator %q", reject)
		}
	}

	if !slices.IsSorted(got) {
		t.Errorf("evalCandidates() not sorted: %v", got)
	}

	if len(slices.Compact(slices.Clone(got))) != len(got) {
		t.Errorf("evalCandidates() contains duplicates: %v", got)
	}
}

// newTestModel builds a minimal model with the given input text and the
// cursor at the end, sufficient for exercising computeMatches.
func newTestModel(t *testing.T, text string) model {
	t.Helper()

	input := textinput.New()
	input.SetValue(text)
	input.SetCursor(len(text))

	return model{
		input: input,
		env:   lang.NewContext(),
		reg:   lang.Default(),
		mode:  modeEval,
	}
}

// TestComputeMatches verifies fuzzy matching against the word at the
// cursor in both input modes.
func TestComputeMatches(t *testing.T) {
	t.Run("eval mode matches functions", func(t *testing.T) {
		m := newTestModel(t, "mi")

		matches, candidates, start, end := m.computeMatches()
		if start != 0 || end != 2 {
			t.Fatalf("word bounds = (%d, %d), want (0, 2)", start, end)
		}

		if len(matches) == 0 {
			t.Fatal("computeMatches() returned no matches for \"mi\"")
		}

		if !slices.Contains(candidates, "min") {
			t.Errorf("candidates missing \"min\": %v", candidates)
		}

		found := false
		for _, match := range matches {
			if match.Str == "min" {
				found = true
			}
		}
		if !found {
			t.Errorf("matches missing \"min\": %v", matches)
		}
	})

	t.Run("ctrl mode matches commands", func(t *testing.T) {
		m := newTestModel(t, "he")
		m.mode = modeCtrl

		matches, candidates, _, _ := m.computeMatches()
		if !slices.Equal(candidates, ctrlCommands) {
			t.Errorf("candidates = %v, want %v", candidates, ctrlCommands)
		}

		if len(matches) == 0 || matches[0].Str != "help" {
			t.Errorf("matches = %v, want \"help\" first", matches)
		}
	})

	t.Run("empty word yields no matches", func(t *testing.T) {
		m := newTestModel(t, "a + ")

		matches, candidates, start, end := m.computeMatches()
		if matches != nil || candidates != nil {
			t.Errorf("computeMatches() = (%v, %v), want (nil, nil)", matches, candidates)
		}

		if start != 4 || end != 4 {
			t.Errorf("word bounds = (%d, %d), want (4, 4)", start, end)
		}
	})
}

// TestFormatPreview verifies the hint text shown beside each candidate.
func TestFormatPreview(t *testing.T) {
	env := lang.NewContext()
	env.SetVariable("rate", lang.Int(42))
	env.SetVariable("label", lang.String("total"))
	env.SetVariable("wide", lang.String(strings.Repeat("a", 50)))
	env.SetFunction("stamp", func(args ...lang.Value) (lang.Value, error) {
		return lang.None(), nil
	})

	if got := formatPreview("stamp", env); got != "()" {
		t.Errorf("formatPreview(function) = %q, want %q", got, "()")
	}

	if got := formatPreview("rate", env); got != "= 42" {
		t.Errorf("formatPreview(number) = %q, want %q", got, "= 42")
	}

	if got := formatPreview("label", env); got != `= "total"` {
		t.Errorf("formatPreview(string) = %q, want %q", got, `= "total"`)
	}

	if got := formatPreview("unbound", env); got != "" {
		t.Errorf("formatPreview(unbound) = %q, want empty", got)
	}

	got := formatPreview("wide", env)
	if !strings.HasSuffix(got, "...") || len(got) != len("= ")+40 {
		t.Errorf("formatPreview(long value) = %q (len %d), want 40-char preview ending in ...",
			got, len(got))
	}
}

// TestIsFunction verifies function detection across both the registry
// and the evaluation context.
func TestIsFunction(t *testing.T) {
	env := lang.NewContext()
	env.SetVariable("rate", lang.Int(1))
	env.SetFunction("stamp", func(args ...lang.Value) (lang.Value, error) {
		return lang.None(), nil
	})

	m := model{env: env, reg: lang.Default()}

	tests := []struct {
		name string
		want bool
	}{
		{"min", true},
		{"sum", true},
		{"stamp", true},
		{"rate", false},
		{"unbound", false},
	}

	for _, tt := range tests {
		if got := m.isFunction(tt.name); got != tt.want {
			t.Errorf("isFunction(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
