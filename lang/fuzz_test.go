package lang

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// guardFuzz skips inputs that are not valid UTF-8 and returns a deferred
// check that converts a panic in stage into a test failure.
func guardFuzz(t *testing.T, stage, input string) func() {
	t.Helper()

	if !utf8.ValidString(input) {
		t.Skip("invalid UTF-8")
	}

	return func() {
		if r := recover(); r != nil {
			t.Errorf("%s panicked on input %q: %v", stage, input, r)
		}
	}
}

// FuzzScanner tests the scanner with random inputs to find edge cases.
func FuzzScanner(f *testing.F) {
	f.Add("foo")
	f.Add("123")
	f.Add("'string'")
	f.Add(`"double"`)
	f.Add("1 + 2 * 3")
	f.Add("-123.456e-10")
	f.Add("a.b_c.d")
	f.Add("x = [1, true, 'haha']")
	f.Add("{1: 2, 'k': v}")
	f.Add("a <<= 2; a")
	f.Add("min(1, 2) ? x : y")
	f.Add("2 not in [2]")

	f.Fuzz(func(t *testing.T, input string) {
		defer guardFuzz(t, "scanner", input)()

		s := newScanner(input, Default())

		// Every token consumes at least one byte, so the token count is
		// bounded by the input length. Exceeding it means the scanner
		// stopped advancing.
		for i := 0; i <= len(input); i++ {
			if err := s.next(); err != nil {
				return
			}

			if s.tok.kind == tokenEOF {
				return
			}

			if s.tok.pos < 0 || s.tok.pos > len(input) {
				t.Fatalf("token %d offset %d outside input of length %d",
					i, s.tok.pos, len(input))
			}
		}

		t.Fatalf("scanner failed to advance on input %q", input)
	})
}

// FuzzParse tests the parser with random inputs, verifying it never
// panics and that successful parses render to a canonical fixpoint.
func FuzzParse(f *testing.F) {
	f.Add("2 + 3 * 5")
	f.Add("(2 + 3) * 5")
	f.Add("a = b = 3; a")
	f.Add("true ? 1 : 2")
	f.Add("'a' beginWith 'ab'")
	f.Add("[2 > 3, 1 + 5]")
	f.Add("{x: 1, 'y': [2]}")
	f.Add("not 1 < 2")
	f.Add("2++--")
	f.Add("AND [true, false]")
	f.Add("sum(1, 2, 3)")
	f.Add("f(g(h(x)))")
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		defer guardFuzz(t, "parser", input)()

		e, err := Parse(input)
		if err != nil {
			// Failing is fine, but the error must be well-formed.
			if err.Error() == "" {
				t.Errorf("empty error message for input %q", input)
			}

			return
		}

		// A successful parse renders to canonical text that parses
		// again and renders identically.
		first := e.Render()

		again, err := Parse(first)
		if err != nil {
			t.Fatalf("rendered form %q of input %q failed to parse: %v",
				first, input, err)
		}

		if second := again.Render(); second != first {
			t.Errorf("render not a fixpoint for input %q: %q != %q",
				input, first, second)
		}
	})
}

// FuzzNumber tests number literal scanning specifically.
func FuzzNumber(f *testing.F) {
	f.Add("0")
	f.Add("123")
	f.Add("12.34")
	f.Add("1.23e10")
	f.Add("1.23e-10")
	f.Add("1e+3")
	f.Add("00.5")
	f.Add("9999999999999999999999999999.5")

	f.Fuzz(func(t *testing.T, input string) {
		defer guardFuzz(t, "number scanning", input)()

		s := newScanner(input, Default())
		_ = s.next()
	})
}

// FuzzNestedStructures tests deeply nested inputs against the depth
// guard.
func FuzzNestedStructures(f *testing.F) {
	f.Add("((((1))))")
	f.Add("[[[[1]]]]")
	f.Add("{1: {2: {3: [4]}}}")
	f.Add(strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300))
	f.Add(strings.Repeat("[", 500))
	f.Add(strings.Repeat("- ", 400) + "1")

	f.Fuzz(func(t *testing.T, input string) {
		defer guardFuzz(t, "nested parsing", input)()

		// Either parses or fails with the depth error, never by overflow.
		_, _ = Parse(input)
	})
}
