package cmd

import (
	"context"
	"errors"
	"testing"
)

// TestRenderRunCanonicalForm tests that render prints the canonical text.
func TestRenderRunCanonicalForm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spacing normalized",
			input: "1+2 * 3",
			want:  "1 + 2 * 3\n",
		},
		{
			name:  "quotes normalized",
			input: "'haha'",
			want:  "\"haha\"\n",
		},
		{
			name:  "required grouping kept",
			input: "(2+3)*5",
			want:  "(2 + 3) * 5\n",
		},
		{
			name:  "chain",
			input: "1 ;  2",
			want:  "1;2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, t.TempDir(), "in.rk", tt.input)

			render := &Render{Source: path}

			got, err := captureStdout(t, func() error {
				return render.Run(context.Background())
			})
			if err != nil {
				t.Fatalf("Render.Run() failed: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRenderRunStdin tests formatting input read from stdin.
func TestRenderRunStdin(t *testing.T) {
	restore := stdinFrom(t, "2+ 3")
	defer restore()

	render := &Render{Source: "-"}

	got, err := captureStdout(t, func() error {
		return render.Run(context.Background())
	})
	if err != nil {
		t.Fatalf("Render.Run() failed: %v", err)
	}

	if got != "2 + 3\n" {
		t.Errorf("got %q, want %q", got, "2 + 3\n")
	}
}

// TestRenderRunParseError tests that malformed input surfaces an error.
func TestRenderRunParseError(t *testing.T) {
	path := writeSource(t, t.TempDir(), "bad.rk", "1 + ) 2")

	render := &Render{Source: path}

	_, err := captureStdout(t, func() error {
		return render.Run(context.Background())
	})
	if err == nil {
		t.Error("expected an error for malformed input")
	}
}

// TestRenderRunMissingFile tests the unreadable source error.
func TestRenderRunMissingFile(t *testing.T) {
	render := &Render{Source: "/nonexistent/input.rk"}

	if err := render.Run(context.Background()); !errors.Is(err, ErrOpenSource) {
		t.Errorf("expected ErrOpenSource, got %v", err)
	}
}

// TestDescribeRun tests the plain-language description output.
func TestDescribeRun(t *testing.T) {
	path := writeSource(t, t.TempDir(), "in.rk", "2 + 3 * 5")

	describe := &Describe{Source: path}

	got, err := captureStdout(t, func() error {
		return describe.Run(context.Background())
	})
	if err != nil {
		t.Fatalf("Describe.Run() failed: %v", err)
	}

	// Without registered describer hooks, the description is the compact
	// form of the chain.
	if got != "2+3*5\n" {
		t.Errorf("got %q, want %q", got, "2+3*5\n")
	}
}

// TestDescribeRunMissingFile tests the unreadable source error.
func TestDescribeRunMissingFile(t *testing.T) {
	describe := &Describe{Source: "/nonexistent/input.rk"}

	if err := describe.Run(context.Background()); !errors.Is(err, ErrOpenSource) {
		t.Errorf("expected ErrOpenSource, got %v", err)
	}
}
