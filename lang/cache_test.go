package lang

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
)

func TestParseCached_ReturnsSameTree(t *testing.T) {
	reg := New()

	e1, err := ParseCached("1+2", WithRegistry(reg))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	e2, err := ParseCached("1+2", WithRegistry(reg))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if e1 != e2 {
		t.Error("expected the memoized tree on repeat parse")
	}

	got, err := e2.Exec(nil)
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}

	if !got.Equal(num("3")) {
		t.Errorf("expected 3, got %v", got)
	}
}

func TestParseCached_KeyedByOptions(t *testing.T) {
	reg := New()

	e1, err := ParseCached("1+2", WithRegistry(reg))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	shallow, err := ParseCached("1+2", WithRegistry(reg), WithMaxDepth(10))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if shallow == e1 {
		t.Error("expected a distinct tree for a different depth limit")
	}

	other, err := ParseCached("1+2", WithRegistry(New()))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if other == e1 {
		t.Error("expected a distinct tree for a different registry")
	}
}

func TestParseCached_RegistryMutationInvalidates(t *testing.T) {
	reg := New()

	e1, err := ParseCached("1+2", WithRegistry(reg))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	reg.RegisterFunction("touch", func(...Value) (Value, error) {
		return None(), nil
	})

	e2, err := ParseCached("1+2", WithRegistry(reg))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if e1 == e2 {
		t.Error("expected a reparse after a registry mutation")
	}

	// Describer hooks shape output text, not parsing, so attaching one
	// keeps cached trees valid.
	reg.SetBinaryDescriber("+", func(op, lhs, rhs string) string {
		return lhs + " plus " + rhs
	})

	e3, err := ParseCached("1+2", WithRegistry(reg))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if e2 != e3 {
		t.Error("expected the memoized tree after attaching a describer")
	}
}

func TestParseCached_FailureMemoized(t *testing.T) {
	reg := New()

	_, err1 := ParseCached("2+", WithRegistry(reg))
	if !errors.Is(err1, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err1)
	}

	_, err2 := ParseCached("2+", WithRegistry(reg))
	if err1 != err2 {
		t.Error("expected the memoized error on repeat parse")
	}

	var ee *Error
	if !errors.As(err2, &ee) || ee.Offset() != 2 {
		t.Errorf("expected offset 2, got %v", err2)
	}
}

func TestParseCached_Concurrent(t *testing.T) {
	reg := New()

	const workers = 8

	var wg sync.WaitGroup

	trees := make([]*Expr, workers)

	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			e, err := ParseCached("6*7", WithRegistry(reg))
			if err != nil {
				t.Errorf("parse error: %v", err)

				return
			}

			trees[i] = e
		}()
	}

	wg.Wait()

	for i := 1; i < workers; i++ {
		if trees[i] != trees[0] {
			t.Fatalf("expected one shared tree, got distinct trees at %d", i)
		}
	}
}

func TestClearCache(t *testing.T) {
	reg := New()

	e1, err := ParseCached("1+2", WithRegistry(reg))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ClearCache()

	e2, err := ParseCached("1+2", WithRegistry(reg))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if e1 == e2 {
		t.Error("expected a reparse after clearing the cache")
	}
}

func TestParseReader(t *testing.T) {
	ast, err := ParseReader(t.Context(), strings.NewReader("2 * 3"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	got, err := ast.Exec(nil)
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}

	if !got.Equal(num("6")) {
		t.Errorf("expected 6, got %v", got)
	}
}

func TestParseReader_ReadFailure(t *testing.T) {
	cause := errors.New("disk gone")

	_, err := ParseReader(t.Context(), iotest.ErrReader(cause))
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("expected ErrReadInput, got %v", err)
	}

	if !errors.Is(err, cause) {
		t.Errorf("expected the read failure as cause, got %v", err)
	}
}

func TestExecute(t *testing.T) {
	ctx := NewContext()

	got, err := Execute("a = 4; a * 2", ctx)
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}

	if !got.Equal(num("8")) {
		t.Errorf("expected 8, got %v", got)
	}

	if v, ok := ctx.Variable("a"); !ok || !v.Equal(num("4")) {
		t.Errorf("expected stored 4, got %v (%v)", v, ok)
	}

	// Repeat executions share the cached parse but evaluate fresh.
	again, err := Execute("a = 4; a * 2", NewContext())
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}

	if !again.Equal(num("8")) {
		t.Errorf("expected 8, got %v", again)
	}
}

func TestExecute_ParseError(t *testing.T) {
	_, err := Execute("2+", NewContext())
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}
