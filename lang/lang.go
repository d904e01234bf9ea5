package lang

import (
	"log/slog"

	"github.com/ardnew/reckon/log"
)

// DefaultMaxDepth bounds expression nesting during parsing. Inputs that
// nest deeper fail with ErrMaxDepthExceeded instead of exhausting the
// call stack.
const DefaultMaxDepth = 256

// Options configures parsing and evaluation.
type Options struct {
	registry *Registry
	logger   log.Logger
	maxDepth int
}

// Option is a functional option for [Parse], [ParseCached],
// [ParseReader], and [Execute].
type Option func(Options) Options

// WithRegistry selects the Registry whose operator and function tables
// drive parsing and evaluation. The default is [Default].
func WithRegistry(r *Registry) Option {
	return func(o Options) Options {
		o.registry = r

		return o
	}
}

// WithLogger selects the logger used for trace diagnostics.
func WithLogger(l log.Logger) Option {
	return func(o Options) Options {
		o.logger = l

		return o
	}
}

// WithMaxDepth overrides [DefaultMaxDepth].
func WithMaxDepth(n int) Option {
	return func(o Options) Options {
		o.maxDepth = n

		return o
	}
}

func makeOptions(opts ...Option) Options {
	o := Options{
		registry: Default(),
		logger:   log.Default(),
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		o = opt(o)
	}

	return o
}

// Parse parses source text into an expression tree, reporting the first
// scanning or syntax error with its byte offset. Name resolution is
// deferred entirely to evaluation, so parsing never consults a Context.
func Parse(input string, opts ...Option) (*Expr, error) {
	return parseWith(input, makeOptions(opts...))
}

func parseWith(input string, o Options) (*Expr, error) {
	return newParser(input, o.registry, o.maxDepth).parse()
}

// Execute parses input and evaluates it against ctx in one call. Parses
// are cached, so executing the same text repeatedly only pays for
// evaluation.
func Execute(input string, ctx *Context, opts ...Option) (Value, error) {
	o := makeOptions(opts...)

	e, err := parseCachedWith(input, o)
	if err != nil {
		return None(), err
	}

	v, err := e.Exec(ctx)
	if err != nil {
		return None(), err
	}

	o.logger.Trace(
		"expression executed",
		slog.Int("source_bytes", len(input)),
		slog.String("result_kind", v.Kind().String()),
	)

	return v, nil
}

// RegisterPrefix registers a prefix operator on the default Registry.
func RegisterPrefix(op string, fn PrefixFunc) { Default().RegisterPrefix(op, fn) }

// RegisterInfix registers a calculating infix operator on the default
// Registry.
func RegisterInfix(op string, prec int, assoc Assoc, fn InfixFunc) {
	Default().RegisterInfix(op, prec, assoc, fn)
}

// RegisterSetter registers an assigning infix operator on the default
// Registry.
func RegisterSetter(op string, fn InfixFunc) { Default().RegisterSetter(op, fn) }

// RegisterPostfix registers a postfix operator on the default Registry.
func RegisterPostfix(op string, fn PostfixFunc) { Default().RegisterPostfix(op, fn) }

// RegisterFunction registers a named function on the default Registry.
func RegisterFunction(name string, fn Function) { Default().RegisterFunction(name, fn) }

// RedirectPrefix registers op on the default Registry as a copy of the
// prefix operator target.
func RedirectPrefix(op, target string) error { return Default().RedirectPrefix(op, target) }

// RedirectInfix registers op on the default Registry as a copy of the
// infix operator target.
func RedirectInfix(op, target string) error { return Default().RedirectInfix(op, target) }

// RedirectPostfix registers op on the default Registry as a copy of the
// postfix operator target.
func RedirectPostfix(op, target string) error { return Default().RedirectPostfix(op, target) }

// RedirectFunction registers name on the default Registry as a copy of
// the function target.
func RedirectFunction(name, target string) error { return Default().RedirectFunction(name, target) }
