package cmd

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/reckon/lang"
)

// Eval evaluates a statement chain and prints its final value.
type Eval struct {
	Expr []string `arg:"" help:"Expressions evaluated as a statement chain" name:"expr" optional:""`

	Output string `default:"text" enum:"text,json,yaml" help:"Output format."                    short:"o"`
	Indent int    `default:"0"                          help:"Indent width (0 for single line)." short:"i"`
}

// Run executes the eval command.
//
// Source files given with --source are evaluated first, then the positional
// expressions, all in one shared context. The printed value is the final
// value of whichever chain ran last. With no expressions and no source
// files, a chain is read from stdin.
func (e *Eval) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	env, err := Environment(ctx)
	if err != nil {
		return err
	}

	result := lang.None()

	var input io.Reader
	if src := sourceFilesFrom(ctx); src != nil {
		input = src
	} else if len(e.Expr) == 0 {
		input = os.Stdin
	}

	if input != nil {
		ast, err := lang.ParseReader(ctx, bufio.NewReader(input))
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "eval"))
		}

		result, err = ast.Exec(env)
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "eval"))
		}
	}

	if len(e.Expr) > 0 {
		// Shell word splitting already broke the chain apart, so the
		// arguments are rejoined into a single source text.
		result, err = lang.Execute(strings.Join(e.Expr, " "), env)
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "eval"))
		}
	}

	return e.write(ctx, result)
}

// write prints result to stdout in the selected output format.
func (e *Eval) write(ctx context.Context, result lang.Value) error {
	switch e.Output {
	case "json":
		if err := result.FormatJSON(ctx, os.Stdout, e.Indent); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

	case "yaml":
		if err := result.FormatYAML(ctx, os.Stdout, e.Indent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	default:
		return result.Format(ctx, os.Stdout, e.Indent)
	}

	return nil
}
