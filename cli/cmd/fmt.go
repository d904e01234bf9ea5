package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/reckon/lang"
)

// Fmt parses input and prints it back without evaluating.
type Fmt struct {
	Render   Render   `cmd:"" default:"withargs" help:"Print the canonical form (default)."`
	Describe Describe `cmd:""                    help:"Print a plain-language description."`
}

// parseSourceArg parses the named file, or stdin for "-", into an
// expression chain without evaluating it.
func parseSourceArg(
	ctx context.Context, source, form string,
) (*lang.Expr, error) {
	file := os.Stdin

	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return nil, ErrOpenSource.Wrap(err)
		}
		defer f.Close()

		file = f
	}

	ast, err := lang.ParseReader(ctx, bufio.NewReader(file))
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("format", form))
	}

	return ast, nil
}

// Render prints the canonical text of the parsed chain.
//
// The output is whitespace-normalized and fully parenthesized only where
// precedence requires it, so it reparses to the same tree.
type Render struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the render command.
func (f *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := parseSourceArg(ctx, f.Source, "render")
	if err != nil {
		return err
	}

	fmt.Println(ast.Render())

	return nil
}

// Describe prints a plain-language description of the parsed chain, using
// any describer hooks registered for its operators.
type Describe struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the describe command.
func (d *Describe) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ast, err := parseSourceArg(ctx, d.Source, "describe")
	if err != nil {
		return err
	}

	fmt.Println(ast.Describe())

	return nil
}
