package cmd

import (
	"context"
	"io"

	"github.com/ardnew/reckon/cli/cmd/repl"
	"github.com/ardnew/reckon/log"
)

// Repl starts an interactive read-eval-print session.
type Repl struct{}

// Run executes the repl command.
//
// Bindings given with --bind seed the session context, and source files
// given with --source are evaluated as a preamble before the first prompt.
func (r *Repl) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	env, err := Environment(ctx)
	if err != nil {
		return err
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	var preamble io.Reader
	if src := sourceFilesFrom(ctx); src != nil {
		preamble = src
	}

	return repl.Run(ctx, env, preamble, cacheDir, log.Default())
}
