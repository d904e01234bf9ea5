package repl

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/reckon/lang"
	"github.com/ardnew/reckon/log"
)

const defaultEditor = "vi"

// editEnvCommand implements [tea.ExecCommand] for the full context
// edit-parse-retry loop. It renders the current bindings to a temp file,
// opens the user's editor, and evaluates the result into a fresh context.
// On error the user is prompted to re-edit; declining exits the program.
type editEnvCommand struct {
	env     *lang.Context
	ctxFunc func() context.Context
	newEnv  *lang.Context
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editEnvCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editEnvCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editEnvCommand) SetStderr(w io.Writer) { c.stderr = w }

// envSource renders the context's variable bindings as a setter chain.
// Function bindings have no textual form; they are carried over unchanged
// when the edited chain is applied.
func envSource(env *lang.Context) string {
	var sb strings.Builder

	for _, name := range env.Names() {
		val, ok := env.Variable(name)
		if !ok {
			continue
		}

		fmt.Fprintf(&sb, "%s = %s;\n", name, val.String())
	}

	return sb.String()
}

// apply parses the edited source and evaluates it into a fresh context
// that retains the original function bindings.
func (c *editEnvCommand) apply(source string) (*lang.Context, error) {
	ast, err := lang.Parse(source, lang.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}

	env := lang.NewContext()

	for _, name := range c.env.Names() {
		if fn, ok := c.env.Function(name); ok {
			env.SetFunction(name, fn)
		}
	}

	if _, err := ast.Exec(env); err != nil {
		return nil, err
	}

	return env, nil
}

// scratchFile creates the temp file reused across editor invocations,
// restricted to the owner since bindings may hold private values.
func scratchFile() (string, error) {
	f, err := os.CreateTemp(os.TempDir(), "reckon-repl-*.rk")
	if err != nil {
		return "", err
	}

	err = f.Chmod(0o600)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		os.Remove(f.Name())

		return "", err
	}

	return f.Name(), nil
}

// runEditor blocks inside the suspended TUI until $EDITOR exits on path.
func (c *editEnvCommand) runEditor(ctx context.Context, path string) error {
	editor := cmp.Or(os.Getenv("EDITOR"), defaultEditor)

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	return cmd.Run()
}

// promptRetry reports whether to reopen the editor after a failed parse.
func (c *editEnvCommand) promptRetry(evalErr error) bool {
	fmt.Fprintf(c.stderr, "\nError: %s\n", evalErr)
	fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

	scanner := bufio.NewScanner(c.stdin)
	if !scanner.Scan() {
		return false
	}

	switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// Run executes the edit-parse-retry loop. A successful parse lands in
// c.newEnv; an emptied file counts as cancellation and leaves it nil.
// Declining a re-edit returns [ErrEditDeclined].
func (c *editEnvCommand) Run() error {
	ctx := c.ctxFunc()

	tmpPath, err := scratchFile()
	if err != nil {
		return err
	}

	defer os.Remove(tmpPath)

	content := envSource(c.env)

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := c.runEditor(ctx, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if len(data) == 0 {
			return nil
		}

		newEnv, evalErr := c.apply(string(data))
		c.logger.TraceContext(
			ctx,
			"editor parse attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", evalErr == nil),
		)

		if evalErr == nil {
			c.newEnv = newEnv

			return nil
		}

		if !c.promptRetry(evalErr) {
			return ErrEditDeclined
		}

		// Edit again from the rejected text, not the original bindings.
		content = string(data)
	}
}
