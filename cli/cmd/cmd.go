package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/reckon/lang"
)

// contextKey carries the [kong.Context] through [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// bindingsKey carries the --bind arguments through [context.Context].
type bindingsKey struct{}

// WithBindings returns a new context.Context carrying the given NAME=EXPR
// pairs for [Environment].
func WithBindings(ctx context.Context, binds []string) context.Context {
	return context.WithValue(ctx, bindingsKey{}, binds)
}

func bindingsFrom(ctx context.Context) []string {
	binds, _ := ctx.Value(bindingsKey{}).([]string)

	return binds
}

// Environment constructs the evaluation context shared by commands.
//
// Each binding has the form NAME=EXPR. The expression is evaluated in the
// context under construction, so later bindings may reference earlier ones,
// and its result is bound to NAME. The name must be a valid identifier for
// later expressions to reference it.
func Environment(
	ctx context.Context,
	opts ...lang.Option,
) (*lang.Context, error) {
	env := lang.NewContext()

	for _, bind := range bindingsFrom(ctx) {
		name, expr, ok := strings.Cut(bind, "=")
		name = strings.TrimSpace(name)

		if !ok || name == "" {
			return nil, ErrBadBinding.With(slog.String("bind", bind))
		}

		val, err := lang.Execute(expr, env, opts...)
		if err != nil {
			return nil, lang.WrapError(err).With(slog.String("bind", bind))
		}

		env.SetVariable(name, val)
	}

	return env, nil
}

type (
	sourceFilesKey struct{}
	sourceFiles    struct {
		read     []io.Reader
		hasStdin bool
	}

	SourceFiles interface {
		IsZero() bool
		Stdin() io.Reader
		io.Reader
		io.WriterTo
	}
)

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return len(s.read) == 0 }

// Stdin returns os.Stdin if stdin was included as a source, or nil otherwise.
func (s *sourceFiles) Stdin() io.Reader {
	if s.hasStdin {
		return os.Stdin
	}

	return nil
}

// readers returns every source in reading order, stdin last when present.
func (s *sourceFiles) readers() []io.Reader {
	if !s.hasStdin {
		return s.read
	}

	return append(slices.Clone(s.read), os.Stdin)
}

// Read implements io.Reader over the concatenation of all sources.
func (s *sourceFiles) Read(p []byte) (int, error) {
	return io.MultiReader(s.readers()...).Read(p)
}

// WriteTo implements io.WriterTo by copying every source to w in order.
func (s *sourceFiles) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, io.MultiReader(s.readers()...))
}

// fileKey identifies a file by device and inode so that symlinks, relative
// paths, and device files all collapse onto the same entry.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the conventional path argument naming standard input.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context containing an [io.Reader]
// over the given source files.
//
// Duplicate sources, whether repeated paths, symlinks, or "-" given more
// than once, are read a single time. Stdin always reads after the regular
// files.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, buildSourceFiles(sources))
}

// buildSourceFiles opens the given paths in order, dropping duplicates and
// unreadable files. It returns nil when nothing remains to read.
func buildSourceFiles(sources []string) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	seen := map[fileKey]struct{}{}
	read := make([]io.Reader, 0, len(sources))

	for _, src := range sources {
		if src == stdinSource {
			// Mark stdin seen rather than opening it, so a named
			// alias like /dev/stdin later in the list is skipped.
			seen[stdinKey] = struct{}{}

			continue
		}

		if reader, ok := openUniqueFile(src, seen); ok {
			read = append(read, reader)
		}
	}

	_, hasStdin := seen[stdinKey]

	if len(read) == 0 && !hasStdin {
		return nil
	}

	return &sourceFiles{read: read, hasStdin: hasStdin}
}

// openUniqueFile opens path unless its device/inode pair is already in seen.
// It reports false for duplicates and for files that cannot be resolved or
// opened.
func openUniqueFile(path string, seen map[fileKey]struct{}) (io.Reader, bool) {
	resolved, key, ok := canonicalKey(path)
	if !ok {
		return nil, false
	}

	if _, dup := seen[key]; dup {
		return nil, false
	}

	seen[key] = struct{}{}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, false
	}

	return file, true
}

// canonicalKey resolves path to its symlink target and the target's
// device/inode pair.
func canonicalKey(path string) (resolved string, key fileKey, ok bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, false
	}

	resolved, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fileKey{}, false
	}

	key, ok = makeFileKey(info)

	return resolved, key, ok
}

// makeFileKey derives a fileKey from stat results. It reports false on
// platforms where Sys() is not a *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (fileKey, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}

// sourceFilesFrom retrieves the reader stored in ctx by WithSourceFiles,
// or nil if none was stored.
func sourceFilesFrom(ctx context.Context) SourceFiles {
	r, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return r
}
