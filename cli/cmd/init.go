package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/reckon/lang"
	"github.com/ardnew/reckon/log"
	"github.com/ardnew/reckon/profile"
)

// Init generates a configuration file from the current flag values.
//
// The file is written in the expression language as one setter statement
// per flag, which the configuration loader evaluates at startup.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	fail := func(err error) error {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	// Refuse to clobber an existing file unless forced.
	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	text := i.buildConfig(ctx)

	// The generated chain must reparse, or the loader would silently
	// ignore the file at startup.
	if _, err := lang.Parse(text); err != nil {
		return fail(err)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return fail(err)
	}
	defer file.Close()

	if _, err := file.WriteString(text); err != nil {
		return fail(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig renders one setter statement per flag, in declaration order.
// Flag names swap hyphens for underscores so they parse as identifiers.
func (i *Init) buildConfig(ctx context.Context) string {
	ktx := kongContextFrom(ctx)

	// The version flag is excluded because resolving it from a config
	// file would print the version and exit on every invocation.
	skip := func(name string) bool {
		for _, prefix := range []string{"help", "version", profile.Tag} {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}

		return false
	}

	var sb strings.Builder

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || skip(flag.Name) {
			continue
		}

		val, ok := flagValue(ktx, flag.Name)
		if !ok {
			continue
		}

		name := strings.ReplaceAll(flag.Name, "-", "_")
		fmt.Fprintf(&sb, "%s = %s;\n", name, val.String())
	}

	return sb.String()
}

// flagValue converts a CLI flag's current value to a [lang.Value].
// It reports false for unset or empty flags, which are omitted from the
// generated file.
func flagValue(ktx *kong.Context, name string) (lang.Value, bool) {
	idx := slices.IndexFunc(ktx.Model.Flags, func(flag *kong.Flag) bool {
		return flag.Name == name
	})
	if idx == -1 {
		return lang.None(), false
	}

	val := ktx.FlagValue(ktx.Model.Flags[idx])
	if val == nil {
		return lang.None(), false
	}

	switch v := val.(type) {
	case bool:
		return lang.Bool(v), true

	case string:
		if v == "" {
			return lang.None(), false
		}

		return lang.String(v), true

	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return parseNumeric(v)

	case []string:
		return listOf(v, func(s string) (lang.Value, bool) {
			return lang.String(s), true
		})

	case []bool:
		return listOf(v, func(b bool) (lang.Value, bool) {
			return lang.Bool(b), true
		})

	case []int:
		return listOf(v, parseNumeric)

	case []int64:
		return listOf(v, parseNumeric)

	case []float64:
		return listOf(v, parseNumeric)

	default:
		return lang.String(fmt.Sprint(v)), true
	}
}

// parseNumeric renders any numeric type through its decimal text form.
func parseNumeric[T any](n T) (lang.Value, bool) {
	num, err := lang.ParseNumber(fmt.Sprint(n))
	if err != nil {
		return lang.None(), false
	}

	return num, true
}

// listOf converts a slice flag elementwise, dropping elements that do not
// convert. Empty input and empty output both report false so the flag is
// omitted rather than rendered as an empty list.
func listOf[T any](src []T, conv func(T) (lang.Value, bool)) (lang.Value, bool) {
	if len(src) == 0 {
		return lang.None(), false
	}

	items := make([]lang.Value, 0, len(src))

	for _, elem := range src {
		if v, ok := conv(elem); ok {
			items = append(items, v)
		}
	}

	if len(items) == 0 {
		return lang.None(), false
	}

	return lang.List(items...), true
}
