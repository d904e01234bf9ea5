package cli

import (
	"context"
	"io"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/reckon/lang"
)

// resolve returns a [kong.ConfigurationLoader] that reads config files
// written in the expression language itself.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config")
//
// The config file is a statement chain of setter expressions. Every variable
// bound by the chain becomes a flag value, keyed by its name:
//
//	log_level = 'debug';
//	log_format = 'json';
//	log_pretty = true;
//
// Kong then sees those bindings as the flag values
//
//	--log-level=debug
//	--log-format=json
//	--log-pretty=true
//
// Flag names with hyphens (e.g., "log-level") use underscores in the config
// file (e.g., "log_level"), since hyphens parse as subtraction. Values may
// be any expression, and earlier bindings are visible to later ones.
// Command-line flags override config file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		// A config file that does not parse or evaluate is treated as
		// absent so that Kong falls back to flag defaults.
		ast, err := lang.ParseReader(ctx, r)
		if err != nil {
			return config{}, nil
		}

		env := lang.NewContext()
		if _, err := ast.Exec(env); err != nil {
			return config{}, nil
		}

		cfg := make(config)

		for _, name := range env.Names() {
			val, ok := env.Variable(name)
			if !ok {
				// Bound functions have no flag representation.
				continue
			}

			cfg[name] = flagValue(val)
		}

		return cfg, nil
	}
}

// config implements [kong.Resolver] for expression-language configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Look up the flag name as written, then with hyphens replaced by
	// underscores, the spelling identifiers force on the config file.
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// A nil value leaves the flag at its default.
	return nil, nil
}

// flagValue converts an evaluated [lang.Value] into a form Kong can apply
// to a flag.
func flagValue(val lang.Value) any {
	switch val.Kind() {
	case lang.KindBool:
		b, _ := val.Bool()

		return b

	case lang.KindNumber:
		// Kong parses numeric flags from their string form, which also
		// preserves full decimal precision.
		d, _ := val.Decimal()

		return d.String()

	case lang.KindString:
		s, _ := val.Text()

		return s

	case lang.KindList:
		items, _ := val.Items()
		list := make([]any, len(items))

		for i, item := range items {
			list[i] = flagValue(item)
		}

		return list

	case lang.KindMap:
		pairs, _ := val.Pairs()
		m := make(map[string]any, len(pairs))

		for _, pair := range pairs {
			key := pair.Key.String()
			if text, err := pair.Key.Text(); err == nil {
				key = text
			}

			m[key] = flagValue(pair.Val)
		}

		return m

	default:
		return nil
	}
}
