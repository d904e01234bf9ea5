//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/reckon/log"
	"github.com/ardnew/reckon/profile"
)

// pprofConfig holds the profiling flags compiled in by the pprof tag.
type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Collect a runtime profile" placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Directory for profile output"                              type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{
		Key:   "pprof",
		Title: "Profiling (pprof)",
	}
}

// start launches the selected profiler and returns the function that stops
// it. With no mode selected the returned stop is a no-op.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	attrs := []slog.Attr{
		slog.String("mode", f.Mode),
		slog.String("dir", f.Dir),
	}

	log.DebugContext(ctx, "profiling started", attrs...)

	cfg := profile.Config(func() (string, string, bool) { return "", "", false })

	for _, opt := range []func(profile.Config) profile.Config{
		profile.WithMode(f.Mode),
		profile.WithPath(f.Dir),
		profile.WithQuiet(true),
	} {
		cfg = opt(cfg)
	}

	profiler := cfg.Start()

	return func() {
		log.DebugContext(ctx, "profiling stopped", attrs...)
		profiler.Stop()
	}
}
