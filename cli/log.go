package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/reckon/log"
)

// logFormat reconfigures the logger as a side effect of flag parsing via
// encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler. Kong invokes it while
// parsing --log-format, early enough to shape messages emitted during
// parsing itself.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel reconfigures the logger as a side effect of flag parsing via
// encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler. Kong invokes it while
// parsing --log-level, early enough to shape messages emitted during
// parsing itself.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"trace,debug,info,warn,error" help:"Set log level."`
	Format     logFormat `default:"json"    enum:"json,text"                   help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                                    help:"Set timestamp format."`
	Caller     bool      `default:"false"                                      help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                                       help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars { return kong.Vars{} }

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// splitFlag separates a "--flag=value" argument at its first '='.
func splitFlag(arg string) (name, value string, assigned bool) {
	return strings.Cut(arg, "=")
}

// takesValue reports whether arg can serve as the value of the preceding
// flag: non-empty and not itself flag-shaped.
func takesValue(arg string) bool {
	return arg != "" && arg[0] != '-'
}

// scan applies logger flags in a pass over the arguments before Kong parses
// them, so the logger is configured the same no matter where the flags sit
// on the command line.
//
// The logLevel and logFormat types reconfigure the logger through their
// unmarshal hooks as Kong reaches them, but the negatable booleans never
// pass through that interface, so all logger flags are applied here.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		name, value, assigned := splitFlag(args[i])

		switch name {
		case "--log-level", "--log-format":
			if !assigned && i+1 < len(args) && takesValue(args[i+1]) {
				value = args[i+1]
				i++
			}

			f.applyTextFlag(name, value)

		case "--log-pretty", "--no-log-pretty",
			"--log-caller", "--no-log-caller":
			f.applyBoolFlag(name, value, assigned)
		}
	}
}

// applyTextFlag routes a value through the same unmarshal hook Kong would
// call, so the logger reconfigures immediately.
func (f *logConfig) applyTextFlag(name, value string) {
	if name == "--log-level" {
		_ = f.Level.UnmarshalText([]byte(value))

		return
	}

	_ = f.Format.UnmarshalText([]byte(value))
}

// applyBoolFlag handles the negatable booleans. A "--no-" prefix inverts
// the flag, and an assigned "=false" inverts it once more; unparseable
// values are ignored.
func (f *logConfig) applyBoolFlag(name, value string, assigned bool) {
	state := !strings.HasPrefix(name, "--no-")

	if assigned {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return
		}

		state = state == v
	}

	if strings.HasSuffix(name, "-pretty") {
		f.Pretty = state

		log.Config(log.WithPretty(state))

		return
	}

	f.Caller = state

	log.Config(log.WithCaller(state))
}
