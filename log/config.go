package log

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log message. It extends [slog.Level] downward
// with a trace level.
type Level slog.Level

const (
	LevelTrace Level = -8
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// DefaultLevel is the level used when none is configured.
const DefaultLevel = LevelInfo

// allLevels lists the named levels from most to least verbose.
var allLevels = []Level{
	LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError,
}

// String returns the lowercase level name. Levels between the named
// constants fall back to [slog.Level] notation, for example "info+2".
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return strings.ToLower(slog.Level(l).String())
	}
}

// names yields the String form of each value in order.
func names[T fmt.Stringer](vals []T) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range vals {
			if !yield(v.String()) {
				return
			}
		}
	}
}

// Levels iterates the defined level names, most verbose first.
func Levels() iter.Seq[string] { return names(allLevels) }

// ParseLevel reads a level name: "trace", "debug", "info", "warn", or
// "error", case-insensitive, optionally with a "+" or "-" integer offset as
// accepted by [slog.Level.UnmarshalText]. Anything unrecognized yields
// [DefaultLevel].
func ParseLevel(s string) Level {
	// slog does not know the trace level by name.
	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format selects the rendering of log output.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the format used when none is configured.
const DefaultFormat = FormatJSON

var allFormats = []Format{FormatJSON, FormatText}

// String returns the lowercase format name.
func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}

	return "text"
}

// Formats iterates the defined format names.
func Formats() iter.Seq[string] { return names(allFormats) }

// ParseFormat reads a format name, "json" or "text", case-insensitive.
// Anything unrecognized yields [DefaultFormat].
func ParseFormat(s string) Format {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, f := range allFormats {
		if s == f.String() {
			return f
		}
	}

	return DefaultFormat
}

// FormatTime renders a timestamp for log output. An empty result drops the
// time attribute from the record entirely.
type FormatTime func(time.Time) string

// DefaultTimeLayout is the timestamp layout used when none is configured.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller disables caller info unless configured.
const DefaultCaller = false

// DefaultPretty enables the pretty handler unless configured.
const DefaultPretty = true

// config is the full state behind a [Logger]. Copies share the mutex, so a
// lock taken on one copy guards the original too.
type config struct {
	mutex      *sync.RWMutex
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option transforms a config.
type Option func(config) config

// apply folds opts over cfg.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// guard locks the config mutex and returns the matching unlock. A zero
// value config is given a mutex first; only the caller's local copy sees
// the assignment, so no unlock is needed in that case.
func (c *config) guard() func() {
	if c.mutex == nil {
		c.mutex = &sync.RWMutex{}

		return func() {}
	}

	c.mutex.Lock()

	return c.mutex.Unlock
}

// setting lifts a field mutation into an [Option] that takes the config
// lock around the mutation.
func setting(mutate func(*config)) Option {
	return func(c config) config {
		defer c.guard()()

		mutate(&c)

		return c
	}
}

// makeConfig builds a config from the defaults for w, then applies opts.
func makeConfig(w io.Writer, opts ...Option) config {
	c := config{mutex: &sync.RWMutex{}}

	return apply(c, append([]Option{WithDefaults(w)}, opts...)...)
}

// clone copies the config under a fresh mutex and applies opts to the copy.
func (c config) clone(opts ...Option) config {
	c.mutex = &sync.RWMutex{}

	return apply(c, opts...)
}

// handler builds the slog.Handler the current configuration calls for,
// with opts applied on top.
func (c config) handler(opts ...Option) slog.Handler {
	cfg := apply(c, opts...)

	opt := &slog.HandlerOptions{
		AddSource:   cfg.caller,
		Level:       slog.Level(cfg.level),
		ReplaceAttr: cfg.replaceAttr,
	}

	if cfg.pretty {
		return newPrettyHandler(cfg.output, opt, cfg.format == FormatJSON)
	}

	switch cfg.format {
	case FormatJSON:
		return slog.NewJSONHandler(cfg.output, opt)

	case FormatText:
		return slog.NewTextHandler(cfg.output, opt)

	default:
		return slog.DiscardHandler
	}
}

// replaceAttr runs timestamps through the configured layout, dropping them
// when it yields nothing, and renames levels so trace prints as "TRACE"
// rather than slog's "DEBUG-4".
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			formatted := c.formatTime(t)
			if formatted == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(formatted)
		}

	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
		}
	}

	return a
}

// WithDefaults resets every field: output w, [DefaultLevel],
// [DefaultFormat], [DefaultTimeLayout], [DefaultPretty], and caller info
// disabled.
func WithDefaults(w io.Writer) Option {
	if w == nil {
		w = io.Discard
	}

	return setting(func(c *config) {
		c.output = w
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.caller = DefaultCaller
		c.pretty = DefaultPretty
	})
}

// WithOutput directs log output to w, or [io.Discard] when w is nil.
func WithOutput(w io.Writer) Option {
	if w == nil {
		w = io.Discard
	}

	return setting(func(c *config) { c.output = w })
}

// WithLevel sets the minimum level; records below it are discarded.
func WithLevel(level Level) Option {
	return setting(func(c *config) { c.level = level })
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return setting(func(c *config) { c.format = format })
}

// WithTimeLayout sets the timestamp layout. The layout may be a name from
// the [time] package such as "RFC3339" or "Kitchen" (several short aliases
// like "ms" also work); anything else passes verbatim to
// [time.Time.Format]. A blank layout disables timestamps.
func WithTimeLayout(layout string) Option {
	format := makeFormatTimeFunc(layout)

	return setting(func(c *config) { c.formatTime = format })
}

// WithCaller toggles source file and line info on each record.
func WithCaller(enable bool) Option {
	return setting(func(c *config) { c.caller = enable })
}

// WithPretty toggles the pretty handler: colored keys and values, and for
// JSON format, indented multiline records.
func WithPretty(enable bool) Option {
	return setting(func(c *config) { c.pretty = enable })
}

// timeLayout resolves layout names and aliases to [time] package layouts.
var timeLayout = map[string]string{
	"ansic":       time.ANSIC,
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rubydate":    time.RubyDate,
	"stamp":       time.Stamp,
	"unixdate":    time.UnixDate,

	// Sub-second stamps and their short aliases.
	"stampmilli": time.StampMilli,
	"milli":      time.StampMilli,
	"millis":     time.StampMilli,
	"ms":         time.StampMilli,
	"stampmicro": time.StampMicro,
	"micro":      time.StampMicro,
	"micros":     time.StampMicro,
	"us":         time.StampMicro,
	"stampnano":  time.StampNano,
	"nano":       time.StampNano,
	"nanos":      time.StampNano,
	"ns":         time.StampNano,

	// "none" disables timestamps.
	"none": "",
}

func makeFormatTimeFunc(layout string) FormatTime {
	// Reduce to lowercase letters and digits for the name lookup only.
	// Layouts that resolve to no name pass through verbatim.
	key := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if key == "" {
		return func(time.Time) string { return "" }
	}

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	return func(t time.Time) string { return t.Format(layout) }
}
