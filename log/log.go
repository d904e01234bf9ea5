package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Logger is a leveled, concurrency-safe wrapper over [slog.Logger] that adds
// a trace level below debug and renders through the handler selected by its
// [config]. The zero value is usable and discards everything.
type Logger struct {
	*slog.Logger
	config
}

// Make returns a [Logger] writing to w. Without options it uses
// [DefaultFormat], [DefaultLevel], and [DefaultTimeLayout] with caller info
// disabled; see [WithFormat], [WithLevel], [WithTimeLayout], and
// [WithCaller].
func Make(w io.Writer, opts ...Option) Logger {
	// makeConfig installs the mutex, so nothing needs locking before the
	// logger escapes.
	return build(makeConfig(w, opts...))
}

// build assembles a [Logger] around cfg with a handler built from it.
func build(cfg config) Logger {
	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// rlock takes the config read lock and returns the matching unlock. A zero
// value [Logger] has no mutex yet; it is given one so later accessors on the
// same copy can lock normally.
func (l *Logger) rlock() func() {
	if l.mutex == nil {
		l.mutex = &sync.RWMutex{}

		return func() {}
	}

	l.mutex.RLock()

	return l.mutex.RUnlock
}

// Wrap derives a new [Logger] from l, reusing its configuration as the base
// and applying opts on top.
func (l Logger) Wrap(opts ...Option) Logger {
	// clone copies the config under l's lock and gives the copy a fresh
	// mutex, so the opts mutate only the unshared copy.
	defer l.rlock()()

	return build(l.clone(opts...))
}

// With returns a [Logger] that attaches attrs to every record it emits.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	defer l.rlock()()

	return Logger{
		config: l.clone(),
		Logger: slog.New(l.Logger.Handler().WithAttrs(attrs)),
	}
}

// Level reports the minimum level l emits.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	defer l.rlock()()

	return l.level
}

// Format reports the output format l renders with.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	defer l.rlock()()

	return l.format
}

// TraceContext emits msg at trace level under ctx.
func (l Logger) TraceContext(
	ctx context.Context, msg string, attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelTrace, msg, attrs...)
}

// Trace emits msg at trace level under the ambient context.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.TraceContext(DefaultContextProvider(), msg, attrs...)
}

// DebugContext emits msg at debug level under ctx.
func (l Logger) DebugContext(
	ctx context.Context, msg string, attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelDebug, msg, attrs...)
}

// Debug emits msg at debug level under the ambient context.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.DebugContext(DefaultContextProvider(), msg, attrs...)
}

// InfoContext emits msg at info level under ctx.
func (l Logger) InfoContext(
	ctx context.Context, msg string, attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelInfo, msg, attrs...)
}

// Info emits msg at info level under the ambient context.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.InfoContext(DefaultContextProvider(), msg, attrs...)
}

// WarnContext emits msg at warn level under ctx.
func (l Logger) WarnContext(
	ctx context.Context, msg string, attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelWarn, msg, attrs...)
}

// Warn emits msg at warn level under the ambient context.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.WarnContext(DefaultContextProvider(), msg, attrs...)
}

// ErrorContext emits msg at error level under ctx.
func (l Logger) ErrorContext(
	ctx context.Context, msg string, attrs ...slog.Attr,
) {
	l.logContext(ctx, LevelError, msg, attrs...)
}

// Error emits msg at error level under the ambient context.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.ErrorContext(DefaultContextProvider(), msg, attrs...)
}

// logContext builds and hands a record to the handler. All leveled methods
// funnel through here, and the fixed call depth below is what makes the
// recorded caller PC land on user code.
func (l Logger) logContext(
	ctx context.Context, level Level, msg string, attrs ...slog.Attr,
) {
	// Zero value loggers drop everything.
	if l.Logger == nil {
		return
	}

	defer l.rlock()()

	if !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	// slog.Logger offers no direct PC control, so the record is built by
	// hand. Skip 4 frames: Callers, logContext, the *Context method, and
	// the plain leveled wrapper.
	var pcs [1]uintptr

	runtime.Callers(4, pcs[:])

	rec := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	rec.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, rec)
}
