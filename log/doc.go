// Package log wraps [log/slog] behind a small functional-options surface
// shared by every component of the interpreter.
//
// A Logger is a value. [Make] builds one over any [io.Writer], [Logger.Wrap]
// derives one with options layered on top, and [Logger.With] attaches
// attributes carried by every later record. The zero value is inert: it
// reports defaults and drops every message.
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	logger.Debug("scan complete", slog.Int("tokens", 17))
//
// # Levels
//
// Five levels are recognized, ordered [LevelTrace], [LevelDebug],
// [LevelInfo], [LevelWarn], [LevelError]. Trace sits below slog's debug and
// carries per-token and per-node diagnostics that would swamp debug output.
// Records below the configured level are dropped.
//
// # Formats
//
// [FormatJSON] (the default) emits one JSON object per record, and
// [FormatText] emits logfmt-style lines. [WithPretty] switches either to a
// colorized layout intended for terminals.
//
// # Timestamps
//
// [WithTimeLayout] accepts a named layout from the [time] package
// ("RFC3339", "Kitchen", ...), a short alias like "ms" for sub-second
// stamps, the special name "none" to drop timestamps entirely, or any
// literal layout string.
//
// # Context
//
// Every leveled method has a context-aware twin ([Logger.InfoContext] and
// so on). The plain methods delegate to them with the context returned by
// [DefaultContextProvider], which is [context.TODO] unless replaced.
//
// # Package-level logger
//
// A default logger writes to standard error. [Config] reconfigures it in
// place, and the top-level [Info], [Debug], and friends delegate to it.
package log
