package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// ANSI escapes used by the pretty layouts.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyHandler is a colorized slog.Handler. It renders each record either
// as a single key=value line or as an indented multiline object, selected
// at construction.
type prettyHandler struct {
	opts  slog.HandlerOptions
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
	json  bool
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, json bool) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		json: json,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)
	h.render(buf, r)
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &clone
}

func (h *prettyHandler) WithGroup(string) slog.Handler {
	// Groups are flattened in pretty output.
	return h
}

// render writes the record's fields in a fixed order: time, level, source,
// message, handler attributes, then record attributes. Layout differences
// live in fieldWriter and in how time and level are shaped.
func (h *prettyHandler) render(buf *bytes.Buffer, r slog.Record) {
	if h.json {
		buf.WriteString("{\n")
	}

	emit := h.fieldWriter(buf)

	if !r.Time.IsZero() {
		emit(h.stamp(r.Time))
	}

	emit(h.severity(r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			emit(slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	emit(slog.String(slog.MessageKey, r.Message))

	for _, a := range h.attrs {
		emit(a)
	}

	r.Attrs(func(a slog.Attr) bool {
		emit(a)

		return true
	})

	if h.json {
		buf.WriteString("\n}")
	}
}

// stamp shapes the record time per layout. The multiline form flattens it
// to RFC3339 text; the single-line form keeps the Time kind so it takes
// timestamp coloring.
func (h *prettyHandler) stamp(t time.Time) slog.Attr {
	if h.json {
		return slog.String(slog.TimeKey, t.Format(time.RFC3339))
	}

	return slog.Time(slog.TimeKey, t)
}

// severity shapes the record level per layout. The single-line form keeps
// the Level value so it takes severity coloring.
func (h *prettyHandler) severity(l slog.Level) slog.Attr {
	if h.json {
		return slog.String(slog.LevelKey, l.String())
	}

	return slog.Any(slog.LevelKey, l)
}

// fieldWriter returns a closure appending one field at a time, tracking the
// count so separators land only between fields.
func (h *prettyHandler) fieldWriter(buf *bytes.Buffer) func(slog.Attr) {
	n := 0

	return func(a slog.Attr) {
		switch {
		case h.json:
			if n > 0 {
				buf.WriteString(",\n")
			}

			buf.WriteString("  ")
		case n > 0:
			buf.WriteByte(' ')
		}

		n++

		paint(buf, colorGray, a.Key)

		if h.json {
			buf.WriteString(": ")
		} else {
			buf.WriteByte('=')
		}

		h.writeValue(buf, a.Value)
	}
}

func (h *prettyHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		paint(buf, colorCyan, v.String())

	case slog.KindInt64:
		paint(buf, colorYellow, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		paint(buf, colorYellow, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		paint(buf, colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		color := colorRed
		if v.Bool() {
			color = colorGreen
		}

		paint(buf, color, strconv.FormatBool(v.Bool()))

	case slog.KindDuration:
		paint(buf, colorMagenta, v.Duration().String())

	case slog.KindTime:
		paint(buf, colorBlue, v.Time().String())

	case slog.KindAny:
		h.writeAny(buf, v.Any())

	default:
		paint(buf, colorCyan, v.String())
	}
}

func (h *prettyHandler) writeAny(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case slog.Level:
		paint(buf, levelColor(val), val.String())

	case nil:
		paint(buf, colorGray, "null")

	default:
		paint(buf, colorCyan, fmt.Sprint(val))
	}
}

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return colorRed
	case l >= slog.LevelWarn:
		return colorYellow
	case l >= slog.LevelInfo:
		return colorGreen
	default:
		return colorBlue
	}
}

// paint writes s wrapped in color and a trailing reset.
func paint(buf *bytes.Buffer, color, s string) {
	buf.WriteString(color)
	buf.WriteString(s)
	buf.WriteString(colorReset)
}
