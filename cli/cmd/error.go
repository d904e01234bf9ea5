package cmd

import (
	"log/slog"
	"slices"
)

// Error is a command failure that renders tersely through error wrapping
// and richly through [slog]. Sentinels declared below carry the base
// message; call sites derive instances with [Error.Wrap] and [Error.With].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error joins the base message and the wrapped cause with ": ", omitting
// whichever is absent.
func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()

	case e.msg != "":
		return e.msg

	case e.err != nil:
		return e.err.Error()
	}

	return ""
}

func (e *Error) Unwrap() error { return e.err }

// Is matches any [Error] sharing the base message, so instances derived
// from a sentinel still satisfy [errors.Is] against it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

// LogValue flattens the error into a group: the base message, the cause,
// then any attached attributes.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap derives an instance of e with err as its cause. Attributes are
// shared with the receiver, not copied.
func (e *Error) Wrap(err error) *Error {
	d := *e
	d.err = err

	return &d
}

// With derives an instance of e carrying additional log attributes. The
// receiver is left untouched.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := *e
	d.attrs = slices.Concat(e.attrs, attrs)

	return &d
}

var (
	ErrJSONMarshal = NewError("marshal JSON")
	ErrYAMLMarshal = NewError("marshal YAML")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
	ErrOpenSource  = NewError("open source file")
	ErrBadBinding  = NewError(`binding must have the form "NAME=EXPR"`)
)
