package lang

import (
	"errors"
	"log/slog"
	"strconv"
)

// Predefined errors (sentinel values).
//
// Each sentinel identifies one failure condition of the scanner, parser,
// or evaluator. Derived errors produced with [Error.At], [Error.Wrap], or
// [Error.With] still match their sentinel under [errors.Is].
var (
	ErrMalformedNumber    = NewError("malformed number literal")
	ErrUnterminatedString = NewError("unterminated string literal")
	ErrUnsupportedChar    = NewError("unsupported character")
	ErrUnexpectedEOF      = NewError("unexpected end of input")

	ErrUnexpectedToken  = NewError("unexpected token")
	ErrMissingDelim     = NewError("missing closing delimiter")
	ErrMissingSeparator = NewError("missing separator")
	ErrMalformedTernary = NewError("malformed ternary expression")
	ErrExpectOperator   = NewError("expected binary operator")
	ErrMaxDepthExceeded = NewError("maximum nesting depth exceeded")

	ErrPrefixNotRegistered   = NewError("prefix operator not registered")
	ErrInfixNotRegistered    = NewError("infix operator not registered")
	ErrPostfixNotRegistered  = NewError("postfix operator not registered")
	ErrFunctionNotRegistered = NewError("function not registered")
	ErrNotReference          = NewError("assignment target is not a reference")
	ErrRedirectTarget        = NewError("redirect target not registered")

	ErrInvalidNumber      = NewError("invalid number value")
	ErrInvalidBoolean     = NewError("invalid boolean value")
	ErrInvalidString      = NewError("invalid string value")
	ErrInvalidList        = NewError("invalid list value")
	ErrInvalidMap         = NewError("invalid map value")
	ErrInvalidInteger     = NewError("invalid integer value")
	ErrParamCountMismatch = NewError("parameter count mismatch")

	ErrDivisionByZero = NewError("division by zero")
	ErrModuloByZero   = NewError("modulo by zero")
	ErrShiftCount     = NewError("invalid shift count")

	ErrReadInput = NewError("failed to read input")
)

// Error is the error type of the scanner, parser, and evaluator. It carries
// an optional cause, structured logging attributes, and a byte offset into
// the source text, and logs itself as a group via [slog.LogValuer].
type Error struct {
	msg   string
	err   error       // cause, surfaced by Unwrap
	kind  *Error      // originating sentinel, matched by Is
	attrs []slog.Attr
	off   int // byte offset into the source, -1 when unknown
}

// NewError returns an unpositioned sentinel Error carrying msg.
func NewError(msg string) *Error {
	e := &Error{msg: msg, off: -1}
	e.kind = e

	return e
}

// WrapError lifts err into an *Error. An err that already is one, or wraps
// one, is returned unchanged.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err, off: -1}
}

// Error renders "<msg>: <cause>", omitting whichever half is unset, and
// appends " at offset <n>" when the position is known.
func (e *Error) Error() string {
	msg := e.msg

	switch {
	case e.err != nil && msg != "":
		msg += ": " + e.err.Error()
	case e.err != nil:
		msg = e.err.Error()
	}

	if e.off >= 0 {
		msg += " at offset " + strconv.Itoa(e.off)
	}

	return msg
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel this Error derives from.
// It allows errors.Is to match positioned and annotated derivations
// against their originating sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.kind != nil && t.kind == e.kind
}

// Offset returns the byte offset into the source text where the error
// occurred, or -1 when no position is known.
func (e *Error) Offset() int { return e.off }

// LogValue groups the message, cause, offset, and any attached attributes,
// skipping fields that are unset.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.off >= 0 {
		attrs = append(attrs, slog.Int("offset", e.off))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// At returns a copy of e positioned at byte offset off. The receiver is
// left unchanged, so sentinels stay unpositioned.
func (e *Error) At(off int) *Error {
	d := *e
	d.off = off

	return &d
}

// Wrap returns a copy of e with err as its cause. The copy still matches
// e's sentinel under errors.Is.
func (e *Error) Wrap(err error) *Error {
	d := *e
	d.err = err

	return &d
}

// With returns a copy of e carrying the additional logging attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := *e
	d.attrs = append(e.attrs[:len(e.attrs):len(e.attrs)], attrs...)

	return &d
}
