package lang

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// tokenKind classifies one scanned token.
type tokenKind uint8

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenString
	tokenBool
	tokenOperator
	tokenDelim
	tokenReference
	tokenFunction
)

// token is one lexical unit of the source text. Literal tokens carry
// their parsed value so the parser never reinterprets text.
type token struct {
	text string
	val  Value
	pos  int
	kind tokenKind
}

// scanner splits source text into tokens, one at a time. The operator
// table of the Registry decides how runs of symbol characters split, so
// registering a multi-character operator changes tokenization.
//
// After a successful next, tok holds the current token; at end of input
// it holds an EOF token indefinitely.
type scanner struct {
	reg   *Registry
	input string
	tok   token
	pos   int
}

func newScanner(input string, reg *Registry) *scanner {
	return &scanner{reg: reg, input: input}
}

// next advances to the next token. Scanning errors are positioned at the
// byte offset of the offending text.
func (s *scanner) next() error {
	s.skipSpace()

	start := s.pos

	if s.pos >= len(s.input) {
		s.tok = token{pos: start, kind: tokenEOF}

		return nil
	}

	switch c := s.input[s.pos]; {
	case isDigit(c):
		return s.scanNumber(start)
	case c == '\'' || c == '"':
		return s.scanString(start, c)
	case isDelim(c):
		s.pos++
		s.tok = token{text: s.input[start:s.pos], pos: start, kind: tokenDelim}

		return nil
	case isOpChar(c):
		return s.scanOperator(start)
	case isIdentChar(c):
		return s.scanIdent(start)
	default:
		return ErrUnsupportedChar.At(start).
			With(slog.String("char", string(s.input[s.pos])))
	}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.input) {
		switch s.input[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return
		}
	}
}

// scanNumber consumes decimal notation. A sign is part of the literal
// only directly after an exponent marker, so "1e-3" is one token while
// "1-3" is three.
func (s *scanner) scanNumber(start int) error {
	for s.pos < len(s.input) {
		c := s.input[s.pos]

		if isDigit(c) || c == '.' || isExpMark(c) {
			s.pos++

			continue
		}

		if (c == '+' || c == '-') && isExpMark(s.input[s.pos-1]) {
			s.pos++

			continue
		}

		break
	}

	text := s.input[start:s.pos]

	num, err := decimal.NewFromString(text)
	if err != nil {
		return ErrMalformedNumber.Wrap(err).At(start).
			With(slog.String("literal", text))
	}

	s.tok = token{text: text, val: Number(num), pos: start, kind: tokenNumber}

	return nil
}

// scanString consumes a literal delimited by quote. There are no escape
// sequences; the literal ends at the first matching quote character.
func (s *scanner) scanString(start int, quote byte) error {
	content := start + 1

	end := strings.IndexByte(s.input[content:], quote)
	if end < 0 {
		return ErrUnterminatedString.At(start)
	}

	text := s.input[content : content+end]
	s.pos = content + end + 1
	s.tok = token{text: text, val: String(text), pos: start, kind: tokenString}

	return nil
}

// scanOperator consumes the longest operator registered in any table
// from the front of a run of symbol characters, so "!=-1" splits into
// "!=" and "-1" no matter how the run is spaced. The structural "?" and
// ":" always scan alone. An unregistered run is still emitted as one
// operator token; the parser or evaluator rejects it with a positioned
// error.
func (s *scanner) scanOperator(start int) error {
	end := start
	for end < len(s.input) && isOpChar(s.input[end]) {
		end++
	}

	run := s.input[start:end]

	var text string

	switch {
	case run[0] == '?' || run[0] == ':':
		text = run[:1]
	default:
		text = s.reg.longestOperator(run)
		if text == "" {
			text = run
		}
	}

	s.pos = start + len(text)
	s.tok = token{text: text, pos: start, kind: tokenOperator}

	return nil
}

// scanIdent consumes a word and classifies it: a boolean literal, a
// word operator such as "in" or "not", a function name when the next
// byte opens its argument list, or a plain reference.
func (s *scanner) scanIdent(start int) error {
	for s.pos < len(s.input) && isIdentChar(s.input[s.pos]) {
		s.pos++
	}

	text := s.input[start:s.pos]

	switch {
	case strings.EqualFold(text, "true"):
		s.tok = token{text: text, val: Bool(true), pos: start, kind: tokenBool}
	case strings.EqualFold(text, "false"):
		s.tok = token{text: text, val: Bool(false), pos: start, kind: tokenBool}
	case text == "not" || s.reg.isOperator(text):
		s.tok = token{text: text, pos: start, kind: tokenOperator}
	case s.pos < len(s.input) && s.input[s.pos] == '(':
		s.tok = token{text: text, pos: start, kind: tokenFunction}
	default:
		s.tok = token{text: text, pos: start, kind: tokenReference}
	}

	return nil
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isExpMark(c byte) bool { return c == 'e' || c == 'E' }

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '[', ']', '{', '}', ';', ',':
		return true
	default:
		return false
	}
}

func isOpChar(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%', '&', '!', '=', '|', '>', '<', '^', '?', ':':
		return true
	default:
		return false
	}
}

func isIdentChar(c byte) bool {
	return isDigit(c) ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		c == '.' || c == '_'
}
