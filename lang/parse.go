package lang

import "log/slog"

// parser builds an expression tree from one source string by precedence
// climbing. All operator knowledge comes from the Registry tables, so
// the grammar itself is fixed while the operator set is not.
type parser struct {
	scan     *scanner
	reg      *Registry
	depth    int
	maxDepth int
}

func newParser(input string, reg *Registry, maxDepth int) *parser {
	return &parser{
		scan:     newScanner(input, reg),
		reg:      reg,
		maxDepth: maxDepth,
	}
}

// parse consumes the entire input and returns its tree.
func (p *parser) parse() (*Expr, error) {
	if err := p.scan.next(); err != nil {
		return nil, err
	}

	return p.parseChain()
}

// parseChain parses zero or more statements running to end of input,
// each optionally terminated by ";". A single statement is returned
// unwrapped; any other count produces a chain node whose value is its
// last statement's, or None when empty.
func (p *parser) parseChain() (*Expr, error) {
	start := p.scan.tok.pos

	var stmts []*Expr

	for p.scan.tok.kind != tokenEOF {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, e)

		if p.scan.tok.kind == tokenDelim && p.scan.tok.text == ";" {
			if err := p.scan.next(); err != nil {
				return nil, err
			}
		}
	}

	if len(stmts) == 1 {
		return stmts[0], nil
	}

	return &Expr{reg: p.reg, kind: exprChain, list: stmts, pos: start}, nil
}

// parseExpression parses one full expression, including any trailing
// infix operators and ternaries.
func (p *parser) parseExpression() (*Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	return p.parseOp(0, lhs)
}

// parsePrimary parses one atomic or prefixed term, then folds any run
// of registered postfix operators into it, innermost first.
func (p *parser) parsePrimary() (*Expr, error) {
	e, err := p.parseToken()
	if err != nil {
		return nil, err
	}

	for p.scan.tok.kind == tokenOperator {
		op := p.scan.tok.text
		if _, ok := p.reg.postfixFn(op); !ok {
			break
		}

		e = &Expr{reg: p.reg, kind: exprPostfix, op: op, lhs: e, pos: e.pos}

		if err := p.scan.next(); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// parseOp folds infix operators into lhs while their precedence stays at
// or above minPrec. An operator token with no infix registration has
// precedence -1 and therefore ends the loop without error; whether it
// was meaningful is decided by whatever parses next.
//
// Three operator tokens get structural treatment here. "?" starts a
// ternary, binding looser than every infix operator and consuming the
// rest of the expression. ":" never starts anything, so it ends the loop
// like an unregistered operator. A textual "not" must be followed by a
// registered infix operator and negates the comparison it builds, so
// "a not in b" reads as "not (a in b)".
func (p *parser) parseOp(minPrec int, lhs *Expr) (*Expr, error) {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > p.maxDepth {
		return nil, ErrMaxDepthExceeded.At(p.scan.tok.pos)
	}

	negate := false

	for {
		tok := p.scan.tok
		if tok.kind != tokenOperator {
			return lhs, nil
		}

		if tok.text == "not" {
			if err := p.scan.next(); err != nil {
				return nil, err
			}

			if nt := p.scan.tok; nt.kind != tokenOperator || p.reg.infixPrec(nt.text) < 0 {
				return nil, ErrExpectOperator.At(nt.pos)
			}

			negate = true

			continue
		}

		if tok.text == "?" {
			return p.parseTernary(lhs)
		}

		ent, ok := p.reg.infixFn(tok.text)
		prec := -1

		if ok {
			prec = ent.prec
		}

		if prec < minPrec {
			return lhs, nil
		}

		if err := p.scan.next(); err != nil {
			return nil, err
		}

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		rbp := prec + 1
		if ent.assoc == AssocRight {
			rbp = prec
		}

		if nt := p.scan.tok; nt.kind == tokenOperator && p.reg.infixPrec(nt.text) >= rbp {
			rhs, err = p.parseOp(rbp, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &Expr{reg: p.reg, kind: exprBinary, op: tok.text, lhs: lhs, rhs: rhs, pos: lhs.pos}

		if negate {
			lhs = &Expr{reg: p.reg, kind: exprUnary, op: "not", rhs: lhs, pos: lhs.pos}
			negate = false
		}
	}
}

// parseTernary parses the branches following an already-parsed condition
// and a current "?" token.
func (p *parser) parseTernary(cond *Expr) (*Expr, error) {
	if err := p.scan.next(); err != nil {
		return nil, err
	}

	pass, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expect(":", ErrMalformedTernary); err != nil {
		return nil, err
	}

	fail, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &Expr{
		reg:  p.reg,
		kind: exprTernary,
		cond: cond,
		lhs:  pass,
		rhs:  fail,
		pos:  cond.pos,
	}, nil
}

// parseToken parses the single term starting at the current token. It is
// the choke point of every descent, so it also enforces the nesting
// depth bound.
func (p *parser) parseToken() (*Expr, error) {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > p.maxDepth {
		return nil, ErrMaxDepthExceeded.At(p.scan.tok.pos)
	}

	tok := p.scan.tok

	switch tok.kind {
	case tokenNumber, tokenString, tokenBool:
		if err := p.scan.next(); err != nil {
			return nil, err
		}

		return &Expr{reg: p.reg, kind: exprLiteral, val: tok.val, pos: tok.pos}, nil

	case tokenReference:
		if err := p.scan.next(); err != nil {
			return nil, err
		}

		return &Expr{reg: p.reg, kind: exprReference, op: tok.text, pos: tok.pos}, nil

	case tokenFunction:
		return p.parseFunction(tok)

	case tokenOperator:
		return p.parseUnary(tok)

	case tokenDelim:
		switch tok.text {
		case "(":
			return p.parseParen()
		case "[":
			return p.parseList(tok.pos)
		case "{":
			return p.parseMap(tok.pos)
		default:
			return nil, ErrUnexpectedToken.At(tok.pos).
				With(slog.String("token", tok.text))
		}

	default:
		return nil, ErrUnexpectedEOF.At(tok.pos)
	}
}

// parseUnary applies the current token as a prefix operator. Whether the
// operator is actually registered is not checked until evaluation.
func (p *parser) parseUnary(tok token) (*Expr, error) {
	if err := p.scan.next(); err != nil {
		return nil, err
	}

	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	return &Expr{reg: p.reg, kind: exprUnary, op: tok.text, rhs: operand, pos: tok.pos}, nil
}

// parseParen parses a parenthesized subexpression. Grouping leaves no
// node of its own.
func (p *parser) parseParen() (*Expr, error) {
	if err := p.scan.next(); err != nil {
		return nil, err
	}

	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expect(")", ErrMissingDelim); err != nil {
		return nil, err
	}

	return e, nil
}

// parseFunction parses a call's argument list. The scanner only emits a
// function token when an opening parenthesis touches the name.
func (p *parser) parseFunction(tok token) (*Expr, error) {
	if err := p.scan.next(); err != nil {
		return nil, err
	}

	if err := p.expect("(", ErrMissingDelim); err != nil {
		return nil, err
	}

	args, err := p.parseElements(")")
	if err != nil {
		return nil, err
	}

	return &Expr{reg: p.reg, kind: exprFunction, op: tok.text, list: args, pos: tok.pos}, nil
}

// parseList parses a bracketed list literal.
func (p *parser) parseList(pos int) (*Expr, error) {
	if err := p.scan.next(); err != nil {
		return nil, err
	}

	items, err := p.parseElements("]")
	if err != nil {
		return nil, err
	}

	return &Expr{reg: p.reg, kind: exprList, list: items, pos: pos}, nil
}

// parseElements parses comma-separated expressions up to the closing
// delimiter, allowing a trailing comma and an empty sequence.
func (p *parser) parseElements(closer string) ([]*Expr, error) {
	var elems []*Expr

	for {
		tok := p.scan.tok

		if tok.kind == tokenEOF {
			return nil, ErrUnexpectedEOF.At(tok.pos)
		}

		if tok.kind == tokenDelim && tok.text == closer {
			if err := p.scan.next(); err != nil {
				return nil, err
			}

			return elems, nil
		}

		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		elems = append(elems, e)

		if err := p.expectSeparator(closer); err != nil {
			return nil, err
		}
	}
}

// parseMap parses a braced map literal of comma-separated key:value
// entries, allowing a trailing comma and an empty map.
func (p *parser) parseMap(pos int) (*Expr, error) {
	if err := p.scan.next(); err != nil {
		return nil, err
	}

	var pairs []exprPair

	for {
		tok := p.scan.tok

		if tok.kind == tokenEOF {
			return nil, ErrUnexpectedEOF.At(tok.pos)
		}

		if tok.kind == tokenDelim && tok.text == "}" {
			if err := p.scan.next(); err != nil {
				return nil, err
			}

			return &Expr{reg: p.reg, kind: exprMap, pairs: pairs, pos: pos}, nil
		}

		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if err := p.expect(":", ErrMissingSeparator); err != nil {
			return nil, err
		}

		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, exprPair{key: key, val: val})

		if err := p.expectSeparator("}"); err != nil {
			return nil, err
		}
	}
}

// expectSeparator requires the current token to continue or end a
// comma-separated sequence: a comma is consumed, the closing delimiter
// is left for the caller's loop, and anything else is an error.
func (p *parser) expectSeparator(closer string) error {
	tok := p.scan.tok

	switch {
	case tok.kind == tokenEOF:
		return ErrUnexpectedEOF.At(tok.pos)
	case tok.kind == tokenDelim && tok.text == ",":
		return p.scan.next()
	case tok.kind == tokenDelim && tok.text == closer:
		return nil
	default:
		return ErrMissingSeparator.At(tok.pos).
			With(slog.String("token", tok.text))
	}
}

// expect requires the current token to be exactly the given operator or
// delimiter text and consumes it. Failure reports the sentinel
// positioned at the unexpected token.
func (p *parser) expect(text string, sentinel *Error) error {
	tok := p.scan.tok

	if tok.kind == tokenEOF {
		return ErrUnexpectedEOF.At(tok.pos)
	}

	if (tok.kind == tokenDelim || tok.kind == tokenOperator) && tok.text == text {
		return p.scan.next()
	}

	return sentinel.At(tok.pos).With(slog.String("token", tok.text))
}
