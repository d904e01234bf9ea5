package lang

import (
	"errors"
	"log/slog"
)

// Exec evaluates the expression against ctx and returns its value.
//
// Evaluation is a pure recursive walk with no memoization, so
// re-executing the same tree re-runs every node. That is deliberate:
// chain statements may write variables that later statements read, and
// hosts re-execute one parsed tree against many Contexts. A nil ctx
// evaluates with a fresh empty Context.
func (e *Expr) Exec(ctx *Context) (Value, error) {
	if ctx == nil {
		ctx = NewContext()
	}

	return e.eval(ctx)
}

// positioned attaches the node's offset to an error that carries no
// position of its own, so handler failures like a division by zero
// report where the failing expression begins. Errors from child nodes
// are already positioned and pass through unchanged.
func (e *Expr) positioned(err error) error {
	var ee *Error
	if errors.As(err, &ee) && ee.Offset() < 0 {
		return ee.At(e.pos)
	}

	return err
}

func (e *Expr) eval(ctx *Context) (Value, error) {
	switch e.kind {
	case exprLiteral:
		return e.val, nil
	case exprReference:
		v, err := ctx.Resolve(e.op)
		if err != nil {
			return None(), e.positioned(err)
		}

		return v, nil
	case exprFunction:
		return e.evalFunction(ctx)
	case exprUnary:
		return e.evalUnary(ctx)
	case exprBinary:
		return e.evalBinary(ctx)
	case exprPostfix:
		return e.evalPostfix(ctx)
	case exprTernary:
		return e.evalTernary(ctx)
	case exprList:
		return e.evalList(ctx)
	case exprMap:
		return e.evalMap(ctx)
	default:
		return e.evalChain(ctx)
	}
}

// evalFunction evaluates every argument left to right, then resolves the
// name against the Context before the Registry. A Context variable of
// the same name does not shadow a Registry function, since only a
// function binding satisfies the call.
func (e *Expr) evalFunction(ctx *Context) (Value, error) {
	args := make([]Value, len(e.list))

	for i, arg := range e.list {
		v, err := arg.eval(ctx)
		if err != nil {
			return None(), err
		}

		args[i] = v
	}

	fn, ok := ctx.Function(e.op)
	if !ok {
		fn, ok = e.reg.function(e.op)
	}

	if !ok {
		return None(), ErrFunctionNotRegistered.At(e.pos).
			With(slog.String("function", e.op))
	}

	v, err := fn(args...)
	if err != nil {
		return None(), e.positioned(err)
	}

	return v, nil
}

// evalUnary resolves the prefix handler before evaluating the operand,
// so an unregistered operator fails without running operand side
// effects.
func (e *Expr) evalUnary(ctx *Context) (Value, error) {
	fn, ok := e.reg.prefixFn(e.op)
	if !ok {
		return None(), ErrPrefixNotRegistered.At(e.pos).
			With(slog.String("op", e.op))
	}

	operand, err := e.rhs.eval(ctx)
	if err != nil {
		return None(), err
	}

	v, err := fn(operand)
	if err != nil {
		return None(), e.positioned(err)
	}

	return v, nil
}

func (e *Expr) evalBinary(ctx *Context) (Value, error) {
	ent, ok := e.reg.infixFn(e.op)
	if !ok {
		return None(), ErrInfixNotRegistered.At(e.pos).
			With(slog.String("op", e.op))
	}

	if ent.setter {
		// A setter statement's own value is None; the assigned value
		// only propagates through nested setters on the right.
		if _, err := e.storeSetter(ctx, ent); err != nil {
			return None(), err
		}

		return None(), nil
	}

	a, err := e.lhs.eval(ctx)
	if err != nil {
		return None(), err
	}

	b, err := e.rhs.eval(ctx)
	if err != nil {
		return None(), err
	}

	v, err := ent.fn(a, b)
	if err != nil {
		return None(), e.positioned(err)
	}

	return v, nil
}

// storeSetter applies a setter to the current value of its target
// reference, writes the result into ctx, and returns the stored value
// so that chained assignments like "a = b = 3" store 3 into both names.
// The current value of an unbound target is None, so compound setters
// like "+=" fail on unbound names while "=" does not care.
func (e *Expr) storeSetter(ctx *Context, ent infixOp) (Value, error) {
	name, ok := e.lhs.referenceName()
	if !ok {
		return None(), ErrNotReference.At(e.lhs.pos)
	}

	cur, err := e.lhs.eval(ctx)
	if err != nil {
		return None(), err
	}

	rhs, err := e.setterOperand(ctx)
	if err != nil {
		return None(), err
	}

	stored, err := ent.fn(cur, rhs)
	if err != nil {
		return None(), e.positioned(err)
	}

	ctx.SetVariable(name, stored)

	return stored, nil
}

// setterOperand evaluates a setter's right side. A nested setter
// contributes the value it stored rather than its statement value.
func (e *Expr) setterOperand(ctx *Context) (Value, error) {
	if e.rhs.kind == exprBinary {
		if ent, ok := e.reg.infixFn(e.rhs.op); ok && ent.setter {
			return e.rhs.storeSetter(ctx, ent)
		}
	}

	return e.rhs.eval(ctx)
}

// evalPostfix resolves the postfix handler before evaluating the
// operand. Postfix operators are pure: "d++" yields d plus one and does
// not write back into the Context.
func (e *Expr) evalPostfix(ctx *Context) (Value, error) {
	fn, ok := e.reg.postfixFn(e.op)
	if !ok {
		return None(), ErrPostfixNotRegistered.At(e.pos).
			With(slog.String("op", e.op))
	}

	operand, err := e.lhs.eval(ctx)
	if err != nil {
		return None(), err
	}

	v, err := fn(operand)
	if err != nil {
		return None(), e.positioned(err)
	}

	return v, nil
}

// evalTernary requires a boolean condition and evaluates exactly one
// branch.
func (e *Expr) evalTernary(ctx *Context) (Value, error) {
	cv, err := e.cond.eval(ctx)
	if err != nil {
		return None(), err
	}

	c, err := cv.Bool()
	if err != nil {
		return None(), ErrInvalidBoolean.At(e.cond.pos)
	}

	if c {
		return e.lhs.eval(ctx)
	}

	return e.rhs.eval(ctx)
}

func (e *Expr) evalList(ctx *Context) (Value, error) {
	items := make([]Value, len(e.list))

	for i, item := range e.list {
		v, err := item.eval(ctx)
		if err != nil {
			return None(), err
		}

		items[i] = v
	}

	return List(items...), nil
}

func (e *Expr) evalMap(ctx *Context) (Value, error) {
	pairs := make([]Pair, len(e.pairs))

	for i, p := range e.pairs {
		k, err := p.key.eval(ctx)
		if err != nil {
			return None(), err
		}

		v, err := p.val.eval(ctx)
		if err != nil {
			return None(), err
		}

		pairs[i] = Pair{Key: k, Val: v}
	}

	return Map(pairs...), nil
}

// evalChain runs statements in order and yields the last statement's
// value, or None for an empty chain. Statements communicate through ctx.
func (e *Expr) evalChain(ctx *Context) (Value, error) {
	ans := None()

	for _, stmt := range e.list {
		v, err := stmt.eval(ctx)
		if err != nil {
			return None(), err
		}

		ans = v
	}

	return ans, nil
}
