package lang

import "strings"

// Describer signatures for customizing [Expr.Describe] output. Each
// receives the already-described text of its children and returns the
// description of the whole node.
type (
	// UnaryDescriber describes a prefix operator application.
	UnaryDescriber func(op, operand string) string

	// BinaryDescriber describes an infix operator application.
	BinaryDescriber func(op, lhs, rhs string) string

	// PostfixDescriber describes a postfix operator application.
	PostfixDescriber func(op, operand string) string

	// TernaryDescriber describes a conditional expression.
	TernaryDescriber func(cond, pass, fail string) string

	// FunctionDescriber describes a call of one named function.
	FunctionDescriber func(name string, args []string) string

	// ReferenceDescriber describes one referenced name.
	ReferenceDescriber func(name string) string

	// ListDescriber describes a list from its described elements.
	ListDescriber func(items []string) string

	// MapDescriber describes a map from its described keys and values,
	// index-aligned.
	MapDescriber func(keys, vals []string) string

	// ChainDescriber describes a statement chain.
	ChainDescriber func(stmts []string) string
)

// describers holds the per-Registry description hooks. Unary, binary,
// postfix, function, and reference hooks attach to individual names;
// the structural node shapes each take a single hook.
type describers struct {
	unary     map[string]UnaryDescriber
	binary    map[string]BinaryDescriber
	postfix   map[string]PostfixDescriber
	function  map[string]FunctionDescriber
	reference map[string]ReferenceDescriber
	ternary   TernaryDescriber
	list      ListDescriber
	mapping   MapDescriber
	chain     ChainDescriber
}

// Describe returns a human-readable account of the expression, built
// bottom-up from the leaves. Nodes with no registered describer fall
// back to a compact text form, so hosts only register hooks for the
// operators they want phrased specially, as in
//
//	reg.SetBinaryDescriber(">=", func(op, lhs, rhs string) string {
//		return lhs + " is at least " + rhs
//	})
func (e *Expr) Describe() string {
	switch e.kind {
	case exprLiteral:
		return e.val.String()

	case exprReference:
		if d := e.reg.referenceDescriber(e.op); d != nil {
			return d(e.op)
		}

		return e.op

	case exprFunction:
		args := describeAll(e.list)

		if d := e.reg.functionDescriber(e.op); d != nil {
			return d(e.op, args)
		}

		return e.op + "(" + strings.Join(args, ",") + ")"

	case exprUnary:
		operand := e.rhs.Describe()

		if d := e.reg.unaryDescriber(e.op); d != nil {
			return d(e.op, operand)
		}

		return e.op + operand

	case exprBinary:
		lhs, rhs := e.lhs.Describe(), e.rhs.Describe()

		if d := e.reg.binaryDescriber(e.op); d != nil {
			return d(e.op, lhs, rhs)
		}

		return lhs + e.op + rhs

	case exprPostfix:
		operand := e.lhs.Describe()

		if d := e.reg.postfixDescriber(e.op); d != nil {
			return d(e.op, operand)
		}

		return operand + e.op

	case exprTernary:
		cond, pass, fail := e.cond.Describe(), e.lhs.Describe(), e.rhs.Describe()

		if d := e.reg.ternaryDescriber(); d != nil {
			return d(cond, pass, fail)
		}

		return cond + "?" + pass + ":" + fail

	case exprList:
		items := describeAll(e.list)

		if d := e.reg.listDescriber(); d != nil {
			return d(items)
		}

		return "[" + strings.Join(items, ",") + "]"

	case exprMap:
		keys := make([]string, len(e.pairs))
		vals := make([]string, len(e.pairs))

		for i, p := range e.pairs {
			keys[i] = p.key.Describe()
			vals[i] = p.val.Describe()
		}

		if d := e.reg.mapDescriber(); d != nil {
			return d(keys, vals)
		}

		item := make([]string, len(keys))
		for i := range keys {
			item[i] = keys[i] + ":" + vals[i]
		}

		return "{" + strings.Join(item, ",") + "}"

	default:
		stmts := describeAll(e.list)

		if d := e.reg.chainDescriber(); d != nil {
			return d(stmts)
		}

		return strings.Join(stmts, ";")
	}
}

func describeAll(exprs []*Expr) []string {
	item := make([]string, len(exprs))
	for i, e := range exprs {
		item[i] = e.Describe()
	}

	return item
}

// SetUnaryDescriber attaches a describer to one prefix operator.
func (r *Registry) SetUnaryDescriber(op string, d UnaryDescriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.unary[op] = d
}

// SetBinaryDescriber attaches a describer to one infix operator.
func (r *Registry) SetBinaryDescriber(op string, d BinaryDescriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.binary[op] = d
}

// SetPostfixDescriber attaches a describer to one postfix operator.
func (r *Registry) SetPostfixDescriber(op string, d PostfixDescriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.postfix[op] = d
}

// SetFunctionDescriber attaches a describer to one function name.
func (r *Registry) SetFunctionDescriber(name string, d FunctionDescriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.function[name] = d
}

// SetReferenceDescriber attaches a describer to one referenced name.
func (r *Registry) SetReferenceDescriber(name string, d ReferenceDescriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.reference[name] = d
}

// SetTernaryDescriber sets the describer for conditional expressions.
func (r *Registry) SetTernaryDescriber(d TernaryDescriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.ternary = d
}

// SetListDescriber sets the describer for list expressions.
func (r *Registry) SetListDescriber(d ListDescriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.list = d
}

// SetMapDescriber sets the describer for map expressions.
func (r *Registry) SetMapDescriber(d MapDescriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.mapping = d
}

// SetChainDescriber sets the describer for statement chains.
func (r *Registry) SetChainDescriber(d ChainDescriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.chain = d
}

func (r *Registry) unaryDescriber(op string) UnaryDescriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.desc.unary[op]
}

func (r *Registry) binaryDescriber(op string) BinaryDescriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.desc.binary[op]
}

func (r *Registry) postfixDescriber(op string) PostfixDescriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.desc.postfix[op]
}

func (r *Registry) functionDescriber(name string) FunctionDescriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.desc.function[name]
}

func (r *Registry) referenceDescriber(name string) ReferenceDescriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.desc.reference[name]
}

func (r *Registry) ternaryDescriber() TernaryDescriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.desc.ternary
}

func (r *Registry) listDescriber() ListDescriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.desc.list
}

func (r *Registry) mapDescriber() MapDescriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.desc.mapping
}

func (r *Registry) chainDescriber() ChainDescriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.desc.chain
}
