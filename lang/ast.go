package lang

// exprKind identifies the shape of one AST node.
type exprKind uint8

const (
	exprLiteral exprKind = iota
	exprReference
	exprFunction
	exprUnary
	exprBinary
	exprPostfix
	exprTernary
	exprList
	exprMap
	exprChain
)

// exprPair is one key-value entry of a map expression.
type exprPair struct {
	key *Expr
	val *Expr
}

// Expr is one node of a parsed expression tree.
//
// The node records which Registry parsed it, so evaluation, rendering,
// and description resolve operators against the same tables that shaped
// the tree. Field use depends on kind: op holds the operator symbol or
// the referenced name, val holds a literal's value, lhs and rhs hold
// operands (a unary operand in rhs, a postfix operand in lhs), cond
// holds a ternary condition, and list and pairs hold the children of
// lists, maps, argument lists, and chains.
//
// An Expr is immutable after parsing and safe for concurrent use with
// distinct Contexts.
type Expr struct {
	reg   *Registry
	op    string
	val   Value
	lhs   *Expr
	rhs   *Expr
	cond  *Expr
	list  []*Expr
	pairs []exprPair
	pos   int
	kind  exprKind
}

// Pos returns the byte offset of the node's first token in the source
// text.
func (e *Expr) Pos() int { return e.pos }

// String returns the canonical rendering of the node, like [Expr.Render].
func (e *Expr) String() string { return e.Render() }

// referenceName returns the name a bare reference node resolves, for
// binding assignment targets.
func (e *Expr) referenceName() (string, bool) {
	if e.kind != exprReference {
		return "", false
	}

	return e.op, true
}
