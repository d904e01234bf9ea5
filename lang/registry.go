package lang

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Handler signatures for runtime-registered operators and functions.
// Handlers receive fully evaluated operands and return the result or an
// error that aborts evaluation.
type (
	// PrefixFunc applies a prefix operator to its operand.
	PrefixFunc func(operand Value) (Value, error)

	// InfixFunc applies an infix operator to its evaluated operands.
	InfixFunc func(lhs, rhs Value) (Value, error)

	// PostfixFunc applies a postfix operator to its operand.
	PostfixFunc func(operand Value) (Value, error)

	// Function implements a named function call.
	Function func(args ...Value) (Value, error)
)

// Assoc is the associativity of an infix operator.
type Assoc uint8

// Infix operator associativities.
const (
	AssocLeft Assoc = iota
	AssocRight
)

// String returns the lowercase name of the associativity.
func (a Assoc) String() string {
	if a == AssocRight {
		return "right"
	}

	return "left"
}

// infixOp is one entry of the infix operator table.
type infixOp struct {
	fn     InfixFunc
	prec   int
	assoc  Assoc
	setter bool
}

// InfixOp describes one registered infix operator.
type InfixOp struct {
	Op     string
	Prec   int
	Assoc  Assoc
	Setter bool
}

// Registry holds the operator and function tables that drive parsing and
// evaluation. Prefix, infix, and postfix operators occupy independent
// namespaces, so one symbol may carry a meaning in each position.
//
// All methods are safe for concurrent use. Registrations may interleave
// with parsing and evaluation; an expression observes each table entry
// atomically but a long chain may see registrations made mid-evaluation.
type Registry struct {
	prefix  map[string]PrefixFunc
	infix   map[string]infixOp
	postfix map[string]PostfixFunc
	funcs   map[string]Function
	desc    describers
	mu      sync.RWMutex
	id      uint64
	gen     uint64
}

// registryID issues a process-unique identity per Registry for keying
// cached parses.
var registryID atomic.Uint64

// New returns a Registry populated with the built-in operators and
// functions. Modifying the returned Registry does not affect any other.
func New() *Registry {
	r := &Registry{
		prefix:  make(map[string]PrefixFunc),
		infix:   make(map[string]infixOp),
		postfix: make(map[string]PostfixFunc),
		funcs:   make(map[string]Function),
		desc: describers{
			unary:     make(map[string]UnaryDescriber),
			binary:    make(map[string]BinaryDescriber),
			postfix:   make(map[string]PostfixDescriber),
			function:  make(map[string]FunctionDescriber),
			reference: make(map[string]ReferenceDescriber),
		},
		id: registryID.Add(1),
	}

	r.installOperators()
	r.installFunctions()

	return r
}

var defaultRegistry = sync.OnceValue(New)

// Default returns the shared process-wide Registry used when no explicit
// Registry option is given.
func Default() *Registry { return defaultRegistry() }

// RegisterPrefix registers or replaces a prefix operator.
func (r *Registry) RegisterPrefix(op string, fn PrefixFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefix[op] = fn
	r.gen++
}

// RegisterInfix registers or replaces a calculating infix operator with
// the given precedence and associativity. Higher precedence binds
// tighter.
func (r *Registry) RegisterInfix(op string, prec int, assoc Assoc, fn InfixFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.infix[op] = infixOp{fn: fn, prec: prec, assoc: assoc, setter: false}
	r.gen++
}

// RegisterSetter registers or replaces an assigning infix operator.
// Setters share the lowest built-in precedence tier and group to the
// right. Their result is written into the Context under the left
// operand's name, which must be a bare reference.
func (r *Registry) RegisterSetter(op string, fn InfixFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.infix[op] = infixOp{fn: fn, prec: setterPrec, assoc: AssocRight, setter: true}
	r.gen++
}

// RegisterPostfix registers or replaces a postfix operator.
func (r *Registry) RegisterPostfix(op string, fn PostfixFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.postfix[op] = fn
	r.gen++
}

// RegisterFunction registers or replaces a named function.
func (r *Registry) RegisterFunction(name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.funcs[name] = fn
	r.gen++
}

// RedirectPrefix registers op as a copy of the prefix operator target.
// The copy is of target's current handler; later changes to target do
// not follow. Returns ErrRedirectTarget when target is not registered.
func (r *Registry) RedirectPrefix(op, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn, ok := r.prefix[target]
	if !ok {
		return redirectError(op, target)
	}

	r.prefix[op] = fn
	r.gen++

	return nil
}

// RedirectInfix registers op as a copy of the infix operator target,
// including its precedence, associativity, and setter class. The copy is
// of target's current entry; later changes to target do not follow.
// Returns ErrRedirectTarget when target is not registered.
func (r *Registry) RedirectInfix(op, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent, ok := r.infix[target]
	if !ok {
		return redirectError(op, target)
	}

	r.infix[op] = ent
	r.gen++

	return nil
}

// RedirectPostfix registers op as a copy of the postfix operator target.
// Returns ErrRedirectTarget when target is not registered.
func (r *Registry) RedirectPostfix(op, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn, ok := r.postfix[target]
	if !ok {
		return redirectError(op, target)
	}

	r.postfix[op] = fn
	r.gen++

	return nil
}

// RedirectFunction registers name as a copy of the function target.
// Returns ErrRedirectTarget when target is not registered.
func (r *Registry) RedirectFunction(name, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn, ok := r.funcs[target]
	if !ok {
		return redirectError(name, target)
	}

	r.funcs[name] = fn
	r.gen++

	return nil
}

// RemovePrefix removes a prefix operator. Removing an unregistered
// operator is a no-op.
func (r *Registry) RemovePrefix(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.prefix, op)
	r.gen++
}

// RemoveInfix removes an infix operator.
func (r *Registry) RemoveInfix(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.infix, op)
	r.gen++
}

// RemovePostfix removes a postfix operator.
func (r *Registry) RemovePostfix(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.postfix, op)
	r.gen++
}

// RemoveFunction removes a named function.
func (r *Registry) RemoveFunction(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.funcs, name)
	r.gen++
}

// PrefixOperators returns the registered prefix operators, sorted.
func (r *Registry) PrefixOperators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.prefix)
}

// InfixOperators returns the registered infix operators, sorted by
// precedence and then by symbol.
func (r *Registry) InfixOperators() []InfixOp {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]InfixOp, 0, len(r.infix))
	for op, ent := range r.infix {
		ops = append(ops, InfixOp{
			Op:     op,
			Prec:   ent.prec,
			Assoc:  ent.assoc,
			Setter: ent.setter,
		})
	}

	sortInfixOps(ops)

	return ops
}

// PostfixOperators returns the registered postfix operators, sorted.
func (r *Registry) PostfixOperators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.postfix)
}

// Functions returns the registered function names, sorted.
func (r *Registry) Functions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.funcs)
}

// generation reports the current mutation count, used to invalidate
// cached parses after any table change.
func (r *Registry) generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.gen
}

func (r *Registry) prefixFn(op string) (PrefixFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.prefix[op]

	return fn, ok
}

func (r *Registry) infixFn(op string) (infixOp, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ent, ok := r.infix[op]

	return ent, ok
}

func (r *Registry) postfixFn(op string) (PostfixFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.postfix[op]

	return fn, ok
}

func (r *Registry) function(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]

	return fn, ok
}

// infixPrec returns the precedence of an infix operator, or -1 when op is
// not registered. The parser treats -1 as "not an operator", which stops
// precedence climbing without failing the parse.
func (r *Registry) infixPrec(op string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ent, ok := r.infix[op]
	if !ok {
		return -1
	}

	return ent.prec
}

// isOperator reports whether s names a registered operator in any
// position. The scanner uses it to classify word operators like "in".
func (r *Registry) isOperator(s string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.infix[s]; ok {
		return true
	}

	if _, ok := r.prefix[s]; ok {
		return true
	}

	_, ok := r.postfix[s]

	return ok
}

func redirectError(op, target string) *Error {
	return ErrRedirectTarget.With(
		slog.String("op", op),
		slog.String("target", target),
	)
}

func sortInfixOps(ops []InfixOp) {
	slices.SortFunc(ops, func(a, b InfixOp) int {
		if c := cmp.Compare(a.Prec, b.Prec); c != 0 {
			return c
		}

		return cmp.Compare(a.Op, b.Op)
	})
}

// sortedKeys returns m's keys in lexical order, nil for an empty map.
func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	return slices.Sorted(maps.Keys(m))
}

// longestOperator returns the longest leading substring of s registered
// as an operator in any position, or "" when none is. The scanner uses
// it to split runs of symbol characters such as "!=-" into "!=", "-".
func (r *Registry) longestOperator(s string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for l := len(s); l > 0; l-- {
		t := s[:l]

		if _, ok := r.infix[t]; ok {
			return t
		}

		if _, ok := r.prefix[t]; ok {
			return t
		}

		if _, ok := r.postfix[t]; ok {
			return t
		}
	}

	return ""
}
