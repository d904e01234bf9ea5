// Package lang implements a small embeddable expression language: a
// tokenizer, a precedence-climbing parser, and a recursive evaluator
// over dynamically typed values, with every operator and function
// resolved through runtime-extensible registries.
//
// # Values
//
// Evaluation produces a [Value] holding one of six kinds: None, Bool,
// Number, String, List, or Map. Numbers are arbitrary-precision
// decimals, so 0.1 + 0.2 == 0.3 holds exactly. Maps preserve entry
// order. None is the absence of a value: the result of an assignment
// statement, an unbound reference, or an empty chain.
//
// # Grammar
//
// Informal EBNF:
//
//	Chain   → Expr (";" Expr)*
//	Expr    → OpChain ("?" Expr ":" Expr)?
//	OpChain → Primary (InfixOp Primary)*        // precedence-climbed
//	Primary → Literal | Reference | Call | "(" Expr ")" | List | Map
//	        | PrefixOp Primary PostfixOp*
//	List    → "[" (Expr ("," Expr)*)? "]"
//	Map     → "{" (Expr ":" Expr ("," Expr ":" Expr)*)? "}"
//	Call    → IDENT "(" (Expr ("," Expr)*)? ")"
//	Literal → NUMBER | STRING | "true" | "false"   // case-insensitive
//
// String literals take single or double quotes and have no escape
// sequences. A call requires the parenthesis to touch the name, so
// "min(1,2)" calls while "min (1,2)" references. Which symbols parse as
// operators, and how tightly infix operators bind, comes entirely from
// the [Registry] in use.
//
// # Built-in operators
//
// From loosest to tightest binding: assignment (= += -= *= /= %= <<=
// >>= &= ^= |=), then || and &&, comparisons (< <= > >= == !=), bitwise
// | ^ &, shifts << >>, additive + -, multiplicative * / %, and the word
// operators in, beginWith, and endWith. Prefix operators are + - ! not,
// and the list folds AND and OR. Postfix ++ and -- add or subtract one
// without writing back. Arithmetic requires numbers, bitwise operators
// require integers, && and || require booleans and evaluate both sides,
// and == and != compare any kinds structurally.
//
// # Evaluation
//
// A [Context] carries variable and function bindings. References resolve
// through it, unbound names resolving to None. Setters write through it:
// "a = 5" binds a and yields None, "a = b = 3" binds both right to left,
// and "a += 3" fails on an unbound a because None is not a number.
// Function calls try Context functions first, then the Registry.
//
//	ctx := lang.NewContext()
//	ctx.SetVariable("price", lang.Float(9.75))
//
//	v, err := lang.Execute("price * 3 > 25 ? 'bulk' : 'unit'", ctx)
//
// One parsed [Expr] may be evaluated many times, against many Contexts,
// from many goroutines.
//
// # Extension
//
// Hosts register operators and functions at runtime, before or between
// evaluations:
//
//	reg := lang.New()
//	reg.RegisterInfix("max2", 65, lang.AssocLeft,
//		func(lhs, rhs lang.Value) (lang.Value, error) {
//			a, err := lhs.Decimal()
//			if err != nil {
//				return lang.None(), err
//			}
//			b, err := rhs.Decimal()
//			if err != nil {
//				return lang.None(), err
//			}
//			return lang.Number(decimal.Max(a, b)), nil
//		})
//
//	v, err := lang.Execute("1 max2 2 + 3", nil, lang.WithRegistry(reg))
//
// Registering a multi-character symbol operator also teaches the
// tokenizer to split it out of symbol runs. [Expr.Describe] renders an
// expression through per-operator description hooks for human-facing
// output, and [Expr.Render] produces canonical text that reparses to an
// equivalent tree.
package lang
