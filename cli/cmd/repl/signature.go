package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/reckon/lang"
)

// signatureInfo is a display signature with its parameter list split out so
// the renderer can highlight one parameter at a time.
type signatureInfo struct {
	display string
	params  []string
}

// builtinSignatures covers the built-in functions, each of which takes any
// number of values.
var builtinSignatures = map[string]signatureInfo{
	"min": {"min(...values)", []string{"...values"}},
	"max": {"max(...values)", []string{"...values"}},
	"sum": {"sum(...values)", []string{"...values"}},
	"mul": {"mul(...values)", []string{"...values"}},
}

// Styles for the signature hint line.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.Color("6"))
	currentParamStyle = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.Color("11"))
	signatureSeparatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8"))
)

// functionCall locates the cursor within a call expression.
type functionCall struct {
	name     string // callee, possibly dotted (geo.dist)
	argIndex int    // 0-based argument the cursor sits in
	inCall   bool   // false when the cursor is outside any argument list
}

// detectFunctionCall reports whether cursor sits inside the argument list of
// a call in input, and if so which call and which argument.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open := openParenBefore(input, cursor)
	if open < 0 {
		return functionCall{}
	}

	name := callName(input, open)
	if name == "" {
		return functionCall{}
	}

	return functionCall{
		name:     name,
		argIndex: argIndexIn(input[open+1 : cursor]),
		inCall:   true,
	}
}

// openParenBefore finds the nearest unbalanced '(' left of cursor, or -1
// when the cursor is not inside any parenthesized span.
func openParenBefore(input string, cursor int) int {
	depth := 0

	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				return i
			}

			depth--
		}
	}

	return -1
}

// callName extracts the identifier ending immediately before the '(' at
// open. An empty result means the paren is grouping, not a call.
func callName(input string, open int) string {
	start := walkBack(input, open, func(r rune) bool { return !isNameRune(r) })

	return input[start:open]
}

// isNameRune reports whether r can appear in a callable name. Dots join
// name segments; hyphens and everything else end the name.
func isNameRune(r rune) bool {
	switch {
	case r == '.' || r == '_':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}

	return false
}

// argIndexIn counts the top-level commas in the argument text left of the
// cursor, which is the 0-based index of the argument being typed.
func argIndexIn(args string) int {
	depth, idx := 0, 0

	for _, r := range args {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				idx++
			}
		}
	}

	return idx
}

// getSignature resolves the display signature for funcName, trying the
// builtin table, then the registry, then context-bound functions. Both of
// the latter accept any number of values, so they share a uniform variadic
// signature. Unknown names yield an empty signature.
func getSignature(
	env *lang.Context, reg *lang.Registry, funcName string,
) (signature string, params []string) {
	if builtin, ok := builtinSignatures[funcName]; ok {
		return builtin.display, builtin.params
	}

	if slices.Contains(reg.Functions(), funcName) {
		return funcName + "(...args)", []string{"...args"}
	}

	if _, ok := env.Function(funcName); ok {
		return funcName + "(...args)", []string{"...args"}
	}

	return "", nil
}

// renderSignatureHint styles signature with the parameter for currentArgIdx
// highlighted.
func renderSignatureHint(
	signature string, params []string, currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	open := strings.Index(signature, "(")
	if open == -1 || strings.LastIndex(signature, ")") == -1 {
		return signatureStyle.Render(signature)
	}

	name := signatureNameStyle.Render(signature[:open])
	if len(params) == 0 {
		return name + signatureStyle.Render("()")
	}

	styled := make([]string, len(params))

	for i, param := range params {
		// A variadic parameter absorbs every argument at or past its
		// position, so it stays highlighted from there on.
		active := currentArgIdx == i
		if strings.HasPrefix(param, "...") {
			active = currentArgIdx >= i
		}

		if active {
			styled[i] = currentParamStyle.Render(param)
		} else {
			styled[i] = signatureStyle.Render(param)
		}
	}

	return name + signatureStyle.Render("(") +
		strings.Join(styled, signatureSeparatorStyle.Render(", ")) +
		signatureStyle.Render(")")
}
