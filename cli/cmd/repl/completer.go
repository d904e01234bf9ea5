package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/reckon/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "ops", "edit", "clear", "quit"}

// isWordBoundary reports whether r delimits a completable word. Word runes
// are ASCII letters, digits, underscores, and dots. Dots belong to words
// because dotted references are single flat names; hyphens delimit because
// they parse as subtraction.
func isWordBoundary(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z',
		r >= 'A' && r <= 'Z',
		r >= '0' && r <= '9',
		r == '.', r == '_':
		return false
	}

	return true
}

// walkBack returns the byte offset where a backward walk from 'from' stops,
// just after the first rune satisfying stop.
func walkBack(input string, from int, stop func(rune) bool) int {
	for from > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:from])
		if stop(r) {
			break
		}

		from -= size
	}

	return from
}

// wordBounds returns the word surrounding the cursor and its byte bounds.
// On a boundary rune (after a space, an operator, at line start) the word
// is empty with start == end == cursor.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = walkBack(input, cursor, isWordBoundary)

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// isWordOp reports whether an operator symbol is identifier-shaped. Word
// operators like "in" or "AND" are worth completing, punctuation operators
// are not.
func isWordOp(op string) bool {
	if op == "" {
		return false
	}

	for _, r := range op {
		wordRune := r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !wordRune {
			return false
		}
	}

	return true
}

// appendWordOps adds the identifier-shaped operators from ops to names.
func appendWordOps(names, ops []string) []string {
	for _, op := range ops {
		if isWordOp(op) {
			names = append(names, op)
		}
	}

	return names
}

// evalCandidates collects the completion pool for eval mode: every bound
// name, every registered function, and the word-shaped operators from all
// three operator tables, sorted and deduplicated.
func (m model) evalCandidates() []string {
	names := slices.Clone(m.env.Names())
	names = append(names, m.reg.Functions()...)
	names = appendWordOps(names, m.reg.PrefixOperators())
	names = appendWordOps(names, m.reg.PostfixOperators())

	for _, in := range m.reg.InfixOperators() {
		if isWordOp(in.Op) {
			names = append(names, in.Op)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches ranks the candidate pool against the word at the cursor.
// It returns the matches best-first, the pool itself, and the word bounds.
// An empty word yields nil matches so the hint line stays visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	word, start, end := wordBounds(m.input.Value(), m.input.Position())

	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		candidates = m.evalCandidates()
	}

	if word == "" || len(candidates) == 0 {
		return nil, nil, start, end
	}

	return fuzzy.Find(word, candidates), candidates, start, end
}

// renderCandidateBar lays the matches out on one line, separated by two
// spaces and cut off with an ellipsis where the terminal width runs out.
// The first match always appears, however narrow the terminal.
func (m model) renderCandidateBar() string {
	if len(m.matches) == 0 || m.width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(ellipsis)

	parts := make([]string, 0, len(m.matches)+1)
	used := 0
	truncated := false

	for i, match := range m.matches {
		entry := m.renderCandidate(match, m.tabActive && i == m.suggIdx)

		w := lipgloss.Width(entry)
		if i > 0 {
			w += sepWidth
		}

		if i > 0 && used+w+reserve > m.width {
			truncated = true

			break
		}

		parts = append(parts, entry)
		used += w
	}

	if truncated {
		parts = append(parts, ellipsis)
	}

	return strings.Join(parts, sep)
}

// Styles for the runes fuzzy matching singled out within a candidate.
var (
	matchedRuneStyle = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.Color("4"))
	selectedMatchedRuneStyle = lipgloss.NewStyle().Bold(true).
					Foreground(lipgloss.Color("0")).
					Background(lipgloss.Color("4"))
)

// renderCandidate styles one candidate, highlighting its matched runes and
// appending "()" after function names. The suffix is display only and never
// inserted by completion.
func (m model) renderCandidate(match fuzzy.Match, selected bool) string {
	base, mark := suggestionStyle, matchedRuneStyle
	if selected {
		base, mark = selectedStyle, selectedMatchedRuneStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		style := base
		if slices.Contains(match.MatchedIndexes, i) {
			style = mark
		}

		b.WriteString(style.Render(string(r)))
	}

	if m.isFunction(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// formatPreview produces the short annotation shown beside a bound name in
// list output: "()" for functions, "= value" truncated to 40 characters for
// variables, nothing for unbound names.
func formatPreview(name string, env *lang.Context) string {
	if _, ok := env.Function(name); ok {
		return "()"
	}

	val, ok := env.Variable(name)
	if !ok {
		return ""
	}

	preview := val.String()
	if len(preview) > 40 {
		preview = preview[:37] + "..."
	}

	return "= " + preview
}

// isFunction reports whether name is callable, either registered or bound
// in the context.
func (m model) isFunction(name string) bool {
	if slices.Contains(m.reg.Functions(), name) {
		return true
	}

	_, ok := m.env.Function(name)

	return ok
}
