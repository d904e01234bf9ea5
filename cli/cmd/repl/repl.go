// Package repl implements the interactive session behind the repl
// subcommand: a Bubble Tea program wrapping a shared evaluation context,
// with fuzzy completion, tagged history, and an external-editor escape
// hatch for rewriting bindings in bulk.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/reckon/lang"
	"github.com/ardnew/reckon/log"
)

// Messages produced by the external editor flow and consumed by Update.
type (
	editEnvMsg       struct{ env *lang.Context }
	editCancelledMsg struct{}
	editDeclinedMsg  struct{}
	editErrorMsg     struct{ err error }
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const defaultWidth = 80

func helpMessage() string {
	return `
: Commands (Esc toggles between expression and command input):

  help     Show this help
  list     Show bound names with value previews
  ops      Dump the operator and function tables
  edit     Rewrite all bindings in $EDITOR
  clear    Clear the screen
  quit     Leave the session

Keys:
  Enter        Evaluate the line (setter results stay bound)
  Tab          Cycle completion candidates (Shift-Tab cycles backward)
  Space        Accept the highlighted candidate and keep typing
  Esc          Toggle eval/command input, or back out of a Tab cycle
  Up/Down      Walk history, switching input mode to match each entry
  Shift-Up/Dn  Walk history restricted to the current input mode
  Alt-Up/Dn    Browse command history from either mode; walking past
               the end restores whatever was being typed
  Ctrl+C       Clear the line, or exit when the line is empty
  Ctrl+D       Exit when the line is empty
`
}

// inputMode selects which of the two prompt states owns the input line.
type inputMode int

const (
	modeEval inputMode = iota // expressions evaluated against the context
	modeCtrl                  // session commands such as list and edit
)

// other returns the opposite input mode.
func (mode inputMode) other() inputMode {
	if mode == modeEval {
		return modeCtrl
	}

	return modeEval
}

var (
	promptStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("6"))
	ctrlPromptStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("5"))
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// promptFor returns the rendered prompt for a mode. It styles both the live
// input field and the echo of submitted lines.
func promptFor(mode inputMode) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(evalPrompt)
}

// echoLine renders a submitted line the way it appeared at the prompt, so
// tea.Println can reprint it into the scrollback above the live input.
func echoLine(mode inputMode, input string) string {
	return promptFor(mode) + inputStyle.Render(input)
}

// inputState is a captured input line and cursor position.
type inputState struct {
	text   string
	cursor int
}

// altNavState remembers where Alt history browsing started so the prompt can
// be put back exactly when the walk runs out of command entries.
type altNavState struct {
	active bool
	mode   inputMode
	inputState
}

// model is the Bubble Tea model for the session.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	env        *lang.Context
	reg        *lang.Registry
	logger     log.Logger
	history    *History
	historyIdx int

	matches    fuzzy.Matches // live fuzzy results for the word at the cursor
	candidates []string      // pool the matches were drawn from
	wordStart  int           // byte bounds of the word under the cursor
	wordEnd    int
	suggIdx    int        // highlighted match while cycling
	tabActive  bool       // true between the first Tab and whatever ends the cycle
	tabOrig    inputState // line as it was before the first Tab

	altNav altNavState

	mode  inputMode
	saved [2]inputState // per-mode line stash, indexed by inputMode

	width    int
	quitting bool
}

// Run starts the interactive session over env.
//
// A non-nil reader supplies a preamble chain evaluated into env before the
// first prompt, so bindings from --source and --bind are visible
// interactively. History persists under cacheDir across sessions.
func Run(
	ctx context.Context,
	env *lang.Context,
	reader io.Reader,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"session starting",
		slog.Bool("has_source", reader != nil),
		slog.String("cache_dir", cacheDir),
	)

	if env == nil {
		env = lang.NewContext()
	}

	if reader != nil {
		ast, err := lang.ParseReader(ctx, reader, lang.WithLogger(logger))
		if err != nil {
			return err
		}

		if _, err := ast.Exec(env); err != nil {
			return err
		}
	}

	logger.TraceContext(
		ctx,
		"preamble evaluated",
		slog.Int("binding_count", len(env.Names())),
	)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		fmt.Printf("warning: history unavailable: %v\n", err)
	}

	logger.TraceContext(
		ctx,
		"history ready",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(
		newModel(ctx, env, history, logger),
		tea.WithContext(ctx),
	)
	_, err = p.Run()

	return err
}

func newModel(
	ctx context.Context,
	env *lang.Context,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Width = defaultWidth
	ti.Prompt = promptFor(modeEval)
	ti.Focus()

	return model{
		ctxFunc: func() context.Context { return ctx },
		input:   ti,

		env: env,
		reg: lang.Default(),

		history:    history,
		historyIdx: history.Len(),

		logger: logger,

		mode:  modeEval,
		width: defaultWidth,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editEnvMsg:
		return m.applyEdit(msg.env)

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 — edit cancelled."))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 — error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// applyEdit swaps in the context produced by the editor flow.
func (m model) applyEdit(env *lang.Context) (model, tea.Cmd) {
	m.env = env
	m.logger.TraceContext(
		m.ctxFunc(),
		"bindings replaced by edit",
		slog.Int("binding_count", len(env.Names())),
	)

	return m, tea.Println(resultStyle.Render("✔ — context updated successfully"))
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.statusLine() + "\n"
}

// statusLine picks the single line drawn beneath the input: the position
// while scrolling history, a usage hint on an empty line, a signature hint
// inside a call, or the completion bar.
func (m model) statusLine() string {
	if m.historyIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).
			Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	input := m.input.Value()
	if strings.TrimSpace(input) == "" {
		if m.mode == modeCtrl {
			return hintStyle.Render(
				"Type: help, list, ops, edit, clear, quit (Esc returns to eval)",
			)
		}

		return hintStyle.Render("Type an expression or press Esc for commands")
	}

	if m.mode == modeEval {
		if call := detectFunctionCall(input, m.input.Position()); call.inCall {
			if sig, params := getSignature(m.env, m.reg, call.name); sig != "" {
				return renderSignatureHint(sig, params, call.argIndex)
			}
		}
	}

	if len(m.matches) > 0 {
		return m.renderCandidateBar()
	}

	return ""
}

// snapshot captures the live input line and cursor.
func (m *model) snapshot() inputState {
	return inputState{text: m.input.Value(), cursor: m.input.Position()}
}

// restore puts a captured line back into the input field.
func (m *model) restore(st inputState) {
	m.input.SetValue(st.text)
	m.input.SetCursor(st.cursor)
}

// showEntry puts a history line into the input with the cursor at its end.
func (m *model) showEntry(entry HistoryEntry) {
	m.restore(inputState{text: entry.Line, cursor: len(entry.Line)})
	m.refresh(false)
}

// toFreshPrompt returns to the empty line below the newest history entry.
func (m *model) toFreshPrompt() {
	m.historyIdx = m.history.Len()
	m.input.SetValue("")
	m.refresh(false)
}

// resetLine abandons the line along with any completion cycle or Alt
// navigation in progress.
func (m *model) resetLine() {
	m.tabActive = false
	m.altNav.active = false
	m.toFreshPrompt()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"keypress",
		slog.Int("type", int(msg.Type)),
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		// A non-empty line is cleared rather than quitting.
		m.resetLine()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() != "" {
			return m, nil
		}

		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			// Enter during a cycle locks in the candidate without executing.
			m.tabActive = false
			m.altNav.active = false
			m.refresh(true)

			return m, nil
		}

		m.altNav.active = false

		return m.executeInput()

	case tea.KeyTab:
		return m.cycleCandidates(1)

	case tea.KeyShiftTab:
		return m.cycleCandidates(-1)

	case tea.KeyUp:
		if msg.Alt {
			return m.seekCtrlHistory(-1)
		}

		return m.historyPrev()

	case tea.KeyDown:
		if msg.Alt {
			return m.seekCtrlHistory(1)
		}

		return m.historyNext()

	case tea.KeyShiftUp:
		return m.seekHistoryInMode(-1)

	case tea.KeyShiftDown:
		return m.seekHistoryInMode(1)

	case tea.KeyEsc:
		if m.tabActive {
			// First Esc backs out of the completion cycle only.
			m.tabActive = false
			m.restore(m.tabOrig)
			m.refresh(false)

			return m, nil
		}

		m.altNav.active = false

		return m.toggleMode()

	case tea.KeyRunes:
		if m.tabActive && msg.String() == " " {
			// Space accepts the highlighted candidate and keeps typing.
			m.tabActive = false
		}

		m.historyIdx = m.history.Len()

		var cmd tea.Cmd

		m.input, cmd = m.input.Update(msg)
		m.refresh(true)

		return m, cmd
	}

	// Editing keys such as backspace and delete end any cycle and drop back
	// to live matching without auto-confirm.
	m.tabActive = false
	m.altNav.active = false
	m.historyIdx = m.history.Len()

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.refresh(false)

	return m, cmd
}

// cycleCandidates steps the highlighted completion forward or backward. The
// first press snapshots the line so Esc can restore it. A lone candidate is
// applied immediately without entering a cycle.
func (m model) cycleCandidates(step int) (model, tea.Cmd) {
	n := len(m.matches)

	switch n {
	case 0:
		return m, nil

	case 1:
		m.lockIn(m.matches[0].Str)

		return m, nil
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.tabOrig = m.snapshot()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceWord splices replacement over the word bounds recorded by the last
// computeMatches pass and leaves the cursor at its end.
func (m *model) replaceWord(replacement string) {
	line := m.input.Value()

	m.input.SetValue(line[:m.wordStart] + replacement + line[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(replacement))

	m.wordEnd = m.wordStart + len(replacement)
}

// lockIn applies word as the accepted completion and ends any cycle.
func (m *model) lockIn(word string) {
	m.replaceWord(word)
	m.tabActive = false
	m.suggIdx = -1
	m.matches = nil
}

// refresh recomputes completion state for the current line. With autoConfirm
// set, a word that already spells the only remaining candidate is locked in
// so the next keystroke starts fresh. Deletions and cursor movement pass
// false so the user can edit without surprise completions.
func (m *model) refresh(autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if autoConfirm && len(m.matches) == 1 {
		if sole := m.matches[0].Str; m.input.Value()[m.wordStart:m.wordEnd] == sole {
			m.lockIn(sole)
		}
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	// Submission clears the stashed line of both modes.
	m.saved = [2]inputState{}
	m.input.SetValue("")

	_, _ = m.history.WriteWithMode(line, m.mode)
	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(
			m.ctxFunc(),
			"command submitted",
			slog.String("input", line),
		)

		return m.executeCommand(line)
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"expression submitted",
		slog.String("input", line),
	)

	echo := tea.Println(echoLine(modeEval, line))

	// The shared context is what keeps setter results visible to later lines.
	result, err := lang.Execute(line, m.env, lang.WithLogger(m.logger))
	if err != nil {
		m.logger.TraceContext(
			m.ctxFunc(),
			"eval outcome",
			slog.String("result_kind", "error"),
			slog.String("error", err.Error()),
		)

		return m, tea.Sequence(
			echo,
			tea.Println(errorStyle.Render("error: "+err.Error())),
		)
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"eval outcome",
		slog.String("result_kind", result.Kind().String()),
	)

	return m, tea.Sequence(
		echo,
		tea.Println(resultStyle.Render(result.String())),
	)
}

func (m model) executeCommand(line string) (model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}

	name, args := fields[0], fields[1:]
	echo := tea.Println(echoLine(modeCtrl, line))

	m.logger.TraceContext(
		m.ctxFunc(),
		"dispatching command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case "o", "ops":
		return m, tea.Sequence(echo, tea.Println(m.listOperators()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		var edit tea.Cmd

		m, edit = m.startEdit()

		return m, tea.Sequence(echo, edit)
	}

	return m, tea.Println(
		errorStyle.Render("Unknown command: " + name + " (try 'help')"),
	)
}

// startEdit suspends the TUI and hands the bindings to $EDITOR. The exec
// callback maps the editor outcome onto the messages Update consumes.
func (m model) startEdit() (model, tea.Cmd) {
	cmd := &editEnvCommand{
		env:     m.env,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return m, tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}

		case err != nil:
			return editErrorMsg{err: err}

		case cmd.newEnv == nil:
			return editCancelledMsg{}
		}

		return editEnvMsg{env: cmd.newEnv}
	})
}

// recallEntry loads a history entry into the input, switching modes when the
// entry was recorded under the other prompt.
func (m model) recallEntry(idx int) model {
	entry, err := m.history.GetEntry(idx)
	if err != nil {
		return m
	}

	m.historyIdx = idx

	if m.mode != entry.Mode {
		m, _ = m.switchToMode(entry.Mode)
	}

	m.showEntry(entry)

	return m
}

func (m model) historyPrev() (model, tea.Cmd) {
	if m.historyIdx > 0 {
		m = m.recallEntry(m.historyIdx - 1)
	}

	return m, nil
}

func (m model) historyNext() (model, tea.Cmd) {
	if m.historyIdx < m.history.Len()-1 {
		return m.recallEntry(m.historyIdx + 1), nil
	}

	// Past the newest entry the line reverts to a fresh prompt.
	m.toFreshPrompt()

	return m, nil
}

// scanHistory walks from historyIdx in step direction and returns the
// nearest entry recorded under mode, or ok=false when none remains.
func (m model) scanHistory(step int, mode inputMode) (HistoryEntry, int, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		if entry, err := m.history.GetEntry(i); err == nil && entry.Mode == mode {
			return entry, i, true
		}
	}

	return HistoryEntry{}, 0, false
}

// seekHistoryInMode is Shift+Up/Down: history navigation that never leaves
// the current prompt mode.
func (m model) seekHistoryInMode(step int) (model, tea.Cmd) {
	if entry, i, ok := m.scanHistory(step, m.mode); ok {
		m.historyIdx = i
		m.showEntry(entry)

		return m, nil
	}

	// Scrolling down past the last same-mode entry clears the line.
	if step > 0 && m.historyIdx < m.history.Len() {
		m.toFreshPrompt()
	}

	return m, nil
}

// seekCtrlHistory is Alt+Up/Down: it browses command history from either
// mode, remembering where the user was. Walking past the last command entry
// puts the original mode and line back.
func (m model) seekCtrlHistory(step int) (model, tea.Cmd) {
	if !m.altNav.active {
		m.altNav = altNavState{
			active:     true,
			mode:       m.mode,
			inputState: m.snapshot(),
		}

		if m.mode != modeCtrl {
			m, _ = m.switchToMode(modeCtrl)
		}
	}

	if entry, i, ok := m.scanHistory(step, modeCtrl); ok {
		m.historyIdx = i
		m.showEntry(entry)

		return m, nil
	}

	// No command entries remain in this direction.
	m.altNav.active = false

	if m.altNav.mode != m.mode {
		m, _ = m.switchToMode(m.altNav.mode)
	}

	m.restore(m.altNav.inputState)
	m.historyIdx = m.history.Len()
	m.refresh(false)

	return m, nil
}

func (m model) listBindings() string {
	var sb strings.Builder

	for _, name := range m.env.Names() {
		fmt.Fprintf(&sb, "  %s %s\n",
			name, hintStyle.Render(formatPreview(name, m.env)))
	}

	return sb.String()
}

func (m model) listOperators() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "  prefix:  %s\n",
		strings.Join(m.reg.PrefixOperators(), " "))
	sb.WriteString("  infix:\n")

	for _, op := range m.reg.InfixOperators() {
		class := "calc"
		if op.Setter {
			class = "setter"
		}

		fmt.Fprintf(&sb, "    %-10s %3d  %-5s  %s\n",
			op.Op, op.Prec, op.Assoc, class)
	}

	fmt.Fprintf(&sb, "  postfix: %s\n",
		strings.Join(m.reg.PostfixOperators(), " "))
	fmt.Fprintf(&sb, "  functions: %s\n",
		strings.Join(m.reg.Functions(), " "))

	return sb.String()
}

// toggleMode flips between the eval and command prompts.
func (m model) toggleMode() (model, tea.Cmd) {
	return m.switchToMode(m.mode.other())
}

// switchToMode activates mode, stashing the live line under the mode that
// owned it and restoring whatever was last typed under the target.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	m.saved[m.mode] = m.snapshot()

	m.mode = mode
	m.input.Prompt = promptFor(mode)
	m.restore(m.saved[mode])

	m.refresh(false)

	return m, nil
}
