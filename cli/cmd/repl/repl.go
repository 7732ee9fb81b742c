package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"

	defaultWidth = 80
)

// inputMode selects how a submitted line is handled.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

//nolint:gochecknoglobals
var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func (m inputMode) prompt() string {
	if m == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(evalPrompt)
}

type editDoneMsg struct{ count int }

type editCancelledMsg struct{}

type editDeclinedMsg struct{}

type editErrorMsg struct{ err error }

// draft is the unsubmitted input of a mode.
type draft struct {
	text   string
	cursor int
}

// model is the Bubble Tea model of an interactive session.
type model struct {
	ctx     context.Context
	session *session
	logger  log.Logger
	input   textinput.Model
	history *History
	histIdx int // history position; history.Len() when not browsing
	mode    inputMode
	drafts  [2]draft // per-mode input saved across mode switches
	width   int

	comp      completion
	selected  int // candidate index while tab-cycling, or -1
	tabActive bool
	preTab    draft // input before tab-cycling began

	altNav    bool // browsing command history with Alt-Up/Alt-Down
	preAltNav draft
	altMode   inputMode

	quitting bool
}

// Run starts an interactive session evaluating input against rt in ec.
// Submitted lines are persisted at historyPath unless it is empty.
func Run(
	ctx context.Context,
	rt *lang.Runtime,
	ec *lang.ExecutionContext,
	historyPath string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history unavailable",
			slog.String("path", historyPath),
			slog.String("error", err.Error()),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", historyPath),
		slog.Int("entries", history.Len()),
	)

	m := newModel(ctx, newSession(rt, ec, logger), history, logger)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return context.Cause(ctx)
	}

	return err
}

func newModel(ctx context.Context, s *session, history *History, logger log.Logger) model {
	ti := textinput.New()
	ti.Prompt = modeEval.prompt()
	ti.CharLimit = 4096
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctx:      ctx,
		session:  s,
		logger:   logger,
		input:    ti,
		history:  history,
		histIdx:  history.Len(),
		width:    defaultWidth,
		selected: -1,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		return m, tea.Println(resultStyle.Render(
			fmt.Sprintf("✔ %s updated", itemCount(msg.count, "variable"))))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	b.WriteByte('\n')

	return b.String()
}

// statusLine renders the line below the input: the history position, a
// usage hint, a signature, or the completion candidates.
func (m model) statusLine() string {
	input := m.input.Value()

	if m.histIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.histIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type an expression, or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (Esc to return)")
	}

	if m.mode == modeEval && !m.tabActive {
		if call := detectFunctionCall(input, m.input.Position()); call.inCall {
			if params, ok := signatureOf(call.name); ok {
				return renderSignatureHint(call.name, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.comp.matches, m.selected, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx, "repl key", slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.tabActive, m.altNav = false, false
		m.histIdx = m.history.Len()
		m.setInput(draft{})

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNav = false

		if m.tabActive && len(m.comp.matches) > 0 {
			m.tabActive = false
			m.refresh(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp, tea.KeyDown:
		dir := 1
		if msg.Type == tea.KeyUp {
			dir = -1
		}

		if msg.Alt {
			return m.browseCommands(dir), nil
		}

		return m.browse(dir, false), nil

	case tea.KeyShiftUp:
		return m.browse(-1, true), nil

	case tea.KeyShiftDown:
		return m.browse(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.setInput(m.preTab)

			return m, nil
		}

		m.altNav = false

		return m.switchMode(1 - m.mode), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.histIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refresh(true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive, m.altNav = false, false
	m.histIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(false)

	return m, cmd
}

// setInput replaces the input and recomputes completions.
func (m *model) setInput(d draft) {
	m.input.SetValue(d.text)
	m.input.SetCursor(d.cursor)
	m.refresh(false)
}

// refresh recomputes completions. With confirm set, a word that already
// equals its only candidate is accepted.
func (m *model) refresh(confirm bool) {
	m.comp = complete(m.session, m.input.Value(), m.input.Position(), m.mode == modeCtrl)

	if !m.tabActive {
		m.selected = -1
	}

	if confirm && len(m.comp.matches) == 1 &&
		m.input.Value()[m.comp.start:m.comp.end] == m.comp.matches[0].Str {
		m.comp = completion{}
	}
}

// replaceWord substitutes text for the word being completed.
func (m *model) replaceWord(text string) {
	value := m.input.Value()

	m.input.SetValue(value[:m.comp.start] + text + value[m.comp.end:])
	m.input.SetCursor(m.comp.start + len(text))
	m.comp.end = m.comp.start + len(text)
}

// cycle moves the tab selection by dir. A single candidate is accepted
// immediately.
func (m model) cycle(dir int) model {
	n := len(m.comp.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m.replaceWord(m.comp.matches[0].Str)
		m.tabActive, m.selected = false, -1
		m.comp.matches = nil

		return m

	case !m.tabActive:
		m.tabActive = true
		m.preTab = draft{m.input.Value(), m.input.Position()}
		m.selected = 0

		if dir < 0 {
			m.selected = n - 1
		}

	default:
		m.selected = (m.selected + dir + n) % n
	}

	m.replaceWord(m.comp.matches[m.selected].Str)

	return m
}

// browse moves through history by dir. With sameMode set only entries of
// the current mode are visited; otherwise the mode follows the entry.
func (m model) browse(dir int, sameMode bool) model {
	var keep func(HistoryEntry) bool
	if sameMode {
		mode := m.mode
		keep = func(e HistoryEntry) bool { return e.Mode == mode }
	}

	i := m.history.Seek(m.histIdx, dir, keep)
	if i < 0 {
		if dir > 0 && m.histIdx < m.history.Len() {
			m.histIdx = m.history.Len()
			m.setInput(draft{})
		}

		return m
	}

	return m.recall(i)
}

// browseCommands moves through command history by dir, switching to command
// mode on the first step and restoring the original input past either end.
func (m model) browseCommands(dir int) model {
	if !m.altNav {
		m.altNav = true
		m.altMode = m.mode
		m.preAltNav = draft{m.input.Value(), m.input.Position()}
		m = m.switchMode(modeCtrl)
	}

	i := m.history.Seek(m.histIdx, dir, func(e HistoryEntry) bool { return e.Mode == modeCtrl })
	if i >= 0 {
		return m.recall(i)
	}

	m.altNav = false
	m = m.switchMode(m.altMode)
	m.histIdx = m.history.Len()
	m.setInput(m.preAltNav)

	return m
}

func (m model) recall(i int) model {
	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	m.histIdx = i

	if entry.Mode != m.mode {
		m = m.switchMode(entry.Mode)
	}

	m.setInput(draft{entry.Line, len(entry.Line)})

	return m
}

// switchMode saves the current input as the draft of the current mode and
// restores the draft of mode.
func (m model) switchMode(mode inputMode) model {
	m.drafts[m.mode] = draft{m.input.Value(), m.input.Position()}
	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.setInput(m.drafts[mode])

	return m
}

func (m model) submit() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	mode := m.mode
	if strings.HasPrefix(line, ":") {
		mode = modeCtrl
	}

	if err := m.history.Add(line, m.mode); err != nil {
		m.logger.WarnContext(m.ctx, "history not saved", slog.String("error", err.Error()))
	}

	m.histIdx = m.history.Len()
	m.drafts = [2]draft{}
	m.setInput(draft{})

	echo := tea.Println(m.mode.prompt() + inputStyle.Render(line))

	if mode == modeCtrl {
		return m.execute(line, echo)
	}

	m.logger.TraceContext(m.ctx, "repl eval", slog.String("input", line))

	out, err := m.session.eval(m.ctx, line)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

func (m model) execute(line string, echo tea.Cmd) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx, "repl command", slog.String("input", line))

	r, err := m.session.command(m.ctx, line)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(err.Error())))
	}

	switch r.action {
	case actionQuit:
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case actionClear:
		return m, tea.ClearScreen

	case actionEdit:
		return m, tea.Sequence(echo, m.edit())
	}

	return m, tea.Sequence(echo, tea.Println(r.text))
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{ctx: m.ctx, session: m.session}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.cancelled:
			return editCancelledMsg{}
		}

		return editDoneMsg{count: cmd.count}
	})
}
