package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dialect-translator/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type translationDoneMsg struct {
	call *session.Call
}

// Model is the terminal translator view. All state lives in the controller;
// the textarea only mirrors the input text.
type Model struct {
	ctx   context.Context
	ctrl  *session.Controller
	input textarea.Model

	width  int
	height int
}

// New creates the view over ctrl. ctx is used for translation calls.
func New(ctx context.Context, ctrl *session.Controller) Model {
	ta := textarea.New()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(8)
	ta.Focus()

	m := Model{
		ctx:   ctx,
		ctrl:  ctrl,
		input: ta,
		width: 84,
	}
	m.sync()
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 4
		if w < 20 {
			w = 20
		}
		h := (msg.Height - 12) / 2
		if h < 3 {
			h = 3
		}
		m.input.SetWidth(w)
		m.input.SetHeight(h)
		return m, nil

	case translationDoneMsg:
		m.ctrl.Resolve(msg.call)
		m.sync()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		return m, tea.Quit

	case "ctrl+t":
		m.ctrl.Edit(m.input.Value())
		call := m.ctrl.Begin(m.ctx)
		m.sync()
		if call == nil {
			return m, nil
		}
		return m, waitFor(call)

	case "ctrl+s":
		m.ctrl.Edit(m.input.Value())
		if m.ctrl.Swap() {
			m.sync()
		}
		return m, nil

	case "ctrl+l":
		if m.ctrl.Clear() {
			m.sync()
		}
		return m, nil
	}

	if m.ctrl.State().Loading {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.Edit(m.input.Value())
	return m, cmd
}

func waitFor(call *session.Call) tea.Cmd {
	return func() tea.Msg {
		<-call.Done()
		return translationDoneMsg{call: call}
	}
}

// sync copies the controller state into the textarea
func (m *Model) sync() {
	s := m.ctrl.State()
	if m.input.Value() != s.Input {
		m.input.SetValue(s.Input)
	}
	m.input.Placeholder = "Enter text in " + s.Source.String() + "..."
	if s.Loading {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
}

func (m Model) View() string {
	snap := m.ctrl.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Kurdish Dialect Translator"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(snap.Source.Label()))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(snap.Target.Label()))
	b.WriteString("\n")

	var out string
	switch {
	case snap.Loading:
		out = loadingStyle.Render("Translating...")
	case snap.Output == "":
		out = placeholderStyle.Render("Translation in " + snap.Target.String() + " will appear here...")
	default:
		out = snap.Output
	}
	b.WriteString(boxStyle.Width(m.width - 4).Render(out))
	b.WriteString("\n")

	if snap.Controls.ShowError {
		b.WriteString(errorStyle.Render(snap.Error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help(snap.Controls)))
	return b.String()
}

func help(c session.Controls) string {
	var parts []string
	if c.TranslateEnabled {
		parts = append(parts, "ctrl+t translate")
	}
	if c.SwapEnabled {
		parts = append(parts, "ctrl+s swap")
	}
	if c.ClearEnabled {
		parts = append(parts, "ctrl+l clear text")
	}
	parts = append(parts, "esc quit")
	return strings.Join(parts, " • ")
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, ctrl *session.Controller) error {
	p := tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
