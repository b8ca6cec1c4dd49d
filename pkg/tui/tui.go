// Package tui is the terminal editor of the sandbox.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nsxbet/sql-sandbox/pkg/render"
	"github.com/nsxbet/sql-sandbox/pkg/sandbox"
)

type panel int

const (
	roomsPanel panel = iota
	schemaPanel
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const helpText = "ctrl+r ejecutar • ctrl+l restablecer • ctrl+s habitaciones/esquema • esc salir"

type execMsg struct {
	outcome *sandbox.Outcome
	err     error
}

type resetMsg struct {
	err error
}

type viewsMsg struct {
	rooms  string
	schema string
}

// Model is the bubbletea model of the editor.
type Model struct {
	session *sandbox.Session
	editor  textarea.Model

	result string
	rooms  string
	schema string
	panel  panel
	busy   bool
	width  int
}

// New returns the editor model for session.
func New(session *sandbox.Session) *Model {
	editor := textarea.New()
	editor.Placeholder = "SELECT * FROM habitaciones;"
	editor.ShowLineNumbers = true
	editor.SetWidth(80)
	editor.SetHeight(8)
	editor.Focus()

	return &Model{
		session: session,
		editor:  editor,
		width:   80,
	}
}

// Run starts the editor on the terminal and blocks until the user quits.
func Run(ctx context.Context, session *sandbox.Session) error {
	_, err := tea.NewProgram(New(session), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.refreshViews())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.exec(m.editor.Value())
		case "ctrl+l":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.reset()
		case "ctrl+s":
			if m.panel == roomsPanel {
				m.panel = schemaPanel
			} else {
				m.panel = roomsPanel
			}
			return m, nil
		}
	case execMsg:
		m.busy = false
		m.result = formatOutcome(msg.outcome, msg.err)
		return m, m.refreshViews()
	case resetMsg:
		m.busy = false
		if msg.err != nil {
			m.result = errorStyle.Render(render.ErrorPrefix + msg.err.Error())
		} else {
			m.result = noticeStyle.Render(render.ResetMessage)
			m.editor.Reset()
		}
		return m, m.refreshViews()
	case viewsMsg:
		m.rooms = msg.rooms
		m.schema = msg.schema
		return m, nil
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.editor.SetWidth(msg.Width - 2)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sandbox SQL"))
	b.WriteString("\n")
	b.WriteString(m.editor.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	b.WriteString("\n\n")
	if m.result != "" {
		b.WriteString(m.result)
		b.WriteString("\n")
	}

	content, title := m.rooms, "Estado de sensores por habitación"
	if m.panel == schemaPanel {
		content, title = m.schema, "Tablas y atributos de la base de datos"
	}
	box := boxStyle
	if m.width > 4 {
		box = box.Width(m.width - 4)
	}
	b.WriteString(box.Render(titleStyle.Render(title) + "\n" + strings.TrimRight(content, "\n")))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) exec(script string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.session.Exec(context.Background(), script)
		return execMsg{outcome: outcome, err: err}
	}
}

func (m *Model) reset() tea.Cmd {
	return func() tea.Msg {
		return resetMsg{err: m.session.Reset(context.Background())}
	}
}

func (m *Model) refreshViews() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		rooms, roomsErr := m.session.Rooms(ctx)
		schema, schemaErr := m.session.Schema(ctx)
		return viewsMsg{
			rooms:  render.RoomsText(rooms, roomsErr),
			schema: render.SchemaText(schema, schemaErr),
		}
	}
}

func formatOutcome(outcome *sandbox.Outcome, err error) string {
	if err != nil {
		return errorStyle.Render(render.ErrorPrefix + err.Error())
	}
	if failed := outcome.Failed; failed != nil {
		text := errorStyle.Render(render.ErrorPrefix + failed.Err)
		if failed.Hint.Matched {
			text += "\n" + hintStyle.Render(render.StripMarkup(failed.Hint.Text))
		}
		return text
	}
	return strings.TrimRight(render.ResultText(outcome), "\n")
}
