package survey

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	surveydto "kreosurvey/internal/modules/survey/dto"
	"kreosurvey/internal/ui/components"
	"kreosurvey/internal/ui/theme"
)

// ─── messages ────────────────────────────────────────────────────────────────

// SubmitMsg asks the app to store the answers of Screen and move on.
type SubmitMsg struct {
	Screen  string
	Answers map[string]any
}

type BackMsg struct{}

type JumpMsg struct {
	Section string
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders one survey screen as a form with a section sidebar.
type Model struct {
	screen  surveydto.ScreenOutput
	fields  []components.Field
	focus   int
	bar     progress.Model
	errText string
	width   int
	height  int
}

func New() Model {
	bar := progress.New(progress.WithGradient(string(theme.Accent), string(theme.Amber)), progress.WithoutPercentage())
	return Model{bar: bar}
}

// Load replaces the form with screen, prefilled from its stored answers.
func (m *Model) Load(screen surveydto.ScreenOutput) tea.Cmd {
	m.screen = screen
	m.errText = ""
	m.focus = 0
	m.fields = make([]components.Field, 0, len(screen.Questions))
	for _, q := range screen.Questions {
		m.fields = append(m.fields, components.NewField(q.Key, q.Prompt, q.Kind, q.Options, q.Required, screen.Answers[q.Key]))
	}
	if len(m.fields) == 0 {
		return nil
	}
	return m.fields[0].Focus()
}

func (m *Model) SetError(err error) {
	if err == nil {
		m.errText = ""
		return
	}
	m.errText = err.Error()
}

func (m Model) Screen() surveydto.ScreenOutput { return m.screen }

// Answers collects the non-blank field values.
func (m Model) Answers() map[string]any {
	out := map[string]any{}
	for _, f := range m.fields {
		if v := f.Value(); v != nil {
			out[f.Key] = v
		}
	}
	return out
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, msg.Width/2)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return m, m.moveFocus(1)
		case "shift+tab":
			return m, m.moveFocus(-1)
		case "enter":
			screen, answers := m.screen.Screen, m.Answers()
			return m, func() tea.Msg { return SubmitMsg{Screen: screen, Answers: answers} }
		case "esc", "ctrl+b":
			return m, func() tea.Msg { return BackMsg{} }
		case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6":
			idx := int(msg.String()[len(msg.String())-1] - '1')
			if idx < len(m.screen.Sections) {
				section := m.screen.Sections[idx].Name
				return m, func() tea.Msg { return JumpMsg{Section: section} }
			}
			return m, nil
		}
	}
	if len(m.fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	m.fields[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.fields[m.focus].Focus()
}

func (m Model) View() string {
	sidebarW := 26
	formW := m.width - sidebarW - 4
	if formW < 30 {
		formW = 30
	}

	var sb strings.Builder
	p := m.screen.Progress
	sb.WriteString(theme.Title.Render(m.screen.Title) + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("Step %d of %d", p.Step, p.Total)) + "  " + m.bar.ViewAs(p.Fraction) + "\n\n")
	for _, f := range m.fields {
		sb.WriteString(f.View() + "\n")
	}
	if m.errText != "" {
		sb.WriteString(theme.Error.Render(m.errText) + "\n")
	}
	sb.WriteString(theme.Muted.Render("tab: next question  space: pick  enter: continue  esc: back"))

	form := theme.PaneActive.Width(formW).Render(sb.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(sidebarW), form)
}

func (m Model) renderSidebar(width int) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Sections") + "\n\n")
	for i, s := range m.screen.Sections {
		mark := "○"
		if s.Answered {
			mark = theme.Success.Render("●")
		}
		label := fmt.Sprintf("%s %d. %s", mark, i+1, s.Label)
		if s.Name == m.screen.Section {
			label = theme.Hot.Render(label)
		}
		sb.WriteString(label + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render(fmt.Sprintf("%d%% answered", m.screen.CompletionPercentage)))
	sb.WriteString("\n" + theme.Muted.Render("alt+1..6: jump"))
	return theme.Pane.Width(width).Render(sb.String())
}
