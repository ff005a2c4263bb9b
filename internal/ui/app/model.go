package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	surveydto "kreosurvey/internal/modules/survey/dto"
	"kreosurvey/internal/ui/components"
	"kreosurvey/internal/ui/theme"
	surveyview "kreosurvey/internal/ui/views/survey"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type surveyPort interface {
	Start(ctx context.Context) (surveydto.StartOutput, error)
	Resume(ctx context.Context) (surveydto.ScreenOutput, error)
	StartOver(ctx context.Context) (surveydto.ScreenOutput, error)
	Submit(ctx context.Context, screen string, answers map[string]any) (surveydto.ScreenOutput, error)
	Back(ctx context.Context) (surveydto.ScreenOutput, error)
	JumpTo(ctx context.Context, section string) (surveydto.ScreenOutput, error)
	SaveStatus(ctx context.Context) surveydto.SaveStatusOutput
	Leave(ctx context.Context) error
}

// ─── state ───────────────────────────────────────────────────────────────────

type stage int

const (
	stageLoading stage = iota
	stageForm
	stageThanks
)

const (
	dialogResume = "resume"
	statusPoll   = 500 * time.Millisecond
)

// ─── async messages ──────────────────────────────────────────────────────────

type startedMsg struct {
	out surveydto.StartOutput
	err error
}

type screenMsg struct {
	out surveydto.ScreenOutput
	err error
}

type saveStatusMsg struct {
	status surveydto.SaveStatusOutput
}

type leftMsg struct{ err error }

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Next   key.Binding
	Pick   key.Binding
	Submit key.Binding
	Back   key.Binding
	Jump   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next question")),
		Pick:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pick option")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Jump:   key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1..6", "jump to section")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "save and quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Back, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Pick, k.Submit}, {k.Back, k.Jump, k.Quit}}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the respondent's root Bubble Tea model: resume prompt, survey
// form, thank-you screen and the save-status bar.
type Model struct {
	survey  surveyPort
	form    surveyview.Model
	dialog  components.Dialog
	keys    keyMap
	help    help.Model
	stage   stage
	save    surveydto.SaveStatusOutput
	status  string
	leaving bool
	width   int
	height  int
}

func NewModel(survey surveyPort) Model {
	return Model{
		survey: survey,
		form:   surveyview.New(),
		dialog: components.NewDialog(),
		keys:   defaultKeys(),
		help:   help.New(),
		stage:  stageLoading,
		status: "loading",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), pollStatus())
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		return m.leave()
	}

	if m.dialog.Visible() {
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.dialog.SetWidth(min(m.width-4, 72))
		m.form, _ = m.form.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 3})
		return m, nil

	case startedMsg:
		if msg.err != nil {
			m.status = "could not load saved answers: " + msg.err.Error()
			return m, nil
		}
		cmd := m.show(msg.out.Screen)
		if msg.out.ShowResumePrompt {
			m.dialog.Ask(dialogResume, "Welcome back",
				fmt.Sprintf("You stopped at %s. Pick up where you left off?", msg.out.Screen.Title),
				"Continue", "Start over")
		}
		return m, cmd

	case components.DialogConfirmMsg:
		if msg.ID == dialogResume {
			return m, m.screenCmd(m.survey.Resume)
		}

	case components.DialogCancelMsg:
		if msg.ID == dialogResume {
			return m, m.screenCmd(m.survey.StartOver)
		}

	case screenMsg:
		if msg.err != nil {
			m.form.SetError(msg.err)
			return m, nil
		}
		return m, m.show(msg.out)

	case surveyview.SubmitMsg:
		return m, m.screenCmd(func(ctx context.Context) (surveydto.ScreenOutput, error) {
			return m.survey.Submit(ctx, msg.Screen, msg.Answers)
		})

	case surveyview.BackMsg:
		return m, m.screenCmd(m.survey.Back)

	case surveyview.JumpMsg:
		section := msg.Section
		return m, m.screenCmd(func(ctx context.Context) (surveydto.ScreenOutput, error) {
			return m.survey.JumpTo(ctx, section)
		})

	case saveStatusMsg:
		m.save = msg.status
		return m, pollStatus()

	case statusTickMsg:
		return m, m.saveStatusCmd()

	case leftMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.stage == stageThanks {
			switch msg.String() {
			case "q", "enter", "esc":
				return m.leave()
			}
			return m, nil
		}
	}

	if m.stage == stageForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) show(screen surveydto.ScreenOutput) tea.Cmd {
	if screen.Completed {
		m.stage = stageThanks
		m.status = "survey complete"
		return nil
	}
	m.stage = stageForm
	m.status = screen.Title
	return m.form.Load(screen)
}

func (m Model) leave() (tea.Model, tea.Cmd) {
	if m.leaving {
		return m, nil
	}
	m.leaving = true
	m.status = "saving and closing…"
	return m, func() tea.Msg {
		return leftMsg{err: m.survey.Leave(context.Background())}
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.dialog.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.dialog.View())
	case m.stage == stageThanks:
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, renderThanks())
	case m.stage == stageLoading:
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, theme.Muted.Render("Loading your survey…"))
	default:
		content = m.form.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	bar := theme.Hot.Render("KREO") + theme.Muted.Render("  Ultimate Gamer Survey")
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if save := SaveLabel(m.save, time.Local); save != "" {
		left = save + "  " + theme.Muted.Render(left)
	}
	right := theme.Muted.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// SaveLabel renders the autosave indicator.
func SaveLabel(st surveydto.SaveStatusOutput, loc *time.Location) string {
	switch {
	case st.IsSaving:
		return theme.Warning.Render("● Saving…")
	case st.LastError != "":
		return theme.Error.Render("● Not saved yet: " + st.LastError)
	case !st.LastSaved.IsZero():
		return theme.Success.Render("● Saved " + st.LastSaved.In(loc).Format("15:04:05"))
	}
	return ""
}

func renderThanks() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Thank you, gamer!") + "\n\n")
	sb.WriteString("Your answers are in. They help us build better gear for you.\n\n")
	sb.WriteString(theme.Muted.Render("press q to exit"))
	return theme.PaneActive.Render(sb.String())
}

// ─── async commands ──────────────────────────────────────────────────────────

type statusTickMsg struct{}

func pollStatus() tea.Cmd {
	return tea.Tick(statusPoll, func(time.Time) tea.Msg { return statusTickMsg{} })
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.survey.Start(context.Background())
		return startedMsg{out: out, err: err}
	}
}

func (m Model) screenCmd(call func(ctx context.Context) (surveydto.ScreenOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := call(context.Background())
		return screenMsg{out: out, err: err}
	}
}

func (m Model) saveStatusCmd() tea.Cmd {
	return func() tea.Msg {
		return saveStatusMsg{status: m.survey.SaveStatus(context.Background())}
	}
}
