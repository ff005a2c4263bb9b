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

	responsesdto "kreosurvey/internal/modules/responses/dto"
	"kreosurvey/internal/ui/components"
	"kreosurvey/internal/ui/theme"
	"kreosurvey/internal/ui/views/dashboard"
)

type responsesPort interface {
	dashboard.ResponsesPort
	Delete(ctx context.Context, id string) error
	ExportFile(ctx context.Context, path string) (responsesdto.ExportOutput, error)
}

const (
	dialogDelete = "delete"
	dialogNotice = "notice"
)

type deletedMsg struct {
	id  string
	err error
}

type exportedMsg struct {
	path string
	out  responsesdto.ExportOutput
	err  error
}

type adminKeyMap struct {
	Delete key.Binding
	Export key.Binding
	Reload key.Binding
	Filter key.Binding
	Quit   key.Binding
}

func defaultAdminKeys() adminKeyMap {
	return adminKeyMap{
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Export: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export csv")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k adminKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Delete, k.Export, k.Reload, k.Filter, k.Quit}
}

func (k adminKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// AdminModel is the response dashboard: record list, detail pane, delete
// confirmation and CSV export.
type AdminModel struct {
	port      responsesPort
	dashboard dashboard.Model
	dialog    components.Dialog
	keys      adminKeyMap
	help      help.Model
	pending   string
	status    string
	now       func() time.Time
	width     int
	height    int
}

func NewAdminModel(port responsesPort) AdminModel {
	return AdminModel{
		port:      port,
		dashboard: dashboard.New(port),
		dialog:    components.NewDialog(),
		keys:      defaultAdminKeys(),
		help:      help.New(),
		now:       time.Now,
	}
}

func (m AdminModel) Init() tea.Cmd {
	return m.dashboard.Init()
}

func (m AdminModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.dialog.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.dialog, cmd = m.dialog.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.dialog.SetWidth(min(m.width-4, 72))
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 2})
		return m, cmd

	case tea.KeyMsg:
		if m.dashboard.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reload):
			m.status = "reloading…"
			return m, m.dashboard.Reload()
		case key.Matches(msg, m.keys.Delete):
			record, ok := m.dashboard.Selected()
			if !ok {
				return m, nil
			}
			m.pending = record.ID
			m.dialog.Ask(dialogDelete, "Delete response",
				fmt.Sprintf("Delete response %s? This cannot be undone.", record.ID), "Delete", "Cancel")
			return m, nil
		case key.Matches(msg, m.keys.Export):
			path := ExportFileName(m.now())
			m.status = "exporting…"
			return m, m.exportCmd(path)
		}

	case components.DialogConfirmMsg:
		if msg.ID == dialogDelete && m.pending != "" {
			id := m.pending
			m.pending = ""
			return m, m.deleteCmd(id)
		}
		return m, nil

	case components.DialogCancelMsg:
		m.pending = ""
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.dialog.Alert(dialogNotice, "Delete failed", "Failed to delete response: "+msg.err.Error())
			return m, nil
		}
		m.status = "deleted " + msg.id
		return m, m.dashboard.Remove(msg.id)

	case exportedMsg:
		if msg.err != nil {
			m.dialog.Alert(dialogNotice, "Export failed", msg.err.Error())
			m.status = ""
			return m, nil
		}
		m.status = fmt.Sprintf("exported %d responses to %s", msg.out.Records, msg.path)
		return m, nil

	case dashboard.RecordsLoadedMsg:
		if msg.Err == nil {
			m.status = fmt.Sprintf("%d responses", len(msg.Records))
		}
	}

	var cmd tea.Cmd
	m.dashboard, cmd = m.dashboard.Update(msg)
	return m, cmd
}

func (m AdminModel) View() string {
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}
	if m.dialog.Visible() {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.dialog.View()),
			statusBar)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.dashboard.View(), statusBar)
}

func (m AdminModel) renderStatusBar() string {
	left := theme.Hot.Render("KREO") + " " + theme.Muted.Render(m.status)
	right := theme.Muted.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ExportFileName is the dated CSV name used by dashboard exports.
func ExportFileName(now time.Time) string {
	return "kreo-survey-responses-" + now.Format("2006-01-02") + ".csv"
}

func (m AdminModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: m.port.Delete(context.Background(), id)}
	}
}

func (m AdminModel) exportCmd(path string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.ExportFile(context.Background(), path)
		return exportedMsg{path: path, out: out, err: err}
	}
}
