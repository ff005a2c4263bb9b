package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kreosurvey/internal/ui/theme"
)

// DialogConfirmMsg is emitted when the user accepts dialog ID.
type DialogConfirmMsg struct{ ID string }

// DialogCancelMsg is emitted when the user declines or dismisses dialog ID.
type DialogCancelMsg struct{ ID string }

var dialogStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(theme.Accent).
	Background(theme.Mantle).
	Foreground(theme.Text).
	Padding(1, 2)

// Dialog is a modal overlay. With no cancel label it acts as an alert that
// any confirm key dismisses.
type Dialog struct {
	id      string
	title   string
	body    string
	confirm string
	cancel  string
	visible bool
	width   int
}

func NewDialog() Dialog {
	return Dialog{}
}

func (d Dialog) Visible() bool { return d.visible }

func (d Dialog) ID() string { return d.id }

// Ask shows a yes/no question.
func (d *Dialog) Ask(id, title, body, confirm, cancel string) {
	*d = Dialog{id: id, title: title, body: body, confirm: confirm, cancel: cancel, visible: true, width: d.width}
}

// Alert shows a message that must be acknowledged.
func (d *Dialog) Alert(id, title, body string) {
	d.Ask(id, title, body, "OK", "")
}

func (d *Dialog) SetWidth(w int) { d.width = w }

func (d Dialog) Update(msg tea.Msg) (Dialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	id := d.id
	switch strings.ToLower(key.String()) {
	case "enter", "y":
		d.visible = false
		return d, func() tea.Msg { return DialogConfirmMsg{ID: id} }
	case "esc", "n":
		d.visible = false
		if d.cancel == "" {
			return d, func() tea.Msg { return DialogConfirmMsg{ID: id} }
		}
		return d, func() tea.Msg { return DialogCancelMsg{ID: id} }
	}
	return d, nil
}

func (d Dialog) View() string {
	if !d.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.title) + "\n\n")
	sb.WriteString(d.body + "\n\n")
	if d.cancel == "" {
		sb.WriteString(theme.Muted.Render("enter: " + d.confirm))
	} else {
		sb.WriteString(theme.Muted.Render("y/enter: " + d.confirm + "   n/esc: " + d.cancel))
	}
	w := d.width
	if w < 20 {
		w = 64
	}
	return dialogStyle.Width(w - 2).Render(sb.String())
}
