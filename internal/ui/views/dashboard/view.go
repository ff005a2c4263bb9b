package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	responsesdto "kreosurvey/internal/modules/responses/dto"
	"kreosurvey/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ResponsesPort interface {
	List(ctx context.Context) ([]responsesdto.RecordOutput, error)
	Detail(ctx context.Context, id string, summary *responsesdto.RecordOutput) (responsesdto.DetailOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type RecordsLoadedMsg struct {
	Records []responsesdto.RecordOutput
	Err     error
}

type DetailLoadedMsg struct {
	Detail responsesdto.DetailOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type recordItem struct {
	record responsesdto.RecordOutput
}

func (i recordItem) Title() string { return i.record.ID }
func (i recordItem) Description() string {
	info := i.record.UserInfo
	return fmt.Sprintf("%s  %d%%  %s", statusLabel(info.CompletionStatus), info.CompletionPercentage, info.LastUpdated.Local().Format("02 Jan 15:04"))
}
func (i recordItem) FilterValue() string { return i.record.ID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    ResponsesPort
	list    list.Model
	detail  responsesdto.DetailOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	errText string
	width   int
	height  int
}

func New(port ResponsesPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Accent).BorderForeground(theme.Accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sky).BorderForeground(theme.Accent)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Responses"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case RecordsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errText = msg.Err.Error()
			return m, nil
		}
		m.errText = ""
		items := make([]list.Item, len(msg.Records))
		for i, r := range msg.Records {
			items[i] = recordItem{record: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Records) > 0 {
			m.list.Select(0)
			cmds = append(cmds, m.loadDetailCmd(msg.Records[0]))
		} else {
			m.detail = responsesdto.DetailOutput{}
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err != nil {
			m.errText = msg.Err.Error()
		} else {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
			m.preview.GotoTop()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(recordItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.record))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading responses…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listBody := m.list.View()
	if m.errText != "" {
		listBody += "\n" + theme.Error.Render(m.errText)
	}
	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(listBody)

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Reload fetches a fresh listing.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		records, err := m.port.List(context.Background())
		return RecordsLoadedMsg{Records: records, Err: err}
	}
}

// Selected returns the highlighted record summary, if any.
func (m Model) Selected() (responsesdto.RecordOutput, bool) {
	if item, ok := m.list.SelectedItem().(recordItem); ok {
		return item.record, true
	}
	return responsesdto.RecordOutput{}, false
}

// Remove drops id from the list after a confirmed delete.
func (m *Model) Remove(id string) tea.Cmd {
	for i, item := range m.list.Items() {
		if r, ok := item.(recordItem); ok && r.record.ID == id {
			m.list.RemoveItem(i)
			break
		}
	}
	if next, ok := m.Selected(); ok {
		return m.loadDetailCmd(next)
	}
	m.detail = responsesdto.DetailOutput{}
	m.preview.SetContent(m.renderDetail())
	return nil
}

func (m Model) Count() int { return len(m.list.Items()) }

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	r := m.detail.Record
	if r.ID == "" {
		return theme.Muted.Render("No response selected")
	}
	info := r.UserInfo
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.ID) + "\n")
	if m.detail.FromSummary {
		sb.WriteString(theme.Warning.Render("This response was removed; showing the last listed summary.") + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(theme.Muted.Render("status:   ") + statusLabel(info.CompletionStatus) + "\n")
	sb.WriteString(fmt.Sprintf("%s%d%%\n", theme.Muted.Render("complete: "), info.CompletionPercentage))
	sb.WriteString(theme.Muted.Render("section:  ") + info.CurrentSection + "\n")
	sb.WriteString(theme.Muted.Render("started:  ") + info.StartTime.Local().Format("02 Jan 2006 15:04") + "\n")
	sb.WriteString(theme.Muted.Render("updated:  ") + info.LastUpdated.Local().Format("02 Jan 2006 15:04") + "\n")
	if info.CompletionTime != nil {
		sb.WriteString(theme.Muted.Render("finished: ") + info.CompletionTime.Local().Format("02 Jan 2006 15:04") + "\n")
	}

	sections := make([]string, 0, len(r.Sections))
	for name := range r.Sections {
		sections = append(sections, name)
	}
	sort.Strings(sections)
	for _, name := range sections {
		sb.WriteString("\n" + theme.Hot.Render(name) + "\n")
		answers := r.Sections[name]
		keys := make([]string, 0, len(answers))
		for k := range answers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s %s\n", theme.Muted.Render(k+":"), formatAnswer(answers[k])))
		}
	}
	sb.WriteString("\n" + theme.Muted.Render("d: delete  e: export csv  r: refresh"))
	return sb.String()
}

func (m Model) loadDetailCmd(summary responsesdto.RecordOutput) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.Detail(context.Background(), summary.ID, &summary)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}

func statusLabel(status string) string {
	if status == "completed" {
		return theme.Success.Render("completed")
	}
	return theme.Warning.Render("in progress")
}

func formatAnswer(v any) string {
	switch val := v.(type) {
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	case nil:
		return "—"
	default:
		return fmt.Sprint(val)
	}
}
