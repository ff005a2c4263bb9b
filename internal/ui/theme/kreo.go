package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#111318")
	Mantle   = lipgloss.Color("#0b0c10")
	Surface0 = lipgloss.Color("#23262f")
	Surface1 = lipgloss.Color("#3a3f4b")
	Text     = lipgloss.Color("#e8eaf0")
	Subtext0 = lipgloss.Color("#9aa0ad")
	Accent   = lipgloss.Color("#ff5a1f")
	Sky      = lipgloss.Color("#38bdf8")
	Green    = lipgloss.Color("#4ade80")
	Red      = lipgloss.Color("#f87171")
	Amber    = lipgloss.Color("#fbbf24")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Accent)

	Title   = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(Subtext0)
	Hot     = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	Success = lipgloss.NewStyle().Foreground(Green)
	Warning = lipgloss.NewStyle().Foreground(Amber)
	Error   = lipgloss.NewStyle().Foreground(Red).Bold(true)
)
