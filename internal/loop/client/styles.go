package client

import "github.com/charmbracelet/lipgloss"

// Panel width bounds in terminal columns.
const (
	maxPanelWidth = 64
	minPanelWidth = 24
)

// styles are the lipgloss styles for one client's renderer. Each client
// has its own renderer so SSH sessions get their own colour profile.
type styles struct {
	panel    lipgloss.Style
	title    lipgloss.Style
	text     lipgloss.Style
	warning  lipgloss.Style
	alert    lipgloss.Style
	muted    lipgloss.Style
	option   lipgloss.Style
	selected lipgloss.Style
	focused  lipgloss.Style
	hud      lipgloss.Style
	notice   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(1, 3).
			Align(lipgloss.Center),
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		text:     r.NewStyle(),
		warning:  r.NewStyle().Foreground(lipgloss.Color("11")),
		alert:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		muted:    r.NewStyle().Faint(true),
		option:   r.NewStyle().Padding(0, 1),
		selected: r.NewStyle().Padding(0, 1).Bold(true).Reverse(true),
		focused:  r.NewStyle().Bold(true).Underline(true),
		hud:      r.NewStyle().Bold(true),
		notice:   r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// panelWidth fits a panel into a terminal termWidth columns wide.
func panelWidth(termWidth int) int {
	return max(minPanelWidth, min(maxPanelWidth, termWidth-4))
}
