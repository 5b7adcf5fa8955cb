package commands

import "github.com/charmbracelet/lipgloss"

const (
	// ColorPrimary is used for titles and table headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is used for secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// AliasStyle marks modules exposed under a name other than their source's.
	AliasStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)
)

// renderTable lays rows out in left-aligned columns. The first row is the
// header. style, when set, picks a style per body cell.
func renderTable(rows [][]string, style func(row, col int) lipgloss.Style) string {
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var out []string
	for r, row := range rows {
		cells := make([]string, len(row))
		for c, cell := range row {
			s := lipgloss.NewStyle()
			switch {
			case r == 0:
				s = HeaderStyle
			case style != nil:
				s = style(r-1, c)
			}
			if c < len(row)-1 {
				s = s.Width(widths[c] + 2)
			}
			cells[c] = s.Render(cell)
		}
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...) + "\n"
}
