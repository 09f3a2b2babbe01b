package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and styles used by the tree browser.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Checked   lipgloss.AdaptiveColor
	Partial   lipgloss.AdaptiveColor

	Selected lipgloss.Style // Cursor row
	Marked   lipgloss.Style // Selected node label
	Status   lipgloss.Style // Footer line
}

// DefaultTheme builds the default theme for r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#B58900", Dark: "#F1FA8C"},
		Muted:     lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6272A4"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#8BE9FD"},
		Checked:   lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#50FA7B"},
		Partial:   lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFB86C"},
	}
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E4E4F7", Dark: "#44475A"}).
		Bold(true)
	t.Marked = r.NewStyle().Foreground(t.Highlight).Underline(true)
	t.Status = r.NewStyle().Foreground(t.Muted)
	return t
}
