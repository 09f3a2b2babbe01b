package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// helpSections names the groups returned by KeyMap.FullHelp, in order.
var helpSections = []string{"Navigation", "Expand", "Check", "Other"}

// checkStateLegend explains the checkbox glyphs.
const checkStateLegend = `[x] checked    [-] some descendants checked    [ ] unchecked
▾ expanded    ▸ collapsed    • leaf`

// RenderHelp renders the key reference modal. Content should fit on one
// screen without scrolling.
func RenderHelp(keys KeyMap, theme Theme, width int) string {
	r := theme.Renderer

	modalWidth := 64
	if width > 0 && modalWidth > width-4 {
		modalWidth = width - 4
	}
	if modalWidth < 20 {
		modalWidth = 20
	}

	titleStyle := r.NewStyle().Bold(true).Foreground(theme.Primary)
	sectionStyle := r.NewStyle().Bold(true).Foreground(theme.Secondary)
	keyStyle := r.NewStyle().Foreground(theme.Highlight)
	footerStyle := r.NewStyle().Foreground(theme.Muted).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Muted).Render(strings.Repeat("─", modalWidth-4)))
	b.WriteString("\n")

	for i, group := range keys.FullHelp() {
		name := "Keys"
		if i < len(helpSections) {
			name = helpSections[i]
		}
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, line := range helpLines(group) {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(line[0]))
			b.WriteString(line[1])
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Muted).Render(checkStateLegend))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("Press any key to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	return modalStyle.Render(b.String())
}

// helpLines pads each enabled binding's key column to a common width.
func helpLines(bindings []key.Binding) [][2]string {
	col := 0
	for _, kb := range bindings {
		if kb.Enabled() {
			col = max(col, runewidth.StringWidth(kb.Help().Key))
		}
	}
	var out [][2]string
	for _, kb := range bindings {
		if !kb.Enabled() {
			continue
		}
		h := kb.Help()
		pad := col - runewidth.StringWidth(h.Key) + 2
		out = append(out, [2]string{h.Key, strings.Repeat(" ", pad) + h.Desc})
	}
	return out
}
