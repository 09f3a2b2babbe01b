package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the bindings of the tree browser.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Top         key.Binding
	Bottom      key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Toggle      key.Binding
	Click       key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Depth       key.Binding
	CheckAll    key.Binding
	UncheckAll  key.Binding
	Deselect    key.Binding
	Search      key.Binding
	Copy        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns vim-style bindings with arrow key alternatives.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Left:        key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "collapse")),
		Right:       key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "expand")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("ctrl+u", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("ctrl+d", "page down")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "check")),
		Click:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		ExpandAll:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
		Depth:       key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "expand to depth")),
		CheckAll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "check all")),
		UncheckAll:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "uncheck all")),
		Deselect:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "deselect")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy checked ids")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Click, k.Right, k.Left, k.Search, k.Help, k.Quit}
}

// FullHelp returns every binding, grouped for the help modal.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Right, k.Left, k.ExpandAll, k.CollapseAll, k.Depth},
		{k.Toggle, k.CheckAll, k.UncheckAll, k.Click, k.Deselect},
		{k.Search, k.Copy, k.Help, k.Quit},
	}
}
