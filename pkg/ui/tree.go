// Package ui is the terminal checkbox-tree browser.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"

	"github.com/Dicklesworthstone/checktree/pkg/config"
	"github.com/Dicklesworthstone/checktree/pkg/loader"
	"github.com/Dicklesworthstone/checktree/pkg/tree"
)

// Option configures a Model.
type Option func(*Model)

// WithDisplay sets the display policy.
func WithDisplay(d config.Display) Option {
	return func(m *Model) { m.display = d }
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// WithLogger sets the logger used for non-fatal problems.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithClipboard replaces the function used by the copy binding.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copy = fn }
}

// WithWatcher makes the browser apply reloads from w.
func WithWatcher(w *loader.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// Model is the bubbletea model of the tree browser. Check, expand and
// selection state live in the wrapped tree.Tree; Model only tracks the
// cursor, scrolling and the search box.
type Model struct {
	tree    *tree.Tree
	theme   Theme
	keys    KeyMap
	display config.Display
	logger  *log.Logger
	copy    func(string) error
	watcher *loader.Watcher

	idx    *tree.Index      // The tree's index, or the filtered one while searching
	rows   []*tree.FlatNode // Rows currently drawn, in order
	cursor int
	offset int // Index of the first drawn row
	width  int
	height int

	search    textinput.Model
	searching bool // Search box has focus
	query     string

	showHelp bool
	status   string
}

// New creates a browser over t.
func New(t *tree.Tree, theme Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Width = 30

	m := Model{
		tree:   t,
		theme:  theme,
		keys:   DefaultKeyMap(),
		logger: log.Default(),
		copy:   clipboard.WriteAll,
		search: ti,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.idx = t.Index()
	m.rebuildRows()
	if k, ok := t.Selected(); ok {
		m.SelectByKey(k)
	}
	return m
}

// Init starts listening for reloads when a watcher is attached.
func (m Model) Init() tea.Cmd {
	return WaitForReload(m.watcher)
}

// Update handles key presses, window resizes and reloads.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height-2)
		return m, nil
	case ReloadMsg:
		m.applyReload(msg)
		return m, WaitForReload(m.watcher)
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		m.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.MoveDown()
	case key.Matches(msg, m.keys.Top):
		m.JumpToTop()
	case key.Matches(msg, m.keys.Bottom):
		m.JumpToBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.PageDown()
	case key.Matches(msg, m.keys.Right):
		m.ExpandOrMoveToChild()
	case key.Matches(msg, m.keys.Left):
		m.CollapseOrJumpToParent()
	case key.Matches(msg, m.keys.Toggle):
		m.ToggleCheck()
	case key.Matches(msg, m.keys.Click):
		m.Click()
	case key.Matches(msg, m.keys.ExpandAll):
		m.tree.ExpandAll()
		m.rebuildRows()
	case key.Matches(msg, m.keys.CollapseAll):
		m.tree.CollapseAll()
		m.rebuildRows()
	case key.Matches(msg, m.keys.Depth):
		m.ExpandToDepth(tree.ExpandLevel(msg.String()[0] - '0'))
	case key.Matches(msg, m.keys.CheckAll):
		m.tree.CheckAll()
	case key.Matches(msg, m.keys.UncheckAll):
		m.tree.UncheckAll()
	case key.Matches(msg, m.keys.Deselect):
		if m.query != "" {
			m.clearSearch()
		} else {
			m.tree.Deselect()
		}
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Copy):
		m.CopyChecked()
	}
	return m, nil
}

// updateSearch handles keys while the search box has focus. The filter is
// applied on every keystroke.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.clearSearch()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter(m.search.Value())
	return m, cmd
}

func (m *Model) applyFilter(query string) {
	current := m.SelectedKey()
	m.query = query
	idx, err := m.tree.Filter(query)
	if err != nil {
		m.logger.Warn("filter failed", "query", query, "err", err)
		m.status = "filter failed: " + err.Error()
		idx = m.tree.Index()
		m.query = ""
	}
	m.idx = idx
	m.rebuildRows()
	if current != "" {
		m.SelectByKey(current)
	}
}

func (m *Model) clearSearch() {
	m.search.SetValue("")
	m.applyFilter("")
}

// SetSize updates the available dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = max(width-4, 10)
	m.clampOffset()
}

// Tree returns the wrapped tree.
func (m Model) Tree() *tree.Tree { return m.tree }

// Query returns the active search text.
func (m Model) Query() string { return m.query }

// Searching reports whether the search box has focus.
func (m Model) Searching() bool { return m.searching }

// ShowingHelp reports whether the key reference is open.
func (m Model) ShowingHelp() bool { return m.showHelp }

// Status returns the footer message of the last action.
func (m Model) Status() string { return m.status }

// Rows returns the rows currently drawn.
func (m Model) Rows() []*tree.FlatNode { return m.rows }

// CurrentNode returns the node under the cursor, or nil.
func (m Model) CurrentNode() *tree.FlatNode {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor]
	}
	return nil
}

// SelectedKey returns the key under the cursor, or "".
func (m Model) SelectedKey() tree.Key {
	if n := m.CurrentNode(); n != nil {
		return n.Key
	}
	return ""
}

// SelectByKey moves the cursor to key. Returns true if it is drawn.
func (m *Model) SelectByKey(k tree.Key) bool {
	for i, n := range m.rows {
		if n.Key == k {
			m.cursor = i
			m.clampOffset()
			return true
		}
	}
	return false
}

func (m *Model) policy() DisplayPolicy {
	return NewDisplayPolicy(m.display, m.idx)
}

// --- navigation ---

// MoveDown moves the cursor down.
func (m *Model) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
	}
	m.clampOffset()
}

// MoveUp moves the cursor up.
func (m *Model) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
	m.clampOffset()
}

// JumpToTop moves the cursor to the first row.
func (m *Model) JumpToTop() {
	m.cursor = 0
	m.clampOffset()
}

// JumpToBottom moves the cursor to the last row.
func (m *Model) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
	}
	m.clampOffset()
}

func (m *Model) pageSize() int {
	if m.height/2 < 1 {
		return 5
	}
	return m.height / 2
}

// PageDown moves the cursor down by half a page.
func (m *Model) PageDown() {
	m.cursor = min(m.cursor+m.pageSize(), max(len(m.rows)-1, 0))
	m.clampOffset()
}

// PageUp moves the cursor up by half a page.
func (m *Model) PageUp() {
	m.cursor = max(m.cursor-m.pageSize(), 0)
	m.clampOffset()
}

// JumpToParent moves the cursor to the parent row, if drawn.
func (m *Model) JumpToParent() {
	n := m.CurrentNode()
	if n == nil || n.ParentKey == "" {
		return
	}
	m.SelectByKey(n.ParentKey)
}

// ExpandOrMoveToChild expands a collapsed parent, or moves into an expanded
// one. Leaves are left alone.
func (m *Model) ExpandOrMoveToChild() {
	n := m.CurrentNode()
	if n == nil || !n.IsParent {
		return
	}
	if m.query == "" && !m.tree.IsExpanded(n.Key) {
		m.tree.Expand(n.Key)
		m.rebuildRows()
		return
	}
	if len(n.ChildKeys) > 0 {
		m.SelectByKey(n.ChildKeys[0])
	}
}

// CollapseOrJumpToParent collapses an expanded parent, otherwise moves to
// the parent row.
func (m *Model) CollapseOrJumpToParent() {
	n := m.CurrentNode()
	if n == nil {
		return
	}
	if m.query == "" && n.IsParent && m.tree.IsExpanded(n.Key) {
		m.tree.Collapse(n.Key)
		m.rebuildRows()
		return
	}
	m.JumpToParent()
}

// ExpandToDepth expands every node at or above level and collapses the rest.
func (m *Model) ExpandToDepth(level tree.ExpandLevel) {
	if err := m.tree.ExpandToDepth(level); err != nil {
		m.logger.Warn("expand to depth failed", "level", level, "err", err)
		m.status = err.Error()
		return
	}
	m.rebuildRows()
}

// --- actions ---

// ToggleCheck flips the check state of the current row. Rows whose checkbox
// is hidden or disabled are rejected with a status message.
func (m *Model) ToggleCheck() bool {
	n := m.CurrentNode()
	if n == nil {
		return false
	}
	if !m.policy().Checkable(n) {
		m.status = fmt.Sprintf("%s cannot be checked", n.Label)
		return false
	}
	return m.tree.ToggleCheck(n.Key)
}

// Click applies the enter binding to the current row: expand and check it
// as the display policy asks, then select it.
func (m *Model) Click() {
	n := m.CurrentNode()
	if n == nil {
		return
	}
	if m.display.ExpandOnClick && n.IsParent && m.query == "" {
		m.tree.ToggleExpand(n.Key)
	}
	if m.display.CheckOnClick {
		m.ToggleCheck()
	}
	if !m.tree.Select(n.Key) && !m.tree.IsSelected(n.Key) {
		m.status = fmt.Sprintf("%s is not selectable", n.Label)
	}
	m.rebuildRows()
}

// CopyChecked copies the raw ids of all checked nodes, one per line.
func (m *Model) CopyChecked() {
	info := m.tree.CheckedInfo()
	if len(info.IDs) == 0 {
		m.status = "nothing checked"
		return
	}
	lines := make([]string, len(info.IDs))
	for i, id := range info.IDs {
		lines[i] = id.String()
	}
	if err := m.copy(strings.Join(lines, "\n")); err != nil {
		m.logger.Warn("clipboard write failed", "err", err)
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("copied %d ids", len(info.IDs))
}

// --- rows ---

// rebuildRows recomputes the drawn rows. Outside a search these are the
// tree's visible nodes; during a search every matching node is drawn.
func (m *Model) rebuildRows() {
	if m.query == "" {
		m.idx = m.tree.Index()
	}
	p := m.policy()

	var source []*tree.FlatNode
	if m.query == "" {
		source = m.tree.Visible()
	} else {
		source = m.idx.Nodes()
	}
	rows := make([]*tree.FlatNode, 0, len(source))
	for _, n := range source {
		if !p.Hidden(n) {
			rows = append(rows, n)
		}
	}
	m.rows = rows

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampOffset()
}

func (m *Model) visibleCount() int {
	if m.height <= 0 {
		return 20
	}
	return m.height
}

// clampOffset scrolls so the cursor row is drawn.
func (m *Model) clampOffset() {
	n := m.visibleCount()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
	if m.offset > len(m.rows)-n {
		m.offset = len(m.rows) - n
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// visibleRange returns the [start, end) range of rows to draw.
func (m Model) visibleRange() (start, end int) {
	start = m.offset
	end = min(start+m.visibleCount(), len(m.rows))
	return start, end
}

// --- rendering ---

// View renders the tree, the search box and the footer.
func (m Model) View() string {
	if m.showHelp {
		modal := RenderHelp(m.keys, m.theme, m.width)
		if m.width <= 0 || m.height <= 0 {
			return modal
		}
		return lipgloss.Place(m.width, m.height+2, lipgloss.Center, lipgloss.Center, modal)
	}

	var sb strings.Builder
	if m.searching || m.query != "" {
		sb.WriteString(m.search.View())
		sb.WriteString("\n")
	}

	if len(m.rows) == 0 {
		sb.WriteString(m.renderEmptyState())
	} else {
		start, end := m.visibleRange()
		for i := start; i < end; i++ {
			line := m.renderNode(m.rows[i])
			if i == m.cursor {
				line = m.theme.Selected.Render(line)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m Model) renderEmptyState() string {
	muted := m.theme.Renderer.NewStyle().Foreground(m.theme.Muted)
	if m.query != "" {
		return muted.Render(fmt.Sprintf("No nodes match %q.", m.query)) + "\n"
	}
	return muted.Render("No nodes to display.") + "\n"
}

func (m Model) renderFooter() string {
	info := m.tree.CheckedInfo()
	parts := []string{fmt.Sprintf("%d checked", len(info.IDs))}
	if k, ok := m.tree.Selected(); ok {
		if n, ok := m.tree.Node(k); ok {
			parts = append(parts, "selected "+n.ID.String())
		}
	}
	if m.status != "" {
		parts = append(parts, m.status)
	} else {
		var help []string
		for _, b := range m.keys.ShortHelp() {
			h := b.Help()
			help = append(help, h.Key+" "+h.Desc)
		}
		parts = append(parts, strings.Join(help, " • "))
	}
	return m.theme.Status.Render(strings.Join(parts, " │ "))
}

// renderNode draws one row: branch prefix, expand indicator, checkbox, label
// and optional child count.
func (m Model) renderNode(n *tree.FlatNode) string {
	r := m.theme.Renderer
	p := m.policy()
	var sb strings.Builder

	prefix := m.buildTreePrefix(n)
	sb.WriteString(prefix)

	indicatorStyle := r.NewStyle().Foreground(m.theme.Secondary)
	sb.WriteString(indicatorStyle.Render(m.expandIndicator(n)))
	sb.WriteString(" ")

	if p.ShowCheckbox(n) {
		sb.WriteString(m.renderCheckbox(n, p.Disabled(n)))
		sb.WriteString(" ")
	}

	count := ""
	if m.display.ShowChildrenCount && n.IsParent {
		count = fmt.Sprintf(" (%d)", n.ChildrenCount)
	}

	label := n.Label
	if m.width > 0 {
		maxLabel := max(m.width-lipgloss.Width(sb.String())-len(count), 10)
		label = runewidth.Truncate(label, maxLabel, "…")
	}

	labelStyle := r.NewStyle()
	if p.Bold(n) {
		labelStyle = labelStyle.Bold(true)
	}
	if m.tree.IsSelected(n.Key) {
		labelStyle = labelStyle.Inherit(m.theme.Marked)
	}
	sb.WriteString(labelStyle.Render(label))

	if count != "" {
		sb.WriteString(r.NewStyle().Foreground(m.theme.Muted).Render(count))
	}
	return sb.String()
}

func (m Model) renderCheckbox(n *tree.FlatNode, disabled bool) string {
	r := m.theme.Renderer
	box, color := "[ ]", m.theme.Muted
	switch m.tree.Status(n.Key) {
	case tree.Checked:
		box, color = "[x]", m.theme.Checked
	case tree.Indeterminate:
		box, color = "[-]", m.theme.Partial
	}
	style := r.NewStyle().Foreground(color)
	if disabled {
		style = r.NewStyle().Foreground(m.theme.Muted).Faint(true)
	}
	return style.Render(box)
}

func (m Model) expandIndicator(n *tree.FlatNode) string {
	if !n.IsParent {
		return "•"
	}
	if m.query != "" || m.tree.IsExpanded(n.Key) {
		return "▾"
	}
	return "▸"
}

// buildTreePrefix builds the indentation and branch characters for a row.
func (m Model) buildTreePrefix(n *tree.FlatNode) string {
	if n.TreeDepth <= 1 {
		return ""
	}
	var parts []string
	// Ancestors from the root's child down to the parent, then n itself.
	chain := m.idx.Ancestors(n.Key)
	for i := len(chain) - 2; i >= 0; i-- {
		a, _ := m.idx.Get(chain[i])
		if m.isLastChild(a) {
			parts = append(parts, "    ")
		} else {
			parts = append(parts, "│   ")
		}
	}
	if m.isLastChild(n) {
		parts = append(parts, "└── ")
	} else {
		parts = append(parts, "├── ")
	}
	style := m.theme.Renderer.NewStyle().Foreground(m.theme.Muted)
	return style.Render(strings.Join(parts, ""))
}

func (m Model) isLastChild(n *tree.FlatNode) bool {
	if n == nil {
		return true
	}
	var siblings []tree.Key
	if n.ParentKey == "" {
		siblings = m.idx.Roots()
	} else if parent, ok := m.idx.Get(n.ParentKey); ok {
		siblings = parent.ChildKeys
	}
	return len(siblings) > 0 && siblings[len(siblings)-1] == n.Key
}
