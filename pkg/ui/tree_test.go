package ui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Dicklesworthstone/checktree/pkg/config"
	"github.com/Dicklesworthstone/checktree/pkg/model"
	"github.com/Dicklesworthstone/checktree/pkg/tree"
)

func newTreeTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

func n(id, label string, children ...*model.Node) *model.Node {
	return &model.Node{ID: model.NodeID(id), Label: label, Children: children}
}

// Engineering > Platform(Alice, Bob), Search Team(Carol); Sales > Alina; Legal
func testForest() model.Forest {
	return model.Forest{
		n("1", "Engineering",
			n("2", "Platform", n("3", "Alice"), n("4", "Bob")),
			n("5", "Search Team", n("6", "Carol")),
		),
		n("7", "Sales", n("8", "Alina")),
		n("9", "Legal"),
	}
}

func newTestModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	tr, err := tree.New(testForest())
	if err != nil {
		t.Fatalf("tree.New: %v", err)
	}
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	m := New(tr, newTreeTestTheme(), opts...)
	return send(m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func rowLabels(m Model) []string {
	var out []string
	for _, r := range m.Rows() {
		out = append(out, r.Label)
	}
	return out
}

func TestNew_RowsStartCollapsed(t *testing.T) {
	m := newTestModel(t)
	got := rowLabels(m)
	if strings.Join(got, ",") != "Engineering,Sales,Legal" {
		t.Errorf("expected root rows, got %v", got)
	}
	if m.SelectedKey() != "1_" {
		t.Errorf("expected cursor on first root, got %q", m.SelectedKey())
	}
}

func TestNavigation_ExpandAndCollapse(t *testing.T) {
	m := newTestModel(t)

	m = send(m, runes("l"))
	if len(m.Rows()) != 5 {
		t.Fatalf("expected 5 rows after expanding Engineering, got %v", rowLabels(m))
	}
	if m.SelectedKey() != "1_" {
		t.Errorf("expected cursor to stay on Engineering, got %q", m.SelectedKey())
	}

	m = send(m, runes("l"))
	if m.SelectedKey() != "2_1" {
		t.Errorf("expected cursor on Platform, got %q", m.SelectedKey())
	}

	// Platform is collapsed, so left jumps to the parent.
	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.SelectedKey() != "1_" {
		t.Errorf("expected cursor back on Engineering, got %q", m.SelectedKey())
	}

	m = send(m, runes("h"))
	if len(m.Rows()) != 3 {
		t.Errorf("expected Engineering collapsed, got %v", rowLabels(m))
	}
}

func TestNavigation_Bounds(t *testing.T) {
	m := newTestModel(t)

	m = send(m, runes("k"))
	if m.SelectedKey() != "1_" {
		t.Errorf("expected cursor to stay at top, got %q", m.SelectedKey())
	}
	m = send(m, runes("G"))
	if m.SelectedKey() != "9_" {
		t.Errorf("expected cursor at bottom, got %q", m.SelectedKey())
	}
	m = send(m, runes("j"))
	if m.SelectedKey() != "9_" {
		t.Errorf("expected cursor to stay at bottom, got %q", m.SelectedKey())
	}
	m = send(m, runes("g"))
	if m.SelectedKey() != "1_" {
		t.Errorf("expected cursor at top, got %q", m.SelectedKey())
	}
}

func TestToggleCheck_TriState(t *testing.T) {
	m := newTestModel(t)

	m = send(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	tr := m.Tree()
	for _, k := range []tree.Key{"1_", "2_1", "3_2", "4_2", "6_5"} {
		if !tr.IsChecked(k) {
			t.Errorf("expected %s checked", k)
		}
	}

	// Uncheck Platform.
	m = send(m, runes("l"), runes("j"), runes("x"))
	if tr.IsChecked("3_2") || tr.IsChecked("4_2") {
		t.Error("expected Platform's leaves unchecked")
	}
	if !tr.IsIndeterminate("1_") {
		t.Errorf("expected Engineering indeterminate, got %v", tr.Status("1_"))
	}
	if !strings.Contains(m.View(), "[-]") {
		t.Error("expected an indeterminate box in the view")
	}
}

func TestCheckAllAndNone(t *testing.T) {
	m := newTestModel(t)
	m = send(m, runes("a"))
	if got := len(m.Tree().CheckedInfo().IDs); got != 5 {
		t.Errorf("expected 5 checked leaves, got %d", got)
	}
	m = send(m, runes("n"))
	if got := len(m.Tree().CheckedInfo().IDs); got != 0 {
		t.Errorf("expected nothing checked, got %d", got)
	}
}

func TestDisplay_OnlyLeafCheckboxes(t *testing.T) {
	m := newTestModel(t, WithDisplay(config.Display{OnlyLeafCheckboxes: true}))

	m = send(m, runes("x"))
	if m.Tree().IsChecked("1_") {
		t.Error("expected parent toggle to be rejected")
	}
	if !strings.Contains(m.Status(), "cannot be checked") {
		t.Errorf("expected rejection status, got %q", m.Status())
	}

	// Legal is a leaf and keeps its box.
	m = send(m, runes("G"), runes("x"))
	if !m.Tree().IsChecked("9_") {
		t.Error("expected leaf toggle to succeed")
	}
}

func TestDisplay_NoCheckboxes(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "[ ]") {
		t.Error("expected checkboxes by default")
	}

	m = newTestModel(t, WithDisplay(config.Display{NoCheckboxes: true}))
	if strings.Contains(m.View(), "[ ]") {
		t.Error("expected no checkboxes")
	}
}

func TestDisplay_HideEmptyRoot(t *testing.T) {
	m := newTestModel(t, WithDisplay(config.Display{HideEmptyRoot: true}))
	if got := rowLabels(m); strings.Join(got, ",") != "Engineering,Sales" {
		t.Errorf("expected Legal hidden, got %v", got)
	}
}

func TestDisplay_ChildrenCount(t *testing.T) {
	m := newTestModel(t, WithDisplay(config.Display{ShowChildrenCount: true}))
	if !strings.Contains(m.View(), "(3)") {
		t.Errorf("expected leaf count after Engineering, got:\n%s", m.View())
	}
}

func TestDisplayPolicy(t *testing.T) {
	forest := model.Forest{
		{ID: "org", Label: "Org", NodeType: model.NodeTypeParent, Children: []*model.Node{
			{ID: "alice", Label: "Alice", NodeType: model.NodeTypeChildren},
		}},
		{ID: "empty", Label: "Empty", NodeType: model.NodeTypeParent},
	}
	tr, err := tree.New(forest)
	if err != nil {
		t.Fatalf("tree.New: %v", err)
	}
	p := NewDisplayPolicy(
		config.Display{DisableCheckboxesOfNoLeaf: true, HideCheckboxEmptyNode: true, BoldLabelDepth: 1},
		tr.Index(),
	)

	org, _ := tr.Node("org_")
	alice, _ := tr.Node("alice_org")
	empty, _ := tr.Node("empty_")

	if p.Disabled(org) || p.Disabled(alice) {
		t.Error("expected nodes with members to stay enabled")
	}
	if !p.Disabled(empty) {
		t.Error("expected group without members disabled")
	}
	if p.ShowCheckbox(empty) {
		t.Error("expected empty root to hide its checkbox")
	}
	if !p.Bold(org) || p.Bold(alice) {
		t.Error("expected only depth 1 labels bold")
	}
	if p.Checkable(empty) || !p.Checkable(alice) {
		t.Error("unexpected checkable result")
	}
}

func TestSearch_FiltersRows(t *testing.T) {
	m := newTestModel(t)

	m = send(m, runes("/"))
	if !m.Searching() {
		t.Fatal("expected search box focused")
	}
	m = send(m, runes("a"), runes("l"), runes("i"))
	if m.Query() != "ali" {
		t.Fatalf("expected query ali, got %q", m.Query())
	}
	want := "Engineering,Platform,Alice,Sales,Alina"
	if got := strings.Join(rowLabels(m), ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	// Enter leaves the filter in place.
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Searching() || m.Query() != "ali" {
		t.Errorf("expected filter kept after enter, searching=%v query=%q", m.Searching(), m.Query())
	}

	// Checking a filtered row checks the real node.
	m = send(m, runes("j"), runes("j"), runes("x"))
	if !m.Tree().IsChecked("3_2") {
		t.Error("expected Alice checked through the filter")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.Query() != "" || len(m.Rows()) != 3 {
		t.Errorf("expected filter cleared, got %v", rowLabels(m))
	}
}

func TestSearch_NoMatches(t *testing.T) {
	m := newTestModel(t)
	m = send(m, runes("/"), runes("z"), runes("z"))
	if len(m.Rows()) != 0 {
		t.Errorf("expected no rows, got %v", rowLabels(m))
	}
	if !strings.Contains(m.View(), "No nodes match") {
		t.Error("expected empty search message")
	}
}

func TestCopyChecked(t *testing.T) {
	var copied string
	m := newTestModel(t, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	m = send(m, runes("y"))
	if m.Status() != "nothing checked" {
		t.Errorf("expected nothing checked, got %q", m.Status())
	}

	m = send(m, runes("x"), runes("y"))
	if copied != "3\n4\n6" {
		t.Errorf("expected leaf ids copied, got %q", copied)
	}
	if m.Status() != "copied 3 ids" {
		t.Errorf("unexpected status %q", m.Status())
	}
}

func TestCopyChecked_Error(t *testing.T) {
	m := newTestModel(t, WithClipboard(func(string) error { return errors.New("no clipboard") }))
	m = send(m, runes("x"), runes("y"))
	if !strings.Contains(m.Status(), "no clipboard") {
		t.Errorf("expected error status, got %q", m.Status())
	}
}

func TestClick(t *testing.T) {
	m := newTestModel(t, WithDisplay(config.Display{ExpandOnClick: true, CheckOnClick: true}))
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	tr := m.Tree()
	if !tr.IsExpanded("1_") || !tr.IsChecked("1_") || !tr.IsSelected("1_") {
		t.Errorf("expected expand, check and select on click: expanded=%v checked=%v selected=%v",
			tr.IsExpanded("1_"), tr.IsChecked("1_"), tr.IsSelected("1_"))
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEscape})
	if _, ok := tr.Selected(); ok {
		t.Error("expected esc to deselect")
	}
}

func TestExpandToDepthKeys(t *testing.T) {
	m := newTestModel(t)

	m = send(m, runes("2"))
	if len(m.Rows()) != 9 {
		t.Errorf("expected every node drawn at depth 2, got %v", rowLabels(m))
	}
	m = send(m, runes("1"))
	if len(m.Rows()) != 6 {
		t.Errorf("expected roots and their children at depth 1, got %v", rowLabels(m))
	}
	m = send(m, runes("0"))
	if len(m.Rows()) != 3 {
		t.Errorf("expected collapse at depth 0, got %v", rowLabels(m))
	}
}

func TestView_Prefixes(t *testing.T) {
	m := newTestModel(t)
	m = send(m, runes("e"))
	view := m.View()
	for _, want := range []string{"├── ", "└── ", "│   ", "▾", "•"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestView_TruncatesLabels(t *testing.T) {
	tr, err := tree.New(model.Forest{n("1", strings.Repeat("x", 200))})
	if err != nil {
		t.Fatal(err)
	}
	m := send(New(tr, newTreeTestTheme()), tea.WindowSizeMsg{Width: 40, Height: 10})
	for _, line := range strings.Split(m.View(), "\n") {
		if strings.Contains(line, "xxxx") && lipgloss.Width(line) > 40 {
			t.Errorf("expected row within 40 cells, got %d", lipgloss.Width(line))
		}
	}
	if !strings.Contains(m.View(), "…") {
		t.Error("expected ellipsis")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestHelp_OpensAndCloses(t *testing.T) {
	m := newTestModel(t)
	m = send(m, runes("?"))
	if !m.ShowingHelp() {
		t.Fatal("expected help to open")
	}
	view := m.View()
	for _, want := range []string{"Quick Reference", "Navigation", "expand to depth", "copy checked ids"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}

	m = send(m, runes("j"))
	if m.ShowingHelp() {
		t.Error("expected any key to close help")
	}
	if m.SelectedKey() != "1_" {
		t.Errorf("expected closing key not to move the cursor, got %q", m.SelectedKey())
	}
}

func TestFooter_ShowsRawIDOfSelection(t *testing.T) {
	forest := model.Forest{
		n("org_1", "Org", n("team_a", "Team A")),
		{ID: "x", Value: "custom-key", Label: "Valued"},
	}
	for _, raw := range []bool{false, true} {
		tr, err := tree.New(forest, tree.WithRawKeys(raw), tree.WithForceExpand(tree.ExpandAllLevels))
		if err != nil {
			t.Fatalf("tree.New: %v", err)
		}
		m := New(tr, newTreeTestTheme(), WithLogger(log.New(io.Discard)))
		m = send(m, tea.WindowSizeMsg{Width: 120, Height: 24})

		m = send(m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
		if !strings.Contains(m.View(), "selected team_a") {
			t.Errorf("raw=%v: expected footer to name team_a, got:\n%s", raw, m.View())
		}
		m = send(m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
		if !strings.Contains(m.View(), "selected x") {
			t.Errorf("raw=%v: expected footer to name x, got:\n%s", raw, m.View())
		}
	}
}
