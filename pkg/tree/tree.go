package tree

import (
	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// CheckFunc receives the de-duplicated raw ids and flat nodes of every fully
// checked terminal node after a check change.
type CheckFunc func(ids []model.NodeID, nodes []*FlatNode)

// ExpandFunc receives the raw id of the node that changed and the raw ids of
// every expanded node afterwards.
type ExpandFunc func(id model.NodeID, expanded []model.NodeID)

// SelectFunc receives the raw id and flat node of the newly selected node.
type SelectFunc func(id model.NodeID, node *FlatNode)

type settings struct {
	model           model.CheckModel
	rawKeys         bool
	maxDepth        int
	initialExpanded []model.NodeID
	initialChecked  []model.NodeID
	initialSelected model.NodeID
	forceExpand     ExpandLevel
	forced          bool
	flattener       *Flattener
	selectable      func(*FlatNode) bool

	onCheck    CheckFunc
	onExpand   ExpandFunc
	onCollapse ExpandFunc
	onSelect   SelectFunc
}

// Option configures a Tree.
type Option func(*settings)

// WithCheckModel selects the check model. The default is the leaf model.
func WithCheckModel(m model.CheckModel) Option {
	return func(s *settings) { s.model = m }
}

// WithRawKeys uses raw ids as keys; the caller guarantees they never repeat.
func WithRawKeys(raw bool) Option {
	return func(s *settings) { s.rawKeys = raw }
}

// WithMaxDepth bounds nesting while flattening.
func WithMaxDepth(depth int) Option {
	return func(s *settings) { s.maxDepth = depth }
}

// WithInitialExpanded expands the nodes with these raw ids (or keys).
func WithInitialExpanded(ids ...model.NodeID) Option {
	return func(s *settings) { s.initialExpanded = append(s.initialExpanded, ids...) }
}

// WithInitialChecked checks the subtrees of these raw ids (or keys).
func WithInitialChecked(ids ...model.NodeID) Option {
	return func(s *settings) { s.initialChecked = append(s.initialChecked, ids...) }
}

// WithInitialSelected selects the first node with this raw id (or key).
func WithInitialSelected(id model.NodeID) Option {
	return func(s *settings) { s.initialSelected = id }
}

// WithForceExpand applies an expansion level after the initial expansion,
// and again whenever the nodes are replaced.
func WithForceExpand(level ExpandLevel) Option {
	return func(s *settings) {
		s.forceExpand = level
		s.forced = true
	}
}

// WithFlattener shares a memoizing flattener between trees.
func WithFlattener(f *Flattener) Option {
	return func(s *settings) { s.flattener = f }
}

// WithSelectable restricts which nodes Select accepts.
func WithSelectable(fn func(*FlatNode) bool) Option {
	return func(s *settings) { s.selectable = fn }
}

// WithOnCheck registers the check callback.
func WithOnCheck(fn CheckFunc) Option {
	return func(s *settings) { s.onCheck = fn }
}

// WithOnExpand registers the expand callback.
func WithOnExpand(fn ExpandFunc) Option {
	return func(s *settings) { s.onExpand = fn }
}

// WithOnCollapse registers the collapse callback.
func WithOnCollapse(fn ExpandFunc) Option {
	return func(s *settings) { s.onCollapse = fn }
}

// WithOnSelect registers the select callback.
func WithOnSelect(fn SelectFunc) Option {
	return func(s *settings) { s.onSelect = fn }
}

// Tree ties a forest to its flat index and the check, expand and selection
// snapshots. Every mutator swaps in a new snapshot and fires its callback
// only when the state actually changed. Unknown keys are ignored.
//
// Tree is meant to be driven from a single event loop; the snapshots it hands
// out are immutable and may be shared.
type Tree struct {
	cfg   settings
	nodes model.Forest
	idx   *Index

	checked  *CheckState
	expanded *ExpandState
	selected Selection
}

// New flattens nodes and builds the initial state.
func New(nodes model.Forest, opts ...Option) (*Tree, error) {
	cfg := settings{model: model.LeafModel}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.flattener == nil {
		cfg.flattener = defaultFlattener
	}

	t := &Tree{cfg: cfg}
	idx, err := t.flatten(nodes)
	if err != nil {
		return nil, err
	}
	t.nodes = nodes
	t.idx = idx
	t.checked = NewCheckState(idx, cfg.initialChecked...)
	t.expanded = t.initialExpansion(idx)
	if cfg.initialSelected != "" {
		if keys := idx.Lookup(string(cfg.initialSelected)); len(keys) > 0 {
			t.selected = t.selected.Select(keys[0])
		}
	}
	return t, nil
}

func (t *Tree) options() Options {
	return Options{
		RawKeys:  t.cfg.rawKeys,
		Model:    t.cfg.model,
		MaxDepth: t.cfg.maxDepth,
	}
}

func (t *Tree) flatten(nodes model.Forest) (*Index, error) {
	return t.cfg.flattener.Flatten(nodes, t.options())
}

func (t *Tree) initialExpansion(idx *Index) *ExpandState {
	s := NewExpandState(idx, t.cfg.initialExpanded...)
	if t.cfg.forced {
		s = s.ExpandToDepth(idx, t.cfg.forceExpand)
	}
	return s
}

// SetNodes replaces the forest. The checked set is carried over by key (and
// by raw id for keys that disappeared), expansion is rebuilt from the
// initial settings and the selection survives if its key still exists. On
// error the tree is left unchanged.
func (t *Tree) SetNodes(nodes model.Forest) error {
	idx, err := t.flatten(nodes)
	if err != nil {
		return err
	}
	t.nodes = nodes
	t.idx = idx
	t.checked = t.checked.Rebase(idx)
	t.expanded = t.initialExpansion(idx)
	if key, ok := t.selected.Key(); ok && !idx.Has(key) {
		t.selected = t.selected.Deselect()
	}
	return nil
}

// Nodes returns the forest the tree was built from.
func (t *Tree) Nodes() model.Forest { return t.nodes }

// Index returns the current flat index.
func (t *Tree) Index() *Index { return t.idx }

// Model returns the active check model.
func (t *Tree) Model() model.CheckModel { return t.cfg.model }

// CheckState returns the current check snapshot.
func (t *Tree) CheckState() *CheckState { return t.checked }

// ExpandState returns the current expansion snapshot.
func (t *Tree) ExpandState() *ExpandState { return t.expanded }

// Node returns the flat node for key.
func (t *Tree) Node(key Key) (*FlatNode, bool) { return t.idx.Get(key) }

// --- check ---

func (t *Tree) setChecked(next *CheckState) bool {
	if next == t.checked {
		return false
	}
	t.checked = next
	if t.cfg.onCheck != nil {
		info := next.CheckedInfo()
		t.cfg.onCheck(info.IDs, info.Nodes)
	}
	return true
}

// Check checks key's subtree.
func (t *Tree) Check(key Key) bool { return t.setChecked(t.checked.Check(key)) }

// Uncheck unchecks key's subtree.
func (t *Tree) Uncheck(key Key) bool { return t.setChecked(t.checked.Uncheck(key)) }

// ToggleCheck unchecks a fully checked key and checks anything else.
func (t *Tree) ToggleCheck(key Key) bool { return t.setChecked(t.checked.Toggle(key)) }

// CheckAll checks every terminal node.
func (t *Tree) CheckAll() bool {
	if len(t.idx.Terminals()) == t.checked.Len() {
		return false
	}
	return t.setChecked(t.checked.CheckAll())
}

// UncheckAll clears the checked set.
func (t *Tree) UncheckAll() bool { return t.setChecked(t.checked.UncheckAll()) }

// Status returns the tri-state of key.
func (t *Tree) Status(key Key) Status { return t.checked.Status(key) }

// IsChecked reports whether key is fully checked.
func (t *Tree) IsChecked(key Key) bool { return t.checked.IsChecked(key) }

// IsIndeterminate reports whether key is partially checked.
func (t *Tree) IsIndeterminate(key Key) bool { return t.checked.IsIndeterminate(key) }

// CheckedKeys returns the checked set in depth-first order.
func (t *Tree) CheckedKeys() []Key { return t.checked.Keys() }

// CheckedInfo returns the fully checked terminal nodes.
func (t *Tree) CheckedInfo() CheckedInfo { return t.checked.CheckedInfo() }

// --- expand ---

func (t *Tree) expandedIDs() []model.NodeID {
	var ids []model.NodeID
	seen := make(map[model.NodeID]bool)
	for _, k := range t.expanded.Keys() {
		n, ok := t.idx.Get(k)
		if !ok || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		ids = append(ids, n.ID)
	}
	return ids
}

func (t *Tree) setExpanded(key Key, next *ExpandState, changed bool) bool {
	if !changed {
		return false
	}
	t.expanded = next
	n, _ := t.idx.Get(key)
	fn := t.cfg.onCollapse
	if next.IsExpanded(key) {
		fn = t.cfg.onExpand
	}
	if fn != nil && n != nil {
		fn(n.ID, t.expandedIDs())
	}
	return true
}

// IsExpanded reports whether key is expanded.
func (t *Tree) IsExpanded(key Key) bool { return t.expanded.IsExpanded(key) }

// Expand expands key.
func (t *Tree) Expand(key Key) bool {
	next, changed := t.expanded.Expand(key)
	return t.setExpanded(key, next, changed)
}

// Collapse collapses key.
func (t *Tree) Collapse(key Key) bool {
	next, changed := t.expanded.Collapse(key)
	return t.setExpanded(key, next, changed)
}

// ToggleExpand flips key.
func (t *Tree) ToggleExpand(key Key) bool {
	next, changed := t.expanded.Toggle(key)
	return t.setExpanded(key, next, changed)
}

// ExpandAll expands every node.
func (t *Tree) ExpandAll() { t.expanded = t.expanded.ExpandAll() }

// CollapseAll collapses every node.
func (t *Tree) CollapseAll() { t.expanded = t.expanded.CollapseAll() }

// ExpandToDepth re-flattens the current forest and expands exactly the nodes
// at or above level.
func (t *Tree) ExpandToDepth(level ExpandLevel) error {
	idx, err := t.flatten(t.nodes)
	if err != nil {
		return err
	}
	t.expanded = t.expanded.ExpandToDepth(idx, level)
	return nil
}

// ExpandedKeys returns the expanded keys in depth-first order.
func (t *Tree) ExpandedKeys() []Key { return t.expanded.Keys() }

// --- selection ---

// Select makes key the selected node. Keys rejected by the selectable
// predicate are ignored.
func (t *Tree) Select(key Key) bool {
	n, ok := t.idx.Get(key)
	if !ok || t.selected.IsSelected(key) {
		return false
	}
	if t.cfg.selectable != nil && !t.cfg.selectable(n) {
		return false
	}
	t.selected = t.selected.Select(key)
	if t.cfg.onSelect != nil {
		t.cfg.onSelect(n.ID, n)
	}
	return true
}

// Deselect clears the selection.
func (t *Tree) Deselect() bool {
	if _, ok := t.selected.Key(); !ok {
		return false
	}
	t.selected = t.selected.Deselect()
	return true
}

// Selected returns the selected key.
func (t *Tree) Selected() (Key, bool) { return t.selected.Key() }

// IsSelected reports whether key is selected.
func (t *Tree) IsSelected(key Key) bool { return t.selected.IsSelected(key) }

// --- reading ---

// Row is everything a renderer needs about one node.
type Row struct {
	Node     *FlatNode
	Status   Status
	Expanded bool
	Selected bool
}

// Row returns the render state of key.
func (t *Tree) Row(key Key) (Row, bool) {
	n, ok := t.idx.Get(key)
	if !ok {
		return Row{}, false
	}
	return Row{
		Node:     n,
		Status:   t.checked.Status(key),
		Expanded: t.expanded.IsExpanded(key),
		Selected: t.selected.IsSelected(key),
	}, true
}

// Visible returns, in depth-first order, every node whose ancestors are all
// expanded.
func (t *Tree) Visible() []*FlatNode {
	var out []*FlatNode
	var appendVisible func(keys []Key)
	appendVisible = func(keys []Key) {
		for _, k := range keys {
			n := t.idx.nodes[k]
			out = append(out, n)
			if n.IsParent && t.expanded.IsExpanded(k) {
				appendVisible(n.ChildKeys)
			}
		}
	}
	appendVisible(t.idx.roots)
	return out
}

// Search returns the pruned forest for text. See Search.
func (t *Tree) Search(text string) model.Forest {
	return Search(t.nodes, text)
}

// Filter flattens the search result for text. Keys in the returned index are
// the same keys the tree uses, so check and expand state can be read from
// the tree for every filtered node. Empty text returns the tree's own index.
func (t *Tree) Filter(text string) (*Index, error) {
	if text == "" {
		return t.idx, nil
	}
	return flatten(Search(t.nodes, text), t.options())
}
