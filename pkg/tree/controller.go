package tree

import (
	"sync"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// Controller keeps checked flags directly on a private clone of the flat
// index. Every node's flag equals its derived checked state: terminal nodes
// hold what was set, and every other flag is recomputed after each toggle,
// first for the toggled subtree and then for each ancestor in turn up to the
// root.
//
// Controllers are immutable; ToggleChecked and SetChecked clone the index
// and return a new Controller.
type Controller struct {
	idx *Index

	once     sync.Once
	statuses map[Key]Status
}

// NewController creates a controller over a clone of idx with nothing checked.
func NewController(idx *Index) *Controller {
	c := &Controller{idx: idx.Clone()}
	for _, n := range c.idx.nodes {
		n.Checked = false
	}
	return c
}

// Clone returns a controller with an independent copy of the flat nodes.
func (c *Controller) Clone() *Controller {
	return &Controller{idx: c.idx.Clone()}
}

// Model returns the check model of the underlying index.
func (c *Controller) Model() model.CheckModel {
	return c.idx.model
}

// Node returns the controller's flat node for key. The node is read-only.
func (c *Controller) Node(key Key) (*FlatNode, bool) {
	return c.idx.Get(key)
}

// Nodes returns every flat node in depth-first order.
func (c *Controller) Nodes() []*FlatNode {
	return c.idx.Nodes()
}

// KeyOf returns the first key whose raw id is id.
func (c *Controller) KeyOf(id model.NodeID) (Key, bool) {
	return c.idx.KeyOf(id)
}

// ChildrenCount returns the number of descendants of key.
func (c *Controller) ChildrenCount(key Key) int {
	return c.idx.Counts(key).Descendants
}

// LeafChildrenCount returns the number of leaf descendants of key, or 1 when
// key is itself a leaf.
func (c *Controller) LeafChildrenCount(key Key) int {
	n, ok := c.idx.Get(key)
	if !ok {
		return 0
	}
	if n.IsLeaf {
		return 1
	}
	return c.idx.Counts(key).Leaves
}

// CustomChildrenCount returns the number of nodes in key's subtree, key
// included, tagged with the custom model tag.
func (c *Controller) CustomChildrenCount(key Key) int {
	n, ok := c.idx.Get(key)
	if !ok || !c.idx.model.IsCustom() {
		return 0
	}
	count := c.idx.Counts(key).Tagged
	if n.Tagged(c.idx.model.Tag) {
		count++
	}
	return count
}

func flagged(n *FlatNode) bool {
	return n.Checked
}

// IsChecked returns the stored flag of key.
func (c *Controller) IsChecked(key Key) bool {
	n, ok := c.idx.Get(key)
	return ok && n.Checked
}

// Status returns the tri-state classification of key.
func (c *Controller) Status(key Key) Status {
	c.once.Do(func() {
		c.statuses = deriveStatuses(c.idx, flagged)
	})
	return c.statuses[key]
}

// IsIndeterminate reports whether key is partially checked.
func (c *Controller) IsIndeterminate(key Key) bool {
	return c.Status(key) == Indeterminate
}

// ToggleChecked sets key's subtree to checked and re-derives the toggled
// subtree and its ancestors. Unknown keys return c.
func (c *Controller) ToggleChecked(key Key, checked bool) *Controller {
	if !c.idx.Has(key) {
		return c
	}
	next := c.Clone()
	next.toggle(key, checked)
	return next
}

// SetChecked returns a controller where exactly the subtrees of ids (raw ids
// or keys) are checked.
func (c *Controller) SetChecked(ids ...model.NodeID) *Controller {
	next := c.Clone()
	for _, n := range next.idx.nodes {
		n.Checked = false
	}
	for _, id := range ids {
		for _, key := range next.idx.Lookup(string(id)) {
			next.toggle(key, true)
		}
	}
	return next
}

// toggle mutates c in place; callers own c.
func (c *Controller) toggle(key Key, checked bool) {
	sub := c.idx.Subtree(key)
	for _, k := range sub {
		n := c.idx.nodes[k]
		if IsTerminal(c.idx.model, n) {
			n.Checked = checked
		}
	}
	for i := len(sub) - 1; i >= 0; i-- {
		c.rederive(c.idx.nodes[sub[i]])
	}
	for _, ak := range c.idx.Ancestors(key) {
		c.rederive(c.idx.nodes[ak])
	}
}

// rederive recomputes the flag of a node whose state is derived.
func (c *Controller) rederive(n *FlatNode) {
	m := c.idx.model
	if m.IsCustom() {
		if c.idx.counts[n.Key].Tagged == 0 {
			if !n.Tagged(m.Tag) {
				n.Checked = false
			}
			return
		}
		n.Checked = fullyChecked(c.idx, n, flagged)
		return
	}
	if n.IsLeaf {
		return
	}
	n.Checked = fullyChecked(c.idx, n, flagged)
}

// CheckedNodeInfos returns every flagged terminal node with de-duplicated
// raw ids.
func (c *Controller) CheckedNodeInfos() CheckedInfo {
	return collectChecked(c.idx, c.IsChecked)
}
