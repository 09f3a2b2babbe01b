package ui

import (
	"github.com/Dicklesworthstone/checktree/pkg/config"
	"github.com/Dicklesworthstone/checktree/pkg/model"
	"github.com/Dicklesworthstone/checktree/pkg/tree"
)

// DisplayPolicy evaluates the config display block against flat nodes. None
// of its answers change check state; they only decide what is drawn and
// which checkboxes accept input.
type DisplayPolicy struct {
	config.Display
	idx *tree.Index
}

// NewDisplayPolicy binds d to idx, which answers subtree questions.
func NewDisplayPolicy(d config.Display, idx *tree.Index) DisplayPolicy {
	return DisplayPolicy{Display: d, idx: idx}
}

// Hidden reports whether a row is left out entirely. Only roots without
// children can be hidden.
func (p DisplayPolicy) Hidden(n *tree.FlatNode) bool {
	return p.HideEmptyRoot && n.ParentKey == "" && len(n.ChildKeys) == 0
}

// ShowCheckbox reports whether n gets a checkbox.
func (p DisplayPolicy) ShowCheckbox(n *tree.FlatNode) bool {
	switch {
	case p.NoCheckboxes, !n.ShowCheckbox:
		return false
	case p.OnlyLeafCheckboxes && !n.IsLeaf:
		return false
	case p.HideCheckboxEmptyNode && n.TreeDepth == 1 && len(n.ChildKeys) == 0:
		return false
	}
	return true
}

// Disabled reports whether n's checkbox is drawn but ignores input: the
// policy disables every node with no member-typed node in its subtree.
func (p DisplayPolicy) Disabled(n *tree.FlatNode) bool {
	if !p.DisableCheckboxesOfNoLeaf {
		return false
	}
	return !p.hasChildType(n)
}

func (p DisplayPolicy) hasChildType(n *tree.FlatNode) bool {
	if n.NodeType == model.NodeTypeChildren {
		return true
	}
	if p.idx == nil {
		return false
	}
	for _, k := range p.idx.Descendants(n.Key) {
		if d, ok := p.idx.Get(k); ok && d.NodeType == model.NodeTypeChildren {
			return true
		}
	}
	return false
}

// Checkable reports whether toggling n from the browser is allowed.
func (p DisplayPolicy) Checkable(n *tree.FlatNode) bool {
	return p.ShowCheckbox(n) && !p.Disabled(n)
}

// Bold reports whether n's label is drawn bold. Zero disables bolding.
func (p DisplayPolicy) Bold(n *tree.FlatNode) bool {
	return p.BoldLabelDepth > 0 && n.TreeDepth <= p.BoldLabelDepth
}
