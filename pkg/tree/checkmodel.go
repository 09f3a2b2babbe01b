package tree

import "github.com/Dicklesworthstone/checktree/pkg/model"

// checkPolicy is the per-model behavior of the check engine.
type checkPolicy struct {
	// terminal reports whether a node's checked state is stored directly.
	terminal func(tag string, n *FlatNode) bool
	// counted reports whether a node feeds its ancestors' derived state.
	counted func(tag string, n *FlatNode) bool
	// deep derives a node from every counted descendant rather than from
	// its direct children.
	deep bool
}

var checkPolicies = map[model.CheckModelKind]checkPolicy{
	model.CheckLeaf: {
		terminal: func(_ string, n *FlatNode) bool { return n.IsLeaf },
		counted:  func(string, *FlatNode) bool { return true },
	},
	model.CheckAll: {
		terminal: func(string, *FlatNode) bool { return true },
		counted:  func(string, *FlatNode) bool { return true },
	},
	model.CheckCustom: {
		terminal: func(tag string, n *FlatNode) bool { return n.Tagged(tag) },
		counted:  func(tag string, n *FlatNode) bool { return n.Tagged(tag) },
		deep:     true,
	},
}

func policyFor(m model.CheckModel) checkPolicy {
	if p, ok := checkPolicies[m.Kind]; ok {
		return p
	}
	return checkPolicies[model.CheckLeaf]
}

// IsTerminal reports whether n's checked state is stored directly under m.
func IsTerminal(m model.CheckModel, n *FlatNode) bool {
	return n != nil && policyFor(m).terminal(m.Tag, n)
}
