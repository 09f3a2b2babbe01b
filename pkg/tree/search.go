package tree

import (
	"strings"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// Matches reports whether label contains text, ignoring case.
func Matches(label, text string) bool {
	return strings.Contains(strings.ToLower(label), strings.ToLower(text))
}

// Search returns a pruned copy of nodes keeping every node whose label
// matches text or that has a matching descendant. A matching node keeps all
// of its original children; a node kept only for its descendants keeps only
// the matching branches. Empty text returns nodes itself.
//
// Kept nodes are shallow copies; the input forest is never modified.
func Search(nodes model.Forest, text string) model.Forest {
	if text == "" {
		return nodes
	}
	needle := strings.ToLower(text)
	onPath := make(map[*model.Node]bool)

	var prune func(nodes []*model.Node) []*model.Node
	prune = func(nodes []*model.Node) []*model.Node {
		var out []*model.Node
		for _, n := range nodes {
			if n == nil || onPath[n] {
				continue
			}
			if strings.Contains(strings.ToLower(n.Label), needle) {
				kept := *n
				out = append(out, &kept)
				continue
			}
			onPath[n] = true
			children := prune(n.Children)
			onPath[n] = false
			if len(children) > 0 {
				kept := *n
				kept.Children = children
				out = append(out, &kept)
			}
		}
		return out
	}

	return prune(nodes)
}
