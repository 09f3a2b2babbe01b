package model

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// NodeID is the raw, possibly repeated identifier of a node as supplied by
// the caller. Numeric ids are carried in their decimal string form.
type NodeID string

// IntID converts a numeric id into a NodeID.
func IntID(n int) NodeID {
	return NodeID(strconv.Itoa(n))
}

// String returns the id as a plain string
func (id NodeID) String() string {
	return string(id)
}

// Int returns the numeric value of the id and whether it was numeric at all.
func (id NodeID) Int() (int, bool) {
	n, err := strconv.Atoi(string(id))
	if err != nil {
		return 0, false
	}
	return n, true
}

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node id must be a string or a number: %w", err)
	}
	*id = NodeID(n.String())
	return nil
}

// MarshalJSON writes integer ids as JSON numbers and everything else as strings.
func (id NodeID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int(); ok && strconv.Itoa(n) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalYAML accepts any scalar.
func (id *NodeID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: node id must be a scalar", value.Line)
	}
	*id = NodeID(value.Value)
	return nil
}

// NodeType distinguishes group nodes from member nodes in trees assembled by
// BuildForest (e.g. organizations vs. employees).
type NodeType string

const (
	NodeTypeParent   NodeType = "parent"
	NodeTypeChildren NodeType = "children"
)

// IsValid returns true if the node type is empty or a recognized value
func (t NodeType) IsValid() bool {
	switch t {
	case "", NodeTypeParent, NodeTypeChildren:
		return true
	}
	return false
}

// Node is one input tree node. Children ordering is significant.
type Node struct {
	ID           NodeID   `json:"id" yaml:"id"`
	Value        string   `json:"value,omitempty" yaml:"value,omitempty"` // Caller-supplied unique key, used verbatim when set
	Label        string   `json:"label" yaml:"label"`
	Type         string   `json:"type,omitempty" yaml:"type,omitempty"`
	NodeType     NodeType `json:"nodeType,omitempty" yaml:"node_type,omitempty"`
	ShowCheckbox *bool    `json:"showCheckbox,omitempty" yaml:"show_checkbox,omitempty"`
	Children     []*Node  `json:"children,omitempty" yaml:"children,omitempty"`

	// Meta is an opaque payload carried through to flat nodes. The engine
	// never inspects it.
	Meta map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// CheckboxVisible returns the showCheckbox flag, defaulting to true.
func (n *Node) CheckboxVisible() bool {
	if n == nil || n.ShowCheckbox == nil {
		return true
	}
	return *n.ShowCheckbox
}

// Tagged reports whether the node's type or node type equals tag.
func (n *Node) Tagged(tag string) bool {
	if n == nil || tag == "" {
		return false
	}
	return n.Type == tag || string(n.NodeType) == tag
}

// Clone creates a deep copy of the node and its subtree. Meta values are
// copied shallowly.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := *n

	if n.ShowCheckbox != nil {
		v := *n.ShowCheckbox
		clone.ShowCheckbox = &v
	}

	if n.Meta != nil {
		clone.Meta = make(map[string]any, len(n.Meta))
		for k, v := range n.Meta {
			clone.Meta[k] = v
		}
	}

	if n.Children != nil {
		clone.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}

	return &clone
}

// Validate checks if the node data is logically valid. It does not descend
// into children.
func (n *Node) Validate() error {
	if n == nil {
		return fmt.Errorf("node cannot be nil")
	}
	if n.ID == "" && n.Value == "" {
		return fmt.Errorf("node %q: id cannot be empty", n.Label)
	}
	if !n.NodeType.IsValid() {
		return fmt.Errorf("node %s: invalid node type: %s", n.ID, n.NodeType)
	}
	if n.Children != nil && len(n.Children) == 0 {
		return fmt.Errorf("node %s: children must be omitted rather than empty", n.ID)
	}
	for i, child := range n.Children {
		if child == nil {
			return fmt.Errorf("node %s: child %d is null", n.ID, i)
		}
	}
	return nil
}

// Forest is an ordered sequence of root nodes.
type Forest []*Node

// Clone deep-copies every tree in the forest.
func (f Forest) Clone() Forest {
	if f == nil {
		return nil
	}
	out := make(Forest, len(f))
	for i, n := range f {
		out[i] = n.Clone()
	}
	return out
}

// Len returns the total number of nodes in the forest.
func (f Forest) Len() int {
	count := 0
	f.Walk(func(*Node, *Node, int) bool {
		count++
		return true
	})
	return count
}

// Walk visits every node depth-first, left to right. Returning false from fn
// skips the node's subtree. A node already on the current path is not
// entered again, so cyclic input terminates.
func (f Forest) Walk(fn func(node, parent *Node, depth int) bool) {
	onPath := make(map[*Node]bool)
	var walk func(nodes []*Node, parent *Node, depth int)
	walk = func(nodes []*Node, parent *Node, depth int) {
		for _, n := range nodes {
			if n == nil || onPath[n] {
				continue
			}
			if !fn(n, parent, depth) {
				continue
			}
			onPath[n] = true
			walk(n.Children, n, depth+1)
			onPath[n] = false
		}
	}
	walk(f, nil, 1)
}
