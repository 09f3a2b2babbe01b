package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrCycle is returned by BuildForest when parent links loop back on themselves.
var ErrCycle = errors.New("parent links form a cycle")

// BuildError describes a record BuildForest could not place.
type BuildError struct {
	Kind  string // "parent" or "child"
	ID    NodeID
	Cause error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s record %s: %v", e.Kind, e.ID, e.Cause)
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Record is one row of the flat tree-construction input.
//
// For parent records ParentID names the enclosing parent record. For child
// records ParentID names the owning parent record and ChildOf, when set,
// nests the child under another child record instead.
type Record struct {
	ID           NodeID         `json:"id" yaml:"id"`
	Label        string         `json:"label" yaml:"label"`
	Type         string         `json:"type,omitempty" yaml:"type,omitempty"`
	ParentID     NodeID         `json:"parentId,omitempty" yaml:"parent_id,omitempty"`
	ChildOf      NodeID         `json:"childOf,omitempty" yaml:"child_of,omitempty"`
	ShowCheckbox *bool          `json:"showCheckbox,omitempty" yaml:"show_checkbox,omitempty"`
	Meta         map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// BuildOptions controls BuildForest.
type BuildOptions struct {
	// PrintChildFirst places child records ahead of nested parent records
	// within the same parent.
	PrintChildFirst bool
}

// BuildForest assembles parent and child records into a forest.
//
// Parents whose ParentID is empty or unknown become roots. Children whose
// owning parent is unknown, and who are not nested under another child, are
// dropped. Empty children lists are omitted in the result.
func BuildForest(parents, children []Record, opts BuildOptions) (Forest, error) {
	parentNodes, err := indexRecords("parent", parents, NodeTypeParent)
	if err != nil {
		return nil, err
	}
	childNodes, err := indexRecords("child", children, NodeTypeChildren)
	if err != nil {
		return nil, err
	}

	if err := checkAcyclic("parent", parents, func(r Record) NodeID { return r.ParentID }); err != nil {
		return nil, err
	}
	if err := checkAcyclic("child", children, func(r Record) NodeID { return r.ChildOf }); err != nil {
		return nil, err
	}

	var roots Forest
	for _, rec := range parents {
		node := parentNodes[rec.ID]
		if owner, ok := parentNodes[rec.ParentID]; ok && rec.ParentID != "" {
			owner.Children = append(owner.Children, node)
			continue
		}
		roots = append(roots, node)
	}

	for _, rec := range children {
		node := childNodes[rec.ID]
		if rec.ChildOf != "" {
			if owner, ok := childNodes[rec.ChildOf]; ok {
				owner.Children = append(owner.Children, node)
			}
			continue
		}
		owner, ok := parentNodes[rec.ParentID]
		if !ok {
			continue
		}
		if opts.PrintChildFirst {
			owner.Children = insertBeforeFirstParent(owner.Children, node)
		} else {
			owner.Children = append(owner.Children, node)
		}
	}

	roots.Walk(func(n, _ *Node, _ int) bool {
		if len(n.Children) == 0 {
			n.Children = nil
		}
		return true
	})

	return roots, nil
}

func indexRecords(kind string, recs []Record, nodeType NodeType) (map[NodeID]*Node, error) {
	nodes := make(map[NodeID]*Node, len(recs))
	for _, rec := range recs {
		if rec.ID == "" {
			return nil, &BuildError{Kind: kind, ID: rec.ID, Cause: errors.New("id cannot be empty")}
		}
		if _, dup := nodes[rec.ID]; dup {
			return nil, &BuildError{Kind: kind, ID: rec.ID, Cause: errors.New("duplicate id")}
		}
		nodes[rec.ID] = &Node{
			ID:           rec.ID,
			Label:        rec.Label,
			Type:         rec.Type,
			NodeType:     nodeType,
			ShowCheckbox: rec.ShowCheckbox,
			Meta:         rec.Meta,
		}
	}
	return nodes, nil
}

// checkAcyclic verifies that following link from record to record never
// returns to the starting record.
func checkAcyclic(kind string, recs []Record, link func(Record) NodeID) error {
	pos := make(map[NodeID]int64, len(recs))
	for i, rec := range recs {
		pos[rec.ID] = int64(i)
	}

	g := simple.NewDirectedGraph()
	for i := range recs {
		g.AddNode(simple.Node(int64(i)))
	}
	for i, rec := range recs {
		target := link(rec)
		if target == "" {
			continue
		}
		from, ok := pos[target]
		if !ok {
			continue
		}
		if from == int64(i) {
			return &BuildError{Kind: kind, ID: rec.ID, Cause: ErrCycle}
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(int64(i))))
	}

	if _, err := topo.Sort(g); err != nil {
		var unorderable topo.Unorderable
		if errors.As(err, &unorderable) && len(unorderable) > 0 && len(unorderable[0]) > 0 {
			id := recs[unorderable[0][0].ID()].ID
			return &BuildError{Kind: kind, ID: id, Cause: ErrCycle}
		}
		return &BuildError{Kind: kind, Cause: fmt.Errorf("%w: %v", ErrCycle, err)}
	}
	return nil
}

func insertBeforeFirstParent(children []*Node, node *Node) []*Node {
	at := len(children)
	for i, c := range children {
		if c.NodeType == NodeTypeParent {
			at = i
			break
		}
	}
	children = append(children, nil)
	copy(children[at+1:], children[at:])
	children[at] = node
	return children
}
