package tree

import "github.com/Dicklesworthstone/checktree/pkg/model"

// Index is a flattened forest: every node addressable by key, with parent
// back-links, depth-first order and subtree counts.
type Index struct {
	nodes  map[Key]*FlatNode
	order  []Key // Depth-first preorder
	roots  []Key
	byID   map[model.NodeID][]Key
	counts map[Key]Counts
	model  model.CheckModel
}

func newIndex(m model.CheckModel) *Index {
	return &Index{
		nodes:  make(map[Key]*FlatNode),
		byID:   make(map[model.NodeID][]Key),
		counts: make(map[Key]Counts),
		model:  m,
	}
}

func (x *Index) add(n *FlatNode) {
	x.nodes[n.Key] = n
	x.order = append(x.order, n.Key)
	x.byID[n.ID] = append(x.byID[n.ID], n.Key)
}

// Model returns the check model the index was flattened for.
func (x *Index) Model() model.CheckModel {
	return x.model
}

// Len returns the number of nodes.
func (x *Index) Len() int {
	return len(x.order)
}

// Get returns the node stored under key.
func (x *Index) Get(key Key) (*FlatNode, bool) {
	n, ok := x.nodes[key]
	return n, ok
}

// Has reports whether key exists.
func (x *Index) Has(key Key) bool {
	_, ok := x.nodes[key]
	return ok
}

// Keys returns every key in depth-first order.
func (x *Index) Keys() []Key {
	out := make([]Key, len(x.order))
	copy(out, x.order)
	return out
}

// Nodes returns every node in depth-first order.
func (x *Index) Nodes() []*FlatNode {
	out := make([]*FlatNode, len(x.order))
	for i, k := range x.order {
		out[i] = x.nodes[k]
	}
	return out
}

// Roots returns the keys of the top-level nodes in input order.
func (x *Index) Roots() []Key {
	out := make([]Key, len(x.roots))
	copy(out, x.roots)
	return out
}

// Parent returns the node one level up from key.
func (x *Index) Parent(key Key) (*FlatNode, bool) {
	n, ok := x.nodes[key]
	if !ok || n.ParentKey == "" {
		return nil, false
	}
	return x.Get(n.ParentKey)
}

// Children returns the direct children of key in input order.
func (x *Index) Children(key Key) []*FlatNode {
	n, ok := x.nodes[key]
	if !ok {
		return nil
	}
	out := make([]*FlatNode, 0, len(n.ChildKeys))
	for _, ck := range n.ChildKeys {
		out = append(out, x.nodes[ck])
	}
	return out
}

// Ancestors returns the keys above key, nearest first.
func (x *Index) Ancestors(key Key) []Key {
	var out []Key
	n, ok := x.nodes[key]
	for ok && n.ParentKey != "" {
		out = append(out, n.ParentKey)
		n, ok = x.nodes[n.ParentKey]
	}
	return out
}

// Subtree returns key followed by all its descendants in depth-first order.
func (x *Index) Subtree(key Key) []Key {
	if _, ok := x.nodes[key]; !ok {
		return nil
	}
	out := make([]Key, 0, x.counts[key].Descendants+1)
	var walk func(k Key)
	walk = func(k Key) {
		out = append(out, k)
		for _, ck := range x.nodes[k].ChildKeys {
			walk(ck)
		}
	}
	walk(key)
	return out
}

// Descendants returns all descendants of key in depth-first order.
func (x *Index) Descendants(key Key) []Key {
	sub := x.Subtree(key)
	if len(sub) == 0 {
		return nil
	}
	return sub[1:]
}

// Counts returns the subtree counts of key.
func (x *Index) Counts(key Key) Counts {
	return x.counts[key]
}

// KeysOf returns every key whose raw id is id, in depth-first order.
func (x *Index) KeysOf(id model.NodeID) []Key {
	keys := x.byID[id]
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}

// KeyOf returns the first key whose raw id is id.
func (x *Index) KeyOf(id model.NodeID) (Key, bool) {
	keys := x.byID[id]
	if len(keys) == 0 {
		return "", false
	}
	return keys[0], true
}

// Lookup resolves a caller-supplied reference that may be either a key or a
// raw id. Keys take precedence.
func (x *Index) Lookup(ref string) []Key {
	if x.Has(Key(ref)) {
		return []Key{Key(ref)}
	}
	return x.KeysOf(model.NodeID(ref))
}

// Terminals returns, in depth-first order, every node whose checked state is
// stored directly under the index's check model.
func (x *Index) Terminals() []Key {
	var out []Key
	for _, k := range x.order {
		if IsTerminal(x.model, x.nodes[k]) {
			out = append(out, k)
		}
	}
	return out
}

// Clone returns an index whose flat nodes may be mutated without affecting
// x. Child key slices and Meta maps are shared; they are never mutated.
func (x *Index) Clone() *Index {
	c := &Index{
		nodes:  make(map[Key]*FlatNode, len(x.nodes)),
		order:  x.order,
		roots:  x.roots,
		byID:   x.byID,
		counts: x.counts,
		model:  x.model,
	}
	for k, n := range x.nodes {
		clone := *n
		c.nodes[k] = &clone
	}
	return c
}
