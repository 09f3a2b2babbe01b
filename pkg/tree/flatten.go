package tree

import (
	"fmt"

	"github.com/Dicklesworthstone/checktree/pkg/memo"
	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// DefaultMaxDepth bounds recursion when Options.MaxDepth is zero.
const DefaultMaxDepth = 512

// Options controls flattening.
type Options struct {
	// RawKeys uses raw node ids as keys. The caller then guarantees that no
	// id repeats anywhere in the forest.
	RawKeys bool

	// Model decides what ChildrenCount counts.
	Model model.CheckModel

	// MaxDepth bounds nesting; zero means DefaultMaxDepth.
	MaxDepth int

	// Parent and Depth place the forest inside an enclosing tree when
	// flattening a sub-forest. Depth zero means 1.
	Parent *model.Node
	Depth  int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) startDepth() int {
	if o.Depth <= 0 {
		return 1
	}
	return o.Depth
}

// FlatNode is one node of a flattened forest. Flat nodes belong to their
// Index and must be treated as read-only; Controller mutates private clones.
type FlatNode struct {
	Key      Key            `json:"key"`
	ID       model.NodeID   `json:"id"`
	Label    string         `json:"label"`
	Type     string         `json:"type,omitempty"`
	NodeType model.NodeType `json:"nodeType,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`

	ParentKey Key          `json:"parent,omitempty"` // Lookup relation only; empty for roots
	ParentID  model.NodeID `json:"parentId,omitempty"`
	ChildKeys []Key        `json:"children,omitempty"`

	IsChild       bool `json:"isChild"`
	IsParent      bool `json:"isParent"`
	IsLeaf        bool `json:"isLeaf"`
	TreeDepth     int  `json:"treeDepth"` // Root = 1
	Index         int  `json:"index"`     // Position among siblings
	ChildrenCount int  `json:"childrenCount"`
	ShowCheckbox  bool `json:"showCheckbox"`

	// Checked is only maintained by Controller.
	Checked bool `json:"checked,omitempty"`
}

// Tagged reports whether the node's type or node type equals tag.
func (n *FlatNode) Tagged(tag string) bool {
	return tag != "" && (n.Type == tag || string(n.NodeType) == tag)
}

// Counts are the subtree sizes of a node, excluding the node itself.
type Counts struct {
	Descendants int `json:"descendants"`
	Leaves      int `json:"leaves"`
	Tagged      int `json:"tagged"` // Descendants tagged with the custom model tag
}

// forModel picks the count that ChildrenCount reports under m.
func (c Counts) forModel(m model.CheckModel) int {
	switch m.Kind {
	case model.CheckAll:
		return c.Descendants
	case model.CheckCustom:
		return c.Tagged
	default:
		return c.Leaves
	}
}

// Flatten flattens nodes using the package-level memoizing Flattener.
func Flatten(nodes model.Forest, opts Options) (*Index, error) {
	return defaultFlattener.Flatten(nodes, opts)
}

// flatten performs the two passes without caching. Pass one walks the input
// depth-first and records nodes in preorder with parent back-links. Pass two
// visits the preorder in reverse, so every child precedes its parent, and
// accumulates subtree counts.
func flatten(nodes model.Forest, opts Options) (*Index, error) {
	idx := newIndex(opts.Model)
	w := &walker{
		opts:   opts,
		max:    opts.maxDepth(),
		idx:    idx,
		onPath: make(map[*model.Node]bool),
	}
	roots, err := w.walk(nodes, opts.Parent, "", opts.startDepth())
	if err != nil {
		return nil, err
	}
	idx.roots = roots

	for i := len(idx.order) - 1; i >= 0; i-- {
		key := idx.order[i]
		n := idx.nodes[key]
		var c Counts
		for _, ck := range n.ChildKeys {
			child := idx.nodes[ck]
			cc := idx.counts[ck]
			c.Descendants += cc.Descendants + 1
			c.Leaves += cc.Leaves
			if child.IsLeaf {
				c.Leaves++
			}
			c.Tagged += cc.Tagged
			if opts.Model.IsCustom() && child.Tagged(opts.Model.Tag) {
				c.Tagged++
			}
		}
		idx.counts[key] = c
		n.ChildrenCount = c.forModel(opts.Model)
	}

	return idx, nil
}

type walker struct {
	opts   Options
	max    int
	idx    *Index
	onPath map[*model.Node]bool
}

func (w *walker) walk(nodes []*model.Node, parent *model.Node, parentKey Key, depth int) ([]Key, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	if depth > w.max {
		return nil, fmt.Errorf("%w: depth %d > %d", ErrDepthExceeded, depth, w.max)
	}

	keys := make([]Key, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		key := Resolve(n, parent, !w.opts.RawKeys)
		if w.onPath[n] {
			return nil, &CycleError{Key: key, ID: n.ID}
		}

		var parentID model.NodeID
		if parent != nil {
			parentID = parent.ID
		}
		if _, dup := w.idx.nodes[key]; dup {
			return nil, &DuplicateKeyError{Key: key, ID: n.ID, ParentID: parentID}
		}

		fn := &FlatNode{
			Key:          key,
			ID:           n.ID,
			Label:        n.Label,
			Type:         n.Type,
			NodeType:     n.NodeType,
			Meta:         n.Meta,
			ParentKey:    parentKey,
			ParentID:     parentID,
			IsChild:      parent != nil,
			IsLeaf:       true,
			TreeDepth:    depth,
			Index:        len(keys),
			ShowCheckbox: n.CheckboxVisible(),
		}
		w.idx.add(fn)
		keys = append(keys, key)

		if n.HasChildren() {
			w.onPath[n] = true
			childKeys, err := w.walk(n.Children, n, key, depth+1)
			w.onPath[n] = false
			if err != nil {
				return nil, err
			}
			// Nil entries are skipped, so classify by the children produced.
			fn.ChildKeys = childKeys
			fn.IsParent = len(childKeys) > 0
			fn.IsLeaf = !fn.IsParent
		}
	}
	return keys, nil
}

// fingerprint identifies a flatten input by the identity of the root slice
// and every option that shapes the result. Holding the element pointer keeps
// the backing array alive for as long as the entry is cached, so the address
// cannot be reused by a different forest.
type fingerprint struct {
	first *(*model.Node)
	n     int
	opts  Options
}

// Flattener memoizes Flatten results on the identity of the input forest.
// Forests are treated as immutable once flattened: mutate a clone and pass
// the new slice to get a fresh index.
type Flattener struct {
	cache *memo.Cache[fingerprint, *Index]
}

// NewFlattener creates a flattener that keeps at most size indexes.
func NewFlattener(size int) *Flattener {
	return &Flattener{cache: memo.New[fingerprint, *Index](size)}
}

var defaultFlattener = NewFlattener(memo.DefaultSize)

// Flatten returns the index of nodes, computing it only if the same slice
// was not flattened with the same options before. Errors are not cached.
func (f *Flattener) Flatten(nodes model.Forest, opts Options) (*Index, error) {
	if len(nodes) == 0 {
		return flatten(nodes, opts)
	}
	fp := fingerprint{first: &nodes[0], n: len(nodes), opts: opts}
	return f.cache.GetOrCompute(fp, func() (*Index, error) {
		return flatten(nodes, opts)
	})
}

// Stats reports cache effectiveness.
func (f *Flattener) Stats() memo.Stats {
	return f.cache.Stats()
}

// Purge drops every cached index.
func (f *Flattener) Purge() {
	f.cache.Purge()
}
