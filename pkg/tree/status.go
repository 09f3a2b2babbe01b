package tree

// Status is the tri-state classification of a node.
type Status uint8

const (
	Unchecked Status = iota
	Checked
	Indeterminate
)

// String returns a lowercase name for the status
func (s Status) String() string {
	switch s {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// deriveStatuses classifies every node of idx bottom-up. isSet reports the
// stored state of a terminal node.
//
// Under leaf and all models a leaf is checked iff it is set, and a parent is
// checked iff every child is checked, indeterminate iff any child is checked
// or indeterminate. Under a custom model a node is derived from all tagged
// descendants: checked iff all are set, indeterminate iff some are. A node
// without tagged descendants is checked only if it is itself tagged and set.
func deriveStatuses(idx *Index, isSet func(*FlatNode) bool) map[Key]Status {
	out := make(map[Key]Status, len(idx.order))
	pol := policyFor(idx.model)
	tag := idx.model.Tag

	if !pol.deep {
		for i := len(idx.order) - 1; i >= 0; i-- {
			n := idx.nodes[idx.order[i]]
			if n.IsLeaf {
				if isSet(n) {
					out[n.Key] = Checked
				} else {
					out[n.Key] = Unchecked
				}
				continue
			}
			all, some := true, false
			for _, ck := range n.ChildKeys {
				switch out[ck] {
				case Checked:
					some = true
				case Indeterminate:
					all, some = false, true
				default:
					all = false
				}
			}
			switch {
			case all:
				out[n.Key] = Checked
			case some:
				out[n.Key] = Indeterminate
			default:
				out[n.Key] = Unchecked
			}
		}
		return out
	}

	// set counts checked tagged descendants; totals come from the index.
	set := make(map[Key]int, len(idx.order))
	for i := len(idx.order) - 1; i >= 0; i-- {
		n := idx.nodes[idx.order[i]]
		checked := 0
		for _, ck := range n.ChildKeys {
			child := idx.nodes[ck]
			checked += set[ck]
			if pol.counted(tag, child) && isSet(child) {
				checked++
			}
		}
		set[n.Key] = checked

		total := idx.counts[n.Key].Tagged
		switch {
		case total == 0:
			if pol.terminal(tag, n) && isSet(n) {
				out[n.Key] = Checked
			} else {
				out[n.Key] = Unchecked
			}
		case checked == total:
			out[n.Key] = Checked
		case checked > 0:
			out[n.Key] = Indeterminate
		default:
			out[n.Key] = Unchecked
		}
	}
	return out
}

// fullyChecked evaluates the checked rule of deriveStatuses for n alone,
// reading children through isSet. For non-terminal children isSet must
// already report their derived checked state, which holds for Controller
// flags and for CheckState membership under the all and custom models.
func fullyChecked(idx *Index, n *FlatNode, isSet func(*FlatNode) bool) bool {
	pol := policyFor(idx.model)
	if !pol.deep {
		if n.IsLeaf {
			return isSet(n)
		}
		for _, ck := range n.ChildKeys {
			if !isSet(idx.nodes[ck]) {
				return false
			}
		}
		return true
	}

	if idx.counts[n.Key].Tagged == 0 {
		return pol.terminal(idx.model.Tag, n) && isSet(n)
	}
	for _, k := range idx.Descendants(n.Key) {
		d := idx.nodes[k]
		if pol.counted(idx.model.Tag, d) && !isSet(d) {
			return false
		}
	}
	return true
}
