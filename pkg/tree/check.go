package tree

import (
	"sync"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// CheckState is an immutable snapshot of the checked set over an index.
//
// The set only ever contains terminal nodes. Under the all and custom models
// a terminal node that has counted descendants is a member exactly when it
// is fully checked, so the set never disagrees with the derived state.
type CheckState struct {
	idx     *Index
	checked map[Key]struct{}

	once     sync.Once
	statuses map[Key]Status
}

// NewCheckState creates a snapshot over idx with the given raw ids (or keys)
// checked. Each entry checks its whole subtree, the same as Check.
func NewCheckState(idx *Index, initial ...model.NodeID) *CheckState {
	s := &CheckState{idx: idx, checked: map[Key]struct{}{}}
	for _, id := range initial {
		for _, key := range idx.Lookup(string(id)) {
			s = s.Check(key)
		}
	}
	return s
}

// Index returns the index the snapshot was built over.
func (s *CheckState) Index() *Index {
	return s.idx
}

func (s *CheckState) isSet(n *FlatNode) bool {
	_, ok := s.checked[n.Key]
	return ok
}

// Status returns the tri-state classification of key. Unknown keys are
// unchecked.
func (s *CheckState) Status(key Key) Status {
	s.once.Do(func() {
		s.statuses = deriveStatuses(s.idx, s.isSet)
	})
	return s.statuses[key]
}

// IsChecked reports whether key is fully checked.
func (s *CheckState) IsChecked(key Key) bool {
	return s.Status(key) == Checked
}

// IsIndeterminate reports whether key is partially checked.
func (s *CheckState) IsIndeterminate(key Key) bool {
	return s.Status(key) == Indeterminate
}

// Len returns the size of the checked set.
func (s *CheckState) Len() int {
	return len(s.checked)
}

// Contains reports whether key is a member of the checked set.
func (s *CheckState) Contains(key Key) bool {
	_, ok := s.checked[key]
	return ok
}

// Keys returns the checked set in depth-first order.
func (s *CheckState) Keys() []Key {
	out := make([]Key, 0, len(s.checked))
	for _, k := range s.idx.order {
		if _, ok := s.checked[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Check adds every terminal node in key's subtree, including key itself when
// it is terminal. Checking an already fully checked subtree returns s.
func (s *CheckState) Check(key Key) *CheckState {
	return s.apply(key, true)
}

// Uncheck removes every terminal node in key's subtree, and key itself.
func (s *CheckState) Uncheck(key Key) *CheckState {
	return s.apply(key, false)
}

// Toggle unchecks key if it is fully checked and checks it otherwise.
func (s *CheckState) Toggle(key Key) *CheckState {
	if s.IsChecked(key) {
		return s.Uncheck(key)
	}
	return s.Check(key)
}

// CheckAll returns a snapshot with every terminal node checked.
func (s *CheckState) CheckAll() *CheckState {
	next := &CheckState{idx: s.idx, checked: make(map[Key]struct{})}
	for _, k := range s.idx.Terminals() {
		next.checked[k] = struct{}{}
	}
	return next
}

// UncheckAll returns a snapshot with nothing checked.
func (s *CheckState) UncheckAll() *CheckState {
	if len(s.checked) == 0 {
		return s
	}
	return &CheckState{idx: s.idx, checked: make(map[Key]struct{})}
}

func (s *CheckState) apply(key Key, check bool) *CheckState {
	if !s.idx.Has(key) {
		return s
	}

	next := make(map[Key]struct{}, len(s.checked))
	for k := range s.checked {
		next[k] = struct{}{}
	}

	changed := false
	for _, k := range s.idx.Subtree(key) {
		if !IsTerminal(s.idx.model, s.idx.nodes[k]) {
			continue
		}
		_, present := next[k]
		if check && !present {
			next[k] = struct{}{}
			changed = true
		} else if !check && present {
			delete(next, k)
			changed = true
		}
	}
	if !check {
		if _, present := next[key]; present {
			delete(next, key)
			changed = true
		}
	}
	if !changed {
		return s
	}

	// Recorded ancestors must track their derived state.
	isSet := func(n *FlatNode) bool {
		_, ok := next[n.Key]
		return ok
	}
	for _, ak := range s.idx.Ancestors(key) {
		a := s.idx.nodes[ak]
		if !IsTerminal(s.idx.model, a) || a.IsLeaf {
			continue
		}
		if s.idx.model.IsCustom() && s.idx.counts[ak].Tagged == 0 {
			continue
		}
		if fullyChecked(s.idx, a, isSet) {
			next[ak] = struct{}{}
		} else {
			delete(next, ak)
		}
	}

	return &CheckState{idx: s.idx, checked: next}
}

// CheckedInfo lists the checked terminal nodes and their de-duplicated raw ids.
type CheckedInfo struct {
	IDs   []model.NodeID `json:"ids"`
	Nodes []*FlatNode    `json:"nodes"`
}

// CheckedInfo returns every terminal node that is currently fully checked.
func (s *CheckState) CheckedInfo() CheckedInfo {
	return collectChecked(s.idx, s.IsChecked)
}

func collectChecked(idx *Index, isChecked func(Key) bool) CheckedInfo {
	var info CheckedInfo
	seen := make(map[model.NodeID]bool)
	for _, k := range idx.order {
		n := idx.nodes[k]
		if !IsTerminal(idx.model, n) || !isChecked(k) {
			continue
		}
		info.Nodes = append(info.Nodes, n)
		if !seen[n.ID] {
			seen[n.ID] = true
			info.IDs = append(info.IDs, n.ID)
		}
	}
	return info
}

// Rebase carries the checked set of s over to a new index, as happens when
// the underlying forest is replaced. Keys that survive are kept; keys that
// disappeared are matched again by raw id.
func (s *CheckState) Rebase(idx *Index) *CheckState {
	next := &CheckState{idx: idx, checked: map[Key]struct{}{}}
	for _, k := range s.Keys() {
		if idx.Has(k) {
			next = next.Check(k)
			continue
		}
		for _, nk := range idx.KeysOf(s.idx.nodes[k].ID) {
			next = next.Check(nk)
		}
	}
	return next
}
