package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// ExpandLevel is a forced-expansion policy: ExpandAllLevels expands
// everything, CollapseAllLevels collapses everything, and a positive value N
// expands exactly the nodes with TreeDepth <= N.
type ExpandLevel int

const (
	CollapseAllLevels ExpandLevel = 0
	ExpandAllLevels   ExpandLevel = -1
)

// ParseExpandLevel accepts "true", "false" or a non-negative depth.
func ParseExpandLevel(s string) (ExpandLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false":
		return CollapseAllLevels, nil
	case "true", "all":
		return ExpandAllLevels, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return CollapseAllLevels, fmt.Errorf("invalid expand level %q: want true, false or a depth", s)
	}
	return ExpandLevel(n), nil
}

// String returns the config spelling of the level
func (l ExpandLevel) String() string {
	switch {
	case l < 0:
		return "true"
	case l == 0:
		return "false"
	default:
		return strconv.Itoa(int(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l ExpandLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *ExpandLevel) UnmarshalText(text []byte) error {
	v, err := ParseExpandLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ExpandState is an immutable key -> expanded mapping.
type ExpandState struct {
	order    []Key
	expanded map[Key]bool
}

// NewExpandState walks idx once and marks every key collapsed unless its raw
// id (or the key itself) is listed in initial.
func NewExpandState(idx *Index, initial ...model.NodeID) *ExpandState {
	want := make(map[string]bool, len(initial))
	for _, id := range initial {
		want[string(id)] = true
	}
	s := &ExpandState{order: idx.Keys(), expanded: make(map[Key]bool, idx.Len())}
	for _, n := range idx.Nodes() {
		s.expanded[n.Key] = want[string(n.ID)] || want[string(n.Key)]
	}
	return s
}

// IsExpanded reports whether key is expanded. Unknown keys are collapsed.
func (s *ExpandState) IsExpanded(key Key) bool {
	return s.expanded[key]
}

// Has reports whether key is tracked.
func (s *ExpandState) Has(key Key) bool {
	_, ok := s.expanded[key]
	return ok
}

// Len returns the number of tracked keys.
func (s *ExpandState) Len() int {
	return len(s.order)
}

// Keys returns the expanded keys in depth-first order.
func (s *ExpandState) Keys() []Key {
	var out []Key
	for _, k := range s.order {
		if s.expanded[k] {
			out = append(out, k)
		}
	}
	return out
}

func (s *ExpandState) with(key Key, expanded bool) (*ExpandState, bool) {
	cur, ok := s.expanded[key]
	if !ok || cur == expanded {
		return s, false
	}
	next := &ExpandState{order: s.order, expanded: make(map[Key]bool, len(s.expanded))}
	for k, v := range s.expanded {
		next.expanded[k] = v
	}
	next.expanded[key] = expanded
	return next, true
}

// Toggle flips key. The boolean reports whether anything changed, which is
// false only for unknown keys.
func (s *ExpandState) Toggle(key Key) (*ExpandState, bool) {
	return s.with(key, !s.expanded[key])
}

// Expand marks key expanded.
func (s *ExpandState) Expand(key Key) (*ExpandState, bool) {
	return s.with(key, true)
}

// Collapse marks key collapsed.
func (s *ExpandState) Collapse(key Key) (*ExpandState, bool) {
	return s.with(key, false)
}

func (s *ExpandState) all(expanded bool) *ExpandState {
	next := &ExpandState{order: s.order, expanded: make(map[Key]bool, len(s.expanded))}
	for k := range s.expanded {
		next.expanded[k] = expanded
	}
	return next
}

// ExpandAll marks every tracked key expanded.
func (s *ExpandState) ExpandAll() *ExpandState {
	return s.all(true)
}

// CollapseAll marks every tracked key collapsed.
func (s *ExpandState) CollapseAll() *ExpandState {
	return s.all(false)
}

// ExpandToDepth applies level to every tracked key. Depths come from idx,
// which should be a fresh flatten of the current forest; keys idx does not
// know are collapsed.
func (s *ExpandState) ExpandToDepth(idx *Index, level ExpandLevel) *ExpandState {
	switch {
	case level < 0:
		return s.ExpandAll()
	case level == 0:
		return s.CollapseAll()
	}
	next := &ExpandState{order: s.order, expanded: make(map[Key]bool, len(s.expanded))}
	for k := range s.expanded {
		n, ok := idx.Get(k)
		next.expanded[k] = ok && n.TreeDepth <= int(level)
	}
	return next
}
