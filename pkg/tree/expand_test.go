package tree

import (
	"fmt"
	"testing"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// tenByTwo is 10 roots with 2 leaves each.
func tenByTwo() model.Forest {
	var forest model.Forest
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("r%d", i)
		forest = append(forest, branch(id, leaf(id+"a"), leaf(id+"b")))
	}
	return forest
}

func TestParseExpandLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    ExpandLevel
		wantErr bool
	}{
		{"true", ExpandAllLevels, false},
		{"TRUE", ExpandAllLevels, false},
		{"false", CollapseAllLevels, false},
		{"", CollapseAllLevels, false},
		{"0", CollapseAllLevels, false},
		{"3", 3, false},
		{"-2", 0, true},
		{"deep", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseExpandLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseExpandLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseExpandLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestExpandState_Initial(t *testing.T) {
	idx := mustFlatten(t, tenByTwo(), Options{})
	s := NewExpandState(idx, "r1", "r2_", "missing")

	if s.Len() != 30 {
		t.Errorf("expected 30 tracked keys, got %d", s.Len())
	}
	got := s.Keys()
	if len(got) != 2 || got[0] != "r1_" || got[1] != "r2_" {
		t.Errorf("expected r1 and r2 expanded, got %v", got)
	}
}

func TestExpandState_ToggleExpandCollapse(t *testing.T) {
	idx := mustFlatten(t, tenByTwo(), Options{})
	s := NewExpandState(idx)

	s, changed := s.Expand("r0_")
	if !changed || !s.IsExpanded("r0_") {
		t.Fatal("expected r0 expanded")
	}
	if _, changed := s.Expand("r0_"); changed {
		t.Error("expanding an expanded node should not report a change")
	}

	s, changed = s.Toggle("r0_")
	if !changed || s.IsExpanded("r0_") {
		t.Error("expected toggle to collapse r0")
	}
	if _, changed := s.Collapse("r0_"); changed {
		t.Error("collapsing a collapsed node should not report a change")
	}

	same, changed := s.Toggle("missing")
	if changed || same != s {
		t.Error("expected unknown key to be a no-op")
	}
}

func TestExpandState_AllAndNone(t *testing.T) {
	idx := mustFlatten(t, tenByTwo(), Options{})
	s := NewExpandState(idx).ExpandAll()

	if len(s.Keys()) != 30 {
		t.Errorf("expected every key expanded, got %d", len(s.Keys()))
	}
	if len(s.CollapseAll().Keys()) != 0 {
		t.Error("expected nothing expanded")
	}
}

func TestExpandState_ToDepthScenario(t *testing.T) {
	idx := mustFlatten(t, tenByTwo(), Options{})
	s := NewExpandState(idx)

	one := s.ExpandToDepth(idx, 1)
	if got := one.Keys(); len(got) != 10 {
		t.Fatalf("expected the 10 roots expanded, got %d", len(got))
	}
	for _, k := range one.Keys() {
		if n, _ := idx.Get(k); n.TreeDepth != 1 {
			t.Errorf("expected only roots, got %s at depth %d", k, n.TreeDepth)
		}
	}

	two := s.ExpandToDepth(idx, 2)
	if got := two.Keys(); len(got) != 30 {
		t.Errorf("expected every node at depth <= 2, got %d", len(got))
	}

	if got := s.ExpandAll().ExpandToDepth(idx, CollapseAllLevels).Keys(); len(got) != 0 {
		t.Errorf("expected level 0 to collapse everything, got %v", got)
	}
	if got := s.ExpandToDepth(idx, ExpandAllLevels).Keys(); len(got) != 30 {
		t.Errorf("expected all levels expanded, got %d", len(got))
	}
}

func TestExpandState_ToDepthCollapsesDeeper(t *testing.T) {
	forest := model.Forest{branch("a", branch("b", branch("c", leaf("d"))))}
	idx := mustFlatten(t, forest, Options{})
	s := NewExpandState(idx).ExpandAll().ExpandToDepth(idx, 2)

	if !s.IsExpanded("a_") || !s.IsExpanded("b_a") {
		t.Error("expected depth 1 and 2 expanded")
	}
	if s.IsExpanded("c_b") {
		t.Error("expected depth 3 collapsed")
	}
}

func TestSelection(t *testing.T) {
	var s Selection
	if _, ok := s.Key(); ok {
		t.Fatal("expected empty selection")
	}

	s = s.Select("a").Select("b")
	if key, ok := s.Key(); !ok || key != "b" {
		t.Errorf("expected last select to win, got %q", key)
	}
	if s.IsSelected("a") || !s.IsSelected("b") {
		t.Error("expected only b selected")
	}

	s = s.Deselect()
	if s.IsSelected("b") {
		t.Error("expected selection cleared")
	}
}
