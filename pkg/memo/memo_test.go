package memo

import (
	"errors"
	"testing"
)

func TestCache_GetOrCompute(t *testing.T) {
	c := New[string, int](4)
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompute("a", compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	}
	if calls != 1 {
		t.Errorf("expected compute to run once, ran %d times", calls)
	}

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Len != 1 || stats.Size != 4 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestCache_ErrorsNotCached(t *testing.T) {
	c := New[string, int](4)
	boom := errors.New("boom")

	if _, err := c.GetOrCompute("a", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected failed result not to be cached, len=%d", c.Len())
	}

	v, err := c.GetOrCompute("a", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("expected 7, got %d (%v)", v, err)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](2)
	c.Add(1, 1)
	c.Add(2, 2)
	c.Get(1) // 2 is now least recently used
	c.Add(3, 3)

	if _, ok := c.Get(2); ok {
		t.Error("expected key 2 to be evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("expected key 1 to survive")
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", c.Stats().Evictions)
	}
	if c.Len() > c.Size() {
		t.Errorf("cache grew past its size: %d > %d", c.Len(), c.Size())
	}
}

func TestCache_DefaultSize(t *testing.T) {
	if got := New[int, int](0).Size(); got != DefaultSize {
		t.Errorf("expected default size %d, got %d", DefaultSize, got)
	}
}

func TestCache_Purge(t *testing.T) {
	c := New[string, string](8)
	c.Add("a", "x")
	c.Add("b", "y")

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after purge, got %d", c.Len())
	}
}
