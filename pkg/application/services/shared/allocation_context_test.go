package shared

import (
	"strings"
	"testing"
	"time"

	"github.com/vsinha/spares/pkg/domain/entities"
)

func TestPositionMap_SeedAndIncoming(t *testing.T) {
	level, err := entities.NewStockLevel("part-1", "loc-1", time.Now())
	if err != nil {
		t.Fatalf("Failed to create stock level: %v", err)
	}
	_ = level.Receive(10, time.Now())
	_ = level.Reserve(3, time.Now())

	pm := NewPositionMapFromLevels([]*entities.StockLevel{level})
	pm.AddIncoming("part-1", "loc-1", 5)
	pm.AddIncoming("part-1", "loc-1", 0)

	p := pm.Get("part-1", "loc-1")
	if p.Available != 7 {
		t.Errorf("Expected available 7, got %d", p.Available)
	}
	if p.Projected() != 12 {
		t.Errorf("Expected projected 12, got %d", p.Projected())
	}
	if pm.Has("part-1", "loc-2") {
		t.Error("Expected no position at loc-2")
	}
}

func TestPositionMap_SurplusAndCommit(t *testing.T) {
	pm := NewPositionMap()
	pm.Get("part-1", "main").Available = 50

	if got := pm.Surplus("part-1", "main", 20); got != 30 {
		t.Errorf("Expected surplus 30, got %d", got)
	}
	pm.Commit("part-1", "main", 25)
	if got := pm.Surplus("part-1", "main", 20); got != 5 {
		t.Errorf("Expected surplus 5 after commit, got %d", got)
	}
	pm.Commit("part-1", "main", 10)
	if got := pm.Surplus("part-1", "main", 20); got != 0 {
		t.Errorf("Expected surplus clamped to 0, got %d", got)
	}
	if got := pm.Surplus("part-1", "nowhere", 0); got != 0 {
		t.Errorf("Expected no surplus for unknown row, got %d", got)
	}
}

func TestPositionMap_KeysSorted(t *testing.T) {
	pm := NewPositionMap()
	pm.Get("b", "2")
	pm.Get("a", "9")
	pm.Get("b", "1")

	keys := pm.Keys()
	want := []string{"a@9", "b@1", "b@2"}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Errorf("Expected key %d to be %s, got %s", i, want[i], k)
		}
	}
	if locs := pm.Locations("b"); len(locs) != 2 || locs[0] != "1" {
		t.Errorf("Expected locations [1 2], got %v", locs)
	}
	if !strings.Contains(pm.String(), "a@9") {
		t.Errorf("Expected debug string to list a@9, got %s", pm.String())
	}
}
