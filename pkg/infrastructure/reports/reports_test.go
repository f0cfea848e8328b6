package reports

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
	"github.com/vsinha/spares/pkg/infrastructure/repositories/memory"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	parts     []*entities.SparePart
	locations []*entities.Location
	levels    []*entities.StockLevel
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mkPart := func(pn string, reorder, max entities.Quantity, cost string) *entities.SparePart {
		p, err := entities.NewSparePart(entities.SparePart{
			PartNumber:    entities.PartNumber(pn),
			Name:          pn,
			GSTRate:       18,
			ReorderPoint:  reorder,
			MaxStockLevel: max,
			UnitCost:      decimal.RequireFromString(cost),
			IsActive:      true,
		}, testNow)
		if err != nil {
			t.Fatalf("Failed to create part: %v", err)
		}
		return p
	}
	mkLoc := func(code string) *entities.Location {
		l, err := entities.NewLocation(code, code, entities.MainWarehouse, "", testNow)
		if err != nil {
			t.Fatalf("Failed to create location: %v", err)
		}
		return l
	}
	mkLevel := func(p *entities.SparePart, l *entities.Location, onHand, reserved entities.Quantity) *entities.StockLevel {
		lv, _ := entities.NewStockLevel(p.ID, l.ID, testNow)
		if onHand > 0 {
			_ = lv.Receive(onHand, testNow)
		}
		if reserved > 0 {
			_ = lv.Reserve(reserved, testNow)
		}
		return lv
	}

	filter := mkPart("FLT-001", 10, 50, "120.50")
	belt := mkPart("BLT-002", 5, 20, "80")
	main, sub := mkLoc("MAIN"), mkLoc("SUB")
	return fixture{
		parts:     []*entities.SparePart{filter, belt},
		locations: []*entities.Location{main, sub},
		levels: []*entities.StockLevel{
			mkLevel(filter, main, 40, 0),
			mkLevel(filter, sub, 12, 4), // available 8, below 10
			mkLevel(belt, main, 5, 0),   // exactly at reorder point
			mkLevel(belt, sub, 0, 0),
		},
	}
}

func TestBuildLowStock(t *testing.T) {
	f := newFixture(t)
	rows := BuildLowStock(f.parts, f.locations, f.levels, Filter{})

	if len(rows) != 3 {
		t.Fatalf("Expected 3 low stock rows, got %d", len(rows))
	}
	// Lowest cover first: belt@SUB is 5 below, filter@SUB 2 below, belt@MAIN 0.
	want := []string{"BLT-002/SUB", "FLT-001/SUB", "BLT-002/MAIN"}
	for i, r := range rows {
		got := string(r.PartNumber) + "/" + r.LocationCode
		if got != want[i] {
			t.Errorf("Row %d: expected %s, got %s", i, want[i], got)
		}
	}
	if rows[1].Available != 8 || rows[1].Reserved != 4 {
		t.Errorf("Expected available 8 reserved 4, got %d/%d", rows[1].Available, rows[1].Reserved)
	}

	onlyMain := BuildLowStock(f.parts, f.locations, f.levels, Filter{LocationIDs: []string{f.locations[0].ID}})
	if len(onlyMain) != 1 || onlyMain[0].LocationCode != "MAIN" {
		t.Errorf("Expected only the MAIN row, got %+v", onlyMain)
	}
}

func TestBuildLowStock_SkipsInactiveParts(t *testing.T) {
	f := newFixture(t)
	f.parts[1].IsActive = false
	rows := BuildLowStock(f.parts, f.locations, f.levels, Filter{})
	for _, r := range rows {
		if r.PartNumber == "BLT-002" {
			t.Errorf("Expected inactive part to be skipped, got %+v", r)
		}
	}
}

func TestBuildValuation(t *testing.T) {
	f := newFixture(t)
	rows := BuildValuation(f.parts, f.locations, f.levels, Filter{})

	if len(rows) != 2 {
		t.Fatalf("Expected 2 locations, got %d", len(rows))
	}
	// MAIN: 40 * 120.50 + 5 * 80 = 5220
	if rows[0].LocationCode != "MAIN" || !rows[0].Value.Equal(decimal.RequireFromString("5220")) {
		t.Errorf("Expected MAIN valued 5220, got %s %s", rows[0].LocationCode, rows[0].Value)
	}
	if rows[0].Parts != 2 || rows[0].Units != 45 {
		t.Errorf("Expected 2 parts and 45 units, got %d and %d", rows[0].Parts, rows[0].Units)
	}
	// SUB: 12 * 120.50 = 1446 (reserved stock is still on hand)
	if !rows[1].Value.Equal(decimal.RequireFromString("1446")) {
		t.Errorf("Expected SUB valued 1446, got %s", rows[1].Value)
	}
	if total := TotalValue(rows); !total.Equal(decimal.RequireFromString("6666")) {
		t.Errorf("Expected total 6666, got %s", total)
	}
}

func TestStoreSource(t *testing.T) {
	f := newFixture(t)
	store := memory.NewStore()
	err := store.Update(context.Background(), func(tx repositories.Tx) error {
		for _, p := range f.parts {
			if err := tx.Parts().Save(p); err != nil {
				return err
			}
		}
		for _, l := range f.locations {
			if err := tx.Locations().Save(l); err != nil {
				return err
			}
		}
		for _, l := range f.levels {
			if err := tx.Stock().Save(l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	src := NewStoreSource(store)
	low, err := src.LowStock(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Failed to run low stock report: %v", err)
	}
	if len(low) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(low))
	}
	val, err := src.Valuation(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Failed to run valuation report: %v", err)
	}
	if len(val) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(val))
	}
}

func TestLocationArray_BindsEmptyArray(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"no filter", Filter{}, "{}"},
		{"empty filter", Filter{LocationIDs: []string{}}, "{}"},
		{"one location", Filter{LocationIDs: []string{"loc-1"}}, `{"loc-1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := locationArray(tt.filter).(driver.Valuer).Value()
			if err != nil {
				t.Fatalf("Failed to bind: %v", err)
			}
			if v != tt.want {
				t.Errorf("Expected %s, got %v", tt.want, v)
			}
		})
	}
}
