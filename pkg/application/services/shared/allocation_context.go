package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/spares/pkg/domain/entities"
)

// StockPosition is the planning view of one stock row
type StockPosition struct {
	Available entities.Quantity
	Incoming  entities.Quantity
	// Committed is surplus already promised to other locations in this run.
	Committed entities.Quantity
}

// Projected returns available plus incoming stock
func (p *StockPosition) Projected() entities.Quantity {
	return p.Available + p.Incoming
}

// PositionMap holds stock positions by part and location
type PositionMap map[entities.StockKey]*StockPosition

// NewPositionMap creates a new empty position map
func NewPositionMap() PositionMap {
	return make(PositionMap)
}

// NewPositionMapFromLevels seeds a map with the available quantity of each row
func NewPositionMapFromLevels(levels []*entities.StockLevel) PositionMap {
	pm := make(PositionMap, len(levels))
	for _, l := range levels {
		pm.Get(l.SparePartID, l.LocationID).Available = l.QuantityAvailable()
	}
	return pm
}

// Get returns the position of a part at a location, creating it when absent
func (pm PositionMap) Get(sparePartID, locationID string) *StockPosition {
	key := entities.StockKey{SparePartID: sparePartID, LocationID: locationID}
	p, ok := pm[key]
	if !ok {
		p = &StockPosition{}
		pm[key] = p
	}
	return p
}

// Has checks if a position exists for a part and location
func (pm PositionMap) Has(sparePartID, locationID string) bool {
	_, exists := pm[entities.StockKey{SparePartID: sparePartID, LocationID: locationID}]
	return exists
}

// AddIncoming books stock expected at a location
func (pm PositionMap) AddIncoming(sparePartID, locationID string, qty entities.Quantity) {
	if qty > 0 {
		pm.Get(sparePartID, locationID).Incoming += qty
	}
}

// Surplus returns what a location can give away without falling to keep
func (pm PositionMap) Surplus(sparePartID, locationID string, keep entities.Quantity) entities.Quantity {
	p, ok := pm[entities.StockKey{SparePartID: sparePartID, LocationID: locationID}]
	if !ok {
		return 0
	}
	s := p.Available - p.Committed - keep
	if s < 0 {
		return 0
	}
	return s
}

// Commit promises qty of a location's surplus to another location
func (pm PositionMap) Commit(sparePartID, locationID string, qty entities.Quantity) {
	pm.Get(sparePartID, locationID).Committed += qty
}

// Keys returns every key sorted by part then location
func (pm PositionMap) Keys() []entities.StockKey {
	keys := make([]entities.StockKey, 0, len(pm))
	for k := range pm {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].SparePartID != keys[j].SparePartID {
			return keys[i].SparePartID < keys[j].SparePartID
		}
		return keys[i].LocationID < keys[j].LocationID
	})
	return keys
}

// Locations returns the locations holding a position for a part, sorted
func (pm PositionMap) Locations(sparePartID string) []string {
	var out []string
	for k := range pm {
		if k.SparePartID == sparePartID {
			out = append(out, k.LocationID)
		}
	}
	sort.Strings(out)
	return out
}

// String returns a string representation of the map for debugging
func (pm PositionMap) String() string {
	if len(pm) == 0 {
		return "PositionMap{empty}"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "PositionMap{%d entries:\n", len(pm))
	for _, k := range pm.Keys() {
		p := pm[k]
		fmt.Fprintf(&b, "  %s: available=%d, incoming=%d, committed=%d\n", k, p.Available, p.Incoming, p.Committed)
	}
	b.WriteString("}")
	return b.String()
}
