// Package reports computes read-side stock reports, either from any Store or
// directly from the postgres schema.
package reports

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
)

// Filter narrows a report to some locations. Empty means all.
type Filter struct {
	LocationIDs []string
}

func (f Filter) includes(locationID string) bool {
	if len(f.LocationIDs) == 0 {
		return true
	}
	for _, id := range f.LocationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}

// Source produces stock reports
type Source interface {
	// LowStock lists active parts whose available quantity at a location is
	// at or below the part's reorder point, lowest cover first.
	LowStock(ctx context.Context, filter Filter) ([]dto.LowStockRow, error)
	// Valuation values on-hand stock at unit cost per location.
	Valuation(ctx context.Context, filter Filter) ([]dto.ValuationRow, error)
}

// BuildLowStock computes the low stock rows from master data and stock rows
func BuildLowStock(parts []*entities.SparePart, locations []*entities.Location, levels []*entities.StockLevel, filter Filter) []dto.LowStockRow {
	partByID := make(map[string]*entities.SparePart, len(parts))
	for _, p := range parts {
		partByID[p.ID] = p
	}
	codes := locationCodes(locations)

	var rows []dto.LowStockRow
	for _, l := range levels {
		part, ok := partByID[l.SparePartID]
		if !ok || !part.IsActive || !filter.includes(l.LocationID) {
			continue
		}
		available := l.QuantityAvailable()
		if !part.NeedsReorder(available) {
			continue
		}
		rows = append(rows, dto.LowStockRow{
			SparePartID:  part.ID,
			PartNumber:   part.PartNumber,
			PartName:     part.Name,
			LocationID:   l.LocationID,
			LocationCode: codes[l.LocationID],
			OnHand:       l.QuantityOnHand,
			Reserved:     l.QuantityReserved,
			Available:    available,
			ReorderPoint: part.ReorderPoint,
			MinStock:     part.MinStockLevel,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		gi := rows[i].Available - rows[i].ReorderPoint
		gj := rows[j].Available - rows[j].ReorderPoint
		if gi != gj {
			return gi < gj
		}
		if rows[i].PartNumber != rows[j].PartNumber {
			return rows[i].PartNumber < rows[j].PartNumber
		}
		return rows[i].LocationCode < rows[j].LocationCode
	})
	return rows
}

// BuildValuation sums on-hand value per location, ordered by location code
func BuildValuation(parts []*entities.SparePart, locations []*entities.Location, levels []*entities.StockLevel, filter Filter) []dto.ValuationRow {
	partByID := make(map[string]*entities.SparePart, len(parts))
	for _, p := range parts {
		partByID[p.ID] = p
	}
	codes := locationCodes(locations)

	byLocation := make(map[string]*dto.ValuationRow)
	for _, l := range levels {
		part, ok := partByID[l.SparePartID]
		if !ok || l.QuantityOnHand == 0 || !filter.includes(l.LocationID) {
			continue
		}
		row, ok := byLocation[l.LocationID]
		if !ok {
			row = &dto.ValuationRow{LocationID: l.LocationID, LocationCode: codes[l.LocationID], Value: decimal.Zero}
			byLocation[l.LocationID] = row
		}
		row.Parts++
		row.Units += l.QuantityOnHand
		row.Value = row.Value.Add(part.UnitCost.Mul(decimal.NewFromInt(int64(l.QuantityOnHand))))
	}

	rows := make([]dto.ValuationRow, 0, len(byLocation))
	for _, r := range byLocation {
		r.Value = r.Value.Round(2)
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].LocationCode < rows[j].LocationCode })
	return rows
}

// TotalValue sums a valuation report
func TotalValue(rows []dto.ValuationRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Value)
	}
	return total
}

func locationCodes(locations []*entities.Location) map[string]string {
	codes := make(map[string]string, len(locations))
	for _, l := range locations {
		codes[l.ID] = l.Code
	}
	return codes
}
