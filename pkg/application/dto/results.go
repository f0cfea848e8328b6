package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/gst"
)

// LowStockRow is one stock row at or below its part's reorder point
type LowStockRow struct {
	SparePartID  string              `json:"spare_part_id" db:"spare_part_id"`
	PartNumber   entities.PartNumber `json:"part_number" db:"part_number"`
	PartName     string              `json:"part_name" db:"part_name"`
	LocationID   string              `json:"location_id" db:"location_id"`
	LocationCode string              `json:"location_code" db:"location_code"`
	OnHand       entities.Quantity   `json:"on_hand" db:"on_hand"`
	Reserved     entities.Quantity   `json:"reserved" db:"reserved"`
	Available    entities.Quantity   `json:"available" db:"available"`
	ReorderPoint entities.Quantity   `json:"reorder_point" db:"reorder_point"`
	MinStock     entities.Quantity   `json:"min_stock_level" db:"min_stock_level"`
}

// ValuationRow is the value of stock held at one location
type ValuationRow struct {
	LocationID   string            `json:"location_id" db:"location_id"`
	LocationCode string            `json:"location_code" db:"location_code"`
	Parts        int               `json:"parts" db:"parts"`
	Units        entities.Quantity `json:"units" db:"units"`
	Value        decimal.Decimal   `json:"value" db:"value"`
}

// ReplenishmentPlan is the output of a replenishment run
type ReplenishmentPlan struct {
	GeneratedAt time.Time                     `json:"generated_at"`
	Orders      []entities.ReplenishmentOrder `json:"orders"`
	// Shortages lists rows that need stock but whose parts have no maximum
	// or reorder level to size an order from.
	Shortages []LowStockRow `json:"shortages,omitempty"`
}

// Buys returns the planned purchases
func (p *ReplenishmentPlan) Buys() []entities.ReplenishmentOrder {
	var out []entities.ReplenishmentOrder
	for _, o := range p.Orders {
		if o.Type == entities.Buy {
			out = append(out, o)
		}
	}
	return out
}

// Transfers returns the planned inter-location transfers
func (p *ReplenishmentPlan) Transfers() []entities.ReplenishmentOrder {
	var out []entities.ReplenishmentOrder
	for _, o := range p.Orders {
		if o.Type == entities.Transfer {
			out = append(out, o)
		}
	}
	return out
}

// GSTResult is a standalone GST computation
type GSTResult struct {
	Amount     decimal.Decimal `json:"amount"`
	Rate       gst.Rate        `json:"rate"`
	InterState bool            `json:"inter_state"`
	CGST       decimal.Decimal `json:"cgst"`
	SGST       decimal.Decimal `json:"sgst"`
	IGST       decimal.Decimal `json:"igst"`
	Total      decimal.Decimal `json:"total"`
}

// ImportSummary counts what an import created, skipped as already present,
// or counted
type ImportSummary struct {
	Locations int `json:"locations"`
	Parts     int `json:"parts"`
	Suppliers int `json:"suppliers"`
	Machines  int `json:"machines"`
	Skipped   int `json:"skipped"`
	StockRows int `json:"stock_rows"`
}
