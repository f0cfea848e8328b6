package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/gst"
)

// PartNumber represents a unique spare part number, e.g. SW-SM-001
type PartNumber string

// Quantity represents an integer quantity of discrete units
type Quantity int64

// SparePart represents a stocked spare part (SKU)
type SparePart struct {
	ID            string          `json:"id"`
	PartNumber    PartNumber      `json:"part_number"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CategoryID    string          `json:"category_id,omitempty"`
	UnitID        string          `json:"unit_id,omitempty"`
	UnitName      string          `json:"unit_name,omitempty"`
	HSNCode       string          `json:"hsn_code"`
	GSTRate       gst.Rate        `json:"gst_rate"`
	MinStockLevel Quantity        `json:"min_stock_level"`
	MaxStockLevel Quantity        `json:"max_stock_level"`
	ReorderPoint  Quantity        `json:"reorder_point"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewSparePart validates p and returns a copy with a fresh id and timestamps
func NewSparePart(p SparePart, at time.Time) (*SparePart, error) {
	p.PartNumber = PartNumber(strings.TrimSpace(string(p.PartNumber)))
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = NewID()
	}
	p.CreatedAt = at
	p.UpdatedAt = at
	return &p, nil
}

// Validate checks the spare part invariants
func (p *SparePart) Validate() error {
	if p.PartNumber == "" {
		return NewValidationError("part_number", nil, "part number cannot be empty")
	}
	if p.Name == "" {
		return NewValidationError("name", nil, "name cannot be empty")
	}
	if !p.GSTRate.Valid() {
		return NewValidationError("gst_rate", p.GSTRate, "GST rate must be one of 5, 12, 18, 28")
	}
	if p.UnitCost.IsNegative() {
		return NewValidationError("unit_cost", p.UnitCost, "unit cost cannot be negative")
	}
	if p.SellingPrice.IsNegative() {
		return NewValidationError("selling_price", p.SellingPrice, "selling price cannot be negative")
	}
	if p.MinStockLevel < 0 {
		return NewValidationError("min_stock_level", p.MinStockLevel, "minimum stock level cannot be negative")
	}
	if p.MinStockLevel > p.ReorderPoint {
		return NewValidationError("reorder_point", p.ReorderPoint, "reorder point cannot be below minimum stock level")
	}
	if p.MaxStockLevel > 0 && p.ReorderPoint > p.MaxStockLevel {
		return NewValidationError("reorder_point", p.ReorderPoint, "reorder point cannot exceed maximum stock level")
	}
	return nil
}

// NeedsReorder reports whether available stock has fallen to the reorder point
func (p *SparePart) NeedsReorder(available Quantity) bool {
	return available <= p.ReorderPoint
}
