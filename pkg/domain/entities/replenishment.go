package entities

import (
	"fmt"
	"time"
)

// ReplenishmentType represents how a shortage should be covered
type ReplenishmentType int

const (
	Buy ReplenishmentType = iota
	Transfer
)

// String method for ReplenishmentType enum
func (o ReplenishmentType) String() string {
	switch o {
	case Buy:
		return "Buy"
	case Transfer:
		return "Transfer"
	default:
		return "Unknown"
	}
}

// MarshalText renders the type for JSON
func (o ReplenishmentType) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ReplenishmentOrder is a planned purchase or transfer that brings a stock
// row back up to its maximum level
type ReplenishmentOrder struct {
	SparePartID      string            `json:"spare_part_id"`
	PartNumber       PartNumber        `json:"part_number"`
	LocationID       string            `json:"location_id"`
	Quantity         Quantity          `json:"quantity"`
	Available        Quantity          `json:"available"`
	Incoming         Quantity          `json:"incoming"`
	ReorderPoint     Quantity          `json:"reorder_point"`
	Type             ReplenishmentType `json:"type"`
	SourceLocationID string            `json:"source_location_id,omitempty"`
	NeedDate         time.Time         `json:"need_date"`
}

// NewReplenishmentOrder creates a validated ReplenishmentOrder
func NewReplenishmentOrder(
	sparePartID string,
	partNumber PartNumber,
	locationID string,
	quantity Quantity,
	orderType ReplenishmentType,
	sourceLocationID string,
	needDate time.Time,
) (*ReplenishmentOrder, error) {
	if sparePartID == "" {
		return nil, fmt.Errorf("spare part cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if locationID == "" {
		return nil, fmt.Errorf("location cannot be empty")
	}
	if orderType == Transfer {
		if sourceLocationID == "" {
			return nil, fmt.Errorf("transfer needs a source location")
		}
		if sourceLocationID == locationID {
			return nil, fmt.Errorf("transfer source and destination are both %s", locationID)
		}
	}

	return &ReplenishmentOrder{
		SparePartID:      sparePartID,
		PartNumber:       partNumber,
		LocationID:       locationID,
		Quantity:         quantity,
		Type:             orderType,
		SourceLocationID: sourceLocationID,
		NeedDate:         needDate,
	}, nil
}

// ShortfallQuantity returns how much must be ordered to lift a row from
// available plus incoming up to max. Zero when the row is above its reorder
// point.
func ShortfallQuantity(part *SparePart, available, incoming Quantity) Quantity {
	projected := available + incoming
	if projected > part.ReorderPoint {
		return 0
	}
	target := part.MaxStockLevel
	if target <= 0 {
		target = part.ReorderPoint * 2
	}
	need := target - projected
	if need <= 0 {
		return 0
	}
	return need
}
