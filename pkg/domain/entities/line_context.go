package entities

import (
	"github.com/shopspring/decimal"
)

// PartLine is the part-dependent portion of a document line that a
// LineContext validates
type PartLine struct {
	SparePartID string
	Quantity    Quantity
	UnitPrice   decimal.Decimal
}

// LineContext carries the validation rules of one kind of document line.
// Each document type picks the context matching what its lines do to stock.
type LineContext interface {
	ValidateLine(part *SparePart, line PartLine) error
}

func validateCommon(part *SparePart, line PartLine) error {
	if part == nil {
		return NewNotFoundError("spare part", line.SparePartID)
	}
	if !part.IsActive {
		return NewValidationError("spare_part_id", part.PartNumber, "spare part is inactive")
	}
	if line.Quantity <= 0 {
		return NewValidationError("quantity", line.Quantity, "quantity must be positive")
	}
	return nil
}

// IssueContext validates lines that take stock out of a location. Available
// reports the unreserved quantity of a part at LocationID; its errors are
// returned as they are.
type IssueContext struct {
	LocationID string
	Available  func(sparePartID string) (Quantity, error)
}

func (c IssueContext) ValidateLine(part *SparePart, line PartLine) error {
	if err := validateCommon(part, line); err != nil {
		return err
	}
	var available Quantity
	if c.Available != nil {
		var err error
		if available, err = c.Available(part.ID); err != nil {
			return err
		}
	}
	if line.Quantity > available {
		return &InsufficientStockError{
			SparePartID: part.ID,
			LocationID:  c.LocationID,
			Requested:   line.Quantity,
			Available:   available,
		}
	}
	return nil
}

// PurchaseContext validates lines bought from a supplier
type PurchaseContext struct{}

func (PurchaseContext) ValidateLine(part *SparePart, line PartLine) error {
	if err := validateCommon(part, line); err != nil {
		return err
	}
	if !line.UnitPrice.IsPositive() {
		return NewValidationError("unit_price", line.UnitPrice, "purchase price must be positive")
	}
	return nil
}

// SaleContext validates lines sold to a customer
type SaleContext struct{}

func (SaleContext) ValidateLine(part *SparePart, line PartLine) error {
	if err := validateCommon(part, line); err != nil {
		return err
	}
	if !line.UnitPrice.IsPositive() {
		return NewValidationError("unit_price", line.UnitPrice, "sale price must be positive")
	}
	return nil
}

// ReceiveContext validates lines that bring stock in
type ReceiveContext struct{}

func (ReceiveContext) ValidateLine(part *SparePart, line PartLine) error {
	return validateCommon(part, line)
}

var (
	_ LineContext = IssueContext{}
	_ LineContext = PurchaseContext{}
	_ LineContext = SaleContext{}
	_ LineContext = ReceiveContext{}
)
