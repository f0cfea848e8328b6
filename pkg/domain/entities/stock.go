package entities

import (
	"fmt"
	"time"
)

// StockLevel is the on-hand/reserved ledger row for one part at one location.
// QuantityAvailable is always QuantityOnHand - QuantityReserved and never negative.
type StockLevel struct {
	ID               string    `json:"id"`
	SparePartID      string    `json:"spare_part_id"`
	LocationID       string    `json:"location_id"`
	QuantityOnHand   Quantity  `json:"quantity_on_hand"`
	QuantityReserved Quantity  `json:"quantity_reserved"`
	LastUpdated      time.Time `json:"last_updated"`
}

// NewStockLevel creates an empty stock row
func NewStockLevel(sparePartID, locationID string, at time.Time) (*StockLevel, error) {
	if sparePartID == "" {
		return nil, NewValidationError("spare_part_id", nil, "spare part cannot be empty")
	}
	if locationID == "" {
		return nil, NewValidationError("location_id", nil, "location cannot be empty")
	}
	return &StockLevel{
		ID:          NewID(),
		SparePartID: sparePartID,
		LocationID:  locationID,
		LastUpdated: at,
	}, nil
}

// StockKey identifies a stock row
type StockKey struct {
	SparePartID string
	LocationID  string
}

func (k StockKey) String() string {
	return fmt.Sprintf("%s@%s", k.SparePartID, k.LocationID)
}

// Key returns the (part, location) key of the row
func (s *StockLevel) Key() StockKey {
	return StockKey{SparePartID: s.SparePartID, LocationID: s.LocationID}
}

// QuantityAvailable returns on-hand stock not held by a reservation
func (s *StockLevel) QuantityAvailable() Quantity {
	return s.QuantityOnHand - s.QuantityReserved
}

// CheckInvariant verifies available = onHand - reserved >= 0
func (s *StockLevel) CheckInvariant() error {
	if s.QuantityOnHand < 0 || s.QuantityReserved < 0 || s.QuantityAvailable() < 0 {
		return fmt.Errorf("stock row %s violates invariant: on hand %d, reserved %d",
			s.Key(), s.QuantityOnHand, s.QuantityReserved)
	}
	return nil
}

func (s *StockLevel) insufficient(requested Quantity) error {
	return &InsufficientStockError{
		SparePartID: s.SparePartID,
		LocationID:  s.LocationID,
		Requested:   requested,
		Available:   s.QuantityAvailable(),
	}
}

func positive(field string, qty Quantity) error {
	if qty <= 0 {
		return NewValidationError(field, qty, "quantity must be positive")
	}
	return nil
}

// Receive adds qty to on-hand stock
func (s *StockLevel) Receive(qty Quantity, at time.Time) error {
	if err := positive("quantity", qty); err != nil {
		return err
	}
	s.QuantityOnHand += qty
	s.LastUpdated = at
	return nil
}

// Issue removes qty from unreserved stock
func (s *StockLevel) Issue(qty Quantity, at time.Time) error {
	if err := positive("quantity", qty); err != nil {
		return err
	}
	if qty > s.QuantityAvailable() {
		return s.insufficient(qty)
	}
	s.QuantityOnHand -= qty
	s.LastUpdated = at
	return nil
}

// Reserve holds qty of available stock for a pending document
func (s *StockLevel) Reserve(qty Quantity, at time.Time) error {
	if err := positive("quantity", qty); err != nil {
		return err
	}
	if qty > s.QuantityAvailable() {
		return s.insufficient(qty)
	}
	s.QuantityReserved += qty
	s.LastUpdated = at
	return nil
}

// Release returns qty of reserved stock to available
func (s *StockLevel) Release(qty Quantity, at time.Time) error {
	if err := positive("quantity", qty); err != nil {
		return err
	}
	if qty > s.QuantityReserved {
		return NewValidationError("quantity", qty, fmt.Sprintf("cannot release more than the %d reserved", s.QuantityReserved))
	}
	s.QuantityReserved -= qty
	s.LastUpdated = at
	return nil
}

// ConsumeReserved ships qty out of stock that was previously reserved
func (s *StockLevel) ConsumeReserved(qty Quantity, at time.Time) error {
	if err := positive("quantity", qty); err != nil {
		return err
	}
	if qty > s.QuantityReserved {
		return NewValidationError("quantity", qty, fmt.Sprintf("cannot consume more than the %d reserved", s.QuantityReserved))
	}
	s.QuantityReserved -= qty
	s.QuantityOnHand -= qty
	s.LastUpdated = at
	return nil
}

// SetOnHand overwrites on-hand stock after a physical count. The count may
// not fall below what is reserved. Returns the signed change.
func (s *StockLevel) SetOnHand(counted Quantity, at time.Time) (Quantity, error) {
	if counted < 0 {
		return 0, NewValidationError("quantity", counted, "counted quantity cannot be negative")
	}
	if counted < s.QuantityReserved {
		return 0, &InsufficientStockError{
			SparePartID: s.SparePartID,
			LocationID:  s.LocationID,
			Requested:   s.QuantityReserved,
			Available:   counted,
		}
	}
	delta := counted - s.QuantityOnHand
	s.QuantityOnHand = counted
	s.LastUpdated = at
	return delta, nil
}

// MovementType classifies a stock ledger line
type MovementType string

const (
	MovementReceipt    MovementType = "receipt"
	MovementIssue      MovementType = "issue"
	MovementReserve    MovementType = "reserve"
	MovementRelease    MovementType = "release"
	MovementAdjustment MovementType = "adjustment"
)

// IsOut reports whether the movement reduces on-hand stock
func (t MovementType) IsOut() bool {
	return t == MovementIssue
}

// StockMovement is an append-only ledger line recording one change to a
// stock row and the document that caused it
type StockMovement struct {
	ID             string       `json:"id"`
	SparePartID    string       `json:"spare_part_id"`
	LocationID     string       `json:"location_id"`
	Type           MovementType `json:"type"`
	Quantity       Quantity     `json:"quantity"`
	OnHandAfter    Quantity     `json:"on_hand_after"`
	ReservedAfter  Quantity     `json:"reserved_after"`
	DocumentKind   DocumentKind `json:"document_kind"`
	DocumentID     string       `json:"document_id"`
	DocumentNumber string       `json:"document_number"`
	Reason         string       `json:"reason,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// DocumentRef names the document behind a stock movement
type DocumentRef struct {
	Kind   DocumentKind
	ID     string
	Number string
}

// RefOf returns the reference of a document
func RefOf(d Document) DocumentRef {
	return DocumentRef{Kind: d.Kind(), ID: d.DocID(), Number: d.DocNumber()}
}

// NewStockMovement records the state of level right after a change of qty
func NewStockMovement(level *StockLevel, movementType MovementType, qty Quantity, ref DocumentRef, reason string, at time.Time) *StockMovement {
	return &StockMovement{
		ID:             NewID(),
		SparePartID:    level.SparePartID,
		LocationID:     level.LocationID,
		Type:           movementType,
		Quantity:       qty,
		OnHandAfter:    level.QuantityOnHand,
		ReservedAfter:  level.QuantityReserved,
		DocumentKind:   ref.Kind,
		DocumentID:     ref.ID,
		DocumentNumber: ref.Number,
		Reason:         reason,
		CreatedAt:      at,
	}
}
