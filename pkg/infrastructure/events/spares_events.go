package events

import (
	"time"

	"github.com/vsinha/spares/pkg/domain/entities"
)

const (
	StockReceivedEvent          = "stock.received"
	StockIssuedEvent            = "stock.issued"
	StockReservedEvent          = "stock.reserved"
	StockReleasedEvent          = "stock.released"
	StockAdjustedEvent          = "stock.adjusted"
	StockBelowReorderPointEvent = "stock.below_reorder_point"

	DocumentCreatedEvent      = "document.created"
	DocumentTransitionedEvent = "document.transitioned"
)

// StockMoved is the payload of the stock.* movement events
type StockMoved struct {
	Movement entities.StockMovement `json:"movement"`
}

// StockBelowReorderPoint is raised when available stock of a part at a
// location falls to or below the part's reorder point
type StockBelowReorderPoint struct {
	SparePartID  string              `json:"spare_part_id"`
	PartNumber   entities.PartNumber `json:"part_number"`
	LocationID   string              `json:"location_id"`
	Available    entities.Quantity   `json:"available"`
	ReorderPoint entities.Quantity   `json:"reorder_point"`
}

// DocumentCreated is raised for every new document
type DocumentCreated struct {
	Kind   entities.DocumentKind `json:"kind"`
	Number string                `json:"number"`
	Status string                `json:"status"`
}

// DocumentTransitioned is raised when a document changes status
type DocumentTransitioned struct {
	Kind   entities.DocumentKind `json:"kind"`
	Number string                `json:"number"`
	From   string                `json:"from"`
	To     string                `json:"to"`
}

// MovementEvent maps a ledger line to its event
func MovementEvent(m *entities.StockMovement) Event {
	eventType := StockReceivedEvent
	switch m.Type {
	case entities.MovementIssue:
		eventType = StockIssuedEvent
	case entities.MovementReserve:
		eventType = StockReservedEvent
	case entities.MovementRelease:
		eventType = StockReleasedEvent
	case entities.MovementAdjustment:
		eventType = StockAdjustedEvent
	}
	key := entities.StockKey{SparePartID: m.SparePartID, LocationID: m.LocationID}
	return NewEvent(eventType, key.String(), StockMoved{Movement: *m}, m.CreatedAt)
}

// Created returns the document.created event for doc
func Created(doc entities.Document, at time.Time) Event {
	return NewEvent(DocumentCreatedEvent, doc.DocID(), DocumentCreated{
		Kind:   doc.Kind(),
		Number: doc.DocNumber(),
		Status: doc.State(),
	}, at)
}

// Transitioned returns the document.transitioned event for doc
func Transitioned(doc entities.Document, from string, at time.Time) Event {
	return NewEvent(DocumentTransitionedEvent, doc.DocID(), DocumentTransitioned{
		Kind:   doc.Kind(),
		Number: doc.DocNumber(),
		From:   from,
		To:     doc.State(),
	}, at)
}
