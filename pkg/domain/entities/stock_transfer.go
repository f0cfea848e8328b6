package entities

import (
	"fmt"
	"time"
)

// TransferStatus is the lifecycle state of a StockTransfer
type TransferStatus string

const (
	TransferDraft     TransferStatus = "draft"
	TransferPending   TransferStatus = "pending"
	TransferInTransit TransferStatus = "in_transit"
	TransferReceived  TransferStatus = "received"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// StockTransferLifecycle is the StockTransfer state machine
var StockTransferLifecycle = NewStateMachine(KindStockTransfer,
	[]TransferStatus{TransferDraft},
	map[TransferStatus][]TransferStatus{
		TransferDraft:     {TransferPending, TransferCancelled},
		TransferPending:   {TransferInTransit, TransferCancelled},
		TransferInTransit: {TransferReceived},
		TransferReceived:  {TransferCompleted},
		TransferCompleted: nil,
		TransferCancelled: nil,
	})

// TransferItem is one part moving between locations
type TransferItem struct {
	ID                string   `json:"id"`
	SparePartID       string   `json:"spare_part_id"`
	QuantityRequested Quantity `json:"quantity_requested"`
	QuantitySent      Quantity `json:"quantity_sent"`
	QuantityReceived  Quantity `json:"quantity_received"`
	Remarks           string   `json:"remarks,omitempty"`
}

// StockTransfer moves stock from one location to another. Submitting it
// reserves the requested quantities at the source.
type StockTransfer struct {
	DocumentHeader
	FromLocationID string         `json:"from_location_id"`
	ToLocationID   string         `json:"to_location_id"`
	RequestedBy    string         `json:"requested_by"`
	Status         TransferStatus `json:"status"`
	DispatchedDate *time.Time     `json:"dispatched_date,omitempty"`
	ReceivedDate   *time.Time     `json:"received_date,omitempty"`
	Items          []TransferItem `json:"items"`
}

// NewStockTransfer creates a draft transfer between two distinct locations
func NewStockTransfer(header DocumentHeader, fromLocationID, toLocationID, requestedBy string, items []TransferItem) (*StockTransfer, error) {
	if fromLocationID == "" || toLocationID == "" {
		return nil, NewValidationError("from_location_id", nil, "source and destination are required")
	}
	if fromLocationID == toLocationID {
		return nil, NewValidationError("to_location_id", toLocationID, "source and destination must differ")
	}
	if len(items) == 0 {
		return nil, NewValidationError("items", nil, "transfer must have at least one item")
	}
	seen := make(map[string]bool, len(items))
	out := make([]TransferItem, len(items))
	for i, it := range items {
		if it.SparePartID == "" {
			return nil, NewValidationError("items.spare_part_id", nil, "spare part cannot be empty")
		}
		if seen[it.SparePartID] {
			return nil, NewValidationError("items.spare_part_id", it.SparePartID, "part appears twice")
		}
		seen[it.SparePartID] = true
		if it.QuantityRequested <= 0 {
			return nil, NewValidationError("items.quantity_requested", it.QuantityRequested, "quantity must be positive")
		}
		if it.ID == "" {
			it.ID = NewID()
		}
		it.QuantitySent, it.QuantityReceived = 0, 0
		out[i] = it
	}
	return &StockTransfer{
		DocumentHeader: header,
		FromLocationID: fromLocationID,
		ToLocationID:   toLocationID,
		RequestedBy:    requestedBy,
		Status:         TransferDraft,
		Items:          out,
	}, nil
}

func (*StockTransfer) Kind() DocumentKind  { return KindStockTransfer }
func (st *StockTransfer) State() string    { return string(st.Status) }
func (st *StockTransfer) RefIDs() []string { return nil }

func (st *StockTransfer) CloneDocument() Document {
	c := *st
	c.Items = append([]TransferItem(nil), st.Items...)
	c.DispatchedDate = cloneTime(st.DispatchedDate)
	c.ReceivedDate = cloneTime(st.ReceivedDate)
	return &c
}

func (st *StockTransfer) transition(to TransferStatus, at time.Time) error {
	if err := StockTransferLifecycle.Check(st.ID, st.Status, to); err != nil {
		return err
	}
	st.Status = to
	st.touch(at)
	return nil
}

func (st *StockTransfer) item(id string) (*TransferItem, bool) {
	for i := range st.Items {
		if st.Items[i].ID == id {
			return &st.Items[i], true
		}
	}
	return nil, false
}

// Submit moves a draft transfer to pending
func (st *StockTransfer) Submit(at time.Time) error {
	return st.transition(TransferPending, at)
}

// Dispatch records what left the source. sent maps item id to quantity;
// items not present ship in full. Sent never exceeds requested.
func (st *StockTransfer) Dispatch(sent map[string]Quantity, at time.Time) error {
	if err := StockTransferLifecycle.Check(st.ID, st.Status, TransferInTransit); err != nil {
		return err
	}
	for id := range sent {
		if _, ok := st.item(id); !ok {
			return NewNotFoundError("transfer item", id)
		}
	}
	quantities := make([]Quantity, len(st.Items))
	var total Quantity
	for i, it := range st.Items {
		qty, ok := sent[it.ID]
		if !ok {
			qty = it.QuantityRequested
		}
		if qty < 0 || qty > it.QuantityRequested {
			return NewValidationError("quantity_sent", qty,
				fmt.Sprintf("sent quantity must be between 0 and the requested %d", it.QuantityRequested))
		}
		quantities[i] = qty
		total += qty
	}
	if total == 0 {
		return NewValidationError("quantity_sent", nil, "nothing to dispatch")
	}
	for i := range st.Items {
		st.Items[i].QuantitySent = quantities[i]
	}
	st.DispatchedDate = timePtr(at)
	return st.transition(TransferInTransit, at)
}

// Receive records what arrived at the destination. received maps item id to
// quantity; items not present arrive in full. Received never exceeds sent.
func (st *StockTransfer) Receive(received map[string]Quantity, at time.Time) error {
	if err := StockTransferLifecycle.Check(st.ID, st.Status, TransferReceived); err != nil {
		return err
	}
	for id := range received {
		if _, ok := st.item(id); !ok {
			return NewNotFoundError("transfer item", id)
		}
	}
	quantities := make([]Quantity, len(st.Items))
	for i, it := range st.Items {
		qty, ok := received[it.ID]
		if !ok {
			qty = it.QuantitySent
		}
		if qty < 0 || qty > it.QuantitySent {
			return NewValidationError("quantity_received", qty,
				fmt.Sprintf("received quantity must be between 0 and the sent %d", it.QuantitySent))
		}
		quantities[i] = qty
	}
	for i := range st.Items {
		st.Items[i].QuantityReceived = quantities[i]
	}
	st.ReceivedDate = timePtr(at)
	return st.transition(TransferReceived, at)
}

// Complete closes a received transfer
func (st *StockTransfer) Complete(at time.Time) error {
	return st.transition(TransferCompleted, at)
}

// Cancel cancels a transfer before dispatch
func (st *StockTransfer) Cancel(at time.Time) error {
	return st.transition(TransferCancelled, at)
}

// Reserving reports whether the transfer currently holds a reservation at
// the source
func (st *StockTransfer) Reserving() bool {
	return st.Status == TransferPending
}

// InTransitLoss returns sent minus received per item id
func (st *StockTransfer) InTransitLoss() map[string]Quantity {
	out := make(map[string]Quantity)
	for _, it := range st.Items {
		if d := it.QuantitySent - it.QuantityReceived; d > 0 {
			out[it.ID] = d
		}
	}
	return out
}
