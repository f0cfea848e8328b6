package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DCType says whether goods on a challan are expected back
type DCType string

const (
	DCReturnable    DCType = "returnable"
	DCNonReturnable DCType = "non_returnable"
)

// DCStatus is the lifecycle state of a DeliveryChallan
type DCStatus string

const (
	DCDraft         DCStatus = "draft"
	DCDispatched    DCStatus = "dispatched"
	DCReceived      DCStatus = "received"
	DCReturned      DCStatus = "returned"
	DCPartialReturn DCStatus = "partial_return"
	DCCancelled     DCStatus = "cancelled"
)

// DeliveryChallanLifecycle is the DeliveryChallan state machine
var DeliveryChallanLifecycle = NewStateMachine(KindDeliveryChallan,
	[]DCStatus{DCDraft},
	map[DCStatus][]DCStatus{
		DCDraft:         {DCDispatched, DCCancelled},
		DCDispatched:    {DCReceived, DCReturned, DCPartialReturn},
		DCPartialReturn: {DCReturned},
		DCReceived:      nil,
		DCReturned:      nil,
		DCCancelled:     nil,
	})

// DCPurpose records why goods left the premises
type DCPurpose string

const (
	PurposeRework   DCPurpose = "rework"
	PurposeJobWork  DCPurpose = "job_work"
	PurposeSample   DCPurpose = "sample"
	PurposeTransfer DCPurpose = "transfer"
	PurposeOther    DCPurpose = "other"
)

// DCItem is one dispatched part
type DCItem struct {
	ID               string          `json:"id"`
	SparePartID      string          `json:"spare_part_id"`
	SerialNumber     string          `json:"serial_number,omitempty"`
	Quantity         Quantity        `json:"quantity"`
	QuantityReturned Quantity        `json:"quantity_returned"`
	UnitValue        decimal.Decimal `json:"unit_value"`
	Remarks          string          `json:"remarks,omitempty"`
}

// Pending returns the quantity not yet returned
func (it DCItem) Pending() Quantity {
	return it.Quantity - it.QuantityReturned
}

// DeliveryChallan accompanies goods leaving a location. Only returnable
// challans carry return dates.
type DeliveryChallan struct {
	DocumentHeader
	Type           DCType     `json:"dc_type"`
	Purpose        DCPurpose  `json:"purpose"`
	PartyID        string     `json:"party_id"`
	FromLocationID string     `json:"from_location_id"`
	ReworkID       string     `json:"rework_id,omitempty"`
	VehicleNumber  string     `json:"vehicle_number,omitempty"`
	ReturnDueDate  *time.Time `json:"return_due_date,omitempty"`
	DispatchedDate *time.Time `json:"dispatched_date,omitempty"`
	ReturnedDate   *time.Time `json:"returned_date,omitempty"`
	Status         DCStatus   `json:"status"`
	Items          []DCItem   `json:"items"`
}

// NewDeliveryChallan creates a draft challan
func NewDeliveryChallan(header DocumentHeader, dcType DCType, purpose DCPurpose, partyID, fromLocationID string, returnDueDate *time.Time, items []DCItem) (*DeliveryChallan, error) {
	switch dcType {
	case DCReturnable:
	case DCNonReturnable:
		if returnDueDate != nil {
			return nil, NewValidationError("return_due_date", returnDueDate, "only returnable challans carry a return due date")
		}
	default:
		return nil, NewValidationError("dc_type", dcType, "challan type must be returnable or non_returnable")
	}
	switch purpose {
	case "":
		purpose = PurposeOther
	case PurposeRework, PurposeJobWork, PurposeSample, PurposeTransfer, PurposeOther:
	default:
		return nil, NewValidationError("purpose", purpose, "unknown challan purpose")
	}
	if partyID == "" {
		return nil, NewValidationError("party_id", nil, "party cannot be empty")
	}
	if fromLocationID == "" {
		return nil, NewValidationError("from_location_id", nil, "source location cannot be empty")
	}
	if returnDueDate != nil && returnDueDate.Before(header.Date) {
		return nil, NewValidationError("return_due_date", returnDueDate, "return due date precedes the challan date")
	}
	if len(items) == 0 {
		return nil, NewValidationError("items", nil, "challan must have at least one item")
	}
	out := make([]DCItem, len(items))
	for i, it := range items {
		if it.SparePartID == "" {
			return nil, NewValidationError("items.spare_part_id", nil, "spare part cannot be empty")
		}
		if it.Quantity <= 0 {
			return nil, NewValidationError("items.quantity", it.Quantity, "quantity must be positive")
		}
		if it.UnitValue.IsNegative() {
			return nil, NewValidationError("items.unit_value", it.UnitValue, "value cannot be negative")
		}
		if it.ID == "" {
			it.ID = NewID()
		}
		it.QuantityReturned = 0
		out[i] = it
	}
	return &DeliveryChallan{
		DocumentHeader: header,
		Type:           dcType,
		Purpose:        purpose,
		PartyID:        partyID,
		FromLocationID: fromLocationID,
		ReturnDueDate:  cloneTime(returnDueDate),
		Status:         DCDraft,
		Items:          out,
	}, nil
}

func (*DeliveryChallan) Kind() DocumentKind  { return KindDeliveryChallan }
func (dc *DeliveryChallan) State() string    { return string(dc.Status) }
func (dc *DeliveryChallan) RefIDs() []string { return nonEmpty(dc.ReworkID) }

func (dc *DeliveryChallan) CloneDocument() Document {
	c := *dc
	c.Items = append([]DCItem(nil), dc.Items...)
	c.ReturnDueDate = cloneTime(dc.ReturnDueDate)
	c.DispatchedDate = cloneTime(dc.DispatchedDate)
	c.ReturnedDate = cloneTime(dc.ReturnedDate)
	return &c
}

func (dc *DeliveryChallan) transition(to DCStatus, at time.Time) error {
	if err := DeliveryChallanLifecycle.Check(dc.ID, dc.Status, to); err != nil {
		return err
	}
	dc.Status = to
	dc.touch(at)
	return nil
}

// Item returns the line with the given id
func (dc *DeliveryChallan) Item(id string) (*DCItem, bool) {
	for i := range dc.Items {
		if dc.Items[i].ID == id {
			return &dc.Items[i], true
		}
	}
	return nil, false
}

// TotalValue returns the declared value of the goods
func (dc *DeliveryChallan) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, it := range dc.Items {
		total = total.Add(it.UnitValue.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Dispatch records the goods leaving
func (dc *DeliveryChallan) Dispatch(vehicleNumber string, at time.Time) error {
	if err := dc.transition(DCDispatched, at); err != nil {
		return err
	}
	dc.VehicleNumber = vehicleNumber
	dc.DispatchedDate = timePtr(at)
	return nil
}

// MarkReceived confirms delivery of a non-returnable challan
func (dc *DeliveryChallan) MarkReceived(at time.Time) error {
	if dc.Type != DCNonReturnable {
		return &InvalidTransitionError{
			Kind:   KindDeliveryChallan,
			ID:     dc.ID,
			From:   string(dc.Status),
			To:     string(DCReceived),
			Reason: "returnable challans are closed by returning the goods",
		}
	}
	return dc.transition(DCReceived, at)
}

// RecordReturn books goods coming back on a returnable challan. returns maps
// item id to quantity. The challan becomes returned once nothing is pending.
func (dc *DeliveryChallan) RecordReturn(returns map[string]Quantity, at time.Time) error {
	if dc.Type != DCReturnable {
		return &InvalidTransitionError{
			Kind:   KindDeliveryChallan,
			ID:     dc.ID,
			From:   string(dc.Status),
			To:     string(DCReturned),
			Reason: "non-returnable challans cannot be returned",
		}
	}
	if dc.Status != DCDispatched && dc.Status != DCPartialReturn {
		return &InvalidTransitionError{
			Kind:   KindDeliveryChallan,
			ID:     dc.ID,
			From:   string(dc.Status),
			To:     string(DCReturned),
			Reason: "goods have not been dispatched",
		}
	}
	var total Quantity
	for id, qty := range returns {
		it, ok := dc.Item(id)
		if !ok {
			return NewNotFoundError("delivery challan item", id)
		}
		if qty < 0 || qty > it.Pending() {
			return NewValidationError("quantity_returned", qty,
				fmt.Sprintf("return exceeds pending quantity %d", it.Pending()))
		}
		total += qty
	}
	if total == 0 {
		return NewValidationError("quantity_returned", nil, "nothing to return")
	}
	for id, qty := range returns {
		it, _ := dc.Item(id)
		it.QuantityReturned += qty
	}

	dc.ReturnedDate = timePtr(at)
	if dc.pending() > 0 {
		if dc.Status == DCPartialReturn {
			dc.touch(at)
			return nil
		}
		return dc.transition(DCPartialReturn, at)
	}
	return dc.transition(DCReturned, at)
}

func (dc *DeliveryChallan) pending() Quantity {
	var n Quantity
	for _, it := range dc.Items {
		n += it.Pending()
	}
	return n
}

// Overdue reports whether a returnable challan is past its due date with
// goods still out
func (dc *DeliveryChallan) Overdue(now time.Time) bool {
	if dc.Type != DCReturnable || dc.ReturnDueDate == nil {
		return false
	}
	if dc.Status != DCDispatched && dc.Status != DCPartialReturn {
		return false
	}
	return now.After(*dc.ReturnDueDate)
}

// Cancel cancels a draft challan
func (dc *DeliveryChallan) Cancel(at time.Time) error {
	return dc.transition(DCCancelled, at)
}
