package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReworkStatus is the lifecycle state of a Rework order
type ReworkStatus string

const (
	ReworkDraft       ReworkStatus = "draft"
	ReworkDCGenerated ReworkStatus = "dc_generated"
	ReworkSent        ReworkStatus = "sent"
	ReworkInService   ReworkStatus = "in_service"
	ReworkReceived    ReworkStatus = "received"
	ReworkCompleted   ReworkStatus = "completed"
)

// ReworkLifecycle is the Rework state machine
var ReworkLifecycle = NewStateMachine(KindRework,
	[]ReworkStatus{ReworkDraft},
	map[ReworkStatus][]ReworkStatus{
		ReworkDraft:       {ReworkDCGenerated},
		ReworkDCGenerated: {ReworkSent},
		ReworkSent:        {ReworkInService},
		ReworkInService:   {ReworkReceived},
		ReworkReceived:    {ReworkCompleted},
		ReworkCompleted:   nil,
	})

// ReworkItem is one part sent out for repair
type ReworkItem struct {
	ID                 string          `json:"id"`
	SparePartID        string          `json:"spare_part_id"`
	SerialNumber       string          `json:"serial_number,omitempty"`
	ProblemDescription string          `json:"problem_description"`
	QuantitySent       Quantity        `json:"quantity_sent"`
	QuantityReceived   Quantity        `json:"quantity_received"`
	QuantityRejected   Quantity        `json:"quantity_rejected"`
	EstimatedCost      decimal.Decimal `json:"estimated_cost"`
	ActualCost         decimal.Decimal `json:"actual_cost"`
	DCItemID           string          `json:"dc_item_id,omitempty"`
}

// Outstanding returns the quantity still at the vendor
func (it ReworkItem) Outstanding() Quantity {
	return it.QuantitySent - it.QuantityReceived - it.QuantityRejected
}

// Reconciled reports whether every unit sent came back or was written off
func (it ReworkItem) Reconciled() bool {
	return it.Outstanding() == 0
}

// Rework tracks parts sent to a service vendor for repair. It owns exactly
// one returnable DeliveryChallan.
type Rework struct {
	DocumentHeader
	VendorID           string       `json:"vendor_id"`
	LocationID         string       `json:"location_id"`
	DeliveryChallanID  string       `json:"delivery_challan_id,omitempty"`
	ExpectedReturnDate *time.Time   `json:"expected_return_date,omitempty"`
	SentDate           *time.Time   `json:"sent_date,omitempty"`
	ReceivedDate       *time.Time   `json:"received_date,omitempty"`
	Status             ReworkStatus `json:"status"`
	Items              []ReworkItem `json:"items"`
}

// NewRework creates a draft rework order
func NewRework(header DocumentHeader, vendorID, locationID string, expectedReturn *time.Time, items []ReworkItem) (*Rework, error) {
	if vendorID == "" {
		return nil, NewValidationError("vendor_id", nil, "service vendor cannot be empty")
	}
	if locationID == "" {
		return nil, NewValidationError("location_id", nil, "location cannot be empty")
	}
	if len(items) == 0 {
		return nil, NewValidationError("items", nil, "rework must have at least one item")
	}
	out := make([]ReworkItem, len(items))
	for i, it := range items {
		if it.SparePartID == "" {
			return nil, NewValidationError("items.spare_part_id", nil, "spare part cannot be empty")
		}
		if it.QuantitySent <= 0 {
			return nil, NewValidationError("items.quantity_sent", it.QuantitySent, "quantity must be positive")
		}
		if strings.TrimSpace(it.ProblemDescription) == "" {
			return nil, NewValidationError("items.problem_description", nil, "describe the problem")
		}
		if it.EstimatedCost.IsNegative() {
			return nil, NewValidationError("items.estimated_cost", it.EstimatedCost, "cost cannot be negative")
		}
		if it.ID == "" {
			it.ID = NewID()
		}
		it.QuantityReceived, it.QuantityRejected = 0, 0
		it.ActualCost = decimal.Zero
		out[i] = it
	}
	return &Rework{
		DocumentHeader:     header,
		VendorID:           vendorID,
		LocationID:         locationID,
		ExpectedReturnDate: cloneTime(expectedReturn),
		Status:             ReworkDraft,
		Items:              out,
	}, nil
}

func (*Rework) Kind() DocumentKind  { return KindRework }
func (rw *Rework) State() string    { return string(rw.Status) }
func (rw *Rework) RefIDs() []string { return nonEmpty(rw.DeliveryChallanID) }

func (rw *Rework) CloneDocument() Document {
	c := *rw
	c.Items = append([]ReworkItem(nil), rw.Items...)
	c.ExpectedReturnDate = cloneTime(rw.ExpectedReturnDate)
	c.SentDate = cloneTime(rw.SentDate)
	c.ReceivedDate = cloneTime(rw.ReceivedDate)
	return &c
}

func (rw *Rework) transition(to ReworkStatus, at time.Time) error {
	if err := ReworkLifecycle.Check(rw.ID, rw.Status, to); err != nil {
		return err
	}
	rw.Status = to
	rw.touch(at)
	return nil
}

// Item returns the line with the given id
func (rw *Rework) Item(id string) (*ReworkItem, bool) {
	for i := range rw.Items {
		if rw.Items[i].ID == id {
			return &rw.Items[i], true
		}
	}
	return nil, false
}

// ChallanItems returns the challan lines for the parts being sent
func (rw *Rework) ChallanItems() []DCItem {
	out := make([]DCItem, len(rw.Items))
	for i, it := range rw.Items {
		out[i] = DCItem{
			ID:           NewID(),
			SparePartID:  it.SparePartID,
			SerialNumber: it.SerialNumber,
			Quantity:     it.QuantitySent,
			UnitValue:    it.EstimatedCost,
			Remarks:      it.ProblemDescription,
		}
	}
	return out
}

// AttachChallan links the generated challan. dc must have been built from
// ChallanItems so that lines pair up by position.
func (rw *Rework) AttachChallan(dc *DeliveryChallan, at time.Time) error {
	if rw.DeliveryChallanID != "" {
		return &InvalidTransitionError{
			Kind:   KindRework,
			ID:     rw.ID,
			From:   string(rw.Status),
			To:     string(ReworkDCGenerated),
			Reason: "a delivery challan already exists for this rework",
		}
	}
	if dc.Type != DCReturnable {
		return NewValidationError("dc_type", dc.Type, "rework needs a returnable challan")
	}
	if len(dc.Items) != len(rw.Items) {
		return NewValidationError("items", len(dc.Items), "challan lines do not match the rework lines")
	}
	if err := rw.transition(ReworkDCGenerated, at); err != nil {
		return err
	}
	rw.DeliveryChallanID = dc.ID
	for i := range rw.Items {
		rw.Items[i].DCItemID = dc.Items[i].ID
	}
	return nil
}

// MarkSent records the goods leaving with the challan
func (rw *Rework) MarkSent(at time.Time) error {
	if err := rw.transition(ReworkSent, at); err != nil {
		return err
	}
	rw.SentDate = timePtr(at)
	return nil
}

// MarkInService records the vendor starting work
func (rw *Rework) MarkInService(at time.Time) error {
	return rw.transition(ReworkInService, at)
}

// ReworkReceipt reports what came back for one item
type ReworkReceipt struct {
	ItemID     string
	Received   Quantity
	Rejected   Quantity
	ActualCost decimal.Decimal
}

// RecordReceipt books repaired and rejected quantities. The first receipt
// moves the rework to received; further receipts may follow until it is
// completed.
func (rw *Rework) RecordReceipt(receipts []ReworkReceipt, at time.Time) error {
	if rw.Status != ReworkInService && rw.Status != ReworkReceived {
		return &InvalidTransitionError{
			Kind:   KindRework,
			ID:     rw.ID,
			From:   string(rw.Status),
			To:     string(ReworkReceived),
			Reason: "parts are not at the vendor",
		}
	}
	if len(receipts) == 0 {
		return NewValidationError("items", nil, "nothing received")
	}
	pending := make(map[string]Quantity, len(rw.Items))
	for _, it := range rw.Items {
		pending[it.ID] = it.Outstanding()
	}
	for _, r := range receipts {
		if _, ok := pending[r.ItemID]; !ok {
			return NewNotFoundError("rework item", r.ItemID)
		}
		if r.Received < 0 || r.Rejected < 0 || r.ActualCost.IsNegative() {
			return NewValidationError("quantity_received", r.Received, "quantities and costs cannot be negative")
		}
		if r.Received+r.Rejected > pending[r.ItemID] {
			return NewValidationError("quantity_received", r.Received+r.Rejected,
				fmt.Sprintf("more than the %d outstanding", pending[r.ItemID]))
		}
		pending[r.ItemID] -= r.Received + r.Rejected
	}
	for _, r := range receipts {
		it, _ := rw.Item(r.ItemID)
		it.QuantityReceived += r.Received
		it.QuantityRejected += r.Rejected
		it.ActualCost = it.ActualCost.Add(r.ActualCost)
	}
	rw.ReceivedDate = timePtr(at)
	if rw.Status == ReworkReceived {
		rw.touch(at)
		return nil
	}
	return rw.transition(ReworkReceived, at)
}

// Reconciled reports whether every item is reconciled
func (rw *Rework) Reconciled() bool {
	for _, it := range rw.Items {
		if !it.Reconciled() {
			return false
		}
	}
	return true
}

// Complete closes the rework once every item is reconciled
func (rw *Rework) Complete(at time.Time) error {
	if err := ReworkLifecycle.Check(rw.ID, rw.Status, ReworkCompleted); err != nil {
		return err
	}
	if !rw.Reconciled() {
		return &InvalidTransitionError{
			Kind:   KindRework,
			ID:     rw.ID,
			From:   string(rw.Status),
			To:     string(ReworkCompleted),
			Reason: "not every item has been received or rejected",
		}
	}
	return rw.transition(ReworkCompleted, at)
}

// TotalCost returns the actual repair cost
func (rw *Rework) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, it := range rw.Items {
		total = total.Add(it.ActualCost)
	}
	return total
}
