package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/gst"
)

// POStatus is the lifecycle state of a PurchaseOrder
type POStatus string

const (
	PODraft        POStatus = "draft"
	POSent         POStatus = "sent"
	POAcknowledged POStatus = "acknowledged"
	POPartial      POStatus = "partial"
	POCompleted    POStatus = "completed"
	POCancelled    POStatus = "cancelled"
)

// PurchaseOrderLifecycle is the PurchaseOrder state machine
var PurchaseOrderLifecycle = NewStateMachine(KindPurchaseOrder,
	[]POStatus{PODraft},
	map[POStatus][]POStatus{
		PODraft:        {POSent, POCancelled},
		POSent:         {POAcknowledged, POCancelled},
		POAcknowledged: {POPartial, POCompleted, POCancelled},
		POPartial:      {POCompleted},
		POCompleted:    nil,
		POCancelled:    nil,
	})

// POItem is one ordered part. Tax holds the unrounded line breakdown.
type POItem struct {
	ID               string          `json:"id"`
	SparePartID      string          `json:"spare_part_id"`
	IndentItemID     string          `json:"indent_item_id,omitempty"`
	Quantity         Quantity        `json:"quantity"`
	QuantityReceived Quantity        `json:"quantity_received"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Discount         decimal.Decimal `json:"discount"`
	GSTRate          gst.Rate        `json:"gst_rate"`
	Tax              gst.Breakdown   `json:"tax"`
}

// Outstanding returns the quantity still to be received
func (it POItem) Outstanding() Quantity {
	if it.QuantityReceived >= it.Quantity {
		return 0
	}
	return it.Quantity - it.QuantityReceived
}

// PurchaseOrder is an order placed with a supplier. Amounts is the sum of the
// line breakdowns rounded once at the document total.
type PurchaseOrder struct {
	DocumentHeader
	SupplierID         string        `json:"supplier_id"`
	IndentID           string        `json:"indent_id,omitempty"`
	DeliveryLocationID string        `json:"delivery_location_id"`
	ExpectedDate       *time.Time    `json:"expected_date,omitempty"`
	PaymentTerms       string        `json:"payment_terms,omitempty"`
	InterState         bool          `json:"inter_state"`
	Status             POStatus      `json:"status"`
	Items              []POItem      `json:"items"`
	Amounts            gst.Breakdown `json:"amounts"`
}

// NewPurchaseOrder creates a draft purchase order and prices its lines
func NewPurchaseOrder(header DocumentHeader, supplierID, deliveryLocationID string, interState bool, items []POItem) (*PurchaseOrder, error) {
	if supplierID == "" {
		return nil, NewValidationError("supplier_id", nil, "supplier cannot be empty")
	}
	if deliveryLocationID == "" {
		return nil, NewValidationError("delivery_location_id", nil, "delivery location cannot be empty")
	}
	po := &PurchaseOrder{
		DocumentHeader:     header,
		SupplierID:         supplierID,
		DeliveryLocationID: deliveryLocationID,
		InterState:         interState,
		Status:             PODraft,
	}
	if err := po.setItems(items); err != nil {
		return nil, err
	}
	return po, nil
}

func (*PurchaseOrder) Kind() DocumentKind  { return KindPurchaseOrder }
func (po *PurchaseOrder) State() string    { return string(po.Status) }
func (po *PurchaseOrder) RefIDs() []string { return nonEmpty(po.IndentID) }

func (po *PurchaseOrder) CloneDocument() Document {
	c := *po
	c.Items = append([]POItem(nil), po.Items...)
	c.ExpectedDate = cloneTime(po.ExpectedDate)
	return &c
}

func (po *PurchaseOrder) setItems(items []POItem) error {
	if len(items) == 0 {
		return NewValidationError("items", nil, "purchase order must have at least one item")
	}
	out := make([]POItem, len(items))
	for i, it := range items {
		if it.SparePartID == "" {
			return NewValidationError("items.spare_part_id", nil, "spare part cannot be empty")
		}
		if it.Quantity <= 0 {
			return NewValidationError("items.quantity", it.Quantity, "quantity must be positive")
		}
		if !it.UnitPrice.IsPositive() {
			return NewValidationError("items.unit_price", it.UnitPrice, "unit price must be positive")
		}
		if it.Discount.IsNegative() || it.Discount.GreaterThan(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
			return NewValidationError("items.discount", it.Discount, "discount must be between zero and the line value")
		}
		if !it.GSTRate.Valid() {
			return NewValidationError("items.gst_rate", it.GSTRate, "GST rate must be one of 5, 12, 18, 28")
		}
		if it.ID == "" {
			it.ID = NewID()
		}
		it.QuantityReceived = 0
		out[i] = it
	}
	po.Items = out
	po.Recalculate()
	return nil
}

// Recalculate reprices every line and the document total
func (po *PurchaseOrder) Recalculate() {
	lines := make([]gst.Breakdown, len(po.Items))
	for i := range po.Items {
		it := &po.Items[i]
		it.Tax = priceLine(it.Quantity, it.UnitPrice, it.Discount, it.GSTRate, po.InterState)
		lines[i] = it.Tax
	}
	po.Amounts = gst.Sum(lines...).Round()
}

// ReplaceItems swaps the order lines while the order is still a draft
func (po *PurchaseOrder) ReplaceItems(items []POItem, at time.Time) error {
	if po.Status != PODraft {
		return &InvalidTransitionError{
			Kind:   KindPurchaseOrder,
			ID:     po.ID,
			From:   string(po.Status),
			Reason: "items can only be changed on a draft order",
		}
	}
	if err := po.setItems(items); err != nil {
		return err
	}
	po.touch(at)
	return nil
}

func (po *PurchaseOrder) transition(to POStatus, at time.Time) error {
	if err := PurchaseOrderLifecycle.Check(po.ID, po.Status, to); err != nil {
		return err
	}
	po.Status = to
	po.touch(at)
	return nil
}

// Send releases the order to the supplier
func (po *PurchaseOrder) Send(at time.Time) error {
	return po.transition(POSent, at)
}

// Acknowledge records the supplier's confirmation
func (po *PurchaseOrder) Acknowledge(at time.Time) error {
	return po.transition(POAcknowledged, at)
}

// Cancel cancels an order before any goods are received
func (po *PurchaseOrder) Cancel(at time.Time) error {
	return po.transition(POCancelled, at)
}

// CanReceive reports whether goods may be received against the order
func (po *PurchaseOrder) CanReceive() bool {
	switch po.Status {
	case POSent, POAcknowledged, POPartial:
		return true
	}
	return false
}

// Item returns the line with the given id
func (po *PurchaseOrder) Item(id string) (*POItem, bool) {
	for i := range po.Items {
		if po.Items[i].ID == id {
			return &po.Items[i], true
		}
	}
	return nil, false
}

// FullyReceived reports whether no line has an outstanding quantity
func (po *PurchaseOrder) FullyReceived() bool {
	for _, it := range po.Items {
		if it.Outstanding() > 0 {
			return false
		}
	}
	return true
}

// ApplyReceipt books accepted quantities per line and moves the order to
// partial or completed. A sent order is acknowledged implicitly.
func (po *PurchaseOrder) ApplyReceipt(accepted map[string]Quantity, at time.Time) error {
	if !po.CanReceive() {
		return &InvalidTransitionError{
			Kind:   KindPurchaseOrder,
			ID:     po.ID,
			From:   string(po.Status),
			Reason: "goods cannot be received against this order",
		}
	}
	for id, qty := range accepted {
		it, ok := po.Item(id)
		if !ok {
			return NewNotFoundError("purchase order item", id)
		}
		if qty < 0 || qty > it.Outstanding() {
			return NewValidationError("quantity", qty,
				fmt.Sprintf("receipt exceeds outstanding quantity %d", it.Outstanding()))
		}
	}
	for id, qty := range accepted {
		it, _ := po.Item(id)
		it.QuantityReceived += qty
	}

	if po.Status == POSent {
		if err := po.transition(POAcknowledged, at); err != nil {
			return err
		}
	}
	target := POPartial
	if po.FullyReceived() {
		target = POCompleted
	}
	if target == po.Status {
		po.touch(at)
		return nil
	}
	return po.transition(target, at)
}
