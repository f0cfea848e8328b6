package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/gst"
)

// GRNStatus is the lifecycle state of a goods received note
type GRNStatus string

const (
	GRNDraft     GRNStatus = "draft"
	GRNCompleted GRNStatus = "completed"
	GRNPartial   GRNStatus = "partial"
	GRNRejected  GRNStatus = "rejected"
)

// GRNLifecycle is the GRN state machine. Posting is the only transition.
var GRNLifecycle = NewStateMachine(KindGRN,
	[]GRNStatus{GRNDraft},
	map[GRNStatus][]GRNStatus{
		GRNDraft:     {GRNCompleted, GRNPartial, GRNRejected},
		GRNCompleted: nil,
		GRNPartial:   nil,
		GRNRejected:  nil,
	})

// GRNItem records the receipt of one purchase order line
type GRNItem struct {
	ID               string          `json:"id"`
	POItemID         string          `json:"po_item_id"`
	SparePartID      string          `json:"spare_part_id"`
	OrderedQuantity  Quantity        `json:"ordered_quantity"`
	ReceivedQuantity Quantity        `json:"received_quantity"`
	AcceptedQuantity Quantity        `json:"accepted_quantity"`
	RejectedQuantity Quantity        `json:"rejected_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	GSTRate          gst.Rate        `json:"gst_rate"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	Tax              gst.Breakdown   `json:"tax"`
}

func (it GRNItem) validate() error {
	if it.POItemID == "" || it.SparePartID == "" {
		return NewValidationError("items.po_item_id", nil, "GRN line must reference a purchase order line")
	}
	if it.ReceivedQuantity < 0 || it.AcceptedQuantity < 0 || it.RejectedQuantity < 0 {
		return NewValidationError("items.received_quantity", it.ReceivedQuantity, "quantities cannot be negative")
	}
	if it.ReceivedQuantity > it.OrderedQuantity {
		return NewValidationError("items.received_quantity", it.ReceivedQuantity, "received quantity exceeds ordered quantity")
	}
	if it.AcceptedQuantity+it.RejectedQuantity != it.ReceivedQuantity {
		return NewValidationError("items.accepted_quantity", it.AcceptedQuantity, "accepted and rejected quantities must add up to the received quantity")
	}
	if it.RejectedQuantity > 0 && strings.TrimSpace(it.RejectionReason) == "" {
		return NewValidationError("items.rejection_reason", nil, "rejected quantities need a reason")
	}
	return nil
}

// GRN records the physical receipt of goods ordered on one PurchaseOrder.
// Amounts covers accepted quantities only.
type GRN struct {
	DocumentHeader
	PurchaseOrderID string        `json:"purchase_order_id"`
	SupplierID      string        `json:"supplier_id"`
	LocationID      string        `json:"location_id"`
	InvoiceNumber   string        `json:"invoice_number,omitempty"`
	InvoiceDate     *time.Time    `json:"invoice_date,omitempty"`
	ReceivedBy      string        `json:"received_by"`
	InspectedBy     string        `json:"inspected_by,omitempty"`
	InterState      bool          `json:"inter_state"`
	Status          GRNStatus     `json:"status"`
	Items           []GRNItem     `json:"items"`
	Amounts         gst.Breakdown `json:"amounts"`
}

// NewGRN creates a draft GRN against po
func NewGRN(header DocumentHeader, po *PurchaseOrder, locationID, receivedBy string, items []GRNItem) (*GRN, error) {
	if po == nil {
		return nil, NewValidationError("purchase_order_id", nil, "GRN must reference a purchase order")
	}
	if locationID == "" {
		locationID = po.DeliveryLocationID
	}
	if strings.TrimSpace(receivedBy) == "" {
		return nil, NewValidationError("received_by", nil, "receiver cannot be empty")
	}
	if len(items) == 0 {
		return nil, NewValidationError("items", nil, "GRN must have at least one item")
	}
	seen := make(map[string]bool, len(items))
	var received Quantity
	out := make([]GRNItem, len(items))
	for i, it := range items {
		if seen[it.POItemID] {
			return nil, NewValidationError("items.po_item_id", it.POItemID, "purchase order line appears twice")
		}
		seen[it.POItemID] = true
		if err := it.validate(); err != nil {
			return nil, err
		}
		if it.ID == "" {
			it.ID = NewID()
		}
		received += it.ReceivedQuantity
		out[i] = it
	}
	if received == 0 {
		return nil, NewValidationError("items.received_quantity", nil, "nothing was received")
	}
	g := &GRN{
		DocumentHeader:  header,
		PurchaseOrderID: po.ID,
		SupplierID:      po.SupplierID,
		LocationID:      locationID,
		ReceivedBy:      receivedBy,
		InterState:      po.InterState,
		Status:          GRNDraft,
		Items:           out,
	}
	g.Recalculate()
	return g, nil
}

func (*GRN) Kind() DocumentKind { return KindGRN }
func (g *GRN) State() string    { return string(g.Status) }
func (g *GRN) RefIDs() []string { return nonEmpty(g.PurchaseOrderID) }

func (g *GRN) CloneDocument() Document {
	c := *g
	c.Items = append([]GRNItem(nil), g.Items...)
	c.InvoiceDate = cloneTime(g.InvoiceDate)
	return &c
}

// Recalculate prices the accepted quantities
func (g *GRN) Recalculate() {
	lines := make([]gst.Breakdown, len(g.Items))
	for i := range g.Items {
		it := &g.Items[i]
		it.Tax = priceLine(it.AcceptedQuantity, it.UnitPrice, decimal.Zero, it.GSTRate, g.InterState)
		lines[i] = it.Tax
	}
	g.Amounts = gst.Sum(lines...).Round()
}

// Item returns the line with the given id
func (g *GRN) Item(id string) (*GRNItem, bool) {
	for i := range g.Items {
		if g.Items[i].ID == id {
			return &g.Items[i], true
		}
	}
	return nil, false
}

// Outcome returns the status posting will move the GRN to: completed when
// every received unit was accepted, rejected when none were, partial otherwise
func (g *GRN) Outcome() GRNStatus {
	var accepted, rejected Quantity
	for _, it := range g.Items {
		accepted += it.AcceptedQuantity
		rejected += it.RejectedQuantity
	}
	switch {
	case accepted == 0:
		return GRNRejected
	case rejected == 0:
		return GRNCompleted
	default:
		return GRNPartial
	}
}

// Post finalizes the GRN. A posted GRN cannot be posted again.
func (g *GRN) Post(inspectedBy string, at time.Time) error {
	to := g.Outcome()
	if err := GRNLifecycle.Check(g.ID, g.Status, to); err != nil {
		return err
	}
	g.InspectedBy = inspectedBy
	g.Status = to
	g.touch(at)
	return nil
}

// AcceptedByPOItem returns accepted quantities keyed by purchase order line
func (g *GRN) AcceptedByPOItem() map[string]Quantity {
	out := make(map[string]Quantity, len(g.Items))
	for _, it := range g.Items {
		if it.AcceptedQuantity > 0 {
			out[it.POItemID] += it.AcceptedQuantity
		}
	}
	return out
}
