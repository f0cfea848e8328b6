package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/gst"
)

// CreditNoteStatus is the lifecycle state of a CreditNote
type CreditNoteStatus string

const (
	CreditNoteDraft     CreditNoteStatus = "draft"
	CreditNoteIssued    CreditNoteStatus = "issued"
	CreditNoteAdjusted  CreditNoteStatus = "adjusted"
	CreditNoteCancelled CreditNoteStatus = "cancelled"
)

// CreditNoteLifecycle is the CreditNote state machine
var CreditNoteLifecycle = NewStateMachine(KindCreditNote,
	[]CreditNoteStatus{CreditNoteDraft},
	map[CreditNoteStatus][]CreditNoteStatus{
		CreditNoteDraft:     {CreditNoteIssued, CreditNoteCancelled},
		CreditNoteIssued:    {CreditNoteAdjusted, CreditNoteCancelled},
		CreditNoteAdjusted:  nil,
		CreditNoteCancelled: nil,
	})

// CreditReason explains a credit note
type CreditReason string

const (
	ReasonQuality         CreditReason = "quality"
	ReasonPriceDifference CreditReason = "price_difference"
	ReasonShortSupply     CreditReason = "short_supply"
	ReasonDamaged         CreditReason = "damaged"
	ReasonOther           CreditReason = "other"
)

// CreditNoteItem credits part of one GRN or purchase order line
type CreditNoteItem struct {
	ID           string          `json:"id"`
	SourceItemID string          `json:"source_item_id"`
	SparePartID  string          `json:"spare_part_id"`
	Quantity     Quantity        `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	GSTRate      gst.Rate        `json:"gst_rate"`
	Tax          gst.Breakdown   `json:"tax"`
}

// CreditNote is raised against a supplier for a GRN or purchase order. Its
// tax mirrors the referenced document's rates and inter-state flag.
type CreditNote struct {
	DocumentHeader
	SupplierID      string           `json:"supplier_id"`
	GRNID           string           `json:"grn_id,omitempty"`
	PurchaseOrderID string           `json:"purchase_order_id"`
	Reason          CreditReason     `json:"reason"`
	InterState      bool             `json:"inter_state"`
	Status          CreditNoteStatus `json:"status"`
	AdjustedAgainst string           `json:"adjusted_against,omitempty"`
	Items           []CreditNoteItem `json:"items"`
	Amounts         gst.Breakdown    `json:"amounts"`
}

// NewCreditNote creates a draft credit note
func NewCreditNote(header DocumentHeader, supplierID, purchaseOrderID, grnID string, reason CreditReason, interState bool, items []CreditNoteItem) (*CreditNote, error) {
	if supplierID == "" {
		return nil, NewValidationError("supplier_id", nil, "supplier cannot be empty")
	}
	if purchaseOrderID == "" {
		return nil, NewValidationError("purchase_order_id", nil, "credit note must reference a purchase order")
	}
	switch reason {
	case ReasonQuality, ReasonPriceDifference, ReasonShortSupply, ReasonDamaged, ReasonOther:
	default:
		return nil, NewValidationError("reason", reason, "unknown credit reason")
	}
	if len(items) == 0 {
		return nil, NewValidationError("items", nil, "credit note must have at least one item")
	}
	out := make([]CreditNoteItem, len(items))
	for i, it := range items {
		if it.SourceItemID == "" || it.SparePartID == "" {
			return nil, NewValidationError("items.source_item_id", nil, "credit line must reference a source line")
		}
		if it.Quantity <= 0 {
			return nil, NewValidationError("items.quantity", it.Quantity, "quantity must be positive")
		}
		if !it.UnitPrice.IsPositive() {
			return nil, NewValidationError("items.unit_price", it.UnitPrice, "unit price must be positive")
		}
		if !it.GSTRate.Valid() {
			return nil, NewValidationError("items.gst_rate", it.GSTRate, "GST rate must be one of 5, 12, 18, 28")
		}
		if it.ID == "" {
			it.ID = NewID()
		}
		out[i] = it
	}
	cn := &CreditNote{
		DocumentHeader:  header,
		SupplierID:      supplierID,
		GRNID:           grnID,
		PurchaseOrderID: purchaseOrderID,
		Reason:          reason,
		InterState:      interState,
		Status:          CreditNoteDraft,
		Items:           out,
	}
	cn.Recalculate()
	return cn, nil
}

func (*CreditNote) Kind() DocumentKind  { return KindCreditNote }
func (cn *CreditNote) State() string    { return string(cn.Status) }
func (cn *CreditNote) RefIDs() []string { return nonEmpty(cn.PurchaseOrderID, cn.GRNID) }

func (cn *CreditNote) CloneDocument() Document {
	c := *cn
	c.Items = append([]CreditNoteItem(nil), cn.Items...)
	return &c
}

// Recalculate prices the credited lines
func (cn *CreditNote) Recalculate() {
	lines := make([]gst.Breakdown, len(cn.Items))
	for i := range cn.Items {
		it := &cn.Items[i]
		it.Tax = priceLine(it.Quantity, it.UnitPrice, decimal.Zero, it.GSTRate, cn.InterState)
		lines[i] = it.Tax
	}
	cn.Amounts = gst.Sum(lines...).Round()
}

func (cn *CreditNote) transition(to CreditNoteStatus, at time.Time) error {
	if err := CreditNoteLifecycle.Check(cn.ID, cn.Status, to); err != nil {
		return err
	}
	cn.Status = to
	cn.touch(at)
	return nil
}

// Issue sends the credit note to the supplier
func (cn *CreditNote) Issue(at time.Time) error {
	return cn.transition(CreditNoteIssued, at)
}

// Adjust records the payment or invoice the credit was set off against
func (cn *CreditNote) Adjust(against string, at time.Time) error {
	if strings.TrimSpace(against) == "" {
		return NewValidationError("adjusted_against", nil, "adjustment reference cannot be empty")
	}
	if err := cn.transition(CreditNoteAdjusted, at); err != nil {
		return err
	}
	cn.AdjustedAgainst = against
	return nil
}

// Cancel cancels the credit note
func (cn *CreditNote) Cancel(at time.Time) error {
	return cn.transition(CreditNoteCancelled, at)
}
