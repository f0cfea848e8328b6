package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IndentStatus is the lifecycle state of an Indent
type IndentStatus string

const (
	IndentDraft           IndentStatus = "draft"
	IndentPendingApproval IndentStatus = "pending_approval"
	IndentApproved        IndentStatus = "approved"
	IndentRejected        IndentStatus = "rejected"
	IndentConvertedToPO   IndentStatus = "converted_to_po"
	IndentCancelled       IndentStatus = "cancelled"
)

// IndentLifecycle is the Indent state machine
var IndentLifecycle = NewStateMachine(KindIndent,
	[]IndentStatus{IndentDraft, IndentPendingApproval},
	map[IndentStatus][]IndentStatus{
		IndentDraft:           {IndentPendingApproval, IndentCancelled},
		IndentPendingApproval: {IndentApproved, IndentRejected, IndentCancelled},
		IndentApproved:        {IndentConvertedToPO, IndentCancelled},
		IndentRejected:        nil,
		IndentConvertedToPO:   nil,
		IndentCancelled:       nil,
	})

// Priority of an internal requisition
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IndentItem is one requested part
type IndentItem struct {
	ID                string          `json:"id"`
	SparePartID       string          `json:"spare_part_id"`
	QuantityRequested Quantity        `json:"quantity_requested"`
	QuantityApproved  Quantity        `json:"quantity_approved"`
	EstimatedUnitCost decimal.Decimal `json:"estimated_unit_cost"`
	Remarks           string          `json:"remarks,omitempty"`
}

// Indent is an internal purchase requisition that must be approved before it
// becomes a PurchaseOrder
type Indent struct {
	DocumentHeader
	LocationID      string       `json:"location_id"`
	Department      string       `json:"department,omitempty"`
	RequestedBy     string       `json:"requested_by"`
	Priority        Priority     `json:"priority"`
	RequiredDate    *time.Time   `json:"required_date,omitempty"`
	Status          IndentStatus `json:"status"`
	ApprovedBy      string       `json:"approved_by,omitempty"`
	ApprovedDate    *time.Time   `json:"approved_date,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	PurchaseOrderID string       `json:"purchase_order_id,omitempty"`
	Items           []IndentItem `json:"items"`
}

// NewIndent creates an indent in draft or pending_approval
func NewIndent(header DocumentHeader, locationID, requestedBy string, priority Priority, status IndentStatus, items []IndentItem) (*Indent, error) {
	if status == "" {
		status = IndentDraft
	}
	if err := IndentLifecycle.CheckInitial(header.ID, status); err != nil {
		return nil, err
	}
	if locationID == "" {
		return nil, NewValidationError("location_id", nil, "location cannot be empty")
	}
	if strings.TrimSpace(requestedBy) == "" {
		return nil, NewValidationError("requested_by", nil, "requester cannot be empty")
	}
	switch priority {
	case "":
		priority = PriorityNormal
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
	default:
		return nil, NewValidationError("priority", priority, "unknown priority")
	}
	if len(items) == 0 {
		return nil, NewValidationError("items", nil, "indent must have at least one item")
	}
	out := make([]IndentItem, len(items))
	for i, it := range items {
		if it.SparePartID == "" {
			return nil, NewValidationError("items.spare_part_id", nil, "spare part cannot be empty")
		}
		if it.QuantityRequested <= 0 {
			return nil, NewValidationError("items.quantity_requested", it.QuantityRequested, "quantity must be positive")
		}
		if it.EstimatedUnitCost.IsNegative() {
			return nil, NewValidationError("items.estimated_unit_cost", it.EstimatedUnitCost, "cost cannot be negative")
		}
		it.ID = NewID()
		it.QuantityApproved = 0
		out[i] = it
	}
	return &Indent{
		DocumentHeader: header,
		LocationID:     locationID,
		RequestedBy:    requestedBy,
		Priority:       priority,
		Status:         status,
		Items:          out,
	}, nil
}

func (*Indent) Kind() DocumentKind  { return KindIndent }
func (in *Indent) State() string    { return string(in.Status) }
func (in *Indent) RefIDs() []string { return nonEmpty(in.PurchaseOrderID) }

func (in *Indent) CloneDocument() Document {
	c := *in
	c.Items = append([]IndentItem(nil), in.Items...)
	c.RequiredDate = cloneTime(in.RequiredDate)
	c.ApprovedDate = cloneTime(in.ApprovedDate)
	return &c
}

func (in *Indent) transition(to IndentStatus, at time.Time) error {
	if err := IndentLifecycle.Check(in.ID, in.Status, to); err != nil {
		return err
	}
	in.Status = to
	in.touch(at)
	return nil
}

// EstimatedTotal returns the requested value at estimated cost
func (in *Indent) EstimatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range in.Items {
		qty := it.QuantityRequested
		if in.Status == IndentApproved || in.Status == IndentConvertedToPO {
			qty = it.QuantityApproved
		}
		total = total.Add(it.EstimatedUnitCost.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// Submit sends a draft indent for approval
func (in *Indent) Submit(at time.Time) error {
	return in.transition(IndentPendingApproval, at)
}

// Approve approves the indent. approvals maps item id to the approved
// quantity; items not present are approved in full. A quantity of zero drops
// the line, and at least one line must remain.
func (in *Indent) Approve(approvals map[string]Quantity, approver string, at time.Time) error {
	if err := IndentLifecycle.Check(in.ID, in.Status, IndentApproved); err != nil {
		return err
	}
	if strings.TrimSpace(approver) == "" {
		return NewValidationError("approved_by", nil, "approver cannot be empty")
	}
	known := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		known[it.ID] = true
	}
	for id := range approvals {
		if !known[id] {
			return NewNotFoundError("indent item", id)
		}
	}

	approved := make([]Quantity, len(in.Items))
	var any bool
	for i, it := range in.Items {
		qty, ok := approvals[it.ID]
		if !ok {
			qty = it.QuantityRequested
		}
		if qty < 0 || qty > it.QuantityRequested {
			return NewValidationError("quantity_approved", qty, "approved quantity must be between 0 and the requested quantity")
		}
		if qty > 0 {
			any = true
		}
		approved[i] = qty
	}
	if !any {
		return NewValidationError("quantity_approved", nil, "at least one line must be approved")
	}

	for i := range in.Items {
		in.Items[i].QuantityApproved = approved[i]
	}
	in.ApprovedBy = approver
	in.ApprovedDate = timePtr(at)
	return in.transition(IndentApproved, at)
}

// Reject rejects a pending indent
func (in *Indent) Reject(reason, by string, at time.Time) error {
	if err := IndentLifecycle.Check(in.ID, in.Status, IndentRejected); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return NewValidationError("rejection_reason", nil, "a rejection reason is required")
	}
	in.RejectionReason = reason
	in.ApprovedBy = by
	in.ApprovedDate = timePtr(at)
	return in.transition(IndentRejected, at)
}

// Cancel cancels the indent
func (in *Indent) Cancel(at time.Time) error {
	return in.transition(IndentCancelled, at)
}

// MarkConverted links the indent to the purchase order created from it
func (in *Indent) MarkConverted(purchaseOrderID string, at time.Time) error {
	if in.PurchaseOrderID != "" {
		return &InvalidTransitionError{
			Kind:   KindIndent,
			ID:     in.ID,
			From:   string(in.Status),
			To:     string(IndentConvertedToPO),
			Reason: "indent already references purchase order " + in.PurchaseOrderID,
		}
	}
	if err := in.transition(IndentConvertedToPO, at); err != nil {
		return err
	}
	in.PurchaseOrderID = purchaseOrderID
	return nil
}

// ApprovedItems returns the lines with a non-zero approved quantity
func (in *Indent) ApprovedItems() []IndentItem {
	var out []IndentItem
	for _, it := range in.Items {
		if it.QuantityApproved > 0 {
			out = append(out, it)
		}
	}
	return out
}
