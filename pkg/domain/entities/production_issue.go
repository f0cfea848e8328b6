package entities

import (
	"fmt"
	"strings"
	"time"
)

// IssueStatus is the lifecycle state of a ProductionIssue
type IssueStatus string

const (
	IssueDraft             IssueStatus = "draft"
	IssueIssued            IssueStatus = "issued"
	IssuePartiallyReturned IssueStatus = "partially_returned"
	IssueClosed            IssueStatus = "closed"
	IssueCancelled         IssueStatus = "cancelled"
)

// ProductionIssueLifecycle is the ProductionIssue state machine
var ProductionIssueLifecycle = NewStateMachine(KindProductionIssue,
	[]IssueStatus{IssueDraft},
	map[IssueStatus][]IssueStatus{
		IssueDraft:             {IssueIssued, IssueCancelled},
		IssueIssued:            {IssuePartiallyReturned, IssueClosed},
		IssuePartiallyReturned: {IssueClosed},
		IssueClosed:            nil,
		IssueCancelled:         nil,
	})

// IssueItem is one part issued to production from a source location
type IssueItem struct {
	ID               string   `json:"id"`
	SparePartID      string   `json:"spare_part_id"`
	FromLocationID   string   `json:"from_location_id"`
	Quantity         Quantity `json:"quantity"`
	QuantityReturned Quantity `json:"quantity_returned"`
	MachineID        string   `json:"machine_id,omitempty"`
	Remarks          string   `json:"remarks,omitempty"`
}

// ReturnCondition grades parts coming back from production
type ReturnCondition string

const (
	ConditionGood    ReturnCondition = "good"
	ConditionDamaged ReturnCondition = "damaged"
	ConditionScrap   ReturnCondition = "scrap"
)

// ReturnItem is one returned line. Only good parts go back into stock.
type ReturnItem struct {
	IssueItemID  string          `json:"issue_item_id"`
	SparePartID  string          `json:"spare_part_id"`
	Quantity     Quantity        `json:"quantity"`
	Condition    ReturnCondition `json:"condition"`
	ToLocationID string          `json:"to_location_id"`
}

// ProductionReturn records unused parts coming back from the line
type ProductionReturn struct {
	ID         string       `json:"id"`
	Number     string       `json:"number"`
	Date       time.Time    `json:"date"`
	ReturnedBy string       `json:"returned_by"`
	Reason     string       `json:"reason,omitempty"`
	Items      []ReturnItem `json:"items"`
}

// ProductionIssue hands spare parts to a production line. Returns are owned
// by the issue they reverse.
type ProductionIssue struct {
	DocumentHeader
	ProductionLineID string             `json:"production_line_id"`
	WorkOrder        string             `json:"work_order,omitempty"`
	RequestedBy      string             `json:"requested_by"`
	IssuedBy         string             `json:"issued_by,omitempty"`
	IssuedDate       *time.Time         `json:"issued_date,omitempty"`
	Status           IssueStatus        `json:"status"`
	Items            []IssueItem        `json:"items"`
	Returns          []ProductionReturn `json:"returns,omitempty"`
}

// NewProductionIssue creates a draft issue
func NewProductionIssue(header DocumentHeader, productionLineID, requestedBy string, items []IssueItem) (*ProductionIssue, error) {
	if productionLineID == "" {
		return nil, NewValidationError("production_line_id", nil, "production line cannot be empty")
	}
	if strings.TrimSpace(requestedBy) == "" {
		return nil, NewValidationError("requested_by", nil, "requester cannot be empty")
	}
	if len(items) == 0 {
		return nil, NewValidationError("items", nil, "issue must have at least one item")
	}
	out := make([]IssueItem, len(items))
	for i, it := range items {
		if it.SparePartID == "" {
			return nil, NewValidationError("items.spare_part_id", nil, "spare part cannot be empty")
		}
		if it.FromLocationID == "" {
			return nil, NewValidationError("items.from_location_id", nil, "source location cannot be empty")
		}
		if it.Quantity <= 0 {
			return nil, NewValidationError("items.quantity", it.Quantity, "quantity must be positive")
		}
		if it.ID == "" {
			it.ID = NewID()
		}
		it.QuantityReturned = 0
		out[i] = it
	}
	return &ProductionIssue{
		DocumentHeader:   header,
		ProductionLineID: productionLineID,
		RequestedBy:      requestedBy,
		Status:           IssueDraft,
		Items:            out,
	}, nil
}

func (*ProductionIssue) Kind() DocumentKind  { return KindProductionIssue }
func (pi *ProductionIssue) State() string    { return string(pi.Status) }
func (pi *ProductionIssue) RefIDs() []string { return nil }

func (pi *ProductionIssue) CloneDocument() Document {
	c := *pi
	c.Items = append([]IssueItem(nil), pi.Items...)
	c.IssuedDate = cloneTime(pi.IssuedDate)
	if pi.Returns != nil {
		c.Returns = make([]ProductionReturn, len(pi.Returns))
		for i, r := range pi.Returns {
			r.Items = append([]ReturnItem(nil), r.Items...)
			c.Returns[i] = r
		}
	}
	return &c
}

func (pi *ProductionIssue) transition(to IssueStatus, at time.Time) error {
	if err := ProductionIssueLifecycle.Check(pi.ID, pi.Status, to); err != nil {
		return err
	}
	pi.Status = to
	pi.touch(at)
	return nil
}

// Item returns the line with the given id
func (pi *ProductionIssue) Item(id string) (*IssueItem, bool) {
	for i := range pi.Items {
		if pi.Items[i].ID == id {
			return &pi.Items[i], true
		}
	}
	return nil, false
}

// Issue records the parts leaving the stores
func (pi *ProductionIssue) Issue(issuedBy string, at time.Time) error {
	if strings.TrimSpace(issuedBy) == "" {
		return NewValidationError("issued_by", nil, "issuer cannot be empty")
	}
	if err := pi.transition(IssueIssued, at); err != nil {
		return err
	}
	pi.IssuedBy = issuedBy
	pi.IssuedDate = timePtr(at)
	return nil
}

// RecordReturn appends a return and moves the issue to partially_returned.
// The return's items are checked against the issued quantities and their
// SparePartID filled in from the issue line.
func (pi *ProductionIssue) RecordReturn(ret ProductionReturn, at time.Time) (*ProductionReturn, error) {
	if pi.Status != IssueIssued && pi.Status != IssuePartiallyReturned {
		return nil, &InvalidTransitionError{
			Kind:   KindProductionIssue,
			ID:     pi.ID,
			From:   string(pi.Status),
			To:     string(IssuePartiallyReturned),
			Reason: "only issued parts can be returned",
		}
	}
	if len(ret.Items) == 0 {
		return nil, NewValidationError("items", nil, "return must have at least one item")
	}
	pending := make(map[string]Quantity, len(pi.Items))
	for _, it := range pi.Items {
		pending[it.ID] = it.Quantity - it.QuantityReturned
	}
	items := make([]ReturnItem, len(ret.Items))
	for i, r := range ret.Items {
		it, ok := pi.Item(r.IssueItemID)
		if !ok {
			return nil, NewNotFoundError("production issue item", r.IssueItemID)
		}
		if r.Quantity <= 0 {
			return nil, NewValidationError("items.quantity", r.Quantity, "quantity must be positive")
		}
		if r.Quantity > pending[it.ID] {
			return nil, NewValidationError("items.quantity", r.Quantity,
				fmt.Sprintf("return exceeds the %d still out", pending[it.ID]))
		}
		switch r.Condition {
		case "":
			r.Condition = ConditionGood
		case ConditionGood, ConditionDamaged, ConditionScrap:
		default:
			return nil, NewValidationError("items.condition", r.Condition, "unknown condition")
		}
		if r.ToLocationID == "" {
			r.ToLocationID = it.FromLocationID
		}
		pending[it.ID] -= r.Quantity
		r.SparePartID = it.SparePartID
		items[i] = r
	}
	for _, r := range items {
		it, _ := pi.Item(r.IssueItemID)
		it.QuantityReturned += r.Quantity
	}
	if ret.ID == "" {
		ret.ID = NewID()
	}
	if ret.Date.IsZero() {
		ret.Date = at
	}
	ret.Items = items
	pi.Returns = append(pi.Returns, ret)
	if pi.Status == IssuePartiallyReturned {
		pi.touch(at)
	} else if err := pi.transition(IssuePartiallyReturned, at); err != nil {
		return nil, err
	}
	return &pi.Returns[len(pi.Returns)-1], nil
}

// Close closes the issue
func (pi *ProductionIssue) Close(at time.Time) error {
	return pi.transition(IssueClosed, at)
}

// Cancel cancels a draft issue
func (pi *ProductionIssue) Cancel(at time.Time) error {
	return pi.transition(IssueCancelled, at)
}
