package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/gst"
)

// InvoiceStatus is the lifecycle state of a SaleInvoice
type InvoiceStatus string

const (
	InvoiceDraft        InvoiceStatus = "draft"
	InvoiceGenerated    InvoiceStatus = "generated"
	InvoiceIRNPending   InvoiceStatus = "irn_pending"
	InvoiceIRNGenerated InvoiceStatus = "irn_generated"
	InvoiceCancelled    InvoiceStatus = "cancelled"
)

// SaleInvoiceLifecycle is the SaleInvoice state machine
var SaleInvoiceLifecycle = NewStateMachine(KindSaleInvoice,
	[]InvoiceStatus{InvoiceDraft},
	map[InvoiceStatus][]InvoiceStatus{
		InvoiceDraft:        {InvoiceGenerated, InvoiceCancelled},
		InvoiceGenerated:    {InvoiceIRNPending, InvoiceCancelled},
		InvoiceIRNPending:   {InvoiceIRNGenerated},
		InvoiceIRNGenerated: nil,
		InvoiceCancelled:    nil,
	})

// InvoiceItem is one sold part. Tax holds the unrounded line breakdown.
type InvoiceItem struct {
	ID          string          `json:"id"`
	SparePartID string          `json:"spare_part_id"`
	HSNCode     string          `json:"hsn_code"`
	Quantity    Quantity        `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	GSTRate     gst.Rate        `json:"gst_rate"`
	Tax         gst.Breakdown   `json:"tax"`
}

// Customer is the billed party of an invoice
type Customer struct {
	Name    string `json:"name"`
	GSTIN   string `json:"gstin,omitempty"`
	Address string `json:"address,omitempty"`
	State   string `json:"state,omitempty"`
}

// SaleInvoice is a GST tax invoice, optionally registered for an e-invoice
// IRN. Total = Subtotal - Discount + CGST + SGST + IGST + RoundingAdjustment.
type SaleInvoice struct {
	DocumentHeader
	Customer           Customer        `json:"customer"`
	LocationID         string          `json:"location_id"`
	InterState         bool            `json:"inter_state"`
	Status             InvoiceStatus   `json:"status"`
	Items              []InvoiceItem   `json:"items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount_amount"`
	CGST               decimal.Decimal `json:"cgst_amount"`
	SGST               decimal.Decimal `json:"sgst_amount"`
	IGST               decimal.Decimal `json:"igst_amount"`
	RoundingAdjustment decimal.Decimal `json:"rounding_adjustment"`
	Total              decimal.Decimal `json:"total_amount"`
	IRN                string          `json:"irn,omitempty"`
	AckNumber          string          `json:"ack_number,omitempty"`
	AckDate            *time.Time      `json:"ack_date,omitempty"`
	IRNError           string          `json:"irn_error,omitempty"`
}

// NewSaleInvoice creates a draft invoice and prices its lines
func NewSaleInvoice(header DocumentHeader, customer Customer, locationID string, interState bool, items []InvoiceItem) (*SaleInvoice, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.GSTIN = strings.ToUpper(strings.TrimSpace(customer.GSTIN))
	if customer.Name == "" {
		return nil, NewValidationError("customer.name", nil, "customer name cannot be empty")
	}
	if customer.GSTIN != "" && !gst.ValidGSTIN(customer.GSTIN) {
		return nil, NewValidationError("customer.gstin", customer.GSTIN, "malformed GSTIN")
	}
	if locationID == "" {
		return nil, NewValidationError("location_id", nil, "location cannot be empty")
	}
	if len(items) == 0 {
		return nil, NewValidationError("items", nil, "invoice must have at least one item")
	}
	out := make([]InvoiceItem, len(items))
	for i, it := range items {
		if it.SparePartID == "" {
			return nil, NewValidationError("items.spare_part_id", nil, "spare part cannot be empty")
		}
		if it.Quantity <= 0 {
			return nil, NewValidationError("items.quantity", it.Quantity, "quantity must be positive")
		}
		if !it.UnitPrice.IsPositive() {
			return nil, NewValidationError("items.unit_price", it.UnitPrice, "unit price must be positive")
		}
		if it.Discount.IsNegative() || it.Discount.GreaterThan(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
			return nil, NewValidationError("items.discount", it.Discount, "discount must be between zero and the line value")
		}
		if !it.GSTRate.Valid() {
			return nil, NewValidationError("items.gst_rate", it.GSTRate, "GST rate must be one of 5, 12, 18, 28")
		}
		if it.ID == "" {
			it.ID = NewID()
		}
		out[i] = it
	}
	inv := &SaleInvoice{
		DocumentHeader: header,
		Customer:       customer,
		LocationID:     locationID,
		InterState:     interState,
		Status:         InvoiceDraft,
		Items:          out,
	}
	inv.Recalculate()
	return inv, nil
}

func (*SaleInvoice) Kind() DocumentKind   { return KindSaleInvoice }
func (inv *SaleInvoice) State() string    { return string(inv.Status) }
func (inv *SaleInvoice) RefIDs() []string { return nil }

func (inv *SaleInvoice) CloneDocument() Document {
	c := *inv
	c.Items = append([]InvoiceItem(nil), inv.Items...)
	c.AckDate = cloneTime(inv.AckDate)
	return &c
}

// Recalculate prices every line and rounds the payable total to the nearest
// rupee, keeping the difference in RoundingAdjustment
func (inv *SaleInvoice) Recalculate() {
	subtotal, discount := decimal.Zero, decimal.Zero
	lines := make([]gst.Breakdown, len(inv.Items))
	for i := range inv.Items {
		it := &inv.Items[i]
		it.Tax = priceLine(it.Quantity, it.UnitPrice, it.Discount, it.GSTRate, inv.InterState)
		lines[i] = it.Tax
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		discount = discount.Add(it.Discount)
	}
	taxes := gst.Sum(lines...).Round()
	inv.Subtotal = gst.RoundMoney(subtotal)
	inv.Discount = gst.RoundMoney(discount)
	inv.CGST = taxes.CGST
	inv.SGST = taxes.SGST
	inv.IGST = taxes.IGST

	exact := inv.Subtotal.Sub(inv.Discount).Add(inv.CGST).Add(inv.SGST).Add(inv.IGST)
	inv.Total = exact.Round(0)
	inv.RoundingAdjustment = inv.Total.Sub(exact)
}

func (inv *SaleInvoice) transition(to InvoiceStatus, at time.Time) error {
	if err := SaleInvoiceLifecycle.Check(inv.ID, inv.Status, to); err != nil {
		return err
	}
	inv.Status = to
	inv.touch(at)
	return nil
}

// Generate finalizes the invoice
func (inv *SaleInvoice) Generate(at time.Time) error {
	return inv.transition(InvoiceGenerated, at)
}

// BeginIRN marks the invoice as awaiting e-invoice registration. It is a
// no-op for an invoice already pending, so registration can be retried.
func (inv *SaleInvoice) BeginIRN(at time.Time) error {
	if inv.Status == InvoiceIRNPending {
		return nil
	}
	if inv.Customer.GSTIN == "" {
		return NewValidationError("customer.gstin", nil, "e-invoices need a registered customer GSTIN")
	}
	return inv.transition(InvoiceIRNPending, at)
}

// RecordIRN stores the registration result
func (inv *SaleInvoice) RecordIRN(irn, ackNumber string, at time.Time) error {
	if strings.TrimSpace(irn) == "" {
		return NewValidationError("irn", nil, "IRN cannot be empty")
	}
	if err := inv.transition(InvoiceIRNGenerated, at); err != nil {
		return err
	}
	inv.IRN = irn
	inv.AckNumber = ackNumber
	inv.AckDate = timePtr(at)
	inv.IRNError = ""
	return nil
}

// RecordIRNFailure keeps the invoice pending with the failure message
func (inv *SaleInvoice) RecordIRNFailure(message string, at time.Time) {
	inv.IRNError = message
	inv.touch(at)
}

// Cancel cancels the invoice. Registered invoices cannot be cancelled.
func (inv *SaleInvoice) Cancel(at time.Time) error {
	return inv.transition(InvoiceCancelled, at)
}
