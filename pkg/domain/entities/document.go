package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/gst"
)

// DocumentKind identifies a transactional document type
type DocumentKind string

const (
	KindIndent           DocumentKind = "indent"
	KindPurchaseOrder    DocumentKind = "purchase_order"
	KindGRN              DocumentKind = "grn"
	KindDeliveryChallan  DocumentKind = "delivery_challan"
	KindRework           DocumentKind = "rework"
	KindSaleInvoice      DocumentKind = "sale_invoice"
	KindCreditNote       DocumentKind = "credit_note"
	KindStockTransfer    DocumentKind = "stock_transfer"
	KindProductionIssue  DocumentKind = "production_issue"
	KindProductionReturn DocumentKind = "production_return"
	KindStockAdjustment  DocumentKind = "stock_adjustment"
)

// DocumentKinds lists every kind stored in the document repository
var DocumentKinds = []DocumentKind{
	KindIndent,
	KindPurchaseOrder,
	KindGRN,
	KindDeliveryChallan,
	KindRework,
	KindSaleInvoice,
	KindCreditNote,
	KindStockTransfer,
	KindProductionIssue,
}

// Prefix returns the document number prefix, e.g. IND for IND-2024-0001
func (k DocumentKind) Prefix() string {
	switch k {
	case KindIndent:
		return "IND"
	case KindPurchaseOrder:
		return "PO"
	case KindGRN:
		return "GRN"
	case KindDeliveryChallan:
		return "DC"
	case KindRework:
		return "RW"
	case KindSaleInvoice:
		return "INV"
	case KindCreditNote:
		return "CN"
	case KindStockTransfer:
		return "TRF"
	case KindProductionIssue:
		return "ISS"
	case KindProductionReturn:
		return "RET"
	case KindStockAdjustment:
		return "ADJ"
	default:
		return "DOC"
	}
}

// FormatDocumentNumber renders a document number such as PO-2024-0007
func FormatDocumentNumber(kind DocumentKind, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", kind.Prefix(), year, seq)
}

// Document is implemented by every transactional document so that a single
// repository can persist them
type Document interface {
	DocID() string
	DocNumber() string
	DocVersion() int
	SetDocVersion(v int)
	Kind() DocumentKind
	State() string
	// RefIDs returns the ids of other documents this one points at.
	RefIDs() []string
	CloneDocument() Document
}

// NewDocumentOfKind returns an empty document of the given kind, used when
// decoding persisted payloads
func NewDocumentOfKind(kind DocumentKind) (Document, error) {
	switch kind {
	case KindIndent:
		return &Indent{}, nil
	case KindPurchaseOrder:
		return &PurchaseOrder{}, nil
	case KindGRN:
		return &GRN{}, nil
	case KindDeliveryChallan:
		return &DeliveryChallan{}, nil
	case KindRework:
		return &Rework{}, nil
	case KindSaleInvoice:
		return &SaleInvoice{}, nil
	case KindCreditNote:
		return &CreditNote{}, nil
	case KindStockTransfer:
		return &StockTransfer{}, nil
	case KindProductionIssue:
		return &ProductionIssue{}, nil
	default:
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}
}

// DocumentHeader holds the fields shared by all documents
type DocumentHeader struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocumentHeader creates a header with a fresh id
func NewDocumentHeader(number string, date time.Time, notes string, at time.Time) (DocumentHeader, error) {
	if number == "" {
		return DocumentHeader{}, NewValidationError("number", nil, "document number cannot be empty")
	}
	if date.IsZero() {
		return DocumentHeader{}, NewValidationError("date", nil, "document date is required")
	}
	return DocumentHeader{
		ID:        NewID(),
		Number:    number,
		Date:      date,
		Notes:     notes,
		CreatedAt: at,
		UpdatedAt: at,
	}, nil
}

func (h *DocumentHeader) DocID() string       { return h.ID }
func (h *DocumentHeader) DocNumber() string   { return h.Number }
func (h *DocumentHeader) DocVersion() int     { return h.Version }
func (h *DocumentHeader) SetDocVersion(v int) { h.Version = v }

func (h *DocumentHeader) touch(at time.Time) {
	h.UpdatedAt = at
}

// NewID returns a new random entity id
func NewID() string {
	return uuid.NewString()
}

// priceLine computes the GST breakdown of one document line. The taxable
// value is quantity * unit price less the line discount.
func priceLine(qty Quantity, unitPrice, discount decimal.Decimal, rate gst.Rate, interState bool) gst.Breakdown {
	taxable := unitPrice.Mul(decimal.NewFromInt(int64(qty))).Sub(discount)
	return gst.Compute(taxable, rate, interState)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func nonEmpty(ids ...string) []string {
	var out []string
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
