package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/gst"
)

// Inputs accepted by the application services. Amount and tax fields are
// never part of an input; they are always computed from master data.

// TaxInput creates a GST master entry
type TaxInput struct {
	Rate     gst.Rate `json:"rate"`
	HSNCodes []string `json:"hsn_codes"`
}

// CategoryInput creates a part category
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
}

// UnitInput creates a unit of measure
type UnitInput struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// MachineInput creates a machine
type MachineInput struct {
	Code         string               `json:"machine_code"`
	Name         string               `json:"name"`
	Type         entities.MachineType `json:"type"`
	LocationID   string               `json:"location_id"`
	Manufacturer string               `json:"manufacturer"`
	Model        string               `json:"model"`
	SerialNumber string               `json:"serial_number"`
}

// LocationInput creates a location
type LocationInput struct {
	Code     string                `json:"code"`
	Name     string                `json:"name"`
	Type     entities.LocationType `json:"type"`
	ParentID string                `json:"parent_id"`
	Address  string                `json:"address"`
}

// InstallPartInput records a part fitted to a machine
type InstallPartInput struct {
	MachineID     string              `json:"machine_id"`
	SparePartID   string              `json:"spare_part_id"`
	SerialNumber  string              `json:"serial_number"`
	InstalledBy   string              `json:"installed_by"`
	Reason        entities.LinkReason `json:"reason"`
	InstalledDate *time.Time          `json:"installed_date"`
	Notes         string              `json:"notes"`
}

// StockAdjustmentInput sets the counted on-hand quantity of one stock row.
// It is used for opening stock and physical count corrections.
type StockAdjustmentInput struct {
	SparePartID string            `json:"spare_part_id"`
	LocationID  string            `json:"location_id"`
	Counted     entities.Quantity `json:"counted"`
	Reason      string            `json:"reason"`
}

type IndentItemInput struct {
	SparePartID string            `json:"spare_part_id"`
	Quantity    entities.Quantity `json:"quantity"`
	// EstimatedUnitCost defaults to the part's unit cost.
	EstimatedUnitCost *decimal.Decimal `json:"estimated_unit_cost"`
	Remarks           string           `json:"remarks"`
}

type IndentInput struct {
	Date         time.Time         `json:"date"`
	LocationID   string            `json:"location_id"`
	Department   string            `json:"department"`
	RequestedBy  string            `json:"requested_by"`
	Priority     entities.Priority `json:"priority"`
	RequiredDate *time.Time        `json:"required_date"`
	Notes        string            `json:"notes"`
	// Submit creates the indent directly in pending_approval.
	Submit bool              `json:"submit"`
	Items  []IndentItemInput `json:"items"`
}

// ApproveIndentInput maps indent item ids to approved quantities. Items not
// listed are approved in full; 0 drops a line.
type ApproveIndentInput struct {
	ApprovedBy string                       `json:"approved_by"`
	Quantities map[string]entities.Quantity `json:"quantities"`
}

type RejectIndentInput struct {
	RejectedBy string `json:"rejected_by"`
	Reason     string `json:"reason"`
}

// ConvertIndentInput turns an approved indent into a draft purchase order
type ConvertIndentInput struct {
	SupplierID   string     `json:"supplier_id"`
	Date         time.Time  `json:"date"`
	ExpectedDate *time.Time `json:"expected_date"`
	PaymentTerms string     `json:"payment_terms"`
	Notes        string     `json:"notes"`
}

type POItemInput struct {
	SparePartID string            `json:"spare_part_id"`
	Quantity    entities.Quantity `json:"quantity"`
	// UnitPrice defaults to the part's unit cost.
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal  `json:"discount"`
}

type PurchaseOrderInput struct {
	Date               time.Time     `json:"date"`
	SupplierID         string        `json:"supplier_id"`
	DeliveryLocationID string        `json:"delivery_location_id"`
	ExpectedDate       *time.Time    `json:"expected_date"`
	PaymentTerms       string        `json:"payment_terms"`
	Notes              string        `json:"notes"`
	Items              []POItemInput `json:"items"`
}

type GRNItemInput struct {
	POItemID         string            `json:"po_item_id"`
	ReceivedQuantity entities.Quantity `json:"received_quantity"`
	// AcceptedQuantity defaults to received minus rejected.
	AcceptedQuantity *entities.Quantity `json:"accepted_quantity"`
	RejectedQuantity entities.Quantity  `json:"rejected_quantity"`
	RejectionReason  string             `json:"rejection_reason"`
	BatchNumber      string             `json:"batch_number"`
}

type GRNInput struct {
	PurchaseOrderID string         `json:"purchase_order_id"`
	Date            time.Time      `json:"date"`
	LocationID      string         `json:"location_id"`
	InvoiceNumber   string         `json:"invoice_number"`
	InvoiceDate     *time.Time     `json:"invoice_date"`
	ReceivedBy      string         `json:"received_by"`
	Notes           string         `json:"notes"`
	Items           []GRNItemInput `json:"items"`
}

type PostGRNInput struct {
	InspectedBy string `json:"inspected_by"`
}

// CreditNoteItemInput credits a GRN line, or a purchase order line when the
// note has no GRN
type CreditNoteItemInput struct {
	SourceItemID string            `json:"source_item_id"`
	Quantity     entities.Quantity `json:"quantity"`
	// UnitPrice defaults to the source line's price.
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type CreditNoteInput struct {
	Date            time.Time             `json:"date"`
	GRNID           string                `json:"grn_id"`
	PurchaseOrderID string                `json:"purchase_order_id"`
	Reason          entities.CreditReason `json:"reason"`
	Notes           string                `json:"notes"`
	Items           []CreditNoteItemInput `json:"items"`
}

type AdjustCreditNoteInput struct {
	AdjustedAgainst string `json:"adjusted_against"`
}

type DCItemInput struct {
	SparePartID  string            `json:"spare_part_id"`
	SerialNumber string            `json:"serial_number"`
	Quantity     entities.Quantity `json:"quantity"`
	// UnitValue defaults to the part's unit cost.
	UnitValue *decimal.Decimal `json:"unit_value"`
	Remarks   string           `json:"remarks"`
}

type DeliveryChallanInput struct {
	Date           time.Time          `json:"date"`
	Type           entities.DCType    `json:"dc_type"`
	Purpose        entities.DCPurpose `json:"purpose"`
	PartyID        string             `json:"party_id"`
	FromLocationID string             `json:"from_location_id"`
	ReturnDueDate  *time.Time         `json:"return_due_date"`
	Notes          string             `json:"notes"`
	Items          []DCItemInput      `json:"items"`
}

type DispatchInput struct {
	VehicleNumber string `json:"vehicle_number"`
}

// ReturnDeliveryChallanInput maps challan item ids to returned quantities
type ReturnDeliveryChallanInput struct {
	Quantities map[string]entities.Quantity `json:"quantities"`
}

type ReworkItemInput struct {
	SparePartID        string            `json:"spare_part_id"`
	SerialNumber       string            `json:"serial_number"`
	ProblemDescription string            `json:"problem_description"`
	Quantity           entities.Quantity `json:"quantity"`
	EstimatedCost      decimal.Decimal   `json:"estimated_cost"`
}

type ReworkInput struct {
	Date               time.Time         `json:"date"`
	VendorID           string            `json:"vendor_id"`
	LocationID         string            `json:"location_id"`
	ExpectedReturnDate *time.Time        `json:"expected_return_date"`
	Notes              string            `json:"notes"`
	Items              []ReworkItemInput `json:"items"`
}

type ReworkReceiptInput struct {
	ItemID     string            `json:"item_id"`
	Received   entities.Quantity `json:"quantity_received"`
	Rejected   entities.Quantity `json:"quantity_rejected"`
	ActualCost decimal.Decimal   `json:"actual_cost"`
}

type ReceiveReworkInput struct {
	Items []ReworkReceiptInput `json:"items"`
}

type IssueItemInput struct {
	SparePartID    string            `json:"spare_part_id"`
	FromLocationID string            `json:"from_location_id"`
	Quantity       entities.Quantity `json:"quantity"`
	MachineID      string            `json:"machine_id"`
	Remarks        string            `json:"remarks"`
}

type ProductionIssueInput struct {
	Date             time.Time        `json:"date"`
	ProductionLineID string           `json:"production_line_id"`
	WorkOrder        string           `json:"work_order"`
	RequestedBy      string           `json:"requested_by"`
	Notes            string           `json:"notes"`
	Items            []IssueItemInput `json:"items"`
}

type IssueProductionInput struct {
	IssuedBy string `json:"issued_by"`
}

type ProductionReturnInput struct {
	Date       time.Time             `json:"date"`
	ReturnedBy string                `json:"returned_by"`
	Reason     string                `json:"reason"`
	Items      []entities.ReturnItem `json:"items"`
}

type TransferItemInput struct {
	SparePartID string            `json:"spare_part_id"`
	Quantity    entities.Quantity `json:"quantity"`
	Remarks     string            `json:"remarks"`
}

type StockTransferInput struct {
	Date           time.Time           `json:"date"`
	FromLocationID string              `json:"from_location_id"`
	ToLocationID   string              `json:"to_location_id"`
	RequestedBy    string              `json:"requested_by"`
	Notes          string              `json:"notes"`
	Items          []TransferItemInput `json:"items"`
}

// TransferQuantitiesInput maps transfer item ids to quantities. Items not
// listed move in full.
type TransferQuantitiesInput struct {
	Quantities map[string]entities.Quantity `json:"quantities"`
}

type InvoiceItemInput struct {
	SparePartID string            `json:"spare_part_id"`
	Quantity    entities.Quantity `json:"quantity"`
	// UnitPrice defaults to the part's selling price.
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal  `json:"discount"`
}

type SaleInvoiceInput struct {
	Date       time.Time          `json:"date"`
	Customer   entities.Customer  `json:"customer"`
	LocationID string             `json:"location_id"`
	Notes      string             `json:"notes"`
	Items      []InvoiceItemInput `json:"items"`
}

// UserInput creates an operator account
type UserInput struct {
	Username string        `json:"username"`
	Name     string        `json:"name"`
	Role     entities.Role `json:"role"`
	Password string        `json:"password"`
}

// StockCountLine is a counted stock row identified by codes, as read from an
// import file. Row is the source line, used in error messages.
type StockCountLine struct {
	Row          int                 `json:"row,omitempty"`
	PartNumber   entities.PartNumber `json:"part_number"`
	LocationCode string              `json:"location_code"`
	Quantity     entities.Quantity   `json:"quantity"`
	Reason       string              `json:"reason,omitempty"`
}

// LocationSeed is a location whose parent is given by code
type LocationSeed struct {
	Row        int                   `json:"row,omitempty"`
	Code       string                `json:"code"`
	Name       string                `json:"name"`
	Type       entities.LocationType `json:"type"`
	ParentCode string                `json:"parent_code,omitempty"`
	Address    string                `json:"address,omitempty"`
}

// MachineSeed is a machine whose location is given by code
type MachineSeed struct {
	Row          int                  `json:"row,omitempty"`
	Code         string               `json:"machine_code"`
	Name         string               `json:"name"`
	Type         entities.MachineType `json:"type"`
	LocationCode string               `json:"location_code"`
	Manufacturer string               `json:"manufacturer,omitempty"`
	Model        string               `json:"model,omitempty"`
	SerialNumber string               `json:"serial_number,omitempty"`
}

// MasterData is a batch of master records referencing each other by code.
// Parent locations must come before their children.
type MasterData struct {
	Locations []LocationSeed       `json:"locations"`
	Parts     []entities.SparePart `json:"parts"`
	Suppliers []entities.Supplier  `json:"suppliers"`
	Machines  []MachineSeed        `json:"machines"`
	Stock     []StockCountLine     `json:"stock"`
}

// GSTInput asks for a standalone GST breakdown. A zero Rate uses the
// configured default. InterState, when set, overrides the comparison of
// PartyGSTIN with the company GSTIN.
type GSTInput struct {
	Amount     decimal.Decimal `json:"amount"`
	Rate       gst.Rate        `json:"rate"`
	PartyGSTIN string          `json:"party_gstin"`
	InterState *bool           `json:"inter_state"`
}
