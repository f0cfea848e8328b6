package entities

import (
	"strings"
	"time"

	"github.com/vsinha/spares/pkg/domain/gst"
)

// LocationType classifies a stocking location
type LocationType string

const (
	MainWarehouse  LocationType = "main_warehouse"
	SubStore       LocationType = "sub_store"
	ToolRoom       LocationType = "tool_room"
	ProductionLine LocationType = "production_line"
)

func (t LocationType) valid() bool {
	switch t {
	case MainWarehouse, SubStore, ToolRoom, ProductionLine:
		return true
	}
	return false
}

// Location is a place stock is held
type Location struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Type      LocationType `json:"type"`
	ParentID  string       `json:"parent_id,omitempty"`
	Address   string       `json:"address,omitempty"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewLocation creates a validated Location
func NewLocation(code, name string, locationType LocationType, parentID string, at time.Time) (*Location, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, NewValidationError("code", nil, "location code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", nil, "location name cannot be empty")
	}
	if !locationType.valid() {
		return nil, NewValidationError("type", locationType, "unknown location type")
	}
	return &Location{
		ID:        NewID(),
		Code:      code,
		Name:      name,
		Type:      locationType,
		ParentID:  parentID,
		IsActive:  true,
		CreatedAt: at,
	}, nil
}

// SupplierType distinguishes goods suppliers from rework service vendors
type SupplierType string

const (
	GoodsSupplier SupplierType = "supplier"
	ServiceVendor SupplierType = "service_vendor"
)

// Supplier is a vendor of parts or repair services
type Supplier struct {
	ID            string       `json:"id"`
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Type          SupplierType `json:"type"`
	GSTIN         string       `json:"gstin,omitempty"`
	PAN           string       `json:"pan,omitempty"`
	Address       string       `json:"address,omitempty"`
	City          string       `json:"city,omitempty"`
	State         string       `json:"state,omitempty"`
	Pincode       string       `json:"pincode,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	Email         string       `json:"email,omitempty"`
	ContactPerson string       `json:"contact_person,omitempty"`
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
}

// NewSupplier creates a validated Supplier
func NewSupplier(s Supplier, at time.Time) (*Supplier, error) {
	s.Code = strings.TrimSpace(s.Code)
	s.GSTIN = strings.ToUpper(strings.TrimSpace(s.GSTIN))
	if s.Code == "" {
		return nil, NewValidationError("code", nil, "supplier code cannot be empty")
	}
	if strings.TrimSpace(s.Name) == "" {
		return nil, NewValidationError("name", nil, "supplier name cannot be empty")
	}
	if s.Type != GoodsSupplier && s.Type != ServiceVendor {
		return nil, NewValidationError("type", s.Type, "supplier type must be supplier or service_vendor")
	}
	if s.GSTIN != "" && !gst.ValidGSTIN(s.GSTIN) {
		return nil, NewValidationError("gstin", s.GSTIN, "malformed GSTIN")
	}
	s.ID = NewID()
	s.IsActive = true
	s.CreatedAt = at
	return &s, nil
}

// Tax is a GST master record
type Tax struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Rate     gst.Rate `json:"rate"`
	HSNCodes []string `json:"hsn_codes,omitempty"`
	IsActive bool     `json:"is_active"`
}

// NewTax creates a Tax for one of the standard slabs
func NewTax(rate gst.Rate, hsnCodes []string) (*Tax, error) {
	if !rate.Valid() {
		return nil, NewValidationError("rate", rate, "GST rate must be one of 5, 12, 18, 28")
	}
	return &Tax{
		ID:       NewID(),
		Name:     rate.String(),
		Rate:     rate,
		HSNCodes: append([]string(nil), hsnCodes...),
		IsActive: true,
	}, nil
}

// Split returns the CGST, SGST and IGST percentages of the tax
func (t *Tax) Split() (cgst, sgst, igst string) {
	half := t.Rate.HalfPercent().String()
	return half, half, t.Rate.Percent().String()
}

// CoversHSN reports whether the tax lists the given HSN code
func (t *Tax) CoversHSN(hsn string) bool {
	for _, h := range t.HSNCodes {
		if h == hsn {
			return true
		}
	}
	return false
}
