package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

func TestCreateSparePart_DuplicateNumber(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateSparePart(f.ctx, entities.SparePart{PartNumber: "FLT-001", Name: "Another filter", GSTRate: 18})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected a duplicate part number to fail, got %v", err)
	}
}

func TestCreateSparePart_DefaultRate(t *testing.T) {
	f := newFixture(t)
	part, err := f.svc.CreateSparePart(f.ctx, entities.SparePart{PartNumber: "GSK-003", Name: "Head gasket"})
	if err != nil {
		t.Fatalf("Failed to create part: %v", err)
	}
	if part.GSTRate != 18 {
		t.Errorf("Expected the default rate of 18, got %d", part.GSTRate)
	}
	if !part.IsActive {
		t.Errorf("Expected a new part to be active")
	}
}

func TestUpdateSparePart(t *testing.T) {
	f := newFixture(t)
	updated, err := f.svc.UpdateSparePart(f.ctx, f.filter.ID, entities.SparePart{
		Name:          "Oil filter (spin-on)",
		HSNCode:       "8421",
		MinStockLevel: 8,
		ReorderPoint:  12,
		MaxStockLevel: 60,
		UnitCost:      decimal.NewFromInt(110),
		SellingPrice:  decimal.NewFromInt(160),
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("Failed to update part: %v", err)
	}
	if updated.PartNumber != "FLT-001" || updated.GSTRate != 18 {
		t.Errorf("Expected number and rate to be kept, got %s/%d", updated.PartNumber, updated.GSTRate)
	}

	part, err := f.svc.GetSparePart(f.ctx, f.filter.ID)
	if err != nil {
		t.Fatalf("Failed to reload part: %v", err)
	}
	if part.ReorderPoint != 12 || !part.UnitCost.Equal(decimal.NewFromInt(110)) {
		t.Errorf("Expected the new levels to be stored, got %+v", part)
	}

	_, err = f.svc.UpdateSparePart(f.ctx, f.filter.ID, entities.SparePart{
		Name:          "Oil filter",
		MinStockLevel: 20,
		ReorderPoint:  10,
		MaxStockLevel: 50,
	})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected a reorder point below the minimum to fail, got %v", err)
	}

	if _, err := f.svc.UpdateSparePart(f.ctx, "missing", entities.SparePart{Name: "x"}); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected an unknown part to be not found, got %v", err)
	}
}

func TestListSpareParts_ActiveOnly(t *testing.T) {
	f := newFixture(t)
	inactive := *f.belt
	inactive.IsActive = false
	if _, err := f.svc.UpdateSparePart(f.ctx, f.belt.ID, inactive); err != nil {
		t.Fatalf("Failed to deactivate part: %v", err)
	}

	parts, err := f.svc.ListSpareParts(f.ctx, repositories.PartFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("Failed to list parts: %v", err)
	}
	if len(parts) != 1 || parts[0].ID != f.filter.ID {
		t.Errorf("Expected only the filter, got %d parts", len(parts))
	}

	_, err = f.svc.CreateIndent(f.ctx, dto.IndentInput{
		LocationID:  f.main.ID,
		RequestedBy: "stores",
		Items:       []dto.IndentItemInput{{SparePartID: f.belt.ID, Quantity: 1}},
	})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected an inactive part to be refused, got %v", err)
	}
}

func TestCreateLocation(t *testing.T) {
	f := newFixture(t)
	bin, err := f.svc.CreateLocation(f.ctx, dto.LocationInput{Code: "MAIN-A1", Name: "Rack A1", Type: entities.SubStore, ParentID: f.main.ID})
	if err != nil {
		t.Fatalf("Failed to create location: %v", err)
	}
	if bin.ParentID != f.main.ID {
		t.Errorf("Expected parent %s, got %s", f.main.ID, bin.ParentID)
	}

	tests := []struct {
		name string
		in   dto.LocationInput
		want error
	}{
		{"missing parent", dto.LocationInput{Code: "X", Name: "X", Type: entities.SubStore, ParentID: "missing"}, entities.ErrNotFound},
		{"duplicate code", dto.LocationInput{Code: "MAIN", Name: "Again", Type: entities.MainWarehouse}, entities.ErrValidation},
		{"empty code", dto.LocationInput{Name: "Nameless", Type: entities.SubStore}, entities.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateLocation(f.ctx, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSupplier_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   entities.Supplier
	}{
		{"duplicate code", entities.Supplier{Code: "SUP-001", Name: "Again", Type: entities.GoodsSupplier}},
		{"malformed GSTIN", entities.Supplier{Code: "SUP-009", Name: "Bad", Type: entities.GoodsSupplier, GSTIN: "27ABC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.CreateSupplier(f.ctx, tt.in); !errors.Is(err, entities.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}

	vendors, err := f.svc.ListSuppliers(f.ctx, entities.ServiceVendor)
	if err != nil {
		t.Fatalf("Failed to list suppliers: %v", err)
	}
	if len(vendors) != 1 || vendors[0].ID != f.vendor.ID {
		t.Errorf("Expected only the service vendor, got %d", len(vendors))
	}
}

func TestTaxMaster_MustAgreeWithPartRate(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.CreateTax(f.ctx, dto.TaxInput{Rate: 28, HSNCodes: []string{"8421"}}); err != nil {
		t.Fatalf("Failed to create tax: %v", err)
	}
	if _, err := f.svc.CreateTax(f.ctx, dto.TaxInput{Rate: 7}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected an unknown rate to fail, got %v", err)
	}

	_, err := f.svc.CreatePurchaseOrder(f.ctx, dto.PurchaseOrderInput{
		SupplierID:         f.supplier.ID,
		DeliveryLocationID: f.main.ID,
		Items:              []dto.POItemInput{{SparePartID: f.filter.ID, Quantity: 1}},
	})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected the 18%% filter to clash with the 28%% master, got %v", err)
	}

	// the belt's HSN is not listed
	if _, err := f.svc.CreatePurchaseOrder(f.ctx, dto.PurchaseOrderInput{
		SupplierID:         f.supplier.ID,
		DeliveryLocationID: f.main.ID,
		Items:              []dto.POItemInput{{SparePartID: f.belt.ID, Quantity: 1}},
	}); err != nil {
		t.Errorf("Failed to order an unlisted HSN: %v", err)
	}
}

func TestMachineParts_InstallAndRemove(t *testing.T) {
	f := newFixture(t)
	press, err := f.svc.CreateMachine(f.ctx, dto.MachineInput{
		Code:       "PRS-01",
		Name:       "800T press",
		Type:       entities.StampingPress,
		LocationID: f.line.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create machine: %v", err)
	}

	link, err := f.svc.InstallPart(f.ctx, dto.InstallPartInput{
		MachineID:    press.ID,
		SparePartID:  f.belt.ID,
		SerialNumber: "TB-7781",
		InstalledBy:  "maintenance",
		Reason:       entities.ReasonBreakdown,
	})
	if err != nil {
		t.Fatalf("Failed to install part: %v", err)
	}
	if !link.InstalledDate.Equal(testNow) {
		t.Errorf("Expected the install date to default to now, got %s", link.InstalledDate)
	}

	_, err = f.svc.InstallPart(f.ctx, dto.InstallPartInput{
		MachineID:    press.ID,
		SparePartID:  f.belt.ID,
		SerialNumber: "TB-7781",
		InstalledBy:  "maintenance",
	})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected a serial already installed to fail, got %v", err)
	}

	if _, err := f.svc.RemovePart(f.ctx, link.ID, "maintenance"); err != nil {
		t.Fatalf("Failed to remove part: %v", err)
	}
	if _, err := f.svc.RemovePart(f.ctx, link.ID, "maintenance"); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected a second removal to fail, got %v", err)
	}

	active, err := f.svc.MachineParts(f.ctx, press.ID, true)
	if err != nil {
		t.Fatalf("Failed to list machine parts: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected no active parts, got %d", len(active))
	}
	history, err := f.svc.MachineParts(f.ctx, press.ID, false)
	if err != nil {
		t.Fatalf("Failed to list machine history: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 link in the history, got %d", len(history))
	}

	// the serial can go back in once removed
	if _, err := f.svc.InstallPart(f.ctx, dto.InstallPartInput{
		MachineID:    press.ID,
		SparePartID:  f.belt.ID,
		SerialNumber: "TB-7781",
		InstalledBy:  "maintenance",
	}); err != nil {
		t.Errorf("Failed to reinstall removed serial: %v", err)
	}
}

func TestUsersAndAuthentication(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.CreateUser(f.ctx, dto.UserInput{Username: "asha", Role: entities.RoleApprover, Password: "short"}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected a short password to fail, got %v", err)
	}

	user, err := f.svc.CreateUser(f.ctx, dto.UserInput{Username: " Asha ", Name: "Asha Rao", Role: entities.RoleApprover, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.Username != "asha" || user.PasswordHash == "correct-horse" {
		t.Errorf("Expected a normalised username and hashed password, got %+v", user)
	}
	if _, err := f.svc.CreateUser(f.ctx, dto.UserInput{Username: "asha", Role: entities.RoleAdmin, Password: "another-pass"}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected a duplicate username to fail, got %v", err)
	}

	got, err := f.svc.Authenticate(f.ctx, "ASHA", "correct-horse")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}
	if got.ID != user.ID || !got.Role.CanApprove() {
		t.Errorf("Expected the approver back, got %+v", got)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "asha", "incorrect"},
		{"unknown user", "ravi", "correct-horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Authenticate(f.ctx, tt.username, tt.password); !errors.Is(err, ErrBadCredentials) {
				t.Errorf("Expected bad credentials, got %v", err)
			}
		})
	}
}

func TestComputeGST(t *testing.T) {
	f := newFixture(t)
	inter := true
	tests := []struct {
		name             string
		in               dto.GSTInput
		cgst, sgst, igst string
		total            string
	}{
		{"default rate intra-state", dto.GSTInput{Amount: dec("1000")}, "90", "90", "0", "1180"},
		{"out of state party", dto.GSTInput{Amount: dec("1000"), Rate: 28, PartyGSTIN: "29AABCU9603R1ZJ"}, "0", "0", "280", "1280"},
		{"explicit inter-state", dto.GSTInput{Amount: dec("99.99"), Rate: 5, InterState: &inter}, "0", "0", "5", "104.99"},
		{"paise rounding", dto.GSTInput{Amount: dec("10.01"), Rate: 5}, "0.25", "0.25", "0", "10.51"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.ComputeGST(tt.in)
			if err != nil {
				t.Fatalf("Failed to compute GST: %v", err)
			}
			assertDecimal(t, "cgst", tt.cgst, got.CGST)
			assertDecimal(t, "sgst", tt.sgst, got.SGST)
			assertDecimal(t, "igst", tt.igst, got.IGST)
			assertDecimal(t, "total", tt.total, got.Total)
		})
	}

	if _, err := f.svc.ComputeGST(dto.GSTInput{Amount: dec("100"), Rate: 7}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error for rate 7, got %v", err)
	}
	if _, err := f.svc.ComputeGST(dto.GSTInput{Amount: dec("-1")}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error for a negative amount, got %v", err)
	}
}

func TestPartCategoryAndUnit_MustExist(t *testing.T) {
	f := newFixture(t)
	hydraulic, err := f.svc.CreateCategory(f.ctx, dto.CategoryInput{Name: "Hydraulic", Description: "Cylinders, pumps, valves"})
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	litre, err := f.svc.CreateUnit(f.ctx, dto.UnitInput{Name: "Liter", Abbreviation: "Ltr"})
	if err != nil {
		t.Fatalf("Failed to create unit: %v", err)
	}

	if _, err := f.svc.CreateCategory(f.ctx, dto.CategoryInput{Name: "hydraulic"}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected a duplicate category name to fail, got %v", err)
	}
	if _, err := f.svc.CreateUnit(f.ctx, dto.UnitInput{Name: "Litre", Abbreviation: "LTR"}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected a duplicate abbreviation to fail, got %v", err)
	}
	if _, err := f.svc.CreateCategory(f.ctx, dto.CategoryInput{Name: "Seals", ParentID: "nope"}); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected an unknown parent to fail, got %v", err)
	}

	oil, err := f.svc.CreateSparePart(f.ctx, entities.SparePart{
		PartNumber: "OIL-068",
		Name:       "Hydraulic oil ISO 68",
		CategoryID: hydraulic.ID,
		UnitID:     litre.ID,
		UnitName:   "barrel",
	})
	if err != nil {
		t.Fatalf("Failed to create part: %v", err)
	}
	if oil.UnitName != "Ltr" {
		t.Errorf("Expected the unit name from the master, got %s", oil.UnitName)
	}

	tests := []struct {
		name  string
		part  entities.SparePart
		field string
	}{
		{"unknown category", entities.SparePart{PartNumber: "X-1", Name: "x", CategoryID: "missing"}, "category_id"},
		{"unknown unit", entities.SparePart{PartNumber: "X-2", Name: "x", UnitID: "missing"}, "unit_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSparePart(f.ctx, tt.part)
			var verr *entities.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("Expected a validation error on %s, got %v", tt.field, err)
			}
		})
	}

	in := *oil
	in.CategoryID = "missing"
	if _, err := f.svc.UpdateSparePart(f.ctx, oil.ID, in); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected an update to an unknown category to fail, got %v", err)
	}

	units, err := f.svc.ListUnits(f.ctx)
	if err != nil {
		t.Fatalf("Failed to list units: %v", err)
	}
	if len(units) != 1 || units[0].Abbreviation != "Ltr" {
		t.Errorf("Expected only Ltr, got %+v", units)
	}
}
