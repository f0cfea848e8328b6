package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
	"github.com/vsinha/spares/pkg/infrastructure/events"
	"github.com/vsinha/spares/pkg/infrastructure/repositories/memory"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

const companyGSTIN = "27AAACS1234A1Z5"

// fixture is a service over an in-memory store seeded with two warehouses,
// a production line, suppliers and two parts
type fixture struct {
	ctx    context.Context
	svc    *Service
	store  *memory.Store
	events *events.InMemoryEventStore

	main, sub, line *entities.Location

	supplier   *entities.Supplier // same state as the company
	outOfState *entities.Supplier
	vendor     *entities.Supplier

	filter *entities.SparePart
	belt   *entities.SparePart
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		ctx:    context.Background(),
		store:  memory.NewStore(),
		events: events.NewInMemoryEventStore(),
	}
	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithPublisher(f.events),
		WithCompanyGSTIN(companyGSTIN),
	}, opts...)
	f.svc = New(f.store, opts...)
	t.Cleanup(func() { f.assertStockConsistent(t) })

	f.main = f.location(t, "MAIN", entities.MainWarehouse)
	f.sub = f.location(t, "SUB", entities.SubStore)
	f.line = f.location(t, "LINE-1", entities.ProductionLine)

	f.supplier = f.newSupplier(t, "SUP-001", entities.GoodsSupplier, "27AABCU9603R1ZM")
	f.outOfState = f.newSupplier(t, "SUP-002", entities.GoodsSupplier, "29AABCU9603R1ZJ")
	f.vendor = f.newSupplier(t, "VEN-001", entities.ServiceVendor, "27AAGCR4375J1ZU")

	f.filter = f.part(t, entities.SparePart{
		PartNumber:    "FLT-001",
		Name:          "Oil filter",
		HSNCode:       "8421",
		GSTRate:       18,
		MinStockLevel: 5,
		ReorderPoint:  10,
		MaxStockLevel: 50,
		UnitCost:      decimal.NewFromInt(100),
		SellingPrice:  decimal.NewFromInt(150),
	})
	f.belt = f.part(t, entities.SparePart{
		PartNumber:    "BLT-002",
		Name:          "Timing belt",
		HSNCode:       "4010",
		GSTRate:       28,
		MinStockLevel: 2,
		ReorderPoint:  5,
		MaxStockLevel: 20,
		UnitCost:      decimal.NewFromInt(80),
		SellingPrice:  decimal.RequireFromString("119.99"),
	})

	f.setStock(t, f.filter, f.main, 40)
	f.setStock(t, f.belt, f.main, 10)
	return f
}

func (f *fixture) location(t *testing.T, code string, typ entities.LocationType) *entities.Location {
	t.Helper()
	loc, err := f.svc.CreateLocation(f.ctx, dto.LocationInput{Code: code, Name: code, Type: typ})
	if err != nil {
		t.Fatalf("Failed to create location %s: %v", code, err)
	}
	return loc
}

func (f *fixture) newSupplier(t *testing.T, code string, typ entities.SupplierType, gstin string) *entities.Supplier {
	t.Helper()
	sup, err := f.svc.CreateSupplier(f.ctx, entities.Supplier{Code: code, Name: code, Type: typ, GSTIN: gstin})
	if err != nil {
		t.Fatalf("Failed to create supplier %s: %v", code, err)
	}
	return sup
}

func (f *fixture) part(t *testing.T, p entities.SparePart) *entities.SparePart {
	t.Helper()
	part, err := f.svc.CreateSparePart(f.ctx, p)
	if err != nil {
		t.Fatalf("Failed to create part %s: %v", p.PartNumber, err)
	}
	return part
}

func (f *fixture) setStock(t *testing.T, part *entities.SparePart, loc *entities.Location, qty entities.Quantity) {
	t.Helper()
	if _, err := f.svc.AdjustStock(f.ctx, dto.StockAdjustmentInput{
		SparePartID: part.ID,
		LocationID:  loc.ID,
		Counted:     qty,
		Reason:      "opening stock",
	}); err != nil {
		t.Fatalf("Failed to set opening stock: %v", err)
	}
}

func (f *fixture) assertStock(t *testing.T, part *entities.SparePart, loc *entities.Location, onHand, reserved entities.Quantity) {
	t.Helper()
	level, err := f.svc.StockLevel(f.ctx, part.ID, loc.ID)
	if err != nil {
		t.Fatalf("Failed to read stock: %v", err)
	}
	if level.QuantityOnHand != onHand || level.QuantityReserved != reserved {
		t.Errorf("Expected %s at %s on hand %d reserved %d, got %d/%d",
			part.PartNumber, loc.Code, onHand, reserved, level.QuantityOnHand, level.QuantityReserved)
	}
}

// assertStockConsistent sweeps every stock row: no quantity may go negative
// and the row must match the last ledger line written for it
func (f *fixture) assertStockConsistent(t *testing.T) {
	t.Helper()
	levels, err := f.svc.StockLevels(f.ctx, repositories.StockFilter{})
	if err != nil {
		t.Errorf("Failed to list stock: %v", err)
		return
	}
	for _, l := range levels {
		if err := l.CheckInvariant(); err != nil {
			t.Errorf("%v", err)
		}
		last, err := f.svc.Movements(f.ctx, repositories.MovementFilter{SparePartID: l.SparePartID, LocationID: l.LocationID, Limit: 1})
		if err != nil {
			t.Errorf("Failed to read ledger: %v", err)
			return
		}
		if len(last) == 1 && (last[0].OnHandAfter != l.QuantityOnHand || last[0].ReservedAfter != l.QuantityReserved) {
			t.Errorf("Expected %s to match its last ledger line %d/%d, got %d/%d", l.Key(),
				last[0].OnHandAfter, last[0].ReservedAfter, l.QuantityOnHand, l.QuantityReserved)
		}
	}
}

// sentOrder creates and sends a purchase order for qty units of part
func (f *fixture) sentOrder(t *testing.T, sup *entities.Supplier, part *entities.SparePart, qty entities.Quantity) *entities.PurchaseOrder {
	t.Helper()
	po, err := f.svc.CreatePurchaseOrder(f.ctx, dto.PurchaseOrderInput{
		SupplierID:         sup.ID,
		DeliveryLocationID: f.main.ID,
		Items:              []dto.POItemInput{{SparePartID: part.ID, Quantity: qty}},
	})
	if err != nil {
		t.Fatalf("Failed to create purchase order: %v", err)
	}
	po, err = f.svc.SendPurchaseOrder(f.ctx, po.ID)
	if err != nil {
		t.Fatalf("Failed to send purchase order: %v", err)
	}
	return po
}

func (f *fixture) eventTypes(t *testing.T) []string {
	t.Helper()
	all, err := f.events.ReadAllEvents(0)
	if err != nil {
		t.Fatalf("Failed to read events: %v", err)
	}
	out := make([]string, len(all))
	for i, e := range all {
		out[i] = e.Type()
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, field, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("Expected %s %s, got %s", field, want, got)
	}
}

func quantityPtr(n int64) *entities.Quantity {
	q := entities.Quantity(n)
	return &q
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
