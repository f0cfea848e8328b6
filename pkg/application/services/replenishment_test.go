package services

import (
	"testing"

	"github.com/vsinha/spares/pkg/domain/entities"
)

func findOrder(plan []entities.ReplenishmentOrder, part *entities.SparePart, loc *entities.Location) *entities.ReplenishmentOrder {
	for i := range plan {
		if plan[i].SparePartID == part.ID && plan[i].LocationID == loc.ID {
			return &plan[i]
		}
	}
	return nil
}

func replenishmentFixture(t *testing.T) *fixture {
	f := newFixture(t)
	f.setStock(t, f.filter, f.main, 80)
	f.setStock(t, f.filter, f.sub, 4)
	f.setStock(t, f.belt, f.main, 2)
	return f
}

func TestPlanReplenishment_TransferBeforeBuy(t *testing.T) {
	f := replenishmentFixture(t)

	plan, err := f.svc.PlanReplenishment(f.ctx)
	if err != nil {
		t.Fatalf("Failed to plan replenishment: %v", err)
	}
	if len(plan.Orders) != 2 {
		t.Fatalf("Expected 2 orders, got %d: %+v", len(plan.Orders), plan.Orders)
	}

	move := findOrder(plan.Orders, f.filter, f.sub)
	if move == nil {
		t.Fatalf("Expected an order for the filter at SUB")
	}
	if move.Type != entities.Transfer || move.SourceLocationID != f.main.ID {
		t.Errorf("Expected a transfer from MAIN, got %s from %q", move.Type, move.SourceLocationID)
	}
	// up to the maximum of 50
	if move.Quantity != 46 {
		t.Errorf("Expected 46, got %d", move.Quantity)
	}

	buy := findOrder(plan.Orders, f.belt, f.main)
	if buy == nil {
		t.Fatalf("Expected an order for the belt at MAIN")
	}
	if buy.Type != entities.Buy || buy.Quantity != 18 {
		t.Errorf("Expected to buy 18, got %s %d", buy.Type, buy.Quantity)
	}
	if buy.Available != 2 || buy.ReorderPoint != 5 {
		t.Errorf("Expected available 2 against reorder point 5, got %d/%d", buy.Available, buy.ReorderPoint)
	}
}

func TestPlanReplenishment_CountsOpenPurchaseOrders(t *testing.T) {
	f := replenishmentFixture(t)
	f.sentOrder(t, f.supplier, f.belt, 10)

	plan, err := f.svc.PlanReplenishment(f.ctx)
	if err != nil {
		t.Fatalf("Failed to plan replenishment: %v", err)
	}
	if o := findOrder(plan.Orders, f.belt, f.main); o != nil {
		t.Errorf("Expected the open order to cover the belt, got %+v", o)
	}
}

func TestPlanReplenishment_SourceKeepsItsReorderPoint(t *testing.T) {
	f := replenishmentFixture(t)
	// MAIN can spare 45 - 10 = 35, short of the 46 SUB needs
	f.setStock(t, f.filter, f.main, 45)

	plan, err := f.svc.PlanReplenishment(f.ctx)
	if err != nil {
		t.Fatalf("Failed to plan replenishment: %v", err)
	}
	o := findOrder(plan.Orders, f.filter, f.sub)
	if o == nil {
		t.Fatalf("Expected an order for the filter at SUB")
	}
	if o.Type != entities.Buy {
		t.Errorf("Expected a purchase, got %s from %q", o.Type, o.SourceLocationID)
	}
}

func TestRaiseReplenishment_CreatesDrafts(t *testing.T) {
	f := replenishmentFixture(t)

	docs, err := f.svc.RaiseReplenishment(f.ctx, "planner")
	if err != nil {
		t.Fatalf("Failed to raise replenishment: %v", err)
	}
	if len(docs.Indents) != 1 || len(docs.Transfers) != 1 {
		t.Fatalf("Expected 1 indent and 1 transfer, got %d and %d", len(docs.Indents), len(docs.Transfers))
	}

	indent := docs.Indents[0]
	if indent.Status != entities.IndentDraft || indent.LocationID != f.main.ID {
		t.Errorf("Expected a draft indent at MAIN, got %s at %s", indent.Status, indent.LocationID)
	}
	if len(indent.Items) != 1 || indent.Items[0].SparePartID != f.belt.ID || indent.Items[0].QuantityRequested != 18 {
		t.Errorf("Expected the indent to request 18 belts, got %+v", indent.Items)
	}

	st := docs.Transfers[0]
	if st.Status != entities.TransferDraft || st.FromLocationID != f.main.ID || st.ToLocationID != f.sub.ID {
		t.Errorf("Expected a draft transfer MAIN to SUB, got %s %s to %s", st.Status, st.FromLocationID, st.ToLocationID)
	}
	if len(st.Items) != 1 || st.Items[0].QuantityRequested != 46 {
		t.Errorf("Expected the transfer to move 46 filters, got %+v", st.Items)
	}
	// drafts reserve nothing
	f.assertStock(t, f.filter, f.main, 80, 0)

	plan, err := f.svc.PlanReplenishment(f.ctx)
	if err != nil {
		t.Fatalf("Failed to replan: %v", err)
	}
	if len(plan.Orders) != 0 {
		t.Errorf("Expected the raised drafts to cover every shortage, got %+v", plan.Orders)
	}
}
