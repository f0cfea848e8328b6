package services

import (
	"errors"
	"testing"
	"time"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
)

func TestDeliveryChallan_ReturnableRoundTrip(t *testing.T) {
	f := newFixture(t)
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	dc, err := f.svc.CreateDeliveryChallan(f.ctx, dto.DeliveryChallanInput{
		Date:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Type:           entities.DCReturnable,
		Purpose:        entities.PurposeJobWork,
		PartyID:        f.supplier.ID,
		FromLocationID: f.main.ID,
		ReturnDueDate:  &due,
		Items:          []dto.DCItemInput{{SparePartID: f.filter.ID, Quantity: 6}},
	})
	if err != nil {
		t.Fatalf("Failed to create challan: %v", err)
	}
	if !dc.Items[0].UnitValue.Equal(f.filter.UnitCost) {
		t.Errorf("Expected unit value to default to unit cost, got %s", dc.Items[0].UnitValue)
	}
	f.assertStock(t, f.filter, f.main, 40, 0)

	if _, err := f.svc.DispatchDeliveryChallan(f.ctx, dc.ID, dto.DispatchInput{VehicleNumber: "MH12AB1234"}); err != nil {
		t.Fatalf("Failed to dispatch challan: %v", err)
	}
	f.assertStock(t, f.filter, f.main, 34, 0)

	overdue, err := f.svc.OverdueChallans(f.ctx)
	if err != nil {
		t.Fatalf("Failed to list overdue challans: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != dc.ID {
		t.Errorf("Expected the challan to be overdue, got %d", len(overdue))
	}

	itemID := dc.Items[0].ID
	dc, err = f.svc.ReturnDeliveryChallan(f.ctx, dc.ID, dto.ReturnDeliveryChallanInput{Quantities: map[string]entities.Quantity{itemID: 4}})
	if err != nil {
		t.Fatalf("Failed to record return: %v", err)
	}
	if dc.Status != entities.DCPartialReturn {
		t.Errorf("Expected partial return, got %s", dc.Status)
	}
	f.assertStock(t, f.filter, f.main, 38, 0)

	_, err = f.svc.ReturnDeliveryChallan(f.ctx, dc.ID, dto.ReturnDeliveryChallanInput{Quantities: map[string]entities.Quantity{itemID: 3}})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected returning more than pending to fail, got %v", err)
	}
	dc, err = f.svc.ReturnDeliveryChallan(f.ctx, dc.ID, dto.ReturnDeliveryChallanInput{Quantities: map[string]entities.Quantity{itemID: 2}})
	if err != nil {
		t.Fatalf("Failed to record return: %v", err)
	}
	if dc.Status != entities.DCReturned {
		t.Errorf("Expected returned, got %s", dc.Status)
	}
	f.assertStock(t, f.filter, f.main, 40, 0)
}

func TestDeliveryChallan_RefusesMoreThanAvailable(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateDeliveryChallan(f.ctx, dto.DeliveryChallanInput{
		Type:           entities.DCNonReturnable,
		PartyID:        f.supplier.ID,
		FromLocationID: f.main.ID,
		Items:          []dto.DCItemInput{{SparePartID: f.belt.ID, Quantity: 11}},
	})
	var insufficient *entities.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected insufficient stock, got %v", err)
	}
	if insufficient.Requested != 11 || insufficient.Available != 10 {
		t.Errorf("Expected requested 11 available 10, got %d/%d", insufficient.Requested, insufficient.Available)
	}
}

func TestRework_CompletesOnlyWhenReconciled(t *testing.T) {
	f := newFixture(t)
	rw, err := f.svc.CreateRework(f.ctx, dto.ReworkInput{
		VendorID:   f.vendor.ID,
		LocationID: f.main.ID,
		Items: []dto.ReworkItemInput{{
			SparePartID:        f.belt.ID,
			ProblemDescription: "cracked teeth",
			Quantity:           4,
			EstimatedCost:      dec("150"),
		}},
	})
	if err != nil {
		t.Fatalf("Failed to create rework: %v", err)
	}
	if _, err := f.svc.SendRework(f.ctx, rw.ID, dto.DispatchInput{}); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected sending without a challan to fail, got %v", err)
	}

	dc, err := f.svc.GenerateReworkDC(f.ctx, rw.ID)
	if err != nil {
		t.Fatalf("Failed to generate challan: %v", err)
	}
	if dc.Type != entities.DCReturnable || dc.Purpose != entities.PurposeRework || dc.ReworkID != rw.ID {
		t.Errorf("Expected a returnable rework challan linked to %s, got %+v", rw.ID, dc)
	}
	if _, err := f.svc.DispatchDeliveryChallan(f.ctx, dc.ID, dto.DispatchInput{}); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected the rework challan to refuse direct dispatch, got %v", err)
	}

	if _, err := f.svc.SendRework(f.ctx, rw.ID, dto.DispatchInput{VehicleNumber: "MH12AB1234"}); err != nil {
		t.Fatalf("Failed to send rework: %v", err)
	}
	f.assertStock(t, f.belt, f.main, 6, 0)
	if _, err := f.svc.MarkReworkInService(f.ctx, rw.ID); err != nil {
		t.Fatalf("Failed to mark in service: %v", err)
	}

	rw, err = f.svc.GetRework(f.ctx, rw.ID)
	if err != nil {
		t.Fatalf("Failed to reload rework: %v", err)
	}
	itemID := rw.Items[0].ID
	rw, err = f.svc.ReceiveRework(f.ctx, rw.ID, dto.ReceiveReworkInput{Items: []dto.ReworkReceiptInput{
		{ItemID: itemID, Received: 2, ActualCost: dec("90")},
	}})
	if err != nil {
		t.Fatalf("Failed to receive rework: %v", err)
	}
	f.assertStock(t, f.belt, f.main, 8, 0)

	_, err = f.svc.CompleteRework(f.ctx, rw.ID)
	if !errors.Is(err, entities.ErrInvalidTransition) {
		t.Fatalf("Expected completion with parts outstanding to fail, got %v", err)
	}

	rw, err = f.svc.ReceiveRework(f.ctx, rw.ID, dto.ReceiveReworkInput{Items: []dto.ReworkReceiptInput{
		{ItemID: itemID, Received: 1, Rejected: 1, ActualCost: dec("45")},
	}})
	if err != nil {
		t.Fatalf("Failed to receive remaining parts: %v", err)
	}
	f.assertStock(t, f.belt, f.main, 9, 0)

	rw, err = f.svc.CompleteRework(f.ctx, rw.ID)
	if err != nil {
		t.Fatalf("Failed to complete rework: %v", err)
	}
	if rw.Status != entities.ReworkCompleted {
		t.Errorf("Expected completed, got %s", rw.Status)
	}
	assertDecimal(t, "total cost", "135", rw.TotalCost())

	dc, err = f.svc.GetDeliveryChallan(f.ctx, dc.ID)
	if err != nil {
		t.Fatalf("Failed to reload challan: %v", err)
	}
	if dc.Status != entities.DCReturned || dc.Items[0].QuantityReturned != 4 {
		t.Errorf("Expected the challan fully returned, got %s with %d", dc.Status, dc.Items[0].QuantityReturned)
	}
}

func TestCreateRework_NeedsServiceVendor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateRework(f.ctx, dto.ReworkInput{
		VendorID:   f.supplier.ID,
		LocationID: f.main.ID,
		Items:      []dto.ReworkItemInput{{SparePartID: f.belt.ID, ProblemDescription: "worn", Quantity: 1}},
	})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected a goods supplier to be refused, got %v", err)
	}
}
