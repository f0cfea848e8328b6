package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
)

type flakyRegistrar struct {
	fail  bool
	calls int
}

func (r *flakyRegistrar) Register(ctx context.Context, inv *entities.SaleInvoice) (IRNResult, error) {
	r.calls++
	if r.fail {
		return IRNResult{}, errors.New("portal unavailable")
	}
	return IRNResult{IRN: "irn-" + inv.Number, AckNumber: "112010036563310"}, nil
}

func (f *fixture) invoice(t *testing.T, customer entities.Customer) *entities.SaleInvoice {
	t.Helper()
	inv, err := f.svc.CreateSaleInvoice(f.ctx, dto.SaleInvoiceInput{
		Customer:   customer,
		LocationID: f.main.ID,
		Items: []dto.InvoiceItemInput{
			{SparePartID: f.belt.ID, Quantity: 3},
			{SparePartID: f.filter.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create invoice: %v", err)
	}
	return inv
}

var localCustomer = entities.Customer{Name: "Shree Motors", GSTIN: "27AAPFU0939F1ZV"}

func TestCreateSaleInvoice_TotalsAndRounding(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, localCustomer)

	if inv.InterState {
		t.Errorf("Expected an intra-state invoice")
	}
	if inv.Items[0].HSNCode != "4010" || inv.Items[0].GSTRate != 28 {
		t.Errorf("Expected HSN and rate from the part master, got %s/%d", inv.Items[0].HSNCode, inv.Items[0].GSTRate)
	}
	// 3 x 119.99 @ 28% + 150 @ 18%
	assertDecimal(t, "subtotal", "509.97", inv.Subtotal)
	assertDecimal(t, "cgst", "63.9", inv.CGST)
	assertDecimal(t, "sgst", "63.9", inv.SGST)
	assertDecimal(t, "igst", "0", inv.IGST)
	assertDecimal(t, "rounding", "0.23", inv.RoundingAdjustment)
	assertDecimal(t, "total", "638", inv.Total)

	// creation only checks stock
	f.assertStock(t, f.belt, f.main, 10, 0)
}

func TestCreateSaleInvoice_InterStateCustomer(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, entities.Customer{Name: "Deccan Auto", GSTIN: "29AAACD1234E1Z2"})
	if !inv.InterState {
		t.Fatalf("Expected an inter-state invoice")
	}
	assertDecimal(t, "cgst", "0", inv.CGST)
	assertDecimal(t, "igst", "127.79", inv.IGST)
	assertDecimal(t, "total", "638", inv.Total)
}

func TestCreateSaleInvoice_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name     string
		customer entities.Customer
		item     dto.InvoiceItemInput
		want     error
	}{
		{"malformed customer GSTIN", entities.Customer{Name: "X", GSTIN: "27XYZ"}, dto.InvoiceItemInput{SparePartID: f.belt.ID, Quantity: 1}, entities.ErrValidation},
		{"zero price", localCustomer, dto.InvoiceItemInput{SparePartID: f.belt.ID, Quantity: 1, UnitPrice: decPtr("0")}, entities.ErrValidation},
		{"more than available", localCustomer, dto.InvoiceItemInput{SparePartID: f.belt.ID, Quantity: 11}, entities.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSaleInvoice(f.ctx, dto.SaleInvoiceInput{
				Customer:   tt.customer,
				LocationID: f.main.ID,
				Items:      []dto.InvoiceItemInput{tt.item},
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGenerateAndCancelSaleInvoice(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, localCustomer)

	if _, err := f.svc.GenerateSaleInvoice(f.ctx, inv.ID); err != nil {
		t.Fatalf("Failed to generate invoice: %v", err)
	}
	f.assertStock(t, f.belt, f.main, 7, 0)
	f.assertStock(t, f.filter, f.main, 39, 0)

	inv, err := f.svc.CancelSaleInvoice(f.ctx, inv.ID)
	if err != nil {
		t.Fatalf("Failed to cancel invoice: %v", err)
	}
	if inv.Status != entities.InvoiceCancelled {
		t.Errorf("Expected cancelled, got %s", inv.Status)
	}
	f.assertStock(t, f.belt, f.main, 10, 0)
	f.assertStock(t, f.filter, f.main, 40, 0)
}

func TestRegisterEInvoice_LocalRegistrar(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, localCustomer)
	if _, err := f.svc.GenerateSaleInvoice(f.ctx, inv.ID); err != nil {
		t.Fatalf("Failed to generate invoice: %v", err)
	}

	inv, err := f.svc.RegisterEInvoice(f.ctx, inv.ID)
	if err != nil {
		t.Fatalf("Failed to register invoice: %v", err)
	}
	if inv.Status != entities.InvoiceIRNGenerated {
		t.Errorf("Expected irn_generated, got %s", inv.Status)
	}
	if len(inv.IRN) != 64 {
		t.Errorf("Expected a 64 character IRN, got %q", inv.IRN)
	}
	if len(inv.AckNumber) != 15 {
		t.Errorf("Expected a 15 digit acknowledgement number, got %q", inv.AckNumber)
	}

	again, err := NewLocalRegistrar(companyGSTIN).Register(f.ctx, inv)
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if again.IRN != inv.IRN {
		t.Errorf("Expected the IRN to be deterministic")
	}

	if _, err := f.svc.CancelSaleInvoice(f.ctx, inv.ID); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected a registered invoice to refuse cancellation, got %v", err)
	}
}

func TestRegisterEInvoice_FailureKeepsInvoicePending(t *testing.T) {
	registrar := &flakyRegistrar{fail: true}
	f := newFixture(t, WithRegistrar(registrar))
	inv := f.invoice(t, localCustomer)
	if _, err := f.svc.GenerateSaleInvoice(f.ctx, inv.ID); err != nil {
		t.Fatalf("Failed to generate invoice: %v", err)
	}

	inv, err := f.svc.RegisterEInvoice(f.ctx, inv.ID)
	if !errors.Is(err, ErrRegistration) {
		t.Fatalf("Expected a registration error, got %v", err)
	}
	if inv.Status != entities.InvoiceIRNPending {
		t.Errorf("Expected irn_pending, got %s", inv.Status)
	}
	if !strings.Contains(inv.IRNError, "portal unavailable") {
		t.Errorf("Expected the failure to be recorded, got %q", inv.IRNError)
	}

	registrar.fail = false
	inv, err = f.svc.RegisterEInvoice(f.ctx, inv.ID)
	if err != nil {
		t.Fatalf("Failed to retry registration: %v", err)
	}
	if inv.IRN != "irn-"+inv.Number || inv.IRNError != "" {
		t.Errorf("Expected the retry to record the IRN, got %q/%q", inv.IRN, inv.IRNError)
	}
	if registrar.calls != 2 {
		t.Errorf("Expected 2 registrar calls, got %d", registrar.calls)
	}
}

func TestRegisterEInvoice_NeedsRegisteredCustomer(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, entities.Customer{Name: "Walk-in"})
	if _, err := f.svc.GenerateSaleInvoice(f.ctx, inv.ID); err != nil {
		t.Fatalf("Failed to generate invoice: %v", err)
	}
	_, err := f.svc.RegisterEInvoice(f.ctx, inv.ID)
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestFiscalYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), "2023-24"},
		{time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2099, 12, 1, 0, 0, 0, 0, time.UTC), "2099-00"},
	}
	for _, tt := range tests {
		if got := FiscalYear(tt.date); got != tt.want {
			t.Errorf("Expected %s for %s, got %s", tt.want, tt.date.Format("2006-01-02"), got)
		}
	}
}
