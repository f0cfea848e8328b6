package entities

import (
	"errors"
	"testing"
)

func newTestInvoice(t *testing.T, gstin string) *SaleInvoice {
	t.Helper()
	inv, err := NewSaleInvoice(testHeader(t, KindSaleInvoice), Customer{Name: "Apex Motors", GSTIN: gstin}, "loc-1", false, []InvoiceItem{
		{SparePartID: "part-1", HSNCode: "8483", Quantity: 3, UnitPrice: dec("33.33"), GSTRate: 18},
	})
	if err != nil {
		t.Fatalf("Failed to create invoice: %v", err)
	}
	return inv
}

func TestSaleInvoice_RoundingAdjustment(t *testing.T) {
	inv := newTestInvoice(t, "")

	assertDecimal(t, "subtotal", "99.99", inv.Subtotal)
	assertDecimal(t, "cgst", "9.00", inv.CGST)
	assertDecimal(t, "sgst", "9.00", inv.SGST)
	assertDecimal(t, "total", "118", inv.Total)
	assertDecimal(t, "rounding", "0.01", inv.RoundingAdjustment)

	sum := inv.Subtotal.Sub(inv.Discount).Add(inv.CGST).Add(inv.SGST).Add(inv.IGST).Add(inv.RoundingAdjustment)
	if !sum.Equal(inv.Total) {
		t.Errorf("Expected components to add up to %s, got %s", inv.Total, sum)
	}
}

func TestSaleInvoice_DiscountReducesTaxable(t *testing.T) {
	inv, err := NewSaleInvoice(testHeader(t, KindSaleInvoice), Customer{Name: "Apex Motors"}, "loc-1", true, []InvoiceItem{
		{SparePartID: "part-1", Quantity: 2, UnitPrice: dec("500"), Discount: dec("100"), GSTRate: 28},
	})
	if err != nil {
		t.Fatalf("Failed to create invoice: %v", err)
	}
	assertDecimal(t, "discount", "100", inv.Discount)
	assertDecimal(t, "igst", "252", inv.IGST)
	assertDecimal(t, "total", "1152", inv.Total)
}

func TestSaleInvoice_IRNFlow(t *testing.T) {
	inv := newTestInvoice(t, "")
	if err := inv.Generate(testNow); err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if err := inv.BeginIRN(testNow); !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected unregistered customer to be refused, got %v", err)
	}

	inv = newTestInvoice(t, "27AAPFU0939F1ZV")
	if err := inv.BeginIRN(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected draft invoice to refuse IRN, got %v", err)
	}
	_ = inv.Generate(testNow)
	if err := inv.BeginIRN(testNow); err != nil {
		t.Fatalf("Failed to begin IRN: %v", err)
	}
	inv.RecordIRNFailure("portal timeout", testNow)
	if inv.Status != InvoiceIRNPending {
		t.Errorf("Expected failure to leave invoice pending, got %s", inv.Status)
	}
	if err := inv.BeginIRN(testNow); err != nil {
		t.Errorf("Expected retry from irn_pending to be allowed, got %v", err)
	}
	if err := inv.RecordIRN("abc123", "1122", testNow); err != nil {
		t.Fatalf("Failed to record IRN: %v", err)
	}
	if inv.IRNError != "" {
		t.Errorf("Expected IRN error cleared, got %q", inv.IRNError)
	}
	if err := inv.Cancel(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected registered invoice not to be cancellable, got %v", err)
	}
}

func TestCreditNote_Lifecycle(t *testing.T) {
	cn, err := NewCreditNote(testHeader(t, KindCreditNote), "sup-1", "po-1", "grn-1", ReasonQuality, true, []CreditNoteItem{
		{SourceItemID: "grn-item-1", SparePartID: "part-1", Quantity: 3, UnitPrice: dec("100"), GSTRate: 18},
	})
	if err != nil {
		t.Fatalf("Failed to create credit note: %v", err)
	}
	assertDecimal(t, "igst", "54", cn.Amounts.IGST)
	assertDecimal(t, "total", "354", cn.Amounts.Total)

	if err := cn.Adjust("INV-9", testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected draft credit note not to be adjustable, got %v", err)
	}
	if err := cn.Issue(testNow); err != nil {
		t.Fatalf("Failed to issue: %v", err)
	}
	if err := cn.Adjust("INV-9", testNow); err != nil {
		t.Fatalf("Failed to adjust: %v", err)
	}
	if err := cn.Cancel(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected adjusted credit note to be final, got %v", err)
	}
	if refs := cn.RefIDs(); len(refs) != 2 {
		t.Errorf("Expected references to PO and GRN, got %v", refs)
	}
}
