package entities

import (
	"errors"
	"testing"

	"github.com/vsinha/spares/pkg/domain/gst"
)

func newTestPO(t *testing.T, interState bool) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder(testHeader(t, KindPurchaseOrder), "sup-1", "loc-1", interState, []POItem{
		{SparePartID: "part-1", Quantity: 10, UnitPrice: dec("100"), GSTRate: 18},
		{SparePartID: "part-2", Quantity: 3, UnitPrice: dec("33.33"), GSTRate: 5},
	})
	if err != nil {
		t.Fatalf("Failed to create purchase order: %v", err)
	}
	return po
}

func TestPurchaseOrder_Totals(t *testing.T) {
	po := newTestPO(t, false)

	assertDecimal(t, "line cgst", "90", po.Items[0].Tax.CGST)
	assertDecimal(t, "line total", "1180", po.Items[0].Tax.Total)

	// 99.99 at 5% is 2.49975 per half, rounded only at the document total
	assertDecimal(t, "taxable", "1099.99", po.Amounts.Taxable)
	assertDecimal(t, "cgst", "92.50", po.Amounts.CGST)
	assertDecimal(t, "sgst", "92.50", po.Amounts.SGST)
	assertDecimal(t, "igst", "0", po.Amounts.IGST)
	assertDecimal(t, "total", "1284.99", po.Amounts.Total)

	inter := newTestPO(t, true)
	assertDecimal(t, "inter-state igst", "185.00", inter.Amounts.IGST)
	assertDecimal(t, "inter-state cgst", "0", inter.Amounts.CGST)
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	testCases := []struct {
		name string
		item POItem
	}{
		{"zero quantity", POItem{SparePartID: "p", UnitPrice: dec("1"), GSTRate: 18}},
		{"zero price", POItem{SparePartID: "p", Quantity: 1, GSTRate: 18}},
		{"bad rate", POItem{SparePartID: "p", Quantity: 1, UnitPrice: dec("1"), GSTRate: 7}},
		{"discount above value", POItem{SparePartID: "p", Quantity: 1, UnitPrice: dec("1"), Discount: dec("2"), GSTRate: 18}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPurchaseOrder(testHeader(t, KindPurchaseOrder), "sup-1", "loc-1", false, []POItem{tc.item})
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestPurchaseOrder_ApplyReceipt(t *testing.T) {
	po := newTestPO(t, false)
	if err := po.ApplyReceipt(map[string]Quantity{po.Items[0].ID: 1}, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected draft order to refuse receipts, got %v", err)
	}
	if err := po.Send(testNow); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	if err := po.ApplyReceipt(map[string]Quantity{po.Items[0].ID: 4}, testNow); err != nil {
		t.Fatalf("Failed to apply receipt: %v", err)
	}
	if po.Status != POPartial {
		t.Errorf("Expected partial, got %s", po.Status)
	}

	if err := po.ApplyReceipt(map[string]Quantity{po.Items[0].ID: 7}, testNow); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected over-receipt to fail, got %v", err)
	}

	if err := po.ApplyReceipt(map[string]Quantity{po.Items[0].ID: 6, po.Items[1].ID: 3}, testNow); err != nil {
		t.Fatalf("Failed to apply receipt: %v", err)
	}
	if po.Status != POCompleted {
		t.Errorf("Expected completed, got %s", po.Status)
	}
	if err := po.Cancel(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected completed order to be final, got %v", err)
	}
}

func TestPurchaseOrder_ReplaceItemsOnlyInDraft(t *testing.T) {
	po := newTestPO(t, false)
	items := []POItem{{SparePartID: "part-1", Quantity: 2, UnitPrice: dec("500"), GSTRate: gst.Rate(28)}}
	if err := po.ReplaceItems(items, testNow); err != nil {
		t.Fatalf("Failed to replace items: %v", err)
	}
	assertDecimal(t, "total", "1280", po.Amounts.Total)

	if err := po.Send(testNow); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}
	if err := po.ReplaceItems(items, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected sent order to refuse item changes, got %v", err)
	}
}
