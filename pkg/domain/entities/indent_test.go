package entities

import (
	"errors"
	"testing"
)

func newTestIndent(t *testing.T, status IndentStatus) *Indent {
	t.Helper()
	in, err := NewIndent(testHeader(t, KindIndent), "loc-1", "ravi", PriorityHigh, status, []IndentItem{
		{SparePartID: "part-1", QuantityRequested: 10, EstimatedUnitCost: dec("250")},
		{SparePartID: "part-2", QuantityRequested: 4, EstimatedUnitCost: dec("1200")},
	})
	if err != nil {
		t.Fatalf("Failed to create indent: %v", err)
	}
	return in
}

func TestNewIndent_Validation(t *testing.T) {
	items := []IndentItem{{SparePartID: "part-1", QuantityRequested: 1}}
	testCases := []struct {
		name   string
		status IndentStatus
		loc    string
		items  []IndentItem
		target error
	}{
		{"approved is not an initial state", IndentApproved, "loc-1", items, ErrInvalidTransition},
		{"missing location", IndentDraft, "", items, ErrValidation},
		{"no items", IndentDraft, "loc-1", nil, ErrValidation},
		{"zero quantity", IndentDraft, "loc-1", []IndentItem{{SparePartID: "part-1"}}, ErrValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIndent(testHeader(t, KindIndent), tc.loc, "ravi", "", tc.status, tc.items)
			if !errors.Is(err, tc.target) {
				t.Errorf("Expected %v, got %v", tc.target, err)
			}
		})
	}
}

func TestIndent_PartialApproval(t *testing.T) {
	in := newTestIndent(t, IndentPendingApproval)
	first := in.Items[0].ID

	if err := in.Approve(map[string]Quantity{first: 6}, "manager", testNow); err != nil {
		t.Fatalf("Failed to approve: %v", err)
	}
	if in.Status != IndentApproved {
		t.Errorf("Expected status approved, got %s", in.Status)
	}
	if in.Items[0].QuantityApproved != 6 {
		t.Errorf("Expected approved quantity 6, got %d", in.Items[0].QuantityApproved)
	}
	if in.Items[1].QuantityApproved != 4 {
		t.Errorf("Expected unlisted line approved in full, got %d", in.Items[1].QuantityApproved)
	}
	assertDecimal(t, "estimated total", "6300", in.EstimatedTotal())
}

func TestIndent_ApprovalRules(t *testing.T) {
	testCases := []struct {
		name      string
		approvals func(in *Indent) map[string]Quantity
		target    error
	}{
		{"above requested", func(in *Indent) map[string]Quantity {
			return map[string]Quantity{in.Items[0].ID: 11}
		}, ErrValidation},
		{"every line dropped", func(in *Indent) map[string]Quantity {
			return map[string]Quantity{in.Items[0].ID: 0, in.Items[1].ID: 0}
		}, ErrValidation},
		{"unknown line", func(in *Indent) map[string]Quantity {
			return map[string]Quantity{"nope": 1}
		}, ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := newTestIndent(t, IndentPendingApproval)
			err := in.Approve(tc.approvals(in), "manager", testNow)
			if !errors.Is(err, tc.target) {
				t.Fatalf("Expected %v, got %v", tc.target, err)
			}
			if in.Status != IndentPendingApproval {
				t.Errorf("Expected status unchanged, got %s", in.Status)
			}
		})
	}
}

func TestIndent_DropLineAndConvert(t *testing.T) {
	in := newTestIndent(t, IndentPendingApproval)
	if err := in.Approve(map[string]Quantity{in.Items[1].ID: 0}, "manager", testNow); err != nil {
		t.Fatalf("Failed to approve: %v", err)
	}
	if got := len(in.ApprovedItems()); got != 1 {
		t.Errorf("Expected 1 approved item, got %d", got)
	}

	if err := in.MarkConverted("po-1", testNow); err != nil {
		t.Fatalf("Failed to mark converted: %v", err)
	}
	if in.Status != IndentConvertedToPO || in.PurchaseOrderID != "po-1" {
		t.Errorf("Expected converted_to_po with po-1, got %s/%s", in.Status, in.PurchaseOrderID)
	}
	if err := in.MarkConverted("po-2", testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected second conversion to fail, got %v", err)
	}
}

func TestIndent_ApproveFromDraftFails(t *testing.T) {
	in := newTestIndent(t, IndentDraft)
	if err := in.Approve(nil, "manager", testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected invalid transition, got %v", err)
	}
	if err := in.Submit(testNow); err != nil {
		t.Fatalf("Failed to submit: %v", err)
	}
	if err := in.Reject("", "manager", testNow); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected reason to be required, got %v", err)
	}
	if err := in.Reject("budget", "manager", testNow); err != nil {
		t.Fatalf("Failed to reject: %v", err)
	}
	if err := in.Cancel(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected rejected indent to be final, got %v", err)
	}
}

func TestIndent_CloneIsDeep(t *testing.T) {
	in := newTestIndent(t, IndentDraft)
	c := in.CloneDocument().(*Indent)
	c.Items[0].QuantityRequested = 99
	if in.Items[0].QuantityRequested == 99 {
		t.Error("Expected clone items to be independent")
	}
}
