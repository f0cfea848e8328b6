package entities

import (
	"errors"
	"strings"
	"testing"
)

func TestLifecycles_TerminalStates(t *testing.T) {
	testCases := []struct {
		name     string
		terminal []string
		check    func(s string) bool
	}{
		{"indent", []string{"rejected", "converted_to_po", "cancelled"}, func(s string) bool { return IndentLifecycle.IsTerminal(IndentStatus(s)) }},
		{"purchase order", []string{"completed", "cancelled"}, func(s string) bool { return PurchaseOrderLifecycle.IsTerminal(POStatus(s)) }},
		{"grn", []string{"completed", "partial", "rejected"}, func(s string) bool { return GRNLifecycle.IsTerminal(GRNStatus(s)) }},
		{"delivery challan", []string{"received", "returned", "cancelled"}, func(s string) bool { return DeliveryChallanLifecycle.IsTerminal(DCStatus(s)) }},
		{"rework", []string{"completed"}, func(s string) bool { return ReworkLifecycle.IsTerminal(ReworkStatus(s)) }},
		{"sale invoice", []string{"irn_generated", "cancelled"}, func(s string) bool { return SaleInvoiceLifecycle.IsTerminal(InvoiceStatus(s)) }},
		{"credit note", []string{"adjusted", "cancelled"}, func(s string) bool { return CreditNoteLifecycle.IsTerminal(CreditNoteStatus(s)) }},
		{"stock transfer", []string{"completed", "cancelled"}, func(s string) bool { return StockTransferLifecycle.IsTerminal(TransferStatus(s)) }},
		{"production issue", []string{"closed", "cancelled"}, func(s string) bool { return ProductionIssueLifecycle.IsTerminal(IssueStatus(s)) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, s := range tc.terminal {
				if !tc.check(s) {
					t.Errorf("Expected %s to be terminal", s)
				}
			}
			if tc.check("draft") {
				t.Errorf("Expected draft not to be terminal")
			}
		})
	}
}

func TestStateMachine_Check(t *testing.T) {
	if err := IndentLifecycle.Check("ind-1", IndentPendingApproval, IndentApproved); err != nil {
		t.Errorf("Expected pending_approval -> approved to be allowed, got %v", err)
	}

	err := IndentLifecycle.Check("ind-1", IndentDraft, IndentApproved)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected invalid transition, got %v", err)
	}
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("Expected *InvalidTransitionError, got %T", err)
	}
	if ite.From != "draft" || ite.To != "approved" || ite.Kind != KindIndent {
		t.Errorf("Unexpected error fields: %+v", ite)
	}
	if !strings.Contains(err.Error(), "indent ind-1 cannot move from draft to approved") {
		t.Errorf("Unexpected error message: %s", err)
	}
}

func TestStateMachine_AllowedTransitions(t *testing.T) {
	got := PurchaseOrderLifecycle.AllowedTransitions(POAcknowledged)
	want := []POStatus{POPartial, POCompleted, POCancelled}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}

	got[0] = POCancelled
	if PurchaseOrderLifecycle.AllowedTransitions(POAcknowledged)[0] != POPartial {
		t.Error("Expected AllowedTransitions to return a copy")
	}
}

func TestStateMachine_CheckInitialAndMutable(t *testing.T) {
	if err := IndentLifecycle.CheckInitial("", IndentPendingApproval); err != nil {
		t.Errorf("Expected indents to be creatable in pending_approval, got %v", err)
	}
	if err := IndentLifecycle.CheckInitial("", IndentApproved); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected creation in approved to fail, got %v", err)
	}
	if err := GRNLifecycle.CheckMutable("grn-1", GRNCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected completed GRN to be immutable, got %v", err)
	}
	if err := GRNLifecycle.CheckMutable("grn-1", GRNDraft); err != nil {
		t.Errorf("Expected draft GRN to be mutable, got %v", err)
	}
}

func TestNewStateMachine_PanicsOnUnknownTarget(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for a transition to an unknown status")
		}
	}()
	NewStateMachine(KindIndent, []IndentStatus{IndentDraft}, map[IndentStatus][]IndentStatus{
		IndentDraft: {IndentApproved},
	})
}
