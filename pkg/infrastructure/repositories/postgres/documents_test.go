package postgres

import (
	"reflect"
	"testing"

	"github.com/vsinha/spares/pkg/domain/entities"
)

func TestEncodeDocument_CopiesIndexedColumns(t *testing.T) {
	header, err := entities.NewDocumentHeader("CN-2024-0001", testNow, "", testNow)
	if err != nil {
		t.Fatalf("Failed to build header: %v", err)
	}
	cn := &entities.CreditNote{DocumentHeader: header, PurchaseOrderID: "po-1", GRNID: "grn-1", Status: entities.CreditNoteIssued}
	cn.SetDocVersion(3)

	m, err := encodeDocument(cn)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if m.Kind != string(entities.KindCreditNote) || m.Number != "CN-2024-0001" || m.Status != cn.State() || m.Version != 3 {
		t.Errorf("Expected the header columns copied, got %+v", m)
	}
	if !reflect.DeepEqual([]string(m.RefIDs), []string{"po-1", "grn-1"}) {
		t.Errorf("Expected both references, got %v", m.RefIDs)
	}

	// the version column wins over the payload
	m.Version = 5
	doc, err := decodeDocument(m)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	got, ok := doc.(*entities.CreditNote)
	if !ok {
		t.Fatalf("Expected a credit note, got %T", doc)
	}
	if got.DocVersion() != 5 || got.GRNID != "grn-1" || got.Status != entities.CreditNoteIssued {
		t.Errorf("Expected the credit note back at version 5, got %+v", got)
	}
}

func TestDecodeDocument_UnknownKind(t *testing.T) {
	if _, err := decodeDocument(&documentModel{Kind: "memo", Payload: []byte(`{}`)}); err == nil {
		t.Errorf("Expected an unknown kind to fail")
	}
}
