package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func testHeader(t *testing.T, kind DocumentKind) DocumentHeader {
	t.Helper()
	h, err := NewDocumentHeader(FormatDocumentNumber(kind, 2024, 1), testNow, "", testNow)
	if err != nil {
		t.Fatalf("Failed to create header: %v", err)
	}
	return h
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, field string, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("Expected %s %s, got %s", field, want, got)
	}
}
