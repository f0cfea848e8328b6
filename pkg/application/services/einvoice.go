package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/vsinha/spares/pkg/domain/entities"
)

// IRNResult is what the invoice registration portal returns
type IRNResult struct {
	IRN       string
	AckNumber string
}

// EInvoiceRegistrar registers a sale invoice and returns its IRN
type EInvoiceRegistrar interface {
	Register(ctx context.Context, inv *entities.SaleInvoice) (IRNResult, error)
}

// LocalRegistrar computes the IRN locally the way the portal does: the
// SHA-256 of seller GSTIN, fiscal year, document type and document number.
type LocalRegistrar struct {
	SellerGSTIN string
}

func NewLocalRegistrar(sellerGSTIN string) *LocalRegistrar {
	return &LocalRegistrar{SellerGSTIN: sellerGSTIN}
}

const documentTypeInvoice = "INV"

func (r *LocalRegistrar) Register(ctx context.Context, inv *entities.SaleInvoice) (IRNResult, error) {
	if err := ctx.Err(); err != nil {
		return IRNResult{}, err
	}
	if r.SellerGSTIN == "" {
		return IRNResult{}, fmt.Errorf("seller GSTIN is not configured")
	}
	sum := sha256.Sum256([]byte(r.SellerGSTIN + FiscalYear(inv.Date) + documentTypeInvoice + inv.Number))
	ack := binary.BigEndian.Uint64(sum[:8]) % 1_000_000_000_000_000
	return IRNResult{
		IRN:       hex.EncodeToString(sum[:]),
		AckNumber: fmt.Sprintf("%015d", ack),
	}, nil
}

// FiscalYear returns the Indian financial year (April to March) of t, e.g.
// 2024-25
func FiscalYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}
