package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// ErrRegistration wraps failures reported by the e-invoice registrar. The
// invoice stays irn_pending and registration may be retried.
var ErrRegistration = errors.New("e-invoice registration failed")

// CreateSaleInvoice drafts a tax invoice. Line rates come from the part
// master and the total is rounded to the rupee.
func (s *Service) CreateSaleInvoice(ctx context.Context, in dto.SaleInvoiceInput) (*entities.SaleInvoice, error) {
	var out *entities.SaleInvoice
	err := s.update(ctx, "create sale invoice", func(w *work) error {
		if _, err := w.location(in.LocationID); err != nil {
			return err
		}
		interState, err := s.interState(in.Customer.GSTIN)
		if err != nil {
			return err
		}
		stock := w.issueContext(in.LocationID)
		items := make([]entities.InvoiceItem, len(in.Items))
		for i, it := range in.Items {
			part, err := w.optionalPart(it.SparePartID)
			if err != nil {
				return err
			}
			line := entities.PartLine{SparePartID: it.SparePartID, Quantity: it.Quantity}
			if part != nil {
				line.UnitPrice = part.SellingPrice
			}
			if it.UnitPrice != nil {
				line.UnitPrice = *it.UnitPrice
			}
			if err := (entities.SaleContext{}).ValidateLine(part, line); err != nil {
				return err
			}
			if err := stock.ValidateLine(part, line); err != nil {
				return err
			}
			rate, err := w.rate(part)
			if err != nil {
				return err
			}
			items[i] = entities.InvoiceItem{
				SparePartID: it.SparePartID,
				HSNCode:     part.HSNCode,
				Quantity:    it.Quantity,
				UnitPrice:   line.UnitPrice,
				Discount:    it.Discount,
				GSTRate:     rate,
			}
		}
		header, err := w.header(entities.KindSaleInvoice, in.Date, in.Notes)
		if err != nil {
			return err
		}
		inv, err := entities.NewSaleInvoice(header, in.Customer, in.LocationID, interState, items)
		if err != nil {
			return err
		}
		if err := w.create(inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	return out, err
}

func (s *Service) changeInvoice(ctx context.Context, op, id string, fn func(w *work, inv *entities.SaleInvoice) error) (*entities.SaleInvoice, error) {
	var out *entities.SaleInvoice
	err := s.update(ctx, op, func(w *work) error {
		inv, err := repositories.GetDocument[*entities.SaleInvoice](w.tx.Documents(), id)
		if err != nil {
			return err
		}
		from := inv.State()
		if err := fn(w, inv); err != nil {
			return err
		}
		if err := w.save(inv, from); err != nil {
			return err
		}
		out = inv
		return nil
	})
	return out, err
}

// GenerateSaleInvoice finalizes the invoice and takes the goods out of stock
func (s *Service) GenerateSaleInvoice(ctx context.Context, id string) (*entities.SaleInvoice, error) {
	return s.changeInvoice(ctx, "generate sale invoice", id, func(w *work, inv *entities.SaleInvoice) error {
		if err := inv.Generate(w.now); err != nil {
			return err
		}
		ref := entities.RefOf(inv)
		for _, it := range inv.Items {
			if err := w.move(entities.MovementIssue, it.SparePartID, inv.LocationID, it.Quantity, ref, "sale"); err != nil {
				return err
			}
		}
		return nil
	})
}

// RegisterEInvoice obtains an IRN for a generated invoice. The invoice is
// moved to irn_pending first; the registrar is called outside any store
// transaction and its outcome recorded afterwards.
func (s *Service) RegisterEInvoice(ctx context.Context, id string) (*entities.SaleInvoice, error) {
	inv, err := s.changeInvoice(ctx, "begin e-invoice", id, func(w *work, inv *entities.SaleInvoice) error {
		return inv.BeginIRN(w.now)
	})
	if err != nil {
		return nil, err
	}

	result, regErr := s.registrar.Register(ctx, inv)
	inv, err = s.changeInvoice(ctx, "record e-invoice", id, func(w *work, inv *entities.SaleInvoice) error {
		if regErr != nil {
			inv.RecordIRNFailure(regErr.Error(), w.now)
			return nil
		}
		return inv.RecordIRN(result.IRN, result.AckNumber, w.now)
	})
	if err != nil {
		return nil, err
	}
	if regErr != nil {
		s.log.Warn().Err(regErr).Str("invoice", inv.Number).Msg("E-invoice registration failed")
		return inv, fmt.Errorf("%w: %v", ErrRegistration, regErr)
	}
	return inv, nil
}

// CancelSaleInvoice cancels an invoice. Stock taken by a generated invoice
// is put back.
func (s *Service) CancelSaleInvoice(ctx context.Context, id string) (*entities.SaleInvoice, error) {
	return s.changeInvoice(ctx, "cancel sale invoice", id, func(w *work, inv *entities.SaleInvoice) error {
		restock := inv.Status == entities.InvoiceGenerated
		if err := inv.Cancel(w.now); err != nil {
			return err
		}
		if !restock {
			return nil
		}
		ref := entities.RefOf(inv)
		for _, it := range inv.Items {
			if err := w.move(entities.MovementReceipt, it.SparePartID, inv.LocationID, it.Quantity, ref, "invoice cancelled"); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) GetSaleInvoice(ctx context.Context, id string) (*entities.SaleInvoice, error) {
	return getDocument[*entities.SaleInvoice](ctx, s, id)
}

func (s *Service) ListSaleInvoices(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.SaleInvoice, error) {
	return listDocuments[*entities.SaleInvoice](ctx, s, filter)
}
