package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/gst"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// CreateGRN records goods arriving against a purchase order. Each line's
// ordered quantity is the PO line's outstanding quantity.
func (s *Service) CreateGRN(ctx context.Context, in dto.GRNInput) (*entities.GRN, error) {
	var out *entities.GRN
	err := s.update(ctx, "create GRN", func(w *work) error {
		po, err := repositories.GetDocument[*entities.PurchaseOrder](w.tx.Documents(), in.PurchaseOrderID)
		if err != nil {
			return err
		}
		if !po.CanReceive() {
			return &entities.InvalidTransitionError{
				Kind:   entities.KindPurchaseOrder,
				ID:     po.ID,
				From:   po.State(),
				Reason: "goods cannot be received against this order",
			}
		}
		locationID := in.LocationID
		if locationID == "" {
			locationID = po.DeliveryLocationID
		}
		if _, err := w.location(locationID); err != nil {
			return err
		}
		items := make([]entities.GRNItem, len(in.Items))
		for i, it := range in.Items {
			line, ok := po.Item(it.POItemID)
			if !ok {
				return entities.NewNotFoundError("purchase order item", it.POItemID)
			}
			accepted := it.ReceivedQuantity - it.RejectedQuantity
			if it.AcceptedQuantity != nil {
				accepted = *it.AcceptedQuantity
			}
			items[i] = entities.GRNItem{
				POItemID:         line.ID,
				SparePartID:      line.SparePartID,
				OrderedQuantity:  line.Outstanding(),
				ReceivedQuantity: it.ReceivedQuantity,
				AcceptedQuantity: accepted,
				RejectedQuantity: it.RejectedQuantity,
				UnitPrice:        line.UnitPrice,
				GSTRate:          line.GSTRate,
				RejectionReason:  it.RejectionReason,
				BatchNumber:      it.BatchNumber,
			}
		}
		header, err := w.header(entities.KindGRN, in.Date, in.Notes)
		if err != nil {
			return err
		}
		grn, err := entities.NewGRN(header, po, locationID, in.ReceivedBy, items)
		if err != nil {
			return err
		}
		grn.InvoiceNumber = in.InvoiceNumber
		grn.InvoiceDate = in.InvoiceDate
		if err := w.create(grn); err != nil {
			return err
		}
		out = grn
		return nil
	})
	return out, err
}

// PostGRN finalizes a GRN: accepted quantities are received into stock and
// booked against the purchase order, which becomes partial or completed.
// Posting a GRN twice is an invalid transition and leaves stock unchanged.
func (s *Service) PostGRN(ctx context.Context, id string, in dto.PostGRNInput) (*entities.GRN, error) {
	var out *entities.GRN
	err := s.update(ctx, "post GRN", func(w *work) error {
		grn, err := repositories.GetDocument[*entities.GRN](w.tx.Documents(), id)
		if err != nil {
			return err
		}
		from := grn.State()
		if err := grn.Post(in.InspectedBy, w.now); err != nil {
			return err
		}

		accepted := grn.AcceptedByPOItem()
		if len(accepted) > 0 {
			po, err := repositories.GetDocument[*entities.PurchaseOrder](w.tx.Documents(), grn.PurchaseOrderID)
			if err != nil {
				return err
			}
			poFrom := po.State()
			if err := po.ApplyReceipt(accepted, w.now); err != nil {
				return err
			}
			if err := w.save(po, poFrom); err != nil {
				return err
			}
		}
		ref := entities.RefOf(grn)
		for _, it := range grn.Items {
			if it.AcceptedQuantity == 0 {
				continue
			}
			if err := w.move(entities.MovementReceipt, it.SparePartID, grn.LocationID, it.AcceptedQuantity, ref, ""); err != nil {
				return err
			}
		}
		if err := w.save(grn, from); err != nil {
			return err
		}
		out = grn
		return nil
	})
	return out, err
}

func (s *Service) GetGRN(ctx context.Context, id string) (*entities.GRN, error) {
	return getDocument[*entities.GRN](ctx, s, id)
}

func (s *Service) ListGRNs(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.GRN, error) {
	return listDocuments[*entities.GRN](ctx, s, filter)
}

// creditSource is a line a credit note may be raised against
type creditSource struct {
	sparePartID string
	limit       entities.Quantity
	unitPrice   decimal.Decimal
	rate        gst.Rate
}

// CreateCreditNote raises a credit note against a posted GRN or, without a
// GRN, against a purchase order. Tax mirrors the source lines' rates and the
// source document's inter-state flag.
func (s *Service) CreateCreditNote(ctx context.Context, in dto.CreditNoteInput) (*entities.CreditNote, error) {
	var out *entities.CreditNote
	err := s.update(ctx, "create credit note", func(w *work) error {
		sources := make(map[string]creditSource)
		var (
			supplierID, poID string
			interState       bool
		)
		if in.GRNID != "" {
			grn, err := repositories.GetDocument[*entities.GRN](w.tx.Documents(), in.GRNID)
			if err != nil {
				return err
			}
			if grn.Status == entities.GRNDraft {
				return &entities.InvalidTransitionError{
					Kind:   entities.KindGRN,
					ID:     grn.ID,
					From:   grn.State(),
					Reason: "credit notes need a posted GRN",
				}
			}
			if in.PurchaseOrderID != "" && in.PurchaseOrderID != grn.PurchaseOrderID {
				return entities.NewValidationError("purchase_order_id", in.PurchaseOrderID, "GRN belongs to another purchase order")
			}
			supplierID, poID, interState = grn.SupplierID, grn.PurchaseOrderID, grn.InterState
			for _, it := range grn.Items {
				sources[it.ID] = creditSource{it.SparePartID, it.ReceivedQuantity, it.UnitPrice, it.GSTRate}
			}
		} else {
			po, err := repositories.GetDocument[*entities.PurchaseOrder](w.tx.Documents(), in.PurchaseOrderID)
			if err != nil {
				return err
			}
			supplierID, poID, interState = po.SupplierID, po.ID, po.InterState
			for _, it := range po.Items {
				sources[it.ID] = creditSource{it.SparePartID, it.Quantity, it.UnitPrice, it.GSTRate}
			}
		}

		credited, err := w.credited(poID)
		if err != nil {
			return err
		}
		items := make([]entities.CreditNoteItem, len(in.Items))
		for i, it := range in.Items {
			src, ok := sources[it.SourceItemID]
			if !ok {
				return entities.NewNotFoundError("source item", it.SourceItemID)
			}
			if left := src.limit - credited[it.SourceItemID]; it.Quantity > left {
				return entities.NewValidationError("items.quantity", it.Quantity,
					fmt.Sprintf("credit exceeds the %d left of %d on the source line", max(left, 0), src.limit))
			}
			credited[it.SourceItemID] += it.Quantity
			price := src.unitPrice
			if it.UnitPrice != nil {
				price = *it.UnitPrice
			}
			items[i] = entities.CreditNoteItem{
				SourceItemID: it.SourceItemID,
				SparePartID:  src.sparePartID,
				Quantity:     it.Quantity,
				UnitPrice:    price,
				GSTRate:      src.rate,
			}
		}
		header, err := w.header(entities.KindCreditNote, in.Date, in.Notes)
		if err != nil {
			return err
		}
		cn, err := entities.NewCreditNote(header, supplierID, poID, in.GRNID, in.Reason, interState, items)
		if err != nil {
			return err
		}
		if err := w.create(cn); err != nil {
			return err
		}
		out = cn
		return nil
	})
	return out, err
}

// credited sums the quantity already credited per source line by credit
// notes against a purchase order or its GRNs. Cancelled notes do not count.
func (w *work) credited(purchaseOrderID string) (map[string]entities.Quantity, error) {
	notes, err := repositories.ListDocuments[*entities.CreditNote](w.tx.Documents(), repositories.DocumentFilter{RefID: purchaseOrderID})
	if err != nil {
		return nil, err
	}
	out := make(map[string]entities.Quantity)
	for _, cn := range notes {
		if cn.Status == entities.CreditNoteCancelled {
			continue
		}
		for _, it := range cn.Items {
			out[it.SourceItemID] += it.Quantity
		}
	}
	return out, nil
}

func (s *Service) changeCreditNote(ctx context.Context, op, id string, fn func(w *work, cn *entities.CreditNote) error) (*entities.CreditNote, error) {
	var out *entities.CreditNote
	err := s.update(ctx, op, func(w *work) error {
		cn, err := repositories.GetDocument[*entities.CreditNote](w.tx.Documents(), id)
		if err != nil {
			return err
		}
		from := cn.State()
		if err := fn(w, cn); err != nil {
			return err
		}
		if err := w.save(cn, from); err != nil {
			return err
		}
		out = cn
		return nil
	})
	return out, err
}

func (s *Service) IssueCreditNote(ctx context.Context, id string) (*entities.CreditNote, error) {
	return s.changeCreditNote(ctx, "issue credit note", id, func(w *work, cn *entities.CreditNote) error {
		return cn.Issue(w.now)
	})
}

// AdjustCreditNote settles an issued note against a supplier bill or payment
func (s *Service) AdjustCreditNote(ctx context.Context, id string, in dto.AdjustCreditNoteInput) (*entities.CreditNote, error) {
	return s.changeCreditNote(ctx, "adjust credit note", id, func(w *work, cn *entities.CreditNote) error {
		return cn.Adjust(in.AdjustedAgainst, w.now)
	})
}

func (s *Service) CancelCreditNote(ctx context.Context, id string) (*entities.CreditNote, error) {
	return s.changeCreditNote(ctx, "cancel credit note", id, func(w *work, cn *entities.CreditNote) error {
		return cn.Cancel(w.now)
	})
}

func (s *Service) GetCreditNote(ctx context.Context, id string) (*entities.CreditNote, error) {
	return getDocument[*entities.CreditNote](ctx, s, id)
}

func (s *Service) ListCreditNotes(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.CreditNote, error) {
	return listDocuments[*entities.CreditNote](ctx, s, filter)
}
