package services

import (
	"context"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// CreateStockTransfer drafts a move of stock between two locations
func (s *Service) CreateStockTransfer(ctx context.Context, in dto.StockTransferInput) (*entities.StockTransfer, error) {
	var out *entities.StockTransfer
	err := s.update(ctx, "create stock transfer", func(w *work) error {
		var err error
		out, err = w.createTransfer(in)
		return err
	})
	return out, err
}

func (w *work) createTransfer(in dto.StockTransferInput) (*entities.StockTransfer, error) {
	for _, id := range []string{in.FromLocationID, in.ToLocationID} {
		if id == "" {
			continue
		}
		if _, err := w.location(id); err != nil {
			return nil, err
		}
	}
	items := make([]entities.TransferItem, len(in.Items))
	for i, it := range in.Items {
		if _, err := w.validateLine(entities.ReceiveContext{}, entities.PartLine{SparePartID: it.SparePartID, Quantity: it.Quantity}); err != nil {
			return nil, err
		}
		items[i] = entities.TransferItem{
			SparePartID:       it.SparePartID,
			QuantityRequested: it.Quantity,
			Remarks:           it.Remarks,
		}
	}
	header, err := w.header(entities.KindStockTransfer, in.Date, in.Notes)
	if err != nil {
		return nil, err
	}
	st, err := entities.NewStockTransfer(header, in.FromLocationID, in.ToLocationID, in.RequestedBy, items)
	if err != nil {
		return nil, err
	}
	if err := w.create(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) changeTransfer(ctx context.Context, op, id string, fn func(w *work, st *entities.StockTransfer) error) (*entities.StockTransfer, error) {
	var out *entities.StockTransfer
	err := s.update(ctx, op, func(w *work) error {
		st, err := repositories.GetDocument[*entities.StockTransfer](w.tx.Documents(), id)
		if err != nil {
			return err
		}
		from := st.State()
		if err := fn(w, st); err != nil {
			return err
		}
		if err := w.save(st, from); err != nil {
			return err
		}
		out = st
		return nil
	})
	return out, err
}

// SubmitStockTransfer reserves the requested quantities at the source. It
// fails with an InsufficientStockError when any line is short.
func (s *Service) SubmitStockTransfer(ctx context.Context, id string) (*entities.StockTransfer, error) {
	return s.changeTransfer(ctx, "submit stock transfer", id, func(w *work, st *entities.StockTransfer) error {
		if err := st.Submit(w.now); err != nil {
			return err
		}
		ref := entities.RefOf(st)
		for _, it := range st.Items {
			if err := w.move(entities.MovementReserve, it.SparePartID, st.FromLocationID, it.QuantityRequested, ref, ""); err != nil {
				return err
			}
		}
		return nil
	})
}

// DispatchStockTransfer ships the sent quantities out of the reservation and
// releases whatever was requested but not sent
func (s *Service) DispatchStockTransfer(ctx context.Context, id string, in dto.TransferQuantitiesInput) (*entities.StockTransfer, error) {
	return s.changeTransfer(ctx, "dispatch stock transfer", id, func(w *work, st *entities.StockTransfer) error {
		if err := st.Dispatch(in.Quantities, w.now); err != nil {
			return err
		}
		ref := entities.RefOf(st)
		for _, it := range st.Items {
			if it.QuantitySent > 0 {
				if err := w.consume(it.SparePartID, st.FromLocationID, it.QuantitySent, ref); err != nil {
					return err
				}
			}
			if short := it.QuantityRequested - it.QuantitySent; short > 0 {
				if err := w.move(entities.MovementRelease, it.SparePartID, st.FromLocationID, short, ref, "short shipped"); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ReceiveStockTransfer books the received quantities at the destination
func (s *Service) ReceiveStockTransfer(ctx context.Context, id string, in dto.TransferQuantitiesInput) (*entities.StockTransfer, error) {
	return s.changeTransfer(ctx, "receive stock transfer", id, func(w *work, st *entities.StockTransfer) error {
		if err := st.Receive(in.Quantities, w.now); err != nil {
			return err
		}
		ref := entities.RefOf(st)
		for _, it := range st.Items {
			if it.QuantityReceived == 0 {
				continue
			}
			if err := w.move(entities.MovementReceipt, it.SparePartID, st.ToLocationID, it.QuantityReceived, ref, ""); err != nil {
				return err
			}
		}
		if loss := st.InTransitLoss(); len(loss) > 0 {
			w.svc.log.Warn().Str("transfer", st.Number).Interface("lost", loss).Msg("Transfer received short")
		}
		return nil
	})
}

func (s *Service) CompleteStockTransfer(ctx context.Context, id string) (*entities.StockTransfer, error) {
	return s.changeTransfer(ctx, "complete stock transfer", id, func(w *work, st *entities.StockTransfer) error {
		return st.Complete(w.now)
	})
}

// CancelStockTransfer cancels a transfer before dispatch, releasing its
// reservation when it holds one
func (s *Service) CancelStockTransfer(ctx context.Context, id string) (*entities.StockTransfer, error) {
	return s.changeTransfer(ctx, "cancel stock transfer", id, func(w *work, st *entities.StockTransfer) error {
		reserving := st.Reserving()
		if err := st.Cancel(w.now); err != nil {
			return err
		}
		if !reserving {
			return nil
		}
		ref := entities.RefOf(st)
		for _, it := range st.Items {
			if err := w.move(entities.MovementRelease, it.SparePartID, st.FromLocationID, it.QuantityRequested, ref, "cancelled"); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) GetStockTransfer(ctx context.Context, id string) (*entities.StockTransfer, error) {
	return getDocument[*entities.StockTransfer](ctx, s, id)
}

func (s *Service) ListStockTransfers(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.StockTransfer, error) {
	return listDocuments[*entities.StockTransfer](ctx, s, filter)
}
