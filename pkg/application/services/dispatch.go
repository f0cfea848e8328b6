package services

import (
	"context"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// CreateDeliveryChallan drafts a challan for goods leaving a location. The
// stock is checked now and taken out on dispatch.
func (s *Service) CreateDeliveryChallan(ctx context.Context, in dto.DeliveryChallanInput) (*entities.DeliveryChallan, error) {
	var out *entities.DeliveryChallan
	err := s.update(ctx, "create delivery challan", func(w *work) error {
		if _, err := w.supplier(in.PartyID, ""); err != nil {
			return err
		}
		if _, err := w.location(in.FromLocationID); err != nil {
			return err
		}
		check := w.issueContext(in.FromLocationID)
		items := make([]entities.DCItem, len(in.Items))
		for i, it := range in.Items {
			part, err := w.validateLine(check, entities.PartLine{SparePartID: it.SparePartID, Quantity: it.Quantity})
			if err != nil {
				return err
			}
			value := part.UnitCost
			if it.UnitValue != nil {
				value = *it.UnitValue
			}
			items[i] = entities.DCItem{
				SparePartID:  it.SparePartID,
				SerialNumber: it.SerialNumber,
				Quantity:     it.Quantity,
				UnitValue:    value,
				Remarks:      it.Remarks,
			}
		}
		header, err := w.header(entities.KindDeliveryChallan, in.Date, in.Notes)
		if err != nil {
			return err
		}
		dc, err := entities.NewDeliveryChallan(header, in.Type, in.Purpose, in.PartyID, in.FromLocationID, in.ReturnDueDate, items)
		if err != nil {
			return err
		}
		if err := w.create(dc); err != nil {
			return err
		}
		out = dc
		return nil
	})
	return out, err
}

// changeChallan applies fn to a standalone challan. Challans owned by a
// rework only move through the rework operations.
func (s *Service) changeChallan(ctx context.Context, op, id string, fn func(w *work, dc *entities.DeliveryChallan) error) (*entities.DeliveryChallan, error) {
	var out *entities.DeliveryChallan
	err := s.update(ctx, op, func(w *work) error {
		dc, err := repositories.GetDocument[*entities.DeliveryChallan](w.tx.Documents(), id)
		if err != nil {
			return err
		}
		if dc.ReworkID != "" {
			return &entities.InvalidTransitionError{
				Kind:   entities.KindDeliveryChallan,
				ID:     dc.ID,
				From:   dc.State(),
				Reason: "challan belongs to rework " + dc.ReworkID,
			}
		}
		from := dc.State()
		if err := fn(w, dc); err != nil {
			return err
		}
		if err := w.save(dc, from); err != nil {
			return err
		}
		out = dc
		return nil
	})
	return out, err
}

func (w *work) dispatchChallan(dc *entities.DeliveryChallan, vehicleNumber string) error {
	if err := dc.Dispatch(vehicleNumber, w.now); err != nil {
		return err
	}
	ref := entities.RefOf(dc)
	for _, it := range dc.Items {
		if err := w.move(entities.MovementIssue, it.SparePartID, dc.FromLocationID, it.Quantity, ref, string(dc.Purpose)); err != nil {
			return err
		}
	}
	return nil
}

// DispatchDeliveryChallan sends the goods and takes them out of stock
func (s *Service) DispatchDeliveryChallan(ctx context.Context, id string, in dto.DispatchInput) (*entities.DeliveryChallan, error) {
	return s.changeChallan(ctx, "dispatch delivery challan", id, func(w *work, dc *entities.DeliveryChallan) error {
		return w.dispatchChallan(dc, in.VehicleNumber)
	})
}

// ReceiveDeliveryChallan confirms delivery of a non-returnable challan
func (s *Service) ReceiveDeliveryChallan(ctx context.Context, id string) (*entities.DeliveryChallan, error) {
	return s.changeChallan(ctx, "receive delivery challan", id, func(w *work, dc *entities.DeliveryChallan) error {
		return dc.MarkReceived(w.now)
	})
}

// ReturnDeliveryChallan books goods coming back on a returnable challan and
// restocks them at the source location
func (s *Service) ReturnDeliveryChallan(ctx context.Context, id string, in dto.ReturnDeliveryChallanInput) (*entities.DeliveryChallan, error) {
	return s.changeChallan(ctx, "return delivery challan", id, func(w *work, dc *entities.DeliveryChallan) error {
		if err := dc.RecordReturn(in.Quantities, w.now); err != nil {
			return err
		}
		ref := entities.RefOf(dc)
		for _, it := range dc.Items {
			qty := in.Quantities[it.ID]
			if qty == 0 {
				continue
			}
			if err := w.move(entities.MovementReceipt, it.SparePartID, dc.FromLocationID, qty, ref, "returned"); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) CancelDeliveryChallan(ctx context.Context, id string) (*entities.DeliveryChallan, error) {
	return s.changeChallan(ctx, "cancel delivery challan", id, func(w *work, dc *entities.DeliveryChallan) error {
		return dc.Cancel(w.now)
	})
}

func (s *Service) GetDeliveryChallan(ctx context.Context, id string) (*entities.DeliveryChallan, error) {
	return getDocument[*entities.DeliveryChallan](ctx, s, id)
}

func (s *Service) ListDeliveryChallans(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.DeliveryChallan, error) {
	return listDocuments[*entities.DeliveryChallan](ctx, s, filter)
}

// OverdueChallans lists returnable challans past their return due date
func (s *Service) OverdueChallans(ctx context.Context) ([]*entities.DeliveryChallan, error) {
	all, err := s.ListDeliveryChallans(ctx, repositories.DocumentFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []*entities.DeliveryChallan
	for _, dc := range all {
		if dc.Overdue(now) {
			out = append(out, dc)
		}
	}
	return out, nil
}

// CreateRework drafts a repair order with a service vendor
func (s *Service) CreateRework(ctx context.Context, in dto.ReworkInput) (*entities.Rework, error) {
	var out *entities.Rework
	err := s.update(ctx, "create rework", func(w *work) error {
		if _, err := w.supplier(in.VendorID, entities.ServiceVendor); err != nil {
			return err
		}
		if _, err := w.location(in.LocationID); err != nil {
			return err
		}
		check := w.issueContext(in.LocationID)
		items := make([]entities.ReworkItem, len(in.Items))
		for i, it := range in.Items {
			if _, err := w.validateLine(check, entities.PartLine{SparePartID: it.SparePartID, Quantity: it.Quantity}); err != nil {
				return err
			}
			items[i] = entities.ReworkItem{
				SparePartID:        it.SparePartID,
				SerialNumber:       it.SerialNumber,
				ProblemDescription: it.ProblemDescription,
				QuantitySent:       it.Quantity,
				EstimatedCost:      it.EstimatedCost,
			}
		}
		header, err := w.header(entities.KindRework, in.Date, in.Notes)
		if err != nil {
			return err
		}
		rw, err := entities.NewRework(header, in.VendorID, in.LocationID, in.ExpectedReturnDate, items)
		if err != nil {
			return err
		}
		if err := w.create(rw); err != nil {
			return err
		}
		out = rw
		return nil
	})
	return out, err
}

// reworkPair loads a rework and, once generated, its challan
func (w *work) reworkPair(id string) (*entities.Rework, *entities.DeliveryChallan, error) {
	rw, err := repositories.GetDocument[*entities.Rework](w.tx.Documents(), id)
	if err != nil {
		return nil, nil, err
	}
	if rw.DeliveryChallanID == "" {
		return rw, nil, nil
	}
	dc, err := repositories.GetDocument[*entities.DeliveryChallan](w.tx.Documents(), rw.DeliveryChallanID)
	if err != nil {
		return nil, nil, err
	}
	return rw, dc, nil
}

func (s *Service) changeRework(ctx context.Context, op, id string, fn func(w *work, rw *entities.Rework, dc *entities.DeliveryChallan) error) (*entities.Rework, error) {
	var out *entities.Rework
	err := s.update(ctx, op, func(w *work) error {
		rw, dc, err := w.reworkPair(id)
		if err != nil {
			return err
		}
		rwFrom := rw.State()
		var dcFrom string
		if dc != nil {
			dcFrom = dc.State()
		}
		if err := fn(w, rw, dc); err != nil {
			return err
		}
		if dc != nil {
			if err := w.save(dc, dcFrom); err != nil {
				return err
			}
		}
		if err := w.save(rw, rwFrom); err != nil {
			return err
		}
		out = rw
		return nil
	})
	return out, err
}

// GenerateReworkDC creates the returnable challan the rework's parts travel on
func (s *Service) GenerateReworkDC(ctx context.Context, id string) (*entities.DeliveryChallan, error) {
	var out *entities.DeliveryChallan
	err := s.update(ctx, "generate rework challan", func(w *work) error {
		rw, err := repositories.GetDocument[*entities.Rework](w.tx.Documents(), id)
		if err != nil {
			return err
		}
		if err := entities.ReworkLifecycle.Check(rw.ID, rw.Status, entities.ReworkDCGenerated); err != nil {
			return err
		}
		header, err := w.header(entities.KindDeliveryChallan, w.now, "Rework "+rw.Number)
		if err != nil {
			return err
		}
		dc, err := entities.NewDeliveryChallan(header, entities.DCReturnable, entities.PurposeRework, rw.VendorID, rw.LocationID, rw.ExpectedReturnDate, rw.ChallanItems())
		if err != nil {
			return err
		}
		dc.ReworkID = rw.ID
		from := rw.State()
		if err := rw.AttachChallan(dc, w.now); err != nil {
			return err
		}
		if err := w.create(dc); err != nil {
			return err
		}
		if err := w.save(rw, from); err != nil {
			return err
		}
		out = dc
		return nil
	})
	return out, err
}

// SendRework dispatches the rework's challan and takes the parts out of stock
func (s *Service) SendRework(ctx context.Context, id string, in dto.DispatchInput) (*entities.Rework, error) {
	return s.changeRework(ctx, "send rework", id, func(w *work, rw *entities.Rework, dc *entities.DeliveryChallan) error {
		if err := rw.MarkSent(w.now); err != nil {
			return err
		}
		if dc == nil {
			return entities.NewValidationError("delivery_challan_id", nil, "generate the delivery challan first")
		}
		return w.dispatchChallan(dc, in.VehicleNumber)
	})
}

func (s *Service) MarkReworkInService(ctx context.Context, id string) (*entities.Rework, error) {
	return s.changeRework(ctx, "start rework service", id, func(w *work, rw *entities.Rework, _ *entities.DeliveryChallan) error {
		return rw.MarkInService(w.now)
	})
}

// ReceiveRework books repaired and rejected parts. Repaired parts return to
// stock; both count as returned on the challan.
func (s *Service) ReceiveRework(ctx context.Context, id string, in dto.ReceiveReworkInput) (*entities.Rework, error) {
	return s.changeRework(ctx, "receive rework", id, func(w *work, rw *entities.Rework, dc *entities.DeliveryChallan) error {
		receipts := make([]entities.ReworkReceipt, len(in.Items))
		for i, it := range in.Items {
			receipts[i] = entities.ReworkReceipt{
				ItemID:     it.ItemID,
				Received:   it.Received,
				Rejected:   it.Rejected,
				ActualCost: it.ActualCost,
			}
		}
		if err := rw.RecordReceipt(receipts, w.now); err != nil {
			return err
		}

		returns := make(map[string]entities.Quantity)
		var total entities.Quantity
		for _, r := range receipts {
			it, _ := rw.Item(r.ItemID)
			if n := r.Received + r.Rejected; n > 0 {
				returns[it.DCItemID] += n
				total += n
			}
		}
		if total > 0 && dc != nil {
			if err := dc.RecordReturn(returns, w.now); err != nil {
				return err
			}
		}

		ref := entities.RefOf(rw)
		for _, r := range receipts {
			if r.Received == 0 {
				continue
			}
			it, _ := rw.Item(r.ItemID)
			if err := w.move(entities.MovementReceipt, it.SparePartID, rw.LocationID, r.Received, ref, "repaired"); err != nil {
				return err
			}
		}
		return nil
	})
}

// CompleteRework closes a rework once every item is received or rejected
func (s *Service) CompleteRework(ctx context.Context, id string) (*entities.Rework, error) {
	return s.changeRework(ctx, "complete rework", id, func(w *work, rw *entities.Rework, _ *entities.DeliveryChallan) error {
		return rw.Complete(w.now)
	})
}

func (s *Service) GetRework(ctx context.Context, id string) (*entities.Rework, error) {
	return getDocument[*entities.Rework](ctx, s, id)
}

func (s *Service) ListReworks(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.Rework, error) {
	return listDocuments[*entities.Rework](ctx, s, filter)
}
