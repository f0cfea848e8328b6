package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// CreateIndent raises a purchase requisition
func (s *Service) CreateIndent(ctx context.Context, in dto.IndentInput) (*entities.Indent, error) {
	var out *entities.Indent
	err := s.update(ctx, "create indent", func(w *work) error {
		var err error
		out, err = w.createIndent(in)
		return err
	})
	return out, err
}

func (w *work) createIndent(in dto.IndentInput) (*entities.Indent, error) {
	if _, err := w.location(in.LocationID); err != nil {
		return nil, err
	}
	items := make([]entities.IndentItem, len(in.Items))
	for i, it := range in.Items {
		part, err := w.validateLine(entities.ReceiveContext{}, entities.PartLine{SparePartID: it.SparePartID, Quantity: it.Quantity})
		if err != nil {
			return nil, err
		}
		cost := part.UnitCost
		if it.EstimatedUnitCost != nil {
			cost = *it.EstimatedUnitCost
		}
		items[i] = entities.IndentItem{
			SparePartID:       it.SparePartID,
			QuantityRequested: it.Quantity,
			EstimatedUnitCost: cost,
			Remarks:           it.Remarks,
		}
	}
	header, err := w.header(entities.KindIndent, in.Date, in.Notes)
	if err != nil {
		return nil, err
	}
	status := entities.IndentDraft
	if in.Submit {
		status = entities.IndentPendingApproval
	}
	indent, err := entities.NewIndent(header, in.LocationID, in.RequestedBy, in.Priority, status, items)
	if err != nil {
		return nil, err
	}
	indent.Department = in.Department
	indent.RequiredDate = in.RequiredDate
	if err := w.create(indent); err != nil {
		return nil, err
	}
	return indent, nil
}

// changeIndent loads an indent, applies fn and saves it
func (s *Service) changeIndent(ctx context.Context, op, id string, fn func(w *work, in *entities.Indent) error) (*entities.Indent, error) {
	var out *entities.Indent
	err := s.update(ctx, op, func(w *work) error {
		indent, err := repositories.GetDocument[*entities.Indent](w.tx.Documents(), id)
		if err != nil {
			return err
		}
		from := indent.State()
		if err := fn(w, indent); err != nil {
			return err
		}
		if err := w.save(indent, from); err != nil {
			return err
		}
		out = indent
		return nil
	})
	return out, err
}

func (s *Service) SubmitIndent(ctx context.Context, id string) (*entities.Indent, error) {
	return s.changeIndent(ctx, "submit indent", id, func(w *work, in *entities.Indent) error {
		return in.Submit(w.now)
	})
}

// ApproveIndent approves an indent, optionally reducing line quantities
func (s *Service) ApproveIndent(ctx context.Context, id string, in dto.ApproveIndentInput) (*entities.Indent, error) {
	return s.changeIndent(ctx, "approve indent", id, func(w *work, indent *entities.Indent) error {
		return indent.Approve(in.Quantities, in.ApprovedBy, w.now)
	})
}

func (s *Service) RejectIndent(ctx context.Context, id string, in dto.RejectIndentInput) (*entities.Indent, error) {
	return s.changeIndent(ctx, "reject indent", id, func(w *work, indent *entities.Indent) error {
		return indent.Reject(in.Reason, in.RejectedBy, w.now)
	})
}

func (s *Service) CancelIndent(ctx context.Context, id string) (*entities.Indent, error) {
	return s.changeIndent(ctx, "cancel indent", id, func(w *work, in *entities.Indent) error {
		return in.Cancel(w.now)
	})
}

func (s *Service) GetIndent(ctx context.Context, id string) (*entities.Indent, error) {
	return getDocument[*entities.Indent](ctx, s, id)
}

func (s *Service) ListIndents(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.Indent, error) {
	return listDocuments[*entities.Indent](ctx, s, filter)
}

// ConvertIndentToPO creates a draft purchase order from an approved indent.
// Order quantities are the approved quantities; price and GST rate come from
// the part master. The indent and the order are written atomically.
func (s *Service) ConvertIndentToPO(ctx context.Context, indentID string, in dto.ConvertIndentInput) (*entities.PurchaseOrder, error) {
	var out *entities.PurchaseOrder
	err := s.update(ctx, "convert indent", func(w *work) error {
		indent, err := repositories.GetDocument[*entities.Indent](w.tx.Documents(), indentID)
		if err != nil {
			return err
		}
		if err := entities.IndentLifecycle.Check(indent.ID, indent.Status, entities.IndentConvertedToPO); err != nil {
			return err
		}
		approved := indent.ApprovedItems()
		lines := make([]dto.POItemInput, len(approved))
		for i, it := range approved {
			lines[i] = dto.POItemInput{SparePartID: it.SparePartID, Quantity: it.QuantityApproved}
		}
		po, err := w.newPurchaseOrder(dto.PurchaseOrderInput{
			Date:               in.Date,
			SupplierID:         in.SupplierID,
			DeliveryLocationID: indent.LocationID,
			ExpectedDate:       in.ExpectedDate,
			PaymentTerms:       in.PaymentTerms,
			Notes:              in.Notes,
			Items:              lines,
		})
		if err != nil {
			return err
		}
		po.IndentID = indent.ID
		for i := range po.Items {
			po.Items[i].IndentItemID = approved[i].ID
		}
		if err := w.create(po); err != nil {
			return err
		}

		from := indent.State()
		if err := indent.MarkConverted(po.ID, w.now); err != nil {
			return err
		}
		if err := w.save(indent, from); err != nil {
			return err
		}
		out = po
		return nil
	})
	return out, err
}

func (w *work) purchaseLines(items []dto.POItemInput) ([]entities.POItem, error) {
	out := make([]entities.POItem, len(items))
	for i, it := range items {
		part, err := w.optionalPart(it.SparePartID)
		if err != nil {
			return nil, err
		}
		price := decimal.Zero
		if part != nil {
			price = part.UnitCost
		}
		if it.UnitPrice != nil {
			price = *it.UnitPrice
		}
		line := entities.PartLine{SparePartID: it.SparePartID, Quantity: it.Quantity, UnitPrice: price}
		if err := (entities.PurchaseContext{}).ValidateLine(part, line); err != nil {
			return nil, err
		}
		rate, err := w.rate(part)
		if err != nil {
			return nil, err
		}
		out[i] = entities.POItem{
			SparePartID: it.SparePartID,
			Quantity:    it.Quantity,
			UnitPrice:   price,
			Discount:    it.Discount,
			GSTRate:     rate,
		}
	}
	return out, nil
}

func (w *work) newPurchaseOrder(in dto.PurchaseOrderInput) (*entities.PurchaseOrder, error) {
	supplier, err := w.supplier(in.SupplierID, entities.GoodsSupplier)
	if err != nil {
		return nil, err
	}
	if _, err := w.location(in.DeliveryLocationID); err != nil {
		return nil, err
	}
	interState, err := w.svc.interState(supplier.GSTIN)
	if err != nil {
		return nil, err
	}
	items, err := w.purchaseLines(in.Items)
	if err != nil {
		return nil, err
	}
	header, err := w.header(entities.KindPurchaseOrder, in.Date, in.Notes)
	if err != nil {
		return nil, err
	}
	po, err := entities.NewPurchaseOrder(header, supplier.ID, in.DeliveryLocationID, interState, items)
	if err != nil {
		return nil, err
	}
	po.ExpectedDate = in.ExpectedDate
	po.PaymentTerms = in.PaymentTerms
	return po, nil
}

// CreatePurchaseOrder creates a draft order directly, without an indent
func (s *Service) CreatePurchaseOrder(ctx context.Context, in dto.PurchaseOrderInput) (*entities.PurchaseOrder, error) {
	var out *entities.PurchaseOrder
	err := s.update(ctx, "create purchase order", func(w *work) error {
		po, err := w.newPurchaseOrder(in)
		if err != nil {
			return err
		}
		if err := w.create(po); err != nil {
			return err
		}
		out = po
		return nil
	})
	return out, err
}

func (s *Service) changePurchaseOrder(ctx context.Context, op, id string, fn func(w *work, po *entities.PurchaseOrder) error) (*entities.PurchaseOrder, error) {
	var out *entities.PurchaseOrder
	err := s.update(ctx, op, func(w *work) error {
		po, err := repositories.GetDocument[*entities.PurchaseOrder](w.tx.Documents(), id)
		if err != nil {
			return err
		}
		from := po.State()
		if err := fn(w, po); err != nil {
			return err
		}
		if err := w.save(po, from); err != nil {
			return err
		}
		out = po
		return nil
	})
	return out, err
}

// UpdatePurchaseOrderItems replaces the lines of a draft order
func (s *Service) UpdatePurchaseOrderItems(ctx context.Context, id string, items []dto.POItemInput) (*entities.PurchaseOrder, error) {
	return s.changePurchaseOrder(ctx, "update purchase order", id, func(w *work, po *entities.PurchaseOrder) error {
		if err := entities.PurchaseOrderLifecycle.CheckMutable(po.ID, po.Status); err != nil {
			return err
		}
		lines, err := w.purchaseLines(items)
		if err != nil {
			return err
		}
		return po.ReplaceItems(lines, w.now)
	})
}

func (s *Service) SendPurchaseOrder(ctx context.Context, id string) (*entities.PurchaseOrder, error) {
	return s.changePurchaseOrder(ctx, "send purchase order", id, func(w *work, po *entities.PurchaseOrder) error {
		return po.Send(w.now)
	})
}

func (s *Service) AcknowledgePurchaseOrder(ctx context.Context, id string) (*entities.PurchaseOrder, error) {
	return s.changePurchaseOrder(ctx, "acknowledge purchase order", id, func(w *work, po *entities.PurchaseOrder) error {
		return po.Acknowledge(w.now)
	})
}

func (s *Service) CancelPurchaseOrder(ctx context.Context, id string) (*entities.PurchaseOrder, error) {
	return s.changePurchaseOrder(ctx, "cancel purchase order", id, func(w *work, po *entities.PurchaseOrder) error {
		return po.Cancel(w.now)
	})
}

func (s *Service) GetPurchaseOrder(ctx context.Context, id string) (*entities.PurchaseOrder, error) {
	return getDocument[*entities.PurchaseOrder](ctx, s, id)
}

func (s *Service) ListPurchaseOrders(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.PurchaseOrder, error) {
	return listDocuments[*entities.PurchaseOrder](ctx, s, filter)
}

func getDocument[T entities.Document](ctx context.Context, s *Service, id string) (T, error) {
	var out T
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = repositories.GetDocument[T](tx.Documents(), id)
		return err
	})
	return out, err
}

func listDocuments[T entities.Document](ctx context.Context, s *Service, filter repositories.DocumentFilter) ([]T, error) {
	var out []T
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = repositories.ListDocuments[T](tx.Documents(), filter)
		return err
	})
	return out, err
}
