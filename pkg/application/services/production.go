package services

import (
	"context"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// CreateProductionIssue drafts an issue of parts to a production line
func (s *Service) CreateProductionIssue(ctx context.Context, in dto.ProductionIssueInput) (*entities.ProductionIssue, error) {
	var out *entities.ProductionIssue
	err := s.update(ctx, "create production issue", func(w *work) error {
		line, err := w.location(in.ProductionLineID)
		if err != nil {
			return err
		}
		if line.Type != entities.ProductionLine {
			return entities.NewValidationError("production_line_id", line.Code, "location is not a production line")
		}
		items := make([]entities.IssueItem, len(in.Items))
		for i, it := range in.Items {
			if _, err := w.location(it.FromLocationID); err != nil {
				return err
			}
			if it.MachineID != "" {
				if _, err := w.tx.Machines().Get(it.MachineID); err != nil {
					return err
				}
			}
			check := w.issueContext(it.FromLocationID)
			if _, err := w.validateLine(check, entities.PartLine{SparePartID: it.SparePartID, Quantity: it.Quantity}); err != nil {
				return err
			}
			items[i] = entities.IssueItem{
				SparePartID:    it.SparePartID,
				FromLocationID: it.FromLocationID,
				Quantity:       it.Quantity,
				MachineID:      it.MachineID,
				Remarks:        it.Remarks,
			}
		}
		header, err := w.header(entities.KindProductionIssue, in.Date, in.Notes)
		if err != nil {
			return err
		}
		issue, err := entities.NewProductionIssue(header, line.ID, in.RequestedBy, items)
		if err != nil {
			return err
		}
		issue.WorkOrder = in.WorkOrder
		if err := w.create(issue); err != nil {
			return err
		}
		out = issue
		return nil
	})
	return out, err
}

func (s *Service) changeProductionIssue(ctx context.Context, op, id string, fn func(w *work, pi *entities.ProductionIssue) error) (*entities.ProductionIssue, error) {
	var out *entities.ProductionIssue
	err := s.update(ctx, op, func(w *work) error {
		pi, err := repositories.GetDocument[*entities.ProductionIssue](w.tx.Documents(), id)
		if err != nil {
			return err
		}
		from := pi.State()
		if err := fn(w, pi); err != nil {
			return err
		}
		if err := w.save(pi, from); err != nil {
			return err
		}
		out = pi
		return nil
	})
	return out, err
}

// IssueProduction takes every line out of its source location
func (s *Service) IssueProduction(ctx context.Context, id string, in dto.IssueProductionInput) (*entities.ProductionIssue, error) {
	return s.changeProductionIssue(ctx, "issue to production", id, func(w *work, pi *entities.ProductionIssue) error {
		if err := pi.Issue(in.IssuedBy, w.now); err != nil {
			return err
		}
		ref := entities.RefOf(pi)
		for _, it := range pi.Items {
			if err := w.move(entities.MovementIssue, it.SparePartID, it.FromLocationID, it.Quantity, ref, pi.WorkOrder); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReturnProduction records unused parts coming back. Good parts are
// restocked; damaged and scrapped parts are only recorded.
func (s *Service) ReturnProduction(ctx context.Context, id string, in dto.ProductionReturnInput) (*entities.ProductionReturn, error) {
	var ret *entities.ProductionReturn
	_, err := s.changeProductionIssue(ctx, "return from production", id, func(w *work, pi *entities.ProductionIssue) error {
		seq, err := w.tx.Sequences().Next(entities.KindProductionReturn.Prefix(), w.now.Year())
		if err != nil {
			return err
		}
		number := entities.FormatDocumentNumber(entities.KindProductionReturn, w.now.Year(), seq)
		for _, it := range in.Items {
			if it.ToLocationID != "" {
				if _, err := w.location(it.ToLocationID); err != nil {
					return err
				}
			}
		}
		recorded, err := pi.RecordReturn(entities.ProductionReturn{
			Number:     number,
			Date:       in.Date,
			ReturnedBy: in.ReturnedBy,
			Reason:     in.Reason,
			Items:      in.Items,
		}, w.now)
		if err != nil {
			return err
		}
		ref := entities.DocumentRef{Kind: entities.KindProductionReturn, ID: recorded.ID, Number: recorded.Number}
		for _, it := range recorded.Items {
			if it.Condition != entities.ConditionGood {
				continue
			}
			if err := w.move(entities.MovementReceipt, it.SparePartID, it.ToLocationID, it.Quantity, ref, "returned from "+pi.Number); err != nil {
				return err
			}
		}
		c := *recorded
		ret = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) CloseProductionIssue(ctx context.Context, id string) (*entities.ProductionIssue, error) {
	return s.changeProductionIssue(ctx, "close production issue", id, func(w *work, pi *entities.ProductionIssue) error {
		return pi.Close(w.now)
	})
}

func (s *Service) CancelProductionIssue(ctx context.Context, id string) (*entities.ProductionIssue, error) {
	return s.changeProductionIssue(ctx, "cancel production issue", id, func(w *work, pi *entities.ProductionIssue) error {
		return pi.Cancel(w.now)
	})
}

func (s *Service) GetProductionIssue(ctx context.Context, id string) (*entities.ProductionIssue, error) {
	return getDocument[*entities.ProductionIssue](ctx, s, id)
}

func (s *Service) ListProductionIssues(ctx context.Context, filter repositories.DocumentFilter) ([]*entities.ProductionIssue, error) {
	return listDocuments[*entities.ProductionIssue](ctx, s, filter)
}
