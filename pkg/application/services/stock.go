package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
	"github.com/vsinha/spares/pkg/infrastructure/events"
	"github.com/vsinha/spares/pkg/infrastructure/reports"
)

// level returns the locked stock row, creating an empty one on first use
func (w *work) level(sparePartID, locationID string) (*entities.StockLevel, error) {
	level, err := w.tx.Stock().Get(sparePartID, locationID)
	if errors.Is(err, entities.ErrNotFound) {
		return entities.NewStockLevel(sparePartID, locationID, w.now)
	}
	return level, err
}

// move applies one stock change, writes its ledger line and queues the
// matching events
func (w *work) move(mt entities.MovementType, sparePartID, locationID string, qty entities.Quantity, ref entities.DocumentRef, reason string) error {
	return w.apply(mt, sparePartID, locationID, qty, ref, reason, func(level *entities.StockLevel) error {
		switch mt {
		case entities.MovementReceipt:
			return level.Receive(qty, w.now)
		case entities.MovementIssue:
			return level.Issue(qty, w.now)
		case entities.MovementReserve:
			return level.Reserve(qty, w.now)
		case entities.MovementRelease:
			return level.Release(qty, w.now)
		default:
			return fmt.Errorf("unsupported movement %s", mt)
		}
	})
}

// consume ships reserved stock
func (w *work) consume(sparePartID, locationID string, qty entities.Quantity, ref entities.DocumentRef) error {
	return w.apply(entities.MovementIssue, sparePartID, locationID, qty, ref, "", func(level *entities.StockLevel) error {
		return level.ConsumeReserved(qty, w.now)
	})
}

func (w *work) apply(mt entities.MovementType, sparePartID, locationID string, qty entities.Quantity, ref entities.DocumentRef, reason string, change func(*entities.StockLevel) error) error {
	level, err := w.level(sparePartID, locationID)
	if err != nil {
		return err
	}
	if err := change(level); err != nil {
		return err
	}
	return w.record(level, mt, qty, ref, reason)
}

func (w *work) record(level *entities.StockLevel, mt entities.MovementType, qty entities.Quantity, ref entities.DocumentRef, reason string) error {
	if err := w.tx.Stock().Save(level); err != nil {
		return err
	}
	movement := entities.NewStockMovement(level, mt, qty, ref, reason, w.now)
	if err := w.tx.Stock().AppendMovement(movement); err != nil {
		return err
	}
	w.emit(events.MovementEvent(movement))

	if mt == entities.MovementReceipt || mt == entities.MovementRelease {
		return nil
	}
	part, err := w.part(level.SparePartID)
	if err != nil {
		return err
	}
	if available := level.QuantityAvailable(); part.NeedsReorder(available) {
		w.emit(events.NewEvent(events.StockBelowReorderPointEvent, level.Key().String(), events.StockBelowReorderPoint{
			SparePartID:  part.ID,
			PartNumber:   part.PartNumber,
			LocationID:   level.LocationID,
			Available:    available,
			ReorderPoint: part.ReorderPoint,
		}, w.now))
	}
	return nil
}

// available returns the unreserved quantity of a part at a location, zero
// when no row exists
func (w *work) available(sparePartID, locationID string) (entities.Quantity, error) {
	level, err := w.tx.Stock().Get(sparePartID, locationID)
	if errors.Is(err, entities.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return level.QuantityAvailable(), nil
}

func (w *work) issueContext(locationID string) entities.IssueContext {
	return entities.IssueContext{
		LocationID: locationID,
		Available:  func(id string) (entities.Quantity, error) { return w.available(id, locationID) },
	}
}

// AdjustStock sets the counted on-hand quantity of a stock row. A count
// below the reserved quantity is refused.
func (s *Service) AdjustStock(ctx context.Context, in dto.StockAdjustmentInput) (*entities.StockLevel, error) {
	var out *entities.StockLevel
	err := s.update(ctx, "adjust stock", func(w *work) error {
		var err error
		out, err = w.adjust(in)
		return err
	})
	return out, err
}

func (w *work) adjust(in dto.StockAdjustmentInput) (*entities.StockLevel, error) {
	if _, err := w.part(in.SparePartID); err != nil {
		return nil, err
	}
	if _, err := w.location(in.LocationID); err != nil {
		return nil, err
	}
	level, err := w.level(in.SparePartID, in.LocationID)
	if err != nil {
		return nil, err
	}
	delta, err := level.SetOnHand(in.Counted, w.now)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return level, w.tx.Stock().Save(level)
	}
	seq, err := w.tx.Sequences().Next(entities.KindStockAdjustment.Prefix(), w.now.Year())
	if err != nil {
		return nil, err
	}
	ref := entities.DocumentRef{
		Kind:   entities.KindStockAdjustment,
		ID:     entities.NewID(),
		Number: entities.FormatDocumentNumber(entities.KindStockAdjustment, w.now.Year(), seq),
	}
	return level, w.record(level, entities.MovementAdjustment, delta, ref, in.Reason)
}

// StockLevels lists stock rows
func (s *Service) StockLevels(ctx context.Context, filter repositories.StockFilter) ([]*entities.StockLevel, error) {
	var out []*entities.StockLevel
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Stock().List(filter)
		return err
	})
	return out, err
}

// StockLevel returns one stock row; a part never stocked at the location
// reports zero quantities
func (s *Service) StockLevel(ctx context.Context, sparePartID, locationID string) (*entities.StockLevel, error) {
	var out *entities.StockLevel
	err := s.view(ctx, func(tx repositories.Tx) error {
		if _, err := tx.Parts().Get(sparePartID); err != nil {
			return err
		}
		level, err := tx.Stock().Get(sparePartID, locationID)
		if errors.Is(err, entities.ErrNotFound) {
			level, err = entities.NewStockLevel(sparePartID, locationID, s.now())
		}
		out = level
		return err
	})
	return out, err
}

// Movements queries the stock ledger, newest first
func (s *Service) Movements(ctx context.Context, filter repositories.MovementFilter) ([]*entities.StockMovement, error) {
	var out []*entities.StockMovement
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Stock().Movements(filter)
		return err
	})
	return out, err
}

// LowStock lists stock rows whose available quantity is at or below the
// part's reorder point
func (s *Service) LowStock(ctx context.Context, filter reports.Filter) ([]dto.LowStockRow, error) {
	return reports.NewStoreSource(s.store).LowStock(ctx, filter)
}

// Valuation values on-hand stock per location
func (s *Service) Valuation(ctx context.Context, filter reports.Filter) ([]dto.ValuationRow, error) {
	return reports.NewStoreSource(s.store).Valuation(ctx, filter)
}
