package reports

import (
	"context"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// StoreSource computes reports through a repositories.Store
type StoreSource struct {
	store repositories.Store
}

func NewStoreSource(store repositories.Store) *StoreSource {
	return &StoreSource{store: store}
}

var _ Source = (*StoreSource)(nil)

type snapshot struct {
	parts     []*entities.SparePart
	locations []*entities.Location
	levels    []*entities.StockLevel
}

func (s *StoreSource) load(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		var err error
		if snap.parts, err = tx.Parts().List(repositories.PartFilter{}); err != nil {
			return err
		}
		if snap.locations, err = tx.Locations().List(); err != nil {
			return err
		}
		snap.levels, err = tx.Stock().List(repositories.StockFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *StoreSource) LowStock(ctx context.Context, filter Filter) ([]dto.LowStockRow, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLowStock(snap.parts, snap.locations, snap.levels, filter), nil
}

func (s *StoreSource) Valuation(ctx context.Context, filter Filter) ([]dto.ValuationRow, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildValuation(snap.parts, snap.locations, snap.levels, filter), nil
}
