package memory

import (
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

type stockRepo struct{ t *tx }

func (r stockRepo) Get(sparePartID, locationID string) (*entities.StockLevel, error) {
	key := entities.StockKey{SparePartID: sparePartID, LocationID: locationID}
	s, ok := r.t.stock.get(key)
	if !ok {
		return nil, entities.NewNotFoundError("stock level", key.String())
	}
	return s, nil
}

func (r stockRepo) List(filter repositories.StockFilter) ([]*entities.StockLevel, error) {
	var out []*entities.StockLevel
	for _, s := range r.t.stock.values() {
		if filter.SparePartID != "" && s.SparePartID != filter.SparePartID {
			continue
		}
		if filter.LocationID != "" && s.LocationID != filter.LocationID {
			continue
		}
		out = append(out, s)
	}
	sortBy(out, func(s *entities.StockLevel) string { return s.Key().String() })
	return out, nil
}

func (r stockRepo) Save(level *entities.StockLevel) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if err := level.CheckInvariant(); err != nil {
		return err
	}
	r.t.stock.put(level.Key(), level)
	return nil
}

func (r stockRepo) AppendMovement(movement *entities.StockMovement) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	c := *movement
	r.t.pendingMovements = append(r.t.pendingMovements, &c)
	return nil
}

// Movements returns ledger lines newest first
func (r stockRepo) Movements(filter repositories.MovementFilter) ([]*entities.StockMovement, error) {
	all := make([]*entities.StockMovement, 0, len(r.t.movements)+len(r.t.pendingMovements))
	all = append(all, r.t.movements...)
	all = append(all, r.t.pendingMovements...)

	var out []*entities.StockMovement
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if filter.SparePartID != "" && m.SparePartID != filter.SparePartID {
			continue
		}
		if filter.LocationID != "" && m.LocationID != filter.LocationID {
			continue
		}
		if filter.DocumentID != "" && m.DocumentID != filter.DocumentID {
			continue
		}
		c := *m
		out = append(out, &c)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
