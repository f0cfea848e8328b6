package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

type stockRepo struct{ t *tx }

// Get reads one stock row. Inside Update the row stays locked until commit
// so two transactions cannot both spend the same available quantity. A row
// that does not exist yet is guarded by a transaction advisory lock on its
// key, so a second first receipt waits and then reads the committed row.
func (r stockRepo) Get(sparePartID, locationID string) (*entities.StockLevel, error) {
	key := entities.StockKey{SparePartID: sparePartID, LocationID: locationID}
	if !r.t.writable {
		return r.get(r.t.db, key)
	}
	level, err := r.get(r.t.db.Clauses(clause.Locking{Strength: "UPDATE"}), key)
	if !errors.Is(err, entities.ErrNotFound) {
		return level, err
	}
	if err := r.t.db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key.String()).Error; err != nil {
		return nil, err
	}
	return r.get(r.t.db.Clauses(clause.Locking{Strength: "UPDATE"}), key)
}

func (r stockRepo) get(db *gorm.DB, key entities.StockKey) (*entities.StockLevel, error) {
	var m stockLevelModel
	if err := first(db, &m, "stock level", key.String(), "spare_part_id = ? AND location_id = ?", key.SparePartID, key.LocationID); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r stockRepo) List(filter repositories.StockFilter) ([]*entities.StockLevel, error) {
	q := r.t.db.Order("spare_part_id").Order("location_id")
	if filter.SparePartID != "" {
		q = q.Where("spare_part_id = ?", filter.SparePartID)
	}
	if filter.LocationID != "" {
		q = q.Where("location_id = ?", filter.LocationID)
	}
	var rows []stockLevelModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.StockLevel, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r stockRepo) Save(level *entities.StockLevel) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if err := level.CheckInvariant(); err != nil {
		return err
	}
	return r.t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "spare_part_id"}, {Name: "location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity_on_hand", "quantity_reserved", "last_updated"}),
	}).Create(fromStock(level)).Error
}

func (r stockRepo) AppendMovement(movement *entities.StockMovement) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	return r.t.db.Create(fromMovement(movement)).Error
}

// Movements returns ledger lines newest first
func (r stockRepo) Movements(filter repositories.MovementFilter) ([]*entities.StockMovement, error) {
	q := r.t.db.Order("seq DESC")
	if filter.SparePartID != "" {
		q = q.Where("spare_part_id = ?", filter.SparePartID)
	}
	if filter.LocationID != "" {
		q = q.Where("location_id = ?", filter.LocationID)
	}
	if filter.DocumentID != "" {
		q = q.Where("document_id = ?", filter.DocumentID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var rows []stockMovementModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.StockMovement, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}
