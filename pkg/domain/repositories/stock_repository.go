package repositories

import "github.com/vsinha/spares/pkg/domain/entities"

// StockFilter narrows stock level listings. Empty fields match everything.
type StockFilter struct {
	SparePartID string
	LocationID  string
}

// MovementFilter narrows stock ledger queries
type MovementFilter struct {
	SparePartID string
	LocationID  string
	DocumentID  string
	// Limit caps the number of movements returned, newest first. Zero means no limit.
	Limit int
}

// StockRepository provides access to stock levels and the movement ledger.
// Inside Update, Get locks the row until the transaction ends.
type StockRepository interface {
	Get(sparePartID, locationID string) (*entities.StockLevel, error)
	List(filter StockFilter) ([]*entities.StockLevel, error)
	Save(level *entities.StockLevel) error
	AppendMovement(movement *entities.StockMovement) error
	Movements(filter MovementFilter) ([]*entities.StockMovement, error)
}
