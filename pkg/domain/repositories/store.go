package repositories

import (
	"context"
	"errors"
)

// ErrReadOnly is returned when a write is attempted inside View
var ErrReadOnly = errors.New("write attempted in read-only transaction")

// Store is the transactional persistence boundary. Update runs fn in a single
// all-or-nothing transaction: if fn returns an error nothing it wrote is
// visible afterwards.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx gives access to every repository inside one transaction
type Tx interface {
	Parts() PartRepository
	Locations() LocationRepository
	Suppliers() SupplierRepository
	Taxes() TaxRepository
	Categories() CategoryRepository
	Units() UnitRepository
	Machines() MachineRepository
	Stock() StockRepository
	Documents() DocumentRepository
	Sequences() SequenceRepository
	Users() UserRepository
}
