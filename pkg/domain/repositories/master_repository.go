package repositories

import "github.com/vsinha/spares/pkg/domain/entities"

// PartFilter narrows spare part listings
type PartFilter struct {
	ActiveOnly bool
	// Search matches part number or name, case-insensitive.
	Search string
}

// PartRepository provides access to spare part master data. Save rejects a
// part number already used by another part.
type PartRepository interface {
	Get(id string) (*entities.SparePart, error)
	GetByNumber(partNumber entities.PartNumber) (*entities.SparePart, error)
	List(filter PartFilter) ([]*entities.SparePart, error)
	Save(part *entities.SparePart) error
}

// LocationRepository provides access to stores and production lines
type LocationRepository interface {
	Get(id string) (*entities.Location, error)
	GetByCode(code string) (*entities.Location, error)
	List() ([]*entities.Location, error)
	Save(location *entities.Location) error
}

// SupplierRepository provides access to suppliers and service vendors
type SupplierRepository interface {
	Get(id string) (*entities.Supplier, error)
	GetByCode(code string) (*entities.Supplier, error)
	List(supplierType entities.SupplierType) ([]*entities.Supplier, error)
	Save(supplier *entities.Supplier) error
}

// TaxRepository provides access to the GST master
type TaxRepository interface {
	Get(id string) (*entities.Tax, error)
	List() ([]*entities.Tax, error)
	Save(tax *entities.Tax) error
}

// CategoryRepository provides access to part categories. Save rejects a
// name already used by another category.
type CategoryRepository interface {
	Get(id string) (*entities.Category, error)
	List() ([]*entities.Category, error)
	Save(category *entities.Category) error
}

// UnitRepository provides access to units of measure. Save rejects an
// abbreviation already used by another unit.
type UnitRepository interface {
	Get(id string) (*entities.Unit, error)
	List() ([]*entities.Unit, error)
	Save(unit *entities.Unit) error
}

// MachineRepository provides access to machines and their part history
type MachineRepository interface {
	Get(id string) (*entities.Machine, error)
	GetByCode(code string) (*entities.Machine, error)
	List() ([]*entities.Machine, error)
	Save(machine *entities.Machine) error
	GetLink(id string) (*entities.MachinePartLink, error)
	ListLinks(machineID string, activeOnly bool) ([]*entities.MachinePartLink, error)
	SaveLink(link *entities.MachinePartLink) error
}

// UserRepository provides access to operators
type UserRepository interface {
	Get(id string) (*entities.User, error)
	GetByUsername(username string) (*entities.User, error)
	List() ([]*entities.User, error)
	Save(user *entities.User) error
}

// SequenceRepository hands out document number sequences per prefix and year
type SequenceRepository interface {
	Next(prefix string, year int) (int64, error)
}
