package postgres

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/gst"
)

func allModels() []any {
	return []any{
		&sparePartModel{},
		&locationModel{},
		&supplierModel{},
		&taxModel{},
		&categoryModel{},
		&unitModel{},
		&machineModel{},
		&machinePartModel{},
		&userModel{},
		&stockLevelModel{},
		&stockMovementModel{},
		&documentModel{},
		&sequenceModel{},
	}
}

type sparePartModel struct {
	ID            string          `gorm:"primaryKey;type:text"`
	PartNumber    string          `gorm:"type:text;not null;uniqueIndex"`
	Name          string          `gorm:"type:text;not null"`
	Description   string          `gorm:"type:text"`
	CategoryID    string          `gorm:"type:text"`
	UnitID        string          `gorm:"type:text"`
	UnitName      string          `gorm:"type:text"`
	HSNCode       string          `gorm:"column:hsn_code;type:text;index"`
	GSTRate       int             `gorm:"column:gst_rate;not null"`
	MinStockLevel int64           `gorm:"not null;default:0"`
	MaxStockLevel int64           `gorm:"not null;default:0"`
	ReorderPoint  int64           `gorm:"not null;default:0"`
	UnitCost      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (sparePartModel) TableName() string { return "spare_parts" }

func fromPart(p *entities.SparePart) *sparePartModel {
	return &sparePartModel{
		ID:            p.ID,
		PartNumber:    string(p.PartNumber),
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		UnitID:        p.UnitID,
		UnitName:      p.UnitName,
		HSNCode:       p.HSNCode,
		GSTRate:       int(p.GSTRate),
		MinStockLevel: int64(p.MinStockLevel),
		MaxStockLevel: int64(p.MaxStockLevel),
		ReorderPoint:  int64(p.ReorderPoint),
		UnitCost:      p.UnitCost,
		SellingPrice:  p.SellingPrice,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (m *sparePartModel) entity() *entities.SparePart {
	return &entities.SparePart{
		ID:            m.ID,
		PartNumber:    entities.PartNumber(m.PartNumber),
		Name:          m.Name,
		Description:   m.Description,
		CategoryID:    m.CategoryID,
		UnitID:        m.UnitID,
		UnitName:      m.UnitName,
		HSNCode:       m.HSNCode,
		GSTRate:       gst.Rate(m.GSTRate),
		MinStockLevel: entities.Quantity(m.MinStockLevel),
		MaxStockLevel: entities.Quantity(m.MaxStockLevel),
		ReorderPoint:  entities.Quantity(m.ReorderPoint),
		UnitCost:      m.UnitCost,
		SellingPrice:  m.SellingPrice,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type locationModel struct {
	ID        string `gorm:"primaryKey;type:text"`
	Code      string `gorm:"type:text;not null;uniqueIndex"`
	Name      string `gorm:"type:text;not null"`
	Type      string `gorm:"type:text;not null"`
	ParentID  string `gorm:"type:text;index"`
	Address   string `gorm:"type:text"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (locationModel) TableName() string { return "locations" }

func fromLocation(l *entities.Location) *locationModel {
	return &locationModel{
		ID:        l.ID,
		Code:      l.Code,
		Name:      l.Name,
		Type:      string(l.Type),
		ParentID:  l.ParentID,
		Address:   l.Address,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
	}
}

func (m *locationModel) entity() *entities.Location {
	return &entities.Location{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Type:      entities.LocationType(m.Type),
		ParentID:  m.ParentID,
		Address:   m.Address,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}

type supplierModel struct {
	ID            string `gorm:"primaryKey;type:text"`
	Code          string `gorm:"type:text;not null;uniqueIndex"`
	Name          string `gorm:"type:text;not null"`
	Type          string `gorm:"type:text;not null;index"`
	GSTIN         string `gorm:"column:gstin;type:varchar(15)"`
	PAN           string `gorm:"column:pan;type:varchar(10)"`
	Address       string `gorm:"type:text"`
	City          string `gorm:"type:text"`
	State         string `gorm:"type:text"`
	Pincode       string `gorm:"type:text"`
	Phone         string `gorm:"type:text"`
	Email         string `gorm:"type:text"`
	ContactPerson string `gorm:"type:text"`
	IsActive      bool   `gorm:"not null;default:true"`
	CreatedAt     time.Time
}

func (supplierModel) TableName() string { return "suppliers" }

func fromSupplier(s *entities.Supplier) *supplierModel {
	return &supplierModel{
		ID:            s.ID,
		Code:          s.Code,
		Name:          s.Name,
		Type:          string(s.Type),
		GSTIN:         s.GSTIN,
		PAN:           s.PAN,
		Address:       s.Address,
		City:          s.City,
		State:         s.State,
		Pincode:       s.Pincode,
		Phone:         s.Phone,
		Email:         s.Email,
		ContactPerson: s.ContactPerson,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
	}
}

func (m *supplierModel) entity() *entities.Supplier {
	return &entities.Supplier{
		ID:            m.ID,
		Code:          m.Code,
		Name:          m.Name,
		Type:          entities.SupplierType(m.Type),
		GSTIN:         m.GSTIN,
		PAN:           m.PAN,
		Address:       m.Address,
		City:          m.City,
		State:         m.State,
		Pincode:       m.Pincode,
		Phone:         m.Phone,
		Email:         m.Email,
		ContactPerson: m.ContactPerson,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
	}
}

type taxModel struct {
	ID       string         `gorm:"primaryKey;type:text"`
	Name     string         `gorm:"type:text;not null"`
	Rate     int            `gorm:"not null"`
	HSNCodes pq.StringArray `gorm:"column:hsn_codes;type:text[]"`
	IsActive bool           `gorm:"not null;default:true"`
}

func (taxModel) TableName() string { return "taxes" }

func fromTax(t *entities.Tax) *taxModel {
	return &taxModel{
		ID:       t.ID,
		Name:     t.Name,
		Rate:     int(t.Rate),
		HSNCodes: pq.StringArray(t.HSNCodes),
		IsActive: t.IsActive,
	}
}

func (m *taxModel) entity() *entities.Tax {
	return &entities.Tax{
		ID:       m.ID,
		Name:     m.Name,
		Rate:     gst.Rate(m.Rate),
		HSNCodes: []string(m.HSNCodes),
		IsActive: m.IsActive,
	}
}

type categoryModel struct {
	ID          string `gorm:"primaryKey;type:text"`
	Name        string `gorm:"type:text;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	ParentID    string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
}

func (categoryModel) TableName() string { return "categories" }

func fromCategory(c *entities.Category) *categoryModel {
	return &categoryModel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *categoryModel) entity() *entities.Category {
	return &entities.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		ParentID:    m.ParentID,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}

type unitModel struct {
	ID           string `gorm:"primaryKey;type:text"`
	Name         string `gorm:"type:text;not null"`
	Abbreviation string `gorm:"type:text;not null;uniqueIndex"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
}

func (unitModel) TableName() string { return "units" }

func fromUnit(u *entities.Unit) *unitModel {
	return &unitModel{
		ID:           u.ID,
		Name:         u.Name,
		Abbreviation: u.Abbreviation,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

func (m *unitModel) entity() *entities.Unit {
	return &entities.Unit{
		ID:           m.ID,
		Name:         m.Name,
		Abbreviation: m.Abbreviation,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
	}
}

type machineModel struct {
	ID                  string `gorm:"primaryKey;type:text"`
	MachineCode         string `gorm:"type:text;not null;uniqueIndex"`
	Name                string `gorm:"type:text;not null"`
	Type                string `gorm:"type:text;not null"`
	LocationID          string `gorm:"type:text;index"`
	Manufacturer        string `gorm:"type:text"`
	Model               string `gorm:"type:text"`
	SerialNumber        string `gorm:"type:text"`
	InstallationDate    *time.Time
	LastMaintenanceDate *time.Time
	Status              string `gorm:"type:text;not null"`
	IsActive            bool   `gorm:"not null;default:true"`
	CreatedAt           time.Time
}

func (machineModel) TableName() string { return "machines" }

func fromMachine(m *entities.Machine) *machineModel {
	return &machineModel{
		ID:                  m.ID,
		MachineCode:         m.MachineCode,
		Name:                m.Name,
		Type:                string(m.Type),
		LocationID:          m.LocationID,
		Manufacturer:        m.Manufacturer,
		Model:               m.Model,
		SerialNumber:        m.SerialNumber,
		InstallationDate:    m.InstallationDate,
		LastMaintenanceDate: m.LastMaintenanceDate,
		Status:              string(m.Status),
		IsActive:            m.IsActive,
		CreatedAt:           m.CreatedAt,
	}
}

func (m *machineModel) entity() *entities.Machine {
	return &entities.Machine{
		ID:                  m.ID,
		MachineCode:         m.MachineCode,
		Name:                m.Name,
		Type:                entities.MachineType(m.Type),
		LocationID:          m.LocationID,
		Manufacturer:        m.Manufacturer,
		Model:               m.Model,
		SerialNumber:        m.SerialNumber,
		InstallationDate:    m.InstallationDate,
		LastMaintenanceDate: m.LastMaintenanceDate,
		Status:              entities.MachineStatus(m.Status),
		IsActive:            m.IsActive,
		CreatedAt:           m.CreatedAt,
	}
}

type machinePartModel struct {
	ID            string `gorm:"primaryKey;type:text"`
	MachineID     string `gorm:"type:text;not null;index"`
	SparePartID   string `gorm:"type:text;not null;index"`
	SerialNumber  string `gorm:"type:text"`
	InstalledDate time.Time
	InstalledBy   string `gorm:"type:text"`
	RemovedDate   *time.Time
	RemovedBy     string `gorm:"type:text"`
	Reason        string `gorm:"type:text"`
	Notes         string `gorm:"type:text"`
	IsActive      bool   `gorm:"not null;default:true"`
}

func (machinePartModel) TableName() string { return "machine_parts" }

func fromLink(l *entities.MachinePartLink) *machinePartModel {
	return &machinePartModel{
		ID:            l.ID,
		MachineID:     l.MachineID,
		SparePartID:   l.SparePartID,
		SerialNumber:  l.SerialNumber,
		InstalledDate: l.InstalledDate,
		InstalledBy:   l.InstalledBy,
		RemovedDate:   l.RemovedDate,
		RemovedBy:     l.RemovedBy,
		Reason:        string(l.Reason),
		Notes:         l.Notes,
		IsActive:      l.IsActive,
	}
}

func (m *machinePartModel) entity() *entities.MachinePartLink {
	return &entities.MachinePartLink{
		ID:            m.ID,
		MachineID:     m.MachineID,
		SparePartID:   m.SparePartID,
		SerialNumber:  m.SerialNumber,
		InstalledDate: m.InstalledDate,
		InstalledBy:   m.InstalledBy,
		RemovedDate:   m.RemovedDate,
		RemovedBy:     m.RemovedBy,
		Reason:        entities.LinkReason(m.Reason),
		Notes:         m.Notes,
		IsActive:      m.IsActive,
	}
}

type userModel struct {
	ID           string `gorm:"primaryKey;type:text"`
	Username     string `gorm:"type:text;not null;uniqueIndex"`
	Name         string `gorm:"type:text"`
	Role         string `gorm:"type:text;not null"`
	PasswordHash string `gorm:"type:text;not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func fromUser(u *entities.User) *userModel {
	return &userModel{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

func (m *userModel) entity() *entities.User {
	return &entities.User{
		ID:           m.ID,
		Username:     m.Username,
		Name:         m.Name,
		Role:         entities.Role(m.Role),
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
	}
}

// stockLevelModel is keyed by part and location. The check constraint keeps
// reservations within what is on hand even for writes from outside the
// service.
type stockLevelModel struct {
	ID               string    `gorm:"type:text;not null;uniqueIndex"`
	SparePartID      string    `gorm:"primaryKey;type:text"`
	LocationID       string    `gorm:"primaryKey;type:text;index"`
	QuantityOnHand   int64     `gorm:"not null;default:0;check:chk_stock_on_hand,quantity_on_hand >= 0"`
	QuantityReserved int64     `gorm:"not null;default:0;check:chk_stock_reserved,quantity_reserved >= 0 AND quantity_reserved <= quantity_on_hand"`
	LastUpdated      time.Time `gorm:"not null"`
}

func (stockLevelModel) TableName() string { return "stock_levels" }

func fromStock(s *entities.StockLevel) *stockLevelModel {
	return &stockLevelModel{
		ID:               s.ID,
		SparePartID:      s.SparePartID,
		LocationID:       s.LocationID,
		QuantityOnHand:   int64(s.QuantityOnHand),
		QuantityReserved: int64(s.QuantityReserved),
		LastUpdated:      s.LastUpdated,
	}
}

func (m *stockLevelModel) entity() *entities.StockLevel {
	return &entities.StockLevel{
		ID:               m.ID,
		SparePartID:      m.SparePartID,
		LocationID:       m.LocationID,
		QuantityOnHand:   entities.Quantity(m.QuantityOnHand),
		QuantityReserved: entities.Quantity(m.QuantityReserved),
		LastUpdated:      m.LastUpdated,
	}
}

// stockMovementModel is the append-only ledger. Seq orders lines in commit
// order.
type stockMovementModel struct {
	Seq            int64  `gorm:"primaryKey;autoIncrement"`
	ID             string `gorm:"type:text;not null;uniqueIndex"`
	SparePartID    string `gorm:"type:text;not null;index:idx_movement_stock"`
	LocationID     string `gorm:"type:text;not null;index:idx_movement_stock"`
	Type           string `gorm:"type:text;not null"`
	Quantity       int64  `gorm:"not null"`
	OnHandAfter    int64  `gorm:"not null"`
	ReservedAfter  int64  `gorm:"not null"`
	DocumentKind   string `gorm:"type:text"`
	DocumentID     string `gorm:"type:text;index"`
	DocumentNumber string `gorm:"type:text"`
	Reason         string `gorm:"type:text"`
	CreatedAt      time.Time
}

func (stockMovementModel) TableName() string { return "stock_movements" }

func fromMovement(m *entities.StockMovement) *stockMovementModel {
	return &stockMovementModel{
		ID:             m.ID,
		SparePartID:    m.SparePartID,
		LocationID:     m.LocationID,
		Type:           string(m.Type),
		Quantity:       int64(m.Quantity),
		OnHandAfter:    int64(m.OnHandAfter),
		ReservedAfter:  int64(m.ReservedAfter),
		DocumentKind:   string(m.DocumentKind),
		DocumentID:     m.DocumentID,
		DocumentNumber: m.DocumentNumber,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
	}
}

func (m *stockMovementModel) entity() *entities.StockMovement {
	return &entities.StockMovement{
		ID:             m.ID,
		SparePartID:    m.SparePartID,
		LocationID:     m.LocationID,
		Type:           entities.MovementType(m.Type),
		Quantity:       entities.Quantity(m.Quantity),
		OnHandAfter:    entities.Quantity(m.OnHandAfter),
		ReservedAfter:  entities.Quantity(m.ReservedAfter),
		DocumentKind:   entities.DocumentKind(m.DocumentKind),
		DocumentID:     m.DocumentID,
		DocumentNumber: m.DocumentNumber,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
	}
}

// documentModel stores every document kind as a jsonb payload. Number,
// status and references are copied out of the payload so they can be
// indexed and filtered.
type documentModel struct {
	ID        string         `gorm:"primaryKey;type:text"`
	Kind      string         `gorm:"type:text;not null;uniqueIndex:idx_document_number,priority:1"`
	Number    string         `gorm:"type:text;not null;uniqueIndex:idx_document_number,priority:2"`
	Status    string         `gorm:"type:text;not null;index"`
	Version   int            `gorm:"not null"`
	RefIDs    pq.StringArray `gorm:"column:ref_ids;type:text[]"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (documentModel) TableName() string { return "documents" }

type sequenceModel struct {
	Prefix string `gorm:"primaryKey;type:text"`
	Year   int    `gorm:"primaryKey"`
	Value  int64  `gorm:"not null"`
}

func (sequenceModel) TableName() string { return "document_sequences" }
