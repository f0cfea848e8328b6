package postgres

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

type partRepo struct{ t *tx }

func (r partRepo) Get(id string) (*entities.SparePart, error) {
	var m sparePartModel
	if err := first(r.t.db, &m, "spare part", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r partRepo) GetByNumber(partNumber entities.PartNumber) (*entities.SparePart, error) {
	var m sparePartModel
	if err := first(r.t.db, &m, "spare part", string(partNumber), "part_number = ?", string(partNumber)); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r partRepo) List(filter repositories.PartFilter) ([]*entities.SparePart, error) {
	q := r.t.db.Order("part_number")
	if filter.ActiveOnly {
		q = q.Where("is_active")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("part_number ILIKE ? OR name ILIKE ?", like, like)
	}
	var rows []sparePartModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.SparePart, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r partRepo) Save(part *entities.SparePart) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	err := r.t.db.Save(fromPart(part)).Error
	return duplicate(err, "part_number", part.PartNumber, "part number already exists")
}

type locationRepo struct{ t *tx }

func (r locationRepo) Get(id string) (*entities.Location, error) {
	var m locationModel
	if err := first(r.t.db, &m, "location", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r locationRepo) GetByCode(code string) (*entities.Location, error) {
	var m locationModel
	if err := first(r.t.db, &m, "location", code, "lower(code) = lower(?)", code); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r locationRepo) List() ([]*entities.Location, error) {
	var rows []locationModel
	if err := r.t.db.Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Location, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r locationRepo) Save(location *entities.Location) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	err := r.t.db.Save(fromLocation(location)).Error
	return duplicate(err, "code", location.Code, "location code already exists")
}

type supplierRepo struct{ t *tx }

func (r supplierRepo) Get(id string) (*entities.Supplier, error) {
	var m supplierModel
	if err := first(r.t.db, &m, "supplier", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r supplierRepo) GetByCode(code string) (*entities.Supplier, error) {
	var m supplierModel
	if err := first(r.t.db, &m, "supplier", code, "lower(code) = lower(?)", code); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r supplierRepo) List(supplierType entities.SupplierType) ([]*entities.Supplier, error) {
	q := r.t.db.Order("code")
	if supplierType != "" {
		q = q.Where("type = ?", string(supplierType))
	}
	var rows []supplierModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Supplier, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r supplierRepo) Save(supplier *entities.Supplier) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	err := r.t.db.Save(fromSupplier(supplier)).Error
	return duplicate(err, "code", supplier.Code, "supplier code already exists")
}

type taxRepo struct{ t *tx }

func (r taxRepo) Get(id string) (*entities.Tax, error) {
	var m taxModel
	if err := first(r.t.db, &m, "tax", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r taxRepo) List() ([]*entities.Tax, error) {
	var rows []taxModel
	if err := r.t.db.Order("rate").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Tax, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r taxRepo) Save(tax *entities.Tax) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	return r.t.db.Save(fromTax(tax)).Error
}

type categoryRepo struct{ t *tx }

func (r categoryRepo) Get(id string) (*entities.Category, error) {
	var m categoryModel
	if err := first(r.t.db, &m, "category", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r categoryRepo) List() ([]*entities.Category, error) {
	var rows []categoryModel
	if err := r.t.db.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Category, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r categoryRepo) Save(category *entities.Category) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	err := r.t.db.Save(fromCategory(category)).Error
	return duplicate(err, "name", category.Name, "category already exists")
}

type unitRepo struct{ t *tx }

func (r unitRepo) Get(id string) (*entities.Unit, error) {
	var m unitModel
	if err := first(r.t.db, &m, "unit", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r unitRepo) List() ([]*entities.Unit, error) {
	var rows []unitModel
	if err := r.t.db.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Unit, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r unitRepo) Save(unit *entities.Unit) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	err := r.t.db.Save(fromUnit(unit)).Error
	return duplicate(err, "abbreviation", unit.Abbreviation, "unit abbreviation already exists")
}

type machineRepo struct{ t *tx }

func (r machineRepo) Get(id string) (*entities.Machine, error) {
	var m machineModel
	if err := first(r.t.db, &m, "machine", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r machineRepo) GetByCode(code string) (*entities.Machine, error) {
	var m machineModel
	if err := first(r.t.db, &m, "machine", code, "lower(machine_code) = lower(?)", code); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r machineRepo) List() ([]*entities.Machine, error) {
	var rows []machineModel
	if err := r.t.db.Order("machine_code").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Machine, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r machineRepo) Save(machine *entities.Machine) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	err := r.t.db.Save(fromMachine(machine)).Error
	return duplicate(err, "machine_code", machine.MachineCode, "machine code already exists")
}

func (r machineRepo) GetLink(id string) (*entities.MachinePartLink, error) {
	var m machinePartModel
	if err := first(r.t.db, &m, "machine part", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r machineRepo) ListLinks(machineID string, activeOnly bool) ([]*entities.MachinePartLink, error) {
	q := r.t.db.Order("installed_date").Order("id")
	if machineID != "" {
		q = q.Where("machine_id = ?", machineID)
	}
	if activeOnly {
		q = q.Where("is_active")
	}
	var rows []machinePartModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.MachinePartLink, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r machineRepo) SaveLink(link *entities.MachinePartLink) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	return r.t.db.Save(fromLink(link)).Error
}

type userRepo struct{ t *tx }

func (r userRepo) Get(id string) (*entities.User, error) {
	var m userModel
	if err := first(r.t.db, &m, "user", id, "id = ?", id); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r userRepo) GetByUsername(username string) (*entities.User, error) {
	var m userModel
	if err := first(r.t.db, &m, "user", username, "username = ?", strings.ToLower(username)); err != nil {
		return nil, err
	}
	return m.entity(), nil
}

func (r userRepo) List() ([]*entities.User, error) {
	var rows []userModel
	if err := r.t.db.Order("username").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.User, len(rows))
	for i := range rows {
		out[i] = rows[i].entity()
	}
	return out, nil
}

func (r userRepo) Save(user *entities.User) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	err := r.t.db.Save(fromUser(user)).Error
	return duplicate(err, "username", user.Username, "username already exists")
}

type sequenceRepo struct{ t *tx }

// Next increments the counter for prefix and year in one statement; the
// row lock it takes is held until the transaction ends so numbers are gap
// free among committed documents.
func (r sequenceRepo) Next(prefix string, year int) (int64, error) {
	if err := r.t.checkWritable(); err != nil {
		return 0, err
	}
	seq := sequenceModel{Prefix: prefix, Year: year, Value: 1}
	err := r.t.db.Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "prefix"}, {Name: "year"}},
			DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("document_sequences.value + 1")}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "value"}}},
	).Create(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq.Value, nil
}
