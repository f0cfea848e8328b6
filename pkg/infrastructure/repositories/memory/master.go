package memory

import (
	"fmt"
	"strings"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

type partRepo struct{ t *tx }

func (r partRepo) Get(id string) (*entities.SparePart, error) {
	p, ok := r.t.parts.get(id)
	if !ok {
		return nil, entities.NewNotFoundError("spare part", id)
	}
	return p, nil
}

func (r partRepo) GetByNumber(partNumber entities.PartNumber) (*entities.SparePart, error) {
	for _, p := range r.t.parts.values() {
		if p.PartNumber == partNumber {
			return p, nil
		}
	}
	return nil, entities.NewNotFoundError("spare part", string(partNumber))
}

func (r partRepo) List(filter repositories.PartFilter) ([]*entities.SparePart, error) {
	search := strings.ToLower(filter.Search)
	var out []*entities.SparePart
	for _, p := range r.t.parts.values() {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(string(p.PartNumber)), search) &&
			!strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	sortBy(out, func(p *entities.SparePart) string { return string(p.PartNumber) })
	return out, nil
}

func (r partRepo) Save(part *entities.SparePart) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if existing, err := r.GetByNumber(part.PartNumber); err == nil && existing.ID != part.ID {
		return entities.NewValidationError("part_number", part.PartNumber, "part number already exists")
	}
	r.t.parts.put(part.ID, part)
	return nil
}

type locationRepo struct{ t *tx }

func (r locationRepo) Get(id string) (*entities.Location, error) {
	l, ok := r.t.locations.get(id)
	if !ok {
		return nil, entities.NewNotFoundError("location", id)
	}
	return l, nil
}

func (r locationRepo) GetByCode(code string) (*entities.Location, error) {
	for _, l := range r.t.locations.values() {
		if strings.EqualFold(l.Code, code) {
			return l, nil
		}
	}
	return nil, entities.NewNotFoundError("location", code)
}

func (r locationRepo) List() ([]*entities.Location, error) {
	out := r.t.locations.values()
	sortBy(out, func(l *entities.Location) string { return l.Code })
	return out, nil
}

func (r locationRepo) Save(location *entities.Location) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if existing, err := r.GetByCode(location.Code); err == nil && existing.ID != location.ID {
		return entities.NewValidationError("code", location.Code, "location code already exists")
	}
	r.t.locations.put(location.ID, location)
	return nil
}

type supplierRepo struct{ t *tx }

func (r supplierRepo) Get(id string) (*entities.Supplier, error) {
	s, ok := r.t.suppliers.get(id)
	if !ok {
		return nil, entities.NewNotFoundError("supplier", id)
	}
	return s, nil
}

func (r supplierRepo) GetByCode(code string) (*entities.Supplier, error) {
	for _, s := range r.t.suppliers.values() {
		if strings.EqualFold(s.Code, code) {
			return s, nil
		}
	}
	return nil, entities.NewNotFoundError("supplier", code)
}

func (r supplierRepo) List(supplierType entities.SupplierType) ([]*entities.Supplier, error) {
	var out []*entities.Supplier
	for _, s := range r.t.suppliers.values() {
		if supplierType == "" || s.Type == supplierType {
			out = append(out, s)
		}
	}
	sortBy(out, func(s *entities.Supplier) string { return s.Code })
	return out, nil
}

func (r supplierRepo) Save(supplier *entities.Supplier) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if existing, err := r.GetByCode(supplier.Code); err == nil && existing.ID != supplier.ID {
		return entities.NewValidationError("code", supplier.Code, "supplier code already exists")
	}
	r.t.suppliers.put(supplier.ID, supplier)
	return nil
}

type taxRepo struct{ t *tx }

func (r taxRepo) Get(id string) (*entities.Tax, error) {
	tax, ok := r.t.taxes.get(id)
	if !ok {
		return nil, entities.NewNotFoundError("tax", id)
	}
	return tax, nil
}

func (r taxRepo) List() ([]*entities.Tax, error) {
	out := r.t.taxes.values()
	sortBy(out, func(t *entities.Tax) string { return fmt.Sprintf("%03d", t.Rate) })
	return out, nil
}

func (r taxRepo) Save(tax *entities.Tax) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	r.t.taxes.put(tax.ID, tax)
	return nil
}

type categoryRepo struct{ t *tx }

func (r categoryRepo) Get(id string) (*entities.Category, error) {
	c, ok := r.t.categories.get(id)
	if !ok {
		return nil, entities.NewNotFoundError("category", id)
	}
	return c, nil
}

func (r categoryRepo) List() ([]*entities.Category, error) {
	out := r.t.categories.values()
	sortBy(out, func(c *entities.Category) string { return c.Name })
	return out, nil
}

func (r categoryRepo) Save(category *entities.Category) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	for _, c := range r.t.categories.values() {
		if strings.EqualFold(c.Name, category.Name) && c.ID != category.ID {
			return entities.NewValidationError("name", category.Name, "category already exists")
		}
	}
	r.t.categories.put(category.ID, category)
	return nil
}

type unitRepo struct{ t *tx }

func (r unitRepo) Get(id string) (*entities.Unit, error) {
	u, ok := r.t.units.get(id)
	if !ok {
		return nil, entities.NewNotFoundError("unit", id)
	}
	return u, nil
}

func (r unitRepo) List() ([]*entities.Unit, error) {
	out := r.t.units.values()
	sortBy(out, func(u *entities.Unit) string { return u.Name })
	return out, nil
}

func (r unitRepo) Save(unit *entities.Unit) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	for _, u := range r.t.units.values() {
		if strings.EqualFold(u.Abbreviation, unit.Abbreviation) && u.ID != unit.ID {
			return entities.NewValidationError("abbreviation", unit.Abbreviation, "unit abbreviation already exists")
		}
	}
	r.t.units.put(unit.ID, unit)
	return nil
}

type machineRepo struct{ t *tx }

func (r machineRepo) Get(id string) (*entities.Machine, error) {
	m, ok := r.t.machines.get(id)
	if !ok {
		return nil, entities.NewNotFoundError("machine", id)
	}
	return m, nil
}

func (r machineRepo) GetByCode(code string) (*entities.Machine, error) {
	for _, m := range r.t.machines.values() {
		if strings.EqualFold(m.MachineCode, code) {
			return m, nil
		}
	}
	return nil, entities.NewNotFoundError("machine", code)
}

func (r machineRepo) List() ([]*entities.Machine, error) {
	out := r.t.machines.values()
	sortBy(out, func(m *entities.Machine) string { return m.MachineCode })
	return out, nil
}

func (r machineRepo) Save(machine *entities.Machine) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if existing, err := r.GetByCode(machine.MachineCode); err == nil && existing.ID != machine.ID {
		return entities.NewValidationError("machine_code", machine.MachineCode, "machine code already exists")
	}
	r.t.machines.put(machine.ID, machine)
	return nil
}

func (r machineRepo) GetLink(id string) (*entities.MachinePartLink, error) {
	l, ok := r.t.links.get(id)
	if !ok {
		return nil, entities.NewNotFoundError("machine part link", id)
	}
	return l, nil
}

func (r machineRepo) ListLinks(machineID string, activeOnly bool) ([]*entities.MachinePartLink, error) {
	var out []*entities.MachinePartLink
	for _, l := range r.t.links.values() {
		if machineID != "" && l.MachineID != machineID {
			continue
		}
		if activeOnly && !l.IsActive {
			continue
		}
		out = append(out, l)
	}
	sortBy(out, func(l *entities.MachinePartLink) string {
		return l.InstalledDate.Format("20060102150405.000000000") + l.ID
	})
	return out, nil
}

func (r machineRepo) SaveLink(link *entities.MachinePartLink) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	r.t.links.put(link.ID, link)
	return nil
}

type userRepo struct{ t *tx }

func (r userRepo) Get(id string) (*entities.User, error) {
	u, ok := r.t.users.get(id)
	if !ok {
		return nil, entities.NewNotFoundError("user", id)
	}
	return u, nil
}

func (r userRepo) GetByUsername(username string) (*entities.User, error) {
	for _, u := range r.t.users.values() {
		if u.Username == strings.ToLower(username) {
			return u, nil
		}
	}
	return nil, entities.NewNotFoundError("user", username)
}

func (r userRepo) List() ([]*entities.User, error) {
	out := r.t.users.values()
	sortBy(out, func(u *entities.User) string { return u.Username })
	return out, nil
}

func (r userRepo) Save(user *entities.User) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if existing, err := r.GetByUsername(user.Username); err == nil && existing.ID != user.ID {
		return entities.NewValidationError("username", user.Username, "username already exists")
	}
	r.t.users.put(user.ID, user)
	return nil
}

type sequenceRepo struct{ t *tx }

func (r sequenceRepo) Next(prefix string, year int) (int64, error) {
	if err := r.t.checkWritable(); err != nil {
		return 0, err
	}
	key := fmt.Sprintf("%s-%d", prefix, year)
	n, _ := r.t.sequences.get(key)
	n++
	r.t.sequences.put(key, n)
	return n, nil
}
