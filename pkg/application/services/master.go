package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/gst"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// CreateSparePart adds a part to the master. The part number must be
// unique; parts without a GST rate get the default rate.
func (s *Service) CreateSparePart(ctx context.Context, in entities.SparePart) (*entities.SparePart, error) {
	var out *entities.SparePart
	err := s.update(ctx, "create spare part", func(w *work) error {
		if in.GSTRate == 0 {
			in.GSTRate = s.defaultRate
		}
		in.ID = ""
		in.IsActive = true
		part, err := entities.NewSparePart(in, w.now)
		if err != nil {
			return err
		}
		if err := w.partRefs(part); err != nil {
			return err
		}
		if err := w.tx.Parts().Save(part); err != nil {
			return err
		}
		out = part
		return nil
	})
	return out, err
}

// UpdateSparePart replaces the editable fields of a part
func (s *Service) UpdateSparePart(ctx context.Context, id string, in entities.SparePart) (*entities.SparePart, error) {
	var out *entities.SparePart
	err := s.update(ctx, "update spare part", func(w *work) error {
		part, err := w.part(id)
		if err != nil {
			return err
		}
		in.ID = part.ID
		in.PartNumber = entities.PartNumber(strings.TrimSpace(string(in.PartNumber)))
		if in.PartNumber == "" {
			in.PartNumber = part.PartNumber
		}
		if in.GSTRate == 0 {
			in.GSTRate = part.GSTRate
		}
		in.CreatedAt = part.CreatedAt
		in.UpdatedAt = w.now
		if err := in.Validate(); err != nil {
			return err
		}
		if err := w.partRefs(&in); err != nil {
			return err
		}
		if err := w.tx.Parts().Save(&in); err != nil {
			return err
		}
		out = &in
		return nil
	})
	return out, err
}

// partRefs checks a part's category and unit against their masters. A unit
// reference also sets UnitName to the unit's abbreviation.
func (w *work) partRefs(p *entities.SparePart) error {
	if p.CategoryID != "" {
		c, err := w.tx.Categories().Get(p.CategoryID)
		if errors.Is(err, entities.ErrNotFound) || (err == nil && !c.IsActive) {
			return entities.NewValidationError("category_id", p.CategoryID, "unknown or inactive category")
		}
		if err != nil {
			return err
		}
	}
	if p.UnitID != "" {
		u, err := w.tx.Units().Get(p.UnitID)
		if errors.Is(err, entities.ErrNotFound) || (err == nil && !u.IsActive) {
			return entities.NewValidationError("unit_id", p.UnitID, "unknown or inactive unit")
		}
		if err != nil {
			return err
		}
		p.UnitName = u.Abbreviation
	}
	return nil
}

func (s *Service) GetSparePart(ctx context.Context, id string) (*entities.SparePart, error) {
	var out *entities.SparePart
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Parts().Get(id)
		return err
	})
	return out, err
}

func (s *Service) ListSpareParts(ctx context.Context, filter repositories.PartFilter) ([]*entities.SparePart, error) {
	var out []*entities.SparePart
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Parts().List(filter)
		return err
	})
	return out, err
}

// CreateLocation adds a stocking location. A parent must exist.
func (s *Service) CreateLocation(ctx context.Context, in dto.LocationInput) (*entities.Location, error) {
	var out *entities.Location
	err := s.update(ctx, "create location", func(w *work) error {
		if in.ParentID != "" {
			if _, err := w.tx.Locations().Get(in.ParentID); err != nil {
				return err
			}
		}
		loc, err := entities.NewLocation(in.Code, in.Name, in.Type, in.ParentID, w.now)
		if err != nil {
			return err
		}
		loc.Address = in.Address
		if err := w.tx.Locations().Save(loc); err != nil {
			return err
		}
		out = loc
		return nil
	})
	return out, err
}

func (s *Service) GetLocation(ctx context.Context, id string) (*entities.Location, error) {
	var out *entities.Location
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Locations().Get(id)
		return err
	})
	return out, err
}

func (s *Service) ListLocations(ctx context.Context) ([]*entities.Location, error) {
	var out []*entities.Location
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Locations().List()
		return err
	})
	return out, err
}

// CreateSupplier adds a supplier or service vendor
func (s *Service) CreateSupplier(ctx context.Context, in entities.Supplier) (*entities.Supplier, error) {
	var out *entities.Supplier
	err := s.update(ctx, "create supplier", func(w *work) error {
		in.ID = ""
		sup, err := entities.NewSupplier(in, w.now)
		if err != nil {
			return err
		}
		if err := w.tx.Suppliers().Save(sup); err != nil {
			return err
		}
		out = sup
		return nil
	})
	return out, err
}

func (s *Service) GetSupplier(ctx context.Context, id string) (*entities.Supplier, error) {
	var out *entities.Supplier
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Suppliers().Get(id)
		return err
	})
	return out, err
}

// ListSuppliers lists suppliers of one type, or all when supplierType is empty
func (s *Service) ListSuppliers(ctx context.Context, supplierType entities.SupplierType) ([]*entities.Supplier, error) {
	var out []*entities.Supplier
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Suppliers().List(supplierType)
		return err
	})
	return out, err
}

func (s *Service) CreateTax(ctx context.Context, in dto.TaxInput) (*entities.Tax, error) {
	var out *entities.Tax
	err := s.update(ctx, "create tax", func(w *work) error {
		tax, err := entities.NewTax(in.Rate, in.HSNCodes)
		if err != nil {
			return err
		}
		if err := w.tx.Taxes().Save(tax); err != nil {
			return err
		}
		out = tax
		return nil
	})
	return out, err
}

func (s *Service) ListTaxes(ctx context.Context) ([]*entities.Tax, error) {
	var out []*entities.Tax
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Taxes().List()
		return err
	})
	return out, err
}

// CreateCategory adds a part category. A parent must exist.
func (s *Service) CreateCategory(ctx context.Context, in dto.CategoryInput) (*entities.Category, error) {
	var out *entities.Category
	err := s.update(ctx, "create category", func(w *work) error {
		if in.ParentID != "" {
			if _, err := w.tx.Categories().Get(in.ParentID); err != nil {
				return err
			}
		}
		c, err := entities.NewCategory(in.Name, in.Description, in.ParentID, w.now)
		if err != nil {
			return err
		}
		if err := w.tx.Categories().Save(c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

func (s *Service) ListCategories(ctx context.Context) ([]*entities.Category, error) {
	var out []*entities.Category
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Categories().List()
		return err
	})
	return out, err
}

func (s *Service) CreateUnit(ctx context.Context, in dto.UnitInput) (*entities.Unit, error) {
	var out *entities.Unit
	err := s.update(ctx, "create unit", func(w *work) error {
		u, err := entities.NewUnit(in.Name, in.Abbreviation, w.now)
		if err != nil {
			return err
		}
		if err := w.tx.Units().Save(u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

func (s *Service) ListUnits(ctx context.Context) ([]*entities.Unit, error) {
	var out []*entities.Unit
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Units().List()
		return err
	})
	return out, err
}

func (s *Service) CreateMachine(ctx context.Context, in dto.MachineInput) (*entities.Machine, error) {
	var out *entities.Machine
	err := s.update(ctx, "create machine", func(w *work) error {
		if _, err := w.location(in.LocationID); err != nil {
			return err
		}
		m, err := entities.NewMachine(in.Code, in.Name, in.Type, in.LocationID, w.now)
		if err != nil {
			return err
		}
		m.Manufacturer = in.Manufacturer
		m.Model = in.Model
		m.SerialNumber = in.SerialNumber
		if err := w.tx.Machines().Save(m); err != nil {
			return err
		}
		out = m
		return nil
	})
	return out, err
}

func (s *Service) GetMachine(ctx context.Context, id string) (*entities.Machine, error) {
	var out *entities.Machine
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Machines().Get(id)
		return err
	})
	return out, err
}

func (s *Service) ListMachines(ctx context.Context) ([]*entities.Machine, error) {
	var out []*entities.Machine
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Machines().List()
		return err
	})
	return out, err
}

// InstallPart records a part fitted to a machine. A serialized part can only
// be installed in one place at a time.
func (s *Service) InstallPart(ctx context.Context, in dto.InstallPartInput) (*entities.MachinePartLink, error) {
	var out *entities.MachinePartLink
	err := s.update(ctx, "install part", func(w *work) error {
		machine, err := w.tx.Machines().Get(in.MachineID)
		if err != nil {
			return err
		}
		if machine.Status == entities.MachineDecommissioned {
			return entities.NewValidationError("machine_id", machine.MachineCode, "machine is decommissioned")
		}
		if _, err := w.part(in.SparePartID); err != nil {
			return err
		}
		if in.SerialNumber != "" {
			active, err := w.tx.Machines().ListLinks(in.MachineID, true)
			if err != nil {
				return err
			}
			for _, l := range active {
				if l.SparePartID == in.SparePartID && l.SerialNumber == in.SerialNumber {
					return entities.NewValidationError("serial_number", in.SerialNumber, "part is already installed")
				}
			}
		}
		installed := w.now
		if in.InstalledDate != nil {
			installed = *in.InstalledDate
		}
		link, err := entities.NewMachinePartLink(in.MachineID, in.SparePartID, in.SerialNumber, in.InstalledBy, in.Reason, installed)
		if err != nil {
			return err
		}
		link.Notes = in.Notes
		if err := w.tx.Machines().SaveLink(link); err != nil {
			return err
		}
		out = link
		return nil
	})
	return out, err
}

// RemovePart ends an installation. Removing twice is an invalid transition.
func (s *Service) RemovePart(ctx context.Context, linkID, removedBy string) (*entities.MachinePartLink, error) {
	var out *entities.MachinePartLink
	err := s.update(ctx, "remove part", func(w *work) error {
		link, err := w.tx.Machines().GetLink(linkID)
		if err != nil {
			return err
		}
		if err := link.Remove(removedBy, w.now); err != nil {
			return err
		}
		if err := w.tx.Machines().SaveLink(link); err != nil {
			return err
		}
		out = link
		return nil
	})
	return out, err
}

// MachineParts lists the installation history of a machine
func (s *Service) MachineParts(ctx context.Context, machineID string, activeOnly bool) ([]*entities.MachinePartLink, error) {
	var out []*entities.MachinePartLink
	err := s.view(ctx, func(tx repositories.Tx) error {
		if _, err := tx.Machines().Get(machineID); err != nil {
			return err
		}
		var err error
		out, err = tx.Machines().ListLinks(machineID, activeOnly)
		return err
	})
	return out, err
}

const minPasswordLength = 8

// CreateUser adds an operator with a bcrypt password hash
func (s *Service) CreateUser(ctx context.Context, in dto.UserInput) (*entities.User, error) {
	if len(in.Password) < minPasswordLength {
		return nil, entities.NewValidationError("password", nil, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	var out *entities.User
	err = s.update(ctx, "create user", func(w *work) error {
		user, err := entities.NewUser(in.Username, in.Name, in.Role, string(hash), w.now)
		if err != nil {
			return err
		}
		if err := w.tx.Users().Save(user); err != nil {
			return err
		}
		out = user
		return nil
	})
	return out, err
}

// ErrBadCredentials is returned for an unknown user, a wrong password or a
// disabled account
var ErrBadCredentials = errors.New("invalid username or password")

// Authenticate checks a username and password
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entities.User, error) {
	var user *entities.User
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		user, err = tx.Users().GetByUsername(strings.ToLower(strings.TrimSpace(username)))
		return err
	})
	if errors.Is(err, entities.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// ComputeGST returns the rounded GST breakdown of an amount without touching
// the store
func (s *Service) ComputeGST(in dto.GSTInput) (*dto.GSTResult, error) {
	if in.Amount.IsNegative() {
		return nil, entities.NewValidationError("amount", in.Amount, "amount cannot be negative")
	}
	rate := in.Rate
	if rate == 0 {
		rate = s.defaultRate
	}
	if !rate.Valid() {
		return nil, entities.NewValidationError("rate", rate, "GST rate must be one of 5, 12, 18, 28")
	}
	var inter bool
	if in.InterState != nil {
		inter = *in.InterState
	} else {
		var err error
		if inter, err = s.interState(in.PartyGSTIN); err != nil {
			return nil, err
		}
	}
	b := gst.Compute(in.Amount, rate, inter).Round()
	return &dto.GSTResult{
		Amount:     b.Taxable,
		Rate:       rate,
		InterState: inter,
		CGST:       b.CGST,
		SGST:       b.SGST,
		IGST:       b.IGST,
		Total:      b.Total,
	}, nil
}
