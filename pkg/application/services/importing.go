package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
)

// ImportStock applies counted stock rows identified by part number and
// location code. Either every row is applied or none is.
func (s *Service) ImportStock(ctx context.Context, lines []dto.StockCountLine) (int, error) {
	err := s.update(ctx, "import stock", func(w *work) error {
		return w.importStock(lines)
	})
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

func (w *work) importStock(lines []dto.StockCountLine) error {
	for i, line := range lines {
		row := line.Row
		if row == 0 {
			row = i + 1
		}
		part, err := w.tx.Parts().GetByNumber(line.PartNumber)
		if err != nil {
			return fmt.Errorf("stock row %d: %w", row, err)
		}
		loc, err := w.tx.Locations().GetByCode(line.LocationCode)
		if err != nil {
			return fmt.Errorf("stock row %d: %w", row, err)
		}
		reason := line.Reason
		if reason == "" {
			reason = "stock import"
		}
		if _, err := w.adjust(dto.StockAdjustmentInput{
			SparePartID: part.ID,
			LocationID:  loc.ID,
			Counted:     line.Quantity,
			Reason:      reason,
		}); err != nil {
			return fmt.Errorf("stock row %d: %w", row, err)
		}
	}
	return nil
}

// ImportMasterData creates locations, parts, suppliers and machines and then
// applies the stock counts, all in one transaction. Records whose code
// already exists are left unchanged and counted as skipped, so a seed can be
// loaded twice.
func (s *Service) ImportMasterData(ctx context.Context, data dto.MasterData) (*dto.ImportSummary, error) {
	var sum dto.ImportSummary
	err := s.update(ctx, "import master data", func(w *work) error {
		sum = dto.ImportSummary{}
		for i, in := range data.Locations {
			created, err := w.seedLocation(in)
			if err != nil {
				return fmt.Errorf("locations row %d: %w", rowOf(in.Row, i), err)
			}
			count(&sum.Locations, &sum.Skipped, created)
		}
		for i, in := range data.Parts {
			created, err := w.seedPart(in)
			if err != nil {
				return fmt.Errorf("spare parts row %d: %w", i+1, err)
			}
			count(&sum.Parts, &sum.Skipped, created)
		}
		for i, in := range data.Suppliers {
			created, err := w.seedSupplier(in)
			if err != nil {
				return fmt.Errorf("suppliers row %d: %w", i+1, err)
			}
			count(&sum.Suppliers, &sum.Skipped, created)
		}
		for i, in := range data.Machines {
			created, err := w.seedMachine(in)
			if err != nil {
				return fmt.Errorf("machines row %d: %w", rowOf(in.Row, i), err)
			}
			count(&sum.Machines, &sum.Skipped, created)
		}
		if err := w.importStock(data.Stock); err != nil {
			return err
		}
		sum.StockRows = len(data.Stock)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func rowOf(row, index int) int {
	if row > 0 {
		return row
	}
	return index + 1
}

func count(created, skipped *int, ok bool) {
	if ok {
		*created++
	} else {
		*skipped++
	}
}

func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, entities.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (w *work) seedLocation(in dto.LocationSeed) (bool, error) {
	_, err := w.tx.Locations().GetByCode(in.Code)
	if found, err := exists(err); found || err != nil {
		return false, err
	}
	parentID := ""
	if in.ParentCode != "" {
		parent, err := w.tx.Locations().GetByCode(in.ParentCode)
		if err != nil {
			return false, err
		}
		parentID = parent.ID
	}
	loc, err := entities.NewLocation(in.Code, in.Name, in.Type, parentID, w.now)
	if err != nil {
		return false, err
	}
	loc.Address = in.Address
	return true, w.tx.Locations().Save(loc)
}

func (w *work) seedPart(in entities.SparePart) (bool, error) {
	_, err := w.tx.Parts().GetByNumber(in.PartNumber)
	if found, err := exists(err); found || err != nil {
		return false, err
	}
	if in.GSTRate == 0 {
		in.GSTRate = w.svc.defaultRate
	}
	in.ID = ""
	in.IsActive = true
	part, err := entities.NewSparePart(in, w.now)
	if err != nil {
		return false, err
	}
	if err := w.partRefs(part); err != nil {
		return false, err
	}
	return true, w.tx.Parts().Save(part)
}

func (w *work) seedSupplier(in entities.Supplier) (bool, error) {
	_, err := w.tx.Suppliers().GetByCode(in.Code)
	if found, err := exists(err); found || err != nil {
		return false, err
	}
	in.ID = ""
	sup, err := entities.NewSupplier(in, w.now)
	if err != nil {
		return false, err
	}
	return true, w.tx.Suppliers().Save(sup)
}

func (w *work) seedMachine(in dto.MachineSeed) (bool, error) {
	_, err := w.tx.Machines().GetByCode(in.Code)
	if found, err := exists(err); found || err != nil {
		return false, err
	}
	loc, err := w.tx.Locations().GetByCode(in.LocationCode)
	if err != nil {
		return false, err
	}
	m, err := entities.NewMachine(in.Code, in.Name, in.Type, loc.ID, w.now)
	if err != nil {
		return false, err
	}
	m.Manufacturer = in.Manufacturer
	m.Model = in.Model
	m.SerialNumber = in.SerialNumber
	return true, w.tx.Machines().Save(m)
}
