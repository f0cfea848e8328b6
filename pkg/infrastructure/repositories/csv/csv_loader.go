package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/gst"
)

// Seed file names looked up by LoadDir
const (
	LocationsFile = "locations.csv"
	PartsFile     = "spare_parts.csv"
	SuppliersFile = "suppliers.csv"
	MachinesFile  = "machines.csv"
	StockFile     = "stock_levels.csv"
)

var (
	locationsHeader = []string{"code", "name", "type", "parent_code", "address"}
	partsHeader     = []string{"part_number", "name", "description", "unit", "hsn_code", "gst_rate", "min_stock_level", "reorder_point", "max_stock_level", "unit_cost", "selling_price"}
	suppliersHeader = []string{"code", "name", "type", "gstin", "pan", "address", "city", "state", "pincode", "phone", "email", "contact_person"}
	machinesHeader  = []string{"machine_code", "name", "type", "location_code", "manufacturer", "model", "serial_number"}
	stockHeader     = []string{"part_number", "location_code", "quantity"}
)

// Loader handles loading master data seeds from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDir reads every seed file present in dir. Missing files are skipped;
// a directory with none of them is an error.
func (l *Loader) LoadDir(dir string) (*dto.MasterData, error) {
	data := &dto.MasterData{}
	found := 0
	steps := []struct {
		file string
		load func(io.Reader) error
	}{
		{LocationsFile, func(r io.Reader) (err error) { data.Locations, err = l.ReadLocations(r); return }},
		{PartsFile, func(r io.Reader) (err error) { data.Parts, err = l.ReadSpareParts(r); return }},
		{SuppliersFile, func(r io.Reader) (err error) { data.Suppliers, err = l.ReadSuppliers(r); return }},
		{MachinesFile, func(r io.Reader) (err error) { data.Machines, err = l.ReadMachines(r); return }},
		{StockFile, func(r io.Reader) (err error) { data.Stock, err = l.ReadStock(r); return }},
	}
	for _, step := range steps {
		path := filepath.Join(dir, step.file)
		file, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		err = step.load(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.file, err)
		}
		found++
	}
	if found == 0 {
		return nil, fmt.Errorf("no seed files found in %s", dir)
	}
	return data, nil
}

// ReadLocations reads code,name,type,parent_code,address rows
func (l *Loader) ReadLocations(r io.Reader) ([]dto.LocationSeed, error) {
	records, err := readRecords(r, locationsHeader)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationSeed, 0, len(records))
	for i, record := range records {
		row := i + 2
		locType, err := parseLocationType(record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, dto.LocationSeed{
			Row:        row,
			Code:       record[0],
			Name:       record[1],
			Type:       locType,
			ParentCode: record[3],
			Address:    record[4],
		})
	}
	return out, nil
}

// ReadSpareParts reads the spare part master
func (l *Loader) ReadSpareParts(r io.Reader) ([]entities.SparePart, error) {
	records, err := readRecords(r, partsHeader)
	if err != nil {
		return nil, err
	}
	out := make([]entities.SparePart, 0, len(records))
	for i, record := range records {
		part, err := parseSparePart(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, part)
	}
	return out, nil
}

// ReadSuppliers reads suppliers and service vendors
func (l *Loader) ReadSuppliers(r io.Reader) ([]entities.Supplier, error) {
	records, err := readRecords(r, suppliersHeader)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Supplier, 0, len(records))
	for i, record := range records {
		supType, err := parseSupplierType(record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		gstin := strings.ToUpper(record[3])
		if gstin != "" && !gst.ValidGSTIN(gstin) {
			return nil, fmt.Errorf("row %d: invalid gstin: %s", i+2, record[3])
		}
		out = append(out, entities.Supplier{
			Code:          record[0],
			Name:          record[1],
			Type:          supType,
			GSTIN:         gstin,
			PAN:           strings.ToUpper(record[4]),
			Address:       record[5],
			City:          record[6],
			State:         record[7],
			Pincode:       record[8],
			Phone:         record[9],
			Email:         record[10],
			ContactPerson: record[11],
			IsActive:      true,
		})
	}
	return out, nil
}

// ReadMachines reads machines placed at locations given by code
func (l *Loader) ReadMachines(r io.Reader) ([]dto.MachineSeed, error) {
	records, err := readRecords(r, machinesHeader)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MachineSeed, 0, len(records))
	for i, record := range records {
		row := i + 2
		machineType, err := parseMachineType(record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if record[3] == "" {
			return nil, fmt.Errorf("row %d: location_code cannot be empty", row)
		}
		out = append(out, dto.MachineSeed{
			Row:          row,
			Code:         record[0],
			Name:         record[1],
			Type:         machineType,
			LocationCode: record[3],
			Manufacturer: record[4],
			Model:        record[5],
			SerialNumber: record[6],
		})
	}
	return out, nil
}

// ReadStock reads part_number,location_code,quantity counts
func (l *Loader) ReadStock(r io.Reader) ([]dto.StockCountLine, error) {
	records, err := readRecords(r, stockHeader)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockCountLine, 0, len(records))
	for i, record := range records {
		row := i + 2
		qty, err := parseQuantity("quantity", record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, dto.StockCountLine{
			Row:          row,
			PartNumber:   entities.PartNumber(record[0]),
			LocationCode: record[1],
			Quantity:     qty,
			Reason:       "opening stock",
		})
	}
	return out, nil
}

// readRecords reads all rows, checks the header and returns the data rows
// with every cell trimmed
func readRecords(r io.Reader, expected []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must have header and at least one data row")
	}
	if !validateHeader(records[0], expected) {
		return nil, fmt.Errorf("CSV header mismatch. Expected: %v, Got: %v", expected, records[0])
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expected) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+2, len(expected), len(record))
		}
		for j := range record {
			record[j] = strings.TrimSpace(record[j])
		}
	}
	return rows, nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		h := strings.TrimPrefix(actual[i], "\ufeff")
		if strings.ToLower(strings.TrimSpace(h)) != col {
			return false
		}
	}

	return true
}

func parseSparePart(record []string) (entities.SparePart, error) {
	rate := 0
	if record[5] != "" {
		var err error
		rate, err = strconv.Atoi(strings.TrimSuffix(record[5], "%"))
		if err != nil || !gst.Rate(rate).Valid() {
			return entities.SparePart{}, fmt.Errorf("invalid gst_rate: %s (expected 5, 12, 18 or 28)", record[5])
		}
	}

	levels := make([]entities.Quantity, 3)
	for i, name := range []string{"min_stock_level", "reorder_point", "max_stock_level"} {
		q, err := parseQuantity(name, record[6+i])
		if err != nil {
			return entities.SparePart{}, err
		}
		levels[i] = q
	}

	unitCost, err := parseMoney("unit_cost", record[9])
	if err != nil {
		return entities.SparePart{}, err
	}
	sellingPrice, err := parseMoney("selling_price", record[10])
	if err != nil {
		return entities.SparePart{}, err
	}

	return entities.SparePart{
		PartNumber:    entities.PartNumber(record[0]),
		Name:          record[1],
		Description:   record[2],
		UnitName:      record[3],
		HSNCode:       record[4],
		GSTRate:       gst.Rate(rate),
		MinStockLevel: levels[0],
		ReorderPoint:  levels[1],
		MaxStockLevel: levels[2],
		UnitCost:      unitCost,
		SellingPrice:  sellingPrice,
		IsActive:      true,
	}, nil
}

func parseQuantity(name, s string) (entities.Quantity, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, s)
	}
	return entities.Quantity(n), nil
}

func parseMoney(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", name, s)
	}
	return d, nil
}

func parseLocationType(s string) (entities.LocationType, error) {
	t := entities.LocationType(strings.ToLower(s))
	switch t {
	case entities.MainWarehouse, entities.SubStore, entities.ToolRoom, entities.ProductionLine:
		return t, nil
	default:
		return "", fmt.Errorf("invalid type: %s (expected: main_warehouse, sub_store, tool_room or production_line)", s)
	}
}

func parseSupplierType(s string) (entities.SupplierType, error) {
	switch strings.ToLower(s) {
	case "", "supplier":
		return entities.GoodsSupplier, nil
	case "service_vendor":
		return entities.ServiceVendor, nil
	default:
		return "", fmt.Errorf("invalid type: %s (expected: supplier or service_vendor)", s)
	}
}

func parseMachineType(s string) (entities.MachineType, error) {
	t := entities.MachineType(strings.ToLower(s))
	switch t {
	case entities.StampingPress, entities.WeldingRobot, entities.Conveyor, entities.PaintBooth, entities.Assembly, entities.OtherMachine:
		return t, nil
	case "":
		return entities.OtherMachine, nil
	default:
		return "", fmt.Errorf("invalid type: %s", s)
	}
}
