// Package excel exports stock reports to xlsx workbooks and reads opening
// stock counts from them.
package excel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/infrastructure/reports"
)

// Sheet names used by the writers
const (
	LowStockSheet      = "Low stock"
	ValuationSheet     = "Valuation"
	ReplenishmentSheet = "Replenishment"
	StockLevelsSheet   = "Stock levels"
)

// WriteLowStock writes the low stock report as a single-sheet workbook
func WriteLowStock(w io.Writer, rows []dto.LowStockRow) error {
	header := []string{"Part Number", "Part Name", "Location", "On Hand", "Reserved", "Available", "Reorder Point", "Min Stock"}
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{string(r.PartNumber), r.PartName, r.LocationCode, int64(r.OnHand), int64(r.Reserved), int64(r.Available), int64(r.ReorderPoint), int64(r.MinStock)}
	}
	return writeTable(w, LowStockSheet, header, data, nil)
}

// WriteValuation writes stock value per location followed by a total row
func WriteValuation(w io.Writer, rows []dto.ValuationRow) error {
	header := []string{"Location", "Parts", "Units", "Value (INR)"}
	data := make([][]any, len(rows))
	var units entities.Quantity
	for i, r := range rows {
		data[i] = []any{r.LocationCode, r.Parts, int64(r.Units), money(r.Value)}
		units += r.Units
	}
	total := []any{"Total", "", int64(units), money(reports.TotalValue(rows))}
	return writeTable(w, ValuationSheet, header, data, total)
}

// WriteStockLevels writes one row per stock level. Codes maps part and
// location ids to display codes; unknown ids are written as is.
func WriteStockLevels(w io.Writer, levels []*entities.StockLevel, codes map[string]string) error {
	header := []string{"Part Number", "Location", "On Hand", "Reserved", "Available", "Last Updated"}
	data := make([][]any, len(levels))
	for i, l := range levels {
		data[i] = []any{code(codes, l.SparePartID), code(codes, l.LocationID), int64(l.QuantityOnHand), int64(l.QuantityReserved), int64(l.QuantityAvailable()), l.LastUpdated.Format("2006-01-02 15:04")}
	}
	return writeTable(w, StockLevelsSheet, header, data, nil)
}

// WriteReplenishment writes the planned buys and transfers of a plan
func WriteReplenishment(w io.Writer, plan *dto.ReplenishmentPlan, codes map[string]string) error {
	header := []string{"Part Number", "Location", "Type", "Source", "Quantity", "Available", "Incoming", "Reorder Point", "Need Date"}
	data := make([][]any, len(plan.Orders))
	for i, o := range plan.Orders {
		source := ""
		if o.SourceLocationID != "" {
			source = code(codes, o.SourceLocationID)
		}
		data[i] = []any{string(o.PartNumber), code(codes, o.LocationID), o.Type.String(), source, int64(o.Quantity), int64(o.Available), int64(o.Incoming), int64(o.ReorderPoint), o.NeedDate.Format("2006-01-02")}
	}
	return writeTable(w, ReplenishmentSheet, header, data, nil)
}

func writeTable(w io.Writer, sheet string, header []string, rows [][]any, footer []any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if footer != nil {
		n := len(rows) + 2
		if err := setRow(f, sheet, n, footer); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet, n, n, bold); err != nil {
			return fmt.Errorf("failed to style total: %w", err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, n int, row []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", n, err)
	}
	return nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func code(codes map[string]string, id string) string {
	if c, ok := codes[id]; ok {
		return c
	}
	return id
}

// ReadOpeningStock reads counted stock from sheet, or from the first sheet
// when sheet is empty. The header row must name part_number, location_code
// and quantity columns in any order; a reason column is optional. Blank rows
// are skipped.
func ReadOpeningStock(r io.Reader, sheet string) ([]dto.StockCountLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("no sheet found in the Excel file")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read rows from sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("no data found in the Excel file")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		cols[key] = i
	}
	for _, required := range []string{"part_number", "location_code", "quantity"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("sheet %q has no %s column", sheet, required)
		}
	}
	reasonCol, hasReason := cols["reason"]

	var out []dto.StockCountLine
	for i, row := range rows[1:] {
		n := i + 2
		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}
		part, loc, qty := cell(cols["part_number"]), cell(cols["location_code"]), cell(cols["quantity"])
		if part == "" && loc == "" && qty == "" {
			continue
		}
		if part == "" || loc == "" {
			return nil, fmt.Errorf("row %d: part_number and location_code are required", n)
		}
		q, err := decimal.NewFromString(qty)
		if err != nil || q.IsNegative() || !q.Equal(q.Truncate(0)) {
			return nil, fmt.Errorf("row %d: invalid quantity: %q", n, qty)
		}
		line := dto.StockCountLine{
			Row:          n,
			PartNumber:   entities.PartNumber(part),
			LocationCode: loc,
			Quantity:     entities.Quantity(q.IntPart()),
		}
		if hasReason {
			line.Reason = cell(reasonCol)
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return nil, errors.New("no data found in the Excel file")
	}
	return out, nil
}
