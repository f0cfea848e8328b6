package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/infrastructure/excel"
	"github.com/vsinha/spares/pkg/infrastructure/reports"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// Config holds configuration for output generation
type Config struct {
	Format string
	Out    io.Writer
}

// table is a report in rows of display strings
type table struct {
	title  string
	header []string
	rows   [][]string
	footer []string
}

// LowStock writes the low stock report
func LowStock(rows []dto.LowStockRow, config Config) error {
	switch config.Format {
	case FormatJSON:
		return writeJSON(config.Out, rows)
	case FormatXLSX:
		return excel.WriteLowStock(config.Out, rows)
	}
	t := table{
		title:  "Low Stock",
		header: []string{"Part Number", "Name", "Location", "On Hand", "Reserved", "Available", "Reorder Pt", "Min"},
	}
	for _, r := range rows {
		t.rows = append(t.rows, []string{
			string(r.PartNumber), r.PartName, r.LocationCode,
			qty(r.OnHand), qty(r.Reserved), qty(r.Available), qty(r.ReorderPoint), qty(r.MinStock),
		})
	}
	return render(t, config)
}

// Valuation writes the stock valuation report with a grand total
func Valuation(rows []dto.ValuationRow, config Config) error {
	switch config.Format {
	case FormatJSON:
		return writeJSON(config.Out, map[string]any{"locations": rows, "total": reports.TotalValue(rows)})
	case FormatXLSX:
		return excel.WriteValuation(config.Out, rows)
	}
	t := table{
		title:  "Stock Valuation",
		header: []string{"Location", "Parts", "Units", "Value"},
	}
	var units entities.Quantity
	for _, r := range rows {
		units += r.Units
		t.rows = append(t.rows, []string{r.LocationCode, strconv.Itoa(r.Parts), qty(r.Units), r.Value.StringFixed(2)})
	}
	t.footer = []string{"Total", "", qty(units), reports.TotalValue(rows).StringFixed(2)}
	return render(t, config)
}

// StockLevels writes the stock rows. codes maps part and location IDs to
// their codes.
func StockLevels(levels []*entities.StockLevel, codes map[string]string, config Config) error {
	switch config.Format {
	case FormatJSON:
		return writeJSON(config.Out, levels)
	case FormatXLSX:
		return excel.WriteStockLevels(config.Out, levels, codes)
	}
	t := table{
		title:  "Stock Levels",
		header: []string{"Part Number", "Location", "On Hand", "Reserved", "Available", "Last Updated"},
	}
	for _, l := range levels {
		t.rows = append(t.rows, []string{
			codeOf(codes, l.SparePartID), codeOf(codes, l.LocationID),
			qty(l.QuantityOnHand), qty(l.QuantityReserved), qty(l.QuantityAvailable()),
			l.LastUpdated.Format("2006-01-02 15:04"),
		})
	}
	return render(t, config)
}

// Replenishment writes a replenishment plan. codes maps location IDs to
// their codes.
func Replenishment(plan *dto.ReplenishmentPlan, codes map[string]string, config Config) error {
	switch config.Format {
	case FormatJSON:
		return writeJSON(config.Out, plan)
	case FormatXLSX:
		return excel.WriteReplenishment(config.Out, plan, codes)
	}
	t := table{
		title:  "Replenishment Plan",
		header: []string{"Part Number", "Location", "Type", "Qty", "Available", "Incoming", "Source", "Need Date"},
	}
	for _, o := range plan.Orders {
		t.rows = append(t.rows, []string{
			string(o.PartNumber), codeOf(codes, o.LocationID), o.Type.String(),
			qty(o.Quantity), qty(o.Available), qty(o.Incoming),
			codeOf(codes, o.SourceLocationID), o.NeedDate.Format("2006-01-02"),
		})
	}
	return render(t, config)
}

// GST writes a single tax computation
func GST(res *dto.GSTResult, config Config) error {
	switch config.Format {
	case FormatJSON:
		return writeJSON(config.Out, res)
	case FormatText:
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
	w := config.Out
	fmt.Fprintf(w, "Amount:      %s\n", res.Amount.StringFixed(2))
	fmt.Fprintf(w, "Rate:        %s\n", res.Rate)
	if res.InterState {
		fmt.Fprintf(w, "IGST:        %s\n", res.IGST.StringFixed(2))
	} else {
		fmt.Fprintf(w, "CGST:        %s\n", res.CGST.StringFixed(2))
		fmt.Fprintf(w, "SGST:        %s\n", res.SGST.StringFixed(2))
	}
	fmt.Fprintf(w, "Total:       %s\n", res.Total.StringFixed(2))
	return nil
}

// Summary writes the counts of a master data import
func Summary(s *dto.ImportSummary, config Config) error {
	if config.Format == FormatJSON {
		return writeJSON(config.Out, s)
	}
	w := config.Out
	fmt.Fprintf(w, "Imported:\n")
	fmt.Fprintf(w, "  Locations:  %d\n", s.Locations)
	fmt.Fprintf(w, "  Parts:      %d\n", s.Parts)
	fmt.Fprintf(w, "  Suppliers:  %d\n", s.Suppliers)
	fmt.Fprintf(w, "  Machines:   %d\n", s.Machines)
	fmt.Fprintf(w, "  Stock rows: %d\n", s.StockRows)
	fmt.Fprintf(w, "  Skipped:    %d\n", s.Skipped)
	return nil
}

func render(t table, config Config) error {
	switch config.Format {
	case FormatText:
		return writeText(config.Out, t)
	case FormatCSV:
		return writeCSV(config.Out, t)
	case FormatHTML:
		return writeHTML(config.Out, t)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

func writeText(w io.Writer, t table) error {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = len(h)
	}
	for _, row := range append(t.rows, t.footer) {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}
	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], c)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	dashes := make([]string, len(widths))
	for i, n := range widths {
		dashes[i] = strings.Repeat("-", n)
	}

	fmt.Fprintf(w, "%s\n%s\n\n", t.title, strings.Repeat("=", len(t.title)))
	if len(t.rows) == 0 {
		fmt.Fprintln(w, "No rows.")
		return nil
	}
	line(t.header)
	line(dashes)
	for _, row := range t.rows {
		line(row)
	}
	if t.footer != nil {
		line(dashes)
		line(t.footer)
	}
	return nil
}

func writeCSV(w io.Writer, t table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.rows); err != nil {
		return err
	}
	if t.footer != nil {
		if err := cw.Write(t.footer); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func qty(q entities.Quantity) string {
	return strconv.FormatInt(int64(q), 10)
}

func codeOf(codes map[string]string, id string) string {
	if c, ok := codes[id]; ok {
		return c
	}
	return id
}
