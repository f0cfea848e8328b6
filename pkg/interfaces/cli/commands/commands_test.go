package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/spares/pkg/infrastructure/config"
	"github.com/vsinha/spares/pkg/infrastructure/demo"
)

func testConfig() *config.Config {
	return &config.Config{
		Store:          config.StoreMemory,
		CompanyGSTIN:   demo.CompanyGSTIN,
		DefaultGSTRate: 18,
		HTTPAddr:       ":0",
	}
}

// run executes the command line with args and returns stdout and stderr
func run(t *testing.T, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(cfg)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestReportLowStock_Demo(t *testing.T) {
	out, _, err := run(t, testConfig(), "report", "low-stock", "--demo", "--format", "csv")
	if err != nil {
		t.Fatalf("Failed to run report: %v", err)
	}
	for _, want := range []string{"FLT-001", "SUB-A", "BLT-002", "PRX-M18"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in report:\n%s", want, out)
		}
	}
	if strings.Contains(out, "GRS-EP2") {
		t.Errorf("Expected grease above its reorder point to be left out:\n%s", out)
	}
}

func TestReportValuation_LocationFilter(t *testing.T) {
	out, _, err := run(t, testConfig(), "report", "valuation", "--demo", "--location", "SUB-A", "--format", "json")
	if err != nil {
		t.Fatalf("Failed to run report: %v", err)
	}
	var got struct {
		Locations []struct {
			LocationCode string `json:"location_code"`
		} `json:"locations"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("Failed to decode report: %v\n%s", err, out)
	}
	if len(got.Locations) != 1 || got.Locations[0].LocationCode != "SUB-A" {
		t.Errorf("Expected only SUB-A, got %+v", got.Locations)
	}

	if _, _, err := run(t, testConfig(), "report", "valuation", "--demo", "--location", "NOWHERE"); err == nil {
		t.Errorf("Expected an unknown location code to fail")
	}
}

func TestReport_XLSXNeedsOutputFile(t *testing.T) {
	_, _, err := run(t, testConfig(), "report", "low-stock", "--format", "xlsx")
	if err == nil || !strings.Contains(err.Error(), "--output is required") {
		t.Fatalf("Expected missing output error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "low.xlsx")
	if _, _, err := run(t, testConfig(), "report", "low-stock", "--demo", "--format", "xlsx", "--output", path); err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()
	if f.GetSheetName(0) != "Low stock" {
		t.Errorf("Expected the Low stock sheet, got %s", f.GetSheetName(0))
	}
}

func TestGSTCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "intra-state default rate",
			args: []string{"gst", "1000"},
			want: []string{"CGST:        90.00", "SGST:        90.00", "Total:       1180.00"},
		},
		{
			name: "out of state party",
			args: []string{"gst", "1000", "--rate", "28", "--party-gstin", "29AABCU9603R1ZJ"},
			want: []string{"IGST:        280.00", "Total:       1280.00"},
		},
		{
			name: "forced inter-state",
			args: []string{"gst", "500", "--rate", "5", "--inter-state"},
			want: []string{"IGST:        25.00", "Total:       525.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, testConfig(), tt.args...)
			if err != nil {
				t.Fatalf("Failed to run gst: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Expected %q in:\n%s", want, out)
				}
			}
		})
	}

	if _, _, err := run(t, testConfig(), "gst", "1000", "--rate", "7"); err == nil {
		t.Errorf("Expected rate 7 to fail")
	}
	if _, _, err := run(t, testConfig(), "gst", "ten"); err == nil {
		t.Errorf("Expected a bad amount to fail")
	}
}

func TestReplenishRaise(t *testing.T) {
	out, errOut, err := run(t, testConfig(), "replenish", "--demo", "--raise")
	if err != nil {
		t.Fatalf("Failed to raise: %v", err)
	}
	if !strings.Contains(out, "Replenishment Plan") || !strings.Contains(out, "BLT-002") {
		t.Errorf("Expected the plan to include belts:\n%s", out)
	}
	if !strings.Contains(errOut, "Raised indent") {
		t.Errorf("Expected a raised indent, got:\n%s", errOut)
	}
}

func TestSeedAndImportStock(t *testing.T) {
	out, _, err := run(t, testConfig(), "seed", "--demo")
	if err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	if !strings.Contains(out, "Locations:  4") || !strings.Contains(out, "Parts:      6") {
		t.Errorf("Unexpected summary:\n%s", out)
	}

	if _, _, err := run(t, testConfig(), "seed"); err == nil {
		t.Errorf("Expected seed without a directory or --demo to fail")
	}

	book := excelize.NewFile()
	for i, row := range [][]any{
		{"part_number", "location_code", "quantity", "reason"},
		{"GRS-EP2", "SUB-A", 6, "cycle count"},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := book.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "count.xlsx")
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook: %v", err)
	}

	out, _, err = run(t, testConfig(), "import-stock", "--demo", path)
	if err != nil {
		t.Fatalf("Failed to import stock: %v", err)
	}
	if !strings.Contains(out, "Imported 1 stock rows from count.xlsx") {
		t.Errorf("Unexpected output: %s", out)
	}

	if _, _, err := run(t, testConfig(), "import-stock", filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Errorf("Expected a missing file to fail")
	}
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	_, _, err := run(t, testConfig(), "migrate")
	if err == nil || !strings.Contains(err.Error(), "SPARES_STORE=postgres") {
		t.Errorf("Expected migrate to need postgres, got %v", err)
	}
}

func TestUserAdd(t *testing.T) {
	out, _, err := run(t, testConfig(), "user", "add", "ravi", "--role", "storekeeper", "--password", "stores-pass")
	if err != nil {
		t.Fatalf("Failed to add user: %v", err)
	}
	if !strings.Contains(out, "Created storekeeper user ravi") {
		t.Errorf("Unexpected output: %s", out)
	}

	t.Setenv("SPARES_USER_PASSWORD", "")
	if _, _, err := run(t, testConfig(), "user", "add", "meena"); err == nil {
		t.Errorf("Expected a missing password to fail")
	}
}

func TestReportStock_ShowsCodes(t *testing.T) {
	out, _, err := run(t, testConfig(), "report", "stock", "--demo", "--location", "TOOLS")
	if err != nil {
		t.Fatalf("Failed to run report: %v", err)
	}
	if !strings.Contains(out, "BRG-6204") || !strings.Contains(out, "TOOLS") {
		t.Errorf("Expected bearings at TOOLS by code:\n%s", out)
	}
	if strings.Contains(out, "FLT-001") {
		t.Errorf("Expected other locations to be left out:\n%s", out)
	}
}
