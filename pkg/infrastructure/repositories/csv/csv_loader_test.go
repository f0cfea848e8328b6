package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/domain/entities"
)

func TestReadSpareParts(t *testing.T) {
	input := `part_number,name,description,unit,hsn_code,gst_rate,min_stock_level,reorder_point,max_stock_level,unit_cost,selling_price
FLT-001,Oil filter,Spin-on,NOS,8421,18,5,10,50,120.50,150
BLT-002 , V belt ,,NOS,4010,,0,0,0,,
`
	parts, err := NewLoader().ReadSpareParts(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to read parts: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("Expected 2 parts, got %d", len(parts))
	}

	filter := parts[0]
	if filter.PartNumber != "FLT-001" || filter.GSTRate != 18 || filter.ReorderPoint != 10 || filter.MaxStockLevel != 50 {
		t.Errorf("Unexpected filter: %+v", filter)
	}
	if !filter.UnitCost.Equal(decimal.RequireFromString("120.50")) {
		t.Errorf("Expected unit cost 120.50, got %s", filter.UnitCost)
	}

	belt := parts[1]
	if belt.PartNumber != "BLT-002" || belt.Name != "V belt" {
		t.Errorf("Expected trimmed cells, got %q %q", belt.PartNumber, belt.Name)
	}
	if belt.GSTRate != 0 || !belt.UnitCost.IsZero() {
		t.Errorf("Expected empty rate and cost to stay zero, got %d %s", belt.GSTRate, belt.UnitCost)
	}
}

func TestReadSpareParts_Errors(t *testing.T) {
	header := "part_number,name,description,unit,hsn_code,gst_rate,min_stock_level,reorder_point,max_stock_level,unit_cost,selling_price\n"
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"header only", header, "at least one data row"},
		{"wrong header", "part,name\nFLT-001,Oil filter\n", "header mismatch"},
		{"short row", header + "FLT-001,Oil filter\n", "row 2: expected 11 columns, got 2"},
		{"bad rate", header + "FLT-001,Oil filter,,NOS,8421,7,0,0,0,0,0\n", "row 2: invalid gst_rate"},
		{"negative level", header + "FLT-001,Oil filter,,NOS,8421,18,-1,0,0,0,0\n", "row 2: invalid min_stock_level"},
		{"bad cost", header + "FLT-001,Oil filter,,NOS,8421,18,0,0,0,abc,0\n", "row 2: invalid unit_cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().ReadSpareParts(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReadLocationsAndMachines(t *testing.T) {
	loader := NewLoader()
	locs, err := loader.ReadLocations(strings.NewReader("Code,Name,Type,Parent_Code,Address\nMAIN,Main warehouse,main_warehouse,,Plot 4\nSUB,Sub store,SUB_STORE,MAIN,\n"))
	if err != nil {
		t.Fatalf("Failed to read locations: %v", err)
	}
	if len(locs) != 2 || locs[1].Type != entities.SubStore || locs[1].ParentCode != "MAIN" || locs[1].Row != 3 {
		t.Errorf("Unexpected locations: %+v", locs)
	}

	if _, err := loader.ReadLocations(strings.NewReader("code,name,type,parent_code,address\nX,Yard,yard,,\n")); err == nil || !strings.Contains(err.Error(), "row 2: invalid type") {
		t.Errorf("Expected invalid type error, got %v", err)
	}

	machines, err := loader.ReadMachines(strings.NewReader("machine_code,name,type,location_code,manufacturer,model,serial_number\nPR-01,Press 1,stamping_press,LINE1,Schuler,S200,SN9\nCV-01,Conveyor,,LINE1,,,\n"))
	if err != nil {
		t.Fatalf("Failed to read machines: %v", err)
	}
	if machines[0].Type != entities.StampingPress || machines[1].Type != entities.OtherMachine {
		t.Errorf("Unexpected machine types: %s %s", machines[0].Type, machines[1].Type)
	}

	if _, err := loader.ReadMachines(strings.NewReader("machine_code,name,type,location_code,manufacturer,model,serial_number\nPR-01,Press 1,assembly,,,,\n")); err == nil {
		t.Errorf("Expected a missing location code to fail")
	}
}

func TestReadSuppliers(t *testing.T) {
	header := "code,name,type,gstin,pan,address,city,state,pincode,phone,email,contact_person\n"
	sups, err := NewLoader().ReadSuppliers(strings.NewReader(header +
		"SUP1,Bharat Filters,supplier,27aapfu0939f1zv,aapfu0939f,,Pune,Maharashtra,411001,,,\n" +
		"VEN1,Rewind Works,service_vendor,,,,,,,,,\n"))
	if err != nil {
		t.Fatalf("Failed to read suppliers: %v", err)
	}
	if sups[0].GSTIN != "27AAPFU0939F1ZV" || sups[0].Type != entities.GoodsSupplier {
		t.Errorf("Expected an upper-cased GSTIN on a goods supplier, got %+v", sups[0])
	}
	if sups[1].Type != entities.ServiceVendor {
		t.Errorf("Expected a service vendor, got %s", sups[1].Type)
	}

	_, err = NewLoader().ReadSuppliers(strings.NewReader(header + "SUP2,Bad,supplier,12345,,,,,,,,\n"))
	if err == nil || !strings.Contains(err.Error(), "row 2: invalid gstin") {
		t.Errorf("Expected invalid gstin error, got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	write(LocationsFile, "code,name,type,parent_code,address\nMAIN,Main warehouse,main_warehouse,,\n")
	write(StockFile, "part_number,location_code,quantity\nFLT-001,MAIN,40\n")

	data, err := NewLoader().LoadDir(dir)
	if err != nil {
		t.Fatalf("Failed to load dir: %v", err)
	}
	if len(data.Locations) != 1 || len(data.Stock) != 1 || len(data.Parts) != 0 {
		t.Errorf("Expected only the present files loaded, got %+v", data)
	}
	if data.Stock[0].Quantity != 40 || data.Stock[0].Row != 2 {
		t.Errorf("Unexpected stock line: %+v", data.Stock[0])
	}

	write(StockFile, "part_number,location_code,quantity\nFLT-001,MAIN,-4\n")
	_, err = NewLoader().LoadDir(dir)
	if err == nil || !strings.Contains(err.Error(), "stock_levels.csv: row 2") {
		t.Errorf("Expected the file and row in the error, got %v", err)
	}

	if _, err := NewLoader().LoadDir(t.TempDir()); err == nil {
		t.Errorf("Expected an empty directory to fail")
	}
}
