// Package demo holds the demo workshop loaded by --demo
package demo

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
)

// CompanyGSTIN is the GSTIN the demo data assumes for the company (Maharashtra)
const CompanyGSTIN = "27AAACS1234A1Z5"

// BuildWorkshopData builds a press shop with a main warehouse, a sub store,
// a tool room and one production line. A few rows start below their reorder
// point so the reports and replenishment have something to show.
func BuildWorkshopData() dto.MasterData {
	locations := []dto.LocationSeed{
		{Code: "MAIN", Name: "Main Warehouse", Type: entities.MainWarehouse, Address: "Plot 14, MIDC Bhosari, Pune"},
		{Code: "SUB-A", Name: "Sub Store A", Type: entities.SubStore, ParentCode: "MAIN"},
		{Code: "TOOLS", Name: "Tool Room", Type: entities.ToolRoom, ParentCode: "MAIN"},
		{Code: "LINE-1", Name: "Press Line 1", Type: entities.ProductionLine, ParentCode: "MAIN"},
	}

	parts := []entities.SparePart{
		{
			PartNumber:    "FLT-001",
			Name:          "Hydraulic oil filter",
			UnitName:      "NOS",
			HSNCode:       "8421",
			GSTRate:       18,
			MinStockLevel: 5,
			ReorderPoint:  10,
			MaxStockLevel: 50,
			UnitCost:      decimal.NewFromInt(420),
			SellingPrice:  decimal.NewFromInt(560),
		},
		{
			PartNumber:    "BLT-002",
			Name:          "Timing belt 8M-1200",
			UnitName:      "NOS",
			HSNCode:       "4010",
			GSTRate:       28,
			MinStockLevel: 2,
			ReorderPoint:  5,
			MaxStockLevel: 20,
			UnitCost:      decimal.NewFromInt(1350),
			SellingPrice:  decimal.NewFromInt(1800),
		},
		{
			PartNumber:    "BRG-6204",
			Name:          "Ball bearing 6204 ZZ",
			UnitName:      "NOS",
			HSNCode:       "8482",
			GSTRate:       18,
			MinStockLevel: 10,
			ReorderPoint:  20,
			MaxStockLevel: 100,
			UnitCost:      decimal.RequireFromString("185.50"),
			SellingPrice:  decimal.NewFromInt(240),
		},
		{
			PartNumber:    "SOL-024",
			Name:          "Solenoid valve 24V DC",
			UnitName:      "NOS",
			HSNCode:       "8481",
			GSTRate:       18,
			MinStockLevel: 1,
			ReorderPoint:  2,
			MaxStockLevel: 8,
			UnitCost:      decimal.NewFromInt(3200),
			SellingPrice:  decimal.NewFromInt(4100),
		},
		{
			PartNumber:    "PRX-M18",
			Name:          "Proximity sensor M18",
			UnitName:      "NOS",
			HSNCode:       "8536",
			GSTRate:       18,
			MinStockLevel: 2,
			ReorderPoint:  4,
			MaxStockLevel: 12,
			UnitCost:      decimal.NewFromInt(1150),
			SellingPrice:  decimal.NewFromInt(1490),
		},
		{
			PartNumber:    "GRS-EP2",
			Name:          "EP2 grease 18kg",
			UnitName:      "BKT",
			HSNCode:       "3403",
			GSTRate:       18,
			MinStockLevel: 1,
			ReorderPoint:  2,
			MaxStockLevel: 6,
			UnitCost:      decimal.NewFromInt(5400),
			SellingPrice:  decimal.NewFromInt(6200),
		},
	}

	suppliers := []entities.Supplier{
		{
			Code:          "SUP-001",
			Name:          "Deccan Hydraulics",
			Type:          entities.GoodsSupplier,
			GSTIN:         "27AABCU9603R1ZM",
			City:          "Pune",
			State:         "Maharashtra",
			ContactPerson: "R. Kulkarni",
		},
		{
			Code:  "SUP-002",
			Name:  "Bengaluru Bearings",
			Type:  entities.GoodsSupplier,
			GSTIN: "29AABCU9603R1ZJ",
			City:  "Bengaluru",
			State: "Karnataka",
		},
		{
			Code:  "VEN-001",
			Name:  "Shree Rewinding Works",
			Type:  entities.ServiceVendor,
			GSTIN: "27AAGCR4375J1ZU",
			City:  "Pimpri",
			State: "Maharashtra",
		},
	}

	machines := []dto.MachineSeed{
		{Code: "PR-250", Name: "250T mechanical press", Type: entities.StampingPress, LocationCode: "LINE-1", Manufacturer: "Schuler", Model: "MSD 250"},
		{Code: "WR-01", Name: "Spot welding robot", Type: entities.WeldingRobot, LocationCode: "LINE-1", Manufacturer: "Fanuc", Model: "R-2000iC"},
		{Code: "CV-01", Name: "Transfer conveyor", Type: entities.Conveyor, LocationCode: "LINE-1"},
	}

	stock := []dto.StockCountLine{
		{PartNumber: "FLT-001", LocationCode: "MAIN", Quantity: 80},
		{PartNumber: "FLT-001", LocationCode: "SUB-A", Quantity: 4},
		{PartNumber: "BLT-002", LocationCode: "MAIN", Quantity: 3},
		{PartNumber: "BRG-6204", LocationCode: "MAIN", Quantity: 60},
		{PartNumber: "BRG-6204", LocationCode: "TOOLS", Quantity: 12},
		{PartNumber: "SOL-024", LocationCode: "MAIN", Quantity: 5},
		{PartNumber: "PRX-M18", LocationCode: "MAIN", Quantity: 2},
		{PartNumber: "GRS-EP2", LocationCode: "MAIN", Quantity: 4},
	}
	for i := range stock {
		stock[i].Reason = "opening stock"
	}

	return dto.MasterData{
		Locations: locations,
		Parts:     parts,
		Suppliers: suppliers,
		Machines:  machines,
		Stock:     stock,
	}
}
