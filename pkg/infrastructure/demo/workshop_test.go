package demo_test

import (
	"context"
	"testing"

	"github.com/vsinha/spares/pkg/application/services"
	"github.com/vsinha/spares/pkg/infrastructure/demo"
	"github.com/vsinha/spares/pkg/infrastructure/repositories/memory"
)

func TestBuildWorkshopData_Imports(t *testing.T) {
	svc := services.New(memory.NewStore(), services.WithCompanyGSTIN(demo.CompanyGSTIN))
	summary, err := svc.ImportMasterData(context.Background(), demo.BuildWorkshopData())
	if err != nil {
		t.Fatalf("Failed to import demo data: %v", err)
	}
	if summary.Locations != 4 || summary.Parts != 6 {
		t.Errorf("Expected 4 locations and 6 parts, got %d and %d", summary.Locations, summary.Parts)
	}
	if summary.Skipped != 0 {
		t.Errorf("Expected nothing skipped on an empty store, got %d", summary.Skipped)
	}
}
