package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SPARES_STORE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("DEFAULT_GST_RATE", "")
	t.Setenv("COMPANY_GSTIN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Expected memory store, got %s", cfg.Store)
	}
	if cfg.DefaultGSTRate != 18 {
		t.Errorf("Expected default rate 18, got %d", cfg.DefaultGSTRate)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.HTTPAddr)
	}
}

func TestLoad_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		env         map[string]string
		expectError string
	}{
		{"postgres without url", map[string]string{"SPARES_STORE": "postgres"}, "DATABASE_URL is required"},
		{"unknown store", map[string]string{"SPARES_STORE": "redis"}, "SPARES_STORE must be"},
		{"flat rate not a slab", map[string]string{"DEFAULT_GST_RATE": "10"}, "DEFAULT_GST_RATE must be one of"},
		{"bad gstin", map[string]string{"COMPANY_GSTIN": "12345"}, "not a valid GSTIN"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, key := range []string{"SPARES_STORE", "DATABASE_URL", "DB_URL", "DEFAULT_GST_RATE", "COMPANY_GSTIN"} {
				t.Setenv(key, tc.env[key])
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.expectError) {
				t.Errorf("Expected error containing %q, got %v", tc.expectError, err)
			}
		})
	}
}

func TestWithURLDefaults(t *testing.T) {
	testCases := map[string]string{
		"postgres://u:p@db/spares":                "postgres://u:p@db/spares?sslmode=require&search_path=public",
		"postgres://u:p@db/spares?sslmode=disable": "postgres://u:p@db/spares?sslmode=disable&search_path=public",
		"host=db user=u dbname=spares":            "host=db user=u dbname=spares sslmode=require",
	}
	for in, want := range testCases {
		if got := withURLDefaults(in); got != want {
			t.Errorf("withURLDefaults(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestRequireServer(t *testing.T) {
	cfg := &Config{JWTSecret: "short", CompanyGSTIN: "27AAPFU0939F1ZV"}
	if err := cfg.RequireServer(); err == nil {
		t.Error("Expected short secret to be refused")
	}
	cfg.JWTSecret = "0123456789abcdef"
	if err := cfg.RequireServer(); err != nil {
		t.Errorf("Expected server config to pass, got %v", err)
	}
}
