package gst

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCompute_IntraState18(t *testing.T) {
	b := Compute(decimal.NewFromInt(1000), 18, false)

	expect := map[string]decimal.Decimal{
		"cgst":  decimal.NewFromInt(90),
		"sgst":  decimal.NewFromInt(90),
		"igst":  decimal.Zero,
		"total": decimal.NewFromInt(1180),
	}
	got := map[string]decimal.Decimal{
		"cgst":  b.CGST,
		"sgst":  b.SGST,
		"igst":  b.IGST,
		"total": b.Total,
	}
	for field, want := range expect {
		if !got[field].Equal(want) {
			t.Errorf("Expected %s %s, got %s", field, want, got[field])
		}
	}
}

func TestCompute_SplitProperties(t *testing.T) {
	amounts := []string{"0", "0.01", "1", "99.99", "1000", "125000", "33333.33"}

	for _, a := range amounts {
		amount := decimal.RequireFromString(a)
		for _, rate := range Slabs {
			for _, inter := range []bool{false, true} {
				b := Compute(amount, rate, inter)

				expectedTax := amount.Mul(rate.Percent()).Div(decimal.NewFromInt(100))
				if !b.Tax().Equal(expectedTax) {
					t.Errorf("amount %s rate %d inter %v: expected tax %s, got %s", a, rate, inter, expectedTax, b.Tax())
				}
				if inter {
					if !b.CGST.IsZero() || !b.SGST.IsZero() {
						t.Errorf("amount %s rate %d: inter-state must not carry CGST/SGST, got %s/%s", a, rate, b.CGST, b.SGST)
					}
				} else {
					if !b.CGST.Equal(b.SGST) {
						t.Errorf("amount %s rate %d: expected CGST == SGST, got %s and %s", a, rate, b.CGST, b.SGST)
					}
					if !b.IGST.IsZero() {
						t.Errorf("amount %s rate %d: intra-state must not carry IGST, got %s", a, rate, b.IGST)
					}
				}
				if !b.Total.Equal(amount.Add(b.Tax())) {
					t.Errorf("amount %s rate %d: total %s != amount + tax", a, rate, b.Total)
				}
			}
		}
	}
}

func TestBreakdown_RoundKeepsTotalConsistent(t *testing.T) {
	// 3 lines of 33.33 at 5% produce fractional paise on each half.
	var lines []Breakdown
	for i := 0; i < 3; i++ {
		lines = append(lines, Compute(decimal.RequireFromString("33.33"), 5, false))
	}
	total := Sum(lines...).Round()

	if !total.Total.Equal(total.Taxable.Add(total.CGST).Add(total.SGST).Add(total.IGST)) {
		t.Errorf("Expected rounded total to equal the sum of rounded parts, got %s", total.Total)
	}
	if !total.CGST.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("Expected CGST 2.50 (2.49975 rounded once), got %s", total.CGST)
	}
}

func TestRate_Valid(t *testing.T) {
	tests := []struct {
		rate  Rate
		valid bool
	}{
		{5, true},
		{12, true},
		{18, true},
		{28, true},
		{0, false},
		{10, false},
		{-18, false},
	}
	for _, tt := range tests {
		if tt.rate.Valid() != tt.valid {
			t.Errorf("Expected Rate(%d).Valid() == %v", tt.rate, tt.valid)
		}
	}
}

func TestIsInterState(t *testing.T) {
	tests := []struct {
		name    string
		party   string
		company string
		inter   bool
		wantErr bool
	}{
		{"same state", "29AABCH1234A1ZH", "29AABCP3456D4ZM", false, false},
		{"different state", "27AABCK5678B2ZK", "29AABCP3456D4ZM", true, false},
		{"lower case accepted", "27aabck5678b2zk", "29AABCP3456D4ZM", true, false},
		{"malformed party", "27AABCK", "29AABCP3456D4ZM", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inter, err := IsInterState(tt.party, tt.company)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %s", tt.party)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if inter != tt.inter {
				t.Errorf("Expected inter-state %v, got %v", tt.inter, inter)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := map[string]string{
		"0":          "₹0.00",
		"1180":       "₹1,180.00",
		"125000":     "₹1,25,000.00",
		"12345678.5": "₹1,23,45,678.50",
		"-450":       "-₹450.00",
	}
	for in, want := range tests {
		if got := Format(decimal.RequireFromString(in)); got != want {
			t.Errorf("Format(%s): expected %s, got %s", in, want, got)
		}
	}
}
