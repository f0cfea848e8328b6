// Package gst computes Indian Goods & Services Tax splits.
//
// Amounts are shopspring decimals. Line computations are never rounded; callers
// sum unrounded breakdowns and round once when a document total is fixed.
package gst

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Rate is a GST percentage stored as a plain number (18 means 18%)
type Rate int

// Slabs are the GST rates a spare part may carry
var Slabs = []Rate{5, 12, 18, 28}

var (
	hundred    = decimal.NewFromInt(100)
	twoHundred = decimal.NewFromInt(200)
)

// Valid reports whether r is one of the standard slabs
func (r Rate) Valid() bool {
	for _, s := range Slabs {
		if r == s {
			return true
		}
	}
	return false
}

// Percent returns the rate as a decimal percentage
func (r Rate) Percent() decimal.Decimal {
	return decimal.NewFromInt(int64(r))
}

// HalfPercent returns the CGST (or SGST) share of the rate
func (r Rate) HalfPercent() decimal.Decimal {
	return r.Percent().Div(decimal.NewFromInt(2))
}

func (r Rate) String() string {
	return fmt.Sprintf("GST %d%%", int(r))
}

// Breakdown is the tax split of one taxable amount
type Breakdown struct {
	Taxable decimal.Decimal `json:"taxable"`
	CGST    decimal.Decimal `json:"cgst"`
	SGST    decimal.Decimal `json:"sgst"`
	IGST    decimal.Decimal `json:"igst"`
	Total   decimal.Decimal `json:"total"`
}

// Compute splits GST on amount. Inter-state supplies carry IGST only;
// intra-state supplies split the rate evenly between CGST and SGST.
func Compute(amount decimal.Decimal, rate Rate, interState bool) Breakdown {
	b := Breakdown{
		Taxable: amount,
		CGST:    decimal.Zero,
		SGST:    decimal.Zero,
		IGST:    decimal.Zero,
	}
	if interState {
		b.IGST = amount.Mul(rate.Percent()).Div(hundred)
	} else {
		half := amount.Mul(rate.Percent()).Div(twoHundred)
		b.CGST = half
		b.SGST = half
	}
	b.Total = b.Taxable.Add(b.CGST).Add(b.SGST).Add(b.IGST)
	return b
}

// Tax returns CGST + SGST + IGST
func (b Breakdown) Tax() decimal.Decimal {
	return b.CGST.Add(b.SGST).Add(b.IGST)
}

// Add returns the component-wise sum of two breakdowns
func (b Breakdown) Add(o Breakdown) Breakdown {
	return Breakdown{
		Taxable: b.Taxable.Add(o.Taxable),
		CGST:    b.CGST.Add(o.CGST),
		SGST:    b.SGST.Add(o.SGST),
		IGST:    b.IGST.Add(o.IGST),
		Total:   b.Total.Add(o.Total),
	}
}

// Round fixes every component to two fraction digits and recomputes the
// total from the rounded parts so that Total == Taxable + CGST + SGST + IGST
// holds exactly on the rounded values.
func (b Breakdown) Round() Breakdown {
	r := Breakdown{
		Taxable: RoundMoney(b.Taxable),
		CGST:    RoundMoney(b.CGST),
		SGST:    RoundMoney(b.SGST),
		IGST:    RoundMoney(b.IGST),
	}
	r.Total = r.Taxable.Add(r.CGST).Add(r.SGST).Add(r.IGST)
	return r
}

// Sum adds breakdowns without rounding
func Sum(parts ...Breakdown) Breakdown {
	total := Breakdown{
		Taxable: decimal.Zero,
		CGST:    decimal.Zero,
		SGST:    decimal.Zero,
		IGST:    decimal.Zero,
		Total:   decimal.Zero,
	}
	for _, p := range parts {
		total = total.Add(p)
	}
	return total
}

// RoundMoney rounds to paise (two fraction digits, half away from zero)
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// ValidGSTIN checks the structural format of a GSTIN
func ValidGSTIN(gstin string) bool {
	return gstinPattern.MatchString(strings.ToUpper(strings.TrimSpace(gstin)))
}

// StateCode returns the two-digit state code prefix of a GSTIN
func StateCode(gstin string) (string, error) {
	g := strings.ToUpper(strings.TrimSpace(gstin))
	if !gstinPattern.MatchString(g) {
		return "", fmt.Errorf("invalid GSTIN %q", gstin)
	}
	return g[:2], nil
}

// IsInterState reports whether a supply between the two GSTINs crosses a
// state boundary
func IsInterState(partyGSTIN, companyGSTIN string) (bool, error) {
	party, err := StateCode(partyGSTIN)
	if err != nil {
		return false, err
	}
	company, err := StateCode(companyGSTIN)
	if err != nil {
		return false, err
	}
	return party != company, nil
}

// Format renders an amount as INR with Indian digit grouping, e.g. ₹1,25,000.00.
// Display only.
func Format(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var groups []string
	if len(intPart) > 3 {
		groups = append(groups, intPart[len(intPart)-3:])
		intPart = intPart[:len(intPart)-3]
		for len(intPart) > 2 {
			groups = append([]string{intPart[len(intPart)-2:]}, groups...)
			intPart = intPart[:len(intPart)-2]
		}
		if intPart != "" {
			groups = append([]string{intPart}, groups...)
		}
	} else {
		groups = []string{intPart}
	}
	return sign + "₹" + strings.Join(groups, ",") + frac
}
