package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ReportPrecision is the number of decimal places used for every reported value.
const ReportPrecision = 2

var hundred = decimal.NewFromInt(100)

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds half away from zero to ReportPrecision places.
// For non-negative values this is round-half-up: 0.125 -> 0.13.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(ReportPrecision)
}

// Percent returns part / total * 100 rounded with Round2. Returns zero when total is zero.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return Round2(part.Mul(hundred).Div(total))
}

// Hundred returns the decimal 100.
func Hundred() decimal.Decimal {
	return hundred
}
