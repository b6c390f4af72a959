package domain

import (
	"fmt"
	"strconv"
)

// PeriodScheme selects the label table used for the period key of records.
type PeriodScheme string

const (
	PeriodBimonthly PeriodScheme = "bimestral"
	PeriodMonthly   PeriodScheme = "mensal"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// ParsePeriodScheme validates a scheme name.
func ParsePeriodScheme(s string) (PeriodScheme, error) {
	switch PeriodScheme(s) {
	case PeriodBimonthly, PeriodMonthly:
		return PeriodScheme(s), nil
	default:
		return "", fmt.Errorf("unknown period scheme %q (want %q or %q)", s, PeriodBimonthly, PeriodMonthly)
	}
}

// Periods returns how many periods a year has under this scheme.
func (s PeriodScheme) Periods() int {
	if s == PeriodMonthly {
		return len(monthNames)
	}
	return 6
}

// Label maps a period key to its human-readable name. The second result is false for
// keys outside the scheme.
func (s PeriodScheme) Label(period int) (string, bool) {
	if period < 1 || period > s.Periods() {
		return "", false
	}
	if s == PeriodMonthly {
		return monthNames[period-1], true
	}
	return strconv.Itoa(period) + "° Bimestre", true
}
