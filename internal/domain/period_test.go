package domain

import "testing"

func TestPeriodSchemeLabel(t *testing.T) {
	tests := []struct {
		scheme PeriodScheme
		period int
		want   string
		ok     bool
	}{
		{PeriodBimonthly, 1, "1° Bimestre", true},
		{PeriodBimonthly, 6, "6° Bimestre", true},
		{PeriodBimonthly, 0, "", false},
		{PeriodBimonthly, 7, "", false},
		{PeriodBimonthly, 13, "", false},
		{PeriodMonthly, 1, "Janeiro", true},
		{PeriodMonthly, 3, "Março", true},
		{PeriodMonthly, 12, "Dezembro", true},
		{PeriodMonthly, 13, "", false},
	}

	for _, tt := range tests {
		got, ok := tt.scheme.Label(tt.period)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s.Label(%d) = (%q, %v), want (%q, %v)", tt.scheme, tt.period, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePeriodScheme(t *testing.T) {
	if s, err := ParsePeriodScheme("mensal"); err != nil || s != PeriodMonthly {
		t.Errorf("ParsePeriodScheme(mensal) = %q, %v", s, err)
	}
	if _, err := ParsePeriodScheme("trimestral"); err == nil {
		t.Error("expected error for unknown scheme")
	}
}
