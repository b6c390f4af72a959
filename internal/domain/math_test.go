package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSafeParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid integer", "100", "100"},
		{"valid decimal", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"negative", "-5.5", "-5.5"},
		{"empty string", "", "0"},
		{"invalid string", "abc", "0"},
		{"whitespace", "  ", "0"},
		{"padded", " 12.5 ", "12.5"},
		{"large number", "999999999999.1234567", "999999999999.1234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeParse(tt.input)
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("SafeParse(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0.125", "0.13"},
		{"0.124", "0.12"},
		{"2.675", "2.68"},
		{"100", "100"},
		{"-0.125", "-0.13"},
		{"1234567.899", "1234567.9"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Round2(decimal.RequireFromString(tt.input))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Round2(%s) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name        string
		part, total string
		want        string
	}{
		{"whole", "400", "400", "100"},
		{"third", "1", "3", "33.33"},
		{"two thirds", "2", "3", "66.67"},
		{"zero total", "10", "0", "0"},
		{"zero part", "0", "10", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(decimal.RequireFromString(tt.part), decimal.RequireFromString(tt.total))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Percent(%s, %s) = %s, want %s", tt.part, tt.total, got, tt.want)
			}
		})
	}
}
