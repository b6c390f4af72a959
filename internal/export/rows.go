package export

import (
	"github.com/shopspring/decimal"

	"github.com/rpps-dados/carteira/internal/domain"
)

// buildSegmentRows builds the segment table for spreadsheet destinations.
// Columns: Segmento | Valor Total | Percentual | Ativos
func buildSegmentRows(segments []domain.SegmentSummary) [][]any {
	data := make([][]any, 0, len(segments)+1)
	data = append(data, []any{"Segmento", "Valor Total", "Percentual", "Ativos"})
	for _, s := range segments {
		data = append(data, []any{s.Segment, toFloat(s.Total), toFloat(s.Percentage), s.AssetCount})
	}
	return data
}

// buildPeriodRows builds the period table.
// Columns: Período | Valor Total
func buildPeriodRows(periods []domain.PeriodSummary) [][]any {
	data := make([][]any, 0, len(periods)+1)
	data = append(data, []any{"Período", "Valor Total"})
	for _, p := range periods {
		data = append(data, []any{p.Label, toFloat(p.Total)})
	}
	return data
}

// buildBreakdownRows builds the segment-by-period table.
// Columns: Período | Segmento | Valor Total | Valor Anterior | % do Período
func buildBreakdownRows(breakdown []domain.SegmentPeriod) [][]any {
	data := make([][]any, 0, len(breakdown)+1)
	data = append(data, []any{"Período", "Segmento", "Valor Total", "Valor Anterior", "% do Período"})
	for _, b := range breakdown {
		data = append(data, []any{b.Label, b.Segment, toFloat(b.Total), toFloat(b.Previous), toFloat(b.Share)})
	}
	return data
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(domain.ReportPrecision).Float64()
	return f
}
