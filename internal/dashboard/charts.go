package dashboard

import (
	"fmt"
	"html/template"
	"io"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rpps-dados/carteira/internal/domain"
)

const (
	pieSize        = 800
	barChartWidth  = 1000
	barChartHeight = 600
	placeholderMsg = "Sem dados"
)

// segmentColors assigns one palette color per segment, in report order, so both
// charts and the legend agree.
func segmentColors(segments []domain.SegmentSummary) map[string]drawing.Color {
	colors := make(map[string]drawing.Color, len(segments))
	for i, s := range segments {
		colors[s.Segment] = chart.GetDefaultColor(i)
	}
	return colors
}

func hexColor(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func sliceStyle(c drawing.Color) chart.Style {
	return chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite, StrokeWidth: 1}
}

// renderSegmentPie draws the share of each segment with a positive total.
func renderSegmentPie(w io.Writer, segments []domain.SegmentSummary) error {
	colors := segmentColors(segments)
	values := lo.FilterMap(segments, func(s domain.SegmentSummary, _ int) (chart.Value, bool) {
		return chart.Value{
			Label: fmt.Sprintf("%s (%s%%)", s.Segment, s.Percentage.StringFixed(domain.ReportPrecision)),
			Value: toFloat(s.Total),
			Style: sliceStyle(colors[s.Segment]),
		}, s.Total.IsPositive()
	})
	if len(values) == 0 {
		return renderPlaceholder(w, pieSize, 200)
	}

	pie := chart.PieChart{
		Title:  "Distribuição por segmento",
		Width:  pieSize,
		Height: pieSize,
		Values: values,
	}
	return pie.Render(chart.SVG, w)
}

// renderPeriodBars draws one bar per period stacked by segment.
func renderPeriodBars(w io.Writer, report domain.Report) error {
	colors := segmentColors(report.Segments)
	byPeriod := lo.GroupBy(report.Breakdown, func(b domain.SegmentPeriod) int { return b.Period })

	bars := lo.FilterMap(report.Periods, func(p domain.PeriodSummary, _ int) (chart.StackedBar, bool) {
		values := lo.FilterMap(byPeriod[p.Period], func(b domain.SegmentPeriod, _ int) (chart.Value, bool) {
			return chart.Value{
				Label: b.Segment,
				Value: toFloat(b.Total),
				Style: sliceStyle(colors[b.Segment]),
			}, b.Total.IsPositive()
		})
		return chart.StackedBar{Name: p.Label, Values: values}, len(values) > 0
	})
	if len(bars) == 0 {
		return renderPlaceholder(w, barChartWidth, 200)
	}

	sbc := chart.StackedBarChart{
		Title:      "Valor total por período e segmento",
		Width:      barChartWidth,
		Height:     barChartHeight,
		BarSpacing: 40,
		Bars:       bars,
	}
	return sbc.Render(chart.SVG, w)
}

var placeholderSVG = template.Must(template.New("placeholder").Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" width="{{.W}}" height="{{.H}}">` +
		`<rect x="0" y="0" width="{{.W}}" height="{{.H}}" fill="#ffffff"/>` +
		`<text x="{{.X}}" y="{{.Y}}" font-family="Arial, sans-serif" font-size="18" fill="#666666" text-anchor="middle">{{.Msg}}</text>` +
		`</svg>`))

func renderPlaceholder(w io.Writer, width, height int) error {
	return placeholderSVG.Execute(w, struct {
		W, H, X, Y int
		Msg        string
	}{width, height, width / 2, height / 2, placeholderMsg})
}
