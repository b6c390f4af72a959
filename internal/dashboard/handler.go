package dashboard

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/rpps-dados/carteira/internal/domain"
	"github.com/rpps-dados/carteira/internal/export"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Handler serves the dashboard for one precomputed report.
type Handler struct {
	report domain.Report
	format export.CSVFormat
}

// NewHandler creates a new dashboard handler. The report is never modified.
func NewHandler(report domain.Report, format export.CSVFormat) *Handler {
	return &Handler{report: report, format: format}
}

type segmentRow struct {
	Segment    string
	Total      string
	Percentage string
	AssetCount int
	Color      string
}

type periodRow struct {
	Label string
	Total string
}

type indexPage struct {
	Title        string
	Query        domain.Query
	RecordCount  int
	GrandTotal   string
	WarningCount int
	DownloadName string
	Segments     []segmentRow
	Periods      []periodRow
}

// formatMoney renders a value the way pt-BR readers expect: 1.234.567,89.
func formatMoney(d decimal.Decimal) string {
	f, _ := domain.Round2(d).Float64()
	return humanize.FormatFloat("#.###,##", f)
}

func (h *Handler) indexPage() indexPage {
	colors := segmentColors(h.report.Segments)
	return indexPage{
		Title:        fmt.Sprintf("Investimentos por segmento (%d)", h.report.Query.Year),
		Query:        h.report.Query,
		RecordCount:  h.report.RecordCount,
		GrandTotal:   formatMoney(h.report.GrandTotal),
		WarningCount: len(h.report.Warnings),
		DownloadName: export.DownloadFileName(h.report.Query.Year),
		Segments: lo.Map(h.report.Segments, func(s domain.SegmentSummary, _ int) segmentRow {
			return segmentRow{
				Segment:    s.Segment,
				Total:      formatMoney(s.Total),
				Percentage: s.Percentage.StringFixed(domain.ReportPrecision),
				AssetCount: s.AssetCount,
				Color:      hexColor(colors[s.Segment]),
			}
		}),
		Periods: lo.Map(h.report.Periods, func(p domain.PeriodSummary, _ int) periodRow {
			return periodRow{Label: p.Label, Total: formatMoney(p.Total)}
		}),
	}
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, h.indexPage()); err != nil {
		slog.Error("failed to render index page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	writeBody(w, buf.Bytes())
}

// SegmentsChart handles GET /charts/segments.svg.
func (h *Handler) SegmentsChart(w http.ResponseWriter, _ *http.Request) {
	h.writeSVG(w, "segments", func(out io.Writer) error {
		return renderSegmentPie(out, h.report.Segments)
	})
}

// PeriodsChart handles GET /charts/periods.svg.
func (h *Handler) PeriodsChart(w http.ResponseWriter, _ *http.Request) {
	h.writeSVG(w, "periods", func(out io.Writer) error {
		return renderPeriodBars(out, h.report)
	})
}

func (h *Handler) writeSVG(w http.ResponseWriter, name string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		slog.Error("failed to render chart", "chart", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	writeBody(w, buf.Bytes())
}

// DownloadSegments handles GET /download/segments.csv.
func (h *Handler) DownloadSegments(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.format.WriteSegmentTotals(&buf, h.report.Segments); err != nil {
		slog.Error("failed to build segment download", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.DownloadFileName(h.report.Query.Year)))
	writeBody(w, buf.Bytes())
}

// GetReport handles GET /api/v1/report.
func (h *Handler) GetReport(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.report)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writeBody(w, []byte("ok"))
}

func writeBody(w http.ResponseWriter, body []byte) {
	if _, err := w.Write(body); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
	}
}

// respondJSON encodes v before touching w, so an encoding failure still yields a clean 500.
func respondJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("dashboard: encoding JSON response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	writeBody(w, buf.Bytes())
}
