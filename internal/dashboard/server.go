package dashboard

import (
	"net/http"
	"time"

	"github.com/rpps-dados/carteira/internal/domain"
	"github.com/rpps-dados/carteira/internal/export"
)

// NewServer creates an HTTP server with all dashboard routes configured.
func NewServer(port string, report domain.Report, format export.CSVFormat) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      NewMux(NewHandler(report, format)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewMux registers the dashboard routes on a fresh ServeMux.
func NewMux(handler *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handler.Index)
	mux.HandleFunc("GET /charts/segments.svg", handler.SegmentsChart)
	mux.HandleFunc("GET /charts/periods.svg", handler.PeriodsChart)
	mux.HandleFunc("GET /download/segments.csv", handler.DownloadSegments)
	mux.HandleFunc("GET /api/v1/report", handler.GetReport)
	mux.HandleFunc("GET /healthz", handler.Healthz)
	return mux
}
