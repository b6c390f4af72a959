package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpps-dados/carteira/internal/domain"
)

// Fetcher retrieves the raw portfolio records of one entity and year.
type Fetcher interface {
	FetchPortfolio(ctx context.Context, q domain.Query) ([]domain.Record, error)
}

// Service runs the fetch and aggregation steps of the pipeline.
type Service struct {
	fetcher Fetcher
	opts    Options
}

// NewService creates a portfolio Service. fetcher is required.
func NewService(fetcher Fetcher, opts Options) *Service {
	if fetcher == nil {
		panic("portfolio.NewService: fetcher is nil")
	}
	return &Service{fetcher: fetcher, opts: opts}
}

// Build fetches the portfolio for q and aggregates it into a report.
// Integrity warnings are logged and kept in the report.
func (s *Service) Build(ctx context.Context, q domain.Query) (domain.Report, error) {
	records, err := s.fetcher.FetchPortfolio(ctx, q)
	if err != nil {
		return domain.Report{}, fmt.Errorf("fetching portfolio: %w", err)
	}

	report, err := Aggregate(records, s.opts)
	if err != nil {
		return domain.Report{}, fmt.Errorf("aggregating portfolio: %w", err)
	}
	report.Query = q
	report.GeneratedAt = time.Now().UTC()

	for _, w := range report.Warnings {
		slog.Warn("portfolio: integrity warning",
			"index", w.Index, "asset", w.AssetID, "segment", w.Segment,
			"value", w.Value.String(), "message", w.Message)
	}

	slog.Info("portfolio: report built",
		"records", report.RecordCount,
		"segments", len(report.Segments),
		"periods", len(report.Periods),
		"grandTotal", report.GrandTotal.StringFixed(domain.ReportPrecision))

	return report, nil
}
