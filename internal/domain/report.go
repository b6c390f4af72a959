package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Query identifies the entity and year of a portfolio request.
type Query struct {
	CNPJ string `json:"cnpj"`
	UF   string `json:"uf"`
	Year int    `json:"year"`
}

// SegmentSummary aggregates every record of one segment.
type SegmentSummary struct {
	Segment    string          `json:"segment"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
	AssetCount int             `json:"assetCount"`
}

// PeriodSummary aggregates every segment for one reporting period.
type PeriodSummary struct {
	Period int             `json:"period"`
	Label  string          `json:"label"`
	Total  decimal.Decimal `json:"total"`
}

// SegmentPeriod is the total of one segment within one period.
type SegmentPeriod struct {
	Period   int             `json:"period"`
	Label    string          `json:"label"`
	Segment  string          `json:"segment"`
	Total    decimal.Decimal `json:"total"`
	Previous decimal.Decimal `json:"previous"`
	Share    decimal.Decimal `json:"share"`
}

// Warning is a non-fatal anomaly found while aggregating.
type Warning struct {
	Index   int             `json:"index"`
	AssetID string          `json:"assetId"`
	Segment string          `json:"segment"`
	Value   decimal.Decimal `json:"value"`
	Message string          `json:"message"`
}

// Report is the derived, read-only result of one pipeline run.
type Report struct {
	Query       Query            `json:"query"`
	GeneratedAt time.Time        `json:"generatedAt"`
	RecordCount int              `json:"recordCount"`
	GrandTotal  decimal.Decimal  `json:"grandTotal"`
	Segments    []SegmentSummary `json:"segments"`
	Periods     []PeriodSummary  `json:"periods"`
	Breakdown   []SegmentPeriod  `json:"breakdown"`
	Warnings    []Warning        `json:"warnings"`
	// Records are the inputs the report was derived from.
	Records []Record `json:"-"`
}
