package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// UnnamedSegment labels records whose segment name is empty or absent.
const UnnamedSegment = "Não informado"

// Record is one investment-asset entry of a DAIR portfolio.
type Record struct {
	Segment      string          `json:"segment"`
	Period       int             `json:"period"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	AssetID      string          `json:"assetId"`
	// Attributes holds every field returned by the API, undecoded.
	Attributes map[string]json.RawMessage `json:"-"`
}

// SegmentName returns the segment label, substituting UnnamedSegment for blanks.
func (r Record) SegmentName() string {
	if r.Segment == "" {
		return UnnamedSegment
	}
	return r.Segment
}
