package cadprev

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rpps-dados/carteira/internal/domain"
)

// API field names of a DAIR_CARTEIRA record.
const (
	FieldSegment      = "no_segmento"
	FieldPeriod       = "dt_mes_bimestre"
	FieldCurrentValue = "vl_total_atual"
	FieldAssetID      = "id_ativo"
)

var nullJSON = []byte("null")

type envelope struct {
	Data *[]map[string]json.RawMessage `json:"data"`
}

// decodeRecords parses a {"data": [...]} response body.
func decodeRecords(body []byte) ([]domain.Record, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if env.Data == nil {
		return nil, errors.New(`missing "data" key`)
	}

	records := make([]domain.Record, 0, len(*env.Data))
	for i, raw := range *env.Data {
		r, err := decodeRecord(i, raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeRecord(index int, raw map[string]json.RawMessage) (domain.Record, error) {
	segmentRaw, ok := raw[FieldSegment]
	if !ok {
		return domain.Record{}, fmt.Errorf("missing %q", FieldSegment)
	}
	segment, err := decodeString(segmentRaw)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%s: %w", FieldSegment, err)
	}

	periodRaw, ok := raw[FieldPeriod]
	if !ok {
		return domain.Record{}, fmt.Errorf("missing %q", FieldPeriod)
	}
	period, err := decodeInt(periodRaw)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%s: %w", FieldPeriod, err)
	}

	assetID, err := decodeString(raw[FieldAssetID])
	if err != nil {
		return domain.Record{}, fmt.Errorf("%s: %w", FieldAssetID, err)
	}

	valueRaw, ok := raw[FieldCurrentValue]
	if !ok {
		return domain.Record{}, fmt.Errorf("missing %q", FieldCurrentValue)
	}
	value, present, err := decodeDecimal(valueRaw)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%s: %w", FieldCurrentValue, err)
	}
	if !present {
		slog.Warn("cadprev: empty current value counted as zero", "index", index, "asset", assetID)
	}

	return domain.Record{
		Segment:      strings.TrimSpace(segment),
		Period:       period,
		CurrentValue: value,
		AssetID:      assetID,
		Attributes:   raw,
	}, nil
}

// decodeString accepts a JSON string, number or null (empty result).
func decodeString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, nullJSON) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("want string or number, got %s", raw)
	}
	return n.String(), nil
}

// decodeInt accepts a JSON integer or a string holding one.
func decodeInt(raw json.RawMessage) (int, error) {
	s, err := decodeString(raw)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("want integer, got %s", raw)
	}
	return n, nil
}

// decodeDecimal accepts a JSON number or numeric string. null and "" decode to zero
// with present == false.
func decodeDecimal(raw json.RawMessage) (value decimal.Decimal, present bool, err error) {
	s, err := decodeString(raw)
	if err != nil {
		return decimal.Zero, false, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("want decimal, got %s", raw)
	}
	return d, true, nil
}
