package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/rpps-dados/carteira/internal/domain"
)

// Column headers keep the API's field naming so spreadsheets line up with the raw dump.
var (
	segmentHeader   = []string{"no_segmento", "vl_total_atual", "percentual", "qt_ativos"}
	periodHeader    = []string{"periodo", "vl_total_atual"}
	breakdownHeader = []string{"periodo", "no_segmento", "vl_total_atual", "vl_total_anterior", "percentual_periodo"}
	downloadHeader  = []string{"no_segmento", "montante_total"}
)

func (f CSVFormat) newWriter(w io.Writer) (*csv.Writer, error) {
	if f.BOM {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return nil, fmt.Errorf("writing BOM: %w", err)
		}
	}
	cw := csv.NewWriter(w)
	cw.Comma = f.Comma
	return cw, nil
}

func (f CSVFormat) writeAll(w io.Writer, rows [][]string) error {
	cw, err := f.newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

// WriteSegments writes the segment summary: segment, total, percentage, asset count.
func (f CSVFormat) WriteSegments(w io.Writer, segments []domain.SegmentSummary) error {
	rows := make([][]string, 0, len(segments)+1)
	rows = append(rows, segmentHeader)
	for _, s := range segments {
		rows = append(rows, []string{
			s.Segment,
			f.FormatDecimal(s.Total),
			f.FormatDecimal(s.Percentage),
			strconv.Itoa(s.AssetCount),
		})
	}
	return f.writeAll(w, rows)
}

// WriteSegmentTotals writes the two-column download offered by the dashboard.
func (f CSVFormat) WriteSegmentTotals(w io.Writer, segments []domain.SegmentSummary) error {
	rows := make([][]string, 0, len(segments)+1)
	rows = append(rows, downloadHeader)
	for _, s := range segments {
		rows = append(rows, []string{s.Segment, f.FormatDecimal(s.Total)})
	}
	return f.writeAll(w, rows)
}

// WritePeriods writes the period summary: period label, total.
func (f CSVFormat) WritePeriods(w io.Writer, periods []domain.PeriodSummary) error {
	rows := make([][]string, 0, len(periods)+1)
	rows = append(rows, periodHeader)
	for _, p := range periods {
		rows = append(rows, []string{p.Label, f.FormatDecimal(p.Total)})
	}
	return f.writeAll(w, rows)
}

// WriteBreakdown writes per-segment totals for every period.
func (f CSVFormat) WriteBreakdown(w io.Writer, breakdown []domain.SegmentPeriod) error {
	rows := make([][]string, 0, len(breakdown)+1)
	rows = append(rows, breakdownHeader)
	for _, b := range breakdown {
		rows = append(rows, []string{
			b.Label,
			b.Segment,
			f.FormatDecimal(b.Total),
			f.FormatDecimal(b.Previous),
			f.FormatDecimal(b.Share),
		})
	}
	return f.writeAll(w, rows)
}

// WriteRecords dumps every record with every API attribute, columns sorted by name.
func (f CSVFormat) WriteRecords(w io.Writer, records []domain.Record) error {
	columns := lo.Uniq(lo.FlatMap(records, func(r domain.Record, _ int) []string {
		return lo.Keys(r.Attributes)
	}))
	sort.Strings(columns)

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, columns)
	for _, r := range records {
		rows = append(rows, lo.Map(columns, func(col string, _ int) string {
			return f.rawValue(r.Attributes[col])
		}))
	}
	return f.writeAll(w, rows)
}

// rawValue renders an undecoded JSON attribute as a CSV cell.
func (f CSVFormat) rawValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return f.localize(string(raw))
	}
	return string(raw)
}

// ReadSegments parses a file produced by WriteSegments.
func (f CSVFormat) ReadSegments(r io.Reader) ([]domain.SegmentSummary, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && string(bom) == utf8BOM {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("skipping BOM: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = f.Comma
	cr.FieldsPerRecord = len(segmentHeader)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reading CSV: missing header")
	}

	segments := make([]domain.SegmentSummary, 0, len(rows)-1)
	for i, row := range rows[1:] {
		total, err := f.ParseDecimal(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d total: %w", i+2, err)
		}
		pct, err := f.ParseDecimal(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d percentage: %w", i+2, err)
		}
		count, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d asset count: %w", i+2, err)
		}
		segments = append(segments, domain.SegmentSummary{
			Segment:    row[0],
			Total:      total,
			Percentage: pct,
			AssetCount: count,
		})
	}
	return segments, nil
}
