package portfolio

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/rpps-dados/carteira/internal/domain"
)

// Options controls how records are validated and labelled.
type Options struct {
	Scheme         domain.PeriodScheme
	RejectNegative bool
}

type segmentPeriodKey struct {
	segment string
	period  int
}

// Aggregate summarizes records by segment, by period and by (segment, period).
// It has no side effects. Every period key must have a label in opts.Scheme;
// negative values are reported as warnings unless opts.RejectNegative is set.
func Aggregate(records []domain.Record, opts Options) (domain.Report, error) {
	scheme := opts.Scheme
	if scheme == "" {
		scheme = domain.PeriodBimonthly
	}

	var warnings []domain.Warning
	for i, r := range records {
		if _, ok := scheme.Label(r.Period); !ok {
			return domain.Report{}, &domain.IntegrityError{
				Index:   i,
				AssetID: r.AssetID,
				Reason:  fmt.Sprintf("period %d has no %s label", r.Period, scheme),
			}
		}
		if !r.CurrentValue.IsNegative() {
			continue
		}
		if opts.RejectNegative {
			return domain.Report{}, &domain.IntegrityError{
				Index:   i,
				AssetID: r.AssetID,
				Reason:  fmt.Sprintf("negative current value %s", r.CurrentValue),
			}
		}
		warnings = append(warnings, domain.Warning{
			Index:   i,
			AssetID: r.AssetID,
			Segment: r.SegmentName(),
			Value:   r.CurrentValue,
			Message: "negative current value",
		})
	}

	grandTotal := sumValues(records)

	return domain.Report{
		RecordCount: len(records),
		GrandTotal:  grandTotal,
		Segments:    summarizeSegments(records, grandTotal),
		Periods:     summarizePeriods(records, scheme),
		Breakdown:   summarizeBreakdown(records, scheme),
		Warnings:    warnings,
		Records:     records,
	}, nil
}

func sumValues(records []domain.Record) decimal.Decimal {
	return lo.Reduce(records, func(acc decimal.Decimal, r domain.Record, _ int) decimal.Decimal {
		return acc.Add(r.CurrentValue)
	}, decimal.Zero)
}

// countAssets returns the number of distinct non-empty asset ids.
func countAssets(records []domain.Record) int {
	ids := lo.FilterMap(records, func(r domain.Record, _ int) (string, bool) {
		return r.AssetID, r.AssetID != ""
	})
	return len(lo.Uniq(ids))
}

// summarizeSegments returns one summary per segment, largest total first.
func summarizeSegments(records []domain.Record, grandTotal decimal.Decimal) []domain.SegmentSummary {
	groups := lo.GroupBy(records, func(r domain.Record) string { return r.SegmentName() })

	segments := lo.MapToSlice(groups, func(name string, rs []domain.Record) domain.SegmentSummary {
		total := sumValues(rs)
		return domain.SegmentSummary{
			Segment:    name,
			Total:      total,
			Percentage: domain.Percent(total, grandTotal),
			AssetCount: countAssets(rs),
		}
	})

	sort.Slice(segments, func(i, j int) bool {
		if c := segments[i].Total.Cmp(segments[j].Total); c != 0 {
			return c > 0
		}
		return segments[i].Segment < segments[j].Segment
	})

	balancePercentages(segments, grandTotal)
	return segments
}

// balancePercentages moves the rounding residual onto the largest segment so the
// rounded percentages add up to exactly 100.
func balancePercentages(segments []domain.SegmentSummary, grandTotal decimal.Decimal) {
	if len(segments) == 0 || grandTotal.IsZero() {
		return
	}
	sum := lo.Reduce(segments, func(acc decimal.Decimal, s domain.SegmentSummary, _ int) decimal.Decimal {
		return acc.Add(s.Percentage)
	}, decimal.Zero)
	if residual := domain.Hundred().Sub(sum); !residual.IsZero() {
		segments[0].Percentage = segments[0].Percentage.Add(residual)
	}
}

// summarizePeriods returns one summary per period key, in calendar order.
// Callers must have validated every key against scheme.
func summarizePeriods(records []domain.Record, scheme domain.PeriodScheme) []domain.PeriodSummary {
	groups := lo.GroupBy(records, func(r domain.Record) int { return r.Period })

	periods := lo.MapToSlice(groups, func(period int, rs []domain.Record) domain.PeriodSummary {
		label, _ := scheme.Label(period)
		return domain.PeriodSummary{
			Period: period,
			Label:  label,
			Total:  domain.Round2(sumValues(rs)),
		}
	})

	sort.Slice(periods, func(i, j int) bool { return periods[i].Period < periods[j].Period })
	return periods
}

// summarizeBreakdown totals each segment within each period, ordered by segment then
// period. Previous carries the segment's total in its prior listed period.
func summarizeBreakdown(records []domain.Record, scheme domain.PeriodScheme) []domain.SegmentPeriod {
	periodTotals := lo.MapValues(
		lo.GroupBy(records, func(r domain.Record) int { return r.Period }),
		func(rs []domain.Record, _ int) decimal.Decimal { return sumValues(rs) },
	)

	groups := lo.GroupBy(records, func(r domain.Record) segmentPeriodKey {
		return segmentPeriodKey{segment: r.SegmentName(), period: r.Period}
	})

	rows := lo.MapToSlice(groups, func(k segmentPeriodKey, rs []domain.Record) domain.SegmentPeriod {
		label, _ := scheme.Label(k.period)
		total := sumValues(rs)
		return domain.SegmentPeriod{
			Period:  k.period,
			Label:   label,
			Segment: k.segment,
			Total:   domain.Round2(total),
			Share:   domain.Percent(total, periodTotals[k.period]),
		}
	})

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Segment != rows[j].Segment {
			return rows[i].Segment < rows[j].Segment
		}
		return rows[i].Period < rows[j].Period
	})

	for i := 1; i < len(rows); i++ {
		if rows[i].Segment == rows[i-1].Segment {
			rows[i].Previous = rows[i-1].Total
		}
	}
	return rows
}
