package diff

import "strconv"

// MetricsResult holds one table's row count and its aggregate values,
// keyed metric name then column name. Columns whose aggregate came back
// NULL (empty table, all-NULL column) are absent from the inner map.
type MetricsResult struct {
	RowCount int64
	Metrics  map[string]map[string]float64
}

// MetricsDiff holds the relative differences between two tables'
// metrics. Percent is keyed metric name then column name; values are
// formatted percent strings. RowCountDiff is table 1's row count minus
// table 2's.
type MetricsDiff struct {
	Percent      map[string]map[string]string
	RowCountDiff int64
}

// DiffMetrics computes the relative percent difference of every metric
// value present on both sides, with table 1 as the reference:
// (v1 - v2) / v1 * 100, formatted to precision decimal places with a
// trailing percent sign. When the reference value is zero the ratio is
// undefined unless both sides are zero, in which case the difference
// is zero.
func DiffMetrics(r1, r2 MetricsResult, precision int) MetricsDiff {
	d := MetricsDiff{
		Percent:      make(map[string]map[string]string, len(r1.Metrics)),
		RowCountDiff: r1.RowCount - r2.RowCount,
	}

	for metric, cols1 := range r1.Metrics {
		cols2, ok := r2.Metrics[metric]
		if !ok {
			continue
		}
		out := make(map[string]string, len(cols1))
		for col, v1 := range cols1 {
			v2, ok := cols2[col]
			if !ok {
				continue
			}
			out[col] = formatPercentDiff(v1, v2, precision)
		}
		d.Percent[metric] = out
	}

	return d
}

func formatPercentDiff(v1, v2 float64, precision int) string {
	if v1 == 0 {
		if v2 == 0 {
			return strconv.FormatFloat(0, 'f', precision, 64) + "%"
		}
		return "undefined"
	}
	return strconv.FormatFloat((v1-v2)/v1*100, 'f', precision, 64) + "%"
}

// ComparisonResult is the full outcome of comparing two tables.
type ComparisonResult struct {
	Columns     ColumnDiff
	Table1      MetricsResult
	Table2      MetricsResult
	MetricsDiff MetricsDiff
}
