package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffMetrics(t *testing.T) {
	t.Parallel()

	r1 := MetricsResult{
		RowCount: 1000,
		Metrics: map[string]map[string]float64{
			"mean":   {"nr_buildings": 4.0, "gross_floor_area": 250.5},
			"stddev": {"nr_buildings": 2.0},
		},
	}
	r2 := MetricsResult{
		RowCount: 900,
		Metrics: map[string]map[string]float64{
			"mean":   {"nr_buildings": 5.0, "gross_floor_area": 250.5},
			"stddev": {"nr_buildings": 1.0},
		},
	}

	d := DiffMetrics(r1, r2, 5)

	assert.Equal(t, int64(100), d.RowCountDiff)
	assert.Equal(t, "-25.00000%", d.Percent["mean"]["nr_buildings"])
	assert.Equal(t, "0.00000%", d.Percent["mean"]["gross_floor_area"])
	assert.Equal(t, "50.00000%", d.Percent["stddev"]["nr_buildings"])
}

func TestDiffMetricsZeroReference(t *testing.T) {
	t.Parallel()

	r1 := MetricsResult{Metrics: map[string]map[string]float64{
		"mean": {"a": 0, "b": 0},
	}}
	r2 := MetricsResult{Metrics: map[string]map[string]float64{
		"mean": {"a": 3.5, "b": 0},
	}}

	d := DiffMetrics(r1, r2, 5)

	assert.Equal(t, "undefined", d.Percent["mean"]["a"])
	assert.Equal(t, "0.00000%", d.Percent["mean"]["b"])
}

func TestDiffMetricsSkipsValuesMissingOnEitherSide(t *testing.T) {
	t.Parallel()

	r1 := MetricsResult{Metrics: map[string]map[string]float64{
		"mean": {"a": 1.0, "onlyLeft": 2.0},
	}}
	r2 := MetricsResult{Metrics: map[string]map[string]float64{
		"mean": {"a": 1.0, "onlyRight": 3.0},
	}}

	d := DiffMetrics(r1, r2, 5)

	assert.Equal(t, map[string]string{"a": "0.00000%"}, d.Percent["mean"])
}

func TestDiffMetricsPrecision(t *testing.T) {
	t.Parallel()

	r1 := MetricsResult{Metrics: map[string]map[string]float64{"mean": {"a": 3.0}}}
	r2 := MetricsResult{Metrics: map[string]map[string]float64{"mean": {"a": 2.0}}}

	assert.Equal(t, "33.33%", DiffMetrics(r1, r2, 2).Percent["mean"]["a"])
	assert.Equal(t, "33.33333%", DiffMetrics(r1, r2, 5).Percent["mean"]["a"])
}

func TestDiffMetricsNegativeRowCountDiff(t *testing.T) {
	t.Parallel()

	d := DiffMetrics(MetricsResult{RowCount: 10}, MetricsResult{RowCount: 25}, 5)
	assert.Equal(t, int64(-15), d.RowCountDiff)
}
