package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"with negatives", []float64{-1, 2, 3, -4, 5}, 1},
		{"fractional", []float64{1, 2}, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Mean(tt.x), 1e-12)
		})
	}
}

func TestQuantile(t *testing.T) {
	oneToTen := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

	tests := []struct {
		name string
		x    []float64
		p    float64
		want float64
	}{
		{"q1 of 1..10", oneToTen, 0.25, 3.25},
		{"q3 of 1..10", oneToTen, 0.75, 7.75},
		{"median of 1..10", oneToTen, 0.5, 5.5},
		{"min", oneToTen, 0, 1},
		{"max", oneToTen, 1, 10},
		{"single value", []float64{7}, 0.25, 7},
		{"empty", nil, 0.5, 0},
		{"two values", []float64{0, 10}, 0.75, 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.x, tt.p), 1e-12)
		})
	}

	assert.Equal(t, 10.0, oneToTen[0], "input must not be sorted in place")
}

func TestPopMeanVariance(t *testing.T) {
	m, v := PopMeanVariance([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, m, 1e-12)
	assert.InDelta(t, 4.0, v, 1e-12)

	m, v = PopMeanVariance(nil)
	assert.Zero(t, m)
	assert.Zero(t, v)
}

func TestSkewness(t *testing.T) {
	assert.True(t, math.IsNaN(Skewness([]float64{1, 2})))
	assert.Zero(t, Skewness([]float64{3, 3, 3, 3}))
	assert.InDelta(t, 0, Skewness([]float64{1, 2, 3, 4, 5}), 1e-12)

	// pandas: pd.Series([1, 2, 3, 10]).skew() ~= 1.763632
	assert.InDelta(t, 1.763632, Skewness([]float64{1, 2, 3, 10}), 1e-6)

	assert.Greater(t, Skewness([]float64{1, 1, 1, 2, 2, 3, 50}), 0.0)
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.0, Correlation(x, []float64{2, 4, 6, 8}), 1e-12)
	assert.InDelta(t, -1.0, Correlation(x, []float64{8, 6, 4, 2}), 1e-12)
	assert.True(t, math.IsNaN(Correlation(x, []float64{1, 1, 1, 1})))
	assert.True(t, math.IsNaN(Correlation(x, []float64{1, 2})))
}

func TestMinMaxAndFinite(t *testing.T) {
	lo, hi := MinMax([]float64{3, -1, 8})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 8.0, hi)

	assert.True(t, AllFinite([]float64{1, 2}))
	assert.False(t, AllFinite([]float64{1, math.NaN()}))
	assert.False(t, AllFinite([]float64{math.Inf(1)}))
	assert.Equal(t, 6.0, Sum([]float64{1, 2, 3}))
}
