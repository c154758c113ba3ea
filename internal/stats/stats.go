// Package stats provides the column reductions used by the cleaning stages.
// Reductions delegate to gonum where its definitions match the ones the
// pipeline reports; Quantile is implemented here because gonum's estimators
// do not include the linear closest-rank interpolation (rank = p·(n−1)).
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Sum returns the sum of x.
func Sum(x []float64) float64 {
	return floats.Sum(x)
}

// PopMeanVariance returns the mean and the population (biased) variance.
func PopMeanVariance(x []float64) (mean, variance float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return stat.PopMeanVariance(x, nil)
}

// Quantile returns the p-quantile of x (0 <= p <= 1) by linear interpolation
// between the closest ranks of the sorted data: rank = p·(n−1). It returns 0
// for an empty slice. x is not modified.
func Quantile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, x)
	sort.Float64s(sorted)
	return QuantileSorted(sorted, p)
}

// QuantileSorted is Quantile for data already sorted ascending.
func QuantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := lo + 1
	if hi >= n {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Skewness returns the adjusted Fisher–Pearson sample skewness
// n/((n−1)(n−2))·Σ((x−mean)/s)³. It is NaN for fewer than three values and
// 0 for constant data.
func Skewness(x []float64) float64 {
	if len(x) < 3 {
		return math.NaN()
	}
	_, std := stat.MeanStdDev(x, nil)
	if std == 0 {
		return 0
	}
	return stat.Skew(x, nil)
}

// Correlation returns the Pearson correlation of x and y. It is NaN when
// either input is constant or the inputs are shorter than two values.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	_, sx := stat.MeanStdDev(x, nil)
	_, sy := stat.MeanStdDev(y, nil)
	if sx == 0 || sy == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// MinMax returns the smallest and largest values of x.
func MinMax(x []float64) (min, max float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return floats.Min(x), floats.Max(x)
}

// AllFinite reports whether x holds no NaN or infinite values.
func AllFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
