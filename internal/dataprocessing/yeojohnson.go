package dataprocessing

import (
	"fmt"
	"math"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/stats"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
)

// PowerSuffix is appended to a column name for its Yeo-Johnson transform.
const PowerSuffix = "_yeojohnson"

// PowerOptions controls how a Yeo-Johnson transform is fitted.
type PowerOptions struct {
	// Standardize rescales the output to zero mean and unit variance using
	// the statistics of the transformed training data.
	Standardize bool
	// LambdaMin and LambdaMax bound the search for λ.
	LambdaMin float64
	LambdaMax float64
	// Tolerance is the absolute tolerance on λ.
	Tolerance     float64
	MaxIterations int
}

// DefaultPowerOptions returns the options used by the pipeline.
func DefaultPowerOptions() PowerOptions {
	return PowerOptions{
		Standardize:   false,
		LambdaMin:     -5,
		LambdaMax:     5,
		Tolerance:     1e-8,
		MaxIterations: 500,
	}
}

func (o PowerOptions) validate() error {
	if !(o.LambdaMin < o.LambdaMax) {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("lambda bracket [%g, %g] is empty", o.LambdaMin, o.LambdaMax))
	}
	if o.Tolerance <= 0 || o.MaxIterations <= 0 {
		return apperrors.NewAppValidationError("tolerance and max iterations must be positive")
	}
	return nil
}

// PowerTransform is a fitted Yeo-Johnson transform. It is a plain value:
// fitting produces it, applying it never changes it.
type PowerTransform struct {
	Column string  `json:"column"`
	Lambda float64 `json:"lambda"`
	// LogLikelihood is the Yeo-Johnson log-likelihood at Lambda.
	LogLikelihood float64 `json:"log_likelihood"`
	Standardize   bool    `json:"standardize"`
	// Mean and Std are the transformed training data's mean and population
	// standard deviation, recorded only when Standardize is set.
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	Rows int     `json:"rows"`
}

// FitPowerTransform estimates λ by maximum likelihood over col.
// An empty column, or one holding NaN or infinite values, is a DomainError.
func FitPowerTransform(col *table.Column, opts PowerOptions) (PowerTransform, error) {
	if err := opts.validate(); err != nil {
		return PowerTransform{}, err
	}
	if !col.IsNumeric() {
		return PowerTransform{}, apperrors.NewAppValidationError(
			fmt.Sprintf("column %q is %s, expected a numeric column", col.Name(), col.Kind()))
	}

	x := col.Floats()
	if len(x) == 0 {
		return PowerTransform{}, apperrors.NewDomainError(col.Name(), "cannot fit a power transform on an empty column", 0)
	}
	if bad := countNonFinite(x); bad > 0 {
		return PowerTransform{}, apperrors.NewDomainError(col.Name(),
			fmt.Sprintf("%d values are NaN or infinite", bad), bad)
	}

	pt := PowerTransform{Column: col.Name(), Standardize: opts.Standardize, Rows: len(x)}

	lo, hi := stats.MinMax(x)
	if lo == hi {
		// Constant data has zero variance for every λ; keep the identity.
		pt.Lambda = 1
	} else {
		nll := func(lambda float64) float64 { return yeoJohnsonNegLogLikelihood(x, lambda) }
		lambda, fx, err := minimizeBounded(nll, opts.LambdaMin, opts.LambdaMax, opts.Tolerance, opts.MaxIterations)
		if err != nil {
			return PowerTransform{}, fmt.Errorf("fit power transform on %s: %w", col.Name(), err)
		}
		pt.Lambda = lambda
		pt.LogLikelihood = -fx
	}

	if opts.Standardize {
		transformed := make([]float64, len(x))
		for i, v := range x {
			transformed[i] = yeoJohnson(v, pt.Lambda)
		}
		mean, variance := stats.PopMeanVariance(transformed)
		pt.Mean = mean
		pt.Std = math.Sqrt(variance)
	}
	return pt, nil
}

// Apply transforms a single value.
func (p PowerTransform) Apply(x float64) float64 {
	y := yeoJohnson(x, p.Lambda)
	if !p.Standardize {
		return y
	}
	if p.Std == 0 {
		return y - p.Mean
	}
	return (y - p.Mean) / p.Std
}

// Transform applies p to a numeric column, producing <name>_yeojohnson.
// A string column yields an empty column.
func (p PowerTransform) Transform(col *table.Column) *table.Column {
	x := col.Floats()
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = p.Apply(v)
	}
	return table.NewFloatColumn(col.Name()+PowerSuffix, out)
}

// yeoJohnson is the Yeo-Johnson power transform of x with parameter λ.
func yeoJohnson(x, lambda float64) float64 {
	const eps = 1e-12
	if x >= 0 {
		if math.Abs(lambda) < eps {
			return math.Log1p(x)
		}
		return (math.Pow(x+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) < eps {
		return -math.Log1p(-x)
	}
	return -(math.Pow(1-x, 2-lambda) - 1) / (2 - lambda)
}

// yeoJohnsonNegLogLikelihood is
// n/2·ln σ²(ψ(x,λ)) − (λ−1)·Σ sign(x)·ln(1+|x|), with σ² the population
// variance of the transformed data.
func yeoJohnsonNegLogLikelihood(x []float64, lambda float64) float64 {
	transformed := make([]float64, len(x))
	var jacobian float64
	for i, v := range x {
		transformed[i] = yeoJohnson(v, lambda)
		switch {
		case v > 0:
			jacobian += math.Log1p(v)
		case v < 0:
			jacobian -= math.Log1p(-v)
		}
	}
	_, variance := stats.PopMeanVariance(transformed)
	if variance <= 0 || math.IsNaN(variance) || math.IsInf(variance, 0) {
		return math.Inf(1)
	}
	n := float64(len(x))
	return n/2*math.Log(variance) - (lambda-1)*jacobian
}

func countNonFinite(x []float64) int {
	n := 0
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			n++
		}
	}
	return n
}
