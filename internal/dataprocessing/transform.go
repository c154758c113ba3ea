package dataprocessing

import (
	"fmt"
	"math"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// LogSuffix is appended to a column name for its log(x+1) transform.
const LogSuffix = "_log"

// Default transform targets.
var (
	DefaultLogColumns   = []string{domain.ColumnIncome, domain.ColumnCCAvg}
	DefaultPowerColumns = []string{domain.ColumnIncome}
)

// LogTransform returns ln(x+1) of every cell as a new column named
// <name>_log. Values below −1 are outside the domain; the whole column is
// rejected with a DomainError that counts them.
func LogTransform(col *table.Column) (*table.Column, error) {
	if !col.IsNumeric() {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("column %q is %s, expected a numeric column", col.Name(), col.Kind()))
	}

	x := col.Floats()
	bad := 0
	for _, v := range x {
		if v < -1 || math.IsNaN(v) {
			bad++
		}
	}
	if bad > 0 {
		return nil, apperrors.NewDomainError(col.Name(),
			fmt.Sprintf("log(x+1) is undefined for %d values below -1 or missing", bad), bad)
	}

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Log1p(v)
	}
	return table.NewFloatColumn(col.Name()+LogSuffix, out), nil
}

// TransformResult lists what TransformTable appended.
type TransformResult struct {
	LogColumns   []string         `json:"log_columns"`
	PowerColumns []string         `json:"power_columns"`
	Parameters   []PowerTransform `json:"parameters"`
}

// TransformTable appends <c>_log for every c in logColumns and
// <c>_yeojohnson, fitted on c itself, for every c in powerColumns. Sources
// are never overwritten.
func TransformTable(t *table.Table, logColumns, powerColumns []string, opts PowerOptions) (*table.Table, TransformResult, error) {
	var result TransformResult
	out := t

	for _, name := range logColumns {
		src, err := numericColumn(t, name)
		if err != nil {
			return nil, TransformResult{}, err
		}
		logged, err := LogTransform(src)
		if err != nil {
			return nil, TransformResult{}, err
		}
		if out, err = out.WithColumn(logged); err != nil {
			return nil, TransformResult{}, err
		}
		result.LogColumns = append(result.LogColumns, logged.Name())
	}

	for _, name := range powerColumns {
		src, err := numericColumn(t, name)
		if err != nil {
			return nil, TransformResult{}, err
		}
		pt, err := FitPowerTransform(src, opts)
		if err != nil {
			return nil, TransformResult{}, err
		}
		transformed := pt.Transform(src)
		if out, err = out.WithColumn(transformed); err != nil {
			return nil, TransformResult{}, err
		}
		result.PowerColumns = append(result.PowerColumns, transformed.Name())
		result.Parameters = append(result.Parameters, pt)
	}

	return out, result, nil
}
