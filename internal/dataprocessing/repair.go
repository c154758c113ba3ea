package dataprocessing

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/stats"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
)

// RepairReport records what a negative-value repair changed.
type RepairReport struct {
	Column string `json:"column"`
	// Mean is the value substituted for negatives: the mean over all rows,
	// negatives included.
	Mean            float64 `json:"mean"`
	TotalRows       int     `json:"total_rows"`
	NegativeCount   int     `json:"negative_count"`
	NegativePercent float64 `json:"negative_percent"`
	// NegativeMean is the mean of the offending values before repair.
	NegativeMean float64 `json:"negative_mean"`
	ReplacedRows []int   `json:"replaced_rows"`
}

// Repaired reports whether any value was replaced.
func (r RepairReport) Repaired() bool {
	return r.NegativeCount > 0
}

// RepairNegative replaces every negative value of column with the mean of
// the whole column. Rows that are not negative are left as they are.
//
// When the column has no negatives t itself is returned. Otherwise the
// result is a new table whose column is Float, since the mean may be
// fractional. A negative mean would leave the column invalid, so it is
// reported as a DataQualityError instead.
func RepairNegative(t *table.Table, column string) (*table.Table, RepairReport, error) {
	col, values, err := repairInput(t, column)
	if err != nil {
		return nil, RepairReport{}, err
	}

	mean := stats.Mean(values)
	negatives := negativeRows(values, 0, len(values))
	if err := checkRepairMean(column, mean, len(negatives)); err != nil {
		return nil, RepairReport{}, err
	}

	report := buildRepairReport(column, values, mean, negatives)
	if len(negatives) == 0 {
		return t, report, nil
	}

	repaired := col.Floats()
	for _, i := range negatives {
		repaired[i] = mean
	}
	out, err := t.ReplaceColumn(table.NewFloatColumn(column, repaired))
	if err != nil {
		return nil, RepairReport{}, err
	}
	return out, report, nil
}

// RepairNegativePartitioned is RepairNegative with the column split into
// partitions repaired concurrently. The mean is reduced over the entire
// column before any partition starts, so the result is identical to the
// sequential repair.
func RepairNegativePartitioned(ctx context.Context, t *table.Table, column string, partitions int) (*table.Table, RepairReport, error) {
	if partitions < 1 {
		return nil, RepairReport{}, apperrors.NewAppValidationError(
			fmt.Sprintf("partitions must be at least 1, got %d", partitions))
	}

	_, values, err := repairInput(t, column)
	if err != nil {
		return nil, RepairReport{}, err
	}

	n := len(values)
	mean := stats.Mean(values)
	if mean < 0 {
		if err := checkRepairMean(column, mean, len(negativeRows(values, 0, n))); err != nil {
			return nil, RepairReport{}, err
		}
	}

	repaired := make([]float64, n)
	copy(repaired, values)

	chunk := (n + partitions - 1) / partitions
	found := make([][]int, partitions)
	g, gctx := errgroup.WithContext(ctx)
	for p := 0; p < partitions; p++ {
		lo := p * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			idx := negativeRows(values, lo, hi)
			for _, i := range idx {
				repaired[i] = mean
			}
			found[p] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, RepairReport{}, fmt.Errorf("partitioned repair of %s: %w", column, err)
	}

	var negatives []int
	for _, idx := range found {
		negatives = append(negatives, idx...)
	}

	report := buildRepairReport(column, values, mean, negatives)
	if len(negatives) == 0 {
		return t, report, nil
	}
	out, err := t.ReplaceColumn(table.NewFloatColumn(column, repaired))
	if err != nil {
		return nil, RepairReport{}, err
	}
	return out, report, nil
}

func repairInput(t *table.Table, column string) (*table.Column, []float64, error) {
	col, err := numericColumn(t, column)
	if err != nil {
		return nil, nil, err
	}
	values := col.Floats()
	if !stats.AllFinite(values) {
		return nil, nil, apperrors.NewDataQualityError(column,
			"column holds missing values, the repair mean is undefined", float64(col.Undefined()))
	}
	return col, values, nil
}

func checkRepairMean(column string, mean float64, negatives int) error {
	if negatives == 0 || mean >= 0 {
		return nil
	}
	return apperrors.NewDataQualityError(column,
		fmt.Sprintf("mean %.4f is negative, %d negative values cannot be repaired", mean, negatives), mean).
		With(apperrors.DetailRows, negatives)
}

// negativeRows returns the indices in [lo, hi) holding negative values.
func negativeRows(values []float64, lo, hi int) []int {
	var idx []int
	for i := lo; i < hi; i++ {
		if values[i] < 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

func buildRepairReport(column string, values []float64, mean float64, negatives []int) RepairReport {
	report := RepairReport{
		Column:        column,
		Mean:          mean,
		TotalRows:     len(values),
		NegativeCount: len(negatives),
		ReplacedRows:  negatives,
	}
	if report.ReplacedRows == nil {
		report.ReplacedRows = []int{}
	}
	if len(negatives) > 0 {
		offending := make([]float64, len(negatives))
		for i, idx := range negatives {
			offending[i] = values[idx]
		}
		report.NegativeMean = stats.Mean(offending)
		report.NegativePercent = 100 * float64(len(negatives)) / float64(len(values))
	}
	return report
}
