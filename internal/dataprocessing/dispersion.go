package dataprocessing

import (
	"math"
	"sort"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/stats"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
)

// DefaultOutlierK is the Tukey fence multiplier used for box-plot whiskers.
const DefaultOutlierK = 1.5

// Dispersion is the interquartile spread of one numeric column.
type Dispersion struct {
	Column string  `json:"column"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
	// OutlierCount is the number of values outside Bounds(k) for the k the
	// summary was computed with.
	OutlierCount int `json:"outlier_count"`
}

// Bounds returns the Tukey fences Q1 − k·IQR and Q3 + k·IQR.
func (d Dispersion) Bounds(k float64) (lower, upper float64) {
	return d.Q1 - k*d.IQR, d.Q3 + k*d.IQR
}

// DispersionSummary holds one entry per numeric column, in table order.
type DispersionSummary struct {
	OutlierK float64      `json:"outlier_k"`
	Entries  []Dispersion `json:"entries"`
}

// Get returns the entry for column.
func (s DispersionSummary) Get(column string) (Dispersion, bool) {
	for _, e := range s.Entries {
		if e.Column == column {
			return e, true
		}
	}
	return Dispersion{}, false
}

// Columns returns the summarised column names in order.
func (s DispersionSummary) Columns() []string {
	names := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		names[i] = e.Column
	}
	return names
}

// ComputeDispersion summarises every Int and Float column of t with
// outliers counted at DefaultOutlierK. It never fails: an empty column
// yields zeros. t is not modified.
func ComputeDispersion(t *table.Table) DispersionSummary {
	return ComputeDispersionK(t, DefaultOutlierK)
}

// ComputeDispersionK is ComputeDispersion with an explicit fence multiplier.
func ComputeDispersionK(t *table.Table, k float64) DispersionSummary {
	summary := DispersionSummary{OutlierK: k}
	for _, col := range t.NumericColumns() {
		summary.Entries = append(summary.Entries, columnDispersion(col, k))
	}
	return summary
}

func columnDispersion(col *table.Column, k float64) Dispersion {
	values := col.Floats()
	sorted := values[:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)

	d := Dispersion{
		Column: col.Name(),
		Q1:     stats.QuantileSorted(sorted, 0.25),
		Q3:     stats.QuantileSorted(sorted, 0.75),
	}
	d.IQR = d.Q3 - d.Q1

	lower, upper := d.Bounds(k)
	for _, v := range sorted {
		if v < lower || v > upper {
			d.OutlierCount++
		}
	}
	return d
}
