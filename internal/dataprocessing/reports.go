package dataprocessing

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/stats"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
)

// nullable maps NaN and ±Inf to nil so reports survive JSON encoding.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ColumnSkew is the sample skewness of one column.
type ColumnSkew struct {
	Column   string
	Skewness float64
}

// MarshalJSON encodes an undefined skewness as null.
func (c ColumnSkew) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column   string   `json:"column"`
		Skewness *float64 `json:"skewness"`
	}{c.Column, nullable(c.Skewness)})
}

// SkewReport returns the adjusted Fisher–Pearson skewness of every numeric
// column, in table order.
func SkewReport(t *table.Table) []ColumnSkew {
	cols := t.NumericColumns()
	out := make([]ColumnSkew, 0, len(cols))
	for _, c := range cols {
		out = append(out, ColumnSkew{Column: c.Name(), Skewness: stats.Skewness(c.Floats())})
	}
	return out
}

// CorrelationMatrix is the pairwise Pearson correlation of numeric columns.
type CorrelationMatrix struct {
	Columns []string
	// Values[i][j] is the correlation of Columns[i] and Columns[j]. It is NaN
	// when either column is constant.
	Values [][]float64
}

// At returns the correlation of columns a and b.
func (m CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, name := range m.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// MarshalJSON encodes undefined correlations as null.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			values[i][j] = nullable(v)
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, values})
}

// ComputeCorrelation returns the correlation matrix of every numeric column
// of t, in table order.
func ComputeCorrelation(t *table.Table) CorrelationMatrix {
	cols := t.NumericColumns()
	data := make([][]float64, len(cols))
	m := CorrelationMatrix{
		Columns: make([]string, len(cols)),
		Values:  make([][]float64, len(cols)),
	}
	for i, c := range cols {
		m.Columns[i] = c.Name()
		data[i] = c.Floats()
		m.Values[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := stats.Correlation(data[i], data[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// FlagSplit partitions one column's values by a 0/1 flag column.
type FlagSplit struct {
	Value       string    `json:"value"`
	Flag        string    `json:"flag"`
	WithFlag    []float64 `json:"with_flag"`
	WithoutFlag []float64 `json:"without_flag"`
}

// SplitByFlag returns the values of column value grouped by whether flag is
// 1 or 0. Rows with any other flag value are left out.
func SplitByFlag(t *table.Table, value, flag string) (FlagSplit, error) {
	v, err := numericColumn(t, value)
	if err != nil {
		return FlagSplit{}, err
	}
	f, err := numericColumn(t, flag)
	if err != nil {
		return FlagSplit{}, err
	}

	split := FlagSplit{Value: value, Flag: flag, WithFlag: []float64{}, WithoutFlag: []float64{}}
	for i := 0; i < v.Len(); i++ {
		switch f.Float(i) {
		case 1:
			split.WithFlag = append(split.WithFlag, v.Float(i))
		case 0:
			split.WithoutFlag = append(split.WithoutFlag, v.Float(i))
		}
	}
	return split, nil
}

// MissingCount is the number of undefined cells in one column.
type MissingCount struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

// MissingValues reports undefined cells per column.
type MissingValues struct {
	Counts []MissingCount `json:"counts"`
	Total  int            `json:"total"`
}

// MissingReport counts undefined cells of every column, in table order.
// Numeric cells are undefined when the loader could not parse them.
func MissingReport(t *table.Table) MissingValues {
	var report MissingValues
	for _, c := range t.Columns() {
		n := c.Undefined()
		report.Counts = append(report.Counts, MissingCount{Column: c.Name(), Missing: n})
		report.Total += n
	}
	return report
}

// RequireCompleteNumeric fails with a DataQualityError naming the first
// numeric column that holds missing cells.
func RequireCompleteNumeric(t *table.Table) error {
	for _, c := range t.NumericColumns() {
		if n := c.Undefined(); n > 0 {
			return apperrors.NewDataQualityError(c.Name(),
				fmt.Sprintf("%d cells are missing or unparseable", n), float64(n)).
				With(apperrors.DetailRows, n)
		}
	}
	return nil
}
