package dataprocessing

import (
	"errors"
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/shared/testutil"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

func TestSkewReport(t *testing.T) {
	tbl, err := table.New(
		table.NewFloatColumn("right", []float64{1, 2, 3, 10}),
		table.NewStringColumn("label", []string{"a", "b", "c", "d"}, nil),
		table.NewIntColumn("sym", []int64{1, 2, 3, 4}),
	)
	require.NoError(t, err)

	report := SkewReport(tbl)
	require.Len(t, report, 2)
	assert.Equal(t, "right", report[0].Column)
	assert.InDelta(t, 1.763632, report[0].Skewness, 1e-6)
	assert.InDelta(t, 0, report[1].Skewness, 1e-12)
}

func TestComputeCorrelation(t *testing.T) {
	tbl, err := table.New(
		table.NewFloatColumn("a", []float64{1, 2, 3, 4}),
		table.NewFloatColumn("b", []float64{2, 4, 6, 8}),
		table.NewFloatColumn("c", []float64{4, 3, 2, 1}),
		table.NewFloatColumn("k", []float64{5, 5, 5, 5}),
	)
	require.NoError(t, err)

	m := ComputeCorrelation(tbl)
	assert.Equal(t, []string{"a", "b", "c", "k"}, m.Columns)

	ab, ok := m.At("a", "b")
	require.True(t, ok)
	assert.InDelta(t, 1, ab, 1e-12)
	ac, _ := m.At("c", "a")
	assert.InDelta(t, -1, ac, 1e-12)
	aa, _ := m.At("a", "a")
	assert.Equal(t, 1.0, aa)
	kk, _ := m.At("k", "k")
	assert.True(t, math.IsNaN(kk))
	_, ok = m.At("a", "zzz")
	assert.False(t, ok)

	data, err := json.Marshal(m)
	require.NoError(t, err, "NaN cells encode as null")
	assert.Contains(t, string(data), "null")
}

func TestSplitByFlag(t *testing.T) {
	tbl := testutil.SampleBankTable(t)

	split, err := SplitByFlag(tbl, domain.ColumnIncome, domain.ColumnPersonalLoan)
	require.NoError(t, err)
	assert.Equal(t, []float64{180, 150}, split.WithFlag)
	assert.Len(t, split.WithoutFlag, 10)

	_, err = SplitByFlag(tbl, domain.ColumnIncome, "Nope")
	assert.True(t, errors.Is(err, apperrors.ErrColumnNotFound))
}

func TestMissingReport(t *testing.T) {
	tbl, err := table.New(
		table.NewFloatColumn("x", []float64{1, math.NaN(), math.NaN()}),
		table.NewIntColumn("y", []int64{1, 2, 3}),
		table.NewStringColumn("z", []string{"a", "", "c"}, []bool{true, false, true}),
	)
	require.NoError(t, err)

	report := MissingReport(tbl)
	assert.Equal(t, []MissingCount{{"x", 2}, {"y", 0}, {"z", 1}}, report.Counts)
	assert.Equal(t, 3, report.Total)

	err = RequireCompleteNumeric(tbl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDataQuality))

	assert.NoError(t, RequireCompleteNumeric(testutil.SampleBankTable(t)))
}
