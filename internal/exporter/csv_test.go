package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
)

func readCSV(t *testing.T, path string, comma rune) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.Comma = comma
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteRecords(t *testing.T) {
	header := []string{"label", "count"}
	records := [][]string{{"Holds Security, no Deposit", "7"}, {"Neither", "12"}}

	tests := []struct {
		name    string
		dialect CSVDialect
		wantBOM bool
	}{
		{"default dialect", DefaultCSVDialect, true},
		{"no BOM", CSVDialect{Comma: ','}, false},
		{"semicolon", CSVDialect{Comma: ';', BOM: true}, true},
		{"zero comma falls back to comma", CSVDialect{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			w := NewCSVWriter(dir, tt.dialect, nil)
			require.NoError(t, w.WriteRecords(filepath.Join("reports", "labels.csv"), header, records))

			full := filepath.Join(dir, "reports", "labels.csv")
			data, err := os.ReadFile(full)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(data, utf8BOM))

			comma := tt.dialect.Comma
			if comma == 0 {
				comma = ','
			}
			got := readCSV(t, full, comma)
			assert.Equal(t, header, got[0])
			assert.Equal(t, records, got[1:])
		})
	}
}

func TestCSVWriter_AppendRecords(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, DefaultCSVDialect, nil)

	require.NoError(t, w.WriteRecords("a.csv", []string{"x"}, [][]string{{"1"}}))
	require.NoError(t, w.AppendRecords("a.csv", [][]string{{"2"}, {"3"}}))

	data, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(data, utf8BOM), "appending never repeats the BOM")
	assert.Equal(t, [][]string{{"x"}, {"1"}, {"2"}, {"3"}}, readCSV(t, filepath.Join(dir, "a.csv"), ','))
}

func TestCSVWriter_WriteTable(t *testing.T) {
	tbl, err := table.New(
		table.NewIntColumn("Age", []int64{25, 45}),
		table.NewFloatColumn("CCAvg", []float64{1.6, math.NaN()}),
		table.NewStringColumn("Edu", []string{"Graduate", ""}, []bool{true, false}),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "table.csv")
	w := NewCSVWriter("/ignored", DefaultCSVDialect, nil)
	require.NoError(t, w.WriteTable(path, tbl), "absolute paths bypass the base directory")

	assert.Equal(t, [][]string{
		{"Age", "CCAvg", "Edu"},
		{"25", "1.6", "Graduate"},
		{"45", "", ""},
	}, readCSV(t, path, ','))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "", formatFloat(math.NaN()))
	assert.Equal(t, "11", formatFloat(11))
	assert.Equal(t, "0.066002", formatFloat(0.066002))
	assert.Equal(t, "-3.5", formatFloat(-3.5))
}
