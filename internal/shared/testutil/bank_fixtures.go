package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// SampleCustomerRows are twelve customers in bank schema order. Two rows
// carry negative Experience; the Experience mean over all rows is 11.
var SampleCustomerRows = [][]float64{
	{1, 25, 1, 49, 91107, 4, 1.6, 1, 0, 0, 1, 0, 0, 0},
	{2, 45, 19, 34, 90089, 3, 1.5, 1, 0, 0, 1, 0, 0, 0},
	{3, 39, 15, 11, 94720, 1, 1.0, 1, 0, 0, 0, 0, 0, 0},
	{4, 35, 9, 100, 94112, 1, 2.7, 2, 0, 0, 0, 0, 0, 0},
	{5, 35, 8, 45, 91330, 4, 1.0, 2, 0, 0, 0, 0, 0, 1},
	{6, 37, 13, 29, 92121, 4, 0.4, 2, 155, 0, 0, 0, 1, 0},
	{7, 53, 27, 72, 91711, 2, 1.5, 2, 0, 0, 0, 0, 1, 0},
	{8, 50, 24, 22, 93943, 1, 0.3, 3, 0, 0, 0, 0, 0, 1},
	{9, 35, 10, 81, 90089, 3, 0.6, 2, 104, 0, 0, 0, 1, 0},
	{10, 34, 9, 180, 93023, 1, 8.9, 3, 0, 1, 0, 0, 0, 0},
	{11, 24, -1, 39, 92717, 2, 1.0, 1, 0, 0, 1, 1, 1, 0},
	{12, 25, -2, 150, 94305, 1, 5.2, 3, 0, 1, 0, 1, 0, 1},
}

// SampleExperienceMean is the mean of the Experience column of
// SampleCustomerRows, negatives included.
const SampleExperienceMean = 11.0

// BankHeader returns the bank schema column names in sheet order.
func BankHeader() []string {
	names := make([]string, len(domain.BankSchema))
	for i, spec := range domain.BankSchema {
		names[i] = spec.Name
	}
	return names
}

// BankTable builds a Table from rows laid out in bank schema order, typed
// the way the workbook loader types them.
func BankTable(t *testing.T, rows [][]float64) *table.Table {
	t.Helper()

	cols := make([]*table.Column, len(domain.BankSchema))
	for j, spec := range domain.BankSchema {
		if spec.Integer {
			vals := make([]int64, len(rows))
			for i, row := range rows {
				vals[i] = int64(row[j])
			}
			cols[j] = table.NewIntColumn(spec.Name, vals)
			continue
		}
		vals := make([]float64, len(rows))
		for i, row := range rows {
			vals[i] = row[j]
		}
		cols[j] = table.NewFloatColumn(spec.Name, vals)
	}

	tbl, err := table.New(cols...)
	require.NoError(t, err)
	return tbl
}

// SampleBankTable is BankTable over SampleCustomerRows.
func SampleBankTable(t *testing.T) *table.Table {
	t.Helper()
	return BankTable(t, SampleCustomerRows)
}

// WriteWorkbook saves a single-sheet workbook with the given header and
// rows into dir and returns its path. headerRow is the 1-based row the
// header is written to; rows follow directly below it.
func WriteWorkbook(t *testing.T, dir, sheet string, headerRow int, header []string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	writeRow(t, f, sheet, headerRow, headerCells)
	for i, row := range rows {
		writeRow(t, f, sheet, headerRow+1+i, row)
	}

	path := filepath.Join(dir, "Bank_Personal_Loan_Modelling.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteBankWorkbook saves SampleCustomerRows as a "Data" sheet.
func WriteBankWorkbook(t *testing.T, dir string) string {
	t.Helper()

	rows := make([][]any, len(SampleCustomerRows))
	for i, r := range SampleCustomerRows {
		row := make([]any, len(r))
		for j, v := range r {
			row[j] = v
		}
		rows[i] = row
	}
	return WriteWorkbook(t, dir, "Data", 1, BankHeader(), rows)
}

func writeRow(t *testing.T, f *excelize.File, sheet string, rowNum int, values []any) {
	t.Helper()
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(sheet, cell, &values))
}
