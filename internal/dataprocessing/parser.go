package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// Sheet names tried before scanning every sheet for the header row.
var possibleSheetNames = []string{"Data", "Bank_Personal_Loan_Modelling", "Bank_Personal_Loan_Modelling "}

// headerScanDepth bounds how many leading rows are searched for the header.
const headerScanDepth = 10

// ParseFile reads the bank customer workbook at filePath into a Table.
func ParseFile(filePath string) (*table.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", filePath), err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

// Parse reads a bank customer workbook from r.
func Parse(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

func parseWorkbook(f *excelize.File) (*table.Table, error) {
	sheetName, rows, headerRow, err := locateCustomerSheet(f)
	if err != nil {
		return nil, err
	}

	slog.Info("Found customer data in sheet",
		slog.String("sheet_name", sheetName),
		slog.Int("header_row", headerRow),
		slog.Int("total_rows", len(rows)))

	header := rows[headerRow]
	columnMap := make(map[string]int, len(header))
	var order []string
	for j, cell := range header {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if _, dup := columnMap[name]; dup {
			slog.Warn("Duplicate header ignored", slog.String("header", name), slog.Int("column_index", j))
			continue
		}
		columnMap[name] = j
		order = append(order, name)
	}

	// Every documented column must be present.
	for _, spec := range domain.BankSchema {
		if _, ok := columnMap[spec.Name]; !ok {
			return nil, fmt.Errorf("sheet %s: %w", sheetName, apperrors.NewColumnNotFoundError(spec.Name))
		}
	}

	var dataRows [][]string
	for i := headerRow + 1; i < len(rows); i++ {
		if isBlankRow(rows[i]) {
			continue
		}
		dataRows = append(dataRows, rows[i])
	}

	columns := make([]*table.Column, 0, len(order))
	missingCells := 0
	for _, name := range order {
		col, missing := buildColumn(name, columnMap[name], dataRows)
		if missing > 0 {
			slog.Warn("Column has missing or unparseable cells",
				slog.String("column", name),
				slog.Int("missing", missing))
		}
		missingCells += missing
		columns = append(columns, col)
	}

	t, err := table.New(columns...)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to assemble table", err)
	}

	slog.Info("Processing complete",
		slog.Int("total_records", t.NumRows()),
		slog.Int("columns", t.NumColumns()),
		slog.Int("missing_cells", missingCells))

	return t, nil
}

// locateCustomerSheet returns the sheet holding the customer data, its rows
// and the index of the header row.
func locateCustomerSheet(f *excelize.File) (string, [][]string, int, error) {
	tried := make(map[string]bool)

	for _, name := range possibleSheetNames {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		tried[name] = true
		if idx := findHeaderRow(rows); idx >= 0 {
			return name, rows, idx, nil
		}
	}

	// Fall back to the first sheet whose leading rows carry the header.
	for _, name := range f.GetSheetList() {
		if tried[name] {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if idx := findHeaderRow(rows); idx >= 0 {
			return name, rows, idx, nil
		}
	}

	return "", nil, -1, apperrors.NewParsingError("could not find customer data sheet in workbook", nil)
}

// findHeaderRow returns the index of the first row naming ID, Age and
// Income, or -1.
func findHeaderRow(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanDepth; i++ {
		seen := make(map[string]bool, len(rows[i]))
		for _, cell := range rows[i] {
			seen[strings.TrimSpace(cell)] = true
		}
		if seen[domain.ColumnID] && seen[domain.ColumnAge] && seen[domain.ColumnIncome] {
			return i
		}
	}
	return -1
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// buildColumn converts the raw cells at index idx into a typed column.
// Integer schema columns become Int columns when every cell is a whole
// number; anything else becomes a Float column with NaN for cells that are
// empty or not numeric. The second return value is that NaN count.
func buildColumn(name string, idx int, rows [][]string) (*table.Column, int) {
	values := make([]float64, len(rows))
	missing := 0
	integral := true
	for i, row := range rows {
		v, ok := parseCell(row, idx)
		if !ok {
			values[i] = math.NaN()
			missing++
			integral = false
			continue
		}
		values[i] = v
		if v != math.Trunc(v) {
			integral = false
		}
	}

	spec, known := domain.LookupColumn(name)
	if known && spec.Integer && integral {
		ints := make([]int64, len(values))
		for i, v := range values {
			ints[i] = int64(v)
		}
		return table.NewIntColumn(name, ints), 0
	}
	if known && spec.Integer && missing == 0 {
		slog.Warn("Integer column holds fractional values, reading as float", slog.String("column", name))
	}
	return table.NewFloatColumn(name, values), missing
}

func parseCell(row []string, idx int) (float64, bool) {
	if idx >= len(row) {
		return 0, false
	}
	raw := strings.ReplaceAll(strings.TrimSpace(row[idx]), ",", "")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
