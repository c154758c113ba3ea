package exporter

import (
	"math"
	"strconv"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
)

// formatFloat writes the shortest representation that round-trips.
// Undefined values become empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// cellString renders cell i of col for text formats.
func cellString(col *table.Column, i int) string {
	switch col.Kind() {
	case table.KindInt:
		return formatInt(col.Int(i))
	case table.KindFloat:
		return formatFloat(col.Float(i))
	default:
		label, ok := col.Label(i)
		if !ok {
			return ""
		}
		return label
	}
}

// cellValue renders cell i of col for typed formats. Undefined cells are nil.
func cellValue(col *table.Column, i int) any {
	switch col.Kind() {
	case table.KindInt:
		return col.Int(i)
	case table.KindFloat:
		v := col.Float(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	default:
		label, ok := col.Label(i)
		if !ok {
			return nil
		}
		return label
	}
}

// tableRecords returns the header and the text rows of t.
func tableRecords(t *table.Table) ([]string, [][]string) {
	cols := t.Columns()
	records := make([][]string, t.NumRows())
	for r := range records {
		row := make([]string, len(cols))
		for c, col := range cols {
			row[c] = cellString(col, r)
		}
		records[r] = row
	}
	return t.ColumnNames(), records
}
