package exporter

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
)

// tableDocument is the JSON form of a table. Undefined cells are null.
type tableDocument struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func newTableDocument(t *table.Table) tableDocument {
	cols := t.Columns()
	doc := tableDocument{Columns: t.ColumnNames(), Rows: make([][]any, t.NumRows())}
	for r := range doc.Rows {
		row := make([]any, len(cols))
		for c, col := range cols {
			row[c] = cellValue(col, r)
		}
		doc.Rows[r] = row
	}
	return doc
}

// WriteJSON writes v as indented JSON. Tables and columns are written as
// tableDocument.
func WriteJSON(path string, v any) error {
	t, ok, err := artifactTable(v)
	if err != nil {
		return err
	}
	if ok {
		v = newTableDocument(t)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
