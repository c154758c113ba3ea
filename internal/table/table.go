// Package table holds the in-memory tabular model the cleaning pipeline works
// on. A Table is an ordered set of equal-length named columns. Tables are
// never mutated; every operation returns a new Table that shares the storage
// of the columns it did not touch.
package table

import (
	"fmt"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
)

// Table is an immutable, ordered collection of columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from columns. All columns must have equal length and
// distinct names.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col == nil {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("column %d is nil", i))
		}
		if _, dup := t.index[col.Name()]; dup {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("duplicate column %q", col.Name()))
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, apperrors.NewAppValidationError(
				fmt.Sprintf("column %q has %d rows, expected %d", col.Name(), col.Len(), t.rows))
		}
		t.index[col.Name()] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the column count.
func (t *Table) NumColumns() int { return len(t.columns) }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// Columns returns the columns in table order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether name is present.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column or a ColumnNotFoundError.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, apperrors.NewColumnNotFoundError(name)
	}
	return t.columns[i], nil
}

// NumericColumns returns the Int and Float columns in table order.
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for _, c := range t.columns {
		if c.IsNumeric() {
			out = append(out, c)
		}
	}
	return out
}

// DropColumns returns a table without the named columns. Every name is
// checked before anything is removed, so a missing name leaves no partial
// result.
func (t *Table) DropColumns(names ...string) (*Table, error) {
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !t.HasColumn(name) {
			return nil, apperrors.NewColumnNotFoundError(name)
		}
		drop[name] = struct{}{}
	}

	kept := make([]*Column, 0, len(t.columns))
	for _, c := range t.columns {
		if _, ok := drop[c.Name()]; !ok {
			kept = append(kept, c)
		}
	}
	return t.derive(kept), nil
}

// WithColumn returns a table with col appended.
func (t *Table) WithColumn(col *Column) (*Table, error) {
	if t.HasColumn(col.Name()) {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("column %q already exists", col.Name()))
	}
	if len(t.columns) > 0 && col.Len() != t.rows {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("column %q has %d rows, expected %d", col.Name(), col.Len(), t.rows))
	}
	cols := make([]*Column, len(t.columns), len(t.columns)+1)
	copy(cols, t.columns)
	out := t.derive(append(cols, col))
	if len(t.columns) == 0 {
		out.rows = col.Len()
	}
	return out, nil
}

// ReplaceColumn returns a table where the column named col.Name() is
// replaced by col at the same position.
func (t *Table) ReplaceColumn(col *Column) (*Table, error) {
	i, ok := t.index[col.Name()]
	if !ok {
		return nil, apperrors.NewColumnNotFoundError(col.Name())
	}
	if col.Len() != t.rows {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("column %q has %d rows, expected %d", col.Name(), col.Len(), t.rows))
	}
	cols := make([]*Column, len(t.columns))
	copy(cols, t.columns)
	cols[i] = col
	return t.derive(cols), nil
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

func (t *Table) derive(cols []*Column) *Table {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c.Name()] = i
	}
	return &Table{columns: cols, index: idx, rows: t.rows}
}
