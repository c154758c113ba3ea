package dataprocessing

import (
	"fmt"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// DefaultDropColumns are the identifier columns removed before analysis.
var DefaultDropColumns = domain.IdentifierColumns()

// DropColumns returns t without the named columns. It fails with a
// ColumnNotFoundError, and drops nothing, if any name is absent.
func DropColumns(t *table.Table, names ...string) (*table.Table, error) {
	return t.DropColumns(names...)
}

// ReduceSchema drops DefaultDropColumns.
func ReduceSchema(t *table.Table) (*table.Table, error) {
	return DropColumns(t, DefaultDropColumns...)
}

// numericColumn looks up a column that must be Int or Float.
func numericColumn(t *table.Table, name string) (*table.Column, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !col.IsNumeric() {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("column %q is %s, expected a numeric column", name, col.Kind())).
			With(apperrors.DetailColumn, name)
	}
	return col, nil
}
