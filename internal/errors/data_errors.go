package errors

import (
	"fmt"
)

// NewColumnNotFoundError reports an operation naming a column the table
// does not carry.
func NewColumnNotFoundError(column string) *AppError {
	return NewAppError(ErrTypeColumnNotFound, fmt.Sprintf("column %q not found", column), nil).
		With(DetailColumn, column)
}

// NewDataQualityError reports data that violates a precondition of a
// cleaning stage. stat is the offending statistic (for example the mean a
// repair would have substituted).
func NewDataQualityError(column, message string, stat float64) *AppError {
	return NewAppError(ErrTypeDataQuality, fmt.Sprintf("column %q: %s", column, message), nil).
		With(DetailColumn, column).
		With(DetailStatistic, stat)
}

// NewDomainError reports values outside the domain of a transform. rows is
// the number of offending rows.
func NewDomainError(column, message string, rows int) *AppError {
	return NewAppError(ErrTypeDomain, fmt.Sprintf("column %q: %s", column, message), nil).
		With(DetailColumn, column).
		With(DetailRows, rows)
}
