// Package errors defines the typed errors returned by the pipeline. Every
// error carries an ErrorType so callers branch with errors.Is against the
// sentinels below instead of matching messages.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	ErrTypeColumnNotFound ErrorType = "COLUMN_NOT_FOUND"
	ErrTypeDataQuality    ErrorType = "DATA_QUALITY"
	ErrTypeDomain         ErrorType = "DOMAIN"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeNotFound       ErrorType = "NOT_FOUND"
	ErrTypeConfig         ErrorType = "CONFIG"
)

// Detail keys set by the data error constructors.
const (
	DetailColumn    = "column"
	DetailStatistic = "statistic"
	DetailRows      = "rows"
)

// Sentinels. An AppError matches the sentinel of its own type.
var (
	ErrColumnNotFound = &AppError{Type: ErrTypeColumnNotFound, Message: "column not found"}
	ErrDataQuality    = &AppError{Type: ErrTypeDataQuality, Message: "data quality violation"}
	ErrDomain         = &AppError{Type: ErrTypeDomain, Message: "value outside transform domain"}
	ErrParsing        = &AppError{Type: ErrTypeParsing, Message: "parsing failed"}
	ErrStorage        = &AppError{Type: ErrTypeStorage, Message: "storage failure"}
	ErrValidation     = &AppError{Type: ErrTypeValidation, Message: "validation failed"}
	ErrNotFound       = &AppError{Type: ErrTypeNotFound, Message: "not found"}
	ErrConfig         = &AppError{Type: ErrTypeConfig, Message: "invalid configuration"}
)

// AppError is a classified error with optional structured details.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]any
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any AppError with the same Type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Type == t.Type
}

// With records a detail and returns e for chaining.
func (e *AppError) With(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Column returns the column the error is about, or "".
func (e *AppError) Column() string {
	s, _ := e.Details[DetailColumn].(string)
	return s
}

// LogValue renders the error as a group so log lines keep the details
// machine readable.
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(e.Type)),
		slog.String("message", e.Message),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Details[k]))
	}
	return slog.GroupValue(attrs...)
}

// Attr is the log attribute for err: the AppError group when err wraps
// one, otherwise its text.
func Attr(err error) slog.Attr {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return slog.Any("error", appErr)
	}
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// NewAppError creates an error of the given type.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError reports invalid caller input.
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError reports a missing resource as "<resource> not found".
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, resource+" not found", nil)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
