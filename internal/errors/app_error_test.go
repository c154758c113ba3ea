package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{"column not found", ErrTypeColumnNotFound, "COLUMN_NOT_FOUND"},
		{"data quality", ErrTypeDataQuality, "DATA_QUALITY"},
		{"domain", ErrTypeDomain, "DOMAIN"},
		{"parsing", ErrTypeParsing, "PARSING"},
		{"storage", ErrTypeStorage, "STORAGE"},
		{"validation", ErrTypeValidation, "VALIDATION"},
		{"not found", ErrTypeNotFound, "NOT_FOUND"},
		{"config", ErrTypeConfig, "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewAppValidationError("partitions must be positive"),
			expected: "[VALIDATION] partitions must be positive",
		},
		{
			name:     "with cause",
			err:      NewStorageError("write artifact", cause),
			expected: "[STORAGE] write artifact: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("bad zip")
	err := NewParsingError("open workbook", cause)

	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestAppError_IsMatchesByType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{"column not found", NewColumnNotFoundError("Experience"), ErrColumnNotFound, true},
		{"data quality", NewDataQualityError("Experience", "negative mean", -0.5), ErrDataQuality, true},
		{"domain", NewDomainError("Income", "values below -1", 2), ErrDomain, true},
		{"config", NewConfigError("bad level", nil), ErrConfig, true},
		{"wrapped", fmt.Errorf("stage repair: %w", NewColumnNotFoundError("Age")), ErrColumnNotFound, true},
		{"different type", NewDomainError("Income", "x", 1), ErrDataQuality, false},
		{"plain error", errors.New("boom"), ErrDomain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestDomainConstructors_Context(t *testing.T) {
	t.Run("column not found", func(t *testing.T) {
		err := NewColumnNotFoundError("ZIP Code")
		assert.Equal(t, "ZIP Code", err.Column())
		assert.Contains(t, err.Error(), `"ZIP Code"`)
	})

	t.Run("data quality carries statistic", func(t *testing.T) {
		err := NewDataQualityError("Experience", "mean is negative", -1.25)
		assert.Equal(t, "Experience", err.Column())
		assert.Equal(t, -1.25, err.Details[DetailStatistic])
	})

	t.Run("domain carries row count", func(t *testing.T) {
		err := NewDomainError("CCAvg", "log undefined for values below -1", 3)
		assert.Equal(t, 3, err.Details[DetailRows])
	})

	t.Run("errors.As recovers the AppError", func(t *testing.T) {
		wrapped := fmt.Errorf("transform: %w", NewDomainError("Income", "x", 1))
		var appErr *AppError
		require.True(t, errors.As(wrapped, &appErr))
		assert.Equal(t, ErrTypeDomain, appErr.Type)
	})
}

func TestAppError_WithOnNilMap(t *testing.T) {
	err := &AppError{Type: ErrTypeStorage, Message: "x"}
	err.With("path", "/tmp/out")
	assert.Equal(t, "/tmp/out", err.Details["path"])
	assert.Equal(t, "", err.Column())
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("artifact dispersion")
	assert.Equal(t, "[NOT_FOUND] artifact dispersion not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAppError_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := fmt.Errorf("stage validity_repair: %w", NewDataQualityError("Experience", "mean is negative", -0.5))
	logger.Error("stage_error", Attr(err))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	group, ok := entry["error"].(map[string]any)
	require.True(t, ok, "AppError logs as a group")
	assert.Equal(t, "DATA_QUALITY", group["type"])
	assert.Equal(t, "Experience", group["column"])
	assert.Equal(t, -0.5, group["statistic"])
	assert.NotContains(t, group, "cause")
}

func TestAttr_PlainError(t *testing.T) {
	attr := Attr(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
	assert.Equal(t, "", Attr(nil).Value.String())
}
