package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       error
		errorContains string
	}{
		{
			name: "bank workbook",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteBankWorkbook(t, t.TempDir())
			},
		},
		{
			name: "upper-case extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "BANK.XLSX")
				require.NoError(t, os.WriteFile(file, []byte("PK\x03\x04rest"), 0644))
				return file
			},
		},
		{
			name: "csv renamed to xlsx",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "bank.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("ID,Age\n1,25\n"), 0644))
				return file
			},
			wantErr:       apperrors.ErrValidation,
			errorContains: "zip signature",
		},
		{
			name: "shorter than the signature",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "bank.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("PK"), 0644))
				return file
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "legacy xls",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "bank.xls")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantErr:       apperrors.ErrValidation,
			errorContains: "not an xlsx workbook",
		},
		{
			name: "temp Excel file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "~$bank.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantErr:       apperrors.ErrValidation,
			errorContains: "temporary",
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "bank.xlsx")
				require.NoError(t, os.WriteFile(file, nil, 0644))
				return file
			},
			wantErr:       apperrors.ErrValidation,
			errorContains: "empty",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "bank.xlsx")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "non-existent file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.xlsx")
			},
			wantErr:       apperrors.ErrNotFound,
			errorContains: "not found",
		},
		{
			name:      "empty path",
			setupFunc: func(t *testing.T) string { return "  " },
			wantErr:   apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			validator := NewFileValidator(logger)

			err := validator.ValidateInputFile(tt.setupFunc(t))

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.errorContains != "" {
				assert.Contains(t, err.Error(), tt.errorContains)
			}
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   error
	}{
		{
			name:      "existing directory",
			setupFunc: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name: "nested directory is created",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "new", "nested", "dir")
			},
		},
		{
			name: "path is a file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "occupied")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr: apperrors.ErrStorage,
		},
		{
			name:      "empty path",
			setupFunc: func(t *testing.T) string { return "" },
			wantErr:   apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			validator := NewFileValidator(logger)
			dir := tt.setupFunc(t)

			err := validator.ValidateOutputDirectory(dir)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			info, err := os.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
			probes, err := filepath.Glob(filepath.Join(dir, ".write_test-*"))
			require.NoError(t, err)
			assert.Empty(t, probes, "probe file is removed")
			assert.True(t, logs.ContainsMessage("Output directory validated"))
		})
	}
}

func TestFileValidator_LogsRejections(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	err := NewFileValidator(logger).ValidateInputFile(filepath.Join(t.TempDir(), "bank.xls"))
	require.Error(t, err)
	testutil.AssertLogAttr(t, logs, "reason", "missing")
}

func TestNewFileValidator_DefaultLogger(t *testing.T) {
	v := NewFileValidator(nil)
	require.NotNil(t, v.logger)
}
