package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bankprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"ID", "ZIP Code"}, cfg.Pipeline.DropColumns)
	assert.Equal(t, "Experience", cfg.Pipeline.RepairColumn)
	assert.Equal(t, []string{"Income", "CCAvg"}, cfg.Pipeline.LogColumns)
	assert.Equal(t, []string{"Income"}, cfg.Pipeline.PowerColumns)
	assert.False(t, cfg.Pipeline.Standardize)
	assert.Equal(t, 1.5, cfg.Pipeline.OutlierK)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults",
			file: `
paths:
  input_file: in/bank.xlsx
pipeline:
  partitions: 4
  standardize: true
export:
  formats: [csv, xlsx, arrow]
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "in/bank.xlsx", cfg.Paths.InputFile)
				assert.Equal(t, "output", cfg.Paths.OutputDir, "unspecified keys keep defaults")
				assert.Equal(t, 4, cfg.Pipeline.Partitions)
				assert.True(t, cfg.Pipeline.Standardize)
				assert.Equal(t, []string{"csv", "xlsx", "arrow"}, cfg.Export.Formats)
			},
		},
		{
			name: "env takes precedence over file",
			file: "pipeline:\n  partitions: 4\n",
			env: map[string]string{
				"BANKPREP_PIPELINE_PARTITIONS": "8",
				"BANKPREP_PIPELINE_LOG_COLUMNS": "Income,Mortgage",
				"BANKPREP_LOGGING_LEVEL":        "DEBUG",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8, cfg.Pipeline.Partitions)
				assert.Equal(t, []string{"Income", "Mortgage"}, cfg.Pipeline.LogColumns)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid yaml",
			file:    "pipeline: [unclosed",
			wantErr: true,
		},
		{
			name:    "unknown export format",
			env:     map[string]string{"BANKPREP_EXPORT_FORMATS": "csv,parquet"},
			wantErr: true,
		},
		{
			name: "csv dialect from env",
			env: map[string]string{
				"BANKPREP_EXPORT_CSV_DELIMITER": ";",
				"BANKPREP_EXPORT_CSV_BOM":       "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ";", cfg.Export.CSVDelimiter)
				assert.False(t, cfg.Export.CSVBOM)
			},
		},
		{
			name:    "multi-character delimiter",
			file:    "export:\n  csv_delimiter: \"||\"\n",
			wantErr: true,
		},
		{
			name:    "zero partitions",
			env:     map[string]string{"BANKPREP_PIPELINE_PARTITIONS": "0"},
			wantErr: true,
		},
		{
			name:    "unparseable env value",
			env:     map[string]string{"BANKPREP_PIPELINE_OUTLIER_K": "wide"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrConfig))
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ExplicitFileFromEnv(t *testing.T) {
	path := writeConfigFile(t, "paths:\n  output_dir: elsewhere\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.Paths.OutputDir)
}

func TestLoadFile_OverridesWinOverEnv(t *testing.T) {
	path := writeConfigFile(t, "export:\n  formats: [csv]\n")
	t.Setenv("BANKPREP_PATHS_OUTPUT_DIR", "from-env")

	cfg, err := LoadFile(path, func(c *Config) {
		c.Paths.OutputDir = "from-flag"
		c.Export.Formats = append(c.Export.Formats, "arrow")
	})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Paths.OutputDir)
	assert.Equal(t, []string{"csv", "arrow"}, cfg.Export.Formats)

	_, err = LoadFile(path, func(c *Config) { c.Pipeline.Partitions = 0 })
	assert.True(t, errors.Is(err, apperrors.ErrConfig), "overrides are validated")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"inverted lambda bracket", func(c *Config) { c.Pipeline.LambdaMin, c.Pipeline.LambdaMax = 2, -2 }, "LambdaMax"},
		{"non-positive outlier k", func(c *Config) { c.Pipeline.OutlierK = 0 }, "OutlierK"},
		{"empty repair column", func(c *Config) { c.Pipeline.RepairColumn = "" }, "RepairColumn"},
		{"xml log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"file output without path", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }, "FilePath"},
		{"sample ratio above one", func(c *Config) { c.Telemetry.SampleRatio = 1.5 }, "SampleRatio"},
		{"unknown trace exporter", func(c *Config) { c.Telemetry.TraceExporter = "jaeger" }, "TraceExporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrConfig))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestOutputPaths(t *testing.T) {
	dir := t.TempDir()
	p, err := PathsConfig{OutputDir: dir}.ResolveOutputPaths("run-1")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "run-1"), p.RunDir)
	assert.Equal(t, filepath.Join(dir, "run-1", "dispersion.json"), p.ArtifactPath("dispersion", "json"))

	require.NoError(t, p.EnsureDirectories())
	info, err := os.Stat(p.RunDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.False(t, FileExists(p.RunDir), "directories are not files")
	flat, err := PathsConfig{OutputDir: dir}.ResolveOutputPaths("")
	require.NoError(t, err)
	assert.Equal(t, dir, flat.RunDir)
}
