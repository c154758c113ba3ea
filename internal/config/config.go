package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "BANKPREP"

// ConfigFileEnv names an explicit YAML configuration file.
const ConfigFileEnv = EnvPrefix + "_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputFile string `yaml:"input_file" envconfig:"INPUT_FILE" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// PipelineConfig tunes the cleaning stages.
type PipelineConfig struct {
	DropColumns  []string `yaml:"drop_columns" envconfig:"DROP_COLUMNS" validate:"dive,required"`
	RepairColumn string   `yaml:"repair_column" envconfig:"REPAIR_COLUMN" validate:"required"`
	// Partitions > 1 repairs the column concurrently.
	Partitions   int      `yaml:"partitions" envconfig:"PARTITIONS" validate:"min=1,max=64"`
	LogColumns   []string `yaml:"log_columns" envconfig:"LOG_COLUMNS" validate:"dive,required"`
	PowerColumns []string `yaml:"power_columns" envconfig:"POWER_COLUMNS" validate:"dive,required"`
	Standardize  bool     `yaml:"standardize" envconfig:"STANDARDIZE"`
	LambdaMin    float64  `yaml:"lambda_min" envconfig:"LAMBDA_MIN"`
	LambdaMax    float64  `yaml:"lambda_max" envconfig:"LAMBDA_MAX" validate:"gtfield=LambdaMin"`
	OutlierK     float64  `yaml:"outlier_k" envconfig:"OUTLIER_K" validate:"gt=0"`
}

// ExportConfig selects the artifact writers.
type ExportConfig struct {
	Formats      []string `yaml:"formats" envconfig:"FORMATS" validate:"dive,oneof=csv xlsx json arrow"`
	CSVDelimiter string   `yaml:"csv_delimiter" envconfig:"CSV_DELIMITER" validate:"len=1"`
	CSVBOM       bool     `yaml:"csv_bom" envconfig:"CSV_BOM"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	TraceFile      string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	MetricsFile    string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
}

// Override adjusts a loaded configuration before it is validated. Command
// line flags are applied this way.
type Override func(*Config)

// Load builds the configuration from defaults, the optional YAML file, the
// environment and overrides, in increasing order of precedence.
func Load(overrides ...Override) (*Config, error) {
	return LoadFile(getConfigFilePath(), overrides...)
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string, overrides ...Override) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config from %s", path), err)
		}
	}

	// Unset variables leave the file or default value in place.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	for _, o := range overrides {
		o(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalises the logging section.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Logging.Format = strings.ToLower(c.Logging.Format)

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return apperrors.NewConfigError("invalid configuration: "+strings.Join(fields, ", "), err)
		}
		return apperrors.NewConfigError("invalid configuration", err)
	}
	return nil
}

var validate = validator.New()

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"bankprep.yaml",
		"configs/bankprep.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/bankprep.log",
		},
		Paths: PathsConfig{
			InputFile: "data/Bank_Personal_Loan_Modelling.xlsx",
			OutputDir: "output",
		},
		Pipeline: PipelineConfig{
			DropColumns:  []string{domain.ColumnID, domain.ColumnZIPCode},
			RepairColumn: domain.ColumnExperience,
			Partitions:   1,
			LogColumns:   []string{domain.ColumnIncome, domain.ColumnCCAvg},
			PowerColumns: []string{domain.ColumnIncome},
			Standardize:  false,
			LambdaMin:    -5,
			LambdaMax:    5,
			OutlierK:     1.5,
		},
		Export: ExportConfig{
			Formats:      []string{"csv", "json"},
			CSVDelimiter: ",",
			CSVBOM:       true,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "bankprep",
			TraceExporter:  "none",
			MetricExporter: "none",
			SampleRatio:    1,
		},
	}
}
