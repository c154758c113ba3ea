package operations

import (
	"fmt"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/dataprocessing"
	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// Config tunes the pipeline stages.
type Config struct {
	// DropColumns are removed by the schema reduction stage.
	DropColumns []string
	// RepairColumn has its negative values replaced by the column mean, is
	// captured as an artifact and then dropped from the working table.
	RepairColumn string
	// Partitions > 1 repairs RepairColumn concurrently.
	Partitions   int
	LogColumns   []string
	PowerColumns []string
	Power        dataprocessing.PowerOptions
	OutlierK     float64
}

// NewConfig returns the default pipeline configuration
func NewConfig() *Config {
	return &Config{
		DropColumns:  append([]string(nil), dataprocessing.DefaultDropColumns...),
		RepairColumn: domain.ColumnExperience,
		Partitions:   1,
		LogColumns:   append([]string(nil), dataprocessing.DefaultLogColumns...),
		PowerColumns: append([]string(nil), dataprocessing.DefaultPowerColumns...),
		Power:        dataprocessing.DefaultPowerOptions(),
		OutlierK:     dataprocessing.DefaultOutlierK,
	}
}

// Validate checks the configuration before a run starts.
func (c *Config) Validate() error {
	switch {
	case c.RepairColumn == "":
		return apperrors.NewAppValidationError("repair column must be set")
	case c.Partitions < 1:
		return apperrors.NewAppValidationError(fmt.Sprintf("partitions must be at least 1, got %d", c.Partitions))
	case c.OutlierK <= 0:
		return apperrors.NewAppValidationError(fmt.Sprintf("outlier k must be positive, got %g", c.OutlierK))
	case c.Power.LambdaMin >= c.Power.LambdaMax:
		return apperrors.NewAppValidationError("lambda bracket is empty")
	}
	return nil
}
