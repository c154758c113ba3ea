package operations

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/dataprocessing"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/infrastructure"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// Stage IDs in pipeline order.
const (
	StageIDMissingCheck       = "missing_check"
	StageIDSchemaReduction    = "schema_reduction"
	StageIDValidityRepair     = "validity_repair"
	StageIDCorrelation        = "correlation"
	StageIDDropRepaired       = "drop_repaired"
	StageIDDerivedCategorical = "derived_categorical"
	StageIDDispersion         = "dispersion"
	StageIDSkewTransform      = "skew_transform"
)

// NewPipelineRegistry registers every stage in execution order.
func NewPipelineRegistry(cfg *Config, tracer *PipelineTracer, logger *slog.Logger) (*Registry, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry := NewRegistry()
	err := registry.Register(
		NewMissingCheckStage(logger),
		NewSchemaReductionStage(cfg, logger),
		NewValidityRepairStage(cfg, tracer, logger),
		NewCorrelationStage(logger),
		NewDropRepairedStage(cfg, logger),
		NewDerivedCategoricalStage(logger),
		NewDispersionStage(cfg, logger),
		NewSkewTransformStage(cfg, logger),
	)
	if err != nil {
		return nil, err
	}
	return registry, nil
}

// MissingCheckStage reports unparsed cells and refuses incomplete numeric data.
type MissingCheckStage struct {
	BaseStage
	logger *slog.Logger
}

func NewMissingCheckStage(logger *slog.Logger) *MissingCheckStage {
	return &MissingCheckStage{
		BaseStage: NewBaseStage(StageIDMissingCheck, "Missing Value Check"),
		logger:    logger,
	}
}

func (s *MissingCheckStage) Execute(ctx context.Context, state *OperationState) error {
	t := state.Table()
	report := dataprocessing.MissingReport(t)
	state.SetArtifact(domain.ArtifactMissingValues, report)

	s.logger.InfoContext(ctx, "missing_values_counted",
		slog.Int("rows", t.NumRows()),
		slog.Int("missing_cells", report.Total))

	return dataprocessing.RequireCompleteNumeric(t)
}

// SchemaReductionStage drops identifier columns and reports skewness of the rest.
type SchemaReductionStage struct {
	BaseStage
	cfg    *Config
	logger *slog.Logger
}

func NewSchemaReductionStage(cfg *Config, logger *slog.Logger) *SchemaReductionStage {
	return &SchemaReductionStage{
		BaseStage: NewBaseStage(StageIDSchemaReduction, "Schema Reduction"),
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *SchemaReductionStage) Execute(ctx context.Context, state *OperationState) error {
	reduced, err := dataprocessing.DropColumns(state.Table(), s.cfg.DropColumns...)
	if err != nil {
		return err
	}
	state.SetTable(reduced)
	state.SetArtifact(domain.ArtifactSkewness, dataprocessing.SkewReport(reduced))

	s.logger.InfoContext(ctx, "schema_reduced",
		slog.Any("dropped", s.cfg.DropColumns),
		slog.Int("columns", reduced.NumColumns()))
	return nil
}

// ValidityRepairStage replaces negative values of the repair column with the
// unconditional column mean.
type ValidityRepairStage struct {
	BaseStage
	cfg    *Config
	tracer *PipelineTracer
	logger *slog.Logger
}

func NewValidityRepairStage(cfg *Config, tracer *PipelineTracer, logger *slog.Logger) *ValidityRepairStage {
	return &ValidityRepairStage{
		BaseStage: NewBaseStage(StageIDValidityRepair, "Validity Repair"),
		cfg:       cfg,
		tracer:    tracer,
		logger:    logger,
	}
}

func (s *ValidityRepairStage) Execute(ctx context.Context, state *OperationState) error {
	column := s.cfg.RepairColumn
	repaired, report, err := dataprocessing.RepairNegativePartitioned(ctx, state.Table(), column, s.cfg.Partitions)
	if err != nil {
		return err
	}

	col, err := repaired.Column(column)
	if err != nil {
		return err
	}
	state.SetTable(repaired)
	state.SetArtifact(domain.ArtifactRepairedExperience, col)
	state.SetArtifact(domain.ArtifactRepairReport, report)

	if s.tracer != nil {
		s.tracer.RecordRepair(ctx, column, len(report.ReplacedRows))
	}
	infrastructure.AddSpanEvent(ctx, "values_replaced",
		attribute.String("column", column),
		attribute.Int("replaced", len(report.ReplacedRows)),
		attribute.Float64("mean", report.Mean))

	s.logger.InfoContext(ctx, "negative_values_repaired",
		slog.String("column", column),
		slog.Int("negative_count", report.NegativeCount),
		slog.Float64("negative_percent", report.NegativePercent),
		slog.Float64("replacement", report.Mean),
		slog.Int("partitions", s.cfg.Partitions))
	return nil
}

// CorrelationStage computes the correlation matrix of the repaired table.
type CorrelationStage struct {
	BaseStage
	logger *slog.Logger
}

func NewCorrelationStage(logger *slog.Logger) *CorrelationStage {
	return &CorrelationStage{
		BaseStage: NewBaseStage(StageIDCorrelation, "Correlation"),
		logger:    logger,
	}
}

func (s *CorrelationStage) Execute(ctx context.Context, state *OperationState) error {
	m := dataprocessing.ComputeCorrelation(state.Table())
	state.SetArtifact(domain.ArtifactCorrelation, m)

	s.logger.DebugContext(ctx, "correlation_computed", slog.Int("columns", len(m.Columns)))
	return nil
}

// DropRepairedStage removes the raw repair column once it has been captured.
type DropRepairedStage struct {
	BaseStage
	cfg    *Config
	logger *slog.Logger
}

func NewDropRepairedStage(cfg *Config, logger *slog.Logger) *DropRepairedStage {
	return &DropRepairedStage{
		BaseStage: NewBaseStage(StageIDDropRepaired, "Drop Repaired Column"),
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *DropRepairedStage) Execute(ctx context.Context, state *OperationState) error {
	out, err := dataprocessing.DropColumns(state.Table(), s.cfg.RepairColumn)
	if err != nil {
		return err
	}
	state.SetTable(out)

	s.logger.DebugContext(ctx, "repaired_column_dropped", slog.String("column", s.cfg.RepairColumn))
	return nil
}

// DerivedCategoricalStage appends the education and account-holder labels
// and reports their distributions.
type DerivedCategoricalStage struct {
	BaseStage
	logger *slog.Logger
}

func NewDerivedCategoricalStage(logger *slog.Logger) *DerivedCategoricalStage {
	return &DerivedCategoricalStage{
		BaseStage: NewBaseStage(StageIDDerivedCategorical, "Derived Categorical"),
		logger:    logger,
	}
}

func (s *DerivedCategoricalStage) Execute(ctx context.Context, state *OperationState) error {
	t, err := dataprocessing.DeriveEducation(state.Table())
	if err != nil {
		return err
	}
	if t, err = dataprocessing.DeriveAccountHolder(t); err != nil {
		return err
	}

	edu, err := t.Column(domain.ColumnEdu)
	if err != nil {
		return err
	}
	acct, err := t.Column(domain.ColumnAccountHolderCat)
	if err != nil {
		return err
	}

	incomeSplit, err := dataprocessing.SplitByFlag(t, domain.ColumnIncome, domain.ColumnPersonalLoan)
	if err != nil {
		return err
	}
	ccavgSplit, err := dataprocessing.SplitByFlag(t, domain.ColumnCCAvg, domain.ColumnPersonalLoan)
	if err != nil {
		return err
	}

	eduDist := dataprocessing.Distribution(edu)
	acctDist := dataprocessing.Distribution(acct)

	state.SetTable(t)
	state.SetArtifact(domain.ArtifactEducationDistribution, eduDist)
	state.SetArtifact(domain.ArtifactAccountHolderDistribution, acctDist)
	state.SetArtifact(domain.ArtifactIncomeByPersonalLoan, incomeSplit)
	state.SetArtifact(domain.ArtifactCCAvgByPersonalLoan, ccavgSplit)

	if eduDist.Undefined > 0 || acctDist.Undefined > 0 {
		s.logger.WarnContext(ctx, "unclassified_rows",
			slog.Int("education", eduDist.Undefined),
			slog.Int("account_holder", acctDist.Undefined))
	}
	return nil
}

// DispersionStage computes IQR dispersion of every numeric column.
type DispersionStage struct {
	BaseStage
	cfg    *Config
	logger *slog.Logger
}

func NewDispersionStage(cfg *Config, logger *slog.Logger) *DispersionStage {
	return &DispersionStage{
		BaseStage: NewBaseStage(StageIDDispersion, "Dispersion"),
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *DispersionStage) Execute(ctx context.Context, state *OperationState) error {
	summary := dataprocessing.ComputeDispersionK(state.Table(), s.cfg.OutlierK)
	state.SetArtifact(domain.ArtifactDispersion, summary)

	outliers := 0
	for _, d := range summary.Entries {
		outliers += d.OutlierCount
	}
	s.logger.InfoContext(ctx, "dispersion_computed",
		slog.Int("columns", len(summary.Entries)),
		slog.Int("outliers", outliers),
		slog.Float64("outlier_k", s.cfg.OutlierK))
	return nil
}

// SkewTransformStage appends log(x+1) and Yeo-Johnson columns.
type SkewTransformStage struct {
	BaseStage
	cfg    *Config
	logger *slog.Logger
}

func NewSkewTransformStage(cfg *Config, logger *slog.Logger) *SkewTransformStage {
	return &SkewTransformStage{
		BaseStage: NewBaseStage(StageIDSkewTransform, "Skew Transform"),
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *SkewTransformStage) Execute(ctx context.Context, state *OperationState) error {
	out, result, err := dataprocessing.TransformTable(state.Table(), s.cfg.LogColumns, s.cfg.PowerColumns, s.cfg.Power)
	if err != nil {
		return err
	}

	logged, err := out.Select(result.LogColumns...)
	if err != nil {
		return err
	}
	powered, err := out.Select(result.PowerColumns...)
	if err != nil {
		return err
	}

	state.SetTable(out)
	state.SetArtifact(domain.ArtifactLogTransformed, logged)
	state.SetArtifact(domain.ArtifactPowerTransformed, powered)
	state.SetArtifact(domain.ArtifactPowerParameters, result.Parameters)

	for _, p := range result.Parameters {
		s.logger.InfoContext(ctx, "power_transform_fitted",
			slog.String("column", p.Column),
			slog.Float64("lambda", p.Lambda),
			slog.Bool("standardize", p.Standardize))
	}
	return nil
}
