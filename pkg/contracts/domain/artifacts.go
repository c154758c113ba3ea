package domain

import "github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts"

// ArtifactName identifies one output of a pipeline run that the presentation
// layer can request on its own.
type ArtifactName string

const (
	ArtifactCleanedTable              ArtifactName = "cleaned_table"
	ArtifactRepairedExperience        ArtifactName = "repaired_experience"
	ArtifactRepairReport              ArtifactName = "repair_report"
	ArtifactMissingValues             ArtifactName = "missing_values"
	ArtifactSkewness                  ArtifactName = "skewness"
	ArtifactCorrelation               ArtifactName = "correlation"
	ArtifactEducationDistribution     ArtifactName = "education_distribution"
	ArtifactAccountHolderDistribution ArtifactName = "account_holder_distribution"
	ArtifactIncomeByPersonalLoan      ArtifactName = "income_by_personal_loan"
	ArtifactCCAvgByPersonalLoan       ArtifactName = "ccavg_by_personal_loan"
	ArtifactDispersion                ArtifactName = "dispersion"
	ArtifactLogTransformed            ArtifactName = "log_transformed"
	ArtifactPowerTransformed          ArtifactName = "power_transformed"
	ArtifactPowerParameters           ArtifactName = "power_parameters"
)

// AllArtifacts lists every artifact in the order a complete run produces them.
var AllArtifacts = []ArtifactName{
	ArtifactMissingValues,
	ArtifactSkewness,
	ArtifactRepairedExperience,
	ArtifactRepairReport,
	ArtifactCorrelation,
	ArtifactEducationDistribution,
	ArtifactAccountHolderDistribution,
	ArtifactIncomeByPersonalLoan,
	ArtifactCCAvgByPersonalLoan,
	ArtifactDispersion,
	ArtifactLogTransformed,
	ArtifactPowerTransformed,
	ArtifactPowerParameters,
	ArtifactCleanedTable,
}

// RunSummary describes a finished (or failed) pipeline run.
type RunSummary struct {
	RunID       string         `json:"run_id" validate:"required,uuid"`
	SourceFile  string         `json:"source_file"`
	InputRows   int            `json:"input_rows" validate:"min=0"`
	OutputRows  int            `json:"output_rows" validate:"min=0"`
	Columns     []string       `json:"columns"`
	Artifacts   []ArtifactName `json:"artifacts"`
	FailedStage string         `json:"failed_stage,omitempty"`
	Error       string         `json:"error,omitempty"`
	DurationMS  int64          `json:"duration_ms"`

	Stages []StageOutcome      `json:"stages"`
	Tool   contracts.BuildInfo `json:"tool"`
}

// StageOutcome is one pipeline stage as recorded in a RunSummary. Stages
// that never ran have status "skipped" and zero row counts.
type StageOutcome struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	DurationMS int64          `json:"duration_ms"`
	RowsIn     int            `json:"rows_in"`
	RowsOut    int            `json:"rows_out"`
	Artifacts  []ArtifactName `json:"artifacts,omitempty"`
	Message    string         `json:"message,omitempty"`
}
