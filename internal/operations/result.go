package operations

import (
	"time"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/dataprocessing"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// StepSummary is the outcome of one step in a finished run.
type StepSummary struct {
	ID        string
	Name      string
	Status    StepStatus
	Duration  time.Duration
	Message   string
	RowsIn    int
	RowsOut   int
	Artifacts []domain.ArtifactName
}

// Result holds the artifacts of a run. A failed run returns the artifacts
// completed before the failing stage; each can be retrieved on its own.
type Result struct {
	RunID       string
	InputRows   int
	Steps       []StepSummary
	FailedStage string
	Duration    time.Duration

	artifacts map[domain.ArtifactName]any
	order     []domain.ArtifactName
}

// Names lists the available artifacts in the order they were produced.
func (r *Result) Names() []domain.ArtifactName {
	out := make([]domain.ArtifactName, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns an artifact by name.
func (r *Result) Get(name domain.ArtifactName) (any, bool) {
	v, ok := r.artifacts[name]
	return v, ok
}

// Has reports whether the run produced the artifact.
func (r *Result) Has(name domain.ArtifactName) bool {
	_, ok := r.artifacts[name]
	return ok
}

func artifactAs[T any](r *Result, name domain.ArtifactName) (T, bool) {
	var zero T
	v, ok := r.artifacts[name]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// CleanedTable is the final table: reduced, repaired, enriched with derived
// and transformed columns, without the raw repaired column.
func (r *Result) CleanedTable() (*table.Table, bool) {
	return artifactAs[*table.Table](r, domain.ArtifactCleanedTable)
}

// RepairedExperience is the repaired column captured before it is dropped.
func (r *Result) RepairedExperience() (*table.Column, bool) {
	return artifactAs[*table.Column](r, domain.ArtifactRepairedExperience)
}

func (r *Result) RepairReport() (dataprocessing.RepairReport, bool) {
	return artifactAs[dataprocessing.RepairReport](r, domain.ArtifactRepairReport)
}

func (r *Result) MissingValues() (dataprocessing.MissingValues, bool) {
	return artifactAs[dataprocessing.MissingValues](r, domain.ArtifactMissingValues)
}

func (r *Result) Skewness() ([]dataprocessing.ColumnSkew, bool) {
	return artifactAs[[]dataprocessing.ColumnSkew](r, domain.ArtifactSkewness)
}

func (r *Result) Correlation() (dataprocessing.CorrelationMatrix, bool) {
	return artifactAs[dataprocessing.CorrelationMatrix](r, domain.ArtifactCorrelation)
}

func (r *Result) EducationDistribution() (dataprocessing.LabelDistribution, bool) {
	return artifactAs[dataprocessing.LabelDistribution](r, domain.ArtifactEducationDistribution)
}

func (r *Result) AccountHolderDistribution() (dataprocessing.LabelDistribution, bool) {
	return artifactAs[dataprocessing.LabelDistribution](r, domain.ArtifactAccountHolderDistribution)
}

func (r *Result) IncomeByPersonalLoan() (dataprocessing.FlagSplit, bool) {
	return artifactAs[dataprocessing.FlagSplit](r, domain.ArtifactIncomeByPersonalLoan)
}

func (r *Result) CCAvgByPersonalLoan() (dataprocessing.FlagSplit, bool) {
	return artifactAs[dataprocessing.FlagSplit](r, domain.ArtifactCCAvgByPersonalLoan)
}

func (r *Result) Dispersion() (dataprocessing.DispersionSummary, bool) {
	return artifactAs[dataprocessing.DispersionSummary](r, domain.ArtifactDispersion)
}

// LogTransformed holds only the <column>_log columns.
func (r *Result) LogTransformed() (*table.Table, bool) {
	return artifactAs[*table.Table](r, domain.ArtifactLogTransformed)
}

// PowerTransformed holds only the <column>_yeojohnson columns.
func (r *Result) PowerTransformed() (*table.Table, bool) {
	return artifactAs[*table.Table](r, domain.ArtifactPowerTransformed)
}

// PowerParameters are the fitted Yeo-Johnson transforms, reusable on new data.
func (r *Result) PowerParameters() ([]dataprocessing.PowerTransform, bool) {
	return artifactAs[[]dataprocessing.PowerTransform](r, domain.ArtifactPowerParameters)
}

// Summary describes the run for the run summary artifact.
func (r *Result) Summary(sourceFile string, runErr error) domain.RunSummary {
	s := domain.RunSummary{
		RunID:       r.RunID,
		SourceFile:  sourceFile,
		InputRows:   r.InputRows,
		Artifacts:   r.Names(),
		FailedStage: r.FailedStage,
		DurationMS:  r.Duration.Milliseconds(),
		Tool:        contracts.Build(),
	}
	for _, st := range r.Steps {
		s.Stages = append(s.Stages, domain.StageOutcome{
			ID:         st.ID,
			Status:     string(st.Status),
			DurationMS: st.Duration.Milliseconds(),
			RowsIn:     st.RowsIn,
			RowsOut:    st.RowsOut,
			Artifacts:  st.Artifacts,
			Message:    st.Message,
		})
	}
	if cleaned, ok := r.CleanedTable(); ok {
		s.OutputRows = cleaned.NumRows()
		s.Columns = cleaned.ColumnNames()
	}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	return s
}
