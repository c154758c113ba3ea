package operations

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/dataprocessing"
	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/shared/testutil"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

func newPipeline(t *testing.T, cfg *Config, tracer *PipelineTracer) (*Manager, *testutil.LogCapture) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	registry, err := NewPipelineRegistry(cfg, tracer, logger)
	require.NoError(t, err)
	return NewManager(registry, tracer, logger), handler
}

func copyRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = append([]float64(nil), r...)
	}
	return out
}

func stepStatuses(r *Result) map[string]StepStatus {
	out := make(map[string]StepStatus, len(r.Steps))
	for _, s := range r.Steps {
		out[s.ID] = s.Status
	}
	return out
}

func TestManager_Run_EndToEnd(t *testing.T) {
	input := testutil.SampleBankTable(t)
	manager, logs := newPipeline(t, NewConfig(), nil)

	result, err := manager.Run(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, result.FailedStage)
	assert.Equal(t, input.NumRows(), result.InputRows)
	assert.Equal(t, domain.AllArtifacts, result.Names())

	published := 0
	for _, s := range result.Steps {
		assert.Equal(t, StepStatusCompleted, s.Status, s.ID)
		assert.Equal(t, input.NumRows(), s.RowsIn, s.ID)
		assert.Equal(t, input.NumRows(), s.RowsOut, s.ID)
		published += len(s.Artifacts)
	}
	assert.Equal(t, len(domain.AllArtifacts)-1, published, "every artifact but the cleaned table belongs to one stage")
	steps := map[string]StepSummary{}
	for _, s := range result.Steps {
		steps[s.ID] = s
	}
	assert.Equal(t, []domain.ArtifactName{domain.ArtifactRepairedExperience, domain.ArtifactRepairReport},
		steps[StageIDValidityRepair].Artifacts)
	assert.Empty(t, steps[StageIDDropRepaired].Artifacts)

	cleaned, ok := result.CleanedTable()
	require.True(t, ok)
	assert.Equal(t, input.NumRows(), cleaned.NumRows())
	for _, gone := range []string{domain.ColumnID, domain.ColumnZIPCode, domain.ColumnExperience} {
		assert.False(t, cleaned.HasColumn(gone), gone)
	}
	for _, added := range []string{domain.ColumnEdu, domain.ColumnAccountHolderCat, "Income_log", "CCAvg_log", "Income_yeojohnson"} {
		assert.True(t, cleaned.HasColumn(added), added)
	}

	report, ok := result.RepairReport()
	require.True(t, ok)
	assert.Equal(t, testutil.SampleExperienceMean, report.Mean)
	assert.Equal(t, []int{10, 11}, report.ReplacedRows)

	repaired, ok := result.RepairedExperience()
	require.True(t, ok)
	assert.Equal(t, domain.ColumnExperience, repaired.Name())
	for _, v := range repaired.Floats() {
		assert.GreaterOrEqual(t, v, 0.0)
	}

	corr, ok := result.Correlation()
	require.True(t, ok)
	assert.Contains(t, corr.Columns, domain.ColumnExperience, "correlation runs before the drop")

	disp, ok := result.Dispersion()
	require.True(t, ok)
	assert.NotContains(t, disp.Columns(), domain.ColumnExperience)
	assert.NotContains(t, disp.Columns(), "Income_log", "dispersion runs before the transforms")

	acct, ok := result.AccountHolderDistribution()
	require.True(t, ok)
	assert.Equal(t, input.NumRows(), acct.Total)
	assert.Zero(t, acct.Undefined)

	edu, ok := result.EducationDistribution()
	require.True(t, ok)
	assert.Equal(t, 4, edu.Count(domain.EducationLabelUndergrad))

	split, ok := result.IncomeByPersonalLoan()
	require.True(t, ok)
	assert.Equal(t, []float64{180, 150}, split.WithFlag)
	_, ok = result.CCAvgByPersonalLoan()
	assert.True(t, ok)

	params, ok := result.PowerParameters()
	require.True(t, ok)
	require.Len(t, params, 1)
	assert.InDelta(t, 0.066002, params[0].Lambda, 1e-4)

	logged, ok := result.LogTransformed()
	require.True(t, ok)
	assert.Equal(t, []string{"Income_log", "CCAvg_log"}, logged.ColumnNames())
	powered, ok := result.PowerTransformed()
	require.True(t, ok)
	assert.Equal(t, []string{"Income_yeojohnson"}, powered.ColumnNames())

	_, ok = result.Skewness()
	assert.True(t, ok)
	missing, ok := result.MissingValues()
	require.True(t, ok)
	assert.Zero(t, missing.Total)

	// The input table is never modified.
	assert.True(t, input.HasColumn(domain.ColumnExperience))
	exp, _ := input.Column(domain.ColumnExperience)
	assert.Equal(t, int64(-1), exp.Int(10))

	testutil.AssertNoErrors(t, logs)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "operation_complete")
	testutil.AssertLogAttr(t, logs, "stage", StageIDSkewTransform)
	testutil.AssertSingleRun(t, logs, result.RunID)
	assert.NotEmpty(t, logs.ForStage(StageIDValidityRepair))
}

func TestManager_Run_RepairOnly(t *testing.T) {
	tbl, err := table.New(table.NewFloatColumn("x", []float64{-1, 2, 3, -4, 5}))
	require.NoError(t, err)

	cfg := NewConfig()
	cfg.RepairColumn = "x"
	registry := NewRegistry()
	require.NoError(t, registry.Register(NewValidityRepairStage(cfg, nil, slog.Default())))

	result, err := NewManager(registry, nil, nil).Run(context.Background(), tbl)
	require.NoError(t, err)

	repaired, ok := result.RepairedExperience()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 1, 5}, repaired.Floats())

	report, _ := result.RepairReport()
	assert.Equal(t, 1.0, report.Mean)
}

func TestManager_Run_Partitioned(t *testing.T) {
	input := testutil.SampleBankTable(t)

	serial, err := NewManager(mustRegistry(t, NewConfig()), nil, nil).Run(context.Background(), input)
	require.NoError(t, err)

	cfg := NewConfig()
	cfg.Partitions = 4
	parallel, err := NewManager(mustRegistry(t, cfg), nil, nil).Run(context.Background(), input)
	require.NoError(t, err)

	a, _ := serial.RepairedExperience()
	b, _ := parallel.RepairedExperience()
	assert.Equal(t, a.Floats(), b.Floats())
}

func mustRegistry(t *testing.T, cfg *Config) *Registry {
	t.Helper()
	r, err := NewPipelineRegistry(cfg, nil, slog.Default())
	require.NoError(t, err)
	return r
}

func TestManager_Run_DataQualityFailure(t *testing.T) {
	rows := copyRows(testutil.SampleCustomerRows)
	for _, r := range rows {
		r[2] = -r[2] - 1 // Experience column: every value negative
	}
	manager, logs := newPipeline(t, NewConfig(), nil)

	result, err := manager.Run(context.Background(), testutil.BankTable(t, rows))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDataQuality))

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageIDValidityRepair, stageErr.StageID)
	require.NotNil(t, result)
	assert.Equal(t, StageIDValidityRepair, result.FailedStage)

	assert.True(t, result.Has(domain.ArtifactMissingValues))
	assert.True(t, result.Has(domain.ArtifactSkewness))
	assert.False(t, result.Has(domain.ArtifactRepairReport))
	assert.False(t, result.Has(domain.ArtifactCleanedTable))

	statuses := stepStatuses(result)
	assert.Equal(t, StepStatusCompleted, statuses[StageIDSchemaReduction])
	assert.Equal(t, StepStatusFailed, statuses[StageIDValidityRepair])
	assert.Equal(t, StepStatusSkipped, statuses[StageIDSkewTransform])

	testutil.AssertLogContains(t, logs, slog.LevelError, "stage_error")
}

func TestManager_Run_DomainFailureKeepsEarlierArtifacts(t *testing.T) {
	rows := copyRows(testutil.SampleCustomerRows)
	rows[3][3] = -5 // Income below -1
	manager, _ := newPipeline(t, NewConfig(), nil)

	result, err := manager.Run(context.Background(), testutil.BankTable(t, rows))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDomain))

	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageIDSkewTransform, stage)

	disp, ok := result.Dispersion()
	require.True(t, ok, "artifacts before the failure remain available")
	_, ok = disp.Get(domain.ColumnIncome)
	assert.True(t, ok)
	assert.False(t, result.Has(domain.ArtifactPowerParameters))
	assert.False(t, result.Has(domain.ArtifactCleanedTable))
}

func TestManager_Run_MissingCells(t *testing.T) {
	rows := copyRows(testutil.SampleCustomerRows)
	rows[0][6] = math.NaN() // CCAvg
	manager, _ := newPipeline(t, NewConfig(), nil)

	result, err := manager.Run(context.Background(), testutil.BankTable(t, rows))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDataQuality))
	assert.Equal(t, StageIDMissingCheck, result.FailedStage)

	missing, ok := result.MissingValues()
	require.True(t, ok)
	assert.Equal(t, 1, missing.Total)
}

func TestManager_Run_MissingColumn(t *testing.T) {
	input, err := testutil.SampleBankTable(t).DropColumns(domain.ColumnZIPCode)
	require.NoError(t, err)
	manager, _ := newPipeline(t, NewConfig(), nil)

	result, err := manager.Run(context.Background(), input)
	assert.True(t, errors.Is(err, apperrors.ErrColumnNotFound))
	assert.Equal(t, StageIDSchemaReduction, result.FailedStage)
}

func TestManager_Run_Cancellation(t *testing.T) {
	t.Run("before the first stage", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		manager, _ := newPipeline(t, NewConfig(), nil)

		result, err := manager.Run(ctx, testutil.SampleBankTable(t))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StageIDMissingCheck, result.FailedStage)
		assert.Empty(t, result.Names())
		for _, s := range result.Steps {
			assert.Equal(t, StepStatusSkipped, s.Status, s.ID)
		}
	})

	t.Run("between stages", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		registry := NewRegistry()
		require.NoError(t, registry.Register(newFuncStep("first", func(_ context.Context, state *OperationState) error {
			state.SetArtifact(domain.ArtifactSkewness, []dataprocessing.ColumnSkew{})
			cancel()
			return nil
		})))
		ran := false
		require.NoError(t, registry.Register(newFuncStep("second", func(context.Context, *OperationState) error {
			ran = true
			return nil
		})))

		result, err := NewManager(registry, nil, nil).Run(ctx, testutil.SampleBankTable(t))
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ran)
		assert.Equal(t, "second", result.FailedStage)
		assert.True(t, result.Has(domain.ArtifactSkewness))
	})
}

func TestManager_Run_NilInput(t *testing.T) {
	_, err := NewManager(NewRegistry(), nil, nil).Run(context.Background(), nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestManager_Run_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	rows := copyRows(testutil.SampleCustomerRows)
	rows[3][3] = -5
	tracer := NewTracer(tp.Tracer("test"), nil)
	manager, _ := newPipeline(t, NewConfig(), tracer)

	_, err := manager.Run(context.Background(), testutil.BankTable(t, rows))
	require.Error(t, err)

	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range recorder.Ended() {
		byName[s.Name()] = s
	}
	require.Contains(t, byName, "pipeline.run")
	require.Contains(t, byName, "pipeline.stage."+StageIDDispersion)
	require.Contains(t, byName, "pipeline.stage."+StageIDSkewTransform)

	root := byName["pipeline.run"]
	stage := byName["pipeline.stage."+StageIDDispersion]
	assert.Equal(t, root.SpanContext().SpanID(), stage.Parent().SpanID(), "stage spans are children of the run")
	assert.Equal(t, codes.Ok, stage.Status().Code)
	assert.Equal(t, codes.Error, byName["pipeline.stage."+StageIDSkewTransform].Status().Code)
	assert.Equal(t, codes.Error, root.Status().Code)

	repair := byName["pipeline.stage."+StageIDValidityRepair]
	require.NotEmpty(t, repair.Events())
	assert.Equal(t, "values_replaced", repair.Events()[0].Name)
}

func TestResult_Summary(t *testing.T) {
	result, err := NewManager(mustRegistry(t, NewConfig()), nil, nil).Run(context.Background(), testutil.SampleBankTable(t))
	require.NoError(t, err)

	s := result.Summary("bank.xlsx", nil)
	assert.Equal(t, result.RunID, s.RunID)
	assert.Len(t, s.RunID, 36)
	assert.Equal(t, "bank.xlsx", s.SourceFile)
	assert.Equal(t, 12, s.InputRows)
	assert.Equal(t, 12, s.OutputRows)
	assert.Contains(t, s.Columns, domain.ColumnEdu)
	assert.Empty(t, s.Error)

	failed := result.Summary("bank.xlsx", assert.AnError)
	assert.Equal(t, assert.AnError.Error(), failed.Error)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, NewConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no repair column", func(c *Config) { c.RepairColumn = "" }},
		{"zero partitions", func(c *Config) { c.Partitions = 0 }},
		{"zero outlier k", func(c *Config) { c.OutlierK = 0 }},
		{"empty lambda bracket", func(c *Config) { c.Power.LambdaMax = c.Power.LambdaMin }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.True(t, errors.Is(cfg.Validate(), apperrors.ErrValidation))
		})
	}
}
