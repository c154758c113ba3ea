// Package shared is the parent of helpers used by more than one package.
//
// Its testutil sub-package holds the sample customer workbook rows and a
// capturing slog handler for tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	result, err := manager.Run(ctx, testutil.SampleBankTable(t))
//	testutil.AssertSingleRun(t, logs, result.RunID)
//
// Nothing here may be imported by production code.
package shared
