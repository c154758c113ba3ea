// Package operations runs the bank customer cleaning pipeline.
//
// A pipeline is an ordered Registry of Step values executed by a Manager:
//
//	missing_check → schema_reduction → validity_repair → correlation
//	  → drop_repaired → derived_categorical → dispersion → skew_transform
//
// Each step reads the current table from the OperationState, publishes a new
// table and its named artifacts, and never mutates the table it was given.
// The Manager checks the context between steps, wraps a failure in a
// StageError and returns a Result holding every artifact completed before
// the failure. Every step runs in its own OpenTelemetry span, and stage
// durations, failures and repaired values are recorded as metrics through
// PipelineTracer.
//
// Usage:
//
//	registry, err := operations.NewPipelineRegistry(operations.NewConfig(), tracer, logger)
//	manager := operations.NewManager(registry, tracer, logger)
//	result, err := manager.Run(ctx, tbl)
//	report, ok := result.RepairReport()
package operations
