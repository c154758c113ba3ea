// Package exporter writes pipeline artifacts to disk.
//
// Exporter dispatches a run's artifacts to one writer per format:
//
//	csv    one file per artifact, UTF-8 BOM for spreadsheet tools
//	xlsx   one workbook with a sheet per artifact
//	json   one indented document per artifact
//	arrow  Arrow IPC files for the table-shaped artifacts only
//
// Undefined cells (NaN numbers, unlabelled categories) are written as empty
// CSV cells, empty worksheet cells, JSON null and Arrow null.
//
// Example usage:
//
//	paths, _ := cfg.Paths.ResolveOutputPaths(result.RunID)
//	exp, err := exporter.New(paths, cfg.Export.Formats, logger)
//	files, err := exp.Export(ctx, result)
//	summaryPath, err := exp.WriteSummary(result.Summary(cfg.Paths.InputFile, runErr))
package exporter
