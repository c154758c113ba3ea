package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/config"
	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/infrastructure"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/operations"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// Supported output formats.
const (
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
	FormatJSON  = "json"
	FormatArrow = "arrow"
)

const (
	// WorkbookName is the file stem of the xlsx export.
	WorkbookName = "artifacts"
	// SummaryName is the file stem of the run summary.
	SummaryName = "run_summary"
)

var summaryValidator = validator.New()

// Exporter writes the artifacts of a run into its run directory.
type Exporter struct {
	paths   *config.OutputPaths
	formats []string
	dialect CSVDialect
	csv     *CSVWriter
	logger  *slog.Logger
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithCSVDialect sets the delimiter and byte order mark of CSV artifacts.
func WithCSVDialect(d CSVDialect) Option {
	return func(e *Exporter) { e.dialect = d }
}

// New returns an exporter for the given formats. Duplicates are ignored;
// an unknown format is a validation error.
func New(paths *config.OutputPaths, formats []string, logger *slog.Logger, opts ...Option) (*Exporter, error) {
	if paths == nil {
		return nil, apperrors.NewAppValidationError("output paths are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]bool, len(formats))
	unique := make([]string, 0, len(formats))
	for _, f := range formats {
		switch f {
		case FormatCSV, FormatXLSX, FormatJSON, FormatArrow:
		default:
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q", f))
		}
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}

	e := &Exporter{
		paths:   paths,
		formats: unique,
		dialect: DefaultCSVDialect,
		logger:  infrastructure.WithComponent(logger, "exporter"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.csv = NewCSVWriter(paths.RunDir, e.dialect, e.logger)
	return e, nil
}

// Formats returns the configured formats in order.
func (e *Exporter) Formats() []string {
	out := make([]string, len(e.formats))
	copy(out, e.formats)
	return out
}

// Export writes every artifact of result in each configured format and
// returns the files written, grouped by format in configuration order.
// Formats are written concurrently; each writes distinct files.
func (e *Exporter) Export(ctx context.Context, result *operations.Result) ([]string, error) {
	if result == nil {
		return nil, apperrors.NewAppValidationError("result is required")
	}
	if err := e.paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("failed to prepare run directory", err)
	}

	start := time.Now()
	written := make([][]string, len(e.formats))

	g, ctx := errgroup.WithContext(ctx)
	for i, format := range e.formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files, err := e.exportFormat(format, result)
			if err != nil {
				return apperrors.NewStorageError(fmt.Sprintf("failed to export %s", format), err)
			}
			written[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.ErrorContext(ctx, "Export failed", slog.String("error", err.Error()))
		return nil, err
	}

	var files []string
	for _, w := range written {
		files = append(files, w...)
	}
	e.logger.Info("Artifacts exported",
		slog.String("run_dir", e.paths.RunDir),
		slog.Any("formats", e.formats),
		slog.Int("files", len(files)),
		slog.Duration("duration", time.Since(start)))
	return files, nil
}

func (e *Exporter) exportFormat(format string, result *operations.Result) ([]string, error) {
	switch format {
	case FormatCSV:
		return e.exportCSV(result)
	case FormatXLSX:
		return e.exportXLSX(result)
	case FormatJSON:
		return e.exportJSON(result)
	case FormatArrow:
		return e.exportArrow(result)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func (e *Exporter) exportCSV(result *operations.Result) ([]string, error) {
	var files []string
	for _, name := range result.Names() {
		value, _ := result.Get(name)
		path := e.paths.ArtifactPath(string(name), FormatCSV)

		t, ok, err := artifactTable(value)
		if err != nil {
			return files, err
		}
		if ok {
			err = e.csv.WriteTable(path, t)
		} else {
			var headers []string
			var records [][]string
			headers, records, err = artifactRows(value)
			if err == nil {
				err = e.csv.WriteRecords(path, headers, records)
			}
		}
		if err != nil {
			return files, fmt.Errorf("%s: %w", name, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func (e *Exporter) exportXLSX(result *operations.Result) ([]string, error) {
	names := result.Names()
	if len(names) == 0 {
		return nil, nil
	}

	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		value, _ := result.Get(name)
		sheet := Sheet{Name: string(name)}

		t, ok, err := artifactTable(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if ok {
			sheet.Headers = t.ColumnNames()
			cols := t.Columns()
			sheet.Rows = make([][]any, t.NumRows())
			for r := range sheet.Rows {
				row := make([]any, len(cols))
				for c, col := range cols {
					row[c] = cellValue(col, r)
				}
				sheet.Rows[r] = row
			}
		} else {
			headers, records, err := artifactRows(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			sheet.Headers = headers
			sheet.Rows = textRows(records)
		}
		sheets = append(sheets, sheet)
	}

	path := e.paths.ArtifactPath(WorkbookName, FormatXLSX)
	if err := WriteWorkbook(path, sheets); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (e *Exporter) exportJSON(result *operations.Result) ([]string, error) {
	var files []string
	for _, name := range result.Names() {
		value, _ := result.Get(name)
		path := e.paths.ArtifactPath(string(name), FormatJSON)
		if err := WriteJSON(path, value); err != nil {
			return files, fmt.Errorf("%s: %w", name, err)
		}
		files = append(files, path)
	}
	return files, nil
}

// exportArrow writes only table-shaped artifacts; reports have no columnar
// form.
func (e *Exporter) exportArrow(result *operations.Result) ([]string, error) {
	var files []string
	for _, name := range result.Names() {
		value, _ := result.Get(name)
		t, ok, err := artifactTable(value)
		if err != nil {
			return files, fmt.Errorf("%s: %w", name, err)
		}
		if !ok {
			continue
		}
		path := e.paths.ArtifactPath(string(name), FormatArrow)
		if err := WriteArrowFile(path, t); err != nil {
			return files, fmt.Errorf("%s: %w", name, err)
		}
		files = append(files, path)
	}
	return files, nil
}

// WriteSummary writes the run summary as JSON regardless of the configured
// formats and returns its path.
func (e *Exporter) WriteSummary(summary domain.RunSummary) (string, error) {
	if err := summaryValidator.Struct(summary); err != nil {
		return "", apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid run summary", err)
	}
	if err := e.paths.EnsureDirectories(); err != nil {
		return "", apperrors.NewStorageError("failed to prepare run directory", err)
	}

	path := e.paths.ArtifactPath(SummaryName, FormatJSON)
	if err := WriteJSON(path, summary); err != nil {
		return "", apperrors.NewStorageError("failed to write run summary", err)
	}
	e.logger.Info("Run summary written", slog.String("path", path))
	return path, nil
}
