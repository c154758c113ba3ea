package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
)

// Spreadsheet tools use the byte order mark to detect UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVDialect controls the shape of written CSV files.
type CSVDialect struct {
	Comma rune
	BOM   bool
}

// DefaultCSVDialect is comma separated with a byte order mark.
var DefaultCSVDialect = CSVDialect{Comma: ',', BOM: true}

// CSVWriter writes artifact CSV files. Relative paths are placed under dir.
type CSVWriter struct {
	dir     string
	dialect CSVDialect
	logger  *slog.Logger
}

func NewCSVWriter(dir string, dialect CSVDialect, logger *slog.Logger) *CSVWriter {
	if dialect.Comma == 0 {
		dialect.Comma = ','
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, dialect: dialect, logger: logger}
}

// csvFile is an open CSV file being written record by record.
type csvFile struct {
	f *os.File
	w *csv.Writer
}

func (c *csvFile) write(record []string) error { return c.w.Write(record) }

func (c *csvFile) close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

// open creates (or, with appendTo, extends) path. A header and the byte
// order mark are only written to new files.
func (w *CSVWriter) open(path string, header []string, appendTo bool) (*csvFile, error) {
	full := w.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", full, err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendTo {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(full, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", full, err)
	}

	out := &csvFile{f: f, w: csv.NewWriter(f)}
	out.w.Comma = w.dialect.Comma
	if appendTo {
		return out, nil
	}
	if w.dialect.BOM {
		if _, err := f.Write(utf8BOM); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write BOM to %s: %w", full, err)
		}
	}
	if len(header) > 0 {
		if err := out.write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header to %s: %w", full, err)
		}
	}
	return out, nil
}

// WriteRecords writes header followed by records, replacing path.
func (w *CSVWriter) WriteRecords(path string, header []string, records [][]string) error {
	out, err := w.open(path, header, false)
	if err != nil {
		return err
	}
	for i, rec := range records {
		if err := out.write(rec); err != nil {
			out.f.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	w.logger.Debug("CSV written", slog.String("file", w.resolvePath(path)), slog.Int("records", len(records)))
	return out.close()
}

// AppendRecords adds records to the end of path without a header.
func (w *CSVWriter) AppendRecords(path string, records [][]string) error {
	out, err := w.open(path, nil, true)
	if err != nil {
		return err
	}
	for i, rec := range records {
		if err := out.write(rec); err != nil {
			out.f.Close()
			return fmt.Errorf("failed to append record %d: %w", i, err)
		}
	}
	return out.close()
}

// WriteTable streams t one row at a time. Undefined cells are left empty.
func (w *CSVWriter) WriteTable(path string, t *table.Table) error {
	out, err := w.open(path, t.ColumnNames(), false)
	if err != nil {
		return err
	}

	cols := t.Columns()
	row := make([]string, len(cols))
	for r := 0; r < t.NumRows(); r++ {
		for c, col := range cols {
			row[c] = cellString(col, r)
		}
		if err := out.write(row); err != nil {
			out.f.Close()
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}
	w.logger.Debug("CSV table written",
		slog.String("file", w.resolvePath(path)),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", len(cols)))
	return out.close()
}

func (w *CSVWriter) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.dir, path)
}
