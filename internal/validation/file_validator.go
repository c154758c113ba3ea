package validation

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
)

// xlsx workbooks are zip archives.
var zipSignature = []byte("PK\x03\x04")

// FileValidator checks the workbook a run reads and the directory it writes
// before any parsing starts, so bad paths fail fast with a typed error.
type FileValidator struct {
	logger *slog.Logger
}

func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateFile checks that path is an existing, readable, non-empty file.
func (v *FileValidator) ValidateFile(path string) error {
	_, err := v.stat(path)
	return err
}

func (v *FileValidator) stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		v.reject(path, "missing")
		return nil, apperrors.NewNotFoundError(path)
	case err != nil:
		v.reject(path, "stat failed", apperrors.Attr(err))
		return nil, apperrors.NewStorageError("failed to stat "+path, err)
	case info.IsDir():
		v.reject(path, "directory")
		return nil, apperrors.NewAppValidationError(path + " is a directory, not a file")
	case info.Size() == 0:
		v.reject(path, "empty")
		return nil, apperrors.NewAppValidationError("file " + path + " is empty")
	}
	return info, nil
}

// ValidateInputFile accepts an xlsx workbook: the extension must be .xlsx,
// Office lock files (~$name.xlsx) are refused and the content must start
// with the zip signature. Legacy .xls files fail here rather than in the
// parser.
func (v *FileValidator) ValidateInputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewAppValidationError("input file is required")
	}
	info, err := v.stat(path)
	if err != nil {
		return err
	}

	if ext := filepath.Ext(path); !strings.EqualFold(ext, ".xlsx") {
		v.reject(path, "extension", slog.String("extension", ext))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not an xlsx workbook (extension %q)", path, ext))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.reject(path, "lock file")
		return apperrors.NewAppValidationError("file " + path + " is a temporary Excel lock file")
	}

	head, err := readHead(path, len(zipSignature))
	if err != nil {
		v.reject(path, "unreadable", apperrors.Attr(err))
		return apperrors.NewStorageError("file "+path+" is not readable", err)
	}
	if !bytes.Equal(head, zipSignature) {
		v.reject(path, "signature")
		return apperrors.NewAppValidationError("file " + path + " is not an xlsx workbook (no zip signature)")
	}

	v.logger.Info("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory creates dir when needed and proves it writable by
// creating and removing a probe file.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return apperrors.NewAppValidationError("output directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.reject(dir, "mkdir failed", apperrors.Attr(err))
		return apperrors.NewStorageError("failed to create output directory "+dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.reject(dir, "not writable", apperrors.Attr(err))
		return apperrors.NewStorageError("output directory "+dir+" is not writable", err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Info("Output directory validated", slog.String("directory", dir))
	return nil
}

func (v *FileValidator) reject(path, reason string, attrs ...any) {
	v.logger.Warn("Path rejected",
		append([]any{slog.String("path", path), slog.String("reason", reason)}, attrs...)...)
}

// readHead returns up to n leading bytes of path.
func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:read], nil
}
