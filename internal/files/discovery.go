package files

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	apperrors "github.com/IshtiaqMarwat/financial-data-analysis/internal/errors"
)

const workbookExt = ".xlsx"

// Workbook is an xlsx file found on disk.
type Workbook struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery resolves input paths relative to a root directory. An empty
// root leaves relative paths relative to the working directory.
type Discovery struct {
	root string
}

func NewDiscovery(root string) *Discovery {
	return &Discovery{root: root}
}

func (d *Discovery) abs(path string) string {
	if d.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.root, path)
}

// isWorkbook accepts name.xlsx in any case but not Office lock files.
func isWorkbook(name string) bool {
	return strings.EqualFold(filepath.Ext(name), workbookExt) && !strings.HasPrefix(name, "~$")
}

// FindWorkbooks lists the workbooks directly inside dir, oldest first.
// Sub-directories are not searched.
func (d *Discovery) FindWorkbooks(dir string) ([]Workbook, error) {
	dir = d.abs(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list "+dir, err)
	}

	var found []Workbook
	for _, e := range entries {
		if e.IsDir() || !isWorkbook(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		found = append(found, Workbook{
			Path:    filepath.Join(dir, e.Name()),
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	slices.SortStableFunc(found, func(a, b Workbook) int {
		return a.ModTime.Compare(b.ModTime)
	})
	return found, nil
}

// Latest returns the most recently modified workbook. Ties go to the name
// that sorts last.
func Latest(workbooks []Workbook) (Workbook, bool) {
	if len(workbooks) == 0 {
		return Workbook{}, false
	}
	return slices.MaxFunc(workbooks, func(a, b Workbook) int {
		if c := a.ModTime.Compare(b.ModTime); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	}), true
}

// ResolveInput maps the configured input to a workbook path. A directory
// yields its newest workbook; anything else is returned as is and left to
// the input validator.
func (d *Discovery) ResolveInput(path string) (string, error) {
	path = d.abs(path)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}

	workbooks, err := d.FindWorkbooks(path)
	if err != nil {
		return "", err
	}
	latest, ok := Latest(workbooks)
	if !ok {
		return "", apperrors.NewNotFoundError("xlsx workbook in " + path)
	}
	return latest.Path, nil
}
