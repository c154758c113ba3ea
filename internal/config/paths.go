package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// OutputPaths resolves where a run writes its artifacts.
type OutputPaths struct {
	OutputDir string
	RunDir    string
}

// ResolveOutputPaths places a run's artifacts under <output_dir>/<runID>.
// An empty runID writes directly into the output directory.
func (p PathsConfig) ResolveOutputPaths(runID string) (*OutputPaths, error) {
	dir, err := filepath.Abs(p.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir %s: %w", p.OutputDir, err)
	}

	runDir := dir
	if runID != "" {
		runDir = filepath.Join(dir, runID)
	}
	return &OutputPaths{OutputDir: dir, RunDir: runDir}, nil
}

// EnsureDirectories creates the run directory if it doesn't exist
func (p *OutputPaths) EnsureDirectories() error {
	if err := os.MkdirAll(p.RunDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.RunDir, err)
	}
	slog.Debug("Ensured directory exists", slog.String("directory", p.RunDir))
	return nil
}

// ArtifactPath returns the file path for an artifact with the given extension.
func (p *OutputPaths) ArtifactPath(name, ext string) string {
	return filepath.Join(p.RunDir, name+"."+ext)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
