// Package contracts holds the types shared between the pipeline and the
// artifacts it writes.
package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// Version of the bankprep tool.
	Version = "0.3.0"

	// DataFormatVersion versions the artifact layout written by the exporters.
	// Bump it whenever a column, file name or summary field changes.
	DataFormatVersion = "v1"
)

// Stamped with -ldflags "-X .../pkg/contracts.GitCommit=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// BuildInfo identifies the binary that produced a set of artifacts. It is
// embedded in every run summary.
type BuildInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	DataFormat string `json:"data_format"`
}

// Build reports the running binary. When no commit was stamped at link
// time the VCS revision recorded by the Go toolchain is used instead.
func Build() BuildInfo {
	info := BuildInfo{
		Version:    Version,
		Commit:     GitCommit,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		DataFormat: DataFormatVersion,
	}
	if info.Commit == "unknown" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					info.Commit = s.Value
				}
			}
		}
	}
	return info
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("bankprep %s (commit %s, built %s, %s %s, artifacts %s)",
		b.Version, b.Commit, b.BuildTime, b.GoVersion, b.Platform, b.DataFormat)
}
