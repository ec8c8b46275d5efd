package version

import (
	"fmt"
	"runtime"
)

// Version information - set by goreleaser ldflags
var (
	Version     = "dev"
	Commit      = "none"
	Date        = "unknown"
	BuildSource = "source"
)

// BuildInfo is the JSON form of the version information.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Source    string `json:"source"`
	GoVersion string `json:"go_version"`
}

// Get returns the version information of the running binary.
func Get() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		Source:    BuildSource,
		GoVersion: runtime.Version(),
	}
}

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("sctk %s\n  commit: %s\n  built:  %s\n  source: %s\n  go:     %s",
		Version, Commit, Date, BuildSource, runtime.Version())
}

// Short returns just the version string
func Short() string {
	return Version
}
