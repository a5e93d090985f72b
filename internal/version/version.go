// Package version exposes build metadata injected at link time.
package version

import "fmt"

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Info returns a human-readable version line.
func Info() string {
	return fmt.Sprintf("leasesync %s (commit %s, built %s)", Version, Commit, BuildDate)
}

// Map returns version metadata for JSON responses.
func Map() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
	}
}
