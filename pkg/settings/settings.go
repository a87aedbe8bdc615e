// Package settings holds build metadata and the per-run options shared by
// the examslot command and its packages.
package settings

import "time"

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "examslot"

// VersionInformation is set at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo describes the running binary.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// SourceSettings says where the schedule comes from and how to read it.
type SourceSettings struct {
	Location  string
	Delimiter rune
	Timeout   time.Duration
}

// Run holds the resolved options for one invocation, after config file,
// environment and flags have been merged.
type Run struct {
	Source      SourceSettings
	Query       string
	Output      string
	Interactive bool
	Snapshot    bool
	NoColor     bool
	Theme       string
	CellWidth   int
	Width       int
	Height      int
}

// NewCliParams returns the defaults used before flags are applied.
func NewCliParams() *Run {
	return &Run{
		Source: SourceSettings{
			Delimiter: ',',
			Timeout:   15 * time.Second,
		},
		Output:    "table",
		Theme:     "dark",
		CellWidth: 6,
	}
}
