// SPDX-License-Identifier: MIT
//
// Package build manages build metadata embedded into the binary at compile
// time via linker flags: application name, build timestamp, Git commit and
// semantic version.
package build

import "fmt"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables populated by -ldflags during compilation,
// for example:
//
//	go build -ldflags "-X eq/pkg/build.buildName=eq -X eq/pkg/build.buildVersion=0.1.0"
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "eq",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize copies build information from the ldflags variables into the
// buildFlags struct. Call early in program startup. Empty flags keep their
// development defaults rather than failing, so a plain `go build` still runs.
func Initialize() error {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
	if buildFlags.Name == "" {
		return fmt.Errorf("build name is required")
	}
	return nil
}

// GetBuildFlags returns the current build information. Initialize should be
// called first; afterwards this is safe to call from anywhere.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
