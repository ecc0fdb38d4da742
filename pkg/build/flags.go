// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata embedded at link time: application name,
// build timestamp, commit hash and semantic version, set with
//
//	go build -ldflags "-X audiolyzer/pkg/build.buildVersion=0.1.0 ..."
//
// Values the linker did not set are taken from the module's VCS stamp when
// available and reported as "unknown" otherwise.
package build

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	DefaultName        = "audiolyzer"
	DefaultDescription = "Real-time terminal spectrum analyzer"
	unknown            = "unknown"
)

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats the flags as a one-line version banner.
func (f ldFlags) String() string {
	commit := f.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, commit, f.Time)
}

// Package-level variables for build information, populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = defaultFlags()
)

// readBuildInfo is replaceable in tests.
var readBuildInfo = debug.ReadBuildInfo

// ErrMissingFlags reports link-time values that had to be defaulted.
var ErrMissingFlags = errors.New("build flags not set")

func defaultFlags() *ldFlags {
	return &ldFlags{
		Name:        DefaultName,
		Description: DefaultDescription,
		Time:        unknown,
		Commit:      unknown,
		Version:     unknown,
	}
}

// Initialize copies the link-time values into the build flags. Missing values
// fall back to the VCS stamp and then to defaults; the returned error wraps
// ErrMissingFlags and names what stayed unknown. It is informational: the
// flags are usable either way.
func Initialize() error {
	flags := defaultFlags()
	if buildName != "" {
		flags.Name = buildName
	}

	var settings map[string]string
	moduleVersion := ""
	if info, ok := readBuildInfo(); ok && info != nil {
		settings = make(map[string]string, len(info.Settings))
		for _, s := range info.Settings {
			settings[s.Key] = s.Value
		}
		if v := info.Main.Version; v != "" && v != "(devel)" {
			moduleVersion = v
		}
	}

	var missing []string
	pick := func(dst *string, linked, fallback, name string) {
		switch {
		case linked != "":
			*dst = linked
		case fallback != "":
			*dst = fallback
		default:
			missing = append(missing, name)
		}
	}
	pick(&flags.Time, buildTime, settings["vcs.time"], "BuildTime")
	pick(&flags.Commit, buildCommit, settings["vcs.revision"], "BuildCommit")
	pick(&flags.Version, buildVersion, moduleVersion, "BuildVersion")

	buildFlags = flags
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFlags, strings.Join(missing, ", "))
	}
	return nil
}

// GetBuildFlags returns the current build information. Before Initialize it
// holds the defaults.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
