package internal

import (
	"fmt"
	"runtime"
	"strings"
)

const (

	// Name of the daemon, used for logging groups, XDG subdirectories and the
	// CLI program name.
	Name = "inkd"

	// Placeholder reported for any build variable left unset.
	undefined = "(undefined)"

	// Reported in place of the full version string for local builds.
	localBuild = "(local)"

	// Branch whose builds omit the "+stage" suffix.
	releaseBranch = "main"
)

// Set through -ldflags "-X github.com/inkhq/inkd/internal.<name>=<value>".
var (
	version   = "" // Semantic version, with or without a "v" prefix.
	stage     = "" // Branch or release stage the binary was built from.
	gitCommit = "" // Commit hash the binary was built from.

	rawQuiet   = "false" // Default for quiet mode.
	rawDebug   = "false" // Default for debug logging.
	rawVerbose = "false" // Default for verbose logging.
)

// Returns the version without its "v" prefix, or "(undefined)".
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return undefined
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the lower-cased build stage, or "(undefined)".
func Stage() string {
	s := strings.ToLower(strings.TrimSpace(stage))
	if s == "" {
		return undefined
	}
	return s
}

// Returns the commit hash, or "(undefined)".
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return undefined
	}
	return c
}

// Reports whether any of the pipeline build variables is missing.
func IsLocal() bool {
	for _, v := range []string{version, stage, gitCommit} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Returns "<version>[+<stage>] <commit> [<os>/<arch>]", or "(local)" for
// builds that were not stamped by the pipeline.
func VersionString() string {
	if IsLocal() {
		return localBuild
	}

	suffix := ""
	if s := Stage(); s != releaseBranch {
		suffix = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s/%s]", Version(), suffix, GitCommit(), runtime.GOOS, runtime.GOARCH)
}
