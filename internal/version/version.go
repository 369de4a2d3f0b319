// Package version reports build information for ticketsynth.
// The string variables are set at build time via -ldflags, e.g.
//
//	-X github.com/civictriage/ticketsynth/internal/version.Version=v0.2.0
package version

import (
	"fmt"
	"runtime"
)

// CorpusFormat identifies the generation algorithm and wire format. It is
// bumped whenever the same seed would produce different tickets.
const CorpusFormat = 1

// Build-time variables set via ldflags
var (
	// Version is the release tag, or the branch name for untagged builds
	Version = "dev"

	// GitCommit is the short git commit SHA
	GitCommit = "unknown"

	// GitBranch is the git branch name
	GitBranch = "unknown"

	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// Info contains structured version information.
type Info struct {
	Version      string `json:"version"`
	GitCommit    string `json:"git_commit"`
	GitBranch    string `json:"git_branch"`
	BuildDate    string `json:"build_date"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	CorpusFormat int    `json:"corpus_format"`
}

// GetInfo returns the current version info.
func GetInfo() Info {
	return Info{
		Version:      Version,
		GitCommit:    GitCommit,
		GitBranch:    GitBranch,
		BuildDate:    BuildDate,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		CorpusFormat: CorpusFormat,
	}
}

// String is the short form shown by --version, e.g. "v0.2.0 (abc1234)".
func String() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}

// Short returns just the version or branch name.
func Short() string {
	return Version
}

// Full is the multi-line report printed by the version command.
func Full() string {
	i := GetInfo()
	return fmt.Sprintf("ticketsynth %s\n  commit:        %s (%s)\n  built:         %s\n  go:            %s %s\n  corpus format: %d\n",
		i.Version, i.GitCommit, i.GitBranch, i.BuildDate, i.GoVersion, i.Platform, i.CorpusFormat)
}
