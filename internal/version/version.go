package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release of the binary.
// Set via -ldflags "-X github.com/wwolkers/librenms-inventory/internal/version.Version=v1.0.0"
var Version string

// GitCommit stores the Git commit the binary was built from.
// Set via -ldflags "-X github.com/wwolkers/librenms-inventory/internal/version.GitCommit=$(git rev-parse HEAD)"
var GitCommit string

// BuildTime stores the build timestamp in UTC.
// Set via -ldflags "-X github.com/wwolkers/librenms-inventory/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var BuildTime string

// GitState is "clean" or "dirty".
// Set via -ldflags "-X github.com/wwolkers/librenms-inventory/internal/version.GitState=dirty"
var GitState string

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	// `go build` from a checkout records the VCS state for us
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if GitCommit == "" {
				GitCommit = s.Value
			}
		case "vcs.time":
			if BuildTime == "" {
				BuildTime = s.Value
			}
		case "vcs.modified":
			if GitState == "" {
				GitState = map[string]string{"true": "dirty", "false": "clean"}[s.Value]
			}
		}
	}
}

// Tag() returns the version, or "dev" for untagged builds.
func Tag() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// Commit() returns the short commit hash, suffixed with "-dirty" when the
// tree had uncommitted changes.
func Commit() string {
	commit := GitCommit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if GitState == "dirty" {
		commit += "-dirty"
	}
	return commit
}

// VersionInfo() returns every piece of build information on one line.
func VersionInfo() string {
	return fmt.Sprintf("Version: %s, Git Commit: %s, Build Time: %s, Git State: %s, Go Version: %s",
		Tag(), GitCommit, BuildTime, GitState, runtime.Version())
}
