package version

import (
	"strings"
	"testing"
)

func TestCommit(t *testing.T) {
	commit, state := GitCommit, GitState
	defer func() { GitCommit, GitState = commit, state }()

	GitCommit = "0123456789abcdef0123"
	GitState = "clean"
	if got := Commit(); got != "0123456789ab" {
		t.Fatalf("expected short commit, got %q", got)
	}
	GitState = "dirty"
	if got := Commit(); got != "0123456789ab-dirty" {
		t.Fatalf("expected dirty suffix, got %q", got)
	}
}

func TestTag(t *testing.T) {
	v := Version
	defer func() { Version = v }()

	Version = ""
	if Tag() != "dev" {
		t.Fatalf("expected dev for an untagged build, got %q", Tag())
	}
	Version = "v1.2.0"
	if !strings.HasPrefix(VersionInfo(), "Version: v1.2.0,") {
		t.Fatalf("unexpected version info: %s", VersionInfo())
	}
}
