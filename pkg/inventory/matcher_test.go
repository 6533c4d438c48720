package inventory

import (
	"errors"
	"testing"

	"github.com/wwolkers/librenms-inventory/pkg/librenms"
)

func groupNames(groups []librenms.DeviceGroup) []string {
	names := []string{}
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func makeGroups(names ...string) []librenms.DeviceGroup {
	groups := []librenms.DeviceGroup{}
	for i, n := range names {
		groups = append(groups, librenms.DeviceGroup{ID: i + 1, Name: n})
	}
	return groups
}

func TestMatchPrefixCaseInsensitive(t *testing.T) {
	m, err := NewMatcher([]string{"core"})
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}
	got := groupNames(m.Match(makeGroups("core-switch-1", "CORE-2", "edge-core", "Core")))
	want := []string{"core-switch-1", "CORE-2", "Core"}
	if !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMatchRegexPattern(t *testing.T) {
	m, err := NewMatcher([]string{"(dc1|dc2)-.*-sw"})
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}
	got := groupNames(m.Match(makeGroups("dc1-row4-sw", "dc3-row1-sw", "DC2-a-SW-extra", "x-dc1-row4-sw")))
	want := []string{"dc1-row4-sw", "DC2-a-SW-extra"}
	if !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMatchAlternationIsAnchored(t *testing.T) {
	// the whole pattern is anchored, not only its first branch
	m, err := NewMatcher([]string{"a|b"})
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}
	got := groupNames(m.Match(makeGroups("alpha", "beta", "xb")))
	want := []string{"alpha", "beta"}
	if !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMatchOrderAndDuplicates(t *testing.T) {
	m, err := NewMatcher([]string{"edge", "core", "c"})
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}
	got := groupNames(m.Match(makeGroups("core-1", "edge-1", "core-2", "access-1")))
	want := []string{"edge-1", "core-1", "core-2", "core-1", "core-2"}
	if !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMatchNoPatterns(t *testing.T) {
	m, err := NewMatcher(nil)
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}
	if got := m.Match(makeGroups("core-1", "edge-1")); len(got) != 0 {
		t.Errorf("expected no groups without patterns, got %v", groupNames(got))
	}
	if m.Matches("core-1") {
		t.Errorf("expected Matches() to be false without patterns")
	}
}

func TestInvalidPattern(t *testing.T) {
	_, err := NewMatcher([]string{"core", "edge("})
	var patternErr *PatternError
	if !errors.As(err, &patternErr) {
		t.Fatalf("expected *PatternError, got %v", err)
	}
	if patternErr.Pattern != "edge(" {
		t.Errorf("expected the offending pattern, got %q", patternErr.Pattern)
	}
}
