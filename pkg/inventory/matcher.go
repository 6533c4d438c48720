package inventory

import (
	"fmt"
	"regexp"

	"github.com/wwolkers/librenms-inventory/pkg/librenms"
)

// PatternError is returned for a group name pattern that is not a valid
// regular expression.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid group name pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Matcher selects device groups by name. Patterns are case-insensitive
// regular expressions anchored at the start of the name only, so "core"
// selects "core-switch-1".
type Matcher struct {
	patterns []*regexp.Regexp
}

func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)^(?:" + p + ")")
		if err != nil {
			return nil, &PatternError{Pattern: p, Err: err}
		}
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

// Match() returns the groups whose name matches any pattern, ordered by
// pattern and then by their position in groups. A group matching several
// patterns is returned once per pattern.
func (m *Matcher) Match(groups []librenms.DeviceGroup) []librenms.DeviceGroup {
	var matched []librenms.DeviceGroup
	for _, re := range m.patterns {
		for _, g := range groups {
			if re.MatchString(g.Name) {
				matched = append(matched, g)
			}
		}
	}
	return matched
}

// Matches() reports whether name is selected by at least one pattern.
func (m *Matcher) Matches(name string) bool {
	for _, re := range m.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
