// Package matcher decides whether a listing belongs to a blocked company.
package matcher

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims surrounding whitespace and case-folds value.
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	// Casers keep state, so each call gets its own.
	return cases.Fold().String(value)
}

// Set is a normalized block list. The zero value matches nothing.
type Set map[string]struct{}

// NewSet normalizes names into a Set. Empty names are dropped.
func NewSet(names []string) Set {
	set := make(Set, len(names))
	for _, name := range names {
		key := Normalize(name)
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}

// Match reports whether company, once normalized, equals an entry of s.
// A missing company name never matches.
func (s Set) Match(company string) bool {
	key := Normalize(company)
	if key == "" || len(s) == 0 {
		return false
	}
	_, ok := s[key]
	return ok
}

// ShouldHide reports whether a listing showing company must be hidden given
// blockList. It is an exact comparison after normalization, not a substring
// search.
func ShouldHide(company string, blockList []string) bool {
	return NewSet(blockList).Match(company)
}
