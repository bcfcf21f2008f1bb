package scopes

import (
	"slices"
	"sort"
	"strings"
)

const (
	// Separator joins multiple scopes in their string form.
	Separator = " "

	// Wildcard matches one segment's worth of characters inside a pattern.
	Wildcard = "*"

	// Delimiter separates scope segments (e.g., "admin.read").
	Delimiter = "."
)

// Parse converts a scope string into a slice of scope tokens.
//
// Splits on runs of whitespace, discarding leading and trailing whitespace.
// Returns nil for empty or blank input.
//
// Example:
//
//	scopes.Parse("  admin.read   billing ")
//	// Returns: []string{"admin.read", "billing"}
func Parse(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Join converts a slice of scopes back to a space-separated string.
//
// Scope tokens must not contain whitespace; this is a precondition of the
// external wire format, not validated here.
func Join(scopes []string) string {
	if len(scopes) == 0 {
		return ""
	}
	return strings.Join(scopes, Separator)
}

// HasAll reports whether every scope in required is satisfied by available.
//
// A required scope is satisfied when it is literally present in available,
// or when it matches at least one wildcard pattern in available. The literal
// check runs first as a set difference (duplicates preserved); only the
// remainder goes through pattern matching.
//
// Empty required is always satisfied. Non-empty required against empty
// available never is.
func HasAll(available, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(available) == 0 {
		return false
	}

	for _, scope := range difference(required, available) {
		if !matchesAny(available, scope) {
			return false
		}
	}
	return true
}

// difference returns the entries of required that are not literally present
// in available, preserving order and duplicates.
func difference(required, available []string) []string {
	present := make(map[string]struct{}, len(available))
	for _, s := range available {
		present[s] = struct{}{}
	}

	rest := make([]string, 0, len(required))
	for _, s := range required {
		if _, ok := present[s]; !ok {
			rest = append(rest, s)
		}
	}
	return rest
}

func matchesAny(patterns []string, scope string) bool {
	for _, p := range patterns {
		if Match(p, scope) {
			return true
		}
	}
	return false
}

// Equal reports whether two scope lists hold the same scopes, regardless of
// order. Duplicate counts are significant: ["a","a"] and ["a"] are unequal.
func Equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	// Sorting beats map counting for the short lists a grant carries.
	if len(a) <= 4 {
		s1 := slices.Clone(a)
		s2 := slices.Clone(b)
		sort.Strings(s1)
		sort.Strings(s2)
		return slices.Equal(s1, s2)
	}

	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		if counts[s] == 0 {
			return false
		}
		counts[s]--
	}
	return true
}

// FilterDefault returns the entries of scopes that are literal members of
// defaults, preserving the order of scopes. Wildcards are not expanded here;
// membership is plain string equality.
func FilterDefault(scopes, defaults []string) []string {
	allowed := make(map[string]struct{}, len(defaults))
	for _, s := range defaults {
		allowed[s] = struct{}{}
	}

	kept := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if _, ok := allowed[s]; ok {
			kept = append(kept, s)
		}
	}
	return kept
}

// DefaultTo returns server when scopes is empty, scopes unchanged otherwise.
func DefaultTo(scopes, server []string) []string {
	if len(scopes) == 0 {
		return server
	}
	return scopes
}
