package scopes

import (
	"slices"
	"strings"
)

const (
	// ScopeWildcard matches every scope, or every scope under a namespace
	// when used as a suffix ("admin.*").
	ScopeWildcard = "*"

	// ScopeDelimiter separates scope parts (e.g., "admin.read").
	ScopeDelimiter = "."
)

// ScopeMatches reports whether scope is covered by pattern.
//
//   - "read" matches "read"
//   - "*" matches anything
//   - "admin.*" matches "admin.users" and "admin.users.read", not "admin"
func ScopeMatches(scope, pattern string) bool {
	if scope == pattern || pattern == ScopeWildcard {
		return true
	}

	prefix, ok := strings.CutSuffix(pattern, ScopeDelimiter+ScopeWildcard)
	if !ok {
		return false
	}
	return strings.HasPrefix(scope, prefix+ScopeDelimiter)
}

// HasScope reports whether any granted pattern covers scope.
func HasScope(granted []string, scope string) bool {
	return slices.ContainsFunc(granted, func(pattern string) bool {
		return ScopeMatches(scope, pattern)
	})
}

// HasAllScopes reports whether every required scope is granted.
// An empty requirement is always satisfied.
func HasAllScopes(granted, required []string) bool {
	for _, scope := range required {
		if !HasScope(granted, scope) {
			return false
		}
	}
	return true
}

// HasAnyScopes reports whether at least one required scope is granted.
// An empty requirement is always satisfied.
func HasAnyScopes(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	return slices.ContainsFunc(required, func(scope string) bool {
		return HasScope(granted, scope)
	})
}

// NormalizeScopes trims, deduplicates and sorts scopes. Empty entries are
// dropped; nil is returned when nothing remains.
func NormalizeScopes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}
