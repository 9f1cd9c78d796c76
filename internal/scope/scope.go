package scope

import (
	"errors"
	"strings"
)

// Scope is a capability grantable to an API key. The set is closed: keys can
// only ever carry scopes enumerated here, so permission checks are set
// membership rather than free-form string matching.
type Scope string

var ErrInvalidScope = errors.New("INVALID_SCOPE")

const (
	ScopeReadCafes  Scope = "read:cafes"
	ScopeReadStats  Scope = "read:stats"
	ScopeWritePosts Scope = "write:posts"
)

var all = []Scope{
	ScopeReadCafes,
	ScopeReadStats,
	ScopeWritePosts,
}

// All returns every grantable scope.
func All() []Scope {
	out := make([]Scope, len(all))
	copy(out, all)
	return out
}

func valid(s Scope) bool {
	for _, known := range all {
		if s == known {
			return true
		}
	}
	return false
}

// Normalize trims, lowercases and deduplicates the raw scope list.
func Normalize(raw []string) []Scope {
	seen := make(map[Scope]struct{}, len(raw))
	out := make([]Scope, 0, len(raw))
	for _, item := range raw {
		s := Scope(strings.ToLower(strings.TrimSpace(item)))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Validate rejects any scope outside the closed set.
func Validate(scopes []Scope) error {
	for _, s := range scopes {
		if !valid(s) {
			return ErrInvalidScope
		}
	}
	return nil
}

// Contains reports whether granted includes want.
func Contains(granted []string, want Scope) bool {
	for _, item := range granted {
		if Scope(item) == want {
			return true
		}
	}
	return false
}

// Strings converts a scope list for storage in a text[] column.
func Strings(scopes []Scope) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, string(s))
	}
	return out
}
