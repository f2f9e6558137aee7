package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scope is a normalized, deduplicated scope string. Names are case-sensitive
// and unique; codes and tokens reference scopes through join relations.
type Scope struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// ScopeNames returns the names of the given scopes, preserving order.
func ScopeNames(scopes []Scope) []string {
	names := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		names = append(names, scope.Name)
	}
	return names
}

// ParseScope splits a space-delimited wire scope string into discrete,
// deduplicated scope names. Empty segments are dropped.
func ParseScope(scope string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, name := range strings.Fields(scope) {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// JoinScope renders scope names in wire format (space-delimited).
func JoinScope(names []string) string {
	return strings.Join(names, " ")
}

// ScopesCover reports whether every requested scope name is present in
// granted. Scope sets are unordered; comparison is case-sensitive.
func ScopesCover(granted []string, requested []string) bool {
	grantedSet := make(map[string]struct{}, len(granted))
	for _, name := range granted {
		grantedSet[name] = struct{}{}
	}
	for _, name := range requested {
		if _, ok := grantedSet[name]; !ok {
			return false
		}
	}
	return true
}
