package rules

import (
	"sort"
	"strings"
)

// Normalize canonicalizes a raw status or reason string for matching:
// trim surrounding whitespace, lower-case. Applied identically to rule
// keys and tracker statuses so lookups are case- and space-insensitive.
// Nothing else: reason detection elsewhere relies on plain substring
// matches over this form.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSet normalizes every status, drops blanks and duplicates, and
// returns the remainder in sorted order. The result is the canonical
// status set for a request.
func NormalizeSet(statuses []string) []string {
	seen := make(map[string]struct{}, len(statuses))
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		n := Normalize(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
