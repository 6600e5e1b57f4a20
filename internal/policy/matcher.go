package policy

import "slices"

// MatchesVersion reports whether installed is listed in versions.
// The policy enumerates exact version strings, so no ordering is applied.
func MatchesVersion(versions []string, installed string) bool {
	if len(versions) == 0 {
		return false
	}
	return slices.Contains(versions, installed)
}
