package consolidator

import "strings"

// SplitFullName splits a candidate's full name into given names and a
// paternal surname: the last whitespace-separated token is the surname,
// everything before it the given names. A single-token name has no surname;
// an empty name becomes "Unknown".
//
// This is a deliberate heuristic carried over from the scraped dataset and
// is not reversible in general — compound surnames ("García Márquez")
// collapse into the given names. Do not "fix" it: person identity keys
// depend on it staying stable.
func SplitFullName(full string) (given, paternal string) {
	parts := strings.Fields(full)
	if len(parts) >= 2 {
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return "Unknown", ""
}

// PersonKey is the natural key people are deduplicated by.
func PersonKey(given, paternal string) string {
	return strings.TrimSpace(given + " " + paternal)
}

// PartyShortName extracts the short name from an official party label of
// the form "UDI - Union Demócrata Independiente". Labels without the
// " - " separator get an empty short name, same as the source dataset.
func PartyShortName(official string) string {
	before, _, found := strings.Cut(official, " - ")
	if !found {
		return ""
	}
	return strings.TrimSpace(before)
}
