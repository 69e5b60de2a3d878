package diag

import "strings"

// Severity defines the importance of a diagnostic. Higher is worse.
type Severity uint8

const (
	SevInfo    Severity = iota // informational, never fails a run
	SevWarning                 // stylistic, the document still compiles
	SevError                   // structural, likely breaks compilation
)

var severityNames = [...]string{
	SevInfo:    "info",
	SevWarning: "warning",
	SevError:   "error",
}

// Label returns the lower-case form used in short and JSON output.
func (s Severity) Label() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// String returns the upper-case form used in pretty output.
func (s Severity) String() string {
	return strings.ToUpper(s.Label())
}
