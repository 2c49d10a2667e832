package diag

import "strings"

// Severity orders diagnostics by importance; higher is worse.
type Severity uint8

const (
	SevInfo Severity = iota // hidden/informational
	SevWarning
	SevError
)

var severityNames = [...]string{SevInfo: "INFO", SevWarning: "WARNING", SevError: "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// Label is the lower-case form used by line-oriented output; unknown
// severities read as "info".
func (s Severity) Label() string {
	if s > SevError {
		return "info"
	}
	return strings.ToLower(s.String())
}
