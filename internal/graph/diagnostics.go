package graph

import "fmt"

// DiagnosticKind classifies non-fatal anomalies recorded during analysis.
type DiagnosticKind string

const (
	DiagParseFailure        DiagnosticKind = "parse_failure"
	DiagDuplicateEntity     DiagnosticKind = "duplicate_entity"
	DiagUnresolvedReference DiagnosticKind = "unresolved_reference"
	DiagAmbiguousReference  DiagnosticKind = "ambiguous_reference"
	DiagCyclicInheritance   DiagnosticKind = "cyclic_inheritance"
	DiagTruncation          DiagnosticKind = "traversal_truncation"
)

// Diagnostic records one anomaly. Diagnostics degrade results instead of
// failing the analysis: a file that cannot be parsed contributes nothing,
// an ambiguous name fans out, an unresolvable name becomes External.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	FilePath string         `json:"filePath,omitempty"`
	Subject  string         `json:"subject,omitempty"` // entity ID or referenced name
	Detail   string         `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	s := string(d.Kind)
	if d.FilePath != "" {
		s += " " + d.FilePath
	}
	if d.Subject != "" {
		s += " " + d.Subject
	}
	if d.Detail != "" {
		s = fmt.Sprintf("%s: %s", s, d.Detail)
	}
	return s
}

// CountKind returns how many diagnostics of the given kind are in ds.
func CountKind(ds []Diagnostic, kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
