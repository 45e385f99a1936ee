// Package domain defines the issue, severity, and model access primitives
// shared by the ifcqa rule engine and its reporting layers.
package domain

import "strings"

// Severity captures how serious a rule finding is.
type Severity string

// Issue severities ordered Info < Warning < Error.
const (
	// SeverityInfo marks advisory findings.
	SeverityInfo Severity = "Info"
	// SeverityWarning marks findings that should be fixed but do not block delivery.
	SeverityWarning Severity = "Warning"
	// SeverityError marks findings that block delivery.
	SeverityError Severity = "Error"
)

var severityRank = map[Severity]int{
	SeverityInfo:    1,
	SeverityWarning: 2,
	SeverityError:   3,
}

// ParseSeverity matches s case-insensitively against the known severities.
// Blank or unknown input falls back to SeverityWarning; ok reports whether s
// named a severity.
func ParseSeverity(s string) (sev Severity, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, true
	case "warning":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	default:
		return SeverityWarning, false
	}
}

// Rank orders severities; unknown values rank 0.
func (s Severity) Rank() int { return severityRank[s] }

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank() && s.Rank() > 0
}

// ValueSource identifies where the value behind an issue came from.
type ValueSource string

// Provenance kinds recorded on issue traces.
const (
	SourceAttribute    ValueSource = "Attribute"
	SourcePsetInstance ValueSource = "PsetInstance"
	SourcePsetType     ValueSource = "PsetType"
	SourceQtoInstance  ValueSource = "QtoInstance"
	SourceQtoType      ValueSource = "QtoType"
	SourceDerived      ValueSource = "Derived"
	SourceNotFound     ValueSource = "NotFound"
)

// Trace explains why an issue was raised: what was inspected, where the value
// came from, and what was expected versus found.
type Trace struct {
	Path     string      `json:"path"`
	Source   ValueSource `json:"source"`
	Expected string      `json:"expected,omitempty"`
	Actual   string      `json:"actual,omitempty"`
}

// IsZero reports whether no trace information was attached.
func (t Trace) IsZero() bool { return t == Trace{} }

// Issue is a single finding attributed to one rule and one entity.
// Issues are values; WithTrace returns a decorated copy.
type Issue struct {
	RuleID   string   `json:"ruleId"`
	Severity Severity `json:"severity"`
	IfcClass string   `json:"ifcClass"`
	GlobalID string   `json:"globalId"`
	Name     string   `json:"name,omitempty"`
	Message  string   `json:"message"`
	Trace    Trace    `json:"trace,omitzero"`
}

// NewIssue builds an issue for entity e.
func NewIssue(ruleID string, severity Severity, e Entity, message string) Issue {
	return Issue{
		RuleID:   ruleID,
		Severity: severity,
		IfcClass: e.IfcClass,
		GlobalID: e.GlobalID,
		Name:     e.Name,
		Message:  message,
	}
}

// WithTrace returns a copy of the issue carrying the supplied provenance.
func (i Issue) WithTrace(path string, source ValueSource, expected, actual string) Issue {
	i.Trace = Trace{Path: path, Source: source, Expected: expected, Actual: actual}
	return i
}

// HasTrace reports whether provenance was attached.
func (i Issue) HasTrace() bool { return !i.Trace.IsZero() }

// Result aggregates issues produced by one or more rules.
type Result struct {
	Issues []Issue
}

// Merge appends issues from another result.
func (r *Result) Merge(other Result) {
	if len(other.Issues) == 0 {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
}

// MaxSeverity returns the most severe issue level present, or "" when empty.
func (r Result) MaxSeverity() Severity {
	var top Severity
	for _, issue := range r.Issues {
		if issue.Severity.Rank() > top.Rank() {
			top = issue.Severity
		}
	}
	return top
}
