package model

import "fmt"

// Severity classifies a comment's weight in review output.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity validates a user-supplied severity string.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeverityInfo:
		return Severity(s), nil
	}
	return "", fmt.Errorf("invalid severity %q: must be one of error, warning, info", s)
}

// Icon returns the single-character marker used in textual listings.
func (s Severity) Icon() string {
	switch s {
	case SeverityError:
		return "✖"
	case SeverityWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

// Author identifies the provenance of a root comment or reply.
type Author string

const (
	AuthorClaude Author = "claude"
	AuthorUser   Author = "user"
)

// ParseAuthor validates a user-supplied author string.
func ParseAuthor(s string) (Author, error) {
	switch Author(s) {
	case AuthorClaude, AuthorUser:
		return Author(s), nil
	}
	return "", fmt.Errorf("invalid author %q: must be one of claude, user", s)
}
