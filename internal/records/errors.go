package records

import "fmt"

// ParseError reports a malformed or structurally invalid client record.
// Loading a file that produces one must be abandoned.
type ParseError struct {
	Line   int    // 1-based
	Text   string // offending line, trimmed
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	if e.Text != "" {
		msg += fmt.Sprintf(" (%q)", e.Text)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
