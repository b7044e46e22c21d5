package score

import (
	"errors"
	"fmt"
)

// MalformedGraphError reports a structural violation of the expected
// assessment shape. It is terminal for the input that produced it;
// redelivering the same graph cannot succeed.
type MalformedGraphError struct {
	Reason string
}

// Error implements the error interface.
func (e *MalformedGraphError) Error() string {
	return "malformed assessment graph: " + e.Reason
}

// NewMalformedGraph builds a MalformedGraphError from a format string.
func NewMalformedGraph(format string, args ...any) *MalformedGraphError {
	return &MalformedGraphError{Reason: fmt.Sprintf(format, args...)}
}

// IsMalformedGraph reports whether err is a graph-shape violation.
func IsMalformedGraph(err error) bool {
	var target *MalformedGraphError
	return errors.As(err, &target)
}
