package tree

import "fmt"

// InvalidOperationError reports an operation that would violate the tree's
// structural invariants. The tree is left unmodified when one is returned.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return "invalid operation: " + e.Message
}

// ErrInvalidOperation creates an InvalidOperationError.
func ErrInvalidOperation(format string, args ...any) *InvalidOperationError {
	return &InvalidOperationError{Message: fmt.Sprintf(format, args...)}
}

// ParsingError reports a malformed construction-event sequence or input
// document. A build that fails this way never exposes partial structure.
type ParsingError struct {
	Message string
}

func (e *ParsingError) Error() string {
	return "parsing error: " + e.Message
}

// ErrParsing creates a ParsingError.
func ErrParsing(format string, args ...any) *ParsingError {
	return &ParsingError{Message: fmt.Sprintf(format, args...)}
}
