package xpath

import "fmt"

// ParseError reports a syntactically invalid expression. Position is a rune
// offset into the expression.
type ParseError struct {
	Position int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid XPath expression, position %d: %s", e.Position, e.Message)
}

func errParse(position int, format string, args ...any) *ParseError {
	return &ParseError{Position: position, Message: fmt.Sprintf(format, args...)}
}

// EvaluationError reports that a syntactically valid expression could not be
// evaluated against the tree it was applied to.
type EvaluationError struct {
	Message string
}

func (e *EvaluationError) Error() string {
	return "XPath evaluation failed: " + e.Message
}

func errEvaluation(format string, args ...any) *EvaluationError {
	return &EvaluationError{Message: fmt.Sprintf(format, args...)}
}
