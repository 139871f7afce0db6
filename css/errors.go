package css

import "fmt"

// ParseError reports a selector that is invalid or uses features outside
// the supported subset. Position is a rune offset into the selector.
type ParseError struct {
	Position int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid CSS selector, position %d: %s", e.Position, e.Message)
}

func errParse(position int, format string, args ...any) *ParseError {
	return &ParseError{Position: position, Message: fmt.Sprintf(format, args...)}
}
