package parser

import "fmt"

// SyntaxError reports a malformed token sequence; parsing stops at
// the first one rather than accumulating further errors. Position is
// a byte offset into the source
// the caller can resolve back to line/column the same way the lexer
// does, since parser and lexer share one source string.
type SyntaxError struct {
	Pos      int
	Expected string
	Got      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: expected %s, got %s", e.Pos, e.Expected, e.Got)
}
