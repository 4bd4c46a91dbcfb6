package lexer

import "fmt"

// LexicalError is fatal for the input it occurred in.
type LexicalError struct {
	Line, Col int
	Message   string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("lexical error at line %d, column %d: %s", e.Line, e.Col, e.Message)
}
