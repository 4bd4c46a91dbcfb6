// Package nnsyntax implements the whitespace-tokenised NN surface
// form: encoding a typechecked, normalized AST against a sentence
// into an NN token sequence plus an entity dictionary, and decoding a
// token sequence back into an AST.
package nnsyntax

import "fmt"

// UnmatchedLiteral is returned by Encode when a literal value cannot
// be matched to a contiguous span of the sentence and grounding is
// required: encoding never invents a placeholder for text that isn't
// actually there.
type UnmatchedLiteral struct {
	Value string
}

func (e *UnmatchedLiteral) Error() string {
	return fmt.Sprintf("nnsyntax: could not match literal %s against sentence", e.Value)
}

// InvalidNNSyntax is returned by Decode for a token sequence that is
// not well-formed under the grammar.
type InvalidNNSyntax struct {
	Pos     int
	Message string
}

func (e *InvalidNNSyntax) Error() string {
	return fmt.Sprintf("nnsyntax: invalid syntax at token %d: %s", e.Pos, e.Message)
}

// UnsupportedFeature is returned for AST/token shapes the codec
// deliberately does not (yet) cover.
type UnsupportedFeature struct {
	Feature string
}

func (e *UnsupportedFeature) Error() string {
	return fmt.Sprintf("nnsyntax: unsupported feature: %s", e.Feature)
}
