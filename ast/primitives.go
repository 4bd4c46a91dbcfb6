package ast

import "iter"

// PrimitiveKind distinguishes the two things IteratePrimitives visits.
type PrimitiveKind string

const (
	PrimitiveInvocation PrimitiveKind = "invocation"
	PrimitiveExternal   PrimitiveKind = "external"
)

// Primitive pairs a primitive_kind with the node it labels.
type Primitive struct {
	PrimitiveKind PrimitiveKind
	Node          Node
}

// IteratePrimitives visits every Invocation and External filter node
// reachable from root, in the order a left-to-right, depth-first walk
// of the AST would produce them. Used by schema resolution (pass one
// of the two-pass typechecker) and by NN-syntax entity extraction.
func IteratePrimitives(root Node) iter.Seq[Primitive] {
	return func(yield func(Primitive) bool) {
		walkPrimitives(root, yield)
	}
}

func walkPrimitives(n Node, yield func(Primitive) bool) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Invocation:
		if !yield(Primitive{PrimitiveInvocation, v}) {
			return false
		}
	case *ExternalExpr:
		if !yield(Primitive{PrimitiveExternal, v}) {
			return false
		}
	}
	for _, c := range children(n) {
		if !walkPrimitives(c, yield) {
			return false
		}
	}
	return true
}
