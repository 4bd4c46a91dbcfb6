// Package typecheck resolves schemas, binds join scopes, and checks
// filters/projections/aggregations/permissions over a parsed AST
// against an abstract schema.Retriever.
package typecheck

import "github.com/stanford-oval/thingtalk-go/types"

// Scope is a linked, persistent lookup environment: extending a scope
// never mutates the parent, so independent traversal branches (the
// two sides of a join, or two arms of an aggregation) can each extend
// the same parent without interfering; a join's right operand sees a
// scope extending its left operand's.
type Scope struct {
	parent  *Scope
	symbols map[string]types.Type
}

// NewScope returns an empty root scope.
func NewScope() *Scope { return &Scope{} }

// Extend returns a child scope binding name to typ, shadowing any
// same-named binding in an ancestor.
func (s *Scope) Extend(name string, typ types.Type) *Scope {
	return &Scope{parent: s, symbols: map[string]types.Type{name: typ}}
}

// ExtendAll binds every entry of bindings in one new child scope.
func (s *Scope) ExtendAll(bindings map[string]types.Type) *Scope {
	if len(bindings) == 0 {
		return s
	}
	cp := make(map[string]types.Type, len(bindings))
	for k, v := range bindings {
		cp[k] = v
	}
	return &Scope{parent: s, symbols: cp}
}

// Lookup walks from s outward to the root, returning the nearest
// binding of name, in time linear in the depth of the chain.
func (s *Scope) Lookup(name string) (types.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.symbols == nil {
			continue
		}
		if t, ok := cur.symbols[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Names returns every name bound anywhere in the scope chain,
// nearest binding winning on collision.
func (s *Scope) Names() map[string]types.Type {
	out := map[string]types.Type{}
	chain := []*Scope{}
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].symbols {
			out[k] = v
		}
	}
	return out
}
