// Package schema declares the abstract SchemaRetriever collaborator
// and a caching decorator around it. Typechecking is the only library
// consumer that performs I/O, and it does it exclusively through this
// interface.
package schema

import (
	"context"

	"github.com/stanford-oval/thingtalk-go/ast"
)

// ClassFlags controls how much metadata get_class fetches.
type ClassFlags struct {
	InjectNaturalLanguage bool
	GetMeta               bool
}

// Retriever is the abstract Thingpedia collaborator. Implementations
// are the only I/O-capable component in the toolchain.
type Retriever interface {
	GetFunction(ctx context.Context, classKind, name, kindOf string) (*ast.FunctionDef, error)
	GetClass(ctx context.Context, classKind string, flags ClassFlags) (*ast.ClassDef, error)
	GetExamplesByKinds(ctx context.Context, kinds []string) (*ast.Dataset, error)
	InjectNaturalLanguageAnnotations(ctx context.Context, node ast.Node) (ast.Node, error)
}

// NotFoundError reports that classKind has no such schema, so that
// CachingRetriever can distinguish "no such class" from a transport
// failure and cache the former as a negative result.
type NotFoundError struct {
	ClassKind string
	Name      string
	KindOf    string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return "schema: no such class " + e.ClassKind
	}
	return "schema: no such " + e.KindOf + " " + e.ClassKind + "." + e.Name
}
