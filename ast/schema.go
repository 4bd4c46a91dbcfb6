package ast

import "github.com/stanford-oval/thingtalk-go/types"

// Selector identifies a concrete device instance by class kind,
// optional id, optional "all" flag, plus attributes.
type Selector struct {
	Kind       string            `json:"kind" unpack:""`
	ClassKind  string            `json:"class_kind"`
	ID         string            `json:"id,omitempty"`
	All        bool              `json:"all,omitempty"`
	Attributes []*InputParam     `json:"attributes,omitempty"`
	Loc        `json:"loc"`
}

// InputParam is a `name=value` argument passed to an invocation.
type InputParam struct {
	Kind  string `json:"kind" unpack:""`
	Name  string `json:"name"`
	Value Value  `json:"value"`
	Loc   `json:"loc"`
}

// Annotation is a `#_[name=value]` or `#[name=value]` decoration
// attached to a class, function, or statement.
type Annotation struct {
	Kind          string `json:"kind" unpack:""`
	Name          string `json:"name"`
	Value         Value  `json:"value"`
	NaturalLang   bool   `json:"natural_language"` // true for #_[...] forms
	Loc           `json:"loc"`
}

// Invocation is a call to a channel (query or action) of a selector,
// with schema populated by the typechecker: every Invocation carries
// a non-null schema after a successful typecheck.
type Invocation struct {
	Kind     string        `json:"kind" unpack:""`
	Selector *Selector     `json:"selector"`
	Channel  string        `json:"channel"`
	InParams []*InputParam `json:"in_params"`
	Schema   *FunctionDef  `json:"-"`
	Loc      `json:"loc"`
}

func (*Invocation) exprPrimitiveNode() {}

// FunctionParam declares one formal parameter of a FunctionDef.
type FunctionParam struct {
	Name        string
	Type        types.Type
	IsInput     bool
	Required    bool
	Annotations map[string]string
}

// FunctionDef is the schema of one query or action channel.
type FunctionDef struct {
	Kind              string // "query" | "action"
	Class             string // owning class kind
	Name              string
	Params            []FunctionParam
	IsMonitorable     bool
	IsList            bool
	MinimalProjection []string
	Annotations       map[string]string
}

func (f *FunctionDef) Param(name string) (FunctionParam, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return FunctionParam{}, false
}

// OutputParams returns the subset of Params that are not is_input,
// i.e. the schema's output scope.
func (f *FunctionDef) OutputParams() []FunctionParam {
	var out []FunctionParam
	for _, p := range f.Params {
		if !p.IsInput {
			out = append(out, p)
		}
	}
	return out
}

// ClassDef is a named group of queries and actions against some
// third-party service (a "skill"), optionally carrying loader/config
// mixins that the core toolchain treats opaquely.
type ClassDef struct {
	Kind        string                  `json:"kind" unpack:""`
	Name        string                  `json:"name"`
	Extends     []string                `json:"extends,omitempty"`
	Queries     map[string]*FunctionDef `json:"-"`
	Actions     map[string]*FunctionDef `json:"-"`
	Entities    []string                `json:"entities,omitempty"`
	Annotations []*Annotation           `json:"annotations,omitempty"`
	Loc         `json:"loc"`
}

func (c *ClassDef) Function(kindOf, name string) (*FunctionDef, bool) {
	if kindOf == "query" {
		f, ok := c.Queries[name]
		return f, ok
	}
	f, ok := c.Actions[name]
	return f, ok
}
