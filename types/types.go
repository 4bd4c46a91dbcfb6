// Package types implements ThingTalk's type system: type
// representation, subtyping, the well-known entity kinds, compound records,
// and the operator overload table.
package types

import "fmt"

// Type is implemented by every ThingTalk type. Types are compared by
// Equal, never by Go's == on the interface value, since compound and
// array types are structural.
type Type interface {
	fmt.Stringer
	isType()
	Equal(Type) bool
}

// Kind names the scalar primitive kinds.
type Kind int

const (
	KindBoolean Kind = iota
	KindString
	KindNumber
	KindCurrency
	KindLocation
	KindDate
	KindTime
	KindRecurrentTimeSpecification
)

func (k Kind) String() string {
	return [...]string{
		"Boolean", "String", "Number", "Currency", "Location", "Date",
		"Time", "RecurrentTimeSpecification",
	}[k]
}

// Primitive is a scalar type. String carries an optional hint tag
// (e.g. the entity subtype it was cast from) that participates in
// subtyping (String(hint) <: String) but not in equality of two
// hinted strings with different hints.
type Primitive struct {
	K    Kind
	Hint string // only meaningful when K == KindString
}

func NewPrimitive(k Kind) Primitive       { return Primitive{K: k} }
func NewHintedString(hint string) Primitive { return Primitive{K: KindString, Hint: hint} }

func (Primitive) isType() {}

func (p Primitive) String() string {
	if p.K == KindString && p.Hint != "" {
		return fmt.Sprintf("String(%s)", p.Hint)
	}
	return p.K.String()
}

func (p Primitive) Equal(o Type) bool {
	op, ok := o.(Primitive)
	return ok && op.K == p.K && op.Hint == p.Hint
}

var (
	Boolean                    = Primitive{K: KindBoolean}
	String                     = Primitive{K: KindString}
	Number                     = Primitive{K: KindNumber}
	Currency                   = Primitive{K: KindCurrency}
	Location                   = Primitive{K: KindLocation}
	Date                       = Primitive{K: KindDate}
	Time                       = Primitive{K: KindTime}
	RecurrentTimeSpecification = Primitive{K: KindRecurrentTimeSpecification}
)

// Any is the top type, used as a sentinel during inference.
type anyType struct{}

var Any Type = anyType{}

func (anyType) isType()          {}
func (anyType) String() string   { return "Any" }
func (anyType) Equal(o Type) bool {
	_, ok := o.(anyType)
	return ok
}

// TypeVar is a type variable for operator-overload polymorphism,
// printed as Tany(0), Tany(1), ...; the overload table in overload.go
// keys on kind names and does not use it.
type TypeVar struct {
	K int
}

func (TypeVar) isType() {}

func (t TypeVar) String() string { return fmt.Sprintf("Tany(%d)", t.K) }

func (t TypeVar) Equal(o Type) bool {
	ov, ok := o.(TypeVar)
	return ok && ov.K == t.K
}

// Measure is a quantity with a canonical SI-style base unit. Parsed
// literals carry a display unit (see units.go) but Measure equality
// and subtyping compare by base unit only.
type Measure struct {
	BaseUnit string
}

func (Measure) isType() {}

func (m Measure) String() string { return fmt.Sprintf("Measure(%s)", m.BaseUnit) }

func (m Measure) Equal(o Type) bool {
	om, ok := o.(Measure)
	return ok && om.BaseUnit == m.BaseUnit
}

// Enum is a closed set of identifier variants.
type Enum struct {
	Choices []string
}

func (Enum) isType() {}

func (e Enum) String() string {
	s := "Enum("
	for i, c := range e.Choices {
		if i > 0 {
			s += ","
		}
		s += c
	}
	return s + ")"
}

func (e Enum) Equal(o Type) bool {
	oe, ok := o.(Enum)
	if !ok || len(oe.Choices) != len(e.Choices) {
		return false
	}
	for i := range e.Choices {
		if e.Choices[i] != oe.Choices[i] {
			return false
		}
	}
	return true
}

// Entity is a named nominal type, namespace:name, with well-known
// built-ins and user-defined entity kinds declared inside classes.
type Entity struct {
	Kind string // "tt:username", "com.spotify:song", etc.
}

func (Entity) isType() {}

func (e Entity) String() string { return fmt.Sprintf("Entity(%s)", e.Kind) }

func (e Entity) Equal(o Type) bool {
	oe, ok := o.(Entity)
	return ok && oe.Kind == e.Kind
}

const (
	EntityUsername    = "tt:username"
	EntityHashtag     = "tt:hashtag"
	EntityURL         = "tt:url"
	EntityPhoneNumber = "tt:phone_number"
	EntityEmailAddr   = "tt:email_address"
	EntityPath        = "tt:path_name"
	EntityDevice      = "tt:device"
	EntityFunction    = "tt:function"
	EntityPicture     = "tt:picture"
)

// Array is a homogeneous list type.
type Array struct {
	Elem Type
}

func (Array) isType() {}

func (a Array) String() string { return fmt.Sprintf("Array(%s)", a.Elem) }

func (a Array) Equal(o Type) bool {
	oa, ok := o.(Array)
	return ok && a.Elem.Equal(oa.Elem)
}

// CompoundField describes one field of a Compound record type.
type CompoundField struct {
	Name        string
	Type        Type
	IsInput     bool
	Required    bool
	Annotations map[string]string
}

// Compound is an ordered mapping from field name to declaration,
// nestable. Equal is invariant (identical field sets, with equal
// types and Required flags); IsSubtype has no compound rule, and Join
// keeps the fields both sides share (see joinCompound).
type Compound struct {
	Fields []CompoundField
}

func (Compound) isType() {}

func (c Compound) String() string {
	s := "Compound("
	for i, f := range c.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name + ": " + f.Type.String()
	}
	return s + ")"
}

func (c Compound) Field(name string) (CompoundField, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return CompoundField{}, false
}

func (c Compound) Equal(o Type) bool {
	oc, ok := o.(Compound)
	if !ok || len(oc.Fields) != len(c.Fields) {
		return false
	}
	for _, f := range c.Fields {
		of, ok := oc.Field(f.Name)
		if !ok || !f.Type.Equal(of.Type) || f.Required != of.Required {
			return false
		}
	}
	return true
}

// IsList reports whether t is an Array.
func IsList(t Type) bool {
	_, ok := t.(Array)
	return ok
}
