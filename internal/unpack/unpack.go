// Package unpack implements polymorphic JSON decoding for tagged-union
// node trees. A caller registers every concrete struct type that can
// appear in an interface-typed field; the struct must carry exactly
// one field tagged `unpack:""` holding a discriminator string (the
// AST's "kind" field). Unmarshal reads that field first and then
// decodes the rest of the object into a freshly allocated value of
// the matching registered type.
package unpack

import (
	"encoding/json"
	"fmt"
	"reflect"
)

type Registry struct {
	byKind map[string]reflect.Type
	tag    map[reflect.Type]string
}

// New builds a Registry from zero-value samples of every concrete type
// that Unmarshal should be able to produce. The discriminator value
// for each type is read from its own `unpack:""`-tagged field name by
// convention: the field's JSON tag name is "kind" and its value is
// the type's Go name, e.g. type BinaryExpr's Kind field holds
// "BinaryExpr". Callers that need a different mapping should use
// NewWithKinds.
func New(samples ...any) *Registry {
	r := &Registry{byKind: make(map[string]reflect.Type), tag: make(map[reflect.Type]string)}
	for _, s := range samples {
		t := reflect.TypeOf(s)
		kind := t.Name()
		r.byKind[kind] = t
	}
	return r
}

// NewWithKinds builds a Registry from an explicit kind -> sample map,
// for callers whose discriminator string does not match the Go type
// name; every registry in ast/unpack.go is built this way.
func NewWithKinds(m map[string]any) *Registry {
	r := &Registry{byKind: make(map[string]reflect.Type), tag: make(map[reflect.Type]string)}
	for kind, s := range m {
		r.byKind[kind] = reflect.TypeOf(s)
	}
	return r
}

type discriminator struct {
	Kind string `json:"kind"`
}

// Unmarshal decodes buf, which may be a single tagged object or a JSON
// array of tagged objects, into out. out must be a pointer to an
// interface type, a pointer to a slice of an interface type, or a
// pointer to a slice of any (in which case each element is decoded
// individually and boxed).
func (r *Registry) Unmarshal(buf []byte, out any) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("unpack: Unmarshal target must be a pointer")
	}
	elem := v.Elem()
	switch elem.Kind() {
	case reflect.Slice:
		var raw []json.RawMessage
		if len(buf) == 0 || string(buf) == "null" {
			elem.Set(reflect.Zero(elem.Type()))
			return nil
		}
		if err := json.Unmarshal(buf, &raw); err != nil {
			return err
		}
		out := reflect.MakeSlice(elem.Type(), len(raw), len(raw))
		for i, item := range raw {
			ptr := reflect.New(elem.Type().Elem())
			if err := r.unmarshalOne(item, ptr); err != nil {
				return err
			}
			out.Index(i).Set(ptr.Elem())
		}
		elem.Set(out)
		return nil
	default:
		if len(buf) == 0 || string(buf) == "null" {
			return nil
		}
		return r.unmarshalOne(buf, v)
	}
}

func (r *Registry) unmarshalOne(buf json.RawMessage, target reflect.Value) error {
	var d discriminator
	if err := json.Unmarshal(buf, &d); err != nil {
		return err
	}
	if d.Kind == "" {
		// target may itself be a concrete pointer (e.g. *ID) rather
		// than an interface; decode directly.
		return json.Unmarshal(buf, target.Interface())
	}
	t, ok := r.byKind[d.Kind]
	if !ok {
		return fmt.Errorf("unpack: unknown kind %q", d.Kind)
	}
	val := reflect.New(t)
	if err := json.Unmarshal(buf, val.Interface()); err != nil {
		return err
	}
	iface := target
	if iface.Kind() == reflect.Ptr {
		iface = iface.Elem()
	}
	iface.Set(val)
	return nil
}
