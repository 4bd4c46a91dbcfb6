package types

import "fmt"

// Op names a ThingTalk filter/comparison operator. Strictly < and >
// are not part of the grammar; use <= and >= instead.
type Op string

const (
	OpEq          Op = "=="
	OpGe          Op = ">="
	OpLe          Op = "<="
	OpSubstr      Op = "=~" // substring, accent-insensitive
	OpRevSubstr   Op = "~="
	OpContains    Op = "contains"
	OpNotContains Op = "~contains"
	OpInArray     Op = "in_array"
	OpStartsWith  Op = "starts_with"
	OpEndsWith    Op = "ends_with"
	OpPrefixOf    Op = "prefix_of"
	OpSuffixOf    Op = "suffix_of"
)

// overloadKey identifies one row of the operator overload table.
type overloadKey struct {
	op   Op
	lhs  string // kind name as returned by kindName
	rhs  string
}

var overloadTable = map[overloadKey]Type{}

func reg(op Op, lhs, rhs Type, result Type) {
	overloadTable[overloadKey{op, kindName(lhs), kindName(rhs)}] = result
}

func kindName(t Type) string {
	switch t.(type) {
	case Primitive:
		return t.(Primitive).K.String()
	case Measure:
		return "Measure"
	case Entity:
		return "Entity"
	case Array:
		return "Array"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func init() {
	reg(OpEq, Any, Any, Boolean)
	reg(OpGe, Number, Number, Boolean)
	reg(OpGe, Currency, Currency, Boolean)
	reg(OpGe, Measure{}, Measure{}, Boolean)
	reg(OpGe, Date, Date, Boolean)
	reg(OpGe, Time, Time, Boolean)
	reg(OpLe, Number, Number, Boolean)
	reg(OpLe, Currency, Currency, Boolean)
	reg(OpLe, Measure{}, Measure{}, Boolean)
	reg(OpLe, Date, Date, Boolean)
	reg(OpLe, Time, Time, Boolean)
	reg(OpSubstr, String, String, Boolean)
	reg(OpRevSubstr, String, String, Boolean)
	reg(OpContains, Array{}, Any, Boolean)
	reg(OpNotContains, Array{}, Any, Boolean)
	reg(OpInArray, Any, Array{}, Boolean)
	reg(OpStartsWith, String, String, Boolean)
	reg(OpEndsWith, String, String, Boolean)
	reg(OpPrefixOf, String, String, Boolean)
	reg(OpSuffixOf, String, String, Boolean)
}

// Lookup returns the result type for applying op to values of type
// lhs and rhs. Number <: Currency is allowed implicitly, and Array(T)
// participates in contains/in_array
// against T regardless of T's kind (checked structurally, not by the
// coarse kind table above).
func Lookup(op Op, lhs, rhs Type) (Type, bool) {
	if arr, ok := lhs.(Array); ok && (op == OpContains || op == OpNotContains) {
		if arr.Elem.Equal(rhs) || IsSubtype(rhs, arr.Elem) {
			return Boolean, true
		}
		return nil, false
	}
	if arr, ok := rhs.(Array); ok && op == OpInArray {
		if arr.Elem.Equal(lhs) || IsSubtype(lhs, arr.Elem) {
			return Boolean, true
		}
		return nil, false
	}
	if op == OpEq {
		if lhs.Equal(rhs) || IsSubtype(lhs, rhs) || IsSubtype(rhs, lhs) {
			return Boolean, true
		}
		return nil, false
	}
	t, ok := overloadTable[overloadKey{op, kindName(lhs), kindName(rhs)}]
	if !ok {
		return nil, false
	}
	if !typesCompatibleForOverload(op, lhs, rhs) {
		return nil, false
	}
	return t, true
}

func typesCompatibleForOverload(op Op, lhs, rhs Type) bool {
	switch op {
	case OpGe, OpLe:
		if lm, ok := lhs.(Measure); ok {
			rm, ok := rhs.(Measure)
			return ok && lm.BaseUnit == rm.BaseUnit
		}
		return lhs.Equal(rhs) || IsSubtype(lhs, rhs) || IsSubtype(rhs, lhs)
	default:
		return true
	}
}

// IsSubtype reports whether a is a subtype of b:
// Number <: Currency, String(hint) <: String, entity equality is
// nominal (no entity subtyping beyond equality here — entity subtype
// hierarchies are resolved by the schema, not the core type table).
func IsSubtype(a, b Type) bool {
	if a.Equal(b) {
		return true
	}
	if ap, ok := a.(Primitive); ok && ap.K == KindNumber {
		if bp, ok := b.(Primitive); ok && bp.K == KindCurrency {
			return true
		}
	}
	if ap, ok := a.(Primitive); ok && ap.K == KindString && ap.Hint != "" {
		if bp, ok := b.(Primitive); ok && bp.K == KindString && bp.Hint == "" {
			return true
		}
	}
	if _, ok := a.(anyType); ok {
		return true
	}
	return false
}

// Join computes the meet of two types: structural width-join on
// compounds, nominal equality on entities and everything else.
func Join(a, b Type) (Type, bool) {
	if a.Equal(b) {
		return a, true
	}
	if IsSubtype(a, b) {
		return b, true
	}
	if IsSubtype(b, a) {
		return a, true
	}
	ac, aok := a.(Compound)
	bc, bok := b.(Compound)
	if aok && bok {
		return joinCompound(ac, bc)
	}
	return nil, false
}

func joinCompound(a, b Compound) (Type, bool) {
	var fields []CompoundField
	for _, f := range a.Fields {
		if of, ok := b.Field(f.Name); ok {
			jt, ok := Join(f.Type, of.Type)
			if !ok {
				return nil, false
			}
			fields = append(fields, CompoundField{Name: f.Name, Type: jt, IsInput: f.IsInput, Required: f.Required && of.Required})
		}
	}
	return Compound{Fields: fields}, true
}
