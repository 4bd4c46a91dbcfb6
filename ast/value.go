package ast

import "github.com/stanford-oval/thingtalk-go/types"

// Value is implemented by every literal/reference AST value node.
type Value interface {
	Node
	valueNode()
	// InferredType returns the value's static type, when it can be
	// determined without a schema (constants, computations over
	// constants). VarRef, ContextRef and Undefined return nil; the
	// typechecker fills those in from scope.
	InferredType() types.Type
}

type (
	BooleanValue struct {
		Kind  string `json:"kind" unpack:""`
		Value bool   `json:"value"`
		Loc   `json:"loc"`
	}
	StringValue struct {
		Kind  string `json:"kind" unpack:""`
		Value string `json:"value"`
		Loc   `json:"loc"`
	}
	NumberValue struct {
		Kind  string  `json:"kind" unpack:""`
		Value float64 `json:"value"`
		Loc   `json:"loc"`
	}
	MeasureValue struct {
		Kind  string  `json:"kind" unpack:""`
		Value float64 `json:"value"`
		Unit  string  `json:"unit"` // display unit, e.g. "kWh"
		Loc   `json:"loc"`
	}
	CurrencyValue struct {
		Kind  string  `json:"kind" unpack:""`
		Value float64 `json:"value"`
		Unit  string  `json:"unit"` // ISO code, e.g. "usd"
		Loc   `json:"loc"`
	}
	// DateValue represents an absolute, edge, piecewise, or "now"
	// (all fields nil) date.
	DateValue struct {
		Kind  string     `json:"kind" unpack:""`
		Value *AbsDate   `json:"value,omitempty"`
		Edge  *DateEdge  `json:"edge,omitempty"`
		Piece *DatePiece `json:"piece,omitempty"`
		Loc   `json:"loc"`
	}
	TimeValue struct {
		Kind    string `json:"kind" unpack:""`
		Hour    int    `json:"hour"`
		Minute  int    `json:"minute"`
		Second  int    `json:"second"`
		Loc     `json:"loc"`
	}
	LocationValue struct {
		Kind        string  `json:"kind" unpack:""`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Display     string  `json:"display,omitempty"`
		Relative    string  `json:"relative,omitempty"` // "home"/"work"/"current_location"
		Loc         `json:"loc"`
	}
	EntityValue struct {
		Kind    string `json:"kind" unpack:""`
		Value   string `json:"value"`
		EntKind string `json:"entKind"` // namespace:name
		Display string `json:"display,omitempty"`
		Loc     `json:"loc"`
	}
	EnumValue struct {
		Kind  string `json:"kind" unpack:""`
		Value string `json:"value"`
		Loc   `json:"loc"`
	}
	ArrayValue struct {
		Kind  string  `json:"kind" unpack:""`
		Value []Value `json:"value"`
		Loc   `json:"loc"`
	}
	ObjectValue struct {
		Kind  string           `json:"kind" unpack:""`
		Value map[string]Value `json:"value"`
		Loc   `json:"loc"`
	}
	VarRefValue struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Loc  `json:"loc"`
	}
	// EventValue is one of the magic $event values: "type",
	// "program_id", or "" (meaning plain $event, i.e. "null").
	EventValue struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Loc  `json:"loc"`
	}
	ContextRefValue struct {
		Kind string     `json:"kind" unpack:""`
		Name string     `json:"name"`
		Type types.Type `json:"-"`
		Loc  `json:"loc"`
	}
	ComputationValue struct {
		Kind     string  `json:"kind" unpack:""`
		Op       string  `json:"op"`
		Operands []Value `json:"operands"`
		Loc      `json:"loc"`
	}
	ArrayFieldValue struct {
		Kind  string `json:"kind" unpack:""`
		Value Value  `json:"value"`
		Field string `json:"field"`
		Loc   `json:"loc"`
	}
	FilterValue struct {
		Kind   string            `json:"kind" unpack:""`
		Value  Value             `json:"value"`
		Filter BooleanExpression `json:"filter"`
		Loc    `json:"loc"`
	}
	// UndefinedValue is a slot-fillable hole (SlotFillable=true) or,
	// prior to compilation, never legally present at all
	// (SlotFillable=false never appears in a well-formed program).
	UndefinedValue struct {
		Kind          string `json:"kind" unpack:""`
		SlotFillable  bool   `json:"slotFillable"`
		Loc           `json:"loc"`
	}
)

// AbsDate is an absolute calendar timestamp.
type AbsDate struct {
	Year, Month, Day, Hour, Minute, Second int
}

// DateEdge is start_of/end_of a calendar unit ("day", "week", "mon", "year", ...).
type DateEdge struct {
	Edge string // "start_of" | "end_of"
	Unit string
}

// DatePiece is a partial date, e.g. `new Date(, 4, )`.
type DatePiece struct {
	Year, Month, Day *int
	Time             *TimeValue
}

func (*BooleanValue) valueNode()     {}
func (*StringValue) valueNode()      {}
func (*NumberValue) valueNode()      {}
func (*MeasureValue) valueNode()     {}
func (*CurrencyValue) valueNode()    {}
func (*DateValue) valueNode()        {}
func (*TimeValue) valueNode()        {}
func (*LocationValue) valueNode()    {}
func (*EntityValue) valueNode()      {}
func (*EnumValue) valueNode()        {}
func (*ArrayValue) valueNode()       {}
func (*ObjectValue) valueNode()      {}
func (*VarRefValue) valueNode()      {}
func (*EventValue) valueNode()       {}
func (*ContextRefValue) valueNode()  {}
func (*ComputationValue) valueNode() {}
func (*ArrayFieldValue) valueNode()  {}
func (*FilterValue) valueNode()      {}
func (*UndefinedValue) valueNode()   {}

func (v *BooleanValue) InferredType() types.Type  { return types.Boolean }
func (v *StringValue) InferredType() types.Type   { return types.String }
func (v *NumberValue) InferredType() types.Type   { return types.Number }
func (v *MeasureValue) InferredType() types.Type {
	base, _, err := types.CanonicalUnit(v.Unit)
	if err != nil {
		return nil
	}
	return types.Measure{BaseUnit: base}
}
func (v *CurrencyValue) InferredType() types.Type { return types.Currency }
func (v *DateValue) InferredType() types.Type     { return types.Date }
func (v *TimeValue) InferredType() types.Type     { return types.Time }
func (v *LocationValue) InferredType() types.Type { return types.Location }
func (v *EntityValue) InferredType() types.Type   { return types.Entity{Kind: v.EntKind} }
func (v *EnumValue) InferredType() types.Type     { return types.Enum{Choices: []string{v.Value}} }
func (v *ArrayValue) InferredType() types.Type {
	if len(v.Value) == 0 {
		return types.Array{Elem: types.Any}
	}
	return types.Array{Elem: v.Value[0].InferredType()}
}
func (v *ObjectValue) InferredType() types.Type {
	var fields []types.CompoundField
	for name, fv := range v.Value {
		fields = append(fields, types.CompoundField{Name: name, Type: fv.InferredType(), Required: true})
	}
	return types.Compound{Fields: fields}
}
func (v *VarRefValue) InferredType() types.Type     { return nil }
func (v *EventValue) InferredType() types.Type      { return types.String }
func (v *ContextRefValue) InferredType() types.Type { return v.Type }
func (v *ComputationValue) InferredType() types.Type {
	if len(v.Operands) == 0 {
		return nil
	}
	return v.Operands[0].InferredType()
}
func (v *ArrayFieldValue) InferredType() types.Type { return nil }
func (v *FilterValue) InferredType() types.Type     { return v.Value.InferredType() }
func (v *UndefinedValue) InferredType() types.Type  { return nil }
