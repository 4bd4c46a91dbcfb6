package ast

import (
	"encoding/json"
	"testing"
)

func TestDecodeValueRoundTripsEveryConstructedKind(t *testing.T) {
	values := []Value{
		&BooleanValue{Kind: "Boolean", Value: true},
		&StringValue{Kind: "String", Value: "hello"},
		&NumberValue{Kind: "Number", Value: 42},
		&MeasureValue{Kind: "Measure", Value: 3, Unit: "kWh"},
		&CurrencyValue{Kind: "Currency", Value: 5, Unit: "usd"},
		&DateValue{Kind: "Date", Value: &AbsDate{Year: 2026, Month: 3, Day: 5}},
		&TimeValue{Kind: "Time", Hour: 9, Minute: 30},
		&LocationValue{Kind: "Location", Latitude: 1, Longitude: 2},
		&EntityValue{Kind: "Entity", Value: "bob", EntKind: "tt:username"},
		&EnumValue{Kind: "Enum", Value: "high"},
		&VarRefValue{Kind: "VarRef", Name: "x"},
		&EventValue{Kind: "Event"},
		&ContextRefValue{Kind: "ContextRef", Name: "selection"},
		&UndefinedValue{Kind: "Undefined", SlotFillable: true},
		&ArrayValue{Kind: "Array", Value: []Value{&NumberValue{Kind: "Number", Value: 1}}},
		&ObjectValue{Kind: "Object", Value: map[string]Value{"a": &StringValue{Kind: "String", Value: "b"}}},
		&ComputationValue{Kind: "Computation", Op: "+", Operands: []Value{
			&NumberValue{Kind: "Number", Value: 1}, &NumberValue{Kind: "Number", Value: 2},
		}},
		&ArrayFieldValue{Kind: "ArrayField", Value: &VarRefValue{Kind: "VarRef", Name: "xs"}, Field: "f"},
		&FilterValue{
			Kind:  "FilterValue",
			Value: &VarRefValue{Kind: "VarRef", Name: "xs"},
			Filter: &AtomExpr{Kind: "Atom", Param: "f", Op: "==", Value: &NumberValue{Kind: "Number", Value: 1}},
		},
	}
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %T: %v", v, err)
		}
		decoded, err := DecodeValue(raw)
		if err != nil {
			t.Fatalf("DecodeValue(%s): %v", raw, err)
		}
		got, err := json.Marshal(decoded)
		if err != nil {
			t.Fatalf("re-marshal %T: %v", decoded, err)
		}
		if string(got) != string(raw) {
			t.Fatalf("round trip mismatch for %T: want %s, got %s", v, raw, got)
		}
	}
}

func TestDecodeBoolExprRoundTripsEveryConstructedKind(t *testing.T) {
	exprs := []BooleanExpression{
		&TrueExpr{Kind: "True"},
		&FalseExpr{Kind: "False"},
		NewAnd(NoLoc, &TrueExpr{Kind: "True"}, &FalseExpr{Kind: "False"}),
		NewOr(NoLoc, &TrueExpr{Kind: "True"}, &FalseExpr{Kind: "False"}),
		&NotExpr{Kind: "Not", Expr: &TrueExpr{Kind: "True"}},
		&AtomExpr{Kind: "Atom", Param: "labels", Op: "==", Value: &StringValue{Kind: "String", Value: "work"}},
		&ComputeExpr{Kind: "Compute",
			LHS: &VarRefValue{Kind: "VarRef", Name: "a"}, Op: "==",
			RHS: &VarRefValue{Kind: "VarRef", Name: "b"}},
		&DontCareExpr{Kind: "DontCare", Param: "labels"},
	}
	for _, e := range exprs {
		raw, err := json.Marshal(e)
		if err != nil {
			t.Fatalf("marshal %T: %v", e, err)
		}
		decoded, err := DecodeBoolExpr(raw)
		if err != nil {
			t.Fatalf("DecodeBoolExpr(%s): %v", raw, err)
		}
		got, err := json.Marshal(decoded)
		if err != nil {
			t.Fatalf("re-marshal %T: %v", decoded, err)
		}
		if string(got) != string(raw) {
			t.Fatalf("round trip mismatch for %T: want %s, got %s", e, raw, got)
		}
	}
}

// TestEntityDictJSONRoundTrip exercises the exact path cmd/tt2nn relies
// on: an entity dictionary produced by json.Marshal on encode, read
// back through DecodeValue on decode.
func TestEntityDictJSONRoundTrip(t *testing.T) {
	dict := map[string]Value{
		"NUMBER_0":        &NumberValue{Kind: "Number", Value: 42},
		"QUOTED_STRING_0": &StringValue{Kind: "String", Value: "work"},
	}
	raw, err := json.Marshal(dict)
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatal(err)
	}
	got := map[string]Value{}
	for tok, rawVal := range wire {
		v, err := DecodeValue(rawVal)
		if err != nil {
			t.Fatalf("DecodeValue(%s): %v", tok, err)
		}
		got[tok] = v
	}
	num, ok := got["NUMBER_0"].(*NumberValue)
	if !ok || num.Value != 42 {
		t.Fatalf("want NUMBER_0 = 42, got %#v", got["NUMBER_0"])
	}
	str, ok := got["QUOTED_STRING_0"].(*StringValue)
	if !ok || str.Value != "work" {
		t.Fatalf("want QUOTED_STRING_0 = work, got %#v", got["QUOTED_STRING_0"])
	}
}
