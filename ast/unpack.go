package ast

import (
	"encoding/json"
	"fmt"

	"github.com/stanford-oval/thingtalk-go/internal/unpack"
)

// Every unpacker below is built with NewWithKinds rather than New,
// because the AST's discriminator strings drop the type-family suffix
// (a NumberValue's Kind field holds "Number", not "NumberValue"; see
// every Kind: "..." literal in parser/parser.go) instead of matching
// the Go type name New assumes.
var (
	valueUnpacker = unpack.NewWithKinds(map[string]any{
		"Boolean": BooleanValue{}, "String": StringValue{}, "Number": NumberValue{},
		"Measure": MeasureValue{}, "Currency": CurrencyValue{}, "Date": DateValue{},
		"Time": TimeValue{}, "Location": LocationValue{}, "Entity": EntityValue{},
		"Enum": EnumValue{}, "Array": ArrayValue{}, "Object": ObjectValue{},
		"VarRef": VarRefValue{}, "Event": EventValue{}, "ContextRef": ContextRefValue{},
		"Computation": ComputationValue{}, "ArrayField": ArrayFieldValue{},
		"FilterValue": FilterValue{}, "Undefined": UndefinedValue{},
	})
	boolExprUnpacker = unpack.NewWithKinds(map[string]any{
		"True": TrueExpr{}, "False": FalseExpr{}, "AndExpr": AndExpr{}, "OrExpr": OrExpr{},
		"Not": NotExpr{}, "Atom": AtomExpr{}, "Compute": ComputeExpr{},
		"DontCare": DontCareExpr{}, "External": ExternalExpr{},
	})
	streamUnpacker = unpack.NewWithKinds(map[string]any{
		"Timer": TimerStream{}, "AtTimer": AtTimerStream{}, "Monitor": MonitorStream{},
		"EdgeFilter": EdgeFilterStream{}, "EdgeNew": EdgeNewStream{},
		"Projection": ProjectionStream{}, "Compute": ComputeStream{}, "Join": JoinStream{},
		"Filtered": FilteredStream{}, "Alias": AliasStream{},
	})
	tableUnpacker = unpack.NewWithKinds(map[string]any{
		"Invocation": InvocationTable{}, "Filter": FilterTable{}, "Projection": ProjectionTable{},
		"Compute": ComputeTable{}, "Aggregation": AggregationTable{}, "Sort": SortTable{},
		"Index": IndexTable{}, "Slice": SliceTable{}, "Join": JoinTable{},
		"Alias": AliasTable{}, "History": HistoryTable{},
	})
	actionUnpacker = unpack.NewWithKinds(map[string]any{
		"Notify": NotifyAction{}, "Invocation": InvocationAction{},
	})
	statementUnpacker = unpack.NewWithKinds(map[string]any{
		"Rule": RuleStatement{}, "Command": CommandStatement{}, "Assignment": AssignmentStatement{},
		"Declaration": DeclarationStatement{}, "OnInputChoice": OnInputChoiceStatement{},
	})
	inputUnpacker = unpack.NewWithKinds(map[string]any{
		"Program": Program{}, "Permission": PermissionRule{}, "Library": Library{},
		"Dataset": Dataset{}, "Bookkeeping": Bookkeeping{}, "ControlCommand": ControlCommand{},
		"DialogueState": DialogueState{},
	})
)

func DecodeValue(raw json.RawMessage) (Value, error) {
	var v Value
	if err := valueUnpacker.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("ast: decode value: %w", err)
	}
	return v, nil
}

func DecodeBoolExpr(raw json.RawMessage) (BooleanExpression, error) {
	var v BooleanExpression
	if err := boolExprUnpacker.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("ast: decode filter: %w", err)
	}
	return v, nil
}

func DecodeStream(raw json.RawMessage) (Stream, error) {
	var v Stream
	if err := streamUnpacker.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("ast: decode stream: %w", err)
	}
	return v, nil
}

func DecodeTable(raw json.RawMessage) (Table, error) {
	var v Table
	if err := tableUnpacker.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("ast: decode table: %w", err)
	}
	return v, nil
}

func DecodeAction(raw json.RawMessage) (Action, error) {
	var v Action
	if err := actionUnpacker.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("ast: decode action: %w", err)
	}
	return v, nil
}

func DecodeStatement(raw json.RawMessage) (Statement, error) {
	var v Statement
	if err := statementUnpacker.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("ast: decode statement: %w", err)
	}
	return v, nil
}

func DecodeInput(raw json.RawMessage) (Input, error) {
	var v Input
	if err := inputUnpacker.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("ast: decode input: %w", err)
	}
	return v, nil
}

// Custom UnmarshalJSON for the Value/BooleanExpression node families
// that nest further Value or BooleanExpression fields. Programs are
// exchanged as surface or NN-syntax text, not raw JSON; this decode
// support exists only for the narrower places a value tree actually
// crosses the wire on its own — dialogue-state result payloads and
// NN-syntax entity-dictionary values — so it is scoped to the Value
// and BooleanExpression families rather than every node kind.

type arrayValueWire struct {
	Kind  string            `json:"kind"`
	Value []json.RawMessage `json:"value"`
	Loc   Loc               `json:"loc"`
}

func (v *ArrayValue) UnmarshalJSON(b []byte) error {
	var w arrayValueWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	v.Kind, v.Loc = w.Kind, w.Loc
	v.Value = make([]Value, len(w.Value))
	for i, raw := range w.Value {
		val, err := DecodeValue(raw)
		if err != nil {
			return err
		}
		v.Value[i] = val
	}
	return nil
}

type objectValueWire struct {
	Kind  string                     `json:"kind"`
	Value map[string]json.RawMessage `json:"value"`
	Loc   Loc                        `json:"loc"`
}

func (v *ObjectValue) UnmarshalJSON(b []byte) error {
	var w objectValueWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	v.Kind, v.Loc = w.Kind, w.Loc
	v.Value = make(map[string]Value, len(w.Value))
	for k, raw := range w.Value {
		val, err := DecodeValue(raw)
		if err != nil {
			return err
		}
		v.Value[k] = val
	}
	return nil
}

type computationValueWire struct {
	Kind     string            `json:"kind"`
	Op       string            `json:"op"`
	Operands []json.RawMessage `json:"operands"`
	Loc      Loc               `json:"loc"`
}

func (v *ComputationValue) UnmarshalJSON(b []byte) error {
	var w computationValueWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	v.Kind, v.Op, v.Loc = w.Kind, w.Op, w.Loc
	v.Operands = make([]Value, len(w.Operands))
	for i, raw := range w.Operands {
		val, err := DecodeValue(raw)
		if err != nil {
			return err
		}
		v.Operands[i] = val
	}
	return nil
}

type nestedValueWire struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
	Field string          `json:"field"`
	Loc   Loc             `json:"loc"`
}

func (v *ArrayFieldValue) UnmarshalJSON(b []byte) error {
	var w nestedValueWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	val, err := DecodeValue(w.Value)
	if err != nil {
		return err
	}
	v.Kind, v.Value, v.Field, v.Loc = w.Kind, val, w.Field, w.Loc
	return nil
}

type filterValueWire struct {
	Kind   string          `json:"kind"`
	Value  json.RawMessage `json:"value"`
	Filter json.RawMessage `json:"filter"`
	Loc    Loc             `json:"loc"`
}

func (v *FilterValue) UnmarshalJSON(b []byte) error {
	var w filterValueWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	val, err := DecodeValue(w.Value)
	if err != nil {
		return err
	}
	filt, err := DecodeBoolExpr(w.Filter)
	if err != nil {
		return err
	}
	v.Kind, v.Value, v.Filter, v.Loc = w.Kind, val, filt, w.Loc
	return nil
}
