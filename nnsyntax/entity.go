package nnsyntax

import (
	"fmt"

	"github.com/stanford-oval/thingtalk-go/ast"
)

// AllocationMode selects how entity placeholder numbers are assigned
// during Encode.
type AllocationMode string

const (
	// Sequential numbers entities in the order they are first
	// encountered, one running counter per entity type.
	Sequential AllocationMode = "sequential"
	// Consecutive additionally requires that identical literal spans
	// reuse the same placeholder number within one sentence.
	Consecutive AllocationMode = "consecutive"
	// NonConsecutive is the beta numbering scheme that assigns a
	// single global counter shared across all entity types, rather
	// than one counter per type.
	NonConsecutive AllocationMode = "non-consecutive"
)

// Dict is the entity dictionary produced by Encode and consumed by
// Decode: it maps a placeholder token, e.g. "NUMBER_0", to the value
// it stands for.
type Dict map[string]ast.Value

// entityTypeOf returns the placeholder type tag for v, e.g. "NUMBER"
// for a NumberValue, "QUOTED_STRING" for a StringValue, "GENERIC_ENTITY_tt:device"
// for a device-typed EntityValue.
func entityTypeOf(v ast.Value) (string, bool) {
	switch t := v.(type) {
	case *ast.NumberValue:
		return "NUMBER", true
	case *ast.StringValue:
		return "QUOTED_STRING", true
	case *ast.MeasureValue:
		return "MEASURE_" + t.Unit, true
	case *ast.CurrencyValue:
		return "CURRENCY", true
	case *ast.DateValue:
		return "DATE", true
	case *ast.TimeValue:
		return "TIME", true
	case *ast.LocationValue:
		return "LOCATION", true
	case *ast.EntityValue:
		return "GENERIC_ENTITY_" + t.EntKind, true
	default:
		return "", false
	}
}

// allocator assigns placeholder tokens to encoded literal values,
// following one of the AllocationMode schemes.
type allocator struct {
	mode     AllocationMode
	dict     Dict
	counters map[string]int
	global   int
	seen     map[string]string // valueKey -> placeholder, for Consecutive reuse
}

func newAllocator(mode AllocationMode) *allocator {
	return &allocator{
		mode:     mode,
		dict:     Dict{},
		counters: map[string]int{},
		seen:     map[string]string{},
	}
}

// alloc returns the placeholder token for v, reusing an earlier
// placeholder for an identical value when the mode is Consecutive.
func (a *allocator) alloc(v ast.Value) (string, error) {
	typ, ok := entityTypeOf(v)
	if !ok {
		return "", &UnsupportedFeature{Feature: fmt.Sprintf("entity type for %T", v)}
	}
	key := valueSignature(v)
	if a.mode == Consecutive {
		if tok, ok := a.seen[typ+"|"+key]; ok {
			return tok, nil
		}
	}
	var n int
	if a.mode == NonConsecutive {
		n = a.global
		a.global++
	} else {
		n = a.counters[typ]
		a.counters[typ]++
	}
	tok := fmt.Sprintf("%s_%d", typ, n)
	a.dict[tok] = v
	if a.mode == Consecutive {
		a.seen[typ+"|"+key] = tok
	}
	return tok, nil
}

// valueSignature is a value-equality key used to dedupe repeated
// literals under Consecutive allocation; distinct from the
// normalizer's clause-ordering keys since it only needs to compare
// leaf literals, never compound filters.
func valueSignature(v ast.Value) string {
	switch t := v.(type) {
	case *ast.NumberValue:
		return fmt.Sprintf("%v", t.Value)
	case *ast.StringValue:
		return t.Value
	case *ast.MeasureValue:
		return fmt.Sprintf("%v%s", t.Value, t.Unit)
	case *ast.CurrencyValue:
		return fmt.Sprintf("%v%s", t.Value, t.Unit)
	case *ast.EntityValue:
		return t.EntKind + ":" + t.Value
	case *ast.LocationValue:
		return fmt.Sprintf("%v,%v", t.Latitude, t.Longitude)
	default:
		return fmt.Sprintf("%v", v)
	}
}
