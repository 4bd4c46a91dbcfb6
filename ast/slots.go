package ast

import (
	"iter"

	"github.com/stanford-oval/thingtalk-go/types"
)

// SlotStatus is the Slot.status state machine: empty iff the value is
// Undefined(true), filled once user input replaces it, invalid if the
// post-fill value fails to typecheck.
type SlotStatus int

const (
	SlotEmpty SlotStatus = iota
	SlotFilled
	SlotInvalid
)

// Slot is one location in the AST that may need slot-filling: a
// filter atom's value, an input parameter's value, or a compute
// expression operand.
type Slot struct {
	Name             string
	Type             types.Type
	Value            Value
	PrimitiveContext *Invocation // nil for outer scope
	Scope            map[string]types.Type
	Status           SlotStatus
	// Set replaces the slot's value in place. Callers use this rather
	// than mutating Value directly so that AST nodes remain
	// immutable-by-convention outside of explicit slot-filling.
	Set func(Value)
}

func slotStatus(v Value) SlotStatus {
	if u, ok := v.(*UndefinedValue); ok && u.SlotFillable {
		return SlotEmpty
	}
	return SlotFilled
}

// IterateSlots visits every fillable slot in root as a restartable
// sequence, carrying the accumulated output-parameter scope and
// enclosing invocation context at each slot.
func IterateSlots(root Node) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		sw := &slotWalker{scope: map[string]types.Type{}}
		sw.walk(root, nil, yield)
	}
}

type slotWalker struct {
	scope map[string]types.Type
}

func (w *slotWalker) extend(fn *FunctionDef) map[string]types.Type {
	next := make(map[string]types.Type, len(w.scope))
	for k, v := range w.scope {
		next[k] = v
	}
	if fn != nil {
		for _, p := range fn.OutputParams() {
			next[p.Name] = p.Type
		}
	}
	return next
}

func (w *slotWalker) walk(n Node, ctx *Invocation, yield func(Slot) bool) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Invocation:
		ctx = v
		if v.Schema != nil {
			w.scope = w.extend(v.Schema)
		}
	case *InputParam:
		typ := types.Type(nil)
		if ctx != nil && ctx.Schema != nil {
			if p, ok := ctx.Schema.Param(v.Name); ok {
				typ = p.Type
			}
		}
		if !yield(scopedSlot(v.Name, typ, v.Value, ctx, w.scope, func(nv Value) { v.Value = nv })) {
			return false
		}
	case *AtomExpr:
		if !yield(scopedSlot(v.Param, nil, v.Value, ctx, w.scope, func(nv Value) { v.Value = nv })) {
			return false
		}
	case *ComputeExpr:
		if !yield(scopedSlot("", nil, v.LHS, ctx, w.scope, func(nv Value) { v.LHS = nv })) {
			return false
		}
		if !yield(scopedSlot("", nil, v.RHS, ctx, w.scope, func(nv Value) { v.RHS = nv })) {
			return false
		}
	}
	for _, c := range children(n) {
		if !w.walk(c, ctx, yield) {
			return false
		}
	}
	return true
}

func scopedSlot(name string, typ types.Type, v Value, ctx *Invocation, scope map[string]types.Type, set func(Value)) Slot {
	return Slot{
		Name:             name,
		Type:             typ,
		Value:            v,
		PrimitiveContext: ctx,
		Scope:            scope,
		Status:           slotStatus(v),
		Set:              set,
	}
}
