package ast

// Copy returns a deep, structurally independent copy of n. Nodes are
// immutable by convention after typechecking; transformations such as
// the normalizer clone with Copy and then rewrite the copy, never the
// original, so unrelated callers holding the original AST are
// unaffected.
//
// Schema pointers (FunctionDef, ClassDef) are copied by reference:
// schemas live outside the AST and are referenced by pointer
// identity, not owned by any one node.
func Copy(n Node) Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *Program:
		c := *v
		c.Declarations = copySlice(v.Declarations, func(d *DeclarationStatement) *DeclarationStatement {
			return Copy(d).(*DeclarationStatement)
		})
		c.Statements = copyIfaceSlice(v.Statements, func(s Statement) Statement { return Copy(s).(Statement) })
		return &c
	case *PermissionRule:
		c := *v
		c.Principal = Copy(v.Principal).(BooleanExpression)
		c.Query = copyPermFunc(v.Query)
		c.Action = copyPermFunc(v.Action)
		return &c
	case *Library:
		c := *v
		return &c
	case *Dataset:
		c := *v
		return &c
	case *Bookkeeping:
		c := *v
		c.Args = copySlice(v.Args, func(p *InputParam) *InputParam { return Copy(p).(*InputParam) })
		return &c
	case *ControlCommand:
		c := *v
		return &c
	case *DialogueState:
		c := *v
		c.History = copySlice(v.History, func(h *DialogueHistoryItem) *DialogueHistoryItem {
			return Copy(h).(*DialogueHistoryItem)
		})
		return &c
	case *DialogueHistoryItem:
		c := *v
		c.Stmt = Copy(v.Stmt).(Statement)
		return &c

	case *RuleStatement:
		c := *v
		c.Stream = Copy(v.Stream).(Stream)
		c.Actions = copyIfaceSlice(v.Actions, func(a Action) Action { return Copy(a).(Action) })
		return &c
	case *CommandStatement:
		c := *v
		if v.Table != nil {
			c.Table = Copy(v.Table).(Table)
		}
		c.Actions = copyIfaceSlice(v.Actions, func(a Action) Action { return Copy(a).(Action) })
		return &c
	case *AssignmentStatement:
		c := *v
		c.Value = Copy(v.Value).(Table)
		return &c
	case *DeclarationStatement:
		c := *v
		c.Args = copySlice(v.Args, func(p *InputParam) *InputParam { return Copy(p).(*InputParam) })
		if v.Value != nil {
			c.Value = Copy(v.Value)
		}
		return &c
	case *OnInputChoiceStatement:
		c := *v
		c.Actions = copyIfaceSlice(v.Actions, func(a Action) Action { return Copy(a).(Action) })
		return &c

	case *TimerStream:
		c := *v
		c.Base = Copy(v.Base).(Value)
		c.Interval = Copy(v.Interval).(Value)
		if v.Frequency != nil {
			c.Frequency = Copy(v.Frequency).(Value)
		}
		return &c
	case *AtTimerStream:
		c := *v
		c.Times = copyIfaceSlice(v.Times, func(t Value) Value { return Copy(t).(Value) })
		if v.Expiration != nil {
			c.Expiration = Copy(v.Expiration).(Value)
		}
		return &c
	case *MonitorStream:
		c := *v
		c.Table = Copy(v.Table).(Table)
		return &c
	case *EdgeFilterStream:
		c := *v
		c.Stream = Copy(v.Stream).(Stream)
		c.Filter = Copy(v.Filter).(BooleanExpression)
		return &c
	case *EdgeNewStream:
		c := *v
		c.Stream = Copy(v.Stream).(Stream)
		return &c
	case *ProjectionStream:
		c := *v
		c.Stream = Copy(v.Stream).(Stream)
		c.Names = append([]string(nil), v.Names...)
		return &c
	case *ComputeStream:
		c := *v
		c.Stream = Copy(v.Stream).(Stream)
		c.Expr = Copy(v.Expr).(Value)
		return &c
	case *JoinStream:
		c := *v
		c.Stream = Copy(v.Stream).(Stream)
		c.Table = Copy(v.Table).(Table)
		c.InParams = copySlice(v.InParams, func(p *InputParam) *InputParam { return Copy(p).(*InputParam) })
		return &c
	case *FilteredStream:
		c := *v
		c.Stream = Copy(v.Stream).(Stream)
		c.Filter = Copy(v.Filter).(BooleanExpression)
		return &c
	case *AliasStream:
		c := *v
		c.Stream = Copy(v.Stream).(Stream)
		return &c

	case *InvocationTable:
		c := *v
		c.Invocation = Copy(v.Invocation).(*Invocation)
		return &c
	case *FilterTable:
		c := *v
		c.Table = Copy(v.Table).(Table)
		c.Filter = Copy(v.Filter).(BooleanExpression)
		return &c
	case *ProjectionTable:
		c := *v
		c.Table = Copy(v.Table).(Table)
		c.Names = append([]string(nil), v.Names...)
		return &c
	case *ComputeTable:
		c := *v
		c.Table = Copy(v.Table).(Table)
		c.Expr = Copy(v.Expr).(Value)
		return &c
	case *AggregationTable:
		c := *v
		c.Table = Copy(v.Table).(Table)
		return &c
	case *SortTable:
		c := *v
		c.Table = Copy(v.Table).(Table)
		return &c
	case *IndexTable:
		c := *v
		c.Table = Copy(v.Table).(Table)
		c.Indices = copyIfaceSlice(v.Indices, func(x Value) Value { return Copy(x).(Value) })
		return &c
	case *SliceTable:
		c := *v
		c.Table = Copy(v.Table).(Table)
		if v.Base != nil {
			c.Base = Copy(v.Base).(Value)
		}
		if v.Limit != nil {
			c.Limit = Copy(v.Limit).(Value)
		}
		return &c
	case *JoinTable:
		c := *v
		c.LHS = Copy(v.LHS).(Table)
		c.RHS = Copy(v.RHS).(Table)
		c.InParams = copySlice(v.InParams, func(p *InputParam) *InputParam { return Copy(p).(*InputParam) })
		return &c
	case *AliasTable:
		c := *v
		c.Table = Copy(v.Table).(Table)
		return &c
	case *HistoryTable:
		c := *v
		return &c

	case *NotifyAction:
		c := *v
		return &c
	case *InvocationAction:
		c := *v
		c.Invocation = Copy(v.Invocation).(*Invocation)
		return &c

	case *Invocation:
		c := *v
		c.Selector = Copy(v.Selector).(*Selector)
		c.InParams = copySlice(v.InParams, func(p *InputParam) *InputParam { return Copy(p).(*InputParam) })
		return &c
	case *InputParam:
		c := *v
		if v.Value != nil {
			c.Value = Copy(v.Value).(Value)
		}
		return &c
	case *Selector:
		c := *v
		c.Attributes = copySlice(v.Attributes, func(p *InputParam) *InputParam { return Copy(p).(*InputParam) })
		return &c

	case *AndExpr:
		c := *v
		c.Operands = copyIfaceSlice(v.Operands, func(o BooleanExpression) BooleanExpression { return Copy(o).(BooleanExpression) })
		return &c
	case *OrExpr:
		c := *v
		c.Operands = copyIfaceSlice(v.Operands, func(o BooleanExpression) BooleanExpression { return Copy(o).(BooleanExpression) })
		return &c
	case *NotExpr:
		c := *v
		c.Expr = Copy(v.Expr).(BooleanExpression)
		return &c
	case *AtomExpr:
		c := *v
		c.Value = Copy(v.Value).(Value)
		return &c
	case *ComputeExpr:
		c := *v
		c.LHS = Copy(v.LHS).(Value)
		c.RHS = Copy(v.RHS).(Value)
		return &c
	case *DontCareExpr:
		c := *v
		return &c
	case *ExternalExpr:
		c := *v
		c.Selector = Copy(v.Selector).(*Selector)
		c.InParams = copySlice(v.InParams, func(p *InputParam) *InputParam { return Copy(p).(*InputParam) })
		c.Filter = Copy(v.Filter).(BooleanExpression)
		return &c
	case *TrueExpr:
		c := *v
		return &c
	case *FalseExpr:
		c := *v
		return &c

	case *BooleanValue, *StringValue, *NumberValue, *MeasureValue, *CurrencyValue,
		*DateValue, *TimeValue, *LocationValue, *EntityValue, *EnumValue,
		*VarRefValue, *EventValue, *ContextRefValue, *UndefinedValue:
		return copyScalarValue(v)
	case *ArrayValue:
		c := *v
		c.Value = copyIfaceSlice(v.Value, func(x Value) Value { return Copy(x).(Value) })
		return &c
	case *ObjectValue:
		c := *v
		c.Value = make(map[string]Value, len(v.Value))
		for k, x := range v.Value {
			c.Value[k] = Copy(x).(Value)
		}
		return &c
	case *ComputationValue:
		c := *v
		c.Operands = copyIfaceSlice(v.Operands, func(x Value) Value { return Copy(x).(Value) })
		return &c
	case *ArrayFieldValue:
		c := *v
		c.Value = Copy(v.Value).(Value)
		return &c
	case *FilterValue:
		c := *v
		c.Value = Copy(v.Value).(Value)
		c.Filter = Copy(v.Filter).(BooleanExpression)
		return &c
	default:
		panic("ast.Copy: unhandled node type")
	}
}

func copyScalarValue(v any) Node {
	switch t := v.(type) {
	case *BooleanValue:
		c := *t
		return &c
	case *StringValue:
		c := *t
		return &c
	case *NumberValue:
		c := *t
		return &c
	case *MeasureValue:
		c := *t
		return &c
	case *CurrencyValue:
		c := *t
		return &c
	case *DateValue:
		c := *t
		return &c
	case *TimeValue:
		c := *t
		return &c
	case *LocationValue:
		c := *t
		return &c
	case *EntityValue:
		c := *t
		return &c
	case *EnumValue:
		c := *t
		return &c
	case *VarRefValue:
		c := *t
		return &c
	case *EventValue:
		c := *t
		return &c
	case *ContextRefValue:
		c := *t
		return &c
	case *UndefinedValue:
		c := *t
		return &c
	}
	panic("unreachable")
}

func copyPermFunc(f PermissionFunction) PermissionFunction {
	c := f
	if f.Selector != nil {
		c.Selector = Copy(f.Selector).(*Selector)
	}
	if f.Filter != nil {
		c.Filter = Copy(f.Filter).(BooleanExpression)
	}
	c.InParams = copySlice(f.InParams, func(p *InputParam) *InputParam { return Copy(p).(*InputParam) })
	return c
}

func copySlice[T any](s []T, f func(T) T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	for i, e := range s {
		out[i] = f(e)
	}
	return out
}

func copyIfaceSlice[T any](s []T, f func(T) T) []T {
	return copySlice(s, f)
}
