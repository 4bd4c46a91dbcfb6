package ast

// children returns the immediate AST children of a node that
// traversal (primitive iteration, slot iteration, normalization) must
// recurse into. It is the single place that knows the shape of every
// node family, dispatching on the concrete tagged-union type rather
// than requiring every node to implement a children() method itself.
func children(n Node) []Node {
	switch v := n.(type) {
	case *Program:
		var out []Node
		for _, d := range v.Declarations {
			out = append(out, d)
		}
		for _, s := range v.Statements {
			out = append(out, s)
		}
		return out
	case *PermissionRule:
		out := []Node{v.Principal}
		out = append(out, permFuncChildren(v.Query)...)
		out = append(out, permFuncChildren(v.Action)...)
		return out
	case *Library:
		return nil
	case *Dataset:
		return nil
	case *Bookkeeping:
		return nil
	case *ControlCommand:
		return nil
	case *DialogueState:
		var out []Node
		for _, h := range v.History {
			out = append(out, h)
		}
		return out
	case *DialogueHistoryItem:
		return []Node{v.Stmt}

	case *RuleStatement:
		out := []Node{v.Stream}
		for _, a := range v.Actions {
			out = append(out, a)
		}
		return out
	case *CommandStatement:
		var out []Node
		if v.Table != nil {
			out = append(out, v.Table)
		}
		for _, a := range v.Actions {
			out = append(out, a)
		}
		return out
	case *AssignmentStatement:
		return []Node{v.Value}
	case *DeclarationStatement:
		var out []Node
		for _, a := range v.Args {
			out = append(out, a)
		}
		if v.Value != nil {
			out = append(out, v.Value)
		}
		return out
	case *OnInputChoiceStatement:
		var out []Node
		for _, a := range v.Actions {
			out = append(out, a)
		}
		return out

	case *TimerStream:
		out := []Node{v.Base, v.Interval}
		if v.Frequency != nil {
			out = append(out, v.Frequency)
		}
		return out
	case *AtTimerStream:
		var out []Node
		for _, t := range v.Times {
			out = append(out, t)
		}
		if v.Expiration != nil {
			out = append(out, v.Expiration)
		}
		return out
	case *MonitorStream:
		return []Node{v.Table}
	case *EdgeFilterStream:
		return []Node{v.Stream, v.Filter}
	case *EdgeNewStream:
		return []Node{v.Stream}
	case *ProjectionStream:
		return []Node{v.Stream}
	case *ComputeStream:
		return []Node{v.Stream, v.Expr}
	case *JoinStream:
		out := []Node{v.Stream, v.Table}
		for _, p := range v.InParams {
			out = append(out, p)
		}
		return out
	case *FilteredStream:
		return []Node{v.Stream, v.Filter}
	case *AliasStream:
		return []Node{v.Stream}

	case *InvocationTable:
		return []Node{v.Invocation}
	case *FilterTable:
		return []Node{v.Table, v.Filter}
	case *ProjectionTable:
		return []Node{v.Table}
	case *ComputeTable:
		return []Node{v.Table, v.Expr}
	case *AggregationTable:
		return []Node{v.Table}
	case *SortTable:
		return []Node{v.Table}
	case *IndexTable:
		out := []Node{v.Table}
		for _, i := range v.Indices {
			out = append(out, i)
		}
		return out
	case *SliceTable:
		out := []Node{v.Table}
		if v.Base != nil {
			out = append(out, v.Base)
		}
		if v.Limit != nil {
			out = append(out, v.Limit)
		}
		return out
	case *JoinTable:
		out := []Node{v.LHS, v.RHS}
		for _, p := range v.InParams {
			out = append(out, p)
		}
		return out
	case *AliasTable:
		return []Node{v.Table}
	case *HistoryTable:
		return nil

	case *NotifyAction:
		return nil
	case *InvocationAction:
		return []Node{v.Invocation}

	case *Invocation:
		var out []Node
		for _, p := range v.InParams {
			out = append(out, p)
		}
		return out
	case *InputParam:
		return []Node{v.Value}
	case *Selector:
		var out []Node
		for _, a := range v.Attributes {
			out = append(out, a)
		}
		return out

	case *AndExpr:
		out := make([]Node, len(v.Operands))
		for i, o := range v.Operands {
			out[i] = o
		}
		return out
	case *OrExpr:
		out := make([]Node, len(v.Operands))
		for i, o := range v.Operands {
			out[i] = o
		}
		return out
	case *NotExpr:
		return []Node{v.Expr}
	case *AtomExpr:
		return []Node{v.Value}
	case *ComputeExpr:
		return []Node{v.LHS, v.RHS}
	case *DontCareExpr:
		return nil
	case *ExternalExpr:
		out := []Node{v.Selector}
		for _, p := range v.InParams {
			out = append(out, p)
		}
		out = append(out, v.Filter)
		return out
	case *TrueExpr, *FalseExpr:
		return nil

	case *ArrayValue:
		out := make([]Node, len(v.Value))
		for i, e := range v.Value {
			out[i] = e
		}
		return out
	case *ObjectValue:
		var out []Node
		for _, e := range v.Value {
			out = append(out, e)
		}
		return out
	case *ComputationValue:
		out := make([]Node, len(v.Operands))
		for i, o := range v.Operands {
			out[i] = o
		}
		return out
	case *ArrayFieldValue:
		return []Node{v.Value}
	case *FilterValue:
		return []Node{v.Value, v.Filter}
	default:
		return nil
	}
}

func permFuncChildren(f PermissionFunction) []Node {
	var out []Node
	if f.Filter != nil {
		out = append(out, f.Filter)
	}
	for _, p := range f.InParams {
		out = append(out, p)
	}
	return out
}
