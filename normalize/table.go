package normalize

import "github.com/stanford-oval/thingtalk-go/ast"

// Table normalizes t: filters into CNF, adjacent projections merged,
// filters pushed into joins, a compute dropped when it only restates
// the alias of the compute directly beneath it (adjacent computes are
// not otherwise merged), minimal-projection widening applied, sort
// moved beneath a slice or index, selector attributes canonicalized.
func Table(t ast.Table) ast.Table {
	switch v := t.(type) {
	case *ast.InvocationTable:
		out := *v
		out.Invocation = invocation(v.Invocation)
		return &out
	case *ast.FilterTable:
		inner := Table(v.Table)
		f := Filter(v.Filter)
		if join, ok := inner.(*ast.JoinTable); ok {
			return pushFilterIntoJoin(join, f)
		}
		if isTrivialTrue(f) {
			return inner
		}
		return &ast.FilterTable{Kind: "Filter", Table: inner, Filter: f, Loc: v.Loc}
	case *ast.ProjectionTable:
		inner := Table(v.Table)
		names := widenMinimalProjection(inner, v.Names)
		if p2, ok := inner.(*ast.ProjectionTable); ok {
			return &ast.ProjectionTable{Kind: "Projection", Table: p2.Table, Names: intersectNames(p2.Names, names), Loc: v.Loc}
		}
		return &ast.ProjectionTable{Kind: "Projection", Table: inner, Names: names, Loc: v.Loc}
	case *ast.ComputeTable:
		inner := Table(v.Table)
		if c2, ok := inner.(*ast.ComputeTable); ok && exprEquals(v.Expr, aliasRef(c2.Alias)) {
			// nested-compute flattening: this compute trivially
			// restates an already-present alias.
			return inner
		}
		return &ast.ComputeTable{Kind: "Compute", Table: inner, Expr: v.Expr, Alias: v.Alias, Loc: v.Loc}
	case *ast.AggregationTable:
		out := *v
		out.Table = Table(v.Table)
		return &out
	case *ast.SortTable:
		inner := Table(v.Table)
		if sl, ok := inner.(*ast.SliceTable); ok {
			// Sort(Slice(t)) sorts only the sliced subset, which is
			// never the intended semantics; reorder to Slice(Sort(t))
			// so the whole result set is sorted before truncation.
			sorted := &ast.SortTable{Kind: "Sort", Table: sl.Table, Field: v.Field, Direction: v.Direction, Loc: v.Loc}
			return &ast.SliceTable{Kind: "Slice", Table: sorted, Base: sl.Base, Limit: sl.Limit, Loc: sl.Loc}
		}
		if idx, ok := inner.(*ast.IndexTable); ok {
			sorted := &ast.SortTable{Kind: "Sort", Table: idx.Table, Field: v.Field, Direction: v.Direction, Loc: v.Loc}
			return &ast.IndexTable{Kind: "Index", Table: sorted, Indices: idx.Indices, Loc: idx.Loc}
		}
		return &ast.SortTable{Kind: "Sort", Table: inner, Field: v.Field, Direction: v.Direction, Loc: v.Loc}
	case *ast.IndexTable:
		out := *v
		out.Table = Table(v.Table)
		return &out
	case *ast.SliceTable:
		out := *v
		out.Table = Table(v.Table)
		return &out
	case *ast.JoinTable:
		out := *v
		out.LHS = Table(v.LHS)
		out.RHS = Table(v.RHS)
		return &out
	case *ast.AliasTable:
		out := *v
		out.Table = Table(v.Table)
		return &out
	default:
		return t
	}
}

// Stream normalizes s: nested tables go through Table, filters into
// CNF (a trivially true filter is dropped), and adjacent projections
// merged. Minimal-projection widening, filter pushdown into joins and
// compute flattening are applied to tables only, not to streams.
func Stream(s ast.Stream) ast.Stream {
	switch v := s.(type) {
	case *ast.MonitorStream:
		out := *v
		out.Table = Table(v.Table)
		return &out
	case *ast.EdgeFilterStream:
		out := *v
		out.Stream = Stream(v.Stream)
		out.Filter = Filter(v.Filter)
		return &out
	case *ast.EdgeNewStream:
		out := *v
		out.Stream = Stream(v.Stream)
		return &out
	case *ast.ProjectionStream:
		inner := Stream(v.Stream)
		if p2, ok := inner.(*ast.ProjectionStream); ok {
			return &ast.ProjectionStream{Kind: "Projection", Stream: p2.Stream, Names: intersectNames(p2.Names, v.Names), Loc: v.Loc}
		}
		return &ast.ProjectionStream{Kind: "Projection", Stream: inner, Names: v.Names, Loc: v.Loc}
	case *ast.ComputeStream:
		out := *v
		out.Stream = Stream(v.Stream)
		return &out
	case *ast.JoinStream:
		out := *v
		out.Stream = Stream(v.Stream)
		out.Table = Table(v.Table)
		return &out
	case *ast.FilteredStream:
		inner := Stream(v.Stream)
		f := Filter(v.Filter)
		if isTrivialTrue(f) {
			return inner
		}
		return &ast.FilteredStream{Kind: "Filtered", Stream: inner, Filter: f, Loc: v.Loc}
	case *ast.AliasStream:
		out := *v
		out.Stream = Stream(v.Stream)
		return &out
	default:
		return s
	}
}

func invocation(inv *ast.Invocation) *ast.Invocation {
	out := *inv
	out.Selector = selector(inv.Selector)
	return &out
}

// selector canonicalizes attribute order: sorted by name, with id/all
// already carried in their dedicated Selector fields rather than
// Attributes.
func selector(sel *ast.Selector) *ast.Selector {
	if sel == nil || len(sel.Attributes) == 0 {
		return sel
	}
	out := *sel
	out.Attributes = append([]*ast.InputParam(nil), sel.Attributes...)
	sortInputParams(out.Attributes)
	return &out
}

func isTrivialTrue(f ast.BooleanExpression) bool {
	_, ok := f.(*ast.TrueExpr)
	return ok
}

func intersectNames(a, b []string) []string {
	bs := map[string]bool{}
	for _, n := range b {
		bs[n] = true
	}
	var out []string
	for _, n := range a {
		if bs[n] {
			out = append(out, n)
		}
	}
	return out
}

func aliasRef(name string) ast.Value {
	if name == "" {
		return nil
	}
	return &ast.VarRefValue{Kind: "VarRef", Name: name, Loc: ast.NoLoc}
}

func exprEquals(a, b ast.Value) bool {
	if a == nil || b == nil {
		return false
	}
	return valueKey(a) == valueKey(b)
}
