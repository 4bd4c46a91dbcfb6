package normalize

import "github.com/stanford-oval/thingtalk-go/ast"

// pushFilterIntoJoin splits f's CNF conjuncts across a join's two
// operands along scope boundaries: conjuncts touching only the left
// operand's output params move into Filter(lhs, ...), conjuncts
// touching only the right move into Filter(rhs, ...), and conjuncts
// touching both stay above the join.
func pushFilterIntoJoin(join *ast.JoinTable, f ast.BooleanExpression) ast.Table {
	lhsNames := outputNames(join.LHS)
	rhsNames := outputNames(join.RHS)

	and, ok := f.(*ast.AndExpr)
	var conjuncts []ast.BooleanExpression
	if ok {
		conjuncts = and.Operands
	} else if !isTrivialTrue(f) {
		conjuncts = []ast.BooleanExpression{f}
	}

	var toLHS, toRHS, mixed []ast.BooleanExpression
	for _, c := range conjuncts {
		refs := filterRefs(c)
		onLHS, onRHS := refSets(refs, lhsNames, rhsNames)
		switch {
		case onLHS && !onRHS:
			toLHS = append(toLHS, c)
		case onRHS && !onLHS:
			toRHS = append(toRHS, c)
		default:
			mixed = append(mixed, c)
		}
	}

	lhs := join.LHS
	if len(toLHS) > 0 {
		lhs = &ast.FilterTable{Kind: "Filter", Table: lhs, Filter: ast.NewAnd(ast.NoLoc, toLHS...), Loc: join.Loc}
	}
	rhs := join.RHS
	if len(toRHS) > 0 {
		rhs = &ast.FilterTable{Kind: "Filter", Table: rhs, Filter: ast.NewAnd(ast.NoLoc, toRHS...), Loc: join.Loc}
	}
	out := &ast.JoinTable{Kind: "Join", LHS: lhs, RHS: rhs, InParams: join.InParams, Loc: join.Loc}
	if len(mixed) == 0 {
		return out
	}
	return &ast.FilterTable{Kind: "Filter", Table: out, Filter: ast.NewAnd(ast.NoLoc, mixed...), Loc: join.Loc}
}

func refSets(refs, lhsNames, rhsNames map[string]bool) (onLHS, onRHS bool) {
	for name := range refs {
		if lhsNames[name] {
			onLHS = true
		}
		if rhsNames[name] {
			onRHS = true
		}
	}
	return
}

// filterRefs collects every bare parameter name a filter literal
// mentions, conservatively: a mixed-reference literal that mentions
// both sides is kept above the join by refSets returning both flags.
func filterRefs(f ast.BooleanExpression) map[string]bool {
	out := map[string]bool{}
	switch v := f.(type) {
	case *ast.AtomExpr:
		out[v.Param] = true
		collectValueRefs(v.Value, out)
	case *ast.ComputeExpr:
		collectValueRefs(v.LHS, out)
		collectValueRefs(v.RHS, out)
	case *ast.DontCareExpr:
		out[v.Param] = true
	case *ast.NotExpr:
		return filterRefs(v.Expr)
	case *ast.OrExpr:
		for _, o := range v.Operands {
			for k := range filterRefs(o) {
				out[k] = true
			}
		}
	}
	return out
}

func collectValueRefs(v ast.Value, out map[string]bool) {
	if ref, ok := v.(*ast.VarRefValue); ok {
		out[ref.Name] = true
	}
}

// outputNames returns the set of output-parameter names a table
// exposes, walking through filters/projections/aliases the way scope
// construction does, best-effort (schema-less nodes contribute
// nothing, which conservatively keeps their conjuncts unpushed).
func outputNames(t ast.Table) map[string]bool {
	out := map[string]bool{}
	switch v := t.(type) {
	case *ast.InvocationTable:
		if v.Invocation.Schema != nil {
			for _, p := range v.Invocation.Schema.OutputParams() {
				out[p.Name] = true
			}
		}
	case *ast.FilterTable:
		return outputNames(v.Table)
	case *ast.ProjectionTable:
		for _, n := range v.Names {
			out[n] = true
		}
	case *ast.ComputeTable:
		for k := range outputNames(v.Table) {
			out[k] = true
		}
		if v.Alias != "" {
			out[v.Alias] = true
		}
	case *ast.AliasTable:
		return outputNames(v.Table)
	case *ast.JoinTable:
		for k := range outputNames(v.LHS) {
			out[k] = true
		}
		for k := range outputNames(v.RHS) {
			out[k] = true
		}
	}
	return out
}
