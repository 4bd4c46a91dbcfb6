package normalize

import (
	"fmt"
	"sort"

	"github.com/stanford-oval/thingtalk-go/ast"
)

// Filter canonicalizes f into CNF: And(Or(literal, ...), ...), with
// each disjunct's literals sorted and deduplicated, equality
// disjuncts on the same parameter fused into in_array, and True/False
// absorbed. Idempotent: Filter(Filter(f)) produces the same tree as
// Filter(f).
func Filter(f ast.BooleanExpression) ast.BooleanExpression {
	nnf := toNNF(f, false)
	clauses := toClauses(nnf)
	clauses = dedupClauses(fuseClauses(clauses))
	return fromClauses(clauses)
}

// toNNF pushes negation down to the leaves (De Morgan), leaving every
// non-boolean-connective node (Atom, Compute, DontCare, External) as
// an opaque literal, optionally wrapped in NotExpr.
func toNNF(f ast.BooleanExpression, neg bool) ast.BooleanExpression {
	switch v := f.(type) {
	case *ast.TrueExpr:
		if neg {
			return &ast.FalseExpr{Kind: "False", Loc: v.Loc}
		}
		return v
	case *ast.FalseExpr:
		if neg {
			return &ast.TrueExpr{Kind: "True", Loc: v.Loc}
		}
		return v
	case *ast.NotExpr:
		return toNNF(v.Expr, !neg)
	case *ast.AndExpr:
		operands := make([]ast.BooleanExpression, len(v.Operands))
		for i, o := range v.Operands {
			operands[i] = toNNF(o, neg)
		}
		if neg {
			return ast.NewOr(v.Loc, operands...)
		}
		return ast.NewAnd(v.Loc, operands...)
	case *ast.OrExpr:
		operands := make([]ast.BooleanExpression, len(v.Operands))
		for i, o := range v.Operands {
			operands[i] = toNNF(o, neg)
		}
		if neg {
			return ast.NewAnd(v.Loc, operands...)
		}
		return ast.NewOr(v.Loc, operands...)
	default:
		if neg {
			return &ast.NotExpr{Kind: "Not", Expr: f, Loc: ast.NoLoc}
		}
		return f
	}
}

// clause is one CNF disjunct: an Or of literals (True/False/Atom/
// Compute/DontCare/External, or a NotExpr wrapping one of those).
type clause []ast.BooleanExpression

// toClauses expands an NNF tree into CNF via distribution over Or.
func toClauses(f ast.BooleanExpression) []clause {
	switch v := f.(type) {
	case *ast.TrueExpr:
		return nil // an empty conjunction is True; no clauses needed
	case *ast.FalseExpr:
		return []clause{{}} // an empty disjunction is False
	case *ast.AndExpr:
		var out []clause
		for _, o := range v.Operands {
			out = append(out, toClauses(o)...)
		}
		return out
	case *ast.OrExpr:
		acc := []clause{{}}
		for _, o := range v.Operands {
			sub := toClauses(o)
			if len(sub) == 0 {
				// operand is True: the whole Or collapses to True.
				return nil
			}
			acc = distribute(acc, sub)
		}
		return acc
	default:
		return []clause{{v}}
	}
}

// distribute cross-multiplies two CNF clause sets: (a1 & a2 & ...) or
// (b1 & b2 & ...) = (a1 or b1) & (a1 or b2) & ... .
func distribute(a, b []clause) []clause {
	out := make([]clause, 0, len(a)*len(b))
	for _, ca := range a {
		for _, cb := range b {
			merged := make(clause, 0, len(ca)+len(cb))
			merged = append(merged, ca...)
			merged = append(merged, cb...)
			out = append(out, merged)
		}
	}
	return out
}

// fuseClauses folds, within each clause, multiple `param == c` atoms
// on the same parameter into one `param in_array [c, ...]` atom.
func fuseClauses(clauses []clause) []clause {
	out := make([]clause, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, fuseClause(c))
	}
	return out
}

func fuseClause(c clause) clause {
	byParam := map[string][]ast.Value{}
	order := []string{}
	var rest clause
	for _, lit := range c {
		atom, ok := lit.(*ast.AtomExpr)
		if !ok || atom.Op != "==" {
			rest = append(rest, lit)
			continue
		}
		if _, seen := byParam[atom.Param]; !seen {
			order = append(order, atom.Param)
		}
		byParam[atom.Param] = append(byParam[atom.Param], atom.Value)
	}
	var fused clause
	for _, name := range order {
		values := byParam[name]
		if len(values) == 1 {
			fused = append(fused, &ast.AtomExpr{Kind: "Atom", Param: name, Op: "==", Value: values[0], Loc: ast.NoLoc})
			continue
		}
		fused = append(fused, &ast.AtomExpr{
			Kind: "Atom", Param: name, Op: "in_array",
			Value: &ast.ArrayValue{Kind: "Array", Value: values, Loc: ast.NoLoc},
			Loc:   ast.NoLoc,
		})
	}
	return append(fused, rest...)
}

// dedupClauses sorts each clause's literals into a canonical order,
// drops duplicate literals within a clause, and drops duplicate
// clauses. False is not handled here: toClauses and fromClauses map
// it to and from an empty clause.
func dedupClauses(clauses []clause) []clause {
	seenClause := map[string]bool{}
	var out []clause
	for _, c := range clauses {
		sortClause(c)
		c = dedupLiterals(c)
		key := clauseKey(c)
		if seenClause[key] {
			continue
		}
		seenClause[key] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return clauseKey(out[i]) < clauseKey(out[j]) })
	return out
}

func dedupLiterals(c clause) clause {
	seen := map[string]bool{}
	var out clause
	for _, lit := range c {
		k := literalKey(lit)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, lit)
	}
	return out
}

func sortClause(c clause) {
	sort.Slice(c, func(i, j int) bool { return literalKey(c[i]) < literalKey(c[j]) })
}

func clauseKey(c clause) string {
	s := ""
	for _, lit := range c {
		s += literalKey(lit) + "|"
	}
	return s
}

// literalKey renders a stable sort/dedup key for one CNF literal,
// sorting atoms by parameter name then operator.
func literalKey(f ast.BooleanExpression) string {
	switch v := f.(type) {
	case *ast.TrueExpr:
		return "T"
	case *ast.FalseExpr:
		return "F"
	case *ast.NotExpr:
		return "!" + literalKey(v.Expr)
	case *ast.AtomExpr:
		return fmt.Sprintf("A:%s:%s:%s", v.Param, v.Op, valueKey(v.Value))
	case *ast.ComputeExpr:
		return fmt.Sprintf("C:%s:%s:%s", valueKey(v.LHS), v.Op, valueKey(v.RHS))
	case *ast.DontCareExpr:
		return "D:" + v.Param
	case *ast.ExternalExpr:
		return fmt.Sprintf("E:%s:%s:%s", v.Selector.ClassKind, v.Channel, literalKey(v.Filter))
	default:
		return fmt.Sprintf("?:%T", f)
	}
}

func valueKey(v ast.Value) string {
	switch val := v.(type) {
	case *ast.StringValue:
		return "s:" + val.Value
	case *ast.NumberValue:
		return fmt.Sprintf("n:%v", val.Value)
	case *ast.BooleanValue:
		return fmt.Sprintf("b:%v", val.Value)
	case *ast.EnumValue:
		return "e:" + val.Value
	case *ast.EntityValue:
		return "en:" + val.EntKind + ":" + val.Value
	case *ast.VarRefValue:
		return "v:" + val.Name
	case *ast.ArrayValue:
		s := "arr("
		for _, e := range val.Value {
			s += valueKey(e) + ","
		}
		return s + ")"
	default:
		return fmt.Sprintf("?:%T", v)
	}
}

// fromClauses rebuilds a BooleanExpression from a canonical clause
// set: And of Or of literal, absorbing the empty cases.
func fromClauses(clauses []clause) ast.BooleanExpression {
	if len(clauses) == 0 {
		return &ast.TrueExpr{Kind: "True", Loc: ast.NoLoc}
	}
	ors := make([]ast.BooleanExpression, len(clauses))
	for i, c := range clauses {
		if len(c) == 0 {
			return &ast.FalseExpr{Kind: "False", Loc: ast.NoLoc}
		}
		ors[i] = ast.NewOr(ast.NoLoc, c...)
	}
	return ast.NewAnd(ast.NoLoc, ors...)
}
