// Package normalize rewrites a typechecked AST into canonical form:
// filters in CNF, projections merged and minimised, filters pushed
// into joins, a table compute dropped when it only restates the alias
// of the compute directly beneath it, and selector attributes sorted.
// Other computes stay where they are; adjacent computes are not
// merged. Every
// pass is a pure, idempotent Input -> Input rewrite, structured as
// small, independently-composable rewrite stages.
package normalize

import "github.com/stanford-oval/thingtalk-go/ast"

// Program normalizes every statement and declaration of p, returning
// a rewritten copy; p itself is left untouched.
func Program(p *ast.Program) *ast.Program {
	out := &ast.Program{Kind: p.Kind, ID: p.ID, Classes: p.Classes, Loc: p.Loc}
	for _, d := range p.Declarations {
		out.Declarations = append(out.Declarations, declaration(d))
	}
	for _, s := range p.Statements {
		out.Statements = append(out.Statements, statement(s))
	}
	return out
}

// PermissionRule normalizes a policy's principal filter and its two
// permission functions' filters.
func PermissionRule(pr *ast.PermissionRule) *ast.PermissionRule {
	out := *pr
	out.Principal = Filter(pr.Principal)
	out.Query = permFunc(pr.Query)
	out.Action = permFunc(pr.Action)
	return &out
}

func permFunc(f ast.PermissionFunction) ast.PermissionFunction {
	out := f
	if f.Filter != nil {
		out.Filter = Filter(f.Filter)
	}
	return out
}

func declaration(d *ast.DeclarationStatement) *ast.DeclarationStatement {
	out := *d
	switch v := d.Value.(type) {
	case ast.Table:
		out.Value = Table(v)
	case ast.Stream:
		out.Value = Stream(v)
	case *ast.Program:
		out.Value = Program(v)
	}
	return &out
}

func statement(s ast.Statement) ast.Statement {
	switch v := s.(type) {
	case *ast.RuleStatement:
		out := *v
		out.Stream = Stream(v.Stream)
		return &out
	case *ast.CommandStatement:
		out := *v
		if v.Table != nil {
			out.Table = Table(v.Table)
		}
		return &out
	case *ast.AssignmentStatement:
		out := *v
		out.Value = Table(v.Value)
		return &out
	case *ast.DeclarationStatement:
		return declaration(v)
	default:
		return s
	}
}
