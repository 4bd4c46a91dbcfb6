package printer

import "github.com/stanford-oval/thingtalk-go/ast"

func (f *formatter) filter(expr ast.BooleanExpression) {
	switch v := expr.(type) {
	case *ast.TrueExpr:
		f.write("true")
	case *ast.FalseExpr:
		f.write("false")
	case *ast.AndExpr:
		f.joinBoolExprs(v.Operands, " && ")
	case *ast.OrExpr:
		f.joinBoolExprs(v.Operands, " || ")
	case *ast.NotExpr:
		f.write("!")
		f.filter(v.Expr)
	case *ast.AtomExpr:
		f.write("%s %s ", v.Param, v.Op)
		f.value(v.Value)
	case *ast.ComputeExpr:
		f.write("compute(")
		f.value(v.LHS)
		f.write(") %s ", v.Op)
		f.value(v.RHS)
	case *ast.DontCareExpr:
		f.write("dontcare(%s)", v.Param)
	case *ast.ExternalExpr:
		f.write("@%s.%s(", v.Selector.ClassKind, v.Channel)
		f.inputParams(v.InParams)
		f.write(")")
		if _, ok := v.Filter.(*ast.TrueExpr); !ok {
			f.write(" {")
			f.filter(v.Filter)
			f.write("}")
		}
	default:
		f.write("/* unsupported filter %T */", expr)
	}
}

func (f *formatter) joinBoolExprs(operands []ast.BooleanExpression, sep string) {
	for i, op := range operands {
		if i > 0 {
			f.write("%s", sep)
		}
		_, isAnd := op.(*ast.AndExpr)
		_, isOr := op.(*ast.OrExpr)
		needsParens := isAnd || isOr
		if needsParens {
			f.write("(")
		}
		f.filter(op)
		if needsParens {
			f.write(")")
		}
	}
}

func (f *formatter) inputParams(params []*ast.InputParam) {
	for i, ip := range params {
		if i > 0 {
			f.write(", ")
		}
		f.write("%s=", ip.Name)
		f.value(ip.Value)
	}
}
