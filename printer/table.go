package printer

import (
	"strings"

	"github.com/stanford-oval/thingtalk-go/ast"
)

func (f *formatter) selector(sel *ast.Selector) {
	f.write("@%s", sel.ClassKind)
	if len(sel.Attributes) > 0 {
		f.write("{")
		f.inputParams(sel.Attributes)
		f.write("}")
	}
}

func (f *formatter) invocation(inv *ast.Invocation) {
	f.selector(inv.Selector)
	f.write(".%s(", inv.Channel)
	f.inputParams(inv.InParams)
	f.write(")")
}

func (f *formatter) table(t ast.Table) {
	switch v := t.(type) {
	case *ast.InvocationTable:
		f.invocation(v.Invocation)
	case *ast.FilterTable:
		f.table(v.Table)
		f.write(", ")
		f.filter(v.Filter)
	case *ast.ProjectionTable:
		f.write("[%s] of ", strings.Join(v.Names, ", "))
		f.table(v.Table)
	case *ast.ComputeTable:
		f.write("compute(")
		f.value(v.Expr)
		f.write(")")
		if v.Alias != "" {
			f.write(" as %s", v.Alias)
		}
		f.write(" of ")
		f.table(v.Table)
	case *ast.AggregationTable:
		f.write("%s", v.Op)
		if v.Field != "" {
			f.write("(%s)", v.Field)
		}
		if v.Alias != "" {
			f.write(" as %s", v.Alias)
		}
		f.write(" of ")
		f.table(v.Table)
	case *ast.SortTable:
		f.write("sort %s %s of ", v.Field, v.Direction)
		f.table(v.Table)
	case *ast.IndexTable:
		f.table(v.Table)
		f.write("[")
		for i, idx := range v.Indices {
			if i > 0 {
				f.write(", ")
			}
			f.value(idx)
		}
		f.write("]")
	case *ast.SliceTable:
		f.table(v.Table)
		f.write("[")
		if v.Base != nil {
			f.value(v.Base)
		}
		f.write(":")
		f.value(v.Limit)
		f.write("]")
	case *ast.JoinTable:
		f.table(v.LHS)
		f.write(" join ")
		f.table(v.RHS)
		if len(v.InParams) > 0 {
			f.write(" on (")
			f.inputParams(v.InParams)
			f.write(")")
		}
	case *ast.AliasTable:
		f.table(v.Table)
		f.write(" as %s", v.Alias)
	case *ast.HistoryTable:
		f.write("history")
	default:
		f.write("/* unsupported table %T */", t)
	}
}
