package normalize

import "github.com/stanford-oval/thingtalk-go/ast"

// widenMinimalProjection widens an explicit projection list to
// include the source's minimal_projection parameters (defaulting to
// ["id"] when the source has an "id" output parameter). An empty
// names list ("all params") is left untouched, since it already
// includes everything.
func widenMinimalProjection(t ast.Table, names []string) []string {
	if len(names) == 0 {
		return names
	}
	fn := underlyingSchema(t)
	if fn == nil {
		return names
	}
	minimal := fn.MinimalProjection
	if len(minimal) == 0 {
		if _, ok := fn.Param("id"); ok {
			minimal = []string{"id"}
		}
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	out := append([]string(nil), names...)
	for _, m := range minimal {
		if !have[m] {
			out = append(out, m)
			have[m] = true
		}
	}
	return out
}

func underlyingSchema(t ast.Table) *ast.FunctionDef {
	switch v := t.(type) {
	case *ast.InvocationTable:
		return v.Invocation.Schema
	case *ast.FilterTable:
		return underlyingSchema(v.Table)
	case *ast.AliasTable:
		return underlyingSchema(v.Table)
	case *ast.SortTable:
		return underlyingSchema(v.Table)
	case *ast.IndexTable:
		return underlyingSchema(v.Table)
	case *ast.SliceTable:
		return underlyingSchema(v.Table)
	default:
		return nil
	}
}
