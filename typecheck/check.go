package typecheck

import (
	"context"
	"fmt"

	"github.com/stanford-oval/thingtalk-go/ast"
	"github.com/stanford-oval/thingtalk-go/schema"
	"github.com/stanford-oval/thingtalk-go/types"
)

// checker accumulates errors on a push/pop stack of ErrorLists so
// that a sub-traversal (one branch of a join, one arm of a
// permission rule) can be checked in isolation and its errors either
// kept or discarded by the caller, without a single flat accumulator
// tangling unrelated branches together.
type checker struct {
	estack []ErrorList
}

func (c *checker) pushErrs() { c.estack = append(c.estack, nil) }

func (c *checker) popErrs() ErrorList {
	top := c.estack[len(c.estack)-1]
	c.estack = c.estack[:len(c.estack)-1]
	return top
}

// keepErrs merges the errors of the popped-off top frame into the
// new top frame, i.e. "this sub-check's errors count towards the
// caller's total".
func (c *checker) keepErrs(errs ErrorList) {
	i := len(c.estack) - 1
	c.estack[i] = append(c.estack[i], errs...)
}

func (c *checker) error(kind TypeErrorKind, n ast.Node, format string, args ...any) {
	i := len(c.estack) - 1
	c.estack[i] = append(c.estack[i], &TypeError{KindOf: kind, Pos: n.Pos(), Message: fmt.Sprintf(format, args...)})
}

// Program typechecks p against r, populating every Invocation and
// ExternalExpr's Schema pointer and returning the accumulated
// TypeErrors (nil/empty means success). If any schema cannot be
// resolved, checking stops after pass one and its ErrorList is
// returned: one UnresolvedSchema error per unresolved invocation or
// external filter. Otherwise every error found is collected and
// returned together.
func Program(ctx context.Context, r schema.Retriever, p *ast.Program) ErrorList {
	if errs := resolveSchemas(ctx, r, p); errs.HasErrors() {
		return errs
	}
	c := &checker{}
	c.pushErrs()
	root := NewScope()
	for _, d := range p.Declarations {
		c.checkDeclaration(root, d)
	}
	for _, s := range p.Statements {
		c.checkStatement(root, s)
	}
	return c.popErrs()
}

// PermissionRule typechecks a permission policy with a universal
// __pi : Entity(tt:contact) binding representing the principal.
func PermissionRule(ctx context.Context, r schema.Retriever, pr *ast.PermissionRule) ErrorList {
	if errs := resolveSchemas(ctx, r, pr); errs.HasErrors() {
		return errs
	}
	c := &checker{}
	c.pushErrs()
	scope := NewScope().Extend("__pi", types.Entity{Kind: "tt:contact"})
	c.checkFilter(scope, pr.Principal)
	c.checkPermFunc(scope, pr.Query)
	c.checkPermFunc(scope, pr.Action)
	return c.popErrs()
}

func (c *checker) checkPermFunc(scope *Scope, f ast.PermissionFunction) {
	if f.Star || f.Builtin {
		return
	}
	if f.Schema == nil {
		return // already reported as UnresolvedSchema in pass one
	}
	inner := scope.ExtendAll(outputBindings(f.Schema))
	for _, ip := range f.InParams {
		c.checkInputParam(inner, f.Schema, ip)
	}
	if f.Filter != nil {
		c.checkFilter(inner, f.Filter)
	}
}

func (c *checker) checkDeclaration(scope *Scope, d *ast.DeclarationStatement) {
	switch v := d.Value.(type) {
	case ast.Table:
		c.checkTable(scope, v)
	case ast.Stream:
		c.checkStream(scope, v)
	case *ast.Program:
		c.checkNestedProgram(scope, v)
	}
}

func (c *checker) checkNestedProgram(scope *Scope, p *ast.Program) {
	for _, s := range p.Statements {
		c.checkStatement(scope, s)
	}
}

func (c *checker) checkStatement(scope *Scope, s ast.Statement) {
	switch v := s.(type) {
	case *ast.RuleStatement:
		out := c.checkStream(scope, v.Stream)
		for _, a := range v.Actions {
			c.checkAction(scope.ExtendAll(out), a)
		}
	case *ast.CommandStatement:
		out := map[string]types.Type{}
		if v.Table != nil {
			out = c.checkTable(scope, v.Table)
		}
		for _, a := range v.Actions {
			c.checkAction(scope.ExtendAll(out), a)
		}
	case *ast.AssignmentStatement:
		c.checkTable(scope, v.Value)
	case *ast.DeclarationStatement:
		c.checkDeclaration(scope, v)
	case *ast.OnInputChoiceStatement:
		for _, a := range v.Actions {
			c.checkAction(scope, a)
		}
	}
}

func (c *checker) checkAction(scope *Scope, a ast.Action) {
	switch v := a.(type) {
	case *ast.NotifyAction:
		// nothing to check; notify/return take the enclosing scope.
	case *ast.InvocationAction:
		c.checkInvocation(scope, v.Invocation)
	}
}

func (c *checker) checkInvocation(scope *Scope, inv *ast.Invocation) map[string]types.Type {
	if inv.Schema == nil {
		c.error(UnresolvedSchema, inv, "could not resolve %s.%s", inv.Selector.ClassKind, inv.Channel)
		return nil
	}
	seen := map[string]bool{}
	for _, ip := range inv.InParams {
		seen[ip.Name] = true
		c.checkInputParam(scope, inv.Schema, ip)
	}
	for _, p := range inv.Schema.Params {
		if p.IsInput && p.Required && !seen[p.Name] {
			c.error(UnknownParameter, inv, "missing required input parameter %q", p.Name)
		}
	}
	return outputBindings(inv.Schema)
}

func (c *checker) checkInputParam(scope *Scope, fn *ast.FunctionDef, ip *ast.InputParam) {
	param, ok := fn.Param(ip.Name)
	if !ok {
		c.error(UnknownParameter, ip, "unknown parameter %q on %s.%s", ip.Name, fn.Class, fn.Name)
		return
	}
	if ip.Value == nil {
		return
	}
	vt := c.valueType(scope, ip.Value)
	if vt == nil {
		return
	}
	if !vt.Equal(param.Type) && !types.IsSubtype(vt, param.Type) {
		c.error(TypeMismatch, ip, "parameter %q expects %s, got %s", ip.Name, param.Type, vt)
	}
}

// outputBindings extracts a plain map from a FunctionDef's output
// parameters, the shape Scope.ExtendAll wants.
func outputBindings(fn *ast.FunctionDef) map[string]types.Type {
	out := map[string]types.Type{}
	for _, p := range fn.OutputParams() {
		out[p.Name] = p.Type
	}
	return out
}

func (c *checker) checkTable(scope *Scope, t ast.Table) map[string]types.Type {
	switch v := t.(type) {
	case *ast.InvocationTable:
		return c.checkInvocation(scope, v.Invocation)
	case *ast.FilterTable:
		out := c.checkTable(scope, v.Table)
		c.checkFilter(scope.ExtendAll(out), v.Filter)
		return out
	case *ast.ProjectionTable:
		out := c.checkTable(scope, v.Table)
		return c.checkProjection(v, out, v.Names)
	case *ast.ComputeTable:
		out := c.checkTable(scope, v.Table)
		inner := scope.ExtendAll(out)
		vt := c.valueType(inner, v.Expr)
		if v.Alias != "" && vt != nil {
			out = cloneBindings(out)
			out[v.Alias] = vt
		}
		return out
	case *ast.AggregationTable:
		out := c.checkTable(scope, v.Table)
		return c.checkAggregation(v.Op, v.Field, v.Alias, out, v)
	case *ast.SortTable:
		out := c.checkTable(scope, v.Table)
		if _, ok := out[v.Field]; !ok {
			c.error(UnresolvedVariable, v, "sort field %q not in scope", v.Field)
		}
		return out
	case *ast.IndexTable:
		out := c.checkTable(scope, v.Table)
		if !c.tableIsList(v.Table) {
			c.error(NotList, v, "index requires a list-valued table")
		}
		return out
	case *ast.SliceTable:
		out := c.checkTable(scope, v.Table)
		if !c.tableIsList(v.Table) {
			c.error(NotList, v, "slice requires a list-valued table")
		}
		return out
	case *ast.JoinTable:
		return c.checkJoin(scope, v.LHS, v.RHS, v.InParams, v)
	case *ast.AliasTable:
		return c.checkTable(scope, v.Table)
	case *ast.HistoryTable:
		return map[string]types.Type{}
	default:
		return nil
	}
}

func (c *checker) checkStream(scope *Scope, s ast.Stream) map[string]types.Type {
	switch v := s.(type) {
	case *ast.TimerStream:
		return map[string]types.Type{}
	case *ast.AtTimerStream:
		return map[string]types.Type{}
	case *ast.MonitorStream:
		out := c.checkTable(scope, v.Table)
		if inv, ok := underlyingInvocation(v.Table); ok && inv.Schema != nil && !inv.Schema.IsMonitorable {
			c.error(NotMonitorable, v, "%s.%s is not monitorable", inv.Selector.ClassKind, inv.Channel)
		}
		for _, name := range v.OnNew {
			if _, ok := out[name]; !ok {
				c.error(UnknownParameter, v, "on new field %q not in scope", name)
			}
		}
		return out
	case *ast.EdgeFilterStream:
		out := c.checkStream(scope, v.Stream)
		c.checkFilter(scope.ExtendAll(out), v.Filter)
		return out
	case *ast.EdgeNewStream:
		return c.checkStream(scope, v.Stream)
	case *ast.ProjectionStream:
		out := c.checkStream(scope, v.Stream)
		return c.checkProjection(v, out, v.Names)
	case *ast.ComputeStream:
		out := c.checkStream(scope, v.Stream)
		inner := scope.ExtendAll(out)
		vt := c.valueType(inner, v.Expr)
		if v.Alias != "" && vt != nil {
			out = cloneBindings(out)
			out[v.Alias] = vt
		}
		return out
	case *ast.JoinStream:
		lhs := c.checkStream(scope, v.Stream)
		rhs := c.checkTable(scope.ExtendAll(lhs), v.Table)
		return c.mergeJoinScopes(lhs, rhs, v)
	case *ast.FilteredStream:
		out := c.checkStream(scope, v.Stream)
		c.checkFilter(scope.ExtendAll(out), v.Filter)
		return out
	case *ast.AliasStream:
		return c.checkStream(scope, v.Stream)
	default:
		return nil
	}
}

func underlyingInvocation(t ast.Table) (*ast.Invocation, bool) {
	switch v := t.(type) {
	case *ast.InvocationTable:
		return v.Invocation, true
	case *ast.FilterTable:
		return underlyingInvocation(v.Table)
	case *ast.AliasTable:
		return underlyingInvocation(v.Table)
	default:
		return nil, false
	}
}

func (c *checker) tableIsList(t ast.Table) bool {
	inv, ok := underlyingInvocation(t)
	return ok && inv.Schema != nil && inv.Schema.IsList
}

func (c *checker) checkProjection(n ast.Node, out map[string]types.Type, names []string) map[string]types.Type {
	next := map[string]types.Type{}
	for _, name := range names {
		t, ok := out[name]
		if !ok {
			c.error(UnknownParameter, n, "projection name %q not in scope", name)
			continue
		}
		next[name] = t
	}
	return next
}

func (c *checker) checkAggregation(op, field, alias string, out map[string]types.Type, n ast.Node) map[string]types.Type {
	result := map[string]types.Type{}
	switch op {
	case "count":
		result[aggAlias(alias, "count")] = types.Number
		return result
	case "avg", "sum":
		t, ok := out[field]
		if !ok {
			c.error(UnknownParameter, n, "aggregation field %q not in scope", field)
			return result
		}
		if !t.Equal(types.Number) && !t.Equal(types.Currency) {
			if _, isMeasure := t.(types.Measure); !isMeasure {
				c.error(TypeMismatch, n, "%s requires a numeric/measure/currency field, got %s", op, t)
			}
		}
		result[aggAlias(alias, op)] = t
		return result
	case "min", "max", "argmin", "argmax":
		t, ok := out[field]
		if !ok {
			c.error(UnknownParameter, n, "aggregation field %q not in scope", field)
			return result
		}
		result[aggAlias(alias, op)] = t
		return result
	default:
		c.error(InvalidOperator, n, "unknown aggregation operator %q", op)
		return result
	}
}

func aggAlias(alias, op string) string {
	if alias != "" {
		return alias
	}
	return op
}

func (c *checker) checkJoin(scope *Scope, lhs, rhs ast.Table, params []*ast.InputParam, n ast.Node) map[string]types.Type {
	lout := c.checkTable(scope, lhs)
	rout := c.checkTable(scope.ExtendAll(lout), rhs)
	for _, ip := range params {
		c.checkInputParamAgainstScope(scope.ExtendAll(lout), ip)
	}
	return c.mergeJoinScopes(lout, rout, n)
}

func (c *checker) checkInputParamAgainstScope(scope *Scope, ip *ast.InputParam) {
	if ip.Value == nil {
		return
	}
	if ref, ok := ip.Value.(*ast.VarRefValue); ok {
		if _, ok := scope.Lookup(ref.Name); !ok {
			c.error(UnresolvedVariable, ip, "join parameter references undefined variable %q", ref.Name)
		}
	}
}

func (c *checker) mergeJoinScopes(lhs, rhs map[string]types.Type, n ast.Node) map[string]types.Type {
	out := cloneBindings(lhs)
	for name, rt := range rhs {
		if lt, ok := out[name]; ok {
			if joined, ok := types.Join(lt, rt); ok {
				out[name] = joined
			} else {
				c.error(AmbiguousJoin, n, "join produces incompatible types for %q: %s vs %s", name, lt, rt)
			}
			continue
		}
		out[name] = rt
	}
	return out
}

func cloneBindings(m map[string]types.Type) map[string]types.Type {
	out := make(map[string]types.Type, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *checker) checkFilter(scope *Scope, f ast.BooleanExpression) {
	switch v := f.(type) {
	case *ast.TrueExpr, *ast.FalseExpr:
	case *ast.AndExpr:
		for _, o := range v.Operands {
			c.checkFilter(scope, o)
		}
	case *ast.OrExpr:
		for _, o := range v.Operands {
			c.checkFilter(scope, o)
		}
	case *ast.NotExpr:
		c.checkFilter(scope, v.Expr)
	case *ast.DontCareExpr:
		if _, ok := scope.Lookup(v.Param); !ok {
			c.error(UnresolvedVariable, v, "dontcare references undefined parameter %q", v.Param)
		}
	case *ast.AtomExpr:
		pt, ok := scope.Lookup(v.Param)
		if !ok {
			c.error(UnresolvedVariable, v, "filter references undefined parameter %q", v.Param)
			return
		}
		vt := c.valueType(scope, v.Value)
		if vt == nil {
			return
		}
		if _, ok := types.Lookup(types.Op(v.Op), pt, vt); !ok {
			c.error(InvalidOperator, v, "operator %s not defined for %s and %s", v.Op, pt, vt)
		}
	case *ast.ComputeExpr:
		lt := c.valueType(scope, v.LHS)
		rt := c.valueType(scope, v.RHS)
		if lt == nil || rt == nil {
			return
		}
		if _, ok := types.Lookup(types.Op(v.Op), lt, rt); !ok {
			c.error(InvalidOperator, v, "operator %s not defined for %s and %s", v.Op, lt, rt)
		}
	case *ast.ExternalExpr:
		c.checkPermFunc(scope, ast.PermissionFunction{Selector: v.Selector, Channel: v.Channel, InParams: v.InParams, Filter: v.Filter, Schema: v.Schema})
	}
}

// valueType computes the static type of v under scope, resolving
// VarRef and ContextRef against the scope. Returns nil
// when the type genuinely cannot be determined (already-reported
// unresolved variable, or Undefined pending slot fill).
func (c *checker) valueType(scope *Scope, v ast.Value) types.Type {
	switch val := v.(type) {
	case *ast.VarRefValue:
		t, ok := scope.Lookup(val.Name)
		if !ok {
			c.error(UnresolvedVariable, val, "undefined variable %q", val.Name)
			return nil
		}
		return t
	case *ast.ContextRefValue:
		return val.Type
	case *ast.UndefinedValue:
		return nil
	case *ast.ComputationValue:
		if len(val.Operands) == 0 {
			return nil
		}
		t := c.valueType(scope, val.Operands[0])
		for _, o := range val.Operands[1:] {
			c.valueType(scope, o)
		}
		return t
	case *ast.ArrayFieldValue:
		base := c.valueType(scope, val.Value)
		arr, ok := base.(types.Array)
		if !ok {
			return nil
		}
		compound, ok := arr.Elem.(types.Compound)
		if !ok {
			return nil
		}
		field, ok := compound.Field(val.Field)
		if !ok {
			c.error(UnknownParameter, val, "field %q not present on array element", val.Field)
			return nil
		}
		return types.Array{Elem: field.Type}
	case *ast.FilterValue:
		c.checkFilter(scope, val.Filter)
		return c.valueType(scope, val.Value)
	default:
		return v.InferredType()
	}
}
