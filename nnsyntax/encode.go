package nnsyntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stanford-oval/thingtalk-go/ast"
)

// Options controls Encode's behaviour.
type Options struct {
	// Mode selects the entity allocation scheme.
	// Zero value defaults to Sequential.
	Mode AllocationMode
	// Matcher locates literal spans within Sentence, used only to
	// decide whether a literal has textual grounding; unmatched
	// literals are still encoded (as entities with no sentence span)
	// unless RequireGrounding is set.
	Matcher ValueMatcher
	// Sentence is the natural-language utterance this program was
	// parsed from, used for matching literal spans.
	Sentence string
	// RequireGrounding rejects Encode with UnmatchedLiteral when a
	// literal cannot be matched against Sentence.
	RequireGrounding bool
}

// Encode renders p as a whitespace-separated NN token sequence plus
// the entity dictionary the tokens' placeholders refer to. Program
// root inputs (any statement/stream/table/action shape) and
// PermissionRule inputs are supported; anything else returns
// UnsupportedFeature.
func Encode(input ast.Input, opts Options) (string, Dict, error) {
	if opts.Mode == "" {
		opts.Mode = Sequential
	}
	if opts.Matcher == nil {
		opts.Matcher = DefaultMatcher
	}
	e := &encoder{opts: opts, alloc: newAllocator(opts.Mode), b: &builder{}}
	switch v := input.(type) {
	case *ast.Program:
		if err := e.program(v); err != nil {
			return "", nil, err
		}
	case *ast.PermissionRule:
		if err := e.permissionRule(v); err != nil {
			return "", nil, err
		}
	default:
		return "", nil, &UnsupportedFeature{Feature: fmt.Sprintf("root input %T", input)}
	}
	return e.b.String(), e.alloc.dict, nil
}

type encoder struct {
	opts  Options
	alloc *allocator
	b     *builder
}

func (e *encoder) program(p *ast.Program) error {
	if len(p.Statements) != 1 {
		return &UnsupportedFeature{Feature: "multi-statement program"}
	}
	switch s := p.Statements[0].(type) {
	case *ast.CommandStatement:
		e.b.push("now")
		e.b.push("=>")
		if err := e.table(s.Table); err != nil {
			return err
		}
		return e.actions(s.Actions)
	case *ast.RuleStatement:
		if err := e.stream(s.Stream); err != nil {
			return err
		}
		return e.actions(s.Actions)
	default:
		return &UnsupportedFeature{Feature: fmt.Sprintf("statement %T", s)}
	}
}

func (e *encoder) actions(actions []ast.Action) error {
	for _, a := range actions {
		e.b.push("=>")
		switch act := a.(type) {
		case *ast.NotifyAction:
			e.b.push(act.Name)
		case *ast.InvocationAction:
			if err := e.invocation(act.Invocation); err != nil {
				return err
			}
		default:
			return &UnsupportedFeature{Feature: fmt.Sprintf("action %T", a)}
		}
	}
	return nil
}

// stream encodes a stream leaf (timer, attimer, monitor) followed by
// any chain of postfix modifiers (edgefilter, edgenew, project,
// compute, join, filtered, alias), the same prefix-then-suffix shape
// table uses.
func (e *encoder) stream(s ast.Stream) error {
	switch v := s.(type) {
	case *ast.TimerStream:
		e.b.push("timer", "base", "=")
		if err := e.value(v.Base); err != nil {
			return err
		}
		e.b.push("interval", "=")
		if err := e.value(v.Interval); err != nil {
			return err
		}
		if v.Frequency != nil {
			e.b.push("frequency", "=")
			if err := e.value(v.Frequency); err != nil {
				return err
			}
		}
		return nil
	case *ast.AtTimerStream:
		e.b.push("attimer", "[")
		for i, t := range v.Times {
			if i > 0 {
				e.b.push(",")
			}
			if err := e.value(t); err != nil {
				return err
			}
		}
		e.b.push("]")
		if v.Expiration != nil {
			e.b.push("expiration", "=")
			return e.value(v.Expiration)
		}
		return nil
	case *ast.MonitorStream:
		e.b.push("monitor", "(")
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push(")")
		if len(v.OnNew) > 0 {
			e.b.push("on_new", "[")
			for i, n := range v.OnNew {
				if i > 0 {
					e.b.push(",")
				}
				e.b.push(n)
			}
			e.b.push("]")
		}
		return nil
	case *ast.EdgeFilterStream:
		if err := e.stream(v.Stream); err != nil {
			return err
		}
		e.b.push("edgefilter")
		return e.filter(v.Filter)
	case *ast.EdgeNewStream:
		if err := e.stream(v.Stream); err != nil {
			return err
		}
		e.b.push("edgenew")
		return nil
	case *ast.ProjectionStream:
		if err := e.stream(v.Stream); err != nil {
			return err
		}
		e.b.push("project", "[")
		for i, n := range v.Names {
			if i > 0 {
				e.b.push(",")
			}
			e.b.push(n)
		}
		e.b.push("]")
		return nil
	case *ast.ComputeStream:
		if err := e.stream(v.Stream); err != nil {
			return err
		}
		e.b.push("compute")
		if err := e.value(v.Expr); err != nil {
			return err
		}
		if v.Alias != "" {
			e.b.push("as", v.Alias)
		}
		return nil
	case *ast.JoinStream:
		if err := e.stream(v.Stream); err != nil {
			return err
		}
		e.b.push("join", "(")
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push(")")
		for _, ip := range v.InParams {
			e.b.push("on", "param:"+ip.Name, "=")
			if err := e.value(ip.Value); err != nil {
				return err
			}
		}
		return nil
	case *ast.FilteredStream:
		if err := e.stream(v.Stream); err != nil {
			return err
		}
		e.b.push("filtered")
		return e.filter(v.Filter)
	case *ast.AliasStream:
		if err := e.stream(v.Stream); err != nil {
			return err
		}
		e.b.push("alias", v.Alias)
		return nil
	default:
		return &UnsupportedFeature{Feature: fmt.Sprintf("stream %T", s)}
	}
}

// table encodes a table leaf (invocation, join, history) followed by
// any chain of postfix modifiers (filter, project, compute,
// aggregate, sort, index, slice, alias).
func (e *encoder) table(t ast.Table) error {
	switch v := t.(type) {
	case *ast.InvocationTable:
		return e.invocation(v.Invocation)
	case *ast.FilterTable:
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push("filter")
		return e.filter(v.Filter)
	case *ast.ProjectionTable:
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push("project", "[")
		for i, n := range v.Names {
			if i > 0 {
				e.b.push(",")
			}
			e.b.push(n)
		}
		e.b.push("]")
		return nil
	case *ast.ComputeTable:
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push("compute")
		if err := e.value(v.Expr); err != nil {
			return err
		}
		if v.Alias != "" {
			e.b.push("as", v.Alias)
		}
		return nil
	case *ast.AggregationTable:
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push("aggregate", v.Op)
		if v.Field != "" {
			e.b.push("field:" + v.Field)
		}
		if v.Alias != "" {
			e.b.push("as", v.Alias)
		}
		return nil
	case *ast.SortTable:
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push("sort", "field:"+v.Field, v.Direction)
		return nil
	case *ast.IndexTable:
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push("index", "[")
		for i, idx := range v.Indices {
			if i > 0 {
				e.b.push(",")
			}
			if err := e.value(idx); err != nil {
				return err
			}
		}
		e.b.push("]")
		return nil
	case *ast.SliceTable:
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push("slice", "[")
		if err := e.value(v.Base); err != nil {
			return err
		}
		e.b.push(":")
		if err := e.value(v.Limit); err != nil {
			return err
		}
		e.b.push("]")
		return nil
	case *ast.JoinTable:
		e.b.push("join", "(")
		if err := e.table(v.LHS); err != nil {
			return err
		}
		e.b.push(")", "(")
		if err := e.table(v.RHS); err != nil {
			return err
		}
		e.b.push(")")
		for _, ip := range v.InParams {
			e.b.push("on", "param:"+ip.Name, "=")
			if err := e.value(ip.Value); err != nil {
				return err
			}
		}
		return nil
	case *ast.AliasTable:
		if err := e.table(v.Table); err != nil {
			return err
		}
		e.b.push("alias", v.Alias)
		return nil
	case *ast.HistoryTable:
		e.b.push("history")
		return nil
	default:
		return &UnsupportedFeature{Feature: fmt.Sprintf("table %T", t)}
	}
}

func (e *encoder) invocation(inv *ast.Invocation) error {
	e.b.push("@" + inv.Selector.ClassKind + "." + inv.Channel)
	for _, ip := range inv.InParams {
		e.b.push("param:" + ip.Name)
		e.b.push("=")
		if err := e.value(ip.Value); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) filter(f ast.BooleanExpression) error {
	switch v := f.(type) {
	case *ast.TrueExpr:
		e.b.push("true")
		return nil
	case *ast.AndExpr:
		for i, op := range v.Operands {
			if i > 0 {
				e.b.push("and")
			}
			if err := e.filter(op); err != nil {
				return err
			}
		}
		return nil
	case *ast.OrExpr:
		for i, op := range v.Operands {
			if i > 0 {
				e.b.push("or")
			}
			if err := e.filter(op); err != nil {
				return err
			}
		}
		return nil
	case *ast.NotExpr:
		e.b.push("not")
		return e.filter(v.Expr)
	case *ast.AtomExpr:
		e.b.push("param:"+v.Param, v.Op)
		return e.value(v.Value)
	case *ast.DontCareExpr:
		e.b.push("dontcare", "param:"+v.Param)
		return nil
	case *ast.ExternalExpr:
		e.b.push("external", "@"+v.Selector.ClassKind+"."+v.Channel)
		for _, ip := range v.InParams {
			e.b.push("param:" + ip.Name)
			e.b.push("=")
			if err := e.value(ip.Value); err != nil {
				return err
			}
		}
		e.b.push("filter")
		return e.filter(v.Filter)
	default:
		return &UnsupportedFeature{Feature: fmt.Sprintf("filter %T", f)}
	}
}

func (e *encoder) value(v ast.Value) error {
	switch val := v.(type) {
	case *ast.BooleanValue:
		e.b.push(strconv.FormatBool(val.Value))
		return nil
	case *ast.EnumValue:
		e.b.push("enum:" + val.Value)
		return nil
	case *ast.VarRefValue:
		e.b.push("param:" + val.Name)
		return nil
	case *ast.ArrayValue:
		e.b.push("[")
		for i, el := range val.Value {
			if i > 0 {
				e.b.push(",")
			}
			if err := e.value(el); err != nil {
				return err
			}
		}
		e.b.push("]")
		return nil
	case *ast.DateValue:
		if e.opts.RequireGrounding && val.Value != nil && !groundDate(e.opts.Sentence, val.Value) {
			return &UnmatchedLiteral{Value: "date"}
		}
		return e.dateValue(val)
	default:
		tok, err := e.entityToken(v)
		if err != nil {
			return err
		}
		e.b.push(tok)
		return nil
	}
}

// dateValue renders a Date literal as structural tokens rather than
// an opaque entity placeholder, mirroring how the surface prettyprinter
// spells out new Date(...), start_of/end_of, and makeDate() rather
// than hiding them behind an allocated token.
func (e *encoder) dateValue(v *ast.DateValue) error {
	switch {
	case v.Value != nil:
		d := v.Value
		e.b.push("new", "Date", "(", strconv.Itoa(d.Year), ",", strconv.Itoa(d.Month), ",", strconv.Itoa(d.Day))
		if d.Hour != 0 || d.Minute != 0 || d.Second != 0 {
			e.b.push(",", strconv.Itoa(d.Hour), ",", strconv.Itoa(d.Minute), ",", strconv.Itoa(d.Second))
		}
		e.b.push(")")
		return nil
	case v.Edge != nil:
		e.b.push(v.Edge.Edge, v.Edge.Unit)
		return nil
	case v.Piece != nil:
		e.b.push("new", "Date", "(", datePieceField(v.Piece.Year), ",", datePieceField(v.Piece.Month), ",", datePieceField(v.Piece.Day), ")")
		return nil
	default:
		e.b.push("makeDate", "(", ")")
		return nil
	}
}

func datePieceField(n *int) string {
	if n == nil {
		return "_"
	}
	return strconv.Itoa(*n)
}

func (e *encoder) entityToken(v ast.Value) (string, error) {
	if e.opts.RequireGrounding {
		if str, ok := v.(*ast.StringValue); ok {
			if _, _, ok := e.opts.Matcher.Match(e.opts.Sentence, str.Value); !ok {
				return "", &UnmatchedLiteral{Value: str.Value}
			}
		}
	}
	return e.alloc.alloc(v)
}

func (e *encoder) permissionRule(pr *ast.PermissionRule) error {
	if err := e.filter(pr.Principal); err != nil {
		return err
	}
	e.b.push(":")
	if err := e.permFunc(pr.Query); err != nil {
		return err
	}
	e.b.push("=>")
	return e.permFunc(pr.Action)
}

func (e *encoder) permFunc(f ast.PermissionFunction) error {
	switch {
	case f.Star:
		e.b.push("*")
		return nil
	case f.Builtin:
		e.b.push("notify")
		return nil
	default:
		e.b.push("@" + f.Selector.ClassKind + "." + f.Channel)
		for _, ip := range f.InParams {
			e.b.push("param:" + ip.Name)
			e.b.push("=")
			if err := e.value(ip.Value); err != nil {
				return err
			}
		}
		if f.Filter != nil {
			if _, ok := f.Filter.(*ast.TrueExpr); !ok {
				e.b.push("filter")
				if err := e.filter(f.Filter); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// splitSelectorToken splits a "@a.b.c" token into class kind "a.b"
// and channel "c" on the last dot.
func splitSelectorToken(tok string) (classKind, channel string, ok bool) {
	if !strings.HasPrefix(tok, "@") {
		return "", "", false
	}
	body := tok[1:]
	i := strings.LastIndex(body, ".")
	if i < 0 {
		return "", "", false
	}
	return body[:i], body[i+1:], true
}
