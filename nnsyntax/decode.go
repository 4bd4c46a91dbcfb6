package nnsyntax

import (
	"strconv"
	"strings"

	"github.com/stanford-oval/thingtalk-go/ast"
)

// Decode parses an NN token string plus its entity dictionary back
// into an AST root, setting every source location to ast.NoLoc. For
// an input that Encode accepts, Decode(Encode(input, opts)) gives
// back input up to source locations, except that every selector comes
// back as a plain Device selector: its id, all flag and attributes
// are not carried through the token string.
func Decode(tokenStr string, dict Dict) (ast.Input, error) {
	toks := tokenize(tokenStr)
	if len(toks) == 0 {
		return nil, &InvalidNNSyntax{Pos: 0, Message: "empty token sequence"}
	}
	d := &decoder{s: &stream{toks: toks}, dict: dict}
	if isPermissionRuleTokens(toks) {
		return d.permissionRule()
	}
	return d.program()
}

// isPermissionRuleTokens distinguishes a PermissionRule token
// sequence (which always contains a top-level ":" separating
// principal from query) from a Program's, since both otherwise start
// with an arbitrary filter or "now".
func isPermissionRuleTokens(toks []string) bool {
	depth := 0
	for _, t := range toks {
		switch t {
		case "[", "(":
			depth++
		case "]", ")":
			depth--
		case ":":
			if depth == 0 {
				return true
			}
		case "=>":
			if depth == 0 {
				return false
			}
		}
	}
	return false
}

type decoder struct {
	s    *stream
	dict Dict
}

func (d *decoder) program() (*ast.Program, error) {
	tok, ok := d.s.peek()
	if !ok {
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected stream or now"}
	}
	var (
		stmtTable  ast.Table
		stmtStream ast.Stream
		isCommand  bool
	)
	switch {
	case tok == "now":
		d.s.next()
		if err := d.s.expect("=>"); err != nil {
			return nil, err
		}
		t, err := d.table()
		if err != nil {
			return nil, err
		}
		stmtTable = t
		isCommand = true
	default:
		s, err := d.stream()
		if err != nil {
			return nil, err
		}
		stmtStream = s
	}
	actions, err := d.actions()
	if err != nil {
		return nil, err
	}
	if isCommand {
		return &ast.Program{Kind: "Program", Statements: []ast.Statement{
			&ast.CommandStatement{Kind: "Command", Table: stmtTable, Actions: actions, Loc: ast.NoLoc},
		}, Loc: ast.NoLoc}, nil
	}
	return &ast.Program{Kind: "Program", Statements: []ast.Statement{
		&ast.RuleStatement{Kind: "Rule", Stream: stmtStream, Actions: actions, Loc: ast.NoLoc},
	}, Loc: ast.NoLoc}, nil
}

func (d *decoder) actions() ([]ast.Action, error) {
	var actions []ast.Action
	for {
		tok, ok := d.s.peek()
		if !ok || tok != "=>" {
			break
		}
		d.s.next()
		head, ok := d.s.peek()
		if !ok {
			return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected action"}
		}
		if head == "notify" || head == "return" {
			d.s.next()
			actions = append(actions, &ast.NotifyAction{Kind: "Notify", Name: head, Loc: ast.NoLoc})
			continue
		}
		inv, err := d.invocation()
		if err != nil {
			return nil, err
		}
		actions = append(actions, &ast.InvocationAction{Kind: "Invocation", Invocation: inv, Loc: ast.NoLoc})
	}
	if len(actions) == 0 {
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected at least one action"}
	}
	return actions, nil
}

// table decodes a table leaf (invocation, join, history) followed by
// any chain of postfix modifiers, the exact inverse of encoder.table.
func (d *decoder) table() (ast.Table, error) {
	t, err := d.tablePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := d.s.peek()
		if !ok {
			return t, nil
		}
		switch tok {
		case "filter":
			d.s.next()
			f, err := d.filter()
			if err != nil {
				return nil, err
			}
			t = &ast.FilterTable{Kind: "Filter", Table: t, Filter: f, Loc: ast.NoLoc}
		case "project":
			d.s.next()
			names, err := d.nameList()
			if err != nil {
				return nil, err
			}
			t = &ast.ProjectionTable{Kind: "Projection", Table: t, Names: names, Loc: ast.NoLoc}
		case "compute":
			d.s.next()
			expr, err := d.value()
			if err != nil {
				return nil, err
			}
			t = &ast.ComputeTable{Kind: "Compute", Table: t, Expr: expr, Alias: d.optionalAlias(), Loc: ast.NoLoc}
		case "aggregate":
			d.s.next()
			op, ok := d.s.next()
			if !ok {
				return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected aggregation operator"}
			}
			t = &ast.AggregationTable{Kind: "Aggregation", Table: t, Op: op, Field: d.optionalField(), Alias: d.optionalAlias(), Loc: ast.NoLoc}
		case "sort":
			d.s.next()
			field, err := d.expectField()
			if err != nil {
				return nil, err
			}
			direction, ok := d.s.next()
			if !ok {
				return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected sort direction"}
			}
			t = &ast.SortTable{Kind: "Sort", Table: t, Field: field, Direction: direction, Loc: ast.NoLoc}
		case "index":
			d.s.next()
			vals, err := d.valueList()
			if err != nil {
				return nil, err
			}
			t = &ast.IndexTable{Kind: "Index", Table: t, Indices: vals, Loc: ast.NoLoc}
		case "slice":
			d.s.next()
			if err := d.s.expect("["); err != nil {
				return nil, err
			}
			base, err := d.value()
			if err != nil {
				return nil, err
			}
			if err := d.s.expect(":"); err != nil {
				return nil, err
			}
			limit, err := d.value()
			if err != nil {
				return nil, err
			}
			if err := d.s.expect("]"); err != nil {
				return nil, err
			}
			t = &ast.SliceTable{Kind: "Slice", Table: t, Base: base, Limit: limit, Loc: ast.NoLoc}
		case "alias":
			d.s.next()
			name, ok := d.s.next()
			if !ok {
				return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected alias name"}
			}
			t = &ast.AliasTable{Kind: "Alias", Table: t, Alias: name, Loc: ast.NoLoc}
		default:
			return t, nil
		}
	}
}

func (d *decoder) tablePrimary() (ast.Table, error) {
	tok, ok := d.s.peek()
	if !ok {
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected table"}
	}
	switch {
	case tok == "history":
		d.s.next()
		return &ast.HistoryTable{Kind: "History", Loc: ast.NoLoc}, nil
	case tok == "join":
		d.s.next()
		if err := d.s.expect("("); err != nil {
			return nil, err
		}
		lhs, err := d.table()
		if err != nil {
			return nil, err
		}
		if err := d.s.expect(")"); err != nil {
			return nil, err
		}
		if err := d.s.expect("("); err != nil {
			return nil, err
		}
		rhs, err := d.table()
		if err != nil {
			return nil, err
		}
		if err := d.s.expect(")"); err != nil {
			return nil, err
		}
		jt := &ast.JoinTable{Kind: "Join", LHS: lhs, RHS: rhs, Loc: ast.NoLoc}
		for {
			p, ok := d.s.peek()
			if !ok || p != "on" {
				break
			}
			d.s.next()
			ip, err := d.namedParam()
			if err != nil {
				return nil, err
			}
			jt.InParams = append(jt.InParams, ip)
		}
		return jt, nil
	case strings.HasPrefix(tok, "@"):
		inv, err := d.invocation()
		if err != nil {
			return nil, err
		}
		return &ast.InvocationTable{Kind: "Invocation", Invocation: inv, Loc: ast.NoLoc}, nil
	default:
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected table, got " + tok}
	}
}

// stream decodes a stream leaf (timer, attimer, monitor) followed by
// any chain of postfix modifiers, the exact inverse of encoder.stream.
func (d *decoder) stream() (ast.Stream, error) {
	s, err := d.streamPrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := d.s.peek()
		if !ok {
			return s, nil
		}
		switch tok {
		case "edgefilter":
			d.s.next()
			f, err := d.filter()
			if err != nil {
				return nil, err
			}
			s = &ast.EdgeFilterStream{Kind: "EdgeFilter", Stream: s, Filter: f, Loc: ast.NoLoc}
		case "edgenew":
			d.s.next()
			s = &ast.EdgeNewStream{Kind: "EdgeNew", Stream: s, Loc: ast.NoLoc}
		case "project":
			d.s.next()
			names, err := d.nameList()
			if err != nil {
				return nil, err
			}
			s = &ast.ProjectionStream{Kind: "Projection", Stream: s, Names: names, Loc: ast.NoLoc}
		case "compute":
			d.s.next()
			expr, err := d.value()
			if err != nil {
				return nil, err
			}
			s = &ast.ComputeStream{Kind: "Compute", Stream: s, Expr: expr, Alias: d.optionalAlias(), Loc: ast.NoLoc}
		case "join":
			d.s.next()
			if err := d.s.expect("("); err != nil {
				return nil, err
			}
			table, err := d.table()
			if err != nil {
				return nil, err
			}
			if err := d.s.expect(")"); err != nil {
				return nil, err
			}
			js := &ast.JoinStream{Kind: "Join", Stream: s, Table: table, Loc: ast.NoLoc}
			for {
				p, ok := d.s.peek()
				if !ok || p != "on" {
					break
				}
				d.s.next()
				ip, err := d.namedParam()
				if err != nil {
					return nil, err
				}
				js.InParams = append(js.InParams, ip)
			}
			s = js
		case "filtered":
			d.s.next()
			f, err := d.filter()
			if err != nil {
				return nil, err
			}
			s = &ast.FilteredStream{Kind: "Filtered", Stream: s, Filter: f, Loc: ast.NoLoc}
		case "alias":
			d.s.next()
			name, ok := d.s.next()
			if !ok {
				return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected alias name"}
			}
			s = &ast.AliasStream{Kind: "Alias", Stream: s, Alias: name, Loc: ast.NoLoc}
		default:
			return s, nil
		}
	}
}

func (d *decoder) streamPrimary() (ast.Stream, error) {
	tok, ok := d.s.next()
	if !ok {
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected stream"}
	}
	switch tok {
	case "timer":
		if err := d.s.expect("base"); err != nil {
			return nil, err
		}
		if err := d.s.expect("="); err != nil {
			return nil, err
		}
		base, err := d.value()
		if err != nil {
			return nil, err
		}
		if err := d.s.expect("interval"); err != nil {
			return nil, err
		}
		if err := d.s.expect("="); err != nil {
			return nil, err
		}
		interval, err := d.value()
		if err != nil {
			return nil, err
		}
		ts := &ast.TimerStream{Kind: "Timer", Base: base, Interval: interval, Loc: ast.NoLoc}
		if p, ok := d.s.peek(); ok && p == "frequency" {
			d.s.next()
			if err := d.s.expect("="); err != nil {
				return nil, err
			}
			freq, err := d.value()
			if err != nil {
				return nil, err
			}
			ts.Frequency = freq
		}
		return ts, nil
	case "attimer":
		times, err := d.valueList()
		if err != nil {
			return nil, err
		}
		ats := &ast.AtTimerStream{Kind: "AtTimer", Times: times, Loc: ast.NoLoc}
		if p, ok := d.s.peek(); ok && p == "expiration" {
			d.s.next()
			if err := d.s.expect("="); err != nil {
				return nil, err
			}
			exp, err := d.value()
			if err != nil {
				return nil, err
			}
			ats.Expiration = exp
		}
		return ats, nil
	case "monitor":
		if err := d.s.expect("("); err != nil {
			return nil, err
		}
		table, err := d.table()
		if err != nil {
			return nil, err
		}
		if err := d.s.expect(")"); err != nil {
			return nil, err
		}
		ms := &ast.MonitorStream{Kind: "Monitor", Table: table, Loc: ast.NoLoc}
		if p, ok := d.s.peek(); ok && p == "on_new" {
			d.s.next()
			names, err := d.nameList()
			if err != nil {
				return nil, err
			}
			ms.OnNew = names
		}
		return ms, nil
	default:
		return nil, &InvalidNNSyntax{Pos: d.s.pos - 1, Message: "unknown stream head " + tok}
	}
}

func (d *decoder) invocation() (*ast.Invocation, error) {
	tok, ok := d.s.next()
	if !ok {
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected @selector.channel"}
	}
	classKind, channel, ok := splitSelectorToken(tok)
	if !ok {
		return nil, &InvalidNNSyntax{Pos: d.s.pos - 1, Message: "malformed selector token " + tok}
	}
	inv := &ast.Invocation{
		Kind:     "Invocation",
		Selector: &ast.Selector{Kind: "Device", ClassKind: classKind, Loc: ast.NoLoc},
		Channel:  channel,
		Loc:      ast.NoLoc,
	}
	for {
		tok, ok := d.s.peek()
		if !ok || !strings.HasPrefix(tok, "param:") {
			break
		}
		ip, err := d.namedParam()
		if err != nil {
			return nil, err
		}
		inv.InParams = append(inv.InParams, ip)
	}
	return inv, nil
}

// namedParam decodes a "param:name = value" triple, used by
// invocations and by join in_params.
func (d *decoder) namedParam() (*ast.InputParam, error) {
	tok, ok := d.s.next()
	if !ok || !strings.HasPrefix(tok, "param:") {
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected param:name"}
	}
	name := strings.TrimPrefix(tok, "param:")
	if err := d.s.expect("="); err != nil {
		return nil, err
	}
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	return &ast.InputParam{Kind: "InputParam", Name: name, Value: v, Loc: ast.NoLoc}, nil
}

func (d *decoder) filter() (ast.BooleanExpression, error) {
	first, err := d.filterAtom()
	if err != nil {
		return nil, err
	}
	operands := []ast.BooleanExpression{first}
	var op string
	for {
		tok, ok := d.s.peek()
		if !ok || (tok != "and" && tok != "or") {
			break
		}
		if op == "" {
			op = tok
		} else if op != tok {
			return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "mixed and/or without grouping"}
		}
		d.s.next()
		next, err := d.filterAtom()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	if op == "and" {
		return ast.NewAnd(ast.NoLoc, operands...), nil
	}
	return ast.NewOr(ast.NoLoc, operands...), nil
}

func (d *decoder) filterAtom() (ast.BooleanExpression, error) {
	tok, ok := d.s.next()
	if !ok {
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected filter atom"}
	}
	switch {
	case tok == "true":
		return &ast.TrueExpr{Kind: "True", Loc: ast.NoLoc}, nil
	case tok == "not":
		inner, err := d.filterAtom()
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{Kind: "Not", Expr: inner, Loc: ast.NoLoc}, nil
	case tok == "dontcare":
		pn, ok := d.s.next()
		if !ok || !strings.HasPrefix(pn, "param:") {
			return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected param:name after dontcare"}
		}
		return &ast.DontCareExpr{Kind: "DontCare", Param: strings.TrimPrefix(pn, "param:"), Loc: ast.NoLoc}, nil
	case tok == "external":
		sel, ok := d.s.next()
		if !ok {
			return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected @selector.channel after external"}
		}
		classKind, channel, ok := splitSelectorToken(sel)
		if !ok {
			return nil, &InvalidNNSyntax{Pos: d.s.pos - 1, Message: "malformed selector token " + sel}
		}
		ext := &ast.ExternalExpr{
			Kind:     "External",
			Selector: &ast.Selector{Kind: "Device", ClassKind: classKind, Loc: ast.NoLoc},
			Channel:  channel,
			Loc:      ast.NoLoc,
		}
		for {
			p, ok := d.s.peek()
			if !ok || !strings.HasPrefix(p, "param:") {
				break
			}
			ip, err := d.namedParam()
			if err != nil {
				return nil, err
			}
			ext.InParams = append(ext.InParams, ip)
		}
		if err := d.s.expect("filter"); err != nil {
			return nil, err
		}
		f, err := d.filter()
		if err != nil {
			return nil, err
		}
		ext.Filter = f
		return ext, nil
	case strings.HasPrefix(tok, "param:"):
		name := strings.TrimPrefix(tok, "param:")
		op, ok := d.s.next()
		if !ok {
			return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected comparison operator"}
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		return &ast.AtomExpr{Kind: "Atom", Param: name, Op: op, Value: v, Loc: ast.NoLoc}, nil
	default:
		return nil, &InvalidNNSyntax{Pos: d.s.pos - 1, Message: "unexpected filter token " + tok}
	}
}

func (d *decoder) value() (ast.Value, error) {
	tok, ok := d.s.next()
	if !ok {
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected value"}
	}
	switch {
	case tok == "true" || tok == "false":
		b, _ := strconv.ParseBool(tok)
		return &ast.BooleanValue{Kind: "Boolean", Value: b, Loc: ast.NoLoc}, nil
	case strings.HasPrefix(tok, "enum:"):
		return &ast.EnumValue{Kind: "Enum", Value: strings.TrimPrefix(tok, "enum:"), Loc: ast.NoLoc}, nil
	case strings.HasPrefix(tok, "param:"):
		return &ast.VarRefValue{Kind: "VarRef", Name: strings.TrimPrefix(tok, "param:"), Loc: ast.NoLoc}, nil
	case tok == "[":
		var elems []ast.Value
		for {
			next, ok := d.s.peek()
			if !ok {
				return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "unterminated array"}
			}
			if next == "]" {
				d.s.next()
				break
			}
			if next == "," {
				d.s.next()
				continue
			}
			v, err := d.value()
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return &ast.ArrayValue{Kind: "Array", Value: elems, Loc: ast.NoLoc}, nil
	case tok == "new":
		return d.dateValue()
	case tok == "makeDate":
		if err := d.s.expect("("); err != nil {
			return nil, err
		}
		if err := d.s.expect(")"); err != nil {
			return nil, err
		}
		return &ast.DateValue{Kind: "Date", Loc: ast.NoLoc}, nil
	case tok == "start_of" || tok == "end_of":
		unit, ok := d.s.next()
		if !ok {
			return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected unit after " + tok}
		}
		return &ast.DateValue{Kind: "Date", Edge: &ast.DateEdge{Edge: tok, Unit: unit}, Loc: ast.NoLoc}, nil
	default:
		v, ok := d.dict[tok]
		if !ok {
			return nil, &InvalidNNSyntax{Pos: d.s.pos - 1, Message: "unresolved entity placeholder " + tok}
		}
		return v, nil
	}
}

// dateValue parses the structural "Date ( y , m , d [ , h , mi , s ] )"
// tail following an already-consumed "new" token, the inverse of
// encoder.dateValue's absolute/piecewise rendering.
func (d *decoder) dateValue() (ast.Value, error) {
	if err := d.s.expect("Date"); err != nil {
		return nil, err
	}
	if err := d.s.expect("("); err != nil {
		return nil, err
	}
	yearTok, err := d.dateField()
	if err != nil {
		return nil, err
	}
	if err := d.s.expect(","); err != nil {
		return nil, err
	}
	monthTok, err := d.dateField()
	if err != nil {
		return nil, err
	}
	if err := d.s.expect(","); err != nil {
		return nil, err
	}
	dayTok, err := d.dateField()
	if err != nil {
		return nil, err
	}
	if yearTok == nil || monthTok == nil || dayTok == nil {
		piece := &ast.DatePiece{Year: yearTok, Month: monthTok, Day: dayTok}
		if err := d.s.expect(")"); err != nil {
			return nil, err
		}
		return &ast.DateValue{Kind: "Date", Piece: piece, Loc: ast.NoLoc}, nil
	}
	abs := &ast.AbsDate{Year: *yearTok, Month: *monthTok, Day: *dayTok}
	if p, ok := d.s.peek(); ok && p == "," {
		d.s.next()
		h, err := d.dateField()
		if err != nil {
			return nil, err
		}
		if err := d.s.expect(","); err != nil {
			return nil, err
		}
		mi, err := d.dateField()
		if err != nil {
			return nil, err
		}
		if err := d.s.expect(","); err != nil {
			return nil, err
		}
		sec, err := d.dateField()
		if err != nil {
			return nil, err
		}
		if h != nil {
			abs.Hour = *h
		}
		if mi != nil {
			abs.Minute = *mi
		}
		if sec != nil {
			abs.Second = *sec
		}
	}
	if err := d.s.expect(")"); err != nil {
		return nil, err
	}
	return &ast.DateValue{Kind: "Date", Value: abs, Loc: ast.NoLoc}, nil
}

// dateField reads one Date(...) integer field, treating "_" as a
// missing piecewise component.
func (d *decoder) dateField() (*int, error) {
	tok, ok := d.s.next()
	if !ok {
		return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected date field"}
	}
	if tok == "_" {
		return nil, nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return nil, &InvalidNNSyntax{Pos: d.s.pos - 1, Message: "malformed date field " + tok}
	}
	return &n, nil
}

// nameList reads a "[ n1 , n2 , ... ]" bracketed identifier list.
func (d *decoder) nameList() ([]string, error) {
	if err := d.s.expect("["); err != nil {
		return nil, err
	}
	var names []string
	for {
		tok, ok := d.s.next()
		if !ok {
			return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "unterminated name list"}
		}
		if tok == "]" {
			return names, nil
		}
		if tok == "," {
			continue
		}
		names = append(names, tok)
	}
}

// valueList reads a "[ v1 , v2 , ... ]" bracketed value list.
func (d *decoder) valueList() ([]ast.Value, error) {
	if err := d.s.expect("["); err != nil {
		return nil, err
	}
	var vals []ast.Value
	for {
		tok, ok := d.s.peek()
		if !ok {
			return nil, &InvalidNNSyntax{Pos: d.s.pos, Message: "unterminated value list"}
		}
		if tok == "]" {
			d.s.next()
			return vals, nil
		}
		if tok == "," {
			d.s.next()
			continue
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
}

// optionalAlias consumes a trailing "as name" clause if present.
func (d *decoder) optionalAlias() string {
	tok, ok := d.s.peek()
	if !ok || tok != "as" {
		return ""
	}
	d.s.next()
	name, _ := d.s.next()
	return name
}

// optionalField consumes a trailing "field:name" token if present.
func (d *decoder) optionalField() string {
	tok, ok := d.s.peek()
	if !ok || !strings.HasPrefix(tok, "field:") {
		return ""
	}
	d.s.next()
	return strings.TrimPrefix(tok, "field:")
}

// expectField requires a "field:name" token, returning name without
// the prefix.
func (d *decoder) expectField() (string, error) {
	tok, ok := d.s.next()
	if !ok || !strings.HasPrefix(tok, "field:") {
		return "", &InvalidNNSyntax{Pos: d.s.pos, Message: "expected field:name"}
	}
	return strings.TrimPrefix(tok, "field:"), nil
}

func (d *decoder) permissionRule() (*ast.PermissionRule, error) {
	principal, err := d.filter()
	if err != nil {
		return nil, err
	}
	if err := d.s.expect(":"); err != nil {
		return nil, err
	}
	query, err := d.permFunc()
	if err != nil {
		return nil, err
	}
	if err := d.s.expect("=>"); err != nil {
		return nil, err
	}
	action, err := d.permFunc()
	if err != nil {
		return nil, err
	}
	return &ast.PermissionRule{Kind: "Permission", Principal: principal, Query: query, Action: action, Loc: ast.NoLoc}, nil
}

func (d *decoder) permFunc() (ast.PermissionFunction, error) {
	tok, ok := d.s.peek()
	if !ok {
		return ast.PermissionFunction{}, &InvalidNNSyntax{Pos: d.s.pos, Message: "expected permission function"}
	}
	if tok == "*" {
		d.s.next()
		return ast.PermissionFunction{Star: true}, nil
	}
	if tok == "notify" {
		d.s.next()
		return ast.PermissionFunction{Builtin: true}, nil
	}
	inv, err := d.invocation()
	if err != nil {
		return ast.PermissionFunction{}, err
	}
	f := ast.PermissionFunction{Selector: inv.Selector, Channel: inv.Channel, InParams: inv.InParams}
	if tok2, ok := d.s.peek(); ok && tok2 == "filter" {
		d.s.next()
		filt, err := d.filter()
		if err != nil {
			return ast.PermissionFunction{}, err
		}
		f.Filter = filt
	}
	return f, nil
}
