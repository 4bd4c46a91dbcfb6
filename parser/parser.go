// Package parser implements a hand-written recursive-descent/Pratt
// parser for ThingTalk surface syntax; the loc helper turns a node's
// first and last tokens into its ast.Loc.
package parser

import (
	"fmt"
	"strings"

	"github.com/stanford-oval/thingtalk-go/ast"
	"github.com/stanford-oval/thingtalk-go/lexer"
	"github.com/stanford-oval/thingtalk-go/types"
)

type parser struct {
	toks []lexer.Token
	pos  int
}

func newParser(src string) (*parser, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks}, nil
}

func (p *parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *parser) atEOF() bool       { return p.cur().Type == lexer.EOF }
func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) is(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *parser) isKeyword(kw string) bool {
	return p.cur().Type == lexer.KEYWORD && p.cur().Text == kw
}

func (p *parser) errf(format string, args ...any) error {
	return &SyntaxError{Pos: p.cur().Pos, Expected: fmt.Sprintf(format, args...), Got: p.cur().String()}
}

func (p *parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if !p.is(tt) {
		return lexer.Token{}, p.errf("token type %v", tt)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.errf("keyword %q", kw)
	}
	p.advance()
	return nil
}

func loc(from, to lexer.Token) ast.Loc { return ast.NewLoc(from.Pos, to.End) }

// ParseProgram parses a `;`-separated sequence of class defs and
// statements into a *ast.Program.
func ParseProgram(src string) (*ast.Program, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errf("end of input")
	}
	return prog, nil
}

// ParsePermissionRule parses a single `filter : query => action;`
// permission-policy statement.
func ParsePermissionRule(src string) (*ast.PermissionRule, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	rule, err := p.parsePermissionRule()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errf("end of input")
	}
	return rule, nil
}

func (p *parser) parseProgram() (*ast.Program, error) {
	start := p.cur()
	prog := &ast.Program{Kind: "Program"}
	for p.isKeyword("class") {
		cls, err := p.parseClassDef()
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, cls)
	}
	for !p.atEOF() {
		if p.isKeyword("let") {
			// Peek ahead: a bare `let name := table;` is an
			// AssignmentStatement; `let query/action/stream/program
			// name(...)` is a DeclarationStatement.
			save := p.pos
			p.advance()
			if p.is(lexer.KEYWORD) && isDeclKind(p.cur().Text) {
				p.pos = save
				decl, err := p.parseDeclarationStatement()
				if err != nil {
					return nil, err
				}
				prog.Declarations = append(prog.Declarations, decl)
				continue
			}
			p.pos = save
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	last := start
	if p.pos > 0 {
		last = p.toks[p.pos-1]
	}
	prog.Loc = loc(start, last)
	return prog, nil
}

func isDeclKind(s string) bool {
	switch s {
	case "query", "action", "stream", "program":
		return true
	}
	return false
}

func (p *parser) parseStatement() (ast.Statement, error) {
	start := p.cur()
	switch {
	case p.isKeyword("let"):
		p.advance()
		name, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.WALRUS); err != nil {
			return nil, err
		}
		table, err := p.parseTableExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSemi(); err != nil {
			return nil, err
		}
		return &ast.AssignmentStatement{Kind: "Assignment", Name: name.Text, Value: table, Loc: loc(start, p.prevTok())}, nil
	case p.isKeyword("now"):
		p.advance()
		if _, err := p.expect(lexer.ARROW); err != nil {
			return nil, err
		}
		table, err := p.parseTableExpr()
		if err != nil {
			return nil, err
		}
		actions, err := p.parseActionChain()
		if err != nil {
			return nil, err
		}
		if err := p.expectSemi(); err != nil {
			return nil, err
		}
		return &ast.CommandStatement{Kind: "Command", Table: table, Actions: actions, Loc: loc(start, p.prevTok())}, nil
	default:
		stream, err := p.parseStreamExpr()
		if err != nil {
			return nil, err
		}
		actions, err := p.parseActionChain()
		if err != nil {
			return nil, err
		}
		if err := p.expectSemi(); err != nil {
			return nil, err
		}
		return &ast.RuleStatement{Kind: "Rule", Stream: stream, Actions: actions, Loc: loc(start, p.prevTok())}, nil
	}
}

func (p *parser) prevTok() lexer.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *parser) expectSemi() error {
	if p.is(lexer.SEMI) {
		p.advance()
		return nil
	}
	if p.atEOF() {
		return nil
	}
	return p.errf("';'")
}

func (p *parser) parseActionChain() ([]ast.Action, error) {
	var actions []ast.Action
	for p.is(lexer.ARROW) {
		p.advance()
		a, err := p.parseAction()
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if len(actions) == 0 {
		return nil, p.errf("'=>' followed by an action")
	}
	return actions, nil
}

func (p *parser) parseAction() (ast.Action, error) {
	start := p.cur()
	if p.isKeyword("notify") || p.isKeyword("return") {
		name := p.advance().Text
		return &ast.NotifyAction{Kind: "Notify", Name: name, Loc: loc(start, p.prevTok())}, nil
	}
	inv, err := p.parseInvocation()
	if err != nil {
		return nil, err
	}
	return &ast.InvocationAction{Kind: "Invocation", Invocation: inv, Loc: loc(start, p.prevTok())}, nil
}

// ---- streams ----

func (p *parser) parseStreamExpr() (ast.Stream, error) {
	start := p.cur()
	switch {
	case p.isKeyword("monitor"):
		p.advance()
		paren := p.is(lexer.LPAREN)
		if paren {
			p.advance()
		}
		table, err := p.parseTableExpr()
		if err != nil {
			return nil, err
		}
		if paren {
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
		}
		st := &ast.MonitorStream{Kind: "Monitor", Table: table}
		if p.isKeyword("on") {
			p.advance()
			if err := p.expectKeyword("new"); err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.LPAREN); err != nil {
				return nil, err
			}
			names, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			st.OnNew = names
		}
		st.Loc = loc(start, p.prevTok())
		return p.parseStreamPostfix(st, start)
	case p.isKeyword("timer"):
		p.advance()
		if _, err := p.expect(lexer.LPAREN); err != nil {
			return nil, err
		}
		params, err := p.parseInputParamList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		st := &ast.TimerStream{Kind: "Timer"}
		for _, ip := range params {
			switch ip.Name {
			case "base":
				st.Base = ip.Value
			case "interval":
				st.Interval = ip.Value
			case "frequency":
				st.Frequency = ip.Value
			}
		}
		st.Loc = loc(start, p.prevTok())
		return p.parseStreamPostfix(st, start)
	case p.isKeyword("attimer"):
		p.advance()
		if _, err := p.expect(lexer.LPAREN); err != nil {
			return nil, err
		}
		params, err := p.parseInputParamList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		st := &ast.AtTimerStream{Kind: "AtTimer"}
		for _, ip := range params {
			switch ip.Name {
			case "time":
				if arr, ok := ip.Value.(*ast.ArrayValue); ok {
					st.Times = arr.Value
				} else {
					st.Times = []ast.Value{ip.Value}
				}
			case "expiration_date":
				st.Expiration = ip.Value
			}
		}
		st.Loc = loc(start, p.prevTok())
		return p.parseStreamPostfix(st, start)
	case p.isKeyword("edge"):
		p.advance()
		inner, err := p.parseStreamExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("on"); err != nil {
			return nil, err
		}
		if p.isKeyword("new") {
			p.advance()
			return &ast.EdgeNewStream{Kind: "EdgeNew", Stream: inner, Loc: loc(start, p.prevTok())}, nil
		}
		f, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		return &ast.EdgeFilterStream{Kind: "EdgeFilter", Stream: inner, Filter: f, Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.LBRACKET):
		names, table, err := p.parseBracketedOf()
		if err != nil {
			return nil, err
		}
		inner, ok := table.(ast.Stream)
		if !ok {
			return nil, p.errf("stream expression after 'of'")
		}
		return &ast.ProjectionStream{Kind: "Projection", Stream: inner, Names: names, Loc: loc(start, p.prevTok())}, nil
	default:
		return nil, p.errf("stream expression (monitor/timer/attimer/edge)")
	}
}

func (p *parser) parseStreamPostfix(st ast.Stream, start lexer.Token) (ast.Stream, error) {
	for {
		switch {
		case p.is(lexer.COMMA):
			p.advance()
			f, err := p.parseFilterExpr()
			if err != nil {
				return nil, err
			}
			st = &ast.FilteredStream{Kind: "Filtered", Stream: st, Filter: f, Loc: loc(start, p.prevTok())}
		case p.isKeyword("join"):
			p.advance()
			tbl, err := p.parseTableExpr()
			if err != nil {
				return nil, err
			}
			var params []*ast.InputParam
			if p.isKeyword("on") {
				p.advance()
				if _, err := p.expect(lexer.LPAREN); err != nil {
					return nil, err
				}
				params, err = p.parseInputParamList()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(lexer.RPAREN); err != nil {
					return nil, err
				}
			}
			st = &ast.JoinStream{Kind: "Join", Stream: st, Table: tbl, InParams: params, Loc: loc(start, p.prevTok())}
		case p.isKeyword("as"):
			p.advance()
			name, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			st = &ast.AliasStream{Kind: "Alias", Stream: st, Alias: name.Text, Loc: loc(start, p.prevTok())}
		default:
			return st, nil
		}
	}
}

// ---- tables ----

func (p *parser) parseTableExpr() (ast.Table, error) {
	start := p.cur()
	switch {
	case p.is(lexer.LBRACKET):
		names, table, err := p.parseBracketedOf()
		if err != nil {
			return nil, err
		}
		return &ast.ProjectionTable{Kind: "Projection", Table: table.(ast.Table), Names: names, Loc: loc(start, p.prevTok())}, nil
	case p.isKeyword("sort"):
		p.advance()
		field, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		dir := "asc"
		if p.isKeyword("asc") || p.isKeyword("desc") {
			dir = p.advance().Text
		}
		if err := p.expectKeyword("of"); err != nil {
			return nil, err
		}
		table, err := p.parseTableExpr()
		if err != nil {
			return nil, err
		}
		return &ast.SortTable{Kind: "Sort", Table: table, Field: field.Text, Direction: dir, Loc: loc(start, p.prevTok())}, nil
	case isAggregateKeyword(p):
		op := p.advance().Text
		var field, alias string
		if p.is(lexer.LPAREN) {
			p.advance()
			f, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			field = f.Text
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
		}
		if p.isKeyword("as") {
			p.advance()
			a, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			alias = a.Text
		}
		if err := p.expectKeyword("of"); err != nil {
			return nil, err
		}
		table, err := p.parseTableExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AggregationTable{Kind: "Aggregation", Table: table, Op: op, Field: field, Alias: alias, Loc: loc(start, p.prevTok())}, nil
	case p.isKeyword("compute"):
		p.advance()
		if _, err := p.expect(lexer.LPAREN); err != nil {
			return nil, err
		}
		expr, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		var alias string
		if p.isKeyword("as") {
			p.advance()
			a, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			alias = a.Text
		}
		if err := p.expectKeyword("of"); err != nil {
			return nil, err
		}
		table, err := p.parseTableExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ComputeTable{Kind: "Compute", Table: table, Expr: expr, Alias: alias, Loc: loc(start, p.prevTok())}, nil
	default:
		return p.parseTablePostfix(start)
	}
}

func isAggregateKeyword(p *parser) bool {
	if p.cur().Type != lexer.KEYWORD {
		return false
	}
	switch p.cur().Text {
	case "count", "sum", "avg", "min", "max", "argmin", "argmax":
		return true
	}
	return false
}

func (p *parser) parseTablePostfix(start lexer.Token) (ast.Table, error) {
	table, err := p.parseTableAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is(lexer.LBRACKET):
			p.advance()
			idx, isSlice, base, limit, err := p.parseIndexOrSlice()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			if isSlice {
				table = &ast.SliceTable{Kind: "Slice", Table: table, Base: base, Limit: limit, Loc: loc(start, p.prevTok())}
			} else {
				table = &ast.IndexTable{Kind: "Index", Table: table, Indices: idx, Loc: loc(start, p.prevTok())}
			}
		case p.is(lexer.COMMA):
			p.advance()
			f, err := p.parseFilterExpr()
			if err != nil {
				return nil, err
			}
			table = &ast.FilterTable{Kind: "Filter", Table: table, Filter: f, Loc: loc(start, p.prevTok())}
		case p.isKeyword("join"):
			p.advance()
			rhs, err := p.parseTableExpr()
			if err != nil {
				return nil, err
			}
			var params []*ast.InputParam
			if p.isKeyword("on") {
				p.advance()
				if _, err := p.expect(lexer.LPAREN); err != nil {
					return nil, err
				}
				params, err = p.parseInputParamList()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(lexer.RPAREN); err != nil {
					return nil, err
				}
			}
			table = &ast.JoinTable{Kind: "Join", LHS: table, RHS: rhs, InParams: params, Loc: loc(start, p.prevTok())}
		case p.isKeyword("as"):
			p.advance()
			name, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			table = &ast.AliasTable{Kind: "Alias", Table: table, Alias: name.Text, Loc: loc(start, p.prevTok())}
		default:
			return table, nil
		}
	}
}

func (p *parser) parseTableAtom() (ast.Table, error) {
	start := p.cur()
	if p.is(lexer.LPAREN) {
		p.advance()
		t, err := p.parseTableExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return t, nil
	}
	if p.isKeyword("history") {
		p.advance()
		return &ast.HistoryTable{Kind: "History", Loc: loc(start, p.prevTok())}, nil
	}
	inv, err := p.parseInvocation()
	if err != nil {
		return nil, err
	}
	return &ast.InvocationTable{Kind: "Invocation", Invocation: inv, Loc: inv.Loc}, nil
}

// parseBracketedOf parses `[ ident, ident ] of X`, shared between
// ProjectionTable and ProjectionStream since both use the same
// prefix, "of"-pivoted surface form.
func (p *parser) parseBracketedOf() ([]string, ast.Node, error) {
	if _, err := p.expect(lexer.LBRACKET); err != nil {
		return nil, nil, err
	}
	names, err := p.parseIdentList()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(lexer.RBRACKET); err != nil {
		return nil, nil, err
	}
	if err := p.expectKeyword("of"); err != nil {
		return nil, nil, err
	}
	if p.isKeyword("monitor") || p.isKeyword("timer") || p.isKeyword("attimer") || p.isKeyword("edge") {
		s, err := p.parseStreamExpr()
		return names, s, err
	}
	t, err := p.parseTableExpr()
	return names, t, err
}

// parseEntityKindName reads a namespaced entity kind, `tt:contact` or
// a bare `username`, since the lexer never joins tokens across ':'.
func (p *parser) parseEntityKindName() (string, error) {
	first, err := p.expect(lexer.IDENT)
	if err != nil {
		return "", err
	}
	if !p.is(lexer.COLON) {
		return first.Text, nil
	}
	p.advance()
	second, err := p.expect(lexer.IDENT)
	if err != nil {
		return "", err
	}
	return first.Text + ":" + second.Text, nil
}

func (p *parser) parseIdentList() ([]string, error) {
	var names []string
	first, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	names = append(names, first.Text)
	for p.is(lexer.COMMA) {
		p.advance()
		n, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		names = append(names, n.Text)
	}
	return names, nil
}

func (p *parser) parseIndexOrSlice() (indices []ast.Value, isSlice bool, base, limit ast.Value, err error) {
	if p.is(lexer.COLON) {
		p.advance()
		limit, err = p.parseValueExpr()
		return nil, true, nil, limit, err
	}
	first, err := p.parseValueExpr()
	if err != nil {
		return nil, false, nil, nil, err
	}
	if p.is(lexer.COLON) {
		p.advance()
		if p.is(lexer.RBRACKET) {
			return nil, true, first, nil, nil
		}
		limit, err = p.parseValueExpr()
		return nil, true, first, limit, err
	}
	indices = []ast.Value{first}
	for p.is(lexer.COMMA) {
		p.advance()
		v, err := p.parseValueExpr()
		if err != nil {
			return nil, false, nil, nil, err
		}
		indices = append(indices, v)
	}
	return indices, false, nil, nil, nil
}

// ---- invocation ----

func (p *parser) parseInvocation() (*ast.Invocation, error) {
	start := p.cur()
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DOT); err != nil {
		return nil, err
	}
	channel, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.InputParam
	if !p.is(lexer.RPAREN) {
		params, err = p.parseInputParamList()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Invocation{Kind: "Invocation", Selector: sel, Channel: channel.Text, InParams: params, Loc: loc(start, p.prevTok())}, nil
}

// parseSelector parses `@` followed by a dotted class kind, already
// merged by the lexer into one IDENT token (a namespaced identifier
// like com.xkcd is a single token), stopping one segment
// short so the caller can consume the trailing `.channel`.
func (p *parser) parseSelector() (*ast.Selector, error) {
	start := p.cur()
	if _, err := p.expect(lexer.AT); err != nil {
		return nil, err
	}
	full, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	// full.Text is "com.xkcd.get_comic"-shaped when the lexer greedily
	// consumed the channel too; split off the last dotted segment so
	// callers see the ".channel" DOT/IDENT pair they expect.
	kind := full.Text
	if idx := strings.LastIndex(full.Text, "."); idx >= 0 {
		kind = full.Text[:idx]
		p.pos-- // un-consume; re-synthesize remaining tokens below
		p.toks[p.pos] = lexer.Token{Type: lexer.IDENT, Text: full.Text[idx+1:], Pos: full.Pos + idx + 1, End: full.End}
		p.toks = append(p.toks[:p.pos], append([]lexer.Token{{Type: lexer.DOT, Text: ".", Pos: full.Pos + idx, End: full.Pos + idx + 1}}, p.toks[p.pos:]...)...)
	}
	sel := &ast.Selector{Kind: "Device", ClassKind: kind, Loc: loc(start, full)}
	if p.is(lexer.LBRACE) {
		p.advance()
		for !p.is(lexer.RBRACE) {
			ip, err := p.parseInputParam()
			if err != nil {
				return nil, err
			}
			sel.Attributes = append(sel.Attributes, ip)
			if p.is(lexer.COMMA) {
				p.advance()
			}
		}
		p.advance()
	}
	return sel, nil
}

func (p *parser) parseInputParamList() ([]*ast.InputParam, error) {
	var params []*ast.InputParam
	for {
		ip, err := p.parseInputParam()
		if err != nil {
			return nil, err
		}
		params = append(params, ip)
		if p.is(lexer.COMMA) {
			p.advance()
			continue
		}
		return params, nil
	}
}

func (p *parser) parseInputParam() (*ast.InputParam, error) {
	start := p.cur()
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	v, err := p.parseValueExpr()
	if err != nil {
		return nil, err
	}
	return &ast.InputParam{Kind: "InputParam", Name: name.Text, Value: v, Loc: loc(start, p.prevTok())}, nil
}

// ---- filters (boolean expressions) ----

func (p *parser) parseFilterExpr() (ast.BooleanExpression, error) { return p.parseOr() }

func (p *parser) parseOr() (ast.BooleanExpression, error) {
	start := p.cur()
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []ast.BooleanExpression{lhs}
	for p.is(lexer.OR2) || p.isKeyword("or") {
		p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, rhs)
	}
	if len(operands) == 1 {
		return lhs, nil
	}
	return ast.NewOr(loc(start, p.prevTok()), operands...), nil
}

func (p *parser) parseAnd() (ast.BooleanExpression, error) {
	start := p.cur()
	lhs, err := p.parseUnaryFilter()
	if err != nil {
		return nil, err
	}
	operands := []ast.BooleanExpression{lhs}
	for p.is(lexer.AND2) || p.isKeyword("and") {
		p.advance()
		rhs, err := p.parseUnaryFilter()
		if err != nil {
			return nil, err
		}
		operands = append(operands, rhs)
	}
	if len(operands) == 1 {
		return lhs, nil
	}
	return ast.NewAnd(loc(start, p.prevTok()), operands...), nil
}

func (p *parser) parseUnaryFilter() (ast.BooleanExpression, error) {
	start := p.cur()
	if p.isKeyword("not") {
		p.advance()
		inner, err := p.parseUnaryFilter()
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{Kind: "Not", Expr: inner, Loc: loc(start, p.prevTok())}, nil
	}
	return p.parseAtomFilter()
}

func (p *parser) parseAtomFilter() (ast.BooleanExpression, error) {
	start := p.cur()
	switch {
	case p.isKeyword("true"):
		p.advance()
		return &ast.TrueExpr{Kind: "True", Loc: loc(start, p.prevTok())}, nil
	case p.isKeyword("false"):
		p.advance()
		return &ast.FalseExpr{Kind: "False", Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.LPAREN):
		p.advance()
		f, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return f, nil
	case p.isKeyword("compute"):
		p.advance()
		if _, err := p.expect(lexer.LPAREN); err != nil {
			return nil, err
		}
		lhs, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		op, err := p.parseCmpOp()
		if err != nil {
			return nil, err
		}
		rhs, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ComputeExpr{Kind: "Compute", LHS: lhs, Op: op, RHS: rhs, Loc: loc(start, p.prevTok())}, nil
	case p.isKeyword("dontcare"):
		p.advance()
		if _, err := p.expect(lexer.LPAREN); err != nil {
			return nil, err
		}
		name, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return &ast.DontCareExpr{Kind: "DontCare", Param: name.Text, Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.AT):
		return p.parseExternalFilter(start)
	default:
		name, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		op, err := p.parseCmpOp()
		if err != nil {
			return nil, err
		}
		v, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AtomExpr{Kind: "Atom", Param: name.Text, Op: op, Value: v, Loc: loc(start, p.prevTok())}, nil
	}
}

func (p *parser) parseExternalFilter(start lexer.Token) (ast.BooleanExpression, error) {
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DOT); err != nil {
		return nil, err
	}
	channel, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.InputParam
	if !p.is(lexer.RPAREN) {
		params, err = p.parseInputParamList()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	var filter ast.BooleanExpression = &ast.TrueExpr{Kind: "True", Loc: ast.NoLoc}
	if p.is(lexer.LBRACE) {
		p.advance()
		filter, err = p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACE); err != nil {
			return nil, err
		}
	}
	return &ast.ExternalExpr{Kind: "External", Selector: sel, Channel: channel.Text, InParams: params, Filter: filter, Loc: loc(start, p.prevTok())}, nil
}

func (p *parser) parseCmpOp() (string, error) {
	switch {
	case p.is(lexer.EQ2):
		p.advance()
		return "==", nil
	case p.is(lexer.NEQ):
		p.advance()
		return "!=", nil
	case p.is(lexer.GE):
		p.advance()
		return ">=", nil
	case p.is(lexer.LE):
		p.advance()
		return "<=", nil
	case p.is(lexer.GT):
		p.advance()
		return ">", nil
	case p.is(lexer.LT):
		p.advance()
		return "<", nil
	case p.is(lexer.SUBSTR):
		p.advance()
		return "=~", nil
	case p.is(lexer.REVSUBSTR):
		p.advance()
		return "~=", nil
	case p.isKeyword("contains"):
		p.advance()
		return "contains", nil
	case p.isKeyword("in_array"):
		p.advance()
		return "in_array", nil
	case p.is(lexer.NOT_TILDE) && p.peekIsKeyword(1, "contains"):
		p.advance()
		p.advance()
		return "~contains", nil
	default:
		return "", p.errf("comparison operator")
	}
}

func (p *parser) peekIsKeyword(offset int, kw string) bool {
	i := p.pos + offset
	if i >= len(p.toks) {
		return false
	}
	return p.toks[i].Type == lexer.KEYWORD && p.toks[i].Text == kw
}

// ---- values ----

func (p *parser) parseValueExpr() (ast.Value, error) { return p.parseAdditive() }

func (p *parser) parseAdditive() (ast.Value, error) {
	start := p.cur()
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.is(lexer.PLUS) || p.is(lexer.MINUS) {
		op := p.advance().Text
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = &ast.ComputationValue{Kind: "Computation", Op: op, Operands: []ast.Value{lhs, rhs}, Loc: loc(start, p.prevTok())}
	}
	return lhs, nil
}

func (p *parser) parseMultiplicative() (ast.Value, error) {
	start := p.cur()
	lhs, err := p.parsePostfixValue()
	if err != nil {
		return nil, err
	}
	for p.is(lexer.STAR) || p.is(lexer.SLASH) {
		op := p.advance().Text
		rhs, err := p.parsePostfixValue()
		if err != nil {
			return nil, err
		}
		lhs = &ast.ComputationValue{Kind: "Computation", Op: op, Operands: []ast.Value{lhs, rhs}, Loc: loc(start, p.prevTok())}
	}
	return lhs, nil
}

func (p *parser) parsePostfixValue() (ast.Value, error) {
	start := p.cur()
	v, err := p.parseValueAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is(lexer.LBRACKET):
			p.advance()
			field, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			v = &ast.ArrayFieldValue{Kind: "ArrayField", Value: v, Field: field.Text, Loc: loc(start, p.prevTok())}
		case p.isKeyword("filter"):
			p.advance()
			if _, err := p.expect(lexer.LBRACE); err != nil {
				return nil, err
			}
			f, err := p.parseFilterExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACE); err != nil {
				return nil, err
			}
			v = &ast.FilterValue{Kind: "FilterValue", Value: v, Filter: f, Loc: loc(start, p.prevTok())}
		case p.is(lexer.CARET2):
			p.advance()
			ek, err := p.parseEntityKindName()
			if err != nil {
				return nil, err
			}
			sv, ok := v.(*ast.StringValue)
			if !ok {
				return nil, p.errf("string literal before '^^' entity cast")
			}
			ev := &ast.EntityValue{Kind: "Entity", Value: sv.Value, EntKind: ek, Loc: loc(start, p.prevTok())}
			if p.is(lexer.LPAREN) {
				p.advance()
				disp, err := p.expect(lexer.STRING)
				if err != nil {
					return nil, err
				}
				ev.Display = disp.Text
				if _, err := p.expect(lexer.RPAREN); err != nil {
					return nil, err
				}
			}
			v = ev
		default:
			return v, nil
		}
	}
}

func (p *parser) parseValueAtom() (ast.Value, error) {
	start := p.cur()
	switch {
	case p.isKeyword("true"), p.isKeyword("false"):
		b := p.advance().Text == "true"
		return &ast.BooleanValue{Kind: "Boolean", Value: b, Loc: loc(start, p.prevTok())}, nil
	case p.isKeyword("undefined"):
		p.advance()
		return &ast.UndefinedValue{Kind: "Undefined", SlotFillable: true, Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.STRING):
		s := p.advance()
		return &ast.StringValue{Kind: "String", Value: s.Text, Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.NUMBER):
		n := p.advance()
		return &ast.NumberValue{Kind: "Number", Value: n.Number, Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.MEASURE):
		n := p.advance()
		return &ast.MeasureValue{Kind: "Measure", Value: n.Number, Unit: n.Unit, Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.CURRENCY):
		n := p.advance()
		return &ast.CurrencyValue{Kind: "Currency", Value: n.Number, Unit: n.Unit, Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.MINUS):
		p.advance()
		inner, err := p.parseValueAtom()
		if err != nil {
			return nil, err
		}
		return &ast.ComputationValue{Kind: "Computation", Op: "-", Operands: []ast.Value{&ast.NumberValue{Kind: "Number", Value: 0}, inner}, Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.LBRACKET):
		p.advance()
		var vals []ast.Value
		if !p.is(lexer.RBRACKET) {
			for {
				v, err := p.parseValueExpr()
				if err != nil {
					return nil, err
				}
				vals = append(vals, v)
				if p.is(lexer.COMMA) {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.ArrayValue{Kind: "Array", Value: vals, Loc: loc(start, p.prevTok())}, nil
	case p.is(lexer.LBRACE):
		p.advance()
		obj := map[string]ast.Value{}
		if !p.is(lexer.RBRACE) {
			for {
				k, err := p.expect(lexer.IDENT)
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(lexer.COLON); err != nil {
					return nil, err
				}
				v, err := p.parseValueExpr()
				if err != nil {
					return nil, err
				}
				obj[k.Text] = v
				if p.is(lexer.COMMA) {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(lexer.RBRACE); err != nil {
			return nil, err
		}
		return &ast.ObjectValue{Kind: "Object", Value: obj, Loc: loc(start, p.prevTok())}, nil
	case p.isKeyword("new"):
		p.advance()
		ctor, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		switch ctor.Text {
		case "Date":
			return p.parseDateCtor(start)
		case "Location":
			return p.parseLocationCtor(start)
		default:
			return nil, p.errf("Date or Location constructor")
		}
	case p.is(lexer.DOLLAR):
		p.advance()
		if !p.isKeyword("context") && !p.isKeyword("event") {
			return nil, p.errf("$context or $event")
		}
		tag := p.advance()
		switch tag.Text {
		case "context":
			if _, err := p.expect(lexer.DOT); err != nil {
				return nil, err
			}
			name, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			return &ast.ContextRefValue{Kind: "ContextRef", Name: name.Text, Loc: loc(start, p.prevTok())}, nil
		case "event":
			name := ""
			if p.is(lexer.DOT) {
				p.advance()
				id, err := p.expect(lexer.IDENT)
				if err != nil {
					return nil, err
				}
				name = id.Text
			}
			return &ast.EventValue{Kind: "Event", Name: name, Loc: loc(start, p.prevTok())}, nil
		default:
			return nil, p.errf("$context or $event")
		}
	case p.is(lexer.IDENT):
		id := p.advance()
		return &ast.VarRefValue{Kind: "VarRef", Name: id.Text, Loc: loc(start, p.prevTok())}, nil
	default:
		return nil, p.errf("value literal")
	}
}

func (p *parser) parseDateCtor(start lexer.Token) (ast.Value, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var parts [3]*int
	for i := 0; i < 3; i++ {
		if p.is(lexer.NUMBER) {
			n := p.advance()
			v := int(n.Number)
			parts[i] = &v
		}
		if i < 2 {
			if _, err := p.expect(lexer.COMMA); err != nil {
				return nil, err
			}
		}
	}
	var hms [3]int
	for i := 0; i < 3 && p.is(lexer.COMMA); i++ {
		p.advance()
		n, err := p.expect(lexer.NUMBER)
		if err != nil {
			return nil, err
		}
		hms[i] = int(n.Number)
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if parts[0] != nil && parts[1] != nil && parts[2] != nil {
		return &ast.DateValue{Kind: "Date", Value: &ast.AbsDate{Year: *parts[0], Month: *parts[1], Day: *parts[2], Hour: hms[0], Minute: hms[1], Second: hms[2]}, Loc: loc(start, p.prevTok())}, nil
	}
	return &ast.DateValue{Kind: "Date", Piece: &ast.DatePiece{Year: parts[0], Month: parts[1], Day: parts[2]}, Loc: loc(start, p.prevTok())}, nil
}

func (p *parser) parseLocationCtor(start lexer.Token) (ast.Value, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	lat, err := p.expect(lexer.NUMBER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COMMA); err != nil {
		return nil, err
	}
	lon, err := p.expect(lexer.NUMBER)
	if err != nil {
		return nil, err
	}
	var display string
	if p.is(lexer.COMMA) {
		p.advance()
		d, err := p.expect(lexer.STRING)
		if err != nil {
			return nil, err
		}
		display = d.Text
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &ast.LocationValue{Kind: "Location", Latitude: lat.Number, Longitude: lon.Number, Display: display, Loc: loc(start, p.prevTok())}, nil
}

// ---- permission rules ----

func (p *parser) parsePermissionRule() (*ast.PermissionRule, error) {
	start := p.cur()
	principal, err := p.parseFilterExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	query, err := p.parsePermFunc()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ARROW); err != nil {
		return nil, err
	}
	action, err := p.parsePermFunc()
	if err != nil {
		return nil, err
	}
	p.expectSemi()
	return &ast.PermissionRule{Kind: "Permission", Principal: principal, Query: query, Action: action, Loc: loc(start, p.prevTok())}, nil
}

func (p *parser) parsePermFunc() (ast.PermissionFunction, error) {
	switch {
	case p.is(lexer.STAR):
		p.advance()
		return ast.PermissionFunction{Star: true}, nil
	case p.isKeyword("now") || p.isKeyword("notify"):
		p.advance()
		return ast.PermissionFunction{Builtin: true}, nil
	default:
		sel, err := p.parseSelector()
		if err != nil {
			return ast.PermissionFunction{}, err
		}
		if _, err := p.expect(lexer.DOT); err != nil {
			return ast.PermissionFunction{}, err
		}
		channel, err := p.expect(lexer.IDENT)
		if err != nil {
			return ast.PermissionFunction{}, err
		}
		var params []*ast.InputParam
		if p.is(lexer.LPAREN) {
			p.advance()
			if !p.is(lexer.RPAREN) {
				params, err = p.parseInputParamList()
				if err != nil {
					return ast.PermissionFunction{}, err
				}
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return ast.PermissionFunction{}, err
			}
		}
		var filter ast.BooleanExpression = &ast.TrueExpr{Kind: "True", Loc: ast.NoLoc}
		if p.is(lexer.LBRACE) {
			p.advance()
			filter, err = p.parseFilterExpr()
			if err != nil {
				return ast.PermissionFunction{}, err
			}
			if _, err := p.expect(lexer.RBRACE); err != nil {
				return ast.PermissionFunction{}, err
			}
		}
		return ast.PermissionFunction{Selector: sel, Channel: channel.Text, InParams: params, Filter: filter}, nil
	}
}

// ---- declarations, classes ----

func (p *parser) parseDeclarationStatement() (*ast.DeclarationStatement, error) {
	start := p.cur()
	if err := p.expectKeyword("let"); err != nil {
		return nil, err
	}
	declType := p.advance().Text // query|action|stream|program
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	var args []*ast.InputParam
	if p.is(lexer.LPAREN) {
		p.advance()
		if !p.is(lexer.RPAREN) {
			for {
				an, err := p.expect(lexer.IDENT)
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(lexer.COLON); err != nil {
					return nil, err
				}
				_, err = p.parseTypeExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, &ast.InputParam{Kind: "InputParam", Name: an.Text, Loc: loc(an, an)})
				if p.is(lexer.COMMA) {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.WALRUS); err != nil {
		return nil, err
	}
	var value ast.Node
	switch declType {
	case "query", "action":
		value, err = p.parseTableExpr()
	case "stream":
		value, err = p.parseStreamExpr()
	default:
		value, err = p.parseProgram()
	}
	if err != nil {
		return nil, err
	}
	if err := p.expectSemi(); err != nil {
		return nil, err
	}
	return &ast.DeclarationStatement{Kind: "Declaration", Name: name.Text, DeclType: declType, Args: args, Value: value, Loc: loc(start, p.prevTok())}, nil
}

func (p *parser) parseClassDef() (*ast.ClassDef, error) {
	start := p.cur()
	if err := p.expectKeyword("class"); err != nil {
		return nil, err
	}
	sel, err := p.parseBareClassName()
	if err != nil {
		return nil, err
	}
	cls := &ast.ClassDef{Kind: "Class", Name: sel, Queries: map[string]*ast.FunctionDef{}, Actions: map[string]*ast.FunctionDef{}}
	if p.isKeyword("extends") {
		p.advance()
		names, err := p.parseSelectorNameList()
		if err != nil {
			return nil, err
		}
		cls.Extends = names
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	for !p.is(lexer.RBRACE) {
		kindOf := p.advance().Text // "query" | "action"
		fname, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		fd, err := p.parseFunctionParams(kindOf, sel, fname.Text)
		if err != nil {
			return nil, err
		}
		if p.is(lexer.SEMI) {
			p.advance()
		}
		if kindOf == "query" {
			cls.Queries[fname.Text] = fd
		} else {
			cls.Actions[fname.Text] = fd
		}
	}
	p.advance() // '}'
	cls.Loc = loc(start, p.prevTok())
	return cls, nil
}

func (p *parser) parseBareClassName() (string, error) {
	if p.is(lexer.AT) {
		p.advance()
	}
	id, err := p.expect(lexer.IDENT)
	if err != nil {
		return "", err
	}
	return id.Text, nil
}

func (p *parser) parseSelectorNameList() ([]string, error) {
	var out []string
	for {
		n, err := p.parseBareClassName()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		if p.is(lexer.COMMA) {
			p.advance()
			continue
		}
		return out, nil
	}
}

func (p *parser) parseFunctionParams(kindOf, class, name string) (*ast.FunctionDef, error) {
	fd := &ast.FunctionDef{Kind: kindOf, Class: class, Name: name, Annotations: map[string]string{}}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	for !p.is(lexer.RPAREN) {
		isInput := true
		required := false
		if p.isKeyword("out") {
			p.advance()
			isInput = false
		} else if p.isKeyword("in") {
			p.advance()
			if p.isKeyword("req") {
				p.advance()
				required = true
			} else if p.isKeyword("opt") {
				p.advance()
			}
		}
		pname, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		fd.Params = append(fd.Params, ast.FunctionParam{Name: pname.Text, Type: typ, IsInput: isInput, Required: required})
		if p.is(lexer.COMMA) {
			p.advance()
			continue
		}
	}
	p.advance() // ')'
	for p.is(lexer.KEYWORD) && (p.cur().Text == "monitorable" || p.cur().Text == "list") {
		if p.cur().Text == "monitorable" {
			fd.IsMonitorable = true
		} else {
			fd.IsList = true
		}
		p.advance()
	}
	return fd, nil
}

// parseTypeExpr parses a schema type annotation into a types.Type.
func (p *parser) parseTypeExpr() (types.Type, error) {
	if p.is(lexer.IDENT) {
		name := p.advance().Text
		switch name {
		case "String":
			return types.String, nil
		case "Number":
			return types.Number, nil
		case "Boolean":
			return types.Boolean, nil
		case "Date":
			return types.Date, nil
		case "Time":
			return types.Time, nil
		case "Location":
			return types.Location, nil
		case "Currency":
			return types.Currency, nil
		case "RecurrentTimeSpecification":
			return types.RecurrentTimeSpecification, nil
		case "Any":
			return types.Any, nil
		case "Array":
			if _, err := p.expect(lexer.LPAREN); err != nil {
				return nil, err
			}
			elem, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			return types.Array{Elem: elem}, nil
		case "Entity":
			if _, err := p.expect(lexer.LPAREN); err != nil {
				return nil, err
			}
			kind, err := p.parseEntityKindName()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			return types.Entity{Kind: kind}, nil
		case "Enum":
			if _, err := p.expect(lexer.LPAREN); err != nil {
				return nil, err
			}
			choices, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			return types.Enum{Choices: choices}, nil
		case "Measure":
			if _, err := p.expect(lexer.LPAREN); err != nil {
				return nil, err
			}
			unit, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			return types.Measure{BaseUnit: unit.Text}, nil
		default:
			// An unrecognized bare identifier in type position names a
			// user-declared entity kind lacking its "ns:" prefix, or a
			// class-local one; treat it as an Entity kind name.
			return types.Entity{Kind: name}, nil
		}
	}
	if p.is(lexer.LBRACE) {
		p.advance()
		var fields []types.CompoundField
		for !p.is(lexer.RBRACE) {
			fname, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.COLON); err != nil {
				return nil, err
			}
			ftype, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			fields = append(fields, types.CompoundField{Name: fname.Text, Type: ftype, Required: true})
			if p.is(lexer.COMMA) {
				p.advance()
			}
		}
		p.advance()
		return types.Compound{Fields: fields}, nil
	}
	return nil, p.errf("type expression")
}
