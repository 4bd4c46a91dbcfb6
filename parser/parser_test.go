package parser

import (
	"testing"

	"github.com/stanford-oval/thingtalk-go/ast"
)

func TestParseSimpleCommand(t *testing.T) {
	prog, err := ParseProgram(`now => @com.xkcd.get_comic(number=42) => notify;`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("want 1 statement, got %d", len(prog.Statements))
	}
	cmd, ok := prog.Statements[0].(*ast.CommandStatement)
	if !ok {
		t.Fatalf("want CommandStatement, got %T", prog.Statements[0])
	}
	inv, ok := cmd.Table.(*ast.InvocationTable)
	if !ok {
		t.Fatalf("want InvocationTable, got %T", cmd.Table)
	}
	if inv.Invocation.Selector.ClassKind != "com.xkcd" || inv.Invocation.Channel != "get_comic" {
		t.Errorf("got selector %+v channel %q", inv.Invocation.Selector, inv.Invocation.Channel)
	}
	if len(inv.Invocation.InParams) != 1 || inv.Invocation.InParams[0].Name != "number" {
		t.Errorf("unexpected in_params: %+v", inv.Invocation.InParams)
	}
	if len(cmd.Actions) != 1 {
		t.Fatalf("want 1 action")
	}
	if _, ok := cmd.Actions[0].(*ast.NotifyAction); !ok {
		t.Errorf("want NotifyAction, got %T", cmd.Actions[0])
	}
}

func TestParseMonitorRule(t *testing.T) {
	prog, err := ParseProgram(`monitor @com.twitter.home_timeline() => @com.twitter.post(status=text);`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	rule, ok := prog.Statements[0].(*ast.RuleStatement)
	if !ok {
		t.Fatalf("want RuleStatement, got %T", prog.Statements[0])
	}
	if _, ok := rule.Stream.(*ast.MonitorStream); !ok {
		t.Errorf("want MonitorStream, got %T", rule.Stream)
	}
	act, ok := rule.Actions[0].(*ast.InvocationAction)
	if !ok {
		t.Fatalf("want InvocationAction, got %T", rule.Actions[0])
	}
	if act.Invocation.Channel != "post" {
		t.Errorf("got channel %q", act.Invocation.Channel)
	}
}

func TestParseOrFilter(t *testing.T) {
	prog, err := ParseProgram(`now => @com.gmail.inbox(), labels == "a" || labels == "b" => notify;`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	cmd := prog.Statements[0].(*ast.CommandStatement)
	ft, ok := cmd.Table.(*ast.FilterTable)
	if !ok {
		t.Fatalf("want FilterTable, got %T", cmd.Table)
	}
	if _, ok := ft.Filter.(*ast.OrExpr); !ok {
		t.Errorf("want OrExpr, got %T", ft.Filter)
	}
}

func TestParseSortAndSlice(t *testing.T) {
	prog, err := ParseProgram(`now => sort file_size asc of @com.google.drive.list_drive_files()[1:5] => notify;`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	cmd := prog.Statements[0].(*ast.CommandStatement)
	sort, ok := cmd.Table.(*ast.SortTable)
	if !ok {
		t.Fatalf("want SortTable, got %T", cmd.Table)
	}
	if sort.Field != "file_size" || sort.Direction != "asc" {
		t.Errorf("unexpected sort: %+v", sort)
	}
	if _, ok := sort.Table.(*ast.SliceTable); !ok {
		t.Errorf("want SliceTable inside sort, got %T", sort.Table)
	}
}

func TestParsePermissionRule(t *testing.T) {
	rule, err := ParsePermissionRule(`true : now => @com.twitter.post => *;`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, ok := rule.Principal.(*ast.TrueExpr); !ok {
		t.Errorf("want TrueExpr principal, got %T", rule.Principal)
	}
	if !rule.Query.Builtin {
		t.Errorf("want Builtin query")
	}
	if !rule.Action.Star {
		t.Errorf("want Star action")
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := ParseProgram(`now @com.xkcd.get_comic() => notify;`)
	if err == nil {
		t.Fatal("expected syntax error for missing '=>' after now")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
}
