package printer

import (
	"testing"

	"github.com/stanford-oval/thingtalk-go/ast"
	"github.com/stanford-oval/thingtalk-go/parser"
)

func TestProgramRoundTripsInvocation(t *testing.T) {
	src := `now => @com.xkcd.get_comic(number=42) => notify;`
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatal(err)
	}
	out := Program(prog)
	reparsed, err := parser.ParseProgram(out)
	if err != nil {
		t.Fatalf("re-parse of printed output failed: %v\noutput:\n%s", err, out)
	}
	cmd, ok := reparsed.Statements[0].(*ast.CommandStatement)
	if !ok {
		t.Fatalf("want CommandStatement, got %T", reparsed.Statements[0])
	}
	invTable := cmd.Table.(*ast.InvocationTable)
	if invTable.Invocation.Channel != "get_comic" {
		t.Fatalf("wrong channel after round trip: %s", invTable.Invocation.Channel)
	}
}

func TestProgramRoundTripsFilter(t *testing.T) {
	src := `now => @com.gmail.inbox(), labels == "work" => notify;`
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatal(err)
	}
	out := Program(prog)
	reparsed, err := parser.ParseProgram(out)
	if err != nil {
		t.Fatalf("re-parse failed: %v\noutput:\n%s", err, out)
	}
	ft := reparsed.Statements[0].(*ast.CommandStatement).Table.(*ast.FilterTable)
	atom := ft.Filter.(*ast.AtomExpr)
	if atom.Param != "labels" || atom.Op != "==" {
		t.Fatalf("wrong filter after round trip: %+v", atom)
	}
}

func TestProgramRoundTripsSortSlice(t *testing.T) {
	src := `now => sort file_size asc of @com.google.drive.list_drive_files()[1:5] => notify;`
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatal(err)
	}
	out := Program(prog)
	if _, err := parser.ParseProgram(out); err != nil {
		t.Fatalf("re-parse failed: %v\noutput:\n%s", err, out)
	}
}

func TestPermissionRuleRoundTrips(t *testing.T) {
	src := `true : @com.twitter.home_timeline() { author == "bob"^^tt:username } => *;`
	pr, err := parser.ParsePermissionRule(src)
	if err != nil {
		t.Fatal(err)
	}
	out := PermissionRule(pr)
	reparsed, err := parser.ParsePermissionRule(out)
	if err != nil {
		t.Fatalf("re-parse failed: %v\noutput:\n%s", err, out)
	}
	if !reparsed.Action.Star {
		t.Fatalf("want wildcard action after round trip, got %+v", reparsed.Action)
	}
	if reparsed.Query.Channel != "home_timeline" {
		t.Fatalf("wrong query channel after round trip: %s", reparsed.Query.Channel)
	}
}
