package nnsyntax

import (
	"strings"
	"testing"

	"github.com/stanford-oval/thingtalk-go/ast"
	"github.com/stanford-oval/thingtalk-go/parser"
)

func TestEncodeDecodeRoundTripInvocation(t *testing.T) {
	prog, err := parser.ParseProgram(`now => @com.xkcd.get_comic(number=42) => notify;`)
	if err != nil {
		t.Fatal(err)
	}
	tokens, dict, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, ok := dict["NUMBER_0"]; !ok {
		t.Fatalf("want NUMBER_0 in entity dict, got %v", dict)
	}
	decoded, err := Decode(tokens, dict)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, ok := decoded.(*ast.Program)
	if !ok {
		t.Fatalf("want *ast.Program, got %T", decoded)
	}
	cmd, ok := out.Statements[0].(*ast.CommandStatement)
	if !ok {
		t.Fatalf("want CommandStatement, got %T", out.Statements[0])
	}
	invTable, ok := cmd.Table.(*ast.InvocationTable)
	if !ok {
		t.Fatalf("want InvocationTable, got %T", cmd.Table)
	}
	if invTable.Invocation.Selector.ClassKind != "com.xkcd" || invTable.Invocation.Channel != "get_comic" {
		t.Fatalf("wrong invocation: %+v", invTable.Invocation)
	}
	if len(invTable.Invocation.InParams) != 1 {
		t.Fatalf("want 1 in-param, got %d", len(invTable.Invocation.InParams))
	}
	num, ok := invTable.Invocation.InParams[0].Value.(*ast.NumberValue)
	if !ok || num.Value != 42 {
		t.Fatalf("want number 42, got %#v", invTable.Invocation.InParams[0].Value)
	}
	if len(cmd.Actions) != 1 {
		t.Fatalf("want 1 action, got %d", len(cmd.Actions))
	}
	notify, ok := cmd.Actions[0].(*ast.NotifyAction)
	if !ok || notify.Name != "notify" {
		t.Fatalf("want notify action, got %#v", cmd.Actions[0])
	}
}

func TestEncodeDecodeRoundTripFilter(t *testing.T) {
	prog, err := parser.ParseProgram(`now => @com.gmail.inbox(), labels == "work" => notify;`)
	if err != nil {
		t.Fatal(err)
	}
	tokens, dict, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(tokens, dict)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out := decoded.(*ast.Program)
	cmd := out.Statements[0].(*ast.CommandStatement)
	ft, ok := cmd.Table.(*ast.FilterTable)
	if !ok {
		t.Fatalf("want FilterTable, got %T", cmd.Table)
	}
	atom, ok := ft.Filter.(*ast.AtomExpr)
	if !ok || atom.Param != "labels" || atom.Op != "==" {
		t.Fatalf("want labels == atom, got %#v", ft.Filter)
	}
}

func TestEncodeDecodeRoundTripPermissionRule(t *testing.T) {
	pr, err := parser.ParsePermissionRule(`true : @com.twitter.home_timeline() { author == "bob"^^tt:username } => *;`)
	if err != nil {
		t.Fatal(err)
	}
	tokens, dict, err := Encode(pr, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(tokens, dict)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, ok := decoded.(*ast.PermissionRule)
	if !ok {
		t.Fatalf("want *ast.PermissionRule, got %T", decoded)
	}
	if out.Query.Star || out.Query.Builtin {
		t.Fatalf("want concrete query function, got %+v", out.Query)
	}
	if out.Query.Channel != "home_timeline" {
		t.Fatalf("want home_timeline channel, got %s", out.Query.Channel)
	}
	if !out.Action.Star {
		t.Fatalf("want wildcard action, got %+v", out.Action)
	}
}

func TestConsecutiveAllocationReusesPlaceholder(t *testing.T) {
	prog, err := parser.ParseProgram(`now => @com.gmail.inbox(), labels == "work" || labels == "work" => notify;`)
	if err != nil {
		t.Fatal(err)
	}
	_, dict, err := Encode(prog, Options{Mode: Consecutive})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(dict) != 1 {
		t.Fatalf("want a single reused placeholder under Consecutive, got %d entries: %v", len(dict), dict)
	}
}

func TestDefaultMatcherFindsNormalizedSpan(t *testing.T) {
	start, end, ok := DefaultMatcher.Match("Book a table at Chez Panisse tonight", "chez panisse")
	if !ok {
		t.Fatal("want a match")
	}
	if end <= start {
		t.Fatalf("want a non-empty span, got [%d,%d)", start, end)
	}
}

func TestDefaultMatcherRejectsUnrelatedLiteral(t *testing.T) {
	if _, _, ok := (&defaultMatcher{MaxErrorRate: 0.2}).Match("play some jazz music", "quantum entanglement"); ok {
		t.Fatal("want no match for an unrelated literal")
	}
}

func TestUpgradeLegacyRewritesArgmax(t *testing.T) {
	got := UpgradeLegacy("now => argmax => notify", "")
	want := "now => sort desc index 0 => notify"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestGroundDateMatchesFreeText(t *testing.T) {
	d := &ast.AbsDate{Year: 2026, Month: 3, Day: 5}
	if !groundDate("remind me on March 5, 2026 to call mom", d) {
		t.Fatal("want a match against a spelled-out date")
	}
	if !groundDate("due 2026-03-05", d) {
		t.Fatal("want a match against an ISO date")
	}
	if groundDate("remind me tomorrow", d) {
		t.Fatal("want no match against unrelated free text")
	}
}

func dateProgram(d *ast.AbsDate) *ast.Program {
	inv := &ast.Invocation{
		Kind:     "Invocation",
		Selector: &ast.Selector{Kind: "Device", ClassKind: "org.thingpedia.builtin.thingengine.builtin"},
		Channel:  "say",
		InParams: []*ast.InputParam{
			{Kind: "InputParam", Name: "when", Value: &ast.DateValue{Kind: "Date", Value: d}},
		},
	}
	return &ast.Program{Kind: "Program", Statements: []ast.Statement{
		&ast.CommandStatement{
			Kind:    "Command",
			Table:   &ast.InvocationTable{Kind: "Invocation", Invocation: inv},
			Actions: []ast.Action{&ast.NotifyAction{Kind: "Notify", Name: "notify"}},
		},
	}}
}

func TestEncodeRequireGroundingRejectsUngroundedDate(t *testing.T) {
	prog := dateProgram(&ast.AbsDate{Year: 2026, Month: 3, Day: 5})
	_, _, err := Encode(prog, Options{RequireGrounding: true, Sentence: "say hi"})
	if err == nil {
		t.Fatal("want an UnmatchedLiteral error for an ungrounded date")
	}
}

func TestEncodeDecodeRoundTripStructuralDate(t *testing.T) {
	prog := dateProgram(&ast.AbsDate{Year: 2026, Month: 3, Day: 5})
	tokens, dict, err := Encode(prog, Options{RequireGrounding: true, Sentence: "say hi on March 5, 2026"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(tokens, "new Date ( 2026 , 3 , 5 )") {
		t.Fatalf("want a structural date literal in the token stream, got %q", tokens)
	}
	for tok := range dict {
		if strings.HasPrefix(tok, "DATE_") {
			t.Fatalf("date literal should not be allocated an opaque placeholder, got %s in dict", tok)
		}
	}
	decoded, err := Decode(tokens, dict)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out := decoded.(*ast.Program)
	cmd := out.Statements[0].(*ast.CommandStatement)
	inv := cmd.Table.(*ast.InvocationTable).Invocation
	dv, ok := inv.InParams[0].Value.(*ast.DateValue)
	if !ok || dv.Value == nil {
		t.Fatalf("want a decoded DateValue, got %#v", inv.InParams[0].Value)
	}
	if dv.Value.Year != 2026 || dv.Value.Month != 3 || dv.Value.Day != 5 {
		t.Fatalf("want 2026-03-05, got %+v", dv.Value)
	}
}

func TestEncodeDecodeRoundTripSortSlice(t *testing.T) {
	inv := &ast.Invocation{
		Kind:     "Invocation",
		Selector: &ast.Selector{Kind: "Device", ClassKind: "com.twitter"},
		Channel:  "home_timeline",
	}
	table := ast.Table(&ast.InvocationTable{Kind: "Invocation", Invocation: inv})
	sorted := &ast.SortTable{Kind: "Sort", Table: table, Field: "date", Direction: "desc"}
	sliced := &ast.SliceTable{
		Kind:  "Slice",
		Table: sorted,
		Base:  &ast.NumberValue{Kind: "Number", Value: 1},
		Limit: &ast.NumberValue{Kind: "Number", Value: 5},
	}
	prog := &ast.Program{Kind: "Program", Statements: []ast.Statement{
		&ast.CommandStatement{Kind: "Command", Table: sliced, Actions: []ast.Action{&ast.NotifyAction{Kind: "Notify", Name: "notify"}}},
	}}
	tokens, dict, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(tokens, dict)
	if err != nil {
		t.Fatalf("Decode(%q): %v", tokens, err)
	}
	out := decoded.(*ast.Program)
	cmd := out.Statements[0].(*ast.CommandStatement)
	sl, ok := cmd.Table.(*ast.SliceTable)
	if !ok {
		t.Fatalf("want SliceTable, got %T", cmd.Table)
	}
	st, ok := sl.Table.(*ast.SortTable)
	if !ok || st.Field != "date" || st.Direction != "desc" {
		t.Fatalf("want Sort(date, desc), got %#v", sl.Table)
	}
}
