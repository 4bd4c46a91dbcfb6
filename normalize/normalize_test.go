package normalize

import (
	"testing"

	"github.com/stanford-oval/thingtalk-go/ast"
	"github.com/stanford-oval/thingtalk-go/parser"
)

func TestFilterOrToInArray(t *testing.T) {
	f, err := parser.ParseProgram(`now => @com.gmail.inbox(), labels == "a" || labels == "b" => notify;`)
	if err != nil {
		t.Fatal(err)
	}
	out := Program(f)
	cmd := out.Statements[0].(*ast.CommandStatement)
	ft, ok := cmd.Table.(*ast.FilterTable)
	if !ok {
		t.Fatalf("want FilterTable, got %T", cmd.Table)
	}
	// a single fused literal collapses out of its trivial 1-clause,
	// 1-literal And(Or(...)) wrapper (NewAnd/NewOr both flatten
	// singletons), leaving the bare in_array atom.
	atom, ok := ft.Filter.(*ast.AtomExpr)
	if !ok || atom.Op != "in_array" {
		t.Fatalf("want a single in_array atom, got %#v", ft.Filter)
	}
	arr, ok := atom.Value.(*ast.ArrayValue)
	if !ok || len(arr.Value) != 2 {
		t.Fatalf("want a 2-element array value, got %#v", atom.Value)
	}
}

func TestFilterIdempotent(t *testing.T) {
	f, err := parser.ParseProgram(`now => @com.gmail.inbox(), labels == "a" || labels == "b" => notify;`)
	if err != nil {
		t.Fatal(err)
	}
	once := Program(f)
	twice := Program(once)
	cmd1 := once.Statements[0].(*ast.CommandStatement).Table.(*ast.FilterTable)
	cmd2 := twice.Statements[0].(*ast.CommandStatement).Table.(*ast.FilterTable)
	if literalKey(cmd1.Filter) != literalKey(cmd2.Filter) {
		t.Fatalf("normalization not idempotent:\n%s\nvs\n%s", literalKey(cmd1.Filter), literalKey(cmd2.Filter))
	}
}

func TestSortSliceReordersToSortThenSlice(t *testing.T) {
	prog, err := parser.ParseProgram(`now => sort file_size asc of @com.google.drive.list_drive_files()[1:5] => notify;`)
	if err != nil {
		t.Fatal(err)
	}
	out := Program(prog)
	cmd := out.Statements[0].(*ast.CommandStatement)
	slice, ok := cmd.Table.(*ast.SliceTable)
	if !ok {
		t.Fatalf("want outermost SliceTable, got %T", cmd.Table)
	}
	if _, ok := slice.Table.(*ast.SortTable); !ok {
		t.Fatalf("want Sort nested inside Slice, got %T", slice.Table)
	}
}

func TestAndOperandsSortedAndDeduped(t *testing.T) {
	f, err := parser.ParseProgram(`now => @com.xkcd.get_comic(), title == "b" && title == "b" && number == 1 => notify;`)
	if err != nil {
		t.Fatal(err)
	}
	out := Program(f)
	ft := out.Statements[0].(*ast.CommandStatement).Table.(*ast.FilterTable)
	and, ok := ft.Filter.(*ast.AndExpr)
	if !ok {
		t.Fatalf("want AndExpr of two distinct clauses, got %T", ft.Filter)
	}
	if len(and.Operands) != 2 {
		t.Fatalf("want dedup of duplicate title==\"b\" clause, got %d operands: %v", len(and.Operands), and.Operands)
	}
}
