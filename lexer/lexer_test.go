package lexer

import "testing"

func TestTokenizeBasic(t *testing.T) {
	toks, err := New(`now => @com.xkcd.get_comic() => notify;`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenType{KEYWORD, ARROW, AT, IDENT, LPAREN, RPAREN, ARROW, KEYWORD, SEMI, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %v, want %v (%q)", i, toks[i].Type, tt, toks[i].Text)
		}
	}
}

func TestTokenizeMeasureAndCurrency(t *testing.T) {
	toks, err := New(`5kWh $12.50 12$usd`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Type != MEASURE || toks[0].Number != 5 || toks[0].Unit != "kWh" {
		t.Errorf("measure token wrong: %+v", toks[0])
	}
	if toks[1].Type != CURRENCY || toks[1].Number != 12.5 {
		t.Errorf("currency token wrong: %+v", toks[1])
	}
	if toks[2].Type != CURRENCY || toks[2].Number != 12 || toks[2].Unit != "usd" {
		t.Errorf("currency shorthand token wrong: %+v", toks[2])
	}
}

func TestTokenizeString(t *testing.T) {
	toks, err := New(`"hello \"world\""`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Type != STRING || toks[0].Text != `hello "world"` {
		t.Errorf("string token wrong: %+v", toks[0])
	}
}

func TestReservedIdentifierRejected(t *testing.T) {
	_, err := New(`__foo`).Tokenize()
	if err == nil {
		t.Fatal("expected LexicalError for reserved identifier")
	}
	if _, ok := err.(*LexicalError); !ok {
		t.Fatalf("expected *LexicalError, got %T", err)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, err := New(`"unterminated`).Tokenize()
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestComments(t *testing.T) {
	toks, err := New("now // trailing comment\n/* block */ notify").Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 3 || toks[0].Type != KEYWORD || toks[1].Type != KEYWORD || toks[2].Type != EOF {
		t.Fatalf("comments not skipped correctly: %v", toks)
	}
}
