package lexer

import (
	"math"
	"testing"

	"nilanc/token"
)

func scanAll(t *testing.T, input string) []token.Token {
	t.Helper()
	lex := New(input)
	var toks []token.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestIdentifiersAndKeywords(t *testing.T) {
	toks := scanAll(t, "fn main foo_bar1")
	want := []token.Kind{token.FN, token.IDENT, token.IDENT, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[1].Value != "main" {
		t.Errorf("identifier value: got %v, want main", toks[1].Value)
	}
}

func TestCaseSensitiveKeywords(t *testing.T) {
	toks := scanAll(t, "FN If")
	if toks[0].Kind != token.IDENT || toks[1].Kind != token.IDENT {
		t.Errorf("expected case-sensitive keyword matching to yield IDENT, got %s %s", toks[0].Kind, toks[1].Kind)
	}
}

func TestUintLiteral(t *testing.T) {
	toks := scanAll(t, "42")
	if toks[0].Kind != token.UINT_LITERAL || toks[0].Value.(uint64) != 42 {
		t.Errorf("got %+v", toks[0])
	}
}

func TestDoubleLiteral(t *testing.T) {
	toks := scanAll(t, "1.5e2")
	if toks[0].Kind != token.DOUBLE_LITERAL {
		t.Fatalf("got kind %s", toks[0].Kind)
	}
	bits := toks[0].Value.(uint64)
	if math.Float64frombits(bits) != 150.0 {
		t.Errorf("got %v, want 150.0", math.Float64frombits(bits))
	}
}

func TestStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb\"c"`)
	if toks[0].Kind != token.STRING_LITERAL {
		t.Fatalf("got kind %s", toks[0].Kind)
	}
	if toks[0].Value.(string) != "a\nb\"c" {
		t.Errorf("got %q", toks[0].Value)
	}
}

func TestUnterminatedString(t *testing.T) {
	lex := New(`"abc`)
	_, err := lex.Next()
	if err == nil {
		t.Fatal("expected an error for unterminated string")
	}
}

func TestCharLiteral(t *testing.T) {
	toks := scanAll(t, `'a' '\n'`)
	if toks[0].Value.(uint64) != uint64('a') {
		t.Errorf("got %v", toks[0].Value)
	}
	if toks[1].Value.(uint64) != uint64('\n') {
		t.Errorf("got %v", toks[1].Value)
	}
}

func TestLineComment(t *testing.T) {
	toks := scanAll(t, "let x = 1 // trailing comment\n;")
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []token.Kind{token.LET, token.IDENT, token.ASSIGN, token.UINT_LITERAL, token.SEMI, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	toks := scanAll(t, "-> == != <= >=")
	want := []token.Kind{token.ARROW, token.EQ, token.NEQ, token.LE, token.GE, token.EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestBangIsAnError(t *testing.T) {
	lex := New("!")
	_, err := lex.Next()
	if err == nil {
		t.Fatal("expected bare '!' to be an error")
	}
}

func TestPositionsAreOneBased(t *testing.T) {
	toks := scanAll(t, "fn\nmain")
	if toks[0].Start.Line != 1 || toks[0].Start.Col != 1 {
		t.Errorf("got %v", toks[0].Start)
	}
	if toks[1].Start.Line != 2 || toks[1].Start.Col != 1 {
		t.Errorf("got %v", toks[1].Start)
	}
}
