package parser

import (
	"testing"

	"nilanc/lexer"
	"nilanc/token"
)

func newBuffer(src string) *Buffer {
	return New(lexer.New(src))
}

func TestBufferPeekDoesNotConsume(t *testing.T) {
	b := newBuffer("let x")
	first, err := b.Peek()
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if first.Kind != token.LET || second.Kind != token.LET {
		t.Fatalf("Peek() = %v, %v, want LET twice", first.Kind, second.Kind)
	}
}

func TestBufferNextAdvances(t *testing.T) {
	b := newBuffer("let x")
	first, err := b.Next()
	if err != nil {
		t.Fatal(err)
	}
	if first.Kind != token.LET {
		t.Fatalf("Next() = %v, want LET", first.Kind)
	}
	second, err := b.Next()
	if err != nil {
		t.Fatal(err)
	}
	if second.Kind != token.IDENT {
		t.Fatalf("Next() = %v, want IDENT", second.Kind)
	}
}

func TestBufferAcceptMatch(t *testing.T) {
	b := newBuffer("let")
	tok, ok, err := b.Accept(token.LET)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || tok.Kind != token.LET {
		t.Fatalf("Accept(LET) = %v, %v", tok, ok)
	}
}

func TestBufferAcceptMismatchLeavesBufferUntouched(t *testing.T) {
	b := newBuffer("const")
	_, ok, err := b.Accept(token.LET)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("Accept(LET) matched a CONST token")
	}
	tok, err := b.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != token.CONST {
		t.Fatalf("buffer state after failed Accept: got %v, want CONST", tok.Kind)
	}
}

func TestBufferExpectError(t *testing.T) {
	b := newBuffer("const")
	if _, err := b.Expect(token.LET); err == nil {
		t.Fatal("expected an error when the next token doesn't match")
	}
}

func TestBufferLastPos(t *testing.T) {
	b := newBuffer("let x")
	if _, err := b.Next(); err != nil {
		t.Fatal(err)
	}
	if b.LastPos().Col == 0 {
		t.Fatal("LastPos() did not advance after Next()")
	}
}
