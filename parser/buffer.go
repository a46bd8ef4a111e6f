// Package parser provides the one-token-lookahead buffer the analyzer
// drives the lexer through.
package parser

import (
	"nilanc/compileerr"
	"nilanc/lexer"
	"nilanc/token"
)

// Buffer caches a single token of lookahead over a lexer.Lexer.
type Buffer struct {
	lex     *lexer.Lexer
	cached  *token.Token
	lastPos token.Position
}

// New wraps a lexer in a one-token-lookahead Buffer.
func New(lex *lexer.Lexer) *Buffer {
	return &Buffer{lex: lex}
}

// Peek returns the next token without consuming it, reading from the
// lexer and caching on a miss.
func (b *Buffer) Peek() (token.Token, error) {
	if b.cached == nil {
		tok, err := b.lex.Next()
		if err != nil {
			return token.Token{}, err
		}
		b.cached = &tok
	}
	return *b.cached, nil
}

// Next consumes and returns the next token.
func (b *Buffer) Next() (token.Token, error) {
	tok, err := b.Peek()
	if err != nil {
		return token.Token{}, err
	}
	b.cached = nil
	b.lastPos = tok.End
	return tok, nil
}

// Check reports whether the next token has the given kind, without
// consuming it.
func (b *Buffer) Check(kind token.Kind) (bool, error) {
	tok, err := b.Peek()
	if err != nil {
		return false, err
	}
	return tok.Kind == kind, nil
}

// Accept consumes and returns the next token if it matches kind; if it
// does not, it reports ok=false and leaves the buffer untouched.
func (b *Buffer) Accept(kind token.Kind) (tok token.Token, ok bool, err error) {
	matches, err := b.Check(kind)
	if err != nil {
		return token.Token{}, false, err
	}
	if !matches {
		return token.Token{}, false, nil
	}
	tok, err = b.Next()
	return tok, true, err
}

// Expect consumes the next token if it matches kind, or returns an
// ExpectedToken error.
func (b *Buffer) Expect(kind token.Kind) (token.Token, error) {
	tok, ok, err := b.Accept(kind)
	if err != nil {
		return token.Token{}, err
	}
	if !ok {
		got, _ := b.Peek()
		return token.Token{}, compileerr.Expected(got.Start, kind, got.Kind)
	}
	return tok, nil
}

// LastPos is the end position of the most recently consumed token, used
// to anchor errors raised just past the end of input.
func (b *Buffer) LastPos() token.Position {
	return b.lastPos
}
