// Package lexer turns source characters into a stream of tokens, one
// token per call to Next. It owns a source.Cursor and classifies the
// next run of characters by dispatching on the first character, exactly
// as a hand-written recursive-descent lexer does.
package lexer

import (
	"math"
	"strconv"
	"strings"

	"nilanc/compileerr"
	"nilanc/source"
	"nilanc/token"
)

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentChar(ch rune) bool {
	return isLetter(ch) || isDigit(ch)
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

// Lexer produces tokens on demand from a source.Cursor.
type Lexer struct {
	cursor *source.Cursor
}

// New creates a Lexer over the given source text.
func New(input string) *Lexer {
	return &Lexer{cursor: source.New(input)}
}

// Next scans and returns the next token, or an error if the input cannot
// be classified.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespaceAndComments()

	if l.cursor.IsEOF() {
		pos := l.cursor.NextPos()
		return token.Token{Kind: token.EOF, Start: pos, End: pos}, nil
	}

	ch := l.cursor.PeekChar()
	switch {
	case isDigit(ch):
		return l.handleNumber()
	case isLetter(ch):
		return l.handleIdentifier()
	case ch == '"':
		return l.handleString()
	case ch == '\'':
		return l.handleChar()
	default:
		return l.handleOperator()
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for isWhitespace(l.cursor.PeekChar()) {
			l.cursor.NextChar()
		}
		if l.cursor.PeekChar() == '/' && l.cursor.PeekCharAt(1) == '/' {
			for !l.cursor.IsEOF() && l.cursor.PeekChar() != '\n' {
				l.cursor.NextChar()
			}
			continue
		}
		return
	}
}

// handleNumber consumes digits, an optional fractional part, and, after a
// fractional part only, an optional exponent. With no '.' the literal is a
// UINT_LITERAL; otherwise it is a DOUBLE_LITERAL carrying the raw IEEE-754
// bit pattern.
func (l *Lexer) handleNumber() (token.Token, error) {
	start := l.cursor.NextPos()
	var b strings.Builder
	isFloat := false

	for isDigit(l.cursor.PeekChar()) {
		b.WriteRune(l.cursor.NextChar())
	}

	if l.cursor.PeekChar() == '.' {
		isFloat = true
		b.WriteRune(l.cursor.NextChar())
		if !isDigit(l.cursor.PeekChar()) {
			return token.Token{}, compileerr.Invalidf(start, "malformed numeric literal: expected digit after '.'")
		}
		for isDigit(l.cursor.PeekChar()) {
			b.WriteRune(l.cursor.NextChar())
		}
	}

	if ch := l.cursor.PeekChar(); isFloat && (ch == 'e' || ch == 'E') {
		isFloat = true
		b.WriteRune(l.cursor.NextChar())
		if ch := l.cursor.PeekChar(); ch == '+' || ch == '-' {
			b.WriteRune(l.cursor.NextChar())
		}
		if !isDigit(l.cursor.PeekChar()) {
			return token.Token{}, compileerr.Invalidf(start, "malformed numeric literal: expected digit in exponent")
		}
		for isDigit(l.cursor.PeekChar()) {
			b.WriteRune(l.cursor.NextChar())
		}
	}

	end := l.cursor.CurrentPos()
	text := b.String()

	if !isFloat {
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return token.Token{}, compileerr.Invalidf(start, "malformed integer literal %q", text)
		}
		return token.Token{Kind: token.UINT_LITERAL, Value: v, Start: start, End: end}, nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token.Token{}, compileerr.Invalidf(start, "malformed double literal %q", text)
	}
	return token.Token{Kind: token.DOUBLE_LITERAL, Value: math.Float64bits(v), Start: start, End: end}, nil
}

func (l *Lexer) handleIdentifier() (token.Token, error) {
	start := l.cursor.NextPos()
	var b strings.Builder
	for isIdentChar(l.cursor.PeekChar()) {
		b.WriteRune(l.cursor.NextChar())
	}
	end := l.cursor.CurrentPos()
	text := b.String()

	if kind, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kind, Start: start, End: end}, nil
	}
	return token.Token{Kind: token.IDENT, Value: text, Start: start, End: end}, nil
}

// decodeEscape resolves the character following a backslash inside a
// string or char literal.
func (l *Lexer) decodeEscape(start token.Position) (rune, error) {
	if l.cursor.IsEOF() {
		return 0, compileerr.Invalidf(start, "unterminated escape sequence")
	}
	ch := l.cursor.NextChar()
	switch ch {
	case '\\':
		return '\\', nil
	case '\'':
		return '\'', nil
	case '"':
		return '"', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	default:
		return 0, compileerr.Invalidf(start, "invalid escape sequence '\\%c'", ch)
	}
}

func (l *Lexer) handleString() (token.Token, error) {
	start := l.cursor.NextPos()
	l.cursor.NextChar() // opening '"'

	var b strings.Builder
	for {
		if l.cursor.IsEOF() {
			return token.Token{}, compileerr.Invalidf(l.cursor.NextPos(), "unterminated string literal")
		}
		ch := l.cursor.PeekChar()
		if ch == '"' {
			l.cursor.NextChar()
			break
		}
		if ch == '\\' {
			escStart := l.cursor.NextPos()
			l.cursor.NextChar()
			decoded, err := l.decodeEscape(escStart)
			if err != nil {
				return token.Token{}, err
			}
			b.WriteRune(decoded)
			continue
		}
		b.WriteRune(l.cursor.NextChar())
	}
	end := l.cursor.CurrentPos()
	return token.Token{Kind: token.STRING_LITERAL, Value: b.String(), Start: start, End: end}, nil
}

func (l *Lexer) handleChar() (token.Token, error) {
	start := l.cursor.NextPos()
	l.cursor.NextChar() // opening '\''

	if l.cursor.IsEOF() {
		return token.Token{}, compileerr.Invalidf(start, "unterminated char literal")
	}

	var value rune
	if l.cursor.PeekChar() == '\\' {
		escStart := l.cursor.NextPos()
		l.cursor.NextChar()
		decoded, err := l.decodeEscape(escStart)
		if err != nil {
			return token.Token{}, err
		}
		value = decoded
	} else {
		value = l.cursor.NextChar()
	}

	if l.cursor.PeekChar() != '\'' {
		return token.Token{}, compileerr.Invalidf(start, "unterminated char literal")
	}
	l.cursor.NextChar()
	end := l.cursor.CurrentPos()
	return token.Token{Kind: token.CHAR_LITERAL, Value: uint64(value), Start: start, End: end}, nil
}

var twoCharOperators = map[string]token.Kind{
	"->": token.ARROW,
	"==": token.EQ,
	"!=": token.NEQ,
	"<=": token.LE,
	">=": token.GE,
}

var oneCharOperators = map[rune]token.Kind{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.STAR,
	'/': token.SLASH,
	'=': token.ASSIGN,
	'<': token.LT,
	'>': token.GT,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	':': token.COLON,
	';': token.SEMI,
}

func (l *Lexer) handleOperator() (token.Token, error) {
	start := l.cursor.NextPos()
	first := l.cursor.NextChar()
	second := l.cursor.PeekChar()

	if kind, ok := twoCharOperators[string(first)+string(second)]; ok {
		l.cursor.NextChar()
		return token.Token{Kind: kind, Start: start, End: l.cursor.CurrentPos()}, nil
	}

	if first == '!' {
		return token.Token{}, compileerr.Invalidf(start, "unexpected character '!'")
	}

	if kind, ok := oneCharOperators[first]; ok {
		return token.Token{Kind: kind, Start: start, End: l.cursor.CurrentPos()}, nil
	}

	return token.Token{}, compileerr.Invalidf(start, "unexpected character %q", first)
}
