package parser

import (
	"unicode"
	"unicode/utf8"
)

const eof = -1

// Lexer converts expression source into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string    // Input string being scanned
	length  int       // Length of input string
	start   int       // Start position of current token
	current int       // Current position in input
	width   int       // Width of last rune read
	last    TokenType // Type of the last token returned
	err     error     // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
		last:   TokenEOF,
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() Token {
	t := l.next()
	l.last = t.Type
	return t
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

func (l *Lexer) next() Token {
	l.acceptAll(isWhitespace)
	l.ignore()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// A leading dot is a number (".5") only where an operand is expected;
	// after a value it is member access.
	if ch == '.' && !l.afterValue() {
		if r := l.peekRune(); isDigit(r) {
			l.backup()
			return l.scanNumber()
		}
	}

	// Check for two-character symbols first (e.g., !=, <=, =>)
	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}

	// Check for single-character symbols
	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	switch {
	case ch == '"' || ch == '\'':
		return l.scanString(ch)
	case ch == '`':
		return l.scanTemplate()
	case isDigit(ch):
		l.backup()
		return l.scanNumber()
	case isNameStart(ch):
		return l.scanName()
	}

	return l.error("unexpected character")
}

// afterValue reports whether the previous token ends an operand.
func (l *Lexer) afterValue() bool {
	switch l.last {
	case TokenName, TokenNumber, TokenString, TokenTemplate,
		TokenParenClose, TokenBracketClose, TokenBraceClose:
		return true
	}
	return false
}

// scanString reads a quoted string literal. The opening quote has already
// been consumed. The token value keeps the quotes and escapes as written.
func (l *Lexer) scanString(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case '\\':
			// Consume escaped character
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error("unterminated string literal")
		}
	}
	return l.newToken(TokenString)
}

// scanTemplate reads a backtick template including its ${...} blocks.
// The opening backtick has already been consumed. Braces and quoted strings
// inside a block are balanced so a block may contain '}' or '`' in strings.
func (l *Lexer) scanTemplate() Token {
	for {
		switch l.nextRune() {
		case '`':
			return l.newToken(TokenTemplate)
		case '\\':
			if l.nextRune() == eof {
				return l.error("unterminated template")
			}
		case '$':
			if l.acceptRune('{') {
				if !l.skipBlock() {
					return l.error("unterminated ${ block in template")
				}
			}
		case eof:
			return l.error("unterminated template")
		}
	}
}

// skipBlock consumes up to and including the '}' closing a ${ block.
func (l *Lexer) skipBlock() bool {
	end := blockEnd(l.input, l.current)
	if end < 0 {
		l.current = l.length
		return false
	}
	l.current = end + 1
	l.width = 0
	return true
}

// blockEnd returns the index of the '}' that closes a ${ block whose body
// starts at from, or -1. Nested braces and quoted strings are balanced.
func blockEnd(s string, from int) int {
	depth := 1
	for i := from; i < len(s); i++ {
		switch c := s[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '\'', '"', '`':
			i++
			for i < len(s) && s[i] != c {
				if s[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(s) {
				return -1
			}
		}
	}
	return -1
}

// scanNumber reads a number literal from the current position.
// Format: [0-9]*(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)

	// Decimal part
	if dot := l.current; l.peekRune() == '.' {
		l.nextRune()
		if !l.acceptAll(isDigit) {
			// No digits after the dot: it belongs to the next token.
			l.current = dot
			l.width = 0
			return l.newToken(TokenNumber)
		}
	}

	// Exponent part
	mark := l.current
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			l.current = mark
			l.width = 0
		}
	}

	if r := l.peekRune(); isNameStart(r) {
		l.acceptAll(isNamePart)
		return l.error("invalid number literal")
	}

	return l.newToken(TokenNumber)
}

// scanName reads an identifier. The first rune has already been consumed.
func (l *Lexer) scanName() Token {
	l.acceptAll(isNamePart)
	return l.newToken(TokenName)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(message string) Token {
	t := l.newToken(TokenError)
	if l.err == nil {
		l.err = &SyntaxError{
			Position: t.Position,
			Token:    t.Value,
			Message:  message,
		}
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) peekRune() rune {
	if l.current >= l.length {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.current:])
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
	l.width = 0
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	switch r {
	case '_', '@', '$', '#':
		return true
	}
	return unicode.IsLetter(r)
}

func isNamePart(r rune) bool {
	return r == '_' || isDigit(r) || unicode.IsLetter(r)
}
