package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNumber   // 12, 1.5, .5, 1e3
	TokenString   // "hello" or 'hello'
	TokenTemplate // `text ${expr} text`
	TokenName     // user, $index, @entity, #intent

	// Grouping symbols
	TokenParenOpen    // (
	TokenParenClose   // )
	TokenBracketOpen  // [
	TokenBracketClose // ]
	TokenBraceOpen    // {
	TokenBraceClose   // }

	// Basic symbols
	TokenComma // ,
	TokenColon // :
	TokenDot   // .
	TokenArrow // =>

	// Arithmetic operators
	TokenPlus  // +
	TokenMinus // -
	TokenMult  // *
	TokenDiv   // /
	TokenMod   // %
	TokenPow   // ^

	// String operator
	TokenConcat // &

	// Comparison operators
	TokenEqual        // ==
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=

	// Logical operators
	TokenNot // !
	TokenAnd // &&
	TokenOr  // ||
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenNumber:
		return "(number)"
	case TokenString:
		return "(string)"
	case TokenTemplate:
		return "(template)"
	case TokenName:
		return "(name)"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenBracketOpen:
		return "["
	case TokenBracketClose:
		return "]"
	case TokenBraceOpen:
		return "{"
	case TokenBraceClose:
		return "}"
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenDot:
		return "."
	case TokenArrow:
		return "=>"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenMult:
		return "*"
	case TokenDiv:
		return "/"
	case TokenMod:
		return "%"
	case TokenPow:
		return "^"
	case TokenConcat:
		return "&"
	case TokenEqual:
		return "=="
	case TokenNotEqual:
		return "!="
	case TokenLess:
		return "<"
	case TokenLessEqual:
		return "<="
	case TokenGreater:
		return ">"
	case TokenGreaterEqual:
		return ">="
	case TokenNot:
		return "!"
	case TokenAnd:
		return "&&"
	case TokenOr:
		return "||"
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token with its type, value, and position.
type Token struct {
	Type     TokenType
	Value    string // Source text of the token
	Position int    // Byte offset in the input
}

var symbols1 = [...]TokenType{
	'(': TokenParenOpen,
	')': TokenParenClose,
	'[': TokenBracketOpen,
	']': TokenBracketClose,
	'{': TokenBraceOpen,
	'}': TokenBraceClose,
	',': TokenComma,
	':': TokenColon,
	'.': TokenDot,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMult,
	'/': TokenDiv,
	'%': TokenMod,
	'^': TokenPow,
	'&': TokenConcat,
	'<': TokenLess,
	'>': TokenGreater,
	'!': TokenNot,
}

// lookupSymbol1 returns the token type for a single-character symbol, or 0.
func lookupSymbol1(r rune) TokenType {
	if r < 0 || int(r) >= len(symbols1) {
		return 0
	}
	return symbols1[r]
}

type runeTokenType struct {
	r  rune
	tt TokenType
}

var symbols2 = [...][]runeTokenType{
	'=': {{'=', TokenEqual}, {'>', TokenArrow}},
	'!': {{'=', TokenNotEqual}},
	'<': {{'=', TokenLessEqual}, {'>', TokenNotEqual}},
	'>': {{'=', TokenGreaterEqual}},
	'&': {{'&', TokenAnd}},
	'|': {{'|', TokenOr}},
}

// lookupSymbol2 returns the possible second characters of two-character
// symbols starting with r.
func lookupSymbol2(r rune) []runeTokenType {
	if r < 0 || int(r) >= len(symbols2) {
		return nil
	}
	return symbols2[r]
}
