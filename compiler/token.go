package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the Glint lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNumber     // 42, 3.14, 0xFF
	TokenString     // "hello", 'hello'
	TokenIdentifier // foo, lv_btn_create, LV_ALIGN_CENTER

	// Keywords
	TokenFunction
	TokenReturn
	TokenIf
	TokenElse
	TokenFor
	TokenWhile
	TokenLet
	TokenConst
	TokenTrue
	TokenFalse
	TokenNull
	TokenUndefined

	// Type keywords
	TokenNumberType  // number
	TokenBoolType    // bool
	TokenStringType  // string
	TokenCstringType // cstring
	TokenColorType   // color

	// Operators
	TokenAssign      // =
	TokenPlusAssign  // +=
	TokenMinusAssign // -=
	TokenStarAssign  // *=
	TokenSlashAssign // /=
	TokenEq          // ==
	TokenNotEq       // !=
	TokenLt          // <
	TokenGt          // >
	TokenLtEq        // <=
	TokenGtEq        // >=
	TokenAnd         // &&
	TokenOr          // ||
	TokenNot         // !
	TokenPlus        // +
	TokenMinus       // -
	TokenStar        // *
	TokenSlash       // /
	TokenPercent     // %
	TokenPlusPlus    // ++
	TokenMinusMinus  // --
	TokenAmp         // &
	TokenPipe        // |
	TokenCaret       // ^

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenComma     // ,
	TokenSemicolon // ;
	TokenColon     // :
	TokenDot       // .
)

var tokenNames = map[TokenType]string{
	TokenEOF:         "EOF",
	TokenError:       "ERROR",
	TokenNumber:      "NUMBER",
	TokenString:      "STRING",
	TokenIdentifier:  "IDENTIFIER",
	TokenFunction:    "function",
	TokenReturn:      "return",
	TokenIf:          "if",
	TokenElse:        "else",
	TokenFor:         "for",
	TokenWhile:       "while",
	TokenLet:         "let",
	TokenConst:       "const",
	TokenTrue:        "true",
	TokenFalse:       "false",
	TokenNull:        "null",
	TokenUndefined:   "undefined",
	TokenNumberType:  "number",
	TokenBoolType:    "bool",
	TokenStringType:  "string",
	TokenCstringType: "cstring",
	TokenColorType:   "color",
	TokenAssign:      "=",
	TokenPlusAssign:  "+=",
	TokenMinusAssign: "-=",
	TokenStarAssign:  "*=",
	TokenSlashAssign: "/=",
	TokenEq:          "==",
	TokenNotEq:       "!=",
	TokenLt:          "<",
	TokenGt:          ">",
	TokenLtEq:        "<=",
	TokenGtEq:        ">=",
	TokenAnd:         "&&",
	TokenOr:          "||",
	TokenNot:         "!",
	TokenPlus:        "+",
	TokenMinus:       "-",
	TokenStar:        "*",
	TokenSlash:       "/",
	TokenPercent:     "%",
	TokenPlusPlus:    "++",
	TokenMinusMinus:  "--",
	TokenAmp:         "&",
	TokenPipe:        "|",
	TokenCaret:       "^",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenLBrace:      "{",
	TokenRBrace:      "}",
	TokenLBracket:    "[",
	TokenRBracket:    "]",
	TokenComma:       ",",
	TokenSemicolon:   ";",
	TokenColon:       ":",
	TokenDot:         ".",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // decoded text for strings, raw text otherwise
	Pos     Position // start position
	Len     int      // source length in bytes, for diagnostics
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types. The five type names are
// keywords too; the parser accepts them wherever a type annotation or an
// expression identifier position expects one.
var reservedWords = map[string]TokenType{
	"function":  TokenFunction,
	"return":    TokenReturn,
	"if":        TokenIf,
	"else":      TokenElse,
	"for":       TokenFor,
	"while":     TokenWhile,
	"let":       TokenLet,
	"const":     TokenConst,
	"true":      TokenTrue,
	"false":     TokenFalse,
	"null":      TokenNull,
	"undefined": TokenUndefined,
	"number":    TokenNumberType,
	"bool":      TokenBoolType,
	"string":    TokenStringType,
	"cstring":   TokenCstringType,
	"color":     TokenColorType,
}

// IsAssignOp reports whether t is one of the assignment operator tokens.
func IsAssignOp(t TokenType) bool {
	switch t {
	case TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenStarAssign, TokenSlashAssign:
		return true
	}
	return false
}

// IsTypeKeyword reports whether t names one of the built-in primitive types.
func IsTypeKeyword(t TokenType) bool {
	switch t {
	case TokenNumberType, TokenBoolType, TokenStringType, TokenCstringType, TokenColorType:
		return true
	}
	return false
}
