package compiler

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for Glint source text
// ---------------------------------------------------------------------------

// Lexer tokenizes Glint source code.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		l.col++
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
		if l.ch == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.ch = r
		l.pos = l.readPos
		l.readPos += size
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// tok builds a token whose literal is its own source text.
func (l *Lexer) tok(t TokenType, lit string, pos Position) Token {
	return Token{Type: t, Literal: lit, Pos: pos, Len: len(lit)}
}

// NextToken returns the next token. Lexical failures are reported as a
// TokenError token; Lex converts them into a *SyntaxError.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.position()

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Literal: "", Pos: pos}

	case l.ch == '(':
		l.readChar()
		return l.tok(TokenLParen, "(", pos)

	case l.ch == ')':
		l.readChar()
		return l.tok(TokenRParen, ")", pos)

	case l.ch == '{':
		l.readChar()
		return l.tok(TokenLBrace, "{", pos)

	case l.ch == '}':
		l.readChar()
		return l.tok(TokenRBrace, "}", pos)

	case l.ch == '[':
		l.readChar()
		return l.tok(TokenLBracket, "[", pos)

	case l.ch == ']':
		l.readChar()
		return l.tok(TokenRBracket, "]", pos)

	case l.ch == ',':
		l.readChar()
		return l.tok(TokenComma, ",", pos)

	case l.ch == ';':
		l.readChar()
		return l.tok(TokenSemicolon, ";", pos)

	case l.ch == ':':
		l.readChar()
		return l.tok(TokenColon, ":", pos)

	case l.ch == '.':
		l.readChar()
		return l.tok(TokenDot, ".", pos)

	case l.ch == '+':
		l.readChar()
		if l.ch == '+' {
			l.readChar()
			return l.tok(TokenPlusPlus, "++", pos)
		}
		if l.ch == '=' {
			l.readChar()
			return l.tok(TokenPlusAssign, "+=", pos)
		}
		return l.tok(TokenPlus, "+", pos)

	case l.ch == '-':
		l.readChar()
		if l.ch == '-' {
			l.readChar()
			return l.tok(TokenMinusMinus, "--", pos)
		}
		if l.ch == '=' {
			l.readChar()
			return l.tok(TokenMinusAssign, "-=", pos)
		}
		return l.tok(TokenMinus, "-", pos)

	case l.ch == '*':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.tok(TokenStarAssign, "*=", pos)
		}
		return l.tok(TokenStar, "*", pos)

	case l.ch == '/':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.tok(TokenSlashAssign, "/=", pos)
		}
		return l.tok(TokenSlash, "/", pos)

	case l.ch == '%':
		l.readChar()
		return l.tok(TokenPercent, "%", pos)

	case l.ch == '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.tok(TokenEq, "==", pos)
		}
		return l.tok(TokenAssign, "=", pos)

	case l.ch == '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.tok(TokenNotEq, "!=", pos)
		}
		return l.tok(TokenNot, "!", pos)

	case l.ch == '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.tok(TokenLtEq, "<=", pos)
		}
		return l.tok(TokenLt, "<", pos)

	case l.ch == '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.tok(TokenGtEq, ">=", pos)
		}
		return l.tok(TokenGt, ">", pos)

	case l.ch == '&':
		l.readChar()
		if l.ch == '&' {
			l.readChar()
			return l.tok(TokenAnd, "&&", pos)
		}
		return l.tok(TokenAmp, "&", pos)

	case l.ch == '|':
		l.readChar()
		if l.ch == '|' {
			l.readChar()
			return l.tok(TokenOr, "||", pos)
		}
		return l.tok(TokenPipe, "|", pos)

	case l.ch == '^':
		l.readChar()
		return l.tok(TokenCaret, "^", pos)

	case l.ch == '"' || l.ch == '\'':
		return l.readString(pos)

	case isDigit(l.ch):
		return l.readNumber(pos)

	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifier(pos)

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character %q", ch), Pos: pos, Len: 1}
	}
}

// skipWhitespaceAndComments skips whitespace, // line comments, and
// /* */ block comments. An unterminated block comment ends at input end.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar() // consume /
			l.readChar() // consume *
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

// readString reads a single- or double-quoted string literal. Escape
// sequences \n \t \r \\ \" \' are decoded; an unrecognized escape passes
// the following character through literally.
func (l *Lexer) readString(pos Position) Token {
	quote := l.ch
	start := l.pos
	l.readChar() // consume opening quote

	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			return Token{Type: TokenError, Literal: "unterminated string", Pos: pos, Len: l.pos - start}
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			case 0:
				return Token{Type: TokenError, Literal: "unterminated string", Pos: pos, Len: l.pos - start}
			default:
				sb.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote

	return Token{Type: TokenString, Literal: sb.String(), Pos: pos, Len: l.pos - start}
}

// readNumber reads a decimal float literal or a 0x/0X hexadecimal integer.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar() // consume 0
		l.readChar() // consume x
		if !isHexDigit(l.ch) {
			return Token{Type: TokenError, Literal: "malformed hex literal", Pos: pos, Len: l.pos - start}
		}
		for isHexDigit(l.ch) {
			l.readChar()
		}
		lit := l.input[start:l.pos]
		return Token{Type: TokenNumber, Literal: lit, Pos: pos, Len: len(lit)}
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume .
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	lit := l.input[start:l.pos]
	return Token{Type: TokenNumber, Literal: lit, Pos: pos, Len: len(lit)}
}

// readIdentifier reads an identifier or reserved word.
func (l *Lexer) readIdentifier(pos Position) Token {
	start := l.pos

	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	lit := l.input[start:l.pos]
	if typ, ok := reservedWords[lit]; ok {
		return Token{Type: typ, Literal: lit, Pos: pos, Len: len(lit)}
	}
	return Token{Type: TokenIdentifier, Literal: lit, Pos: pos, Len: len(lit)}
}

// Helper functions

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Lex returns all tokens from the input, ending with an EOF token. A
// lexical failure is returned as a *SyntaxError.
func Lex(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenError {
			return nil, &SyntaxError{Msg: tok.Literal, Pos: tok.Pos, Len: tok.Len}
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}
