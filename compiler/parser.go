package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent parser for Glint
// ---------------------------------------------------------------------------

// Parser parses Glint source code into an AST. It consumes a pre-lexed
// token slice strictly left to right with one token of lookahead and no
// backtracking, and stops at the first syntax violation.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser for the given input. Lexical errors surface
// here as a *SyntaxError.
func NewParser(input string) (*Parser, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	return &Parser{tokens: tokens}, nil
}

// cur returns the current token.
func (p *Parser) cur() Token {
	return p.tokens[p.pos]
}

// peek returns the next token without consuming the current one.
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos+1]
}

// advance consumes the current token and returns it.
func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// curIs checks if the current token is of the given type.
func (p *Parser) curIs(t TokenType) bool {
	return p.cur().Type == t
}

// expect consumes and returns the current token if it matches, otherwise
// fails with a SyntaxError naming the expected and found kinds.
func (p *Parser) expect(t TokenType) (Token, error) {
	if p.curIs(t) {
		return p.advance(), nil
	}
	return Token{}, p.errorf("expected %s, got %s", t, p.cur().Type)
}

// errorf builds a SyntaxError at the current token.
func (p *Parser) errorf(format string, args ...interface{}) error {
	tok := p.cur()
	length := tok.Len
	if length == 0 {
		length = 1
	}
	return &SyntaxError{
		Msg: fmt.Sprintf(format, args...),
		Pos: tok.Pos,
		Len: length,
	}
}

// endPos returns the position just past the most recently consumed token.
func (p *Parser) endPos() Position {
	if p.pos == 0 {
		return p.cur().Pos
	}
	prev := p.tokens[p.pos-1]
	return Position{
		Offset: prev.Pos.Offset + prev.Len,
		Line:   prev.Pos.Line,
		Column: prev.Pos.Column + prev.Len,
	}
}

// eatSemicolon consumes a trailing semicolon if present. Terminators are
// never required.
func (p *Parser) eatSemicolon() {
	if p.curIs(TokenSemicolon) {
		p.advance()
	}
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// Parse lexes and parses a complete program, failing with a *SyntaxError
// on the first violation.
func Parse(input string) (*Program, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	Valid   bool
	Program *Program
	Err     *SyntaxError
}

// Validate parses input and reports validity instead of failing. Validate
// succeeds exactly when Parse does.
func Validate(input string) ValidationResult {
	prog, err := Parse(input)
	if err != nil {
		se, ok := AsSyntaxError(err)
		if !ok {
			se = &SyntaxError{Msg: err.Error()}
		}
		return ValidationResult{Valid: false, Err: se}
	}
	return ValidationResult{Valid: true, Program: prog}
}

// ParseProgram parses until EOF.
func (p *Parser) ParseProgram() (*Program, error) {
	start := p.cur().Pos
	var stmts []Stmt
	for !p.curIs(TokenEOF) {
		if p.curIs(TokenSemicolon) {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return &Program{SpanVal: MakeSpan(start, p.endPos()), Stmts: stmts}, nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// parseStatement dispatches on the leading keyword; anything else is an
// expression statement.
func (p *Parser) parseStatement() (Stmt, error) {
	switch p.cur().Type {
	case TokenFunction:
		return p.parseFunctionDecl()
	case TokenLet, TokenConst:
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		p.eatSemicolon()
		return decl, nil
	case TokenLBrace:
		return p.parseBlock()
	case TokenIf:
		return p.parseIf()
	case TokenFor:
		return p.parseFor()
	case TokenWhile:
		return p.parseWhile()
	case TokenReturn:
		return p.parseReturn()
	default:
		start := p.cur().Pos
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.eatSemicolon()
		return &ExprStmt{SpanVal: MakeSpan(start, p.endPos()), Expr: expr}, nil
	}
}

// parseFunctionDecl parses a function declaration. Parameters and the
// return position accept an optional ": Type" annotation; the body must be
// a brace-delimited block.
func (p *Parser) parseFunctionDecl() (*FunctionDecl, error) {
	start := p.advance().Pos // consume function

	name, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	var params []Param
	for !p.curIs(TokenRParen) {
		if len(params) > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
		pname, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		param := Param{Name: pname.Literal, Pos: pname.Pos}
		if p.curIs(TokenColon) {
			p.advance()
			param.Type, err = p.parseTypeName()
			if err != nil {
				return nil, err
			}
		}
		params = append(params, param)
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	var retType Type
	if p.curIs(TokenColon) {
		p.advance()
		retType, err = p.parseTypeName()
		if err != nil {
			return nil, err
		}
	}

	if !p.curIs(TokenLBrace) {
		return nil, p.errorf("function %s body must be a block, got %s", name.Literal, p.cur().Type)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &FunctionDecl{
		SpanVal:    MakeSpan(start, p.endPos()),
		Name:       name.Literal,
		Params:     params,
		ReturnType: retType,
		Body:       body,
	}, nil
}

// parseVarDecl parses a let/const declaration without consuming a trailing
// semicolon; the caller decides whether one terminates it.
func (p *Parser) parseVarDecl() (*VarDecl, error) {
	kw := p.advance() // consume let/const
	isConst := kw.Type == TokenConst

	name, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}

	decl := &VarDecl{Name: name.Literal, Const: isConst}
	if p.curIs(TokenColon) {
		p.advance()
		decl.DeclType, err = p.parseTypeName()
		if err != nil {
			return nil, err
		}
	}
	if p.curIs(TokenAssign) {
		p.advance()
		decl.Init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	decl.SpanVal = MakeSpan(kw.Pos, p.endPos())
	return decl, nil
}

// parseTypeName parses a type annotation: a primitive type keyword or an
// identifier naming a nominal handle type.
func (p *Parser) parseTypeName() (Type, error) {
	tok := p.cur()
	if t, ok := typeForToken(tok); ok {
		p.advance()
		return t, nil
	}
	return "", p.errorf("expected type name, got %s", tok.Type)
}

// parseBlock parses { stmt* }.
func (p *Parser) parseBlock() (*BlockStmt, error) {
	open, err := p.expect(TokenLBrace)
	if err != nil {
		return nil, err
	}

	var stmts []Stmt
	for !p.curIs(TokenRBrace) {
		if p.curIs(TokenEOF) {
			return nil, p.errorf("expected %s, got %s", TokenRBrace, TokenEOF)
		}
		if p.curIs(TokenSemicolon) {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // consume }

	return &BlockStmt{SpanVal: MakeSpan(open.Pos, p.endPos()), Stmts: stmts}, nil
}

// parseIf parses if (cond) stmt [else stmt].
func (p *Parser) parseIf() (*IfStmt, error) {
	start := p.advance().Pos // consume if

	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{Cond: cond, Then: then}
	if p.curIs(TokenElse) {
		p.advance()
		stmt.Else, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	stmt.SpanVal = MakeSpan(start, p.endPos())
	return stmt, nil
}

// parseFor parses for (init?; cond?; update?) stmt. The initializer may be
// a declaration, an expression, or empty.
func (p *Parser) parseFor() (*ForStmt, error) {
	start := p.advance().Pos // consume for

	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	stmt := &ForStmt{}
	var err error

	if !p.curIs(TokenSemicolon) {
		if p.curIs(TokenLet) || p.curIs(TokenConst) {
			stmt.Init, err = p.parseVarDecl()
		} else {
			initStart := p.cur().Pos
			var expr Expr
			expr, err = p.parseExpression()
			if err == nil {
				stmt.Init = &ExprStmt{SpanVal: MakeSpan(initStart, p.endPos()), Expr: expr}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}

	if !p.curIs(TokenSemicolon) {
		stmt.Cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}

	if !p.curIs(TokenRParen) {
		stmt.Update, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	stmt.Body, err = p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt.SpanVal = MakeSpan(start, p.endPos())
	return stmt, nil
}

// parseWhile parses while (cond) stmt.
func (p *Parser) parseWhile() (*WhileStmt, error) {
	start := p.advance().Pos // consume while

	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &WhileStmt{SpanVal: MakeSpan(start, p.endPos()), Cond: cond, Body: body}, nil
}

// parseReturn parses return [expr].
func (p *Parser) parseReturn() (*ReturnStmt, error) {
	start := p.advance().Pos // consume return

	stmt := &ReturnStmt{}
	if !p.curIs(TokenSemicolon) && !p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
		var err error
		stmt.Value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	p.eatSemicolon()
	stmt.SpanVal = MakeSpan(start, p.endPos())
	return stmt, nil
}

// ---------------------------------------------------------------------------
// Expressions, lowest to highest precedence
// ---------------------------------------------------------------------------

// parseExpression parses a full expression.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

// parseAssignment parses right-associative assignment, plain or compound.
func (p *Parser) parseAssignment() (Expr, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if IsAssignOp(p.cur().Type) {
		op := p.advance().Type
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &AssignExpr{
			SpanVal: MakeSpan(left.Span().Start, value.Span().End),
			Op:      op,
			Target:  left,
			Value:   value,
		}, nil
	}
	return left, nil
}

// parseBinaryLevel builds one left-associative precedence level.
func (p *Parser) parseBinaryLevel(ops []TokenType, next func() (Expr, error)) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.curIs(op) {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		op := p.advance().Type
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			SpanVal: MakeSpan(left.Span().Start, right.Span().End),
			Op:      op,
			Left:    left,
			Right:   right,
		}
	}
}

func (p *Parser) parseLogicalOr() (Expr, error) {
	return p.parseBinaryLevel([]TokenType{TokenOr}, p.parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() (Expr, error) {
	return p.parseBinaryLevel([]TokenType{TokenAnd}, p.parseBitwiseOr)
}

func (p *Parser) parseBitwiseOr() (Expr, error) {
	return p.parseBinaryLevel([]TokenType{TokenPipe}, p.parseBitwiseXor)
}

func (p *Parser) parseBitwiseXor() (Expr, error) {
	return p.parseBinaryLevel([]TokenType{TokenCaret}, p.parseBitwiseAnd)
}

func (p *Parser) parseBitwiseAnd() (Expr, error) {
	return p.parseBinaryLevel([]TokenType{TokenAmp}, p.parseEquality)
}

func (p *Parser) parseEquality() (Expr, error) {
	return p.parseBinaryLevel([]TokenType{TokenEq, TokenNotEq}, p.parseRelational)
}

func (p *Parser) parseRelational() (Expr, error) {
	return p.parseBinaryLevel([]TokenType{TokenLt, TokenGt, TokenLtEq, TokenGtEq}, p.parseAdditive)
}

func (p *Parser) parseAdditive() (Expr, error) {
	return p.parseBinaryLevel([]TokenType{TokenPlus, TokenMinus}, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	return p.parseBinaryLevel([]TokenType{TokenStar, TokenSlash, TokenPercent}, p.parseUnary)
}

// parseUnary parses prefix !, -, ++, --.
func (p *Parser) parseUnary() (Expr, error) {
	switch p.cur().Type {
	case TokenNot, TokenMinus:
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			SpanVal: MakeSpan(tok.Pos, operand.Span().End),
			Op:      tok.Type,
			Operand: operand,
		}, nil
	case TokenPlusPlus, TokenMinusMinus:
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UpdateExpr{
			SpanVal: MakeSpan(tok.Pos, operand.Span().End),
			Op:      tok.Type,
			Operand: operand,
			Prefix:  true,
		}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses calls, member access, computed member access, and
// postfix ++/--, all left-associative and chainable.
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.cur().Type {
		case TokenLParen:
			p.advance()
			var args []Expr
			for !p.curIs(TokenRParen) {
				if len(args) > 0 {
					if _, err := p.expect(TokenComma); err != nil {
						return nil, err
					}
				}
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
			p.advance() // consume )
			expr = &CallExpr{
				SpanVal: MakeSpan(expr.Span().Start, p.endPos()),
				Callee:  expr,
				Args:    args,
			}

		case TokenDot:
			p.advance()
			prop := p.cur()
			if prop.Type != TokenIdentifier && !IsTypeKeyword(prop.Type) {
				return nil, p.errorf("expected %s, got %s", TokenIdentifier, prop.Type)
			}
			p.advance()
			expr = &MemberExpr{
				SpanVal: MakeSpan(expr.Span().Start, p.endPos()),
				Object:  expr,
				Property: &Ident{
					SpanVal: MakeSpan(prop.Pos, p.endPos()),
					Name:    prop.Literal,
				},
			}

		case TokenLBracket:
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRBracket); err != nil {
				return nil, err
			}
			expr = &MemberExpr{
				SpanVal:  MakeSpan(expr.Span().Start, p.endPos()),
				Object:   expr,
				Property: index,
				Computed: true,
			}

		case TokenPlusPlus, TokenMinusMinus:
			tok := p.advance()
			expr = &UpdateExpr{
				SpanVal: MakeSpan(expr.Span().Start, p.endPos()),
				Op:      tok.Type,
				Operand: expr,
				Prefix:  false,
			}

		default:
			return expr, nil
		}
	}
}

// parsePrimary parses literals, identifiers, and parenthesized expressions.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case TokenNumber:
		p.advance()
		value, err := parseNumberLiteral(tok.Literal)
		if err != nil {
			return nil, &SyntaxError{Msg: err.Error(), Pos: tok.Pos, Len: tok.Len}
		}
		return &NumberLit{SpanVal: MakeSpan(tok.Pos, p.endPos()), Value: value}, nil

	case TokenString:
		p.advance()
		return &StringLit{SpanVal: MakeSpan(tok.Pos, p.endPos()), Value: tok.Literal}, nil

	case TokenTrue:
		p.advance()
		return &BoolLit{SpanVal: MakeSpan(tok.Pos, p.endPos()), Value: true}, nil

	case TokenFalse:
		p.advance()
		return &BoolLit{SpanVal: MakeSpan(tok.Pos, p.endPos()), Value: false}, nil

	case TokenNull:
		p.advance()
		return &NullLit{SpanVal: MakeSpan(tok.Pos, p.endPos())}, nil

	case TokenUndefined:
		p.advance()
		return &UndefinedLit{SpanVal: MakeSpan(tok.Pos, p.endPos())}, nil

	case TokenIdentifier:
		p.advance()
		return &Ident{SpanVal: MakeSpan(tok.Pos, p.endPos()), Name: tok.Literal}, nil

	case TokenLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorf("expected expression, got %s", tok.Type)
}

// parseNumberLiteral converts a number token's text to its value. Hex
// literals parse as integers.
func parseNumberLiteral(lit string) (float64, error) {
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		n, err := strconv.ParseInt(lit[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed hex literal %q", lit)
		}
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number literal %q", lit)
	}
	return f, nil
}
