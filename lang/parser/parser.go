// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package parser implements a recursive-descent parser for MiniC.
//
// Design overview:
//
//   - The input is the complete token slice produced by the lexer. The cursor
//     is a plain index into that slice; lookahead is a bounded read at
//     pos+n and never consumes anything.
//   - Each precedence level of the expression grammar is one function.
//     Binary levels loop (left-associative), assignment recurses into itself
//     (right-associative).
//   - The first mismatch stops the parse with a *SyntaxError. There is no
//     recovery and no partial tree.
//
// Grammar:
//
//	program        = { function } EOF
//	function       = type IDENT "(" [ param { "," param } ] ")" block
//	param          = type IDENT
//	type           = "int" | "float" | "char" | "string"
//	block          = "{" { statement } "}"
//	statement      = block | if | while | return | expr ";"
//	if             = "if" "(" expr ")" statement [ "else" statement ]
//	while          = "while" "(" expr ")" statement
//	return         = "return" [ expr ] ";"
//	expr           = assignment
//	assignment     = equality [ "=" assignment ]
//	equality       = relational { ( "==" | "!=" ) relational }
//	relational     = additive { ( "<" | ">" | "<=" | ">=" ) additive }
//	additive       = multiplicative { ( "+" | "-" ) multiplicative }
//	multiplicative = postfix { ( "*" | "/" ) postfix }
//	postfix        = primary { "(" args ")" | "[" expr "]" }
//	primary        = literal | IDENT | "(" expr ")" | "[" args "]"
//	args           = [ expr { "," expr } ]
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/probeum/go-minic/lang/ast"
	"github.com/probeum/go-minic/lang/lexer"
	"github.com/probeum/go-minic/lang/token"
)

// SyntaxError reports a token that does not fit the grammar at its position.
type SyntaxError struct {
	Pos   token.Position
	Msg   string
	Token token.Token // the offending token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// IsIncomplete reports whether err was caused by the input ending too early,
// so that appending more source could make it parse.
func IsIncomplete(err error) bool {
	var serr *SyntaxError
	if errors.As(err, &serr) {
		return serr.Token.Type == token.EOF
	}
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		return lerr.Incomplete
	}
	return false
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// ParseFile lexes and parses a complete MiniC source file. The returned error
// is either a *lexer.Error or a *SyntaxError.
func ParseFile(filename, src string) ([]*ast.Func, error) {
	toks, err := lexer.Tokenize(filename, src)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// Parse parses a program: a sequence of function definitions up to EOF.
func Parse(tokens []token.Token) ([]*ast.Func, error) {
	p := newParser(tokens)
	var funcs []*ast.Func
	for !p.curIs(token.EOF) {
		if !p.peek().Type.IsType() {
			return nil, p.errorf(p.peek(), "expected function definition, found %s", describe(p.peek()))
		}
		fn, err := p.parseFunc()
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, fn)
	}
	return funcs, nil
}

// ParseStatements parses a sequence of statements up to EOF.
func ParseStatements(tokens []token.Token) ([]ast.Stmt, error) {
	p := newParser(tokens)
	var stmts []ast.Stmt
	for !p.curIs(token.EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// ParseExpr parses a single expression that must span all tokens.
func ParseExpr(tokens []token.Token) (ast.Expr, error) {
	p := newParser(tokens)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EOF); err != nil {
		return nil, err
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser holds the cursor for a single parse run.
type Parser struct {
	tokens []token.Token
	pos    int // index of the current token
}

func newParser(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

// peekAt returns the token at the given offset from the current position.
// Reading past the end yields an EOF token.
func (p *Parser) peekAt(offset int) token.Token {
	if i := p.pos + offset; i < len(p.tokens) {
		return p.tokens[i]
	}
	eof := token.Token{Type: token.EOF}
	if n := len(p.tokens); n > 0 {
		eof.Pos = p.tokens[n-1].Pos
	}
	return eof
}

// advance consumes and returns the current token.
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// curIs returns true if the current token has the given type.
func (p *Parser) curIs(typ token.Type) bool { return p.peek().Type == typ }

// accept consumes the current token if it has the given type.
func (p *Parser) accept(typ token.Type) bool {
	if p.curIs(typ) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches typ, otherwise returns a
// syntax error naming the offending token.
func (p *Parser) expect(typ token.Type) (token.Token, error) {
	tok := p.peek()
	if tok.Type != typ {
		if typ == token.EOF {
			return tok, p.errorf(tok, "unexpected %s", describe(tok))
		}
		return tok, p.errorf(tok, "expected %q, found %s", typ.String(), describe(tok))
	}
	return p.advance(), nil
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...), Token: tok}
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	switch class := tok.Type.Class(); class {
	case token.EndOfInput:
		return "end of input"
	case token.Identifier:
		return fmt.Sprintf("identifier %q", tok.Literal)
	case token.Keyword:
		return fmt.Sprintf("keyword %q", tok.Literal)
	case token.IntLiteral, token.FloatLiteral, token.CharLiteral, token.StringLiteral:
		return fmt.Sprintf("%s %s", class, tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Literal)
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

func (p *Parser) parseType() (ast.Type, token.Token, error) {
	tok := p.peek()
	typ, ok := ast.TypeOf(tok.Type)
	if !ok {
		return 0, tok, p.errorf(tok, "expected type, found %s", describe(tok))
	}
	p.advance()
	return typ, tok, nil
}

func (p *Parser) parseIdent() (*ast.Ident, error) {
	tok := p.peek()
	if tok.Type != token.IDENT {
		return nil, p.errorf(tok, "expected identifier, found %s", describe(tok))
	}
	p.advance()
	return &ast.Ident{Position: tok.Pos, Name: tok.Literal}, nil
}

// parseFunc parses  type IDENT "(" [ params ] ")" block.
func (p *Parser) parseFunc() (*ast.Func, error) {
	ret, retTok, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.curIs(token.RPAREN) {
		for {
			typ, _, err := p.parseType()
			if err != nil {
				return nil, err
			}
			pname, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Type: typ, Name: pname})
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Func{
		Position:   retTok.Pos,
		ReturnType: ret,
		Name:       name,
		Params:     params,
		Body:       body.Body,
	}, nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// parseStatement dispatches on the leading token.
func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.peek().Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: e}, nil
}

// parseBlock parses  "{" { statement } "}".
func (p *Parser) parseBlock() (*ast.Block, error) {
	lbrace, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	var body []ast.Stmt
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Block{Position: lbrace.Pos, Body: body}, nil
}

// parseCond parses the parenthesised condition of if and while.
func (p *Parser) parseCond() (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

// parseIf parses  "if" "(" expr ")" statement [ "else" statement ].
// A trailing else is consumed by the innermost if that reaches it.
func (p *Parser) parseIf() (ast.Stmt, error) {
	ifTok := p.advance()
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.accept(token.ELSE) {
		if els, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return &ast.If{Position: ifTok.Pos, Cond: cond, Then: then, Else: els}, nil
}

// parseWhile parses  "while" "(" expr ")" statement.
func (p *Parser) parseWhile() (ast.Stmt, error) {
	whileTok := p.advance()
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.While{Position: whileTok.Pos, Cond: cond, Body: body}, nil
}

// parseReturn parses  "return" [ expr ] ";".
func (p *Parser) parseReturn() (ast.Stmt, error) {
	retTok := p.advance()
	if p.accept(token.SEMICOLON) {
		return &ast.Return{Position: retTok.Pos}, nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Return{Position: retTok.Pos, Value: value}, nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssignment()
}

// parseAssignment handles = (right-associative, lowest precedence).
func (p *Parser) parseAssignment() (ast.Expr, error) {
	lhs, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	if !p.curIs(token.ASSIGN) {
		return lhs, nil
	}
	opTok := p.advance()
	rhs, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.Binop{Position: opTok.Pos, Lhs: lhs, Op: ast.Assign, Rhs: rhs}, nil
}

// parseBinary parses one left-associative precedence level: operands come
// from next and are joined by any of ops.
func (p *Parser) parseBinary(next func() (ast.Expr, error), ops ...token.Type) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.peek()
		if !oneOf(opTok.Type, ops) {
			return expr, nil
		}
		p.advance()
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		op, _ := ast.OpOf(opTok.Type)
		expr = &ast.Binop{Position: opTok.Pos, Lhs: expr, Op: op, Rhs: rhs}
	}
}

func oneOf(tt token.Type, set []token.Type) bool {
	for _, t := range set {
		if tt == t {
			return true
		}
	}
	return false
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinary(p.parseRelational, token.EQ, token.NEQ)
}

// parseRelational handles <, >, <= and >=
func (p *Parser) parseRelational() (ast.Expr, error) {
	return p.parseBinary(p.parseAdditive, token.LT, token.GT, token.LTE, token.GTE)
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinary(p.parseMultiplicative, token.PLUS, token.MINUS)
}

// parseMultiplicative handles * and /
func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinary(p.parsePostfix, token.STAR, token.SLASH)
}

// parsePostfix handles calls f(...) and subscripts a[i], chained left to
// right on the same primary.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch tok := p.peek(); tok.Type {
		case token.LPAREN:
			callee, ok := expr.(*ast.Ident)
			if !ok {
				return nil, p.errorf(tok, "cannot call non-identifier expression %s", expr)
			}
			p.advance()
			args, err := p.parseArgs(token.RPAREN)
			if err != nil {
				return nil, err
			}
			expr = &ast.FuncCall{Position: callee.Position, Callee: callee, Args: args}
		case token.LBRACKET:
			p.advance()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.Index{Position: expr.Pos(), Base: expr, Index: index}
		default:
			return expr, nil
		}
	}
}

// parseArgs parses  [ expr { "," expr } ] closing. The opening delimiter has
// already been consumed.
func (p *Parser) parseArgs(closing token.Type) ([]ast.Expr, error) {
	var args []ast.Expr
	if !p.curIs(closing) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrimary handles literals, identifiers, parenthesised expressions and
// array literals.
func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case token.INT_LIT:
		p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "integer literal %s out of range", tok.Literal)
		}
		return &ast.IntLit{Position: tok.Pos, Value: v}, nil

	case token.FLOAT_LIT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf(tok, "float literal %s out of range", tok.Literal)
		}
		return &ast.FloatLit{Position: tok.Pos, Value: v}, nil

	case token.CHAR_LIT:
		p.advance()
		r, _ := utf8.DecodeRuneInString(tok.Value)
		return &ast.CharLit{Position: tok.Pos, Value: r}, nil

	case token.STRING_LIT:
		p.advance()
		return &ast.StringLit{Position: tok.Pos, Value: tok.Value}, nil

	case token.IDENT:
		p.advance()
		return &ast.Ident{Position: tok.Pos, Name: tok.Literal}, nil

	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case token.LBRACKET:
		p.advance()
		elems, err := p.parseArgs(token.RBRACKET)
		if err != nil {
			return nil, err
		}
		return &ast.Array{Position: tok.Pos, Elements: elems}, nil
	}
	return nil, p.errorf(tok, "expected expression, found %s", describe(tok))
}
