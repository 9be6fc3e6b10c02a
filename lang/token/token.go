// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package token defines the lexical token types for the MiniC language.
//
// Every token type belongs to exactly one Class. The set of types is closed:
// identifiers, four literal kinds, eight keywords, eleven operators, eight
// punctuation marks and the end-of-input sentinel.
package token

import "fmt"

// Token represents a lexical token.
type Token struct {
	Type    Type
	Literal string // exact source text that was matched
	Value   string // decoded contents of CHAR_LIT and STRING_LIT tokens
	Pos     Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Pos, t.Type, t.Literal)
}

// Position tracks source location.
type Position struct {
	File   string
	Line   int // 1-based
	Column int // 1-based, counted in runes
	Offset int // 0-based byte offset
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Type is the set of lexical token types.
type Type int

const (
	EOF Type = iota

	// Literals
	IDENT      // main, x, _tmp1
	INT_LIT    // 314
	FLOAT_LIT  // 3.14
	CHAR_LIT   // 'c'
	STRING_LIT // "hello"

	// Operators
	operatorStart
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	ASSIGN // =
	EQ     // ==
	NEQ    // !=
	LT     // <
	GT     // >
	LTE    // <=
	GTE    // >=
	operatorEnd

	// Punctuation
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	SEMICOLON // ;

	keywordStart
	IF     // if
	ELSE   // else
	WHILE  // while
	RETURN // return
	INT    // int
	FLOAT  // float
	CHAR   // char
	STRING // string
	keywordEnd
)

var tokenNames = [...]string{
	EOF: "EOF",

	IDENT:      "IDENT",
	INT_LIT:    "INT_LIT",
	FLOAT_LIT:  "FLOAT_LIT",
	CHAR_LIT:   "CHAR_LIT",
	STRING_LIT: "STRING_LIT",

	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	SLASH:  "/",
	ASSIGN: "=",
	EQ:     "==",
	NEQ:    "!=",
	LT:     "<",
	GT:     ">",
	LTE:    "<=",
	GTE:    ">=",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	LBRACE:    "{",
	RBRACE:    "}",
	COMMA:     ",",
	SEMICOLON: ";",

	IF:     "if",
	ELSE:   "else",
	WHILE:  "while",
	RETURN: "return",
	INT:    "int",
	FLOAT:  "float",
	CHAR:   "char",
	STRING: "string",
}

// String returns the string form of a token type.
func (t Type) String() string {
	if t >= 0 && int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// IsKeyword returns true if the token is a keyword.
func (t Type) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsOperator returns true if the token is an operator.
func (t Type) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsLiteral returns true if the token is a literal value.
func (t Type) IsLiteral() bool {
	return t >= INT_LIT && t <= STRING_LIT
}

// IsType returns true for the four type keywords.
func (t Type) IsType() bool {
	return t == INT || t == FLOAT || t == CHAR || t == STRING
}

// Class is the coarse category a token type belongs to.
type Class int

const (
	Invalid Class = iota
	Identifier
	IntLiteral
	FloatLiteral
	CharLiteral
	StringLiteral
	Keyword
	Operator
	Punctuation
	EndOfInput
)

var classNames = [...]string{
	Invalid:       "invalid",
	Identifier:    "identifier",
	IntLiteral:    "integer-literal",
	FloatLiteral:  "float-literal",
	CharLiteral:   "char-literal",
	StringLiteral: "string-literal",
	Keyword:       "keyword",
	Operator:      "operator",
	Punctuation:   "punctuation",
	EndOfInput:    "end-of-input",
}

func (c Class) String() string {
	if c >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// Class returns the category of the token type.
func (t Type) Class() Class {
	switch {
	case t == EOF:
		return EndOfInput
	case t == IDENT:
		return Identifier
	case t == INT_LIT:
		return IntLiteral
	case t == FLOAT_LIT:
		return FloatLiteral
	case t == CHAR_LIT:
		return CharLiteral
	case t == STRING_LIT:
		return StringLiteral
	case t.IsOperator():
		return Operator
	case t.IsKeyword():
		return Keyword
	case t >= LPAREN && t <= SEMICOLON:
		return Punctuation
	}
	return Invalid
}

// keywords maps keyword strings to token types.
var keywords map[string]Type

func init() {
	keywords = make(map[string]Type)
	for i := keywordStart + 1; i < keywordEnd; i++ {
		keywords[tokenNames[i]] = i
	}
}

// LookupIdent checks if an identifier is a keyword.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
