// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package lexer implements a single-pass, no-backtracking lexer for MiniC.
//
// Design principles:
//   - Single pass over the input bytes, one byte of lookahead
//   - Whitespace, // line comments and /* */ block comments are skipped
//   - Multi-character operators are matched greedily
//   - The first malformed construct stops the lexer with an *Error; no
//     ILLEGAL tokens are ever produced
package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/probeum/go-minic/lang/token"
)

// Error is a lexical error: a malformed literal, an unterminated string, char
// or comment, or a character outside the language.
type Error struct {
	Pos token.Position
	Msg string

	// Incomplete is set when the input ended inside a construct that more
	// input could have completed.
	Incomplete bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Lexer holds the state for a single-pass tokenization run.
type Lexer struct {
	filename string
	input    []byte

	off  int  // byte offset of ch
	line int  // 1-based line of ch
	col  int  // 1-based rune column of ch
	ch   byte // current character; 0 when past end

	err error // sticky: once set, NextToken keeps returning it
}

// New creates a new Lexer for the given filename and input string.
func New(filename, input string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    []byte(input),
		line:     1,
		col:      1,
	}
	if len(l.input) > 0 {
		l.ch = l.input[0]
	}
	return l
}

// Tokenize lexes src completely. On success the returned slice ends with a
// single EOF token; on failure it is nil and err is a *Error.
func Tokenize(filename, src string) ([]token.Token, error) {
	return New(filename, src).Tokenize()
}

// Tokenize returns all tokens (including the final EOF) produced by repeated
// calls to NextToken.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

// NextToken scans and returns the next token from the input.
// After EOF is reached, subsequent calls continue returning EOF tokens.
func (l *Lexer) NextToken() (token.Token, error) {
	if l.err != nil {
		return token.Token{}, l.err
	}
	tok, err := l.scan()
	if err != nil {
		l.err = err
		return token.Token{}, err
	}
	return tok, nil
}

func (l *Lexer) atEOF() bool { return l.off >= len(l.input) }

// advance moves to the next byte in the input, updating line/column tracking.
// UTF-8 continuation bytes share the column of their leading byte.
func (l *Lexer) advance() {
	if l.atEOF() {
		return
	}
	prev := l.ch
	l.off++
	l.ch = 0
	if l.off < len(l.input) {
		l.ch = l.input[l.off]
	}
	switch {
	case prev == '\n':
		l.line++
		l.col = 1
	case l.off < len(l.input) && !utf8.RuneStart(l.ch):
	default:
		l.col++
	}
}

// peek returns the byte after the current character without consuming it.
func (l *Lexer) peek() byte {
	if l.off+1 >= len(l.input) {
		return 0
	}
	return l.input[l.off+1]
}

// currentPos returns a token.Position for the current character.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		File:   l.filename,
		Line:   l.line,
		Column: l.col,
		Offset: l.off,
	}
}

func (l *Lexer) errorf(pos token.Position, format string, args ...interface{}) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// skipWhitespace consumes whitespace and comments.
func (l *Lexer) skipWhitespace() error {
	for !l.atEOF() {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' || l.ch == '\f' || l.ch == '\v':
			l.advance()
		case l.ch == '/' && l.peek() == '/':
			for !l.atEOF() && l.ch != '\n' {
				l.advance()
			}
		case l.ch == '/' && l.peek() == '*':
			pos := l.currentPos()
			l.advance() // '/'
			l.advance() // '*'
			for {
				if l.atEOF() {
					err := l.errorf(pos, "unterminated block comment")
					err.Incomplete = true
					return err
				}
				if l.ch == '*' && l.peek() == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) scan() (token.Token, error) {
	if err := l.skipWhitespace(); err != nil {
		return token.Token{}, err
	}
	pos := l.currentPos()
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: pos}, nil
	}
	start := l.off
	ch := l.ch

	var (
		typ   token.Type
		value string
		err   error
	)
	switch {
	case isIdentStart(ch):
		for isIdentContinue(l.ch) {
			l.advance()
		}
		typ = token.LookupIdent(string(l.input[start:l.off]))

	case isDigit(ch):
		typ, err = l.readNumber(pos)

	case ch == '\'':
		typ = token.CHAR_LIT
		value, err = l.readChar(pos)

	case ch == '"':
		typ = token.STRING_LIT
		value, err = l.readString(pos)

	default:
		typ, err = l.readOperator(pos)
	}
	if err != nil {
		return token.Token{}, err
	}
	return token.Token{
		Type:    typ,
		Literal: string(l.input[start:l.off]),
		Value:   value,
		Pos:     pos,
	}, nil
}

// readOperator scans operators and punctuation. Two-character operators are
// tried before their one-character prefixes.
func (l *Lexer) readOperator(pos token.Position) (token.Type, error) {
	ch := l.ch
	if ch >= utf8.RuneSelf {
		r, _ := utf8.DecodeRune(l.input[l.off:])
		return 0, l.errorf(pos, "unexpected character %q", r)
	}
	l.advance()

	switch ch {
	case '=':
		if l.ch == '=' {
			l.advance()
			return token.EQ, nil
		}
		return token.ASSIGN, nil
	case '!':
		if l.ch == '=' {
			l.advance()
			return token.NEQ, nil
		}
	case '<':
		if l.ch == '=' {
			l.advance()
			return token.LTE, nil
		}
		return token.LT, nil
	case '>':
		if l.ch == '=' {
			l.advance()
			return token.GTE, nil
		}
		return token.GT, nil
	case '+':
		return token.PLUS, nil
	case '-':
		return token.MINUS, nil
	case '*':
		return token.STAR, nil
	case '/':
		return token.SLASH, nil
	case '(':
		return token.LPAREN, nil
	case ')':
		return token.RPAREN, nil
	case '[':
		return token.LBRACKET, nil
	case ']':
		return token.RBRACKET, nil
	case '{':
		return token.LBRACE, nil
	case '}':
		return token.RBRACE, nil
	case ',':
		return token.COMMA, nil
	case ';':
		return token.SEMICOLON, nil
	}
	return 0, l.errorf(pos, "unexpected character %q", rune(ch))
}

// readNumber scans an integer or float literal. The first digit is the
// current character.
//
//   - digits               →  INT_LIT
//   - digits "." [digits]  →  FLOAT_LIT
//
// A second decimal point or an identifier character glued to the numeral is
// reported as a malformed number.
func (l *Lexer) readNumber(pos token.Position) (token.Type, error) {
	start := l.off
	typ := token.INT_LIT
	for isDigit(l.ch) {
		l.advance()
	}
	if l.ch == '.' {
		typ = token.FLOAT_LIT
		l.advance()
		for isDigit(l.ch) {
			l.advance()
		}
	}
	if l.ch == '.' || isIdentStart(l.ch) {
		for l.ch == '.' || isIdentContinue(l.ch) {
			l.advance()
		}
		return 0, l.errorf(pos, "malformed number %q", l.input[start:l.off])
	}
	return typ, nil
}

// readChar scans a character literal and returns its decoded value.
func (l *Lexer) readChar(pos token.Position) (string, error) {
	l.advance() // opening '
	var r rune
	switch {
	case l.atEOF():
		err := l.errorf(pos, "unterminated character literal")
		err.Incomplete = true
		return "", err
	case l.ch == '\n':
		return "", l.errorf(pos, "unterminated character literal")
	case l.ch == '\'':
		return "", l.errorf(pos, "empty character literal")
	case l.ch == '\\':
		esc, err := l.readEscape(pos)
		if err != nil {
			return "", err
		}
		r = esc
	default:
		var err error
		if r, err = l.readRune(pos); err != nil {
			return "", err
		}
	}
	if l.ch != '\'' {
		if l.atEOF() || l.ch == '\n' {
			return "", l.errorf(pos, "unterminated character literal")
		}
		return "", l.errorf(pos, "character literal must contain exactly one character")
	}
	l.advance() // closing '
	return string(r), nil
}

// readString scans a string literal and returns its decoded value. Raw
// newlines are not allowed inside the quotes.
func (l *Lexer) readString(pos token.Position) (string, error) {
	l.advance() // opening "
	var buf []byte
	for {
		switch {
		case l.atEOF():
			err := l.errorf(pos, "unterminated string literal")
			err.Incomplete = true
			return "", err
		case l.ch == '\n':
			return "", l.errorf(pos, "unterminated string literal")
		case l.ch == '"':
			l.advance()
			return string(buf), nil
		case l.ch == '\\':
			r, err := l.readEscape(pos)
			if err != nil {
				return "", err
			}
			buf = append(buf, byte(r))
		default:
			buf = append(buf, l.ch)
			l.advance()
		}
	}
}

// readEscape decodes a backslash escape. The backslash is the current
// character. All supported escapes decode to ASCII.
func (l *Lexer) readEscape(pos token.Position) (rune, error) {
	l.advance() // '\'
	if l.atEOF() {
		err := l.errorf(pos, "unterminated escape sequence")
		err.Incomplete = true
		return 0, err
	}
	var r rune
	switch l.ch {
	case 'n':
		r = '\n'
	case 't':
		r = '\t'
	case '\\':
		r = '\\'
	case '\'':
		r = '\''
	case '"':
		r = '"'
	default:
		esc, _ := utf8.DecodeRune(l.input[l.off:])
		return 0, l.errorf(l.currentPos(), "unknown escape sequence \\%c", esc)
	}
	l.advance()
	return r, nil
}

// readRune consumes one UTF-8 encoded character.
func (l *Lexer) readRune(pos token.Position) (rune, error) {
	r, size := utf8.DecodeRune(l.input[l.off:])
	if r == utf8.RuneError && size <= 1 {
		return 0, l.errorf(pos, "invalid UTF-8 in character literal")
	}
	for i := 0; i < size; i++ {
		l.advance()
	}
	return r, nil
}

// ---------------------------------------------------------------------------
// Character classification helpers
// ---------------------------------------------------------------------------

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
