// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package ast

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Indent is the indentation unit of the canonical form.
const Indent = "    "

// Print returns the canonical source form of n. Lexing and parsing the result
// yields a tree equal to n up to positions.
//
// Binary expressions are fully parenthesized. A block body follows its header
// after a single space; any other body goes on its own line one level deeper.
func Print(n Node) string {
	var p printer
	p.node(n)
	return p.buf.String()
}

// Fprint writes the canonical form of n to w.
func Fprint(w io.Writer, n Node) error {
	_, err := io.WriteString(w, Print(n))
	return err
}

// PrintProgram prints a list of functions separated by blank lines.
func PrintProgram(funcs []*Func) string {
	parts := make([]string, len(funcs))
	for i, f := range funcs {
		parts[i] = Print(f)
	}
	return strings.Join(parts, "\n\n")
}

// FormatFloat renders v so that it always lexes back as a float literal.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// QuoteChar renders r as a character literal.
func QuoteChar(r rune) string {
	switch r {
	case '\'':
		return `'\''`
	case '\\':
		return `'\\'`
	case '\n':
		return `'\n'`
	case '\t':
		return `'\t'`
	}
	return "'" + string(r) + "'"
}

// QuoteString renders s as a string literal.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

type printer struct {
	buf   bytes.Buffer
	depth int
}

func (p *printer) print(s string) { p.buf.WriteString(s) }

// newline starts a new line at the current depth.
func (p *printer) newline() {
	p.buf.WriteByte('\n')
	for i := 0; i < p.depth; i++ {
		p.buf.WriteString(Indent)
	}
}

func (p *printer) node(n Node) {
	switch n := n.(type) {
	case Expr:
		p.expr(n)
	case Stmt:
		p.stmt(n)
	case *Func:
		p.fn(n)
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", n))
	}
}

func (p *printer) fn(f *Func) {
	p.print(f.ReturnType.String())
	p.print(" ")
	p.print(f.Name.Name)
	p.print("(")
	for i, param := range f.Params {
		if i > 0 {
			p.print(", ")
		}
		p.print(param.String())
	}
	p.print(") ")
	p.block(f.Body)
}

func (p *printer) exprList(list []Expr) {
	for i, e := range list {
		if i > 0 {
			p.print(", ")
		}
		p.expr(e)
	}
}

func (p *printer) expr(e Expr) {
	switch e := e.(type) {
	case *IntLit:
		p.print(strconv.FormatInt(e.Value, 10))
	case *FloatLit:
		p.print(FormatFloat(e.Value))
	case *CharLit:
		p.print(QuoteChar(e.Value))
	case *StringLit:
		p.print(QuoteString(e.Value))
	case *Ident:
		p.print(e.Name)
	case *Binop:
		p.print("(")
		p.expr(e.Lhs)
		p.print(" " + e.Op.String() + " ")
		p.expr(e.Rhs)
		p.print(")")
	case *FuncCall:
		p.print(e.Callee.Name)
		p.print("(")
		p.exprList(e.Args)
		p.print(")")
	case *Array:
		p.print("[")
		p.exprList(e.Elements)
		p.print("]")
	case *Index:
		p.expr(e.Base)
		p.print("[")
		p.expr(e.Index)
		p.print("]")
	default:
		panic(fmt.Sprintf("ast: unexpected expression %T", e))
	}
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *Block:
		p.block(s.Body)
	case *ExprStmt:
		p.expr(s.Expr)
		p.print(";")
	case *Return:
		p.print("return")
		if s.Value != nil {
			p.print(" ")
			p.expr(s.Value)
		}
		p.print(";")
	case *If:
		p.print("if (")
		p.expr(s.Cond)
		p.print(")")
		then := s.Then
		if s.Else != nil && openIf(then) {
			// Without braces the else would bind to the inner if.
			then = &Block{Position: then.Pos(), Body: []Stmt{then}}
		}
		p.body(then)
		if s.Else != nil {
			if _, ok := then.(*Block); ok {
				p.print(" else")
			} else {
				p.newline()
				p.print("else")
			}
			p.body(s.Else)
		}
	case *While:
		p.print("while (")
		p.expr(s.Cond)
		p.print(")")
		p.body(s.Body)
	default:
		panic(fmt.Sprintf("ast: unexpected statement %T", s))
	}
}

// body prints the statement governed by an if, else or while header.
func (p *printer) body(s Stmt) {
	p.print(" ")
	if b, ok := s.(*Block); ok {
		p.block(b.Body)
		return
	}
	p.depth++
	p.newline()
	p.stmt(s)
	p.depth--
}

func (p *printer) block(body []Stmt) {
	if len(body) == 0 {
		p.print("{}")
		return
	}
	p.print("{")
	p.depth++
	for _, s := range body {
		p.newline()
		p.stmt(s)
	}
	p.depth--
	p.newline()
	p.print("}")
}

// openIf reports whether s ends in an if statement without an else, i.e.
// whether a following else token would be captured by s.
func openIf(s Stmt) bool {
	switch s := s.(type) {
	case *If:
		if s.Else == nil {
			return true
		}
		return openIf(s.Else)
	case *While:
		return openIf(s.Body)
	}
	return false
}
