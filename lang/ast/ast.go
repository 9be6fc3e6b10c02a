// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package ast defines the Abstract Syntax Tree for MiniC.
//
// Design overview:
//
//   - All AST nodes implement the Node interface via Pos and String.
//   - Expressions and statements each have a marker interface with an
//     unexported method, so the variant sets are closed to this package.
//     Consumers dispatch with a type switch over the concrete pointer types.
//   - Nodes are built once by the parser and never mutated afterwards. Every
//     child is owned by exactly one parent.
//   - String renders the canonical source form (see printer.go).
package ast

import (
	"fmt"

	"github.com/probeum/go-minic/lang/token"
)

// ---------------------------------------------------------------------------
// Core interfaces
// ---------------------------------------------------------------------------

// Node is the base interface that every AST node must implement.
type Node interface {
	// Pos returns the position of the first token of the node; for binary
	// expressions it is the operator.
	Pos() token.Position

	// String returns the canonical source form of the node.
	String() string
}

// Expr is a marker interface for all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Type is one of the four built-in MiniC types. There are no user-defined
// types.
type Type int

const (
	Int Type = iota
	Float
	Char
	String
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case Char:
		return "char"
	case String:
		return "string"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// TypeOf maps a type keyword to its Type.
func TypeOf(tt token.Type) (Type, bool) {
	switch tt {
	case token.INT:
		return Int, true
	case token.FLOAT:
		return Float, true
	case token.CHAR:
		return Char, true
	case token.STRING:
		return String, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// Op is a binary operator.
type Op int

const (
	Add    Op = iota // +
	Sub              // -
	Mul              // *
	Div              // /
	Assign           // =
	Eq               // ==
	Neq              // !=
	Lt               // <
	Gt               // >
	Leq              // <=
	Geq              // >=
)

// String returns the source symbol of the operator.
func (op Op) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Assign:
		return "="
	case Eq:
		return "=="
	case Neq:
		return "!="
	case Lt:
		return "<"
	case Gt:
		return ">"
	case Leq:
		return "<="
	case Geq:
		return ">="
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// OpOf maps an operator token to its binary operator.
func OpOf(tt token.Type) (Op, bool) {
	switch tt {
	case token.PLUS:
		return Add, true
	case token.MINUS:
		return Sub, true
	case token.STAR:
		return Mul, true
	case token.SLASH:
		return Div, true
	case token.ASSIGN:
		return Assign, true
	case token.EQ:
		return Eq, true
	case token.NEQ:
		return Neq, true
	case token.LT:
		return Lt, true
	case token.GT:
		return Gt, true
	case token.LTE:
		return Leq, true
	case token.GTE:
		return Geq, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// IntLit is an integer literal: 42.
type IntLit struct {
	Position token.Position
	Value    int64
}

// FloatLit is a floating-point literal: 3.14.
type FloatLit struct {
	Position token.Position
	Value    float64
}

// CharLit is a character literal: 'c'.
type CharLit struct {
	Position token.Position
	Value    rune
}

// StringLit is a string literal: "hello". Value holds the decoded text.
type StringLit struct {
	Position token.Position
	Value    string
}

// Ident is a reference to a variable or function.
type Ident struct {
	Position token.Position
	Name     string
}

// Binop is a binary expression: Lhs Op Rhs. Assignment is a Binop too.
type Binop struct {
	Position token.Position // operator
	Lhs      Expr
	Op       Op
	Rhs      Expr
}

// FuncCall is a call of a named function: f(x, y).
type FuncCall struct {
	Position token.Position
	Callee   *Ident
	Args     []Expr
}

// Array is an array literal: [a, b, c].
type Array struct {
	Position token.Position // '['
	Elements []Expr
}

// Index is a subscript expression: base[index].
type Index struct {
	Position token.Position
	Base     Expr
	Index    Expr
}

func (*IntLit) exprNode()    {}
func (*FloatLit) exprNode()  {}
func (*CharLit) exprNode()   {}
func (*StringLit) exprNode() {}
func (*Ident) exprNode()     {}
func (*Binop) exprNode()     {}
func (*FuncCall) exprNode()  {}
func (*Array) exprNode()     {}
func (*Index) exprNode()     {}

func (e *IntLit) Pos() token.Position    { return e.Position }
func (e *FloatLit) Pos() token.Position  { return e.Position }
func (e *CharLit) Pos() token.Position   { return e.Position }
func (e *StringLit) Pos() token.Position { return e.Position }
func (e *Ident) Pos() token.Position     { return e.Position }
func (e *Binop) Pos() token.Position     { return e.Position }
func (e *FuncCall) Pos() token.Position  { return e.Position }
func (e *Array) Pos() token.Position     { return e.Position }
func (e *Index) Pos() token.Position     { return e.Position }

func (e *IntLit) String() string    { return Print(e) }
func (e *FloatLit) String() string  { return Print(e) }
func (e *CharLit) String() string   { return Print(e) }
func (e *StringLit) String() string { return Print(e) }
func (e *Ident) String() string     { return e.Name }
func (e *Binop) String() string     { return Print(e) }
func (e *FuncCall) String() string  { return Print(e) }
func (e *Array) String() string     { return Print(e) }
func (e *Index) String() string     { return Print(e) }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Block is a brace-delimited statement list: { s1 s2 ... }.
type Block struct {
	Position token.Position // '{'
	Body     []Stmt
}

// ExprStmt is an expression evaluated for its effect: f(x);
type ExprStmt struct {
	Expr Expr
}

// If is a conditional: if (Cond) Then [else Else]. Else is nil when absent.
type If struct {
	Position token.Position
	Cond     Expr
	Then     Stmt
	Else     Stmt
}

// While is a loop: while (Cond) Body.
type While struct {
	Position token.Position
	Cond     Expr
	Body     Stmt
}

// Return is a return statement. Value is nil for a bare return.
type Return struct {
	Position token.Position
	Value    Expr
}

func (*Block) stmtNode()    {}
func (*ExprStmt) stmtNode() {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Return) stmtNode()   {}

func (s *Block) Pos() token.Position    { return s.Position }
func (s *ExprStmt) Pos() token.Position { return s.Expr.Pos() }
func (s *If) Pos() token.Position       { return s.Position }
func (s *While) Pos() token.Position    { return s.Position }
func (s *Return) Pos() token.Position   { return s.Position }

func (s *Block) String() string    { return Print(s) }
func (s *ExprStmt) String() string { return Print(s) }
func (s *If) String() string       { return Print(s) }
func (s *While) String() string    { return Print(s) }
func (s *Return) String() string   { return Print(s) }

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

// Param is a single typed function parameter.
type Param struct {
	Type Type
	Name *Ident
}

func (p Param) String() string { return p.Type.String() + " " + p.Name.Name }

// Func is a top-level function definition. A parsed program is an ordered
// list of Funcs.
type Func struct {
	Position   token.Position // return type keyword
	ReturnType Type
	Name       *Ident
	Params     []Param
	Body       []Stmt
}

func (f *Func) Pos() token.Position { return f.Position }
func (f *Func) String() string      { return Print(f) }
