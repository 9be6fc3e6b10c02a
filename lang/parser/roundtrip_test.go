// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/probeum/go-minic/lang/ast"
)

// treeGen builds random well-formed trees from a fuzz.Continue.
type treeGen struct {
	c fuzz.Continue
}

var (
	genNames   = []string{"a", "b", "x", "y1", "_tmp", "ifx", "whilst", "returned", "integer"}
	genChars   = []rune{'a', 'Z', '0', ' ', '"', '\n', '\t', '\\', '\'', 'é', '中'}
	genStrings = []string{"", "hi", "two words", `q"uote`, `back\slash`, "line\nbreak", "tab\t", "héllo"}
	genOps     = []ast.Op{ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Assign, ast.Eq, ast.Neq, ast.Lt, ast.Gt, ast.Leq, ast.Geq}
	genTypes   = []ast.Type{ast.Int, ast.Float, ast.Char, ast.String}
)

func (g *treeGen) ident() *ast.Ident {
	return &ast.Ident{Name: genNames[g.c.Intn(len(genNames))]}
}

func (g *treeGen) exprs(depth, max int) []ast.Expr {
	var list []ast.Expr
	for i := g.c.Intn(max + 1); i > 0; i-- {
		list = append(list, g.expr(depth))
	}
	return list
}

func (g *treeGen) expr(depth int) ast.Expr {
	if depth <= 0 || g.c.Intn(3) == 0 {
		switch g.c.Intn(5) {
		case 0:
			return &ast.IntLit{Value: g.c.Int63()}
		case 1:
			return &ast.FloatLit{Value: float64(g.c.Intn(1<<20)) / 64}
		case 2:
			return &ast.CharLit{Value: genChars[g.c.Intn(len(genChars))]}
		case 3:
			return &ast.StringLit{Value: genStrings[g.c.Intn(len(genStrings))]}
		default:
			return g.ident()
		}
	}
	switch g.c.Intn(4) {
	case 0:
		return &ast.FuncCall{Callee: g.ident(), Args: g.exprs(depth-1, 3)}
	case 1:
		return &ast.Array{Elements: g.exprs(depth-1, 3)}
	case 2:
		return &ast.Index{Base: g.expr(depth - 1), Index: g.expr(depth - 1)}
	default:
		return &ast.Binop{Lhs: g.expr(depth - 1), Op: genOps[g.c.Intn(len(genOps))], Rhs: g.expr(depth - 1)}
	}
}

func (g *treeGen) stmts(depth, max int) []ast.Stmt {
	var list []ast.Stmt
	for i := g.c.Intn(max + 1); i > 0; i-- {
		list = append(list, g.stmt(depth))
	}
	return list
}

func (g *treeGen) stmt(depth int) ast.Stmt {
	if depth <= 0 {
		return &ast.ExprStmt{Expr: g.expr(2)}
	}
	switch g.c.Intn(5) {
	case 0:
		return &ast.Block{Body: g.stmts(depth-1, 3)}
	case 1:
		s := &ast.If{Cond: g.expr(2), Then: g.stmt(depth - 1)}
		if g.c.RandBool() {
			s.Else = g.stmt(depth - 1)
		}
		return s
	case 2:
		return &ast.While{Cond: g.expr(2), Body: g.stmt(depth - 1)}
	case 3:
		s := &ast.Return{}
		if g.c.RandBool() {
			s.Value = g.expr(2)
		}
		return s
	default:
		return &ast.ExprStmt{Expr: g.expr(3)}
	}
}

func (g *treeGen) fn() *ast.Func {
	f := &ast.Func{
		ReturnType: genTypes[g.c.Intn(len(genTypes))],
		Name:       g.ident(),
		Body:       g.stmts(3, 4),
	}
	for i := g.c.Intn(4); i > 0; i-- {
		f.Params = append(f.Params, ast.Param{Type: genTypes[g.c.Intn(len(genTypes))], Name: g.ident()})
	}
	return f
}

// endsInOpenIf reports whether an else token following s would bind to an if
// inside s.
func endsInOpenIf(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.If:
		return s.Else == nil || endsInOpenIf(s.Else)
	case *ast.While:
		return endsInOpenIf(s.Body)
	}
	return false
}

// braceOpenIfs wraps every then-branch that would capture its if's else in a
// block, which is the tree the printed form parses back to. It returns the
// number of branches wrapped.
func braceOpenIfs(n ast.Node) int {
	var wrapped int
	ast.Inspect(n, func(n ast.Node) bool {
		if s, ok := n.(*ast.If); ok && s.Else != nil && endsInOpenIf(s.Then) {
			s.Then = &ast.Block{Body: []ast.Stmt{s.Then}}
			wrapped++
		}
		return true
	})
	return wrapped
}

func TestPrintParseRoundTrip(t *testing.T) {
	f := fuzz.NewWithSeed(1).Funcs(func(fn *ast.Func, c fuzz.Continue) {
		*fn = *(&treeGen{c: c}).fn()
	})
	var braced, bareNested int
	for i := 0; i < 300; i++ {
		var prog [3]ast.Func
		f.Fuzz(&prog)

		funcs := []*ast.Func{&prog[0], &prog[1], &prog[2]}
		src := ast.PrintProgram(funcs)
		for _, fn := range funcs {
			ast.Inspect(fn, func(n ast.Node) bool {
				if s, ok := n.(*ast.If); ok && s.Else != nil {
					switch s.Then.(type) {
					case *ast.If, *ast.While:
						if !endsInOpenIf(s.Then) {
							bareNested++
						}
					}
				}
				return true
			})
			braced += braceOpenIfs(fn)
		}
		reparsed, err := ParseFile("roundtrip.mc", src)
		require.NoError(t, err, "printed source:\n%s", src)
		if diff := cmp.Diff(funcs, reparsed, treeOpts); diff != "" {
			t.Fatalf("round trip changed the tree (-want +got):\n%s\nsource:\n%s", diff, src)
		}
		require.Equal(t, src, ast.PrintProgram(reparsed), "printing is not idempotent")
	}
	require.NotZero(t, braced, "no then-branch needed bracing")
	require.NotZero(t, bareNested, "no closed nested statement printed bare before else")
}

func TestOpenIfIsBracedBeforeElse(t *testing.T) {
	// Built by hand: the inner if has no else, so printing it bare would
	// change which if owns the else.
	tree := &ast.If{
		Cond: &ast.Ident{Name: "a"},
		Then: &ast.While{
			Cond: &ast.Ident{Name: "b"},
			Body: &ast.If{Cond: &ast.Ident{Name: "c"}, Then: &ast.Return{}},
		},
		Else: &ast.Return{},
	}
	stmts := mustParseStmts(t, tree.String())
	require.Len(t, stmts, 1)

	got := stmts[0].(*ast.If)
	require.NotNil(t, got.Else, "else must stay with the outer if")
	block, ok := got.Then.(*ast.Block)
	require.True(t, ok, "then branch is braced, got %T", got.Then)
	if diff := cmp.Diff(tree.Then, block.Body[0], treeOpts); diff != "" {
		t.Errorf("braced body differs (-want +got):\n%s", diff)
	}
}
