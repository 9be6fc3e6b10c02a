// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probeum/go-minic/lang/ast"
	"github.com/probeum/go-minic/lang/lexer"
	"github.com/probeum/go-minic/lang/token"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// treeOpts compares trees structurally: positions are ignored and a nil
// slice equals an empty one.
var treeOpts = cmp.Options{
	cmpopts.IgnoreTypes(token.Position{}),
	cmpopts.EquateEmpty(),
}

func mustParse(t *testing.T, src string) []*ast.Func {
	t.Helper()
	funcs, err := ParseFile("test.mc", src)
	require.NoError(t, err, "source:\n%s", src)
	return funcs
}

func mustParseStmts(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	toks, err := lexer.Tokenize("test.mc", src)
	require.NoError(t, err)
	stmts, err := ParseStatements(toks)
	require.NoError(t, err, "source:\n%s", src)
	return stmts
}

func mustParseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	toks, err := lexer.Tokenize("test.mc", src)
	require.NoError(t, err)
	e, err := ParseExpr(toks)
	require.NoError(t, err, "source: %s", src)
	return e
}

// syntaxError parses src as a program and returns the *SyntaxError it must
// produce.
func syntaxError(t *testing.T, src string) *SyntaxError {
	t.Helper()
	funcs, err := ParseFile("test.mc", src)
	require.Error(t, err, "source: %s", src)
	require.Nil(t, funcs, "no partial tree on failure")
	var serr *SyntaxError
	require.True(t, errors.As(err, &serr), "error %v is %T, want *SyntaxError", err, err)
	return serr
}

func assertTree(t *testing.T, want, got interface{}) {
	t.Helper()
	if diff := cmp.Diff(want, got, treeOpts); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func id(name string) *ast.Ident { return &ast.Ident{Name: name} }
func num(v int64) *ast.IntLit   { return &ast.IntLit{Value: v} }
func bin(l ast.Expr, op ast.Op, r ast.Expr) *ast.Binop {
	return &ast.Binop{Lhs: l, Op: op, Rhs: r}
}
func stmt(e ast.Expr) *ast.ExprStmt { return &ast.ExprStmt{Expr: e} }

// ---------------------------------------------------------------------------
// Precedence and associativity
// ---------------------------------------------------------------------------

func TestPrecedence(t *testing.T) {
	stmts := mustParseStmts(t, "1 + 2 * 3;")
	require.Len(t, stmts, 1)
	assertTree(t, stmt(bin(num(1), ast.Add, bin(num(2), ast.Mul, num(3)))), stmts[0])
	assert.Equal(t, "(1 + (2 * 3));", stmts[0].String())
}

func TestExpressionTrees(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Expr
	}{
		{"a = b = c", bin(id("a"), ast.Assign, bin(id("b"), ast.Assign, id("c")))},
		{"a - b - c", bin(bin(id("a"), ast.Sub, id("b")), ast.Sub, id("c"))},
		{"a / b * c", bin(bin(id("a"), ast.Div, id("b")), ast.Mul, id("c"))},
		{"a < b < c", bin(bin(id("a"), ast.Lt, id("b")), ast.Lt, id("c"))},
		{"a == b != c", bin(bin(id("a"), ast.Eq, id("b")), ast.Neq, id("c"))},
		{"a = b == c", bin(id("a"), ast.Assign, bin(id("b"), ast.Eq, id("c")))},
		{"a == b < c", bin(id("a"), ast.Eq, bin(id("b"), ast.Lt, id("c")))},
		{"a <= b + c", bin(id("a"), ast.Leq, bin(id("b"), ast.Add, id("c")))},
		{"a >= b", bin(id("a"), ast.Geq, id("b"))},
		{"a > b", bin(id("a"), ast.Gt, id("b"))},
		{"(1 + 2) * 3", bin(bin(num(1), ast.Add, num(2)), ast.Mul, num(3))},
		{"x = (y = 1) + 2", bin(id("x"), ast.Assign, bin(bin(id("y"), ast.Assign, num(1)), ast.Add, num(2)))},
		{"((x))", id("x")},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertTree(t, tt.want, mustParseExpr(t, tt.src))
		})
	}
}

func TestAssociativityPrinting(t *testing.T) {
	assert.Equal(t, "(a = (b = c));", mustParseStmts(t, "a = b = c;")[0].String())
	assert.Equal(t, "((a - b) - c);", mustParseStmts(t, "a - b - c;")[0].String())
}

// ---------------------------------------------------------------------------
// Postfix, literals, arrays
// ---------------------------------------------------------------------------

func TestPostfixChaining(t *testing.T) {
	got := mustParseExpr(t, "f(1)[2]")
	want := &ast.Index{
		Base:  &ast.FuncCall{Callee: id("f"), Args: []ast.Expr{num(1)}},
		Index: num(2),
	}
	assertTree(t, want, got)

	got = mustParseExpr(t, "m[i][j]")
	want = &ast.Index{Base: &ast.Index{Base: id("m"), Index: id("i")}, Index: id("j")}
	assertTree(t, want, got)

	got = mustParseExpr(t, "g()")
	assertTree(t, &ast.FuncCall{Callee: id("g")}, got)

	got = mustParseExpr(t, "h(a, b + 1, k(2))")
	assertTree(t, &ast.FuncCall{Callee: id("h"), Args: []ast.Expr{
		id("a"),
		bin(id("b"), ast.Add, num(1)),
		&ast.FuncCall{Callee: id("k"), Args: []ast.Expr{num(2)}},
	}}, got)
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Expr
	}{
		{"42", num(42)},
		{"3.14", &ast.FloatLit{Value: 3.14}},
		{"3.", &ast.FloatLit{Value: 3}},
		{`'x'`, &ast.CharLit{Value: 'x'}},
		{`'\n'`, &ast.CharLit{Value: '\n'}},
		{`'é'`, &ast.CharLit{Value: 'é'}},
		{`"a\"b"`, &ast.StringLit{Value: `a"b`}},
		{"[]", &ast.Array{}},
		{"[1, [2], x]", &ast.Array{Elements: []ast.Expr{num(1), &ast.Array{Elements: []ast.Expr{num(2)}}, id("x")}}},
		{"[1, 2][0]", &ast.Index{Base: &ast.Array{Elements: []ast.Expr{num(1), num(2)}}, Index: num(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertTree(t, tt.want, mustParseExpr(t, tt.src))
		})
	}
}

func TestParenthesisedIdentCanBeCalled(t *testing.T) {
	assertTree(t, &ast.FuncCall{Callee: id("f"), Args: []ast.Expr{num(1)}}, mustParseExpr(t, "(f)(1)"))
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func TestDanglingElse(t *testing.T) {
	stmts := mustParseStmts(t, "if (a) if (b) x; else y;")
	require.Len(t, stmts, 1)
	want := &ast.If{
		Cond: id("a"),
		Then: &ast.If{Cond: id("b"), Then: stmt(id("x")), Else: stmt(id("y"))},
	}
	assertTree(t, want, stmts[0])
}

func TestEmptyBodies(t *testing.T) {
	stmts := mustParseStmts(t, "while (x) {}")
	require.Len(t, stmts, 1)
	assertTree(t, &ast.While{Cond: id("x"), Body: &ast.Block{}}, stmts[0])
	assert.Equal(t, "while (x) {}", stmts[0].String())

	stmts = mustParseStmts(t, "if (x) {} else {}")
	assert.Equal(t, "if (x) {} else {}", stmts[0].String())

	stmts = mustParseStmts(t, "{}")
	assert.Equal(t, "{}", stmts[0].String())
}

func TestReturn(t *testing.T) {
	stmts := mustParseStmts(t, "return; return x + 1;")
	require.Len(t, stmts, 2)
	assertTree(t, &ast.Return{}, stmts[0])
	assertTree(t, &ast.Return{Value: bin(id("x"), ast.Add, num(1))}, stmts[1])
}

func TestNestedBlocks(t *testing.T) {
	stmts := mustParseStmts(t, "{ a; { b; } while (c) { d; } }")
	want := &ast.Block{Body: []ast.Stmt{
		stmt(id("a")),
		&ast.Block{Body: []ast.Stmt{stmt(id("b"))}},
		&ast.While{Cond: id("c"), Body: &ast.Block{Body: []ast.Stmt{stmt(id("d"))}}},
	}}
	assertTree(t, want, stmts[0])
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

func TestParseFunctions(t *testing.T) {
	src := `
int add(int a, float b) {
    return a + b;
}

string greet() {}

char pick(string s, int i) { return s[i]; }
`
	funcs := mustParse(t, src)
	require.Len(t, funcs, 3)

	want := &ast.Func{
		ReturnType: ast.Int,
		Name:       id("add"),
		Params: []ast.Param{
			{Type: ast.Int, Name: id("a")},
			{Type: ast.Float, Name: id("b")},
		},
		Body: []ast.Stmt{&ast.Return{Value: bin(id("a"), ast.Add, id("b"))}},
	}
	assertTree(t, want, funcs[0])

	assert.Equal(t, ast.String, funcs[1].ReturnType)
	assert.Equal(t, "greet", funcs[1].Name.Name)
	assert.Empty(t, funcs[1].Params)
	assert.Empty(t, funcs[1].Body)

	assert.Equal(t, ast.Char, funcs[2].ReturnType)
	assert.Len(t, funcs[2].Params, 2)
}

func TestFunctionPositions(t *testing.T) {
	funcs := mustParse(t, "\n  int main() { x = 1; }")
	f := funcs[0]
	assert.Equal(t, token.Position{File: "test.mc", Line: 2, Column: 3, Offset: 3}, f.Pos())
	assert.Equal(t, 7, f.Name.Pos().Column)

	assign := f.Body[0].(*ast.ExprStmt).Expr.(*ast.Binop)
	assert.Equal(t, 18, assign.Pos().Column, "binop position is the operator")
	assert.Equal(t, 16, f.Body[0].Pos().Column, "expr stmt position is its expression")
}

func TestEmptyProgram(t *testing.T) {
	funcs := mustParse(t, "  // nothing\n")
	assert.Empty(t, funcs)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestErrorSurfacing(t *testing.T) {
	serr := syntaxError(t, "int f( { }")
	assert.Equal(t, token.LBRACE, serr.Token.Type)
	assert.Equal(t, 1, serr.Pos.Line)
	assert.Equal(t, 8, serr.Pos.Column)
	assert.Equal(t, `test.mc:1:8: expected type, found "{"`, serr.Error())
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		src  string
		msg  string
		line int
		col  int
	}{
		{"x = 1;", `expected function definition, found identifier "x"`, 1, 1},
		{"int", `expected identifier, found end of input`, 1, 4},
		{"int 5() {}", `expected identifier, found integer-literal 5`, 1, 5},
		{"int f() { return 1 }", `expected ";", found "}"`, 1, 20},
		{"int f() { x = ; }", `expected expression, found ";"`, 1, 15},
		{"int f() { if x {} }", `expected "(", found identifier "x"`, 1, 14},
		{"int f() { ; }", `expected expression, found ";"`, 1, 11},
		{"int f() { f(1)(2); }", `cannot call non-identifier expression f(1)`, 1, 15},
		{"int f() { (a + b)(1); }", `cannot call non-identifier expression (a + b)`, 1, 18},
		{"int f() { g(1,); }", `expected expression, found ")"`, 1, 15},
		{"int f(int) {}", `expected identifier, found ")"`, 1, 10},
		{"int f(x) {}", `expected type, found identifier "x"`, 1, 7},
		{"int f() { else x; }", `expected expression, found keyword "else"`, 1, 11},
		{"int f() { a[1; }", `expected "]", found ";"`, 1, 14},
		{"void f() {}", `expected function definition, found identifier "void"`, 1, 1},
		{"int f() { x = 99999999999999999999; }", `integer literal 99999999999999999999 out of range`, 1, 15},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			serr := syntaxError(t, tt.src)
			assert.Equal(t, tt.msg, serr.Msg)
			assert.Equal(t, tt.line, serr.Pos.Line, "line")
			assert.Equal(t, tt.col, serr.Pos.Column, "column")
		})
	}
}

func TestLexicalErrorsPassThrough(t *testing.T) {
	_, err := ParseFile("test.mc", "int f() { x = 3.1.4; }")
	require.Error(t, err)
	var lerr *lexer.Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, 15, lerr.Pos.Column)
}

func TestParseExprRejectsTrailingTokens(t *testing.T) {
	toks, err := lexer.Tokenize("", "a b")
	require.NoError(t, err)
	_, err = ParseExpr(toks)
	var serr *SyntaxError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, `unexpected identifier "b"`, serr.Msg)
}

func TestMissingEOFToken(t *testing.T) {
	toks, err := lexer.Tokenize("", "x;")
	require.NoError(t, err)
	stmts, err := ParseStatements(toks[:len(toks)-1])
	require.NoError(t, err)
	assert.Len(t, stmts, 1)
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		src        string
		incomplete bool
	}{
		{"int main() {", true},
		{"int main() { if (x)", true},
		{"int main() { x = 1", true},
		{"int main(", true},
		{"int main() { /* open", true},
		{"int main() { s = \"abc", true},
		{"int main() { } }", false},
		{"int main() { x = ; }", false},
		{"int main() { x = 1.2.3; }", false},
	}
	for _, tt := range tests {
		_, err := ParseFile("", tt.src)
		require.Error(t, err, tt.src)
		assert.Equal(t, tt.incomplete, IsIncomplete(err), tt.src)
	}
	assert.False(t, IsIncomplete(errors.New("other")))
	assert.False(t, IsIncomplete(nil))
}
