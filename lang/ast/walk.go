// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package ast

import "fmt"

// Inspect traverses the tree rooted at n in depth-first order. It calls f for
// each node; if f returns false the children of that node are skipped.
// Absent optional children (If.Else, Return.Value) are not visited.
func Inspect(n Node, f func(Node) bool) {
	if !f(n) {
		return
	}
	switch n := n.(type) {
	case *IntLit, *FloatLit, *CharLit, *StringLit, *Ident:
	case *Binop:
		Inspect(n.Lhs, f)
		Inspect(n.Rhs, f)
	case *FuncCall:
		Inspect(n.Callee, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *Array:
		for _, e := range n.Elements {
			Inspect(e, f)
		}
	case *Index:
		Inspect(n.Base, f)
		Inspect(n.Index, f)
	case *Block:
		for _, s := range n.Body {
			Inspect(s, f)
		}
	case *ExprStmt:
		Inspect(n.Expr, f)
	case *If:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *While:
		Inspect(n.Cond, f)
		Inspect(n.Body, f)
	case *Return:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	case *Func:
		Inspect(n.Name, f)
		for _, p := range n.Params {
			Inspect(p.Name, f)
		}
		for _, s := range n.Body {
			Inspect(s, f)
		}
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", n))
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	count := 0
	Inspect(n, func(Node) bool {
		count++
		return true
	})
	return count
}
