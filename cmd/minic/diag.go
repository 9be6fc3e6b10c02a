// Copyright 2024 The go-minic Authors
// This file is part of go-minic.
//
// go-minic is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-minic is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-minic. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/probeum/go-minic/lang/lexer"
	"github.com/probeum/go-minic/lang/parser"
	"github.com/probeum/go-minic/lang/token"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	caretColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	fileColor  = color.New(color.Bold).SprintFunc()
)

// errorPos extracts the source position from lexical and syntax errors.
func errorPos(err error) (token.Position, bool) {
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		return lerr.Pos, true
	}
	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		return serr.Pos, true
	}
	return token.Position{}, false
}

// errorMsg is the error text without its position prefix.
func errorMsg(err error) string {
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		return lerr.Msg
	}
	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		return serr.Msg
	}
	return err.Error()
}

// printDiagnostic writes err in compiler style. When err carries a position
// inside src, the offending line is quoted with a caret under the column.
func printDiagnostic(w io.Writer, err error, src string) {
	pos, ok := errorPos(err)
	if !ok {
		fmt.Fprintf(w, "%s %v\n", errorLabel("error:"), err)
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", fileColor(pos.String()+":"), errorLabel("error:"), errorMsg(err))

	lines := strings.Split(src, "\n")
	if pos.Line < 1 || pos.Line > len(lines) {
		return
	}
	line := lines[pos.Line-1]
	fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(line, "\t", " "))

	col := pos.Column - 1
	if n := utf8.RuneCountInString(line); col > n {
		col = n
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", col), caretColor("^"))
}
