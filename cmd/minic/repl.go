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
	"os"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/probeum/go-minic/lang/ast"
	"github.com/probeum/go-minic/lang/lexer"
	"github.com/probeum/go-minic/lang/parser"
	"github.com/probeum/go-minic/log"
)

const (
	replContPrompt = "...... "
	replName       = "<repl>"
	replHelp       = `Enter function definitions or statements; they are echoed in canonical form.
Input continues on the next line while it is incomplete.
  :tokens  toggle printing of the token stream
  :help    show this text
  :quit    exit (Ctrl+D also works)`
)

var replCommand = cli.Command{
	Action:   runREPL,
	Name:     "repl",
	Usage:    "Start an interactive formatting prompt",
	Category: "SOURCE COMMANDS",
}

// replSession holds the state shared between inputs.
type replSession struct {
	showTokens bool
}

// eval parses one complete input and returns its canonical form. Inputs that
// start with a type keyword are function definitions, anything else is a
// statement list.
func (s *replSession) eval(src string) (string, error) {
	toks, err := lexer.Tokenize(replName, src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if s.showTokens {
		for _, tok := range toks {
			fmt.Fprintf(&b, "%s %s %q\n", tok.Pos, tok.Type, tok.Literal)
		}
	}
	if len(toks) > 0 && toks[0].Type.IsType() {
		funcs, err := parser.Parse(toks)
		if err != nil {
			return "", err
		}
		b.WriteString(ast.PrintProgram(funcs))
		return b.String(), nil
	}
	stmts, err := parser.ParseStatements(toks)
	if err != nil {
		return "", err
	}
	for i, stmt := range stmts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(stmt.String())
	}
	return b.String(), nil
}

// command handles a ":" directive. It reports whether the session should end.
func (s *replSession) command(w io.Writer, line string) (exit bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q", ":exit":
		return true
	case ":tokens":
		s.showTokens = !s.showTokens
		fmt.Fprintf(w, "token output %v\n", s.showTokens)
	case ":help":
		fmt.Fprintln(w, replHelp)
	default:
		fmt.Fprintln(w, "unknown command, type :help for help")
	}
	return false
}

// incomplete reports whether src stops in the middle of a construct and
// more lines should be read before evaluating it.
func incomplete(src string) bool {
	toks, err := lexer.Tokenize(replName, src)
	if err != nil {
		return parser.IsIncomplete(err)
	}
	if len(toks) > 0 && toks[0].Type.IsType() {
		_, err = parser.Parse(toks)
	} else {
		_, err = parser.ParseStatements(toks)
	}
	return parser.IsIncomplete(err)
}

// readInput reads lines until they form a complete input. The boolean is
// false at end of input.
func readInput(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl+C drops the pending input.
			b.Reset()
			continue
		}
		if err != nil {
			log.Error("Failed to read input", "err", err)
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

// runREPL is the repl command.
func runREPL(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out := ctx.App.Writer
	fmt.Fprintf(out, "MiniC %s\nType :help for help, :quit or Ctrl+D to exit.\n", version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if hist := cfg.REPL.HistoryFile; hist != "" {
		if f, err := os.Open(hist); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, err := os.Create(hist)
			if err != nil {
				log.Warn("Failed to save history", "file", hist, "err", err)
				return
			}
			ln.WriteHistory(f)
			f.Close()
		}()
	}

	session := new(replSession)
	for {
		src, ok := readInput(ln, cfg.REPL.Prompt, replContPrompt)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			if session.command(out, src) {
				return nil
			}
			continue
		}
		res, err := session.eval(src)
		if err != nil {
			printDiagnostic(errWriter(ctx), err, src)
			continue
		}
		fmt.Fprintln(out, res)
	}
}
