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
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/probeum/go-minic/internal/frontend"
	"github.com/probeum/go-minic/lang/ast"
	"github.com/probeum/go-minic/lang/lexer"
	"github.com/probeum/go-minic/log"
)

var (
	listFlag = cli.BoolFlag{
		Name:  "l",
		Usage: "List files whose formatting differs from the canonical form",
	}
	writeFlag = cli.BoolFlag{
		Name:  "w",
		Usage: "Write the canonical form back to the source files",
	}
	checkFlag = cli.BoolFlag{
		Name:  "check",
		Usage: "Exit with a non-zero status if any file is not canonical",
	}
)

var (
	tokensCommand = cli.Command{
		Action:    printTokens,
		Name:      "tokens",
		Usage:     "Print the token stream of a source file",
		ArgsUsage: "<file>",
		Category:  "SOURCE COMMANDS",
	}
	astCommand = cli.Command{
		Action:    dumpAST,
		Name:      "ast",
		Usage:     "Dump the syntax tree of a source file",
		ArgsUsage: "<file>",
		Category:  "SOURCE COMMANDS",
	}
	fmtCommand = cli.Command{
		Action:    formatFiles,
		Name:      "fmt",
		Usage:     "Print or rewrite sources in canonical form",
		ArgsUsage: "<path>...",
		Flags:     []cli.Flag{listFlag, writeFlag, checkFlag},
		Category:  "SOURCE COMMANDS",
		Description: `
Without flags the canonical form of every file is printed to standard output.
Directories are searched recursively for source files.`,
	}
	checkCommand = cli.Command{
		Action:    checkFiles,
		Name:      "check",
		Usage:     "Parse sources and report the first error in each file",
		ArgsUsage: "<path>...",
		Category:  "SOURCE COMMANDS",
	}
	watchCommand = cli.Command{
		Action:    watchDir,
		Name:      "watch",
		Usage:     "Re-check sources in a directory whenever they change",
		ArgsUsage: "<dir>",
		Category:  "SOURCE COMMANDS",
	}
)

// errFailed is returned after diagnostics have already been printed.
var errFailed = cli.NewExitError("", 1)

func singleFile(ctx *cli.Context) (string, string, error) {
	if ctx.NArg() != 1 {
		return "", "", errors.New("this command requires exactly one file argument")
	}
	path := ctx.Args().First()
	src, err := frontend.ReadSource(path)
	return path, src, err
}

func inputFiles(ctx *cli.Context, fe *frontend.Frontend) ([]string, error) {
	if ctx.NArg() == 0 {
		return nil, errors.New("no input files")
	}
	return frontend.ExpandPaths(ctx.Args(), fe.Config().Extensions)
}

// printTokens is the tokens command.
func printTokens(ctx *cli.Context) error {
	path, src, err := singleFile(ctx)
	if err != nil {
		return err
	}
	toks, err := lexer.Tokenize(path, src)
	if err != nil {
		printDiagnostic(errWriter(ctx), err, src)
		return errFailed
	}
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Position", "Type", "Class", "Literal"})
	table.SetAutoFormatHeaders(false)
	for _, tok := range toks {
		pos := fmt.Sprintf("%d:%d", tok.Pos.Line, tok.Pos.Column)
		table.Append([]string{pos, tok.Type.String(), tok.Type.Class().String(), tok.Literal})
	}
	table.Render()
	return nil
}

// dumpAST is the ast command.
func dumpAST(ctx *cli.Context) error {
	fe, _, err := makeFrontend(ctx)
	if err != nil {
		return err
	}
	path, src, err := singleFile(ctx)
	if err != nil {
		return err
	}
	u, err := fe.Parse(path, src)
	if err != nil {
		printDiagnostic(errWriter(ctx), err, src)
		return errFailed
	}
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisableMethods:          true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	cfg.Fdump(ctx.App.Writer, u.Funcs)
	return nil
}

// canonical renders a parsed unit the way fmt writes it to disk.
func canonical(u *frontend.Unit) string {
	if len(u.Funcs) == 0 {
		return ""
	}
	return ast.PrintProgram(u.Funcs) + "\n"
}

// formatFiles is the fmt command.
func formatFiles(ctx *cli.Context) error {
	fe, _, err := makeFrontend(ctx)
	if err != nil {
		return err
	}
	paths, err := inputFiles(ctx, fe)
	if err != nil {
		return err
	}
	var (
		list    = ctx.Bool(listFlag.Name)
		write   = ctx.Bool(writeFlag.Name)
		check   = ctx.Bool(checkFlag.Name)
		failed  bool
		changed int
	)
	err = fe.ProcessFiles(context.Background(), paths, func(r frontend.Result) error {
		if r.Err != nil {
			failed = true
			printDiagnostic(errWriter(ctx), r.Err, readQuiet(r.Path))
			return nil
		}
		out := canonical(r.Unit)
		if !list && !write && !check {
			fmt.Fprint(ctx.App.Writer, out)
			return nil
		}
		// Compare against the bytes on disk: decoding drops a BOM and
		// rewrites line endings, neither of which is canonical.
		raw, err := ioutil.ReadFile(r.Path)
		if err != nil {
			return err
		}
		if out == string(raw) {
			return nil
		}
		changed++
		if list || check {
			fmt.Fprintln(ctx.App.Writer, r.Path)
		}
		if write {
			info, err := os.Stat(r.Path)
			if err != nil {
				return err
			}
			if err := ioutil.WriteFile(r.Path, []byte(out), info.Mode().Perm()); err != nil {
				return err
			}
			log.Debug("Rewrote source", "path", r.Path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failed || (check && changed > 0) {
		return errFailed
	}
	return nil
}

// checkFiles is the check command.
func checkFiles(ctx *cli.Context) error {
	fe, _, err := makeFrontend(ctx)
	if err != nil {
		return err
	}
	paths, err := inputFiles(ctx, fe)
	if err != nil {
		return err
	}
	var errs, funcs int
	err = fe.ProcessFiles(context.Background(), paths, func(r frontend.Result) error {
		if r.Err != nil {
			errs++
			printDiagnostic(errWriter(ctx), r.Err, readQuiet(r.Path))
			return nil
		}
		funcs += len(r.Unit.Funcs)
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("Checked sources", "files", len(paths), "funcs", funcs, "errors", errs)
	if errs > 0 {
		return errFailed
	}
	return nil
}

// watchDir is the watch command.
func watchDir(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("this command requires exactly one directory argument")
	}
	fe, _, err := makeFrontend(ctx)
	if err != nil {
		return err
	}
	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fe.Watch(sigctx, ctx.Args().First(), func(r frontend.Result) error {
		if r.Err != nil {
			printDiagnostic(errWriter(ctx), r.Err, readQuiet(r.Path))
			return nil
		}
		fmt.Fprintf(ctx.App.Writer, "%s ok (%d funcs)\n", r.Path, len(r.Unit.Funcs))
		return nil
	})
}

// errWriter is where diagnostics go.
func errWriter(ctx *cli.Context) io.Writer {
	if ctx.App.ErrWriter != nil {
		return ctx.App.ErrWriter
	}
	return os.Stderr
}

func readQuiet(path string) string {
	src, _ := frontend.ReadSource(path)
	return src
}
