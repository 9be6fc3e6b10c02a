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

// minic is the command-line front-end for the MiniC language.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/probeum/go-minic/log"
)

const (
	clientIdentifier = "minic"
	version          = "0.3.0"
)

var (
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: int(log.LvlInfo),
	}
	jobsFlag = cli.IntFlag{
		Name:  "jobs",
		Usage: "Maximum number of files parsed concurrently",
		Value: runtime.NumCPU(),
	}
	noColorFlag = cli.BoolFlag{
		Name:  "nocolor",
		Usage: "Disable colored diagnostics and log output",
	}
	originsFlag = cli.BoolFlag{
		Name:  "log.origins",
		Usage: "Print the file and line of log call sites",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.HelpName = clientIdentifier
	app.Usage = "the MiniC language front-end"
	app.Version = version
	app.Flags = []cli.Flag{
		configFileFlag,
		verbosityFlag,
		jobsFlag,
		noColorFlag,
		originsFlag,
	}
	app.Commands = []cli.Command{
		tokensCommand,
		astCommand,
		fmtCommand,
		checkCommand,
		replCommand,
		watchCommand,
		dumpConfigCommand,
		versionCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := makeConfig(ctx)
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Verbosity, cfg.Log.Color, cfg.Log.Origins)
		return nil
	}
	return app
}

// setupLogging routes the root logger to stderr and configures diagnostic
// colors to match.
func setupLogging(verbosity int, usecolor, origins bool) {
	log.Root().SetHandler(log.TerminalHandler(log.Lvl(verbosity), usecolor))
	log.PrintOrigins(origins)
	if !usecolor {
		color.NoColor = true
	}
}

var versionCommand = cli.Command{
	Action:    printVersion,
	Name:      "version",
	Usage:     "Print version numbers",
	ArgsUsage: " ",
	Category:  "MISCELLANEOUS COMMANDS",
	Description: `
The output of this command is supposed to be machine-readable.
`,
}

func printVersion(ctx *cli.Context) error {
	w := ctx.App.Writer
	fmt.Fprintln(w, clientIdentifier)
	fmt.Fprintln(w, "Version:", version)
	fmt.Fprintln(w, "Architecture:", runtime.GOARCH)
	fmt.Fprintln(w, "Go Version:", runtime.Version())
	fmt.Fprintln(w, "Operating System:", runtime.GOOS)
	fmt.Fprintf(w, "GOPATH=%s\n", os.Getenv("GOPATH"))
	fmt.Fprintf(w, "GOROOT=%s\n", runtime.GOROOT())
	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(os.Args[0]), err)
		os.Exit(1)
	}
}
