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
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/probeum/go-minic/internal/frontend"
	"github.com/probeum/go-minic/internal/minicconfig"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[FILE]",
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values, or writes them to FILE.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

// makeConfig loads the built-in defaults, then the config file, then applies
// command line flags on top.
func makeConfig(ctx *cli.Context) (minicconfig.Config, error) {
	// Load defaults.
	cfg := minicconfig.Defaults()

	// Load config file.
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := minicconfig.Load(file, &cfg); err != nil {
			return cfg, err
		}
	}

	// Apply flags.
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.GlobalInt(verbosityFlag.Name)
	}
	if ctx.GlobalIsSet(jobsFlag.Name) {
		cfg.Frontend.Jobs = ctx.GlobalInt(jobsFlag.Name)
	}
	if ctx.GlobalBool(noColorFlag.Name) {
		cfg.Log.Color = false
	}
	if ctx.GlobalBool(originsFlag.Name) {
		cfg.Log.Origins = true
	}
	return cfg, cfg.Validate()
}

// makeFrontend creates the parse driver from the effective configuration.
func makeFrontend(ctx *cli.Context) (*frontend.Frontend, minicconfig.Config, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, cfg, err
	}
	fe, err := frontend.New(cfg.Frontend)
	return fe, cfg, err
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := minicconfig.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
