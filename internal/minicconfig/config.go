// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package minicconfig holds the TOML configuration of the minic tool.
package minicconfig

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"unicode"

	"github.com/naoina/toml"

	"github.com/probeum/go-minic/internal/frontend"
	"github.com/probeum/go-minic/log"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Verbosity int  // 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace
	Color     bool // colorize terminal output when stderr is a terminal
	Origins   bool // print file:line of log call sites
}

// REPLConfig controls the interactive prompt.
type REPLConfig struct {
	HistoryFile string `toml:",omitempty"`
	Prompt      string
}

// Config is the complete tool configuration.
type Config struct {
	Frontend frontend.Config
	Log      LogConfig
	REPL     REPLConfig
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	cfg := Config{
		Frontend: frontend.DefaultConfig,
		Log: LogConfig{
			Verbosity: int(log.LvlInfo),
			Color:     true,
		},
		REPL: REPLConfig{
			Prompt: "minic> ",
		},
	}
	cfg.Frontend.Extensions = append([]string(nil), frontend.DefaultConfig.Extensions...)
	if home, err := os.UserHomeDir(); err == nil {
		cfg.REPL.HistoryFile = filepath.Join(home, ".minic_history")
	}
	return cfg
}

// Load decodes the TOML file into cfg. Fields absent from the file keep
// their current values.
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// Marshal encodes cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

// Validate reports settings that cannot be sanitized silently.
func (cfg *Config) Validate() error {
	if cfg.Log.Verbosity < int(log.LvlCrit) || cfg.Log.Verbosity > int(log.LvlTrace) {
		return fmt.Errorf("invalid log verbosity %d, want %d..%d", cfg.Log.Verbosity, log.LvlCrit, log.LvlTrace)
	}
	for _, ext := range cfg.Frontend.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("invalid source extension %q, want a leading dot", ext)
		}
	}
	return nil
}
