// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package frontend

import (
	"runtime"

	"github.com/probeum/go-minic/log"
)

// DefaultConfig contains default settings for the front-end driver.
var DefaultConfig = Config{
	Jobs:       runtime.NumCPU(),
	CacheSize:  128,
	Extensions: []string{".mc"},
}

// Config contains the driver settings.
type Config struct {
	// Jobs is the maximum number of files parsed concurrently.
	Jobs int

	// CacheSize is the number of parsed units kept in memory. Zero disables
	// the cache.
	CacheSize int

	// Extensions lists the file extensions picked up when a directory is
	// expanded into source files.
	Extensions []string
}

// sanitize checks the provided user configurations and changes anything
// that's unreasonable or unworkable.
func (config *Config) sanitize() Config {
	conf := *config
	if conf.Jobs < 1 {
		log.Warn("Sanitizing invalid frontend job count", "provided", conf.Jobs, "updated", 1)
		conf.Jobs = 1
	}
	if conf.CacheSize < 0 {
		log.Warn("Sanitizing invalid frontend cache size", "provided", conf.CacheSize, "updated", 0)
		conf.CacheSize = 0
	}
	if len(conf.Extensions) == 0 {
		log.Warn("Sanitizing empty source extension list", "updated", DefaultConfig.Extensions)
		conf.Extensions = DefaultConfig.Extensions
	}
	return conf
}
