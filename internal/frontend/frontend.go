// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package frontend drives the MiniC lexer and parser over files: it reads and
// decodes sources, caches parse results and fans work out across files.
package frontend

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"

	"github.com/probeum/go-minic/lang/ast"
	"github.com/probeum/go-minic/lang/parser"
	"github.com/probeum/go-minic/log"
)

// Unit is one successfully parsed source. Units are shared through the cache
// and must not be modified.
type Unit struct {
	Name   string
	Source string
	Funcs  []*ast.Func
}

// Result is the outcome of parsing one file. Exactly one of Unit and Err is
// set.
type Result struct {
	Path string
	Unit *Unit
	Err  error
}

// Frontend parses MiniC sources with an optional cache of recent results.
// It is safe for concurrent use.
type Frontend struct {
	config Config
	cache  *lru.Cache // nil when caching is disabled

	hits, misses uint64 // atomic
}

// New creates a front-end driver with the given settings.
func New(config Config) (*Frontend, error) {
	conf := config.sanitize()
	f := &Frontend{config: conf}
	if conf.CacheSize > 0 {
		cache, err := lru.New(conf.CacheSize)
		if err != nil {
			return nil, err
		}
		f.cache = cache
	}
	return f, nil
}

// Config returns the effective settings after sanitization.
func (f *Frontend) Config() Config {
	return f.config
}

// CacheStats returns the number of cache hits and misses so far.
func (f *Frontend) CacheStats() (hits, misses uint64) {
	return atomic.LoadUint64(&f.hits), atomic.LoadUint64(&f.misses)
}

func unitKey(name, src string) [32]byte {
	h := sha3.New256()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(src))

	var key [32]byte
	h.Sum(key[:0])
	return key
}

// Parse lexes and parses src. Errors are *lexer.Error or *parser.SyntaxError
// and carry name in their position. Failed parses are not cached.
func (f *Frontend) Parse(name, src string) (*Unit, error) {
	var key [32]byte
	if f.cache != nil {
		key = unitKey(name, src)
		if cached, ok := f.cache.Get(key); ok {
			atomic.AddUint64(&f.hits, 1)
			return cached.(*Unit), nil
		}
		atomic.AddUint64(&f.misses, 1)
	}
	start := time.Now()
	funcs, err := parser.ParseFile(name, src)
	if err != nil {
		log.Debug("Parse failed", "name", name, "err", err)
		return nil, err
	}
	u := &Unit{Name: name, Source: src, Funcs: funcs}
	log.Debug("Parsed unit", "name", name, "funcs", len(funcs), "elapsed", time.Since(start))

	if f.cache != nil {
		f.cache.Add(key, u)
	}
	return u, nil
}

// ParseFile reads, decodes and parses the file at path.
func (f *Frontend) ParseFile(path string) (*Unit, error) {
	src, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return f.Parse(path, src)
}

// ProcessFiles parses paths concurrently, using at most Jobs workers, and
// passes each result to fn in input order. fn runs on a single goroutine. A
// parse failure is delivered to fn rather than aborting the run; if fn returns
// an error the remaining work is cancelled and that error is returned.
func (f *Frontend) ProcessFiles(ctx context.Context, paths []string, fn func(Result) error) error {
	type slot struct {
		res  Result
		done chan struct{}
	}
	slots := make([]slot, len(paths))
	for i := range slots {
		slots[i].done = make(chan struct{})
	}
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, f.config.Jobs)

	// Feeder: start one parse per path, bounded by sem.
	g.Go(func() error {
		for i, path := range paths {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			i, path := i, path
			g.Go(func() error {
				defer func() { <-sem }()
				u, err := f.ParseFile(path)
				slots[i].res = Result{Path: path, Unit: u, Err: err}
				close(slots[i].done)
				return nil
			})
		}
		return nil
	})
	// Consumer: hand results over in order.
	g.Go(func() error {
		for i := range slots {
			select {
			case <-slots[i].done:
			case <-gctx.Done():
				return gctx.Err()
			}
			if err := fn(slots[i].res); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}
