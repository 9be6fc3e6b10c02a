// Copyright 2024 The go-minic Authors
// This file is part of the go-minic library.
//
// The go-minic library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package frontend

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/probeum/go-minic/lang/lexer"
	"github.com/probeum/go-minic/lang/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func newFrontend(t *testing.T, config Config) *Frontend {
	t.Helper()
	f, err := New(config)
	require.NoError(t, err)
	return f
}

func TestDecodeSource(t *testing.T) {
	src, err := DecodeSource([]byte("int f() {}\r\nint g() {}\rint h() {}\n"))
	require.NoError(t, err)
	assert.Equal(t, "int f() {}\nint g() {}\nint h() {}\n", src)

	src, err = DecodeSource([]byte("\xef\xbb\xbfint f() {}"))
	require.NoError(t, err)
	assert.Equal(t, "int f() {}", src)

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	utf16, err := enc.Bytes([]byte("char c() { return 'é'; }\r\n"))
	require.NoError(t, err)
	src, err = DecodeSource(utf16)
	require.NoError(t, err)
	assert.Equal(t, "char c() { return 'é'; }\n", src)
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.mc", "")
	a := writeFile(t, dir, "sub/a.mc", "")
	writeFile(t, dir, "notes.txt", "")
	single := writeFile(t, t.TempDir(), "single.txt", "")

	files, err := ExpandPaths([]string{dir, single}, []string{".mc"})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a, single}, files)

	_, err = ExpandPaths([]string{filepath.Join(dir, "missing")}, []string{".mc"})
	assert.True(t, os.IsNotExist(err))
}

func TestParseCache(t *testing.T) {
	f := newFrontend(t, Config{Jobs: 1, CacheSize: 4, Extensions: []string{".mc"}})

	u1, err := f.Parse("a.mc", "int main() { return 0; }")
	require.NoError(t, err)
	u2, err := f.Parse("a.mc", "int main() { return 0; }")
	require.NoError(t, err)
	assert.Same(t, u1, u2)

	u3, err := f.Parse("b.mc", "int main() { return 0; }")
	require.NoError(t, err)
	assert.NotSame(t, u1, u3, "units are keyed by name as well as source")
	assert.Equal(t, "b.mc", u3.Funcs[0].Pos().File)

	_, err = f.Parse("c.mc", "int main( {")
	require.Error(t, err)
	_, err = f.Parse("c.mc", "int main( {")
	require.Error(t, err)

	hits, misses := f.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(4), misses, "failures are not cached")
}

func TestCacheDisabled(t *testing.T) {
	f := newFrontend(t, Config{Jobs: 1, CacheSize: 0, Extensions: []string{".mc"}})
	u1, err := f.Parse("a.mc", "int f() {}")
	require.NoError(t, err)
	u2, err := f.Parse("a.mc", "int f() {}")
	require.NoError(t, err)
	assert.NotSame(t, u1, u2)

	hits, misses := f.CacheStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestSanitize(t *testing.T) {
	f := newFrontend(t, Config{Jobs: -3, CacheSize: -1})
	conf := f.Config()
	assert.Equal(t, 1, conf.Jobs)
	assert.Equal(t, 0, conf.CacheSize)
	assert.Equal(t, DefaultConfig.Extensions, conf.Extensions)
}

func TestParseFileErrors(t *testing.T) {
	dir := t.TempDir()
	f := newFrontend(t, DefaultConfig)

	_, err := f.ParseFile(filepath.Join(dir, "missing.mc"))
	assert.True(t, os.IsNotExist(err))

	bad := writeFile(t, dir, "bad.mc", "int f() {\n  x = 3.1.4;\n}")
	_, err = f.ParseFile(bad)
	var lerr *lexer.Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, bad, lerr.Pos.File)
	assert.Equal(t, 2, lerr.Pos.Line)
}

func TestProcessFilesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		src := fmt.Sprintf("int f%d() { return %d; }", i, i)
		if i == 7 {
			src = "int broken( {"
		}
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("f%02d.mc", i), src))
	}
	f := newFrontend(t, Config{Jobs: 4, CacheSize: 0, Extensions: []string{".mc"}})

	var got []string
	err := f.ProcessFiles(context.Background(), paths, func(r Result) error {
		got = append(got, r.Path)
		if r.Path == paths[7] {
			var serr *parser.SyntaxError
			assert.True(t, errors.As(r.Err, &serr))
			assert.Nil(t, r.Unit)
		} else {
			assert.NoError(t, r.Err)
			require.NotNil(t, r.Unit)
			assert.Len(t, r.Unit.Funcs, 1)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, paths, got)
}

func TestProcessFilesStopsOnCallbackError(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 10; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("f%d.mc", i), "int f() {}"))
	}
	f := newFrontend(t, Config{Jobs: 2, CacheSize: 0, Extensions: []string{".mc"}})

	stop := errors.New("stop")
	calls := 0
	err := f.ProcessFiles(context.Background(), paths, func(r Result) error {
		calls++
		if calls == 3 {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 3, calls)
}

func TestProcessFilesCancelled(t *testing.T) {
	f := newFrontend(t, DefaultConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.ProcessFiles(ctx, []string{"a.mc", "b.mc"}, func(Result) error { return nil })
	assert.Equal(t, context.Canceled, err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	f := newFrontend(t, DefaultConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := make(chan Result)
	done := make(chan error, 1)
	go func() {
		done <- f.Watch(ctx, dir, func(r Result) error {
			select {
			case results <- r:
			case <-ctx.Done():
			}
			return nil
		})
	}()
	// The watch may not be registered yet, so keep touching the files until
	// a change comes through.
	retry := time.NewTicker(250 * time.Millisecond)
	defer retry.Stop()
	for {
		writeFile(t, dir, "ignored.txt", "not minic")
		writeFile(t, dir, "w.mc", "int w() { return 1; }")

		select {
		case r := <-results:
			assert.Equal(t, "w.mc", filepath.Base(r.Path))
			require.NoError(t, r.Err)
			assert.Equal(t, "w", r.Unit.Funcs[0].Name.Name)
			cancel()
			assert.NoError(t, <-done)
			return
		case <-retry.C:
		case <-ctx.Done():
			t.Fatal("no change reported")
		}
	}
}
