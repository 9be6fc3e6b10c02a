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
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rjeczalik/notify"

	"github.com/probeum/go-minic/log"
)

// watchDebounce is how long a changed file must stay quiet before it is
// parsed again. Editors tend to produce bursts of events per save.
const watchDebounce = 100 * time.Millisecond

// Watch monitors dir recursively and re-parses every source file that is
// created or written. Results are passed to fn one at a time; removed files
// are skipped. Watch returns nil once ctx is cancelled, or the first error fn
// returns.
func (f *Frontend) Watch(ctx context.Context, dir string, fn func(Result) error) error {
	events := make(chan notify.EventInfo, 64)
	if err := notify.Watch(filepath.Join(dir, "..."), events, notify.Create, notify.Write, notify.Rename); err != nil {
		return err
	}
	defer notify.Stop(events)
	log.Info("Watching for changes", "dir", dir)

	var (
		pending = make(map[string]struct{})
		timer   = time.NewTimer(0)
	)
	<-timer.C
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			path := ev.Path()
			if !hasExtension(path, f.config.Extensions) {
				continue
			}
			log.Trace("Source changed", "path", path, "event", ev.Event())
			pending[path] = struct{}{}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(watchDebounce)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			pending = make(map[string]struct{})
			sort.Strings(paths)

			for _, path := range paths {
				if _, err := os.Stat(path); os.IsNotExist(err) {
					continue
				}
				u, err := f.ParseFile(path)
				if err := fn(Result{Path: path, Unit: u, Err: err}); err != nil {
					return err
				}
			}
		}
	}
}
