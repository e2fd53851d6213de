// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package watch requests rescans when library directories change on disk.

An fsnotify watcher covers every library root (recursively, directories are
added as they appear); events are debounced so a bulk copy of a hundred
files becomes one scan request instead of a hundred.

The watcher never scans by itself — it pokes the same scan entry point the
scheduler uses, which serializes passes internally.
*/
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/taibuivan/tosho/internal/platform/constants"
)

// ScanRequester is the slice of the scan pipeline the watcher pokes.
type ScanRequester func(ctx context.Context)

// Watcher debounces filesystem events into scan requests.
type Watcher struct {
	roots    []string
	request  ScanRequester
	logger   *slog.Logger
	notifier *fsnotify.Watcher
}

// New creates a watcher over the library roots.
func New(roots []string, request ScanRequester, logger *slog.Logger) (*Watcher, error) {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		roots:    roots,
		request:  request,
		logger:   logger,
		notifier: notifier,
	}, nil
}

// Run watches until the context is cancelled. It blocks; callers run it on
// its own goroutine.
func (watcher *Watcher) Run(ctx context.Context) {
	defer func() { _ = watcher.notifier.Close() }()

	for _, root := range watcher.roots {
		watcher.addRecursive(root)
	}

	// Debounce: the timer restarts on every event and fires only after the
	// directory has been quiet for the full window.
	var pending bool
	timer := time.NewTimer(constants.WatchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, open := <-watcher.notifier.Events:
			if !open {
				return
			}
			watcher.handleEvent(event)
			if !pending {
				pending = true
			} else if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(constants.WatchDebounce)

		case err, open := <-watcher.notifier.Errors:
			if !open {
				return
			}
			watcher.logger.Warn("watch_error", slog.Any("error", err))

		case <-timer.C:
			pending = false
			watcher.logger.Info("watch_triggered_scan")
			watcher.request(ctx)
		}
	}
}

// handleEvent keeps the recursive watch set current.
func (watcher *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}

	watcher.addRecursive(event.Name)
}

// addRecursive registers a directory tree with the notifier.
func (watcher *Watcher) addRecursive(root string) {
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil || !entry.IsDir() {
			return nil
		}
		if entry.Name() != "." && entry.Name()[0] == '.' {
			return filepath.SkipDir
		}
		if addErr := watcher.notifier.Add(path); addErr != nil {
			watcher.logger.Warn("watch_add_failed", slog.String("path", path), slog.Any("error", addErr))
		}
		return nil
	})
	if err != nil {
		watcher.logger.Warn("watch_walk_failed", slog.String("root", root), slog.Any("error", err))
	}
}
