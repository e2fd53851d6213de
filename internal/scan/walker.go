// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scan

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Candidate is one supported file discovered during the walk.
type Candidate struct {
	Root   string
	Path   string
	Format string
	Size   int64
}

// Walker traverses library roots and streams supported files.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a new walker.
func NewWalker(logger *slog.Logger) *Walker {
	return &Walker{logger: logger}
}

/*
Walk traverses the given roots and streams candidates over the returned
channel. The channel's bounded capacity is the backpressure between the
walk and the worker pool; the channel closes when the walk finishes or the
context is cancelled.

Hidden files and directories are skipped, as are unsupported extensions.
Per-entry errors are logged and walking continues.
*/
func (walker *Walker) Walk(ctx context.Context, roots []string) <-chan Candidate {
	candidates := make(chan Candidate, 64)

	go func() {
		defer close(candidates)

		for _, root := range roots {
			if ctx.Err() != nil {
				return
			}
			walker.walkRoot(ctx, root, candidates)
		}
	}()

	return candidates
}

// walkRoot walks one root directory.
func (walker *Walker) walkRoot(ctx context.Context, root string, candidates chan<- Candidate) {
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			// Continue walking despite unreadable entries.
			walker.logger.Warn("walk_entry_failed", slog.String("path", path), slog.Any("error", err))
			return nil
		}

		// Skip hidden files and directories.
		if entry.Name() != "." && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			return nil
		}

		format := DetectFormat(path)
		if format == "" {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			walker.logger.Warn("walk_stat_failed", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		select {
		case candidates <- Candidate{Root: root, Path: path, Format: format, Size: info.Size()}:
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, fs.SkipDir) {
		walker.logger.Error("walk_failed", slog.String("root", root), slog.Any("error", err))
	}
}
