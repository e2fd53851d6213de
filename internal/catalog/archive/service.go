// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archive

import (
	"context"
	"log/slog"
	"os"

	"github.com/taibuivan/tosho/internal/platform/apperr"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// # Reconciliation

/*
Reconcile drives both lifecycle directions from filesystem truth.

For every active book: stat the stored filepath; absent files archive the
book with "file missing". For every archived book: a reappearing file
restores it. Each flip is a conditional single-row update, so concurrent
passes and scans converge instead of fighting.
*/
func (service *Service) Reconcile(ctx context.Context) (*Result, error) {
	result := &Result{}

	active, err := service.repo.EntriesByStatus(ctx, "active")
	if err != nil {
		return nil, err
	}

	for _, entry := range active {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Checked++

		if fileExists(entry.Filepath) {
			continue
		}

		flipped, err := service.repo.MarkArchived(ctx, entry.BookID, ReasonFileMissing)
		if err != nil {
			result.Errors++
			service.logger.Error("reconcile_archive_failed",
				slog.String("book_id", entry.BookID), slog.Any("error", err))
			continue
		}
		if flipped {
			result.Archived++
			service.logger.Info("book_archived",
				slog.String("book_id", entry.BookID),
				slog.String("reason", ReasonFileMissing),
			)
		}
	}

	archived, err := service.repo.EntriesByStatus(ctx, "archived")
	if err != nil {
		return result, err
	}

	for _, entry := range archived {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Checked++

		if !fileExists(entry.Filepath) {
			continue
		}

		flipped, err := service.repo.MarkRestored(ctx, entry.BookID)
		if err != nil {
			result.Errors++
			service.logger.Error("reconcile_restore_failed",
				slog.String("book_id", entry.BookID), slog.Any("error", err))
			continue
		}
		if flipped {
			result.Restored++
			service.logger.Info("book_restored", slog.String("book_id", entry.BookID))
		}
	}

	return result, nil
}

// # Manual Lifecycle

// Archive flips one book to archived with a caller-supplied reason.
func (service *Service) Archive(ctx context.Context, bookID, reason string) error {
	if reason == "" {
		reason = ReasonManual
	}

	flipped, err := service.repo.MarkArchived(ctx, bookID, reason)
	if err != nil {
		return err
	}
	if !flipped {
		return apperr.Conflict("Book is not active")
	}
	return nil
}

// ArchiveMissing is the stream path's fast archival; same flip, fixed reason.
func (service *Service) ArchiveMissing(ctx context.Context, bookID string) error {
	_, err := service.repo.MarkArchived(ctx, bookID, ReasonFileMissing)
	return err
}

// Restore flips one book back to active.
func (service *Service) Restore(ctx context.Context, bookID string) error {
	flipped, err := service.repo.MarkRestored(ctx, bookID)
	if err != nil {
		return err
	}
	if !flipped {
		return apperr.Conflict("Book is not archived")
	}
	return nil
}

// # Queries

// ListArchived returns the archive surface page.
func (service *Service) ListArchived(ctx context.Context, limit, offset int) ([]*ArchivedBook, int, error) {
	return service.repo.ListArchived(ctx, limit, offset)
}

// Stats returns the operator aggregates.
func (service *Service) Stats(ctx context.Context) (*Stats, error) {
	return service.repo.Stats(ctx)
}

// Validate runs an on-demand reconciliation and returns its result.
func (service *Service) Validate(ctx context.Context) (*Result, error) {
	return service.Reconcile(ctx)
}

// fileExists reports whether the path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
