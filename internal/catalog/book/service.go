// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/taibuivan/tosho/internal/catalog/access"
	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/catalog/tag"
)

// Archiver is the slice of the archive reconciler the stream path needs:
// flipping a book to archived when its file is found missing at stream time.
type Archiver interface {
	ArchiveMissing(ctx context.Context, bookID string) error
}

type Service struct {
	repo    Repository
	tags    *tag.Service
	filter  *access.Service
	archive Archiver
	logger  *slog.Logger
}

func NewService(repo Repository, tags *tag.Service, filter *access.Service, archive Archiver, logger *slog.Logger) *Service {
	return &Service{repo: repo, tags: tags, filter: filter, archive: archive, logger: logger}
}

// # Read Surface

/*
List returns the page of books the user may see.

The caller's tag-gate permission set is resolved once and folded into the
single list query; no per-book checks happen afterwards.
*/
func (service *Service) List(ctx context.Context, userID string, filter Filter) ([]*Book, int, error) {
	allowed, err := service.filter.AllowedPermissions(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	filter.AllowedPermissions = allowed

	return service.repo.List(ctx, filter)
}

/*
Get returns one book with its tag set, if the user may see it.

The denial names the missing permission only; no metadata leaks alongside a
Forbidden response.
*/
func (service *Service) Get(ctx context.Context, userID, bookID string) (*Book, error) {
	found, err := service.repo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	decision, err := service.filter.CanAccess(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperr.Forbidden(decision.Reason)
	}

	// Archived books are only served through the archive surface.
	if found.Status == StatusArchived {
		return nil, apperr.NotFound("Book")
	}

	found.Tags, err = service.tags.ListForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	return found, nil
}

// # Streaming

/*
Stream authorizes and describes a byte stream for a book file.

The stored filepath is server-side truth; nothing from the client reaches the
filesystem, so path traversal is structurally impossible. A file missing at
stream time fails fast with NotFound and archives the book immediately
instead of waiting for the next reconciliation cycle.
*/
func (service *Service) Stream(ctx context.Context, userID, bookID string) (*StreamInfo, error) {
	found, err := service.repo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	decision, err := service.filter.CanAccess(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperr.Forbidden(decision.Reason)
	}

	if found.Status == StatusArchived {
		return nil, apperr.NotFound("Book")
	}

	info, err := os.Stat(found.Filepath)
	if err != nil {
		service.logger.Warn("stream_file_missing",
			slog.String("book_id", found.ID),
			slog.String("filepath", found.Filepath),
		)
		if archiveErr := service.archive.ArchiveMissing(ctx, found.ID); archiveErr != nil {
			service.logger.Error("stream_archive_failed",
				slog.String("book_id", found.ID),
				slog.Any("error", archiveErr),
			)
		}
		return nil, apperr.NotFound("Book file")
	}

	return &StreamInfo{
		Filepath:    found.Filepath,
		ContentType: ContentTypeForFormat(found.FileFormat),
		Filename:    filepath.Base(found.Filepath),
		Size:        info.Size(),
	}, nil
}

// # Scan Write Surface

// Merge upserts a scanned record; see Repository.Merge for field semantics.
func (service *Service) Merge(ctx context.Context, record Upsert) (*Book, MergeOutcome, error) {
	return service.repo.Merge(ctx, record)
}

// # Genre Rollups

// GenreDetail is one genre tag plus its visible books.
type GenreDetail struct {
	Tag   *tag.Tag `json:"tag"`
	Books []*Book  `json:"books"`
}

// Genres returns the genre-category tags with book counts.
func (service *Service) Genres(ctx context.Context) ([]*tag.Tag, error) {
	return service.tags.ListByCategory(ctx, tag.CategoryGenre)
}

// GenreDetailByID returns one genre with the caller's visible books.
func (service *Service) GenreDetailByID(ctx context.Context, userID string, tagID int) (*GenreDetail, error) {
	genreTag, err := service.tags.Get(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if genreTag.Category != tag.CategoryGenre {
		return nil, apperr.NotFound("Genre")
	}

	books, _, err := service.List(ctx, userID, Filter{
		IncludeTags: []string{genreTag.Name},
		Limit:       100,
	})
	if err != nil {
		return nil, err
	}

	return &GenreDetail{Tag: genreTag, Books: books}, nil
}
