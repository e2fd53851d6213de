// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/tosho/internal/platform/apperr"
)

// Clock abstracts time.Now for streak-boundary tests.
type Clock func() time.Time

type Service struct {
	repo   Repository
	clock  Clock
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, clock: time.Now, logger: logger}
}

// WithClock overrides the service clock. Test hook.
func (service *Service) WithClock(clock Clock) *Service {
	service.clock = clock
	return service
}

// # Row Operations

// Get returns the caller's progress for a book, or NotFound.
func (service *Service) Get(ctx context.Context, userID, bookID string) (*Progress, error) {
	return service.repo.Find(ctx, userID, bookID)
}

// Start upserts a zero-page row, marking the book as picked up.
func (service *Service) Start(ctx context.Context, userID, bookID string, totalPages *int) (*Progress, error) {
	if err := validatePages(0, totalPages); err != nil {
		return nil, err
	}

	return service.repo.Upsert(ctx, &Progress{
		UserID:          userID,
		BookID:          bookID,
		CurrentPage:     0,
		TotalPages:      totalPages,
		PercentComplete: 0,
		LastReadAt:      service.clock(),
	})
}

/*
Update advances (or rewinds) the caller's position in a book.

current_page is validated against total_pages when known; the percentage is
recomputed server-side. Rewinding below 100% moves a completed book back to
in-progress, which is allowed. last_read_at only ever moves forward.
*/
func (service *Service) Update(ctx context.Context, userID, bookID string, currentPage int, totalPages *int, location string) (*Progress, error) {
	// A previously learned page count still bounds updates that omit it.
	effectiveTotal := totalPages
	if effectiveTotal == nil {
		if existing, err := service.repo.Find(ctx, userID, bookID); err == nil {
			effectiveTotal = existing.TotalPages
		}
	}

	if err := validatePages(currentPage, effectiveTotal); err != nil {
		return nil, err
	}

	return service.repo.Upsert(ctx, &Progress{
		UserID:          userID,
		BookID:          bookID,
		CurrentPage:     currentPage,
		TotalPages:      effectiveTotal,
		PercentComplete: Percentage(currentPage, effectiveTotal),
		LastReadAt:      service.clock(),
		Location:        location,
	})
}

// Complete marks the book finished: 100%, current_page = total_pages when known.
func (service *Service) Complete(ctx context.Context, userID, bookID string) (*Progress, error) {
	row := &Progress{
		UserID:          userID,
		BookID:          bookID,
		PercentComplete: 100,
		LastReadAt:      service.clock(),
	}

	if existing, err := service.repo.Find(ctx, userID, bookID); err == nil {
		row.TotalPages = existing.TotalPages
		row.CurrentPage = existing.CurrentPage
		if existing.TotalPages != nil {
			row.CurrentPage = *existing.TotalPages
		}
	}

	return service.repo.Upsert(ctx, row)
}

// Reset deletes the row; the (user, book) pair returns to the "none" state.
func (service *Service) Reset(ctx context.Context, userID, bookID string) error {
	return service.repo.Delete(ctx, userID, bookID)
}

// # Aggregates

// CurrentlyReading returns rows with 0 < percent < 100.
func (service *Service) CurrentlyReading(ctx context.Context, userID string) ([]*Progress, error) {
	return service.repo.ListInProgress(ctx, userID)
}

// Completed returns finished books.
func (service *Service) Completed(ctx context.Context, userID string) ([]*Progress, error) {
	return service.repo.ListCompleted(ctx, userID)
}

// RecentlyRead returns the N most recently touched rows.
func (service *Service) RecentlyRead(ctx context.Context, userID string, limit int) ([]*Progress, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return service.repo.ListRecent(ctx, userID, limit)
}

// streakWindowDays bounds the streak scan; nobody audits further back.
const streakWindowDays = 366

// Stats aggregates the caller's reading statistics, including the
// consecutive-day streak measured against the server-local calendar.
func (service *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	started, completed, pagesRead, average, err := service.repo.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}

	dates, err := service.repo.DistinctReadDates(ctx, userID, streakWindowDays)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalBooksStarted:   started,
		TotalBooksCompleted: completed,
		AverageCompletion:   average,
		TotalPagesRead:      pagesRead,
		ReadingStreak:       Streak(dates, service.clock()),
	}, nil
}

// validatePages enforces the page-bound invariants.
func validatePages(currentPage int, totalPages *int) error {
	if currentPage < 0 {
		return apperr.ValidationError("Pages must not be negative",
			apperr.FieldError{Field: "current_page", Message: "Must be zero or positive"})
	}
	if totalPages != nil && *totalPages <= 0 {
		return apperr.ValidationError("Total pages must be positive",
			apperr.FieldError{Field: "total_pages", Message: "Must be positive when provided"})
	}
	if totalPages != nil && currentPage > *totalPages {
		return apperr.ValidationError("Page is past the end of the book",
			apperr.FieldError{Field: "current_page", Message: "Must not exceed total_pages"})
	}
	return nil
}
