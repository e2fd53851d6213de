// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"time"
)

// Repository defines the data access contract for reading progress.
type Repository interface {

	// Find returns the (user, book) row, or NotFound.
	Find(ctx context.Context, userID, bookID string) (*Progress, error)

	// Upsert writes the row, creating it if absent. The statement keeps
	// last_read_at monotonic (GREATEST of stored and offered).
	Upsert(ctx context.Context, row *Progress) (*Progress, error)

	// Delete removes the row. Deleting a missing row is a no-op.
	Delete(ctx context.Context, userID, bookID string) error

	// ListInProgress returns rows with 0 < percent < 100, recent first.
	ListInProgress(ctx context.Context, userID string) ([]*Progress, error)

	// ListCompleted returns rows with percent = 100, recent first.
	ListCompleted(ctx context.Context, userID string) ([]*Progress, error)

	// ListRecent returns the N most recently read rows.
	ListRecent(ctx context.Context, userID string, limit int) ([]*Progress, error)

	// Totals aggregates started/completed counts, average completion, and
	// pages read in one query.
	Totals(ctx context.Context, userID string) (started, completed, pagesRead int, averageCompletion float64, err error)

	// DistinctReadDates returns the user's distinct reading dates
	// (server-local calendar days), newest first.
	DistinctReadDates(ctx context.Context, userID string, limit int) ([]time.Time, error)
}
