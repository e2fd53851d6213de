// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archive

import "context"

// Repository defines the data access contract for archival.
type Repository interface {

	// EntriesByStatus returns (book, filepath) pairs in the given status.
	EntriesByStatus(ctx context.Context, status string) ([]Entry, error)

	// MarkArchived flips an active book to archived with a reason. Returns
	// false when the row was not active (someone else won the race).
	MarkArchived(ctx context.Context, bookID, reason string) (bool, error)

	// MarkRestored flips an archived book back to active, clearing the
	// evidence columns. Returns false when the row was not archived.
	MarkRestored(ctx context.Context, bookID string) (bool, error)

	// ListArchived returns the archive surface page plus total count.
	ListArchived(ctx context.Context, limit, offset int) ([]*ArchivedBook, int, error)

	// Stats aggregates archive counts and the per-reason breakdown.
	Stats(ctx context.Context) (*Stats, error)
}
