// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// Repository defines the data access contract for books.
type Repository interface {

	// FindByID returns one book with its author name joined.
	FindByID(ctx context.Context, id string) (*Book, error)

	// FindByFilepath returns the book backed by the given file, any status.
	FindByFilepath(ctx context.Context, filepath string) (*Book, error)

	// Merge upserts by unique filepath. A new path inserts; an existing row
	// is updated only where it is empty or the new value is strictly more
	// specific (longer description, first non-null page count).
	Merge(ctx context.Context, record Upsert) (*Book, MergeOutcome, error)

	// List returns a filtered page of books plus the total match count.
	// Tag gating, include/exclude filters, and status all apply in one query.
	List(ctx context.Context, filter Filter) ([]*Book, int, error)

	// CountByAuthor returns the number of active books for an author.
	CountByAuthor(ctx context.Context, authorID string) (int, error)
}
