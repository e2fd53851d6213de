// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "context"

// Repository defines the data access contract for the tag catalog.
type Repository interface {

	// EnsureTag inserts a tag if absent (unique name) and returns the row.
	EnsureTag(ctx context.Context, tag *Tag) (*Tag, error)

	// FindByName returns a tag by its unique name.
	FindByName(ctx context.Context, name string) (*Tag, error)

	// FindByID returns a tag by primary key.
	FindByID(ctx context.Context, id int) (*Tag, error)

	// List returns the whole catalog ordered by category then name.
	List(ctx context.Context) ([]*Tag, error)

	// ListByCategory returns the tags of one category.
	ListByCategory(ctx context.Context, category Category) ([]*Tag, error)

	// ListForBook returns the tags attached to a book.
	ListForBook(ctx context.Context, bookID string) ([]*Tag, error)

	// BookIDsWithTag returns the IDs of books carrying the tag.
	BookIDsWithTag(ctx context.Context, tagID int) ([]string, error)

	// Attach links a tag to a book. Re-attaching is a no-op that preserves
	// the original pair (a manual attach is never downgraded to auto).
	Attach(ctx context.Context, bookID string, tagID int, appliedBy string, auto bool) error

	// Detach removes the pair only; the tag definition survives.
	Detach(ctx context.Context, bookID string, tagID int) error

	// GatesForBook returns the distinct non-null requires_permission values
	// of the tags on a book (feeds the content-access filter).
	GatesForBook(ctx context.Context, bookID string) ([]string, error)
}
