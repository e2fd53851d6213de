// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import "context"

// Repository defines the data access contract for authors.
type Repository interface {

	// EnsureByName returns the author with the given name, creating the row
	// if absent. Concurrent calls for the same name converge on one row.
	EnsureByName(ctx context.Context, name string) (*Author, error)

	// FindByID returns one author.
	FindByID(ctx context.Context, id string) (*Author, error)

	// Enrich fills optional fields that are currently empty. Non-empty
	// stored values win over the enrichment.
	Enrich(ctx context.Context, authorID string, enrichment Enrichment) error

	// ListWithCounts returns authors with per-author visible book counts.
	// allowedPermissions feeds the tag-gate filter; books carrying a gate
	// outside the set are excluded from the counts.
	ListWithCounts(ctx context.Context, allowedPermissions []string) ([]*Author, error)
}
