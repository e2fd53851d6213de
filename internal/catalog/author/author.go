// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package author implements the author catalog.
//
// Authors are created implicitly by the scan pipeline (by unique name) and
// enriched asynchronously from external metadata; the HTTP surface is
// read-only.
package author

import "time"

// Author represents a book author in the catalog.
type Author struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Biography   string    `json:"biography,omitempty"`
	BirthDate   string    `json:"birth_date,omitempty"`
	DeathDate   string    `json:"death_date,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	Website     string    `json:"website,omitempty"`
	Aliases     []string  `json:"aliases,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// BookCount is populated by rollup queries.
	BookCount int `json:"book_count,omitempty"`
}

// Enrichment carries the optional fields an external provider may supply.
// Empty fields never overwrite existing values.
type Enrichment struct {
	Biography   string
	Nationality string
	Website     string
	Genres      []string
}
