// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book implements the book catalog: the entity, the read-side query
surface (list, detail, stream, rollups), and the upsert primitives the scan
pipeline writes through.

# Ownership

The scan pipeline is the sole writer of book rows; the HTTP surface is
read-only apart from streaming side effects (a missing file archives the
book on the spot).
*/
package book

import (
	"time"

	"github.com/taibuivan/tosho/internal/catalog/tag"
)

// # Status Lifecycle

// Status is the book lifecycle state: active ⇄ archived.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// # Domain Entities

// Book represents one file-backed catalog entry.
type Book struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Filepath string `json:"-"` // Server-side path, never exposed to clients.
	AuthorID string `json:"author_id"`

	// AuthorName is populated by joined queries.
	AuthorName string `json:"author_name,omitempty"`

	ISBN            string `json:"isbn,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	Description     string `json:"description,omitempty"`
	PageCount       *int   `json:"page_count,omitempty"`
	FileSize        int64  `json:"file_size"`
	FileFormat      string `json:"file_format"`
	CoverPath       string `json:"-"`

	Status        Status     `json:"status"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	ArchiveReason *string    `json:"archive_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Tags carries the book's tag set on detail views.
	Tags []*tag.Tag `json:"tags,omitempty"`
}

// Upsert is the canonical record the scan pipeline persists for one file.
// Empty fields never overwrite existing values; see Repository.Merge.
type Upsert struct {
	Name            string
	Filepath        string
	AuthorID        string
	ISBN            string
	PublicationDate string
	Publisher       string
	Description     string
	PageCount       *int
	FileSize        int64
	FileFormat      string
	CoverPath       string
}

// MergeOutcome reports what an upsert did.
type MergeOutcome int

const (
	// OutcomeInserted means a new row was created.
	OutcomeInserted MergeOutcome = iota
	// OutcomeUpdated means an existing row gained more specific fields.
	OutcomeUpdated
	// OutcomeUnchanged means the row already carried everything offered.
	OutcomeUnchanged
)

// # Query Filters

// Filter narrows catalog listings.
//
// AllowedPermissions is the caller's permission name set for tag gating; nil
// means unrestricted (admin).
type Filter struct {
	IncludeTags []string
	ExcludeTags []string
	AuthorID    string
	Format      string
	Search      string
	Status      Status

	AllowedPermissions []string

	Limit  int
	Offset int
}

// # Streaming

// StreamInfo describes an authorized byte stream.
type StreamInfo struct {
	Filepath    string
	ContentType string
	Filename    string
	Size        int64
}

// ContentTypeForFormat maps a file format to its stream content type.
func ContentTypeForFormat(format string) string {
	switch format {
	case "pdf":
		return "application/pdf"
	case "epub":
		return "application/epub+zip"
	default:
		return "application/octet-stream"
	}
}
