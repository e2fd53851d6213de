// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metadata implements the external metadata resolver.

Providers (Google Books, Open Library) sit behind one normalized contract.
The resolver walks them in configured order and fuses results field-wise:
the first non-empty value per field wins, so the primary provider is
authoritative and fallbacks only fill gaps.

# Failure Discipline

Provider faults never leave this package as errors. A failing provider is
"no result"; the scan pipeline sees at most an empty record and indexes the
book from local signals alone.
*/
package metadata

import (
	"context"
	"log/slog"
	"strings"
)

// # Normalized Contract

// Identifiers carries the ISBN forms a provider reported.
type Identifiers struct {
	ISBN10 string `json:"isbn10,omitempty"`
	ISBN13 string `json:"isbn13,omitempty"`
}

// Record is the provider-agnostic metadata shape.
type Record struct {
	Title          string
	Subtitle       string
	Authors        []string
	Publisher      string
	PublishedDate  string
	Description    string
	PageCount      int
	Categories     []string
	Language       string
	AverageRating  float64
	MaturityRating string
	CoverURL       string
	Series         string
	SeriesNumber   int
	Identifiers    Identifiers
}

// Empty reports whether the record carries no usable signal.
func (record *Record) Empty() bool {
	return record == nil || (record.Title == "" && len(record.Authors) == 0 &&
		record.Publisher == "" && record.PageCount == 0 && len(record.Categories) == 0)
}

// # Provider Contract

// Provider is one external metadata source.
//
// Both lookups return (nil/empty, nil) for "no result"; an error means the
// provider itself failed and the resolver degrades it to no result.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// LookupByID resolves a single identifier (ISBN-10 or ISBN-13).
	LookupByID(ctx context.Context, identifier string) (*Record, error)

	// LookupByTitle searches by title and optional author.
	LookupByTitle(ctx context.Context, title, author string) ([]*Record, error)
}

// # Resolver

// Resolver walks an ordered provider chain and fuses results.
//
// When disabled (external lookup off for this install), every call returns
// an empty result without touching the network.
type Resolver struct {
	providers []Provider
	enabled   bool
	logger    *slog.Logger
}

// NewResolver builds the chain. Order defines precedence.
func NewResolver(enabled bool, logger *slog.Logger, providers ...Provider) *Resolver {
	return &Resolver{providers: providers, enabled: enabled, logger: logger}
}

// Enabled reports whether external lookups are switched on.
func (resolver *Resolver) Enabled() bool {
	return resolver.enabled
}

// LookupByID queries the chain for one identifier and fuses the answers.
// Returns nil when nothing was found anywhere.
func (resolver *Resolver) LookupByID(ctx context.Context, identifier string) *Record {
	if !resolver.enabled || identifier == "" {
		return nil
	}

	var fused *Record
	for _, provider := range resolver.providers {
		record, err := provider.LookupByID(ctx, identifier)
		if err != nil {
			// Upstream faults degrade to "no result for this provider".
			resolver.logger.Warn("metadata_provider_failed",
				slog.String("provider", provider.Name()),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			continue
		}
		if record.Empty() {
			continue
		}

		fused = Fuse(fused, record)
	}

	return fused
}

// LookupByTitle queries the chain by title/author and fuses the best hit of
// each provider.
func (resolver *Resolver) LookupByTitle(ctx context.Context, title, author string) *Record {
	if !resolver.enabled || title == "" {
		return nil
	}

	var fused *Record
	for _, provider := range resolver.providers {
		records, err := provider.LookupByTitle(ctx, title, author)
		if err != nil {
			resolver.logger.Warn("metadata_provider_failed",
				slog.String("provider", provider.Name()),
				slog.String("title", title),
				slog.Any("error", err),
			)
			continue
		}

		best := bestMatch(records, title)
		if best.Empty() {
			continue
		}

		fused = Fuse(fused, best)
	}

	return fused
}

// # Fusion

/*
Fuse merges a later provider's record into the accumulated one.

Primary wins: a field moves only when the accumulated value is empty. Earlier
values are never overridden by later providers.
*/
func Fuse(primary, fallback *Record) *Record {
	if primary == nil {
		clone := *fallback
		return &clone
	}
	if fallback == nil {
		return primary
	}

	if primary.Title == "" {
		primary.Title = fallback.Title
	}
	if primary.Subtitle == "" {
		primary.Subtitle = fallback.Subtitle
	}
	if len(primary.Authors) == 0 {
		primary.Authors = fallback.Authors
	}
	if primary.Publisher == "" {
		primary.Publisher = fallback.Publisher
	}
	if primary.PublishedDate == "" {
		primary.PublishedDate = fallback.PublishedDate
	}
	if primary.Description == "" {
		primary.Description = fallback.Description
	}
	if primary.PageCount == 0 {
		primary.PageCount = fallback.PageCount
	}
	if len(primary.Categories) == 0 {
		primary.Categories = fallback.Categories
	}
	if primary.Language == "" {
		primary.Language = fallback.Language
	}
	if primary.AverageRating == 0 {
		primary.AverageRating = fallback.AverageRating
	}
	if primary.MaturityRating == "" {
		primary.MaturityRating = fallback.MaturityRating
	}
	if primary.CoverURL == "" {
		primary.CoverURL = fallback.CoverURL
	}
	if primary.Series == "" {
		primary.Series = fallback.Series
		primary.SeriesNumber = fallback.SeriesNumber
	}
	if primary.Identifiers.ISBN10 == "" {
		primary.Identifiers.ISBN10 = fallback.Identifiers.ISBN10
	}
	if primary.Identifiers.ISBN13 == "" {
		primary.Identifiers.ISBN13 = fallback.Identifiers.ISBN13
	}

	return primary
}

// bestMatch prefers an exact (case-insensitive) title hit, else the first.
func bestMatch(records []*Record, title string) *Record {
	if len(records) == 0 {
		return nil
	}

	wanted := strings.ToLower(strings.TrimSpace(title))
	for _, record := range records {
		if strings.ToLower(strings.TrimSpace(record.Title)) == wanted {
			return record
		}
	}

	return records[0]
}
