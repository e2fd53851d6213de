// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/pkg/slug"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// # Bootstrap

// SeedDefaults installs the canonical tag catalog. Idempotent; existing tags
// (including locally edited descriptions) are left untouched.
func (service *Service) SeedDefaults(ctx context.Context) error {
	for _, seed := range defaultTags {
		entry := &Tag{
			Name:        seed.Name,
			Slug:        slug.From(seed.Name),
			Category:    seed.Category,
			Description: seed.Description,
		}
		if seed.RequiresPermission != "" {
			gate := seed.RequiresPermission
			entry.RequiresPermission = &gate
		}

		if _, err := service.repo.EnsureTag(ctx, entry); err != nil {
			return fmt.Errorf("tag_seed_failed %s: %w", seed.Name, err)
		}
	}

	service.logger.Info("tag_catalog_seeded", slog.Int("tags", len(defaultTags)))
	return nil
}

// # Catalog Queries

// List returns the full catalog.
func (service *Service) List(ctx context.Context) ([]*Tag, error) {
	return service.repo.List(ctx)
}

// ListByCategory returns one category of the catalog.
func (service *Service) ListByCategory(ctx context.Context, category Category) ([]*Tag, error) {
	if !category.Valid() {
		return nil, apperr.ValidationError("Unknown tag category",
			apperr.FieldError{Field: "category", Message: "Must be one of the canonical categories"})
	}
	return service.repo.ListByCategory(ctx, category)
}

// ListForBook returns the tags on a book.
func (service *Service) ListForBook(ctx context.Context, bookID string) ([]*Tag, error) {
	return service.repo.ListForBook(ctx, bookID)
}

// BookIDsWithTag returns the IDs of books carrying the named tag.
func (service *Service) BookIDsWithTag(ctx context.Context, name string) ([]string, error) {
	found, err := service.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return service.repo.BookIDsWithTag(ctx, found.ID)
}

// Get returns one tag.
func (service *Service) Get(ctx context.Context, id int) (*Tag, error) {
	return service.repo.FindByID(ctx, id)
}

// # Manual Tagging

// Attach links the named tag to a book on behalf of a user.
func (service *Service) Attach(ctx context.Context, bookID, tagName, appliedBy string) (*Tag, error) {
	found, err := service.repo.FindByName(ctx, tagName)
	if err != nil {
		return nil, err
	}

	if err := service.repo.Attach(ctx, bookID, found.ID, appliedBy, false); err != nil {
		return nil, err
	}

	return found, nil
}

// Detach removes the pair; the tag definition and other pairs survive.
func (service *Service) Detach(ctx context.Context, bookID, tagName string) error {
	found, err := service.repo.FindByName(ctx, tagName)
	if err != nil {
		return err
	}

	return service.repo.Detach(ctx, bookID, found.ID)
}

// # Auto-Apply

/*
AutoApply attaches rule-derived tags to a book.

Rules, in order: format tag from the file format; content-rating tag from the
normalized maturity rating; genre tags from provider categories via the alias
map; a series collection tag; a language tag.

Pairs are inserted with autoApplied=true and never removed here — a tag a
curator attached (or one applied by an earlier rule set) stays in place, so
manual edits survive re-scans.
*/
func (service *Service) AutoApply(ctx context.Context, bookID string, signals Signals) error {
	var failures int

	for _, name := range service.resolveTagNames(signals) {
		found, err := service.ensureRuleTag(ctx, name)
		if err != nil {
			failures++
			service.logger.Warn("auto_tag_ensure_failed",
				slog.String("book_id", bookID),
				slog.String("tag", name),
				slog.Any("error", err),
			)
			continue
		}

		if err := service.repo.Attach(ctx, bookID, found.ID, "", true); err != nil {
			failures++
			service.logger.Warn("auto_tag_attach_failed",
				slog.String("book_id", bookID),
				slog.String("tag", name),
				slog.Any("error", err),
			)
		}
	}

	if failures > 0 {
		return fmt.Errorf("auto tagging finished with %d failure(s)", failures)
	}
	return nil
}

// resolveTagNames turns the signals into the list of tag names to apply.
func (service *Service) resolveTagNames(signals Signals) []string {
	var names []string

	if name, ok := formatTags[strings.ToLower(signals.Format)]; ok {
		names = append(names, name)
	}

	if name, ok := maturityRatings[strings.ToUpper(signals.MaturityRating)]; ok {
		names = append(names, name)
	}

	names = append(names, MapCategoriesToGenres(signals.Categories)...)

	if signals.Series != "" {
		names = append(names, "Series: "+signals.Series)
	}

	if signals.Language != "" {
		names = append(names, languageTagName(signals.Language))
	}

	return names
}

// ensureRuleTag resolves a rule-produced tag name, creating dynamic series
// and language tags on first use. Catalog tags must already exist.
func (service *Service) ensureRuleTag(ctx context.Context, name string) (*Tag, error) {
	category, dynamic := dynamicCategory(name)
	if !dynamic {
		return service.repo.FindByName(ctx, name)
	}

	return service.repo.EnsureTag(ctx, &Tag{
		Name:     name,
		Slug:     slug.From(name),
		Category: category,
	})
}

// dynamicCategory classifies rule tags that are created on demand.
func dynamicCategory(name string) (Category, bool) {
	if strings.HasPrefix(name, "Series: ") {
		return CategoryCollection, true
	}
	if strings.HasPrefix(name, "Language: ") {
		return CategoryLanguage, true
	}
	return "", false
}

/*
MapCategoriesToGenres maps provider category strings to genre tag names.

Matching is case-insensitive and two-phase per category: exact alias match
first, then alias-substring containment. Output is deduplicated and
follows the input category order; when one category matches several
aliases by substring, the relative order of their genres is not defined.
*/
func MapCategoriesToGenres(categories []string) []string {
	seen := make(map[string]struct{})
	var genres []string

	add := func(names []string) {
		for _, name := range names {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			genres = append(genres, name)
		}
	}

	for _, category := range categories {
		normalized := strings.ToLower(strings.TrimSpace(category))
		if normalized == "" {
			continue
		}

		if names, ok := genreAliases[normalized]; ok {
			add(names)
			continue
		}

		for alias, names := range genreAliases {
			if strings.Contains(normalized, alias) {
				add(names)
			}
		}
	}

	return genres
}

// languageTagName normalizes a language signal into a tag name.
func languageTagName(language string) string {
	cleaned := strings.TrimSpace(language)
	if cleaned == "" {
		return "Language: Unknown"
	}

	// Common ISO 639-1 codes spelled out; anything else is title-cased as-is.
	if name, ok := languageNames[strings.ToLower(cleaned)]; ok {
		return "Language: " + name
	}
	return "Language: " + strings.ToUpper(cleaned[:1]) + cleaned[1:]
}

// languageNames spells out the codes providers commonly return.
var languageNames = map[string]string{
	"en": "English",
	"ja": "Japanese",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"zh": "Chinese",
	"ko": "Korean",
	"ru": "Russian",
	"vi": "Vietnamese",
}
