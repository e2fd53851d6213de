// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scan_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/catalog/access"
	"github.com/taibuivan/tosho/internal/catalog/archive"
	"github.com/taibuivan/tosho/internal/catalog/author"
	"github.com/taibuivan/tosho/internal/catalog/book"
	"github.com/taibuivan/tosho/internal/catalog/tag"
	"github.com/taibuivan/tosho/internal/metadata"
	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/scan"
	"github.com/taibuivan/tosho/internal/users/perm"
	"github.com/taibuivan/tosho/pkg/slice"
)

// # In-Memory Stores
//
// The pipeline runs against real files in a temp directory; only the
// storage layer is faked.

type memAuthors struct {
	byName map[string]*author.Author
	nextID int
}

func (repo *memAuthors) EnsureByName(_ context.Context, name string) (*author.Author, error) {
	if found, ok := repo.byName[name]; ok {
		return found, nil
	}
	repo.nextID++
	created := &author.Author{ID: "author-" + name, Name: name}
	repo.byName[name] = created
	return created, nil
}

func (repo *memAuthors) FindByID(_ context.Context, id string) (*author.Author, error) {
	for _, found := range repo.byName {
		if found.ID == id {
			return found, nil
		}
	}
	return nil, apperr.NotFound("Author")
}

func (repo *memAuthors) Enrich(_ context.Context, authorID string, enrichment author.Enrichment) error {
	found, err := repo.FindByID(context.Background(), authorID)
	if err != nil {
		return err
	}
	if len(found.Genres) == 0 {
		found.Genres = enrichment.Genres
	}
	return nil
}

func (repo *memAuthors) ListWithCounts(_ context.Context, _ []string) ([]*author.Author, error) {
	return nil, nil
}

type memBooks struct {
	byPath map[string]*book.Book
	nextID int
}

func (repo *memBooks) FindByID(_ context.Context, id string) (*book.Book, error) {
	for _, found := range repo.byPath {
		if found.ID == id {
			clone := *found
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Book")
}

func (repo *memBooks) FindByFilepath(_ context.Context, path string) (*book.Book, error) {
	if found, ok := repo.byPath[path]; ok {
		clone := *found
		return &clone, nil
	}
	return nil, apperr.NotFound("Book")
}

func (repo *memBooks) Merge(_ context.Context, record book.Upsert) (*book.Book, book.MergeOutcome, error) {
	existing, ok := repo.byPath[record.Filepath]
	if !ok {
		repo.nextID++
		created := &book.Book{
			ID:              record.Filepath,
			Name:            record.Name,
			Filepath:        record.Filepath,
			AuthorID:        record.AuthorID,
			ISBN:            record.ISBN,
			PublicationDate: record.PublicationDate,
			Publisher:       record.Publisher,
			Description:     record.Description,
			PageCount:       record.PageCount,
			FileSize:        record.FileSize,
			FileFormat:      record.FileFormat,
			CoverPath:       record.CoverPath,
			Status:          book.StatusActive,
		}
		repo.byPath[record.Filepath] = created
		clone := *created
		return &clone, book.OutcomeInserted, nil
	}

	// Fill-empty / strictly-more-specific, mirroring the SQL merge.
	changed := false
	fill := func(target *string, offered string) {
		if *target == "" && offered != "" {
			*target = offered
			changed = true
		}
	}
	fill(&existing.ISBN, record.ISBN)
	fill(&existing.Publisher, record.Publisher)
	fill(&existing.PublicationDate, record.PublicationDate)
	fill(&existing.CoverPath, record.CoverPath)
	fill(&existing.FileFormat, record.FileFormat)
	if len(record.Description) > len(existing.Description) {
		existing.Description = record.Description
		changed = true
	}
	if existing.PageCount == nil && record.PageCount != nil {
		existing.PageCount = record.PageCount
		changed = true
	}
	if record.FileSize > 0 && record.FileSize != existing.FileSize {
		existing.FileSize = record.FileSize
		changed = true
	}

	clone := *existing
	if changed {
		return &clone, book.OutcomeUpdated, nil
	}
	return &clone, book.OutcomeUnchanged, nil
}

func (repo *memBooks) List(_ context.Context, _ book.Filter) ([]*book.Book, int, error) {
	return nil, 0, nil
}

func (repo *memBooks) CountByAuthor(_ context.Context, _ string) (int, error) { return 0, nil }

type memArchive struct {
	books *memBooks
}

func (repo *memArchive) EntriesByStatus(_ context.Context, status string) ([]archive.Entry, error) {
	var entries []archive.Entry
	for path, found := range repo.books.byPath {
		if string(found.Status) == status {
			entries = append(entries, archive.Entry{BookID: found.ID, Filepath: path})
		}
	}
	return entries, nil
}

func (repo *memArchive) MarkArchived(_ context.Context, bookID, reason string) (bool, error) {
	for _, found := range repo.books.byPath {
		if found.ID == bookID && found.Status == book.StatusActive {
			found.Status = book.StatusArchived
			found.ArchiveReason = &reason
			return true, nil
		}
	}
	return false, nil
}

func (repo *memArchive) MarkRestored(_ context.Context, bookID string) (bool, error) {
	for _, found := range repo.books.byPath {
		if found.ID == bookID && found.Status == book.StatusArchived {
			found.Status = book.StatusActive
			found.ArchiveReason = nil
			return true, nil
		}
	}
	return false, nil
}

func (repo *memArchive) ListArchived(_ context.Context, _, _ int) ([]*archive.ArchivedBook, int, error) {
	return nil, 0, nil
}

func (repo *memArchive) Stats(_ context.Context) (*archive.Stats, error) {
	return &archive.Stats{ByReason: map[string]int{}}, nil
}

type memPerms struct{}

func (memPerms) EffectivePermissions(_ context.Context, _ string) (perm.GrantSet, error) {
	return perm.GrantSet{{Name: perm.PermAdminFull}}, nil
}


// fakeTagStore is an in-memory tag.Repository (and gate source).
type fakeTagStore struct {
	nextID int
	byName map[string]*tag.Tag
	pairs  map[string]map[int]bool // bookID → tagID → autoApplied
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{
		nextID: 1,
		byName: make(map[string]*tag.Tag),
		pairs:  make(map[string]map[int]bool),
	}
}

func (repo *fakeTagStore) EnsureTag(_ context.Context, entry *tag.Tag) (*tag.Tag, error) {
	if existing, found := repo.byName[entry.Name]; found {
		return existing, nil
	}
	clone := *entry
	clone.ID = repo.nextID
	repo.nextID++
	repo.byName[entry.Name] = &clone
	return &clone, nil
}

func (repo *fakeTagStore) FindByName(_ context.Context, name string) (*tag.Tag, error) {
	if existing, found := repo.byName[name]; found {
		return existing, nil
	}
	return nil, apperr.NotFound("Tag")
}

func (repo *fakeTagStore) FindByID(_ context.Context, id int) (*tag.Tag, error) {
	for _, entry := range repo.byName {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, apperr.NotFound("Tag")
}

func (repo *fakeTagStore) List(_ context.Context) ([]*tag.Tag, error) {
	var tags []*tag.Tag
	for _, entry := range repo.byName {
		tags = append(tags, entry)
	}
	return tags, nil
}

func (repo *fakeTagStore) ListByCategory(_ context.Context, category tag.Category) ([]*tag.Tag, error) {
	var tags []*tag.Tag
	for _, entry := range repo.byName {
		if entry.Category == category {
			tags = append(tags, entry)
		}
	}
	return tags, nil
}

func (repo *fakeTagStore) ListForBook(_ context.Context, bookID string) ([]*tag.Tag, error) {
	var tags []*tag.Tag
	for tagID := range repo.pairs[bookID] {
		entry, err := repo.FindByID(context.Background(), tagID)
		if err == nil {
			tags = append(tags, entry)
		}
	}
	return tags, nil
}

func (repo *fakeTagStore) BookIDsWithTag(_ context.Context, tagID int) ([]string, error) {
	var ids []string
	for bookID, links := range repo.pairs {
		if links[tagID] {
			ids = append(ids, bookID)
		}
	}
	return ids, nil
}

func (repo *fakeTagStore) Attach(_ context.Context, bookID string, tagID int, _ string, auto bool) error {
	if repo.pairs[bookID] == nil {
		repo.pairs[bookID] = make(map[int]bool)
	}
	if _, exists := repo.pairs[bookID][tagID]; !exists {
		repo.pairs[bookID][tagID] = auto
	}
	return nil
}

func (repo *fakeTagStore) Detach(_ context.Context, bookID string, tagID int) error {
	delete(repo.pairs[bookID], tagID)
	return nil
}

func (repo *fakeTagStore) GatesForBook(_ context.Context, bookID string) ([]string, error) {
	var gates []string
	for tagID := range repo.pairs[bookID] {
		entry, err := repo.FindByID(context.Background(), tagID)
		if err == nil && entry.RequiresPermission != nil {
			gates = append(gates, *entry.RequiresPermission)
		}
	}
	return gates, nil
}

// s2Provider answers the canned scenario metadata for the known ISBN.
type s2Provider struct{}

func (s2Provider) Name() string { return "canned" }

func (s2Provider) LookupByID(_ context.Context, identifier string) (*metadata.Record, error) {
	if identifier != "9781789349917" {
		return nil, nil
	}
	return &metadata.Record{
		Title:      "Learn C Programming",
		Authors:    []string{"Jeff Szuhay"},
		Publisher:  "Packt",
		PageCount:  742,
		Categories: []string{"Computers"},
	}, nil
}

func (s2Provider) LookupByTitle(_ context.Context, _, _ string) ([]*metadata.Record, error) {
	return nil, nil
}

// # Fixture

type fixture struct {
	scanner *scan.Scanner
	books   *memBooks
	authors *memAuthors
	tags    *tag.Service
	tagRepo *fakeTagStore
	root    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.Default()

	authors := &memAuthors{byName: make(map[string]*author.Author)}
	books := &memBooks{byPath: make(map[string]*book.Book)}
	tagRepo := newFakeTagStore()

	tagSvc := tag.NewService(tagRepo, logger)
	require.NoError(t, tagSvc.SeedDefaults(context.Background()))

	accessSvc := access.NewService(tagRepo, memPerms{})
	archiveSvc := archive.NewService(&memArchive{books: books}, logger)
	bookSvc := book.NewService(books, tagSvc, accessSvc, archiveSvc, logger)
	authorSvc := author.NewService(authors, logger)

	resolver := metadata.NewResolver(true, logger, s2Provider{})

	return &fixture{
		scanner: scan.NewScanner(bookSvc, authorSvc, tagSvc, archiveSvc, resolver, logger),
		books:   books,
		authors: authors,
		tags:    tagSvc,
		tagRepo: tagRepo,
		root:    t.TempDir(),
	}
}

// writeBookFile lays out <root>/<author>/<title>/<file>.
func (f *fixture) writeBookFile(t *testing.T, authorName, title, filename string) string {
	t.Helper()
	dir := filepath.Join(f.root, authorName, title)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte("not a real ebook"), 0o644))
	return path
}

// # Pipeline Behavior

/*
TestScan_IndexesWithExternalMetadata walks the canonical scenario: one file
with an ISBN in its name, provider enrichment on, fused record persisted,
auto-tags applied.
*/
func TestScan_IndexesWithExternalMetadata(t *testing.T) {
	f := newFixture(t)
	path := f.writeBookFile(t, "Jeff Szuhay", "Learn C Programming", "9781789349917.epub")

	result, err := f.scanner.Scan(context.Background(), scan.Options{
		Roots:          []string{f.root},
		ExternalLookup: true,
		Workers:        2,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Discovered)
	assert.Equal(t, 1, result.Indexed)
	assert.Zero(t, result.Errors)

	// One author, by name.
	require.Contains(t, f.authors.byName, "Jeff Szuhay")

	// The fused record: external beats path-derived fields.
	indexed, ok := f.books.byPath[path]
	require.True(t, ok)
	assert.Equal(t, "Learn C Programming", indexed.Name)
	assert.Equal(t, "9781789349917", indexed.ISBN)
	assert.Equal(t, "Packt", indexed.Publisher)
	require.NotNil(t, indexed.PageCount)
	assert.Equal(t, 742, *indexed.PageCount)
	assert.Equal(t, "epub", indexed.FileFormat)
	assert.Equal(t, book.StatusActive, indexed.Status)

	// Auto-tags: format plus category-derived genres.
	applied, err := f.tags.ListForBook(context.Background(), indexed.ID)
	require.NoError(t, err)

	names := slice.Map(applied, func(entry *tag.Tag) string { return entry.Name })
	assert.Contains(t, names, "EPUB")
	assert.Contains(t, names, "Programming")
}

/*
TestScan_Idempotent runs the same scan twice: the second pass discovers the
same files, changes nothing, and converges to the identical tag closure.
*/
func TestScan_Idempotent(t *testing.T) {
	f := newFixture(t)
	path := f.writeBookFile(t, "Jeff Szuhay", "Learn C Programming", "9781789349917.epub")

	options := scan.Options{Roots: []string{f.root}, ExternalLookup: true, Workers: 2}

	_, err := f.scanner.Scan(context.Background(), options)
	require.NoError(t, err)

	firstTags, err := f.tags.ListForBook(context.Background(), f.books.byPath[path].ID)
	require.NoError(t, err)

	second, err := f.scanner.Scan(context.Background(), options)
	require.NoError(t, err)

	assert.Equal(t, 1, second.Discovered)
	assert.Zero(t, second.Indexed)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, f.books.byPath, 1)
	assert.Len(t, f.authors.byName, 1)

	secondTags, err := f.tags.ListForBook(context.Background(), f.books.byPath[path].ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, firstTags, secondTags)
}

/*
TestScan_SkipsUnsupportedFormats checks that unknown extensions never enter
the index.
*/
func TestScan_SkipsUnsupportedFormats(t *testing.T) {
	f := newFixture(t)
	f.writeBookFile(t, "Someone", "Notes", "notes.txt")
	f.writeBookFile(t, "Someone", "Manual", "manual.docx")

	result, err := f.scanner.Scan(context.Background(), scan.Options{Roots: []string{f.root}})
	require.NoError(t, err)

	assert.Zero(t, result.Discovered)
	assert.Empty(t, f.books.byPath)
}

/*
TestScan_WithoutIdentifierFallsBackToPath checks the external>file>path
precedence chain bottoming out at the directory layout, and that no lookup
fires without an identifier.
*/
func TestScan_WithoutIdentifierFallsBackToPath(t *testing.T) {
	f := newFixture(t)
	path := f.writeBookFile(t, "Ursula K. Le Guin", "The Dispossessed", "the-dispossessed.epub")

	_, err := f.scanner.Scan(context.Background(), scan.Options{
		Roots:          []string{f.root},
		ExternalLookup: true,
	})
	require.NoError(t, err)

	indexed, ok := f.books.byPath[path]
	require.True(t, ok)
	assert.Equal(t, "The Dispossessed", indexed.Name)
	assert.Empty(t, indexed.ISBN)
	require.Contains(t, f.authors.byName, "Ursula K. Le Guin")
}

/*
TestScan_ArchivesRemovedFiles covers the S3 flow: a previously indexed file
disappears and the closing reconciliation archives the book; restoring the
file brings it back on the next pass.
*/
func TestScan_ArchivesRemovedFiles(t *testing.T) {
	f := newFixture(t)
	path := f.writeBookFile(t, "Jeff Szuhay", "Learn C Programming", "9781789349917.epub")

	options := scan.Options{Roots: []string{f.root}}

	_, err := f.scanner.Scan(context.Background(), options)
	require.NoError(t, err)
	require.Equal(t, book.StatusActive, f.books.byPath[path].Status)

	// Remove the file; the next pass archives the record.
	require.NoError(t, os.Remove(path))

	result, err := f.scanner.Scan(context.Background(), options)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Archived)
	assert.Equal(t, book.StatusArchived, f.books.byPath[path].Status)
	require.NotNil(t, f.books.byPath[path].ArchiveReason)
	assert.Equal(t, archive.ReasonFileMissing, *f.books.byPath[path].ArchiveReason)

	// The file reappears; the next pass restores the record.
	require.NoError(t, os.WriteFile(path, []byte("back again"), 0o644))

	result, err = f.scanner.Scan(context.Background(), options)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)
	assert.Equal(t, book.StatusActive, f.books.byPath[path].Status)
	assert.Nil(t, f.books.byPath[path].ArchiveReason)
}
