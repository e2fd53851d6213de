// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/catalog/tag"
	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/users/perm"
	"github.com/taibuivan/tosho/pkg/slice"
)

// # Fakes

// pair is one book↔tag link.
type pair struct {
	appliedBy string
	auto      bool
}

// fakeRepo is an in-memory tag Repository.
type fakeRepo struct {
	nextID int
	byName map[string]*tag.Tag
	pairs  map[string]map[int]pair // bookID → tagID → pair
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID: 1,
		byName: make(map[string]*tag.Tag),
		pairs:  make(map[string]map[int]pair),
	}
}

func (repo *fakeRepo) EnsureTag(_ context.Context, entry *tag.Tag) (*tag.Tag, error) {
	if existing, found := repo.byName[entry.Name]; found {
		return existing, nil
	}
	clone := *entry
	clone.ID = repo.nextID
	repo.nextID++
	repo.byName[entry.Name] = &clone
	return &clone, nil
}

func (repo *fakeRepo) FindByName(_ context.Context, name string) (*tag.Tag, error) {
	if existing, found := repo.byName[name]; found {
		return existing, nil
	}
	return nil, apperr.NotFound("Tag")
}

func (repo *fakeRepo) FindByID(_ context.Context, id int) (*tag.Tag, error) {
	for _, entry := range repo.byName {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, apperr.NotFound("Tag")
}

func (repo *fakeRepo) List(_ context.Context) ([]*tag.Tag, error) {
	var tags []*tag.Tag
	for _, entry := range repo.byName {
		tags = append(tags, entry)
	}
	return tags, nil
}

func (repo *fakeRepo) ListByCategory(_ context.Context, category tag.Category) ([]*tag.Tag, error) {
	var tags []*tag.Tag
	for _, entry := range repo.byName {
		if entry.Category == category {
			tags = append(tags, entry)
		}
	}
	return tags, nil
}

func (repo *fakeRepo) ListForBook(_ context.Context, bookID string) ([]*tag.Tag, error) {
	var tags []*tag.Tag
	for tagID := range repo.pairs[bookID] {
		entry, _ := repo.FindByID(context.Background(), tagID)
		tags = append(tags, entry)
	}
	return tags, nil
}

func (repo *fakeRepo) BookIDsWithTag(_ context.Context, tagID int) ([]string, error) {
	var ids []string
	for bookID, links := range repo.pairs {
		if _, found := links[tagID]; found {
			ids = append(ids, bookID)
		}
	}
	return ids, nil
}

func (repo *fakeRepo) Attach(_ context.Context, bookID string, tagID int, appliedBy string, auto bool) error {
	if repo.pairs[bookID] == nil {
		repo.pairs[bookID] = make(map[int]pair)
	}
	// First write wins, like ON CONFLICT DO NOTHING.
	if _, exists := repo.pairs[bookID][tagID]; exists {
		return nil
	}
	repo.pairs[bookID][tagID] = pair{appliedBy: appliedBy, auto: auto}
	return nil
}

func (repo *fakeRepo) Detach(_ context.Context, bookID string, tagID int) error {
	delete(repo.pairs[bookID], tagID)
	return nil
}

func (repo *fakeRepo) GatesForBook(_ context.Context, bookID string) ([]string, error) {
	var gates []string
	for tagID := range repo.pairs[bookID] {
		entry, _ := repo.FindByID(context.Background(), tagID)
		if entry.RequiresPermission != nil {
			gates = append(gates, *entry.RequiresPermission)
		}
	}
	return gates, nil
}

func newSeededService(t *testing.T) (*tag.Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	service := tag.NewService(repo, slog.Default())
	require.NoError(t, service.SeedDefaults(context.Background()))
	return service, repo
}

// # Seeding

/*
TestSeedDefaults checks gating wiring and idempotence of the canonical
catalog.
*/
func TestSeedDefaults(t *testing.T) {
	service, repo := newSeededService(t)
	ctx := context.Background()

	// Gated tags carry their permission names.
	nsfw, err := repo.FindByName(ctx, "NSFW")
	require.NoError(t, err)
	require.NotNil(t, nsfw.RequiresPermission)
	assert.Equal(t, perm.PermContentNSFW, *nsfw.RequiresPermission)

	adult, err := repo.FindByName(ctx, "Adult")
	require.NoError(t, err)
	require.NotNil(t, adult.RequiresPermission)
	assert.Equal(t, perm.PermContentNSFW, *adult.RequiresPermission)

	restricted, err := repo.FindByName(ctx, "Restricted")
	require.NoError(t, err)
	require.NotNil(t, restricted.RequiresPermission)
	assert.Equal(t, perm.PermContentRestricted, *restricted.RequiresPermission)

	// Plain tags are ungated.
	epub, err := repo.FindByName(ctx, "EPUB")
	require.NoError(t, err)
	assert.Nil(t, epub.RequiresPermission)

	// Seeding twice converges to the same catalog.
	before := len(repo.byName)
	require.NoError(t, service.SeedDefaults(ctx))
	assert.Equal(t, before, len(repo.byName))
}

// # Category Mapping

/*
TestMapCategoriesToGenres covers exact, substring, fan-out, and dedup
behavior of the alias table.
*/
func TestMapCategoriesToGenres(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       []string
	}{
		{"exact", []string{"Fiction"}, []string{"Fiction"}},
		{"fan_out", []string{"Computers"}, []string{"Programming", "Technology"}},
		{"substring", []string{"Computers / Programming / C"}, []string{"Programming", "Technology"}},
		{"dedup", []string{"fiction", "Literature"}, []string{"Fiction"}},
		{"unknown_dropped", []string{"Underwater Basket Weaving"}, nil},
		{"empty_input", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tag.MapCategoriesToGenres(tt.categories)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

// # Auto-Apply

/*
TestAutoApply checks the full rule set for a typical scanned book.
*/
func TestAutoApply(t *testing.T) {
	service, _ := newSeededService(t)
	ctx := context.Background()

	err := service.AutoApply(ctx, "book-1", tag.Signals{
		Format:         "epub",
		MaturityRating: "NOT_MATURE",
		Categories:     []string{"Computers"},
		Series:         "Learn Programming",
		Language:       "en",
	})
	require.NoError(t, err)

	applied, err := service.ListForBook(ctx, "book-1")
	require.NoError(t, err)

	names := slice.Map(applied, func(entry *tag.Tag) string { return entry.Name })

	assert.ElementsMatch(t, []string{
		"EPUB", "Everyone", "Programming", "Technology",
		"Series: Learn Programming", "Language: English",
	}, names)
}

/*
TestAutoApply_PreservesManualPairs checks that re-running the rules never
downgrades or removes a manually attached pair.
*/
func TestAutoApply_PreservesManualPairs(t *testing.T) {
	service, repo := newSeededService(t)
	ctx := context.Background()

	// A curator attaches Horror by hand.
	_, err := service.Attach(ctx, "book-1", "Horror", "curator-1")
	require.NoError(t, err)

	// The scan applies its own rules twice.
	signals := tag.Signals{Format: "epub"}
	require.NoError(t, service.AutoApply(ctx, "book-1", signals))
	require.NoError(t, service.AutoApply(ctx, "book-1", signals))

	horror, err := repo.FindByName(ctx, "Horror")
	require.NoError(t, err)

	link := repo.pairs["book-1"][horror.ID]
	assert.False(t, link.auto, "manual pair must keep its manual provenance")
	assert.Equal(t, "curator-1", link.appliedBy)
}

// # Manual Round Trip

/*
TestAttachDetach_RoundTrip checks the pair lifecycle leaves the catalog
untouched.
*/
func TestAttachDetach_RoundTrip(t *testing.T) {
	service, repo := newSeededService(t)
	ctx := context.Background()

	catalogSize := len(repo.byName)

	_, err := service.Attach(ctx, "book-1", "Fantasy", "u1")
	require.NoError(t, err)

	require.NoError(t, service.Detach(ctx, "book-1", "Fantasy"))

	tags, err := service.ListForBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.Equal(t, catalogSize, len(repo.byName), "detach must not delete the tag definition")
}

/*
TestListByCategory_RejectsUnknown validates the category input.
*/
func TestListByCategory_RejectsUnknown(t *testing.T) {
	service, _ := newSeededService(t)

	_, err := service.ListByCategory(context.Background(), tag.Category("mood"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
