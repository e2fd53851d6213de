// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archive_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/catalog/archive"
)

// # Fakes

// fakeBook mirrors one catalog row for the reconciler.
type fakeBook struct {
	filepath string
	status   string
	reason   string
}

// fakeRepo is an in-memory archive Repository.
type fakeRepo struct {
	books map[string]*fakeBook
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{books: make(map[string]*fakeBook)}
}

func (repo *fakeRepo) EntriesByStatus(_ context.Context, status string) ([]archive.Entry, error) {
	var entries []archive.Entry
	for id, book := range repo.books {
		if book.status == status {
			entries = append(entries, archive.Entry{BookID: id, Filepath: book.filepath})
		}
	}
	return entries, nil
}

func (repo *fakeRepo) MarkArchived(_ context.Context, bookID, reason string) (bool, error) {
	book, found := repo.books[bookID]
	if !found || book.status != "active" {
		return false, nil
	}
	book.status = "archived"
	book.reason = reason
	return true, nil
}

func (repo *fakeRepo) MarkRestored(_ context.Context, bookID string) (bool, error) {
	book, found := repo.books[bookID]
	if !found || book.status != "archived" {
		return false, nil
	}
	book.status = "active"
	book.reason = ""
	return true, nil
}

func (repo *fakeRepo) ListArchived(_ context.Context, _, _ int) ([]*archive.ArchivedBook, int, error) {
	return nil, 0, nil
}

func (repo *fakeRepo) Stats(_ context.Context) (*archive.Stats, error) {
	stats := &archive.Stats{ByReason: make(map[string]int)}
	for _, book := range repo.books {
		if book.status == "archived" {
			stats.TotalArchived++
			stats.ByReason[book.reason]++
		}
	}
	return stats, nil
}

// writeTempBook creates a real file so os.Stat sees it.
func writeTempBook(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("book bytes"), 0o644))
	return path
}

// # Reconciliation

/*
TestReconcile_ArchivesMissingFiles checks the active→archived direction with
the "file missing" reason.
*/
func TestReconcile_ArchivesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	repo := newFakeRepo()
	service := archive.NewService(repo, slog.Default())

	present := writeTempBook(t, dir, "present.epub")
	repo.books["keeps"] = &fakeBook{filepath: present, status: "active"}
	repo.books["goes"] = &fakeBook{filepath: filepath.Join(dir, "deleted.epub"), status: "active"}

	result, err := service.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Archived)
	assert.Equal(t, 0, result.Restored)
	assert.Equal(t, "active", repo.books["keeps"].status)
	assert.Equal(t, "archived", repo.books["goes"].status)
	assert.Equal(t, archive.ReasonFileMissing, repo.books["goes"].reason)
}

/*
TestReconcile_RestoresReappearedFiles checks the archived→active direction.
*/
func TestReconcile_RestoresReappearedFiles(t *testing.T) {
	dir := t.TempDir()
	repo := newFakeRepo()
	service := archive.NewService(repo, slog.Default())

	reappeared := writeTempBook(t, dir, "back.epub")
	repo.books["back"] = &fakeBook{filepath: reappeared, status: "archived", reason: archive.ReasonFileMissing}
	repo.books["still-gone"] = &fakeBook{filepath: filepath.Join(dir, "gone.epub"), status: "archived", reason: archive.ReasonFileMissing}

	result, err := service.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Restored)
	assert.Equal(t, "active", repo.books["back"].status)
	assert.Empty(t, repo.books["back"].reason)
	assert.Equal(t, "archived", repo.books["still-gone"].status)
}

/*
TestReconcile_Idempotent checks that a second pass over unchanged state does
nothing.
*/
func TestReconcile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	repo := newFakeRepo()
	service := archive.NewService(repo, slog.Default())

	repo.books["gone"] = &fakeBook{filepath: filepath.Join(dir, "gone.epub"), status: "active"}

	first, err := service.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Archived)

	second, err := service.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Archived)
	assert.Zero(t, second.Restored)
}

// # Manual Lifecycle

/*
TestArchiveRestore_RoundTrip checks the manual flip pair clears the
evidence columns.
*/
func TestArchiveRestore_RoundTrip(t *testing.T) {
	repo := newFakeRepo()
	service := archive.NewService(repo, slog.Default())
	ctx := context.Background()

	repo.books["b1"] = &fakeBook{filepath: "/nowhere/b1.epub", status: "active"}

	require.NoError(t, service.Archive(ctx, "b1", "shelf cleanup"))
	assert.Equal(t, "archived", repo.books["b1"].status)
	assert.Equal(t, "shelf cleanup", repo.books["b1"].reason)

	// Archiving an archived book conflicts.
	assert.Error(t, service.Archive(ctx, "b1", ""))

	require.NoError(t, service.Restore(ctx, "b1"))
	assert.Equal(t, "active", repo.books["b1"].status)
	assert.Empty(t, repo.books["b1"].reason)

	// Restoring an active book conflicts.
	assert.Error(t, service.Restore(ctx, "b1"))
}

/*
TestArchive_DefaultReason checks the fallback reason for bare manual
archives.
*/
func TestArchive_DefaultReason(t *testing.T) {
	repo := newFakeRepo()
	service := archive.NewService(repo, slog.Default())

	repo.books["b1"] = &fakeBook{filepath: "/nowhere/b1.epub", status: "active"}

	require.NoError(t, service.Archive(context.Background(), "b1", ""))
	assert.Equal(t, archive.ReasonManual, repo.books["b1"].reason)
}
