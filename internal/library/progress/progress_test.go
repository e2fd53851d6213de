// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/library/progress"
	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/pkg/pointer"
)

// # Fakes

// fakeRepo is an in-memory Repository keyed by user|book.
type fakeRepo struct {
	rows map[string]*progress.Progress
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string]*progress.Progress)}
}

func key(userID, bookID string) string { return userID + "|" + bookID }

func (repo *fakeRepo) Find(_ context.Context, userID, bookID string) (*progress.Progress, error) {
	row, found := repo.rows[key(userID, bookID)]
	if !found {
		return nil, apperr.NotFound("Reading progress")
	}
	clone := *row
	return &clone, nil
}

func (repo *fakeRepo) Upsert(_ context.Context, row *progress.Progress) (*progress.Progress, error) {
	stored, exists := repo.rows[key(row.UserID, row.BookID)]
	if !exists {
		clone := *row
		repo.rows[key(row.UserID, row.BookID)] = &clone
		result := clone
		return &result, nil
	}

	stored.CurrentPage = row.CurrentPage
	if row.TotalPages != nil {
		stored.TotalPages = row.TotalPages
	}
	stored.PercentComplete = row.PercentComplete
	if row.LastReadAt.After(stored.LastReadAt) {
		stored.LastReadAt = row.LastReadAt
	}
	if row.Location != "" {
		stored.Location = row.Location
	}

	clone := *stored
	return &clone, nil
}

func (repo *fakeRepo) Delete(_ context.Context, userID, bookID string) error {
	delete(repo.rows, key(userID, bookID))
	return nil
}

func (repo *fakeRepo) ListInProgress(_ context.Context, userID string) ([]*progress.Progress, error) {
	var list []*progress.Progress
	for _, row := range repo.rows {
		if row.UserID == userID && row.PercentComplete > 0 && row.PercentComplete < 100 {
			list = append(list, row)
		}
	}
	return list, nil
}

func (repo *fakeRepo) ListCompleted(_ context.Context, userID string) ([]*progress.Progress, error) {
	var list []*progress.Progress
	for _, row := range repo.rows {
		if row.UserID == userID && row.PercentComplete >= 100 {
			list = append(list, row)
		}
	}
	return list, nil
}

func (repo *fakeRepo) ListRecent(_ context.Context, userID string, limit int) ([]*progress.Progress, error) {
	list, _ := repo.ListInProgress(context.Background(), userID)
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (repo *fakeRepo) Totals(_ context.Context, userID string) (int, int, int, float64, error) {
	var started, completed, pages int
	var sum float64
	for _, row := range repo.rows {
		if row.UserID != userID {
			continue
		}
		started++
		pages += row.CurrentPage
		sum += row.PercentComplete
		if row.PercentComplete >= 100 {
			completed++
		}
	}
	average := 0.0
	if started > 0 {
		average = sum / float64(started)
	}
	return started, completed, pages, average, nil
}

func (repo *fakeRepo) DistinctReadDates(_ context.Context, userID string, _ int) ([]time.Time, error) {
	seen := make(map[string]time.Time)
	for _, row := range repo.rows {
		if row.UserID != userID {
			continue
		}
		day := row.LastReadAt.Truncate(24 * time.Hour)
		seen[day.Format("2006-01-02")] = day
	}
	var dates []time.Time
	for _, day := range seen {
		dates = append(dates, day)
	}
	return dates, nil
}

func newService(repo progress.Repository) *progress.Service {
	return progress.NewService(repo, slog.Default())
}

// # Pure Helpers

/*
TestPercentage pins the one-decimal derivation and its edge cases.
*/
func TestPercentage(t *testing.T) {
	total := pointer.To[int]

	tests := []struct {
		name    string
		current int
		total   *int
		want    float64
	}{
		{"quarter", 25, total(100), 25.0},
		{"one_third", 1, total(3), 33.3},
		{"two_thirds", 2, total(3), 66.7},
		{"complete", 100, total(100), 100.0},
		{"overshoot_clamped", 120, total(100), 100.0},
		{"unknown_total", 25, nil, 0.0},
		{"zero_total", 25, total(0), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, progress.Percentage(tt.current, tt.total), 0.001)
		})
	}
}

/*
TestStreak covers the consecutive-day boundary semantics: the streak ends on
the first day without activity, counting back from today.
*/
func TestStreak(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.Local)
	day := func(offset int) time.Time { return today.AddDate(0, 0, offset) }

	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"three_consecutive_days", []time.Time{day(0), day(-1), day(-2)}, 3},
		{"no_activity_today", []time.Time{day(-1), day(-2), day(-3)}, 0},
		{"gap_breaks_streak", []time.Time{day(0), day(-1), day(-3), day(-4)}, 2},
		{"single_day", []time.Time{day(0)}, 1},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progress.Streak(tt.dates, today))
		})
	}
}

// # Service Behavior

/*
TestService_UpdateValidation enforces the page-bound invariants.
*/
func TestService_UpdateValidation(t *testing.T) {
	service := newService(newFakeRepo())
	ctx := context.Background()

	total := pointer.To[int]

	_, err := service.Update(ctx, "u1", "b1", -1, nil, "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = service.Update(ctx, "u1", "b1", 150, total(100), "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = service.Update(ctx, "u1", "b1", 50, total(0), "")
	require.Error(t, err)
}

/*
TestService_ProgressLifecycle walks start → update → complete, checking the
derived state transitions.
*/
func TestService_ProgressLifecycle(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)
	ctx := context.Background()

	// Start: zero pages, not yet in the currently-reading slice.
	row, err := service.Start(ctx, "u1", "b1", pointer.To(100))
	require.NoError(t, err)
	assert.Equal(t, 0, row.CurrentPage)
	assert.InDelta(t, 0.0, row.PercentComplete, 0.001)

	// Update to 25%: appears in currently-reading.
	row, err = service.Update(ctx, "u1", "b1", 25, nil, "")
	require.NoError(t, err)
	assert.InDelta(t, 25.0, row.PercentComplete, 0.001)

	reading, err := service.CurrentlyReading(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, reading, 1)

	// Update to the last page: completed, no longer currently reading.
	row, err = service.Update(ctx, "u1", "b1", 100, nil, "")
	require.NoError(t, err)
	assert.True(t, row.Completed())

	completed, err := service.Completed(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	reading, err = service.CurrentlyReading(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, reading)

	stats, err := service.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalBooksCompleted)
}

/*
TestService_UpdateRemembersTotal checks that a total learned at start bounds
later updates that omit it.
*/
func TestService_UpdateRemembersTotal(t *testing.T) {
	service := newService(newFakeRepo())
	ctx := context.Background()

	_, err := service.Start(ctx, "u1", "b1", pointer.To(100))
	require.NoError(t, err)

	_, err = service.Update(ctx, "u1", "b1", 150, nil, "")
	require.Error(t, err, "update past a previously learned total must fail")
}

/*
TestService_ResetRoundTrip checks that start followed by reset leaves no row.
*/
func TestService_ResetRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)
	ctx := context.Background()

	_, err := service.Start(ctx, "u1", "b1", nil)
	require.NoError(t, err)

	require.NoError(t, service.Reset(ctx, "u1", "b1"))

	_, err = service.Get(ctx, "u1", "b1")
	assert.Error(t, err)
	assert.Empty(t, repo.rows)
}

/*
TestService_LastReadAtMonotonic checks that a stale clock can never move
last_read_at backwards.
*/
func TestService_LastReadAtMonotonic(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return now })

	_, err := service.Update(ctx, "u1", "b1", 10, nil, "")
	require.NoError(t, err)

	// Clock jumps backwards; the stored timestamp must not follow.
	service.WithClock(func() time.Time { return now.Add(-time.Hour) })

	row, err := service.Update(ctx, "u1", "b1", 20, nil, "")
	require.NoError(t, err)
	assert.Equal(t, now, row.LastReadAt)
	assert.Equal(t, 20, row.CurrentPage)
}
