// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package progress implements per-user, per-book reading progress and its
derived aggregates (completion lists, stats, the reading streak).

# Invariants

  - current_page ≥ 0; when total_pages is known, current_page ≤ total_pages
    and percent_complete is derived from the two (one decimal).
  - last_read_at never moves backward for a (user, book) pair.
  - reset deletes the row; there is no tombstone.

Progress rows are owned by their user and written only through this package.
*/
package progress

import "time"

// Progress is one (user, book) reading-state row.
type Progress struct {
	UserID          string    `json:"user_id"`
	BookID          string    `json:"book_id"`
	CurrentPage     int       `json:"current_page"`
	TotalPages      *int      `json:"total_pages,omitempty"`
	PercentComplete float64   `json:"percent_complete"`
	LastReadAt      time.Time `json:"last_read_at"`

	// Location is an opaque client position (e.g. an EPUB CFI).
	Location string `json:"location,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// BookName is populated by joined listing queries.
	BookName string `json:"book_name,omitempty"`
}

// Completed reports whether the row represents a finished book.
func (progress *Progress) Completed() bool {
	return progress.PercentComplete >= 100
}

// Stats is the per-user aggregate view.
type Stats struct {
	TotalBooksStarted   int     `json:"total_books_started"`
	TotalBooksCompleted int     `json:"total_books_completed"`
	AverageCompletion   float64 `json:"average_completion"`
	TotalPagesRead      int     `json:"total_pages_read"`
	ReadingStreak       int     `json:"reading_streak"`
}

// Percentage derives the one-decimal completion percentage.
func Percentage(currentPage int, totalPages *int) float64 {
	if totalPages == nil || *totalPages <= 0 {
		return 0
	}
	raw := float64(currentPage) / float64(*totalPages) * 100
	if raw > 100 {
		raw = 100
	}
	// Round to one decimal place.
	return float64(int(raw*10+0.5)) / 10
}

// Streak counts consecutive reading days ending today.
//
// dates must be distinct calendar days sorted descending; today is the
// server-local date. A gap before today yields zero.
func Streak(dates []time.Time, today time.Time) int {
	day := func(t time.Time) time.Time {
		year, month, dayOfMonth := t.Date()
		return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.Local)
	}

	expected := day(today)
	streak := 0

	for _, date := range dates {
		current := day(date)
		if !current.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}

	return streak
}
