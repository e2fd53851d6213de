// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/tosho/internal/platform/database/schema"
	"github.com/taibuivan/tosho/internal/platform/dberr"
)

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the pgx-backed progress store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// progressColumns is the shared SELECT column list.
func progressColumns(prefix string) string {
	t := schema.LibraryReadingProgress
	columns := []string{
		t.UserID, t.BookID, t.CurrentPage, t.TotalPages, t.PercentComplete,
		t.LastReadAt, t.Location, t.CreatedAt, t.UpdatedAt,
	}
	joined := ""
	for i, column := range columns {
		if i > 0 {
			joined += ", "
		}
		joined += prefix + column
	}
	return joined
}

// scanProgress hydrates one row.
func scanProgress(row interface{ Scan(...any) error }, withBookName bool) (*Progress, error) {
	progress := &Progress{}
	targets := []any{
		&progress.UserID, &progress.BookID, &progress.CurrentPage, &progress.TotalPages,
		&progress.PercentComplete, &progress.LastReadAt, &progress.Location,
		&progress.CreatedAt, &progress.UpdatedAt,
	}
	if withBookName {
		targets = append(targets, &progress.BookName)
	}
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return progress, nil
}

// Find returns the (user, book) row.
func (repository *PostgresRepository) Find(ctx context.Context, userID, bookID string) (*Progress, error) {
	t := schema.LibraryReadingProgress
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		progressColumns(""), t.Table, t.UserID, t.BookID,
	)

	found, err := scanProgress(repository.pool.QueryRow(ctx, query, userID, bookID), false)
	if err != nil {
		return nil, dberr.Wrap(err, "Reading progress")
	}
	return found, nil
}

/*
Upsert writes the (user, book) row.

The primary key is the coordination point; the conflict arm linearizes
concurrent updates of the same pair. GREATEST keeps last_read_at from ever
moving backward, and total_pages is never forgotten once learned.
*/
func (repository *PostgresRepository) Upsert(ctx context.Context, row *Progress) (*Progress, error) {
	t := schema.LibraryReadingProgress
	query := fmt.Sprintf(`
		INSERT INTO %s AS rp (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = COALESCE(EXCLUDED.%s, rp.%s),
			%s = EXCLUDED.%s,
			%s = GREATEST(rp.%s, EXCLUDED.%s),
			%s = CASE WHEN EXCLUDED.%s <> '' THEN EXCLUDED.%s ELSE rp.%s END,
			%s = now()
		RETURNING %s`,
		t.Table,
		t.UserID, t.BookID, t.CurrentPage, t.TotalPages, t.PercentComplete, t.LastReadAt, t.Location,
		t.UserID, t.BookID,
		t.CurrentPage, t.CurrentPage,
		t.TotalPages, t.TotalPages, t.TotalPages,
		t.PercentComplete, t.PercentComplete,
		t.LastReadAt, t.LastReadAt, t.LastReadAt,
		t.Location, t.Location, t.Location, t.Location,
		t.UpdatedAt,
		progressColumns(""),
	)

	fresh, err := scanProgress(repository.pool.QueryRow(ctx, query,
		row.UserID, row.BookID, row.CurrentPage, row.TotalPages,
		row.PercentComplete, row.LastReadAt, row.Location,
	), false)
	if err != nil {
		return nil, dberr.Wrap(err, "Reading progress")
	}

	return fresh, nil
}

// Delete removes the row; a missing row is already the desired state.
func (repository *PostgresRepository) Delete(ctx context.Context, userID, bookID string) error {
	t := schema.LibraryReadingProgress
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		t.Table, t.UserID, t.BookID,
	)

	_, err := repository.pool.Exec(ctx, query, userID, bookID)
	return dberr.Wrap(err, "Reading progress")
}

// listWhere is the shared listing query joined to book names.
func (repository *PostgresRepository) listWhere(ctx context.Context, condition string, args ...any) ([]*Progress, error) {
	t := schema.LibraryReadingProgress
	book := schema.CatalogBook

	query := fmt.Sprintf(`
		SELECT %s, b.%s
		FROM %s p
		JOIN %s b ON b.%s = p.%s
		WHERE %s
		ORDER BY p.%s DESC`,
		progressColumns("p."), book.Name,
		t.Table,
		book.Table, book.ID, t.BookID,
		condition,
		t.LastReadAt,
	)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Reading progress")
	}
	defer rows.Close()

	var list []*Progress
	for rows.Next() {
		found, err := scanProgress(rows, true)
		if err != nil {
			return nil, dberr.Wrap(err, "Reading progress")
		}
		list = append(list, found)
	}

	return list, dberr.Wrap(rows.Err(), "Reading progress")
}

// ListInProgress returns rows with 0 < percent < 100.
func (repository *PostgresRepository) ListInProgress(ctx context.Context, userID string) ([]*Progress, error) {
	t := schema.LibraryReadingProgress
	condition := fmt.Sprintf("p.%s = $1 AND p.%s > 0 AND p.%s < 100", t.UserID, t.PercentComplete, t.PercentComplete)
	return repository.listWhere(ctx, condition, userID)
}

// ListCompleted returns rows with percent = 100.
func (repository *PostgresRepository) ListCompleted(ctx context.Context, userID string) ([]*Progress, error) {
	t := schema.LibraryReadingProgress
	condition := fmt.Sprintf("p.%s = $1 AND p.%s >= 100", t.UserID, t.PercentComplete)
	return repository.listWhere(ctx, condition, userID)
}

// ListRecent returns the N most recently read rows.
func (repository *PostgresRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*Progress, error) {
	t := schema.LibraryReadingProgress
	book := schema.CatalogBook

	query := fmt.Sprintf(`
		SELECT %s, b.%s
		FROM %s p
		JOIN %s b ON b.%s = p.%s
		WHERE p.%s = $1
		ORDER BY p.%s DESC
		LIMIT $2`,
		progressColumns("p."), book.Name,
		t.Table,
		book.Table, book.ID, t.BookID,
		t.UserID,
		t.LastReadAt,
	)

	rows, err := repository.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "Reading progress")
	}
	defer rows.Close()

	var list []*Progress
	for rows.Next() {
		found, err := scanProgress(rows, true)
		if err != nil {
			return nil, dberr.Wrap(err, "Reading progress")
		}
		list = append(list, found)
	}

	return list, dberr.Wrap(rows.Err(), "Reading progress")
}

// Totals aggregates the scalar stats in one query.
func (repository *PostgresRepository) Totals(ctx context.Context, userID string) (int, int, int, float64, error) {
	t := schema.LibraryReadingProgress
	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE %s >= 100),
		       COALESCE(SUM(%s), 0),
		       COALESCE(AVG(%s), 0)
		FROM %s WHERE %s = $1`,
		t.PercentComplete, t.CurrentPage, t.PercentComplete, t.Table, t.UserID,
	)

	var started, completed, pagesRead int
	var average float64
	err := repository.pool.QueryRow(ctx, query, userID).Scan(&started, &completed, &pagesRead, &average)
	if err != nil {
		return 0, 0, 0, 0, dberr.Wrap(err, "Reading progress")
	}

	return started, completed, pagesRead, average, nil
}

// DistinctReadDates returns the user's distinct reading days, newest first.
// timestamptz::date converts in the database session's timezone, which the
// deployment keeps aligned with the server's local zone.
func (repository *PostgresRepository) DistinctReadDates(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	t := schema.LibraryReadingProgress
	query := fmt.Sprintf(`
		SELECT DISTINCT %s::date AS readday
		FROM %s WHERE %s = $1
		ORDER BY readday DESC
		LIMIT $2`,
		t.LastReadAt, t.Table, t.UserID,
	)

	rows, err := repository.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "Reading progress")
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, dberr.Wrap(err, "Reading progress")
		}
		dates = append(dates, date)
	}

	return dates, dberr.Wrap(rows.Err(), "Reading progress")
}
