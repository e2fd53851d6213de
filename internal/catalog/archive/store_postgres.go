// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/tosho/internal/platform/database/schema"
	"github.com/taibuivan/tosho/internal/platform/dberr"
)

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the pgx-backed archive store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EntriesByStatus returns (book, filepath) pairs in the given status.
func (repository *PostgresRepository) EntriesByStatus(ctx context.Context, status string) ([]Entry, error) {
	t := schema.CatalogBook
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		t.ID, t.Filepath, t.Table, t.Status,
	)

	rows, err := repository.pool.Query(ctx, query, status)
	if err != nil {
		return nil, dberr.Wrap(err, "Book")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.BookID, &entry.Filepath); err != nil {
			return nil, dberr.Wrap(err, "Book")
		}
		entries = append(entries, entry)
	}

	return entries, dberr.Wrap(rows.Err(), "Book")
}

// MarkArchived flips active→archived conditionally; concurrent reconcilers
// converge because only one update can match WHERE status='active'.
func (repository *PostgresRepository) MarkArchived(ctx context.Context, bookID, reason string) (bool, error) {
	t := schema.CatalogBook
	query := fmt.Sprintf(`
		UPDATE %s SET %s = 'archived', %s = now(), %s = $2, %s = now()
		WHERE %s = $1 AND %s = 'active'`,
		t.Table, t.Status, t.ArchivedAt, t.ArchiveReason, t.UpdatedAt,
		t.ID, t.Status,
	)

	tag, err := repository.pool.Exec(ctx, query, bookID, reason)
	if err != nil {
		return false, dberr.Wrap(err, "Book")
	}

	return tag.RowsAffected() == 1, nil
}

// MarkRestored flips archived→active and clears the evidence columns.
func (repository *PostgresRepository) MarkRestored(ctx context.Context, bookID string) (bool, error) {
	t := schema.CatalogBook
	query := fmt.Sprintf(`
		UPDATE %s SET %s = 'active', %s = NULL, %s = NULL, %s = now()
		WHERE %s = $1 AND %s = 'archived'`,
		t.Table, t.Status, t.ArchivedAt, t.ArchiveReason, t.UpdatedAt,
		t.ID, t.Status,
	)

	tag, err := repository.pool.Exec(ctx, query, bookID)
	if err != nil {
		return false, dberr.Wrap(err, "Book")
	}

	return tag.RowsAffected() == 1, nil
}

// ListArchived returns the archive surface page plus total count.
func (repository *PostgresRepository) ListArchived(ctx context.Context, limit, offset int) ([]*ArchivedBook, int, error) {
	book := schema.CatalogBook
	author := schema.CatalogAuthor

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = 'archived'`, book.Table, book.Status)
	if err := repository.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Book")
	}

	query := fmt.Sprintf(`
		SELECT b.%s, b.%s, a.%s, b.%s, b.%s, b.%s
		FROM %s b
		JOIN %s a ON a.%s = b.%s
		WHERE b.%s = 'archived'
		ORDER BY b.%s DESC
		LIMIT $1 OFFSET $2`,
		book.ID, book.Name, author.Name, book.FileFormat, book.ArchivedAt, book.ArchiveReason,
		book.Table,
		author.Table, author.ID, book.AuthorID,
		book.Status,
		book.ArchivedAt,
	)

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Book")
	}
	defer rows.Close()

	var archived []*ArchivedBook
	for rows.Next() {
		entry := &ArchivedBook{}
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.AuthorName,
			&entry.FileFormat, &entry.ArchivedAt, &entry.ArchiveReason); err != nil {
			return nil, 0, dberr.Wrap(err, "Book")
		}
		archived = append(archived, entry)
	}

	return archived, total, dberr.Wrap(rows.Err(), "Book")
}

// Stats aggregates archive counts and the per-reason breakdown.
func (repository *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	t := schema.CatalogBook

	totals := fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE %s > now() - interval '7 days')
		FROM %s WHERE %s = 'archived'`,
		t.ArchivedAt, t.Table, t.Status,
	)

	stats := &Stats{ByReason: make(map[string]int)}
	if err := repository.pool.QueryRow(ctx, totals).Scan(&stats.TotalArchived, &stats.ArchivedLast7d); err != nil {
		return nil, dberr.Wrap(err, "Book")
	}

	breakdown := fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM %s
		WHERE %s = 'archived'
		GROUP BY %s`,
		t.ArchiveReason, t.Table, t.Status, t.ArchiveReason,
	)

	rows, err := repository.pool.Query(ctx, breakdown)
	if err != nil {
		return nil, dberr.Wrap(err, "Book")
	}
	defer rows.Close()

	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, dberr.Wrap(err, "Book")
		}
		stats.ByReason[reason] = count
	}

	return stats, dberr.Wrap(rows.Err(), "Book")
}
