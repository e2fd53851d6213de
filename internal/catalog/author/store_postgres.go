// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/tosho/internal/catalog/access"
	"github.com/taibuivan/tosho/internal/platform/database/schema"
	"github.com/taibuivan/tosho/internal/platform/dberr"
	"github.com/taibuivan/tosho/pkg/uuid"
)

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the pgx-backed author store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// authorColumns is the shared SELECT column list.
func authorColumns(alias string) string {
	t := schema.CatalogAuthor
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	columns := []string{
		t.ID, t.Name, t.Biography, t.BirthDate, t.DeathDate,
		t.Nationality, t.Website, t.Aliases, t.Genres, t.CreatedAt, t.UpdatedAt,
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

// scanAuthor hydrates one row.
func scanAuthor(row interface{ Scan(...any) error }) (*Author, error) {
	author := &Author{}
	err := row.Scan(
		&author.ID, &author.Name, &author.Biography, &author.BirthDate, &author.DeathDate,
		&author.Nationality, &author.Website, &author.Aliases, &author.Genres,
		&author.CreatedAt, &author.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return author, nil
}

/*
EnsureByName returns the author with the given name, creating it if absent.

The unique name index is the coordination point: a concurrent insert loses
the race, hits ON CONFLICT DO NOTHING, and the follow-up select returns the
winner's row. Name comparison is case-sensitive.
*/
func (repository *PostgresRepository) EnsureByName(ctx context.Context, name string) (*Author, error) {
	t := schema.CatalogAuthor

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s) VALUES ($1, $2)
		ON CONFLICT (%s) DO NOTHING`,
		t.Table, t.ID, t.Name, t.Name,
	)
	if _, err := repository.pool.Exec(ctx, insert, uuid.New(), name); err != nil {
		return nil, dberr.Wrap(err, "Author")
	}

	lookup := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, authorColumns(""), t.Table, t.Name)
	author, err := scanAuthor(repository.pool.QueryRow(ctx, lookup, name))
	if err != nil {
		return nil, dberr.Wrap(err, "Author")
	}

	return author, nil
}

// FindByID returns one author.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Author, error) {
	t := schema.CatalogAuthor
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, authorColumns(""), t.Table, t.ID)

	author, err := scanAuthor(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Author")
	}
	return author, nil
}

// Enrich fills currently-empty optional fields from provider output.
// Each CASE WHEN guard writes only into a still-empty column, so stored
// non-empty values stay authoritative.
func (repository *PostgresRepository) Enrich(ctx context.Context, authorID string, enrichment Enrichment) error {
	t := schema.CatalogAuthor
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = CASE WHEN %s = '' THEN $2 ELSE %s END,
			%s = CASE WHEN %s = '' THEN $3 ELSE %s END,
			%s = CASE WHEN %s = '' THEN $4 ELSE %s END,
			%s = CASE WHEN %s = '{}' THEN $5 ELSE %s END,
			%s = now()
		WHERE %s = $1`,
		t.Table,
		t.Biography, t.Biography, t.Biography,
		t.Nationality, t.Nationality, t.Nationality,
		t.Website, t.Website, t.Website,
		t.Genres, t.Genres, t.Genres,
		t.UpdatedAt,
		t.ID,
	)

	genres := enrichment.Genres
	if genres == nil {
		genres = []string{}
	}

	_, err := repository.pool.Exec(ctx, query,
		authorID, enrichment.Biography, enrichment.Nationality, enrichment.Website, genres,
	)
	return dberr.Wrap(err, "Author")
}

/*
ListWithCounts returns authors ordered by name with visible book counts.

Archived books never count. When allowedPermissions is non-nil the tag-gate
condition also excludes gated books the caller cannot see, in the same query.
*/
func (repository *PostgresRepository) ListWithCounts(ctx context.Context, allowedPermissions []string) ([]*Author, error) {
	t := schema.CatalogAuthor
	book := schema.CatalogBook

	gate := ""
	args := []any{}
	if allowedPermissions != nil {
		gate = " AND " + access.GateCondition("b", 1)
		args = append(args, allowedPermissions)
	}

	query := fmt.Sprintf(`
		SELECT %s,
		       (SELECT COUNT(*) FROM %s b
		        WHERE b.%s = a.%s AND b.%s = 'active'%s)
		FROM %s a
		ORDER BY a.%s`,
		authorColumns("a"),
		book.Table,
		book.AuthorID, t.ID, book.Status, gate,
		t.Table,
		t.Name,
	)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Author")
	}
	defer rows.Close()

	var authors []*Author
	for rows.Next() {
		author := &Author{}
		err := rows.Scan(
			&author.ID, &author.Name, &author.Biography, &author.BirthDate, &author.DeathDate,
			&author.Nationality, &author.Website, &author.Aliases, &author.Genres,
			&author.CreatedAt, &author.UpdatedAt, &author.BookCount,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "Author")
		}
		authors = append(authors, author)
	}

	return authors, dberr.Wrap(rows.Err(), "Author")
}
