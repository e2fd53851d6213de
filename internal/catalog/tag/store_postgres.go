// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

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

// NewPostgresRepository creates the pgx-backed tag store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// tagColumns is the shared SELECT column list.
func tagColumns(prefix string) string {
	t := schema.CatalogTag
	columns := []string{t.ID, t.Name, t.Slug, t.Category, t.Description, t.Color, t.RequiresPermission, t.CreatedAt}
	joined := ""
	for i, column := range columns {
		if i > 0 {
			joined += ", "
		}
		joined += prefix + column
	}
	return joined
}

// scanTag hydrates one row.
func scanTag(row interface{ Scan(...any) error }) (*Tag, error) {
	tag := &Tag{}
	err := row.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Category, &tag.Description,
		&tag.Color, &tag.RequiresPermission, &tag.CreatedAt)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// EnsureTag inserts a tag if absent; the unique name constraint is the
// coordination point for concurrent upserts.
func (repository *PostgresRepository) EnsureTag(ctx context.Context, tag *Tag) (*Tag, error) {
	t := schema.CatalogTag

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		ON CONFLICT (%s) DO NOTHING`,
		t.Table, t.Name, t.Slug, t.Category, t.Description, t.Color, t.RequiresPermission,
		t.Name,
	)

	gate := ""
	if tag.RequiresPermission != nil {
		gate = *tag.RequiresPermission
	}

	_, err := repository.pool.Exec(ctx, insert,
		tag.Name, tag.Slug, tag.Category, tag.Description, tag.Color, gate)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}

	return repository.FindByName(ctx, tag.Name)
}

// FindByName returns a tag by its unique name.
func (repository *PostgresRepository) FindByName(ctx context.Context, name string) (*Tag, error) {
	t := schema.CatalogTag
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, tagColumns(""), t.Table, t.Name)

	tag, err := scanTag(repository.pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}
	return tag, nil
}

// FindByID returns a tag by primary key.
func (repository *PostgresRepository) FindByID(ctx context.Context, id int) (*Tag, error) {
	t := schema.CatalogTag
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, tagColumns(""), t.Table, t.ID)

	tag, err := scanTag(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}
	return tag, nil
}

// List returns the whole catalog with per-tag book counts.
func (repository *PostgresRepository) List(ctx context.Context) ([]*Tag, error) {
	return repository.list(ctx, "", nil)
}

// ListByCategory returns one category of the catalog.
func (repository *PostgresRepository) ListByCategory(ctx context.Context, category Category) ([]*Tag, error) {
	t := schema.CatalogTag
	return repository.list(ctx, fmt.Sprintf("WHERE t.%s = $1", t.Category), []any{category})
}

// list is the shared catalog query with an optional predicate.
func (repository *PostgresRepository) list(ctx context.Context, where string, args []any) ([]*Tag, error) {
	t := schema.CatalogTag
	bookTag := schema.CatalogBookTag

	query := fmt.Sprintf(`
		SELECT %s, COUNT(bt.%s)
		FROM %s t
		LEFT JOIN %s bt ON bt.%s = t.%s
		%s
		GROUP BY t.%s
		ORDER BY t.%s, t.%s`,
		tagColumns("t."), bookTag.BookID,
		t.Table,
		bookTag.Table, bookTag.TagID, t.ID,
		where,
		t.ID,
		t.Category, t.Name,
	)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag := &Tag{}
		err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Category, &tag.Description,
			&tag.Color, &tag.RequiresPermission, &tag.CreatedAt, &tag.BookCount)
		if err != nil {
			return nil, dberr.Wrap(err, "Tag")
		}
		tags = append(tags, tag)
	}

	return tags, dberr.Wrap(rows.Err(), "Tag")
}

// ListForBook returns the tags attached to a book.
func (repository *PostgresRepository) ListForBook(ctx context.Context, bookID string) ([]*Tag, error) {
	t := schema.CatalogTag
	bookTag := schema.CatalogBookTag

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s t
		JOIN %s bt ON bt.%s = t.%s
		WHERE bt.%s = $1
		ORDER BY t.%s, t.%s`,
		tagColumns("t."),
		t.Table,
		bookTag.Table, bookTag.TagID, t.ID,
		bookTag.BookID,
		t.Category, t.Name,
	)

	rows, err := repository.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Tag")
		}
		tags = append(tags, tag)
	}

	return tags, dberr.Wrap(rows.Err(), "Tag")
}

// BookIDsWithTag returns the IDs of books carrying the tag.
func (repository *PostgresRepository) BookIDsWithTag(ctx context.Context, tagID int) ([]string, error) {
	bookTag := schema.CatalogBookTag
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		bookTag.BookID, bookTag.Table, bookTag.TagID,
	)

	rows, err := repository.pool.Query(ctx, query, tagID)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "Tag")
		}
		ids = append(ids, id)
	}

	return ids, dberr.Wrap(rows.Err(), "Tag")
}

// Attach links a tag to a book. ON CONFLICT DO NOTHING keeps the original
// pair, so a manual attach is never overwritten by a later auto-apply.
func (repository *PostgresRepository) Attach(ctx context.Context, bookID string, tagID int, appliedBy string, auto bool) error {
	bookTag := schema.CatalogBookTag
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4)
		ON CONFLICT DO NOTHING`,
		bookTag.Table,
		bookTag.BookID, bookTag.TagID, bookTag.AppliedBy, bookTag.AutoApplied,
	)

	_, err := repository.pool.Exec(ctx, query, bookID, tagID, appliedBy, auto)
	return dberr.Wrap(err, "Book tag")
}

// Detach removes only the pair; the tag definition survives.
func (repository *PostgresRepository) Detach(ctx context.Context, bookID string, tagID int) error {
	bookTag := schema.CatalogBookTag
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		bookTag.Table, bookTag.BookID, bookTag.TagID,
	)

	_, err := repository.pool.Exec(ctx, query, bookID, tagID)
	return dberr.Wrap(err, "Book tag")
}

// GatesForBook returns the distinct permission gates on a book's tags.
func (repository *PostgresRepository) GatesForBook(ctx context.Context, bookID string) ([]string, error) {
	t := schema.CatalogTag
	bookTag := schema.CatalogBookTag

	query := fmt.Sprintf(`
		SELECT DISTINCT t.%s
		FROM %s t
		JOIN %s bt ON bt.%s = t.%s
		WHERE bt.%s = $1 AND t.%s IS NOT NULL`,
		t.RequiresPermission,
		t.Table,
		bookTag.Table, bookTag.TagID, t.ID,
		bookTag.BookID, t.RequiresPermission,
	)

	rows, err := repository.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}
	defer rows.Close()

	var gates []string
	for rows.Next() {
		var gate string
		if err := rows.Scan(&gate); err != nil {
			return nil, dberr.Wrap(err, "Tag")
		}
		gates = append(gates, gate)
	}

	return gates, dberr.Wrap(rows.Err(), "Tag")
}
