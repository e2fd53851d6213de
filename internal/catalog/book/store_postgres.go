// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/tosho/internal/catalog/access"
	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/platform/database/schema"
	"github.com/taibuivan/tosho/internal/platform/dberr"
	"github.com/taibuivan/tosho/pkg/uuid"
)

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the pgx-backed book store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// bookColumns is the shared SELECT column list, aliased to the book table.
func bookColumns() string {
	t := schema.CatalogBook
	columns := []string{
		t.ID, t.Name, t.Filepath, t.AuthorID, t.ISBN, t.PublicationDate,
		t.Publisher, t.Description, t.PageCount, t.FileSize, t.FileFormat,
		t.CoverPath, t.Status, t.ArchivedAt, t.ArchiveReason, t.CreatedAt, t.UpdatedAt,
	}
	for i, column := range columns {
		columns[i] = "b." + column
	}
	return strings.Join(columns, ", ")
}

// scanBook hydrates one joined row (book columns plus author name).
func scanBook(row interface{ Scan(...any) error }) (*Book, error) {
	book := &Book{}
	err := row.Scan(
		&book.ID, &book.Name, &book.Filepath, &book.AuthorID, &book.ISBN,
		&book.PublicationDate, &book.Publisher, &book.Description, &book.PageCount,
		&book.FileSize, &book.FileFormat, &book.CoverPath, &book.Status,
		&book.ArchivedAt, &book.ArchiveReason, &book.CreatedAt, &book.UpdatedAt,
		&book.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// selectJoined is the shared FROM clause joining the author name.
func selectJoined(where string) string {
	book := schema.CatalogBook
	author := schema.CatalogAuthor

	return fmt.Sprintf(`
		SELECT %s, a.%s
		FROM %s b
		JOIN %s a ON a.%s = b.%s
		WHERE %s`,
		bookColumns(), author.Name,
		book.Table,
		author.Table, author.ID, book.AuthorID,
		where,
	)
}

// FindByID returns one book with its author name.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Book, error) {
	query := selectJoined(fmt.Sprintf("b.%s = $1", schema.CatalogBook.ID))

	found, err := scanBook(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Book")
	}
	return found, nil
}

// FindByFilepath returns the book backed by the given file, any status.
func (repository *PostgresRepository) FindByFilepath(ctx context.Context, filepath string) (*Book, error) {
	query := selectJoined(fmt.Sprintf("b.%s = $1", schema.CatalogBook.Filepath))

	found, err := scanBook(repository.pool.QueryRow(ctx, query, filepath))
	if err != nil {
		return nil, dberr.Wrap(err, "Book")
	}
	return found, nil
}

/*
Merge upserts a book by unique filepath.

Insert path: a brand new row in status active.

Update path: each field moves only if the stored value is empty or the new
value is strictly more specific — a longer description, a page count where
none was known, a changed on-disk size. The WHERE clause repeats the change
conditions so an offer that improves nothing reports OutcomeUnchanged.
*/
func (repository *PostgresRepository) Merge(ctx context.Context, record Upsert) (*Book, MergeOutcome, error) {
	t := schema.CatalogBook

	existing, err := repository.FindByFilepath(ctx, record.Filepath)
	if err != nil {
		if !isNotFound(err) {
			return nil, OutcomeUnchanged, err
		}

		// Insert path. A concurrent insert of the same filepath loses on the
		// unique constraint and the error is returned to the caller.
		insert := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'active')`,
			t.Table,
			t.ID, t.Name, t.Filepath, t.AuthorID, t.ISBN, t.PublicationDate,
			t.Publisher, t.Description, t.PageCount, t.FileSize, t.FileFormat,
			t.CoverPath, t.Status,
		)

		_, err := repository.pool.Exec(ctx, insert,
			uuid.New(), record.Name, record.Filepath, record.AuthorID, record.ISBN,
			record.PublicationDate, record.Publisher, record.Description,
			record.PageCount, record.FileSize, record.FileFormat, record.CoverPath,
		)
		if err != nil {
			return nil, OutcomeUnchanged, dberr.Wrap(err, "Book")
		}

		inserted, err := repository.FindByFilepath(ctx, record.Filepath)
		return inserted, OutcomeInserted, err
	}

	update := fmt.Sprintf(`
		UPDATE %s b SET
			%s = CASE WHEN b.%s = '' THEN $2 ELSE b.%s END,
			%s = CASE WHEN b.%s = '' AND $3 <> '' THEN $3 ELSE b.%s END,
			%s = CASE WHEN b.%s = '' AND $4 <> '' THEN $4 ELSE b.%s END,
			%s = CASE WHEN b.%s = '' AND $5 <> '' THEN $5 ELSE b.%s END,
			%s = CASE WHEN length($6) > length(b.%s) THEN $6 ELSE b.%s END,
			%s = COALESCE(b.%s, $7),
			%s = CASE WHEN $8 > 0 AND $8 <> b.%s THEN $8 ELSE b.%s END,
			%s = CASE WHEN b.%s = '' AND $9 <> '' THEN $9 ELSE b.%s END,
			%s = CASE WHEN b.%s = '' AND $10 <> '' THEN $10 ELSE b.%s END,
			%s = now()
		WHERE b.%s = $1 AND (
			(b.%s = '' AND $2 <> '') OR
			(b.%s = '' AND $3 <> '') OR
			(b.%s = '' AND $4 <> '') OR
			(b.%s = '' AND $5 <> '') OR
			(length($6) > length(b.%s)) OR
			(b.%s IS NULL AND $7 IS NOT NULL) OR
			($8 > 0 AND $8 <> b.%s) OR
			(b.%s = '' AND $9 <> '') OR
			(b.%s = '' AND $10 <> ''))`,
		t.Table,
		t.Name, t.Name, t.Name,
		t.ISBN, t.ISBN, t.ISBN,
		t.PublicationDate, t.PublicationDate, t.PublicationDate,
		t.Publisher, t.Publisher, t.Publisher,
		t.Description, t.Description, t.Description,
		t.PageCount, t.PageCount,
		t.FileSize, t.FileSize, t.FileSize,
		t.FileFormat, t.FileFormat, t.FileFormat,
		t.CoverPath, t.CoverPath, t.CoverPath,
		t.UpdatedAt,
		t.ID,
		t.Name,
		t.ISBN,
		t.PublicationDate,
		t.Publisher,
		t.Description,
		t.PageCount,
		t.FileSize,
		t.FileFormat,
		t.CoverPath,
	)

	tag, err := repository.pool.Exec(ctx, update,
		existing.ID, record.Name, record.ISBN, record.PublicationDate,
		record.Publisher, record.Description, record.PageCount, record.FileSize,
		record.FileFormat, record.CoverPath,
	)
	if err != nil {
		return nil, OutcomeUnchanged, dberr.Wrap(err, "Book")
	}

	if tag.RowsAffected() == 0 {
		return existing, OutcomeUnchanged, nil
	}

	fresh, err := repository.FindByID(ctx, existing.ID)
	return fresh, OutcomeUpdated, err
}

/*
List returns a filtered page of books plus the total match count.

All filters compose in one statement: status, author, format, name search,
tag include/exclude (by tag name), and the tag-gate condition for non-admin
callers. Contradictory include/exclude filters simply match nothing.
*/
func (repository *PostgresRepository) List(ctx context.Context, filter Filter) ([]*Book, int, error) {
	book := schema.CatalogBook
	bookTag := schema.CatalogBookTag
	tagTable := schema.CatalogTag

	status := filter.Status
	if status == "" {
		status = StatusActive
	}

	conditions := []string{fmt.Sprintf("b.%s = $1", book.Status)}
	args := []any{status}

	next := func(value any) int {
		args = append(args, value)
		return len(args)
	}

	if filter.AuthorID != "" {
		conditions = append(conditions, fmt.Sprintf("b.%s = $%d", book.AuthorID, next(filter.AuthorID)))
	}
	if filter.Format != "" {
		conditions = append(conditions, fmt.Sprintf("b.%s = $%d", book.FileFormat, next(filter.Format)))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("b.%s ILIKE $%d", book.Name, next("%"+filter.Search+"%")))
	}

	tagMatch := fmt.Sprintf(`EXISTS (
		SELECT 1 FROM %s fbt JOIN %s ft ON ft.%s = fbt.%s
		WHERE fbt.%s = b.%s AND ft.%s = $%%d)`,
		bookTag.Table, tagTable.Table, tagTable.ID, bookTag.TagID,
		bookTag.BookID, book.ID, tagTable.Name,
	)

	for _, include := range filter.IncludeTags {
		conditions = append(conditions, fmt.Sprintf(tagMatch, next(include)))
	}
	for _, exclude := range filter.ExcludeTags {
		conditions = append(conditions, "NOT "+fmt.Sprintf(tagMatch, next(exclude)))
	}

	if filter.AllowedPermissions != nil {
		conditions = append(conditions, access.GateCondition("b", next(filter.AllowedPermissions)))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s b WHERE %s`, book.Table, where)
	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Book")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := selectJoined(where) + fmt.Sprintf(`
		ORDER BY b.%s
		LIMIT $%d OFFSET $%d`,
		book.Name, next(limit), next(filter.Offset),
	)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Book")
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		found, err := scanBook(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Book")
		}
		books = append(books, found)
	}

	return books, total, dberr.Wrap(rows.Err(), "Book")
}

// CountByAuthor returns the number of active books for an author.
func (repository *PostgresRepository) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	book := schema.CatalogBook
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s = 'active'`,
		book.Table, book.AuthorID, book.Status,
	)

	var count int
	if err := repository.pool.QueryRow(ctx, query, authorID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "Book")
	}
	return count, nil
}

// isNotFound reports whether err is the storage layer's NOT_FOUND mapping.
func isNotFound(err error) bool {
	ae := apperr.As(err)
	return ae != nil && ae.HTTPStatus == http.StatusNotFound
}
