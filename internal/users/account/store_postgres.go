// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/tosho/internal/platform/database/schema"
	"github.com/taibuivan/tosho/internal/platform/dberr"
)

// Repository defines the data access contract for account administration.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]*Account, int, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	UpdateProfile(ctx context.Context, id, displayName string) (*Account, error)
	Deactivate(ctx context.Context, id string) error
	Dashboard(ctx context.Context) (*Dashboard, error)
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the pgx-backed account store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// accountColumns is the shared SELECT column list.
func accountColumns() string {
	t := schema.UserAccount
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Username, t.Email, t.DisplayName, t.IsActive, t.LastLoginAt, t.CreatedAt, t.UpdatedAt)
}

// List returns a page of accounts plus the total count.
func (repository *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	t := schema.UserAccount

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s IS NULL`, t.Table, t.DeletedAt)
	if err := repository.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Account")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s IS NULL
		ORDER BY %s
		LIMIT $1 OFFSET $2`,
		accountColumns(), t.Table, t.DeletedAt, t.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Account")
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		account := &Account{}
		if err := rows.Scan(&account.ID, &account.Username, &account.Email, &account.DisplayName,
			&account.IsActive, &account.LastLoginAt, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "Account")
		}
		accounts = append(accounts, account)
	}

	return accounts, total, dberr.Wrap(rows.Err(), "Account")
}

// FindByID returns a single account.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		accountColumns(), t.Table, t.ID, t.DeletedAt,
	)

	account := &Account{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.Username, &account.Email, &account.DisplayName,
		&account.IsActive, &account.LastLoginAt, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Account")
	}

	return account, nil
}

// UpdateProfile updates the mutable profile fields and returns the fresh row.
func (repository *PostgresRepository) UpdateProfile(ctx context.Context, id, displayName string) (*Account, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = now()
		WHERE %s = $1 AND %s IS NULL`,
		t.Table, t.DisplayName, t.UpdatedAt, t.ID, t.DeletedAt,
	)

	tag, err := repository.pool.Exec(ctx, query, id, displayName)
	if err != nil {
		return nil, dberr.Wrap(err, "Account")
	}
	if tag.RowsAffected() == 0 {
		return nil, dberr.ErrNotFound
	}

	return repository.FindByID(ctx, id)
}

// Deactivate soft-disables an account. The row and every progress record
// referencing it survive.
func (repository *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s SET %s = FALSE, %s = now()
		WHERE %s = $1 AND %s IS NULL`,
		t.Table, t.IsActive, t.UpdatedAt, t.ID, t.DeletedAt,
	)

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "Account")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// Dashboard gathers install-wide aggregates in one round trip.
func (repository *PostgresRepository) Dashboard(ctx context.Context) (*Dashboard, error) {
	account := schema.UserAccount
	book := schema.CatalogBook
	author := schema.CatalogAuthor
	tag := schema.CatalogTag
	progress := schema.LibraryReadingProgress

	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %s WHERE %s IS NULL),
			(SELECT COUNT(*) FROM %s WHERE %s IS NULL AND %s),
			(SELECT COUNT(*) FROM %s),
			(SELECT COUNT(*) FROM %s WHERE %s = 'active'),
			(SELECT COUNT(*) FROM %s WHERE %s = 'archived'),
			(SELECT COUNT(*) FROM %s),
			(SELECT COUNT(*) FROM %s),
			(SELECT COUNT(*) FROM %s)`,
		account.Table, account.DeletedAt,
		account.Table, account.DeletedAt, account.IsActive,
		book.Table,
		book.Table, book.Status,
		book.Table, book.Status,
		author.Table,
		tag.Table,
		progress.Table,
	)

	dashboard := &Dashboard{}
	err := repository.pool.QueryRow(ctx, query).Scan(
		&dashboard.TotalUsers, &dashboard.ActiveUsers,
		&dashboard.TotalBooks, &dashboard.ActiveBooks, &dashboard.ArchivedBooks,
		&dashboard.TotalAuthors, &dashboard.TotalTags, &dashboard.ProgressRecords,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Dashboard")
	}

	return dashboard, nil
}
