// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package perm

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/tosho/internal/platform/database/schema"
	"github.com/taibuivan/tosho/internal/platform/dberr"
	"github.com/taibuivan/tosho/pkg/uuid"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the pgx-backed graph store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Idempotent Seeding

// EnsurePermission inserts a permission if absent; the unique name constraint
// is the coordination point.
func (repository *PostgresRepository) EnsurePermission(ctx context.Context, seed Permission) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s) DO NOTHING`,
		schema.UserPermission.Table,
		schema.UserPermission.ID, schema.UserPermission.Name,
		schema.UserPermission.ResourceType, schema.UserPermission.Description,
		schema.UserPermission.Name,
	)

	_, err := repository.pool.Exec(ctx, query, seed.ID, seed.Name, seed.ResourceType, seed.Description)
	return dberr.Wrap(err, "Permission")
}

// EnsureRole inserts a role if absent and returns its ID either way.
func (repository *PostgresRepository) EnsureRole(ctx context.Context, name, description string) (string, error) {
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s) DO NOTHING`,
		schema.UserRole.Table,
		schema.UserRole.ID, schema.UserRole.Name, schema.UserRole.Description,
		schema.UserRole.Name,
	)

	if _, err := repository.pool.Exec(ctx, insert, uuid.New(), name, description); err != nil {
		return "", dberr.Wrap(err, "Role")
	}

	lookup := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.UserRole.ID, schema.UserRole.Table, schema.UserRole.Name,
	)

	var roleID string
	if err := repository.pool.QueryRow(ctx, lookup, name).Scan(&roleID); err != nil {
		return "", dberr.Wrap(err, "Role")
	}

	return roleID, nil
}

// EnsureRolePermission links a role to a permission idempotently.
func (repository *PostgresRepository) EnsureRolePermission(ctx context.Context, roleID, permissionName string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, p.%s FROM %s p WHERE p.%s = $2
		ON CONFLICT DO NOTHING`,
		schema.RolePermission.Table,
		schema.RolePermission.RoleID, schema.RolePermission.PermissionID,
		schema.UserPermission.ID, schema.UserPermission.Table, schema.UserPermission.Name,
	)

	_, err := repository.pool.Exec(ctx, query, roleID, permissionName)
	return dberr.Wrap(err, "Role permission")
}

// # Effective Resolution

/*
EffectiveGrants resolves a user's full grant set in one round trip.

The union has two arms:
  - role path: accountrole → rolepermission → permission (always global)
  - direct path: accountpermission → permission (carries resourceid)
*/
func (repository *PostgresRepository) EffectiveGrants(ctx context.Context, userID string) (GrantSet, error) {
	query := fmt.Sprintf(`
		SELECT p.%s, '' AS resourceid
		FROM %s ur
		JOIN %s rp ON rp.%s = ur.%s
		JOIN %s p ON p.%s = rp.%s
		WHERE ur.%s = $1
		UNION
		SELECT p.%s, up.%s
		FROM %s up
		JOIN %s p ON p.%s = up.%s
		WHERE up.%s = $1`,
		schema.UserPermission.Name,
		schema.AccountRole.Table,
		schema.RolePermission.Table, schema.RolePermission.RoleID, schema.AccountRole.RoleID,
		schema.UserPermission.Table, schema.UserPermission.ID, schema.RolePermission.PermissionID,
		schema.AccountRole.UserID,
		schema.UserPermission.Name, schema.AccountPermission.ResourceID,
		schema.AccountPermission.Table,
		schema.UserPermission.Table, schema.UserPermission.ID, schema.AccountPermission.PermissionID,
		schema.AccountPermission.UserID,
	)

	rows, err := repository.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Permission")
	}
	defer rows.Close()

	var set GrantSet
	for rows.Next() {
		var grant Grant
		if err := rows.Scan(&grant.Name, &grant.ResourceID); err != nil {
			return nil, dberr.Wrap(err, "Permission")
		}
		set = append(set, grant)
	}

	return set, dberr.Wrap(rows.Err(), "Permission")
}

// RoleNames returns the role names held by a user, sorted for stable output.
func (repository *PostgresRepository) RoleNames(ctx context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT r.%s
		FROM %s ur
		JOIN %s r ON r.%s = ur.%s
		WHERE ur.%s = $1
		ORDER BY r.%s`,
		schema.UserRole.Name,
		schema.AccountRole.Table,
		schema.UserRole.Table, schema.UserRole.ID, schema.AccountRole.RoleID,
		schema.AccountRole.UserID,
		schema.UserRole.Name,
	)

	rows, err := repository.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, dberr.Wrap(err, "Role")
		}
		names = append(names, name)
	}

	return names, dberr.Wrap(rows.Err(), "Role")
}

// RoleHolderIDs returns the user IDs currently holding the role.
func (repository *PostgresRepository) RoleHolderIDs(ctx context.Context, roleID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.AccountRole.UserID, schema.AccountRole.Table, schema.AccountRole.RoleID,
	)

	rows, err := repository.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "Role")
		}
		ids = append(ids, id)
	}

	return ids, dberr.Wrap(rows.Err(), "Role")
}

// # Assignment

// AssignRole grants a role to a user. Repeated grants are no-ops.
func (repository *PostgresRepository) AssignRole(ctx context.Context, userID, roleID, grantedBy string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT DO NOTHING`,
		schema.AccountRole.Table,
		schema.AccountRole.UserID, schema.AccountRole.RoleID, schema.AccountRole.GrantedBy,
	)

	_, err := repository.pool.Exec(ctx, query, userID, roleID, grantedBy)
	return dberr.Wrap(err, "Role assignment")
}

// RemoveRole revokes a role from a user.
func (repository *PostgresRepository) RemoveRole(ctx context.Context, userID, roleID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.AccountRole.Table, schema.AccountRole.UserID, schema.AccountRole.RoleID,
	)

	_, err := repository.pool.Exec(ctx, query, userID, roleID)
	return dberr.Wrap(err, "Role assignment")
}

// GrantDirect adds a direct user permission, optionally resource-scoped.
func (repository *PostgresRepository) GrantDirect(ctx context.Context, userID, permissionName, resourceID, grantedBy string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		SELECT $1, p.%s, $3, NULLIF($4, '') FROM %s p WHERE p.%s = $2
		ON CONFLICT DO NOTHING`,
		schema.AccountPermission.Table,
		schema.AccountPermission.UserID, schema.AccountPermission.PermissionID,
		schema.AccountPermission.ResourceID, schema.AccountPermission.GrantedBy,
		schema.UserPermission.ID, schema.UserPermission.Table, schema.UserPermission.Name,
	)

	tag, err := repository.pool.Exec(ctx, query, userID, permissionName, resourceID, grantedBy)
	if err != nil {
		return dberr.Wrap(err, "Permission grant")
	}
	// Zero rows means the permission name itself is unknown; surface that
	// instead of silently granting nothing. Conflicts also report zero rows,
	// but a duplicate grant and a no-op converge to the same state anyway.
	if tag.RowsAffected() == 0 {
		exists, err := repository.permissionExists(ctx, permissionName)
		if err != nil {
			return err
		}
		if !exists {
			return dberr.ErrNotFound
		}
	}
	return nil
}

// RevokeDirect removes a direct user permission grant.
func (repository *PostgresRepository) RevokeDirect(ctx context.Context, userID, permissionName, resourceID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s up
		USING %s p
		WHERE up.%s = p.%s AND up.%s = $1 AND p.%s = $2 AND up.%s = $3`,
		schema.AccountPermission.Table,
		schema.UserPermission.Table,
		schema.AccountPermission.PermissionID, schema.UserPermission.ID,
		schema.AccountPermission.UserID, schema.UserPermission.Name,
		schema.AccountPermission.ResourceID,
	)

	_, err := repository.pool.Exec(ctx, query, userID, permissionName, resourceID)
	return dberr.Wrap(err, "Permission grant")
}

// permissionExists reports whether a permission name is cataloged.
func (repository *PostgresRepository) permissionExists(ctx context.Context, name string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.UserPermission.Table, schema.UserPermission.Name,
	)

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Permission")
	}
	return exists, nil
}

// # Role CRUD

// ListRoles returns all roles with their permission names hydrated.
func (repository *PostgresRepository) ListRoles(ctx context.Context) ([]*Role, error) {
	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, r.%s,
		       COALESCE(array_agg(p.%s ORDER BY p.%s) FILTER (WHERE p.%s IS NOT NULL), '{}')
		FROM %s r
		LEFT JOIN %s rp ON rp.%s = r.%s
		LEFT JOIN %s p ON p.%s = rp.%s
		GROUP BY r.%s
		ORDER BY r.%s`,
		schema.UserRole.ID, schema.UserRole.Name, schema.UserRole.Description, schema.UserRole.CreatedAt,
		schema.UserPermission.Name, schema.UserPermission.Name, schema.UserPermission.Name,
		schema.UserRole.Table,
		schema.RolePermission.Table, schema.RolePermission.RoleID, schema.UserRole.ID,
		schema.UserPermission.Table, schema.UserPermission.ID, schema.RolePermission.PermissionID,
		schema.UserRole.ID,
		schema.UserRole.Name,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		role := &Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.Permissions); err != nil {
			return nil, dberr.Wrap(err, "Role")
		}
		roles = append(roles, role)
	}

	return roles, dberr.Wrap(rows.Err(), "Role")
}

// FindRoleByName returns a role by unique name.
func (repository *PostgresRepository) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.UserRole.ID, schema.UserRole.Name, schema.UserRole.Description, schema.UserRole.CreatedAt,
		schema.UserRole.Table, schema.UserRole.Name,
	)

	role := &Role{}
	err := repository.pool.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}

	return role, nil
}

// CreateRole inserts a custom role and wires its permissions in one
// transaction.
func (repository *PostgresRepository) CreateRole(ctx context.Context, role *Role) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
			schema.UserRole.Table,
			schema.UserRole.ID, schema.UserRole.Name, schema.UserRole.Description,
		)
		if _, err := tx.Exec(ctx, insert, role.ID, role.Name, role.Description); err != nil {
			return dberr.Wrap(err, "Role")
		}

		return repository.replacePermissionsTx(ctx, tx, role.ID, role.Permissions)
	})
}

// UpdateRole updates a role's description and replaces its permission wiring.
func (repository *PostgresRepository) UpdateRole(ctx context.Context, role *Role) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		update := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
			schema.UserRole.Table, schema.UserRole.Description, schema.UserRole.ID,
		)
		tag, err := tx.Exec(ctx, update, role.ID, role.Description)
		if err != nil {
			return dberr.Wrap(err, "Role")
		}
		if tag.RowsAffected() == 0 {
			return dberr.ErrNotFound
		}

		clear := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
			schema.RolePermission.Table, schema.RolePermission.RoleID,
		)
		if _, err := tx.Exec(ctx, clear, role.ID); err != nil {
			return dberr.Wrap(err, "Role permission")
		}

		return repository.replacePermissionsTx(ctx, tx, role.ID, role.Permissions)
	})
}

// DeleteRole removes a role row. Join rows cascade.
func (repository *PostgresRepository) DeleteRole(ctx context.Context, roleID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.UserRole.Table, schema.UserRole.ID,
	)

	tag, err := repository.pool.Exec(ctx, query, roleID)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// ListPermissions returns the permission catalog ordered by name.
func (repository *PostgresRepository) ListPermissions(ctx context.Context) ([]*Permission, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s ORDER BY %s`,
		schema.UserPermission.ID, schema.UserPermission.Name, schema.UserPermission.ResourceType,
		schema.UserPermission.Description, schema.UserPermission.CreatedAt,
		schema.UserPermission.Table, schema.UserPermission.Name,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Permission")
	}
	defer rows.Close()

	var permissions []*Permission
	for rows.Next() {
		permission := &Permission{}
		if err := rows.Scan(&permission.ID, &permission.Name, &permission.ResourceType,
			&permission.Description, &permission.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "Permission")
		}
		permissions = append(permissions, permission)
	}

	return permissions, dberr.Wrap(rows.Err(), "Permission")
}

// # Transaction Helpers

// inTx runs fn inside a short transaction.
func (repository *PostgresRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "Transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	return dberr.Wrap(tx.Commit(ctx), "Transaction")
}

// replacePermissionsTx wires a role to the named permissions inside tx.
func (repository *PostgresRepository) replacePermissionsTx(ctx context.Context, tx pgx.Tx, roleID string, permissions []string) error {
	if len(permissions) == 0 {
		return nil
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, p.%s FROM %s p WHERE p.%s = ANY($2)
		ON CONFLICT DO NOTHING`,
		schema.RolePermission.Table,
		schema.RolePermission.RoleID, schema.RolePermission.PermissionID,
		schema.UserPermission.ID, schema.UserPermission.Table, schema.UserPermission.Name,
	)

	_, err := tx.Exec(ctx, insert, roleID, permissions)
	return dberr.Wrap(err, "Role permission")
}
