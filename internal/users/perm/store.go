// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package perm

import "context"

// # Graph Data Access

// Repository defines the storage contract for the role/permission graph.
type Repository interface {

	// EnsurePermission inserts a permission if it is not already cataloged.
	EnsurePermission(ctx context.Context, seed Permission) error

	// EnsureRole inserts a role if absent and returns its ID either way.
	EnsureRole(ctx context.Context, name, description string) (string, error)

	// EnsureRolePermission links a role to a permission idempotently.
	EnsureRolePermission(ctx context.Context, roleID, permissionName string) error

	// EffectiveGrants resolves the union of role-derived permissions and
	// direct grants for a user, in one query.
	EffectiveGrants(ctx context.Context, userID string) (GrantSet, error)

	// RoleNames returns the role names held by a user.
	RoleNames(ctx context.Context, userID string) ([]string, error)

	// RoleHolderIDs returns the IDs of users holding the role.
	RoleHolderIDs(ctx context.Context, roleID string) ([]string, error)

	// AssignRole grants a role to a user idempotently.
	AssignRole(ctx context.Context, userID, roleID, grantedBy string) error

	// RemoveRole revokes a role from a user.
	RemoveRole(ctx context.Context, userID, roleID string) error

	// GrantDirect adds a direct user permission, optionally resource-scoped.
	GrantDirect(ctx context.Context, userID, permissionName, resourceID, grantedBy string) error

	// RevokeDirect removes a direct user permission grant.
	RevokeDirect(ctx context.Context, userID, permissionName, resourceID string) error

	// ListRoles returns all roles with their permission names hydrated.
	ListRoles(ctx context.Context) ([]*Role, error)

	// FindRoleByName returns a role by unique name.
	FindRoleByName(ctx context.Context, name string) (*Role, error)

	// CreateRole inserts a new custom role.
	CreateRole(ctx context.Context, role *Role) error

	// UpdateRole updates a role's description and replaces its permissions.
	UpdateRole(ctx context.Context, role *Role) error

	// DeleteRole removes a role together with its join rows. It does not check
	// whether any user holds the role; Service.DeleteRole does.
	DeleteRole(ctx context.Context, roleID string) error

	// ListPermissions returns the full permission catalog.
	ListPermissions(ctx context.Context) ([]*Permission, error)
}

// # Effective-Set Cache

// Cache stores resolved effective-permission sets between requests.
//
// Implementations must tolerate misses silently; the cache is an
// optimization, never the source of truth.
type Cache interface {

	// Get returns the cached set for a user, or (nil, false) on miss.
	Get(ctx context.Context, userID string) (GrantSet, bool)

	// Set stores the set for a user with the standard TTL.
	Set(ctx context.Context, userID string, set GrantSet)

	// InvalidateUser drops one user's cached set.
	InvalidateUser(ctx context.Context, userID string)

	// InvalidateAll drops every cached set (role-level writes).
	InvalidateAll(ctx context.Context)
}
