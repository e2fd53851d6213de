// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package perm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/pkg/uuid"
)

// Service implements the authorization decision API.
//
// # Caching
//
// Effective sets are cached in Redis with a short TTL. Every mutation of the
// graph invalidates the affected entries, so a permission change is visible
// on the next request; the TTL only bounds staleness if an invalidation is
// ever lost.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService constructs the authorization service.
func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// # Bootstrap

// SeedDefaults installs the permission catalog and the stock role wiring.
//
// Every step is an idempotent upsert, so running it on every startup is safe
// and converges to the same graph.
func (service *Service) SeedDefaults(ctx context.Context) error {
	for _, seed := range defaultPermissions {
		permission := Permission{
			ID:           uuid.New(),
			Name:         seed.Name,
			ResourceType: seed.ResourceType,
			Description:  seed.Description,
		}
		if err := service.repo.EnsurePermission(ctx, permission); err != nil {
			return fmt.Errorf("perm_seed_permission_failed %s: %w", seed.Name, err)
		}
	}

	for roleName, wiring := range defaultRoles {
		roleID, err := service.repo.EnsureRole(ctx, roleName, wiring.Description)
		if err != nil {
			return fmt.Errorf("perm_seed_role_failed %s: %w", roleName, err)
		}
		for _, permissionName := range wiring.Permissions {
			if err := service.repo.EnsureRolePermission(ctx, roleID, permissionName); err != nil {
				return fmt.Errorf("perm_seed_wiring_failed %s→%s: %w", roleName, permissionName, err)
			}
		}
	}

	service.logger.Info("authorization_defaults_seeded",
		slog.Int("permissions", len(defaultPermissions)),
		slog.Int("roles", len(defaultRoles)),
	)
	return nil
}

// # Decision API

// EffectivePermissions resolves (and caches) a user's full grant set.
func (service *Service) EffectivePermissions(ctx context.Context, userID string) (GrantSet, error) {
	if set, hit := service.cache.Get(ctx, userID); hit {
		return set, nil
	}

	set, err := service.repo.EffectiveGrants(ctx, userID)
	if err != nil {
		return nil, err
	}

	service.cache.Set(ctx, userID, set)
	return set, nil
}

// HasPermission reports whether the user holds the named permission, via a
// role or a direct grant. resourceID narrows resource-scoped direct grants
// and may be empty. admin.full satisfies every check.
func (service *Service) HasPermission(ctx context.Context, userID, permission, resourceID string) (bool, error) {
	set, err := service.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Allows(permission, resourceID), nil
}

// HasAnyPermission reports whether the user holds at least one of the names.
func (service *Service) HasAnyPermission(ctx context.Context, userID string, permissions ...string) (bool, error) {
	set, err := service.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, permission := range permissions {
		if set.Allows(permission, "") {
			return true, nil
		}
	}
	return false, nil
}

// HasAllPermissions reports whether the user holds every one of the names.
func (service *Service) HasAllPermissions(ctx context.Context, userID string, permissions ...string) (bool, error) {
	set, err := service.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, permission := range permissions {
		if !set.Allows(permission, "") {
			return false, nil
		}
	}
	return true, nil
}

// IsAdmin reports whether the user holds admin.full.
func (service *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return service.HasPermission(ctx, userID, PermAdminFull, "")
}

// # Role Management

// RoleNames returns the role names held by a user.
func (service *Service) RoleNames(ctx context.Context, userID string) ([]string, error) {
	return service.repo.RoleNames(ctx, userID)
}

// AssignRoleByName grants a role (looked up by unique name) to a user.
func (service *Service) AssignRoleByName(ctx context.Context, userID, roleName, grantedBy string) error {
	role, err := service.repo.FindRoleByName(ctx, roleName)
	if err != nil {
		return err
	}

	if err := service.repo.AssignRole(ctx, userID, role.ID, grantedBy); err != nil {
		return err
	}

	service.cache.InvalidateUser(ctx, userID)
	return nil
}

// RemoveRoleByName revokes a role (looked up by unique name) from a user.
func (service *Service) RemoveRoleByName(ctx context.Context, userID, roleName string) error {
	role, err := service.repo.FindRoleByName(ctx, roleName)
	if err != nil {
		return err
	}

	if err := service.repo.RemoveRole(ctx, userID, role.ID); err != nil {
		return err
	}

	service.cache.InvalidateUser(ctx, userID)
	return nil
}

// ListRoles returns all roles with hydrated permission names.
func (service *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return service.repo.ListRoles(ctx)
}

// CreateRole installs a custom role with the given permission names.
func (service *Service) CreateRole(ctx context.Context, name, description string, permissions []string) (*Role, error) {
	role := &Role{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Permissions: permissions,
	}

	if err := service.repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

// UpdateRole replaces a role's description and permission wiring.
//
// Every holder's cached effective set changes, so the whole cache is flushed.
func (service *Service) UpdateRole(ctx context.Context, role *Role) error {
	if err := service.repo.UpdateRole(ctx, role); err != nil {
		return err
	}

	service.cache.InvalidateAll(ctx)
	return nil
}

// DeleteRole removes a role that no user holds.
func (service *Service) DeleteRole(ctx context.Context, roleID string) error {
	holders, err := service.repo.RoleHolderIDs(ctx, roleID)
	if err != nil {
		return err
	}
	if len(holders) > 0 {
		return apperr.Conflict(fmt.Sprintf("Role is still held by %d user(s)", len(holders)))
	}

	return service.repo.DeleteRole(ctx, roleID)
}

// ListPermissions returns the permission catalog.
func (service *Service) ListPermissions(ctx context.Context) ([]*Permission, error) {
	return service.repo.ListPermissions(ctx)
}

// # Direct Grants

// GrantDirect adds a direct user→permission grant, optionally scoped.
func (service *Service) GrantDirect(ctx context.Context, userID, permissionName, resourceID, grantedBy string) error {
	if err := service.repo.GrantDirect(ctx, userID, permissionName, resourceID, grantedBy); err != nil {
		return err
	}

	service.cache.InvalidateUser(ctx, userID)
	return nil
}

// RevokeDirect removes a direct user→permission grant.
func (service *Service) RevokeDirect(ctx context.Context, userID, permissionName, resourceID string) error {
	if err := service.repo.RevokeDirect(ctx, userID, permissionName, resourceID); err != nil {
		return err
	}

	service.cache.InvalidateUser(ctx, userID)
	return nil
}
