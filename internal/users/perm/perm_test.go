// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package perm_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/users/perm"
)

// # GrantSet Semantics

/*
TestGrantSet_Allows pins the decision semantics: global grants, resource
scoping, and the admin.full superset.
*/
func TestGrantSet_Allows(t *testing.T) {
	tests := []struct {
		name       string
		set        perm.GrantSet
		permission string
		resourceID string
		want       bool
	}{
		{
			"global_grant_matches",
			perm.GrantSet{{Name: perm.PermBooksRead}},
			perm.PermBooksRead, "", true,
		},
		{
			"missing_grant_denied",
			perm.GrantSet{{Name: perm.PermBooksRead}},
			perm.PermContentNSFW, "", false,
		},
		{
			"admin_full_satisfies_everything",
			perm.GrantSet{{Name: perm.PermAdminFull}},
			perm.PermContentRestricted, "", true,
		},
		{
			"scoped_grant_matches_its_resource",
			perm.GrantSet{{Name: perm.PermBooksWrite, ResourceID: "book-7"}},
			perm.PermBooksWrite, "book-7", true,
		},
		{
			"scoped_grant_misses_other_resource",
			perm.GrantSet{{Name: perm.PermBooksWrite, ResourceID: "book-7"}},
			perm.PermBooksWrite, "book-9", false,
		},
		{
			"scoped_grant_never_global",
			perm.GrantSet{{Name: perm.PermBooksWrite, ResourceID: "book-7"}},
			perm.PermBooksWrite, "", false,
		},
		{
			"global_grant_covers_any_resource",
			perm.GrantSet{{Name: perm.PermBooksWrite}},
			perm.PermBooksWrite, "book-9", true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Allows(tt.permission, tt.resourceID))
		})
	}
}

/*
TestGrantSet_Names checks global-name projection with dedup.
*/
func TestGrantSet_Names(t *testing.T) {
	set := perm.GrantSet{
		{Name: perm.PermBooksRead},
		{Name: perm.PermBooksRead},
		{Name: perm.PermBooksWrite, ResourceID: "book-1"},
		{Name: perm.PermGenresRead},
	}

	assert.ElementsMatch(t, []string{perm.PermBooksRead, perm.PermGenresRead}, set.Names())
}

// # Service Decisions

// fakeGraph is an in-memory Repository for decision tests. Only the methods
// the decision path touches are meaningfully implemented.
type fakeGraph struct {
	perm.Repository

	grants     map[string]perm.GrantSet
	roles      map[string][]string
	roleByName map[string]*perm.Role
	assigned   []string
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		grants:     make(map[string]perm.GrantSet),
		roles:      make(map[string][]string),
		roleByName: make(map[string]*perm.Role),
	}
}

func (graph *fakeGraph) EffectiveGrants(_ context.Context, userID string) (perm.GrantSet, error) {
	return graph.grants[userID], nil
}

func (graph *fakeGraph) RoleNames(_ context.Context, userID string) ([]string, error) {
	return graph.roles[userID], nil
}

func (graph *fakeGraph) FindRoleByName(_ context.Context, name string) (*perm.Role, error) {
	role, found := graph.roleByName[name]
	if !found {
		return nil, apperr.NotFound("Role")
	}
	return role, nil
}

func (graph *fakeGraph) AssignRole(_ context.Context, userID, roleID, _ string) (err error) {
	graph.assigned = append(graph.assigned, userID+":"+roleID)
	return nil
}

// fakeCache records invalidations.
type fakeCache struct {
	entries          map[string]perm.GrantSet
	userInvalidation int
	fullInvalidation int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]perm.GrantSet)}
}

func (cache *fakeCache) Get(_ context.Context, userID string) (perm.GrantSet, bool) {
	set, found := cache.entries[userID]
	return set, found
}

func (cache *fakeCache) Set(_ context.Context, userID string, set perm.GrantSet) {
	cache.entries[userID] = set
}

func (cache *fakeCache) InvalidateUser(_ context.Context, userID string) {
	delete(cache.entries, userID)
	cache.userInvalidation++
}

func (cache *fakeCache) InvalidateAll(_ context.Context) {
	cache.entries = make(map[string]perm.GrantSet)
	cache.fullInvalidation++
}

/*
TestService_Decisions exercises HasPermission / HasAny / HasAll / IsAdmin on
a fixed graph.
*/
func TestService_Decisions(t *testing.T) {
	graph := newFakeGraph()
	graph.grants["reader"] = perm.GrantSet{
		{Name: perm.PermBooksRead},
		{Name: perm.PermGenresRead},
	}
	graph.grants["root"] = perm.GrantSet{{Name: perm.PermAdminFull}}

	service := perm.NewService(graph, newFakeCache(), slog.Default())
	ctx := context.Background()

	ok, err := service.HasPermission(ctx, "reader", perm.PermBooksRead, "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.HasPermission(ctx, "reader", perm.PermContentNSFW, "")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = service.HasAnyPermission(ctx, "reader", perm.PermContentNSFW, perm.PermBooksRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.HasAllPermissions(ctx, "reader", perm.PermBooksRead, perm.PermGenresRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.HasAllPermissions(ctx, "reader", perm.PermBooksRead, perm.PermContentNSFW)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = service.IsAdmin(ctx, "root")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.IsAdmin(ctx, "reader")
	require.NoError(t, err)
	assert.False(t, ok)
}

/*
TestService_CacheInvalidation checks that role assignment drops the
assignee's cached set so the change is visible on the next request.
*/
func TestService_CacheInvalidation(t *testing.T) {
	graph := newFakeGraph()
	graph.roleByName["librarian"] = &perm.Role{ID: "role-1", Name: "librarian"}

	cache := newFakeCache()
	service := perm.NewService(graph, cache, slog.Default())
	ctx := context.Background()

	// Warm the cache with the stale pre-assignment set.
	_, err := service.EffectivePermissions(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, service.AssignRoleByName(ctx, "u1", "librarian", "admin-1"))

	assert.Equal(t, 1, cache.userInvalidation)
	assert.NotContains(t, cache.entries, "u1")
	assert.Contains(t, graph.assigned, "u1:role-1")
}

/*
TestService_CacheServesRepeatReads checks the per-request caching path.
*/
func TestService_CacheServesRepeatReads(t *testing.T) {
	graph := newFakeGraph()
	graph.grants["u1"] = perm.GrantSet{{Name: perm.PermBooksRead}}

	cache := newFakeCache()
	service := perm.NewService(graph, cache, slog.Default())
	ctx := context.Background()

	first, err := service.EffectivePermissions(ctx, "u1")
	require.NoError(t, err)

	// Mutate the backing graph without invalidation: the cache still answers.
	graph.grants["u1"] = nil

	second, err := service.EffectivePermissions(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
