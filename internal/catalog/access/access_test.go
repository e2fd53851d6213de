// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/catalog/access"
	"github.com/taibuivan/tosho/internal/users/perm"
)

// # Fakes

type fakeGates struct {
	gates map[string][]string
}

func (fake *fakeGates) GatesForBook(_ context.Context, bookID string) ([]string, error) {
	return fake.gates[bookID], nil
}

type fakePerms struct {
	sets map[string]perm.GrantSet
}

func (fake *fakePerms) EffectivePermissions(_ context.Context, userID string) (perm.GrantSet, error) {
	return fake.sets[userID], nil
}

func newFilter() (*access.Service, *fakeGates, *fakePerms) {
	gates := &fakeGates{gates: make(map[string][]string)}
	perms := &fakePerms{sets: make(map[string]perm.GrantSet)}
	return access.NewService(gates, perms), gates, perms
}

// # Per-Book Decisions

/*
TestCanAccess covers the tag-gate decision matrix, including the denial
reason format.
*/
func TestCanAccess(t *testing.T) {
	service, gates, perms := newFilter()
	ctx := context.Background()

	gates.gates["gated"] = []string{perm.PermContentNSFW}
	gates.gates["double-gated"] = []string{perm.PermContentNSFW, perm.PermContentRestricted}

	perms.sets["reader"] = perm.GrantSet{{Name: perm.PermBooksRead}}
	perms.sets["librarian"] = perm.GrantSet{
		{Name: perm.PermBooksRead},
		{Name: perm.PermContentNSFW},
		{Name: perm.PermContentRestricted},
	}
	perms.sets["root"] = perm.GrantSet{{Name: perm.PermAdminFull}}

	// Ungated books are visible to anyone.
	decision, err := service.CanAccess(ctx, "reader", "plain")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// A gate outside the user's set denies with the permission named.
	decision, err = service.CanAccess(ctx, "reader", "gated")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "requires "+perm.PermContentNSFW, decision.Reason)

	// Holding every gate admits.
	decision, err = service.CanAccess(ctx, "librarian", "double-gated")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// admin.full bypasses gates entirely.
	decision, err = service.CanAccess(ctx, "root", "double-gated")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

// # List Filtering

/*
TestAllowedPermissions pins the nil-means-unrestricted contract for admins
and the explicit (possibly empty) set for everyone else.
*/
func TestAllowedPermissions(t *testing.T) {
	service, _, perms := newFilter()
	ctx := context.Background()

	perms.sets["root"] = perm.GrantSet{{Name: perm.PermAdminFull}}
	perms.sets["reader"] = perm.GrantSet{{Name: perm.PermBooksRead}}

	allowed, err := service.AllowedPermissions(ctx, "root")
	require.NoError(t, err)
	assert.Nil(t, allowed, "admin must be unrestricted")

	allowed, err = service.AllowedPermissions(ctx, "reader")
	require.NoError(t, err)
	assert.Equal(t, []string{perm.PermBooksRead}, allowed)

	allowed, err = service.AllowedPermissions(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, allowed, "an empty set is not the same as unrestricted")
	assert.Empty(t, allowed)
}

/*
TestGateCondition sanity-checks the rendered SQL fragment's anchors.
*/
func TestGateCondition(t *testing.T) {
	fragment := access.GateCondition("b", 3)

	assert.Contains(t, fragment, "NOT EXISTS")
	assert.Contains(t, fragment, "b.id")
	assert.Contains(t, fragment, "$3")
	assert.Contains(t, fragment, "requirespermission")
}
