// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access is the content-access filter: the single joining layer between
user permissions (users/perm) and the book catalog.

Lower layers know nothing about each other; this package combines them into
two primitives:

  - CanAccess: a per-book allow/deny decision with a reason.
  - AllowedPermissions: the per-user permission name set that list queries
    join against, so filtering happens in one SQL pass instead of N+1 checks.

Archived books are visible only through the archive surface, and only to
holders of books.read.
*/
package access

import (
	"context"
	"fmt"

	"github.com/taibuivan/tosho/internal/platform/database/schema"
	"github.com/taibuivan/tosho/internal/users/perm"
)

// Decision is the outcome of a per-book access check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// TagGateSource supplies the permission gates attached to a book.
type TagGateSource interface {
	// GatesForBook returns the distinct non-null requires_permission values
	// of the tags on a book.
	GatesForBook(ctx context.Context, bookID string) ([]string, error)
}

// PermissionSource is the slice of the authorization service this filter needs.
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID string) (perm.GrantSet, error)
}

// Service implements the content-access filter.
type Service struct {
	gates TagGateSource
	perms PermissionSource
}

// NewService constructs the filter.
func NewService(gates TagGateSource, perms PermissionSource) *Service {
	return &Service{gates: gates, perms: perms}
}

// # Per-Book Decision

/*
CanAccess decides whether a user may see a single book.

Every tag on the book carrying a requires_permission must be covered by the
user's effective set. The denial reason names the missing permission but
reveals nothing else about the book.
*/
func (service *Service) CanAccess(ctx context.Context, userID, bookID string) (Decision, error) {
	gates, err := service.gates.GatesForBook(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}
	if len(gates) == 0 {
		return Decision{Allowed: true}, nil
	}

	set, err := service.perms.EffectivePermissions(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	for _, gate := range gates {
		if !set.Allows(gate, "") {
			return Decision{Allowed: false, Reason: "requires " + gate}, nil
		}
	}

	return Decision{Allowed: true}, nil
}

// # List Filtering

/*
AllowedPermissions resolves the permission name set list queries filter with.

A nil return means "unrestricted" (the user holds admin.full); stores skip
the gate condition entirely in that case. Otherwise the slice holds the
user's global permission names — possibly empty, which hides every gated book.
*/
func (service *Service) AllowedPermissions(ctx context.Context, userID string) ([]string, error) {
	set, err := service.perms.EffectivePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	if set.Allows(perm.PermAdminFull, "") {
		return nil, nil
	}

	names := set.Names()
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// GateCondition renders the SQL fragment that excludes books carrying a tag
// gate outside the allowed set. bookAlias is the book table's alias in the
// outer query; argIndex is the placeholder position of the text[] parameter.
//
// Callers must skip the condition when the allowed set is nil (unrestricted).
func GateCondition(bookAlias string, argIndex int) string {
	bookTag := schema.CatalogBookTag
	tag := schema.CatalogTag

	return fmt.Sprintf(`NOT EXISTS (
		SELECT 1 FROM %s gbt
		JOIN %s gt ON gt.%s = gbt.%s
		WHERE gbt.%s = %s.%s
		  AND gt.%s IS NOT NULL
		  AND NOT (gt.%s = ANY($%d)))`,
		bookTag.Table,
		tag.Table, tag.ID, bookTag.TagID,
		bookTag.BookID, bookAlias, schema.CatalogBook.ID,
		tag.RequiresPermission,
		tag.RequiresPermission, argIndex,
	)
}
