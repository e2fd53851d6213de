// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package perm

// # Seed Catalog

// permissionSeed describes one catalog entry created at startup.
type permissionSeed struct {
	Name         string
	ResourceType string
	Description  string
}

// defaultPermissions is the canonical permission catalog.
var defaultPermissions = []permissionSeed{
	{PermAdminFull, "system", "Unrestricted access to every surface"},

	{PermBooksRead, "book", "Browse and stream books"},
	{PermBooksWrite, "book", "Edit book metadata and tags"},
	{PermBooksManage, "book", "Archive, restore, and trigger scans"},

	{PermGenresRead, "genre", "Browse genres and rollups"},
	{PermGenresWrite, "genre", "Edit genre tags"},
	{PermGenresManage, "genre", "Manage the genre taxonomy"},

	{PermUsersRead, "user", "List and inspect accounts"},
	{PermUsersWrite, "user", "Edit accounts"},
	{PermUsersManage, "user", "Deactivate accounts and manage roles"},

	{PermContentNSFW, "content", "View books gated as NSFW/Adult"},
	{PermContentRestricted, "content", "View books gated as Restricted"},
}

// defaultRoles wires the stock roles to their permissions.
//
// admin carries only admin.full; the decision layer treats it as a superset
// of every other permission.
var defaultRoles = map[string]struct {
	Description string
	Permissions []string
}{
	RoleAdmin: {
		Description: "Full administrative access",
		Permissions: []string{PermAdminFull},
	},
	RoleLibrarian: {
		Description: "Curates the catalog and sees gated content",
		Permissions: []string{
			PermBooksRead, PermBooksWrite, PermBooksManage,
			PermGenresRead, PermGenresWrite, PermGenresManage,
			PermUsersRead,
			PermContentNSFW, PermContentRestricted,
		},
	},
	RoleUser: {
		Description: "Standard reader",
		Permissions: []string{PermBooksRead, PermGenresRead},
	},
	RoleGuest: {
		Description: "Anonymous-grade reader, further restricted by tag gates",
		Permissions: []string{PermBooksRead},
	},
}
