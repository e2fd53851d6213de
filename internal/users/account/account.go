// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package account implements the administrative user-management surface:
// listing accounts, editing profiles, deactivation, and the operator dashboard.
//
// Accounts are soft-deactivated, never hard-deleted, so reading history and
// progress rows stay intact.
package account

import "time"

// Account is the admin-facing view of a user row.
type Account struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Roles []string `json:"roles,omitempty"`
}

// Dashboard aggregates operator-facing counts across the whole install.
type Dashboard struct {
	TotalUsers      int `json:"total_users"`
	ActiveUsers     int `json:"active_users"`
	TotalBooks      int `json:"total_books"`
	ActiveBooks     int `json:"active_books"`
	ArchivedBooks   int `json:"archived_books"`
	TotalAuthors    int `json:"total_authors"`
	TotalTags       int `json:"total_tags"`
	ProgressRecords int `json:"progress_records"`
}
