// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	// FindByID returns the account with the given ID.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create persists a brand-new user account.
	Create(ctx context.Context, user *User) error

	// Count returns the number of registered accounts, active or not.
	// The first-registered-user admin grant hangs off this.
	Count(ctx context.Context) (int, error)

	// TouchLastLogin stamps the account's last successful sign-in.
	TouchLastLogin(ctx context.Context, userID string) error
}

// # Session Data Access

// SessionRepository records issued tokens for auditing.
type SessionRepository interface {

	// Create persists the audit record for a freshly issued token.
	Create(ctx context.Context, session *Session) error

	// DeleteExpired physically removes records whose ExpiresAt is in the past.
	DeleteExpired(ctx context.Context) error
}
