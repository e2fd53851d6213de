// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the core identity and access management system.

It handles user registration, secure password verification, and session token
issuance.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Me).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions).
  - Security: Argon2id verifiers and HS256-signed session tokens.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/platform/sec"
	"github.com/taibuivan/tosho/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating session tokens.
type TokenProvider interface {
	// GenerateSessionToken creates a signed token string for the given user.
	GenerateSessionToken(userID, email, displayName string, timeToLive time.Duration) (string, error)
}

// RoleAssigner is the slice of the authorization service the auth flow needs:
// assigning the bootstrap admin role and reading a user's role names.
//
// Defined here to keep the users/auth → users/perm dependency one-way and thin.
type RoleAssigner interface {
	AssignRoleByName(ctx context.Context, userID, roleName, grantedBy string) error
	RoleNames(ctx context.Context, userID string) ([]string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed carefully.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	roles             RoleAssigner
	sessionTTL        time.Duration
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	tokenProv TokenProvider,
	roles RoleAssigner,
	sessionTTL time.Duration,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		roles:             roles,
		sessionTTL:        sessionTTL,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

// AdminRoleName is the role granted to the first registered account.
const AdminRoleName = "admin"

/*
Register validates, hashes, and persists a brand new user account.

The first account ever registered receives the admin role so a fresh
install is immediately administrable.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(ctx, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, sec.ErrEmptyPassword) {
			return nil, apperr.ValidationError("Password must not be empty",
				apperr.FieldError{Field: FieldPassword, Message: "This field is required"})
		}
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Snapshot the account count before the insert; zero means this
	// registration bootstraps the install.
	existing, err := service.userRepository.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth_service_count_failed: %w", err)
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Username
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
		IsActive:     true,
	}

	// Persist the user to the database. The storage layer's unique indexes
	// are the real uniqueness guard against concurrent registrations.
	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Bootstrap: grant admin to the very first account.
	if existing == 0 {
		if err := service.roles.AssignRoleByName(ctx, user.ID, AdminRoleName, user.ID); err != nil {
			return nil, fmt.Errorf("auth_service_bootstrap_admin_failed: %w", err)
		}
	}

	user.Roles, _ = service.roles.RoleNames(ctx, user.ID)

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

/*
Login validates user credentials and issues a session token.

Verification is constant-time; every failure collapses to the same
"Invalid login credentials" message to prevent account enumeration.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session token
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {

	user, err := service.userRepository.FindByEmail(ctx, input.Email)

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Deactivated accounts fail identically to wrong passwords.
	if !user.IsActive {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Issue the signed session token
	token, err := service.tokenProvider.GenerateSessionToken(user.ID, user.Email, user.DisplayName, service.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Record the issuance for auditing
	now := time.Now()
	expiresAt := now.Add(service.sessionTTL)
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}

	if err := service.sessionRepository.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_record_failed: %w", err)
	}

	_ = service.userRepository.TouchLastLogin(ctx, user.ID)

	user.Roles, _ = service.roles.RoleNames(ctx, user.ID)

	return &LoginSession{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

/*
Logout is a client-side token discard.

The server keeps no revocation list; issued tokens stay valid until their
expiry. The call exists so clients have a uniform endpoint to hit.
*/
func (service *Service) Logout(ctx context.Context) error {
	return nil
}

// # Identity

/*
Me returns the caller's own account, hydrated with role names.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - err: NotFound or storage errors
*/
func (service *Service) Me(ctx context.Context, userID string) (*User, error) {
	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Roles, err = service.roles.RoleNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_me_roles_failed: %w", err)
	}

	return user, nil
}
