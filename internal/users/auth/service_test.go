// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/platform/apperr"
	"github.com/taibuivan/tosho/internal/users/auth"
)

// # Fakes

type fakeUsers struct {
	byID map[string]*auth.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]*auth.User)}
}

func (repo *fakeUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, found := repo.byID[id]; found {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range repo.byID {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeUsers) Create(_ context.Context, user *auth.User) error {
	clone := *user
	repo.byID[user.ID] = &clone
	return nil
}

func (repo *fakeUsers) Count(_ context.Context) (int, error) {
	return len(repo.byID), nil
}

func (repo *fakeUsers) TouchLastLogin(_ context.Context, _ string) error { return nil }

type fakeSessions struct {
	created []*auth.Session
}

func (repo *fakeSessions) Create(_ context.Context, session *auth.Session) error {
	repo.created = append(repo.created, session)
	return nil
}

func (repo *fakeSessions) DeleteExpired(_ context.Context) error { return nil }

type fakeTokens struct{}

func (fakeTokens) GenerateSessionToken(userID, _, _ string, _ time.Duration) (string, error) {
	return "token-for-" + userID, nil
}

type fakeRoles struct {
	assigned map[string][]string
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{assigned: make(map[string][]string)}
}

func (roles *fakeRoles) AssignRoleByName(_ context.Context, userID, roleName, _ string) error {
	roles.assigned[userID] = append(roles.assigned[userID], roleName)
	return nil
}

func (roles *fakeRoles) RoleNames(_ context.Context, userID string) ([]string, error) {
	return roles.assigned[userID], nil
}

func newService() (*auth.Service, *fakeUsers, *fakeSessions, *fakeRoles) {
	users := newFakeUsers()
	sessions := &fakeSessions{}
	roles := newFakeRoles()
	service := auth.NewService(users, sessions, fakeTokens{}, roles, 24*time.Hour)
	return service, users, sessions, roles
}

// # Registration

/*
TestRegister_FirstUserGetsAdmin covers the bootstrap rule: the very first
account receives the admin role; later ones do not.
*/
func TestRegister_FirstUserGetsAdmin(t *testing.T) {
	service, _, _, roles := newService()
	ctx := context.Background()

	first, err := service.Register(ctx, auth.RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "pw!", DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, roles.assigned[first.ID])
	assert.Equal(t, []string{"admin"}, first.Roles)

	second, err := service.Register(ctx, auth.RegisterInput{
		Username: "bob", Email: "bob@x.com", Password: "pw!",
	})
	require.NoError(t, err)
	assert.Empty(t, roles.assigned[second.ID])
}

/*
TestRegister_DuplicateIdentity covers the Conflict paths for email and
username.
*/
func TestRegister_DuplicateIdentity(t *testing.T) {
	service, _, _, _ := newService()
	ctx := context.Background()

	_, err := service.Register(ctx, auth.RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "pw!",
	})
	require.NoError(t, err)

	_, err = service.Register(ctx, auth.RegisterInput{
		Username: "alice2", Email: "alice@x.com", Password: "pw!",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	_, err = service.Register(ctx, auth.RegisterInput{
		Username: "alice", Email: "other@x.com", Password: "pw!",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

/*
TestRegister_EmptyPassword pins the validation rejection.
*/
func TestRegister_EmptyPassword(t *testing.T) {
	service, _, _, _ := newService()

	_, err := service.Register(context.Background(), auth.RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestRegister_DisplayNameDefaults checks the username fallback.
*/
func TestRegister_DisplayNameDefaults(t *testing.T) {
	service, _, _, _ := newService()

	user, err := service.Register(context.Background(), auth.RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "pw!",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.DisplayName)
}

// # Sign-In

/*
TestLogin covers the full S1-style flow plus the uniform failure message:
wrong password, unknown email, and deactivated accounts are
indistinguishable to the caller.
*/
func TestLogin(t *testing.T) {
	service, users, sessions, _ := newService()
	ctx := context.Background()

	registered, err := service.Register(ctx, auth.RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "pw!", DisplayName: "Alice",
	})
	require.NoError(t, err)

	// Success issues a token and records the session audit row.
	session, err := service.Login(ctx, auth.LoginInput{Email: "alice@x.com", Password: "pw!"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-"+registered.ID, session.Token)
	assert.Len(t, sessions.created, 1)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	// Every failure collapses to one message.
	_, wrongPassword := service.Login(ctx, auth.LoginInput{Email: "alice@x.com", Password: "nope"})
	_, unknownEmail := service.Login(ctx, auth.LoginInput{Email: "ghost@x.com", Password: "pw!"})

	users.byID[registered.ID].IsActive = false
	_, deactivated := service.Login(ctx, auth.LoginInput{Email: "alice@x.com", Password: "pw!"})

	for _, loginErr := range []error{wrongPassword, unknownEmail, deactivated} {
		require.Error(t, loginErr)
		assert.Equal(t, "Invalid login credentials", apperr.As(loginErr).Message)
	}
}

/*
TestMe returns the profile with roles hydrated.
*/
func TestMe(t *testing.T) {
	service, _, _, _ := newService()
	ctx := context.Background()

	registered, err := service.Register(ctx, auth.RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "pw!", DisplayName: "Alice",
	})
	require.NoError(t, err)

	me, err := service.Me(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", me.Email)
	assert.Equal(t, "Alice", me.DisplayName)
	assert.Equal(t, []string{"admin"}, me.Roles)
}
