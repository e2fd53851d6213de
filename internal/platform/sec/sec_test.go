// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/platform/sec"
)

// # Password Verifiers

/*
TestHashPassword_RoundTrip checks that a verifier accepts its own password
and rejects others.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	verifier, err := sec.HashPassword("pw!")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(verifier, "$argon2id$"))
	assert.True(t, sec.CheckPasswordHash("pw!", verifier))
	assert.False(t, sec.CheckPasswordHash("wrong", verifier))
}

/*
TestHashPassword_EmptyRejected pins the empty-credential guard.
*/
func TestHashPassword_EmptyRejected(t *testing.T) {
	_, err := sec.HashPassword("")
	assert.ErrorIs(t, err, sec.ErrEmptyPassword)
}

/*
TestHashPassword_LongPassword checks a long credential verifies and that
hashing it twice yields different verifiers (fresh salt) that both verify.
*/
func TestHashPassword_LongPassword(t *testing.T) {
	long := strings.Repeat("correct-horse-", 50)

	verifier, err := sec.HashPassword(long)
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash(long, verifier))

	// Same password, fresh salt: verifiers differ but both verify.
	second, err := sec.HashPassword(long)
	require.NoError(t, err)
	assert.NotEqual(t, verifier, second)
	assert.True(t, sec.CheckPasswordHash(long, second))
}

/*
TestCheckPasswordHash_MalformedVerifier checks that garbage rows report a
mismatch instead of an error or a panic.
*/
func TestCheckPasswordHash_MalformedVerifier(t *testing.T) {
	for _, malformed := range []string{"", "plaintext", "$argon2id$v=19$broken", "$bcrypt$whatever"} {
		assert.False(t, sec.CheckPasswordHash("pw", malformed))
	}
}

// # Session Tokens

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("test-secret-key", "tosho.app", "tosho-clients")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip checks claims survive generate → verify.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateSessionToken("user-1", "alice@x.com", "Alice", time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, "Alice", claims.DisplayName)
	assert.Equal(t, "tosho.app", claims.Issuer)
}

/*
TestTokenService_RejectsExpired checks the uniform rejection of expired
tokens.
*/
func TestTokenService_RejectsExpired(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateSessionToken("user-1", "a@x.com", "A", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsForeignIssuer checks cross-install tokens fail even
with a shared secret.
*/
func TestTokenService_RejectsForeignIssuer(t *testing.T) {
	foreign, err := sec.NewTokenService("test-secret-key", "other.app", "tosho-clients")
	require.NoError(t, err)

	token, err := foreign.GenerateSessionToken("user-1", "a@x.com", "A", time.Hour)
	require.NoError(t, err)

	_, err = newTokenService(t).VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsWrongSecret checks signature validation.
*/
func TestTokenService_RejectsWrongSecret(t *testing.T) {
	other, err := sec.NewTokenService("another-secret", "tosho.app", "tosho-clients")
	require.NoError(t, err)

	token, err := other.GenerateSessionToken("user-1", "a@x.com", "A", time.Hour)
	require.NoError(t, err)

	_, err = newTokenService(t).VerifyToken(token)
	assert.Error(t, err)
}

/*
TestNewTokenService_RequiresSecret pins the fatal-without-secret contract.
*/
func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := sec.NewTokenService("", "tosho.app", "tosho-clients")
	assert.Error(t, err)
}

/*
TestTokenService_RejectsGarbage covers malformed bearer strings.
*/
func TestTokenService_RejectsGarbage(t *testing.T) {
	service := newTokenService(t)

	for _, garbage := range []string{"", "not-a-token", "a.b.c"} {
		_, err := service.VerifyToken(garbage)
		assert.Error(t, err)
	}
}
