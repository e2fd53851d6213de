// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// # Password Security (Argon2id)

// Tuned for interactive logins: 64 MiB memory, 3 passes, 2 lanes.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 2
	argonKeyLen  = 32
	argonSaltLen = 16
)

// ErrEmptyPassword rejects blank credentials before any hashing work.
var ErrEmptyPassword = errors.New("sec: password must not be empty")

// HashPassword derives a password verifier using the Argon2id algorithm.
//
// The verifier is a fixed-shape, self-describing string:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt-b64>$<key-b64>
//
// Each verifier carries its own random salt and the work parameters it was
// produced with, so parameters can be raised without invalidating old rows.
func HashPassword(plainTextPassword string) (string, error) {
	if plainTextPassword == "" {
		return "", ErrEmptyPassword
	}

	// Per-record random salt from the CSPRNG
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sec: failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plainTextPassword), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	verifier := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return verifier, nil
}

// CheckPasswordHash compares a plain-text password with its stored verifier.
//
// The final comparison is constant-time to prevent timing attacks. Any parse
// failure of the stored verifier reports a mismatch rather than an error so
// login code has a single failure path.
func CheckPasswordHash(plainTextPassword, verifier string) bool {
	memory, timeCost, threads, salt, key, err := decodeVerifier(verifier)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(plainTextPassword), salt, timeCost, memory, threads, uint32(len(key)))

	return subtle.ConstantTimeCompare(candidate, key) == 1
}

// decodeVerifier splits a stored verifier back into its parameters.
func decodeVerifier(verifier string) (memory, timeCost uint32, threads uint8, salt, key []byte, err error) {
	parts := strings.Split(verifier, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, errors.New("sec: malformed password verifier")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("sec: malformed verifier version: %w", err)
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, errors.New("sec: unsupported argon2 version")
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("sec: malformed verifier parameters: %w", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("sec: malformed verifier salt: %w", err)
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("sec: malformed verifier key: %w", err)
	}

	return memory, timeCost, threads, salt, key, nil
}
