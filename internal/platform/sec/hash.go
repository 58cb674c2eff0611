// Copyright (c) 2026 MEhub. All rights reserved.

package sec

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// # Password Hashing
//
// Passwords are stored in the four-field encoded format
//
//	<iterations>$<keyLength>$<hexHash>$<hexSalt>
//
// so the derivation parameters travel with the hash and can be raised
// later without invalidating existing credentials.

const (
	// hashIterations is deliberately expensive (OWASP guidance for
	// PBKDF2-HMAC-SHA512). It dominates sign-in latency by design.
	hashIterations = 600_000

	// hashKeyLength is the derived key length in bytes.
	hashKeyLength = 64

	// hashSaltLength is the random salt length in bytes.
	hashSaltLength = 32

	// hashFieldCount is the number of '$'-separated fields in a stored hash.
	hashFieldCount = 4
)

// HashPassword hashes a plain-text password using PBKDF2-HMAC-SHA512 with a
// fresh random salt and returns the four-field encoded string.
func HashPassword(plainTextPassword string) (string, error) {
	salt := make([]byte, hashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sec: failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(plainTextPassword), salt, hashIterations, hashKeyLength, sha512.New)

	return fmt.Sprintf("%d$%d$%s$%s",
		hashIterations,
		hashKeyLength,
		hex.EncodeToString(key),
		hex.EncodeToString(salt),
	), nil
}

// VerifyPassword compares a plain-text candidate against a stored four-field
// hash. It re-derives the key with the parameters embedded in the stored
// value, so older hashes with different iteration counts keep verifying.
//
// A malformed stored hash or a mismatch both return false; callers never
// learn which.
func VerifyPassword(storedHash, candidatePassword string) bool {
	iterations, keyLength, wantHex, salt, ok := parseHash(storedHash)
	if !ok {
		return false
	}

	key := pbkdf2.Key([]byte(candidatePassword), salt, iterations, keyLength, sha512.New)

	return hex.EncodeToString(key) == wantHex
}

// DummyHash returns a syntactically valid stored hash that matches no
// password. Sign-in verifies against it when the account does not exist, so
// the full derivation always runs and "unknown account" costs the same as
// "wrong password".
func DummyHash() string {
	return dummyHash
}

// dummyHash carries the standard parameters with an all-zero digest and salt.
// VerifyPassword on it performs the complete PBKDF2 derivation and fails the
// final comparison.
var dummyHash = fmt.Sprintf("%d$%d$%s$%s",
	hashIterations,
	hashKeyLength,
	strings.Repeat("0", hashKeyLength*2),
	strings.Repeat("0", hashSaltLength*2),
)

// parseHash splits a stored hash into its derivation parameters.
func parseHash(storedHash string) (iterations, keyLength int, hashHex string, salt []byte, ok bool) {
	fields := strings.Split(storedHash, "$")
	if len(fields) != hashFieldCount {
		return 0, 0, "", nil, false
	}

	iterations, err := strconv.Atoi(fields[0])
	if err != nil || iterations <= 0 {
		return 0, 0, "", nil, false
	}

	keyLength, err = strconv.Atoi(fields[1])
	if err != nil || keyLength <= 0 {
		return 0, 0, "", nil, false
	}

	salt, err = hex.DecodeString(fields[3])
	if err != nil || len(salt) == 0 {
		return 0, 0, "", nil, false
	}

	return iterations, keyLength, fields[2], salt, true
}
