// Copyright (c) 2026 MEhub. All rights reserved.

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
)

// newTokenService builds a TokenService around a throwaway RSA key pair,
// encoded the same way deployment delivers keys (base64 over PEM).
func newTokenService(t *testing.T) (*sec.TokenService, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	service, err := sec.NewTokenService(
		base64.StdEncoding.EncodeToString(privatePEM),
		base64.StdEncoding.EncodeToString(publicPEM),
		"mehub.dev",
	)
	require.NoError(t, err)

	return service, key
}

/*
TestTokenService_RoundTrip signs a token and verifies every claim survives.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, _ := newTokenService(t)

	token, err := service.Generate(
		"0198a111-0000-7000-8000-000000000001",
		"dev@mehub.dev",
		"scriptwright",
		"Developer",
		"0198a111-0000-7000-8000-00000000beef",
	)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "0198a111-0000-7000-8000-000000000001", claims.UserID)
	assert.Equal(t, "dev@mehub.dev", claims.Email)
	assert.Equal(t, "scriptwright", claims.Username)
	assert.Equal(t, "Developer", claims.Role)
	assert.Equal(t, "0198a111-0000-7000-8000-00000000beef", claims.SessionID)
	assert.Equal(t, "mehub.dev", claims.Issuer)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 23*time.Hour, "token lifetime is fixed at a day")
	assert.LessOrEqual(t, remaining, 24*time.Hour)
}

/*
TestTokenService_RejectsTampered fails verification when any part of the
token is altered.
*/
func TestTokenService_RejectsTampered(t *testing.T) {
	service, _ := newTokenService(t)

	token, err := service.Generate("user-1", "a@b.dev", "a", "User", "sid")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = service.Verify(tampered)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsExpired fails verification for a token past its
expiry even though the signature is genuine.
*/
func TestTokenService_RejectsExpired(t *testing.T) {
	service, key := newTokenService(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodRS256, sec.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "mehub.dev",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "user-1",
	})
	signed, err := expired.SignedString(key)
	require.NoError(t, err)

	_, err = service.Verify(signed)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsForeignKey fails verification for tokens signed by
a different key pair.
*/
func TestTokenService_RejectsForeignKey(t *testing.T) {
	service, _ := newTokenService(t)
	foreign, _ := newTokenService(t)

	token, err := foreign.Generate("user-1", "a@b.dev", "a", "User", "sid")
	require.NoError(t, err)

	_, err = service.Verify(token)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsSymmetricAlg refuses tokens that swap the RSA
signature for an HMAC, closing the classic alg-confusion hole.
*/
func TestTokenService_RejectsSymmetricAlg(t *testing.T) {
	service, _ := newTokenService(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, sec.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "user-1",
		Role:   "Admin",
	})
	signed, err := forged.SignedString([]byte("guessed-secret"))
	require.NoError(t, err)

	_, err = service.Verify(signed)
	assert.Error(t, err)
}
