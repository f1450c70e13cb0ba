package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, userID, username string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestGuestModeTrustsDeclaredIdentity(t *testing.T) {
	v := NewVerifier("")
	assert.True(t, v.Guest())
	assert.NoError(t, v.Verify("u1", "Alice", ""))
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, "u1", "Alice", time.Now().Add(time.Hour))
	assert.NoError(t, v.Verify("u1", "Alice", token))
}

func TestVerifyMissingToken(t *testing.T) {
	v := NewVerifier(testSecret)
	assert.Error(t, v.Verify("u1", "Alice", ""))
}

func TestVerifyWrongSignature(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, "other-secret", "u1", "Alice", time.Now().Add(time.Hour))
	assert.Error(t, v.Verify("u1", "Alice", token))
}

func TestVerifyExpiredToken(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, "u1", "Alice", time.Now().Add(-time.Minute))
	assert.Error(t, v.Verify("u1", "Alice", token))
}

func TestVerifySubjectMismatch(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, "u1", "Alice", time.Now().Add(time.Hour))
	assert.Error(t, v.Verify("u2", "Alice", token), "a token for another userId must not bind")
}

func TestVerifyUsernameMismatch(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, "u1", "Alice", time.Now().Add(time.Hour))
	assert.Error(t, v.Verify("u1", "Mallory", token))
}

func TestVerifyTokenWithoutUsernameClaim(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, "u1", "", time.Now().Add(time.Hour))
	// Claim de username ausente: só o subject é exigido.
	assert.NoError(t, v.Verify("u1", "Alice", token))
}
