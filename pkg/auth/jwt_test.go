package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(secret, "uid-1", "a@b.co", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.Subject)
	assert.Equal(t, "a@b.co", claims.Email)
}

func TestExpiredToken(t *testing.T) {
	tok, err := GenerateToken(secret, "uid-1", "a@b.co", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(secret, tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestWrongSecret(t *testing.T) {
	tok, err := GenerateToken(secret, "uid-1", "a@b.co", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken([]byte("other"), tok)
	assert.Error(t, err)
}

func TestRejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = ValidateToken(secret, tok)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}
