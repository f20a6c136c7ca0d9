package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a, err := NewReference("PAY", at)
	require.NoError(t, err)
	b, err := NewReference("PAY", at)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "PAY-20240301-"))
	assert.NotEqual(t, a, b)
}

func TestPasswordHashing(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	token, expiresAt, err := GenerateJWT("user-1", "secret", time.Hour, "ledger")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := ParseAndValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ledger", claims.Issuer)

	_, err = ParseAndValidateJWT(token, "other")
	assert.Error(t, err)
}
