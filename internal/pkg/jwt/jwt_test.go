package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("user-1", "a@example.com", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("wrong"))
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	secret := []byte("s")
	token, err := GenerateToken("user-1", "", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.Error(t, err)
}
