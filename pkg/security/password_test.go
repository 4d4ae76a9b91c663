package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripnest/tripnest-backend/pkg/config"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("glacier", config.PasswordConfig{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword("glacier", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("volcano", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	_, err := HashPassword("", config.PasswordConfig{})
	assert.Error(t, err)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := HashPassword("glacier", config.PasswordConfig{})
	require.NoError(t, err)
	second, err := HashPassword("glacier", config.PasswordConfig{})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword("glacier", "not-a-hash")
	assert.Error(t, err)
}
