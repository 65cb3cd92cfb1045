package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Aa1!aaaa", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "Aa1!aaaa", hash)

	assert.True(t, CheckPassword("Aa1!aaaa", hash))
	assert.False(t, CheckPassword("Aa1!aaab", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("Aa1!aaaa", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("Aa1!aaaa", bcrypt.MinCost)
	require.NoError(t, err)

	// random salt: same input, different hashes, both verify
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword("Aa1!aaaa", h1))
	assert.True(t, CheckPassword("Aa1!aaaa", h2))
}

func TestHashPasswordCostFallback(t *testing.T) {
	hash, err := HashPassword("Aa1!aaaa", 999)
	require.NoError(t, err)
	assert.True(t, CheckPassword("Aa1!aaaa", hash))
}

func TestCheckPasswordBadHash(t *testing.T) {
	assert.False(t, CheckPassword("anything", "not-a-bcrypt-hash"))
}
