// internal/utils/crypto_test.go
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	number, err := GenerateOrderNumber(now)
	require.NoError(t, err)

	// Ambiguous characters (0, O, 1, I) never appear in the random tail.
	assert.Regexp(t, `^LM-20260314-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`, number)
}

func TestGenerateOrderNumberIsRandom(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		number, err := GenerateOrderNumber(time.Now())
		require.NoError(t, err)
		assert.False(t, seen[number], "duplicate order number %s", number)
		seen[number] = true
	}
}

func TestGenerateCartToken(t *testing.T) {
	token, err := GenerateCartToken()
	require.NoError(t, err)
	assert.Regexp(t, `^[a-zA-Z0-9]{48}$`, token)

	other, err := GenerateCartToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateRandomStringLength(t *testing.T) {
	for _, length := range []int{1, 16, 64} {
		s, err := GenerateRandomString(length)
		require.NoError(t, err)
		assert.Len(t, s, length)
	}
}

func TestHashString(t *testing.T) {
	// SHA-256 of the empty string.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashString(""))

	assert.Equal(t, HashString("cart-token"), HashString("cart-token"))
	assert.NotEqual(t, HashString("cart-token"), HashString("cart-token2"))
	assert.Len(t, HashString("anything"), 64)
}
