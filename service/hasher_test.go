package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateSalt(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		salt, err := GenerateSalt(16)
		require.NoError(t, err)
		assert.Len(t, salt, 16)
		for _, r := range salt {
			assert.True(t, strings.ContainsRune(saltAlphabet, r), "unexpected rune %q", r)
		}
		seen[salt] = true
	}
	assert.Len(t, seen, 50, "salts should not repeat")

	_, err := GenerateSalt(0)
	assert.Error(t, err)
}

func TestSHA256Hasher(t *testing.T) {
	h := SHA256Hasher{}

	digest, err := h.Hash("pw123", "abcdEFGH12345678")
	require.NoError(t, err)
	assert.Equal(t, "37a51db3f876c675d6f621074be308c5349a6f45cae04f6c0a69a87d5e14dbd1", digest)

	passwords := []string{"pw123", "", "p@ss w0rd", "ünïcødé", strings.Repeat("x", 16)}
	for _, p := range passwords {
		salt, err := h.GenerateSalt(16)
		require.NoError(t, err)
		digest, err := h.Hash(p, salt)
		require.NoError(t, err)
		assert.Len(t, digest, 64)

		assert.True(t, h.Verify(p, salt, digest), p)
		assert.False(t, h.Verify(p+"x", salt, digest), p)
		assert.False(t, h.Verify(p, salt+"x", digest), p)
	}
	assert.False(t, h.Verify("pw123", "abcdEFGH12345678", "short"))
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	salt, err := h.GenerateSalt(16)
	require.NoError(t, err)

	digest, err := h.Hash("pw123", salt)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(digest), 64)
	assert.True(t, h.Verify("pw123", salt, digest))
	assert.False(t, h.Verify("pw124", salt, digest))
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("")
	require.NoError(t, err)
	assert.IsType(t, SHA256Hasher{}, h)

	h, err = NewPasswordHasher("BCRYPT")
	require.NoError(t, err)
	assert.IsType(t, BcryptHasher{}, h)

	_, err = NewPasswordHasher("md5")
	assert.Error(t, err)
}
