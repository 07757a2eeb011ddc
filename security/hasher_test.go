package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher()

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.True(t, LooksLikeHash(hash))
	assert.True(t, h.Verify("secret1", hash))
	assert.False(t, h.Verify("secret2", hash))
}

func TestHashIsSaltedPerCall(t *testing.T) {
	h := NewHasher()
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyAgainstPlaintextReturnsFalse(t *testing.T) {
	h := NewHasher()
	assert.False(t, h.Verify("secret1", "secret1"))
	assert.False(t, h.Verify("", ""))
	assert.False(t, h.Verify("x", "$2a$10$tooshort"))
}

func TestLooksLikeHash(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"secret1", false},
		{"$2a$10$" + strings.Repeat("a", 53), true},
		{"$2b$12$" + strings.Repeat("b", 53), true},
		{"$2y$10$" + strings.Repeat("c", 53), true},
		{"$2x$10$" + strings.Repeat("d", 53), false},
		{"$2a$10$short", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LooksLikeHash(tc.in), "input %q", tc.in)
	}
}

func TestHashRejectsInputOverBcryptLimit(t *testing.T) {
	h := NewHasher()

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// the limit counts bytes, not characters
	_, err = h.Hash(strings.Repeat("ñ", 37))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
