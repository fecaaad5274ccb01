package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	for _, plain := range []string{"secret1", "correct horse battery staple", "pässwörd", " "} {
		hash, err := h.Hash(plain)
		require.NoError(t, err)

		assert.NotEqual(t, plain, hash)
		assert.True(t, h.Verify(hash, plain), "verify(%q, hash(%q)) should hold", plain, plain)
		assert.False(t, h.Verify(hash, plain+"x"))
		assert.False(t, h.Verify(hash, ""))
	}
}

func TestHasher_SaltsEachHash(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify(a, "secret1"))
	assert.True(t, h.Verify(b, "secret1"))
}

func TestHasher_VerifyRejectsGarbageHash(t *testing.T) {
	t.Parallel()

	assert.False(t, NewHasher(bcrypt.MinCost).Verify("not-a-bcrypt-hash", "secret1"))
}

func TestNewHasher_OutOfRangeCostFallsBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).cost)
}

func TestHasher_RejectsOverlongPassword(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
	assert.True(t, h.Verify(hash, strings.Repeat("a", MaxPasswordBytes)))
}
