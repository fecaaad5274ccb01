package db_test

import (
	"context"
	"testing"

	"github.com/geocoder89/invoicehub/internal/db"
	"github.com/geocoder89/invoicehub/internal/repo/memory"
	"github.com/geocoder89/invoicehub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureSeedUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUsersRepo()
	hasher := security.NewHasher(bcrypt.MinCost)
	seed := db.SeedUser{Email: "admin@example.com", Password: "password123", Name: "Admin"}

	created, err := db.EnsureSeedUser(ctx, store, hasher, seed)
	require.NoError(t, err)
	assert.True(t, created)

	u, err := store.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Admin", u.Name)
	assert.True(t, hasher.Verify(u.PasswordHash, "password123"))

	// second run is idempotent
	created, err = db.EnsureSeedUser(ctx, store, hasher, seed)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, store.Len())
}

func TestEnsureSeedUser_Disabled(t *testing.T) {
	store := memory.NewUsersRepo()

	created, err := db.EnsureSeedUser(context.Background(), store, security.NewHasher(bcrypt.MinCost), db.SeedUser{Email: "admin@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 0, store.Len())
}
