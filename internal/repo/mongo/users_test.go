package mongo_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/invoicehub/internal/domain/user"
	repomongo "github.com/geocoder89/invoicehub/internal/repo/mongo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ user.Store = (*repomongo.UsersRepo)(nil)

// setupUsersRepo runs against a throwaway database on TEST_MONGODB_URI.
func setupUsersRepo(t *testing.T) *repomongo.UsersRepo {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx := context.Background()

	client, err := repomongo.Connect(ctx, uri)
	require.NoError(t, err)

	dbName := fmt.Sprintf("invoicehub_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo := repomongo.NewUsersRepo(client, dbName, nil)
	require.NoError(t, repo.EnsureIndexes(ctx))
	require.NoError(t, repo.EnsureIndexes(ctx), "index creation must be idempotent")

	return repo
}

func TestUsersRepo_CreateAndFind(t *testing.T) {
	repo := setupUsersRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, user.CreateParams{Email: "a@x.com", PasswordHash: "hash", Name: "Ada", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Len(t, created.ID, 24)

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created, byEmail)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.PasswordHash)
}

func TestUsersRepo_NotFound(t *testing.T) {
	repo := setupUsersRepo(t)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = repo.FindByID(ctx, "zzz")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = repo.FindByID(ctx, "5f1d7f1e2b3c4d5e6f708192")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_ConcurrentCreateSameEmail(t *testing.T) {
	repo := setupUsersRepo(t)
	ctx := context.Background()

	const n = 8
	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, user.CreateParams{Email: "race@x.com", PasswordHash: "h"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, user.ErrEmailTaken)
	}
	assert.Equal(t, 1, succeeded)
}
