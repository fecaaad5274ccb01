package db

import (
	"context"
	"errors"

	"github.com/geocoder89/invoicehub/internal/domain/user"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type SeedUser struct {
	Email    string
	Password string
	Name     string
}

// EnsureSeedUser creates the configured bootstrap account when it does not
// exist yet. It is a no-op when email or password is empty.
func EnsureSeedUser(ctx context.Context, store user.Store, hasher PasswordHasher, seed SeedUser) (created bool, err error) {
	if seed.Email == "" || seed.Password == "" {
		return false, nil
	}

	// check if the user exists

	_, err = store.FindByEmail(ctx, seed.Email)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := hasher.Hash(seed.Password)

	if err != nil {
		return false, err
	}

	_, err = store.Create(ctx, user.CreateParams{
		Email:        seed.Email,
		PasswordHash: hash,
		Name:         seed.Name,
	})

	// another instance seeded it first
	if errors.Is(err, user.ErrEmailTaken) {
		return false, nil
	}

	return err == nil, err
}
