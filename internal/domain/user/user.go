package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// QuickBooksLink records whether the user connected an accounting account.
type QuickBooksLink struct {
	Connected   bool       `json:"connected"`
	RealmID     string     `json:"-"`
	ConnectedAt *time.Time `json:"-"`
}

type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // never expose hash in JSON
	Name         string         `json:"name"`
	FirstName    string         `json:"firstName,omitempty"`
	LastName     string         `json:"lastName,omitempty"`
	QuickBooks   QuickBooksLink `json:"quickbooks"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CreateParams is what a store needs to persist a new account.
// PasswordHash must already be hashed.
type CreateParams struct {
	Email        string
	PasswordHash string
	Name         string
	FirstName    string
	LastName     string
}

// Store is the credential store. Create must report a duplicate email as
// ErrEmailTaken, whether it is caught by the pre-insert lookup or by the
// storage-level unique constraint.
type Store interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, params CreateParams) (User, error)
	Ping(ctx context.Context) error
}

// DisplayName picks the explicit name or falls back to "first last".
func DisplayName(name, firstName, lastName string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}

	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}
