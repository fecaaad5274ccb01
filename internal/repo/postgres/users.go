package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/invoicehub/internal/domain/user"
	"github.com/geocoder89/invoicehub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation      = "23505"
	usersEmailConstraint = "users_email_key"
)

const selectUserColumns = `SELECT id, email, password_hash, name, first_name, last_name,
	qbo_connected, qbo_realm_id, qbo_connected_at, created_at, updated_at
	FROM users`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, "users.find_by_email", `WHERE email = $1`, email)
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (user.User, error) {
	// a malformed id can never match a uuid column
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	return r.findOne(ctx, "users.find_by_id", `WHERE id = $1`, id)
}

func (r *UsersRepo) findOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var (
		u       user.User
		scanErr error
	)

	err := r.prom.ObserveDB(op, func() error {
		u, scanErr = scanUser(r.pool.QueryRow(ctx, selectUserColumns+" "+where, arg))
		// a plain miss is not a db error
		if errors.Is(scanErr, user.ErrNotFound) {
			return nil
		}
		return scanErr
	})

	if err != nil {
		return user.User{}, err
	}

	return u, scanErr
}

// Create looks the email up first to reject the common case early. The
// users_email_key constraint is what actually guarantees uniqueness when two
// signups race past the lookup.
func (r *UsersRepo) Create(ctx context.Context, params user.CreateParams) (user.User, error) {
	var exists bool

	err := r.prom.ObserveDB("users.create.duplicate_check", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, params.Email).Scan(&exists)
	})

	if err != nil {
		return user.User{}, err
	}

	if exists {
		return user.User{}, user.ErrEmailTaken
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Name:         strings.TrimSpace(params.Name),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = r.prom.ObserveDB("users.create.insert", func() error {
		_, e := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, first_name, last_name, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.FirstName, u.LastName, u.CreatedAt, u.UpdatedAt)
		return e
	})

	if err != nil {
		if isEmailUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u           user.User
		realmID     *string
		connectedAt *time.Time
	)

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.FirstName,
		&u.LastName,
		&u.QuickBooks.Connected,
		&realmID,
		&connectedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	if realmID != nil {
		u.QuickBooks.RealmID = *realmID
	}
	u.QuickBooks.ConnectedAt = connectedAt

	return u, nil
}

func isEmailUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}

	return pgErr.ConstraintName == "" || pgErr.ConstraintName == usersEmailConstraint
}
