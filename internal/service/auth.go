package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/geocoder89/invoicehub/internal/auth"
	"github.com/geocoder89/invoicehub/internal/domain/user"
	"github.com/geocoder89/invoicehub/internal/security"
)

var (
	// ErrConflict means the email already belongs to an account.
	ErrConflict = errors.New("user already exists with this email")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
	// ErrPasswordTooLong is the hasher refusing input, reported as a validation failure.
	ErrPasswordTooLong = errors.New("password is too long")
	// ErrInternal wraps store, hasher and token failures. The cause is logged,
	// never shown to clients.
	ErrInternal = errors.New("internal error")
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type SignUpInput struct {
	Email     string
	Password  string
	Name      string
	FirstName string
	LastName  string
}

// AuthResult is a user plus a freshly issued session token.
type AuthResult struct {
	User  user.User
	Token string
}

// AuthService implements signup, login and profile lookup on top of the
// credential store, the password hasher and the token issuer.
type AuthService struct {
	users  user.Store
	hasher PasswordHasher
	tokens TokenIssuer
	log    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users user.Store, hasher PasswordHasher, tokens TokenIssuer, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}

	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (AuthResult, error) {
	_, err := s.users.FindByEmail(ctx, in.Email)

	switch {
	case err == nil:
		return AuthResult{}, ErrConflict
	case !errors.Is(err, user.ErrNotFound):
		return AuthResult{}, s.internal(ctx, "signup lookup failed", err)
	}

	hash, err := s.hasher.Hash(in.Password)

	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return AuthResult{}, ErrPasswordTooLong
		}
		return AuthResult{}, s.internal(ctx, "hash password failed", err)
	}

	u, err := s.users.Create(ctx, user.CreateParams{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         user.DisplayName(in.Name, in.FirstName, in.LastName),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})

	if err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, user.ErrEmailTaken) {
			return AuthResult{}, ErrConflict
		}
		return AuthResult{}, s.internal(ctx, "create user failed", err)
	}

	return s.issue(ctx, u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// spend the same bcrypt time as a real comparison
			s.hasher.Verify(s.fallbackHash(), password)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, s.internal(ctx, "login lookup failed", err)
	}

	if !s.hasher.Verify(u.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(ctx, u)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (user.User, error) {
	u, err := s.users.FindByID(ctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, s.internal(ctx, "profile lookup failed", err)
	}

	return u, nil
}

func (s *AuthService) issue(ctx context.Context, u user.User) (AuthResult, error) {
	token, err := s.tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email})

	if err != nil {
		return AuthResult{}, s.internal(ctx, "issue token failed", err)
	}

	return AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) internal(ctx context.Context, msg string, err error) error {
	s.log.ErrorContext(ctx, msg, "err", err)
	return fmt.Errorf("%w: %s: %w", ErrInternal, msg, err)
}

func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("invoicehub-login-timing-equalizer")
		if err == nil {
			s.dummyHash = h
		}
	})

	return s.dummyHash
}
