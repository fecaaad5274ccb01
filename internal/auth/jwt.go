package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTTL = 24 * time.Hour

var (
	// ErrMissingSecret is a fatal configuration error: tokens are never
	// issued without a signing secret.
	ErrMissingSecret = errors.New("jwt signing secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims is the payload of a session token. The user id travels in "sub".
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}

// Identity is what a session token asserts about its bearer.
type Identity struct {
	UserID string
	Email  string
}

type Options struct {
	Secret string
	TTL    time.Duration
	Issuer string
	// Now overrides the clock used for iat/exp and for validation.
	Now func() time.Time
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewManager(opts Options) (*Manager, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, ErrMissingSecret
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		secret: []byte(opts.Secret),
		ttl:    ttl,
		issuer: opts.Issuer,
		now:    now,
	}, nil
}

// Issue signs a HS256 token for id carrying iat, exp and a unique jti.
func (m *Manager) Issue(id Identity) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrMissingSecret
	}

	if id.UserID == "" {
		return "", errors.New("token subject is empty")
	}

	now := m.now().UTC()

	claims := Claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses tokenStr and checks signature, algorithm and expiry. Every
// failure wraps ErrInvalidToken; the jwt cause stays reachable with errors.Is.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		// pin the algorithm, "none" and other HMAC sizes are rejected
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}

	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, opts...)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}
