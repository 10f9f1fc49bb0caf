// Package token issues and verifies the HS512 JSON Web Tokens carried by the
// API's jwt cookie.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes")

	// ErrExpired is returned when the token has expired.
	ErrExpired = errors.New("token has expired")

	// ErrInvalid is returned when the token is malformed or fails validation.
	ErrInvalid = errors.New("invalid token")
)

// Claims holds the registered claims plus the authenticated user.
type Claims struct {
	jwt.RegisteredClaims
	UserID int    `json:"user_id,string"`
	Email  string `json:"email"`
}

type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// Now overrides the clock; time.Now when nil.
	Now func() time.Time
}

// Manager signs and verifies tokens with a symmetric key.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func New(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    now,
	}, nil
}

// TTL is the lifetime of tokens issued by m.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Generate creates a signed token for the user.
func (m *Manager) Generate(userID int, email string) (string, error) {
	now := m.now()

	return jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(userID),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: userID,
		Email:  email,
	}).SignedString(m.secret)
}

// Verify parses and validates a token string.
func (m *Manager) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithIssuer(m.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, errors.Join(ErrInvalid, err)
	}

	if !token.Valid || claims.UserID < 1 {
		return Claims{}, ErrInvalid
	}

	return claims, nil
}
