package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, badly signed and expired tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// DefaultRoles is the role set assumed when a token carries no roles claim.
var DefaultRoles = []string{"invite"}

// Claims are the contents of an issued token: the registered subject holds
// the user ID, roles and email ride along for the lookup-free auth path.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	Email string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as a user ID
func (c *Claims) UserID() (int64, error) {
	if c.Subject == "" {
		return 0, errors.New("missing subject")
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, errors.New("missing subject")
	}
	return id, nil
}

// RoleSet returns the roles claim, defaulting to DefaultRoles when absent
func (c *Claims) RoleSet() []string {
	if len(c.Roles) == 0 {
		return DefaultRoles
	}
	return c.Roles
}

// TokenService issues and verifies signed, time-bound tokens. It is a pure
// function of its secret; no store is consulted.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service with the given signing secret and TTL
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue produces a signed token for the user, expiring ttl from now
func (s *TokenService) Issue(userID int64, email string, roles []string) (string, error) {
	now := s.now()
	claims := Claims{
		Roles: roles,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string, returning its claims.
// Fails with ErrInvalidToken on bad signature, malformed input or expiry.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
