// Package auth resolves bearer credentials into caller identities.
//
// Sign-in and token issuance belong to the external identity provider; this
// package only verifies HS256 tokens signed with the shared secret.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"
	RoleHost  = "host"
	RoleAgent = "agent"
)

var (
	ErrMissingCredential = errors.New("missing bearer credential")
	ErrInvalidCredential = errors.New("invalid bearer credential")
)

type Identity struct {
	UserID string
	Email  string
	Role   string
}

// Guard turns an Authorization header value into an Identity.
type Guard interface {
	Authenticate(authHeader string) (*Identity, error)
}

type claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTGuard struct {
	secret []byte
	now    func() time.Time
}

func NewJWTGuard(secret string) *JWTGuard {
	return &JWTGuard{secret: []byte(secret), now: time.Now}
}

func (g *JWTGuard) Authenticate(authHeader string) (*Identity, error) {
	tokenStr, err := bearerToken(authHeader)
	if err != nil {
		return nil, err
	}
	if len(g.secret) == 0 {
		return nil, fmt.Errorf("%w: verification secret not configured", ErrInvalidCredential)
	}

	var c claims
	tok, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !tok.Valid || c.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidCredential)
	}

	return &Identity{
		UserID: c.Subject,
		Email:  c.Email,
		Role:   c.Role,
	}, nil
}

func bearerToken(authHeader string) (string, error) {
	header := strings.TrimSpace(authHeader)
	if header == "" {
		return "", ErrMissingCredential
	}

	// "Bearer" with nothing after it is a missing token, not a wrong scheme
	if strings.EqualFold(header, "bearer") {
		return "", ErrMissingCredential
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", fmt.Errorf("%w: expected Bearer scheme", ErrInvalidCredential)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingCredential
	}
	return token, nil
}

// Issue signs a token for id. Used by tests and local tooling; production
// tokens come from the identity provider.
func Issue(secret string, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}
