// Package auth verifies the bearer tokens issued by the identity provider
// and carries the caller's identity through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oggyb/matchmaking-core/internal/config"
)

// RoleService marks trusted backend callers such as the payment webhook.
const RoleService = "service_role"

var signingMethod = jwt.SigningMethodHS256

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid access token")

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

// IsService reports whether the caller is a trusted backend.
func (i Identity) IsService() bool {
	return i.Role == RoleService
}

type claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens against a shared secret and optional issuer.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier builds a Verifier from the auth config.
func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, now: time.Now}
}

// Verify parses raw and returns the identity in its claims. The subject is
// the user id; tokens without one are rejected.
func (v *Verifier) Verify(raw string) (Identity, error) {
	if strings.TrimSpace(raw) == "" || len(v.secret) == 0 {
		return Identity{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || token == nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(c.Subject) == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: c.Subject, Role: c.Role}, nil
}

// Mint signs a token for id valid for ttl. Used by cmd tooling and tests;
// production tokens come from the identity provider.
func (v *Verifier) Mint(id Identity, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("jwt secret is required")
	}
	if id.UserID == "" {
		return "", fmt.Errorf("subject is required")
	}
	now := v.now().UTC()
	c := claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, c).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// BearerToken extracts the token from an "authorization: Bearer <token>" value.
func BearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

type identityKey struct{}

func IntoContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
