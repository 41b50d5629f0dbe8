// Package auth validates the bearer tokens presented to the Notifier's
// SSE stream endpoint. This system never issues tokens itself, so only
// the verification half of the teacher's JWT manager survives here.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("auth: missing token")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims is the minimal claim set this system expects on an inbound
// token: a subject (owner id) and the standard registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Verifier validates HMAC-signed (HS256/HS384/HS512) access tokens and
// extracts the owner id.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a Verifier from a shared HMAC secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// ValidateAccessToken parses and verifies token, returning its claims.
func (v *Verifier) ValidateAccessToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" && claims.Subject == "" {
		return nil, fmt.Errorf("%w: no subject claim", ErrInvalidToken)
	}
	return claims, nil
}

// OwnerID returns the owner identifier carried by the claims, preferring
// the "uid" claim and falling back to the registered subject.
func (c *Claims) OwnerID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
