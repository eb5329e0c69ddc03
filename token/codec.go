// Package token reads the payload of the API's JWTs. Tokens are decoded
// without signature verification: the server verifies every token it is
// handed, and the client only needs the claims to know who is signed in and
// when the token lapses.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	errs "github.com/09ahmad/drop-go/internal/errors"
)

// Claims are the JWT payload fields the client reads. Password sign-ins
// carry userId; Google credentials carry the OIDC identity fields.
type Claims struct {
	UserID  string `json:"userId,omitempty"`  // Account ID as issued by the drop API
	Name    string `json:"name,omitempty"`    // Display name (Google credentials)
	Email   string `json:"email,omitempty"`   // Email address (Google credentials)
	Picture string `json:"picture,omitempty"` // Avatar URL (Google credentials)
	jwt.RegisteredClaims
}

// SubjectID returns the account ID the token was issued for, preferring the
// standard sub claim over the API's userId claim.
func (c *Claims) SubjectID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

// Expired reports whether the exp claim has passed. Tokens without an exp
// claim never expire.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Before(now)
}

// Decode extracts the claims from a JWT without verifying its signature.
func Decode(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errs.Wrapf(errs.ErrInvalidToken, "[token.Decode] empty token")
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, errs.Wrapf(errs.ErrInvalidToken, "[token.Decode] %s", err.Error())
	}
	return claims, nil
}
