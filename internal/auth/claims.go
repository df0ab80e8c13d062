// ABOUTME: Unverified JWT claim inspection for display and logging
// ABOUTME: Extracts the subject and expiry from an access token

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim errors
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrMissingClaim   = errors.New("missing required claim")
)

// Claims is the subset of registered JWT claims the client cares about.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect decodes the registered claims of a token without verifying its
// signature. Verification is the server's job; the client only reads the
// subject (the authenticated member id) and the expiry.
func Inspect(token string) (Claims, error) {
	parser := jwt.NewParser()

	var rc jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if rc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
