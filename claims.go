package forum

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the decoded token payload the middleware hands to handlers.
// Admin and banned flags are snapshots taken at issuance; the ban check in the
// middleware reads the snapshot, not the store.
type AuthClaims interface {
	Subject() string
	UserID() string
	UserEmail() string
	IsAdmin() bool
	IsBanned() bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID    string `json:"uid,omitempty"`
	Email  string `json:"email,omitempty"`
	Admin  bool   `json:"adm,omitempty"`
	Banned bool   `json:"bnd,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// UserEmail returns the email embedded at issuance
func (c *JWTClaims) UserEmail() string {
	return c.Email
}

// IsAdmin reports the admin flag embedded at issuance
func (c *JWTClaims) IsAdmin() bool {
	return c.Admin
}

// IsBanned reports the ban flag embedded at issuance
func (c *JWTClaims) IsBanned() bool {
	return c.Banned
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
