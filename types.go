package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated principal. Instances are
// built fresh from a durable user record for each request and are immutable
// once bound.
type Identity interface {
	ID() int64
	Username() string
	Email() string
	Roles() []string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	Verify(token string) (AuthClaims, error)
	IdentityFromToken(ctx context.Context, token string) (Identity, error)
}

// TokenService issues and validates signed, time bound tokens carrying a
// subject identifier.
type TokenService interface {
	Generate(subject string) (string, error)
	Validate(tokenString string) (AuthClaims, error)
	Subject(tokenString string) (string, error)
}

// Config holds auth options
type Config interface {
	GetSigningSecret() string
	GetTokenTTL() int
	GetIssuer() string
	GetSharedSecret() string
	GetServiceSubject() string
	GetCookieName() string
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// LoginPayload is the contract login requests must satisfy
type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

// DefaultCookieName is the cookie slot the token strategy reads from.
const DefaultCookieName = "auth"

// DefaultCookieDuration caps the auth cookie lifetime when the config
// carries no TTL.
const DefaultCookieDuration = 24 * time.Hour

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
