package authware

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrTokenMissingOrMalformed is returned by extractors when no usable
	// credential is present in the request
	ErrTokenMissingOrMalformed = errors.New("missing or malformed auth token")
)

// Principal mirrors the identity surface from the auth package so the
// middleware has no import cycle with it
type Principal interface {
	ID() int64
	Username() string
	Email() string
	Roles() []string
}

// SubjectValidator validates a raw token and returns its subject
// identifier. This mirrors TokenService.Subject from the auth package.
type SubjectValidator interface {
	Subject(tokenString string) (string, error)
}

// PrincipalResolver loads the principal for a validated subject identifier
type PrincipalResolver interface {
	ResolveSubject(ctx context.Context, subject string) (Principal, error)
}

// Logger mirrors the auth package logger
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type Config struct {
	// Filter skips the pipeline entirely when it returns true
	Filter func(*fiber.Ctx) bool

	// Validator is required for the token strategy
	Validator SubjectValidator

	// Resolver is required; both strategies use it to build principals
	Resolver PrincipalResolver

	// SharedSecret enables the static secret strategy when non empty.
	// Never logged.
	SharedSecret string

	// ServiceSubject is the fixed subject the static secret path resolves
	ServiceSubject string

	// CookieName is the cookie slot the token strategy reads. Defaults
	// to "auth".
	CookieName string

	// AuthScheme is the Authorization header scheme for the static secret
	// strategy. Defaults to "Bearer".
	AuthScheme string

	// ContextKey is the fiber locals slot the bound principal is stored
	// under. Defaults to "identity".
	ContextKey string

	// ContextEnricher propagates the bound principal to the standard Go
	// context when provided.
	ContextEnricher func(context.Context, Principal) context.Context

	Logger Logger
}

// strategy is one self-contained authentication attempt: it inspects the
// request and either produces a principal or reports it did not apply.
type strategy func(c *fiber.Ctx) (Principal, bool)

// New builds the authentication pipeline middleware. The pipeline never
// rejects a request: it binds a principal when a strategy succeeds and
// otherwise leaves the request anonymous.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	strategies := []strategy{
		cfg.tokenStrategy(),
		cfg.sharedSecretStrategy(),
	}

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		// Strategies run strictly in order; the last successful one wins.
		// With the fixed [token, shared secret] order this gives the
		// static secret path its documented override behavior.
		var bound Principal
		for _, attempt := range strategies {
			if principal, ok := attempt(c); ok {
				bound = principal
			}
		}

		if bound != nil {
			bind(c, cfg, bound)
		}

		return c.Next()
	}
}

// bind makes the principal visible to the rest of the request exactly once
func bind(c *fiber.Ctx, cfg Config, principal Principal) {
	c.Locals(cfg.ContextKey, principal)

	if cfg.ContextEnricher != nil {
		c.SetUserContext(cfg.ContextEnricher(c.UserContext(), principal))
	}
}

// tokenStrategy extracts a signed token from the auth cookie, validates it,
// and resolves its subject. Invalid tokens fall through without rejecting.
func (cfg Config) tokenStrategy() strategy {
	return func(c *fiber.Ctx) (Principal, bool) {
		raw := c.Cookies(cfg.CookieName)
		if raw == "" {
			return nil, false
		}

		subject, err := cfg.Validator.Subject(raw)
		if err != nil {
			cfg.Logger.Debug("token strategy: validation failed: %v", err)
			return nil, false
		}

		principal, err := cfg.Resolver.ResolveSubject(c.UserContext(), subject)
		if err != nil {
			cfg.Logger.Warn("token strategy: no identity for subject %s: %v", subject, err)
			return nil, false
		}

		return principal, true
	}
}

// sharedSecretStrategy compares the presented bearer value against the
// configured shared secret and, on match, resolves the fixed service
// subject. It runs after the token strategy and overrides its binding.
func (cfg Config) sharedSecretStrategy() strategy {
	return func(c *fiber.Ctx) (Principal, bool) {
		if cfg.SharedSecret == "" {
			return nil, false
		}

		presented, err := valueFromAuthHeader(c, cfg.AuthScheme)
		if err != nil {
			return nil, false
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(cfg.SharedSecret)) != 1 {
			cfg.Logger.Warn("shared secret strategy: bearer token mismatch")
			return nil, false
		}

		principal, err := cfg.Resolver.ResolveSubject(c.UserContext(), cfg.ServiceSubject)
		if err != nil {
			cfg.Logger.Error("shared secret strategy: service subject resolve failed: %v", err)
			return nil, false
		}

		return principal, true
	}
}

// valueFromAuthHeader extracts the credential from the Authorization
// header, enforcing the auth scheme prefix
func valueFromAuthHeader(c *fiber.Ctx, authScheme string) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	l := len(authScheme)
	if header == "" || l == 0 {
		return "", ErrTokenMissingOrMalformed
	}

	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		return strings.TrimSpace(header[l:]), nil
	}

	return "", ErrTokenMissingOrMalformed
}

func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("AUTH: pipeline configuration: Validator is required.")
	}

	if cfg.Resolver == nil {
		panic("AUTH: pipeline configuration: Resolver is required.")
	}

	if cfg.SharedSecret != "" && cfg.ServiceSubject == "" {
		panic("AUTH: pipeline configuration: ServiceSubject is required when SharedSecret is set.")
	}

	if cfg.CookieName == "" {
		cfg.CookieName = "auth"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "identity"
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	return cfg
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// PrincipalFromLocals extracts the bound principal from the fiber context
func PrincipalFromLocals(c *fiber.Ctx, key string) (Principal, bool) {
	if key == "" {
		key = "identity"
	}
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	principal, ok := raw.(Principal)
	return principal, ok
}
