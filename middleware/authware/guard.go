package authware

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorPayload is the body written for access decisions. Handlers that
// reject upstream of a controller use the same shape so clients see one
// error contract.
type ErrorPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// GuardConfig tunes the access decision handlers
type GuardConfig struct {
	// ContextKey must match the pipeline's ContextKey. Defaults to
	// "identity".
	ContextKey string

	// UnauthorizedMessage overrides the default 401 body message
	UnauthorizedMessage string

	// ForbiddenMessage overrides the default 403 body message
	ForbiddenMessage string
}

func guardDefault(config ...GuardConfig) GuardConfig {
	var cfg GuardConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "identity"
	}

	if cfg.UnauthorizedMessage == "" {
		cfg.UnauthorizedMessage = "Authentication required"
	}

	if cfg.ForbiddenMessage == "" {
		cfg.ForbiddenMessage = "Insufficient permissions"
	}

	return cfg
}

// RequireAuthenticated rejects with 401 any request the pipeline left
// anonymous
func RequireAuthenticated(config ...GuardConfig) fiber.Handler {
	cfg := guardDefault(config...)

	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromLocals(c, cfg.ContextKey); !ok {
			return unauthorized(c, cfg)
		}
		return c.Next()
	}
}

// RequireRole rejects with 401 when anonymous and 403 when the bound
// principal carries none of the given roles
func RequireRole(role string, config ...GuardConfig) fiber.Handler {
	cfg := guardDefault(config...)

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromLocals(c, cfg.ContextKey)
		if !ok {
			return unauthorized(c, cfg)
		}

		for _, r := range principal.Roles() {
			if r == role {
				return c.Next()
			}
		}

		return forbidden(c, cfg)
	}
}

func unauthorized(c *fiber.Ctx, cfg GuardConfig) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorPayload{
		Status:  fiber.StatusUnauthorized,
		Message: cfg.UnauthorizedMessage,
	})
}

func forbidden(c *fiber.Ctx, cfg GuardConfig) error {
	return c.Status(fiber.StatusForbidden).JSON(ErrorPayload{
		Status:  fiber.StatusForbidden,
		Message: cfg.ForbiddenMessage,
	})
}
