package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// ErrorResponse is the body every rejected request receives. The status
// field duplicates the HTTP status so clients reading only the body still
// see the outcome.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// RouteAuthenticator owns the cookie based login session for HTTP clients
type RouteAuthenticator struct {
	auth           Authenticator
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := DefaultCookieDuration
	if cfg.GetTokenTTL() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenTTL()) * time.Second
	}

	a := &RouteAuthenticator{
		cfg:            cfg,
		auth:           auther,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login verifies the payload credentials and, on success, issues a token
// and stores it in the auth cookie
func (a *RouteAuthenticator) Login(c *fiber.Ctx, payload LoginPayload) error {
	token, err := a.auth.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return err
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return nil
}

// Logout discards the auth cookie. Tokens already issued stay valid until
// they expire; the cookie slot is the only session state.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookieDel(c, a.cookieName())
}

func (a *RouteAuthenticator) cookieName() string {
	if name := a.cfg.GetCookieName(); name != "" {
		return name
	}
	return DefaultCookieName
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookieName(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// WriteError maps a domain error to an HTTP response with the shared
// {status, message} body. Internal details never leak: anything without a
// recognized category collapses to a generic 500.
func WriteError(c *fiber.Ctx, err error) error {
	status, message := errorStatus(err)
	return c.Status(status).JSON(ErrorResponse{
		Status:  status,
		Message: message,
	})
}

func errorStatus(err error) (int, string) {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError, "An unexpected server error occurred"
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized, richErr.Message
	case errors.CategoryAuthz:
		return http.StatusForbidden, richErr.Message
	case errors.CategoryNotFound:
		return http.StatusNotFound, richErr.Message
	case errors.CategoryValidation, errors.CategoryBadInput:
		if richErr.Code == errors.CodeConflict {
			return http.StatusConflict, richErr.Message
		}
		return http.StatusBadRequest, richErr.Message
	default:
		return http.StatusInternalServerError, "An unexpected server error occurred"
	}
}
