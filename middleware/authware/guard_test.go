package authware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-userauth/middleware/authware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardApp(principal authware.Principal) *fiber.App {
	app := fiber.New()

	if principal != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("identity", principal)
			return c.Next()
		})
	}

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }

	app.Get("/authed", authware.RequireAuthenticated(), ok)
	app.Get("/admin", authware.RequireRole("ROLE_ADMIN"), ok)

	return app
}

func guardRequest(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	return resp
}

func decodePayload(t *testing.T, resp *http.Response) authware.ErrorPayload {
	t.Helper()
	var out authware.ErrorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRequireAuthenticated(t *testing.T) {
	t.Run("anonymous requests get a structured 401", func(t *testing.T) {
		app := newGuardApp(nil)

		resp := guardRequest(t, app, "/authed")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodePayload(t, resp)
		assert.Equal(t, http.StatusUnauthorized, body.Status)
		assert.NotEmpty(t, body.Message)
	})

	t.Run("bound requests pass", func(t *testing.T) {
		app := newGuardApp(stubPrincipal{id: 1, username: "alice"})

		resp := guardRequest(t, app, "/authed")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRequireRole(t *testing.T) {
	t.Run("anonymous requests get 401, not 403", func(t *testing.T) {
		app := newGuardApp(nil)

		resp := guardRequest(t, app, "/admin")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing role gets a structured 403", func(t *testing.T) {
		app := newGuardApp(stubPrincipal{id: 1, username: "alice", roles: []string{"ROLE_USER"}})

		resp := guardRequest(t, app, "/admin")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		body := decodePayload(t, resp)
		assert.Equal(t, http.StatusForbidden, body.Status)
		assert.NotEmpty(t, body.Message)
	})

	t.Run("carrying the role passes", func(t *testing.T) {
		app := newGuardApp(stubPrincipal{
			id: 1, username: "root", roles: []string{"ROLE_USER", "ROLE_ADMIN"},
		})

		resp := guardRequest(t, app, "/admin")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("custom messages are honored", func(t *testing.T) {
		app := fiber.New()
		app.Get("/x", authware.RequireAuthenticated(authware.GuardConfig{
			UnauthorizedMessage: "Sign in first",
		}), func(c *fiber.Ctx) error { return c.SendString("ok") })

		resp := guardRequest(t, app, "/x")
		body := decodePayload(t, resp)
		assert.Equal(t, "Sign in first", body.Message)
	})
}
