package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/acmebank/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cfg = &config.Jwt{Secret: "middleware-secret", Expiry: time.Hour}

func protectedApp(c *config.Jwt) *fiber.App {
	app := fiber.New()
	app.Use(JwtProtected(c))
	app.Get("/", func(c *fiber.Ctx) error {
		token := c.Locals("user").(*jwt.Token)
		claims := token.Claims.(jwt.MapClaims)
		return c.SendString(claims["account_id"].(string))
	})
	return app
}

func sign(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": "10001",
		"exp":        exp.Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode
}

func TestJwtProtected(t *testing.T) {
	app := protectedApp(cfg)

	assert.Equal(t, fiber.StatusOK, do(t, app, sign(t, cfg.Secret, time.Now().Add(time.Hour))))
	assert.Equal(t, fiber.StatusBadRequest, do(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, sign(t, "other-secret", time.Now().Add(time.Hour))))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, sign(t, cfg.Secret, time.Now().Add(-time.Hour))))
}

func TestJwtProtected_NoSecret(t *testing.T) {
	app := protectedApp(&config.Jwt{})
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, sign(t, "anything", time.Now().Add(time.Hour))))
}

func TestJwtError_Invalid(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("any other error"))
	})
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, ""))
}
