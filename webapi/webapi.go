// Package webapi exposes the bank over HTTP. It is organized into
// sub-packages per area:
// - auth: login and token issuance
// - customer: opening customers, rankings, history and statements
// - account: deposits, withdrawals, transfers and reactivation
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/acmebank/pkg/config"
	authsvc "github.com/amirasaad/acmebank/pkg/service/auth"
	"github.com/amirasaad/acmebank/pkg/service/bank"
	accountweb "github.com/amirasaad/acmebank/webapi/account"
	authweb "github.com/amirasaad/acmebank/webapi/auth"
	"github.com/amirasaad/acmebank/webapi/common"
	customerweb "github.com/amirasaad/acmebank/webapi/customer"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(bankSvc *bank.Service, authSvc *authsvc.Service, cfg *config.App) *fiber.App {
	rl := &config.RateLimit{MaxRequests: 100, Window: time.Minute}
	if cfg.RateLimit != nil {
		rl = cfg.RateLimit
	}
	var jwtCfg *config.Jwt
	if cfg.Auth != nil {
		jwtCfg = cfg.Auth.Jwt
	}

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return common.ProblemDetailsJSON(c, fe.Message, nil, fe.Code)
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Behind a proxy the client is the first X-Forwarded-For hop.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        rl.MaxRequests,
		Expiration: rl.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ACME Bank API is running! 🏦")
	})

	authweb.Routes(fiberApp, authSvc)
	customerweb.Routes(fiberApp, bankSvc, authSvc, jwtCfg)
	accountweb.Routes(fiberApp, bankSvc, authSvc, jwtCfg)
	return fiberApp
}
