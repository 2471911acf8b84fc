// Package webapi exposes the ledger over HTTP. Route groups live in sub-packages:
// - account: account listing, history, deposit, withdraw and transfer endpoints
// - common: the shared response envelope and request binding
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/atm/pkg/app"
	accountweb "github.com/amirasaad/atm/webapi/account"
	"github.com/amirasaad/atm/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config

	fiberApp := fiber.New(fiber.Config{
		AppName:      "atm",
		UnescapePath: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	fiberApp.Use(recover.New())
	if cfg.Cors != nil {
		fiberApp.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.Cors.Origins(), ","),
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Accept",
		}))
	}
	if cfg.RateLimit != nil && cfg.RateLimit.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.MaxRequests,
			Expiration: cfg.RateLimit.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				// Behind a proxy the first X-Forwarded-For hop is the client.
				if forwardedFor := c.Get(fiber.HeaderXForwardedFor); forwardedFor != "" {
					if i := strings.Index(forwardedFor, ","); i != -1 {
						return strings.TrimSpace(forwardedFor[:i])
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
	}
	if cfg.Env != "test" {
		fiberApp.Use(logger.New())
	}

	fiberApp.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	accountweb.Routes(fiberApp, a.AccountService)
	return fiberApp
}
