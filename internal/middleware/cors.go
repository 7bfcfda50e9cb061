package middleware

import (
	"strings"

	"github.com/amanuelrf/reliance-mobile/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds CORS configuration (suffix + dev password).
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
}

const (
	corsAllowMethods = "GET, POST, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, dev-password, X-Trace-Id, X-Request-Id"
)

// CORS allows origins ending with AllowedSuffix, local origins, and requests carrying the
// dev-password header. Requests without an Origin pass through. Credentials are allowed.
func CORS(cfg CORSConfig) fiber.Handler {
	suffix := strings.ToLower(cfg.AllowedSuffix)
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		if !originAllowed(c, strings.ToLower(origin), suffix, cfg.DevPassword) {
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
		}

		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		c.Set(fiber.HeaderAccessControlExposeHeaders, traceIDHeader)
		c.Vary(fiber.HeaderOrigin)
		if c.Method() == fiber.MethodOptions {
			c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
			c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
			c.Set(fiber.HeaderAccessControlMaxAge, "600")
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func originAllowed(c *fiber.Ctx, origin, suffix, devPassword string) bool {
	switch {
	case strings.HasPrefix(origin, "http://localhost:"), strings.HasPrefix(origin, "http://127.0.0.1:"):
		return true
	case suffix != "" && strings.HasSuffix(origin, suffix):
		return true
	case devPassword != "" && c.Get("dev-password") == devPassword:
		return true
	}
	return false
}
