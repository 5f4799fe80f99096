package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientIPLocalKey is the key under which the resolved requester IP is
// stored in Fiber's context locals.
const ClientIPLocalKey = "client_ip"

// ClientIP resolves the requester's IP once per request and stores it in
// context locals. Behind a proxy the first X-Forwarded-For hop wins;
// otherwise the socket peer address is used. Ownership checks compare this
// value against the entry's recorded IP, so it must be resolved in exactly
// one place.
func ClientIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if fwd := c.Get("X-Forwarded-For"); fwd != "" {
			ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
		}

		c.Locals(ClientIPLocalKey, ip)
		return c.Next()
	}
}

// ClientIPFromCtx returns the IP resolved by ClientIP, or "" when the
// middleware did not run.
func ClientIPFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(ClientIPLocalKey).(string); ok {
		return v
	}
	return ""
}
