package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDLocalKey is the key under which the authenticated requester's user
// id is stored in Fiber's context locals. Absent or empty means anonymous.
const UserIDLocalKey = "user_id"

// Auth parses an optional Authorization bearer token and stores the
// authenticated user id in context locals. A missing, malformed or
// unverifiable token leaves the request anonymous rather than failing it:
// anonymous access is a first-class path through the authorization
// pipeline, which decides for itself whether to challenge for login.
func Auth(tokenSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenSecret == "" {
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.Next()
		}

		parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(tokenSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !parsed.Valid {
			return c.Next()
		}

		if sub, err := parsed.Claims.GetSubject(); err == nil && sub != "" {
			c.Locals(UserIDLocalKey, sub)
		}
		return c.Next()
	}
}

// UserIDFromCtx returns the authenticated user id, or "" for anonymous
// requests.
func UserIDFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(UserIDLocalKey).(string); ok {
		return v
	}
	return ""
}
