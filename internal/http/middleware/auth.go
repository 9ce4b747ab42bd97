package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"medvault/internal/auth"
	"medvault/internal/model"
	"medvault/internal/service"
)

const (
	// CallerLocalKey is the key used to store the authenticated caller in
	// Fiber's context locals.
	CallerLocalKey = "caller"

	// LoginPath is where unauthenticated browser requests are sent.
	LoginPath = "/accounts/login/"
)

// CallerFromCtx extracts the caller stored by Authenticate.
func CallerFromCtx(c *fiber.Ctx) (service.Caller, bool) {
	caller, ok := c.Locals(CallerLocalKey).(service.Caller)
	return caller, ok
}

// Authenticate resolves the session token from the session cookie or a
// Bearer Authorization header and stores the caller in context locals.
//
// Requests without a valid session are rejected: browser-shaped requests
// (HTML in Accept, no Authorization header) get a 303 redirect to the login
// page, API requests get 401.
func Authenticate(sessions *auth.Sessions, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}

		if token != "" {
			if claims, err := sessions.Verify(token); err == nil {
				c.Locals(CallerLocalKey, service.Caller{
					UserID: claims.UserID,
					Role:   claims.Role,
				})
				return c.Next()
			}
		}

		if WantsHTML(c) {
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}
		return fiber.ErrUnauthorized
	}
}

// RequireRoles rejects authenticated callers whose role is not in the set.
// It must run after Authenticate.
func RequireRoles(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := CallerFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		for _, r := range roles {
			if caller.Role == r {
				return c.Next()
			}
		}
		return fiber.ErrForbidden
	}
}

// RequirePatient gates a route to patient callers.
func RequirePatient() fiber.Handler { return RequireRoles(model.RolePatient) }

// RequireDoctor gates a route to doctor callers.
func RequireDoctor() fiber.Handler { return RequireRoles(model.RoleDoctor) }

// WantsHTML reports whether the request looks like a browser navigation
// rather than an API call. Handlers use it to decide between a redirect
// and a JSON body.
func WantsHTML(c *fiber.Ctx) bool {
	if c.Get(fiber.HeaderAuthorization) != "" {
		return false
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), "text/html")
}
