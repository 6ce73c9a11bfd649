package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sportsfed/console-gateway/internal/api/metrics"
	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
)

const (
	userContextKey = "console.user"

	// LoginPath is the login entry point anonymous requests are sent to.
	LoginPath = "/login"
	// LandingPath is where authenticated-but-denied requests are sent; a
	// deny never leaks whether the resource exists.
	LandingPath = "/"
)

// Guard gates a protected route with the session state and an access rule.
//
//   - Session still restoring: respond 503 with Retry-After rather than a
//     redirect. Boot runs restoration before the listener starts, so this
//     branch is rarely taken.
//   - Anonymous: redirect to the login entry point, preserving the requested
//     path for a post-login return.
//   - Authenticated but denied by the rule: redirect to the landing page.
//   - Allowed: expose the user via CurrentUser and run the handler.
func Guard(sessions ports.SessionReader, rule domain.AccessRule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch sessions.State() {
			case domain.StateUninitialized, domain.StateRestoring:
				metrics.GuardDecisionsTotal.WithLabelValues("loading").Inc()
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})

			case domain.StateAnonymous:
				metrics.GuardDecisionsTotal.WithLabelValues("login_redirect").Inc()
				return c.Redirect(http.StatusFound, loginRedirect(c.Request().URL.Path))
			}

			user := sessions.CurrentUser()
			if !rule.Allows(user) {
				metrics.GuardDecisionsTotal.WithLabelValues("deny").Inc()
				return c.Redirect(http.StatusFound, LandingPath)
			}

			metrics.GuardDecisionsTotal.WithLabelValues("allow").Inc()
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the operator the guard admitted, or nil on unguarded
// routes. Leaf handlers combine this with AccessRule.Allows for fine-grained
// affordances.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userContextKey).(*domain.User)
	return u
}

// loginRedirect appends the originally requested path as a `next` parameter.
// Only relative paths are preserved; anything else falls back to a plain
// login redirect.
func loginRedirect(requested string) string {
	if requested == "" || !strings.HasPrefix(requested, "/") || strings.HasPrefix(requested, "//") {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(requested)
}
