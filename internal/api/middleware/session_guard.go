package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/api/metrics"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/service"
)

// SessionContextKey is where the guard stores the resolved session for
// downstream handlers.
const SessionContextKey = "session"

const loginPath = "/login"

// Guard enforces a route guard rule over a dashboard subtree. The decision
// table, in order:
//
//   - session still loading: answer 202 with a Retry-After hint and never
//     redirect, so a page refresh does not flash to the login screen while
//     revalidation is in flight;
//   - unauthenticated: redirect to /login, discarding the attempted
//     destination (known limitation: no return-path memory);
//   - authenticated but role not in the rule's set: redirect to the user's
//     own role root, never a generic forbidden page;
//   - otherwise admit and expose the session to the subtree.
//
// This is a UI affordance, not a security boundary — the backend authorizes
// every forwarded request independently.
func Guard(mgr *service.Manager, cookieName string, rule domain.GuardRule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				metrics.GuardDecisionsTotal.WithLabelValues(rule.PathPrefix, "login_redirect").Inc()
				return c.Redirect(http.StatusFound, loginPath)
			}

			s := mgr.Resume(c.Request().Context(), cookie.Value)
			switch s.State() {
			case domain.StateUninitialized, domain.StateLoading:
				metrics.GuardDecisionsTotal.WithLabelValues(rule.PathPrefix, "waiting").Inc()
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusAccepted, map[string]string{"state": domain.StateLoading.String()})

			case domain.StateUnauthenticated:
				metrics.GuardDecisionsTotal.WithLabelValues(rule.PathPrefix, "login_redirect").Inc()
				return c.Redirect(http.StatusFound, loginPath)
			}

			user := s.User()
			if user == nil {
				metrics.GuardDecisionsTotal.WithLabelValues(rule.PathPrefix, "login_redirect").Inc()
				return c.Redirect(http.StatusFound, loginPath)
			}
			if !rule.Allows(user.Role) {
				metrics.GuardDecisionsTotal.WithLabelValues(rule.PathPrefix, "role_redirect").Inc()
				return c.Redirect(http.StatusFound, user.Role.Root())
			}

			metrics.GuardDecisionsTotal.WithLabelValues(rule.PathPrefix, "admitted").Inc()
			c.Set(SessionContextKey, s)
			return next(c)
		}
	}
}

// RequireSession is the guard variant for JSON endpoints (profile updates,
// session introspection): it waits out a loading session instead of
// answering 202, and answers 401 instead of redirecting.
func RequireSession(mgr *service.Manager, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "no session")
			}

			s := mgr.Resume(c.Request().Context(), cookie.Value)
			if err := s.Await(c.Request().Context()); err != nil {
				return err
			}
			if s.State() != domain.StateAuthenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}

			c.Set(SessionContextKey, s)
			return next(c)
		}
	}
}
