package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jnfpayroll/auth-api/internal/core/ports"
	"github.com/jnfpayroll/auth-api/internal/core/service"
)

// Context keys set by Auth.
const (
	ClaimsKey   = "claims"
	UsernameKey = "username"
	RoleKey     = "role"
)

// Auth verifies the token in the Authorization header and injects its claims
// into the context. Header parsing matches the protected endpoint: a
// "Bearer " prefix is optional.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token required")
			}

			claims := tokens.Verify(service.ExtractToken(authHeader))
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ClaimsKey, claims)
			c.Set(UsernameKey, claims.Username)
			c.Set(RoleKey, claims.Role)

			return next(c)
		}
	}
}
