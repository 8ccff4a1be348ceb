package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jnfpayroll/auth-api/internal/api/middleware"
	"github.com/jnfpayroll/auth-api/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. Their
// absence means the route was mounted without it; reject with 401 rather
// than serve anonymously.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, _ := c.Get(middleware.ClaimsKey).(*domain.Claims)
	if claims == nil || claims.Username == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
