package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jnfpayroll/auth-api/internal/api/metrics"
	"github.com/jnfpayroll/auth-api/internal/core/ports"
)

const msgInvalidPayload = "invalid payload"

// AuthHandler adapts the auth gateway to HTTP. It only decodes requests and
// renders gateway responses; every decision is made by the gateway.
type AuthHandler struct {
	gateway ports.AuthGateway
}

func NewAuthHandler(gateway ports.AuthGateway) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

// Login authenticates a user and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ports.LoginRequest  true  "Login credentials"
// @Success      200   {object}  ports.LoginResponse
// @Failure      400   {object}  ports.ErrorResponse
// @Failure      401   {object}  ports.ErrorResponse
// @Failure      500   {object}  ports.ErrorResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c, "login")
	}

	resp := h.gateway.Login(c.Request().Context(), req)
	if resp.Status == http.StatusOK {
		metrics.TokensIssuedTotal.Inc()
	}
	return render(c, "login", resp)
}

// VerifyToken reports whether a token is valid and returns its claims.
//
// @Summary      Verify token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ports.VerifyTokenRequest  true  "Token to verify"
// @Success      200   {object}  ports.VerifyTokenResponse
// @Failure      400   {object}  ports.ErrorResponse
// @Failure      401   {object}  ports.ErrorResponse
// @Failure      500   {object}  ports.ErrorResponse
// @Router       /api/verify-token [post]
func (h *AuthHandler) VerifyToken(c echo.Context) error {
	var req ports.VerifyTokenRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c, "verify_token")
	}

	return render(c, "verify_token", h.gateway.VerifyToken(c.Request().Context(), req))
}

// Protected returns the caller's claims and deployment metadata.
//
// @Summary      Protected resource
// @Tags         auth
// @Produce      json
// @Param        Authorization  header    string  true  "Bearer <token> or the raw token"
// @Success      200            {object}  ports.ProtectedResponse
// @Failure      401            {object}  ports.ErrorResponse
// @Failure      500            {object}  ports.ErrorResponse
// @Router       /api/protected [get]
func (h *AuthHandler) Protected(c echo.Context) error {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	return render(c, "protected", h.gateway.Protected(c.Request().Context(), authz))
}

// CreateUser registers a new account.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      ports.CreateUserRequest  true  "User details; role defaults to \"user\""
// @Success      201   {object}  ports.CreateUserResponse
// @Failure      400   {object}  ports.ErrorResponse
// @Failure      500   {object}  ports.ErrorResponse
// @Router       /api/users [post]
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req ports.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c, "create_user")
	}

	resp := h.gateway.CreateUser(c.Request().Context(), req)
	if body, ok := resp.Body.(ports.CreateUserResponse); ok {
		metrics.UsersCreatedTotal.WithLabelValues(body.User.Role).Inc()
	}
	return render(c, "create_user", resp)
}

func render(c echo.Context, op string, resp ports.Response) error {
	metrics.RequestsTotal.WithLabelValues(op, strconv.Itoa(resp.Status)).Inc()
	return c.JSON(resp.Status, resp.Body)
}

func invalidPayload(c echo.Context, op string) error {
	return render(c, op, ports.Response{
		Status: http.StatusBadRequest,
		Body:   ports.ErrorResponse{Error: msgInvalidPayload, Timestamp: time.Now().UTC()},
	})
}
