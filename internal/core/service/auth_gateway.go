package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
	"github.com/jnfpayroll/auth-api/internal/core/ports"
)

// bcrypt ignores input past 72 bytes, so longer passwords are refused at
// registration instead of being silently truncated.
const maxPasswordBytes = 72

const bearerPrefix = "Bearer "

const (
	msgLoginFieldsRequired  = "Username and password are required"
	msgInvalidCredentials   = "Invalid credentials"
	msgTokenRequired        = "Token required"
	msgInvalidToken         = "Invalid or expired token"
	msgCreateFieldsRequired = "Username, password, and email are required"
	msgUserExists           = "User already exists"
	msgPasswordTooLong      = "Password must be at most 72 bytes"
	msgLoginSuccessful      = "Login successful"
	msgUserCreated          = "User created successfully"
	msgBackendStatus        = "Connected successfully!"
)

// AuthGateway implements ports.AuthGateway. It holds no per-request state.
type AuthGateway struct {
	store      ports.CredentialStore
	tokens     ports.TokenService
	validate   *validator.Validate
	deployment ports.DeploymentInfo
	tokenTTL   time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

func NewAuthGateway(
	store ports.CredentialStore,
	tokens ports.TokenService,
	deployment ports.DeploymentInfo,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthGateway {
	return &AuthGateway{
		store:      store,
		tokens:     tokens,
		validate:   validator.New(),
		deployment: deployment,
		tokenTTL:   tokenTTL,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

func (g *AuthGateway) Login(ctx context.Context, req ports.LoginRequest) (resp ports.Response) {
	defer g.recoverInto(&resp, "Login")

	if err := g.validate.Struct(req); err != nil {
		return g.fail(http.StatusBadRequest, msgLoginFieldsRequired)
	}

	user, err := g.store.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return g.internal("Login", err)
	}
	if user == nil {
		g.log.Info().Str("username", req.Username).Msg("login rejected")
		return g.fail(http.StatusUnauthorized, msgInvalidCredentials)
	}

	token, err := g.tokens.Issue(user, g.tokenTTL)
	if err != nil {
		return g.internal("Login", err)
	}

	g.log.Info().Str("username", user.Username).Msg("login succeeded")
	return ports.Response{
		Status: http.StatusOK,
		Body: ports.LoginResponse{
			Success:   true,
			Message:   msgLoginSuccessful,
			Token:     token,
			User:      user.Public(),
			Timestamp: g.now(),
		},
	}
}

func (g *AuthGateway) VerifyToken(_ context.Context, req ports.VerifyTokenRequest) (resp ports.Response) {
	defer g.recoverInto(&resp, "Token verification")

	if err := g.validate.Struct(req); err != nil {
		return g.fail(http.StatusBadRequest, msgTokenRequired)
	}

	claims := g.tokens.Verify(req.Token)
	if claims == nil {
		return g.fail(http.StatusUnauthorized, msgInvalidToken)
	}

	return ports.Response{
		Status: http.StatusOK,
		Body: ports.VerifyTokenResponse{
			Valid:     true,
			User:      claims.Public(),
			Timestamp: g.now(),
		},
	}
}

// Protected authorises a request from its Authorization header value.
func (g *AuthGateway) Protected(_ context.Context, authorization string) (resp ports.Response) {
	defer g.recoverInto(&resp, "Protected access")

	if authorization == "" {
		return g.fail(http.StatusUnauthorized, msgTokenRequired)
	}

	claims := g.tokens.Verify(ExtractToken(authorization))
	if claims == nil {
		return g.fail(http.StatusUnauthorized, msgInvalidToken)
	}

	return ports.Response{
		Status: http.StatusOK,
		Body: ports.ProtectedResponse{
			Message:        fmt.Sprintf("Welcome %s! This is a protected route.", claims.Username),
			User:           claims.Public(),
			BackendStatus:  msgBackendStatus,
			DeploymentInfo: g.deployment,
			Timestamp:      g.now(),
		},
	}
}

func (g *AuthGateway) CreateUser(ctx context.Context, req ports.CreateUserRequest) (resp ports.Response) {
	defer g.recoverInto(&resp, "User creation")

	if err := g.validate.Struct(req); err != nil {
		return g.fail(http.StatusBadRequest, msgCreateFieldsRequired)
	}
	if len(req.Password) > maxPasswordBytes {
		return g.fail(http.StatusBadRequest, msgPasswordTooLong)
	}

	user, err := g.store.Create(ctx, req.Username, req.Password, req.Email, req.Role)
	if errors.Is(err, domain.ErrUserExists) {
		return g.fail(http.StatusBadRequest, msgUserExists)
	}
	if err != nil {
		return g.internal("User creation", err)
	}

	return ports.Response{
		Status: http.StatusCreated,
		Body: ports.CreateUserResponse{
			Success:   true,
			Message:   msgUserCreated,
			User:      user.Public(),
			Timestamp: g.now(),
		},
	}
}

// ExtractToken strips a "Bearer " scheme prefix when present; any other
// header value is taken to be the raw token.
func ExtractToken(authorization string) string {
	if token, ok := strings.CutPrefix(authorization, bearerPrefix); ok {
		return token
	}
	return authorization
}

func (g *AuthGateway) fail(status int, msg string) ports.Response {
	return ports.Response{
		Status: status,
		Body:   ports.ErrorResponse{Error: msg, Timestamp: g.now()},
	}
}

func (g *AuthGateway) internal(op string, err error) ports.Response {
	g.log.Error().Err(err).Str("operation", op).Msg("gateway operation failed")
	return g.fail(http.StatusInternalServerError, fmt.Sprintf("%s failed: %v", op, err))
}

func (g *AuthGateway) recoverInto(resp *ports.Response, op string) {
	if r := recover(); r != nil {
		*resp = g.internal(op, fmt.Errorf("%v", r))
	}
}
