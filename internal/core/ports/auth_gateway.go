package ports

import (
	"context"
	"time"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
)

// Response is the outcome of a gateway operation: an HTTP-equivalent status
// and the body to render.
type Response struct {
	Status int
	Body   any
}

// AuthGateway orchestrates the authentication flows. Every call returns a
// Response; there is no error path.
type AuthGateway interface {
	Login(ctx context.Context, req LoginRequest) Response
	VerifyToken(ctx context.Context, req VerifyTokenRequest) Response
	Protected(ctx context.Context, authorization string) Response
	CreateUser(ctx context.Context, req CreateUserRequest) Response
}

// --- Requests ---

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Role     string `json:"role,omitempty"`
}

// --- Responses ---

type ErrorResponse struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

type LoginResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Token     string            `json:"token"`
	User      domain.PublicUser `json:"user"`
	Timestamp time.Time         `json:"timestamp"`
}

type VerifyTokenResponse struct {
	Valid     bool              `json:"valid"`
	User      domain.PublicUser `json:"user"`
	Timestamp time.Time         `json:"timestamp"`
}

// DeploymentInfo is informational metadata about the serving environment.
type DeploymentInfo struct {
	Environment  string `json:"environment"`
	GoVersion    string `json:"go_version"`
	Framework    string `json:"framework"`
	Frontend     string `json:"frontend"`
	Architecture string `json:"architecture"`
}

type ProtectedResponse struct {
	Message        string            `json:"message"`
	User           domain.PublicUser `json:"user"`
	BackendStatus  string            `json:"backend_status"`
	DeploymentInfo DeploymentInfo    `json:"deployment_info"`
	Timestamp      time.Time         `json:"timestamp"`
}

type CreateUserResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	User      domain.PublicUser `json:"user"`
	Timestamp time.Time         `json:"timestamp"`
}

type ListUsersResponse struct {
	Users     []domain.PublicUser `json:"users"`
	Count     int                 `json:"count"`
	Timestamp time.Time           `json:"timestamp"`
}
