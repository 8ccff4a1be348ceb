package ports

import (
	"context"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
)

// CredentialStore owns user records and password verification.
//
// FindByUsername and Authenticate report expected misses as a nil user with a
// nil error; only unexpected faults are returned as errors.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, username, password, email, role string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
