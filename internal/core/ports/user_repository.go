package ports

import (
	"context"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
)

// UserRepository is the persistence boundary of the credential store.
// Insert must be atomic with respect to the username: of two concurrent
// inserts for the same name exactly one succeeds, the other gets
// domain.ErrUserExists.
type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Ping(ctx context.Context) error
}
