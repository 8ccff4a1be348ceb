package ports

import (
	"time"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
)

type TokenService interface {
	// Issue signs a token for user valid for ttl. A non-positive ttl selects the
	// service default.
	Issue(user *domain.User, ttl time.Duration) (string, error)
	// Verify returns the claims of a well-formed, correctly signed, unexpired
	// token, or nil otherwise.
	Verify(token string) *domain.Claims
}
