package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
	"github.com/jnfpayroll/auth-api/internal/core/ports"
)

type seedUser struct {
	username string
	password string
	email    string
	role     string
}

var defaultUsers = []seedUser{
	{username: "admin", password: "password123", email: "admin@jnfpayroll.com", role: domain.RoleAdmin},
	{username: "demo", password: "demo123", email: "demo@jnfpayroll.com", role: domain.RoleUser},
}

// Seed creates the default accounts. Accounts that already exist are left
// untouched, so it is safe to run on every start.
func Seed(ctx context.Context, store ports.CredentialStore, log zerolog.Logger) error {
	for _, u := range defaultUsers {
		_, err := store.Create(ctx, u.username, u.password, u.email, u.role)
		switch {
		case err == nil:
			log.Info().Str("username", u.username).Str("role", u.role).Msg("seeded user")
		case errors.Is(err, domain.ErrUserExists):
			log.Debug().Str("username", u.username).Msg("seed user already present")
		default:
			return fmt.Errorf("seed %s: %w", u.username, err)
		}
	}
	return nil
}
