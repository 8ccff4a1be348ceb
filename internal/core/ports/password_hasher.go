package ports

import "context"

// PasswordHasher produces and checks salted one-way password hashes.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	// Compare reports whether password matches hash. A mismatch is not an error.
	Compare(ctx context.Context, hash, password string) (bool, error)
}
