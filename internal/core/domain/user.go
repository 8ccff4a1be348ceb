package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	// DefaultRole is assigned when a user is created without an explicit role.
	DefaultRole = RoleUser
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
)

// User models an account in the credential store. PasswordHash never leaves
// the process: it is excluded from JSON and from PublicUser.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the client-safe projection of a User.
type PublicUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Public returns the outward-facing view of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// Claims is the identity carried by a signed token.
type Claims struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"-"`
}

// Public drops the expiry, which is not part of the client-facing user view.
func (c *Claims) Public() PublicUser {
	return PublicUser{
		Username: c.Username,
		Email:    c.Email,
		Role:     c.Role,
	}
}
