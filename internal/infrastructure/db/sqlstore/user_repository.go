package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
)

const (
	insertUserQuery = `INSERT INTO users (id, username, password_hash, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (username) DO NOTHING`

	findUserQuery = `SELECT id, username, password_hash, email, role, created_at
		FROM users WHERE username = ?`

	listUsersQuery = `SELECT id, username, password_hash, email, role, created_at
		FROM users ORDER BY username`
)

type UserRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

// Insert relies on the UNIQUE constraint: a conflicting insert affects no
// rows and is reported as domain.ErrUserExists.
func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(insertUserQuery),
		user.ID, user.Username, user.PasswordHash, user.Email, user.Role, user.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert user: rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrUserExists
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(findUserQuery), username)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		u         domain.User
		createdAt int64
	)
	if err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.Role, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}
