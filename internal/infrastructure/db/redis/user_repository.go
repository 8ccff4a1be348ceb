package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
)

// Key format: user:<username>; the set "users" indexes all usernames.
const (
	userKeyPrefix = "user:"
	usersIndexKey = "users"
)

// UserRepository stores each user as a JSON document under its own key.
// SETNX makes the existence check and the write a single atomic step.
type UserRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client}
}

type redisUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	CreatedAt    int64  `json:"created_at"`
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	payload, err := json.Marshal(redisUser{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Email:        user.Email,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	// SETNX and the index update commit together. SADD is idempotent, so
	// running it when the name is taken only re-indexes the existing user.
	var created *redis.BoolCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, r.key(user.Username), payload, 0)
		pipe.SAdd(ctx, usersIndexKey, user.Username)
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if !created.Val() {
		return domain.ErrUserExists
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	raw, err := r.client.Get(ctx, r.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return decodeUser(raw)
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	names, err := r.client.SMembers(ctx, usersIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(names) == 0 {
		return []*domain.User{}, nil
	}
	sort.Strings(names)

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = r.key(n)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*domain.User, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		u, err := decodeUser([]byte(s))
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *UserRepository) key(username string) string {
	return userKeyPrefix + username
}

func decodeUser(raw []byte) (*domain.User, error) {
	var ru redisUser
	if err := json.Unmarshal(raw, &ru); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	u := &domain.User{
		ID:           ru.ID,
		Username:     ru.Username,
		PasswordHash: ru.PasswordHash,
		Email:        ru.Email,
		Role:         ru.Role,
	}
	if ru.CreatedAt != 0 {
		u.CreatedAt = time.Unix(ru.CreatedAt, 0).UTC()
	}
	return u, nil
}
