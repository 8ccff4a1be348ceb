package redis

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
)

// Runs against a live server only when REDIS_TEST_ADDR is set. The test
// database is flushed before and after.
func newTestRepo(t *testing.T) *UserRepository {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client, err := Connect(context.Background(), Config{Addr: addr, DB: 15})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	_ = client.FlushDB(context.Background()).Err()
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return NewUserRepository(client)
}

func TestUserRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &domain.User{
		ID:           "u-1",
		Username:     "alice",
		PasswordHash: "hash",
		Email:        "alice@example.com",
		Role:         domain.RoleUser,
		CreatedAt:    time.Unix(1700000000, 0).UTC(),
	}
	if err := repo.Insert(ctx, user); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, user); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if *got != *user {
		t.Fatalf("expected %+v, got %+v", user, got)
	}

	if _, err := repo.FindByUsername(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	users, err := repo.List(ctx)
	if err != nil || len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("unexpected list: %v, %v", users, err)
	}
}

func TestUserRepository_ConcurrentInsertIndexedOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const n = 8
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Insert(ctx, &domain.User{ID: "u", Username: "bob", PasswordHash: "h", Role: domain.RoleUser})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrUserExists):
				conflicts.Add(1)
			default:
				t.Errorf("insert: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 || conflicts.Load() != n-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d/%d", n-1, successes.Load(), conflicts.Load())
	}
	members, err := repo.client.SMembers(ctx, usersIndexKey).Result()
	if err != nil || len(members) != 1 || members[0] != "bob" {
		t.Fatalf("unexpected index: %v, %v", members, err)
	}
}

func TestUserRepository_ConflictingInsertIndexesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// A record left unindexed by an older write is repaired by the next insert
	// attempt for the same name.
	if err := repo.client.Set(ctx, repo.key("carol"), `{"username":"carol"}`, 0).Err(); err != nil {
		t.Fatalf("seed key: %v", err)
	}
	if err := repo.Insert(ctx, &domain.User{ID: "c", Username: "carol"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	users, err := repo.List(ctx)
	if err != nil || len(users) != 1 || users[0].Username != "carol" {
		t.Fatalf("expected carol to be listed, got %v, %v", users, err)
	}
}

func TestDecodeUser_Invalid(t *testing.T) {
	if _, err := decodeUser([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
