package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
	"github.com/jnfpayroll/auth-api/internal/infrastructure/password"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	inserts int
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return domain.ErrUserExists
	}
	r.users[user.Username] = cloneUser(user)
	r.inserts++
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) Ping(context.Context) error { return nil }

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// racyRepo hides existing users from FindByUsername so Create always reaches
// Insert, exercising the repository's uniqueness guarantee.
type racyRepo struct {
	*stubUserRepo
}

func (r racyRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

type failingHasher struct{}

func (failingHasher) Hash(context.Context, string) (string, error) {
	return "", errors.New("hasher unavailable")
}

func (failingHasher) Compare(context.Context, string, string) (bool, error) {
	return false, errors.New("hasher unavailable")
}

func newTestStore(repo *stubUserRepo) *CredentialStore {
	return NewCredentialStore(repo, password.NewBcryptHasher(bcrypt.MinCost), zerolog.Nop())
}

// flakyHasher wraps bcrypt, fails the first failHashes Hash calls and
// refuses work on a cancelled context. It counts completed compares.
type flakyHasher struct {
	inner      *password.BcryptHasher
	mu         sync.Mutex
	failHashes int
	hashCalls  int
	compares   int
}

func newFlakyHasher(failHashes int) *flakyHasher {
	return &flakyHasher{inner: password.NewBcryptHasher(bcrypt.MinCost), failHashes: failHashes}
}

func (h *flakyHasher) Hash(ctx context.Context, pw string) (string, error) {
	h.mu.Lock()
	h.hashCalls++
	fail := h.failHashes > 0
	if fail {
		h.failHashes--
	}
	h.mu.Unlock()

	if fail {
		return "", errors.New("hasher unavailable")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return h.inner.Hash(ctx, pw)
}

func (h *flakyHasher) Compare(ctx context.Context, hash, pw string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	h.mu.Lock()
	h.compares++
	h.mu.Unlock()
	return h.inner.Compare(ctx, hash, pw)
}

func (h *flakyHasher) counts() (hashes, compares int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashCalls, h.compares
}
