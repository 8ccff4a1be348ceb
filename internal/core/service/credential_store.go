package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
	"github.com/jnfpayroll/auth-api/internal/core/ports"
)

// dummyPassword is hashed once and compared against when the username is
// unknown, so both authentication failure paths do the same work.
const dummyPassword = "dummy-password-for-timing"

// CredentialStore implements ports.CredentialStore on top of a UserRepository
// and a PasswordHasher.
type CredentialStore struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time

	dummyMu   sync.Mutex
	dummyHash string
}

func NewCredentialStore(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{
		repo:   repo,
		hasher: hasher,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Create hashes password and stores a new user. It returns
// domain.ErrUserExists when username is taken, including when a concurrent
// Create for the same name wins the insert.
func (s *CredentialStore) Create(ctx context.Context, username, password, email, role string) (*domain.User, error) {
	if role == "" {
		role = domain.DefaultRole
	}

	// Cheap pre-check so duplicates don't pay for a bcrypt round.
	existing, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		Role:         role,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("username", username).Str("role", role).Msg("user created")
	return user, nil
}

// Authenticate returns the user when password matches, and nil for both an
// unknown username and a wrong password.
func (s *CredentialStore) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil {
		s.compareDummy(ctx, password)
		return nil, nil
	}

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (s *CredentialStore) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Warmup prepares the hash compared against for unknown usernames so the
// first failed login does not pay for an extra hashing round.
func (s *CredentialStore) Warmup(ctx context.Context) error {
	if _, err := s.dummy(ctx); err != nil {
		return fmt.Errorf("prepare dummy hash: %w", err)
	}
	return nil
}

// dummy returns the cached dummy hash, computing it on first use. A failed
// attempt is not cached and the next caller retries.
func (s *CredentialStore) dummy(ctx context.Context) (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash != "" {
		return s.dummyHash, nil
	}
	hash, err := s.hasher.Hash(ctx, dummyPassword)
	if err != nil {
		return "", err
	}
	s.dummyHash = hash
	return hash, nil
}

func (s *CredentialStore) compareDummy(ctx context.Context, password string) {
	// Detached from the request so a cancelled caller cannot leave it unset.
	hash, err := s.dummy(context.WithoutCancel(ctx))
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to prepare dummy hash")
		return
	}
	_, _ = s.hasher.Compare(ctx, hash, password)
}
