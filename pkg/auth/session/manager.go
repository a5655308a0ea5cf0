package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/pkg/redis"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrTokenMismatch  = errors.New("refresh token mismatch")
	ErrInvalidSession = errors.New("invalid session input")
)

const refreshTokenBytes = 32

// Store is the slice of the redis client the manager needs.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Manager issues single-active refresh sessions per user. Only a hash
// of the opaque refresh token is stored server side.
type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session manager requires a store")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// Generate mints a fresh refresh token, replacing any existing session.
func (m *Manager) Generate(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", ErrInvalidSession
	}

	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := hex.EncodeToString(buf)

	key := redis.RefreshSessionKey(userID.String())
	if err := m.store.Set(ctx, key, hashToken(token), m.ttl); err != nil {
		return "", fmt.Errorf("storing refresh session: %w", err)
	}
	return token, nil
}

// Validate checks that token is the user's current refresh token.
func (m *Manager) Validate(ctx context.Context, userID uuid.UUID, token string) error {
	if userID == uuid.Nil || token == "" {
		return ErrInvalidSession
	}

	stored, err := m.store.Get(ctx, redis.RefreshSessionKey(userID.String()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNoSession
		}
		return fmt.Errorf("loading refresh session: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashToken(token))) != 1 {
		return ErrTokenMismatch
	}
	return nil
}

// Rotate validates the presented token and replaces it with a new one.
func (m *Manager) Rotate(ctx context.Context, userID uuid.UUID, token string) (string, error) {
	if err := m.Validate(ctx, userID, token); err != nil {
		return "", err
	}
	return m.Generate(ctx, userID)
}

// Revoke removes the user's refresh session if one exists.
func (m *Manager) Revoke(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrInvalidSession
	}
	return m.store.Del(ctx, redis.RefreshSessionKey(userID.String()))
}

// HasSession reports whether the user has an active refresh session.
func (m *Manager) HasSession(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, ErrInvalidSession
	}
	return m.store.Exists(ctx, redis.RefreshSessionKey(userID.String()))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
