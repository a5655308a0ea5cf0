package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/internal/users"
	"github.com/minhlong-dev/industro-backend/pkg/auth/session"
	"github.com/minhlong-dev/industro-backend/pkg/db"
	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
	apperrors "github.com/minhlong-dev/industro-backend/pkg/errors"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
	"github.com/minhlong-dev/industro-backend/pkg/security"
)

// UserStore is the slice of the users repo the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// TokenMinter issues access tokens.
type TokenMinter interface {
	Mint(userID uuid.UUID, role enums.UserRole) (string, error)
}

// SessionManager manages refresh sessions.
type SessionManager interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, error)
	Rotate(ctx context.Context, userID uuid.UUID, token string) (string, error)
	Revoke(ctx context.Context, userID uuid.UUID) error
}

// Service implements register, login, token refresh and logout.
type Service struct {
	store    UserStore
	tokens   TokenMinter
	sessions SessionManager
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(store UserStore, tokens TokenMinter, sessions SessionManager, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("auth service requires a user store")
	}
	if tokens == nil {
		return nil, fmt.Errorf("auth service requires a token minter")
	}
	if sessions == nil {
		return nil, fmt.Errorf("auth service requires a session manager")
	}
	if logg == nil {
		return nil, fmt.Errorf("auth service requires a logger")
	}

	return &Service{
		store:    store,
		tokens:   tokens,
		sessions: sessions,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Register creates a customer account and signs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "password does not meet requirements")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		user.Phone = &phone
	}

	if err := s.store.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "email is already registered")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating user")
	}

	ctx = s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(ctx, "user registered")

	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.store.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading user")
	}

	if !security.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, apperrors.New(apperrors.CodeForbidden, "account is disabled")
	}

	loginAt := s.now()
	if err := s.store.TouchLastLogin(ctx, user.ID, loginAt); err != nil {
		// A failed timestamp write should not block sign-in.
		s.logg.Warn(ctx, "failed to record last login")
	} else {
		user.LastLoginAt = &loginAt
	}

	ctx = s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(ctx, "user logged in")

	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh session and mints a new access token.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	user, err := s.store.GetByID(ctx, req.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading user")
	}
	if !user.IsActive {
		return nil, apperrors.New(apperrors.CodeForbidden, "account is disabled")
	}

	rotated, err := s.sessions.Rotate(ctx, user.ID, req.RefreshToken)
	if err != nil {
		switch err {
		case session.ErrNoSession, session.ErrTokenMismatch, session.ErrInvalidSession:
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid refresh token")
		default:
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "rotating session")
		}
	}

	access, err := s.tokens.Mint(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "minting access token")
	}

	return &AuthResponse{
		Tokens: TokenPair{AccessToken: access, RefreshToken: rotated},
		User:   users.ToProfile(user),
	}, nil
}

// Logout revokes the user's refresh session.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "revoking session")
	}
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "user logged out")
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user *models.User) (*AuthResponse, error) {
	access, err := s.tokens.Mint(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "minting access token")
	}

	refresh, err := s.sessions.Generate(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "creating refresh session")
	}

	return &AuthResponse{
		Tokens: TokenPair{AccessToken: access, RefreshToken: refresh},
		User:   users.ToProfile(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
