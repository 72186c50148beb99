package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/auth/models"
	"storyfeed-backend/internal/features/auth/repository"
	usermodels "storyfeed-backend/internal/features/user/models"
	userservice "storyfeed-backend/internal/features/user/service"
)

// AuthService issues and resolves bearer sessions. It satisfies
// middleware.Authenticator.
type AuthService interface {
	Register(ctx context.Context, input usermodels.RegisterRequest) (*models.LoginResponse, error)
	Login(ctx context.Context, input models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (access.Identity, error)
}

type authService struct {
	sessions repository.SessionRepository
	users    userservice.UserService
	ttl      time.Duration
}

func NewAuthService(sessions repository.SessionRepository, users userservice.UserService, ttl time.Duration) AuthService {
	return &authService{
		sessions: sessions,
		users:    users,
		ttl:      ttl,
	}
}

func (s *authService) Register(ctx context.Context, input usermodels.RegisterRequest) (*models.LoginResponse, error) {
	user, err := s.users.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, input models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.VerifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	// GetMe stamps last_login_at.
	profile, err := s.users.GetMe(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, profile)
}

func (s *authService) issue(ctx context.Context, user *usermodels.UserResponse) (*models.LoginResponse, error) {
	now := time.Now().UTC()
	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.NewInternalError("save session", err)
	}

	logger.Ctx(ctx).Debug().Str("user_id", user.ID).Msg("Session issued")
	return &models.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return apperrors.NewUnauthorizedError("session not found")
		}
		return apperrors.NewInternalError("delete session", err)
	}
	return nil
}

// Authenticate resolves the role on every call so role changes apply to
// existing sessions immediately.
func (s *authService) Authenticate(ctx context.Context, token string) (access.Identity, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return access.Identity{}, apperrors.NewUnauthorizedError("invalid or expired session")
		}
		return access.Identity{}, apperrors.NewInternalError("get session", err)
	}

	identity, err := s.users.GetIdentity(ctx, session.UserID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
			return access.Identity{}, apperrors.NewUnauthorizedError("account no longer exists")
		}
		return access.Identity{}, err
	}
	return identity, nil
}
