package service

import (
	"context"
	"time"

	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/user/models"
)

type UserService interface {
	Register(ctx context.Context, input models.RegisterRequest) (*models.UserResponse, error)
	CreateUser(ctx context.Context, actor access.Identity, input models.CreateUserRequest) (*models.UserResponse, error)
	CreateAdmin(ctx context.Context, email, password, name string) (*models.UserResponse, error)
	GetUser(ctx context.Context, actor access.Identity, id string) (*models.UserResponse, error)
	ListUsers(ctx context.Context, actor access.Identity, search string, limit, offset int) (*models.UsersResponse, error)
	UpdateUser(ctx context.Context, actor access.Identity, id string, input models.UpdateUserRequest) (*models.UserResponse, error)
	DeleteUser(ctx context.Context, actor access.Identity, id string) error
	GetMe(ctx context.Context, id string) (*models.UserResponse, error)
	SetOwner(ctx context.Context, id string) (*models.UserResponse, error)

	VerifyCredentials(ctx context.Context, email, password string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string) error
	GetIdentity(ctx context.Context, id string) (access.Identity, error)

	GetUserStats(ctx context.Context, actor access.Identity) (*models.UserStats, error)
	AggregateUserStats(ctx context.Context) (*models.UserStats, error)
	CountNewUsers(ctx context.Context) (int64, error)
	CountActiveUsers(ctx context.Context) (int64, error)
	RetentionRate(ctx context.Context) (float64, error)
	GetStatistic(ctx context.Context) (*models.PlatformStatistic, error)
}

// StatsCache is satisfied by cache.CacheService.
type StatsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type SubscriptionCounter interface {
	CountMonthlySubscriptions(ctx context.Context) (int64, error)
}

type ShareCounter interface {
	TotalShares(ctx context.Context) (int64, error)
}
