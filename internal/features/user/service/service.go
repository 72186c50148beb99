package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/common/validation"
	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/user/mapper"
	"storyfeed-backend/internal/features/user/models"
	"storyfeed-backend/internal/features/user/repository"
	"storyfeed-backend/internal/platform/store"
)

type Config struct {
	BcryptCost int
	StatsTTL   time.Duration
	Clock      timeutil.Clock
}

type userService struct {
	repo          repository.UserRepository
	cache         StatsCache
	subscriptions SubscriptionCounter
	shares        ShareCounter
	bcryptCost    int
	statsTTL      time.Duration
	now           timeutil.Clock
}

// NewUserService wires the user service. cache, subscriptions and shares may be nil.
func NewUserService(
	repo repository.UserRepository,
	cache StatsCache,
	subscriptions SubscriptionCounter,
	shares ShareCounter,
	cfg Config,
) UserService {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.Now
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		repo:          repo,
		cache:         cache,
		subscriptions: subscriptions,
		shares:        shares,
		bcryptCost:    cfg.BcryptCost,
		statsTTL:      cfg.StatsTTL,
		now:           cfg.Clock,
	}
}

func (s *userService) Register(ctx context.Context, input models.RegisterRequest) (*models.UserResponse, error) {
	return s.createUser(ctx, input.Email, input.Password, input.Name, access.DefaultRole)
}

func (s *userService) CreateUser(ctx context.Context, actor access.Identity, input models.CreateUserRequest) (*models.UserResponse, error) {
	if !access.CanManageUsers(actor.Role, access.ActionCreate, actor.UserID, "") {
		return nil, apperrors.NewForbiddenError("insufficient permissions to create users")
	}

	role := input.Role
	if role == "" {
		role = access.DefaultRole
	}
	if !role.Valid() {
		return nil, invalidRole(role)
	}
	if role != access.DefaultRole && !access.CanUpdateRole(actor.Role, role) {
		return nil, apperrors.NewForbiddenError("insufficient permissions to assign role").WithDetail("role", role)
	}

	return s.createUser(ctx, input.Email, input.Password, input.Name, role)
}

func (s *userService) CreateAdmin(ctx context.Context, email, password, name string) (*models.UserResponse, error) {
	return s.createUser(ctx, email, password, name, access.RoleAdmin)
}

func (s *userService) createUser(ctx context.Context, email, password, name string, role access.Role) (*models.UserResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflictError("user", "email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperrors.NewInternalError("lookup user by email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("hash password", err)
	}

	now := timeutil.NewTimestamp(s.now())
	user := &models.User{
		Email:     email,
		Password:  string(hash),
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, apperrors.NewInternalError("create user", err)
	}
	user.ID = id

	logger.Info().Str("user_id", id).Str("role", role.String()).Msg("User created")
	return mapper.ToUserResponse(user), nil
}

func (s *userService) GetUser(ctx context.Context, actor access.Identity, id string) (*models.UserResponse, error) {
	if !access.CanManageUsers(actor.Role, access.ActionRead, actor.UserID, id) {
		return nil, apperrors.NewForbiddenError("insufficient permissions to read user")
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, actor access.Identity, search string, limit, offset int) (*models.UsersResponse, error) {
	if !access.CanManageUsers(actor.Role, access.ActionList, actor.UserID, "") {
		return nil, apperrors.NewForbiddenError("insufficient permissions to list users")
	}
	limit, offset = validation.NormalizePage(limit, offset)

	users, err := s.repo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("list users", err)
	}
	return &models.UsersResponse{
		Users:  mapper.ToUserResponses(users),
		Limit:  limit,
		Offset: offset,
		Count:  len(users),
	}, nil
}

// UpdateUser applies a partial update. A role change is checked against both
// the target's current role and the requested one; other fields follow the
// ownership rule.
func (s *userService) UpdateUser(ctx context.Context, actor access.Identity, id string, input models.UpdateUserRequest) (*models.UserResponse, error) {
	if input.Empty() {
		return nil, apperrors.NewValidationError("body", "no valid fields to update")
	}

	target, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := store.Record{}
	if input.Role != nil {
		role := *input.Role
		if !role.Valid() {
			return nil, invalidRole(role)
		}
		if !access.CanUpdateRole(actor.Role, target.Role) || !access.CanUpdateRole(actor.Role, role) {
			return nil, apperrors.NewForbiddenError("insufficient permissions to update role").
				WithDetail("current_role", target.Role).
				WithDetail("requested_role", role)
		}
		fields[models.FieldRole] = role
	}

	if input.Name != nil || input.Password != nil {
		if !access.CanManageUsers(actor.Role, access.ActionUpdate, actor.UserID, id) {
			return nil, apperrors.NewForbiddenError("insufficient permissions to update user")
		}
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, err
		}
		fields[models.FieldName] = name
	}
	if input.Password != nil {
		if err := validation.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError("hash password", err)
		}
		fields[models.FieldPassword] = string(hash)
	}
	fields[models.FieldUpdatedAt] = timeutil.NewTimestamp(s.now())

	if err := s.update(ctx, id, fields); err != nil {
		return nil, err
	}
	updated, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToUserResponse(updated), nil
}

func (s *userService) DeleteUser(ctx context.Context, actor access.Identity, id string) error {
	target, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanDeleteUser(actor.Role, target.Role, actor.UserID == id) {
		return apperrors.NewForbiddenError("insufficient permissions to delete user").
			WithDetail("target_role", target.Role)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", id)
		}
		return apperrors.NewInternalError("delete user", err)
	}
	logger.Info().Str("user_id", id).Str("deleted_by", actor.UserID).Msg("User deleted")
	return nil
}

// GetMe returns the caller and records the visit as a login for activity metrics.
func (s *userService) GetMe(ctx context.Context, id string) (*models.UserResponse, error) {
	if err := s.TouchLastLogin(ctx, id); err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToUserResponse(user), nil
}

func (s *userService) SetOwner(ctx context.Context, id string) (*models.UserResponse, error) {
	if _, err := s.getUser(ctx, id); err != nil {
		return nil, err
	}
	err := s.update(ctx, id, store.Record{
		models.FieldRole:      access.RoleOwner,
		models.FieldUpdatedAt: timeutil.NewTimestamp(s.now()),
	})
	if err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", id).Msg("Owner assigned")
	return mapper.ToUserResponse(user), nil
}

func (s *userService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, apperrors.NewInternalError("lookup user by email", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}
	return user, nil
}

func (s *userService) TouchLastLogin(ctx context.Context, id string) error {
	return s.update(ctx, id, store.Record{models.FieldLastLoginAt: timeutil.NewTimestamp(s.now())})
}

func (s *userService) GetIdentity(ctx context.Context, id string) (access.Identity, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return access.Identity{}, err
	}
	return access.Identity{UserID: user.ID, Role: user.Role}, nil
}

func (s *userService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", id)
		}
		return nil, apperrors.NewInternalError("get user", err)
	}
	return user, nil
}

func (s *userService) update(ctx context.Context, id string, fields store.Record) error {
	if err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", id)
		}
		return apperrors.NewInternalError("update user", err)
	}
	return nil
}

func invalidRole(role access.Role) error {
	roles := access.Roles()
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return validation.ValidateOneOf("role", role.String(), names...)
}
