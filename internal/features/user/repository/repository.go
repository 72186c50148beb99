package repository

import (
	"context"
	"errors"
	"strings"

	"storyfeed-backend/internal/features/user/models"
	"storyfeed-backend/internal/platform/store"
	"storyfeed-backend/internal/platform/store/filter"
)

const Collection = "users"

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, id string, fields store.Record) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f filter.Predicate) (int64, error)
}

type userRepository struct {
	users *store.Collection[models.User]
}

func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{users: store.NewCollection[models.User](s, Collection)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (string, error) {
	return r.users.Insert(ctx, user)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := r.users.Get(ctx, id)
	return user, translate(err)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.users.FindOne(ctx, filter.Eq(models.FieldEmail, strings.ToLower(email)))
	return user, translate(err)
}

// List returns users newest first. search matches email or name.
func (r *userRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.User, error) {
	var f filter.Predicate
	if search = strings.TrimSpace(search); search != "" {
		f = filter.Any(filter.Like(models.FieldEmail, search), filter.Like(models.FieldName, search))
	}
	return r.users.Find(ctx, store.Query{
		Filter: f,
		Sort:   []store.Sort{{Field: models.FieldCreatedAt, Desc: true}},
		Limit:  limit,
		Offset: offset,
	})
}

func (r *userRepository) Update(ctx context.Context, id string, fields store.Record) error {
	return translate(r.users.Update(ctx, id, fields))
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return translate(r.users.Delete(ctx, id))
}

func (r *userRepository) Count(ctx context.Context, f filter.Predicate) (int64, error) {
	return r.users.Count(ctx, f)
}

func translate(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
