package repository

import (
	"context"
	"errors"

	"storyfeed-backend/internal/features/catalog/models"
	"storyfeed-backend/internal/platform/store"
	"storyfeed-backend/internal/platform/store/filter"
)

const (
	CategoriesCollection = "categories"
	StoriesCollection    = "stories"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrStoryNotFound    = errors.New("story not found")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) (string, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	// List returns categories ordered by name; an empty language matches all.
	List(ctx context.Context, language string, limit, offset int) ([]*models.Category, error)
	Update(ctx context.Context, id string, fields store.Record) error
	Delete(ctx context.Context, id string) error
}

type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) (string, error)
	GetByID(ctx context.Context, id string) (*models.Story, error)
	// List returns stories newest first.
	List(ctx context.Context, f models.StoryFilter, limit, offset int) ([]*models.Story, error)
	Update(ctx context.Context, id string, fields store.Record) error
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	categories *store.Collection[models.Category]
}

func NewCategoryRepository(s store.Store) CategoryRepository {
	return &categoryRepository{categories: store.NewCollection[models.Category](s, CategoriesCollection)}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) (string, error) {
	return r.categories.Insert(ctx, category)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	category, err := r.categories.Get(ctx, id)
	return category, translate(err, ErrCategoryNotFound)
}

func (r *categoryRepository) List(ctx context.Context, language string, limit, offset int) ([]*models.Category, error) {
	var f filter.Predicate
	if language != "" {
		f = filter.Eq(models.FieldLanguage, language)
	}
	return r.categories.Find(ctx, store.Query{
		Filter: f,
		Sort:   []store.Sort{{Field: models.FieldName}},
		Limit:  limit,
		Offset: offset,
	})
}

func (r *categoryRepository) Update(ctx context.Context, id string, fields store.Record) error {
	return translate(r.categories.Update(ctx, id, fields), ErrCategoryNotFound)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return translate(r.categories.Delete(ctx, id), ErrCategoryNotFound)
}

type storyRepository struct {
	stories *store.Collection[models.Story]
}

func NewStoryRepository(s store.Store) StoryRepository {
	return &storyRepository{stories: store.NewCollection[models.Story](s, StoriesCollection)}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) (string, error) {
	return r.stories.Insert(ctx, story)
}

func (r *storyRepository) GetByID(ctx context.Context, id string) (*models.Story, error) {
	story, err := r.stories.Get(ctx, id)
	return story, translate(err, ErrStoryNotFound)
}

func (r *storyRepository) List(ctx context.Context, f models.StoryFilter, limit, offset int) ([]*models.Story, error) {
	var preds []filter.Predicate
	if f.Author != "" {
		preds = append(preds, filter.Eq(models.FieldAuthor, f.Author))
	}
	if f.Language != "" {
		preds = append(preds, filter.Eq(models.FieldLanguage, f.Language))
	}
	if f.CategoryID != "" {
		preds = append(preds, filter.Eq(models.FieldCategoryID, f.CategoryID))
	}
	if f.Status != "" {
		preds = append(preds, filter.Eq(models.FieldStatus, string(f.Status)))
	}
	return r.stories.Find(ctx, store.Query{
		Filter: filter.All(preds...),
		Sort:   []store.Sort{{Field: models.FieldCreatedAt, Desc: true}},
		Limit:  limit,
		Offset: offset,
	})
}

func (r *storyRepository) Update(ctx context.Context, id string, fields store.Record) error {
	return translate(r.stories.Update(ctx, id, fields), ErrStoryNotFound)
}

func (r *storyRepository) Delete(ctx context.Context, id string) error {
	return translate(r.stories.Delete(ctx, id), ErrStoryNotFound)
}

func translate(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}
