package service

import (
	"context"

	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/catalog/models"
)

// CatalogService manages categories and the stories filed under them.
// Role gates live on the routes; the service only checks input.
type CatalogService interface {
	CreateCategory(ctx context.Context, input models.CreateCategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context, language string, includeStories bool, limit, offset int) (*models.CategoriesResponse, error)
	UpdateCategory(ctx context.Context, id string, input models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateStory(ctx context.Context, actor access.Identity, input models.CreateStoryRequest) (*models.Story, error)
	GetStory(ctx context.Context, id string) (*models.Story, error)
	ListStories(ctx context.Context, f models.StoryFilter, limit, offset int) (*models.StoriesResponse, error)
	UpdateStory(ctx context.Context, id string, input models.UpdateStoryRequest) (*models.Story, error)
	DeleteStory(ctx context.Context, id string) error
}
