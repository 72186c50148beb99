package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	apperrors "storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/common/timeutil"
	"storyfeed-backend/internal/common/validation"
	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/catalog/models"
	"storyfeed-backend/internal/features/catalog/repository"
	"storyfeed-backend/internal/platform/store"
)

const (
	// Ограничение на количество одновременных запросов историй по категориям
	MaxCategoryWorkers = 5

	// Сколько опубликованных историй прикладывать к категории
	StoriesPerCategory = 50
)

type catalogService struct {
	categories repository.CategoryRepository
	stories    repository.StoryRepository
	now        timeutil.Clock
}

func NewCatalogService(categories repository.CategoryRepository, stories repository.StoryRepository, clock timeutil.Clock) CatalogService {
	if clock == nil {
		clock = timeutil.Now
	}
	return &catalogService{
		categories: categories,
		stories:    stories,
		now:        clock,
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, input models.CreateCategoryRequest) (*models.Category, error) {
	if err := validation.ValidateText(models.FieldName, input.Name, validation.MaxNameLength); err != nil {
		return nil, err
	}
	if err := validation.ValidateText(models.FieldType, input.Type, validation.MaxNameLength); err != nil {
		return nil, err
	}

	now := timeutil.NewTimestamp(s.now())
	category := &models.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Type:        strings.TrimSpace(input.Type),
		AuthorGroup: input.AuthorGroup,
		Language:    languageOrDefault(input.Language),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.categories.Create(ctx, category)
	if err != nil {
		return nil, apperrors.NewInternalError("create category", err)
	}
	category.ID = id

	logger.Info().Str("category_id", id).Str("name", category.Name).Msg("Category created")
	return category, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperrors.NewNotFoundError("category", id)
		}
		return nil, apperrors.NewInternalError("get category", err)
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context, language string, includeStories bool, limit, offset int) (*models.CategoriesResponse, error) {
	limit, offset = validation.NormalizePage(limit, offset)

	categories, err := s.categories.List(ctx, language, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("list categories", err)
	}

	out := make([]*models.CategoryWithStories, len(categories))
	for i, c := range categories {
		out[i] = &models.CategoryWithStories{Category: c}
	}
	if includeStories {
		if err := s.attachStories(ctx, out); err != nil {
			return nil, err
		}
	}
	return &models.CategoriesResponse{Categories: out, Limit: limit, Offset: offset, Count: len(out)}, nil
}

// attachStories loads the published stories of every category concurrently.
func (s *catalogService) attachStories(ctx context.Context, entries []*models.CategoryWithStories) error {
	semaphore := make(chan struct{}, MaxCategoryWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, entry := range entries {
		wg.Add(1)
		go func(entry *models.CategoryWithStories) {
			defer wg.Done()
			fail := func(err error) {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				fail(ctx.Err())
				return
			}
			// Both select cases can be ready once the deadline passes.
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}

			stories, err := s.stories.List(ctx, models.StoryFilter{
				CategoryID: entry.ID,
				Status:     models.StoryStatusPublished,
			}, StoriesPerCategory, 0)
			if err != nil {
				fail(err)
				return
			}
			entry.Stories = stories
		}(entry)
	}
	wg.Wait()

	if firstErr != nil {
		return apperrors.NewInternalError("list category stories", firstErr)
	}
	return nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, input models.UpdateCategoryRequest) (*models.Category, error) {
	if input.Empty() {
		return nil, apperrors.NewValidationError("body", "no valid fields to update")
	}

	fields := store.Record{models.FieldUpdatedAt: timeutil.NewTimestamp(s.now())}
	if input.Name != nil {
		if err := validation.ValidateText(models.FieldName, *input.Name, validation.MaxNameLength); err != nil {
			return nil, err
		}
		fields[models.FieldName] = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		if err := validation.ValidateText(models.FieldType, *input.Type, validation.MaxNameLength); err != nil {
			return nil, err
		}
		fields[models.FieldType] = strings.TrimSpace(*input.Type)
	}
	if input.Description != nil {
		fields[models.FieldDescription] = *input.Description
	}
	if input.AuthorGroup != nil {
		fields[models.FieldAuthorGroup] = *input.AuthorGroup
	}
	if input.Language != nil {
		fields[models.FieldLanguage] = languageOrDefault(*input.Language)
	}

	if err := s.categories.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperrors.NewNotFoundError("category", id)
		}
		return nil, apperrors.NewInternalError("update category", err)
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes only the category; its stories keep their category_id.
func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperrors.NewNotFoundError("category", id)
		}
		return apperrors.NewInternalError("delete category", err)
	}
	logger.Info().Str("category_id", id).Msg("Category deleted")
	return nil
}

func (s *catalogService) CreateStory(ctx context.Context, actor access.Identity, input models.CreateStoryRequest) (*models.Story, error) {
	if err := validation.ValidateText(models.FieldTitle, input.Title, validation.MaxTitleLength); err != nil {
		return nil, err
	}
	if err := validation.ValidateText(models.FieldContent, input.Content, validation.MaxContentLength); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = models.StoryStatusDraft
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	if err := validateMediaURL(models.FieldImageURL, input.ImageURL); err != nil {
		return nil, err
	}
	if err := validateMediaURL(models.FieldAudioURL, input.AudioURL); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = actor.UserID
	}

	now := timeutil.NewTimestamp(s.now())
	story := &models.Story{
		Author:     author,
		Title:      strings.TrimSpace(input.Title),
		Content:    input.Content,
		Language:   languageOrDefault(input.Language),
		CategoryID: input.CategoryID,
		Status:     status,
		ImageURL:   input.ImageURL,
		AudioURL:   input.AudioURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	id, err := s.stories.Create(ctx, story)
	if err != nil {
		return nil, apperrors.NewInternalError("create story", err)
	}
	story.ID = id

	logger.Info().Str("story_id", id).Str("author", author).Str("status", string(status)).Msg("Story created")
	return story, nil
}

func (s *catalogService) GetStory(ctx context.Context, id string) (*models.Story, error) {
	story, err := s.stories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			return nil, apperrors.NewNotFoundError("story", id)
		}
		return nil, apperrors.NewInternalError("get story", err)
	}
	return story, nil
}

func (s *catalogService) ListStories(ctx context.Context, f models.StoryFilter, limit, offset int) (*models.StoriesResponse, error) {
	if f.Status != "" {
		if err := validateStatus(f.Status); err != nil {
			return nil, err
		}
	}
	limit, offset = validation.NormalizePage(limit, offset)

	stories, err := s.stories.List(ctx, f, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("list stories", err)
	}
	return &models.StoriesResponse{Stories: stories, Limit: limit, Offset: offset, Count: len(stories)}, nil
}

func (s *catalogService) UpdateStory(ctx context.Context, id string, input models.UpdateStoryRequest) (*models.Story, error) {
	if input.Empty() {
		return nil, apperrors.NewValidationError("body", "no valid fields to update")
	}

	fields := store.Record{models.FieldUpdatedAt: timeutil.NewTimestamp(s.now())}
	if input.Title != nil {
		if err := validation.ValidateText(models.FieldTitle, *input.Title, validation.MaxTitleLength); err != nil {
			return nil, err
		}
		fields[models.FieldTitle] = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		if err := validation.ValidateText(models.FieldContent, *input.Content, validation.MaxContentLength); err != nil {
			return nil, err
		}
		fields[models.FieldContent] = *input.Content
	}
	if input.Author != nil {
		if err := validation.ValidateText(models.FieldAuthor, *input.Author, validation.MaxNameLength); err != nil {
			return nil, err
		}
		fields[models.FieldAuthor] = strings.TrimSpace(*input.Author)
	}
	if input.Status != nil {
		if err := validateStatus(*input.Status); err != nil {
			return nil, err
		}
		fields[models.FieldStatus] = string(*input.Status)
	}
	if input.Language != nil {
		fields[models.FieldLanguage] = languageOrDefault(*input.Language)
	}
	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		fields[models.FieldCategoryID] = *input.CategoryID
	}
	if input.ImageURL != nil {
		if err := validateMediaURL(models.FieldImageURL, *input.ImageURL); err != nil {
			return nil, err
		}
		fields[models.FieldImageURL] = *input.ImageURL
	}
	if input.AudioURL != nil {
		if err := validateMediaURL(models.FieldAudioURL, *input.AudioURL); err != nil {
			return nil, err
		}
		fields[models.FieldAudioURL] = *input.AudioURL
	}

	if err := s.stories.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			return nil, apperrors.NewNotFoundError("story", id)
		}
		return nil, apperrors.NewInternalError("update story", err)
	}
	return s.GetStory(ctx, id)
}

func (s *catalogService) DeleteStory(ctx context.Context, id string) error {
	if err := s.stories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			return apperrors.NewNotFoundError("story", id)
		}
		return apperrors.NewInternalError("delete story", err)
	}
	logger.Info().Str("story_id", id).Msg("Story deleted")
	return nil
}

// checkCategory accepts an empty id; a non-empty one must name a category.
func (s *catalogService) checkCategory(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperrors.NewValidationError(models.FieldCategoryID, "unknown category")
		}
		return apperrors.NewInternalError("get category", err)
	}
	return nil
}

func validateStatus(status models.StoryStatus) error {
	if status.Valid() {
		return nil
	}
	return validation.ValidateOneOf(models.FieldStatus, string(status),
		string(models.StoryStatusDraft), string(models.StoryStatusPublished), string(models.StoryStatusArchived))
}

func validateMediaURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewValidationError(field, "must be an http(s) URL")
	}
	return nil
}

func languageOrDefault(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return models.DefaultLanguage
	}
	return language
}
