package models

import (
	"storyfeed-backend/internal/common/timeutil"
)

type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "draft"
	StoryStatusPublished StoryStatus = "published"
	StoryStatusArchived  StoryStatus = "archived"
)

func (s StoryStatus) Valid() bool {
	switch s {
	case StoryStatusDraft, StoryStatusPublished, StoryStatusArchived:
		return true
	}
	return false
}

const DefaultLanguage = "en"

// Field names as stored in the categories and stories collections.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldType        = "type"
	FieldAuthorGroup = "author_group"
	FieldLanguage    = "language"
	FieldAuthor      = "author"
	FieldTitle       = "title"
	FieldContent     = "content"
	FieldCategoryID  = "category_id"
	FieldStatus      = "status"
	FieldImageURL    = "image_url"
	FieldAudioURL    = "audio_url"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
)

type Category struct {
	ID          string             `json:"id"`
	Name        string             `json:"name" example:"Fables"`
	Description string             `json:"description"`
	Type        string             `json:"type" example:"short"`
	AuthorGroup string             `json:"author_group"`
	Language    string             `json:"language" example:"en"`
	CreatedAt   timeutil.Timestamp `json:"created_at" swaggertype:"string"`
	UpdatedAt   timeutil.Timestamp `json:"updated_at" swaggertype:"string"`
}

// Story belongs to at most one category. Deleting the category leaves the
// story with a dangling category_id.
type Story struct {
	ID         string             `json:"id"`
	Author     string             `json:"author"`
	Title      string             `json:"title" example:"The Fox and the Grapes"`
	Content    string             `json:"content"`
	Language   string             `json:"language" example:"en"`
	CategoryID string             `json:"category_id"`
	Status     StoryStatus        `json:"status" enums:"draft,published,archived"`
	ImageURL   string             `json:"image_url"`
	AudioURL   string             `json:"audio_url"`
	CreatedAt  timeutil.Timestamp `json:"created_at" swaggertype:"string"`
	UpdatedAt  timeutil.Timestamp `json:"updated_at" swaggertype:"string"`
}

// CategoryWithStories is a category listing entry. Stories is only set when
// the caller asked for them.
type CategoryWithStories struct {
	*Category
	Stories []*Story `json:"stories,omitempty"`
}

// StoryFilter narrows GET /stories. Empty fields are ignored.
type StoryFilter struct {
	Author     string
	Language   string
	CategoryID string
	Status     StoryStatus
}
