package models

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required"`
	AuthorGroup string `json:"author_group"`
	Language    string `json:"language"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	AuthorGroup *string `json:"author_group"`
	Language    *string `json:"language"`
}

func (r UpdateCategoryRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Type == nil && r.AuthorGroup == nil && r.Language == nil
}

type CreateStoryRequest struct {
	Author     string      `json:"author"`
	Title      string      `json:"title" binding:"required"`
	Content    string      `json:"content" binding:"required"`
	Language   string      `json:"language"`
	CategoryID string      `json:"category_id"`
	Status     StoryStatus `json:"status"`
	ImageURL   string      `json:"image_url"`
	AudioURL   string      `json:"audio_url"`
}

type UpdateStoryRequest struct {
	Author     *string      `json:"author"`
	Title      *string      `json:"title"`
	Content    *string      `json:"content"`
	Language   *string      `json:"language"`
	CategoryID *string      `json:"category_id"`
	Status     *StoryStatus `json:"status"`
	ImageURL   *string      `json:"image_url"`
	AudioURL   *string      `json:"audio_url"`
}

func (r UpdateStoryRequest) Empty() bool {
	return r.Author == nil && r.Title == nil && r.Content == nil && r.Language == nil &&
		r.CategoryID == nil && r.Status == nil && r.ImageURL == nil && r.AudioURL == nil
}

type CategoriesResponse struct {
	Categories []*CategoryWithStories `json:"categories"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
	Count      int                    `json:"count"`
}

type StoriesResponse struct {
	Stories []*Story `json:"stories"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
	Count   int      `json:"count"`
}

type CategoryEnvelope struct {
	Message  string    `json:"message,omitempty"`
	Category *Category `json:"category"`
}

type StoryEnvelope struct {
	Message string `json:"message,omitempty"`
	Story   *Story `json:"story"`
}
