package models

type CreateFeedRequest struct {
	Content      string `json:"content" binding:"required"`
	AgentID      string `json:"agent_id" binding:"required"`
	AgentContent string `json:"agent_content" binding:"required"`
}

type UpdateFeedRequest struct {
	Content      *string `json:"content"`
	AgentContent *string `json:"agent_content"`
}

type RetweetRequest struct {
	Content string `json:"content"`
}

type CreateCommentRequest struct {
	FeedID  string `json:"feed_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type FeedsResponse struct {
	Feeds  []*Feed `json:"feeds"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Count  int     `json:"count"`
}

type CommentsResponse struct {
	Comments []*Comment `json:"comments"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
	Count    int        `json:"count"`
}

type FeedEnvelope struct {
	Message string `json:"message,omitempty"`
	Feed    *Feed  `json:"feed"`
}

type CommentEnvelope struct {
	Message string   `json:"message,omitempty"`
	Comment *Comment `json:"comment"`
}

type LikeResponse struct {
	Message string `json:"message" example:"Feed liked successfully"`
	LikeResult
}

type RetweetResponse struct {
	Message   string `json:"message" example:"Feed retweeted successfully"`
	RetweetID string `json:"retweet_id"`
}

type DeleteFeedResponse struct {
	Message string `json:"message" example:"Feed deleted successfully"`
	CascadeResult
}

type DeleteManyResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}
