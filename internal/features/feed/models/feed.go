package models

import (
	"storyfeed-backend/internal/common/timeutil"
)

type FeedType string

const (
	FeedTypePost    FeedType = "post"
	FeedTypeRetweet FeedType = "retweet"
)

func (t FeedType) Valid() bool {
	return t == FeedTypePost || t == FeedTypeRetweet
}

// Field names as stored in the feeds and feed_comments collections.
const (
	FieldUserID       = "user_id"
	FieldFeedID       = "feed_id"
	FieldAgentID      = "agent_id"
	FieldType         = "type"
	FieldContent      = "content"
	FieldAgentContent = "agent_content"
	FieldCreatedAt    = "created_at"
	FieldUpdatedAt    = "updated_at"
)

// Feed is a post or a retweet. A retweet keeps the agent fields of its
// source but not the source id.
type Feed struct {
	ID           string             `json:"id" example:"1c9b1f8e-8b7a-4d1e-9d38-52a0f5c2b7aa"`
	UserID       string             `json:"user_id"`
	Content      string             `json:"content" example:"What does the hexagram mean?"`
	AgentID      string             `json:"agent_id" example:"oracle"`
	AgentContent string             `json:"agent_content"`
	LikeIDs      []string           `json:"like_ids"`
	RetweetIDs   []string           `json:"retweet_ids"`
	Type         FeedType           `json:"type" enums:"post,retweet"`
	CreatedAt    timeutil.Timestamp `json:"created_at" swaggertype:"string"`
	UpdatedAt    timeutil.Timestamp `json:"updated_at" swaggertype:"string"`
}

type Comment struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	FeedID    string             `json:"feed_id"`
	Content   string             `json:"content"`
	LikeIDs   []string           `json:"like_ids"`
	CreatedAt timeutil.Timestamp `json:"created_at" swaggertype:"string"`
	UpdatedAt timeutil.Timestamp `json:"updated_at" swaggertype:"string"`
}

// ListFilter narrows GET /feeds. Empty fields are ignored.
type ListFilter struct {
	UserID  string
	AgentID string
	Type    FeedType
}

// CascadeResult reports how far a feed deletion got.
type CascadeResult struct {
	FeedDeleted     bool  `json:"feed_deleted"`
	CommentsDeleted bool  `json:"comments_deleted"`
	CommentsRemoved int64 `json:"comments_removed"`
}

// LikeResult is the state after a toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
