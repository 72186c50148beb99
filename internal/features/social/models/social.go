package models

import (
	"storyfeed-backend/internal/common/timeutil"
)

const FieldPlatform = "platform"

// PlatformShares counts how often content was shared to one platform.
type PlatformShares struct {
	ID         string             `json:"id"`
	Platform   string             `json:"platform"`
	ShareCount int64              `json:"share_count"`
	CreatedAt  timeutil.Timestamp `json:"created_at" swaggertype:"string"`
	UpdatedAt  timeutil.Timestamp `json:"updated_at" swaggertype:"string"`
}

type ShareRequest struct {
	Platform string `json:"platform" binding:"required" example:"facebook"`
}

type ShareResponse struct {
	Message string `json:"message" example:"Social shared successfully"`
	Count   int64  `json:"count"`
}
