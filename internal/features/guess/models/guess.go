package models

import "storyfeed-backend/internal/common/timeutil"

const (
	FieldIP        = "ip"
	FieldCreatedAt = "created_at"
)

// GuessRecord marks one anonymous guess by an IP.
type GuessRecord struct {
	ID        string             `json:"id"`
	IP        string             `json:"ip"`
	CreatedAt timeutil.Timestamp `json:"created_at"`
}

// Quota is the caller's standing after a recorded guess.
type Quota struct {
	Used      int64 `json:"used" example:"1"`
	Limit     int64 `json:"limit" example:"2"`
	Remaining int64 `json:"remaining" example:"1"`
}

type GuessResponse struct {
	Message   string `json:"message" example:"Guess recorded"`
	SessionID string `json:"session_id"`
	Quota
}

type RemoveGuessesRequest struct {
	IPAddress string `json:"ip_address" binding:"required" example:"203.0.113.7"`
}

type RemoveGuessesResponse struct {
	Message string `json:"message"`
	Removed int64  `json:"removed"`
}
