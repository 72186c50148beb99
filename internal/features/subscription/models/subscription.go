package models

import (
	"storyfeed-backend/internal/common/timeutil"
)

const (
	StatusActive = "active"

	MinLevel = 1
	MaxLevel = 3

	// DefaultLevel applies to prices missing from the price table.
	DefaultLevel = 1
)

// Field names as stored in the subscriptions collection.
const (
	FieldUserID    = "user_id"
	FieldTxID      = "tx_id"
	FieldCreatedAt = "created_at"
)

type Subscription struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Level     int                `json:"level" example:"2"`
	Status    string             `json:"status" example:"active"`
	StartDate timeutil.Timestamp `json:"start_date" swaggertype:"string"`
	EndDate   timeutil.Timestamp `json:"end_date" swaggertype:"string"`
	TxID      string             `json:"tx_id" example:"cs_test_a1b2c3"`
	CreatedAt timeutil.Timestamp `json:"created_at" swaggertype:"string"`
}

// CreateSubscriptionRequest carries unix seconds for the period bounds.
// Missing bounds default to now and one month from the start.
type CreateSubscriptionRequest struct {
	Level     int    `json:"level" binding:"required,min=1,max=3"`
	TxID      string `json:"tx_id" binding:"required"`
	Status    string `json:"status"`
	StartDate int64  `json:"start_date"`
	EndDate   int64  `json:"end_date"`
}

type SubscriptionEnvelope struct {
	Message string        `json:"message" example:"Subscription retrieved successfully"`
	Data    *Subscription `json:"data"`
}

// PaymentEvent is one entry of the payment gateway event stream.
type PaymentEvent struct {
	Type      string
	UserID    string
	PriceID   string
	TxID      string
	Status    string
	StartDate int64
	EndDate   int64
}

const EventCheckoutCompleted = "checkout.completed"
