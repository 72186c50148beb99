package models

// UserStats counts users per role. Online mirrors Total: presence is not tracked.
type UserStats struct {
	Total       int64 `json:"total"`
	Admin       int64 `json:"admin"`
	Student     int64 `json:"student"`
	Viewer      int64 `json:"viewer"`
	Contributor int64 `json:"contributor"`
	Online      int64 `json:"online"`
}

// PlatformStatistic is the public monthly activity summary.
type PlatformStatistic struct {
	NewUsers               int64   `json:"new_users"`
	ActiveUsers            int64   `json:"active_users"`
	RetentionRate          float64 `json:"retention_rate" example:"42.5"`
	SocialShare            int64   `json:"social_share"`
	SubscriptionsThisMonth int64   `json:"subscriptions_this_month"`
}
