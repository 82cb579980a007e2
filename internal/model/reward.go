package model

import "time"

type Achievement struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	XPReward    int64     `json:"xp_reward"`
	Requirement string    `json:"requirement,omitempty"`
	Value       int64     `json:"value,omitempty"`
	EarnedAt    time.Time `json:"earned_at,omitempty"`
}

type LevelProgress struct {
	Level         int     `json:"level"`
	Title         string  `json:"title"`
	CurrentFloor  int64   `json:"current_floor"`
	NextFloor     int64   `json:"next_floor"`
	XPToNext      int64   `json:"xp_to_next"`
	PercentToNext float64 `json:"percent_to_next"`
}

type AwardRequest struct {
	UserID         string         `json:"user_id"`
	Activity       string         `json:"activity"`
	Metadata       map[string]any `json:"metadata"`
	IdempotencyKey string         `json:"idempotency_key"`
}

type TrackActivityRequest struct {
	Activity       string         `json:"activity"`
	Metadata       map[string]any `json:"metadata"`
	IdempotencyKey string         `json:"idempotency_key"`
}

type AwardResponse struct {
	BaseXP             int64         `json:"base_xp"`
	BonusXP            int64         `json:"bonus_xp"`
	TotalXPEarned      int64         `json:"total_xp_earned"`
	Tier               string        `json:"tier"`
	Multiplier         float64       `json:"multiplier"`
	Streak             int           `json:"streak"`
	AchievementXP      int64         `json:"achievement_xp"`
	NewBalance         int64         `json:"new_balance"`
	LifetimeXP         int64         `json:"lifetime_xp"`
	LeveledUp          bool          `json:"leveled_up"`
	NewLevel           int           `json:"new_level"`
	LevelTitle         string        `json:"level_title"`
	AchievementsEarned []Achievement `json:"achievements_earned"`
	Replayed           bool          `json:"replayed"`
}

type GetProfileRequest struct{}

type GetUserProfileRequest struct {
	UserID string `json:"user_id"`
}

type GetProfileResponse struct {
	UserID         string        `json:"user_id"`
	TotalXP        int64         `json:"total_xp"`
	LifetimeXP     int64         `json:"lifetime_xp"`
	CurrentLevel   int           `json:"current_level"`
	CurrentStreak  int           `json:"current_streak"`
	LongestStreak  int           `json:"longest_streak"`
	LastActiveDate string        `json:"last_active_date,omitempty"`
	Progress       LevelProgress `json:"progress"`
	Achievements   []Achievement `json:"achievements"`
}

type XPTransaction struct {
	ID          string         `json:"id"`
	Amount      int64          `json:"amount"`
	Source      string         `json:"source"`
	Multiplier  float64        `json:"multiplier"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

type GetMyTransactionsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetMyTransactionsResponse struct {
	Transactions []XPTransaction `json:"transactions"`
}

type GetAchievementsRequest struct{}

type GetAchievementsResponse struct {
	Achievements []Achievement `json:"achievements"`
}
