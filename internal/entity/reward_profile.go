package entity

import (
	"database/sql"
	"time"
)

// UserRewardProfile is the cached snapshot of a user's ledger. TotalXP is the
// spendable balance and LifetimeXP only ever grows. Version is bumped by
// every write and guards concurrent updates.
type UserRewardProfile struct {
	UserID         string `gorm:"primaryKey"`
	TotalXP        int64
	LifetimeXP     int64
	CurrentLevel   int
	CurrentStreak  int
	LongestStreak  int
	LastActiveDate sql.NullTime
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
