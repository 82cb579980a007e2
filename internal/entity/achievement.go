package entity

import (
	"time"

	"github.com/questx-lab/rewards/pkg/enum"
)

type RequirementType string

var (
	RequirementVisitCount           = enum.New(RequirementType("visit_count"), "visit_count")
	RequirementStreakDays           = enum.New(RequirementType("streak_days"), "streak_days")
	RequirementPurchaseCount        = enum.New(RequirementType("purchase_count"), "purchase_count")
	RequirementConsultationCount    = enum.New(RequirementType("consultation_count"), "consultation_count")
	RequirementNewsletterSubscribed = enum.New(RequirementType("newsletter_subscribed"), "newsletter_subscribed")
	RequirementIntakeCompleted      = enum.New(RequirementType("intake_completed"), "intake_completed")
)

type Achievement struct {
	ID               string `gorm:"primaryKey"`
	Slug             string `gorm:"uniqueIndex"`
	Name             string
	Description      string
	Icon             string
	XPReward         int64
	RequirementType  RequirementType
	RequirementValue int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type UserAchievement struct {
	UserID        string      `gorm:"primaryKey"`
	AchievementID string      `gorm:"primaryKey"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID"`
	EarnedAt      time.Time
}
