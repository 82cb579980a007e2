package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/rewards/pkg/enum"
)

type ActivityKind string

var (
	ActivityPageView           = enum.New(ActivityKind("page_view"), "page_view")
	ActivityDocumentView       = enum.New(ActivityKind("document_view"), "document_view")
	ActivityNewsletterSignup   = enum.New(ActivityKind("newsletter_signup"), "newsletter_signup")
	ActivityConsultationBooked = enum.New(ActivityKind("consultation_booked"), "consultation_booked")
	ActivityDocumentPurchase   = enum.New(ActivityKind("document_purchase"), "document_purchase")
	ActivityIntakeComplete     = enum.New(ActivityKind("intake_complete"), "intake_complete")
	ActivityReturnVisit        = enum.New(ActivityKind("return_visit"), "return_visit")
	ActivityDiscussionPost     = enum.New(ActivityKind("discussion_post"), "discussion_post")
	ActivityROICalculatorUsed  = enum.New(ActivityKind("roi_calculator_used"), "roi_calculator_used")
)

// XPSource tells where the amount of a ledger row comes from. Activity rows
// use the activity kind as their source.
type XPSource string

var (
	XPSourceAchievement         = enum.New(XPSource("achievement"), "achievement")
	XPSourceRedemption          = enum.New(XPSource("redemption"), "redemption")
	XPSourcePurchaseRarityBonus = enum.New(XPSource("purchase_rarity_bonus"), "purchase_rarity_bonus")
	XPSourceFirstPurchaseBonus  = enum.New(XPSource("first_purchase_bonus"), "first_purchase_bonus")
	XPSourceFirstBundleBonus    = enum.New(XPSource("first_bundle_bonus"), "first_bundle_bonus")
)

func SourceOf(kind ActivityKind) XPSource {
	return XPSource(kind)
}

// XPTransaction is an append-only ledger row. Only the main row of an award
// carries the idempotency key, extra rows written in the same award have a
// NULL key.
type XPTransaction struct {
	ID             int64  `gorm:"primaryKey;autoIncrement:false"`
	UserID         string `gorm:"index:idx_xp_transactions_user_created;uniqueIndex:idx_xp_transactions_user_key"`
	Amount         int64
	Source         XPSource `gorm:"index"`
	Multiplier     float64
	Description    string
	Metadata       Map
	IdempotencyKey sql.NullString `gorm:"uniqueIndex:idx_xp_transactions_user_key"`
	CreatedAt      time.Time      `gorm:"index:idx_xp_transactions_user_created"`
}
