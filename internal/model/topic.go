package model

import "time"

const (
	XPEventAwarded           = "xp_awarded"
	XPEventRedeemed          = "xp_redeemed"
	XPEventAchievementEarned = "achievement_earned"
)

// XPEvent is published for the notification collaborator after a ledger
// change was committed.
type XPEvent struct {
	Type        string    `json:"type"`
	UserID      string    `json:"user_id"`
	Amount      int64     `json:"amount"`
	Balance     int64     `json:"balance"`
	Level       int       `json:"level"`
	LeveledUp   bool      `json:"leveled_up,omitempty"`
	Source      string    `json:"source,omitempty"`
	Achievement string    `json:"achievement,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
