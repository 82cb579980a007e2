package entity

import "time"

type ReceiptKind string

const (
	ReceiptKindAward      ReceiptKind = "award"
	ReceiptKindRedemption ReceiptKind = "redemption"
)

// AwardReceipt stores the result returned by the first successful call with
// an idempotency key, so a replay answers exactly the same.
type AwardReceipt struct {
	UserID         string `gorm:"primaryKey"`
	IdempotencyKey string `gorm:"primaryKey"`
	Kind           ReceiptKind
	Result         []byte
	CreatedAt      time.Time
}
