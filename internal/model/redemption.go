package model

type DiscountTier struct {
	XPCost   int64  `json:"xp_cost"`
	Discount int64  `json:"discount"`
	Label    string `json:"label"`
}

type ValidateRedemptionRequest struct {
	XPToRedeem int64   `json:"xp_to_redeem"`
	OrderTotal float64 `json:"order_total"`
	OrderID    string  `json:"order_id"`
}

type ValidateRedemptionResponse struct {
	Approved       bool   `json:"approved"`
	Reason         string `json:"reason,omitempty"`
	Message        string `json:"message,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	XPRedeemed     int64  `json:"xp_redeemed"`
	NewBalance     int64  `json:"new_balance"`
	NewLevel       int    `json:"new_level"`
}

type GetRedemptionOptionsRequest struct {
	OrderTotal float64 `json:"order_total"`
}

type GetRedemptionOptionsResponse struct {
	Balance         int64          `json:"balance"`
	MaxRedeemableXP int64          `json:"max_redeemable_xp"`
	MaxDiscount     int64          `json:"max_discount"`
	CapReason       string         `json:"cap_reason"`
	MinRedemptionXP int64          `json:"min_redemption_xp"`
	XPPerDollar     int64          `json:"xp_per_dollar"`
	AffordableTiers []DiscountTier `json:"affordable_tiers"`
	NextTier        *DiscountTier  `json:"next_tier,omitempty"`
	XPToNextTier    int64          `json:"xp_to_next_tier"`
}

type GetNearMissRequest struct {
	CartTotal   float64 `json:"cart_total"`
	PotentialXP int64   `json:"potential_xp"`
}

type GetNearMissResponse struct {
	HasNearMiss bool          `json:"has_near_miss"`
	Message     string        `json:"message,omitempty"`
	NextTier    *DiscountTier `json:"next_tier,omitempty"`
	XPNeeded    int64         `json:"xp_needed"`
}
