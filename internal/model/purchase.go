package model

// PurchaseCompletedEvent is what the payment collaborator reports, either
// through the webhook or the purchase topic.
type PurchaseCompletedEvent struct {
	SessionID  string  `json:"session_id" structs:"session_id" mapstructure:"session_id"`
	Email      string  `json:"email" structs:"email" mapstructure:"email"`
	AmountPaid float64 `json:"amount_paid" structs:"amount_paid" mapstructure:"amount_paid"`
	ItemCount  int     `json:"item_count" structs:"item_count" mapstructure:"item_count"`
	IsBundle   bool    `json:"is_bundle" structs:"is_bundle" mapstructure:"is_bundle"`
	OccurredAt int64   `json:"occurred_at" structs:"occurred_at" mapstructure:"occurred_at"`
}

type PaymentWebhookRequest struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object CheckoutSession `json:"object"`
	} `json:"data"`
}

type CheckoutSession struct {
	ID              string            `json:"id"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	PaymentStatus   string            `json:"payment_status"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerDetails *CustomerDetails  `json:"customer_details"`
	Metadata        map[string]string `json:"metadata"`
}

type CustomerDetails struct {
	Email string `json:"email"`
}

type PaymentWebhookResponse struct {
	Received bool   `json:"received"`
	Queued   bool   `json:"queued,omitempty"`
	Ignored  string `json:"ignored,omitempty"`
}
