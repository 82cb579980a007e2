package domain

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/domain/ledger"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/crypto"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/pubsub"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

const (
	paymentSignatureHeader   = "Stripe-Signature"
	checkoutSessionCompleted = "checkout.session.completed"
)

var (
	errMalformedSignature = errors.New("malformed signature header")
	errSignatureExpired   = errors.New("signature timestamp is out of tolerance")
	errSignatureMismatch  = errors.New("no matching signature")
)

type PurchaseDomain interface {
	PaymentWebhook(context.Context, *model.PaymentWebhookRequest) (*model.PaymentWebhookResponse, error)
	Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time)
}

type purchaseDomain struct {
	ledger         *ledger.Ledger
	pendingJobRepo repository.PendingJobRepository
	now            func() time.Time
}

func NewPurchaseDomain(
	ledger *ledger.Ledger,
	pendingJobRepo repository.PendingJobRepository,
) *purchaseDomain {
	return &purchaseDomain{
		ledger:         ledger,
		pendingJobRepo: pendingJobRepo,
		now:            time.Now,
	}
}

func (d *purchaseDomain) PaymentWebhook(
	ctx context.Context, req *model.PaymentWebhookRequest,
) (*model.PaymentWebhookResponse, error) {
	cfg := xcontext.Configs(ctx).Payment
	if cfg.WebhookSecret == "" {
		return nil, errorx.New(errorx.PermissionDenied, "Payment webhook is not configured")
	}

	httpReq := xcontext.HTTPRequest(ctx)
	payload, err := io.ReadAll(httpReq.Body)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot read webhook payload: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Cannot read payload")
	}

	err = verifyPaymentSignature(
		payload, httpReq.Header.Get(paymentSignatureHeader), cfg.WebhookSecret,
		cfg.SignatureTolerance, d.now(),
	)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Reject payment webhook %s: %v", req.ID, err)
		return nil, errorx.New(errorx.InvalidSignature, "Invalid signature")
	}

	if req.Type != checkoutSessionCompleted {
		return &model.PaymentWebhookResponse{Received: true, Ignored: req.Type}, nil
	}

	session := req.Data.Object
	if session.PaymentStatus != "" && session.PaymentStatus != "paid" {
		return &model.PaymentWebhookResponse{Received: true, Ignored: "unpaid"}, nil
	}

	event := purchaseEventFromSession(session, d.now())
	if event.Email == "" {
		xcontext.Logger(ctx).Warnf("Checkout session %s has no customer email", session.ID)
		return &model.PaymentWebhookResponse{Received: true, Ignored: "missing_email"}, nil
	}

	queued, err := d.handlePurchase(ctx, event)
	if err != nil {
		return nil, err
	}

	return &model.PaymentWebhookResponse{Received: true, Queued: queued}, nil
}

// Subscribe handles the purchase events of the message broker.
func (d *purchaseDomain) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var event model.PurchaseCompletedEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal purchase event: %v", err)
		return
	}

	if event.OccurredAt == 0 {
		event.OccurredAt = t.Unix()
	}

	if event.SessionID == "" || event.Email == "" {
		xcontext.Logger(ctx).Warnf("Ignore purchase event without session id or email: %s", string(pack.Msg))
		return
	}

	if _, err := d.handlePurchase(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot handle purchase %s: %v", event.SessionID, err)
	}
}

// handlePurchase awards the purchase. If the ledger is temporarily
// unavailable the award is queued for the cron instead; the returned bool
// tells whether that happened. An error means the purchase must be
// redelivered.
func (d *purchaseDomain) handlePurchase(ctx context.Context, event model.PurchaseCompletedEvent) (bool, error) {
	_, err := d.ledger.Award(ctx, PurchaseAwardParams(event))
	if err == nil {
		return false, nil
	}

	if !errorx.IsRetryable(err) {
		xcontext.Logger(ctx).Errorf("Cannot award purchase %s: %v", event.SessionID, err)
		return false, err
	}

	xcontext.Logger(ctx).Warnf("Queue award of purchase %s: %v", event.SessionID, err)
	err = d.pendingJobRepo.Create(ctx, &entity.PendingJob{
		ID:        uuid.NewString(),
		Kind:      entity.PendingJobAward,
		UserID:    common.NormalizeUserID(event.Email),
		Payload:   entity.Map(structs.Map(event)),
		Status:    entity.PendingJobStatusPending,
		NextRunAt: d.now(),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot queue award of purchase %s: %v", event.SessionID, err)
		return false, errorx.New(errorx.Unavailable, "Cannot process the purchase, please retry")
	}

	return true, nil
}

// PurchaseAwardParams builds the award of a completed purchase. The session id
// is the idempotency key, so a redelivered purchase is credited once.
func PurchaseAwardParams(event model.PurchaseCompletedEvent) ledger.AwardParams {
	params := ledger.AwardParams{
		UserID:         common.NormalizeUserID(event.Email),
		Kind:           entity.ActivityDocumentPurchase,
		IdempotencyKey: event.SessionID,
		Metadata: map[string]any{
			"session_id":  event.SessionID,
			"amount_paid": event.AmountPaid,
			"item_count":  event.ItemCount,
		},
		Purchase: &reward.PurchaseInfo{ItemCount: event.ItemCount, IsBundle: event.IsBundle},
	}

	if event.OccurredAt > 0 {
		params.OccurredAt = time.Unix(event.OccurredAt, 0)
	}

	return params
}

// DecodePurchaseEvent reads a purchase event stored in a pending job.
func DecodePurchaseEvent(payload entity.Map) (model.PurchaseCompletedEvent, error) {
	event := model.PurchaseCompletedEvent{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &event,
	})
	if err != nil {
		return event, err
	}

	if err := decoder.Decode(map[string]any(payload)); err != nil {
		return event, err
	}

	if event.SessionID == "" || event.Email == "" {
		return event, errors.New("purchase event requires a session id and an email")
	}

	return event, nil
}

func purchaseEventFromSession(session model.CheckoutSession, now time.Time) model.PurchaseCompletedEvent {
	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}

	itemCount := 1
	if n, err := strconv.Atoi(session.Metadata["item_count"]); err == nil && n > 0 {
		itemCount = n
	}

	isBundle, _ := strconv.ParseBool(session.Metadata["is_bundle"])

	return model.PurchaseCompletedEvent{
		SessionID:  session.ID,
		Email:      email,
		AmountPaid: float64(session.AmountTotal) / 100,
		ItemCount:  itemCount,
		IsBundle:   isBundle,
		OccurredAt: now.Unix(),
	}
}

// verifyPaymentSignature checks a header of the form "t=<unix>,v1=<hex>"
// where the signature is HMAC-SHA256("<unix>.<payload>").
func verifyPaymentSignature(
	payload []byte, header, secret string, tolerance time.Duration, now time.Time,
) error {
	var timestamp int64
	signatures := []string{}
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}

		switch key {
		case "t":
			t, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return errMalformedSignature
			}
			timestamp = t
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return errMalformedSignature
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return errSignatureExpired
		}
	}

	expected := signPaymentPayload(payload, secret, timestamp)
	for _, s := range signatures {
		if crypto.EqualHMAC(expected, s) {
			return nil
		}
	}

	return errSignatureMismatch
}

func signPaymentPayload(payload []byte, secret string, timestamp int64) string {
	signed := append([]byte(fmt.Sprintf("%d.", timestamp)), payload...)
	return crypto.HMAC(sha256.New, signed, []byte(secret))
}
