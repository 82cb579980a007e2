package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/pubsub"
	"github.com/questx-lab/rewards/pkg/testutil"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func checkoutPayload(t *testing.T, eventType, sessionID, email string, metadata map[string]string) []byte {
	payload, err := json.Marshal(map[string]any{
		"id":   "evt_" + sessionID,
		"type": eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":             sessionID,
				"amount_total":   4900,
				"currency":       "usd",
				"payment_status": "paid",
				"customer_email": email,
				"metadata":       metadata,
			},
		},
	})
	require.NoError(t, err)
	return payload
}

// webhookContext puts the signed request into ctx the way the router does
// and returns the decoded body.
func webhookContext(
	t *testing.T, ctx context.Context, payload []byte, signature string,
) (context.Context, *model.PaymentWebhookRequest) {
	httpReq, err := http.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewReader(payload))
	require.NoError(t, err)
	httpReq.Header.Set(paymentSignatureHeader, signature)

	req := &model.PaymentWebhookRequest{}
	require.NoError(t, json.Unmarshal(payload, req))
	return xcontext.WithHTTPRequest(ctx, httpReq), req
}

func validSignature(payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", testNow.Unix(),
		signPaymentPayload(payload, testutil.MockConfigs().Payment.WebhookSecret, testNow.Unix()))
}

func newTestPurchaseDomain(s *suite) *purchaseDomain {
	d := NewPurchaseDomain(s.ledger, s.pendingJobRepo)
	d.now = func() time.Time { return testNow }
	return d
}

func Test_verifyPaymentSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"
	signature := signPaymentPayload(payload, secret, testNow.Unix())

	header := fmt.Sprintf("t=%d,v1=%s", testNow.Unix(), signature)
	require.NoError(t, verifyPaymentSignature(payload, header, secret, 5*time.Minute, testNow))

	// Several signatures are allowed during a secret rotation.
	header = fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", testNow.Unix(), signature)
	require.NoError(t, verifyPaymentSignature(payload, header, secret, 5*time.Minute, testNow))

	require.ErrorIs(t,
		verifyPaymentSignature([]byte(`{"id":"evt_2"}`), header, secret, 5*time.Minute, testNow),
		errSignatureMismatch)
	require.ErrorIs(t,
		verifyPaymentSignature(payload, header, "other", 5*time.Minute, testNow),
		errSignatureMismatch)
	require.ErrorIs(t,
		verifyPaymentSignature(payload, header, secret, 5*time.Minute, testNow.Add(6*time.Minute)),
		errSignatureExpired)
	require.ErrorIs(t,
		verifyPaymentSignature(payload, "v1="+signature, secret, 5*time.Minute, testNow),
		errMalformedSignature)
	require.ErrorIs(t,
		verifyPaymentSignature(payload, "", secret, 5*time.Minute, testNow),
		errMalformedSignature)
}

func Test_purchaseDomain_PaymentWebhook(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	d := newTestPurchaseDomain(s)

	payload := checkoutPayload(t, checkoutSessionCompleted, "cs_1", "Alice@Example.com",
		map[string]string{"item_count": "3"})

	// Wrong signature.
	webhookCtx, req := webhookContext(t, ctx, payload, fmt.Sprintf("t=%d,v1=00", testNow.Unix()))
	_, err := d.PaymentWebhook(webhookCtx, req)
	require.True(t, errorx.Is(err, errorx.InvalidSignature))

	webhookCtx, req = webhookContext(t, ctx, payload, validSignature(payload))
	resp, err := d.PaymentWebhook(webhookCtx, req)
	require.NoError(t, err)
	require.True(t, resp.Received)
	require.False(t, resp.Queued)

	profile, err := s.profileRepo.Get(ctx, testutil.User1)
	require.NoError(t, err)
	// 150 bundle + 100 first purchase + 250 first bundle + 100 first purchase achievement.
	require.Equal(t, int64(600), profile.TotalXP)

	// A redelivery is credited once.
	webhookCtx, req = webhookContext(t, ctx, payload, validSignature(payload))
	_, err = d.PaymentWebhook(webhookCtx, req)
	require.NoError(t, err)

	profile, err = s.profileRepo.Get(ctx, testutil.User1)
	require.NoError(t, err)
	require.Equal(t, int64(600), profile.TotalXP)
}

func Test_purchaseDomain_PaymentWebhook_Ignored(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	d := newTestPurchaseDomain(s)

	payload := checkoutPayload(t, "invoice.paid", "cs_1", testutil.User1, nil)
	webhookCtx, req := webhookContext(t, ctx, payload, validSignature(payload))
	resp, err := d.PaymentWebhook(webhookCtx, req)
	require.NoError(t, err)
	require.Equal(t, "invoice.paid", resp.Ignored)

	payload = checkoutPayload(t, checkoutSessionCompleted, "cs_2", "", nil)
	webhookCtx, req = webhookContext(t, ctx, payload, validSignature(payload))
	resp, err = d.PaymentWebhook(webhookCtx, req)
	require.NoError(t, err)
	require.Equal(t, "missing_email", resp.Ignored)
}

func Test_purchaseDomain_PaymentWebhook_QueuedOnStorageFailure(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	d := newTestPurchaseDomain(s)

	require.NoError(t, xcontext.DB(ctx).Migrator().DropTable(&entity.XPTransaction{}))

	payload := checkoutPayload(t, checkoutSessionCompleted, "cs_1", testutil.User1, nil)
	webhookCtx, req := webhookContext(t, ctx, payload, validSignature(payload))
	resp, err := d.PaymentWebhook(webhookCtx, req)
	require.NoError(t, err)
	require.True(t, resp.Queued)

	jobs, err := s.pendingJobRepo.GetDue(ctx, testNow, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, entity.PendingJobAward, jobs[0].Kind)

	event, err := DecodePurchaseEvent(jobs[0].Payload)
	require.NoError(t, err)
	require.Equal(t, "cs_1", event.SessionID)
	require.Equal(t, testutil.User1, event.Email)
	require.Equal(t, 49.0, event.AmountPaid)
	require.Equal(t, 1, event.ItemCount)
	require.Equal(t, testNow.Unix(), event.OccurredAt)

	// If even the queue is down the provider has to redeliver.
	require.NoError(t, xcontext.DB(ctx).Migrator().DropTable(&entity.PendingJob{}))
	webhookCtx, req = webhookContext(t, ctx, payload, validSignature(payload))
	_, err = d.PaymentWebhook(webhookCtx, req)
	require.True(t, errorx.Is(err, errorx.Unavailable))
}

func Test_purchaseDomain_Subscribe(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	d := newTestPurchaseDomain(s)

	msg, err := json.Marshal(model.PurchaseCompletedEvent{
		SessionID:  "cs_kafka",
		Email:      testutil.User2,
		AmountPaid: 19,
		ItemCount:  1,
	})
	require.NoError(t, err)

	d.Subscribe(ctx, &pubsub.Pack{Key: []byte(testutil.User2), Msg: msg}, testNow)
	d.Subscribe(ctx, &pubsub.Pack{Key: []byte(testutil.User2), Msg: msg}, testNow)
	d.Subscribe(ctx, &pubsub.Pack{Msg: []byte("not json")}, testNow)

	profile, err := s.profileRepo.Get(ctx, testutil.User2)
	require.NoError(t, err)
	// 50 + 100 first purchase + 100 first purchase achievement.
	require.Equal(t, int64(250), profile.TotalXP)

	count, err := s.xpTxRepo.CountBySources(ctx, testutil.User2, entity.SourceOf(entity.ActivityDocumentPurchase))
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
