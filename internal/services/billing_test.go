package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/payment"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/platform/apierr"
)

const testWebhookSecret = "whsec_test"

func newTestBilling(t *testing.T, co *fakeCheckout) (BillingService, testRepos) {
	t.Helper()
	r := newTestRepos(t)
	return NewBillingService(r.db, r.log, co, r.subs, r.sessions, testWebhookSecret), r
}

func completedEvent(t *testing.T, meta map[string]string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":   "evt_1",
		"type": payment.EventCheckoutCompleted,
		"data": map[string]any{"object": map[string]any{"id": "cs_live_1", "metadata": meta}},
	})
	require.NoError(t, err)
	return raw
}

func signed(payload []byte) string {
	ts := time.Now().Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, payment.Sign(payload, testWebhookSecret, ts))
}

func TestCheckoutRequiresLogin(t *testing.T) {
	co := &fakeCheckout{url: "https://pay.example/1"}
	bs, _ := newTestBilling(t, co)

	_, err := bs.Checkout(context.Background(), CheckoutRequest{PaymentType: "one_time"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
	assert.Empty(t, co.calls)
}

func TestCheckoutFillsTrackingIDAndIdentifier(t *testing.T) {
	co := &fakeCheckout{url: "https://pay.example/1"}
	bs, _ := newTestBilling(t, co)
	userID := uuid.New()

	url, err := bs.Checkout(context.Background(), CheckoutRequest{PaymentType: "subscription", UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/1", url)

	require.Len(t, co.calls, 1)
	p := co.calls[0]
	assert.Regexp(t, `^session_\d+_[0-9a-z]+$`, p.SessionID)
	assert.Equal(t, userID.String(), p.UserIdentifier)
	assert.Equal(t, userID.String(), p.UserID)
	assert.Equal(t, payment.Subscription, p.PaymentType)
}

func TestCheckoutFailureIsRetryable(t *testing.T) {
	co := &fakeCheckout{err: errors.New("stripe down")}
	bs, _ := newTestBilling(t, co)

	_, err := bs.Checkout(context.Background(), CheckoutRequest{
		SessionID: "abc", PaymentType: "one_time", UserIdentifier: "marie", UserID: uuid.New(),
	})
	require.Error(t, err)
	var ae *apierr.Error
	require.True(t, errors.As(err, &ae))
	assert.True(t, ae.Retryable)
	assert.Equal(t, http.StatusBadGateway, ae.Status)
	assert.Equal(t, MsgCheckoutFailed, ae.Error())
}

func TestCheckoutRejectsUnknownType(t *testing.T) {
	bs, _ := newTestBilling(t, &fakeCheckout{url: "x"})
	_, err := bs.Checkout(context.Background(), CheckoutRequest{PaymentType: "lifetime", UserID: uuid.New()})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	bs, _ := newTestBilling(t, &fakeCheckout{})
	payload := completedEvent(t, map[string]string{"session_id": "s", "user_identifier": "marie", "payment_type": "one_time"})

	err := bs.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	var ae *apierr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusBadRequest, ae.Status)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	bs, r := newTestBilling(t, &fakeCheckout{})
	payload := []byte(`{"id":"evt_2","type":"invoice.paid","data":{"object":{}}}`)

	require.NoError(t, bs.HandleWebhook(context.Background(), payload, signed(payload)))
	sub, err := r.subs.ActiveForIdentifier(dbctx.Of(context.Background()), "marie", time.Now())
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestWebhookInvalidMetadata(t *testing.T) {
	bs, _ := newTestBilling(t, &fakeCheckout{})
	payload := completedEvent(t, map[string]string{"session_id": "s"})

	err := bs.HandleWebhook(context.Background(), payload, signed(payload))
	var ae *apierr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "Invalid metadata", ae.Error())
}

func TestWebhookOneTimeMarksAnalysisPaid(t *testing.T) {
	bs, r := newTestBilling(t, &fakeCheckout{})
	ctx := context.Background()
	row := &types.AnalysisSession{OwnUsername: "marie", TargetUsername: "lea"}
	require.NoError(t, r.sessions.Create(dbctx.Of(ctx), row))
	userID := uuid.New()

	payload := completedEvent(t, map[string]string{
		"session_id":      row.ID.String(),
		"user_identifier": "marie",
		"payment_type":    "one_time",
		"user_id":         userID.String(),
	})
	require.NoError(t, bs.HandleWebhook(ctx, payload, signed(payload)))

	got, err := r.sessions.GetByID(dbctx.Of(ctx), row.ID)
	require.NoError(t, err)
	assert.True(t, got.PaymentCompleted)
	assert.Equal(t, "one_time", got.PaymentType)
	assert.Equal(t, "cs_live_1", got.StripePaymentID)

	acc, err := bs.Access(ctx, AccessRequest{UserID: userID, UserIdentifier: "marie", AnalysisID: row.ID})
	require.NoError(t, err)
	assert.True(t, acc.Paid)
	assert.False(t, acc.Subscribed)

	other, err := bs.Access(ctx, AccessRequest{UserID: uuid.New(), UserIdentifier: "someone", AnalysisID: row.ID})
	require.NoError(t, err)
	assert.False(t, other.Paid)
}

func TestWebhookSubscriptionIsIdempotentPerUser(t *testing.T) {
	bs, r := newTestBilling(t, &fakeCheckout{})
	ctx := context.Background()
	userID := uuid.New()
	payload := completedEvent(t, map[string]string{
		"session_id":      "session_1_abc",
		"user_identifier": "marie",
		"payment_type":    "subscription",
		"user_id":         userID.String(),
	})

	require.NoError(t, bs.HandleWebhook(ctx, payload, signed(payload)))
	require.NoError(t, bs.HandleWebhook(ctx, payload, signed(payload)))

	var count int64
	require.NoError(t, r.db.Model(&types.Subscription{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	acc, err := bs.Access(ctx, AccessRequest{UserID: userID})
	require.NoError(t, err)
	assert.True(t, acc.Subscribed)

	byIdentifier, err := bs.Access(ctx, AccessRequest{UserIdentifier: "marie"})
	require.NoError(t, err)
	assert.True(t, byIdentifier.Subscribed)
}
