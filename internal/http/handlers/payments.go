package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Milo-adonos/SilentView/internal/http/middleware"
	"github.com/Milo-adonos/SilentView/internal/http/response"
	"github.com/Milo-adonos/SilentView/internal/observability"
	"github.com/Milo-adonos/SilentView/internal/platform/apierr"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/services"
)

const (
	maxWebhookBytes = 64 << 10
	headerSignature = "Stripe-Signature"
)

type PaymentsHandler struct {
	log     *logger.Logger
	billing services.BillingService
	flow    services.FlowService
	metrics *observability.Metrics
}

func NewPaymentsHandler(log *logger.Logger, billing services.BillingService, flowService services.FlowService, metrics *observability.Metrics) *PaymentsHandler {
	return &PaymentsHandler{
		log:     log.With("handler", "PaymentsHandler"),
		billing: billing,
		flow:    flowService,
		metrics: metrics,
	}
}

// POST /api/payments/checkout
//
// The checkout is tied to the caller's current analysis when there is one;
// otherwise billing assigns a tracking id.
func (h *PaymentsHandler) Checkout(c *gin.Context) {
	var req struct {
		PaymentType string `json:"payment_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()

	ref, identifier, err := h.flow.CheckoutRef(ctx, middleware.BrowserSessionID(c))
	if err != nil && !errors.Is(err, services.ErrNoSession) {
		response.RespondFrom(c, err, "checkout_failed")
		return
	}

	url, err := h.billing.Checkout(ctx, services.CheckoutRequest{
		SessionID:      ref,
		PaymentType:    req.PaymentType,
		UserIdentifier: identifier,
		UserID:         userID(c),
	})
	if err != nil {
		outcome := "rejected"
		if ae := apierr.From(err, "checkout_failed"); ae.Retryable {
			outcome = "provider_error"
		}
		h.metrics.IncCheckout(req.PaymentType, outcome)
		response.RespondFrom(c, err, "checkout_failed")
		return
	}
	h.metrics.IncCheckout(req.PaymentType, "created")
	response.RespondOK(c, gin.H{"url": url})
}

// POST /api/payments/webhook
func (h *PaymentsHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	if err := h.billing.HandleWebhook(c.Request.Context(), payload, c.GetHeader(headerSignature)); err != nil {
		response.RespondFrom(c, err, "webhook_failed")
		return
	}
	response.RespondOK(c, gin.H{"received": true})
}
