package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Milo-adonos/SilentView/internal/data/repos"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/payment"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/pkg/pointers"
	"github.com/Milo-adonos/SilentView/internal/platform/apierr"
)

const (
	MsgCheckoutFailed   = "Une erreur est survenue lors de la redirection vers le paiement. Veuillez réessayer."
	MsgLoginRequired    = "Vous devez être connecté pour continuer"
	MsgPaymentCancelled = "Le paiement a été annulé. Vous pouvez réessayer."
	msgInvalidMetadata  = "Invalid metadata"
)

// CheckoutCreator is the payment provider as billing sees it.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, p payment.CheckoutParams) (payment.CheckoutSession, error)
}

type CheckoutRequest struct {
	SessionID      string
	PaymentType    string
	UserIdentifier string
	UserID         uuid.UUID
}

type AccessRequest struct {
	UserID         uuid.UUID
	UserIdentifier string
	AnalysisID     uuid.UUID
}

type Access struct {
	Paid       bool
	Subscribed bool
}

type BillingService interface {
	// Checkout returns the hosted payment page URL. Provider failures come back
	// as a retryable API error carrying the localized banner text.
	Checkout(ctx context.Context, req CheckoutRequest) (string, error)
	// HandleWebhook verifies and applies one provider event.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	Access(ctx context.Context, req AccessRequest) (Access, error)
}

type billingService struct {
	db            *gorm.DB
	log           *logger.Logger
	checkout      CheckoutCreator
	subRepo       repos.SubscriptionRepo
	sessionRepo   repos.AnalysisSessionRepo
	webhookSecret string
	tolerance     time.Duration
	now           func() time.Time
}

func NewBillingService(
	db *gorm.DB,
	log *logger.Logger,
	checkout CheckoutCreator,
	subRepo repos.SubscriptionRepo,
	sessionRepo repos.AnalysisSessionRepo,
	webhookSecret string,
) BillingService {
	return &billingService{
		db:            db,
		log:           log.With("service", "BillingService"),
		checkout:      checkout,
		subRepo:       subRepo,
		sessionRepo:   sessionRepo,
		webhookSecret: webhookSecret,
		tolerance:     payment.DefaultTolerance,
		now:           time.Now,
	}
}

func (bs *billingService) Checkout(ctx context.Context, req CheckoutRequest) (string, error) {
	if req.UserID == uuid.Nil {
		return "", pkgerrors.Unauthorized(MsgLoginRequired)
	}
	pt, err := payment.ParseType(req.PaymentType)
	if err != nil {
		return "", pkgerrors.Invalid("Type de paiement invalide")
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = payment.NewTrackingID(bs.now())
	}
	identifier := strings.TrimSpace(req.UserIdentifier)
	if identifier == "" {
		identifier = req.UserID.String()
	}

	cs, err := bs.checkout.CreateCheckoutSession(ctx, payment.CheckoutParams{
		SessionID:      sessionID,
		PaymentType:    pt,
		UserIdentifier: identifier,
		UserID:         req.UserID.String(),
	})
	if err != nil {
		bs.log.Warn("Checkout session creation failed", "error", err, "session_id", sessionID)
		return "", apierr.Retry(http.StatusBadGateway, "checkout_failed", errors.New(MsgCheckoutFailed))
	}
	bs.log.Info("Checkout session created", "session_id", sessionID, "payment_type", string(pt))
	return cs.URL, nil
}

func (bs *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := payment.VerifySignature(payload, signature, bs.webhookSecret, bs.now(), bs.tolerance); err != nil {
		bs.log.Warn("Webhook signature rejected", "error", err)
		return apierr.New(http.StatusBadRequest, "invalid_signature", err)
	}
	ev, err := payment.ParseEvent(payload)
	if err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_payload", err)
	}
	if ev.Type != payment.EventCheckoutCompleted {
		bs.log.Debug("Ignoring webhook event", "type", ev.Type)
		return nil
	}
	cs, err := ev.CheckoutSession()
	if err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_payload", err)
	}
	return bs.applyCompleted(ctx, cs)
}

// applyCompleted grants access for a paid checkout. The subscription write is
// the part that must succeed; tagging the analysis row is best effort.
func (bs *billingService) applyCompleted(ctx context.Context, cs payment.CompletedCheckout) error {
	if cs.SessionID() == "" || cs.UserIdentifier() == "" || cs.PaymentType() == "" {
		return apierr.New(http.StatusBadRequest, "invalid_metadata", errors.New(msgInvalidMetadata))
	}
	pt, err := payment.ParseType(cs.PaymentType())
	if err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_metadata", errors.New(msgInvalidMetadata))
	}
	var userID uuid.UUID
	if raw := cs.UserID(); raw != "" {
		if userID, err = uuid.Parse(raw); err != nil {
			return apierr.New(http.StatusBadRequest, "invalid_metadata", errors.New(msgInvalidMetadata))
		}
	}
	now := bs.now()

	err = bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if userID != uuid.Nil && pt == payment.Subscription {
			existing, err := bs.subRepo.ActiveForUser(dbc, userID, now)
			if err != nil {
				return err
			}
			if existing != nil {
				return bs.subRepo.Touch(dbc, existing.ID, now)
			}
		}
		return bs.subRepo.Create(dbc, &types.Subscription{
			UserID:           pointers.UUID(userID),
			UserIdentifier:   cs.UserIdentifier(),
			SubscriptionType: pt.SubscriptionType(),
			Status:           types.SubscriptionActive,
			StartedAt:        now,
		})
	})
	if err != nil {
		bs.log.Error("Failed to record subscription", "error", err, "session_id", cs.SessionID())
		return apierr.New(http.StatusInternalServerError, "subscription_failed", fmt.Errorf("record subscription: %w", err))
	}

	analysisID, err := uuid.Parse(cs.SessionID())
	if err != nil {
		bs.log.Debug("Checkout session id is a tracking id; no analysis row to mark", "session_id", cs.SessionID())
		return nil
	}
	if err := bs.sessionRepo.MarkPaid(dbctx.Of(ctx), analysisID, repos.AnalysisPayment{
		PaymentType:     string(pt),
		StripePaymentID: cs.ID,
		UserID:          pointers.UUID(userID),
	}); err != nil {
		bs.log.Warn("Failed to mark analysis session paid", "error", err, "session_id", cs.SessionID())
	}
	return nil
}

// Access combines the subscription and the per-analysis payment, the two ways
// to see full results.
func (bs *billingService) Access(ctx context.Context, req AccessRequest) (Access, error) {
	var out Access
	dbc := dbctx.Of(ctx)
	now := bs.now()

	if req.UserID != uuid.Nil {
		sub, err := bs.subRepo.ActiveForUser(dbc, req.UserID, now)
		if err != nil {
			return out, err
		}
		if sub != nil && sub.SubscriptionType == types.SubscriptionPremiumMonthly {
			out.Subscribed = true
		}
	}
	if !out.Subscribed && req.UserIdentifier != "" {
		sub, err := bs.subRepo.ActiveForIdentifier(dbc, req.UserIdentifier, now)
		if err != nil {
			return out, err
		}
		if sub != nil && sub.SubscriptionType == types.SubscriptionPremiumMonthly {
			out.Subscribed = true
		}
	}
	if req.AnalysisID != uuid.Nil {
		s, err := bs.sessionRepo.GetByID(dbc, req.AnalysisID)
		switch {
		case errors.Is(err, pkgerrors.ErrNotFound):
		case err != nil:
			return out, err
		case s.PaymentCompleted && (s.OwnUsername == req.UserIdentifier || (s.UserID != nil && *s.UserID == req.UserID)):
			out.Paid = true
		}
	}
	return out, nil
}
