// Package payment talks to Stripe: it creates hosted checkout sessions,
// understands the query parameters Stripe appends on the way back, and
// verifies webhook deliveries.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/pkg/httpx"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type Type string

const (
	OneTime      Type = "one_time"
	Subscription Type = "subscription"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.TrimSpace(s)); t {
	case OneTime, Subscription:
		return t, nil
	}
	return "", fmt.Errorf("unknown payment type %q: %w", s, pkgerrors.ErrInvalidArgument)
}

// Mode is the Stripe checkout mode for the payment type.
func (t Type) Mode() string {
	if t == Subscription {
		return "subscription"
	}
	return "payment"
}

// SubscriptionType is the subscription record type granted on success.
func (t Type) SubscriptionType() string {
	if t == Subscription {
		return "premium_monthly"
	}
	return "one_time"
}

type CheckoutParams struct {
	SessionID      string
	PaymentType    Type
	UserIdentifier string
	UserID         string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Config struct {
	SecretKey         string
	PriceOneTime      string
	PriceSubscription string
	WebhookSecret     string
	APIBase           string
	PublicBaseURL     string
	Timeout           time.Duration
	// Retries is how many times a transient Stripe failure is retried.
	Retries           int
	RetryBackoff      time.Duration
}

type Client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

func NewClient(log *logger.Logger, cfg Config) *Client {
	if strings.TrimSpace(cfg.APIBase) == "" {
		cfg.APIBase = "https://api.stripe.com"
	}
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if strings.TrimSpace(cfg.PublicBaseURL) == "" {
		cfg.PublicBaseURL = "http://localhost:5173"
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 2
	}
	return &Client{
		log:  log.With("client", "StripeClient"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) WebhookSecret() string { return c.cfg.WebhookSecret }

func (c *Client) price(t Type) string {
	if t == Subscription {
		return c.cfg.PriceSubscription
	}
	return c.cfg.PriceOneTime
}

// SuccessURL and CancelURL are where Stripe sends the browser back to.
func (c *Client) SuccessURL(sessionID string, t Type) string {
	q := url.Values{}
	q.Set("payment", string(ReturnSuccess))
	q.Set("session_id", sessionID)
	q.Set("payment_type", string(t))
	return c.cfg.PublicBaseURL + "/dashboard?" + q.Encode()
}

func (c *Client) CancelURL() string {
	return c.cfg.PublicBaseURL + "/dashboardfree?payment=" + string(ReturnCancelled)
}

// CreateCheckoutSession returns the hosted checkout page for p.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error) {
	ctx, span := otel.Tracer("silentview/payment").Start(ctx, "stripe.CreateCheckoutSession")
	defer span.End()
	span.SetAttributes(attribute.String("payment.type", string(p.PaymentType)))

	if strings.TrimSpace(p.SessionID) == "" || strings.TrimSpace(p.UserIdentifier) == "" || p.PaymentType == "" {
		return CheckoutSession{}, pkgerrors.Invalid("Missing required fields")
	}
	if _, err := ParseType(string(p.PaymentType)); err != nil {
		return CheckoutSession{}, err
	}
	if c.cfg.SecretKey == "" {
		return CheckoutSession{}, fmt.Errorf("stripe configuration missing")
	}
	price := c.price(p.PaymentType)
	if price == "" {
		return CheckoutSession{}, fmt.Errorf("price id not configured for %s", p.PaymentType)
	}

	form := url.Values{}
	form.Set("mode", p.PaymentType.Mode())
	form.Set("success_url", c.SuccessURL(p.SessionID, p.PaymentType))
	form.Set("cancel_url", c.CancelURL())
	form.Set("line_items[0][price]", price)
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[session_id]", p.SessionID)
	form.Set("metadata[user_identifier]", p.UserIdentifier)
	form.Set("metadata[payment_type]", string(p.PaymentType))
	if p.UserID != "" {
		form.Set("metadata[user_id]", p.UserID)
	}

	payload := form.Encode()
	var body []byte
	err := httpx.Do(ctx, httpx.Policy{Retries: c.cfg.Retries, Backoff: c.cfg.RetryBackoff}, func(ctx context.Context) (http.Header, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/v1/checkout/sessions", strings.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		// retried attempts must not open a second session
		req.Header.Set("Idempotency-Key", "checkout_"+p.SessionID+"_"+string(p.PaymentType))

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp.Header, &httpx.StatusError{Op: "stripe checkout", Code: resp.StatusCode, Body: string(raw)}
		}
		body = raw
		return resp.Header, nil
	}, func(attempt int, wait time.Duration, err error) {
		c.log.Warn("Stripe checkout retrying", "attempt", attempt, "wait", wait.String(), "error", err)
	})
	if err != nil {
		c.log.Warn("Stripe checkout failed", "error", err)
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	var out CheckoutSession
	if err := json.Unmarshal(body, &out); err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe checkout: decode: %w", err)
	}
	if out.URL == "" {
		return CheckoutSession{}, fmt.Errorf("stripe checkout: empty url")
	}
	return out, nil
}

// NewTrackingID builds a client-side payment tracking id,
// session_<unix millis>_<base36 noise>.
func NewTrackingID(now time.Time) string {
	noise := strconv.FormatUint(rand.Uint64(), 36)
	if len(noise) > 13 {
		noise = noise[:13]
	}
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), noise)
}
