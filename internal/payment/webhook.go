package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	DefaultTolerance       = 5 * time.Minute
)

var (
	ErrNoSignature      = errors.New("stripe: missing signature")
	ErrBadSignature     = errors.New("stripe: signature mismatch")
	ErrTimestampExpired = errors.New("stripe: timestamp outside tolerance")
)

// VerifySignature checks a Stripe-Signature header ("t=...,v1=...") against
// the raw payload.
func VerifySignature(payload []byte, header, secret string, now time.Time, tolerance time.Duration) error {
	if secret == "" {
		return fmt.Errorf("stripe: webhook secret not configured")
	}
	var ts int64
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("stripe: bad timestamp: %w", err)
			}
			ts = n
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return ErrNoSignature
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return ErrTimestampExpired
		}
	}
	expected := Sign(payload, secret, ts)
	for _, s := range sigs {
		if hmac.Equal([]byte(s), []byte(expected)) {
			return nil
		}
	}
	return ErrBadSignature
}

// Sign computes the v1 signature of payload at timestamp ts.
func Sign(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CompletedCheckout is the part of a checkout session object the webhook
// acts on.
type CompletedCheckout struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

func (c CompletedCheckout) SessionID() string      { return c.Metadata["session_id"] }
func (c CompletedCheckout) UserIdentifier() string { return c.Metadata["user_identifier"] }
func (c CompletedCheckout) PaymentType() string    { return c.Metadata["payment_type"] }
func (c CompletedCheckout) UserID() string         { return c.Metadata["user_id"] }

func ParseEvent(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("stripe: decode event: %w", err)
	}
	return ev, nil
}

func (e Event) CheckoutSession() (CompletedCheckout, error) {
	var cs CompletedCheckout
	if err := json.Unmarshal(e.Data.Object, &cs); err != nil {
		return CompletedCheckout{}, fmt.Errorf("stripe: decode checkout session: %w", err)
	}
	return cs, nil
}
