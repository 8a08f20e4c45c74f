package payment

import "net/url"

type ReturnStatus string

const (
	ReturnSuccess   ReturnStatus = "success"
	ReturnCancelled ReturnStatus = "cancelled"
)

var returnParams = []string{"payment", "session_id", "payment_type"}

// Return is what Stripe appends to the success and cancel URLs.
type Return struct {
	Status      ReturnStatus
	SessionID   string
	PaymentType string
}

// ParseReturn reads the payment return parameters. ok is false when the
// query carries no recognised payment status.
func ParseReturn(q url.Values) (Return, bool) {
	st := ReturnStatus(q.Get("payment"))
	if st != ReturnSuccess && st != ReturnCancelled {
		return Return{}, false
	}
	return Return{Status: st, SessionID: q.Get("session_id"), PaymentType: q.Get("payment_type")}, true
}

// HasReturnParams reports whether any of the return parameters is present.
func HasReturnParams(q url.Values) bool {
	for _, k := range returnParams {
		if q.Has(k) {
			return true
		}
	}
	return false
}

// StripReturn returns a copy of u without the return parameters; every other
// query parameter is kept.
func StripReturn(u *url.URL) *url.URL {
	out := *u
	q := u.Query()
	for _, k := range returnParams {
		q.Del(k)
	}
	out.RawQuery = q.Encode()
	return &out
}
