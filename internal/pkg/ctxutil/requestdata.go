package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData is what the middleware learned about the caller.
type RequestData struct {
	// BrowserSessionID identifies the browser across the whole funnel.
	BrowserSessionID string
	ClientIP         string
	TokenString      string
	UserID           uuid.UUID
	Email            string
}

func (rd *RequestData) Authenticated() bool {
	return rd != nil && rd.UserID != uuid.Nil
}

// WithRequestData stores rd; middleware mutates the same pointer as it learns
// more about the request.
func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(Default(ctx), requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	rd, _ := ctx.Value(requestDataKey{}).(*RequestData)
	return rd
}
