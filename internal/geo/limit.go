package geo

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limited guards a free provider with a local token bucket so a burst of
// sessions skips to the next provider instead of getting the server's IP
// banned upstream.
type Limited struct {
	Provider
	limiter *rate.Limiter
}

func NewLimited(p Provider, l *rate.Limiter) *Limited {
	return &Limited{Provider: p, limiter: l}
}

func (l *Limited) Lookup(ctx context.Context, ip string) (Location, error) {
	if !l.limiter.Allow() {
		return Location{}, fmt.Errorf("%s: local rate limit reached", l.Name())
	}
	return l.Provider.Lookup(ctx, ip)
}
