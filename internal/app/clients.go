package app

import (
	"fmt"

	"github.com/Milo-adonos/SilentView/internal/clientstate"
	"github.com/Milo-adonos/SilentView/internal/geo"
	"github.com/Milo-adonos/SilentView/internal/observability"
	"github.com/Milo-adonos/SilentView/internal/payment"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type Clients struct {
	ClientState clientstate.Store
	Geo         *geo.Chain
	Stripe      *payment.Client

	redis *clientstate.Redis
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	var (
		kv    clientstate.KV
		redis *clientstate.Redis
	)
	if cfg.RedisAddr != "" {
		r, err := clientstate.NewRedis(log, cfg.RedisAddr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis client state: %w", err)
		}
		kv, redis = r, r
	} else {
		log.Warn("REDIS_ADDR not set, keeping client state in memory")
		kv = clientstate.NewMemory()
	}

	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, checkout will fail")
	}

	return Clients{
		ClientState: clientstate.New(log, kv, cfg.ClientStateTTL),
		Geo:         geo.NewDefaultChain(log, cfg.Geo).OnDetect(metrics.IncGeoLookup),
		Stripe:      payment.NewClient(log, cfg.Stripe),
		redis:       redis,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
