package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Milo-adonos/SilentView/internal/flow"
	"github.com/Milo-adonos/SilentView/internal/observability"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/progress"
	"github.com/Milo-adonos/SilentView/internal/services"
	"github.com/Milo-adonos/SilentView/internal/sse"
)

type Services struct {
	Auth    services.AuthService
	Billing services.BillingService
	Alerts  services.AlertService
	History services.HistoryService
	Flow    services.FlowService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, hub *sse.Hub, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	auth := services.NewAuthService(db, log, r.User, r.UserToken, r.Subscription, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	billing := services.NewBillingService(db, log, c.Stripe, r.Subscription, r.AnalysisSession, cfg.Stripe.WebhookSecret)
	history := services.NewHistoryService(log, r.AnalysisSession)

	flowSvc, err := services.NewFlowService(
		log,
		c.Geo,
		progress.NewRunner(cfg.AnimationScale),
		c.ClientState,
		hub,
		history,
		billing,
		services.FlowConfig{
			ResultCacheSize: cfg.ResultCacheSize,
			OnTransition: func(tr flow.Transition) {
				metrics.IncTransition(string(tr.From), string(tr.To), tr.Event)
			},
		},
	)
	if err != nil {
		return Services{}, fmt.Errorf("init flow service: %w", err)
	}

	return Services{
		Auth:    auth,
		Billing: billing,
		Alerts:  services.NewAlertService(db, log, r.Alert),
		History: history,
		Flow:    flowSvc,
	}, nil
}
