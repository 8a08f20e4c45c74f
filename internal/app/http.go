package app

import (
	"github.com/gin-gonic/gin"

	"github.com/Milo-adonos/SilentView/internal/data/db"
	"github.com/Milo-adonos/SilentView/internal/http"
	httpH "github.com/Milo-adonos/SilentView/internal/http/handlers"
	httpMW "github.com/Milo-adonos/SilentView/internal/http/middleware"
	"github.com/Milo-adonos/SilentView/internal/observability"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/sse"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Contexts *httpH.ContextsHandler
	Flow     *httpH.FlowHandler
	Events   *httpH.EventsHandler
	Results  *httpH.ResultsHandler
	Auth     *httpH.AuthHandler
	Payments *httpH.PaymentsHandler
	Alerts   *httpH.AlertsHandler
	History  *httpH.HistoryHandler
}

func wireHandlers(log *logger.Logger, database *db.Service, services Services, hub *sse.Hub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(database),
		Contexts: httpH.NewContextsHandler(),
		Flow:     httpH.NewFlowHandler(services.Flow),
		Events:   httpH.NewEventsHandler(log, hub),
		Results:  httpH.NewResultsHandler(log, services.Flow),
		Auth:     httpH.NewAuthHandler(services.Auth),
		Payments: httpH.NewPaymentsHandler(log, services.Billing, services.Flow, metrics),
		Alerts:   httpH.NewAlertsHandler(services.Alerts),
		History:  httpH.NewHistoryHandler(services.History),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
		SessionCookie:  httpMW.SessionCookieConfig{MaxAge: cfg.ClientStateTTL, Secure: cfg.SecureCookies},
		AuthMiddleware: middleware.Auth,

		HealthHandler:   handlers.Health,
		ContextsHandler: handlers.Contexts,
		FlowHandler:     handlers.Flow,
		EventsHandler:   handlers.Events,
		ResultsHandler:  handlers.Results,
		AuthHandler:     handlers.Auth,
		PaymentsHandler: handlers.Payments,
		AlertsHandler:   handlers.Alerts,
		HistoryHandler:  handlers.History,
	})
}
