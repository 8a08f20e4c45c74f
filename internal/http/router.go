package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/Milo-adonos/SilentView/internal/http/handlers"
	httpMW "github.com/Milo-adonos/SilentView/internal/http/middleware"
	"github.com/Milo-adonos/SilentView/internal/observability"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	Metrics        *observability.Metrics
	CORSOrigins    []string
	SessionCookie  httpMW.SessionCookieConfig
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	ContextsHandler *httpH.ContextsHandler
	FlowHandler     *httpH.FlowHandler
	EventsHandler   *httpH.EventsHandler
	ResultsHandler  *httpH.ResultsHandler
	AuthHandler     *httpH.AuthHandler
	PaymentsHandler *httpH.PaymentsHandler
	AlertsHandler   *httpH.AlertsHandler
	HistoryHandler  *httpH.HistoryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.AttachRequestContext(cfg.SessionCookie))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.OptionalAuth())
	}
	{
		if cfg.ContextsHandler != nil {
			api.GET("/contexts", cfg.ContextsHandler.List)
		}

		// Funnel
		if cfg.FlowHandler != nil {
			api.GET("/flow", cfg.FlowHandler.Get)
			api.POST("/flow/network", cfg.FlowHandler.Network)
			api.POST("/flow/own-handle", cfg.FlowHandler.OwnHandle)
			api.POST("/flow/target-handle", cfg.FlowHandler.TargetHandle)
			api.POST("/flow/context", cfg.FlowHandler.Context)
			api.POST("/flow/answer", cfg.FlowHandler.Answer)
			api.POST("/flow/prediction", cfg.FlowHandler.Prediction)
			api.POST("/flow/back", cfg.FlowHandler.Back)
			api.POST("/flow/reset", cfg.FlowHandler.Reset)
		}
		if cfg.EventsHandler != nil {
			api.GET("/flow/events", cfg.EventsHandler.Stream)
		}

		// Results
		if cfg.ResultsHandler != nil {
			api.GET("/results/locked", cfg.ResultsHandler.Locked)
			api.GET("/results/unlocked", cfg.ResultsHandler.Unlocked)
		}

		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/signup", cfg.AuthHandler.SignUp)
			api.POST("/auth/signin", cfg.AuthHandler.SignIn)
		}

		// Stripe calls this without a user.
		if cfg.PaymentsHandler != nil {
			api.POST("/payments/webhook", cfg.PaymentsHandler.Webhook)
		}
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.POST("/auth/signout", cfg.AuthHandler.SignOut)
			protected.GET("/auth/session", cfg.AuthHandler.Session)
		}
		if cfg.PaymentsHandler != nil {
			protected.POST("/payments/checkout", cfg.PaymentsHandler.Checkout)
		}
		if cfg.AlertsHandler != nil {
			protected.GET("/alerts", cfg.AlertsHandler.List)
			protected.POST("/alerts", cfg.AlertsHandler.Add)
			protected.DELETE("/alerts/:id", cfg.AlertsHandler.Delete)
			protected.POST("/alerts/:id/toggle", cfg.AlertsHandler.Toggle)
		}
		if cfg.HistoryHandler != nil {
			protected.GET("/history", cfg.HistoryHandler.List)
			protected.GET("/history/:id", cfg.HistoryHandler.Get)
		}
	}

	return r
}
