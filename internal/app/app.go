package app

import (
	"context"
	"fmt"

	"github.com/Milo-adonos/SilentView/internal/data/db"
	"github.com/Milo-adonos/SilentView/internal/http"
	"github.com/Milo-adonos/SilentView/internal/observability"
	"github.com/Milo-adonos/SilentView/internal/platform/envutil"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/sse"
)

type App struct {
	Log      *logger.Logger
	DB       *db.Service
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	SSEHub   *sse.Hub
	Metrics  *observability.Metrics

	shutdownOtel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development", nil))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	shutdownOtel := observability.InitOTel(ctx, log, cfg.Otel)

	database, err := db.Open(log, db.Config{PostgresDSN: cfg.PostgresDSN, SQLitePath: cfg.SQLitePath})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrateAll(); err != nil {
		_ = database.Close()
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}

	metrics := observability.NewMetrics()
	hub := sse.NewHub(log)

	clients, err := wireClients(log, cfg, metrics)
	if err != nil {
		_ = database.Close()
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(database.DB(), log)
	serviceset, err := wireServices(database.DB(), log, cfg, reposet, clients, hub, metrics)
	if err != nil {
		clients.Close()
		_ = database.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, database, serviceset, hub, metrics)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           database,
		Server:       &http.Server{Engine: router},
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		SSEHub:       hub,
		Metrics:      metrics,
		shutdownOtel: shutdownOtel,
	}, nil
}

// Run serves until Shutdown is called or the listener fails.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "addr", a.Cfg.Port)
	return a.Server.Run(a.Cfg.Port)
}

// Shutdown stops accepting requests, cancels running analyses and releases
// every client.
func (a *App) Shutdown(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown", "error", err)
		}
	}
	if a.Services.Flow != nil {
		a.Services.Flow.Close()
	}
	a.Clients.Close()
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.shutdownOtel != nil {
		if err := a.shutdownOtel(ctx); err != nil {
			a.Log.Warn("OTel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
