package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	redisbus "github.com/yungbote/medlibrary-backend/internal/clients/redis"
	apphttp "github.com/yungbote/medlibrary-backend/internal/http"
	"github.com/yungbote/medlibrary-backend/internal/observability"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if logMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	clients, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(clients.DB(), log)
	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}
	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, cfg)
	server := wireServer(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start builds the first content store and starts background listeners. The
// first build must succeed; later reloads keep the previous store on failure.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	lib := a.Services.Library
	res, err := lib.Reload(ctx)
	if err != nil {
		return fmt.Errorf("initial content build: %w", err)
	}
	if res.Records == 0 {
		a.Log.Warn("content library is empty", "source", res.Source)
	}

	if a.Cfg.MirrorOnStart {
		if _, err := lib.Mirror(ctx); err != nil {
			a.Log.Warn("mirror on start failed (continuing)", "error", err)
		}
	}
	if a.Cfg.GraphOnStart {
		if err := lib.ProjectGraph(ctx); err != nil {
			a.Log.Warn("graph projection on start failed (continuing)", "error", err)
		}
	}

	if bus := a.Clients.ReloadBus; bus != nil {
		err := bus.StartForwarder(ctx, func(n redisbus.ReloadNotice) {
			lib.HandleReloadNotice(ctx, n)
		})
		if err != nil {
			a.Log.Warn("reload forwarder failed to start (continuing)", "error", err)
		}
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("server listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()

	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("server shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
