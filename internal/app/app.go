package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"energymix/internal/config"
	apperrors "energymix/internal/errors"
	"energymix/internal/infrastructure"
	custommiddleware "energymix/internal/middleware"
	"energymix/internal/services"
	"energymix/internal/storage"
	handlers "energymix/internal/transport/http"
	ws "energymix/internal/websocket"
	"energymix/pkg/contracts"
)

// Application is the dashboard server's dependency container. Everything
// it owns is built in New and torn down in Stop.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Providers *infrastructure.OTelProviders
	Metrics   *infrastructure.BusinessMetrics

	Store         *storage.Store
	Hub           *ws.Hub
	DataService   *services.DataService
	HealthService *services.HealthService
	Watcher       *services.RefreshWatcher
	SystemStats   *infrastructure.SystemMetricsCollector

	Router chi.Router
	Server *http.Server

	errorHandler *apperrors.ErrorHandler
}

// New assembles the application from configuration. Nothing starts
// running until Run; New only wires dependencies.
func New(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize opentelemetry: %w", err)
	}

	var metrics *infrastructure.BusinessMetrics
	if providers.Meter != nil {
		metrics, err = infrastructure.CreateBusinessMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}
	}

	store, err := storage.Open(cfg.Database.Path, cfg.Database.BusyTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	hub := ws.NewHubWithMetrics(logger, metrics)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Providers:     providers,
		Metrics:       metrics,
		Store:         store,
		Hub:           hub,
		DataService:   services.NewDataService(store, logger, metrics),
		HealthService: services.NewHealthService(store, hub, logger),
		errorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if cfg.Watcher.Enabled {
		app.Watcher = services.NewRefreshWatcher(store, hub, cfg.Watcher.Interval, logger)
	}

	if providers.Meter != nil {
		collector, err := infrastructure.NewSystemMetricsCollector(providers.Meter, 30*time.Second)
		if err != nil {
			return nil, fmt.Errorf("create system metrics collector: %w", err)
		}
		app.SystemStats = collector
		app.HealthService.WithRuntimeStats(collector)
	}

	app.setupRouter()
	app.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.Router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

// setupRouter configures the HTTP router and all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.RealIP)
	r.Use(custommiddleware.StructuredLogger(a.Logger))
	r.Use(custommiddleware.Recoverer(a.Logger))
	r.Use(custommiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
	r.Use(custommiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(custommiddleware.CORS(custommiddleware.CORSConfig{
			AllowedOrigins:   a.Config.Security.AllowedOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		limiter := custommiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	if a.Metrics != nil {
		if otelMW, err := custommiddleware.NewOTelMiddleware(a.Providers); err == nil {
			r.Use(otelMW.Handler)
		}
		r.Use(custommiddleware.BusinessMetricsMiddleware(a.Metrics))
	}

	dataHandler := handlers.NewDataHandler(a.DataService, a.Logger, a.errorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", dataHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
	})

	if a.Providers.PrometheusHTTP != nil {
		r.Handle("/metrics", a.Providers.PrometheusHTTP)
	}

	r.Get("/ws", a.handleWebSocket)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
}

// handleWebSocket upgrades a dashboard connection and hands it to the hub.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := custommiddleware.GetRequestID(r.Context())
	ctx := infrastructure.WithTraceID(r.Context(), reqID)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range a.Config.Security.AllowedOrigins {
				if origin == allowed || allowed == "*" {
					return true
				}
			}
			a.Logger.WarnContext(ctx, "websocket origin rejected",
				slog.String("origin", origin))
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own response.
		a.Logger.ErrorContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	client := ws.NewClientWithTrace(a.Hub, conn, reqID, a.Logger)
	a.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// Start launches the hub, the refresh watcher and the HTTP server under
// one errgroup. It returns when the context is cancelled or a component
// fails.
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("database", a.Store.Path()))

	a.Hub.Start()

	g, ctx := errgroup.WithContext(ctx)

	if a.Watcher != nil {
		g.Go(func() error {
			if err := a.Watcher.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}

	if a.SystemStats != nil {
		g.Go(func() error {
			if err := a.SystemStats.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "http server listening",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Stop releases everything Start left running and New acquired.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "stopping application")

	a.Hub.Stop()

	var firstErr error
	if err := a.Store.Close(); err != nil {
		firstErr = fmt.Errorf("close store: %w", err)
	}
	if a.Providers != nil {
		if err := a.Providers.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close log file: %w", err)
	}

	return firstErr
}

// Run starts the application and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := a.Start(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Stop(stopCtx); err != nil {
		a.Logger.Error("shutdown cleanup failed", slog.String("error", err.Error()))
	}

	return runErr
}
